// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ragged

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/born-ml/k2/internal/serialization"
	"github.com/born-ml/k2/tensor"
)

// axesPrefix marks the metadata entry holding the number of axes of a
// saved ragged tensor.
const axesPrefix = "ragged."

// Save writes named ragged tensors to a SafeTensors file. A tensor named x
// is stored as "x.values" and "x.row_splits.1" .. "x.row_splits.N-1", so the
// file can be read by any SafeTensors reader.
func Save(path string, tensors map[string]*RaggedAny) error {
	//nolint:gosec // G304: path comes from the caller
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteTensors(f, tensors); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteTensors writes named ragged tensors in the format of Save.
func WriteTensors(w io.Writer, tensors map[string]*RaggedAny) error {
	flat := make(map[string]*tensor.RawTensor, 2*len(tensors))
	metadata := make(map[string]string, len(tensors))
	for name, r := range tensors {
		if name == "" || strings.ContainsAny(name, " \t\n") {
			return fmt.Errorf("%w: invalid tensor name %q", ErrParse, name)
		}
		flat[name+".values"] = r.Data()
		for axis := 1; axis < r.NumAxes(); axis++ {
			splits, err := r.Shape().RowSplits(axis)
			if err != nil {
				return err
			}
			flat[fmt.Sprintf("%s.row_splits.%d", name, axis)] = splits
		}
		metadata[axesPrefix+name] = strconv.Itoa(r.NumAxes())
	}
	return serialization.Write(w, flat, metadata)
}

// Load reads the ragged tensors of a file written by Save. WithDevice
// selects the place they are created on; WithDtype converts the values.
func Load(path string, opts ...Option) (map[string]*RaggedAny, error) {
	//nolint:gosec // G304: path comes from the caller
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return ReadTensors(f, opts...)
}

// ReadTensors reads ragged tensors in the format of Save.
func ReadTensors(r io.Reader, opts ...Option) (map[string]*RaggedAny, error) {
	o := newOptions(opts)
	if err := checkPlace(o.place); err != nil {
		return nil, err
	}
	flat, metadata, err := serialization.Read(r, o.place)
	if err != nil {
		return nil, err
	}
	res := make(map[string]*RaggedAny)
	for key, value := range metadata {
		name, ok := strings.CutPrefix(key, axesPrefix)
		if !ok {
			continue
		}
		numAxes, err := strconv.Atoi(value)
		if err != nil || numAxes < 2 {
			return nil, fmt.Errorf("%w: tensor %q has %q axes", ErrParse, name, value)
		}
		r, err := assemble(flat, name, numAxes)
		if err != nil {
			return nil, fmt.Errorf("tensor %q: %w", name, err)
		}
		if o.hasDtype && r.DType() != o.dtype {
			if r, err = r.ToDtype(o.dtype); err != nil {
				return nil, fmt.Errorf("tensor %q: %w", name, err)
			}
		}
		res[name] = r
	}
	return res, nil
}

func assemble(flat map[string]*tensor.RawTensor, name string, numAxes int) (*RaggedAny, error) {
	lookup := func(key string) (*tensor.RawTensor, error) {
		t, ok := flat[key]
		if !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrParse, key)
		}
		return t, nil
	}
	splits := make([]*tensor.RawTensor, numAxes-1)
	for axis := 1; axis < numAxes; axis++ {
		t, err := lookup(fmt.Sprintf("%s.row_splits.%d", name, axis))
		if err != nil {
			return nil, err
		}
		splits[axis-1] = t
	}
	values, err := lookup(name + ".values")
	if err != nil {
		return nil, err
	}
	shape, err := NewShape(splits...)
	if err != nil {
		return nil, err
	}
	return New(shape, values)
}

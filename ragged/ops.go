// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ragged

import (
	"fmt"

	"github.com/born-ml/k2/internal/autodiff/ops"
	"github.com/born-ml/k2/internal/bridge"
	"github.com/born-ml/k2/internal/ragged"
	"github.com/born-ml/k2/tensor"
)

// Unique removes duplicate sequences from an int32 tensor with 2 or 3 axes.
// The sequences are the sublists of the last axis; with 3 axes duplicates
// are removed within each sublist of axis 0. Unique sequences come out in
// lexicographic order and are copied.
//
// With needNumRepeats it also returns how often each unique sequence
// occurred, as a 2-axis tensor arranged like the result's sequences (a
// single row for 2 axes). With needNew2Old it returns, for each unique
// sequence, the index of its first occurrence among the sequences of r.
func (r *RaggedAny) Unique(needNumRepeats, needNew2Old bool) (unique, numRepeats *RaggedAny, new2old *tensor.RawTensor, err error) {
	if r.DType() != tensor.Int32 {
		return nil, nil, nil, fmt.Errorf("%w: unique needs int32 values, got %s", ErrDtype, r.DType())
	}
	if n := r.NumAxes(); n != 2 && n != 3 {
		return nil, nil, nil, fmt.Errorf("%w: unique needs 2 or 3 axes, got %d", ErrAxis, n)
	}
	u, repeats, order := ragged.UniqueSequences(ragged.FromAny[int32](r.any))
	unique = wrap(ragged.ToAny(u), nil)
	if needNumRepeats {
		numRepeats = wrap(ragged.ToAny(repeats), nil)
	}
	if needNew2Old {
		new2old = bridge.Array1ToTensor(order)
	}
	return unique, numRepeats, new2old, nil
}

// Sort sorts every sublist on the last axis in place, stably. With
// needNew2Old it returns new2old: the value now at position j of Data was at
// new2old[j] before sorting. Sorting is not tracked by autograd.
func (r *RaggedAny) Sort(descending, needNew2Old bool) *tensor.RawTensor {
	sorter := byDtype(r.DType(), sortSublists[int32], sortSublists[float32], sortSublists[float64])
	new2old := sorter(r.any, descending)
	if !needNew2Old {
		return nil
	}
	return new2old
}

func sortSublists[T ragged.Number](a ragged.Any, descending bool) *tensor.RawTensor {
	return bridge.Array1ToTensor(ragged.SortSublists(ragged.FromAny[T](a), descending))
}

// Pad converts a 2-axis tensor to a dense [Dim0, max sublist size] tensor.
// mode is "constant", which fills the tail of short sublists with value, or
// "replicate", which repeats their last element (empty sublists get value).
func (r *RaggedAny) Pad(mode string, value float64) (*tensor.RawTensor, error) {
	var m ragged.PadMode
	switch mode {
	case "constant":
		m = ragged.PadConstant
	case "replicate":
		m = ragged.PadReplicate
	default:
		return nil, fmt.Errorf("%w: unknown padding mode %q (want constant or replicate)", ErrParse, mode)
	}
	if r.NumAxes() != 2 {
		return nil, fmt.Errorf("%w: padding needs 2 axes, got %d", ErrAxis, r.NumAxes())
	}
	return byDtype(r.DType(), pad[int32], pad[float32], pad[float64])(r.any, m, value), nil
}

func pad[T ragged.Number](a ragged.Any, mode ragged.PadMode, value float64) *tensor.RawTensor {
	return bridge.Array2ToTensor(ragged.Pad(ragged.FromAny[T](a), mode, initialValue[T](value)))
}

// RemoveValuesLeq returns a copy of r without the values <= cutoff. The
// structure of all axes but the last is kept. The copy does not track
// gradients.
func (r *RaggedAny) RemoveValuesLeq(cutoff float64) *RaggedAny {
	return r.RemoveValuesIf(func(v float64) bool { return v <= cutoff })
}

// RemoveValuesEq returns a copy of r without the values equal to target.
func (r *RaggedAny) RemoveValuesEq(target float64) *RaggedAny {
	return r.RemoveValuesIf(func(v float64) bool { return v == target })
}

// RemoveValuesIf returns a copy of r without the values for which remove
// returns true.
func (r *RaggedAny) RemoveValuesIf(remove func(float64) bool) *RaggedAny {
	filter := byDtype(r.DType(), removeValues[int32], removeValues[float32], removeValues[float64])
	return wrap(filter(r.any, remove), nil)
}

func removeValues[T ragged.Number](a ragged.Any, remove func(float64) bool) ragged.Any {
	return ragged.ToAny(ragged.RemoveValuesIf(ragged.FromAny[T](a), func(v T) bool { return remove(float64(v)) }))
}

// Normalize divides each sublist on the last axis by its sum, or with useLog
// subtracts its log-sum-exp. r must hold float values. The shape is shared
// and the values are copied. Gradients flow to r.
func (r *RaggedAny) Normalize(useLog bool) (*RaggedAny, error) {
	var a ragged.Any
	switch r.DType() {
	case tensor.Float32:
		a = ragged.ToAny(ragged.NormalizePerSublist(ragged.FromAny[float32](r.any), useLog))
	case tensor.Float64:
		a = ragged.ToAny(ragged.NormalizePerSublist(ragged.FromAny[float64](r.any), useLog))
	default:
		return nil, fmt.Errorf("%w: normalize needs float values, got %s", ErrDtype, r.DType())
	}
	rec := r.tracker()
	out := rec.wrap(a)
	rec.record(ops.NewSegmentNormalizeOp(r.data, out.data, r.rowIDs(), r.any.Shape.NumSublists(), useLog))
	return out, nil
}

// Add returns r with alpha*value[i] added to every element of sublist i on
// the last axis. value is a 1-D tensor with one entry per sublist, of the
// dtype and place of r. Gradients flow to r and value.
func (r *RaggedAny) Add(value *tensor.RawTensor, alpha float64) (*RaggedAny, error) {
	switch {
	case value.DType() != r.DType():
		return nil, fmt.Errorf("%w: adding %s to %s", ErrDtype, value.DType(), r.DType())
	case value.Place() != r.Place():
		return nil, fmt.Errorf("%w: value on %s, tensor on %s", ErrDevice, value.Place(), r.Place())
	case value.Dim() != 1 || value.NumElements() != r.any.Shape.NumSublists():
		return nil, fmt.Errorf("%w: value has shape %v, want [%d]", ErrShape, value.Shape(), r.any.Shape.NumSublists())
	}
	value = value.Contiguous()
	a := byDtype(r.DType(), addPerSublist[int32], addPerSublist[float32], addPerSublist[float64])(r.any, value, alpha)
	rec := r.tracker(value)
	out := rec.wrap(a)
	rec.record(ops.NewAddPerSegmentOp(r.data, value, out.data, r.rowIDs(), alpha))
	return out, nil
}

func addPerSublist[T ragged.Number](a ragged.Any, value *tensor.RawTensor, alpha float64) ragged.Any {
	return ragged.ToAny(ragged.AddPerSublist(ragged.FromAny[T](a), bridge.TensorToArray1[T](value), T(alpha)))
}

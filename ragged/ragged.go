// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package ragged provides ragged tensors: tensors whose sublists have
// different lengths, stored as a flat value tensor plus row splits.
//
// A RaggedAny holds int32, float32 or float64 values. Its values are a
// framework tensor (see Data), so they can be handed to other tensor code
// without copying, and float values can take part in automatic
// differentiation.
//
// Example:
//
//	r, _ := ragged.FromString("[ [1 2] [] [3] ]", ragged.WithDtype(tensor.Float32))
//	r.SetRequiresGrad(true)
//	sums := r.Sum(0)  // [3 0 3]
//	_ = r.Backward(sums)
//	fmt.Println(r.Grad()) // ones
//
// Operations that "share" values return a RaggedAny whose values alias the
// receiver's; operations that "copy" allocate new values.
package ragged

import (
	"fmt"

	"github.com/born-ml/k2/internal/array"
	"github.com/born-ml/k2/internal/autodiff"
	"github.com/born-ml/k2/internal/autodiff/ops"
	"github.com/born-ml/k2/internal/bridge"
	"github.com/born-ml/k2/internal/ragged"
	"github.com/born-ml/k2/tensor"
)

// RaggedAny is a ragged tensor with int32, float32 or float64 values.
//
// The values in any and the tensor data always refer to the same memory.
type RaggedAny struct {
	any  ragged.Any
	data *tensor.RawTensor
	tape *autodiff.GradientTape // nil unless gradients are tracked
}

func wrap(a ragged.Any, tape *autodiff.GradientTape) *RaggedAny {
	return &RaggedAny{any: a, data: bridge.AnyToTensor(a), tape: tape}
}

// New creates a ragged tensor from a shape and a 1-D value tensor with
// shape.NumElements() elements. The values are shared with the tensor when
// it is contiguous. The shape is moved to the place of the values if needed.
func New(shape *Shape, values *tensor.RawTensor) (*RaggedAny, error) {
	if err := checkValues(values); err != nil {
		return nil, err
	}
	if values.Dim() != 1 {
		return nil, fmt.Errorf("%w: values must be 1-D, got shape %v", ErrShape, values.Shape())
	}
	if n := shape.NumElements(); values.NumElements() != n {
		return nil, fmt.Errorf("%w: shape has %d elements but there are %d values", ErrShape, n, values.NumElements())
	}
	values = values.Contiguous()
	s := shape.s.To(bridge.GetContextFromTensor(values))
	return &RaggedAny{any: bridge.TensorToAny(s, values), data: values}, nil
}

// FromTensor creates a ragged tensor from a regular tensor with at least 2
// dimensions; every sublist of axis i has length Shape()[i+1]. The values
// are shared with t when t is contiguous.
func FromTensor(t *tensor.RawTensor) (*RaggedAny, error) {
	if err := checkValues(t); err != nil {
		return nil, err
	}
	if t.Dim() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 dimensions, got shape %v", ErrShape, t.Shape())
	}
	t = t.Contiguous()
	flat, err := tensor.FromBlob(t.Data(), tensor.Shape{t.NumElements()}, nil, t.DType(), t.Place(), t)
	if err != nil {
		return nil, fmt.Errorf("flattening %v: %w", t, err)
	}
	shape := ragged.RegularShape(bridge.GetContextFromTensor(t), t.Shape()...)
	return &RaggedAny{any: bridge.TensorToAny(shape, flat), data: flat}, nil
}

// FromString parses the text form of a ragged tensor, for example
//
//	[ [1 2] [] [3] ]
//	RaggedTensor([[1, 2], [], [3]], dtype=int32)
//
// Numbers are separated by spaces or commas. Options given in a
// RaggedTensor(...) wrapper apply unless overridden by opts.
func FromString(s string, opts ...Option) (*RaggedAny, error) {
	o := newOptions(opts)
	wrapperOpts, err := ragged.WrapperOptions(s)
	if err != nil {
		return nil, err
	}
	if !o.hasDtype && wrapperOpts.Dtype != "" {
		d, ok := tensor.ParseDataType(wrapperOpts.Dtype)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrDtype, wrapperOpts.Dtype)
		}
		o.dtype, o.hasDtype = d, true
	}
	if !o.hasPlace && wrapperOpts.Device != "" {
		p, err := tensor.ParsePlace(wrapperOpts.Device)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDevice, err)
		}
		o.place = p
	}
	return build(o, func(ctx array.Context, dtype *array.Dtype) (ragged.Any, error) {
		a, _, err := ragged.Parse(ctx, s, dtype)
		return a, err
	})
}

// FromList creates a ragged tensor from nested lists. A list is a []any or
// a slice of a Go number type, and numbers may be any Go integer or float
// type. The element type is inferred as in FromString unless WithDtype is
// given.
//
// Example:
//
//	r, err := ragged.FromList([]any{[]int{1, 2}, []int{}, []float64{3.5}})
func FromList(list []any, opts ...Option) (*RaggedAny, error) {
	o := newOptions(opts)
	return build(o, func(ctx array.Context, dtype *array.Dtype) (ragged.Any, error) {
		return ragged.FromList(ctx, list, dtype)
	})
}

func build(o options, parse func(array.Context, *array.Dtype) (ragged.Any, error)) (*RaggedAny, error) {
	if err := checkPlace(o.place); err != nil {
		return nil, err
	}
	var dtype *array.Dtype
	if o.hasDtype {
		if err := checkDtype(o.dtype); err != nil {
			return nil, err
		}
		d := bridge.ScalarTypeToDtype(o.dtype)
		dtype = &d
	}
	a, err := parse(bridge.GetContext(o.place), dtype)
	if err != nil {
		return nil, err
	}
	return wrap(a, nil), nil
}

func checkDtype(d tensor.DataType) error {
	switch d {
	case tensor.Int32, tensor.Float32, tensor.Float64:
		return nil
	default:
		return fmt.Errorf("%w: %s (want int32, float32 or float64)", ErrDtype, d)
	}
}

func checkValues(t *tensor.RawTensor) error {
	if err := checkDtype(t.DType()); err != nil {
		return err
	}
	return checkPlace(t.Place())
}

// Data returns the values as a 1-D tensor sharing memory with r.
func (r *RaggedAny) Data() *tensor.RawTensor { return r.data }

// Shape returns the structure of r. It is shared with r.
func (r *RaggedAny) Shape() *Shape { return &Shape{s: r.any.Shape} }

// NumAxes returns the number of axes, at least 2.
func (r *RaggedAny) NumAxes() int { return r.any.Shape.NumAxes() }

// Dim0 returns the number of sublists on axis 0.
func (r *RaggedAny) Dim0() int { return r.any.Shape.Dim0() }

// NumElements returns the number of values.
func (r *RaggedAny) NumElements() int { return r.any.Shape.NumElements() }

// DType returns the element type.
func (r *RaggedAny) DType() tensor.DataType { return r.data.DType() }

// Place returns the device of r.
func (r *RaggedAny) Place() tensor.Place { return r.data.Place() }

// To returns r on place. It returns r itself if it is already there and a
// copy otherwise.
func (r *RaggedAny) To(place tensor.Place) (*RaggedAny, error) {
	if err := checkPlace(place); err != nil {
		return nil, err
	}
	ctx := bridge.GetContext(place)
	if ctx.IsCompatible(r.any.Context()) {
		return r, nil
	}
	rec := r.tracker()
	out := rec.wrap(r.any.To(ctx))
	rec.record(ops.NewGatherOp(r.data, out.data, identity(r.NumElements())))
	return out, nil
}

// ToDtype returns r with values converted to dtype. It returns r itself if
// the dtype is unchanged. Converted values do not track gradients.
func (r *RaggedAny) ToDtype(dtype tensor.DataType) (*RaggedAny, error) {
	if err := checkDtype(dtype); err != nil {
		return nil, err
	}
	if dtype == r.DType() {
		return r, nil
	}
	return wrap(r.any.Convert(bridge.ScalarTypeToDtype(dtype)), nil), nil
}

// Clone returns a deep copy of r.
func (r *RaggedAny) Clone() *RaggedAny {
	rec := r.tracker()
	out := rec.wrap(r.any.Clone())
	rec.record(ops.NewGatherOp(r.data, out.data, identity(r.NumElements())))
	return out
}

// ToString renders r in the form FromString accepts. Unless compact, the
// sublists of all but the last axis go on separate lines.
func (r *RaggedAny) ToString(compact bool) string {
	return ragged.ToString(r.any, compact, r.Place().String())
}

// String renders r over several lines, like ToString(false).
func (r *RaggedAny) String() string {
	return r.ToString(false)
}

// ToList converts r to nested []any whose leaves hold values of the Go type
// matching DType.
func (r *RaggedAny) ToList() []any {
	return ragged.AnyToList(r.any)
}

func identity(n int) []int32 {
	idx := make([]int32, n)
	for i := range idx {
		idx[i] = int32(i) //nolint:gosec // G115: bounded by tensor size
	}
	return idx
}

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ragged

import (
	"fmt"

	"github.com/born-ml/k2/internal/array"
	"github.com/born-ml/k2/internal/autodiff/ops"
	"github.com/born-ml/k2/internal/bridge"
	"github.com/born-ml/k2/internal/ragged"
	"github.com/born-ml/k2/tensor"
)

// byDtype picks the instantiation of a generic helper matching dtype.
func byDtype[F any](dtype tensor.DataType, i32, f32, f64 F) F {
	switch dtype {
	case tensor.Int32:
		return i32
	case tensor.Float32:
		return f32
	default:
		return f64
	}
}

// RemoveAxis removes axis, merging its sublists into their parents. r must
// have more than 2 axes and axis must not be the last one. The result shares
// values and gradients with r.
func (r *RaggedAny) RemoveAxis(axis int) (*RaggedAny, error) {
	if r.NumAxes() <= 2 {
		return nil, fmt.Errorf("%w: cannot remove an axis of a tensor with %d axes", ErrAxis, r.NumAxes())
	}
	if err := checkAxis(axis, 0, r.NumAxes()-1); err != nil {
		return nil, err
	}
	a := ragged.Any{Shape: ragged.RemoveAxisShape(r.any.Shape, axis), Values: r.any.Values}
	return &RaggedAny{any: a, data: r.data, tape: r.tape}, nil
}

// Arange returns the elements [begin, end) of axis together with everything
// below them; the axes above axis are dropped. axis must not be the last
// one. The values are shared with r.
func (r *RaggedAny) Arange(axis, begin, end int) (*RaggedAny, error) {
	if err := checkAxis(axis, 0, r.NumAxes()-1); err != nil {
		return nil, err
	}
	if size := r.any.Shape.TotSize(axis); begin < 0 || begin > end || end > size {
		return nil, fmt.Errorf("%w: range [%d, %d) on axis %d of size %d", ErrIndex, begin, end, axis, size)
	}
	shape, b, e := ragged.ArangeShape(r.any.Shape, axis, begin, end)
	return r.slice(shape, b, e), nil
}

// Index returns sublist i of axis as a tensor with one axis fewer, sharing
// values with r. Only axis 0 is supported, and r must have at least 3 axes.
func (r *RaggedAny) Index(axis, i int) (*RaggedAny, error) {
	if axis != 0 {
		return nil, fmt.Errorf("%w: can only index axis 0, got %d", ErrAxis, axis)
	}
	if r.NumAxes() < 3 {
		return nil, fmt.Errorf("%w: indexing needs at least 3 axes, got %d", ErrAxis, r.NumAxes())
	}
	if i < 0 || i >= r.Dim0() {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndex, i, r.Dim0())
	}
	splits := r.any.Shape.RowSplits(1).Data()
	shape, b, e := ragged.ArangeShape(r.any.Shape, 1, int(splits[i]), int(splits[i+1]))
	return r.slice(shape, b, e), nil
}

// slice returns the values [b, e) of r with shape, sharing memory.
func (r *RaggedAny) slice(shape ragged.Shape, b, e int) *RaggedAny {
	values := byDtype(r.DType(), arangeValues[int32], arangeValues[float32], arangeValues[float64])(r.any, b, e)
	rec := r.tracker()
	out := rec.wrap(ragged.Any{Shape: shape, Values: values})
	idx := make([]int32, e-b)
	for j := range idx {
		idx[j] = int32(b + j) //nolint:gosec // G115: bounded by tensor size
	}
	rec.record(ops.NewGatherOp(r.data, out.data, idx))
	return out
}

func arangeValues[T ragged.Number](a ragged.Any, b, e int) any {
	return ragged.FromAny[T](a).Values.Arange(b, e)
}

// IndexTensor selects the elements indexes of axis, copying them with
// everything below. indexes is a 1-D int32 tensor on the place of r. On
// axis 0 an index of -1 yields an empty sublist; on other axes indexes must
// be non-decreasing, and the selected elements stay in their parent
// sublists.
//
// With needValueIndexes it also returns, for every result value, the
// position in Data of the value it was copied from.
func (r *RaggedAny) IndexTensor(indexes *tensor.RawTensor, axis int, needValueIndexes bool) (*RaggedAny, *tensor.RawTensor, error) {
	if err := checkAxis(axis, 0, r.NumAxes()); err != nil {
		return nil, nil, err
	}
	idx, err := r.indexValues(indexes)
	if err != nil {
		return nil, nil, err
	}
	lo, size := int32(0), int32(r.any.Shape.TotSize(axis)) //nolint:gosec // G115: bounded by tensor size
	if axis == 0 {
		lo = -1
	}
	for j, i := range idx {
		if i < lo || i >= size {
			return nil, nil, fmt.Errorf("%w: %d not in [%d, %d) on axis %d", ErrIndex, i, lo, size, axis)
		}
		if axis > 0 && j > 0 && i < idx[j-1] {
			return nil, nil, fmt.Errorf("%w: indexes on axis %d must be non-decreasing", ErrIndex, axis)
		}
	}

	a, valueIndexes := byDtype(r.DType(), indexAxis[int32], indexAxis[float32], indexAxis[float64])(r.any, axis, idx)
	rec := r.tracker()
	out := rec.wrap(a)
	rec.record(ops.NewGatherOp(r.data, out.data, valueIndexes))
	if !needValueIndexes {
		return out, nil, nil
	}
	return out, bridge.Array1ToTensor(array.FromSlice(a.Context(), valueIndexes)), nil
}

func indexAxis[T ragged.Number](a ragged.Any, axis int, idx []int32) (ragged.Any, []int32) {
	out, valueIndexes := ragged.IndexAxis(ragged.FromAny[T](a), axis, idx)
	return ragged.ToAny(out), valueIndexes
}

// indexValues validates a 1-D int32 index tensor on the place of r.
func (r *RaggedAny) indexValues(indexes *tensor.RawTensor) ([]int32, error) {
	if indexes.Dim() != 1 {
		return nil, fmt.Errorf("%w: indexes must be 1-D, got shape %v", ErrShape, indexes.Shape())
	}
	if indexes.DType() != tensor.Int32 {
		return nil, fmt.Errorf("%w: indexes must be int32, got %s", ErrDtype, indexes.DType())
	}
	if indexes.Place() != r.Place() {
		return nil, fmt.Errorf("%w: indexes on %s, tensor on %s", ErrDevice, indexes.Place(), r.Place())
	}
	return tensor.Values[int32](indexes), nil
}

// IndexRagged indexes axis 0 of r with every value of indexes, an int32
// ragged tensor; -1 yields an empty sublist. The result has
// indexes.NumAxes()+r.NumAxes()-1 axes and copies the values.
func (r *RaggedAny) IndexRagged(indexes *RaggedAny) (*RaggedAny, error) {
	if err := r.checkIndexes(indexes, -1, r.Dim0()); err != nil {
		return nil, err
	}
	idx := ragged.FromAny[int32](indexes.any)
	a, valueIndexes := byDtype(r.DType(), indexRagged[int32], indexRagged[float32], indexRagged[float64])(r.any, idx)
	rec := r.tracker()
	out := rec.wrap(a)
	rec.record(ops.NewGatherOp(r.data, out.data, valueIndexes))
	return out, nil
}

func indexRagged[T ragged.Number](a ragged.Any, indexes ragged.Ragged[int32]) (ragged.Any, []int32) {
	out, valueIndexes := ragged.IndexRagged(ragged.FromAny[T](a), indexes)
	return ragged.ToAny(out), valueIndexes
}

// checkIndexes validates int32 indexes on the place of r with values in [lo, hi).
func (r *RaggedAny) checkIndexes(indexes *RaggedAny, lo, hi int) error {
	if indexes.DType() != tensor.Int32 {
		return fmt.Errorf("%w: indexes must be int32, got %s", ErrDtype, indexes.DType())
	}
	if indexes.Place() != r.Place() {
		return fmt.Errorf("%w: indexes on %s, tensor on %s", ErrDevice, indexes.Place(), r.Place())
	}
	for _, i := range tensor.Data[int32](indexes.data) {
		if int(i) < lo || int(i) >= hi {
			return fmt.Errorf("%w: %d not in [%d, %d)", ErrIndex, i, lo, hi)
		}
	}
	return nil
}

// IndexValues treats r as int32 indexes into the 1-D tensor src and returns
// a tensor shaped like r holding src[index], or defaultValue where the index
// is -1. The values are copied. Gradients flow to src; r and the result
// share the tape, so either can run Backward.
func (r *RaggedAny) IndexValues(src *tensor.RawTensor, defaultValue float64) (*RaggedAny, error) {
	if err := r.checkSource(src); err != nil {
		return nil, err
	}
	idx := ragged.FromAny[int32](r.any)
	a := byDtype(src.DType(), indexValues[int32], indexValues[float32], indexValues[float64])(src, idx, defaultValue)
	rec := r.indexRecorder(src)
	out := rec.wrap(a)
	rec.record(ops.NewGatherOp(src, out.data, idx.Values.Data()))
	return out, nil
}

func indexValues[T ragged.Number](src *tensor.RawTensor, indexes ragged.Ragged[int32], defaultValue float64) ragged.Any {
	values := bridge.TensorToArray1[T](src)
	return ragged.ToAny(ragged.IndexValues(values, indexes, initialValue[T](defaultValue)))
}

// IndexAndSum treats r as int32 indexes into the 1-D tensor src and returns,
// for each sublist on the last axis, the sum of src over its indexes.
// Indexes of -1 are skipped. Gradients flow to src; run them with
// r.Backward.
func (r *RaggedAny) IndexAndSum(src *tensor.RawTensor) (*tensor.RawTensor, error) {
	if err := r.checkSource(src); err != nil {
		return nil, err
	}
	idx := ragged.FromAny[int32](r.any)
	out := byDtype(src.DType(), indexAndSum[int32], indexAndSum[float32], indexAndSum[float64])(src, idx)
	rec := r.indexRecorder(src)
	if rec.track && src.DType().IsFloat() {
		gathered := rec.wrap(byDtype(src.DType(), indexValues[int32], indexValues[float32], indexValues[float64])(src, idx, 0))
		rec.record(ops.NewGatherOp(src, gathered.data, idx.Values.Data()))
		rec.record(ops.NewSegmentSumOp(gathered.data, out, r.rowIDs()))
	}
	return out, nil
}

// indexRecorder records on the tape of r, which is created if src tracks
// gradients. Index tensors cannot track gradients themselves, so their tape
// only serves as the handle for Backward.
func (r *RaggedAny) indexRecorder(src *tensor.RawTensor) *recorder {
	rec := r.tracker(src)
	if r.tape == nil {
		r.tape = rec.tape
	}
	return rec
}

func indexAndSum[T ragged.Number](src *tensor.RawTensor, indexes ragged.Ragged[int32]) *tensor.RawTensor {
	return bridge.Array1ToTensor(ragged.IndexAndSum(bridge.TensorToArray1[T](src), indexes))
}

// checkSource validates r as indexes into src.
func (r *RaggedAny) checkSource(src *tensor.RawTensor) error {
	if r.DType() != tensor.Int32 {
		return fmt.Errorf("%w: indexes must be int32, got %s", ErrDtype, r.DType())
	}
	if err := checkValues(src); err != nil {
		return err
	}
	if src.Dim() != 1 {
		return fmt.Errorf("%w: source must be 1-D, got shape %v", ErrShape, src.Shape())
	}
	if !src.IsContiguous() {
		return fmt.Errorf("%w: source must be contiguous", ErrShape)
	}
	if src.Place() != r.Place() {
		return fmt.Errorf("%w: source on %s, indexes on %s", ErrDevice, src.Place(), r.Place())
	}
	for _, i := range tensor.Data[int32](r.data) {
		if i < -1 || int(i) >= src.NumElements() {
			return fmt.Errorf("%w: %d not in [-1, %d)", ErrIndex, i, src.NumElements())
		}
	}
	return nil
}

// Cat concatenates srcs along axis 0 or 1, copying the values. All sources
// must have the same dtype, place and number of axes; along axis 1 they
// must also have the same Dim0, and sublist i of the result is the
// concatenation of the sublists i of the sources.
func Cat(srcs []*RaggedAny, axis int) (*RaggedAny, error) {
	if len(srcs) == 0 {
		return nil, fmt.Errorf("%w: nothing to concatenate", ErrShape)
	}
	if axis != 0 && axis != 1 {
		return nil, fmt.Errorf("%w: can only concatenate along axis 0 or 1, got %d", ErrAxis, axis)
	}
	first := srcs[0]
	for _, s := range srcs[1:] {
		switch {
		case s.DType() != first.DType():
			return nil, fmt.Errorf("%w: cannot concatenate %s and %s", ErrDtype, first.DType(), s.DType())
		case s.Place() != first.Place():
			return nil, fmt.Errorf("%w: cannot concatenate tensors on %s and %s", ErrDevice, first.Place(), s.Place())
		case s.NumAxes() != first.NumAxes():
			return nil, fmt.Errorf("%w: cannot concatenate tensors with %d and %d axes", ErrShape, first.NumAxes(), s.NumAxes())
		case axis == 1 && s.Dim0() != first.Dim0():
			return nil, fmt.Errorf("%w: cannot concatenate along axis 1 tensors with dim0 %d and %d", ErrShape, first.Dim0(), s.Dim0())
		}
	}
	rec, err := newRecorder(srcs)
	if err != nil {
		return nil, err
	}
	anys := make([]ragged.Any, len(srcs))
	inputs := make([]*tensor.RawTensor, len(srcs))
	for i, s := range srcs {
		anys[i], inputs[i] = s.any, s.data
	}
	a, valueIndexes := byDtype(first.DType(), catIndexed[int32], catIndexed[float32], catIndexed[float64])(anys, axis)
	out := rec.wrap(a)
	if axis == 0 {
		rec.record(ops.NewCatOp(inputs, out.data))
		return out, nil
	}
	if rec.track && first.DType().IsFloat() {
		joined, err := concatValues(inputs)
		if err != nil {
			return nil, err
		}
		rec.record(ops.NewCatOp(inputs, joined))
		rec.record(ops.NewGatherOp(joined, out.data, valueIndexes))
	}
	return out, nil
}

func catIndexed[T ragged.Number](srcs []ragged.Any, axis int) (ragged.Any, []int32) {
	typed := make([]ragged.Ragged[T], len(srcs))
	for i, s := range srcs {
		typed[i] = ragged.FromAny[T](s)
	}
	out, valueIndexes := ragged.CatIndexed(typed, axis)
	return ragged.ToAny(out), valueIndexes
}

// concatValues joins 1-D tensors of one dtype into a new tensor.
func concatValues(ts []*tensor.RawTensor) (*tensor.RawTensor, error) {
	n := 0
	for _, t := range ts {
		n += t.NumElements()
	}
	out, err := tensor.NewRaw(tensor.Shape{n}, ts[0].DType(), ts[0].Place())
	if err != nil {
		return nil, fmt.Errorf("allocating %d values: %w", n, err)
	}
	dst := out.Data()
	for _, t := range ts {
		dst = dst[copy(dst, t.Data()):]
	}
	return out, nil
}

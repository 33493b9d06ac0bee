// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ragged

import (
	"fmt"
	"math"

	"github.com/born-ml/k2/internal/autodiff/ops"
	"github.com/born-ml/k2/internal/bridge"
	"github.com/born-ml/k2/internal/ragged"
	"github.com/born-ml/k2/tensor"
)

// Reductions work on the sublists of the last axis and return a 1-D tensor
// with one entry per sublist, on the place of r. For int32 values the
// initial value is truncated and clamped to the int32 range, so
// math.Inf(-1) means "no initial value" for every dtype.

// Sum returns initial plus the sum of each sublist. Gradients flow to r.
func (r *RaggedAny) Sum(initial float64) *tensor.RawTensor {
	rec := r.tracker()
	var out *tensor.RawTensor
	switch r.DType() {
	case tensor.Int32:
		out = bridge.Array1ToTensor(ragged.SumPerSublist(ragged.FromAny[int32](r.any), initialValue[int32](initial)))
	case tensor.Float32:
		out = bridge.Array1ToTensor(ragged.SumPerSublist(ragged.FromAny[float32](r.any), initialValue[float32](initial)))
	default:
		out = bridge.Array1ToTensor(ragged.SumPerSublist(ragged.FromAny[float64](r.any), initial))
	}
	rec.record(ops.NewSegmentSumOp(r.data, out, r.rowIDs()))
	return out
}

// LogSumExp returns log(exp(initial) + sum(exp(x))) of each sublist; an
// empty sublist yields initial. r must hold float values. Gradients flow
// to r.
func (r *RaggedAny) LogSumExp(initial float64) (*tensor.RawTensor, error) {
	rec := r.tracker()
	var out *tensor.RawTensor
	switch r.DType() {
	case tensor.Float32:
		out = bridge.Array1ToTensor(ragged.LogSumPerSublist(ragged.FromAny[float32](r.any), float32(initial)))
	case tensor.Float64:
		out = bridge.Array1ToTensor(ragged.LogSumPerSublist(ragged.FromAny[float64](r.any), initial))
	default:
		return nil, fmt.Errorf("%w: log-sum-exp needs float values, got %s", ErrDtype, r.DType())
	}
	rec.record(ops.NewSegmentLogSumExpOp(r.data, out, r.rowIDs()))
	return out, nil
}

// Max returns the maximum of initial and the elements of each sublist.
func (r *RaggedAny) Max(initial float64) *tensor.RawTensor {
	switch r.DType() {
	case tensor.Int32:
		return bridge.Array1ToTensor(ragged.MaxPerSublist(ragged.FromAny[int32](r.any), initialValue[int32](initial)))
	case tensor.Float32:
		return bridge.Array1ToTensor(ragged.MaxPerSublist(ragged.FromAny[float32](r.any), float32(initial)))
	default:
		return bridge.Array1ToTensor(ragged.MaxPerSublist(ragged.FromAny[float64](r.any), initial))
	}
}

// Min returns the minimum of initial and the elements of each sublist.
func (r *RaggedAny) Min(initial float64) *tensor.RawTensor {
	switch r.DType() {
	case tensor.Int32:
		return bridge.Array1ToTensor(ragged.MinPerSublist(ragged.FromAny[int32](r.any), initialValue[int32](initial)))
	case tensor.Float32:
		return bridge.Array1ToTensor(ragged.MinPerSublist(ragged.FromAny[float32](r.any), float32(initial)))
	default:
		return bridge.Array1ToTensor(ragged.MinPerSublist(ragged.FromAny[float64](r.any), initial))
	}
}

// ArgMax returns, for each sublist, the index into Data of its largest
// element not below initial, preferring the last on ties, or -1 if there is
// none. The result is int32.
func (r *RaggedAny) ArgMax(initial float64) *tensor.RawTensor {
	switch r.DType() {
	case tensor.Int32:
		return bridge.Array1ToTensor(ragged.ArgMaxPerSublist(ragged.FromAny[int32](r.any), initialValue[int32](initial)))
	case tensor.Float32:
		return bridge.Array1ToTensor(ragged.ArgMaxPerSublist(ragged.FromAny[float32](r.any), float32(initial)))
	default:
		return bridge.Array1ToTensor(ragged.ArgMaxPerSublist(ragged.FromAny[float64](r.any), initial))
	}
}

// rowIDs returns the sublist of every value.
func (r *RaggedAny) rowIDs() []int32 {
	return r.any.Shape.RowIDs(r.NumAxes() - 1).Data()
}

func initialValue[T ragged.Number](v float64) T {
	var zero T
	switch any(zero).(type) {
	case int32:
		v = math.Max(math.MinInt32, math.Min(math.MaxInt32, math.Trunc(v)))
	case int64:
		v = math.Max(math.MinInt64, math.Min(math.MaxInt64, math.Trunc(v)))
	}
	return T(v)
}

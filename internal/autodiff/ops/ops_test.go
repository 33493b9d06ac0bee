package ops

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/k2/internal/tensor"
)

func vec[T tensor.DType](t *testing.T, values ...T) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.FromSlice(values, tensor.Shape{len(values)}, tensor.CPUPlace())
	require.NoError(t, err)
	return raw
}

func TestCatOp_Backward(t *testing.T) {
	a := vec[float32](t, 1, 2)
	b := vec[float32](t, 3, 4, 5)
	out := vec[float32](t, 1, 2, 3, 4, 5)

	op := NewCatOp([]*tensor.RawTensor{a, b}, out)
	assert.Len(t, op.Inputs(), 2)
	assert.Same(t, out, op.Output())

	grads := op.Backward(vec[float32](t, 10, 20, 30, 40, 50))
	require.Len(t, grads, 2)
	assert.Equal(t, []float32{10, 20}, tensor.Values[float32](grads[0]))
	assert.Equal(t, []float32{30, 40, 50}, tensor.Values[float32](grads[1]))
}

func TestCatOp_Backward_EmptyInput(t *testing.T) {
	a := vec[float64](t)
	b := vec[float64](t, 7)
	op := NewCatOp([]*tensor.RawTensor{a, b}, vec[float64](t, 7))

	grads := op.Backward(vec[float64](t, 2))
	assert.Equal(t, 0, grads[0].NumElements())
	assert.Equal(t, []float64{2}, tensor.Values[float64](grads[1]))
}

func TestGatherOp_Backward(t *testing.T) {
	x := vec[float32](t, 10, 20, 30, 40)
	out := vec[float32](t, 30, 10, 0, 30)
	op := NewGatherOp(x, out, []int32{2, 0, -1, 2})

	grads := op.Backward(vec[float32](t, 1, 2, 3, 4))
	require.Len(t, grads, 1)
	// Repeated indices accumulate; -1 drops its gradient.
	assert.Equal(t, []float32{2, 0, 5, 0}, tensor.Values[float32](grads[0]))
}

func TestSegmentSumOp_Backward(t *testing.T) {
	x := vec[float64](t, 1, 2, 3)
	op := NewSegmentSumOp(x, vec[float64](t, 3, 0, 3), []int32{0, 0, 2})

	grads := op.Backward(vec[float64](t, 5, 6, 7))
	assert.Equal(t, []float64{5, 5, 7}, tensor.Values[float64](grads[0]))
}

func TestSegmentLogSumExpOp_Backward(t *testing.T) {
	x := vec[float64](t, 0, 0, 1)
	y := vec[float64](t, math.Log(2), 1)
	op := NewSegmentLogSumExpOp(x, y, []int32{0, 0, 1})

	grads := op.Backward(vec[float64](t, 1, 2))
	got := tensor.Values[float64](grads[0])
	assert.InDeltaSlice(t, []float64{0.5, 0.5, 2}, got, 1e-12)
}

func TestSegmentNormalizeOp_Backward(t *testing.T) {
	t.Run("linear", func(t *testing.T) {
		x := vec[float64](t, 1, 3)
		y := vec[float64](t, 0.25, 0.75)
		op := NewSegmentNormalizeOp(x, y, []int32{0, 0}, 1, false)

		// d/dx of y[0] = x0/(x0+x1): (1/s - x0/s^2, -x0/s^2) = (3/16, -1/16)
		grads := op.Backward(vec[float64](t, 1, 0))
		assert.InDeltaSlice(t, []float64{3.0 / 16, -1.0 / 16}, tensor.Values[float64](grads[0]), 1e-12)
	})

	t.Run("log", func(t *testing.T) {
		x := vec[float64](t, 0, 0)
		y := vec[float64](t, -math.Log(2), -math.Log(2))
		op := NewSegmentNormalizeOp(x, y, []int32{0, 0}, 1, true)

		grads := op.Backward(vec[float64](t, 1, 1))
		// Shifting a whole segment leaves log-softmax unchanged.
		assert.InDeltaSlice(t, []float64{0, 0}, tensor.Values[float64](grads[0]), 1e-12)
	})
}

func TestAddPerSegmentOp_Backward(t *testing.T) {
	x := vec[float32](t, 1, 2, 3)
	v := vec[float32](t, 10, 20)
	op := NewAddPerSegmentOp(x, v, vec[float32](t, 6, 7, 13), []int32{0, 0, 1}, 0.5)

	grads := op.Backward(vec[float32](t, 1, 2, 4))
	require.Len(t, grads, 2)
	assert.Equal(t, []float32{1, 2, 4}, tensor.Values[float32](grads[0]))
	assert.Equal(t, []float32{1.5, 2}, tensor.Values[float32](grads[1]))
}

func TestAccumulate(t *testing.T) {
	sum := Accumulate(vec[float64](t, 1, 2), vec[float64](t, 3, 4))
	assert.Equal(t, []float64{4, 6}, tensor.Values[float64](sum))

	assert.Panics(t, func() {
		Accumulate(vec[float64](t, 1), vec[float64](t, 1, 2))
	})
	assert.Panics(t, func() {
		Accumulate(vec[int32](t, 1), vec[int32](t, 2))
	})
}

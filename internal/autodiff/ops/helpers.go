package ops

import (
	"fmt"
	"math"

	"github.com/born-ml/k2/internal/tensor"
)

type float interface {
	~float32 | ~float64
}

// newLike returns a zeroed contiguous tensor with the shape, dtype and place of t.
func newLike(t *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(t.Shape(), t.DType(), t.Place())
	if err != nil {
		panic(fmt.Sprintf("ops: failed to create gradient tensor: %v", err))
	}
	return result
}

// floats returns the values of a float tensor in logical order.
// The result aliases t when t is contiguous.
func floats[T float](t *tensor.RawTensor) []T {
	if t.IsContiguous() {
		return tensor.Data[T](t)[:t.NumElements()]
	}
	return tensor.Values[T](t)
}

// dispatch calls f32 or f64 according to the dtype of t.
func dispatch(t *tensor.RawTensor, f32, f64 func()) {
	switch t.DType() {
	case tensor.Float32:
		f32()
	case tensor.Float64:
		f64()
	default:
		panic(fmt.Sprintf("ops: gradients require a float tensor, got %s", t.DType()))
	}
}

// Accumulate returns a + b element-wise in a new tensor.
func Accumulate(a, b *tensor.RawTensor) *tensor.RawTensor {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("ops: cannot accumulate gradients of shapes %v and %v", a.Shape(), b.Shape()))
	}
	result := newLike(a)
	dispatch(a,
		func() { addInto(floats[float32](result), floats[float32](a), floats[float32](b)) },
		func() { addInto(floats[float64](result), floats[float64](a), floats[float64](b)) })
	return result
}

func addInto[T float](dst, a, b []T) {
	for i := range dst {
		dst[i] = a[i] + b[i]
	}
}

func exp[T float](x T) T {
	return T(math.Exp(float64(x)))
}

package tensor

import "fmt"

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice[T DType](data []T, shape Shape, place Place) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	raw, err := NewRaw(shape, DataTypeOf[T](), place)
	if err != nil {
		return nil, err
	}
	copy(Data[T](raw), data)
	return raw, nil
}

// Data returns a typed slice view of the tensor's data (zero-copy).
// Panics if T does not match the tensor's dtype.
//
// WARNING: Modifications to the returned slice will modify the tensor.
func Data[T DType](r *RawTensor) []T {
	return view[T](r, DataTypeOf[T]())
}

// Values returns the tensor's elements in row-major order as a new slice.
// Unlike Data it honours strides, so padding is skipped.
func Values[T DType](r *RawTensor) []T {
	data := Data[T](r)
	out := make([]T, 0, r.NumElements())
	forEachOffset(r.shape, r.stride, func(off int) {
		out = append(out, data[off])
	})
	return out
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func At[T DType](r *RawTensor, indices ...int) T {
	return Data[T](r)[r.ElementOffset(indices...)]
}

// Set sets the element at the given indices.
func Set[T DType](r *RawTensor, value T, indices ...int) {
	Data[T](r)[r.ElementOffset(indices...)] = value
}

// Full returns a contiguous tensor filled with value.
func Full[T DType](shape Shape, value T, place Place) *RawTensor {
	r := Empty(shape, DataTypeOf[T](), place)
	data := Data[T](r)
	for i := range data {
		data[i] = value
	}
	return r
}

// Scalar returns a 0-D tensor holding value.
func Scalar[T DType](value T, place Place) *RawTensor {
	return Full[T](Shape{}, value, place)
}

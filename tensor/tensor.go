// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API of the framework tensor that ragged
// tensors store their values in.
//
// The package defines:
//   - RawTensor: a strided tensor that may alias memory owned elsewhere
//   - Shape, DataType, Place: core type definitions
//   - Generic helpers to create tensors from Go slices and read them back
//
// Example:
//
//	x, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.CPUPlace())
//	v := tensor.At[float32](x, 1, 2) // 6
//	y := x.CopyTo(tensor.CUDAPlace(0))
package tensor

import (
	"github.com/born-ml/k2/internal/tensor"
)

// Type aliases for public API

// DType is a constraint for tensor data types.
// Supported types: float32, float64, int32, int64, uint8, bool.
type DType = tensor.DType

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// DeviceType represents the kind of device where tensor data resides.
type DeviceType = tensor.DeviceType

// Device type constants.
const (
	CPU    DeviceType = tensor.CPU
	CUDA   DeviceType = tensor.CUDA
	Vulkan DeviceType = tensor.Vulkan
	Metal  DeviceType = tensor.Metal
	WebGPU DeviceType = tensor.WebGPU
)

// Place identifies a device: a device type and an index.
type Place = tensor.Place

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// CPUPlace returns the host place.
func CPUPlace() Place {
	return tensor.CPUPlace()
}

// CUDAPlace returns the place of the accelerator with the given index.
func CUDAPlace(index int) Place {
	return tensor.CUDAPlace(index)
}

// ParsePlace parses a device name such as "cpu" or "cuda:1".
func ParsePlace(s string) (Place, error) {
	return tensor.ParsePlace(s)
}

// ParseDataType parses a dtype name such as "float32" or "int32".
func ParseDataType(s string) (DataType, bool) {
	return tensor.ParseDataType(s)
}

// Creation functions

// NewRaw creates a new zeroed raw tensor with the given shape, dtype, and place.
func NewRaw(shape Shape, dtype DataType, place Place) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, place)
}

// FromSlice creates a tensor from a Go slice, copying the data.
//
// Example:
//
//	x, err := tensor.FromSlice([]int32{1, 2, 3}, tensor.Shape{3}, tensor.CPUPlace())
func FromSlice[T DType](data []T, shape Shape, place Place) (*RawTensor, error) {
	return tensor.FromSlice(data, shape, place)
}

// Full creates a contiguous tensor filled with value.
func Full[T DType](shape Shape, value T, place Place) *RawTensor {
	return tensor.Full(shape, value, place)
}

// Scalar creates a 0-D tensor.
func Scalar[T DType](value T, place Place) *RawTensor {
	return tensor.Scalar(value, place)
}

// Access functions

// Data returns a typed view of the tensor memory (zero-copy).
// For strided tensors it covers padding as well.
func Data[T DType](r *RawTensor) []T {
	return tensor.Data[T](r)
}

// Values returns the elements in row-major order as a new slice.
func Values[T DType](r *RawTensor) []T {
	return tensor.Values[T](r)
}

// At returns the element at the given indices.
func At[T DType](r *RawTensor, indices ...int) T {
	return tensor.At[T](r, indices...)
}

// FromBlob creates a tensor aliasing data without copying. strides are in
// elements; nil means row-major contiguous. owner is kept reachable for as
// long as the tensor is, so memory owned by another object stays valid.
func FromBlob(data []byte, shape Shape, strides []int, dtype DataType, place Place, owner any) (*RawTensor, error) {
	return tensor.FromBlob(data, shape, strides, dtype, place, owner)
}

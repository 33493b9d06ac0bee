package tensor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

// tensorBuffer is a reference-counted shared buffer.
// Several RawTensors may view the same buffer with different shapes, strides
// and offsets.
type tensorBuffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // For safe deallocation
}

// newTensorBuffer creates a new reference-counted buffer with refCount = 1.
func newTensorBuffer(size int) *tensorBuffer {
	return wrapTensorBuffer(make([]byte, size))
}

// wrapTensorBuffer adopts data without copying it.
func wrapTensorBuffer(data []byte) *tensorBuffer {
	buf := &tensorBuffer{data: data}
	buf.refCount.Store(1)
	return buf
}

// addRef increments the reference count (for Clone operations).
func (tb *tensorBuffer) addRef() {
	tb.refCount.Add(1)
}

// release decrements the reference count and drops the memory if it reaches 0.
func (tb *tensorBuffer) release() {
	if tb.refCount.Add(-1) == 0 {
		tb.mu.Lock()
		defer tb.mu.Unlock()
		tb.data = nil
	}
}

// isUnique returns true if this buffer has only one reference.
func (tb *tensorBuffer) isUnique() bool {
	return tb.refCount.Load() == 1
}

// RawTensor is the low-level tensor representation.
//
// A RawTensor either owns its buffer (NewRaw, Empty) or aliases memory owned by
// someone else (FromBlob). In the latter case the owner is stored in the
// tensor, so the foreign memory stays reachable for as long as the tensor is.
type RawTensor struct {
	buffer *tensorBuffer // Shared reference-counted buffer
	shape  Shape         // Tensor dimensions
	stride []int         // Memory strides in elements
	dtype  DataType      // Runtime type information
	place  Place         // Compute device
	offset int           // Byte offset into buffer for views

	owner any // Keeps aliased memory alive, nil for owned buffers

	requiresGrad bool
	grad         *RawTensor
}

// NewRaw creates a new RawTensor with the given shape and type.
// Memory is zero-initialized.
func NewRaw(shape Shape, dtype DataType, place Place) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	byteSize := shape.NumElements() * dtype.Size()

	return &RawTensor{
		buffer: newTensorBuffer(byteSize),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		place:  place,
	}, nil
}

// Empty returns a tensor with the given shape, typically with a zero-sized
// dimension. It panics on a negative dimension.
func Empty(shape Shape, dtype DataType, place Place) *RawTensor {
	t, err := NewRaw(shape, dtype, place)
	if err != nil {
		panic(err)
	}
	return t
}

// FromBlob creates a tensor that aliases data without copying it.
//
// strides are in elements; nil means row-major contiguous. owner is retained by
// the tensor and released only when the tensor becomes unreachable, so memory
// owned by another object stays valid for the tensor's lifetime.
//
// Example:
//
//	region := arr.GetRegion()
//	t, err := tensor.FromBlob(region.Bytes(), tensor.Shape{3, 4}, []int{8, 1},
//	    tensor.Int32, tensor.CPUPlace(), region)
func FromBlob(data []byte, shape Shape, strides []int, dtype DataType, place Place, owner any) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if strides == nil {
		strides = shape.ComputeStrides()
	}
	if len(strides) != len(shape) {
		return nil, fmt.Errorf("got %d strides for %d dimensions", len(strides), len(shape))
	}
	for i, s := range strides {
		if s < 0 {
			return nil, fmt.Errorf("invalid stride at index %d: %d", i, s)
		}
	}
	need := span(shape, strides) * dtype.Size()
	if len(data) < need {
		return nil, fmt.Errorf("blob of %d bytes is too small for shape %v with strides %v (need %d)",
			len(data), shape, strides, need)
	}
	return &RawTensor{
		buffer: wrapTensorBuffer(data),
		shape:  shape.Clone(),
		stride: append([]int(nil), strides...),
		dtype:  dtype,
		place:  place,
		owner:  owner,
	}, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides in elements.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Place returns the tensor's device place.
func (r *RawTensor) Place() Place {
	return r.place
}

// Device returns the tensor's device type.
func (r *RawTensor) Device() DeviceType {
	return r.place.Type
}

// Dim returns the number of dimensions.
func (r *RawTensor) Dim() int {
	return len(r.shape)
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the number of bytes spanned by the tensor's elements,
// including padding between strided rows.
func (r *RawTensor) ByteSize() int {
	return span(r.shape, r.stride) * r.dtype.Size()
}

// Owner returns the object that keeps aliased memory alive, if any.
func (r *RawTensor) Owner() any {
	return r.owner
}

// Data returns the raw bytes spanned by the tensor.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	return r.buffer.data[r.offset : r.offset+r.ByteSize()]
}

// SharesMemory reports whether r and other view overlapping bytes.
func (r *RawTensor) SharesMemory(other *RawTensor) bool {
	a, b := r.Data(), other.Data()
	if len(a) == 0 || len(b) == 0 {
		return r.buffer == other.buffer
	}
	pa := uintptr(unsafe.Pointer(unsafe.SliceData(a)))
	pb := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	return pa < pb+uintptr(len(b)) && pb < pa+uintptr(len(a))
}

// IsContiguous reports whether the tensor has row-major contiguous strides.
// Dimensions of size one are ignored.
func (r *RawTensor) IsContiguous() bool {
	expected := 1
	for i := len(r.shape) - 1; i >= 0; i-- {
		if r.shape[i] == 1 {
			continue
		}
		if r.stride[i] != expected {
			return r.NumElements() == 0
		}
		expected *= r.shape[i]
	}
	return true
}

// ElementOffset returns the element offset of the given indices.
// Panics if indices are out of bounds.
func (r *RawTensor) ElementOffset(indices ...int) int {
	if len(indices) != len(r.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(r.shape), len(indices)))
	}
	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= r.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, r.shape[i]))
		}
		offset += idx * r.stride[i]
	}
	return offset
}

func asSlice[T any](data []byte, n int) []T {
	if n == 0 {
		return []T{}
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, length checked by callers
	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), n)
}

// view returns a typed slice over the elements spanned by the tensor.
func view[T any](r *RawTensor, want DataType) []T {
	if r.dtype != want {
		panic(fmt.Sprintf("tensor dtype is %s, not %s", r.dtype, want))
	}
	return asSlice[T](r.Data(), span(r.shape, r.stride))
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
// For strided tensors the slice covers padding as well; index it with ElementOffset.
func (r *RawTensor) AsFloat32() []float32 { return view[float32](r, Float32) }

// AsFloat64 interprets the data as []float64.
func (r *RawTensor) AsFloat64() []float64 { return view[float64](r, Float64) }

// AsInt32 interprets the data as []int32.
func (r *RawTensor) AsInt32() []int32 { return view[int32](r, Int32) }

// AsInt64 interprets the data as []int64.
func (r *RawTensor) AsInt64() []int64 { return view[int64](r, Int64) }

// AsUint8 interprets the data as []uint8.
func (r *RawTensor) AsUint8() []uint8 { return view[uint8](r, Uint8) }

// AsBool interprets the data as []bool.
func (r *RawTensor) AsBool() []bool { return view[bool](r, Bool) }

// Clone creates a shallow copy of the RawTensor that shares the buffer.
func (r *RawTensor) Clone() *RawTensor {
	r.buffer.addRef()
	return &RawTensor{
		buffer: r.buffer,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		place:  r.place,
		offset: r.offset,
		owner:  r.owner,
	}
}

// Release decrements the reference count and drops owned memory at zero.
func (r *RawTensor) Release() {
	r.buffer.release()
}

// IsUnique returns true if this tensor is the only reference to the buffer.
func (r *RawTensor) IsUnique() bool {
	return r.buffer.isUnique()
}

// Reinterpret returns a view of the same bytes with another dtype of equal size.
// Shape, strides and place are preserved.
func (r *RawTensor) Reinterpret(dtype DataType) *RawTensor {
	if dtype.Size() != r.dtype.Size() {
		panic(fmt.Sprintf("cannot reinterpret %s as %s: element sizes differ", r.dtype, dtype))
	}
	v := r.Clone()
	v.dtype = dtype
	return v
}

// Copy returns a contiguous deep copy of the tensor on the same place.
func (r *RawTensor) Copy() *RawTensor {
	return r.CopyTo(r.place)
}

// CopyTo returns a contiguous deep copy of the tensor on the given place.
func (r *RawTensor) CopyTo(place Place) *RawTensor {
	out := Empty(r.shape, r.dtype, place)
	if r.NumElements() == 0 {
		return out
	}
	src := r.Data()
	dst := out.buffer.data
	size := r.dtype.Size()
	if r.IsContiguous() {
		copy(dst, src[:len(dst)])
		return out
	}
	i := 0
	forEachOffset(r.shape, r.stride, func(off int) {
		copy(dst[i*size:(i+1)*size], src[off*size:(off+1)*size])
		i++
	})
	return out
}

// Contiguous returns r itself if it is contiguous, otherwise a contiguous copy.
func (r *RawTensor) Contiguous() *RawTensor {
	if r.IsContiguous() {
		return r
	}
	return r.Copy()
}

// forEachOffset calls fn with the element offset of every index in row-major order.
func forEachOffset(shape Shape, strides []int, fn func(off int)) {
	if shape.NumElements() == 0 {
		return
	}
	idx := make([]int, len(shape))
	for {
		off := 0
		for i, v := range idx {
			off += v * strides[i]
		}
		fn(off)
		d := len(shape) - 1
		for ; d >= 0; d-- {
			idx[d]++
			if idx[d] < shape[d] {
				break
			}
			idx[d] = 0
		}
		if d < 0 {
			return
		}
	}
}

// SetRequiresGrad marks this tensor for gradient computation.
func (r *RawTensor) SetRequiresGrad(requiresGrad bool) *RawTensor {
	r.requiresGrad = requiresGrad
	return r
}

// RequiresGrad returns true if this tensor requires gradient computation.
func (r *RawTensor) RequiresGrad() bool {
	return r.requiresGrad
}

// Grad returns the accumulated gradient, or nil.
func (r *RawTensor) Grad() *RawTensor {
	return r.grad
}

// SetGrad sets the gradient tensor.
func (r *RawTensor) SetGrad(grad *RawTensor) {
	r.grad = grad
}

// String returns a human-readable representation of the tensor.
func (r *RawTensor) String() string {
	return fmt.Sprintf("Tensor[%s]%v on %s", r.dtype, r.shape, r.place)
}

package array

import (
	"fmt"

	"github.com/born-ml/k2/internal/check"
)

// Array1 is a 1-D array of T stored in a Region at a byte offset.
//
// Array1 is a small value type; copying it copies the reference to the
// Region, not the elements.
type Array1[T any] struct {
	dim        int
	byteOffset int
	region     *Region
}

// NewArray1 allocates a zeroed array of dim elements on ctx.
func NewArray1[T any](ctx Context, dim int) Array1[T] {
	check.True(dim >= 0, "negative dim %d", dim)
	return Array1[T]{dim: dim, region: NewRegion(ctx, dim*elemSize[T]())}
}

// NewArray1FromRegion creates an array of dim elements viewing region at byteOffset.
func NewArray1FromRegion[T any](dim int, region *Region, byteOffset int) Array1[T] {
	check.True(region != nil, "nil region")
	check.True(dim >= 0 && byteOffset >= 0, "negative dim %d or offset %d", dim, byteOffset)
	check.True(byteOffset+dim*elemSize[T]() <= region.Size(),
		"array of %d elements at offset %d exceeds region of %d bytes", dim, byteOffset, region.Size())
	return Array1[T]{dim: dim, byteOffset: byteOffset, region: region}
}

// FromSlice copies values into a new array on ctx.
func FromSlice[T any](ctx Context, values []T) Array1[T] {
	a := NewArray1[T](ctx, len(values))
	copy(a.Data(), values)
	return a
}

// Dim returns the number of elements.
func (a Array1[T]) Dim() int { return a.dim }

// ByteOffset returns the offset of the first element in the region.
func (a Array1[T]) ByteOffset() int { return a.byteOffset }

// GetRegion returns the region holding the elements.
func (a Array1[T]) GetRegion() *Region { return a.region }

// Context returns the context of the region.
func (a Array1[T]) Context() Context {
	if a.region == nil {
		return nil
	}
	return a.region.Context()
}

// IsValid reports whether the array references a region.
func (a Array1[T]) IsValid() bool { return a.region != nil }

// ElemSize returns the size of T in bytes.
func (a Array1[T]) ElemSize() int { return elemSize[T]() }

// Bytes returns the bytes of the elements, aliasing the region.
func (a Array1[T]) Bytes() []byte {
	if a.region == nil {
		return nil
	}
	return a.region.Bytes()[a.byteOffset : a.byteOffset+a.dim*elemSize[T]()]
}

// Data returns a slice aliasing the elements. Writes are visible to every
// array sharing the region.
func (a Array1[T]) Data() []T {
	if a.dim == 0 {
		return []T{}
	}
	return sliceOf[T](a.Bytes(), a.dim)
}

// At returns element i.
func (a Array1[T]) At(i int) T {
	check.True(i >= 0 && i < a.dim, "index %d out of range [0, %d)", i, a.dim)
	return a.Data()[i]
}

// Back returns the last element.
func (a Array1[T]) Back() T {
	return a.At(a.dim - 1)
}

// Range returns the sub-array [start, start+n) sharing memory with a.
func (a Array1[T]) Range(start, n int) Array1[T] {
	check.True(start >= 0 && n >= 0 && start+n <= a.dim, "range [%d, %d) out of [0, %d)", start, start+n, a.dim)
	return Array1[T]{dim: n, byteOffset: a.byteOffset + start*elemSize[T](), region: a.region}
}

// Arange returns the sub-array [begin, end) sharing memory with a.
func (a Array1[T]) Arange(begin, end int) Array1[T] {
	return a.Range(begin, end-begin)
}

// ToSlice returns a copy of the elements.
func (a Array1[T]) ToSlice() []T {
	return append([]T(nil), a.Data()...)
}

// Clone returns a deep copy on the same context.
func (a Array1[T]) Clone() Array1[T] {
	return FromSlice(a.Context(), a.Data())
}

// To returns a if it already lives on a context compatible with ctx,
// otherwise a copy on ctx.
func (a Array1[T]) To(ctx Context) Array1[T] {
	if ctx.IsCompatible(a.Context()) {
		return a
	}
	return FromSlice(ctx, a.Data())
}

// SharesMemory reports whether a references region.
func (a Array1[T]) SharesMemory(region *Region) bool {
	return a.region == region
}

// String formats the array as "[ 1 2 3 ]".
func (a Array1[T]) String() string {
	s := "["
	for _, v := range a.Data() {
		s += fmt.Sprintf(" %v", v)
	}
	return s + " ]"
}

// Cast converts element values of a numeric array to another numeric type.
func Cast[D, S Number](a Array1[S]) Array1[D] {
	out := NewArray1[D](a.Context(), a.Dim())
	dst := out.Data()
	for i, v := range a.Data() {
		dst[i] = D(v)
	}
	return out
}

// Fill sets every element to v.
func Fill[T any](a Array1[T], v T) {
	data := a.Data()
	for i := range data {
		data[i] = v
	}
}

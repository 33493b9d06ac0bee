package array

import (
	"github.com/born-ml/k2/internal/check"
)

// Array2 is a 2-D row-major array. Rows are ElemStride0 elements apart, which
// may exceed Dim1 when rows are padded; elements within a row are contiguous.
type Array2[T any] struct {
	dim0        int
	dim1        int
	elemStride0 int
	byteOffset  int
	region      *Region
}

// NewArray2 allocates a zeroed, contiguous dim0 x dim1 array on ctx.
func NewArray2[T any](ctx Context, dim0, dim1 int) Array2[T] {
	check.True(dim0 >= 0 && dim1 >= 0, "negative dims %d x %d", dim0, dim1)
	return Array2[T]{
		dim0:        dim0,
		dim1:        dim1,
		elemStride0: dim1,
		region:      NewRegion(ctx, dim0*dim1*elemSize[T]()),
	}
}

// NewArray2FromRegion views region as a dim0 x dim1 array with the given row stride.
func NewArray2FromRegion[T any](dim0, dim1, elemStride0, byteOffset int, region *Region) Array2[T] {
	check.True(region != nil, "nil region")
	check.True(dim0 >= 0 && dim1 >= 0, "negative dims %d x %d", dim0, dim1)
	check.True(dim0 <= 1 || elemStride0 >= dim1, "row stride %d smaller than %d columns", elemStride0, dim1)
	a := Array2[T]{dim0: dim0, dim1: dim1, elemStride0: elemStride0, byteOffset: byteOffset, region: region}
	check.True(byteOffset+a.span()*elemSize[T]() <= region.Size(),
		"%d x %d array (stride %d) at offset %d exceeds region of %d bytes",
		dim0, dim1, elemStride0, byteOffset, region.Size())
	return a
}

// FromRows copies rows, which must all have the same length, into a new array on ctx.
func FromRows[T any](ctx Context, rows [][]T) Array2[T] {
	dim1 := 0
	if len(rows) > 0 {
		dim1 = len(rows[0])
	}
	a := NewArray2[T](ctx, len(rows), dim1)
	for i, row := range rows {
		check.Eq(len(row), dim1, "row length")
		copy(a.Row(i), row)
	}
	return a
}

func (a Array2[T]) span() int {
	if a.dim0 == 0 || a.dim1 == 0 {
		return 0
	}
	return (a.dim0-1)*a.elemStride0 + a.dim1
}

// Dim0 returns the number of rows.
func (a Array2[T]) Dim0() int { return a.dim0 }

// Dim1 returns the number of columns.
func (a Array2[T]) Dim1() int { return a.dim1 }

// ElemStride0 returns the distance between rows, in elements.
func (a Array2[T]) ElemStride0() int { return a.elemStride0 }

// ByteOffset returns the offset of element (0, 0) in the region.
func (a Array2[T]) ByteOffset() int { return a.byteOffset }

// GetRegion returns the region holding the elements.
func (a Array2[T]) GetRegion() *Region { return a.region }

// Context returns the context of the region.
func (a Array2[T]) Context() Context {
	if a.region == nil {
		return nil
	}
	return a.region.Context()
}

// IsContiguous reports whether rows are not padded.
func (a Array2[T]) IsContiguous() bool {
	return a.dim0 <= 1 || a.elemStride0 == a.dim1
}

// Bytes returns the bytes spanned by the array, including row padding.
func (a Array2[T]) Bytes() []byte {
	if a.region == nil {
		return nil
	}
	return a.region.Bytes()[a.byteOffset : a.byteOffset+a.span()*elemSize[T]()]
}

// Data returns a slice aliasing every element spanned by the array,
// including row padding. Element (i, j) is Data()[i*ElemStride0()+j].
func (a Array2[T]) Data() []T {
	return sliceOf[T](a.Bytes(), a.span())
}

// Row returns row i, aliasing the array.
func (a Array2[T]) Row(i int) []T {
	check.True(i >= 0 && i < a.dim0, "row %d out of range [0, %d)", i, a.dim0)
	start := i * a.elemStride0
	return a.Data()[start : start+a.dim1 : start+a.dim1]
}

// At returns element (i, j).
func (a Array2[T]) At(i, j int) T {
	check.True(j >= 0 && j < a.dim1, "column %d out of range [0, %d)", j, a.dim1)
	return a.Row(i)[j]
}

// ToRows returns a copy of the elements as a slice of rows.
func (a Array2[T]) ToRows() [][]T {
	rows := make([][]T, a.dim0)
	for i := range rows {
		rows[i] = append([]T(nil), a.Row(i)...)
	}
	return rows
}

// Flatten returns the elements as a 1-D array. It shares memory when the
// array is contiguous and copies otherwise.
func (a Array2[T]) Flatten() Array1[T] {
	if a.IsContiguous() {
		return Array1[T]{dim: a.dim0 * a.dim1, byteOffset: a.byteOffset, region: a.region}
	}
	out := NewArray1[T](a.Context(), a.dim0*a.dim1)
	dst := out.Data()
	for i := 0; i < a.dim0; i++ {
		copy(dst[i*a.dim1:], a.Row(i))
	}
	return out
}

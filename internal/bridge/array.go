package bridge

import (
	"github.com/born-ml/k2/internal/array"
	"github.com/born-ml/k2/internal/check"
	"github.com/born-ml/k2/internal/tensor"
)

// Array1ToTensor returns a 1-D tensor aliasing the elements of a.
//
// The tensor keeps the array's Region reachable, so it stays valid after a
// itself is gone. An empty array yields a fresh zero-length tensor instead
// of an alias.
func Array1ToTensor[T Element](a array.Array1[T]) *tensor.RawTensor {
	place := PlaceOf(a.Context())
	dtype := ScalarType[T]()
	if a.Dim() == 0 {
		return tensor.Empty(tensor.Shape{0}, dtype, place)
	}
	t, err := tensor.FromBlob(a.Bytes(), tensor.Shape{a.Dim()}, nil, dtype, place, a.GetRegion())
	if err != nil {
		check.Fatalf("aliasing array of %d elements: %v", a.Dim(), err)
	}
	return t
}

// TensorToArray1 returns an array aliasing the elements of the 1-D tensor t.
// The array's Region holds t as its owner.
func TensorToArray1[T Element](t *tensor.RawTensor) array.Array1[T] {
	check.Eq(t.Dim(), 1, "tensor rank")
	check.Eq(t.DType(), ScalarType[T](), "tensor dtype")
	// Producers may leave any stride on empty tensors.
	if t.NumElements() > 0 {
		check.Eq(t.Strides()[0], 1, "tensor stride")
	}
	region := array.NewRegionFrom(GetContextFromTensor(t), t.Data(), t)
	return array.NewArray1FromRegion[T](t.NumElements(), region, 0)
}

// Array2ToTensor returns a 2-D tensor aliasing the elements of a, with row
// stride ElemStride0, so padded arrays are aliased too. An array with no rows
// or no columns yields a fresh empty tensor of the same shape.
func Array2ToTensor[T Element](a array.Array2[T]) *tensor.RawTensor {
	place := PlaceOf(a.Context())
	dtype := ScalarType[T]()
	shape := tensor.Shape{a.Dim0(), a.Dim1()}
	if a.Dim0() == 0 || a.Dim1() == 0 {
		return tensor.Empty(shape, dtype, place)
	}
	t, err := tensor.FromBlob(a.Bytes(), shape, []int{a.ElemStride0(), 1}, dtype, place, a.GetRegion())
	if err != nil {
		check.Fatalf("aliasing %d x %d array: %v", a.Dim0(), a.Dim1(), err)
	}
	return t
}

// TensorToArray2 returns an array aliasing the elements of the 2-D tensor t.
// The innermost stride must be 1; the outer stride becomes the row stride.
func TensorToArray2[T Element](t *tensor.RawTensor) array.Array2[T] {
	check.Eq(t.Dim(), 2, "tensor rank")
	check.Eq(t.DType(), ScalarType[T](), "tensor dtype")
	shape := t.Shape()
	stride0 := shape[1]
	if t.NumElements() > 0 {
		check.Eq(t.Strides()[1], 1, "tensor inner stride")
		if shape[0] > 1 {
			stride0 = t.Strides()[0]
		}
	}
	region := array.NewRegionFrom(GetContextFromTensor(t), t.Data(), t)
	return array.NewArray2FromRegion[T](shape[0], shape[1], stride0, 0, region)
}

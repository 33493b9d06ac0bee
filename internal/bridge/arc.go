package bridge

import (
	"github.com/born-ml/k2/internal/array"
	"github.com/born-ml/k2/internal/check"
	"github.com/born-ml/k2/internal/fsa"
	"github.com/born-ml/k2/internal/tensor"
)

// ArcsToTensor returns an int32 tensor of shape [numArcs, 4] aliasing the arcs.
// Column 3 holds the bit pattern of each score; read it through AsFloat,
// never as an integer.
func ArcsToTensor(arcs array.Array1[fsa.Arc]) *tensor.RawTensor {
	place := PlaceOf(arcs.Context())
	shape := tensor.Shape{arcs.Dim(), fsa.ArcFields}
	if arcs.Dim() == 0 {
		return tensor.Empty(shape, tensor.Int32, place)
	}
	t, err := tensor.FromBlob(arcs.Bytes(), shape, nil, tensor.Int32, place, arcs.GetRegion())
	if err != nil {
		check.Fatalf("aliasing %d arcs: %v", arcs.Dim(), err)
	}
	return t
}

// TensorToArcs returns arcs aliasing an int32 tensor of shape [numArcs, 4]
// with contiguous rows.
func TensorToArcs(t *tensor.RawTensor) array.Array1[fsa.Arc] {
	check.Eq(t.Dim(), 2, "tensor rank")
	check.Eq(t.DType(), tensor.Int32, "tensor dtype")
	check.Eq(t.Shape()[1], fsa.ArcFields, "arc columns")
	if t.NumElements() > 0 {
		check.True(t.IsContiguous(), "arc tensor must be contiguous, strides %v", t.Strides())
	}
	region := array.NewRegionFrom(GetContextFromTensor(t), t.Data(), t)
	return array.NewArray1FromRegion[fsa.Arc](t.Shape()[0], region, 0)
}

// AsInt reinterprets a float32 tensor as int32 without converting values.
// Shape (including 0-D), strides and place are kept and memory is shared.
// An int32 tensor is returned unchanged.
func AsInt(t *tensor.RawTensor) *tensor.RawTensor {
	if t.DType() == tensor.Int32 {
		return t
	}
	check.Eq(t.DType(), tensor.Float32, "tensor dtype")
	return t.Reinterpret(tensor.Int32)
}

// AsFloat reinterprets an int32 tensor as float32; the inverse of AsInt.
func AsFloat(t *tensor.RawTensor) *tensor.RawTensor {
	if t.DType() == tensor.Float32 {
		return t
	}
	check.Eq(t.DType(), tensor.Int32, "tensor dtype")
	return t.Reinterpret(tensor.Float32)
}

package bridge

import (
	"github.com/born-ml/k2/internal/array"
	"github.com/born-ml/k2/internal/check"
	"github.com/born-ml/k2/internal/ragged"
	"github.com/born-ml/k2/internal/tensor"
)

// AnyToTensor returns a 1-D tensor aliasing the values of a.
func AnyToTensor(a ragged.Any) *tensor.RawTensor {
	switch v := a.Values.(type) {
	case array.Array1[int32]:
		return Array1ToTensor(v)
	case array.Array1[int64]:
		return Array1ToTensor(v)
	case array.Array1[float32]:
		return Array1ToTensor(v)
	case array.Array1[float64]:
		return Array1ToTensor(v)
	default:
		check.Fatalf("unsupported ragged values %T", a.Values)
		return nil
	}
}

// TensorToAny pairs shape with values aliasing the 1-D tensor t.
func TensorToAny(shape ragged.Shape, t *tensor.RawTensor) ragged.Any {
	switch t.DType() {
	case tensor.Int32:
		return ragged.NewAny(shape, TensorToArray1[int32](t))
	case tensor.Int64:
		return ragged.NewAny(shape, TensorToArray1[int64](t))
	case tensor.Float32:
		return ragged.NewAny(shape, TensorToArray1[float32](t))
	case tensor.Float64:
		return ragged.NewAny(shape, TensorToArray1[float64](t))
	default:
		check.Fatalf("unsupported ragged dtype %s", t.DType())
		return ragged.Any{}
	}
}

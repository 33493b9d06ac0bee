package bridge

import (
	"github.com/born-ml/k2/internal/array"
	"github.com/born-ml/k2/internal/check"
	"github.com/born-ml/k2/internal/tensor"
)

// Element is the set of element types that can cross the bridge.
type Element interface {
	float32 | float64 | int32 | int64 | bool
}

// scalarTypes is the single list of supported element types. Both conversion
// directions read it; adding a type means adding a row here and a term to
// Element.
var scalarTypes = []struct {
	dtype  array.Dtype
	scalar tensor.DataType
}{
	{array.DtypeFloat, tensor.Float32},
	{array.DtypeDouble, tensor.Float64},
	{array.DtypeInt32, tensor.Int32},
	{array.DtypeInt64, tensor.Int64},
	{array.DtypeBool, tensor.Bool},
}

// ScalarType returns the framework data type of T.
func ScalarType[T Element]() tensor.DataType {
	return ScalarTypeFromDtype(array.DtypeOf[T]())
}

// ScalarTypeFromDtype maps an array dtype to the framework data type.
func ScalarTypeFromDtype(d array.Dtype) tensor.DataType {
	for _, e := range scalarTypes {
		if e.dtype == d {
			return e.scalar
		}
	}
	check.Fatalf("unsupported dtype: %s", d)
	return 0
}

// ScalarTypeToDtype maps a framework data type to the array dtype.
func ScalarTypeToDtype(s tensor.DataType) array.Dtype {
	for _, e := range scalarTypes {
		if e.scalar == s {
			return e.dtype
		}
	}
	check.Fatalf("unsupported scalar type: %s", s)
	return 0
}

// IsSupported reports whether s can be mapped to an array dtype.
func IsSupported(s tensor.DataType) bool {
	for _, e := range scalarTypes {
		if e.scalar == s {
			return true
		}
	}
	return false
}

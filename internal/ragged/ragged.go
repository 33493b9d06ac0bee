package ragged

import (
	"fmt"

	"github.com/born-ml/k2/internal/array"
	"github.com/born-ml/k2/internal/check"
)

// Number is the set of value types the ragged algorithms accept.
type Number interface {
	int32 | int64 | float32 | float64
}

// Float is the subset of Number with log-space operations.
type Float interface {
	float32 | float64
}

// Ragged is a ragged array with values of type T.
type Ragged[T Number] struct {
	Shape  Shape
	Values array.Array1[T]
}

// New pairs a shape with its values.
func New[T Number](shape Shape, values array.Array1[T]) Ragged[T] {
	check.Eq(values.Dim(), shape.NumElements(), "number of values")
	return Ragged[T]{Shape: shape, Values: values}
}

// NumAxes returns the number of axes.
func (r Ragged[T]) NumAxes() int { return r.Shape.NumAxes() }

// Context returns the context of the values.
func (r Ragged[T]) Context() array.Context { return r.Values.Context() }

// Clone returns a deep copy.
func (r Ragged[T]) Clone() Ragged[T] {
	return Ragged[T]{Shape: r.Shape.Clone(), Values: r.Values.Clone()}
}

// To returns r if it lives on a context compatible with ctx, otherwise a copy on ctx.
func (r Ragged[T]) To(ctx array.Context) Ragged[T] {
	if ctx.IsCompatible(r.Context()) {
		return r
	}
	return Ragged[T]{Shape: r.Shape.To(ctx), Values: r.Values.To(ctx)}
}

// Sublists returns the values of each sublist on the last axis.
// The slices alias r.Values.
func (r Ragged[T]) Sublists() [][]T {
	splits := r.Shape.RowSplits(r.NumAxes() - 1).Data()
	values := r.Values.Data()
	out := make([][]T, len(splits)-1)
	for i := range out {
		out[i] = values[splits[i]:splits[i+1]:splits[i+1]]
	}
	return out
}

// Any is a ragged array whose value type is known only at run time.
// Values holds an array.Array1[T] for T in int32, int64, float32 or float64.
type Any struct {
	Shape  Shape
	Values any
}

// ToAny erases the value type of r.
func ToAny[T Number](r Ragged[T]) Any {
	return Any{Shape: r.Shape, Values: r.Values}
}

// FromAny recovers the typed ragged array; T must match the dtype of a.
func FromAny[T Number](a Any) Ragged[T] {
	values, ok := a.Values.(array.Array1[T])
	if !ok {
		check.Fatalf("ragged values are %s, not %s", a.Dtype(), array.DtypeOf[T]())
	}
	return Ragged[T]{Shape: a.Shape, Values: values}
}

// NewAny pairs a shape with type-erased values, which must be an array.Array1[T].
func NewAny(shape Shape, values any) Any {
	a := Any{Shape: shape, Values: values}
	check.Eq(a.numValues(), shape.NumElements(), "number of values")
	return a
}

// Dtype returns the value type.
func (a Any) Dtype() array.Dtype {
	switch a.Values.(type) {
	case array.Array1[int32]:
		return array.DtypeInt32
	case array.Array1[int64]:
		return array.DtypeInt64
	case array.Array1[float32]:
		return array.DtypeFloat
	case array.Array1[float64]:
		return array.DtypeDouble
	default:
		check.Fatalf("unsupported ragged values %T", a.Values)
		return 0
	}
}

func (a Any) numValues() int {
	switch v := a.Values.(type) {
	case array.Array1[int32]:
		return v.Dim()
	case array.Array1[int64]:
		return v.Dim()
	case array.Array1[float32]:
		return v.Dim()
	case array.Array1[float64]:
		return v.Dim()
	default:
		check.Fatalf("unsupported ragged values %T", a.Values)
		return 0
	}
}

// ValuesRegion returns the region holding the values.
func (a Any) ValuesRegion() *array.Region {
	switch v := a.Values.(type) {
	case array.Array1[int32]:
		return v.GetRegion()
	case array.Array1[int64]:
		return v.GetRegion()
	case array.Array1[float32]:
		return v.GetRegion()
	case array.Array1[float64]:
		return v.GetRegion()
	default:
		check.Fatalf("unsupported ragged values %T", a.Values)
		return nil
	}
}

// Context returns the context of the values.
func (a Any) Context() array.Context { return a.ValuesRegion().Context() }

// Clone returns a deep copy.
func (a Any) Clone() Any {
	switch a.Dtype() {
	case array.DtypeInt32:
		return ToAny(FromAny[int32](a).Clone())
	case array.DtypeInt64:
		return ToAny(FromAny[int64](a).Clone())
	case array.DtypeFloat:
		return ToAny(FromAny[float32](a).Clone())
	default:
		return ToAny(FromAny[float64](a).Clone())
	}
}

// To returns a if it lives on a context compatible with ctx, otherwise a copy on ctx.
func (a Any) To(ctx array.Context) Any {
	switch a.Dtype() {
	case array.DtypeInt32:
		return ToAny(FromAny[int32](a).To(ctx))
	case array.DtypeInt64:
		return ToAny(FromAny[int64](a).To(ctx))
	case array.DtypeFloat:
		return ToAny(FromAny[float32](a).To(ctx))
	default:
		return ToAny(FromAny[float64](a).To(ctx))
	}
}

// Convert returns a with values converted to dtype d. The shape is shared.
func (a Any) Convert(d array.Dtype) Any {
	switch d {
	case array.DtypeInt32:
		return Any{Shape: a.Shape, Values: castValues[int32](a)}
	case array.DtypeInt64:
		return Any{Shape: a.Shape, Values: castValues[int64](a)}
	case array.DtypeFloat:
		return Any{Shape: a.Shape, Values: castValues[float32](a)}
	case array.DtypeDouble:
		return Any{Shape: a.Shape, Values: castValues[float64](a)}
	default:
		check.Fatalf("unsupported ragged dtype %s", d)
		return Any{}
	}
}

func castValues[D Number](a Any) array.Array1[D] {
	switch v := a.Values.(type) {
	case array.Array1[int32]:
		return array.Cast[D](v)
	case array.Array1[int64]:
		return array.Cast[D](v)
	case array.Array1[float32]:
		return array.Cast[D](v)
	case array.Array1[float64]:
		return array.Cast[D](v)
	default:
		panic(fmt.Sprintf("unsupported ragged values %T", a.Values))
	}
}

package ragged

import (
	"fmt"
	"strconv"

	"github.com/born-ml/k2/internal/array"
)

// ToList converts r to nested []any whose leaves are []any of T values.
func ToList[T Number](r Ragged[T]) []any {
	values := r.Values.Data()
	var walk func(depth, begin, end int) []any
	walk = func(depth, begin, end int) []any {
		out := make([]any, 0, end-begin)
		for i := begin; i < end; i++ {
			if depth == r.NumAxes()-1 {
				out = append(out, values[i])
				continue
			}
			splits := r.Shape.rowSplits[depth].Data()
			out = append(out, walk(depth+1, int(splits[i]), int(splits[i+1])))
		}
		return out
	}
	return walk(0, 0, r.Shape.Dim0())
}

// AnyToList is ToList for a type-erased array.
func AnyToList(a Any) []any {
	switch a.Dtype() {
	case array.DtypeInt32:
		return ToList(FromAny[int32](a))
	case array.DtypeInt64:
		return ToList(FromAny[int64](a))
	case array.DtypeFloat:
		return ToList(FromAny[float32](a))
	default:
		return ToList(FromAny[float64](a))
	}
}

// FromList builds a ragged array from nested lists. A list is a []any or a
// slice of a Go number type; leaves may be any Go integer or float type.
// The dtype is inferred as in Parse unless dtype is non-nil.
func FromList(ctx array.Context, list []any, dtype *array.Dtype) (Any, error) {
	root, err := listNode(list)
	if err != nil {
		return Any{}, err
	}
	d := root.inferDtype()
	if dtype != nil {
		d = *dtype
	}
	return root.build(ctx, d)
}

func listNode(v any) (*node, error) {
	switch l := v.(type) {
	case []any:
		n := &node{}
		for _, e := range l {
			if lit, ok, err := toLiteral(e); err != nil {
				return nil, err
			} else if ok {
				n.vals = append(n.vals, lit)
				continue
			}
			kid, err := listNode(e)
			if err != nil {
				return nil, err
			}
			n.kids = append(n.kids, kid)
		}
		return n, nil
	case []int:
		return numberList(l)
	case []int32:
		return numberList(l)
	case []int64:
		return numberList(l)
	case []float32:
		return numberList(l)
	case []float64:
		return numberList(l)
	default:
		return nil, fmt.Errorf("%w: unsupported list element %T", ErrParse, v)
	}
}

func numberList[T int | int32 | int64 | float32 | float64](l []T) (*node, error) {
	n := &node{vals: make([]literal, 0, len(l))}
	for _, e := range l {
		lit, _, err := toLiteral(e)
		if err != nil {
			return nil, err
		}
		n.vals = append(n.vals, lit)
	}
	return n, nil
}

// toLiteral converts a Go number; ok is false if v is not a number.
func toLiteral(v any) (literal, bool, error) {
	switch x := v.(type) {
	case int:
		return intLiteral(int64(x)), true, nil
	case int32:
		return intLiteral(int64(x)), true, nil
	case int64:
		return intLiteral(x), true, nil
	case float32:
		return floatLiteral(float64(x)), true, nil
	case float64:
		return floatLiteral(x), true, nil
	case bool, string, nil:
		return literal{}, false, fmt.Errorf("%w: unsupported value %v (%T)", ErrParse, v, v)
	default:
		return literal{}, false, nil
	}
}

func intLiteral(i int64) literal {
	return literal{text: strconv.FormatInt(i, 10), i: i, f: float64(i), isInt: true}
}

func floatLiteral(f float64) literal {
	return literal{text: strconv.FormatFloat(f, 'g', -1, 64), f: f}
}

package ragged

import (
	"fmt"
	"math"

	"github.com/born-ml/k2/internal/array"
)

// literal is a number read from text or from a nested list.
type literal struct {
	text  string
	f     float64
	i     int64
	isInt bool
}

// asInt returns the integer value of l. Floats with an integral value are
// accepted when an integer dtype is requested explicitly.
func (l literal) asInt() (int64, bool) {
	if l.isInt {
		return l.i, true
	}
	if l.f == math.Trunc(l.f) && math.Abs(l.f) < 1<<62 {
		return int64(l.f), true
	}
	return 0, false
}

// node is a list: either of sub-lists or of numbers, never both.
type node struct {
	kids []*node
	vals []literal
}

// layout checks that all numbers sit at the same depth and returns the
// number of axes the tree describes.
func (n *node) layout() (int, error) {
	numberDepth, maxDepth := -1, 0
	var walk func(n *node, depth int) error
	walk = func(n *node, depth int) error {
		maxDepth = max(maxDepth, depth)
		if len(n.kids) > 0 && len(n.vals) > 0 {
			return fmt.Errorf("%w: list at depth %d mixes numbers and lists", ErrParse, depth)
		}
		if len(n.vals) > 0 {
			if numberDepth >= 0 && numberDepth != depth {
				return fmt.Errorf("%w: numbers at depths %d and %d", ErrParse, numberDepth, depth)
			}
			numberDepth = depth
		}
		for _, k := range n.kids {
			if err := walk(k, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(n, 0); err != nil {
		return 0, err
	}
	numAxes := maxDepth + 1
	if numberDepth >= 0 {
		if maxDepth > numberDepth {
			return 0, fmt.Errorf("%w: lists nested below the numbers", ErrParse)
		}
		numAxes = numberDepth + 1
	}
	if numAxes < 2 {
		return 0, fmt.Errorf("%w: need at least 2 axes, got %d", ErrParse, numAxes)
	}
	return numAxes, nil
}

// inferDtype returns int32 if every literal is an int32, float32 otherwise.
func (n *node) inferDtype() array.Dtype {
	dtype := array.DtypeInt32
	var walk func(n *node)
	walk = func(n *node) {
		for _, v := range n.vals {
			if !v.isInt || v.i < math.MinInt32 || v.i > math.MaxInt32 {
				dtype = array.DtypeFloat
			}
		}
		for _, k := range n.kids {
			walk(k)
		}
	}
	walk(n)
	return dtype
}

// build converts the tree to a ragged array of the given dtype on ctx.
func (n *node) build(ctx array.Context, dtype array.Dtype) (Any, error) {
	numAxes, err := n.layout()
	if err != nil {
		return Any{}, err
	}
	splits := make([][]int32, numAxes-1)
	for i := range splits {
		splits[i] = []int32{0}
	}
	var lits []literal
	var walk func(n *node, depth int)
	walk = func(n *node, depth int) {
		if depth == numAxes-2 {
			for _, k := range n.kids {
				lits = append(lits, k.vals...)
				splits[depth] = append(splits[depth], int32(len(lits))) //nolint:gosec // G115: bounded by input size
			}
			return
		}
		for _, k := range n.kids {
			walk(k, depth+1)
			splits[depth] = append(splits[depth], int32(len(splits[depth+1])-1)) //nolint:gosec // G115: bounded by input size
		}
	}
	walk(n, 0)

	shape, err := ShapeFromSplits(ctx, splits)
	if err != nil {
		return Any{}, err
	}
	switch dtype {
	case array.DtypeInt32:
		values := make([]int32, len(lits))
		for i, l := range lits {
			v, ok := l.asInt()
			if !ok || v < math.MinInt32 || v > math.MaxInt32 {
				return Any{}, fmt.Errorf("%w: %s is not an int32", ErrParse, l.text)
			}
			values[i] = int32(v)
		}
		return ToAny(New(shape, array.FromSlice(ctx, values))), nil
	case array.DtypeInt64:
		values := make([]int64, len(lits))
		for i, l := range lits {
			v, ok := l.asInt()
			if !ok {
				return Any{}, fmt.Errorf("%w: %s is not an int64", ErrParse, l.text)
			}
			values[i] = v
		}
		return ToAny(New(shape, array.FromSlice(ctx, values))), nil
	case array.DtypeFloat:
		values := make([]float32, len(lits))
		for i, l := range lits {
			values[i] = float32(l.f)
		}
		return ToAny(New(shape, array.FromSlice(ctx, values))), nil
	case array.DtypeDouble:
		values := make([]float64, len(lits))
		for i, l := range lits {
			values[i] = l.f
		}
		return ToAny(New(shape, array.FromSlice(ctx, values))), nil
	default:
		return Any{}, fmt.Errorf("%w: %s", ErrDtype, dtype)
	}
}

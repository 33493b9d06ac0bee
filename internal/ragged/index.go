package ragged

import (
	"github.com/born-ml/k2/internal/array"
	"github.com/born-ml/k2/internal/check"
)

// gather selects elements idx on axis together with everything below them.
// It returns the row splits of axes axis+1..n-1 of the selection and the
// indexes of the selected values. An index of -1 selects an empty sublist.
func gather(s Shape, axis int, idx []int32) (splits [][]int32, valueIndexes []int32) {
	cur := idx
	for a := axis; a < s.NumAxes()-1; a++ {
		src := s.rowSplits[a].Data()
		size := int32(len(src) - 1) //nolint:gosec // G115: array sizes fit in int32
		out := make([]int32, 1, len(cur)+1)
		var next []int32
		for _, p := range cur {
			if p != -1 {
				check.True(p >= 0 && p < size, "index %d out of range [0, %d) on axis %d", p, size, a)
				for j := src[p]; j < src[p+1]; j++ {
					next = append(next, j)
				}
			}
			out = append(out, int32(len(next))) //nolint:gosec // G115: bounded by array size
		}
		splits = append(splits, out)
		cur = next
	}
	if axis == s.NumAxes()-1 {
		for _, p := range cur {
			check.True(p >= 0 && int(p) < s.NumElements(), "value index %d out of range [0, %d)", p, s.NumElements())
		}
	}
	if cur == nil {
		cur = []int32{}
	}
	return splits, cur
}

func splitsToArrays(ctx array.Context, splits [][]int32) []array.Array1[int32] {
	out := make([]array.Array1[int32], len(splits))
	for i, s := range splits {
		out[i] = array.FromSlice(ctx, s)
	}
	return out
}

// Gather returns the values at the given indexes, as a new array.
func Gather[T Number](values array.Array1[T], indexes []int32) array.Array1[T] {
	out := array.NewArray1[T](values.Context(), len(indexes))
	src, dst := values.Data(), out.Data()
	for i, j := range indexes {
		dst[i] = src[j]
	}
	return out
}

// IndexAxis0 returns the sublists idx of axis 0, copying them. An index of -1
// yields an empty sublist. It also returns, for every result value, the index
// of the value it was copied from.
func IndexAxis0[T Number](r Ragged[T], idx []int32) (Ragged[T], []int32) {
	ctx := r.Context()
	splits, valueIndexes := gather(r.Shape, 0, idx)
	shape := NewShape(splitsToArrays(ctx, splits)...)
	return Ragged[T]{Shape: shape, Values: Gather(r.Values, valueIndexes)}, valueIndexes
}

// IndexAxis returns the elements idx of axis, which must be non-decreasing,
// keeping each in its parent sublist. axis 0 defers to IndexAxis0.
func IndexAxis[T Number](r Ragged[T], axis int, idx []int32) (Ragged[T], []int32) {
	if axis == 0 {
		return IndexAxis0(r, idx)
	}
	r.Shape.checkAxis(axis, 1)
	for i := 1; i < len(idx); i++ {
		check.True(idx[i] >= idx[i-1], "indexes on axis %d must be non-decreasing", axis)
	}
	ctx := r.Context()
	parents := r.Shape.RowIDs(axis).Data()
	numParents := r.Shape.TotSize(axis - 1)

	newSplits := make([][]int32, 0, r.NumAxes()-1)
	for a := 1; a < axis; a++ {
		newSplits = append(newSplits, r.Shape.RowSplits(a).ToSlice())
	}
	counts := make([]int32, numParents+1)
	for _, p := range idx {
		check.True(p >= 0 && int(p) < len(parents), "index %d out of range [0, %d) on axis %d", p, len(parents), axis)
		counts[parents[p]+1]++
	}
	for i := 1; i < len(counts); i++ {
		counts[i] += counts[i-1]
	}
	newSplits = append(newSplits, counts)

	deeper, valueIndexes := gather(r.Shape, axis, idx)
	newSplits = append(newSplits, deeper...)
	shape := NewShape(splitsToArrays(ctx, newSplits)...)
	return Ragged[T]{Shape: shape, Values: Gather(r.Values, valueIndexes)}, valueIndexes
}

// IndexRagged indexes axis 0 of r with every value of indexes. The result has
// indexes.NumAxes()+r.NumAxes()-1 axes and copies the values; the index of
// the source of every value is returned too.
func IndexRagged[T Number](r Ragged[T], indexes Ragged[int32]) (Ragged[T], []int32) {
	ctx := r.Context()
	splits, valueIndexes := gather(r.Shape, 0, indexes.Values.Data())
	rowSplits := make([]array.Array1[int32], 0, indexes.NumAxes()-1+len(splits))
	for a := 1; a < indexes.NumAxes(); a++ {
		rowSplits = append(rowSplits, indexes.Shape.RowSplits(a).To(ctx))
	}
	rowSplits = append(rowSplits, splitsToArrays(ctx, splits)...)
	return Ragged[T]{Shape: NewShape(rowSplits...), Values: Gather(r.Values, valueIndexes)}, valueIndexes
}

// Arange returns the elements [begin, end) of axis with everything below
// them, dropping the axes above. The values are shared with r; row splits
// are rebased copies.
func Arange[T Number](r Ragged[T], axis, begin, end int) Ragged[T] {
	shape, b, e := ArangeShape(r.Shape, axis, begin, end)
	return Ragged[T]{Shape: shape, Values: r.Values.Arange(b, e)}
}

// ArangeShape is Arange on a shape. It also returns the range [b, e) of the
// values the result covers.
func ArangeShape(s Shape, axis, begin, end int) (shape Shape, b, e int) {
	check.True(axis >= 0 && axis < s.NumAxes()-1, "axis %d out of range [0, %d)", axis, s.NumAxes()-1)
	size := s.TotSize(axis)
	check.True(begin >= 0 && begin <= end && end <= size, "range [%d, %d) out of [0, %d]", begin, end, size)

	ctx := s.Context()
	splits := make([]array.Array1[int32], 0, s.NumAxes()-1-axis)
	b, e = begin, end
	for a := axis; a < s.NumAxes()-1; a++ {
		src := s.rowSplits[a].Data()[b : e+1]
		out := array.NewArray1[int32](ctx, len(src))
		dst := out.Data()
		for i, v := range src {
			dst[i] = v - src[0]
		}
		splits = append(splits, out)
		b, e = int(src[0]), int(src[len(src)-1])
	}
	return NewShape(splits...), b, e
}

// Index returns sublist i of axis 0 as a ragged array with one axis fewer.
// r must have at least 3 axes. The values are shared.
func Index[T Number](r Ragged[T], i int) Ragged[T] {
	check.True(r.NumAxes() >= 3, "indexing needs at least 3 axes, got %d", r.NumAxes())
	check.True(i >= 0 && i < r.Shape.Dim0(), "index %d out of range [0, %d)", i, r.Shape.Dim0())
	splits := r.Shape.RowSplits(1).Data()
	return Arange(r, 1, int(splits[i]), int(splits[i+1]))
}

// RemoveAxisShape removes axis from s, for 0 <= axis < NumAxes()-1, merging
// its sublists into their parents. s must have more than 2 axes.
func RemoveAxisShape(s Shape, axis int) Shape {
	check.True(s.NumAxes() > 2, "cannot remove an axis of a shape with %d axes", s.NumAxes())
	check.True(axis >= 0 && axis < s.NumAxes()-1, "axis %d out of range [0, %d)", axis, s.NumAxes()-1)
	if axis == 0 {
		return Shape{rowSplits: s.rowSplits[1:]}
	}
	outer, inner := s.rowSplits[axis-1].Data(), s.rowSplits[axis].Data()
	merged := array.NewArray1[int32](s.Context(), len(outer))
	dst := merged.Data()
	for i, v := range outer {
		dst[i] = inner[v]
	}
	splits := make([]array.Array1[int32], 0, len(s.rowSplits)-1)
	splits = append(splits, s.rowSplits[:axis-1]...)
	splits = append(splits, merged)
	splits = append(splits, s.rowSplits[axis+1:]...)
	return Shape{rowSplits: splits}
}

// RemoveAxis removes axis from r; the values are shared.
func RemoveAxis[T Number](r Ragged[T], axis int) Ragged[T] {
	return Ragged[T]{Shape: RemoveAxisShape(r.Shape, axis), Values: r.Values}
}

// Cat concatenates srcs along axis 0 or 1. All sources must have the same
// number of axes, and for axis 1 the same Dim0. The result is a copy.
func Cat[T Number](srcs []Ragged[T], axis int) Ragged[T] {
	r, _ := CatIndexed(srcs, axis)
	return r
}

// CatIndexed is Cat that also returns, for every result value, its index in
// the concatenation of the values of srcs.
func CatIndexed[T Number](srcs []Ragged[T], axis int) (Ragged[T], []int32) {
	check.True(len(srcs) > 0, "nothing to concatenate")
	check.True(axis == 0 || axis == 1, "can only concatenate along axis 0 or 1, got %d", axis)
	numAxes := srcs[0].NumAxes()
	for _, s := range srcs {
		check.Eq(s.NumAxes(), numAxes, "number of axes")
	}
	stacked := catAxis0(srcs)
	if axis == 0 {
		identity := make([]int32, stacked.Values.Dim())
		for i := range identity {
			identity[i] = int32(i) //nolint:gosec // G115: bounded by array size
		}
		return stacked, identity
	}

	dim0 := srcs[0].Shape.Dim0()
	for _, s := range srcs {
		check.Eq(s.Shape.Dim0(), dim0, "dim0")
	}
	// Interleave the rows of all sources, then merge each group of
	// len(srcs) consecutive rows into one.
	order := make([]int32, 0, dim0*len(srcs))
	for i := 0; i < dim0; i++ {
		for k := range srcs {
			order = append(order, int32(k*dim0+i)) //nolint:gosec // G115: bounded by array size
		}
	}
	interleaved, valueIndexes := IndexAxis0(stacked, order)
	groups := RegularShape(interleaved.Context(), dim0, len(srcs))
	withGroups := Shape{rowSplits: append([]array.Array1[int32]{groups.rowSplits[0]}, interleaved.Shape.rowSplits...)}
	return Ragged[T]{Shape: RemoveAxisShape(withGroups, 1), Values: interleaved.Values}, valueIndexes
}

func catAxis0[T Number](srcs []Ragged[T]) Ragged[T] {
	ctx := srcs[0].Context()
	numAxes := srcs[0].NumAxes()
	splits := make([][]int32, numAxes-1)
	for a := range splits {
		splits[a] = []int32{0}
	}
	var values []T
	for _, s := range srcs {
		for a := range splits {
			src := s.Shape.rowSplits[a].Data()
			offset := splits[a][len(splits[a])-1]
			for _, v := range src[1:] {
				splits[a] = append(splits[a], v+offset)
			}
		}
		values = append(values, s.Values.Data()...)
	}
	return Ragged[T]{Shape: NewShape(splitsToArrays(ctx, splits)...), Values: array.FromSlice(ctx, values)}
}

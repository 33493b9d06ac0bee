package ragged

import (
	"slices"
	"sort"

	"github.com/born-ml/k2/internal/array"
	"github.com/born-ml/k2/internal/check"
)

// SortSublists sorts every sublist on the last axis in place, stably, in
// ascending or descending order. It returns new2old: the element now at
// position j of r.Values was at new2old[j] before sorting.
func SortSublists[T Number](r Ragged[T], descending bool) array.Array1[int32] {
	splits := r.Shape.RowSplits(r.NumAxes() - 1).Data()
	values := r.Values.Data()
	new2old := array.NewArray1[int32](r.Context(), len(values))
	order := new2old.Data()
	for i := range order {
		order[i] = int32(i) //nolint:gosec // G115: bounded by array size
	}
	for i := 0; i+1 < len(splits); i++ {
		sub := order[splits[i]:splits[i+1]]
		sort.SliceStable(sub, func(a, b int) bool {
			if descending {
				return values[sub[a]] > values[sub[b]]
			}
			return values[sub[a]] < values[sub[b]]
		})
	}
	sorted := make([]T, len(values))
	for j, o := range order {
		sorted[j] = values[o]
	}
	copy(values, sorted)
	return new2old
}

// UniqueSequences removes duplicate sequences from an int32 ragged array
// with 2 or 3 axes. The sequences are the sublists of the last axis; with 3
// axes duplicates are removed within each sublist of axis 0. Unique sequences
// come out in lexicographic order.
//
// numRepeats has one entry per unique sequence, arranged like the result's
// sequences on axis 1 (with 2 axes it has a single row). new2old gives, for
// each unique sequence, the index on the sequence axis of its first
// occurrence.
func UniqueSequences(r Ragged[int32]) (unique Ragged[int32], numRepeats Ragged[int32], new2old array.Array1[int32]) {
	numAxes := r.NumAxes()
	check.True(numAxes == 2 || numAxes == 3, "unique needs 2 or 3 axes, got %d", numAxes)
	ctx := r.Context()

	src := r
	if numAxes == 2 {
		src = Ragged[int32]{
			Shape:  Shape{rowSplits: append([]array.Array1[int32]{RegularShape(ctx, 1, r.Shape.Dim0()).rowSplits[0]}, r.Shape.rowSplits...)},
			Values: r.Values,
		}
	}
	groups := src.Shape.RowSplits(1).Data()
	seqs := src.Sublists()

	var order, counts []int32
	groupSplits := []int32{0}
	for g := 0; g+1 < len(groups); g++ {
		idx := make([]int32, 0, groups[g+1]-groups[g])
		for s := groups[g]; s < groups[g+1]; s++ {
			idx = append(idx, s)
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return slices.Compare(seqs[idx[a]], seqs[idx[b]]) < 0
		})
		for k, s := range idx {
			if k > 0 && slices.Equal(seqs[s], seqs[idx[k-1]]) {
				counts[len(counts)-1]++
				continue
			}
			order = append(order, s)
			counts = append(counts, 1)
		}
		groupSplits = append(groupSplits, int32(len(order))) //nolint:gosec // G115: bounded by array size
	}
	if order == nil {
		order = []int32{}
	}

	unique = gatherSequences(src, order, groupSplits)
	repeatSplits := groupSplits
	if numAxes == 2 {
		unique = RemoveAxis(unique, 0)
		repeatSplits = []int32{0, int32(len(counts))} //nolint:gosec // G115: bounded by array size
	}
	numRepeats = Ragged[int32]{
		Shape:  NewShape(array.FromSlice(ctx, repeatSplits)),
		Values: array.FromSlice(ctx, counts),
	}
	return unique, numRepeats, array.FromSlice(ctx, order)
}

// gatherSequences builds a 3-axis array whose sequences are the sequences
// order of src, grouped by groupSplits.
func gatherSequences(src Ragged[int32], order, groupSplits []int32) Ragged[int32] {
	ctx := src.Context()
	seqs := src.Sublists()
	seqSplits := make([]int32, 1, len(order)+1)
	var values []int32
	for _, s := range order {
		values = append(values, seqs[s]...)
		seqSplits = append(seqSplits, int32(len(values))) //nolint:gosec // G115: bounded by array size
	}
	shape := NewShape(array.FromSlice(ctx, groupSplits), array.FromSlice(ctx, seqSplits))
	return Ragged[int32]{Shape: shape, Values: array.FromSlice(ctx, values)}
}

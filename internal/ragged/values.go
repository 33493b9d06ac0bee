package ragged

import (
	"math"

	"github.com/born-ml/k2/internal/array"
	"github.com/born-ml/k2/internal/check"
)

// RemoveValuesIf returns a copy of r without the values for which remove
// returns true. The structure of all axes but the last is kept.
func RemoveValuesIf[T Number](r Ragged[T], remove func(T) bool) Ragged[T] {
	ctx := r.Context()
	last := r.NumAxes() - 1
	splits := r.Shape.RowSplits(last).Data()
	values := r.Values.Data()

	newSplits := array.NewArray1[int32](ctx, len(splits))
	dst := newSplits.Data()
	kept := make([]T, 0, len(values))
	for i := 0; i+1 < len(splits); i++ {
		for _, v := range values[splits[i]:splits[i+1]] {
			if !remove(v) {
				kept = append(kept, v)
			}
		}
		dst[i+1] = int32(len(kept)) //nolint:gosec // G115: bounded by array size
	}
	rowSplits := append(append([]array.Array1[int32](nil), r.Shape.rowSplits[:last-1]...), newSplits)
	return Ragged[T]{Shape: NewShape(rowSplits...), Values: array.FromSlice(ctx, kept)}
}

// RemoveValuesLeq removes values less than or equal to cutoff.
func RemoveValuesLeq[T Number](r Ragged[T], cutoff T) Ragged[T] {
	return RemoveValuesIf(r, func(v T) bool { return v <= cutoff })
}

// RemoveValuesEq removes values equal to target.
func RemoveValuesEq[T Number](r Ragged[T], target T) Ragged[T] {
	return RemoveValuesIf(r, func(v T) bool { return v == target })
}

// NormalizePerSublist divides each sublist on the last axis by its sum, or
// with useLog subtracts its log-sum-exp. The shape is shared, values copied.
func NormalizePerSublist[T Float](r Ragged[T], useLog bool) Ragged[T] {
	var agg array.Array1[T]
	if useLog {
		agg = LogSumPerSublist(r, T(math.Inf(-1)))
	} else {
		agg = SumPerSublist(r, 0)
	}
	ids := r.Shape.RowIDs(r.NumAxes() - 1).Data()
	out := array.NewArray1[T](r.Context(), r.Values.Dim())
	src, dst, a := r.Values.Data(), out.Data(), agg.Data()
	for j, row := range ids {
		if useLog {
			dst[j] = src[j] - a[row]
		} else {
			dst[j] = src[j] / a[row]
		}
	}
	return Ragged[T]{Shape: r.Shape, Values: out}
}

// AddPerSublist returns r with alpha*value[i] added to every element of
// sublist i on the last axis. The shape is shared, values copied.
func AddPerSublist[T Number](r Ragged[T], value array.Array1[T], alpha T) Ragged[T] {
	check.Eq(value.Dim(), r.Shape.NumSublists(), "number of added values")
	ids := r.Shape.RowIDs(r.NumAxes() - 1).Data()
	out := array.NewArray1[T](r.Context(), r.Values.Dim())
	src, dst, v := r.Values.Data(), out.Data(), value.Data()
	for j, row := range ids {
		dst[j] = src[j] + alpha*v[row]
	}
	return Ragged[T]{Shape: r.Shape, Values: out}
}

// PadMode selects how Pad fills the tail of short sublists.
type PadMode int

// Padding modes.
const (
	// PadConstant fills with the padding value.
	PadConstant PadMode = iota
	// PadReplicate repeats the last element of the sublist; empty sublists
	// are filled with the padding value.
	PadReplicate
)

// Pad converts a 2-axis ragged array to a dense [Dim0, MaxSize] array.
func Pad[T Number](r Ragged[T], mode PadMode, value T) array.Array2[T] {
	check.Eq(r.NumAxes(), 2, "number of axes")
	rows := r.Sublists()
	out := array.NewArray2[T](r.Context(), len(rows), r.Shape.MaxSize(1))
	for i, sub := range rows {
		row := out.Row(i)
		n := copy(row, sub)
		fill := value
		if mode == PadReplicate && n > 0 {
			fill = sub[n-1]
		}
		for j := n; j < len(row); j++ {
			row[j] = fill
		}
	}
	return out
}

// IndexValues returns a ragged array shaped like indexes whose values are
// src[index], or defaultValue where the index is -1.
func IndexValues[T Number](src array.Array1[T], indexes Ragged[int32], defaultValue T) Ragged[T] {
	idx := indexes.Values.Data()
	out := array.NewArray1[T](indexes.Context(), len(idx))
	s, dst := src.Data(), out.Data()
	for j, i := range idx {
		if i == -1 {
			dst[j] = defaultValue
			continue
		}
		check.True(i >= 0 && int(i) < len(s), "index %d out of range [0, %d)", i, len(s))
		dst[j] = s[i]
	}
	return Ragged[T]{Shape: indexes.Shape, Values: out}
}

// IndexAndSum returns, for each sublist on the last axis of indexes, the sum
// of src over its indexes. Indexes of -1 are skipped.
func IndexAndSum[T Number](src array.Array1[T], indexes Ragged[int32]) array.Array1[T] {
	s := src.Data()
	return reduce(indexes, func(sub []int32, _ int) T {
		var sum T
		for _, i := range sub {
			if i == -1 {
				continue
			}
			check.True(i >= 0 && int(i) < len(s), "index %d out of range [0, %d)", i, len(s))
			sum += s[i]
		}
		return sum
	})
}

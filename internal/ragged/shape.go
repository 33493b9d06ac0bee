// Package ragged implements ragged arrays: variable-length sublists stored as
// a flat value array plus row splits, over two or more axes, and the
// per-sublist algorithms on them.
//
// Functions in this package assume valid arguments and fail with a
// *check.Failure panic otherwise; validation of user input belongs to callers.
package ragged

import (
	"fmt"
	"strings"

	"github.com/born-ml/k2/internal/array"
	"github.com/born-ml/k2/internal/check"
)

// Shape describes the structure of a ragged array with NumAxes() >= 2 axes.
//
// For axis >= 1, RowSplits(axis) has TotSize(axis-1)+1 entries; sublist i
// on axis-1 covers elements RowSplits(axis)[i] up to RowSplits(axis)[i+1]
// on axis.
type Shape struct {
	rowSplits []array.Array1[int32]
}

// NewShape creates a shape from the row splits of axes 1..n-1.
func NewShape(rowSplits ...array.Array1[int32]) Shape {
	check.True(len(rowSplits) >= 1, "a ragged shape needs at least 2 axes")
	for i, rs := range rowSplits {
		check.True(rs.Dim() >= 1, "row splits of axis %d are empty", i+1)
		data := rs.Data()
		check.Eq(data[0], int32(0), fmt.Sprintf("row splits of axis %d start", i+1))
		for j := 1; j < len(data); j++ {
			check.True(data[j] >= data[j-1], "row splits of axis %d decrease at %d", i+1, j)
		}
		if i+1 < len(rowSplits) {
			check.Eq(int(rs.Back())+1, rowSplits[i+1].Dim(), fmt.Sprintf("row splits of axis %d size", i+2))
		}
	}
	return Shape{rowSplits: rowSplits}
}

// ShapeFromSplits validates row splits given as slices and copies them to ctx.
func ShapeFromSplits(ctx array.Context, rowSplits [][]int32) (Shape, error) {
	if len(rowSplits) == 0 {
		return Shape{}, fmt.Errorf("%w: a ragged shape needs at least 2 axes", ErrShape)
	}
	arrays := make([]array.Array1[int32], len(rowSplits))
	for i, rs := range rowSplits {
		axis := i + 1
		if len(rs) == 0 || rs[0] != 0 {
			return Shape{}, fmt.Errorf("%w: row splits of axis %d must start with 0", ErrShape, axis)
		}
		for j := 1; j < len(rs); j++ {
			if rs[j] < rs[j-1] {
				return Shape{}, fmt.Errorf("%w: row splits of axis %d decrease at index %d", ErrShape, axis, j)
			}
		}
		if i+1 < len(rowSplits) && int(rs[len(rs)-1])+1 != len(rowSplits[i+1]) {
			return Shape{}, fmt.Errorf("%w: axis %d has %d elements but the row splits of axis %d have %d entries",
				ErrShape, axis, rs[len(rs)-1], axis+1, len(rowSplits[i+1]))
		}
		arrays[i] = array.FromSlice(ctx, rs)
	}
	return Shape{rowSplits: arrays}, nil
}

// RegularShape returns the shape of a dense array with the given dims.
func RegularShape(ctx array.Context, dims ...int) Shape {
	check.True(len(dims) >= 2, "a ragged shape needs at least 2 axes, got %d", len(dims))
	splits := make([]array.Array1[int32], len(dims)-1)
	rows := dims[0]
	for i := range splits {
		n := dims[i+1]
		rs := array.NewArray1[int32](ctx, rows+1)
		data := rs.Data()
		for j := range data {
			data[j] = int32(j * n) //nolint:gosec // G115: bounded by tensor size
		}
		splits[i] = rs
		rows *= n
	}
	return Shape{rowSplits: splits}
}

// IsValid reports whether the shape has been initialized.
func (s Shape) IsValid() bool { return len(s.rowSplits) > 0 }

// NumAxes returns the number of axes.
func (s Shape) NumAxes() int { return len(s.rowSplits) + 1 }

// Dim0 returns the number of sublists on axis 0.
func (s Shape) Dim0() int { return s.rowSplits[0].Dim() - 1 }

// Context returns the context the row splits live on.
func (s Shape) Context() array.Context { return s.rowSplits[0].Context() }

func (s Shape) checkAxis(axis, lo int) {
	check.True(axis >= lo && axis < s.NumAxes(), "axis %d out of range [%d, %d)", axis, lo, s.NumAxes())
}

// RowSplits returns the row splits of axis, for 1 <= axis < NumAxes().
func (s Shape) RowSplits(axis int) array.Array1[int32] {
	s.checkAxis(axis, 1)
	return s.rowSplits[axis-1]
}

// RowIDs returns, for every element on axis, the index of the sublist on
// axis-1 containing it.
func (s Shape) RowIDs(axis int) array.Array1[int32] {
	splits := s.RowSplits(axis)
	ids := array.NewArray1[int32](splits.Context(), s.TotSize(axis))
	rowIDs(splits.Data(), ids.Data())
	return ids
}

func rowIDs(splits, ids []int32) {
	for i := 0; i+1 < len(splits); i++ {
		for j := splits[i]; j < splits[i+1]; j++ {
			ids[j] = int32(i) //nolint:gosec // G115: bounded by splits length
		}
	}
}

// TotSize returns the total number of elements on axis.
func (s Shape) TotSize(axis int) int {
	s.checkAxis(axis, 0)
	if axis == 0 {
		return s.Dim0()
	}
	return int(s.rowSplits[axis-1].Back())
}

// NumElements returns the number of values, i.e. TotSize of the last axis.
func (s Shape) NumElements() int { return s.TotSize(s.NumAxes() - 1) }

// NumSublists returns the number of sublists on the last axis.
func (s Shape) NumSublists() int { return s.TotSize(s.NumAxes() - 2) }

// MaxSize returns the length of the longest sublist on axis-1, for axis >= 1.
func (s Shape) MaxSize(axis int) int {
	data := s.RowSplits(axis).Data()
	maxSize := 0
	for i := 0; i+1 < len(data); i++ {
		maxSize = max(maxSize, int(data[i+1]-data[i]))
	}
	return maxSize
}

// Equal reports whether s and other have identical row splits.
func (s Shape) Equal(other Shape) bool {
	if s.NumAxes() != other.NumAxes() {
		return false
	}
	for i := range s.rowSplits {
		a, b := s.rowSplits[i].Data(), other.rowSplits[i].Data()
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if a[j] != b[j] {
				return false
			}
		}
	}
	return true
}

// To returns s if its row splits are usable on ctx, otherwise a copy on ctx.
func (s Shape) To(ctx array.Context) Shape {
	if ctx.IsCompatible(s.Context()) {
		return s
	}
	splits := make([]array.Array1[int32], len(s.rowSplits))
	for i, rs := range s.rowSplits {
		splits[i] = rs.To(ctx)
	}
	return Shape{rowSplits: splits}
}

// Clone returns a deep copy of the shape.
func (s Shape) Clone() Shape {
	splits := make([]array.Array1[int32], len(s.rowSplits))
	for i, rs := range s.rowSplits {
		splits[i] = rs.Clone()
	}
	return Shape{rowSplits: splits}
}

// String renders the structure with x for each value, e.g. "[ [ x x ] [ ] ]".
func (s Shape) String() string {
	var b strings.Builder
	var walk func(axis, begin, end int)
	walk = func(axis, begin, end int) {
		for i := begin; i < end; i++ {
			if axis == s.NumAxes()-1 {
				b.WriteString("x ")
				continue
			}
			b.WriteString("[ ")
			splits := s.rowSplits[axis].Data()
			walk(axis+1, int(splits[i]), int(splits[i+1]))
			b.WriteString("] ")
		}
	}
	b.WriteString("[ ")
	walk(0, 0, s.Dim0())
	b.WriteString("]")
	return b.String()
}

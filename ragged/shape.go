// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ragged

import (
	"fmt"

	"github.com/born-ml/k2/internal/bridge"
	"github.com/born-ml/k2/internal/ragged"
	"github.com/born-ml/k2/tensor"
)

// Shape is the structure of a ragged tensor: the row splits of every axis
// after the first.
type Shape struct {
	s ragged.Shape
}

// NewShape creates a shape from the row splits of axes 1..N-1, each a 1-D
// int32 tensor. Row splits start at 0, never decrease, and the last entry of
// the row splits of axis i is one less than the length of those of axis i+1.
// The shape lives on the place of the first tensor.
//
// Example:
//
//	// [ [x x] [] [x] ]
//	splits, _ := tensor.FromSlice([]int32{0, 2, 2, 3}, tensor.Shape{4}, tensor.CPUPlace())
//	shape, err := ragged.NewShape(splits)
func NewShape(rowSplits ...*tensor.RawTensor) (*Shape, error) {
	if len(rowSplits) == 0 {
		return nil, fmt.Errorf("%w: no row splits", ErrShape)
	}
	place := rowSplits[0].Place()
	if err := checkPlace(place); err != nil {
		return nil, err
	}
	splits := make([][]int32, len(rowSplits))
	for i, t := range rowSplits {
		if t.Dim() != 1 {
			return nil, fmt.Errorf("%w: row splits of axis %d have rank %d", ErrShape, i+1, t.Dim())
		}
		if t.DType() != tensor.Int32 {
			return nil, fmt.Errorf("%w: row splits of axis %d are %s, not int32", ErrDtype, i+1, t.DType())
		}
		splits[i] = tensor.Values[int32](t)
	}
	s, err := ragged.ShapeFromSplits(bridge.GetContext(place), splits)
	if err != nil {
		return nil, err
	}
	return &Shape{s: s}, nil
}

// NumAxes returns the number of axes, at least 2.
func (s *Shape) NumAxes() int { return s.s.NumAxes() }

// Dim0 returns the number of sublists on axis 0.
func (s *Shape) Dim0() int { return s.s.Dim0() }

// NumElements returns the number of values.
func (s *Shape) NumElements() int { return s.s.NumElements() }

// Place returns the place of the row splits.
func (s *Shape) Place() tensor.Place { return bridge.PlaceOf(s.s.Context()) }

// TotSize returns the number of elements on axis.
func (s *Shape) TotSize(axis int) (int, error) {
	if err := checkAxis(axis, 0, s.NumAxes()); err != nil {
		return 0, err
	}
	return s.s.TotSize(axis), nil
}

// RowSplits returns the row splits of axis, for 1 <= axis < NumAxes().
// The tensor aliases the shape and must not be modified.
func (s *Shape) RowSplits(axis int) (*tensor.RawTensor, error) {
	if err := checkAxis(axis, 1, s.NumAxes()); err != nil {
		return nil, err
	}
	return bridge.Array1ToTensor(s.s.RowSplits(axis)), nil
}

// RowIDs returns, for each element of axis, the index of its sublist on
// axis-1, for 1 <= axis < NumAxes().
func (s *Shape) RowIDs(axis int) (*tensor.RawTensor, error) {
	if err := checkAxis(axis, 1, s.NumAxes()); err != nil {
		return nil, err
	}
	return bridge.Array1ToTensor(s.s.RowIDs(axis)), nil
}

// Equal reports whether s and other have the same structure.
func (s *Shape) Equal(other *Shape) bool { return s.s.Equal(other.s) }

// String renders the structure with an x per value, e.g. "[ [ x x ] [ ] [ x ] ]".
func (s *Shape) String() string { return s.s.String() }

func checkAxis(axis, lo, hi int) error {
	if axis < lo || axis >= hi {
		return fmt.Errorf("%w: axis %d not in [%d, %d)", ErrAxis, axis, lo, hi)
	}
	return nil
}

func checkPlace(place tensor.Place) error {
	if place.Type != tensor.CPU && place.Type != tensor.CUDA {
		return fmt.Errorf("%w: %s", ErrDevice, place)
	}
	if place.Index < 0 {
		return fmt.Errorf("%w: negative index in %s", ErrDevice, place)
	}
	return nil
}

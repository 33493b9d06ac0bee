// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ragged

import (
	"errors"

	"github.com/born-ml/k2/internal/ragged"
)

// Errors returned for invalid input. Test with errors.Is.
var (
	// ErrParse reports text or a nested list that is not a ragged tensor.
	ErrParse = ragged.ErrParse

	// ErrShape reports invalid row splits or mismatched sizes.
	ErrShape = ragged.ErrShape

	// ErrDtype reports an element type the operation does not support.
	ErrDtype = ragged.ErrDtype

	// ErrAxis reports an axis out of range for the operation.
	ErrAxis = ragged.ErrAxis

	// ErrIndex reports an index out of range.
	ErrIndex = ragged.ErrIndex

	// ErrDevice reports a place other than the CPU or a CUDA device, or
	// operands on different devices.
	ErrDevice = errors.New("unsupported device")

	// ErrNoGrad reports a backward pass on a tensor that tracks no gradients.
	ErrNoGrad = errors.New("no gradients are tracked")

	// ErrTape reports operands whose gradients are tracked by different tapes.
	ErrTape = errors.New("operands are tracked by different gradient tapes")
)

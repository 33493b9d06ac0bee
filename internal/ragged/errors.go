package ragged

import "errors"

// Sentinel errors for invalid user input.
var (
	ErrShape = errors.New("invalid ragged shape")
	ErrParse = errors.New("cannot parse ragged tensor")
	ErrDtype = errors.New("unsupported dtype")
	ErrAxis  = errors.New("invalid axis")
	ErrIndex = errors.New("invalid index")
)

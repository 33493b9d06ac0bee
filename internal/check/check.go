// Package check implements the fatal tier of error handling.
//
// A failed check means a caller violated a precondition that is not reachable
// from user input: an unsupported device or element type, a rank or dtype
// mismatch at a conversion boundary, a non-unit innermost stride. These are
// programmer errors, so they panic with a *Failure instead of returning an
// error. Front-end packages validate user input before reaching a check.
package check

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// Failure is the value passed to panic by a failed check.
type Failure struct {
	File string
	Line int
	Msg  string
}

// Error implements the error interface so recovered failures can be wrapped.
func (f *Failure) Error() string {
	return fmt.Sprintf("%s:%d: check failed: %s", f.File, f.Line, f.Msg)
}

func fail(skip int, msg string) {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		file, line = "???", 0
	}
	panic(&Failure{File: filepath.Base(file), Line: line, Msg: msg})
}

// Fatalf panics unconditionally with a formatted message.
func Fatalf(format string, args ...any) {
	fail(2, fmt.Sprintf(format, args...))
}

// True panics if cond is false.
func True(cond bool, format string, args ...any) {
	if !cond {
		fail(2, fmt.Sprintf(format, args...))
	}
}

// Eq panics if got != want.
//
// Example:
//
//	check.Eq(len(shape), 1, "expected dim")
//	// panics with "expected dim: 2 != 1" for a 2-D tensor
func Eq[T comparable](got, want T, what string) {
	if got != want {
		fail(2, fmt.Sprintf("%s: %v != %v", what, got, want))
	}
}

// Recover converts a panicking *Failure into an error. Other panics propagate.
//
// Intended for front ends that want to report a failed check instead of
// terminating:
//
//	defer check.Recover(&err)
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if f, ok := r.(*Failure); ok {
		*err = f
		return
	}
	panic(r)
}

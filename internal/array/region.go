package array

import (
	"unsafe"
)

// Region is a block of memory allocated by a Context, shared by the arrays
// that reference it.
//
// A Region created by NewRegionFrom wraps memory owned by another object
// (for example a framework tensor) and keeps that owner reachable.
type Region struct {
	ctx   Context
	data  []byte
	owner any
}

// NewRegion allocates a zeroed region of the given size on ctx.
func NewRegion(ctx Context, bytes int) *Region {
	return &Region{ctx: ctx, data: ctx.Allocate(bytes)}
}

// NewRegionFrom wraps data, owned by owner, as a region on ctx. No copy is made.
func NewRegionFrom(ctx Context, data []byte, owner any) *Region {
	return &Region{ctx: ctx, data: data, owner: owner}
}

// Context returns the context the memory belongs to.
func (r *Region) Context() Context { return r.ctx }

// Bytes returns the region's memory.
func (r *Region) Bytes() []byte { return r.data }

// Size returns the region size in bytes.
func (r *Region) Size() int { return len(r.data) }

// Owner returns the object owning wrapped memory, or nil.
func (r *Region) Owner() any { return r.owner }

func elemSize[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// sliceOf views n elements of type T starting at data[0].
func sliceOf[T any](data []byte, n int) []T {
	if n == 0 {
		return []T{}
	}
	//nolint:gosec // unsafe.Slice for zero-copy views, bounds checked by callers
	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), n)
}

// bytesOf views the memory of s as bytes.
func bytesOf[T any](s []T) []byte {
	if len(s) == 0 {
		return []byte{}
	}
	//nolint:gosec // unsafe.Slice for zero-copy views
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*elemSize[T]())
}

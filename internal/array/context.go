// Package array provides contexts, memory regions and typed 1-D/2-D arrays.
//
// Arrays never own memory directly: they reference a *Region at a byte
// offset, and many arrays may share one Region. A Region belongs to a Context,
// which names the device the memory lives on.
package array

import (
	"fmt"
	"sync"
)

// DeviceType is the kind of device a Context allocates on.
type DeviceType int

// Device types.
const (
	DeviceUnk DeviceType = iota
	DeviceCPU
	DeviceCUDA
)

// String returns a human-readable device name.
func (d DeviceType) String() string {
	switch d {
	case DeviceCPU:
		return "cpu"
	case DeviceCUDA:
		return "cuda"
	default:
		return "unknown"
	}
}

// Context is an execution context: it selects the backend for array
// operations and allocates Regions on its device.
type Context interface {
	// DeviceType returns the kind of device.
	DeviceType() DeviceType

	// DeviceID returns the device index, -1 for the host.
	DeviceID() int

	// Allocate returns zeroed memory of the given size.
	Allocate(bytes int) []byte

	// IsCompatible reports whether memory of other can be used directly by this context.
	IsCompatible(other Context) bool

	String() string
}

type cpuContext struct{}

func (cpuContext) DeviceType() DeviceType { return DeviceCPU }
func (cpuContext) DeviceID() int          { return -1 }
func (cpuContext) Allocate(n int) []byte  { return make([]byte, n) }
func (cpuContext) String() string         { return "cpu" }

func (cpuContext) IsCompatible(other Context) bool {
	return other != nil && other.DeviceType() == DeviceCPU
}

// cudaContext is an accelerator context. Its memory is host-addressable, so
// arrays on it can be read and written from Go; kernels still dispatch on the
// context's device type.
type cudaContext struct {
	id int
}

func (c *cudaContext) DeviceType() DeviceType { return DeviceCUDA }
func (c *cudaContext) DeviceID() int          { return c.id }
func (c *cudaContext) Allocate(n int) []byte  { return make([]byte, n) }
func (c *cudaContext) String() string         { return fmt.Sprintf("cuda:%d", c.id) }

func (c *cudaContext) IsCompatible(other Context) bool {
	return other != nil && other.DeviceType() == DeviceCUDA && other.DeviceID() == c.id
}

var (
	cpuCtx Context = cpuContext{}

	cudaMu   sync.Mutex
	cudaCtxs = map[int]*cudaContext{}
)

// GetCPUContext returns the host context.
func GetCPUContext() Context {
	return cpuCtx
}

// GetCUDAContext returns the accelerator context for the given device index.
// Contexts are cached, so equal indexes yield the same Context.
func GetCUDAContext(id int) Context {
	if id < 0 {
		id = 0
	}
	cudaMu.Lock()
	defer cudaMu.Unlock()
	c, ok := cudaCtxs[id]
	if !ok {
		c = &cudaContext{id: id}
		cudaCtxs[id] = c
	}
	return c
}

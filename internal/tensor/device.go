package tensor

import (
	"fmt"
	"strconv"
	"strings"
)

// DeviceType represents the kind of compute device holding tensor memory.
type DeviceType int

// Device types known to the framework. Only CPU and CUDA can be bridged to
// k2 arrays; the others exist so that unsupported places can be represented.
const (
	CPU DeviceType = iota
	CUDA
	Vulkan
	Metal
	WebGPU
)

// String returns a human-readable device name.
func (d DeviceType) String() string {
	switch d {
	case CPU:
		return "cpu"
	case CUDA:
		return "cuda"
	case Vulkan:
		return "vulkan"
	case Metal:
		return "metal"
	case WebGPU:
		return "webgpu"
	default:
		return "unknown"
	}
}

// Place identifies a device instance: a device type plus an index.
// The index is ignored for CPU.
type Place struct {
	Type  DeviceType
	Index int
}

// CPUPlace returns the host place.
func CPUPlace() Place {
	return Place{Type: CPU}
}

// CUDAPlace returns the place of the accelerator with the given index.
func CUDAPlace(index int) Place {
	return Place{Type: CUDA, Index: index}
}

// String formats the place as "cpu" or "cuda:0".
func (p Place) String() string {
	if p.Type == CPU {
		return "cpu"
	}
	return fmt.Sprintf("%s:%d", p.Type, p.Index)
}

// IsCPU reports whether p is the host place.
func (p Place) IsCPU() bool {
	return p.Type == CPU
}

// ParsePlace parses "cpu", "cuda", "cuda:1", "gpu:0", "vulkan", "metal" or "webgpu".
// A missing index means 0.
func ParsePlace(s string) (Place, error) {
	name, idx, hasIdx := strings.Cut(strings.ToLower(strings.TrimSpace(s)), ":")
	var p Place
	switch name {
	case "cpu":
		p.Type = CPU
	case "cuda", "gpu":
		p.Type = CUDA
	case "vulkan":
		p.Type = Vulkan
	case "metal":
		p.Type = Metal
	case "webgpu":
		p.Type = WebGPU
	default:
		return Place{}, fmt.Errorf("unknown device %q", s)
	}
	if hasIdx {
		n, err := strconv.Atoi(idx)
		if err != nil || n < 0 {
			return Place{}, fmt.Errorf("invalid device index in %q", s)
		}
		if p.Type == CPU && n != 0 {
			return Place{}, fmt.Errorf("invalid device index in %q", s)
		}
		p.Index = n
	}
	return p, nil
}

// Package bridge converts between k2 arrays and framework tensors.
//
// Conversions alias memory instead of copying it. The destination object holds
// the source's owner (the array Region, or the tensor) so the memory stays
// valid for as long as either side is reachable.
//
// Arguments outside the supported device and element-type sets, rank or dtype
// mismatches and non-unit innermost strides are caller bugs: they fail with a
// *check.Failure panic rather than an error.
package bridge

import (
	"github.com/born-ml/k2/internal/array"
	"github.com/born-ml/k2/internal/check"
	"github.com/born-ml/k2/internal/tensor"
)

// DeviceToTensor maps an array device type to the framework device type.
func DeviceToTensor(d array.DeviceType) tensor.DeviceType {
	switch d {
	case array.DeviceCPU:
		return tensor.CPU
	case array.DeviceCUDA:
		return tensor.CUDA
	default:
		check.Fatalf("unsupported device type: %s", d)
		return 0
	}
}

// DeviceFromTensor maps a framework device type to the array device type.
func DeviceFromTensor(d tensor.DeviceType) array.DeviceType {
	switch d {
	case tensor.CPU:
		return array.DeviceCPU
	case tensor.CUDA:
		return array.DeviceCUDA
	default:
		check.Fatalf("unsupported device type: %s", d)
		return array.DeviceUnk
	}
}

// GetContext returns the array context for a framework place.
func GetContext(place tensor.Place) array.Context {
	switch DeviceFromTensor(place.Type) {
	case array.DeviceCPU:
		return array.GetCPUContext()
	default:
		return array.GetCUDAContext(place.Index)
	}
}

// GetContextFromTensor returns the array context for the place of t.
func GetContextFromTensor(t *tensor.RawTensor) array.Context {
	return GetContext(t.Place())
}

// PlaceOf returns the framework place of an array context.
func PlaceOf(ctx array.Context) tensor.Place {
	switch DeviceToTensor(ctx.DeviceType()) {
	case tensor.CPU:
		return tensor.CPUPlace()
	default:
		return tensor.CUDAPlace(ctx.DeviceID())
	}
}

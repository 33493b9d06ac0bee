// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ragged

import (
	"github.com/born-ml/k2/tensor"
)

// Option configures FromString and FromList.
type Option func(*options)

type options struct {
	dtype    tensor.DataType
	hasDtype bool
	place    tensor.Place
	hasPlace bool
}

// WithDtype sets the element type: tensor.Int32, tensor.Float32 or
// tensor.Float64. Without it the type is inferred: int32 if every number is
// an int32, float32 otherwise.
func WithDtype(dtype tensor.DataType) Option {
	return func(o *options) {
		o.dtype = dtype
		o.hasDtype = true
	}
}

// WithDevice sets the place the tensor is created on. The default is the CPU.
func WithDevice(place tensor.Place) Option {
	return func(o *options) {
		o.place = place
		o.hasPlace = true
	}
}

func newOptions(opts []Option) options {
	o := options{place: tensor.CPUPlace()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

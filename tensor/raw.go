// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/k2/internal/tensor"
)

// RawTensor is the low-level tensor representation.
//
// RawTensor provides:
//   - Shape and type information via Shape(), Strides(), DType(), Place()
//   - Type-safe data access via AsFloat32(), AsInt32(), etc.
//   - Aliasing of foreign memory via an owner kept alive by the tensor
//   - Reference counting via Clone() and Release()
//   - Gradient bookkeeping via SetRequiresGrad() and Grad()
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPUPlace())
//	data := raw.AsFloat32()  // Type-safe access
//	clone := raw.Clone()     // Shares buffer via reference counting
type RawTensor = tensor.RawTensor

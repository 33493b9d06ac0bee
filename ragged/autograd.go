// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ragged

import (
	"fmt"

	"github.com/born-ml/k2/internal/autodiff"
	"github.com/born-ml/k2/internal/autodiff/ops"
	"github.com/born-ml/k2/internal/bridge"
	"github.com/born-ml/k2/internal/ragged"
	"github.com/born-ml/k2/tensor"
)

// SetRequiresGrad enables or disables gradient tracking for the values of r.
// Only float32 and float64 values can track gradients.
//
// Results of operations on r track gradients too; Backward then stores the
// gradient of every tracked tensor, reachable through Grad.
func (r *RaggedAny) SetRequiresGrad(requiresGrad bool) (*RaggedAny, error) {
	if requiresGrad && !r.DType().IsFloat() {
		return nil, fmt.Errorf("%w: only float values can require gradients, got %s", ErrDtype, r.DType())
	}
	r.data.SetRequiresGrad(requiresGrad)
	if requiresGrad && r.tape == nil {
		r.tape = newTape()
	}
	return r, nil
}

// RequiresGrad reports whether r tracks gradients.
func (r *RaggedAny) RequiresGrad() bool { return r.data.RequiresGrad() }

// Grad returns the gradient accumulated by Backward, a 1-D tensor shaped like
// Data, or nil.
func (r *RaggedAny) Grad() *tensor.RawTensor { return r.data.Grad() }

// Backward computes the gradient of the sum of output's elements with
// respect to every tracked tensor output depends on, adding it to their
// Grad. output must be a result of an operation on r, or of one on a
// result of r.
func (r *RaggedAny) Backward(output *tensor.RawTensor) error {
	if err := r.checkBackward(output); err != nil {
		return err
	}
	autodiff.Backward(r.tape, output)
	return nil
}

// BackwardWithGrad is Backward with an explicit gradient for output,
// shaped like output.
func (r *RaggedAny) BackwardWithGrad(output, grad *tensor.RawTensor) error {
	if err := r.checkBackward(output); err != nil {
		return err
	}
	if !grad.Shape().Equal(output.Shape()) || grad.DType() != output.DType() {
		return fmt.Errorf("%w: gradient %v does not match output %v", ErrShape, grad, output)
	}
	autodiff.BackwardWithGrad(r.tape, output, grad)
	return nil
}

func (r *RaggedAny) checkBackward(output *tensor.RawTensor) error {
	if r.tape == nil || r.tape.NumOps() == 0 || !output.RequiresGrad() {
		return ErrNoGrad
	}
	return nil
}

func newTape() *autodiff.GradientTape {
	tape := autodiff.NewGradientTape()
	tape.StartRecording()
	return tape
}

// recorder records the operation producing a result on the tape shared by
// its operands, if any of them tracks gradients.
type recorder struct {
	tape  *autodiff.GradientTape
	track bool
}

// tracker returns the recorder of an operation whose only ragged operand is
// r. It uses the tape of r, or a new one if ts track gradients.
func (r *RaggedAny) tracker(ts ...*tensor.RawTensor) *recorder {
	rec := &recorder{tape: r.tape, track: r.RequiresGrad()}
	for _, t := range ts {
		if t != nil && t.RequiresGrad() {
			rec.track = true
		}
	}
	if rec.track && rec.tape == nil {
		rec.tape = newTape()
	}
	return rec
}

// newRecorder returns the recorder of an operation over several ragged
// operands, which must not be tracked by different tapes.
func newRecorder(rs []*RaggedAny) (*recorder, error) {
	rec := &recorder{}
	for _, r := range rs {
		if r.tape != nil {
			if rec.tape != nil && rec.tape != r.tape {
				return nil, ErrTape
			}
			rec.tape = r.tape
		}
		rec.track = rec.track || r.RequiresGrad()
	}
	if rec.track && rec.tape == nil {
		rec.tape = newTape()
	}
	return rec, nil
}

// wrap returns a result sharing the operands' tape.
func (rec *recorder) wrap(a ragged.Any) *RaggedAny {
	return &RaggedAny{any: a, data: bridge.AnyToTensor(a), tape: rec.tape}
}

// record puts op on the tape and marks its output as tracked. Ops with
// integer outputs carry no gradient and are not recorded.
func (rec *recorder) record(op ops.Operation) {
	if !rec.track || !op.Output().DType().IsFloat() {
		return
	}
	op.Output().SetRequiresGrad(true)
	rec.tape.Record(op)
}

package autodiff

import (
	"fmt"

	"github.com/born-ml/k2/internal/autodiff/ops"
	"github.com/born-ml/k2/internal/tensor"
)

// Backward computes gradients of output using the tape, seeding the output
// gradient with ones, and stores the result in the Grad of every recorded
// tensor that requires grad. Existing gradients are accumulated into.
//
// Returns the full gradient map.
//
// Example:
//
//	tape := autodiff.NewGradientTape()
//	tape.StartRecording()
//	y := sumPerSublist(x, tape) // records a SegmentSumOp
//	autodiff.Backward(tape, y)
//	grad := x.Grad()
func Backward(tape *GradientTape, output *tensor.RawTensor) map[*tensor.RawTensor]*tensor.RawTensor {
	if tape.NumOps() == 0 {
		panic("backward: no operations recorded (did you forget to call StartRecording()?)")
	}
	return BackwardWithGrad(tape, output, Ones(output))
}

// BackwardWithGrad is Backward with an explicit output gradient.
func BackwardWithGrad(tape *GradientTape, output, outputGrad *tensor.RawTensor) map[*tensor.RawTensor]*tensor.RawTensor {
	if !outputGrad.Shape().Equal(output.Shape()) || outputGrad.DType() != output.DType() {
		panic(fmt.Sprintf("backward: gradient %v does not match output %v", outputGrad, output))
	}
	grads := tape.Backward(output, outputGrad)
	for t, g := range grads {
		if t == output || !t.RequiresGrad() {
			continue
		}
		if existing := t.Grad(); existing != nil {
			g = ops.Accumulate(existing, g)
		}
		t.SetGrad(g)
	}
	return grads
}

// Ones returns a float tensor of ones shaped like t.
func Ones(t *tensor.RawTensor) *tensor.RawTensor {
	switch t.DType() {
	case tensor.Float32:
		return tensor.Full[float32](t.Shape(), 1, t.Place())
	case tensor.Float64:
		return tensor.Full[float64](t.Shape(), 1, t.Place())
	default:
		panic(fmt.Sprintf("backward: unsupported dtype %s (only float32/float64 supported)", t.DType()))
	}
}

package ops

import (
	"github.com/born-ml/k2/internal/tensor"
)

// CatOp represents the concatenation of 1-D tensors.
//
// Forward: output = Cat([input1, input2, ...])
//
// Backward:
//
//	Split gradOutput at the input boundaries; each input receives the
//	slice corresponding to its contribution.
//
// Example:
//
//	inputs:     [1, 2], [3, 4, 5]
//	output:     [1, 2, 3, 4, 5]
//	gradInput1: [g0, g1]
//	gradInput2: [g2, g3, g4]
type CatOp struct {
	inputs []*tensor.RawTensor // Input tensors that were concatenated
	output *tensor.RawTensor   // Concatenated output tensor
}

// NewCatOp creates a new CatOp.
func NewCatOp(inputs []*tensor.RawTensor, output *tensor.RawTensor) *CatOp {
	return &CatOp{
		inputs: inputs,
		output: output,
	}
}

// Inputs returns the input tensors.
func (op *CatOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the output tensor.
func (op *CatOp) Output() *tensor.RawTensor {
	return op.output
}

// Backward splits the output gradient into one gradient per input.
func (op *CatOp) Backward(gradOutput *tensor.RawTensor) []*tensor.RawTensor {
	grads := make([]*tensor.RawTensor, len(op.inputs))
	offset := 0
	for i, input := range op.inputs {
		n := input.NumElements()
		gradInput := newLike(input)
		dispatch(gradInput,
			func() { copy(floats[float32](gradInput), floats[float32](gradOutput)[offset:offset+n]) },
			func() { copy(floats[float64](gradInput), floats[float64](gradOutput)[offset:offset+n]) })
		grads[i] = gradInput
		offset += n
	}
	return grads
}

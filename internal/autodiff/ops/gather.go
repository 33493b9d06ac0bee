package ops

import (
	"github.com/born-ml/k2/internal/tensor"
)

// GatherOp represents selecting values of a 1-D tensor by index.
//
// Forward: y[j] = x[index[j]], or a constant where index[j] == -1
//
// Backward:
//
//	Scatter-add grad_y to grad_x at the positions given by index.
//	Positions selected several times accumulate; -1 entries contribute nothing.
//
// Example:
//
//	x:      [10, 20, 30, 40]
//	index:  [2, 0, -1, 2]
//	y:      [30, 10, c, 30]
//	grad_x: [g1, 0, g0+g3, 0]
type GatherOp struct {
	inputs []*tensor.RawTensor // [x]
	output *tensor.RawTensor
	index  []int32 // source position of each output element, or -1
}

// NewGatherOp creates a new GatherOp.
func NewGatherOp(x, output *tensor.RawTensor, index []int32) *GatherOp {
	return &GatherOp{
		inputs: []*tensor.RawTensor{x},
		output: output,
		index:  index,
	}
}

// Backward scatter-adds the output gradient to the gathered positions.
func (op *GatherOp) Backward(outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	gradX := newLike(op.inputs[0])
	dispatch(gradX,
		func() { scatterAdd(floats[float32](gradX), floats[float32](outputGrad), op.index) },
		func() { scatterAdd(floats[float64](gradX), floats[float64](outputGrad), op.index) })
	return []*tensor.RawTensor{gradX}
}

func scatterAdd[T float](dst, src []T, index []int32) {
	for j, i := range index {
		if i >= 0 {
			dst[i] += src[j]
		}
	}
}

// Inputs returns the input tensors [x].
// The index carries no gradient.
func (op *GatherOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the gathered tensor.
func (op *GatherOp) Output() *tensor.RawTensor {
	return op.output
}

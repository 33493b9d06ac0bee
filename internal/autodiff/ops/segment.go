package ops

import (
	"github.com/born-ml/k2/internal/tensor"
)

// SegmentSumOp represents a per-segment sum: y[r] = init + sum(x[j] for row(j) == r).
//
// Backward:
//
//	grad_x[j] = grad_y[row(j)]
type SegmentSumOp struct {
	inputs []*tensor.RawTensor // [x]
	output *tensor.RawTensor   // one entry per segment
	rowIDs []int32             // segment of each input element
}

// NewSegmentSumOp creates a new SegmentSumOp.
func NewSegmentSumOp(x, output *tensor.RawTensor, rowIDs []int32) *SegmentSumOp {
	return &SegmentSumOp{
		inputs: []*tensor.RawTensor{x},
		output: output,
		rowIDs: rowIDs,
	}
}

// Backward scatters each segment's gradient to the elements of the segment.
func (op *SegmentSumOp) Backward(outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	gradX := newLike(op.inputs[0])
	dispatch(gradX,
		func() { segmentSumBackward(floats[float32](gradX), floats[float32](outputGrad), op.rowIDs) },
		func() { segmentSumBackward(floats[float64](gradX), floats[float64](outputGrad), op.rowIDs) })
	return []*tensor.RawTensor{gradX}
}

func segmentSumBackward[T float](gradX, gradY []T, rowIDs []int32) {
	for j, r := range rowIDs {
		gradX[j] = gradY[r]
	}
}

// Inputs returns the input tensors [x].
func (op *SegmentSumOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the per-segment sums.
func (op *SegmentSumOp) Output() *tensor.RawTensor {
	return op.output
}

// SegmentLogSumExpOp represents a per-segment log-sum-exp:
// y[r] = log(exp(init) + sum(exp(x[j]) for row(j) == r)).
//
// Backward:
//
//	grad_x[j] = grad_y[r] * exp(x[j] - y[r])
type SegmentLogSumExpOp struct {
	inputs []*tensor.RawTensor // [x]
	output *tensor.RawTensor
	rowIDs []int32
}

// NewSegmentLogSumExpOp creates a new SegmentLogSumExpOp.
func NewSegmentLogSumExpOp(x, output *tensor.RawTensor, rowIDs []int32) *SegmentLogSumExpOp {
	return &SegmentLogSumExpOp{
		inputs: []*tensor.RawTensor{x},
		output: output,
		rowIDs: rowIDs,
	}
}

// Backward distributes each segment's gradient by the softmax weight of each element.
func (op *SegmentLogSumExpOp) Backward(outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	x := op.inputs[0]
	gradX := newLike(x)
	dispatch(gradX,
		func() {
			logSumExpBackward(floats[float32](gradX), floats[float32](x),
				floats[float32](op.output), floats[float32](outputGrad), op.rowIDs)
		},
		func() {
			logSumExpBackward(floats[float64](gradX), floats[float64](x),
				floats[float64](op.output), floats[float64](outputGrad), op.rowIDs)
		})
	return []*tensor.RawTensor{gradX}
}

func logSumExpBackward[T float](gradX, x, y, gradY []T, rowIDs []int32) {
	for j, r := range rowIDs {
		gradX[j] = gradY[r] * exp(x[j]-y[r])
	}
}

// Inputs returns the input tensors [x].
func (op *SegmentLogSumExpOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the per-segment log-sum-exp values.
func (op *SegmentLogSumExpOp) Output() *tensor.RawTensor {
	return op.output
}

// SegmentNormalizeOp represents per-segment normalization.
//
// With useLog the forward pass is y[j] = x[j] - logsumexp(x[row(j)]) and
//
//	grad_x[j] = grad_y[j] - exp(y[j]) * sum(grad_y[k] for row(k) == row(j))
//
// Otherwise y[j] = x[j] / s[row(j)] with s the segment sum, and
//
//	grad_x[j] = (grad_y[j] - sum(grad_y[k] * y[k] for row(k) == row(j))) / s[row(j)]
type SegmentNormalizeOp struct {
	inputs  []*tensor.RawTensor // [x]
	output  *tensor.RawTensor   // same shape as x
	rowIDs  []int32
	numRows int
	useLog  bool
}

// NewSegmentNormalizeOp creates a new SegmentNormalizeOp.
func NewSegmentNormalizeOp(x, output *tensor.RawTensor, rowIDs []int32, numRows int, useLog bool) *SegmentNormalizeOp {
	return &SegmentNormalizeOp{
		inputs:  []*tensor.RawTensor{x},
		output:  output,
		rowIDs:  rowIDs,
		numRows: numRows,
		useLog:  useLog,
	}
}

// Backward computes the gradient of the normalization.
func (op *SegmentNormalizeOp) Backward(outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	x := op.inputs[0]
	gradX := newLike(x)
	dispatch(gradX,
		func() {
			normalizeBackward(floats[float32](gradX), floats[float32](x), floats[float32](op.output),
				floats[float32](outputGrad), op.rowIDs, op.numRows, op.useLog)
		},
		func() {
			normalizeBackward(floats[float64](gradX), floats[float64](x), floats[float64](op.output),
				floats[float64](outputGrad), op.rowIDs, op.numRows, op.useLog)
		})
	return []*tensor.RawTensor{gradX}
}

func normalizeBackward[T float](gradX, x, y, gradY []T, rowIDs []int32, numRows int, useLog bool) {
	dot := make([]T, numRows)
	if useLog {
		for j, r := range rowIDs {
			dot[r] += gradY[j]
		}
		for j, r := range rowIDs {
			gradX[j] = gradY[j] - exp(y[j])*dot[r]
		}
		return
	}
	sums := make([]T, numRows)
	for j, r := range rowIDs {
		dot[r] += gradY[j] * y[j]
		sums[r] += x[j]
	}
	for j, r := range rowIDs {
		gradX[j] = (gradY[j] - dot[r]) / sums[r]
	}
}

// Inputs returns the input tensors [x].
func (op *SegmentNormalizeOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the normalized values.
func (op *SegmentNormalizeOp) Output() *tensor.RawTensor {
	return op.output
}

// AddPerSegmentOp represents y[j] = x[j] + alpha * v[row(j)].
//
// Backward:
//
//	grad_x[j] = grad_y[j]
//	grad_v[r] = alpha * sum(grad_y[j] for row(j) == r)
type AddPerSegmentOp struct {
	inputs []*tensor.RawTensor // [x, v]
	output *tensor.RawTensor
	rowIDs []int32
	alpha  float64
}

// NewAddPerSegmentOp creates a new AddPerSegmentOp.
func NewAddPerSegmentOp(x, v, output *tensor.RawTensor, rowIDs []int32, alpha float64) *AddPerSegmentOp {
	return &AddPerSegmentOp{
		inputs: []*tensor.RawTensor{x, v},
		output: output,
		rowIDs: rowIDs,
		alpha:  alpha,
	}
}

// Backward passes the gradient through to x and reduces it per segment for v.
func (op *AddPerSegmentOp) Backward(outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	gradX := newLike(op.inputs[0])
	gradV := newLike(op.inputs[1])
	dispatch(gradX,
		func() {
			addPerSegmentBackward(floats[float32](gradX), floats[float32](gradV),
				floats[float32](outputGrad), op.rowIDs, float32(op.alpha))
		},
		func() {
			addPerSegmentBackward(floats[float64](gradX), floats[float64](gradV),
				floats[float64](outputGrad), op.rowIDs, op.alpha)
		})
	return []*tensor.RawTensor{gradX, gradV}
}

func addPerSegmentBackward[T float](gradX, gradV, gradY []T, rowIDs []int32, alpha T) {
	copy(gradX, gradY)
	for j, r := range rowIDs {
		gradV[r] += alpha * gradY[j]
	}
}

// Inputs returns the input tensors [x, v].
func (op *AddPerSegmentOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns x plus the scaled per-segment values.
func (op *AddPerSegmentOp) Output() *tensor.RawTensor {
	return op.output
}

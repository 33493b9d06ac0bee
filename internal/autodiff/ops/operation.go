// Package ops defines the differentiable operations recorded on a gradient tape.
//
// Each operation implements the Operation interface, which provides:
//   - Forward pass: computed by the caller, which records the op with its output
//   - Backward pass: computes gradients for inputs given the output gradient
//
// Supported operations are reductions and transforms over segments of a flat
// value tensor, where segment j of the output covers the values whose row id
// is j:
//   - SegmentSumOp: y[r] = init + sum(x[j]) (dy/dx[j] = 1)
//   - SegmentLogSumExpOp: y[r] = log(exp(init) + sum(exp(x[j]))) (dy/dx[j] = exp(x[j]-y[r]))
//   - SegmentNormalizeOp: y[j] = x[j]/sum(x) or x[j]-logsumexp(x)
//   - AddPerSegmentOp: y[j] = x[j] + alpha*v[row(j)]
//
// plus the value movements of indexing and concatenation:
//   - GatherOp: y[j] = x[index[j]]
//   - CatOp: y = concatenation of the inputs
package ops

import "github.com/born-ml/k2/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input tensor; an
	// entry is nil when no gradient flows to that input.
	//
	// Example for SegmentSumOp:
	//   inputs: [x]
	//   outputGrad: dL/dy, one entry per segment
	//   returns: [dL/dx] where dL/dx[j] = dL/dy[row(j)]
	Backward(outputGrad *tensor.RawTensor) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}

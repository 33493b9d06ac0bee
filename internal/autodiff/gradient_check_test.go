package autodiff_test

import (
	"math"
	"testing"

	"github.com/born-ml/k2/internal/autodiff"
	"github.com/born-ml/k2/internal/autodiff/ops"
	"github.com/born-ml/k2/internal/tensor"
)

// The forward passes below are reference implementations over float64; the
// gradients the ops compute are compared against central finite differences
// of loss(x) = sum(w * f(x)) for fixed weights w.

var (
	testRowIDs = []int32{0, 0, 0, 1, 2, 2}
	testX      = []float64{0.5, -1.25, 2, 0.75, -0.3, 1.1}
)

const numRows = 3

func logSumExpForward(x []float64) []float64 {
	y := make([]float64, numRows)
	for r := range y {
		y[r] = math.Exp(-2) // initial value -2
	}
	for j, r := range testRowIDs {
		y[r] += math.Exp(x[j])
	}
	for r := range y {
		y[r] = math.Log(y[r])
	}
	return y
}

func normalizeForward(useLog bool) func(x []float64) []float64 {
	return func(x []float64) []float64 {
		agg := make([]float64, numRows)
		for j, r := range testRowIDs {
			if useLog {
				agg[r] += math.Exp(x[j])
			} else {
				agg[r] += x[j]
			}
		}
		y := make([]float64, len(x))
		for j, r := range testRowIDs {
			if useLog {
				y[j] = x[j] - math.Log(agg[r])
			} else {
				y[j] = x[j] / agg[r]
			}
		}
		return y
	}
}

func weightedLoss(y []float64) float64 {
	loss := 0.0
	for i, v := range y {
		loss += float64(i+1) * v
	}
	return loss
}

func lossGrad(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = float64(i + 1)
	}
	return w
}

func numericalGrad(f func([]float64) []float64, x []float64) []float64 {
	const eps = 1e-6
	grad := make([]float64, len(x))
	for i := range x {
		plus := append([]float64(nil), x...)
		minus := append([]float64(nil), x...)
		plus[i] += eps
		minus[i] -= eps
		grad[i] = (weightedLoss(f(plus)) - weightedLoss(f(minus))) / (2 * eps)
	}
	return grad
}

func checkGrad(t *testing.T, name string, f func([]float64) []float64, build func(x, y *tensor.RawTensor) ops.Operation) {
	t.Helper()
	yData := f(testX)

	x := mustFromSlice(t, append([]float64(nil), testX...), tensor.Shape{len(testX)}).SetRequiresGrad(true)
	y := mustFromSlice(t, yData, tensor.Shape{len(yData)})

	tape := autodiff.NewGradientTape()
	tape.StartRecording()
	tape.Record(build(x, y))
	autodiff.BackwardWithGrad(tape, y, mustFromSlice(t, lossGrad(len(yData)), tensor.Shape{len(yData)}))

	want := numericalGrad(f, testX)
	got := tensor.Data[float64](x.Grad())
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-5 {
			t.Errorf("%s: grad[%d] = %.8f, numerical %.8f", name, i, got[i], want[i])
		}
	}
}

func TestGradientCheck_LogSumExp(t *testing.T) {
	checkGrad(t, "logsumexp", logSumExpForward, func(x, y *tensor.RawTensor) ops.Operation {
		return ops.NewSegmentLogSumExpOp(x, y, testRowIDs)
	})
}

func TestGradientCheck_Normalize(t *testing.T) {
	checkGrad(t, "normalize", normalizeForward(false), func(x, y *tensor.RawTensor) ops.Operation {
		return ops.NewSegmentNormalizeOp(x, y, testRowIDs, numRows, false)
	})
}

func TestGradientCheck_LogNormalize(t *testing.T) {
	checkGrad(t, "log normalize", normalizeForward(true), func(x, y *tensor.RawTensor) ops.Operation {
		return ops.NewSegmentNormalizeOp(x, y, testRowIDs, numRows, true)
	})
}

func TestGradientCheck_AddPerSegment(t *testing.T) {
	v := mustFromSlice(t, []float64{1, 2, 3}, tensor.Shape{3}).SetRequiresGrad(true)
	const alpha = 0.5
	forward := func(x []float64) []float64 {
		y := make([]float64, len(x))
		for j, r := range testRowIDs {
			y[j] = x[j] + alpha*tensor.Data[float64](v)[r]
		}
		return y
	}
	checkGrad(t, "add", forward, func(x, y *tensor.RawTensor) ops.Operation {
		return ops.NewAddPerSegmentOp(x, v, y, testRowIDs, alpha)
	})

	// grad_v[r] = alpha * sum of the loss weights of row r.
	want := []float64{alpha * (1 + 2 + 3), alpha * 4, alpha * (5 + 6)}
	for i, g := range tensor.Data[float64](v.Grad()) {
		if math.Abs(g-want[i]) > 1e-12 {
			t.Errorf("grad_v[%d] = %v, want %v", i, g, want[i])
		}
	}
}

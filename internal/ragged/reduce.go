package ragged

import (
	"math"

	"github.com/born-ml/k2/internal/array"
)

// reduce applies fn to each sublist of the last axis, writing one result per sublist.
func reduce[T Number, R any](r Ragged[T], fn func(sub []T, offset int) R) array.Array1[R] {
	splits := r.Shape.RowSplits(r.NumAxes() - 1).Data()
	values := r.Values.Data()
	out := array.NewArray1[R](r.Context(), len(splits)-1)
	dst := out.Data()
	for i := range dst {
		dst[i] = fn(values[splits[i]:splits[i+1]], int(splits[i]))
	}
	return out
}

// SumPerSublist returns initial plus the sum of each sublist on the last axis.
func SumPerSublist[T Number](r Ragged[T], initial T) array.Array1[T] {
	return reduce(r, func(sub []T, _ int) T {
		sum := initial
		for _, v := range sub {
			sum += v
		}
		return sum
	})
}

// LogSumPerSublist returns log(exp(initial) + sum(exp(x))) for each sublist on
// the last axis. Empty sublists yield initial.
func LogSumPerSublist[T Float](r Ragged[T], initial T) array.Array1[T] {
	return reduce(r, func(sub []T, _ int) T {
		maxVal := float64(initial)
		for _, v := range sub {
			maxVal = math.Max(maxVal, float64(v))
		}
		if math.IsInf(maxVal, -1) {
			return T(maxVal)
		}
		sum := math.Exp(float64(initial) - maxVal)
		for _, v := range sub {
			sum += math.Exp(float64(v) - maxVal)
		}
		return T(maxVal + math.Log(sum))
	})
}

// MaxPerSublist returns the maximum of initial and the elements of each
// sublist on the last axis.
func MaxPerSublist[T Number](r Ragged[T], initial T) array.Array1[T] {
	return reduce(r, func(sub []T, _ int) T {
		m := initial
		for _, v := range sub {
			m = max(m, v)
		}
		return m
	})
}

// MinPerSublist returns the minimum of initial and the elements of each
// sublist on the last axis.
func MinPerSublist[T Number](r Ragged[T], initial T) array.Array1[T] {
	return reduce(r, func(sub []T, _ int) T {
		m := initial
		for _, v := range sub {
			m = min(m, v)
		}
		return m
	})
}

// ArgMaxPerSublist returns, for each sublist on the last axis, the index into
// r.Values of its largest element, preferring the last one on ties. A sublist
// that is empty or whose elements are all below initial yields -1.
func ArgMaxPerSublist[T Number](r Ragged[T], initial T) array.Array1[int32] {
	return reduce(r, func(sub []T, offset int) int32 {
		best := int32(-1)
		bestVal := initial
		for i, v := range sub {
			if v >= bestVal {
				best = int32(offset + i) //nolint:gosec // G115: bounded by array size
				bestVal = v
			}
		}
		return best
	})
}

package ragged

import (
	"strconv"
	"strings"

	"github.com/born-ml/k2/internal/array"
)

// FormatValue formats v the way ToString prints values.
func FormatValue[T Number](v T) string {
	switch x := any(v).(type) {
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return ""
}

// Format renders r as nested brackets.
//
// Unless compact, the sublists of every axis but the last start on their own
// line, aligned under their opening bracket, assuming the text starts at
// column indent:
//
//	[[[1, 2, 3],
//	  [],
//	  [0]],
//	 [[2],
//	  [3, 10.5]]]
//
// With compact everything is on one line: [[[1, 2, 3], [], [0]], [[2], [3, 10.5]]].
func Format[T Number](r Ragged[T], compact bool, indent int) string {
	var b strings.Builder
	numAxes := r.NumAxes()
	values := r.Values.Data()
	var walk func(depth, begin, end int)
	walk = func(depth, begin, end int) {
		b.WriteByte('[')
		for i := begin; i < end; i++ {
			if i > begin {
				b.WriteString(",")
				if compact || depth == numAxes-1 {
					b.WriteByte(' ')
				} else {
					b.WriteByte('\n')
					b.WriteString(strings.Repeat(" ", indent+depth+1))
				}
			}
			if depth == numAxes-1 {
				b.WriteString(FormatValue(values[i]))
				continue
			}
			splits := r.Shape.rowSplits[depth].Data()
			walk(depth+1, int(splits[i]), int(splits[i+1]))
		}
		b.WriteByte(']')
	}
	walk(0, 0, r.Shape.Dim0())
	return b.String()
}

// ToString renders a in the form accepted by Parse, e.g.
// "RaggedTensor([[1, 2], [3]], dtype=int32)". The device is shown unless it
// is the CPU.
func ToString(a Any, compact bool, device string) string {
	var b strings.Builder
	b.WriteString(wrapperPrefix)
	indent := len(wrapperPrefix)
	switch a.Dtype() {
	case array.DtypeInt32:
		b.WriteString(Format(FromAny[int32](a), compact, indent))
	case array.DtypeInt64:
		b.WriteString(Format(FromAny[int64](a), compact, indent))
	case array.DtypeFloat:
		b.WriteString(Format(FromAny[float32](a), compact, indent))
	case array.DtypeDouble:
		b.WriteString(Format(FromAny[float64](a), compact, indent))
	}
	if device != "" && device != "cpu" {
		b.WriteString(", device='")
		b.WriteString(device)
		b.WriteString("'")
	}
	b.WriteString(", dtype=")
	b.WriteString(a.Dtype().String())
	b.WriteString(")")
	return b.String()
}

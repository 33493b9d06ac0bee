package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/born-ml/k2/tensor"

	"github.com/fatih/color"
)

type Colors struct {
	Bracket func(string, ...any) string
	Number  func(string, ...any) string
	Word    func(string, ...any) string
}

func NewColors() *Colors {
	return &Colors{
		Bracket: colorFunc(color.RGB(128, 128, 128)),
		Number:  colorFunc(color.RGB(128, 216, 236)),
		Word:    colorFunc(color.RGB(196, 96, 16)),
	}
}

// colorFunc forces color on, since NewColors is only called once coloring
// has been decided.
func colorFunc(c *color.Color) func(string, ...any) string {
	c.EnableColor()
	return c.SprintfFunc()
}

// paint colors brackets, numbers and other words of s. A nil *Colors
// returns s unchanged.
func (c *Colors) paint(s string) string {
	if c == nil {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		ch := s[i]
		switch {
		case ch == '[' || ch == ']' || ch == '(' || ch == ')':
			b.WriteString(c.Bracket("%c", ch))
			i++
		case isSep(ch):
			b.WriteByte(ch)
			i++
		default:
			j := i
			for j < len(s) && !isSep(s[j]) && !strings.ContainsRune("[]()", rune(s[j])) {
				j++
			}
			word := s[i:j]
			if _, err := strconv.ParseFloat(word, 64); err == nil {
				b.WriteString(c.Number("%s", word))
			} else {
				b.WriteString(c.Word("%s", word))
			}
			i = j
		}
	}
	return b.String()
}

func isSep(ch byte) bool {
	return strings.IndexByte(" \t\n,='", ch) >= 0
}

// formatTensor renders a 1-D or 2-D tensor as nested lists, e.g. "[3, 0, 2]".
func formatTensor(t *tensor.RawTensor) string {
	switch t.DType() {
	case tensor.Int32:
		return formatValues(tensor.Values[int32](t), t.Shape())
	case tensor.Int64:
		return formatValues(tensor.Values[int64](t), t.Shape())
	case tensor.Float32:
		return formatValues(tensor.Values[float32](t), t.Shape())
	case tensor.Float64:
		return formatValues(tensor.Values[float64](t), t.Shape())
	default:
		return t.String()
	}
}

func formatValues[T int32 | int64 | float32 | float64](vals []T, shape tensor.Shape) string {
	var b strings.Builder
	row := func(vs []T) {
		b.WriteByte('[')
		for i, v := range vs {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatNumber(v))
		}
		b.WriteByte(']')
	}
	if len(shape) != 2 {
		row(vals)
		return b.String()
	}
	b.WriteByte('[')
	for i := 0; i < shape[0]; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		row(vals[i*shape[1] : (i+1)*shape[1]])
	}
	b.WriteByte(']')
	return b.String()
}

func formatNumber[T int32 | int64 | float32 | float64](v T) string {
	switch v := any(v).(type) {
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}

func writeTensor(cfg *MainConfig, w io.Writer, label string, t *tensor.RawTensor) error {
	c := cfg.colors(w)
	out := c.paint(formatTensor(t))
	if label != "" {
		if c != nil {
			label = c.Word("%s", label)
		}
		out = label + ": " + out
	}
	_, err := fmt.Fprintln(w, out)
	return err
}

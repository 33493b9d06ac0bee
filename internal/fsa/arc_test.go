package fsa

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/k2/internal/array"
)

func TestArcString(t *testing.T) {
	tests := []struct {
		arc  Arc
		want string
	}{
		{Arc{0, 1, 2, 100.1}, "0 1 2 100.1"},
		{Arc{3, 4, -1, 0}, "3 4 -1 0"},
		{Arc{1, 1, 7, -0.5}, "1 1 7 -0.5"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.arc.String())
	}
}

func TestFloatAsInt(t *testing.T) {
	for _, f := range []float32{0, 1, -1, 0.1, 100.1, float32(math.Inf(1)), math.SmallestNonzeroFloat32} {
		i := FloatAsInt(f)
		assert.Equal(t, int32(math.Float32bits(f)), i) //nolint:gosec // test
		assert.Equal(t, math.Float32bits(f), math.Float32bits(IntAsFloat(i)))
	}

	// A NaN payload survives the trip bit for bit.
	nan := int32(0x7fc00123)
	assert.Equal(t, nan, FloatAsInt(IntAsFloat(nan)))
}

func TestParse(t *testing.T) {
	s := `
0 1 3 0.1
0 1 2 0.2
1 2 -1 0.3
2
`
	f, err := Parse(s)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.FinalState)
	require.Len(t, f.Arcs, 3)
	assert.Equal(t, Arc{0, 1, 3, 0.1}, f.Arcs[0])
	assert.Equal(t, Arc{1, 2, -1, 0.3}, f.Arcs[2])
	assert.Equal(t, "0 1 3 0.1\n0 1 2 0.2\n1 2 -1 0.3\n2\n", f.String())

	again, err := Parse(f.String())
	require.NoError(t, err)
	assert.Equal(t, f, again)
}

func TestParseNoScore(t *testing.T) {
	f, err := Parse("0 1 -1\n1\n")
	require.NoError(t, err)
	assert.Equal(t, []Arc{{0, 1, -1, 0}}, f.Arcs)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no final state", "0 1 -1 0.5\n"},
		{"bad field count", "0 1\n1\n"},
		{"bad label", "0 1 x 0.5\n1\n"},
		{"bad score", "0 1 -1 abc\n1\n"},
		{"content after final", "1\n0 1 -1\n"},
		{"state out of range", "0 5 -1\n1\n"},
		{"missing -1 label", "0 1 2\n1\n"},
		{"-1 label not to final", "0 1 -1\n1 2 -1\n2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestArcArray(t *testing.T) {
	f, err := Parse("0 1 -1 1.5\n1\n")
	require.NoError(t, err)
	arcs := f.ArcArray(array.GetCPUContext())
	assert.Equal(t, 1, arcs.Dim())
	assert.Equal(t, 16, arcs.ElemSize())
	assert.Equal(t, float32(1.5), arcs.At(0).Score)
}

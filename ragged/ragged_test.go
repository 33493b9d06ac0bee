package ragged_test

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/k2/ragged"
	"github.com/born-ml/k2/tensor"
)

func mustRagged(t *testing.T, s string, opts ...ragged.Option) *ragged.RaggedAny {
	t.Helper()
	r, err := ragged.FromString(s, opts...)
	require.NoError(t, err)
	return r
}

func mustTensor[T tensor.DType](t *testing.T, values ...T) *tensor.RawTensor {
	t.Helper()
	x, err := tensor.FromSlice(values, tensor.Shape{len(values)}, tensor.CPUPlace())
	require.NoError(t, err)
	return x
}

var f32 = ragged.WithDtype(tensor.Float32)

func TestFromString(t *testing.T) {
	r := mustRagged(t, "[ [1 2] [] [3] ]")
	assert.Equal(t, tensor.Int32, r.DType())
	assert.Equal(t, 2, r.NumAxes())
	assert.Equal(t, 3, r.Dim0())
	assert.Equal(t, 3, r.NumElements())
	assert.Equal(t, "RaggedTensor([[1, 2], [], [3]], dtype=int32)", r.ToString(true))

	wrapped := mustRagged(t, "RaggedTensor([[1, 2]], dtype=float64)")
	assert.Equal(t, tensor.Float64, wrapped.DType())

	overridden := mustRagged(t, "RaggedTensor([[1, 2]], dtype=float64)", f32)
	assert.Equal(t, tensor.Float32, overridden.DType())

	onDevice := mustRagged(t, "[[1]]", ragged.WithDevice(tensor.CUDAPlace(0)))
	assert.Equal(t, tensor.CUDAPlace(0), onDevice.Place())
	assert.Contains(t, onDevice.ToString(true), "device='cuda:0'")

	nested := mustRagged(t, "[ [[1 2] [3]] [[4]] ]")
	again := mustRagged(t, nested.String())
	assert.Equal(t, nested.ToString(true), again.ToString(true))
}

func TestFromStringErrors(t *testing.T) {
	tests := []struct {
		input string
		opts  []ragged.Option
		want  error
	}{
		{"[1 2]", nil, ragged.ErrParse},
		{"[[1.5]]", []ragged.Option{ragged.WithDtype(tensor.Int32)}, ragged.ErrParse},
		{"[[1]]", []ragged.Option{ragged.WithDtype(tensor.Int64)}, ragged.ErrDtype},
		{"[[1]]", []ragged.Option{ragged.WithDevice(tensor.Place{Type: tensor.Vulkan})}, ragged.ErrDevice},
		{"RaggedTensor([[1]], dtype=complex64)", nil, ragged.ErrDtype},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ragged.FromString(tt.input, tt.opts...)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestFromList(t *testing.T) {
	r, err := ragged.FromList([]any{[]int{1, 2}, []int{}, []float64{3.5}})
	require.NoError(t, err)
	assert.Equal(t, tensor.Float32, r.DType())
	want := []any{[]any{float32(1), float32(2)}, []any{}, []any{float32(3.5)}}
	if diff := cmp.Diff(want, r.ToList()); diff != "" {
		t.Errorf("ToList() mismatch (-want +got):\n%s", diff)
	}

	ints := mustRagged(t, "[[1 2] [] [3]]")
	back, err := ragged.FromList(ints.ToList())
	require.NoError(t, err)
	assert.Equal(t, ints.ToString(true), back.ToString(true))
}

func TestNewSharesValues(t *testing.T) {
	splits := mustTensor[int32](t, 0, 2, 2, 3)
	shape, err := ragged.NewShape(splits)
	require.NoError(t, err)
	assert.Equal(t, 2, shape.NumAxes())
	assert.Equal(t, "[ [ x x ] [ ] [ x ] ]", shape.String())

	ids, err := shape.RowIDs(1)
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 0, 2}, tensor.Values[int32](ids))
	_, err = shape.RowSplits(0)
	assert.True(t, errors.Is(err, ragged.ErrAxis))

	values := mustTensor[float32](t, 1, 2, 3)
	r, err := ragged.New(shape, values)
	require.NoError(t, err)
	assert.True(t, r.Data().SharesMemory(values))

	tensor.Data[float32](values)[0] = 10
	assert.Equal(t, []float32{12, 0, 3}, tensor.Values[float32](r.Sum(0)))

	_, err = ragged.New(shape, mustTensor[float32](t, 1, 2))
	assert.True(t, errors.Is(err, ragged.ErrShape))
	_, err = ragged.NewShape(mustTensor[int32](t, 0, 2, 1))
	assert.True(t, errors.Is(err, ragged.ErrShape))
	_, err = ragged.NewShape(mustTensor[float32](t, 0, 1))
	assert.True(t, errors.Is(err, ragged.ErrDtype))
}

func TestFromTensor(t *testing.T) {
	x, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.CPUPlace())
	require.NoError(t, err)
	r, err := ragged.FromTensor(x)
	require.NoError(t, err)
	assert.Equal(t, "RaggedTensor([[1, 2, 3], [4, 5, 6]], dtype=float64)", r.ToString(true))
	assert.True(t, r.Data().SharesMemory(x))

	_, err = ragged.FromTensor(mustTensor[float64](t, 1, 2))
	assert.True(t, errors.Is(err, ragged.ErrShape))
}

func TestConversions(t *testing.T) {
	r := mustRagged(t, "[[1 5] [2 7 0]]")
	same, err := r.ToDtype(tensor.Int32)
	require.NoError(t, err)
	assert.Same(t, r, same)

	d, err := r.ToDtype(tensor.Float64)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 5, 2, 7, 0}, tensor.Values[float64](d.Data()))
	assert.True(t, r.Shape().Equal(d.Shape()))

	here, err := r.To(tensor.CPUPlace())
	require.NoError(t, err)
	assert.Same(t, r, here)

	moved, err := r.To(tensor.CUDAPlace(0))
	require.NoError(t, err)
	assert.Equal(t, tensor.CUDAPlace(0), moved.Place())
	assert.Equal(t, tensor.CUDAPlace(0), moved.Shape().Place())
	assert.Equal(t, tensor.Values[int32](r.Data()), tensor.Values[int32](moved.Data()))
	assert.False(t, moved.Data().SharesMemory(r.Data()))

	c := r.Clone()
	assert.Equal(t, r.ToString(true), c.ToString(true))
	assert.False(t, c.Data().SharesMemory(r.Data()))
}

func TestReductions(t *testing.T) {
	r := mustRagged(t, "[[1 2] [] [3 -1]]", f32)
	negInf := float32(math.Inf(-1))
	assert.Equal(t, []float32{3, 0, 2}, tensor.Values[float32](r.Sum(0)))
	assert.Equal(t, []float32{2, negInf, 3}, tensor.Values[float32](r.Max(math.Inf(-1))))
	assert.Equal(t, []float32{0, 0, -1}, tensor.Values[float32](r.Min(0)))
	assert.Equal(t, []int32{1, -1, 2}, tensor.Values[int32](r.ArgMax(math.Inf(-1))))

	ints := mustRagged(t, "[[1 2] [] [3 -1]]")
	assert.Equal(t, []int32{3, 0, 2}, tensor.Values[int32](ints.Sum(0)))
	assert.Equal(t, []int32{2, math.MinInt32, 3}, tensor.Values[int32](ints.Max(math.Inf(-1))))
	assert.Equal(t, []int32{2, 2, 3}, tensor.Values[int32](ints.Max(2.9)))

	_, err := ints.LogSumExp(0)
	assert.True(t, errors.Is(err, ragged.ErrDtype))

	d := mustRagged(t, "[[0 0] []]", ragged.WithDtype(tensor.Float64))
	lse, err := d.LogSumExp(math.Inf(-1))
	require.NoError(t, err)
	got := tensor.Values[float64](lse)
	assert.InDelta(t, math.Log(2), got[0], 1e-12)
	assert.True(t, math.IsInf(got[1], -1))
}

func TestSumBackward(t *testing.T) {
	r := mustRagged(t, "[[1 2] [] [3]]", f32)
	_, err := r.SetRequiresGrad(true)
	require.NoError(t, err)
	assert.True(t, r.RequiresGrad())

	s := r.Sum(0)
	require.NoError(t, r.Backward(s))
	require.NotNil(t, r.Grad())
	assert.Equal(t, []float32{1, 1, 1}, tensor.Values[float32](r.Grad()))
}

func TestLogSumExpBackward(t *testing.T) {
	r := mustRagged(t, "[[0 0] [5]]", ragged.WithDtype(tensor.Float64))
	_, err := r.SetRequiresGrad(true)
	require.NoError(t, err)
	lse, err := r.LogSumExp(math.Inf(-1))
	require.NoError(t, err)
	require.NoError(t, r.Backward(lse))
	assert.InDeltaSlice(t, []float64{0.5, 0.5, 1}, tensor.Values[float64](r.Grad()), 1e-12)
}

func TestBackwardErrors(t *testing.T) {
	ints := mustRagged(t, "[[1 2]]")
	_, err := ints.SetRequiresGrad(true)
	assert.True(t, errors.Is(err, ragged.ErrDtype))
	assert.True(t, errors.Is(ints.Backward(ints.Sum(0)), ragged.ErrNoGrad))

	r := mustRagged(t, "[[1 2]]", f32)
	assert.True(t, errors.Is(r.Backward(r.Sum(0)), ragged.ErrNoGrad))
}

func TestRemoveAxis(t *testing.T) {
	r := mustRagged(t, "[ [[1 2] [3]] [[4] [] [5 6]] ]")

	outer, err := r.RemoveAxis(0)
	require.NoError(t, err)
	assert.Equal(t, "RaggedTensor([[1, 2], [3], [4], [], [5, 6]], dtype=int32)", outer.ToString(true))
	assert.Same(t, r.Data(), outer.Data())

	inner, err := r.RemoveAxis(1)
	require.NoError(t, err)
	assert.Equal(t, "RaggedTensor([[1, 2, 3], [4, 5, 6]], dtype=int32)", inner.ToString(true))

	_, err = r.RemoveAxis(2)
	assert.True(t, errors.Is(err, ragged.ErrAxis))
	_, err = inner.RemoveAxis(0)
	assert.True(t, errors.Is(err, ragged.ErrAxis))
}

func TestIndexAndArange(t *testing.T) {
	r := mustRagged(t, "[ [[1 2] [3]] [[4] [] [5 6]] ]", f32)
	sub, err := r.Index(0, 1)
	require.NoError(t, err)
	assert.Equal(t, "RaggedTensor([[4], [], [5, 6]], dtype=float32)", sub.ToString(true))
	assert.True(t, sub.Data().SharesMemory(r.Data()))

	_, err = r.Index(1, 0)
	assert.True(t, errors.Is(err, ragged.ErrAxis))
	_, err = r.Index(0, 2)
	assert.True(t, errors.Is(err, ragged.ErrIndex))

	flat := mustRagged(t, "[[1 2] [] [3] [4 5]]")
	_, err = flat.Index(0, 0)
	assert.True(t, errors.Is(err, ragged.ErrAxis))

	part, err := flat.Arange(0, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, "RaggedTensor([[], [3]], dtype=int32)", part.ToString(true))
	assert.True(t, part.Data().SharesMemory(flat.Data()))

	_, err = flat.Arange(0, 2, 5)
	assert.True(t, errors.Is(err, ragged.ErrIndex))
	_, err = flat.Arange(1, 0, 1)
	assert.True(t, errors.Is(err, ragged.ErrAxis))
}

func TestIndexBackward(t *testing.T) {
	r := mustRagged(t, "[ [[1 2] [3]] [[4] [] [5 6]] ]", f32)
	_, err := r.SetRequiresGrad(true)
	require.NoError(t, err)
	sub, err := r.Index(0, 1)
	require.NoError(t, err)
	require.NoError(t, r.Backward(sub.Sum(0)))
	assert.Equal(t, []float32{0, 0, 0, 1, 1, 1}, tensor.Values[float32](r.Grad()))
}

func TestIndexTensor(t *testing.T) {
	r := mustRagged(t, "[[1 2] [] [3] [4 5]]", f32)

	out, valueIndexes, err := r.IndexTensor(mustTensor[int32](t, 3, -1, 0), 0, true)
	require.NoError(t, err)
	assert.Equal(t, "RaggedTensor([[4, 5], [], [1, 2]], dtype=float32)", out.ToString(true))
	assert.Equal(t, []int32{3, 4, 0, 1}, tensor.Values[int32](valueIndexes))
	assert.False(t, out.Data().SharesMemory(r.Data()))

	values, none, err := r.IndexTensor(mustTensor[int32](t, 0, 1, 3), 1, false)
	require.NoError(t, err)
	assert.Nil(t, none)
	assert.Equal(t, "RaggedTensor([[1, 2], [], [], [4]], dtype=float32)", values.ToString(true))

	_, _, err = r.IndexTensor(mustTensor[int32](t, 4), 0, false)
	assert.True(t, errors.Is(err, ragged.ErrIndex))
	_, _, err = r.IndexTensor(mustTensor[int32](t, 3, 1), 1, false)
	assert.True(t, errors.Is(err, ragged.ErrIndex))
	_, _, err = r.IndexTensor(mustTensor[int64](t, 0), 0, false)
	assert.True(t, errors.Is(err, ragged.ErrDtype))
	_, _, err = r.IndexTensor(mustTensor[int32](t, 0), 2, false)
	assert.True(t, errors.Is(err, ragged.ErrAxis))
}

func TestIndexRagged(t *testing.T) {
	r := mustRagged(t, "[[1 2] [] [3]]", f32)
	indexes := mustRagged(t, "[[2 0] [] [-1 1]]")
	out, err := r.IndexRagged(indexes)
	require.NoError(t, err)
	assert.Equal(t, "RaggedTensor([[[3], [1, 2]], [], [[], []]], dtype=float32)", out.ToString(true))

	_, err = r.IndexRagged(mustRagged(t, "[[3]]"))
	assert.True(t, errors.Is(err, ragged.ErrIndex))
	_, err = r.IndexRagged(mustRagged(t, "[[0]]", f32))
	assert.True(t, errors.Is(err, ragged.ErrDtype))
}

func TestIndexValues(t *testing.T) {
	indexes := mustRagged(t, "[[2 0] [] [-1]]")
	src := mustTensor[float32](t, 10, 20, 30)
	src.SetRequiresGrad(true)

	out, err := indexes.IndexValues(src, 7)
	require.NoError(t, err)
	assert.Equal(t, "RaggedTensor([[30, 10], [], [7]], dtype=float32)", out.ToString(true))

	require.NoError(t, out.Backward(out.Sum(0)))
	assert.Equal(t, []float32{1, 0, 1}, tensor.Values[float32](src.Grad()))

	_, err = indexes.IndexValues(mustTensor[float32](t, 1, 2), 0)
	assert.True(t, errors.Is(err, ragged.ErrIndex))
	_, err = mustRagged(t, "[[0]]", f32).IndexValues(src, 0)
	assert.True(t, errors.Is(err, ragged.ErrDtype))
}

func TestIndexAndSum(t *testing.T) {
	indexes := mustRagged(t, "[[2 0] [] [-1 1 1]]")
	src := mustTensor[float64](t, 10, 20, 30)
	src.SetRequiresGrad(true)

	sums, err := indexes.IndexAndSum(src)
	require.NoError(t, err)
	assert.Equal(t, []float64{40, 0, 40}, tensor.Values[float64](sums))

	require.NoError(t, indexes.Backward(sums))
	assert.Equal(t, []float64{1, 2, 1}, tensor.Values[float64](src.Grad()))

	ints, err := indexes.IndexAndSum(mustTensor[int32](t, 1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, []int32{4, 0, 4}, tensor.Values[int32](ints))
}

func TestCat(t *testing.T) {
	a := mustRagged(t, "[[1] [2 3]]", f32)
	b := mustRagged(t, "[[4 5] []]", f32)

	rows, err := ragged.Cat([]*ragged.RaggedAny{a, b}, 0)
	require.NoError(t, err)
	assert.Equal(t, "RaggedTensor([[1], [2, 3], [4, 5], []], dtype=float32)", rows.ToString(true))

	cols, err := ragged.Cat([]*ragged.RaggedAny{a, b}, 1)
	require.NoError(t, err)
	assert.Equal(t, "RaggedTensor([[1, 4, 5], [2, 3]], dtype=float32)", cols.ToString(true))

	_, err = ragged.Cat(nil, 0)
	assert.True(t, errors.Is(err, ragged.ErrShape))
	_, err = ragged.Cat([]*ragged.RaggedAny{a, b}, 2)
	assert.True(t, errors.Is(err, ragged.ErrAxis))
	_, err = ragged.Cat([]*ragged.RaggedAny{a, mustRagged(t, "[[1]]")}, 0)
	assert.True(t, errors.Is(err, ragged.ErrDtype))
	_, err = ragged.Cat([]*ragged.RaggedAny{a, mustRagged(t, "[[1]]", f32)}, 1)
	assert.True(t, errors.Is(err, ragged.ErrShape))
}

func TestCatBackward(t *testing.T) {
	a := mustRagged(t, "[[1] [2 3]]", f32)
	b := mustRagged(t, "[[4 5] []]", f32)
	_, err := a.SetRequiresGrad(true)
	require.NoError(t, err)

	cols, err := ragged.Cat([]*ragged.RaggedAny{a, b}, 1)
	require.NoError(t, err)
	sums := cols.Sum(0)
	require.NoError(t, cols.Backward(sums))
	assert.Equal(t, []float32{1, 1, 1}, tensor.Values[float32](a.Grad()))
	assert.Nil(t, b.Grad())

	c := mustRagged(t, "[[1]]", f32)
	d := mustRagged(t, "[[2]]", f32)
	_, err = c.SetRequiresGrad(true)
	require.NoError(t, err)
	_, err = d.SetRequiresGrad(true)
	require.NoError(t, err)
	_, err = ragged.Cat([]*ragged.RaggedAny{c, d}, 0)
	assert.True(t, errors.Is(err, ragged.ErrTape))
}

func TestUnique(t *testing.T) {
	r := mustRagged(t, "[[1 2] [3] [1 2] [] [3]]")
	unique, numRepeats, new2old, err := r.Unique(true, true)
	require.NoError(t, err)
	assert.Equal(t, "RaggedTensor([[], [1, 2], [3]], dtype=int32)", unique.ToString(true))
	assert.Equal(t, "RaggedTensor([[1, 2, 2]], dtype=int32)", numRepeats.ToString(true))
	assert.Equal(t, []int32{3, 0, 1}, tensor.Values[int32](new2old))

	_, none, noOrder, err := r.Unique(false, false)
	require.NoError(t, err)
	assert.Nil(t, none)
	assert.Nil(t, noOrder)

	_, _, _, err = mustRagged(t, "[[1]]", f32).Unique(false, false)
	assert.True(t, errors.Is(err, ragged.ErrDtype))
	_, _, _, err = mustRagged(t, "[[[[1]]]]").Unique(false, false)
	assert.True(t, errors.Is(err, ragged.ErrAxis))
}

func TestSort(t *testing.T) {
	r := mustRagged(t, "[[3 1 2] [] [5 4]]", f32)
	data := r.Data()
	new2old := r.Sort(false, true)
	assert.Same(t, data, r.Data())
	assert.Equal(t, []float32{1, 2, 3, 4, 5}, tensor.Values[float32](r.Data()))
	assert.Equal(t, []int32{1, 2, 0, 4, 3}, tensor.Values[int32](new2old))

	desc := mustRagged(t, "[[3 1 2]]")
	assert.Nil(t, desc.Sort(true, false))
	assert.Equal(t, []int32{3, 2, 1}, tensor.Values[int32](desc.Data()))
}

func TestPad(t *testing.T) {
	r := mustRagged(t, "[[1 2] [] [3]]")

	constant, err := r.Pad("constant", -1)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 2}, constant.Shape())
	assert.Equal(t, []int32{1, 2, -1, -1, 3, -1}, tensor.Values[int32](constant))

	replicate, err := r.Pad("replicate", 0)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 0, 0, 3, 3}, tensor.Values[int32](replicate))

	_, err = r.Pad("edge", 0)
	assert.True(t, errors.Is(err, ragged.ErrParse))
	_, err = mustRagged(t, "[[[1]]]").Pad("constant", 0)
	assert.True(t, errors.Is(err, ragged.ErrAxis))
}

func TestRemoveValues(t *testing.T) {
	r := mustRagged(t, "[[1 5] [2 7 0]]")
	assert.Equal(t, "RaggedTensor([[5], [7]], dtype=int32)", r.RemoveValuesLeq(2).ToString(true))
	assert.Equal(t, "RaggedTensor([[1, 5], [2, 0]], dtype=int32)", r.RemoveValuesEq(7).ToString(true))
	odd := r.RemoveValuesIf(func(v float64) bool { return math.Mod(v, 2) == 1 })
	assert.Equal(t, "RaggedTensor([[], [2, 0]], dtype=int32)", odd.ToString(true))
}

func TestNormalize(t *testing.T) {
	r := mustRagged(t, "[[1 3] [2]]", f32)
	n, err := r.Normalize(false)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, 0.75, 1}, tensor.Values[float32](n.Data()))
	assert.True(t, n.Shape().Equal(r.Shape()))

	logN, err := r.Normalize(true)
	require.NoError(t, err)
	assert.InDelta(t, 0, float64(tensor.Values[float32](logN.Data())[2]), 1e-6)

	_, err = mustRagged(t, "[[1]]").Normalize(false)
	assert.True(t, errors.Is(err, ragged.ErrDtype))
}

func TestAdd(t *testing.T) {
	r := mustRagged(t, "[[1 2] [3]]", f32)
	value := mustTensor[float32](t, 10, 20)
	_, err := r.SetRequiresGrad(true)
	require.NoError(t, err)
	value.SetRequiresGrad(true)

	out, err := r.Add(value, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{21, 22, 43}, tensor.Values[float32](out.Data()))

	require.NoError(t, out.Backward(out.Sum(0)))
	assert.Equal(t, []float32{1, 1, 1}, tensor.Values[float32](r.Grad()))
	assert.Equal(t, []float32{4, 2}, tensor.Values[float32](value.Grad()))

	_, err = r.Add(mustTensor[float32](t, 1), 1)
	assert.True(t, errors.Is(err, ragged.ErrShape))
	_, err = r.Add(mustTensor[float64](t, 1, 2), 1)
	assert.True(t, errors.Is(err, ragged.ErrDtype))
}

func TestSaveLoad(t *testing.T) {
	tensors := map[string]*ragged.RaggedAny{
		"ids":    mustRagged(t, "[ [[1 2] [3]] [[]] ]"),
		"scores": mustRagged(t, "[[0.5] [] [1.5 2]]", f32),
	}
	path := filepath.Join(t.TempDir(), "batch.safetensors")
	require.NoError(t, ragged.Save(path, tensors))

	got, err := ragged.Load(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for name, want := range tensors {
		assert.Equal(t, want.ToString(true), got[name].ToString(true), name)
	}

	onDevice, err := ragged.Load(path, ragged.WithDevice(tensor.CUDAPlace(0)), ragged.WithDtype(tensor.Float64))
	require.NoError(t, err)
	assert.Equal(t, tensor.CUDAPlace(0), onDevice["ids"].Place())
	assert.Equal(t, tensor.Float64, onDevice["ids"].DType())

	var buf bytes.Buffer
	err = ragged.WriteTensors(&buf, map[string]*ragged.RaggedAny{"a b": tensors["ids"]})
	assert.True(t, errors.Is(err, ragged.ErrParse))

	_, err = ragged.Load(filepath.Join(t.TempDir(), "missing.safetensors"))
	assert.Error(t, err)
}

func TestSaveLoadEmptyValues(t *testing.T) {
	// An empty values entry starts where the next entry's data starts.
	var buf bytes.Buffer
	require.NoError(t, ragged.WriteTensors(&buf, map[string]*ragged.RaggedAny{
		"a": mustRagged(t, "[[] []]"),
		"b": mustRagged(t, "[[1]]"),
	}))
	data := buf.Bytes()

	// Header entries are visited in map order, so read it many times.
	for i := 0; i < 50; i++ {
		got, err := ragged.ReadTensors(bytes.NewReader(data))
		require.NoError(t, err, "read %d", i)
		assert.Equal(t, "RaggedTensor([[], []], dtype=int32)", got["a"].ToString(true))
		assert.Equal(t, "RaggedTensor([[1]], dtype=int32)", got["b"].ToString(true))
	}
}

func TestSingleOperandTape(t *testing.T) {
	r := mustRagged(t, "[[1 2] [3]]", f32)
	untracked, err := r.Normalize(false)
	require.NoError(t, err)
	assert.False(t, untracked.RequiresGrad())

	_, err = r.SetRequiresGrad(true)
	require.NoError(t, err)
	n, err := r.Normalize(false)
	require.NoError(t, err)
	assert.True(t, n.RequiresGrad())
	require.NoError(t, r.Backward(n.Sum(0)))
	assert.InDeltaSlice(t, []float64{0, 0, 0}, toFloat64(tensor.Values[float32](r.Grad())), 1e-6)

	// Indexes that track nothing get a tape from a tracked source.
	indexes := mustRagged(t, "[[0 1]]")
	src := mustTensor[float32](t, 5, 6)
	src.SetRequiresGrad(true)
	sums, err := indexes.IndexAndSum(src)
	require.NoError(t, err)
	require.NoError(t, indexes.Backward(sums))
	assert.Equal(t, []float32{1, 1}, tensor.Values[float32](src.Grad()))
}

func toFloat64(xs []float32) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

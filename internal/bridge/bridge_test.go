package bridge

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/k2/internal/array"
	"github.com/born-ml/k2/internal/check"
	"github.com/born-ml/k2/internal/fsa"
	"github.com/born-ml/k2/internal/ragged"
	"github.com/born-ml/k2/internal/tensor"
)

// assertCheckFails asserts that f fails a check in file.
func assertCheckFails(t *testing.T, file string, f func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected a failed check")
		failure, ok := r.(*check.Failure)
		require.True(t, ok, "expected *check.Failure, got %T: %v", r, r)
		assert.Equal(t, file, failure.File)
	}()
	f()
}

func TestDeviceMapping(t *testing.T) {
	assert.Equal(t, tensor.CPU, DeviceToTensor(array.DeviceCPU))
	assert.Equal(t, tensor.CUDA, DeviceToTensor(array.DeviceCUDA))
	assert.Equal(t, array.DeviceCPU, DeviceFromTensor(tensor.CPU))
	assert.Equal(t, array.DeviceCUDA, DeviceFromTensor(tensor.CUDA))

	assertCheckFails(t, "device.go", func() { DeviceToTensor(array.DeviceUnk) })
	assertCheckFails(t, "device.go", func() { DeviceFromTensor(tensor.Metal) })
}

func TestGetContext(t *testing.T) {
	assert.Equal(t, array.DeviceCPU, GetContext(tensor.CPUPlace()).DeviceType())

	ctx := GetContext(tensor.CUDAPlace(2))
	assert.Equal(t, array.DeviceCUDA, ctx.DeviceType())
	assert.Equal(t, 2, ctx.DeviceID())
	assert.Equal(t, tensor.CUDAPlace(2), PlaceOf(ctx))
	assert.Equal(t, tensor.CPUPlace(), PlaceOf(array.GetCPUContext()))

	assertCheckFails(t, "device.go", func() { GetContext(tensor.Place{Type: tensor.Vulkan}) })
}

func TestScalarTypes(t *testing.T) {
	assert.Equal(t, tensor.Float32, ScalarType[float32]())
	assert.Equal(t, tensor.Float64, ScalarType[float64]())
	assert.Equal(t, tensor.Int32, ScalarType[int32]())
	assert.Equal(t, tensor.Int64, ScalarType[int64]())
	assert.Equal(t, tensor.Bool, ScalarType[bool]())

	for _, e := range scalarTypes {
		assert.Equal(t, e.dtype, ScalarTypeToDtype(ScalarTypeFromDtype(e.dtype)))
		assert.True(t, IsSupported(e.scalar))
	}

	assert.False(t, IsSupported(tensor.Uint8))
	assertCheckFails(t, "dtype.go", func() { ScalarTypeToDtype(tensor.Uint8) })
}

func TestArray1RoundTrip(t *testing.T) {
	a := array.FromSlice(array.GetCPUContext(), []int64{1, 2, 3})
	tt := Array1ToTensor(a)

	assert.Equal(t, tensor.Shape{3}, tt.Shape())
	assert.Equal(t, tensor.Int64, tt.DType())
	assert.Same(t, a.GetRegion(), tt.Owner())
	assert.Equal(t, []int64{1, 2, 3}, tensor.Values[int64](tt))

	back := TensorToArray1[int64](tt)
	assert.Equal(t, []int64{1, 2, 3}, back.ToSlice())
	assert.Same(t, tt, back.GetRegion().Owner())

	// All three alias the same memory.
	tensor.Data[int64](tt)[0] = 10
	assert.Equal(t, int64(10), a.At(0))
	back.Data()[2] = 30
	assert.Equal(t, int64(30), a.At(2))
}

func TestArray1RoundTripTypes(t *testing.T) {
	ctx := array.GetCUDAContext(0)

	f := array.FromSlice(ctx, []float32{0.5, -1})
	assert.Equal(t, f.ToSlice(), TensorToArray1[float32](Array1ToTensor(f)).ToSlice())

	d := array.FromSlice(ctx, []float64{math.Pi})
	dt := Array1ToTensor(d)
	assert.Equal(t, tensor.CUDAPlace(0), dt.Place())
	assert.Equal(t, d.ToSlice(), TensorToArray1[float64](dt).ToSlice())
	assert.Equal(t, array.DeviceCUDA, TensorToArray1[float64](dt).Context().DeviceType())

	b := array.FromSlice(ctx, []bool{true, false, true})
	assert.Equal(t, b.ToSlice(), TensorToArray1[bool](Array1ToTensor(b)).ToSlice())
}

func TestArray1ToTensorEmpty(t *testing.T) {
	a := array.NewArray1[float32](array.GetCPUContext(), 0)
	tt := Array1ToTensor(a)
	assert.Equal(t, tensor.Shape{0}, tt.Shape())
	assert.Equal(t, tensor.Float32, tt.DType())
	assert.Nil(t, tt.Owner())

	back := TensorToArray1[float32](tt)
	assert.Equal(t, 0, back.Dim())
}

func TestTensorToArray1EmptyIgnoresStride(t *testing.T) {
	tt, err := tensor.FromBlob(nil, tensor.Shape{0}, []int{3}, tensor.Int32, tensor.CPUPlace(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, TensorToArray1[int32](tt).Dim())
}

func TestTensorToArray1Fatal(t *testing.T) {
	t2, err := tensor.FromSlice([]int32{1, 2, 3, 4}, tensor.Shape{2, 2}, tensor.CPUPlace())
	require.NoError(t, err)
	assertCheckFails(t, "array.go", func() { TensorToArray1[int32](t2) })

	t1, err := tensor.FromSlice([]int32{1, 2}, tensor.Shape{2}, tensor.CPUPlace())
	require.NoError(t, err)
	assertCheckFails(t, "array.go", func() { TensorToArray1[float32](t1) })
	assertCheckFails(t, "array.go", func() { TensorToArray1[int64](t1) })

	strided, err := tensor.FromBlob(make([]byte, 16), tensor.Shape{2}, []int{2}, tensor.Int32, tensor.CPUPlace(), nil)
	require.NoError(t, err)
	assertCheckFails(t, "array.go", func() { TensorToArray1[int32](strided) })
}

func TestArray2RoundTrip(t *testing.T) {
	a := array.FromRows(array.GetCPUContext(), [][]float32{{1, 2, 3}, {4, 5, 6}})
	tt := Array2ToTensor(a)
	assert.Equal(t, tensor.Shape{2, 3}, tt.Shape())
	assert.Equal(t, []int{3, 1}, tt.Strides())

	back := TensorToArray2[float32](tt)
	assert.Equal(t, a.ToRows(), back.ToRows())

	back.Row(1)[1] = 50
	assert.Equal(t, float32(50), a.At(1, 1))
	assert.Equal(t, float32(50), tensor.At[float32](tt, 1, 1))
}

func TestArray2PaddedIsAliased(t *testing.T) {
	r := array.NewRegion(array.GetCPUContext(), 8*4)
	a := array.NewArray2FromRegion[int32](2, 3, 4, 0, r)
	copy(a.Row(0), []int32{1, 2, 3})
	copy(a.Row(1), []int32{4, 5, 6})

	tt := Array2ToTensor(a)
	assert.Equal(t, []int{4, 1}, tt.Strides())
	assert.Equal(t, []int32{1, 2, 3, 4, 5, 6}, tensor.Values[int32](tt))

	back := TensorToArray2[int32](tt)
	assert.Equal(t, 4, back.ElemStride0())
	assert.Equal(t, [][]int32{{1, 2, 3}, {4, 5, 6}}, back.ToRows())

	tensor.Set[int32](tt, 60, 1, 2)
	assert.Equal(t, int32(60), a.At(1, 2))
}

func TestArray2ToTensorEmpty(t *testing.T) {
	ctx := array.GetCPUContext()
	for _, dims := range [][2]int{{0, 3}, {4, 0}, {0, 0}} {
		tt := Array2ToTensor(array.NewArray2[int32](ctx, dims[0], dims[1]))
		assert.Equal(t, tensor.Shape{dims[0], dims[1]}, tt.Shape())
		back := TensorToArray2[int32](tt)
		assert.Equal(t, dims[0], back.Dim0())
		assert.Equal(t, dims[1], back.Dim1())
	}
}

func TestTensorToArray2Fatal(t *testing.T) {
	t1, err := tensor.FromSlice([]float64{1, 2}, tensor.Shape{2}, tensor.CPUPlace())
	require.NoError(t, err)
	assertCheckFails(t, "array.go", func() { TensorToArray2[float64](t1) })

	t2, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2}, tensor.CPUPlace())
	require.NoError(t, err)
	assertCheckFails(t, "array.go", func() { TensorToArray2[float32](t2) })

	// A transposed view has a non-unit innermost stride.
	transposed, err := tensor.FromBlob(t2.Data(), tensor.Shape{2, 2}, []int{1, 2}, tensor.Float64, tensor.CPUPlace(), t2)
	require.NoError(t, err)
	assertCheckFails(t, "array.go", func() { TensorToArray2[float64](transposed) })
}

func TestArcsRoundTripBitExact(t *testing.T) {
	nan := fsa.IntAsFloat(0x7fc00123)
	arcs := []fsa.Arc{
		{SrcState: 0, DestState: 1, Label: 2, Score: 0.1},
		{SrcState: 1, DestState: 2, Label: -1, Score: 100.1},
		{SrcState: 1, DestState: 2, Label: -1, Score: nan},
		{SrcState: 2, DestState: 3, Label: 7, Score: float32(math.Inf(-1))},
	}
	a := array.FromSlice(array.GetCPUContext(), arcs)

	tt := ArcsToTensor(a)
	assert.Equal(t, tensor.Shape{4, 4}, tt.Shape())
	assert.Equal(t, tensor.Int32, tt.DType())

	// The score column carries bits, not a converted value.
	assert.Equal(t, fsa.FloatAsInt(0.1), tensor.At[int32](tt, 0, 3))
	assert.NotEqual(t, int32(0), tensor.At[int32](tt, 0, 3))
	assert.Equal(t, int32(-1), tensor.At[int32](tt, 1, 2))

	back := TensorToArcs(tt)
	require.Equal(t, len(arcs), back.Dim())
	for i, want := range arcs {
		got := back.At(i)
		assert.Equal(t, want.SrcState, got.SrcState)
		assert.Equal(t, want.DestState, got.DestState)
		assert.Equal(t, want.Label, got.Label)
		assert.Equal(t, math.Float32bits(want.Score), math.Float32bits(got.Score), "arc %d score bits", i)
	}

	scores := AsFloat(tt)
	assert.Equal(t, float32(100.1), tensor.At[float32](scores, 1, 3))
}

func TestArcsEmpty(t *testing.T) {
	tt := ArcsToTensor(array.NewArray1[fsa.Arc](array.GetCPUContext(), 0))
	assert.Equal(t, tensor.Shape{0, 4}, tt.Shape())
	assert.Equal(t, 0, TensorToArcs(tt).Dim())
}

func TestTensorToArcsFatal(t *testing.T) {
	three, err := tensor.FromSlice(make([]int32, 6), tensor.Shape{2, 3}, tensor.CPUPlace())
	require.NoError(t, err)
	assertCheckFails(t, "arc.go", func() { TensorToArcs(three) })

	floats, err := tensor.FromSlice(make([]float32, 8), tensor.Shape{2, 4}, tensor.CPUPlace())
	require.NoError(t, err)
	assertCheckFails(t, "arc.go", func() { TensorToArcs(floats) })

	padded, err := tensor.FromBlob(make([]byte, 4*12), tensor.Shape{2, 4}, []int{8, 1}, tensor.Int32, tensor.CPUPlace(), nil)
	require.NoError(t, err)
	assertCheckFails(t, "arc.go", func() { TensorToArcs(padded) })
}

func TestAsIntAsFloat(t *testing.T) {
	scalar := tensor.Scalar[float32](1.5, tensor.CUDAPlace(1))
	i := AsInt(scalar)
	assert.Equal(t, tensor.Shape{}, i.Shape())
	assert.Equal(t, tensor.CUDAPlace(1), i.Place())
	assert.Equal(t, int32(0x3fc00000), tensor.Data[int32](i)[0])
	assert.True(t, i.SharesMemory(scalar))

	f := AsFloat(i)
	assert.Equal(t, tensor.Shape{}, f.Shape())
	assert.Equal(t, float32(1.5), tensor.Data[float32](f)[0])

	assert.Same(t, i, AsInt(i))
	assert.Same(t, scalar, AsFloat(scalar))

	d := tensor.Scalar[float64](1, tensor.CPUPlace())
	assertCheckFails(t, "arc.go", func() { AsInt(d) })
	assertCheckFails(t, "arc.go", func() { AsFloat(d) })
}

func TestRaggedValues(t *testing.T) {
	ctx := array.GetCPUContext()
	shape, err := ragged.ShapeFromSplits(ctx, [][]int32{{0, 2, 3}})
	require.NoError(t, err)
	a := ragged.NewAny(shape, array.FromSlice(ctx, []float32{1, 2, 3}))

	tt := AnyToTensor(a)
	assert.Equal(t, tensor.Float32, tt.DType())

	back := TensorToAny(shape, tt)
	assert.Equal(t, array.DtypeFloat, back.Dtype())
	tensor.Data[float32](tt)[1] = 20
	assert.Equal(t, float32(20), ragged.FromAny[float32](a).Values.At(1))
	assert.Equal(t, float32(20), ragged.FromAny[float32](back).Values.At(1))

	u8, err := tensor.FromSlice([]uint8{1, 2, 3}, tensor.Shape{3}, tensor.CPUPlace())
	require.NoError(t, err)
	assertCheckFails(t, "ragged.go", func() { TensorToAny(shape, u8) })
}

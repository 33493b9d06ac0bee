package array

// Dtype is the array library's runtime element type tag.
type Dtype int

// Element types arrays can be tagged with.
const (
	DtypeFloat Dtype = iota
	DtypeDouble
	DtypeInt32
	DtypeInt64
	DtypeBool
)

// Element is the set of primitive types with a Dtype.
type Element interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~bool
}

// Number is the subset of Element usable in arithmetic.
type Number interface {
	~float32 | ~float64 | ~int32 | ~int64
}

// Float is the subset of Element usable in log-space arithmetic.
type Float interface {
	~float32 | ~float64
}

// Size returns the element size in bytes.
func (d Dtype) Size() int {
	switch d {
	case DtypeFloat, DtypeInt32:
		return 4
	case DtypeDouble, DtypeInt64:
		return 8
	case DtypeBool:
		return 1
	default:
		panic("unknown dtype")
	}
}

// String returns the dtype name.
func (d Dtype) String() string {
	switch d {
	case DtypeFloat:
		return "float32"
	case DtypeDouble:
		return "float64"
	case DtypeInt32:
		return "int32"
	case DtypeInt64:
		return "int64"
	case DtypeBool:
		return "bool"
	default:
		return "unknown"
	}
}

// IsFloat reports whether d is a floating point dtype.
func (d Dtype) IsFloat() bool {
	return d == DtypeFloat || d == DtypeDouble
}

// DtypeOf returns the Dtype of T.
func DtypeOf[T Element]() Dtype {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return DtypeFloat
	case float64:
		return DtypeDouble
	case int32:
		return DtypeInt32
	case int64:
		return DtypeInt64
	case bool:
		return DtypeBool
	default:
		panic("unsupported type")
	}
}

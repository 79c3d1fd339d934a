package tensor

import (
	"math"
	"testing"
)

// DType Tests

func TestDataTypeSize(t *testing.T) {
	tests := []struct {
		dtype DataType
		size  int
	}{
		{Float32, 4},
		{Float64, 8},
		{Int32, 4},
		{Int64, 8},
		{Uint8, 1},
		{Bool, 1},
	}

	for _, tt := range tests {
		if got := tt.dtype.Size(); got != tt.size {
			t.Errorf("%s.Size() = %d, want %d", tt.dtype, got, tt.size)
		}
	}
}

func TestDataTypeString(t *testing.T) {
	tests := []struct {
		dtype DataType
		str   string
	}{
		{Float32, "float32"},
		{Float64, "float64"},
		{Int32, "int32"},
		{Int64, "int64"},
		{Uint8, "uint8"},
		{Bool, "bool"},
	}

	for _, tt := range tests {
		if got := tt.dtype.String(); got != tt.str {
			t.Errorf("%s.String() = %q, want %q", tt.dtype, got, tt.str)
		}
		parsed, ok := ParseDataType(tt.str)
		if !ok || parsed != tt.dtype {
			t.Errorf("ParseDataType(%q) = %v, %v; want %v", tt.str, parsed, ok, tt.dtype)
		}
	}

	if _, ok := ParseDataType("float16"); ok {
		t.Error("ParseDataType(float16) should fail")
	}
	if got := DataType(99).String(); got != "unknown" {
		t.Errorf("DataType(99).String() = %q, want unknown", got)
	}
}

func TestDataTypeOf(t *testing.T) {
	if dt := DataTypeOf[float32](); dt != Float32 {
		t.Errorf("DataTypeOf[float32] = %v, want Float32", dt)
	}
	if dt := DataTypeOf[float64](); dt != Float64 {
		t.Errorf("DataTypeOf[float64] = %v, want Float64", dt)
	}
	if dt := DataTypeOf[int32](); dt != Int32 {
		t.Errorf("DataTypeOf[int32] = %v, want Int32", dt)
	}
	if dt := DataTypeOf[int64](); dt != Int64 {
		t.Errorf("DataTypeOf[int64] = %v, want Int64", dt)
	}
	if dt := DataTypeOf[uint8](); dt != Uint8 {
		t.Errorf("DataTypeOf[uint8] = %v, want Uint8", dt)
	}
	if dt := DataTypeOf[bool](); dt != Bool {
		t.Errorf("DataTypeOf[bool] = %v, want Bool", dt)
	}
	if !Float64.IsFloat() || Int64.IsFloat() {
		t.Error("IsFloat is wrong")
	}
}

// Shape Tests

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		shape    Shape
		expected int
	}{
		{Shape{}, 1},         // Scalar
		{Shape{5}, 5},        // 1D
		{Shape{3, 4}, 12},    // 2D
		{Shape{2, 3, 4}, 24}, // 3D
		{Shape{1, 1, 1}, 1},  // Ones
		{Shape{3, 0, 2}, 0},  // Empty axis
	}

	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.expected {
			t.Errorf("Shape%v.NumElements() = %d, want %d", tt.shape, got, tt.expected)
		}
	}
}

func TestShapeCheckedNumElements(t *testing.T) {
	const big = math.MaxInt/2 + 1
	tests := []struct {
		shape Shape
		want  int
		ok    bool
	}{
		{Shape{}, 1, true},
		{Shape{2, 3, 4}, 24, true},
		{Shape{big, 0, big}, 0, true},
		{Shape{math.MaxInt}, math.MaxInt, true},
		{Shape{math.MaxInt, 2}, 0, false},
		{Shape{big, big}, 0, false},
		{Shape{3, -1}, 0, false},
	}

	for _, tt := range tests {
		got, ok := tt.shape.CheckedNumElements()
		if got != tt.want || ok != tt.ok {
			t.Errorf("Shape%v.CheckedNumElements() = (%d, %v), want (%d, %v)", tt.shape, got, ok, tt.want, tt.ok)
		}
	}
}

func TestShapeValidation(t *testing.T) {
	validShapes := []Shape{
		{},
		{1},
		{0},
		{3, 0},
		{2, 3, 4},
	}

	for _, s := range validShapes {
		if err := s.Validate(); err != nil {
			t.Errorf("Shape%v.Validate() failed: %v", s, err)
		}
	}

	invalidShapes := []Shape{
		{-1},
		{3, -4},
	}

	for _, s := range invalidShapes {
		if err := s.Validate(); err == nil {
			t.Errorf("Shape%v.Validate() should fail but didn't", s)
		}
	}
}

func TestShapeEqual(t *testing.T) {
	tests := []struct {
		a, b  Shape
		equal bool
	}{
		{Shape{3, 4}, Shape{3, 4}, true},
		{Shape{3, 4}, Shape{4, 3}, false},
		{Shape{3}, Shape{3, 1}, false},
		{Shape{}, Shape{}, true},
	}

	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.equal {
			t.Errorf("Shape%v.Equal(%v) = %v, want %v", tt.a, tt.b, got, tt.equal)
		}
	}
}

func TestShapeClone(t *testing.T) {
	s := Shape{2, 3}
	c := s.Clone()
	c[0] = 9
	if s[0] != 2 {
		t.Error("Clone should not share memory")
	}
	if got := s.String(); got != "[2 3]" {
		t.Errorf("String() = %q, want [2 3]", got)
	}
}

func TestShapePredicates(t *testing.T) {
	tests := []struct {
		shape                        Shape
		scalar, vector, row, column bool
	}{
		{Shape{}, true, false, false, false},
		{Shape{1, 1}, true, true, true, true},
		{Shape{5}, false, true, true, false},
		{Shape{1, 5}, false, true, true, false},
		{Shape{5, 1}, false, true, false, true},
		{Shape{2, 3}, false, false, false, false},
		{Shape{1, 1, 4}, false, false, false, false},
	}

	for _, tt := range tests {
		if got := tt.shape.IsScalar(); got != tt.scalar {
			t.Errorf("Shape%v.IsScalar() = %v, want %v", tt.shape, got, tt.scalar)
		}
		if got := tt.shape.IsVector(); got != tt.vector {
			t.Errorf("Shape%v.IsVector() = %v, want %v", tt.shape, got, tt.vector)
		}
		if got := tt.shape.IsRowVector(); got != tt.row {
			t.Errorf("Shape%v.IsRowVector() = %v, want %v", tt.shape, got, tt.row)
		}
		if got := tt.shape.IsColumnVector(); got != tt.column {
			t.Errorf("Shape%v.IsColumnVector() = %v, want %v", tt.shape, got, tt.column)
		}
	}
}

func TestComputeStrides(t *testing.T) {
	tests := []struct {
		shape    Shape
		expected []int
	}{
		{Shape{}, []int{}},
		{Shape{4}, []int{1}},
		{Shape{3, 4}, []int{4, 1}},
		{Shape{2, 3, 4}, []int{12, 4, 1}},
	}

	for _, tt := range tests {
		got := tt.shape.ComputeStrides()
		if len(got) != len(tt.expected) {
			t.Fatalf("Shape%v.ComputeStrides() length = %d, want %d", tt.shape, len(got), len(tt.expected))
		}
		for i := range got {
			if got[i] != tt.expected[i] {
				t.Errorf("Shape%v.ComputeStrides()[%d] = %d, want %d", tt.shape, i, got[i], tt.expected[i])
			}
		}
	}
}

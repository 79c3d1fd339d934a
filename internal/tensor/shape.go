package tensor

import (
	"fmt"
	"math"
)

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
// A zero-sized dimension yields zero elements. The product is not checked
// for overflow; use CheckedNumElements for shapes that need not fit in
// memory.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// CheckedNumElements is NumElements that also reports whether the count
// fits in an int. A shape with a zero-sized dimension always fits.
func (s Shape) CheckedNumElements() (int, bool) {
	for _, dim := range s {
		if dim == 0 {
			return 0, true
		}
	}
	n := 1
	for _, dim := range s {
		if dim < 0 || n > math.MaxInt/dim {
			return 0, false
		}
		n *= dim
	}
	return n, true
}

// Rank returns the number of dimensions.
func (s Shape) Rank() int {
	return len(s)
}

// Validate checks that every dimension is non-negative.
//
// Unlike dense buffers, sparse tensors may legitimately carry
// zero-sized dimensions (e.g. an empty interval view).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be >= 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// IsScalar reports whether the shape describes a single element
// (rank 0, or every dimension equal to 1).
func (s Shape) IsScalar() bool {
	for _, dim := range s {
		if dim != 1 {
			return false
		}
	}
	return true
}

// IsRowVector reports whether the shape is 1-D, or 2-D with a single row.
func (s Shape) IsRowVector() bool {
	return len(s) == 1 || (len(s) == 2 && s[0] == 1)
}

// IsColumnVector reports whether the shape is 2-D with a single column.
func (s Shape) IsColumnVector() bool {
	return len(s) == 2 && s[1] == 1
}

// IsVector reports whether the shape is a row or column vector.
func (s Shape) IsVector() bool {
	return s.IsRowVector() || s.IsColumnVector()
}

// String renders the shape as [d0 d1 ...].
func (s Shape) String() string {
	return fmt.Sprintf("%v", []int(s))
}

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package sparse

import (
	"io"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/sparse/internal/sparse"
	"github.com/born-ml/sparse/tensor"
)

// Numeric is the set of element types a sparse tensor can hold.
type Numeric = sparse.Numeric

// Tensor is implemented by *COO[T] and *View[T].
type Tensor[T Numeric] = sparse.Tensor[T]

// COO is an owning sparse tensor.
type COO[T Numeric] = sparse.COO[T]

// View is a read-only selection of a COO tensor or of another view.
type View[T Numeric] = sparse.View[T]

// Error types.
type (
	IndexError = sparse.IndexError
	RankError  = sparse.RankError
)

// Sentinel errors. Detailed errors wrap one of these.
var (
	ErrShapeMismatch   = sparse.ErrShapeMismatch
	ErrIndexOutOfRange = sparse.ErrIndexOutOfRange
	ErrRankMismatch    = sparse.ErrRankMismatch
	ErrReadOnlyView    = sparse.ErrReadOnlyView
	ErrSyntax          = sparse.ErrSyntax
)

// NewCOO builds a tensor from one coordinate per value. Duplicate
// coordinates keep the last value, and zero values are dropped.
func NewCOO[T Numeric](values []T, coords [][]int, shape tensor.Shape) (*COO[T], error) {
	return sparse.NewCOO(values, coords, shape)
}

// NewCOOFromIndices is NewCOO for a flat, entry-major coordinate buffer.
func NewCOOFromIndices[T Numeric](values []T, indices []int, shape tensor.Shape) (*COO[T], error) {
	return sparse.NewCOOFromIndices(values, indices, shape)
}

// NewCOOUnchecked is NewCOO without the upper-bound check. Only RavelTo
// gives such tensors a meaning.
func NewCOOUnchecked[T Numeric](values []T, coords [][]int, shape tensor.Shape) (*COO[T], error) {
	return sparse.NewCOOUnchecked(values, coords, shape)
}

// Zeros returns an empty tensor.
func Zeros[T Numeric](shape tensor.Shape) (*COO[T], error) {
	return sparse.Zeros[T](shape)
}

// Equal reports whether a and b have the same shape and entries.
func Equal[T Numeric](a, b Tensor[T]) bool {
	return sparse.Equal(a, b)
}

// Selectors.
type (
	Index          = sparse.Index
	PointIndex     = sparse.PointIndex
	IntervalIndex  = sparse.IntervalIndex
	AllIndex       = sparse.AllIndex
	NewAxisIndex   = sparse.NewAxisIndex
	SpecifiedIndex = sparse.SpecifiedIndex
)

// Point selects position i and drops the axis.
func Point(i int) PointIndex { return sparse.Point(i) }

// Interval selects positions lo through hi-1.
func Interval(lo, hi int) IntervalIndex { return sparse.Interval(lo, hi) }

// All selects a whole axis.
func All() AllIndex { return sparse.All() }

// NewAxis inserts a length-1 axis.
func NewAxis() NewAxisIndex { return sparse.NewAxis() }

// Specified selects an explicit set of positions, sorted and de-duplicated.
func Specified(indices ...int) SpecifiedIndex { return sparse.Specified(indices...) }

// ParseIndices parses a selector list such as "1:3, new, {0,2}".
func ParseIndices(s string) ([]Index, error) { return sparse.ParseIndices(s) }

// FormatIndices renders a selector list as ParseIndices accepts it.
func FormatIndices(idx []Index) string { return sparse.FormatIndices(idx) }

// ToDense expands t into a dense row-major tensor.
func ToDense[T Numeric](t Tensor[T]) (*tensor.RawTensor, error) { return sparse.ToDense(t) }

// FromDense collects the non-zero elements of raw.
func FromDense[T Numeric](raw *tensor.RawTensor) (*COO[T], error) { return sparse.FromDense[T](raw) }

// ToMatrix expands a rank-2 tensor into a gonum matrix.
func ToMatrix[T Numeric](t Tensor[T]) (*mat.Dense, error) { return sparse.ToMatrix(t) }

// FromMatrix collects the non-zero elements of m.
func FromMatrix[T Numeric](m mat.Matrix) (*COO[T], error) { return sparse.FromMatrix[T](m) }

// Sum returns the sum of the stored values.
func Sum[T Numeric](t Tensor[T]) float64 { return sparse.Sum(t) }

// Norm returns the L-norm of the stored values.
func Norm[T Numeric](t Tensor[T], L float64) float64 { return sparse.Norm(t, L) }

// Max returns the largest element of t, counting unstored zeros.
func Max[T Numeric](t Tensor[T]) float64 { return sparse.Max(t) }

// Fprint writes one "(coordinate) value" line per stored entry.
func Fprint[T Numeric](w io.Writer, t Tensor[T]) error { return sparse.Fprint(w, t) }

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package sparse

import (
	"github.com/born-ml/sparse/internal/sparse"
	"github.com/born-ml/sparse/tensor"
)

// OverflowMode selects how out-of-range coordinate components are handled.
type OverflowMode = sparse.OverflowMode

// Overflow modes.
const (
	OverflowError = sparse.OverflowError // reject
	OverflowClip  = sparse.OverflowClip  // clamp to [0, n-1]
	OverflowWrap  = sparse.OverflowWrap  // reduce modulo n
)

// RavelOptions configures RavelTo.
type RavelOptions = sparse.RavelOptions

// ParseOverflowMode parses "error", "clip" or "wrap".
func ParseOverflowMode(s string) (OverflowMode, error) { return sparse.ParseOverflowMode(s) }

// RavelIndex returns the row-major flat index of coord in shape.
func RavelIndex(coord []int, shape tensor.Shape, mode OverflowMode) (int, error) {
	return sparse.RavelIndex(coord, shape, mode)
}

// UnravelIndex is the inverse of RavelIndex.
func UnravelIndex(flat int, shape tensor.Shape) ([]int, error) {
	return sparse.UnravelIndex(flat, shape)
}

// Ravel flattens t into a rank-1 tensor.
func Ravel[T Numeric](t Tensor[T], mode OverflowMode) (*COO[T], error) {
	return sparse.Ravel(t, mode)
}

// RavelTo flattens t against shape, which must have t's rank.
func RavelTo[T Numeric](t Tensor[T], shape tensor.Shape, opts RavelOptions) (*COO[T], error) {
	return sparse.RavelTo(t, shape, opts)
}

// Unravel expands a rank-1 tensor into shape.
func Unravel[T Numeric](flat Tensor[T], shape tensor.Shape) (*COO[T], error) {
	return sparse.Unravel(flat, shape)
}

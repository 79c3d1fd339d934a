// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package sparse provides N-dimensional sparse tensors in coordinate (COO)
// format.
//
// # Overview
//
// A COO tensor stores only its non-zero entries: one coordinate per entry,
// kept unique and in row-major order, next to a parallel slice of values.
// Writing zero removes an entry, and reading an unstored coordinate yields
// zero.
//
// # Views
//
// Get selects a view with a list of selectors:
//
//	Point(i)          keep position i and drop the axis
//	Interval(lo, hi)  keep positions lo..hi-1
//	All()             keep the whole axis
//	NewAxis()         insert a length-1 axis
//	Specified(i...)   keep an explicit set of positions
//
// Views are read-only snapshots. Any view coordinate can be translated back
// to the coordinate it refers to in the root tensor:
//
//	t, _ := sparse.NewCOO([]float64{1, 2}, [][]int{{1, 1}, {3, 4}}, tensor.Shape{5, 5})
//	v, _ := t.Get(sparse.Interval(1, 4), sparse.Interval(1, 5))
//	phys, _ := v.TranslateToPhysical([]int{2, 3}) // [3 4]
//
// # Flat Indices
//
// Ravel and Unravel convert between N-dimensional coordinates and row-major
// flat indices. RavelTo flattens against a different shape of the same rank
// and resolves out-of-range components with an OverflowMode.
//
// # Files
//
// WriteFile and ReadFile store one tensor per .bcoo file.
package sparse

// Package sparse implements N-dimensional sparse tensors in coordinate
// (COO) format.
//
// A COO tensor stores only its non-zero values together with their
// coordinates. Coordinates are kept unique and sorted in row-major order,
// so lookups are binary searches and insertions keep the order.
//
// Views select parts of a tensor with one Index per axis:
//
//	v, err := t.Get(sparse.Interval(1, 3), sparse.Point(0), sparse.NewAxis())
//
// A view can itself be indexed. TranslateToPhysical maps a view coordinate
// back to the coordinate of the same element in the owning tensor.
//
// Ravel and Unravel convert between N-dimensional coordinates and flat
// row-major indices, with OverflowMode deciding what happens to components
// that do not fit the target shape.
package sparse

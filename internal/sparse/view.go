package sparse

import (
	"fmt"
	"slices"

	"github.com/born-ml/sparse/internal/parallel"
	"github.com/born-ml/sparse/internal/tensor"
)

// View is a read-only selection of a sparse tensor.
//
// A view keeps a handle to the tensor it was taken from, which owns the
// storage, and copies the entries that fall inside the selection when it
// is created. Later mutations of the parent are not reflected; take a new
// view to observe them.
type View[T Numeric] struct {
	parent    Tensor[T]
	root      *COO[T]
	selectors []Index

	local    *resolution // parent -> view
	composed *resolution // root -> view

	indices   []int
	values    []T
	positions []int // Physical position in root of each entry
}

func newView[T Numeric](parent Tensor[T], idx []Index, cfg parallel.Config) (*View[T], error) {
	local, err := resolve(parent.Shape(), idx)
	if err != nil {
		return nil, err
	}

	composed := local
	if pv, ok := parent.(*View[T]); ok {
		composed, err = compose(pv.composed, local)
		if err != nil {
			return nil, err
		}
	}

	v := &View[T]{
		parent:    parent,
		root:      parent.Root(),
		selectors: slices.Clone(idx),
		local:     local,
		composed:  composed,
	}
	v.materialize(parent.entries(), parent.Rank(), cfg)
	return v, nil
}

// materialize filters the parent's entries through the local resolution.
func (v *View[T]) materialize(src entrySet[T], srcRank int, cfg parallel.Config) {
	n := len(src.values)
	rank := len(v.local.shape)
	if size, ok := v.local.shape.CheckedNumElements(); n == 0 || (ok && size == 0) {
		return
	}

	keep := make([]bool, n)
	dst := make([]int, n*rank)
	parallel.For(n, func(i int) {
		keep[i] = v.local.project(coordAt(src.indices, srcRank, i), coordAt(dst, rank, i))
	}, cfg)

	for i := 0; i < n; i++ {
		if !keep[i] {
			continue
		}
		v.indices = append(v.indices, coordAt(dst, rank, i)...)
		v.values = append(v.values, src.values[i])
		v.positions = append(v.positions, src.position(i))
	}

	if !isStrictlySorted(v.indices, rank, len(v.values)) {
		v.sortEntries()
	}
}

func (v *View[T]) sortEntries() {
	rank := len(v.local.shape)
	order := make([]int, len(v.values))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		return compareCoords(coordAt(v.indices, rank, a), coordAt(v.indices, rank, b))
	})

	indices := make([]int, 0, len(v.indices))
	values := make([]T, 0, len(v.values))
	positions := make([]int, 0, len(v.positions))
	for _, i := range order {
		indices = append(indices, coordAt(v.indices, rank, i)...)
		values = append(values, v.values[i])
		positions = append(positions, v.positions[i])
	}
	v.indices, v.values, v.positions = indices, values, positions
}

// Shape returns the view's shape.
func (v *View[T]) Shape() tensor.Shape {
	return v.local.shape
}

// Rank returns the number of dimensions of the view.
func (v *View[T]) Rank() int {
	return len(v.local.shape)
}

// NNZ returns the number of stored entries inside the view.
func (v *View[T]) NNZ() int {
	return len(v.values)
}

// Values returns the values inside the view in coordinate order.
func (v *View[T]) Values() []T {
	return v.values
}

// Indices returns the view-local coordinates of the entries.
func (v *View[T]) Indices() []int {
	return v.indices
}

// Coordinate returns a copy of the view-local coordinate of entry i.
func (v *View[T]) Coordinate(i int) []int {
	return slices.Clone(coordAt(v.indices, v.Rank(), i))
}

// PhysicalPositions returns, for each entry, its position in the root's
// storage.
func (v *View[T]) PhysicalPositions() []int {
	return v.positions
}

// At returns the value at a view coordinate, or zero.
func (v *View[T]) At(coord ...int) (T, error) {
	var zero T
	if err := checkCoordinate("at", v.local.shape, coord); err != nil {
		return zero, err
	}
	pos, found := searchIndices(v.indices, v.Rank(), len(v.values), coord)
	if !found {
		return zero, nil
	}
	return v.values[pos], nil
}

// Put always fails: views are read-only.
func (v *View[T]) Put(_ T, _ ...int) error {
	return fmt.Errorf("put: %w", ErrReadOnlyView)
}

// Get returns a view of this view.
func (v *View[T]) Get(idx ...Index) (*View[T], error) {
	return newView[T](v, idx, parallel.DefaultConfig())
}

// GetWith is Get with an explicit fan-out configuration for filtering the
// parent's entries.
func (v *View[T]) GetWith(cfg parallel.Config, idx ...Index) (*View[T], error) {
	return newView[T](v, idx, cfg)
}

// TranslateToPhysical maps a view coordinate to the root coordinate of the
// same element by walking up the chain of parents.
func (v *View[T]) TranslateToPhysical(coord []int) ([]int, error) {
	p, err := v.local.unproject(coord)
	if err != nil {
		return nil, err
	}
	return v.parent.TranslateToPhysical(p)
}

// TranslateDirect maps a view coordinate to the root coordinate in one
// step through the composed selectors. It agrees with TranslateToPhysical.
func (v *View[T]) TranslateDirect(coord []int) ([]int, error) {
	return v.composed.unproject(coord)
}

// Selectors returns the selectors this view was taken with.
func (v *View[T]) Selectors() []Index {
	return slices.Clone(v.selectors)
}

// ComposedSelectors returns selectors that produce this view when applied
// directly to the root tensor.
func (v *View[T]) ComposedSelectors() []Index {
	return v.composed.selectors()
}

// NumHiddenDimensions returns the number of axes of the view that have no
// counterpart in the root tensor.
func (v *View[T]) NumHiddenDimensions() int {
	return v.composed.hidden
}

// Parent returns the tensor the view was taken from.
func (v *View[T]) Parent() Tensor[T] {
	return v.parent
}

// Root returns the COO tensor that owns the storage.
func (v *View[T]) Root() *COO[T] {
	return v.root
}

// VectorCoordinates is COO.VectorCoordinates for the view's entries.
func (v *View[T]) VectorCoordinates() ([]int, error) {
	return vectorCoordinates(v.local.shape, v.indices, len(v.values))
}

// Materialize copies the view into a standalone tensor.
func (v *View[T]) Materialize() *COO[T] {
	return &COO[T]{
		shape:   v.local.shape.Clone(),
		values:  slices.Clone(v.values),
		indices: slices.Clone(v.indices),
	}
}

func (v *View[T]) entries() entrySet[T] {
	return entrySet[T]{indices: v.indices, values: v.values, positions: v.positions}
}

package sparse

import (
	"fmt"
	"slices"

	"github.com/born-ml/sparse/internal/parallel"
	"github.com/born-ml/sparse/internal/tensor"
)

// Numeric is the set of element types a sparse tensor can hold.
type Numeric = tensor.Numeric

// Tensor is the read-side contract shared by COO tensors and their views.
// It is sealed: only *COO and *View implement it.
type Tensor[T Numeric] interface {
	// Shape returns the dense shape. The returned slice must not be modified.
	Shape() tensor.Shape
	// Rank returns len(Shape()).
	Rank() int
	// NNZ returns the number of stored non-zero entries.
	NNZ() int
	// Values returns the stored values in coordinate order (zero-copy).
	Values() []T
	// Indices returns the flat coordinate buffer, NNZ()*Rank() long (zero-copy).
	Indices() []int
	// Coordinate returns a copy of the coordinate of entry i.
	Coordinate(i int) []int
	// At returns the value at coord, or zero if nothing is stored there.
	At(coord ...int) (T, error)
	// Get returns a view selected by one index per axis.
	Get(idx ...Index) (*View[T], error)
	// TranslateToPhysical maps a coordinate of this tensor to the
	// coordinate of the same element in the root COO tensor.
	TranslateToPhysical(coord []int) ([]int, error)
	// Root returns the COO tensor that owns the storage.
	Root() *COO[T]

	entries() entrySet[T]
}

// entrySet is the raw material views are materialized from.
type entrySet[T Numeric] struct {
	indices   []int
	values    []T
	positions []int // Physical positions in the root; nil means identity.
}

func (es entrySet[T]) position(i int) int {
	if es.positions == nil {
		return i
	}
	return es.positions[i]
}

// COO is a sparse tensor in coordinate format.
//
// Coordinates are kept strictly increasing in row-major order, so every
// coordinate is unique, and zero values are never stored.
//
// A COO tensor is not safe for concurrent mutation.
type COO[T Numeric] struct {
	shape   tensor.Shape
	values  []T
	indices []int // len(values)*rank coordinates, entry i at [i*rank, (i+1)*rank)
}

// NewCOO builds a tensor from parallel lists of values and coordinates.
//
// Coordinates are sorted row-major. When the same coordinate appears more
// than once, the value listed last wins; zero values are dropped.
func NewCOO[T Numeric](values []T, coords [][]int, shape tensor.Shape) (*COO[T], error) {
	if len(values) != len(coords) {
		return nil, shapeErrorf("%d values for %d coordinates", len(values), len(coords))
	}
	rank := len(shape)
	flat := make([]int, 0, len(coords)*rank)
	for i, c := range coords {
		if len(c) != rank {
			return nil, shapeErrorf("coordinate %d has %d components, shape %v has rank %d", i, len(c), shape, rank)
		}
		flat = append(flat, c...)
	}
	return build(values, flat, shape, true)
}

// NewCOOFromIndices is NewCOO for a flat coordinate buffer holding
// len(values)*len(shape) components.
func NewCOOFromIndices[T Numeric](values []T, indices []int, shape tensor.Shape) (*COO[T], error) {
	if len(indices) != len(values)*len(shape) {
		return nil, shapeErrorf("%d index components for %d values of rank %d", len(indices), len(values), len(shape))
	}
	return build(values, indices, shape, true)
}

// NewCOOUnchecked is NewCOO without the upper-bound check on coordinates.
//
// It exists to relabel coordinates onto a smaller shape before ravelling
// them with OverflowClip or OverflowWrap. Negative components are still
// rejected. Most operations other than RavelTo assume in-bounds
// coordinates.
func NewCOOUnchecked[T Numeric](values []T, coords [][]int, shape tensor.Shape) (*COO[T], error) {
	if len(values) != len(coords) {
		return nil, shapeErrorf("%d values for %d coordinates", len(values), len(coords))
	}
	rank := len(shape)
	flat := make([]int, 0, len(coords)*rank)
	for i, c := range coords {
		if len(c) != rank {
			return nil, shapeErrorf("coordinate %d has %d components, shape %v has rank %d", i, len(c), shape, rank)
		}
		flat = append(flat, c...)
	}
	return build(values, flat, shape, false)
}

// Zeros returns an empty tensor of the given shape.
func Zeros[T Numeric](shape tensor.Shape) (*COO[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, shapeErrorf("%v", err)
	}
	return &COO[T]{shape: shape.Clone()}, nil
}

// build validates, sorts and de-duplicates entries into a new tensor.
// The inputs are never retained.
func build[T Numeric](values []T, indices []int, shape tensor.Shape, checkBounds bool) (*COO[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, shapeErrorf("%v", err)
	}
	rank := len(shape)
	n := len(values)

	for i := 0; i < n; i++ {
		for axis, v := range coordAt(indices, rank, i) {
			if v < 0 || (checkBounds && v >= shape[axis]) {
				return nil, shapeErrorf("coordinate %v out of bounds for shape %v", coordAt(indices, rank, i), shape)
			}
		}
	}

	out := &COO[T]{
		shape:   shape.Clone(),
		values:  make([]T, 0, n),
		indices: make([]int, 0, n*rank),
	}

	if isStrictlySorted(indices, rank, n) {
		for i, v := range values {
			if v != 0 {
				out.values = append(out.values, v)
				out.indices = append(out.indices, coordAt(indices, rank, i)...)
			}
		}
		return out, nil
	}

	// Stable sort keeps duplicates in input order, so the last one of a
	// run is the one written last.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return compareCoords(coordAt(indices, rank, a), coordAt(indices, rank, b))
	})

	for k := 0; k < n; k++ {
		i := order[k]
		if k+1 < n && compareCoords(coordAt(indices, rank, i), coordAt(indices, rank, order[k+1])) == 0 {
			continue
		}
		if values[i] == 0 {
			continue
		}
		out.values = append(out.values, values[i])
		out.indices = append(out.indices, coordAt(indices, rank, i)...)
	}
	return out, nil
}

// Shape returns the tensor's dense shape.
func (c *COO[T]) Shape() tensor.Shape {
	return c.shape
}

// Rank returns the number of dimensions.
func (c *COO[T]) Rank() int {
	return len(c.shape)
}

// NNZ returns the number of stored non-zero entries.
func (c *COO[T]) NNZ() int {
	return len(c.values)
}

// Values returns the stored values.
//
// WARNING: the slice aliases the tensor's storage.
func (c *COO[T]) Values() []T {
	return c.values
}

// Indices returns the flat coordinate buffer.
//
// WARNING: the slice aliases the tensor's storage.
func (c *COO[T]) Indices() []int {
	return c.indices
}

// Coordinate returns a copy of the coordinate of entry i.
func (c *COO[T]) Coordinate(i int) []int {
	return slices.Clone(coordAt(c.indices, len(c.shape), i))
}

// Density returns NNZ divided by the number of dense elements.
func (c *COO[T]) Density() float64 {
	n, ok := c.shape.CheckedNumElements()
	if n == 0 && ok {
		return 0
	}
	dense := float64(n)
	if !ok {
		dense = 1
		for _, d := range c.shape {
			dense *= float64(d)
		}
	}
	return float64(len(c.values)) / dense
}

// checkCoordinate validates coord against the tensor's shape.
func (c *COO[T]) checkCoordinate(op string, coord []int) error {
	return checkCoordinate(op, c.shape, coord)
}

func checkCoordinate(op string, shape tensor.Shape, coord []int) error {
	if len(coord) != len(shape) {
		return &RankError{Op: op, Want: len(shape), Got: len(coord)}
	}
	for axis, v := range coord {
		if v < 0 || v >= shape[axis] {
			return &IndexError{Op: op, Axis: axis, Index: v, Bound: shape[axis]}
		}
	}
	return nil
}

// Put stores value at coord.
//
// A zero value removes the entry at coord if there is one. On error the
// tensor is left unchanged.
func (c *COO[T]) Put(value T, coord ...int) error {
	if err := c.checkCoordinate("put", coord); err != nil {
		return err
	}

	rank := len(c.shape)
	pos, found := searchIndices(c.indices, rank, len(c.values), coord)
	switch {
	case value == 0 && found:
		c.values = slices.Delete(c.values, pos, pos+1)
		c.indices = slices.Delete(c.indices, pos*rank, (pos+1)*rank)
	case value == 0:
		// Nothing stored, nothing to remove.
	case found:
		c.values[pos] = value
	default:
		c.values = slices.Insert(c.values, pos, value)
		c.indices = slices.Insert(c.indices, pos*rank, coord...)
	}
	return nil
}

// PutLinear is Put addressed by row-major linear index.
func (c *COO[T]) PutLinear(i int, value T) error {
	coord, err := UnravelIndex(i, c.shape)
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}
	return c.Put(value, coord...)
}

// At returns the value stored at coord, or zero.
func (c *COO[T]) At(coord ...int) (T, error) {
	var zero T
	if err := c.checkCoordinate("at", coord); err != nil {
		return zero, err
	}
	pos, found := searchIndices(c.indices, len(c.shape), len(c.values), coord)
	if !found {
		return zero, nil
	}
	return c.values[pos], nil
}

// AtLinear is At addressed by row-major linear index.
func (c *COO[T]) AtLinear(i int) (T, error) {
	coord, err := UnravelIndex(i, c.shape)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("at: %w", err)
	}
	return c.At(coord...)
}

// VectorCoordinates returns, for a vector-shaped tensor, the position of
// every stored entry along its non-unit axis.
func (c *COO[T]) VectorCoordinates() ([]int, error) {
	return vectorCoordinates(c.shape, c.indices, len(c.values))
}

func vectorCoordinates(shape tensor.Shape, indices []int, n int) ([]int, error) {
	var axis int
	switch {
	case len(shape) == 1:
		axis = 0
	case shape.IsRowVector():
		axis = 1
	case shape.IsColumnVector():
		axis = 0
	default:
		return nil, fmt.Errorf("%w: shape %v is not a vector", ErrRankMismatch, shape)
	}

	out := make([]int, n)
	for i := range out {
		out[i] = indices[i*len(shape)+axis]
	}
	return out, nil
}

// Clone returns a deep copy of the tensor.
func (c *COO[T]) Clone() *COO[T] {
	return &COO[T]{
		shape:   c.shape.Clone(),
		values:  slices.Clone(c.values),
		indices: slices.Clone(c.indices),
	}
}

// Get returns a read-only view of the tensor. Entries are filtered with
// parallel.DefaultConfig; use GetWith to choose the fan-out.
func (c *COO[T]) Get(idx ...Index) (*View[T], error) {
	return newView[T](c, idx, parallel.DefaultConfig())
}

// GetWith is Get with an explicit fan-out configuration.
func (c *COO[T]) GetWith(cfg parallel.Config, idx ...Index) (*View[T], error) {
	return newView[T](c, idx, cfg)
}

// TranslateToPhysical returns a copy of coord after validating it; a COO
// tensor is its own physical layout.
func (c *COO[T]) TranslateToPhysical(coord []int) ([]int, error) {
	if err := c.checkCoordinate("translate", coord); err != nil {
		return nil, err
	}
	return slices.Clone(coord), nil
}

// Root returns the tensor itself.
func (c *COO[T]) Root() *COO[T] {
	return c
}

func (c *COO[T]) entries() entrySet[T] {
	return entrySet[T]{indices: c.indices, values: c.values}
}

// Equal reports whether two tensors have the same shape and the same
// stored entries.
func Equal[T Numeric](a, b Tensor[T]) bool {
	return a.Shape().Equal(b.Shape()) &&
		slices.Equal(a.Indices(), b.Indices()) &&
		slices.Equal(a.Values(), b.Values())
}

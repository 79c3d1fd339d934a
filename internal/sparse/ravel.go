package sparse

import (
	"fmt"
	"math"
	"strings"

	"github.com/born-ml/sparse/internal/parallel"
	"github.com/born-ml/sparse/internal/tensor"
)

// OverflowMode decides what RavelIndex does with a component that does
// not fit its axis.
type OverflowMode int

const (
	// OverflowError rejects the coordinate.
	OverflowError OverflowMode = iota
	// OverflowClip clamps the component to [0, bound-1].
	OverflowClip
	// OverflowWrap reduces the component modulo the bound.
	OverflowWrap
)

// String returns the mode name.
func (m OverflowMode) String() string {
	switch m {
	case OverflowError:
		return "error"
	case OverflowClip:
		return "clip"
	case OverflowWrap:
		return "wrap"
	default:
		return fmt.Sprintf("OverflowMode(%d)", int(m))
	}
}

// ParseOverflowMode accepts error, clip and wrap, or their one-letter
// forms t, c and w. An empty string selects OverflowError.
func ParseOverflowMode(s string) (OverflowMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error", "t", "":
		return OverflowError, nil
	case "clip", "c":
		return OverflowClip, nil
	case "wrap", "w":
		return OverflowWrap, nil
	default:
		return OverflowError, fmt.Errorf("unknown overflow mode %q", s)
	}
}

// foldIndex applies mode to component i of an axis with the given bound.
func foldIndex(i, bound, axis int, mode OverflowMode) (int, error) {
	if i >= 0 && i < bound {
		return i, nil
	}
	if bound == 0 {
		return 0, &IndexError{Op: "ravel", Axis: axis, Index: i, Bound: bound}
	}
	switch mode {
	case OverflowClip:
		return min(max(i, 0), bound-1), nil
	case OverflowWrap:
		if i %= bound; i < 0 {
			i += bound
		}
		return i, nil
	default:
		return 0, &IndexError{Op: "ravel", Axis: axis, Index: i, Bound: bound}
	}
}

// RavelIndex returns the row-major flat index of coord in shape.
func RavelIndex(coord []int, shape tensor.Shape, mode OverflowMode) (int, error) {
	if len(coord) != len(shape) {
		return 0, &RankError{Op: "ravel", Want: len(shape), Got: len(coord)}
	}
	flat := 0
	for axis, i := range coord {
		v, err := foldIndex(i, shape[axis], axis, mode)
		if err != nil {
			return 0, err
		}
		if flat > (math.MaxInt-v)/shape[axis] {
			return 0, fmt.Errorf("ravel: %w: flat index of %v overflows int in shape %v", ErrIndexOutOfRange, coord, shape)
		}
		flat = flat*shape[axis] + v
	}
	return flat, nil
}

// flatLength returns the element count of shape, which a rank-1 tensor
// must be able to index.
func flatLength(op string, shape tensor.Shape) (int, error) {
	n, ok := shape.CheckedNumElements()
	if !ok {
		return 0, shapeErrorf("%s: shape %v has more than %d elements", op, shape, math.MaxInt)
	}
	return n, nil
}

// UnravelIndex returns the coordinate of a row-major flat index in shape.
// When the element count of shape overflows int, every non-negative index
// fits.
func UnravelIndex(flat int, shape tensor.Shape) ([]int, error) {
	n, ok := shape.CheckedNumElements()
	if !ok {
		n = math.MaxInt
	}
	if flat < 0 || (ok && flat >= n) {
		return nil, &IndexError{Op: "unravel", Axis: -1, Index: flat, Bound: n}
	}
	coord := make([]int, len(shape))
	for axis := len(shape) - 1; axis >= 0; axis-- {
		coord[axis] = flat % shape[axis]
		flat /= shape[axis]
	}
	return coord, nil
}

// RavelOptions configures RavelTo.
type RavelOptions struct {
	Mode     OverflowMode
	Parallel parallel.Config
}

// Ravel flattens t into a rank-1 tensor of length t.Shape().NumElements().
func Ravel[T Numeric](t Tensor[T], mode OverflowMode) (*COO[T], error) {
	return RavelTo(t, t.Shape(), RavelOptions{Mode: mode, Parallel: parallel.DefaultConfig()})
}

// RavelTo flattens t against shape, which must have t's rank but may be
// smaller than t's own shape. Components beyond shape are handled by
// opts.Mode; when clipping or wrapping folds several entries onto the same
// flat index, the entry that comes last in t's order wins.
func RavelTo[T Numeric](t Tensor[T], shape tensor.Shape, opts RavelOptions) (*COO[T], error) {
	rank := t.Rank()
	if len(shape) != rank {
		return nil, &RankError{Op: "ravel", Want: rank, Got: len(shape)}
	}
	if err := shape.Validate(); err != nil {
		return nil, shapeErrorf("%v", err)
	}
	n, err := flatLength("ravel", shape)
	if err != nil {
		return nil, err
	}

	indices := t.Indices()
	flat := make([]int, t.NNZ())
	err = parallel.ForErr(len(flat), func(i int) error {
		v, err := RavelIndex(coordAt(indices, rank, i), shape, opts.Mode)
		if err != nil {
			return err
		}
		flat[i] = v
		return nil
	}, opts.Parallel)
	if err != nil {
		return nil, err
	}

	return build(t.Values(), flat, tensor.Shape{n}, true)
}

// Unravel expands a rank-1 tensor into shape using the default parallel
// configuration.
func Unravel[T Numeric](flat Tensor[T], shape tensor.Shape) (*COO[T], error) {
	return UnravelWith(flat, shape, parallel.DefaultConfig())
}

// UnravelWith is Unravel with an explicit parallel configuration.
func UnravelWith[T Numeric](flat Tensor[T], shape tensor.Shape, cfg parallel.Config) (*COO[T], error) {
	if flat.Rank() != 1 {
		return nil, &RankError{Op: "unravel", Want: 1, Got: flat.Rank()}
	}
	if err := shape.Validate(); err != nil {
		return nil, shapeErrorf("%v", err)
	}
	if _, err := flatLength("unravel", shape); err != nil {
		return nil, err
	}

	rank := len(shape)
	src := flat.Indices()
	indices := make([]int, len(src)*rank)
	err := parallel.ForErr(len(src), func(i int) error {
		coord, err := UnravelIndex(src[i], shape)
		if err != nil {
			return err
		}
		copy(coordAt(indices, rank, i), coord)
		return nil
	}, cfg)
	if err != nil {
		return nil, err
	}

	return build(flat.Values(), indices, shape, true)
}

package sparse

import (
	"errors"
	"fmt"
)

// Common errors. Detailed errors returned by this package wrap one of these,
// so callers should test with errors.Is.
var (
	ErrShapeMismatch   = errors.New("shape mismatch")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrRankMismatch    = errors.New("rank mismatch")
	ErrReadOnlyView    = errors.New("view is read-only")
	ErrSyntax          = errors.New("invalid index syntax")
)

// IndexError describes an index that does not fit its axis.
type IndexError struct {
	Op    string // Operation that detected the error (e.g. "put", "ravel")
	Axis  int    // Axis of the offending component, -1 for flat indices
	Index int    // Offending index value
	Bound int    // Exclusive upper bound of the axis
}

// Error implements the error interface.
func (e *IndexError) Error() string {
	if e.Axis < 0 {
		return fmt.Sprintf("%s: %v: flat index %d not in [0, %d)", e.Op, ErrIndexOutOfRange, e.Index, e.Bound)
	}
	return fmt.Sprintf("%s: %v: index %d not in [0, %d) on axis %d", e.Op, ErrIndexOutOfRange, e.Index, e.Bound, e.Axis)
}

// Unwrap returns ErrIndexOutOfRange.
func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}

// RankError describes a coordinate or selector list of the wrong length.
type RankError struct {
	Op   string
	Want int
	Got  int
}

// Error implements the error interface.
func (e *RankError) Error() string {
	return fmt.Sprintf("%s: %v: want %d, got %d", e.Op, ErrRankMismatch, e.Want, e.Got)
}

// Unwrap returns ErrRankMismatch.
func (e *RankError) Unwrap() error {
	return ErrRankMismatch
}

func shapeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrShapeMismatch, fmt.Sprintf(format, args...))
}

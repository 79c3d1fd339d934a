package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/born-ml/sparse/internal/serialization"
	"github.com/born-ml/sparse/internal/sparse"
	"github.com/born-ml/sparse/internal/tensor"
)

// parseInts parses "4,2,3". An empty string is an empty list.
func parseInts(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []int{}, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q in %q", p, s)
		}
		out[i] = v
	}
	return out, nil
}

func parseShape(s string) (tensor.Shape, error) {
	dims, err := parseInts(s)
	if err != nil {
		return nil, err
	}
	shape := tensor.Shape(dims)
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return shape, nil
}

// parseEntry parses "c0,c1,...=value".
func parseEntry(s string) ([]int, float64, error) {
	coord, value, ok := strings.Cut(s, "=")
	if !ok {
		return nil, 0, fmt.Errorf("entry %q: want coordinate=value", s)
	}
	c, err := parseInts(coord)
	if err != nil {
		return nil, 0, fmt.Errorf("entry %q: %w", s, err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return nil, 0, fmt.Errorf("entry %q: %w", s, err)
	}
	return c, v, nil
}

func parseDType(s string) (tensor.DataType, error) {
	dtype, ok := tensor.ParseDataType(s)
	if !ok || dtype == tensor.Bool {
		return 0, fmt.Errorf("%w: %q", serialization.ErrUnsupportedDType, s)
	}
	return dtype, nil
}

// readTensor loads a .bcoo file with its values widened to float64.
func readTensor(path string) (*sparse.COO[float64], serialization.Header, error) {
	return serialization.ReadFile[float64](path, serialization.DecodeOptions{})
}

// convert narrows t to T. Values that become zero are dropped.
func convert[T sparse.Numeric](t sparse.Tensor[float64]) (*sparse.COO[T], error) {
	src := t.Values()
	values := make([]T, len(src))
	for i, v := range src {
		values[i] = T(v)
	}
	return sparse.NewCOOFromIndices(values, t.Indices(), t.Shape())
}

// writeTensor writes t to path as dtype.
func (a *app) writeTensor(path string, t sparse.Tensor[float64], dtype tensor.DataType, name string) error {
	opts := serialization.EncodeOptions{
		Name:          name,
		HalfPrecision: a.cfg.Encoding.HalfPrecision && dtype.IsFloat(),
	}
	var err error
	switch dtype {
	case tensor.Float32:
		err = writeAs[float32](path, t, opts)
	case tensor.Float64:
		err = serialization.WriteFile(path, t, opts)
	case tensor.Int32:
		err = writeAs[int32](path, t, opts)
	case tensor.Int64:
		err = writeAs[int64](path, t, opts)
	case tensor.Uint8:
		err = writeAs[uint8](path, t, opts)
	default:
		err = fmt.Errorf("%w: %s", serialization.ErrUnsupportedDType, dtype)
	}
	if err != nil {
		return err
	}
	a.logger.Debug("tensor written", "path", path, "dtype", dtype.String(), "nnz", t.NNZ())
	return nil
}

func writeAs[T sparse.Numeric](path string, t sparse.Tensor[float64], opts serialization.EncodeOptions) error {
	c, err := convert[T](t)
	if err != nil {
		return err
	}
	return serialization.WriteFile[T](path, c, opts)
}

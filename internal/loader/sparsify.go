package loader

import (
	"fmt"
	"math"

	"github.com/born-ml/sparse/internal/sparse"
	"github.com/born-ml/sparse/internal/tensor"
)

// widen returns the elements of a dense tensor as float64.
func widen(raw *tensor.RawTensor) ([]float64, error) {
	out := make([]float64, raw.NumElements())
	switch raw.DType() {
	case tensor.Float32:
		for i, v := range tensor.Data[float32](raw) {
			out[i] = float64(v)
		}
	case tensor.Float64:
		copy(out, tensor.Data[float64](raw))
	case tensor.Int32:
		for i, v := range tensor.Data[int32](raw) {
			out[i] = float64(v)
		}
	case tensor.Int64:
		for i, v := range tensor.Data[int64](raw) {
			out[i] = float64(v)
		}
	case tensor.Uint8:
		for i, v := range tensor.Data[uint8](raw) {
			out[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDType, raw.DType())
	}
	return out, nil
}

// Sparsify keeps the elements of raw whose magnitude exceeds threshold,
// converted to T. Elements that convert to zero are dropped as well.
func Sparsify[T sparse.Numeric](raw *tensor.RawTensor, threshold float64) (*sparse.COO[T], error) {
	if threshold < 0 || math.IsNaN(threshold) {
		return nil, fmt.Errorf("threshold must be a non-negative number, got %v", threshold)
	}
	elems, err := widen(raw)
	if err != nil {
		return nil, err
	}

	shape := raw.Shape()
	var (
		values  []T
		indices []int
	)
	for flat, v := range elems {
		if math.Abs(v) <= threshold || T(v) == 0 {
			continue
		}
		coord, err := sparse.UnravelIndex(flat, shape)
		if err != nil {
			return nil, err
		}
		values = append(values, T(v))
		indices = append(indices, coord...)
	}
	return sparse.NewCOOFromIndices(values, indices, shape)
}

// ImportFile reads the named tensor from a SafeTensors file and sparsifies
// it. The file's metadata is returned alongside.
func ImportFile[T sparse.Numeric](path, name string, threshold float64) (*sparse.COO[T], map[string]string, error) {
	r, err := NewSafeTensorsReader(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = r.Close() }()

	raw, err := r.LoadTensor(name)
	if err != nil {
		return nil, nil, err
	}
	t, err := Sparsify[T](raw, threshold)
	if err != nil {
		return nil, nil, fmt.Errorf("tensor %s: %w", name, err)
	}
	return t, r.Metadata(), nil
}

// ExportFile densifies tensors and writes them to a SafeTensors file.
func ExportFile[T sparse.Numeric](path string, tensors map[string]sparse.Tensor[T], metadata map[string]string) error {
	dense := make(map[string]*tensor.RawTensor, len(tensors))
	for name, t := range tensors {
		raw, err := sparse.ToDense(t)
		if err != nil {
			return fmt.Errorf("tensor %s: %w", name, err)
		}
		dense[name] = raw
	}
	return WriteSafeTensorsFile(path, dense, metadata)
}

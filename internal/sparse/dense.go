package sparse

import (
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/sparse/internal/tensor"
)

// ToDense scatters t into a zero-filled dense tensor of the same shape.
func ToDense[T Numeric](t Tensor[T]) (*tensor.RawTensor, error) {
	raw, err := tensor.NewRaw(t.Shape(), tensor.DataTypeOf[T]())
	if err != nil {
		return nil, shapeErrorf("%v", err)
	}

	data := tensor.Data[T](raw)
	rank := t.Rank()
	indices := t.Indices()
	for i, v := range t.Values() {
		data[raw.Offset(coordAt(indices, rank, i)...)] = v
	}
	return raw, nil
}

// FromDense collects the non-zero elements of a dense tensor.
// The dense tensor's dtype must match T.
func FromDense[T Numeric](raw *tensor.RawTensor) (*COO[T], error) {
	if want := tensor.DataTypeOf[T](); raw.DType() != want {
		return nil, shapeErrorf("dense dtype %s, want %s", raw.DType(), want)
	}

	shape := raw.Shape()
	var (
		values  []T
		indices []int
	)
	for flat, v := range tensor.Data[T](raw) {
		if v == 0 {
			continue
		}
		coord, err := UnravelIndex(flat, shape)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		indices = append(indices, coord...)
	}
	return build(values, indices, shape, true)
}

// ToMatrix converts a rank-2 tensor to a gonum dense matrix.
func ToMatrix[T Numeric](t Tensor[T]) (*mat.Dense, error) {
	shape := t.Shape()
	if len(shape) != 2 {
		return nil, &RankError{Op: "matrix", Want: 2, Got: len(shape)}
	}
	if shape[0] == 0 || shape[1] == 0 {
		return nil, shapeErrorf("cannot build a %dx%d matrix", shape[0], shape[1])
	}

	m := mat.NewDense(shape[0], shape[1], nil)
	indices := t.Indices()
	for i, v := range t.Values() {
		m.Set(indices[2*i], indices[2*i+1], float64(v))
	}
	return m, nil
}

// FromMatrix collects the non-zero elements of m, converted to T.
func FromMatrix[T Numeric](m mat.Matrix) (*COO[T], error) {
	rows, cols := m.Dims()
	var (
		values  []T
		indices []int
	)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if v := T(m.At(r, c)); v != 0 {
				values = append(values, v)
				indices = append(indices, r, c)
			}
		}
	}
	return build(values, indices, tensor.Shape{rows, cols}, true)
}

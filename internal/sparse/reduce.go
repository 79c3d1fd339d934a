package sparse

import "gonum.org/v1/gonum/floats"

func float64Values[T Numeric](t Tensor[T]) []float64 {
	vals := t.Values()
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = float64(v)
	}
	return out
}

// Sum returns the sum of all elements of t as float64.
func Sum[T Numeric](t Tensor[T]) float64 {
	return floats.Sum(float64Values(t))
}

// Norm returns the L-norm of t viewed as a flat vector. L follows
// floats.Norm: 1, 2, or math.Inf(1) for the maximum absolute value.
// Unstored zeros never change the result.
func Norm[T Numeric](t Tensor[T], L float64) float64 {
	if t.NNZ() == 0 {
		return 0
	}
	return floats.Norm(float64Values(t), L)
}

// Max returns the largest element of t, counting unstored zeros when t
// is not full.
func Max[T Numeric](t Tensor[T]) float64 {
	vals := float64Values(t)
	if n, ok := t.Shape().CheckedNumElements(); !ok || len(vals) < n {
		vals = append(vals, 0)
	}
	if len(vals) == 0 {
		return 0
	}
	return floats.Max(vals)
}

package sparse

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/sparse/internal/tensor"
)

func TestToDense(t *testing.T) {
	c, err := NewCOO([]float32{1, 2, 3}, [][]int{{0, 1}, {1, 0}, {1, 2}}, tensor.Shape{2, 3})
	require.NoError(t, err)

	raw, err := ToDense[float32](c)
	require.NoError(t, err)
	assert.Equal(t, tensor.Float32, raw.DType())
	assert.Equal(t, []float32{0, 1, 0, 2, 0, 3}, tensor.Data[float32](raw))

	back, err := FromDense[float32](raw)
	require.NoError(t, err)
	assert.True(t, Equal[float32](c, back))

	_, err = FromDense[float64](raw)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestToDense_View(t *testing.T) {
	c := sampleCOO(t)
	v, err := c.Get(Point(1))
	require.NoError(t, err)

	raw, err := ToDense[float64](v)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4, 0, 0, 0, 5}, tensor.Data[float64](raw))
}

func TestMatrix(t *testing.T) {
	c, err := NewCOO([]int64{4, -2}, [][]int{{0, 2}, {1, 1}}, tensor.Shape{2, 3})
	require.NoError(t, err)

	m, err := ToMatrix[int64](c)
	require.NoError(t, err)
	r, cols := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 4.0, m.At(0, 2))
	assert.Equal(t, -2.0, m.At(1, 1))
	assert.Equal(t, 0.0, m.At(0, 0))

	back, err := FromMatrix[int64](m)
	require.NoError(t, err)
	assert.True(t, Equal[int64](c, back))

	_, err = ToMatrix[float64](sampleCOO(t))
	assert.ErrorIs(t, err, ErrRankMismatch)

	empty, err := Zeros[float64](tensor.Shape{0, 3})
	require.NoError(t, err)
	_, err = ToMatrix[float64](empty)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestFromMatrix_Identity(t *testing.T) {
	id := mat.NewDiagDense(3, []float64{1, 1, 1})
	c, err := FromMatrix[float64](id)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1, 1, 2, 2}, c.Indices())
}

func TestReductions(t *testing.T) {
	c, err := NewCOO([]float64{3, -4}, [][]int{{0}, {2}}, tensor.Shape{4})
	require.NoError(t, err)

	assert.InDelta(t, -1.0, Sum[float64](c), 1e-12)
	assert.InDelta(t, 7.0, Norm[float64](c, 1), 1e-12)
	assert.InDelta(t, 5.0, Norm[float64](c, 2), 1e-12)
	assert.InDelta(t, 4.0, Norm[float64](c, math.Inf(1)), 1e-12)
	assert.Equal(t, 3.0, Max[float64](c))

	negative, err := NewCOO([]float64{-1, -2}, [][]int{{0}, {1}}, tensor.Shape{3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, Max[float64](negative), "unstored zeros count")

	full, err := NewCOO([]float64{-1, -2}, [][]int{{0}, {1}}, tensor.Shape{2})
	require.NoError(t, err)
	assert.Equal(t, -1.0, Max[float64](full))

	empty, err := Zeros[float64](tensor.Shape{3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, Sum[float64](empty))
	assert.Equal(t, 0.0, Norm[float64](empty, 2))
}

func TestFprint(t *testing.T) {
	c, err := NewCOO([]int32{5, 6}, [][]int{{1, 0}, {0, 2}}, tensor.Shape{2, 3})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Fprint[int32](&buf, c))
	assert.Equal(t, "(0,2) 6\n(1,0) 5\n", buf.String())
	assert.Equal(t, "COO[int32](shape=[2 3], nnz=2)", c.String())
}

package store

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sparse/internal/serialization"
	"github.com/born-ml/sparse/internal/sparse"
	"github.com/born-ml/sparse/internal/tensor"
)

func openTestStore(t *testing.T, cfg Config) *Store {
	t.Helper()
	s, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleTensor(t *testing.T) *sparse.COO[float32] {
	t.Helper()
	c, err := sparse.NewCOO(
		[]float32{1.5, -2, 4},
		[][]int{{0, 1}, {2, 2}, {3, 0}},
		tensor.Shape{4, 3},
	)
	require.NoError(t, err)
	return c
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Config{InMemory: true})
	c := sampleTensor(t)

	rev, err := Save[float32](ctx, s, "grads", c)
	require.NoError(t, err)
	assert.Len(t, rev, 36)

	got, err := Load[float32](ctx, s, "grads")
	require.NoError(t, err)
	assert.True(t, sparse.Equal[float32](c, got))

	// Values are converted on load.
	wide, err := Load[float64](ctx, s, "grads")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -2, 4}, wide.Values())

	h, err := s.Stat(ctx, "grads")
	require.NoError(t, err)
	assert.Equal(t, "grads", h.Name)
	assert.Equal(t, rev, h.Metadata[RevisionKey])
	assert.Equal(t, []int{4, 3}, h.Shape)
	assert.Equal(t, 3, h.NNZ)
}

func TestSaveReplaces(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Config{InMemory: true})

	rev1, err := Save[float32](ctx, s, "grads", sampleTensor(t))
	require.NoError(t, err)

	empty, err := sparse.Zeros[float32](tensor.Shape{2})
	require.NoError(t, err)
	rev2, err := Save[float32](ctx, s, "grads", empty)
	require.NoError(t, err)
	assert.NotEqual(t, rev1, rev2)

	got, err := Load[float32](ctx, s, "grads")
	require.NoError(t, err)
	assert.Zero(t, got.NNZ())
	assert.Equal(t, tensor.Shape{2}, got.Shape())
}

func TestSaveView(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Config{InMemory: true})

	v, err := sampleTensor(t).Get(sparse.Interval(2, 4))
	require.NoError(t, err)
	_, err = Save[float32](ctx, s, "tail", v)
	require.NoError(t, err)

	got, err := Load[float32](ctx, s, "tail")
	require.NoError(t, err)
	assert.True(t, sparse.Equal[float32](v, got))
}

func TestHalfPrecision(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Config{InMemory: true, HalfPrecision: true})

	_, err := Save[float32](ctx, s, "half", sampleTensor(t))
	require.NoError(t, err)
	h, err := s.Stat(ctx, "half")
	require.NoError(t, err)
	assert.True(t, h.HasFlag(serialization.FlagHalfPrecision))

	// Integer tensors are stored at full width.
	ints, err := sparse.NewCOO([]int32{3}, [][]int{{1}}, tensor.Shape{2})
	require.NoError(t, err)
	_, err = Save[int32](ctx, s, "ints", ints)
	require.NoError(t, err)
	h, err = s.Stat(ctx, "ints")
	require.NoError(t, err)
	assert.False(t, h.HasFlag(serialization.FlagHalfPrecision))
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Config{InMemory: true})

	_, err := Load[float32](ctx, s, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Stat(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "missing"), ErrNotFound)
}

func TestInvalidNames(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Config{InMemory: true})
	c := sampleTensor(t)

	for _, name := range []string{"", "a/b", "../up", "nul\x00"} {
		_, err := Save[float32](ctx, s, name, c)
		assert.ErrorIs(t, err, serialization.ErrInvalidTensorName, "name %q", name)
	}
}

func TestListDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Config{InMemory: true})
	c := sampleTensor(t)

	for _, name := range []string{"layer.1.mask", "layer.0.mask", "embed"} {
		_, err := Save[float32](ctx, s, name, c)
		require.NoError(t, err)
	}

	names, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"embed", "layer.0.mask", "layer.1.mask"}, names)

	names, err = s.List(ctx, "layer.")
	require.NoError(t, err)
	assert.Equal(t, []string{"layer.0.mask", "layer.1.mask"}, names)

	require.NoError(t, s.Delete(ctx, "layer.0.mask"))
	names, err = s.List(ctx, "layer.")
	require.NoError(t, err)
	assert.Equal(t, []string{"layer.1.mask"}, names)

	names, err = s.List(ctx, "nothing")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestCancelledContext(t *testing.T) {
	s := openTestStore(t, Config{InMemory: true})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Save[float32](ctx, s, "grads", sampleTensor(t))
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.List(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c := sampleTensor(t)

	s, err := Open(Config{Path: dir, SyncWrites: true})
	require.NoError(t, err)
	_, err = Save[float32](ctx, s, "grads", c)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s = openTestStore(t, Config{Path: dir})
	got, err := Load[float32](ctx, s, "grads")
	require.NoError(t, err)
	assert.True(t, sparse.Equal[float32](c, got))
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	s := openTestStore(t, Config{InMemory: true, Registerer: reg})

	_, err := Save[float32](ctx, s, "grads", sampleTensor(t))
	require.NoError(t, err)
	_, err = Load[float32](ctx, s, "grads")
	require.NoError(t, err)
	_, err = Load[float32](ctx, s, "missing")
	require.Error(t, err)
	_, err = Save[float32](ctx, s, "a/b", sampleTensor(t))
	require.Error(t, err)

	ops := s.metrics.operations
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("save", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("save", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("load", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("load", "not_found")))
	assert.Greater(t, testutil.ToFloat64(s.metrics.bytesWritten), 0.0)

	n, err := testutil.GatherAndCount(reg, "store_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

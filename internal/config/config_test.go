package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sparse/internal/sparse"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bornsparse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	opts, err := cfg.Ravel.Options()
	require.NoError(t, err)
	assert.Equal(t, sparse.OverflowError, opts.Mode)
	assert.Equal(t, 1024, opts.Parallel.MinChunkSize)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
store:
  path: /var/lib/bornsparse
  sync_writes: false
ravel:
  overflow: wrap
  parallel: false
  workers: 3
  min_chunk: 16
encoding:
  half_precision: true
log:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/bornsparse", cfg.Store.Path)
	assert.False(t, cfg.Store.SyncWrites)
	assert.True(t, cfg.Encoding.HalfPrecision)
	assert.Equal(t, "debug", cfg.Log.Level)

	opts, err := cfg.Ravel.Options()
	require.NoError(t, err)
	assert.Equal(t, sparse.OverflowWrap, opts.Mode)
	assert.False(t, opts.Parallel.Enabled)
	assert.Equal(t, 3, opts.Parallel.NumWorkers)
	assert.Equal(t, 16, opts.Parallel.MinChunkSize)

	sc := cfg.StoreOptions(nil, nil)
	assert.Equal(t, "/var/lib/bornsparse", sc.Path)
	assert.True(t, sc.HalfPrecision)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "log:\n  level: warn\n"))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, Default().Store, cfg.Store)
	assert.Equal(t, Default().Ravel, cfg.Ravel)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown field", "store:\n  pth: x\n"},
		{"bad yaml", "store: [\n"},
		{"bad overflow", "ravel:\n  overflow: saturate\n"},
		{"bad level", "log:\n  level: trace\n"},
		{"bad format", "log:\n  format: xml\n"},
		{"negative workers", "ravel:\n  workers: -1\n"},
		{"zero chunk", "ravel:\n  min_chunk: 0\n"},
		{"missing path", "store:\n  path: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOverflowValidation(t *testing.T) {
	v, err := newValidator()
	require.NoError(t, err)

	cfg := Default()
	for _, mode := range []string{"error", "clip", "wrap", "c", "W"} {
		cfg.Ravel.Overflow = mode
		assert.NoError(t, v.Struct(cfg), mode)
	}

	cfg.Ravel.Overflow = "saturate"
	var verrs validator.ValidationErrors
	require.ErrorAs(t, v.Struct(cfg), &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "overflow", verrs[0].Tag())
	assert.Equal(t, "Overflow", verrs[0].Field())
}

func TestInMemoryNeedsNoPath(t *testing.T) {
	cfg, err := Load(writeConfig(t, "store:\n  path: \"\"\n  in_memory: true\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Store.InMemory)
}

func TestLoadEnv(t *testing.T) {
	env := map[string]string{
		"BORN_SPARSE_STORE_PATH":              "/tmp/x",
		"BORN_SPARSE_STORE_IN_MEMORY":         "true",
		"BORN_SPARSE_RAVEL_OVERFLOW":          "clip",
		"BORN_SPARSE_RAVEL_WORKERS":           "2",
		"BORN_SPARSE_ENCODING_HALF_PRECISION": "1",
		"BORN_SPARSE_LOG_FORMAT":              "json",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, loadEnv(&cfg, lookup))
	assert.Equal(t, "/tmp/x", cfg.Store.Path)
	assert.True(t, cfg.Store.InMemory)
	assert.Equal(t, "clip", cfg.Ravel.Overflow)
	assert.Equal(t, 2, cfg.Ravel.Workers)
	assert.True(t, cfg.Encoding.HalfPrecision)
	assert.Equal(t, "json", cfg.Log.Format)

	env["BORN_SPARSE_RAVEL_WORKERS"] = "many"
	env["BORN_SPARSE_STORE_SYNC_WRITES"] = "maybe"
	err := loadEnv(&cfg, lookup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BORN_SPARSE_RAVEL_WORKERS")
	assert.Contains(t, err.Error(), "BORN_SPARSE_STORE_SYNC_WRITES")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("BORN_SPARSE_LOG_LEVEL", "error")
	cfg, err := Load(writeConfig(t, "log:\n  level: debug\n"))
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	logger.Info("dropped")
	logger.Warn("kept", "nnz", 3)

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, `"nnz":3`)

	buf.Reset()
	LogConfig{Level: "debug", Format: "text"}.NewLogger(&buf).Debug("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

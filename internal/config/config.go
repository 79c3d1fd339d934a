// Package config loads bornsparse settings.
//
// Settings are merged in order: defaults, then a YAML file, then
// BORN_SPARSE_* environment variables. The result is validated before use.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/sparse/internal/parallel"
	"github.com/born-ml/sparse/internal/sparse"
	"github.com/born-ml/sparse/internal/store"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BORN_SPARSE_"

// Config is the complete bornsparse configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Ravel    RavelConfig    `yaml:"ravel"`
	Encoding EncodingConfig `yaml:"encoding"`
	Log      LogConfig      `yaml:"log"`
}

// StoreConfig configures the named tensor store.
type StoreConfig struct {
	Path       string `yaml:"path" validate:"required_unless=InMemory true"`
	InMemory   bool   `yaml:"in_memory"`
	SyncWrites bool   `yaml:"sync_writes"`
}

// RavelConfig configures Ravel and Unravel.
type RavelConfig struct {
	Overflow string `yaml:"overflow" validate:"overflow"`
	Parallel bool   `yaml:"parallel"`
	Workers  int    `yaml:"workers" validate:"gte=0,lte=1024"`
	MinChunk int    `yaml:"min_chunk" validate:"gte=1"`
}

// EncodingConfig configures .bcoo encoding.
type EncodingConfig struct {
	HalfPrecision bool `yaml:"half_precision"`
}

// LogConfig configures the slog logger of the binaries.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the built-in configuration.
func Default() Config {
	pc := parallel.DefaultConfig()
	return Config{
		Store: StoreConfig{
			Path:       ".bornsparse",
			SyncWrites: true,
		},
		Ravel: RavelConfig{
			Overflow: sparse.OverflowError.String(),
			Parallel: pc.Enabled,
			Workers:  pc.NumWorkers,
			MinChunk: pc.MinChunkSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load returns the defaults overridden by the YAML file at path (if path is
// non-empty) and by the environment. A missing file is an error only when
// path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := loadEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, fmt.Errorf("load environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	//nolint:gosec // G304: config path is supplied by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// loadEnv applies BORN_SPARSE_* overrides. lookup is os.LookupEnv outside
// tests.
func loadEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = b
		return nil
	}
	integer := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = i
		return nil
	}

	str("STORE_PATH", &cfg.Store.Path)
	str("RAVEL_OVERFLOW", &cfg.Ravel.Overflow)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)

	return errors.Join(
		boolean("STORE_IN_MEMORY", &cfg.Store.InMemory),
		boolean("STORE_SYNC_WRITES", &cfg.Store.SyncWrites),
		boolean("RAVEL_PARALLEL", &cfg.Ravel.Parallel),
		integer("RAVEL_WORKERS", &cfg.Ravel.Workers),
		integer("RAVEL_MIN_CHUNK", &cfg.Ravel.MinChunk),
		boolean("ENCODING_HALF_PRECISION", &cfg.Encoding.HalfPrecision),
	)
}

var validate = mustValidator()

func mustValidator() *validator.Validate {
	v, err := newValidator()
	if err != nil {
		panic(err)
	}
	return v
}

func newValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("overflow", func(fl validator.FieldLevel) bool {
		_, err := sparse.ParseOverflowMode(fl.Field().String())
		return err == nil
	})
	if err != nil {
		return nil, fmt.Errorf("register overflow validation: %w", err)
	}
	return v, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	return validate.Struct(c)
}

// StoreOptions returns the store.Config for this configuration.
func (c Config) StoreOptions(logger *slog.Logger, reg prometheus.Registerer) store.Config {
	return store.Config{
		Path:          c.Store.Path,
		InMemory:      c.Store.InMemory,
		SyncWrites:    c.Store.SyncWrites,
		HalfPrecision: c.Encoding.HalfPrecision,
		Logger:        logger,
		Registerer:    reg,
	}
}

// Options returns the sparse.RavelOptions for this section.
func (r RavelConfig) Options() (sparse.RavelOptions, error) {
	mode, err := sparse.ParseOverflowMode(r.Overflow)
	if err != nil {
		return sparse.RavelOptions{}, err
	}
	pc := parallel.DefaultConfig()
	pc.Enabled = r.Parallel
	if r.Workers > 0 {
		pc.NumWorkers = r.Workers
	}
	pc.MinChunkSize = r.MinChunk
	return sparse.RavelOptions{Mode: mode, Parallel: pc}, nil
}

// SlogLevel returns the slog level for l.Level, defaulting to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a logger writing to w.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

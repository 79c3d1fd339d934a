// Package store keeps named sparse tensors in an embedded badger database.
//
// Each tensor is stored under the key "tensor/<name>" as a complete .bcoo
// stream, so anything Save writes can also be read back with
// serialization.Decode.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/born-ml/sparse/internal/serialization"
	"github.com/born-ml/sparse/internal/sparse"
	"github.com/born-ml/sparse/internal/tensor"
)

// ErrNotFound is returned when no tensor is stored under a name.
var ErrNotFound = errors.New("tensor not found")

// RevisionKey is the metadata key Save records the revision under.
const RevisionKey = "revision"

const keyPrefix = "tensor/"

// Config holds configuration for a Store.
type Config struct {
	// Path is the directory for database files.
	// Ignored when InMemory is true.
	Path string

	// InMemory keeps everything in memory. Useful for testing.
	InMemory bool

	// SyncWrites syncs every commit to disk.
	SyncWrites bool

	// HalfPrecision stores float tensors as binary16.
	HalfPrecision bool

	// Logger receives store and badger logs. Nil disables logging.
	Logger *slog.Logger

	// Registerer receives the store metrics. Nil leaves them unregistered.
	Registerer prometheus.Registerer
}

// Store is a named tensor store. It is safe for concurrent use.
type Store struct {
	db            *badger.DB
	logger        *slog.Logger
	metrics       *metrics
	halfPrecision bool
}

// Open opens the store described by cfg, creating its directory if needed.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	logger := cfg.Logger
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger.With("component", "badger")})
	} else {
		opts = opts.WithLogger(nil)
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	return &Store{
		db:            db,
		logger:        logger,
		metrics:       newMetrics(cfg.Registerer),
		halfPrecision: cfg.HalfPrecision,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func key(name string) []byte {
	return []byte(keyPrefix + name)
}

func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", serialization.ErrInvalidTensorName)
	}
	return serialization.ValidateTensorName(name)
}

// update runs fn in a read-write transaction and commits if it succeeds.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	txn := s.db.NewTransaction(true)
	defer txn.Discard()

	if err := fn(txn); err != nil {
		return err
	}
	return txn.Commit()
}

// view runs fn in a read-only transaction.
func (s *Store) view(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	txn := s.db.NewTransaction(false)
	defer txn.Discard()

	return fn(txn)
}

// get calls fn with the stored bytes of name. The bytes are only valid
// during the call.
func (s *Store) get(ctx context.Context, name string, fn func(val []byte) error) error {
	if err := checkName(name); err != nil {
		return err
	}
	return s.view(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get(key(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		if err != nil {
			return err
		}
		return item.Value(fn)
	})
}

// Save stores t under name, replacing any previous tensor, and returns the
// new revision.
func Save[T sparse.Numeric](ctx context.Context, s *Store, name string, t sparse.Tensor[T]) (revision string, err error) {
	start := time.Now()
	defer func() { s.metrics.observe("save", start, err) }()

	if err := checkName(name); err != nil {
		return "", err
	}

	revision = uuid.NewString()
	var buf bytes.Buffer
	opts := serialization.EncodeOptions{
		Name:          name,
		HalfPrecision: s.halfPrecision && tensor.DataTypeOf[T]().IsFloat(),
		Metadata:      map[string]string{RevisionKey: revision},
	}
	if err := serialization.Encode(&buf, t, opts); err != nil {
		return "", fmt.Errorf("encode %q: %w", name, err)
	}

	if err := s.update(ctx, func(txn *badger.Txn) error {
		return txn.Set(key(name), buf.Bytes())
	}); err != nil {
		return "", fmt.Errorf("save %q: %w", name, err)
	}

	s.metrics.bytesWritten.Add(float64(buf.Len()))
	s.logger.Debug("tensor saved",
		slog.String("name", name),
		slog.String("revision", revision),
		slog.Int("nnz", t.NNZ()),
		slog.Int("bytes", buf.Len()))
	return revision, nil
}

// Load reads the tensor stored under name, converting its values to T.
func Load[T sparse.Numeric](ctx context.Context, s *Store, name string) (t *sparse.COO[T], err error) {
	start := time.Now()
	defer func() { s.metrics.observe("load", start, err) }()

	err = s.get(ctx, name, func(val []byte) error {
		var derr error
		t, _, derr = serialization.Decode[T](bytes.NewReader(val), serialization.DecodeOptions{})
		return derr
	})
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}
	return t, nil
}

// Stat returns the header of the tensor stored under name.
func (s *Store) Stat(ctx context.Context, name string) (h serialization.Header, err error) {
	start := time.Now()
	defer func() { s.metrics.observe("stat", start, err) }()

	err = s.get(ctx, name, func(val []byte) error {
		var herr error
		h, herr = serialization.ReadHeader(bytes.NewReader(val), serialization.ValidationStrict)
		return herr
	})
	if err != nil {
		return serialization.Header{}, fmt.Errorf("stat %q: %w", name, err)
	}
	return h, nil
}

// List returns the stored names beginning with prefix, in byte order.
func (s *Store) List(ctx context.Context, prefix string) (names []string, err error) {
	start := time.Now()
	defer func() { s.metrics.observe("list", start, err) }()

	err = s.view(ctx, func(txn *badger.Txn) error {
		p := key(prefix)
		it := txn.NewIterator(badger.IteratorOptions{Prefix: p})
		defer it.Close()

		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), keyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return names, nil
}

// Delete removes the tensor stored under name.
func (s *Store) Delete(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { s.metrics.observe("delete", start, err) }()

	if err := checkName(name); err != nil {
		return err
	}
	err = s.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(key(name)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %q", ErrNotFound, name)
			}
			return err
		}
		return txn.Delete(key(name))
	})
	if err != nil {
		return fmt.Errorf("delete %q: %w", name, err)
	}
	s.logger.Debug("tensor deleted", slog.String("name", name))
	return nil
}

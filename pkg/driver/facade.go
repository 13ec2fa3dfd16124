// Package driver wraps the trie core with the ambient concerns a real
// service built on it would need: per-operation tracing, redaction-safe
// error reporting, Prometheus metrics, a managed worker pool, and
// (with Config.Debug) a Sentry hook in error wrapping: a thin
// façade over the core data structure that owns cross-cutting concerns
// the structure itself should not know about.
package driver

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/bobboyms/revtrie/pkg/trie"
)

// Config configures a Facade. The zero value is usable; MaxKey and
// MaxCount fall back to the trie package's own defaults.
type Config struct {
	MaxKey          int
	MaxCount        int
	DedicatedAgent  bool
	JournalCapacity int // 0 disables the journal

	// Registerer receives the Prometheus collectors; nil selects
	// prometheus.DefaultRegisterer when Namespace is set. With both
	// unset, no metrics are published.
	Registerer prometheus.Registerer
	Namespace  string

	// Debug makes wrapErr report errors wrapping
	// trie.ErrInvariantViolation to Sentry. No Facade method passes
	// such an error to wrapErr, and panics raised by
	// trie.AssertInvariant are not recovered here, so they are not
	// reported. CaptureException is inert without a prior sentry.Init
	// call regardless.
	Debug bool
}

// Facade is the public entry point for using a Trie as a component of a
// larger service rather than as a bare library.
type Facade struct {
	trie   *trie.Trie
	maxKey int
	debug  bool

	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
}

// New constructs a Facade from cfg. It does not start the worker pool;
// call Init for that.
func New(cfg Config) *Facade {
	maxKey := cfg.MaxKey
	if maxKey <= 0 {
		maxKey = 256
	}

	opts := trie.Options{
		MaxKey:         maxKey,
		MaxCount:       cfg.MaxCount,
		DedicatedAgent: cfg.DedicatedAgent,
	}
	if cfg.JournalCapacity > 0 {
		opts.Journal = trie.NewJournal(cfg.JournalCapacity)
	}

	// t is captured by the gauge's source closure before it exists;
	// the closure only runs on a Prometheus scrape, by which point the
	// assignment below has long since completed.
	var t *trie.Trie
	if cfg.Registerer != nil || cfg.Namespace != "" {
		reg := cfg.Registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		opts.Metrics = trie.NewMetrics(reg, cfg.Namespace, func() float64 { return float64(t.Count()) })
	}
	t = trie.New(opts)

	return &Facade{trie: t, maxKey: maxKey, debug: cfg.Debug}
}

// Init starts the façade's worker pool: goroutines launched via Go run
// concurrently, sharing a cancellable context drawn from parent and a
// golang.org/x/sync/errgroup so Shutdown can drain them
// deterministically. workerCount is informational; it does not limit
// how many goroutines Go may run at once.
func (f *Facade) Init(parent context.Context, workerCount int) {
	ctx, cancel := context.WithCancel(parent)
	group, gctx := errgroup.WithContext(ctx)
	f.group, f.ctx, f.cancel = group, gctx, cancel
}

// Go schedules fn to run on the façade's worker pool. It must be called
// after Init.
func (f *Facade) Go(fn func(ctx context.Context) error) {
	f.group.Go(func() error {
		return fn(f.ctx)
	})
}

// Shutdown stops the capacity agent (if any), cancels the worker pool's
// context, and waits for every scheduled Go call to return or ctx to
// expire, whichever comes first.
func (f *Facade) Shutdown(ctx context.Context) error {
	f.trie.ShutdownCapacityAgent()
	if f.group == nil {
		return nil
	}
	f.cancel()

	done := make(chan error, 1)
	go func() { done <- f.group.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Lookup returns the value bound to key, or a wrapped NotFoundError.
func (f *Facade) Lookup(ctx context.Context, key []byte) (uint32, error) {
	if len(key) == 0 {
		return 0, f.wrapErr("lookup", key, trie.ErrEmptyKey)
	}
	v, ok := f.trie.Lookup(key)
	if !ok {
		return 0, f.wrapErr("lookup", key, &trie.NotFoundError{Key: string(key)})
	}
	return v, nil
}

// Insert binds key to value, returning a wrapped error describing why
// not on failure (empty key, key too long, or already bound).
func (f *Facade) Insert(ctx context.Context, key []byte, value uint32) error {
	if len(key) == 0 {
		return f.wrapErr("insert", key, trie.ErrEmptyKey)
	}
	if len(key) >= f.maxKey {
		return f.wrapErr("insert", key, trie.ErrKeyTooLong)
	}
	if !f.trie.Insert(key, value) {
		return f.wrapErr("insert", key, &trie.DuplicateKeyError{Key: string(key)})
	}
	return nil
}

// Remove clears the binding for key, returning a wrapped NotFoundError
// if none existed.
func (f *Facade) Remove(ctx context.Context, key []byte) error {
	if len(key) == 0 {
		return f.wrapErr("remove", key, trie.ErrEmptyKey)
	}
	if !f.trie.Remove(key) {
		return f.wrapErr("remove", key, &trie.NotFoundError{Key: string(key)})
	}
	return nil
}

// EnforceCapacity runs one inline capacity sweep; see trie.Trie.EnforceCapacity.
func (f *Facade) EnforceCapacity() { f.trie.EnforceCapacity() }

// ShutdownCapacityAgent stops the dedicated eviction goroutine, if any.
func (f *Facade) ShutdownCapacityAgent() { f.trie.ShutdownCapacityAgent() }

// Count returns the number of live trie nodes.
func (f *Facade) Count() int { return f.trie.Count() }

// Print writes a diagnostic dump of the underlying trie to w.
func (f *Facade) Print(w io.Writer) { f.trie.Print(w) }

// wrapErr annotates cause with a fresh uuid v7 operation id and a
// redaction-safe rendering of key (the operation name and id are marked
// safe and appear in plain text; the key is unsafe and is replaced by a
// redaction marker in the error message). When Debug is set and cause is
// ErrInvariantViolation, the wrapped error is also reported to Sentry
// before being returned to the caller, who is expected to re-panic it.
func (f *Facade) wrapErr(op string, key []byte, cause error) error {
	id, err := uuid.NewV7()
	if err != nil {
		// Entropy source failure: astronomically unlikely, and the
		// operation id is diagnostic-only, so fall back to the nil
		// UUID rather than losing the underlying error.
		id = uuid.UUID{}
	}

	line := redact.Sprintf("revtrie %s failed op=%s key=%s", redact.SafeString(op), redact.SafeString(id.String()), key)
	wrapped := errors.Wrapf(cause, "%s", line.Redact())

	if f.debug && errors.Is(cause, trie.ErrInvariantViolation) {
		sentry.CaptureException(wrapped)
	}
	return wrapped
}

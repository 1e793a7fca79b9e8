package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ziadkadry99/webgl-serve/internal/rewrite"
	"github.com/ziadkadry99/webgl-serve/internal/store"
)

var (
	// ErrNotReady is returned when no store was attached in time.
	ErrNotReady = errors.New("content store is not ready")
	// ErrAlreadyAttached is returned by a second Attach.
	ErrAlreadyAttached = errors.New("content store already attached")
)

// DefaultReadyTimeout bounds how long a request waits for the store.
const DefaultReadyTimeout = 30 * time.Second

// Options configures an Env.
type Options struct {
	Prefix        string
	Index         string
	Precompressed bool
	ReadyTimeout  time.Duration
	Logger        *slog.Logger
}

// Env is the state shared by every request of one server: the extracted
// script registry and the content store. The store is attached once; until
// then lookups wait on the readiness signal.
type Env struct {
	scripts       *rewrite.Registry
	prefix        string
	index         string
	precompressed bool
	readyTimeout  time.Duration
	logger        *slog.Logger

	once  sync.Once
	ready chan struct{}
	store store.Store
}

// NewEnv returns an Env with no store attached.
func NewEnv(opts Options) *Env {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "/"
	}
	index := opts.Index
	if index == "" {
		index = "index.html"
	}
	timeout := opts.ReadyTimeout
	if timeout <= 0 {
		timeout = DefaultReadyTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Env{
		scripts:       rewrite.NewRegistry(),
		prefix:        prefix,
		index:         index,
		precompressed: opts.Precompressed,
		readyTimeout:  timeout,
		logger:        logger,
		ready:         make(chan struct{}),
	}
}

// Attach sets the content store and releases waiting lookups.
func (e *Env) Attach(s store.Store) error {
	err := ErrAlreadyAttached
	e.once.Do(func() {
		e.store = s
		close(e.ready)
		err = nil
	})
	return err
}

// Ready reports whether a store is attached.
func (e *Env) Ready() bool {
	select {
	case <-e.ready:
		return true
	default:
		return false
	}
}

// Store waits for the content store. It gives up when ctx is done or the
// ready timeout expires.
func (e *Env) Store(ctx context.Context) (store.Store, error) {
	select {
	case <-e.ready:
		return e.store, nil
	default:
	}

	timer := time.NewTimer(e.readyTimeout)
	defer timer.Stop()
	select {
	case <-e.ready:
		return e.store, nil
	case <-timer.C:
		return nil, ErrNotReady
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for store: %w", ctx.Err())
	}
}

// Scripts returns the extracted script registry.
func (e *Env) Scripts() *rewrite.Registry { return e.scripts }

// Prefix returns the virtual path prefix, e.g. "/unity-game/".
func (e *Env) Prefix() string { return e.prefix }

// Index returns the document served for the prefix root.
func (e *Env) Index() string { return e.index }

// Reset forgets every extracted script.
func (e *Env) Reset() { e.scripts.Reset() }

// ResolvePath maps a request path to a store path. The prefix is removed
// and an empty remainder becomes the index document. Paths with ".."
// segments are refused.
func (e *Env) ResolvePath(urlPath string) (string, bool) {
	p := strings.TrimPrefix(urlPath, strings.TrimSuffix(e.prefix, "/"))
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return e.index, true
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", false
		}
	}
	return p, true
}

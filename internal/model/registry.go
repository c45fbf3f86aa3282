// Package model owns the process-wide engine instances.
package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ekisa-team/vocalis/internal/backend"
)

// Constructor builds the engine of one backend. It is called at most once per
// successful load and again after every failure.
type Constructor func(ctx context.Context, id backend.Identifier) (backend.Engine, error)

// DefaultLoadTimeout bounds a single engine construction, asset downloads included.
const DefaultLoadTimeout = 30 * time.Minute

// Option configures a Registry.
type Option func(*Registry)

// WithSerializedSynthesis wraps each engine so that its Synthesize calls run
// one at a time.
func WithSerializedSynthesis() Option {
	return func(r *Registry) {
		r.serialize = true
	}
}

// WithLoadTimeout replaces DefaultLoadTimeout. Zero or less disables the bound.
func WithLoadTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.loadTimeout = d
	}
}

// WithStatusHook registers a hook for slot transitions.
func WithStatusHook(h StatusHook) Option {
	return func(r *Registry) {
		r.hooks = append(r.hooks, h)
	}
}

type loadedEngine struct {
	engine backend.Engine
}

type slot struct {
	mu     sync.Mutex // serializes construction
	loaded atomic.Pointer[loadedEngine]

	stateMu       sync.Mutex
	status        Status
	err           string
	loadedAt      *time.Time
	constructions int64
}

// Registry holds at most one engine per backend, constructed on first demand.
type Registry struct {
	construct   Constructor
	slots       map[backend.Identifier]*slot
	serialize   bool
	loadTimeout time.Duration
	hooks       []StatusHook
	closed      atomic.Bool
}

// NewRegistry creates a registry with an empty slot for every known backend.
func NewRegistry(construct Constructor, opts ...Option) *Registry {
	r := &Registry{
		construct:   construct,
		slots:       make(map[backend.Identifier]*slot),
		loadTimeout: DefaultLoadTimeout,
	}
	for _, id := range backend.Identifiers() {
		r.slots[id] = &slot{status: StatusUnloaded}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Engine returns the engine for id, constructing it if needed. Concurrent
// callers for the same backend wait for a single construction. A failed
// construction is not remembered; the next call tries again.
func (r *Registry) Engine(ctx context.Context, id backend.Identifier) (backend.Engine, error) {
	s, ok := r.slots[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", backend.ErrUnknownBackend, id)
	}

	if l := s.loaded.Load(); l != nil {
		return l.engine, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if l := s.loaded.Load(); l != nil {
		return l.engine, nil
	}
	if r.closed.Load() {
		return nil, ErrClosed
	}

	r.transition(id, s, StatusLoading, nil)
	start := time.Now()

	// Construction is shared by every waiter and outlives the request that started it.
	loadCtx := context.WithoutCancel(ctx)
	if r.loadTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(loadCtx, r.loadTimeout)
		defer cancel()
	}

	engine, err := r.construct(loadCtx, id)
	if err != nil {
		r.transition(id, s, StatusFailed, err)
		slog.Error("Failed to load engine", "backend", id, "duration", time.Since(start), "error", err)
		return nil, &InitError{Backend: id, Err: err}
	}

	if r.serialize {
		engine = serialized(engine)
	}
	s.loaded.Store(&loadedEngine{engine: engine})
	r.transition(id, s, StatusLoaded, nil)

	slog.Info("Engine loaded", "backend", id, "duration", time.Since(start), "serialized", r.serialize)
	return engine, nil
}

// Loaded returns the engine for id only if it is already constructed.
func (r *Registry) Loaded(id backend.Identifier) (backend.Engine, bool) {
	s, ok := r.slots[id]
	if !ok {
		return nil, false
	}
	l := s.loaded.Load()
	if l == nil {
		return nil, false
	}
	return l.engine, true
}

// Status returns a snapshot of every slot in backend order.
func (r *Registry) Status() []Instance {
	out := make([]Instance, 0, len(r.slots))
	for _, id := range backend.Identifiers() {
		s := r.slots[id]
		s.stateMu.Lock()
		out = append(out, Instance{
			Backend:       id,
			Status:        s.status,
			Error:         s.err,
			LoadedAt:      s.loadedAt,
			Constructions: s.constructions,
		})
		s.stateMu.Unlock()
	}
	return out
}

// Close releases every loaded engine. Later Engine calls fail with ErrClosed.
func (r *Registry) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	for _, id := range backend.Identifiers() {
		s := r.slots[id]
		s.mu.Lock()
		if l := s.loaded.Swap(nil); l != nil {
			if err := l.engine.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", id, err))
			}
			r.transition(id, s, StatusUnloaded, nil)
		}
		s.mu.Unlock()
	}
	return errors.Join(errs...)
}

func (r *Registry) transition(id backend.Identifier, s *slot, status Status, err error) {
	s.stateMu.Lock()
	s.status = status
	s.err = ""
	switch status {
	case StatusLoading:
		s.constructions++
	case StatusLoaded:
		now := time.Now()
		s.loadedAt = &now
	case StatusFailed:
		s.err = err.Error()
	case StatusUnloaded:
		s.loadedAt = nil
	}
	s.stateMu.Unlock()

	for _, h := range r.hooks {
		h(id, status, err)
	}
}

// Package shutdown coordinates graceful draining of in-flight requests.
package shutdown

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"
)

// Coordinator tracks in-flight work and the draining flag.
//
// Lifecycle: Begin sets the flag once and arms a grace timer. Terminated is
// closed when the timer fires or when the last admitted request finishes
// during draining, whichever comes first.
type Coordinator struct {
	grace    time.Duration
	draining atomic.Bool
	inFlight atomic.Int64

	mu         sync.Mutex
	hooks      []func()
	timer      *time.Timer
	terminated chan struct{}
	termOnce   sync.Once
}

// New creates a coordinator with the given grace period.
func New(grace time.Duration) *Coordinator {
	return &Coordinator{
		grace:      grace,
		terminated: make(chan struct{}),
	}
}

// Draining reports whether shutdown has begun.
func (c *Coordinator) Draining() bool {
	return c.draining.Load()
}

// InFlight returns the number of admitted requests that have not finished.
func (c *Coordinator) InFlight() int64 {
	return c.inFlight.Load()
}

// Admit registers a request. It returns false while draining; otherwise the
// caller must invoke release exactly once when done.
func (c *Coordinator) Admit() (release func(), ok bool) {
	if c.draining.Load() {
		return nil, false
	}

	c.inFlight.Add(1)
	if c.draining.Load() {
		c.done()
		return nil, false
	}

	var once sync.Once
	return func() { once.Do(c.done) }, true
}

func (c *Coordinator) done() {
	if c.inFlight.Add(-1) == 0 && c.draining.Load() {
		slog.Info("All in-flight requests finished")
		c.terminate()
	}
}

// OnDrain registers fn to run once when draining begins. Hooks registered
// after Begin run immediately.
func (c *Coordinator) OnDrain(fn func()) {
	c.mu.Lock()
	if !c.draining.Load() {
		c.hooks = append(c.hooks, fn)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	fn()
}

// Begin starts draining. Only the first call has an effect.
func (c *Coordinator) Begin() {
	c.mu.Lock()
	if !c.draining.CompareAndSwap(false, true) {
		c.mu.Unlock()
		return
	}
	hooks := c.hooks
	c.hooks = nil
	c.timer = time.AfterFunc(c.grace, func() {
		slog.Warn("Grace period elapsed", "in_flight", c.inFlight.Load(), "grace", c.grace)
		c.terminate()
	})
	c.mu.Unlock()

	slog.Info("Draining started", "in_flight", c.inFlight.Load(), "grace", c.grace)
	for _, fn := range hooks {
		fn()
	}

	if c.inFlight.Load() == 0 {
		c.terminate()
	}
}

// Terminate closes Terminated immediately.
func (c *Coordinator) Terminate() {
	c.draining.Store(true)
	c.terminate()
}

func (c *Coordinator) terminate() {
	c.termOnce.Do(func() {
		c.mu.Lock()
		if c.timer != nil {
			c.timer.Stop()
		}
		c.mu.Unlock()
		close(c.terminated)
	})
}

// Terminated is closed when the process should stop serving.
func (c *Coordinator) Terminated() <-chan struct{} {
	return c.terminated
}

// Watch begins draining on the first signal and terminates on the second.
// It returns when ctx is done or after termination.
func (c *Coordinator) Watch(ctx context.Context, signals ...os.Signal) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, signals...)
	defer signal.Stop(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.terminated:
			return
		case sig := <-ch:
			if c.Draining() {
				slog.Warn("Second signal received, terminating", "signal", sig.String())
				c.Terminate()
				return
			}
			slog.Info("Shutdown signal received", "signal", sig.String())
			c.Begin()
		}
	}
}

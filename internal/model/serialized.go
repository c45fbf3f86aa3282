package model

import (
	"context"
	"sync"

	"github.com/ekisa-team/vocalis/internal/backend"
)

// serializedEngine runs Synthesize calls one at a time.
type serializedEngine struct {
	backend.Engine
	mu sync.Mutex
}

func (e *serializedEngine) Synthesize(ctx context.Context, req *backend.Request) (*backend.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Engine.Synthesize(ctx, req)
}

// serializedResolver keeps the StyleResolver of the wrapped engine visible.
type serializedResolver struct {
	*serializedEngine
	resolver backend.StyleResolver
}

func (e *serializedResolver) ResolveStyle(ctx context.Context, voice string) (backend.Style, error) {
	return e.resolver.ResolveStyle(ctx, voice)
}

func serialized(engine backend.Engine) backend.Engine {
	s := &serializedEngine{Engine: engine}
	if resolver, ok := engine.(backend.StyleResolver); ok {
		return &serializedResolver{serializedEngine: s, resolver: resolver}
	}
	return s
}

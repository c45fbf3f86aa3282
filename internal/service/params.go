package service

import (
	"log/slog"

	"github.com/ekisa-team/vocalis/internal/backend"
	"github.com/ekisa-team/vocalis/internal/backend/supertonic"
)

// Params are the tuning values that can change while the service runs.
type Params struct {
	// DefaultBackend is used when a request names no model.
	DefaultBackend backend.Identifier
	// SupertonicSteps is the number of denoising steps.
	SupertonicSteps int
	// SupertonicSilence is the pause between chunks, in seconds.
	SupertonicSilence float64
}

// DefaultParams returns the built-in tuning values.
func DefaultParams() Params {
	return Params{
		DefaultBackend:    backend.DefaultIdentifier,
		SupertonicSteps:   supertonic.DefaultSteps,
		SupertonicSilence: supertonic.DefaultSilence,
	}
}

// normalize replaces invalid values with defaults.
func (p Params) normalize() Params {
	if id, err := backend.ParseIdentifier(string(p.DefaultBackend)); err != nil {
		slog.Warn("Invalid default model, falling back", "model", p.DefaultBackend, "fallback", backend.DefaultIdentifier)
		p.DefaultBackend = backend.DefaultIdentifier
	} else {
		p.DefaultBackend = id
	}
	if p.SupertonicSteps < 1 {
		p.SupertonicSteps = supertonic.DefaultSteps
	}
	if p.SupertonicSilence < 0 {
		p.SupertonicSilence = supertonic.DefaultSilence
	}
	return p
}

func (p Params) engineParameters(id backend.Identifier) map[string]any {
	if id != backend.Supertonic {
		return nil
	}
	return map[string]any{
		supertonic.ParamSteps:   p.SupertonicSteps,
		supertonic.ParamSilence: p.SupertonicSilence,
	}
}

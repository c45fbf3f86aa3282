package backend

import (
	"context"
	"fmt"
	"strings"
)

// Identifier names one of the speech synthesis backends.
type Identifier string

const (
	// Kokoro is the multilingual backend.
	Kokoro Identifier = "kokoro"
	// Supertonic is the English-only backend.
	Supertonic Identifier = "supertonic"
)

// DefaultIdentifier is used when no valid default is configured.
const DefaultIdentifier = Kokoro

// Identifiers returns every known backend in a stable order.
func Identifiers() []Identifier {
	return []Identifier{Kokoro, Supertonic}
}

// ParseIdentifier validates s against the known backends.
func ParseIdentifier(s string) (Identifier, error) {
	id := Identifier(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Identifiers() {
		if id == known {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

func (id Identifier) String() string {
	return string(id)
}

// Engine defines the uniform contract every synthesis backend implements.
type Engine interface {
	// Synthesize renders text into mono float samples.
	Synthesize(ctx context.Context, req *Request) (*Result, error)

	// Voices returns the engine's own authoritative voice list.
	Voices() []string

	// Close releases the loaded sessions.
	Close() error
}

// StyleResolver is implemented by engines that need a per-voice style handle
// before synthesis.
type StyleResolver interface {
	// ResolveStyle returns the cached style for voice, computing it on first use.
	ResolveStyle(ctx context.Context, voice string) (Style, error)
}

// Style is an opaque, engine-specific voice style handle.
type Style any

// Request encapsulates all parameters for a synthesis call.
type Request struct {
	// Text is the input to speak.
	Text string

	// Voice is the voice name, already validated against the catalog.
	Voice string

	// Speed is the speaking rate multiplier.
	Speed float64

	// Style is the resolved handle for engines implementing StyleResolver.
	Style Style

	// Parameters contains backend-specific tuning parameters.
	Parameters map[string]any
}

// Result contains synthesized audio.
type Result struct {
	// Samples are mono amplitudes, approximately in [-1, 1].
	Samples []float32

	// SampleRate is in Hz.
	SampleRate int
}

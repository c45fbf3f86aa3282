// Package supertonic adapts the English Supertonic flow-matching model to the
// backend.Engine contract.
package supertonic

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/ekisa-team/vocalis/internal/backend"
	"github.com/ekisa-team/vocalis/internal/backend/onnx"
	"github.com/ekisa-team/vocalis/internal/mapsafe"
)

// Tuning parameter keys read from backend.Request.Parameters.
const (
	ParamSteps   = "steps"
	ParamSilence = "silence_duration"
)

// Defaults for the tuning parameters.
const (
	DefaultSteps   = 5
	DefaultSilence = 0.3
)

// Config configures the engine.
type Config struct {
	ConfigPath            string
	IndexerPath           string
	DurationPredictorPath string
	TextEncoderPath       string
	VectorEstimatorPath   string
	VocoderPath           string

	// StylePaths maps each voice to its voice_styles JSON file.
	StylePaths map[string]string

	Runtime onnx.Config
}

// pipeline renders one normalized chunk and returns its trimmed waveform.
type pipeline interface {
	infer(text string, style *Style, steps int, speed float64) ([]float32, error)
	sampleRate() int
	close() error
}

var (
	_ backend.Engine        = (*Engine)(nil)
	_ backend.StyleResolver = (*Engine)(nil)
)

// Engine implements backend.Engine and backend.StyleResolver for supertonic.
type Engine struct {
	pipeline pipeline
	styles   *styleCache
}

// New loads the four model sessions and prepares the style cache.
func New(cfg Config) (*Engine, error) {
	p, err := newSessionPipeline(cfg)
	if err != nil {
		return nil, err
	}

	slog.Info("Supertonic engine loaded", "sample_rate", p.sampleRate(), "voices", len(cfg.StylePaths))
	return newEngine(p, cfg.StylePaths, LoadStyle), nil
}

func newEngine(p pipeline, stylePaths map[string]string, load func(string) (*Style, error)) *Engine {
	return &Engine{
		pipeline: p,
		styles:   newStyleCache(maps.Clone(stylePaths), load),
	}
}

// Voices returns the voices with a style file, sorted.
func (e *Engine) Voices() []string {
	return slices.Sorted(maps.Keys(e.styles.paths))
}

// ResolveStyle implements backend.StyleResolver.
func (e *Engine) ResolveStyle(ctx context.Context, voice string) (backend.Style, error) {
	return e.styles.get(ctx, voice)
}

// Synthesize implements backend.Engine.
func (e *Engine) Synthesize(ctx context.Context, req *backend.Request) (*backend.Result, error) {
	if !e.styles.has(req.Voice) {
		return nil, fmt.Errorf("%w: no supertonic style for %q", backend.ErrUnknownVoice, req.Voice)
	}

	style, ok := req.Style.(*Style)
	if !ok || style == nil {
		var err error
		if style, err = e.styles.get(ctx, req.Voice); err != nil {
			return nil, err
		}
	}

	steps := max(mapsafe.Get(req.Parameters, ParamSteps, DefaultSteps), 1)
	silence := max(mapsafe.Get(req.Parameters, ParamSilence, DefaultSilence), 0)
	speed := req.Speed
	if speed <= 0 {
		speed = 1
	}

	rate := e.pipeline.sampleRate()
	gap := make([]float32, int(silence*float64(rate)))

	var samples []float32
	chunks := 0
	for _, chunk := range chunkText(req.Text, maxChunkLength) {
		text := normalizeText(chunk)
		if text == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		wav, err := e.pipeline.infer(text, style, steps, speed)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", backend.ErrSynthesis, err)
		}

		if chunks > 0 {
			samples = append(samples, gap...)
		}
		samples = append(samples, wav...)
		chunks++
	}

	if chunks == 0 {
		return nil, fmt.Errorf("%w: text is empty after normalization", backend.ErrSynthesis)
	}

	return &backend.Result{Samples: samples, SampleRate: rate}, nil
}

// Close releases the model sessions. Cached styles are plain memory.
func (e *Engine) Close() error {
	return e.pipeline.close()
}

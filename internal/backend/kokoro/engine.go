// Package kokoro adapts the multilingual Kokoro ONNX model to the backend.Engine contract.
package kokoro

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	ort "github.com/yalue/onnxruntime_go"
	"golang.org/x/text/unicode/norm"

	"github.com/ekisa-team/vocalis/internal/audio"
	"github.com/ekisa-team/vocalis/internal/backend"
	"github.com/ekisa-team/vocalis/internal/backend/onnx"
)

// SampleRate of the generated audio.
const SampleRate = 24000

// spaceToken separates words in the vocab.
const spaceToken int64 = 16

// Config configures the engine.
type Config struct {
	// ModelPath is the kokoro .onnx file.
	ModelPath string
	// VoicesPath is the voices .bin (npz) file.
	VoicesPath string
	// VocabPath is an optional kokoro config.json overriding the built-in vocab.
	VocabPath string
	// EspeakPath is the espeak-ng binary. Empty searches PATH.
	EspeakPath string
	// Runtime configures ONNX Runtime sessions.
	Runtime onnx.Config
}

// runner executes one padded token sequence.
type runner interface {
	run(tokens []int64, style []float32, speed float64) ([]float32, error)
	close() error
}

// Engine implements backend.Engine for kokoro.
type Engine struct {
	runner     runner
	phonemizer Phonemizer
	vocab      Vocab
	voices     *VoicePack
}

// New loads the model, selects its calling convention and reads the voice pack.
func New(cfg Config) (*Engine, error) {
	vocab, err := LoadVocab(cfg.VocabPath)
	if err != nil {
		return nil, err
	}

	voices, err := LoadVoicePack(cfg.VoicesPath)
	if err != nil {
		return nil, err
	}

	phonemizer, err := NewEspeakPhonemizer(cfg.EspeakPath)
	if err != nil {
		return nil, err
	}

	r, err := newSessionRunner(cfg.ModelPath, cfg.Runtime)
	if err != nil {
		return nil, err
	}

	slog.Info("Kokoro engine loaded", "model", cfg.ModelPath, "voices", len(voices.Names()), "convention", r.conv.name())
	return newEngine(r, phonemizer, vocab, voices), nil
}

func newEngine(r runner, p Phonemizer, vocab Vocab, voices *VoicePack) *Engine {
	return &Engine{
		runner:     r,
		phonemizer: p,
		vocab:      vocab,
		voices:     voices,
	}
}

// Voices returns the voices present in the loaded voice pack.
func (e *Engine) Voices() []string {
	return e.voices.Names()
}

// Synthesize implements backend.Engine.
func (e *Engine) Synthesize(ctx context.Context, req *backend.Request) (*backend.Result, error) {
	if !e.voices.Has(req.Voice) {
		return nil, fmt.Errorf("%w: %q is not in the kokoro voice pack", backend.ErrUnknownVoice, req.Voice)
	}

	text := strings.TrimSpace(norm.NFC.String(req.Text))
	phonemes, err := e.phonemizer.Phonemize(ctx, text, LanguageFor(req.Voice))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", backend.ErrSynthesis, err)
	}

	tokens := e.vocab.Encode(phonemes)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: text produced no phonemes", backend.ErrSynthesis)
	}

	var samples []float32
	for _, chunk := range splitTokens(tokens, MaxTokens, spaceToken) {
		style, err := e.voices.Style(req.Voice, len(chunk))
		if err != nil {
			return nil, err
		}

		out, err := e.runner.run(pad(chunk), style, req.Speed)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", backend.ErrSynthesis, err)
		}
		samples = append(samples, out...)
	}

	return &backend.Result{Samples: samples, SampleRate: SampleRate}, nil
}

// Close releases the ONNX session.
func (e *Engine) Close() error {
	return e.runner.close()
}

// sessionRunner runs the ONNX session with the selected convention.
type sessionRunner struct {
	runtime *onnx.Runtime
	session *ort.DynamicAdvancedSession
	conv    convention
}

func newSessionRunner(modelPath string, cfg onnx.Config) (*sessionRunner, error) {
	rt, err := onnx.NewRuntime(cfg)
	if err != nil {
		return nil, err
	}

	inputs, outputs, err := onnx.Inspect(modelPath)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	conv, err := selectConvention(inputs)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("unsupported kokoro model %s: %w", modelPath, err)
	}

	session, err := rt.NewSession(modelPath, conv.inputNames(), []string{outputName(outputs)})
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	return &sessionRunner{runtime: rt, session: session, conv: conv}, nil
}

func (r *sessionRunner) run(tokens []int64, style []float32, speed float64) ([]float32, error) {
	inputs, err := r.conv.inputs(tokens, style, speed)
	if err != nil {
		return nil, err
	}
	defer onnx.Destroy(inputs...)

	outputs := []ort.Value{nil}
	if err := r.session.Run(inputs, outputs); err != nil {
		return nil, err
	}
	defer onnx.Destroy(outputs...)

	data, shape, err := onnx.Float32Data(outputs[0])
	if err != nil {
		return nil, err
	}
	return audio.Squeeze(shape, data)
}

func (r *sessionRunner) close() error {
	return errors.Join(r.session.Destroy(), r.runtime.Close())
}

// Package service implements the speech request dispatcher.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/semaphore"

	"github.com/ekisa-team/vocalis/internal/audio"
	"github.com/ekisa-team/vocalis/internal/backend"
	"github.com/ekisa-team/vocalis/internal/model"
	"github.com/ekisa-team/vocalis/internal/voice"
)

// Request limits.
const (
	MaxInputLength = 4096
	MinSpeed       = 0.5
	MaxSpeed       = 2.0
	DefaultSpeed   = 1.0
	FormatWAV      = "wav"
)

// Engines provides backend engines.
type Engines interface {
	Engine(ctx context.Context, id backend.Identifier) (backend.Engine, error)
	Status() []model.Instance
}

// Gate reports whether the process is draining.
type Gate interface {
	Draining() bool
}

// Options configures a TTS service.
type Options struct {
	// MaxConcurrent bounds simultaneous syntheses. Zero means NumCPU.
	MaxConcurrent int64
	// RequestTimeout bounds a single synthesis. Zero disables it.
	RequestTimeout time.Duration
	// Params are the initial tuning values. Zero means DefaultParams.
	Params Params
}

// SpeechRequest is a synthesis request as received from a client.
type SpeechRequest struct {
	Model          string
	Input          string
	Voice          string
	ResponseFormat string
	Speed          float64
}

// Speech is an encoded synthesis result.
type Speech struct {
	Audio       []byte
	ContentType string
	Backend     backend.Identifier
	Voice       string
	SampleRate  int
	Duration    time.Duration
}

// ModelInfo describes one backend for listings.
type ModelInfo struct {
	model.Instance
	Default bool `json:"default"`
	Voices  int  `json:"voices"`
}

// TTS validates speech requests and dispatches them to engines.
type TTS struct {
	engines Engines
	gate    Gate
	sem     *semaphore.Weighted
	timeout time.Duration
	params  atomic.Pointer[Params]
}

// NewTTS creates a new TTS service.
func NewTTS(engines Engines, gate Gate, opts Options) *TTS {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = int64(runtime.NumCPU())
	}

	s := &TTS{
		engines: engines,
		gate:    gate,
		sem:     semaphore.NewWeighted(opts.MaxConcurrent),
		timeout: opts.RequestTimeout,
	}
	if opts.Params == (Params{}) {
		opts.Params = DefaultParams()
	}
	s.SetParams(opts.Params)
	return s
}

// Params returns the current tuning values.
func (s *TTS) Params() Params {
	return *s.params.Load()
}

// SetParams swaps the tuning values used by subsequent requests.
func (s *TTS) SetParams(p Params) {
	p = p.normalize()
	s.params.Store(&p)
}

// Synthesize renders a speech request into an encoded audio file.
func (s *TTS) Synthesize(ctx context.Context, req SpeechRequest) (*Speech, error) {
	if s.gate.Draining() {
		return nil, ErrDraining
	}

	params := s.Params()
	id, voiceName, speed, err := validate(req, params.DefaultBackend)
	if err != nil {
		return nil, err
	}

	engine, err := s.engines.Engine(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBusy, err)
	}
	handedOff := false
	defer func() {
		if !handedOff {
			s.sem.Release(1)
		}
	}()

	if s.gate.Draining() {
		return nil, ErrDraining
	}

	breq := &backend.Request{
		Text:       req.Input,
		Voice:      voiceName,
		Speed:      speed,
		Parameters: params.engineParameters(id),
	}
	if resolver, ok := engine.(backend.StyleResolver); ok {
		if breq.Style, err = resolver.ResolveStyle(ctx, voiceName); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	handedOff = true
	res, err := s.run(ctx, engine, breq)
	if err != nil {
		slog.Error("Synthesis failed", "backend", id, "voice", voiceName, "duration", time.Since(start), "error", err)
		return nil, err
	}

	data, err := audio.Encode(res.Samples, res.SampleRate)
	if err != nil {
		return nil, err
	}

	audioLen := time.Duration(0)
	if res.SampleRate > 0 {
		audioLen = time.Duration(len(res.Samples)) * time.Second / time.Duration(res.SampleRate)
	}
	slog.Info("Speech synthesized",
		"backend", id,
		"voice", voiceName,
		"chars", utf8.RuneCountInString(req.Input),
		"audio", audioLen,
		"elapsed", time.Since(start),
	)

	return &Speech{
		Audio:       data,
		ContentType: audio.ContentType,
		Backend:     id,
		Voice:       voiceName,
		SampleRate:  res.SampleRate,
		Duration:    audioLen,
	}, nil
}

type outcome struct {
	res *backend.Result
	err error
}

// run executes synthesis in its own goroutine, which owns the semaphore slot
// until the engine returns. Synthesis is never cancelled midway.
func (s *TTS) run(ctx context.Context, engine backend.Engine, req *backend.Request) (*backend.Result, error) {
	done := make(chan outcome, 1)
	go func() {
		defer s.sem.Release(1)
		res, err := engine.Synthesize(context.WithoutCancel(ctx), req)
		done <- outcome{res: res, err: err}
	}()

	var timeout <-chan time.Time
	if s.timeout > 0 {
		timer := time.NewTimer(s.timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case o := <-done:
		return o.res, o.err
	case <-timeout:
		return nil, fmt.Errorf("%w after %s", ErrTimeout, s.timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func validate(req SpeechRequest, fallback backend.Identifier) (backend.Identifier, string, float64, error) {
	id, err := resolveBackend(req.Model, fallback)
	if err != nil {
		return "", "", 0, err
	}

	if req.ResponseFormat != "" && req.ResponseFormat != FormatWAV {
		return "", "", 0, fmt.Errorf("%w: unsupported response_format %q, only %q is available", ErrValidation, req.ResponseFormat, FormatWAV)
	}

	n := utf8.RuneCountInString(req.Input)
	if n < 1 || n > MaxInputLength {
		return "", "", 0, fmt.Errorf("%w: input must be between 1 and %d characters, got %d", ErrValidation, MaxInputLength, n)
	}

	speed := req.Speed
	if speed == 0 {
		speed = DefaultSpeed
	}
	if !(speed >= MinSpeed && speed <= MaxSpeed) {
		return "", "", 0, fmt.Errorf("%w: speed must be between %.1f and %.1f, got %g", ErrValidation, MinSpeed, MaxSpeed, req.Speed)
	}

	name := req.Voice
	if name == "" {
		name = voice.Default(id)
	}
	if !voice.IsValid(name, id) {
		return "", "", 0, fmt.Errorf("%w: voice %q is not available for model %s", ErrValidation, name, id)
	}

	return id, name, speed, nil
}

func resolveBackend(name string, fallback backend.Identifier) (backend.Identifier, error) {
	if strings.TrimSpace(name) == "" {
		return fallback, nil
	}
	id, err := backend.ParseIdentifier(name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return id, nil
}

// Voices lists the catalog voices of a model. Empty means the default model.
func (s *TTS) Voices(name string) ([]voice.Descriptor, error) {
	id, err := resolveBackend(name, s.Params().DefaultBackend)
	if err != nil {
		return nil, err
	}
	return voice.For(id), nil
}

// Languages lists the distinct languages of a model's voices.
func (s *TTS) Languages(name string) ([]voice.Language, error) {
	id, err := resolveBackend(name, s.Params().DefaultBackend)
	if err != nil {
		return nil, err
	}
	return voice.Languages(id), nil
}

// Models lists every backend with its registry status.
func (s *TTS) Models() []ModelInfo {
	def := s.Params().DefaultBackend
	status := s.engines.Status()

	out := make([]ModelInfo, 0, len(status))
	for _, inst := range status {
		out = append(out, ModelInfo{
			Instance: inst,
			Default:  inst.Backend == def,
			Voices:   len(voice.Names(inst.Backend)),
		})
	}
	return out
}

// IsClientError reports whether err was caused by the request itself.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, backend.ErrUnknownVoice)
}

package onnx

import (
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Execution provider names as reported by ONNX Runtime.
const (
	ProviderCUDA     = "CUDAExecutionProvider"
	ProviderDirectML = "DmlExecutionProvider"
	ProviderCoreML   = "CoreMLExecutionProvider"
	ProviderCPU      = "CPUExecutionProvider"
)

// DefaultExcludedProviders lists providers known to produce broken audio
// for these model families.
var DefaultExcludedProviders = []string{ProviderCoreML}

// cudaTuning is applied whenever CUDA is enabled.
var cudaTuning = map[string]string{
	"cudnn_conv_algo_search": "DEFAULT",
}

// accelerated lists hardware providers in order of preference.
var accelerated = []string{ProviderCUDA, ProviderDirectML, ProviderCoreML}

// prober remembers which accelerators this build of ONNX Runtime supports.
// Every accelerator is probed, so exclusions are applied per call.
type prober struct {
	once   sync.Once
	probe  func(provider string) error
	probed []string
}

var providers = &prober{probe: probe}

// selectProviders orders the usable providers: available accelerators in
// preference order, minus excluded ones, with CPU always last.
func selectProviders(available, excluded []string) []string {
	selected := make([]string, 0, len(accelerated)+1)
	for _, p := range accelerated {
		if slices.Contains(available, p) && !slices.Contains(excluded, p) {
			selected = append(selected, p)
		}
	}
	return append(selected, ProviderCPU)
}

// available probes each accelerator once by appending it to a throwaway
// options object.
func (p *prober) available() []string {
	p.once.Do(func() {
		for _, provider := range accelerated {
			if err := p.probe(provider); err != nil {
				slog.Debug("Execution provider unavailable", "provider", provider, "error", err)
				continue
			}
			p.probed = append(p.probed, provider)
		}
	})
	return p.probed
}

func probe(provider string) error {
	opts, err := ort.NewSessionOptions()
	if err != nil {
		return err
	}
	defer opts.Destroy()

	return appendProvider(opts, provider)
}

func appendProvider(opts *ort.SessionOptions, provider string) error {
	switch provider {
	case ProviderCUDA:
		cuda, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return err
		}
		defer cuda.Destroy()

		if err := cuda.Update(cudaTuning); err != nil {
			return err
		}
		return opts.AppendExecutionProviderCUDA(cuda)
	case ProviderDirectML:
		return opts.AppendExecutionProviderDirectML(0)
	case ProviderCoreML:
		return opts.AppendExecutionProviderCoreML(0)
	case ProviderCPU:
		return nil
	default:
		return fmt.Errorf("unsupported execution provider %q", provider)
	}
}

// NewSessionOptions builds session options with the selected providers
// and thread pool size. It returns the providers actually enabled.
func NewSessionOptions(cfg Config) (*ort.SessionOptions, []string, error) {
	excluded := cfg.ExcludedProviders
	if excluded == nil {
		excluded = DefaultExcludedProviders
	}

	threads := cfg.IntraOpThreads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session options: %w", err)
	}

	if err := opts.SetIntraOpNumThreads(threads); err != nil {
		opts.Destroy()
		return nil, nil, fmt.Errorf("failed to set intra-op threads: %w", err)
	}

	wanted := selectProviders(providers.available(), excluded)
	enabled := make([]string, 0, len(wanted))
	for _, p := range wanted {
		if err := appendProvider(opts, p); err != nil {
			slog.Warn("Failed to enable execution provider", "provider", p, "error", err)
			continue
		}
		enabled = append(enabled, p)
	}

	slog.Info("Session options ready", "providers", enabled, "intra_op_threads", threads)
	return opts, enabled, nil
}

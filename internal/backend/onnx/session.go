package onnx

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

// Runtime owns the session options shared by the sessions of one engine.
type Runtime struct {
	options   *ort.SessionOptions
	providers []string
}

// NewRuntime initializes the environment and prepares session options.
func NewRuntime(cfg Config) (*Runtime, error) {
	if err := InitEnvironment(cfg.LibraryPath); err != nil {
		return nil, err
	}

	options, providers, err := NewSessionOptions(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	return &Runtime{options: options, providers: providers}, nil
}

// Providers returns the enabled execution providers, CPU last.
func (r *Runtime) Providers() []string {
	return r.providers
}

// NewSession loads a model with named inputs and outputs.
func (r *Runtime) NewSession(path string, inputs, outputs []string) (*ort.DynamicAdvancedSession, error) {
	session, err := ort.NewDynamicAdvancedSession(path, inputs, outputs, r.options)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return session, nil
}

// Close releases the session options. Sessions must be destroyed first.
func (r *Runtime) Close() error {
	if r.options == nil {
		return nil
	}
	err := r.options.Destroy()
	r.options = nil
	return err
}

// Inspect returns the declared inputs and outputs of a model file.
func Inspect(path string) (inputs, outputs []ort.InputOutputInfo, err error) {
	inputs, outputs, err = ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to inspect %s: %w", path, err)
	}
	return inputs, outputs, nil
}

// Float32Data copies the contents of a float32 output tensor.
func Float32Data(v ort.Value) ([]float32, ort.Shape, error) {
	tensor, ok := v.(*ort.Tensor[float32])
	if !ok {
		return nil, nil, fmt.Errorf("unexpected output type %T", v)
	}

	data := tensor.GetData()
	out := make([]float32, len(data))
	copy(out, data)
	return out, tensor.GetShape(), nil
}

// Destroy releases every non-nil value.
func Destroy(values ...ort.Value) {
	for _, v := range values {
		if v != nil {
			_ = v.Destroy()
		}
	}
}

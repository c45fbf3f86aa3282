package kokoro

import (
	"fmt"
	"math"
	"slices"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/ekisa-team/vocalis/internal/backend/onnx"
)

// Model input names across kokoro exports.
const (
	inputTokens   = "tokens"
	inputIDs      = "input_ids"
	inputStyle    = "style"
	inputSpeed    = "speed"
	defaultOutput = "audio"
)

// convention builds the input tensors for one kokoro export flavour.
// It is chosen once from the model's declared inputs.
type convention interface {
	name() string
	inputNames() []string
	inputs(tokens []int64, style []float32, speed float64) ([]ort.Value, error)
}

// floatSpeedConvention feeds speed as a float32 scalar.
type floatSpeedConvention struct {
	tokenInput string
}

func (c floatSpeedConvention) name() string { return "float-speed" }

func (c floatSpeedConvention) inputNames() []string {
	return []string{c.tokenInput, inputStyle, inputSpeed}
}

func (c floatSpeedConvention) inputs(tokens []int64, style []float32, speed float64) ([]ort.Value, error) {
	t, s, err := tokenAndStyleTensors(tokens, style)
	if err != nil {
		return nil, err
	}

	sp, err := ort.NewTensor(ort.NewShape(1), []float32{float32(speed)})
	if err != nil {
		onnx.Destroy(t, s)
		return nil, fmt.Errorf("speed tensor: %w", err)
	}
	return []ort.Value{t, s, sp}, nil
}

// intSpeedConvention feeds speed as an int32 scalar, as newer exports with
// input_ids declare it.
type intSpeedConvention struct {
	tokenInput string
}

func (c intSpeedConvention) name() string { return "int-speed" }

func (c intSpeedConvention) inputNames() []string {
	return []string{c.tokenInput, inputStyle, inputSpeed}
}

func (c intSpeedConvention) inputs(tokens []int64, style []float32, speed float64) ([]ort.Value, error) {
	t, s, err := tokenAndStyleTensors(tokens, style)
	if err != nil {
		return nil, err
	}

	sp, err := ort.NewTensor(ort.NewShape(1), []int32{intSpeed(speed)})
	if err != nil {
		onnx.Destroy(t, s)
		return nil, fmt.Errorf("speed tensor: %w", err)
	}
	return []ort.Value{t, s, sp}, nil
}

// intSpeed rounds to the nearest whole multiplier, never below 1.
func intSpeed(speed float64) int32 {
	return int32(max(1, math.Round(speed)))
}

func tokenAndStyleTensors(tokens []int64, style []float32) (ort.Value, ort.Value, error) {
	t, err := ort.NewTensor(ort.NewShape(1, int64(len(tokens))), tokens)
	if err != nil {
		return nil, nil, fmt.Errorf("token tensor: %w", err)
	}

	s, err := ort.NewTensor(ort.NewShape(1, int64(len(style))), style)
	if err != nil {
		onnx.Destroy(t)
		return nil, nil, fmt.Errorf("style tensor: %w", err)
	}
	return t, s, nil
}

// selectConvention inspects the declared model inputs and picks the calling
// convention. The token input is named input_ids or tokens depending on the
// export; the declared speed type decides between the int32 and float variants.
func selectConvention(inputs []ort.InputOutputInfo) (convention, error) {
	byName := make(map[string]ort.InputOutputInfo, len(inputs))
	for _, in := range inputs {
		byName[in.Name] = in
	}

	var tokenInput string
	switch {
	case has(byName, inputIDs):
		tokenInput = inputIDs
	case has(byName, inputTokens):
		tokenInput = inputTokens
	default:
		return nil, fmt.Errorf("model declares neither %q nor %q input", inputTokens, inputIDs)
	}

	if !has(byName, inputStyle) {
		return nil, fmt.Errorf("model does not declare a %q input", inputStyle)
	}

	speed, ok := byName[inputSpeed]
	if !ok {
		return nil, fmt.Errorf("model does not declare a %q input", inputSpeed)
	}

	switch speed.DataType {
	case ort.TensorElementDataTypeInt32:
		return intSpeedConvention{tokenInput: tokenInput}, nil
	case ort.TensorElementDataTypeFloat:
		return floatSpeedConvention{tokenInput: tokenInput}, nil
	default:
		return nil, fmt.Errorf("unsupported %q input type %v", inputSpeed, speed.DataType)
	}
}

func has(m map[string]ort.InputOutputInfo, name string) bool {
	_, ok := m[name]
	return ok
}

// outputName picks the audio output, falling back to the first declared one.
func outputName(outputs []ort.InputOutputInfo) string {
	names := make([]string, len(outputs))
	for i, o := range outputs {
		names[i] = o.Name
	}
	if slices.Contains(names, defaultOutput) || len(names) == 0 {
		return defaultOutput
	}
	return names[0]
}

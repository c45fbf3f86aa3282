package supertonic

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/ekisa-team/vocalis/internal/backend/onnx"
)

// sessionPipeline runs the duration predictor, text encoder, vector
// estimator and vocoder sessions.
type sessionPipeline struct {
	cfg     modelConfig
	indexer indexer
	runtime *onnx.Runtime

	durationPredictor *ort.DynamicAdvancedSession
	textEncoder       *ort.DynamicAdvancedSession
	vectorEstimator   *ort.DynamicAdvancedSession
	vocoder           *ort.DynamicAdvancedSession
}

func newSessionPipeline(cfg Config) (_ *sessionPipeline, err error) {
	mc, err := loadModelConfig(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}

	idx, err := loadIndexer(cfg.IndexerPath)
	if err != nil {
		return nil, err
	}

	rt, err := onnx.NewRuntime(cfg.Runtime)
	if err != nil {
		return nil, err
	}

	p := &sessionPipeline{cfg: mc, indexer: idx, runtime: rt}
	defer func() {
		if err != nil {
			_ = p.close()
		}
	}()

	if p.durationPredictor, err = rt.NewSession(cfg.DurationPredictorPath,
		[]string{"text_ids", "style_dp", "text_mask"}, []string{"duration"}); err != nil {
		return nil, err
	}
	if p.textEncoder, err = rt.NewSession(cfg.TextEncoderPath,
		[]string{"text_ids", "style_ttl", "text_mask"}, []string{"text_emb"}); err != nil {
		return nil, err
	}
	if p.vectorEstimator, err = rt.NewSession(cfg.VectorEstimatorPath,
		[]string{"noisy_latent", "text_emb", "style_ttl", "latent_mask", "text_mask", "current_step", "total_step"},
		[]string{"denoised_latent"}); err != nil {
		return nil, err
	}
	if p.vocoder, err = rt.NewSession(cfg.VocoderPath,
		[]string{"latent"}, []string{"wav_tts"}); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *sessionPipeline) sampleRate() int {
	return p.cfg.AE.SampleRate
}

func (p *sessionPipeline) infer(text string, style *Style, steps int, speed float64) ([]float32, error) {
	ids := p.indexer.encode(text)
	n := int64(len(ids))

	textIDs, err := ort.NewTensor(ort.NewShape(1, n), ids)
	if err != nil {
		return nil, err
	}
	defer onnx.Destroy(textIDs)

	textMask, err := ort.NewTensor(ort.NewShape(1, 1, n), ones(int(n)))
	if err != nil {
		return nil, err
	}
	defer onnx.Destroy(textMask)

	styleTTL, err := ort.NewTensor(ort.NewShape(style.TTL.Shape...), slices.Clone(style.TTL.Data))
	if err != nil {
		return nil, err
	}
	defer onnx.Destroy(styleTTL)

	styleDP, err := ort.NewTensor(ort.NewShape(style.DP.Shape...), slices.Clone(style.DP.Data))
	if err != nil {
		return nil, err
	}
	defer onnx.Destroy(styleDP)

	durOut := []ort.Value{nil}
	if err := p.durationPredictor.Run([]ort.Value{textIDs, styleDP, textMask}, durOut); err != nil {
		return nil, fmt.Errorf("duration predictor: %w", err)
	}
	dur, _, err := onnx.Float32Data(durOut[0])
	onnx.Destroy(durOut...)
	if err != nil {
		return nil, err
	}
	if len(dur) == 0 {
		return nil, errors.New("duration predictor returned no duration")
	}
	duration := float64(dur[0]) / speed

	encOut := []ort.Value{nil}
	if err := p.textEncoder.Run([]ort.Value{textIDs, styleTTL, textMask}, encOut); err != nil {
		return nil, fmt.Errorf("text encoder: %w", err)
	}
	textEmb := encOut[0]
	defer onnx.Destroy(textEmb)

	wavLen := int(duration * float64(p.sampleRate()))
	chunk := p.cfg.chunkSize()
	latentLen := max((wavLen+chunk-1)/chunk, 1)
	channels := p.cfg.latentChannels()

	latent := noisyLatent(channels * latentLen)
	latentShape := ort.NewShape(1, int64(channels), int64(latentLen))

	latentMask, err := ort.NewTensor(ort.NewShape(1, 1, int64(latentLen)), ones(latentLen))
	if err != nil {
		return nil, err
	}
	defer onnx.Destroy(latentMask)

	totalStep, err := ort.NewTensor(ort.NewShape(1), []float32{float32(steps)})
	if err != nil {
		return nil, err
	}
	defer onnx.Destroy(totalStep)

	for step := range steps {
		if latent, err = p.denoise(latent, latentShape, textEmb, styleTTL, latentMask, textMask, totalStep, step); err != nil {
			return nil, err
		}
	}

	final, err := ort.NewTensor(latentShape, latent)
	if err != nil {
		return nil, err
	}
	defer onnx.Destroy(final)

	vocOut := []ort.Value{nil}
	if err := p.vocoder.Run([]ort.Value{final}, vocOut); err != nil {
		return nil, fmt.Errorf("vocoder: %w", err)
	}
	wav, _, err := onnx.Float32Data(vocOut[0])
	onnx.Destroy(vocOut...)
	if err != nil {
		return nil, err
	}

	return wav[:min(wavLen, len(wav))], nil
}

func (p *sessionPipeline) denoise(latent []float32, shape ort.Shape, textEmb, styleTTL, latentMask, textMask, totalStep ort.Value, step int) ([]float32, error) {
	noisy, err := ort.NewTensor(shape, latent)
	if err != nil {
		return nil, err
	}
	defer onnx.Destroy(noisy)

	current, err := ort.NewTensor(ort.NewShape(1), []float32{float32(step)})
	if err != nil {
		return nil, err
	}
	defer onnx.Destroy(current)

	out := []ort.Value{nil}
	if err := p.vectorEstimator.Run(
		[]ort.Value{noisy, textEmb, styleTTL, latentMask, textMask, current, totalStep}, out); err != nil {
		return nil, fmt.Errorf("vector estimator step %d: %w", step, err)
	}
	defer onnx.Destroy(out...)

	denoised, _, err := onnx.Float32Data(out[0])
	return denoised, err
}

func (p *sessionPipeline) close() error {
	var errs []error
	for _, s := range []*ort.DynamicAdvancedSession{p.durationPredictor, p.textEncoder, p.vectorEstimator, p.vocoder} {
		if s != nil {
			errs = append(errs, s.Destroy())
		}
	}
	errs = append(errs, p.runtime.Close())
	return errors.Join(errs...)
}

func ones(n int) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = 1
	}
	return s
}

// noisyLatent samples the initial flow-matching state from N(0, 1).
func noisyLatent(n int) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(rand.NormFloat64())
	}
	return s
}

package model

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ekisa-team/vocalis/internal/asset"
	"github.com/ekisa-team/vocalis/internal/backend"
	"github.com/ekisa-team/vocalis/internal/backend/kokoro"
	"github.com/ekisa-team/vocalis/internal/backend/onnx"
	"github.com/ekisa-team/vocalis/internal/backend/supertonic"
	"github.com/ekisa-team/vocalis/internal/xfs"
)

// AssetSource provides the local files of a backend.
type AssetSource interface {
	Pull(ctx context.Context, id backend.Identifier, o asset.Overrides) (asset.Paths, error)
}

// LoaderConfig configures the engine constructor used in production.
type LoaderConfig struct {
	Assets     AssetSource
	Overrides  asset.Overrides
	EspeakPath string
	Runtime    onnx.Config
}

// NewLoader returns a Constructor that resolves assets and builds real engines.
func NewLoader(cfg LoaderConfig) Constructor {
	return func(ctx context.Context, id backend.Identifier) (backend.Engine, error) {
		paths, err := cfg.Assets.Pull(ctx, id, cfg.Overrides)
		if err != nil {
			return nil, err
		}

		switch id {
		case backend.Kokoro:
			kc, err := kokoroConfig(paths, cfg)
			if err != nil {
				return nil, err
			}
			return kokoro.New(kc)

		case backend.Supertonic:
			sc, err := supertonicConfig(paths, cfg)
			if err != nil {
				return nil, err
			}
			return supertonic.New(sc)

		default:
			return nil, fmt.Errorf("%w: %q", backend.ErrUnknownBackend, id)
		}
	}
}

func kokoroConfig(paths asset.Paths, cfg LoaderConfig) (kokoro.Config, error) {
	model, err := paths.Get(asset.KeyKokoroModel)
	if err != nil {
		return kokoro.Config{}, err
	}
	voices, err := paths.Get(asset.KeyKokoroVoices)
	if err != nil {
		return kokoro.Config{}, err
	}

	kc := kokoro.Config{
		ModelPath:  model,
		VoicesPath: voices,
		EspeakPath: cfg.EspeakPath,
		Runtime:    cfg.Runtime,
	}
	if vocab := filepath.Join(filepath.Dir(model), "config.json"); xfs.IsFile(vocab) {
		kc.VocabPath = vocab
	}
	return kc, nil
}

func supertonicConfig(paths asset.Paths, cfg LoaderConfig) (supertonic.Config, error) {
	sc := supertonic.Config{
		StylePaths: make(map[string]string, len(asset.SupertonicVoices)),
		Runtime:    cfg.Runtime,
	}

	for key, dst := range map[string]*string{
		asset.KeySupertonicConfig:  &sc.ConfigPath,
		asset.KeySupertonicIndexer: &sc.IndexerPath,
		asset.KeyDurationPredictor: &sc.DurationPredictorPath,
		asset.KeyTextEncoder:       &sc.TextEncoderPath,
		asset.KeyVectorEstimator:   &sc.VectorEstimatorPath,
		asset.KeyVocoder:           &sc.VocoderPath,
	} {
		p, err := paths.Get(key)
		if err != nil {
			return supertonic.Config{}, err
		}
		*dst = p
	}

	for _, v := range asset.SupertonicVoices {
		if p, ok := paths[asset.StyleKey(v)]; ok {
			sc.StylePaths[v] = p
		}
	}
	return sc, nil
}

package main

import (
	"log/slog"

	"github.com/ekisa-team/vocalis/internal/asset"
	"github.com/ekisa-team/vocalis/internal/backend"
	"github.com/ekisa-team/vocalis/internal/backend/onnx"
	"github.com/ekisa-team/vocalis/internal/config"
	"github.com/ekisa-team/vocalis/internal/env"
	"github.com/ekisa-team/vocalis/internal/logger"
	"github.com/ekisa-team/vocalis/internal/model"
	"github.com/ekisa-team/vocalis/internal/service"
)

// setupLogger installs the process logger. A non-empty flagLevel wins over
// the configured level.
func setupLogger(cfg *config.Config, flagLevel string) {
	level := cfg.Log.Level
	if flagLevel != "" {
		level = flagLevel
	}

	environment := env.FromEnv()
	opts := []logger.Option{logger.WithLevel(logger.ParseLevel(level))}
	if cfg.Log.File != "" || environment.IsProduction() {
		opts = append(opts, logger.WithLogToFile(true), logger.WithLogFile(cfg.Log.File))
	}

	slog.SetDefault(logger.New(environment, opts...))
}

func newResolver(cfg *config.Config) *asset.Resolver {
	return asset.NewResolver(asset.Config{
		PrimaryDir:   cfg.Assets.Dir,
		FallbackDirs: cfg.Assets.FallbackDirs,
		AutoDownload: cfg.Assets.AutoDownload,
	})
}

func overrides(cfg *config.Config) asset.Overrides {
	return asset.Overrides{
		KokoroModelFile:  cfg.Models.Kokoro.ModelFile,
		KokoroVoicesFile: cfg.Models.Kokoro.VoicesFile,
	}
}

func newRegistry(cfg *config.Config, resolver *asset.Resolver, opts ...model.Option) *model.Registry {
	loader := model.NewLoader(model.LoaderConfig{
		Assets:     resolver,
		Overrides:  overrides(cfg),
		EspeakPath: cfg.Models.Kokoro.EspeakPath,
		Runtime: onnx.Config{
			LibraryPath:       cfg.Runtime.LibraryPath,
			IntraOpThreads:    cfg.Runtime.IntraOpThreads,
			ExcludedProviders: cfg.Runtime.ExcludedProviders,
		},
	})

	if cfg.Runtime.SerializeSynthesis {
		opts = append(opts, model.WithSerializedSynthesis())
	}

	return model.NewRegistry(loader, opts...)
}

func newService(cfg *config.Config, engines service.Engines, gate service.Gate) *service.TTS {
	return service.NewTTS(engines, gate, service.Options{
		MaxConcurrent:  int64(cfg.Server.MaxConcurrent),
		RequestTimeout: cfg.Server.RequestTimeout,
		Params:         paramsFrom(cfg),
	})
}

// paramsFrom extracts the hot-reloadable values.
func paramsFrom(cfg *config.Config) service.Params {
	return service.Params{
		DefaultBackend:    backend.Identifier(cfg.Models.Default),
		SupertonicSteps:   cfg.Models.Supertonic.Steps,
		SupertonicSilence: cfg.Models.Supertonic.SilenceDuration,
	}
}

package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/ekisa-team/vocalis/internal/backend"
	"github.com/ekisa-team/vocalis/internal/backend/onnx"
	"github.com/ekisa-team/vocalis/internal/backend/supertonic"
)

// Default values.
const (
	DefaultHTTPPort       = 5005
	DefaultGRPCPort       = 5006
	DefaultShutdownGrace  = 3 * time.Second
	DefaultRequestTimeout = 120 * time.Second
	DefaultConfigFile     = "config.yaml"
)

// Default returns a configuration that needs no file.
func Default() *Config {
	return &Config{
		Version: "1",
		Assets: AssetsConfig{
			Dir:          DefaultAssetsPath(),
			AutoDownload: true,
		},
		Models: ModelsConfig{
			Default: string(backend.DefaultIdentifier),
			Supertonic: SupertonicConfig{
				Steps:           supertonic.DefaultSteps,
				SilenceDuration: supertonic.DefaultSilence,
			},
		},
		Server: ServerConfig{
			HTTPPort:       DefaultHTTPPort,
			GRPCPort:       DefaultGRPCPort,
			ShutdownGrace:  DefaultShutdownGrace,
			RequestTimeout: DefaultRequestTimeout,
			MaxConcurrent:  runtime.NumCPU(),
			CORSOrigins:    []string{"*"},
		},
		Runtime: RuntimeConfig{
			IntraOpThreads:    runtime.NumCPU(),
			ExcludedProviders: append([]string(nil), onnx.DefaultExcludedProviders...),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultConfigPath returns the default path for the vocalis config directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "vocalis", "config")
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "vocalis")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "vocalis")
	default: // Linux, BSD, etc.
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "vocalis")
		}
		return filepath.Join(home, ".config", "vocalis")
	}
}

// DefaultAssetsPath returns the default path for downloaded model assets.
func DefaultAssetsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "vocalis", "assets")
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Local", "vocalis", "assets")
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "vocalis", "assets")
	default:
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			return filepath.Join(xdg, "vocalis", "assets")
		}
		return filepath.Join(home, ".cache", "vocalis", "assets")
	}
}

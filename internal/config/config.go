package config

import (
	"time"
)

// Config holds the main configuration for the application.
type Config struct {
	Version string        `json:"version,omitempty" yaml:"version,omitempty"`
	Assets  AssetsConfig  `json:"assets"            yaml:"assets"`
	Models  ModelsConfig  `json:"models"            yaml:"models"`
	Server  ServerConfig  `json:"server"            yaml:"server"`
	Runtime RuntimeConfig `json:"runtime"           yaml:"runtime"`
	Log     LogConfig     `json:"log"               yaml:"log"`
}

// AssetsConfig controls where model files are looked up and stored.
type AssetsConfig struct {
	Dir          string   `json:"dir"           yaml:"dir"           env:"TTS_ASSETS_DIR"`
	FallbackDirs []string `json:"fallback_dirs" yaml:"fallback_dirs" env:"TTS_ASSETS_FALLBACK_DIRS" envSeparator:","`
	AutoDownload bool     `json:"auto_download" yaml:"auto_download" env:"TTS_AUTO_DOWNLOAD"`
}

// ModelsConfig holds backend selection and per-backend settings.
type ModelsConfig struct {
	Default    string           `json:"default"    yaml:"default" env:"TTS_DEFAULT_MODEL"`
	Kokoro     KokoroConfig     `json:"kokoro"     yaml:"kokoro"`
	Supertonic SupertonicConfig `json:"supertonic" yaml:"supertonic"`
}

// KokoroConfig holds kokoro file overrides.
type KokoroConfig struct {
	ModelFile  string `json:"model_file"  yaml:"model_file"  env:"TTS_MODEL_FILE"`
	VoicesFile string `json:"voices_file" yaml:"voices_file" env:"TTS_KOKORO_VOICES_FILE"`
	EspeakPath string `json:"espeak_path" yaml:"espeak_path" env:"TTS_ESPEAK_PATH"`
}

// SupertonicConfig holds supertonic tuning. Both values are hot-reloadable.
type SupertonicConfig struct {
	Steps           int     `json:"steps"            yaml:"steps"            env:"TTS_SUPERTONIC_STEPS"`
	SilenceDuration float64 `json:"silence_duration" yaml:"silence_duration" env:"TTS_SUPERTONIC_SILENCE"`
}

// ServerConfig holds listener and request handling settings.
type ServerConfig struct {
	HTTPPort       int           `json:"http_port"       yaml:"http_port"       env:"TTS_HTTP_PORT"`
	GRPCPort       int           `json:"grpc_port"       yaml:"grpc_port"       env:"TTS_GRPC_PORT"`
	ShutdownGrace  time.Duration `json:"shutdown_grace"  yaml:"shutdown_grace"  env:"TTS_SHUTDOWN_GRACE"`
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" env:"TTS_REQUEST_TIMEOUT"`
	MaxConcurrent  int           `json:"max_concurrent"  yaml:"max_concurrent"  env:"TTS_MAX_CONCURRENT"`
	CORSOrigins    []string      `json:"cors_origins"    yaml:"cors_origins"    env:"TTS_CORS_ORIGINS" envSeparator:","`
}

// RuntimeConfig holds ONNX Runtime settings.
type RuntimeConfig struct {
	LibraryPath        string   `json:"library_path"        yaml:"library_path"        env:"ONNXRUNTIME_LIB_PATH"`
	IntraOpThreads     int      `json:"intra_op_threads"    yaml:"intra_op_threads"    env:"TTS_INTRA_OP_THREADS"`
	ExcludedProviders  []string `json:"excluded_providers"  yaml:"excluded_providers"  env:"TTS_EXCLUDED_PROVIDERS" envSeparator:","`
	SerializeSynthesis bool     `json:"serialize_synthesis" yaml:"serialize_synthesis" env:"TTS_SERIALIZE_SYNTHESIS"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `json:"level" yaml:"level" env:"TTS_LOG_LEVEL"`
	File  string `json:"file"  yaml:"file"  env:"TTS_LOG_FILE"`
}

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.yaml.in/yaml/v3"

	"github.com/ekisa-team/vocalis/internal/backend"
	"github.com/ekisa-team/vocalis/internal/backend/supertonic"
)

//go:embed schema.json
var schemaSource string

const schemaURL = "vocalis://config.schema.json"

// ErrInvalid is returned when a config file fails schema or value validation.
var ErrInvalid = errors.New("invalid configuration")

// Load reads the config at path on top of Default and applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			slog.Debug("Config file not found, using defaults", "path", path)
		case err != nil:
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		default:
			if err := decode(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: environment: %w", ErrInvalid, err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// decode validates data against the embedded schema and unmarshals it into cfg.
func decode(data []byte, cfg *Config) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: invalid YAML: %w", ErrInvalid, err)
	}

	// An empty document keeps the defaults.
	if raw == nil {
		return nil
	}

	schema, err := jsonschema.CompileString(schemaURL, schemaSource)
	if err != nil {
		return fmt.Errorf("config: failed to compile schema: %w", err)
	}

	if err := schema.Validate(raw); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return nil
}

// normalize fixes recoverable values and rejects the rest.
func (c *Config) normalize() error {
	id, err := backend.ParseIdentifier(c.Models.Default)
	if err != nil {
		slog.Warn("Unknown default model, falling back",
			"model", c.Models.Default,
			"fallback", backend.DefaultIdentifier,
		)
		id = backend.DefaultIdentifier
	}
	c.Models.Default = string(id)

	if c.Models.Supertonic.Steps < 1 {
		slog.Warn("Invalid supertonic steps, using default", "steps", c.Models.Supertonic.Steps)
		c.Models.Supertonic.Steps = supertonic.DefaultSteps
	}
	if c.Models.Supertonic.SilenceDuration < 0 {
		slog.Warn("Invalid supertonic silence, using default", "silence", c.Models.Supertonic.SilenceDuration)
		c.Models.Supertonic.SilenceDuration = supertonic.DefaultSilence
	}

	defaults := Default()
	if c.Server.MaxConcurrent < 1 {
		c.Server.MaxConcurrent = defaults.Server.MaxConcurrent
	}
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = defaults.Server.RequestTimeout
	}
	if c.Server.ShutdownGrace < 0 {
		c.Server.ShutdownGrace = defaults.Server.ShutdownGrace
	}
	if c.Runtime.IntraOpThreads < 1 {
		c.Runtime.IntraOpThreads = defaults.Runtime.IntraOpThreads
	}

	var errs []error
	if c.Assets.Dir == "" {
		errs = append(errs, errors.New("assets.dir must not be empty"))
	}
	if !validPort(c.Server.HTTPPort) {
		errs = append(errs, fmt.Errorf("server.http_port %d out of range", c.Server.HTTPPort))
	}
	if !validPort(c.Server.GRPCPort) {
		errs = append(errs, fmt.Errorf("server.grpc_port %d out of range", c.Server.GRPCPort))
	}
	if c.Server.HTTPPort != 0 && c.Server.HTTPPort == c.Server.GRPCPort {
		errs = append(errs, fmt.Errorf("server.http_port and server.grpc_port both set to %d", c.Server.HTTPPort))
	}
	c.Log.Level = strings.ToLower(c.Log.Level)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}

	return nil
}

func validPort(p int) bool {
	return p >= 0 && p <= 65535
}

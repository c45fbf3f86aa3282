// Package env identifies the deployment environment the process runs in.
package env

import (
	"os"
	"strings"

	"github.com/ekisa-team/vocalis/internal/envvar"
)

// Environment is the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// FromEnv reads the environment from VOCALIS_ENV, defaulting to development.
func FromEnv() Environment {
	return Parse(os.Getenv(envvar.VocalisEnv))
}

// Parse maps a free-form value to an Environment.
func Parse(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prod", "production":
		return Production
	default:
		return Development
	}
}

// IsProduction reports whether e is the production environment.
func (e Environment) IsProduction() bool {
	return e == Production
}

func (e Environment) String() string {
	return string(e)
}

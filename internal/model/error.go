package model

import (
	"errors"
	"fmt"

	"github.com/ekisa-team/vocalis/internal/backend"
)

// Error definitions for the model package.
var (
	ErrInitialization = errors.New("engine initialization failed")
	ErrClosed         = errors.New("registry is closed")
)

// InitError reports a failed engine construction. It matches both
// ErrInitialization and the underlying cause.
type InitError struct {
	Backend backend.Identifier
	Err     error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("failed to initialize %s engine: %v", e.Backend, e.Err)
}

func (e *InitError) Unwrap() []error {
	return []error{ErrInitialization, e.Err}
}

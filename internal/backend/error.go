package backend

import "errors"

// Error definitions for the backend package.
var (
	ErrUnknownBackend = errors.New("unknown backend")
	ErrUnknownVoice   = errors.New("unknown voice")
	ErrSynthesis      = errors.New("synthesis failed")
)

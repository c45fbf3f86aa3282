package service

import "errors"

// Error definitions for the service package.
var (
	ErrValidation = errors.New("invalid request")
	ErrDraining   = errors.New("service is shutting down")
	ErrBusy       = errors.New("service is busy")
	ErrTimeout    = errors.New("synthesis timed out")
)

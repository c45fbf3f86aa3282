package asset

import "errors"

// Error definitions for the asset package.
var (
	ErrUnavailable = errors.New("asset unavailable")
)

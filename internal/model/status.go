package model

import (
	"time"

	"github.com/ekisa-team/vocalis/internal/backend"
)

// Status is the current loading status of an engine.
type Status string

const (
	// StatusUnloaded indicates that the engine has not been requested yet.
	StatusUnloaded Status = "unloaded"

	// StatusLoading indicates that the engine is being constructed.
	StatusLoading Status = "loading"

	// StatusLoaded indicates that the engine is ready.
	StatusLoaded Status = "loaded"

	// StatusFailed indicates that the last construction attempt failed.
	StatusFailed Status = "failed"
)

// Instance is a point-in-time snapshot of one registry slot.
type Instance struct {
	Backend       backend.Identifier `json:"backend"`
	Status        Status             `json:"status"`
	Error         string             `json:"error,omitempty"`
	LoadedAt      *time.Time         `json:"loaded_at,omitempty"`
	Constructions int64              `json:"constructions"`
}

// StatusHook observes slot transitions. err is set for StatusFailed.
type StatusHook func(id backend.Identifier, status Status, err error)

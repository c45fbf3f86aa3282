package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

type (
	HealthResponseDTO struct {
		Status  string `json:"status" example:"healthy"`
		Message string `json:"message" example:"TTS service is running"`
		Version string `json:"version" example:"1.0.0"`
	}

	RootResponseDTO struct {
		Message   string            `json:"message"`
		Version   string            `json:"version"`
		Endpoints map[string]string `json:"endpoints"`
	}
)

type (
	HealthOutput struct {
		Body HealthResponseDTO
	}

	RootOutput struct {
		Body RootResponseDTO
	}
)

// HealthHandler serves liveness and the service descriptor.
type HealthHandler struct{}

// NewHealthHandler creates a new HealthHandler instance.
func NewHealthHandler(api huma.API) *HealthHandler {
	h := &HealthHandler{}

	huma.Register(api, huma.Operation{
		OperationID:   "health",
		Method:        http.MethodGet,
		Path:          "/health",
		Summary:       "Health check",
		Tags:          []string{"health"},
		DefaultStatus: http.StatusOK,
	}, h.handleHealth)

	huma.Register(api, huma.Operation{
		OperationID:   "root",
		Method:        http.MethodGet,
		Path:          "/",
		Summary:       "Service descriptor",
		Tags:          []string{"health"},
		DefaultStatus: http.StatusOK,
	}, h.handleRoot)

	return h
}

func (h *HealthHandler) handleHealth(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	return &HealthOutput{
		Body: HealthResponseDTO{
			Status:  "healthy",
			Message: "TTS service is running",
			Version: Version,
		},
	}, nil
}

func (h *HealthHandler) handleRoot(ctx context.Context, _ *struct{}) (*RootOutput, error) {
	return &RootOutput{
		Body: RootResponseDTO{
			Message: "TTS Service API",
			Version: Version,
			Endpoints: map[string]string{
				"health":    "/health",
				"speech":    "/v1/audio/speech",
				"voices":    "/v1/audio/voices",
				"languages": "/v1/audio/languages",
				"models":    "/v1/models",
				"docs":      "/docs",
				"openapi":   "/openapi.json",
			},
		},
	}, nil
}

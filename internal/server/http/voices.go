package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ekisa-team/vocalis/internal/service"
	"github.com/ekisa-team/vocalis/internal/voice"
)

type (
	CatalogInput struct {
		Model string `query:"model" doc:"Backend whose catalog to list; the configured default when empty" example:"kokoro"`
	}

	VoicesOutput struct {
		Body []voice.Descriptor
	}

	LanguagesOutput struct {
		Body []voice.Language
	}
)

// VoicesHandler serves the voice catalog.
type VoicesHandler struct {
	service *service.TTS
}

// NewVoicesHandler creates a new VoicesHandler instance.
func NewVoicesHandler(api huma.API, service *service.TTS) *VoicesHandler {
	h := &VoicesHandler{service: service}

	huma.Register(api, huma.Operation{
		OperationID:   "listVoices",
		Method:        http.MethodGet,
		Path:          "/v1/audio/voices",
		Summary:       "List the voices of a backend",
		Tags:          []string{"voices"},
		DefaultStatus: http.StatusOK,
	}, h.handleVoices)

	huma.Register(api, huma.Operation{
		OperationID:   "listLanguages",
		Method:        http.MethodGet,
		Path:          "/v1/audio/languages",
		Summary:       "List the languages of a backend",
		Tags:          []string{"voices"},
		DefaultStatus: http.StatusOK,
	}, h.handleLanguages)

	return h
}

func (h *VoicesHandler) handleVoices(ctx context.Context, input *CatalogInput) (*VoicesOutput, error) {
	voices, err := h.service.Voices(input.Model)
	if err != nil {
		return nil, toHTTPError(ctx, "voice listing", err)
	}
	return &VoicesOutput{Body: voices}, nil
}

func (h *VoicesHandler) handleLanguages(ctx context.Context, input *CatalogInput) (*LanguagesOutput, error) {
	langs, err := h.service.Languages(input.Model)
	if err != nil {
		return nil, toHTTPError(ctx, "language listing", err)
	}
	return &LanguagesOutput{Body: langs}, nil
}

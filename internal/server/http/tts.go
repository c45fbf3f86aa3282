package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ekisa-team/vocalis/internal/audio"
	"github.com/ekisa-team/vocalis/internal/service"
)

type (
	SpeechRequestDTO struct {
		_              struct{} `json:"-" additionalProperties:"true"`
		Model          string   `json:"model,omitempty" doc:"Backend to synthesize with; the configured default when empty" example:"kokoro"`
		Input          string   `json:"input" minLength:"1" maxLength:"4096" doc:"Text to speak"`
		Voice          string   `json:"voice,omitempty" doc:"Voice name; the backend default when empty" example:"af_heart"`
		ResponseFormat string   `json:"response_format,omitempty" enum:"wav" default:"wav" doc:"Audio container"`
		Speed          float64  `json:"speed,omitempty" minimum:"0.5" maximum:"2.0" default:"1.0" doc:"Speaking rate multiplier"`
	}
)

type (
	SpeechInput struct {
		Body SpeechRequestDTO
	}

	SpeechOutput struct {
		ContentType        string `header:"Content-Type"`
		ContentDisposition string `header:"Content-Disposition"`
		ContentLength      string `header:"Content-Length"`
		Body               []byte
	}
)

// TTSHandler handles HTTP requests for TTS.
type TTSHandler struct {
	service *service.TTS
}

// NewTTSHandler creates a new TTSHandler instance.
func NewTTSHandler(api huma.API, service *service.TTS) *TTSHandler {
	h := &TTSHandler{service: service}

	huma.Register(api, huma.Operation{
		OperationID:   "createSpeech",
		Method:        http.MethodPost,
		Path:          "/v1/audio/speech",
		Summary:       "Synthesize speech from text",
		Tags:          []string{"tts"},
		DefaultStatus: http.StatusOK,
		Responses: map[string]*huma.Response{
			"200": {
				Description: "WAV audio",
				Content: map[string]*huma.MediaType{
					audio.ContentType: {Schema: &huma.Schema{Type: huma.TypeString, Format: "binary"}},
				},
			},
		},
	}, h.handleSpeech)

	huma.Register(api, huma.Operation{
		OperationID:   "listModels",
		Method:        http.MethodGet,
		Path:          "/v1/models",
		Summary:       "List backends and their load status",
		Tags:          []string{"tts"},
		DefaultStatus: http.StatusOK,
	}, h.handleModels)

	return h
}

// handleSpeech handles the createSpeech operation.
func (h *TTSHandler) handleSpeech(ctx context.Context, input *SpeechInput) (*SpeechOutput, error) {
	speech, err := h.service.Synthesize(ctx, service.SpeechRequest{
		Model:          input.Body.Model,
		Input:          input.Body.Input,
		Voice:          input.Body.Voice,
		ResponseFormat: input.Body.ResponseFormat,
		Speed:          input.Body.Speed,
	})
	if err != nil {
		return nil, toHTTPError(ctx, "speech synthesis", err)
	}

	return &SpeechOutput{
		ContentType:        speech.ContentType,
		ContentDisposition: `attachment; filename="speech.wav"`,
		ContentLength:      strconv.Itoa(len(speech.Audio)),
		Body:               speech.Audio,
	}, nil
}

type ModelsOutput struct {
	Body []service.ModelInfo
}

func (h *TTSHandler) handleModels(ctx context.Context, _ *struct{}) (*ModelsOutput, error) {
	return &ModelsOutput{Body: h.service.Models()}, nil
}

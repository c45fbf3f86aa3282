package http

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/vocalis/internal/backend"
	"github.com/ekisa-team/vocalis/internal/model"
	"github.com/ekisa-team/vocalis/internal/service"
	"github.com/ekisa-team/vocalis/internal/shutdown"
	"github.com/ekisa-team/vocalis/internal/voice"
)

type fakeEngine struct {
	requests []*backend.Request
}

func (e *fakeEngine) Synthesize(ctx context.Context, req *backend.Request) (*backend.Result, error) {
	e.requests = append(e.requests, req)
	return &backend.Result{Samples: []float32{0, 0.25, -0.25, 0.5}, SampleRate: 24000}, nil
}

func (e *fakeEngine) Voices() []string { return nil }
func (e *fakeEngine) Close() error     { return nil }

type testEnv struct {
	handler       http.Handler
	coordinator   *shutdown.Coordinator
	engine        *fakeEngine
	constructions *atomic.Int32
}

func newTestEnv(t *testing.T, failLoad bool) *testEnv {
	t.Helper()

	engine := &fakeEngine{}
	var constructions atomic.Int32
	reg := model.NewRegistry(func(ctx context.Context, id backend.Identifier) (backend.Engine, error) {
		constructions.Add(1)
		if failLoad {
			return nil, errors.New("assets unavailable")
		}
		return engine, nil
	})

	coord := shutdown.New(0)
	tts := service.NewTTS(reg, coord, service.Options{MaxConcurrent: 2})

	srv, err := NewServer(Config{Port: 0}, tts, coord)
	require.NoError(t, err)

	return &testEnv{
		handler:       srv.Handler(),
		coordinator:   coord,
		engine:        engine,
		constructions: &constructions,
	}
}

func (e *testEnv) do(t *testing.T, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		var data []byte
		switch b := body.(type) {
		case string:
			data = []byte(b)
		default:
			var err error
			data, err = json.Marshal(b)
			require.NoError(t, err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body HealthResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, HealthResponseDTO{Status: "healthy", Message: "TTS service is running", Version: Version}, body)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
}

func TestRoot(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body RootResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "TTS Service API", body.Message)
	assert.Equal(t, "/v1/audio/speech", body.Endpoints["speech"])
	assert.Equal(t, "/v1/audio/voices", body.Endpoints["voices"])
}

func TestUnknownPathNotFound(t *testing.T) {
	env := newTestEnv(t, false)

	for _, path := range []string{"/nope", "/v1/audio/nothing", "/health/x"} {
		t.Run(path, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.NotContains(t, rec.Body.String(), "TTS Service API")
		})
	}
}

func TestSpeech_EndToEnd(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodPost, "/v1/audio/speech", map[string]any{
		"model": "kokoro", "input": "Hello", "voice": "af_heart", "speed": 1.0,
	}, "Accept-Encoding", "gzip")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := rec.Body.Bytes()
	assert.Equal(t, "audio/wav", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="speech.wav"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, strconv.Itoa(len(body)), rec.Header().Get("Content-Length"))
	assert.Empty(t, rec.Header().Get("Content-Encoding"))

	require.Greater(t, len(body), 44)
	assert.Equal(t, "RIFF", string(body[0:4]))
	assert.Equal(t, "WAVE", string(body[8:12]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(body[22:24]))
	assert.Equal(t, uint32(24000), binary.LittleEndian.Uint32(body[24:28]))
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(body[34:36]))

	require.Len(t, env.engine.requests, 1)
	assert.Equal(t, "Hello", env.engine.requests[0].Text)
	assert.Equal(t, 1.0, env.engine.requests[0].Speed)
}

func TestSpeech_DefaultsAndUnknownFields(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodPost, "/v1/audio/speech", `{"input": "Hi", "stream": false, "instructions": "calm"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, env.engine.requests, 1)
	assert.Equal(t, "af_heart", env.engine.requests[0].Voice)
	assert.Equal(t, 1.0, env.engine.requests[0].Speed)
}

func TestSpeech_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"unknown model", map[string]any{"model": "bogus", "input": "x"}},
		{"empty input", map[string]any{"input": ""}},
		{"missing input", map[string]any{"voice": "af_heart"}},
		{"input too long", map[string]any{"input": strings.Repeat("a", 4097)}},
		{"speed too high", map[string]any{"input": "x", "speed": 3.0}},
		{"speed too low", map[string]any{"input": "x", "speed": 0.1}},
		{"unsupported format", map[string]any{"input": "x", "response_format": "mp3"}},
		{"upper-case format", map[string]any{"input": "x", "response_format": "WAV"}},
		{"unknown voice", map[string]any{"input": "x", "voice": "nobody"}},
		{"voice of other backend", map[string]any{"model": "supertonic", "input": "x", "voice": "af_heart"}},
		{"malformed json", `{"input": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, false)

			rec := env.do(t, http.MethodPost, "/v1/audio/speech", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Zero(t, env.constructions.Load())
		})
	}
}

func TestSpeech_MaxLengthInput(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodPost, "/v1/audio/speech", map[string]any{"input": strings.Repeat("a", 4096)})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSpeech_InitializationFailure(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(t, http.MethodPost, "/v1/audio/speech", map[string]any{"input": "x"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "assets unavailable")

	rec = env.do(t, http.MethodPost, "/v1/audio/speech", map[string]any{"input": "x"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, int32(2), env.constructions.Load())
}

func TestDraining(t *testing.T) {
	env := newTestEnv(t, false)
	env.coordinator.Begin()

	for _, target := range []string{"/health", "/v1/audio/voices"} {
		rec := env.do(t, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
		assert.Equal(t, retryAfter, rec.Header().Get("Retry-After"))
	}

	rec := env.do(t, http.MethodPost, "/v1/audio/speech", map[string]any{"input": "x"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Zero(t, env.constructions.Load())
}

func TestVoices_Supertonic(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodGet, "/v1/audio/voices?model=supertonic", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var voices []voice.Descriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &voices))
	require.Len(t, voices, 10)

	var male, female []string
	for _, v := range voices {
		switch v.Gender {
		case voice.Male:
			male = append(male, v.Name)
		case voice.Female:
			female = append(female, v.Name)
		}
	}
	slices.Sort(male)
	slices.Sort(female)
	assert.Equal(t, []string{"M1", "M2", "M3", "M4", "M5"}, male)
	assert.Equal(t, []string{"F1", "F2", "F3", "F4", "F5"}, female)
}

func TestVoices_BadModel(t *testing.T) {
	env := newTestEnv(t, false)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/v1/audio/voices?model=bogus", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/v1/audio/languages?model=bogus", nil).Code)
}

func TestLanguages_Kokoro(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodGet, "/v1/audio/languages?model=kokoro", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var langs []voice.Language
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &langs))

	codes := make([]string, len(langs))
	for i, l := range langs {
		codes[i] = l.Code
	}

	var want []string
	for _, v := range voice.For(backend.Kokoro) {
		want = append(want, v.Language)
	}
	slices.Sort(want)
	want = slices.Compact(want)

	assert.Equal(t, want, codes)
}

func TestVoices_Compressed(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodGet, "/v1/audio/voices?model=kokoro", nil, "Accept-Encoding", "gzip")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
}

func TestModels(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodPost, "/v1/audio/speech", map[string]any{"input": "x"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/models", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var models []service.ModelInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &models))
	require.Len(t, models, 2)
	assert.Equal(t, backend.Kokoro, models[0].Backend)
	assert.Equal(t, model.StatusLoaded, models[0].Status)
	assert.True(t, models[0].Default)
	assert.Equal(t, model.StatusUnloaded, models[1].Status)
}

func TestRequestIDPropagation(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodGet, "/health", nil, HeaderRequestID, "abc-123")
	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
}

func TestOpenAPI(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodGet, "/openapi.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/v1/audio/speech")
}

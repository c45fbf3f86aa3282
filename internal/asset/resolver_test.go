package asset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/vocalis/internal/backend"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testManifest(baseURL string) Manifest {
	return Manifest{
		Backend: backend.Kokoro,
		Files: []File{
			{Key: "model", Name: "model.onnx", URL: baseURL + "/model.onnx"},
			{Key: "voices", Name: "sub/voices.bin", URL: baseURL + "/voices.bin"},
		},
	}
}

func TestManifestFor_Kokoro(t *testing.T) {
	m, err := ManifestFor(backend.Kokoro, Overrides{})
	require.NoError(t, err)

	require.Len(t, m.Files, 2)
	assert.Equal(t, "kokoro-v1.0.onnx", m.Files[0].Name)
	assert.Equal(t, "https://github.com/nazdridoy/kokoro-tts/releases/download/v1.0.0/kokoro-v1.0.onnx", m.Files[0].URL)
	assert.Equal(t, KeyKokoroVoices, m.Files[1].Key)

	m, err = ManifestFor(backend.Kokoro, Overrides{KokoroModelFile: "kokoro-v1.0.int8.onnx"})
	require.NoError(t, err)
	assert.Equal(t, "kokoro-v1.0.int8.onnx", m.Files[0].Name)
	assert.True(t, strings.HasSuffix(m.Files[0].URL, "/kokoro-v1.0.int8.onnx"))
}

func TestManifestFor_Supertonic(t *testing.T) {
	m, err := ManifestFor(backend.Supertonic, Overrides{})
	require.NoError(t, err)

	assert.Len(t, m.Files, 6+len(SupertonicVoices))
	assert.Equal(t, "https://huggingface.co/Supertone/supertonic/resolve/main/onnx/tts.json", m.Files[0].URL)

	last := m.Files[len(m.Files)-1]
	assert.Equal(t, StyleKey("F5"), last.Key)
	assert.Equal(t, "voice_styles/F5.json", last.Name)
	assert.Equal(t, "https://huggingface.co/Supertone/supertonic/resolve/main/voice_styles/F5.json", last.URL)
}

func TestManifestFor_Unknown(t *testing.T) {
	_, err := ManifestFor("bogus", Overrides{})
	assert.ErrorIs(t, err, backend.ErrUnknownBackend)
}

func TestLocate_SearchOrder(t *testing.T) {
	primary := t.TempDir()
	fallback := t.TempDir()
	work := t.TempDir()

	writeFile(t, filepath.Join(work, "model.onnx"), "work")
	writeFile(t, filepath.Join(fallback, "kokoro", "model.onnx"), "fallback")
	writeFile(t, filepath.Join(work, "sub", "voices.bin"), "work")

	r := NewResolver(Config{PrimaryDir: primary, FallbackDirs: []string{fallback}, WorkDir: work})

	paths, missing := r.Locate(testManifest("http://unused"))
	assert.Empty(t, missing)
	assert.Equal(t, filepath.Join(fallback, "kokoro", "model.onnx"), paths["model"])
	assert.Equal(t, filepath.Join(work, "sub", "voices.bin"), paths["voices"])

	writeFile(t, filepath.Join(primary, "kokoro", "model.onnx"), "primary")
	paths, _ = r.Locate(testManifest("http://unused"))
	assert.Equal(t, filepath.Join(primary, "kokoro", "model.onnx"), paths["model"])
}

func TestEnsure_DownloadsMissing(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("payload:" + r.URL.Path))
	}))
	defer srv.Close()

	primary := t.TempDir()
	r := NewResolver(Config{PrimaryDir: primary, WorkDir: t.TempDir(), AutoDownload: true, RetryDelay: -1})

	paths, err := r.Ensure(context.Background(), testManifest(srv.URL))
	require.NoError(t, err)

	data, err := os.ReadFile(paths["voices"])
	require.NoError(t, err)
	assert.Equal(t, "payload:/voices.bin", string(data))
	assert.Equal(t, filepath.Join(primary, "kokoro", "sub", "voices.bin"), paths["voices"])
	assert.NoFileExists(t, paths["voices"]+".part")

	// Second call is served from disk.
	_, err = r.Ensure(context.Background(), testManifest(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestEnsure_RetriesThenSucceeds(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "flaky", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	m := Manifest{Backend: backend.Supertonic, Files: []File{{Key: "config", Name: "tts.json", URL: srv.URL + "/tts.json"}}}
	r := NewResolver(Config{PrimaryDir: t.TempDir(), WorkDir: t.TempDir(), AutoDownload: true, RetryDelay: -1})

	paths, err := r.Ensure(context.Background(), m)
	require.NoError(t, err)
	assert.FileExists(t, paths["config"])
	assert.Equal(t, int32(2), hits.Load())
}

func TestEnsure_FailsAfterRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	primary := t.TempDir()
	r := NewResolver(Config{PrimaryDir: primary, WorkDir: t.TempDir(), AutoDownload: true, RetryDelay: -1})

	_, err := r.Ensure(context.Background(), testManifest(srv.URL))
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(defaultMaxRetries), hits.Load())
	assert.NoFileExists(t, filepath.Join(primary, "kokoro", "model.onnx"))
	assert.NoFileExists(t, filepath.Join(primary, "kokoro", "model.onnx.part"))
}

func TestEnsure_AutoDownloadDisabled(t *testing.T) {
	r := NewResolver(Config{PrimaryDir: t.TempDir(), WorkDir: t.TempDir()})

	_, err := r.Ensure(context.Background(), testManifest("http://127.0.0.1:1"))
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorContains(t, err, "auto-download is disabled")
}

func TestEnsure_Canceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewResolver(Config{PrimaryDir: t.TempDir(), WorkDir: t.TempDir(), AutoDownload: true, RetryDelay: -1})
	_, err := r.Ensure(ctx, testManifest(srv.URL))
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPaths_Get(t *testing.T) {
	p := Paths{"model": "/a/model.onnx"}

	v, err := p.Get("model")
	require.NoError(t, err)
	assert.Equal(t, "/a/model.onnx", v)

	_, err = p.Get("voices")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestPull_LocalFiles(t *testing.T) {
	primary := t.TempDir()
	writeFile(t, filepath.Join(primary, "kokoro", DefaultKokoroModelFile), "model")
	writeFile(t, filepath.Join(primary, "kokoro", "custom.bin"), "voices")

	r := NewResolver(Config{PrimaryDir: primary, WorkDir: t.TempDir()})
	paths, err := r.Pull(context.Background(), backend.Kokoro, Overrides{KokoroVoicesFile: "custom.bin"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(primary, "kokoro", "custom.bin"), paths[KeyKokoroVoices])

	_, err = r.Pull(context.Background(), backend.Identifier("bogus"), Overrides{})
	assert.ErrorIs(t, err, backend.ErrUnknownBackend)
}

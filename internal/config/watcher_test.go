package config

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reloadRecorder struct {
	mu      sync.Mutex
	configs []*Config
	errs    []error
}

func (r *reloadRecorder) record(cfg *Config, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.errs = append(r.errs, err)
		return
	}
	r.configs = append(r.configs, cfg)
}

func (r *reloadRecorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.configs), len(r.errs)
}

func TestWatcher_Reload(t *testing.T) {
	path := writeConfig(t, "models:\n  supertonic:\n    steps: 5\n")

	rec := &reloadRecorder{}
	w, err := NewWatcher(path, rec.record)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, 5, w.Snapshot().Models.Supertonic.Steps)

	require.NoError(t, os.WriteFile(path, []byte("models:\n  supertonic:\n    steps: 9\n"), 0o644))

	require.Eventually(t, func() bool {
		return w.Snapshot().Models.Supertonic.Steps == 9
	}, 5*time.Second, 50*time.Millisecond)

	ok, _ := rec.counts()
	assert.GreaterOrEqual(t, ok, 1)
	assert.GreaterOrEqual(t, w.ReloadCount(), uint32(1))
}

func TestWatcher_InvalidReloadKeepsSnapshot(t *testing.T) {
	path := writeConfig(t, "models:\n  supertonic:\n    steps: 4\n")

	rec := &reloadRecorder{}
	w, err := NewWatcher(path, rec.record)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, os.WriteFile(path, []byte("models:\n  supertonic:\n    steps: -3\n"), 0o644))

	require.Eventually(t, func() bool {
		_, bad := rec.counts()
		return bad >= 1
	}, 5*time.Second, 50*time.Millisecond)

	assert.Equal(t, 4, w.Snapshot().Models.Supertonic.Steps)
}

func TestWatcher_InitialLoadError(t *testing.T) {
	path := writeConfig(t, "server:\n  http_port: -1\n")

	_, err := NewWatcher(path, nil)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestWatcher_CloseIdempotent(t *testing.T) {
	w, err := NewWatcher(writeConfig(t, ""), nil)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}

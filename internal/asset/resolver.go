// Package asset locates model and voice files on disk and downloads missing ones.
package asset

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ekisa-team/vocalis/internal/backend"
	"github.com/ekisa-team/vocalis/internal/xfs"
)

const (
	defaultRetryDelay = 2 * time.Second
	defaultMaxRetries = 3
	defaultTimeout    = 10 * time.Minute
)

// Config configures a Resolver.
type Config struct {
	// PrimaryDir holds one subdirectory per backend; downloads land here.
	PrimaryDir string
	// FallbackDirs are searched after PrimaryDir.
	FallbackDirs []string
	// WorkDir is searched last. Empty means the process working directory.
	WorkDir string
	// AutoDownload enables network fetches for missing files.
	AutoDownload bool
	// Client performs downloads. Nil uses a client with a generous timeout.
	Client *http.Client
	// MaxRetries is the number of download attempts per file.
	MaxRetries int
	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration
}

// Resolver ensures backend assets exist locally.
type Resolver struct {
	cfg   Config
	locks sync.Map // backend.Identifier -> *sync.Mutex
}

// NewResolver creates a resolver.
func NewResolver(cfg Config) *Resolver {
	cfg.PrimaryDir = xfs.ExpandTilde(cfg.PrimaryDir)
	fallbacks := make([]string, len(cfg.FallbackDirs))
	for i, d := range cfg.FallbackDirs {
		fallbacks[i] = xfs.ExpandTilde(d)
	}
	cfg.FallbackDirs = fallbacks
	if cfg.WorkDir == "" {
		if wd, err := os.Getwd(); err == nil {
			cfg.WorkDir = wd
		}
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: defaultTimeout}
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	} else if cfg.RetryDelay == 0 {
		cfg.RetryDelay = defaultRetryDelay
	}

	return &Resolver{cfg: cfg}
}

// BackendDir is where a backend's files are downloaded to.
func (r *Resolver) BackendDir(id backend.Identifier) string {
	return filepath.Join(r.cfg.PrimaryDir, string(id))
}

// Ensure returns local paths for every file in the manifest, downloading the
// missing ones into the backend directory.
func (r *Resolver) Ensure(ctx context.Context, m Manifest) (Paths, error) {
	mu := r.lock(m.Backend)
	mu.Lock()
	defer mu.Unlock()

	paths, missing := r.Locate(m)
	if len(missing) == 0 {
		slog.Debug("All assets found locally", "backend", m.Backend, "files", len(paths))
		return paths, nil
	}

	if !r.cfg.AutoDownload {
		return nil, fmt.Errorf("%w: %s missing %s and auto-download is disabled", ErrUnavailable, m.Backend, missing[0].Name)
	}

	dir := r.BackendDir(m.Backend)
	for _, f := range missing {
		dest := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := r.download(ctx, f, dest); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, f.Name, err)
		}
		paths[f.Key] = dest
	}

	slog.Info("Assets ready", "backend", m.Backend, "downloaded", len(missing), "dir", dir)
	return paths, nil
}

// Pull resolves every asset of a backend, downloading whatever is missing.
func (r *Resolver) Pull(ctx context.Context, id backend.Identifier, o Overrides) (Paths, error) {
	m, err := ManifestFor(id, o)
	if err != nil {
		return nil, err
	}
	return r.Ensure(ctx, m)
}

// Locate searches the configured directories without touching the network.
// Precedence:
// 1. <primary>/<backend>/<name>
// 2. <fallback>/<backend>/<name>, then <fallback>/<name>, for each fallback
// 3. <workdir>/<name>
func (r *Resolver) Locate(m Manifest) (Paths, []File) {
	paths := make(Paths, len(m.Files))
	var missing []File

	for _, f := range m.Files {
		if p, ok := r.find(m.Backend, f.Name); ok {
			paths[f.Key] = p
			continue
		}
		missing = append(missing, f)
	}

	return paths, missing
}

func (r *Resolver) find(id backend.Identifier, name string) (string, bool) {
	rel := filepath.FromSlash(name)
	if filepath.IsAbs(rel) {
		return rel, xfs.IsFile(rel)
	}

	candidates := []string{filepath.Join(r.BackendDir(id), rel)}
	for _, d := range r.cfg.FallbackDirs {
		candidates = append(candidates,
			filepath.Join(d, string(id), rel),
			filepath.Join(d, rel),
		)
	}
	if r.cfg.WorkDir != "" {
		candidates = append(candidates, filepath.Join(r.cfg.WorkDir, rel))
	}

	for _, c := range candidates {
		if xfs.IsFile(c) {
			return c, true
		}
	}
	return "", false
}

func (r *Resolver) lock(id backend.Identifier) *sync.Mutex {
	mu, _ := r.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

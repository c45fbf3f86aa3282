// Package onnx wraps the ONNX Runtime environment shared by all engines.
package onnx

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/ekisa-team/vocalis/internal/envvar"
	"github.com/ekisa-team/vocalis/internal/xfs"
)

// ErrRuntime is returned when the ONNX Runtime cannot be initialized.
var ErrRuntime = errors.New("onnx runtime unavailable")

// Config configures session construction.
type Config struct {
	// LibraryPath points at the onnxruntime shared library. Empty means auto-detect.
	LibraryPath string

	// IntraOpThreads sizes the per-session thread pool. Zero means NumCPU.
	IntraOpThreads int

	// ExcludedProviders are never enabled, even when available.
	ExcludedProviders []string
}

var envMu sync.Mutex

// InitEnvironment initializes the process-wide ONNX Runtime environment.
// A failed attempt is not remembered, so later calls retry.
func InitEnvironment(libraryPath string) error {
	envMu.Lock()
	defer envMu.Unlock()

	if ort.IsInitialized() {
		return nil
	}

	path := resolveLibraryPath(libraryPath)
	ort.SetSharedLibraryPath(path)

	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("%w: failed to initialize from %s (set %s): %w", ErrRuntime, path, envvar.ONNXRuntimeLibPath, err)
	}

	slog.Info("ONNX Runtime initialized", "library", path, "version", ort.GetVersion())
	return nil
}

// resolveLibraryPath returns the first existing candidate, or the platform default.
// Precedence:
// 1. Explicit path.
// 2. ONNXRUNTIME_LIB_PATH environment variable.
// 3. Well-known install locations.
func resolveLibraryPath(explicit string) string {
	if explicit != "" {
		return xfs.ExpandTilde(explicit)
	}
	if p := os.Getenv(envvar.ONNXRuntimeLibPath); p != "" {
		return xfs.ExpandTilde(p)
	}

	candidates := libraryCandidates(runtime.GOOS)
	for _, c := range candidates {
		if xfs.IsFile(c) {
			return c
		}
	}
	return candidates[0]
}

func libraryCandidates(goos string) []string {
	switch goos {
	case "windows":
		return []string{"onnxruntime.dll"}
	case "darwin":
		return []string{
			"/opt/homebrew/lib/libonnxruntime.dylib",
			"/usr/local/lib/libonnxruntime.dylib",
		}
	default:
		return []string{
			"/usr/local/lib/libonnxruntime.so",
			"/usr/lib/libonnxruntime.so",
			"/usr/lib/x86_64-linux-gnu/libonnxruntime.so",
			"/usr/lib/aarch64-linux-gnu/libonnxruntime.so",
		}
	}
}

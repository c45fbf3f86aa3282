package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"

	"github.com/ekisa-team/vocalis/internal/xfs"
)

const progressInterval = 2 * time.Second

// download fetches f into dest with retries. Each attempt writes a .part file
// that is renamed into place only once the body was fully received.
func (r *Resolver) download(ctx context.Context, f File, dest string) error {
	if err := xfs.EnsureDir(filepath.Dir(dest)); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	var lastErr error
	for attempt := range r.cfg.MaxRetries {
		if attempt > 0 {
			slog.Info("Retrying download", "file", f.Name, "attempt", attempt+1, "last_error", lastErr)
			select {
			case <-ctx.Done():
				return fmt.Errorf("download canceled: %w", ctx.Err())
			case <-time.After(r.cfg.RetryDelay):
			}
		} else {
			slog.Info("Downloading asset", "file", f.Name, "url", f.URL, "path", dest)
		}

		size, err := r.fetch(ctx, f, dest)
		if err == nil {
			slog.Info("Asset downloaded successfully", "file", f.Name, "size", humanize.Bytes(uint64(size)), "attempt", attempt+1)
			return nil
		}

		lastErr = err
		slog.Error("Failed to download asset", "file", f.Name, "attempt", attempt+1, "error", err)

		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("download canceled: %w", err)
		}
	}

	return lastErr
}

func (r *Resolver) fetch(ctx context.Context, f File, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.cfg.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %s from %s", resp.Status, f.URL)
	}

	part := dest + ".part"
	out, err := os.Create(part)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", part, err)
	}

	pw := &progressWriter{
		name:  f.Name,
		total: resp.ContentLength,
		every: rate.Sometimes{Interval: progressInterval},
	}
	n, copyErr := io.Copy(out, io.TeeReader(resp.Body, pw))
	closeErr := out.Close()

	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(part)
		return 0, fmt.Errorf("failed to write %s: %w", part, err)
	}
	if resp.ContentLength > 0 && n != resp.ContentLength {
		_ = os.Remove(part)
		return 0, fmt.Errorf("short body: got %d of %d bytes", n, resp.ContentLength)
	}

	if err := os.Rename(part, dest); err != nil {
		_ = os.Remove(part)
		return 0, fmt.Errorf("failed to move %s into place: %w", part, err)
	}

	return n, nil
}

// progressWriter logs download progress at most once per interval.
type progressWriter struct {
	name    string
	total   int64
	written int64
	every   rate.Sometimes
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	p.every.Do(func() {
		if p.total > 0 {
			slog.Info("Download progress", "file", p.name,
				"received", humanize.Bytes(uint64(p.written)),
				"total", humanize.Bytes(uint64(p.total)))
			return
		}
		slog.Info("Download progress", "file", p.name, "received", humanize.Bytes(uint64(p.written)))
	})
	return len(b), nil
}

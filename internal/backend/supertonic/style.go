package supertonic

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/ekisa-team/vocalis/internal/backend"
)

// Style is a parsed voice style. It is immutable once loaded and shared by
// concurrent syntheses.
type Style struct {
	TTL tensorData
	DP  tensorData
}

type tensorData struct {
	Data  []float32
	Shape []int64
}

type styleComponent struct {
	Data [][][]float64 `json:"data"`
	Dims []int64       `json:"dims"`
}

type styleFile struct {
	TTL styleComponent `json:"style_ttl"`
	DP  styleComponent `json:"style_dp"`
}

// ParseStyle decodes a voice_styles/<voice>.json document.
func ParseStyle(data []byte) (*Style, error) {
	var f styleFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse voice style: %w", err)
	}

	ttl, err := f.TTL.flatten()
	if err != nil {
		return nil, fmt.Errorf("style_ttl: %w", err)
	}
	dp, err := f.DP.flatten()
	if err != nil {
		return nil, fmt.Errorf("style_dp: %w", err)
	}
	return &Style{TTL: ttl, DP: dp}, nil
}

// LoadStyle reads and parses a style file.
func LoadStyle(path string) (*Style, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read voice style: %w", err)
	}
	return ParseStyle(data)
}

func (c styleComponent) flatten() (tensorData, error) {
	if len(c.Dims) != 3 {
		return tensorData{}, fmt.Errorf("expected 3 dims, got %v", c.Dims)
	}

	size := int64(1)
	for _, d := range c.Dims {
		if d <= 0 {
			return tensorData{}, fmt.Errorf("invalid dims %v", c.Dims)
		}
		size *= d
	}

	flat := make([]float32, 0, size)
	for _, batch := range c.Data {
		for _, row := range batch {
			for _, v := range row {
				flat = append(flat, float32(v))
			}
		}
	}
	if int64(len(flat)) != size {
		return tensorData{}, fmt.Errorf("dims %v need %d values, got %d", c.Dims, size, len(flat))
	}

	return tensorData{Data: flat, Shape: append([]int64(nil), c.Dims...)}, nil
}

// styleCache loads each voice style at most once. Entries are never evicted.
type styleCache struct {
	paths map[string]string
	load  func(path string) (*Style, error)

	group  singleflight.Group
	mu     sync.RWMutex
	styles map[string]*Style
	loads  atomic.Int64
}

func newStyleCache(paths map[string]string, load func(string) (*Style, error)) *styleCache {
	return &styleCache{
		paths:  paths,
		load:   load,
		styles: make(map[string]*Style, len(paths)),
	}
}

func (c *styleCache) has(voice string) bool {
	_, ok := c.paths[voice]
	return ok
}

func (c *styleCache) get(ctx context.Context, voice string) (*Style, error) {
	path, ok := c.paths[voice]
	if !ok {
		return nil, fmt.Errorf("%w: no supertonic style for %q", backend.ErrUnknownVoice, voice)
	}

	c.mu.RLock()
	s, ok := c.styles[voice]
	c.mu.RUnlock()
	if ok {
		return s, nil
	}

	ch := c.group.DoChan(voice, func() (any, error) {
		c.mu.RLock()
		s, ok := c.styles[voice]
		c.mu.RUnlock()
		if ok {
			return s, nil
		}

		c.loads.Add(1)
		s, err := c.load(path)
		if err != nil {
			return nil, fmt.Errorf("voice %s: %w", voice, err)
		}

		c.mu.Lock()
		c.styles[voice] = s
		c.mu.Unlock()
		return s, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Style), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

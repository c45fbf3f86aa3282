package mapsafe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	params := map[string]any{
		"steps":   8.0,
		"silence": 1,
		"speed":   float32(1.5),
		"voice":   "F1",
		"stream":  true,
		"timeout": 2 * time.Second,
		"nil":     nil,
	}

	assert.Equal(t, 8, Get(params, "steps", 5))
	assert.Equal(t, 1.0, Get(params, "silence", 0.3))
	assert.Equal(t, 1.5, Get(params, "speed", 1.0))
	assert.Equal(t, float32(1.5), Get(params, "speed", float32(1)))
	assert.Equal(t, "F1", Get(params, "voice", "M1"))
	assert.True(t, Get(params, "stream", false))
	assert.Equal(t, 2*time.Second, Get(params, "timeout", time.Second))
}

func TestGet_Fallbacks(t *testing.T) {
	params := map[string]any{
		"steps": "eight",
		"nil":   nil,
	}

	assert.Equal(t, 5, Get(params, "steps", 5))
	assert.Equal(t, 5, Get(params, "missing", 5))
	assert.Equal(t, "x", Get(params, "nil", "x"))
	assert.Equal(t, 5, Get[int](nil, "steps", 5))
}

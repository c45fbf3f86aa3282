package kokoro

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultVocab(t *testing.T) {
	v, err := LoadVocab("")
	require.NoError(t, err)

	assert.Equal(t, int64(16), v[' '])
	assert.Equal(t, int64(4), v['.'])
	assert.Equal(t, int64(156), v['ˈ'])
	assert.Equal(t, int64(177), v['ᵻ'])
	assert.Equal(t, spaceToken, v[' '])
}

func TestParseVocab_Errors(t *testing.T) {
	_, err := ParseVocab([]byte(`{`))
	assert.Error(t, err)

	_, err = ParseVocab([]byte(`{"vocab": {}}`))
	assert.ErrorContains(t, err, "no entries")

	_, err = ParseVocab([]byte(`{"vocab": {"ab": 1}}`))
	assert.ErrorContains(t, err, "not a single rune")
}

func TestLoadVocab_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"n_token": 3, "vocab": {"a": 1, "b": 2}}`), 0o644))

	v, err := LoadVocab(path)
	require.NoError(t, err)
	assert.Equal(t, Vocab{'a': 1, 'b': 2}, v)

	_, err = LoadVocab(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestVocab_Encode(t *testing.T) {
	v := Vocab{'h': 50, 'ə': 83, ' ': 16, '.': 4}

	assert.Equal(t, []int64{50, 83, 16, 50, 4}, v.Encode("hə hX."))
	assert.Empty(t, v.Encode("XYZ"))
}

func TestSplitTokens(t *testing.T) {
	tokens := []int64{1, 1, 16, 1, 1, 16, 1}

	chunks := splitTokens(tokens, 4, 16)
	assert.Equal(t, [][]int64{{1, 1, 16}, {1, 1, 16, 1}}, chunks)

	for _, c := range splitTokens(tokens, 3, 16) {
		assert.LessOrEqual(t, len(c), 3)
	}

	// No separator: hard cut.
	assert.Equal(t, [][]int64{{1, 2}, {3, 4}, {5}}, splitTokens([]int64{1, 2, 3, 4, 5}, 2, 16))

	assert.Equal(t, [][]int64{{1, 2}}, splitTokens([]int64{1, 2}, MaxTokens, 16))
	assert.Empty(t, splitTokens(nil, MaxTokens, 16))
}

func TestPad(t *testing.T) {
	assert.Equal(t, []int64{0, 5, 6, 0}, pad([]int64{5, 6}))
	assert.Equal(t, []int64{0, 0}, pad(nil))
}

package supertonic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"adds terminal period", "Hello world", "Hello world."},
		{"keeps terminal punctuation", "Really?", "Really?"},
		{"removes space before punctuation", "Wait !", "Wait!"},
		{"folds dashes", "Hi — there", "Hi - there."},
		{"strips emoji", "Great 😀 job", "Great job."},
		{"expands at sign", "Email me@x", "Email me at x."},
		{"collapses whitespace", "one\t\ttwo\nthree", "one two three."},
		{"empty stays empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeText(tt.in))
		})
	}
}

func TestChunkText(t *testing.T) {
	t.Run("short text is a single chunk", func(t *testing.T) {
		assert.Equal(t, []string{"Hello there."}, chunkText("  Hello there.  ", maxChunkLength))
	})

	t.Run("paragraphs split", func(t *testing.T) {
		assert.Equal(t, []string{"First.", "Second."}, chunkText("First.\n\n  \nSecond.", maxChunkLength))
	})

	t.Run("long paragraph splits on sentences", func(t *testing.T) {
		sentences := make([]string, 30)
		for i := range sentences {
			sentences[i] = "This is one more sentence."
		}
		text := strings.Join(sentences, " ")

		chunks := chunkText(text, maxChunkLength)
		assert.Greater(t, len(chunks), 1)
		for _, c := range chunks {
			assert.LessOrEqual(t, len(c), maxChunkLength)
			assert.True(t, strings.HasSuffix(c, "."), c)
		}
		assert.Equal(t, text, strings.Join(chunks, " "))
	})

	t.Run("unpunctuated text splits on words", func(t *testing.T) {
		text := strings.TrimSpace(strings.Repeat("word ", 100))

		chunks := chunkText(text, maxChunkLength)
		assert.Len(t, chunks, 2)
		for _, c := range chunks {
			assert.LessOrEqual(t, len(c), maxChunkLength)
		}
		assert.Equal(t, text, strings.Join(chunks, " "))
	})

	t.Run("non-positive limit uses default", func(t *testing.T) {
		assert.Equal(t, []string{"Hi."}, chunkText("Hi.", 0))
	})
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("Dr. Smith arrived. He sat down.")
	assert.Len(t, got, 2)
	assert.Equal(t, "Dr. Smith arrived.", strings.TrimSpace(got[0]))
	assert.Equal(t, "He sat down.", got[1])

	assert.Equal(t, []string{"no terminal"}, splitSentences("no terminal"))
}

func TestIndexerEncode(t *testing.T) {
	idx := make(indexer, 128)
	for i := range idx {
		idx[i] = int64(i) + 1000
	}

	assert.Equal(t, []int64{1065, 1098, -1}, idx.encode("Abé"))
}

func TestParseModelConfig(t *testing.T) {
	cfg, err := parseModelConfig([]byte(`{
		"ae": {"sample_rate": 44100, "base_chunk_size": 512},
		"ttl": {"chunk_compress_factor": 6, "latent_dim": 24}
	}`))
	assert.NoError(t, err)
	assert.Equal(t, 44100, cfg.AE.SampleRate)
	assert.Equal(t, 3072, cfg.chunkSize())
	assert.Equal(t, 144, cfg.latentChannels())

	_, err = parseModelConfig([]byte(`{"ae": {"sample_rate": 0}}`))
	assert.Error(t, err)

	_, err = parseModelConfig([]byte(`not json`))
	assert.Error(t, err)
}

package kokoro

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"unicode/utf8"
)

// MaxTokens is the longest token sequence the model accepts, without padding.
const MaxTokens = 510

//go:embed vocab.json
var defaultVocabJSON []byte

// Vocab maps phoneme symbols to token ids.
type Vocab map[rune]int64

// ParseVocab reads a vocab from a kokoro config document ({"vocab": {...}}).
func ParseVocab(data []byte) (Vocab, error) {
	var doc struct {
		Vocab map[string]int64 `json:"vocab"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse vocab: %w", err)
	}
	if len(doc.Vocab) == 0 {
		return nil, fmt.Errorf("failed to parse vocab: no entries")
	}

	v := make(Vocab, len(doc.Vocab))
	for sym, id := range doc.Vocab {
		r, size := utf8.DecodeRuneInString(sym)
		if r == utf8.RuneError || size != len(sym) {
			return nil, fmt.Errorf("failed to parse vocab: symbol %q is not a single rune", sym)
		}
		v[r] = id
	}
	return v, nil
}

// LoadVocab reads a vocab file, or returns the embedded vocab when path is empty.
func LoadVocab(path string) (Vocab, error) {
	if path == "" {
		return ParseVocab(defaultVocabJSON)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocab: %w", err)
	}
	return ParseVocab(data)
}

// Encode maps phonemes to token ids, dropping symbols outside the vocab.
func (v Vocab) Encode(phonemes string) []int64 {
	tokens := make([]int64, 0, len(phonemes))
	for _, r := range phonemes {
		if id, ok := v[r]; ok {
			tokens = append(tokens, id)
		}
	}
	return tokens
}

// splitTokens cuts tokens into chunks of at most max entries, preferring to
// cut right after a word separator.
func splitTokens(tokens []int64, max int, separator int64) [][]int64 {
	var chunks [][]int64
	for len(tokens) > max {
		cut := max
		for i := max - 1; i > 0; i-- {
			if tokens[i] == separator {
				cut = i + 1
				break
			}
		}
		chunks = append(chunks, tokens[:cut])
		tokens = tokens[cut:]
	}
	if len(tokens) > 0 {
		chunks = append(chunks, tokens)
	}
	return chunks
}

// pad wraps tokens with the boundary token the model expects on both ends.
func pad(tokens []int64) []int64 {
	out := make([]int64, 0, len(tokens)+2)
	out = append(out, 0)
	out = append(out, tokens...)
	return append(out, 0)
}

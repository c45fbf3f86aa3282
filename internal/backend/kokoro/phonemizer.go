package kokoro

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ekisa-team/vocalis/internal/backend"
)

const defaultPhonemizeTimeout = 30 * time.Second

// Phonemizer converts text into IPA phonemes.
type Phonemizer interface {
	Phonemize(ctx context.Context, text, language string) (string, error)
}

// espeakLanguages maps the leading letter of a voice name to an espeak-ng voice.
var espeakLanguages = map[byte]string{
	'a': "en-us",
	'b': "en-gb",
	'e': "es",
	'f': "fr-fr",
	'g': "de",
	'h': "hi",
	'i': "it",
	'j': "ja",
	'k': "ko",
	'p': "pt-br",
	'z': "cmn",
}

const defaultEspeakLanguage = "en-us"

// LanguageFor returns the espeak-ng language used for a voice.
func LanguageFor(voice string) string {
	if voice == "" {
		return defaultEspeakLanguage
	}
	if lang, ok := espeakLanguages[voice[0]]; ok {
		return lang
	}
	return defaultEspeakLanguage
}

var (
	// clauses splits text while keeping the punctuation the model voices as pauses.
	clauses = regexp.MustCompile(`[^.,!?;:…—]+|[.,!?;:…—]+`)
	// languageSwitch matches markers like "(en)" espeak-ng emits when it switches voice.
	languageSwitch = regexp.MustCompile(`\([a-z]{2,3}(-[a-z]+)?\)`)
	whitespace     = regexp.MustCompile(`\s+`)
)

// EspeakPhonemizer shells out to espeak-ng, one call per clause, and stitches
// punctuation back between the phonemized clauses.
type EspeakPhonemizer struct {
	executor *backend.Executor
}

// NewEspeakPhonemizer locates the espeak-ng binary.
func NewEspeakPhonemizer(binary string) (*EspeakPhonemizer, error) {
	if binary == "" {
		binary = "espeak-ng"
	}

	executor, err := backend.NewExecutor(binary, defaultPhonemizeTimeout)
	if err != nil {
		return nil, fmt.Errorf("espeak-ng is required for kokoro: %w", err)
	}
	return &EspeakPhonemizer{executor: executor}, nil
}

// NewEspeakPhonemizerWithExecutor uses a preconfigured executor.
func NewEspeakPhonemizerWithExecutor(executor *backend.Executor) *EspeakPhonemizer {
	return &EspeakPhonemizer{executor: executor}
}

// Phonemize implements Phonemizer.
func (p *EspeakPhonemizer) Phonemize(ctx context.Context, text, language string) (string, error) {
	var out strings.Builder
	for _, part := range clauses.FindAllString(text, -1) {
		if isPunctuation(part) {
			out.WriteString(part)
			continue
		}
		if strings.TrimSpace(part) == "" {
			out.WriteString(" ")
			continue
		}

		stdout, _, err := p.executor.Execute(ctx,
			[]string{"-q", "--ipa", "-v", language, "--stdin"},
			strings.NewReader(part),
		)
		if err != nil {
			return "", fmt.Errorf("phonemize %q: %w", language, err)
		}

		if out.Len() > 0 {
			out.WriteString(" ")
		}
		out.WriteString(cleanIPA(string(stdout)))
	}

	return strings.TrimSpace(whitespace.ReplaceAllString(out.String(), " ")), nil
}

func cleanIPA(s string) string {
	s = languageSwitch.ReplaceAllString(s, "")
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func isPunctuation(s string) bool {
	return strings.Trim(s, ".,!?;:…—") == ""
}

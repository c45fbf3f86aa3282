package supertonic

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// maxChunkLength bounds the characters sent through the pipeline at once.
const maxChunkLength = 300

var (
	emojiPattern    = regexp.MustCompile(`[\x{1F600}-\x{1F64F}\x{1F300}-\x{1F5FF}\x{1F680}-\x{1F6FF}\x{1F700}-\x{1F77F}\x{1F780}-\x{1F7FF}\x{1F800}-\x{1F8FF}\x{1F900}-\x{1F9FF}\x{1FA00}-\x{1FA6F}\x{1FA70}-\x{1FAFF}\x{2600}-\x{26FF}\x{2700}-\x{27BF}\x{1F1E6}-\x{1F1FF}]+`)
	spaceBeforePunc = regexp.MustCompile(` ([,.!?;:'])`)
	spaces          = regexp.MustCompile(`\s+`)
	endsWithPunct   = regexp.MustCompile(`[.!?;:,'"\x{201C}\x{201D}\x{2018}\x{2019})\]}…。」』】〉》›»]$`)
	paragraphBreak  = regexp.MustCompile(`\n\s*\n`)
	sentenceEnd     = regexp.MustCompile(`([.!?])\s+`)
)

var symbolReplacer = strings.NewReplacer(
	"–", "-",
	"‑", "-",
	"—", "-",
	"_", " ",
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
	"´", "'",
	"`", "'",
	"[", " ",
	"]", " ",
	"|", " ",
	"/", " ",
	"#", " ",
	"→", " ",
	"←", " ",
	"♥", "",
	"☆", "",
	"♡", "",
	"©", "",
	`\`, "",
	"@", " at ",
	"e.g.,", "for example, ",
	"i.e.,", "that is, ",
)

var abbreviations = []string{
	"Dr.", "Mr.", "Mrs.", "Ms.", "Prof.", "Sr.", "Jr.",
	"St.", "Ave.", "Rd.", "Blvd.", "Dept.", "Inc.", "Ltd.",
	"Co.", "Corp.", "etc.", "vs.", "i.e.", "e.g.", "Ph.D.",
}

// normalizeText prepares text for the unicode indexer: NFKD, symbol folding,
// whitespace collapsing and a terminal period when the text has none.
func normalizeText(text string) string {
	text = norm.NFKD.String(text)
	text = emojiPattern.ReplaceAllString(text, "")
	text = symbolReplacer.Replace(text)
	text = spaceBeforePunc.ReplaceAllString(text, "$1")

	for _, dup := range []string{`""`, "''"} {
		for strings.Contains(text, dup) {
			text = strings.ReplaceAll(text, dup, dup[:1])
		}
	}

	text = strings.TrimSpace(spaces.ReplaceAllString(text, " "))
	if text != "" && !endsWithPunct.MatchString(text) {
		text += "."
	}
	return text
}

// chunkText splits text into pieces of at most maxLen bytes, breaking on
// paragraphs, then sentences, then commas, then spaces.
func chunkText(text string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = maxChunkLength
	}

	var chunks []string
	for _, para := range paragraphBreak.Split(strings.TrimSpace(text), -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) <= maxLen {
			chunks = append(chunks, para)
			continue
		}

		var b chunkBuilder
		b.max = maxLen
		for _, sentence := range splitSentences(para) {
			sentence = strings.TrimSpace(sentence)
			if sentence == "" {
				continue
			}
			if len(sentence) <= maxLen {
				b.add(sentence, " ")
				continue
			}

			b.flush()
			for _, part := range strings.Split(sentence, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				if len(part) <= maxLen {
					b.add(part, ", ")
					continue
				}

				b.flush()
				for _, word := range strings.Fields(part) {
					b.add(word, " ")
				}
				b.flush()
			}
			b.flush()
		}
		b.flush()
		chunks = append(chunks, b.chunks...)
	}

	return chunks
}

type chunkBuilder struct {
	max     int
	current strings.Builder
	chunks  []string
}

func (b *chunkBuilder) add(piece, sep string) {
	if b.current.Len() > 0 && b.current.Len()+len(sep)+len(piece) > b.max {
		b.flush()
	}
	if b.current.Len() > 0 {
		b.current.WriteString(sep)
	}
	b.current.WriteString(piece)
}

func (b *chunkBuilder) flush() {
	if s := strings.TrimSpace(b.current.String()); s != "" {
		b.chunks = append(b.chunks, s)
	}
	b.current.Reset()
}

// splitSentences splits on terminal punctuation that does not end a known abbreviation.
func splitSentences(text string) []string {
	matches := sentenceEnd.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return []string{text}
	}

	var sentences []string
	last := 0
	for _, m := range matches {
		candidate := strings.TrimSpace(text[last : m[0]+1])
		if isAbbreviation(candidate) {
			continue
		}
		sentences = append(sentences, text[last:m[1]])
		last = m[1]
	}
	if last < len(text) {
		sentences = append(sentences, text[last:])
	}
	return sentences
}

func isAbbreviation(s string) bool {
	for _, a := range abbreviations {
		if strings.HasSuffix(s, a) {
			return true
		}
	}
	return false
}

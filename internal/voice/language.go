package voice

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ekisa-team/vocalis/internal/backend"
)

// FallbackLanguage is used for voice names whose language cannot be derived.
const FallbackLanguage = "en"

// Language describes a language offered by at least one voice.
type Language struct {
	Code       string `json:"code"        doc:"ISO 639-1 language code"`
	Name       string `json:"name"        doc:"English name"`
	NativeName string `json:"native_name" doc:"Name in the language itself"`
}

var languageNames = map[string]Language{
	"en": {Code: "en", Name: "English", NativeName: "English"},
	"ja": {Code: "ja", Name: "Japanese", NativeName: "日本語"},
	"ko": {Code: "ko", Name: "Korean", NativeName: "한국어"},
	"zh": {Code: "zh", Name: "Chinese", NativeName: "中文"},
	"es": {Code: "es", Name: "Spanish", NativeName: "Español"},
	"fr": {Code: "fr", Name: "French", NativeName: "Français"},
	"de": {Code: "de", Name: "German", NativeName: "Deutsch"},
	"it": {Code: "it", Name: "Italian", NativeName: "Italiano"},
	"pt": {Code: "pt", Name: "Portuguese", NativeName: "Português"},
}

// languageLetters maps the leading letter of compact voice names.
var languageLetters = map[byte]string{
	'a': "en", // American
	'b': "en", // British
	'j': "ja",
	'k': "ko",
	'z': "zh",
	'e': "es",
	'f': "fr",
	'g': "de",
	'i': "it",
	'p': "pt",
}

var genderLetters = map[byte]Gender{
	'f': Female,
	'm': Male,
}

// LanguageInfo returns the metadata for a language code.
// Unknown codes are reported with the upper-cased code as both names.
func LanguageInfo(code string) Language {
	if l, ok := languageNames[code]; ok {
		return l
	}
	upper := strings.ToUpper(code)
	return Language{Code: code, Name: upper, NativeName: upper}
}

// Languages returns the distinct languages of a backend's voices, sorted by code.
func Languages(id backend.Identifier) []Language {
	var codes []string
	for _, v := range catalogs[id] {
		if !slices.Contains(codes, v.Language) {
			codes = append(codes, v.Language)
		}
	}
	slices.Sort(codes)

	languages := make([]Language, len(codes))
	for i, code := range codes {
		languages[i] = LanguageInfo(code)
	}
	return languages
}

// ParseVoiceName derives a descriptor from a compact voice name such as "af_heart".
// It never fails: names that do not follow the convention fall back to
// FallbackLanguage with an unknown gender.
func ParseVoiceName(name string) Descriptor {
	fallback := Descriptor{
		Name:        name,
		Language:    FallbackLanguage,
		Gender:      Unknown,
		Description: name,
	}

	prefix, rest, ok := strings.Cut(name, "_")
	if !ok || len(prefix) < 2 {
		return fallback
	}

	language, ok := languageLetters[prefix[0]]
	if !ok {
		language = FallbackLanguage
	}

	gender, ok := genderLetters[prefix[1]]
	if !ok {
		gender = Unknown
	}

	return Descriptor{
		Name:        name,
		Language:    language,
		Gender:      gender,
		Description: LanguageInfo(language).Name + " " + capitalize(string(gender)) + " " + capitalize(rest),
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

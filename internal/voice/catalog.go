// Package voice holds the static voice catalogs of every backend.
package voice

import (
	"slices"

	"github.com/ekisa-team/vocalis/internal/backend"
)

// Gender of a voice.
type Gender string

const (
	Male    Gender = "male"
	Female  Gender = "female"
	Unknown Gender = "unknown"
)

// Descriptor describes a single voice preset.
type Descriptor struct {
	Name        string `json:"name"        doc:"Voice identifier"`
	Language    string `json:"language"    doc:"ISO 639-1 language code"`
	Gender      Gender `json:"gender"      doc:"Voice gender" enum:"male,female,unknown"`
	Description string `json:"description" doc:"Human-readable description"`
}

var catalogs = map[backend.Identifier][]Descriptor{
	backend.Kokoro:     kokoroVoices,
	backend.Supertonic: supertonicVoices,
}

var defaults = map[backend.Identifier]string{
	backend.Kokoro:     "af_heart",
	backend.Supertonic: "F1",
}

// For returns the voices of a backend in catalog order.
// Unknown backends have no voices.
func For(id backend.Identifier) []Descriptor {
	return slices.Clone(catalogs[id])
}

// Names returns the voice names of a backend in catalog order.
func Names(id backend.Identifier) []string {
	voices := catalogs[id]
	names := make([]string, len(voices))
	for i, v := range voices {
		names[i] = v.Name
	}
	return names
}

// IsValid reports whether name is a voice of the backend.
func IsValid(name string, id backend.Identifier) bool {
	_, ok := Lookup(name, id)
	return ok
}

// Lookup returns the descriptor for name.
func Lookup(name string, id backend.Identifier) (Descriptor, bool) {
	for _, v := range catalogs[id] {
		if v.Name == name {
			return v, true
		}
	}
	return Descriptor{}, false
}

// Default returns the default voice of a backend.
func Default(id backend.Identifier) string {
	return defaults[id]
}

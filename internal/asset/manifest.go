package asset

import (
	"fmt"
	"path"

	"github.com/ekisa-team/vocalis/internal/backend"
)

const (
	kokoroReleaseURL = "https://github.com/nazdridoy/kokoro-tts/releases/download/v1.0.0/"
	supertonicRepo   = "https://huggingface.co/Supertone/supertonic/resolve/main/"

	// DefaultKokoroModelFile is the kokoro network file name.
	DefaultKokoroModelFile = "kokoro-v1.0.onnx"
	// DefaultKokoroVoicesFile is the kokoro voice pack file name.
	DefaultKokoroVoicesFile = "voices-v1.0.bin"
)

// Logical asset keys.
const (
	KeyKokoroModel  = "model"
	KeyKokoroVoices = "voices"

	KeySupertonicConfig  = "config"
	KeySupertonicIndexer = "unicode_indexer"
	KeyDurationPredictor = "duration_predictor"
	KeyTextEncoder       = "text_encoder"
	KeyVectorEstimator   = "vector_estimator"
	KeyVocoder           = "vocoder"
)

// SupertonicVoices are the voice styles shipped with supertonic.
var SupertonicVoices = []string{"M1", "M2", "M3", "M4", "M5", "F1", "F2", "F3", "F4", "F5"}

// File is one required asset.
type File struct {
	// Key is the logical name engines look the file up by.
	Key string
	// Name is the path relative to the backend directory.
	Name string
	// URL is the remote source used when the file is missing locally.
	URL string
}

// Manifest lists every file a backend needs.
type Manifest struct {
	Backend backend.Identifier
	Files   []File
}

// Overrides replaces default file names.
type Overrides struct {
	// KokoroModelFile replaces the kokoro model file name.
	KokoroModelFile string
	// KokoroVoicesFile replaces the kokoro voice pack file name.
	KokoroVoicesFile string
}

// StyleKey is the logical key of a supertonic voice style.
func StyleKey(voice string) string {
	return "style/" + voice
}

// ManifestFor returns the files required by a backend.
func ManifestFor(id backend.Identifier, o Overrides) (Manifest, error) {
	switch id {
	case backend.Kokoro:
		model := valueOr(o.KokoroModelFile, DefaultKokoroModelFile)
		voices := valueOr(o.KokoroVoicesFile, DefaultKokoroVoicesFile)
		return Manifest{
			Backend: id,
			Files: []File{
				{Key: KeyKokoroModel, Name: model, URL: kokoroReleaseURL + path.Base(model)},
				{Key: KeyKokoroVoices, Name: voices, URL: kokoroReleaseURL + path.Base(voices)},
			},
		}, nil

	case backend.Supertonic:
		files := []File{
			supertonicModelFile(KeySupertonicConfig, "tts.json"),
			supertonicModelFile(KeySupertonicIndexer, "unicode_indexer.json"),
			supertonicModelFile(KeyDurationPredictor, "duration_predictor.onnx"),
			supertonicModelFile(KeyTextEncoder, "text_encoder.onnx"),
			supertonicModelFile(KeyVectorEstimator, "vector_estimator.onnx"),
			supertonicModelFile(KeyVocoder, "vocoder.onnx"),
		}
		for _, v := range SupertonicVoices {
			name := "voice_styles/" + v + ".json"
			files = append(files, File{Key: StyleKey(v), Name: name, URL: supertonicRepo + name})
		}
		return Manifest{Backend: id, Files: files}, nil

	default:
		return Manifest{}, fmt.Errorf("%w: %q", backend.ErrUnknownBackend, id)
	}
}

func supertonicModelFile(key, name string) File {
	return File{Key: key, Name: name, URL: supertonicRepo + "onnx/" + name}
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// Paths maps logical keys to local files.
type Paths map[string]string

// Get returns the path for key.
func (p Paths) Get(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("%w: no asset %q", ErrUnavailable, key)
	}
	return v, nil
}

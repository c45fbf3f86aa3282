package kokoro

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/sbinet/npyio"

	"github.com/ekisa-team/vocalis/internal/backend"
)

// StyleDim is the width of one style vector.
const StyleDim = 256

// VoicePack holds the style matrices of every voice, one row per input length.
type VoicePack struct {
	styles map[string][]float32
}

// LoadVoicePack reads a voices-v1.0.bin file, which is a numpy .npz archive
// with one float32 array of shape (510, 1, 256) per voice.
func LoadVoicePack(filename string) (*VoicePack, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open voice pack: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat voice pack: %w", err)
	}
	return ReadVoicePack(f, info.Size())
}

// ReadVoicePack parses an npz voice pack.
func ReadVoicePack(r io.ReaderAt, size int64) (*VoicePack, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read voice pack archive: %w", err)
	}

	pack := &VoicePack{styles: make(map[string][]float32, len(zr.File))}
	for _, entry := range zr.File {
		if !strings.HasSuffix(entry.Name, ".npy") {
			continue
		}

		data, err := readArray(entry)
		if err != nil {
			return nil, fmt.Errorf("voice %s: %w", entry.Name, err)
		}
		if len(data) == 0 || len(data)%StyleDim != 0 {
			return nil, fmt.Errorf("voice %s: %d values is not a multiple of %d", entry.Name, len(data), StyleDim)
		}

		pack.styles[strings.TrimSuffix(path.Base(entry.Name), ".npy")] = data
	}

	if len(pack.styles) == 0 {
		return nil, fmt.Errorf("voice pack contains no voices")
	}
	return pack, nil
}

func readArray(entry *zip.File) ([]float32, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var data []float32
	if err := npyio.Read(rc, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// Names returns the voice names in sorted order.
func (p *VoicePack) Names() []string {
	names := make([]string, 0, len(p.styles))
	for name := range p.styles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Has reports whether the pack contains voice.
func (p *VoicePack) Has(voice string) bool {
	_, ok := p.styles[voice]
	return ok
}

// Style returns the style vector for an unpadded token sequence of length n.
// Lengths beyond the table reuse its last row.
func (p *VoicePack) Style(voice string, n int) ([]float32, error) {
	data, ok := p.styles[voice]
	if !ok {
		return nil, fmt.Errorf("%w: %q", backend.ErrUnknownVoice, voice)
	}

	rows := len(data) / StyleDim
	row := min(max(n, 0), rows-1)
	return data[row*StyleDim : (row+1)*StyleDim], nil
}

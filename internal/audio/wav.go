// Package audio packages synthesized samples into WAV containers.
package audio

import (
	"errors"
	"fmt"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	// ContentType is the MIME type of encoded output.
	ContentType = "audio/wav"

	bitDepth    = 16
	numChannels = 1
	pcmFormat   = 1
	maxInt16    = 32767
)

// ErrEncoding is returned for buffers that cannot be encoded.
var ErrEncoding = errors.New("audio encoding failed")

// Encode converts mono float samples into a 16-bit PCM WAV file.
// Samples are clamped to [-1, 1] before scaling, so out-of-range input
// saturates instead of wrapping around.
func Encode(samples []float32, sampleRate int) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: invalid sample rate %d", ErrEncoding, sampleRate)
	}

	pcm := make([]int, len(samples))
	for i, s := range samples {
		if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
			return nil, fmt.Errorf("%w: non-finite sample at %d", ErrEncoding, i)
		}
		pcm[i] = ToPCM16(s)
	}

	out := &writeSeeker{}
	enc := wav.NewEncoder(out, sampleRate, bitDepth, numChannels, pcmFormat)

	buf := &goaudio.IntBuffer{
		Data:           pcm,
		Format:         &goaudio.Format{SampleRate: sampleRate, NumChannels: numChannels},
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	return out.Bytes(), nil
}

// ToPCM16 clamps s to [-1, 1], scales it by 32767 and truncates toward zero.
func ToPCM16(s float32) int {
	v := float64(s)
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int(v * maxInt16)
}

// Squeeze flattens a tensor whose shape has at most one non-singleton dimension.
// Anything else is not a mono buffer and is rejected.
func Squeeze(shape []int64, data []float32) ([]float32, error) {
	var n int64 = 1
	wide := 0
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("%w: negative dimension in shape %v", ErrEncoding, shape)
		}
		if d > 1 {
			wide++
		}
		n *= d
	}

	if wide > 1 {
		return nil, fmt.Errorf("%w: shape %v is not a mono buffer", ErrEncoding, shape)
	}
	if int64(len(data)) != n {
		return nil, fmt.Errorf("%w: shape %v does not match %d samples", ErrEncoding, shape, len(data))
	}

	return data, nil
}

package supertonic

import (
	"encoding/json"
	"fmt"
	"os"
)

// modelConfig is the subset of tts.json the pipeline needs.
type modelConfig struct {
	AE struct {
		SampleRate    int `json:"sample_rate"`
		BaseChunkSize int `json:"base_chunk_size"`
	} `json:"ae"`
	TTL struct {
		ChunkCompressFactor int `json:"chunk_compress_factor"`
		LatentDim           int `json:"latent_dim"`
	} `json:"ttl"`
}

func parseModelConfig(data []byte) (modelConfig, error) {
	var cfg modelConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse tts.json: %w", err)
	}

	switch {
	case cfg.AE.SampleRate <= 0:
		return cfg, fmt.Errorf("tts.json: invalid ae.sample_rate %d", cfg.AE.SampleRate)
	case cfg.AE.BaseChunkSize <= 0:
		return cfg, fmt.Errorf("tts.json: invalid ae.base_chunk_size %d", cfg.AE.BaseChunkSize)
	case cfg.TTL.ChunkCompressFactor <= 0:
		return cfg, fmt.Errorf("tts.json: invalid ttl.chunk_compress_factor %d", cfg.TTL.ChunkCompressFactor)
	case cfg.TTL.LatentDim <= 0:
		return cfg, fmt.Errorf("tts.json: invalid ttl.latent_dim %d", cfg.TTL.LatentDim)
	}
	return cfg, nil
}

func loadModelConfig(path string) (modelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return modelConfig{}, fmt.Errorf("failed to read tts.json: %w", err)
	}
	return parseModelConfig(data)
}

// chunkSize is the number of waveform samples one latent frame decodes to.
func (c modelConfig) chunkSize() int {
	return c.AE.BaseChunkSize * c.TTL.ChunkCompressFactor
}

// latentChannels is the channel count of the compressed latent.
func (c modelConfig) latentChannels() int {
	return c.TTL.LatentDim * c.TTL.ChunkCompressFactor
}

// indexer maps Unicode code points to model token ids.
type indexer []int64

func loadIndexer(path string) (indexer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read unicode indexer: %w", err)
	}

	var idx indexer
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse unicode indexer: %w", err)
	}
	return idx, nil
}

// encode returns one id per rune; code points outside the table map to -1.
func (idx indexer) encode(text string) []int64 {
	ids := make([]int64, 0, len(text))
	for _, r := range text {
		if int(r) < len(idx) {
			ids = append(ids, idx[r])
		} else {
			ids = append(ids, -1)
		}
	}
	return ids
}

package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// StaticProvider serves availability held in memory, keyed by GPU type.
type StaticProvider struct {
	data map[string]map[string][]Offer
}

func NewStaticProvider(data map[string]map[string][]Offer) *StaticProvider {
	return &StaticProvider{data: data}
}

// Availability returns an empty result for GPU types it does not know.
func (p *StaticProvider) Availability(_ context.Context, gpuType string) (map[string][]Offer, error) {
	return p.data[gpuType], nil
}

func (p *StaticProvider) Source() string {
	return "static"
}

// FileProvider reads availability from a JSON file on every call, shaped as
// {"<gpu type>": {"<model key>": [offers...]}}.
type FileProvider struct {
	path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

func (p *FileProvider) Availability(ctx context.Context, gpuType string) (map[string][]Offer, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("read pricing file: %w", err)
	}

	var all map[string]map[string][]Offer
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("decode pricing file %s: %w", p.path, err)
	}
	return NewStaticProvider(all).Availability(ctx, gpuType)
}

func (p *FileProvider) Source() string {
	return "file"
}

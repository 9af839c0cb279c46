package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestEntry represents one mesh in the output manifest.
type ManifestEntry struct {
	Name    string         `json:"name"`
	Mesh    string         `json:"mesh"`
	Texture string         `json:"texture,omitempty"`
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Samples []SampleRecord `json:"samples"`
}

// WriteManifest writes manifest.json describing every processed mesh.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		entries[i] = ManifestEntry{
			Name:    r.Name,
			Mesh:    r.Mesh,
			Texture: r.Texture,
			Success: r.Success,
			Error:   r.Error,
			Samples: r.Samples,
		}
		if entries[i].Samples == nil {
			entries[i].Samples = []SampleRecord{}
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("manifest dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) ([]ManifestEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const manifestFile = "sources.yaml"

// Manifest maps document ids onto files and display labels for one project.
//
//	sources:
//	  - id: rfp
//	    file: rfp-2024.pdf
//	    label: RFP 2024
type Manifest struct {
	Sources []ManifestEntry `yaml:"sources"`
}

type ManifestEntry struct {
	ID    string `yaml:"id"`
	File  string `yaml:"file"`
	Label string `yaml:"label"`
}

func (m *Manifest) lookup(id string) (ManifestEntry, bool) {
	if m == nil {
		return ManifestEntry{}, false
	}
	for _, e := range m.Sources {
		if e.ID == id {
			return e, true
		}
	}
	return ManifestEntry{}, false
}

// readManifest returns nil without error when the project has no manifest.
func readManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("source: read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("source: parse %s: %w", manifestFile, err)
	}
	return &m, nil
}

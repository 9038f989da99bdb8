package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Scene is one rendered segment plus the narration spoken over it.
type Scene struct {
	Segment   string `yaml:"segment"`
	Narration string `yaml:"narration"`
}

// Manifest lists the scenes of one video in timeline order.
type Manifest struct {
	Output   string            `yaml:"output,omitempty"`
	Settings *AssemblySettings `yaml:"settings,omitempty"`
	Scenes   []Scene           `yaml:"scenes"`
}

// LoadManifest reads a scene manifest. Relative segment paths are resolved
// against the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read manifest %s", path)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "parse manifest %s", path)
	}
	if len(m.Scenes) == 0 {
		return nil, errors.Errorf("manifest %s has no scenes", path)
	}

	base := filepath.Dir(path)
	for i := range m.Scenes {
		seg := m.Scenes[i].Segment
		if seg == "" {
			return nil, errors.Errorf("scene %d has no segment", i)
		}
		if !filepath.IsAbs(seg) {
			m.Scenes[i].Segment = filepath.Join(base, seg)
		}
	}
	if m.Output != "" && !filepath.IsAbs(m.Output) {
		m.Output = filepath.Join(base, m.Output)
	}
	return &m, nil
}

// Segments returns the segment paths in order.
func (m *Manifest) Segments() []string {
	out := make([]string, len(m.Scenes))
	for i, s := range m.Scenes {
		out[i] = s.Segment
	}
	return out
}

// Narration returns the narration text per scene in order.
func (m *Manifest) Narration() []string {
	out := make([]string, len(m.Scenes))
	for i, s := range m.Scenes {
		out[i] = s.Narration
	}
	return out
}

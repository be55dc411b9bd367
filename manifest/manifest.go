package manifest

import (
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/odinplan/internal/hash"
	"github.com/arloliu/odinplan/render"
	"github.com/arloliu/odinplan/types"
)

// FileName is the manifest file written next to the artifacts.
const FileName = "manifest.yaml"

// Entry describes one artifact.
type Entry struct {
	Name        string `yaml:"name"`
	Size        int    `yaml:"size"`
	Mode        string `yaml:"mode"`
	Fingerprint string `yaml:"fingerprint"`
}

// Manifest describes one build.
type Manifest struct {
	BuildID     string  `yaml:"buildId"`
	Detector    string  `yaml:"detector"`
	Fingerprint string  `yaml:"fingerprint"`
	Artifacts   []Entry `yaml:"artifacts"`
}

// Build fingerprints artifacts in the given order.
//
// Parameters:
//   - detector: Detector family name
//   - artifacts: Rendered files
//
// Returns:
//   - *Manifest: Manifest with a new build ID
func Build(detector string, artifacts []render.Artifact) *Manifest {
	m := &Manifest{
		BuildID:   uuid.NewString(),
		Detector:  detector,
		Artifacts: make([]Entry, 0, len(artifacts)),
	}

	pairs := make([][2]string, 0, len(artifacts))
	for _, a := range artifacts {
		fp := hash.Fingerprint(a.Data)
		m.Artifacts = append(m.Artifacts, Entry{
			Name:        a.Name,
			Size:        len(a.Data),
			Mode:        fmt.Sprintf("%04o", a.Mode.Perm()),
			Fingerprint: fp,
		})
		pairs = append(pairs, [2]string{a.Name, fp})
	}
	m.Fingerprint = hash.Combine(pairs...)

	return m
}

// Marshal encodes the manifest as YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}

	return data, nil
}

// Parse decodes a YAML manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	return &m, nil
}

// Verify checks artifacts against the manifest entries by name.
//
// Returns:
//   - error: types.ErrManifestMismatch describing the first missing, extra or
//     changed artifact
func (m *Manifest) Verify(artifacts []render.Artifact) error {
	want := make(map[string]string, len(m.Artifacts))
	for _, e := range m.Artifacts {
		want[e.Name] = e.Fingerprint
	}

	for _, a := range artifacts {
		fp, ok := want[a.Name]
		if !ok {
			return fmt.Errorf("artifact %s not in manifest: %w", a.Name, types.ErrManifestMismatch)
		}
		if got := hash.Fingerprint(a.Data); got != fp {
			return fmt.Errorf("artifact %s changed: fingerprint %s, manifest %s: %w", a.Name, got, fp, types.ErrManifestMismatch)
		}
		delete(want, a.Name)
	}
	for name := range want {
		return fmt.Errorf("artifact %s missing: %w", name, types.ErrManifestMismatch)
	}

	return nil
}

package supervise

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed services.yml
var defaultManifest []byte

// Service is one daemon to start.
type Service struct {
	Name   string   `yaml:"name"`
	Binary string   `yaml:"binary"`
	Args   []string `yaml:"args,omitempty"`
	Env    []string `yaml:"env,omitempty"`
}

// Manifest is the ordered list of service daemons.
type Manifest struct {
	Services []Service `yaml:"services"`
}

// ParseManifest decodes a YAML manifest.
func ParseManifest(contents []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(contents, &m); err != nil {
		return nil, fmt.Errorf("supervise: parse manifest: %w", err)
	}
	if len(m.Services) == 0 {
		return nil, fmt.Errorf("supervise: manifest declares no services")
	}
	for i, svc := range m.Services {
		if svc.Name == "" || svc.Binary == "" {
			return nil, fmt.Errorf("supervise: service %d is missing name or binary", i)
		}
	}
	return &m, nil
}

// DefaultManifest returns the embedded service list.
func DefaultManifest() *Manifest {
	m, err := ParseManifest(defaultManifest)
	if err != nil {
		// The embedded manifest ships with the binary; it cannot be invalid.
		panic(err)
	}
	return m
}

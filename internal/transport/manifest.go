package transport

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ProviderSpec describes one gateway API variant: where to check health
// and where to post messages, both relative to the gateway base URL.
type ProviderSpec struct {
	Name       string `yaml:"name"`
	HealthPath string `yaml:"healthPath"`
	SendPath   string `yaml:"sendPath"`
	Disabled   bool   `yaml:"disabled,omitempty"`
}

// Manifest lists candidate variants in probe order.
type Manifest struct {
	Providers []ProviderSpec `yaml:"providers"`
}

// DefaultManifest returns the built-in candidate list, newest variant
// first. Discovery walks it top to bottom.
func DefaultManifest() Manifest {
	return Manifest{Providers: []ProviderSpec{
		{Name: "multidevice-v2", HealthPath: "/api/v2/health", SendPath: "/api/v2/messages/interactive"},
		{Name: "multidevice-v1", HealthPath: "/api/health", SendPath: "/api/messages/send"},
		{Name: "legacy", HealthPath: "/health", SendPath: "/send"},
	}}
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// LoadManifest reads a provider manifest from a YAML file, expanding
// ${VAR} references from the environment. Unset variables are left
// verbatim so the error surfaces in the parsed value, not silently as
// an empty string.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading provider manifest: %w", err)
	}

	expanded := envVarPattern.ReplaceAllStringFunc(string(data), func(match string) string {
		if val, ok := os.LookupEnv(match[2 : len(match)-1]); ok {
			return val
		}
		return match
	})

	var m Manifest
	if err := yaml.Unmarshal([]byte(expanded), &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing provider manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

func (m Manifest) validate() error {
	if len(m.Providers) == 0 {
		return fmt.Errorf("provider manifest lists no providers")
	}
	for i, p := range m.Providers {
		if p.Name == "" {
			return fmt.Errorf("provider %d has no name", i)
		}
		if p.HealthPath == "" || p.SendPath == "" {
			return fmt.Errorf("provider %q needs healthPath and sendPath", p.Name)
		}
	}
	return nil
}

// enabled returns the providers that are not disabled, in manifest order.
func (m Manifest) enabled() []ProviderSpec {
	out := make([]ProviderSpec, 0, len(m.Providers))
	for _, p := range m.Providers {
		if !p.Disabled {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// envProvider marks the environment as a source. Environment loading itself
// happens inside the loader so aliases and tags share one code path.
type envProvider struct{}

// NewEnvProvider creates a new environment variable configuration source.
func NewEnvProvider() Source {
	return &envProvider{}
}

func (e *envProvider) Load() (map[string]any, error) {
	return make(map[string]any), nil
}

func (e *envProvider) Type() SourceType {
	return SourceEnv
}

// CLIFlagMapping maps command line flag names to config paths.
func CLIFlagMapping() map[string]string {
	return map[string]string{
		"host":            "server.host",
		"port":            "server.port",
		"cors":            "server.cors_enabled",
		"log-level":       "runtime.log_level",
		"log-json":        "runtime.log_json",
		"environment":     "runtime.environment",
		"model":           "anthropic.model",
		"sources-dir":     "sources.root_dir",
		"output-dir":      "storage.output_dir",
		"tts-provider":    "tts.provider",
		"metrics":         "monitoring.enabled",
		"rate-limit":      "ratelimit.enabled",
		"transient-retry": "anthropic.transient_retries",
	}
}

// cliProvider implements Source interface for CLI flags.
type cliProvider struct {
	flags map[string]any
}

// NewCLIProvider creates a new CLI flags configuration source. Only flags
// listed in CLIFlagMapping are honored.
func NewCLIProvider(flags map[string]any) Source {
	return &cliProvider{flags: flags}
}

func (c *cliProvider) Load() (map[string]any, error) {
	config := make(map[string]any)
	if c.flags == nil {
		return config, nil
	}
	flagToPath := CLIFlagMapping()
	for key, value := range c.flags {
		path, ok := flagToPath[key]
		if !ok {
			continue
		}
		if err := setNested(config, path, value); err != nil {
			return nil, fmt.Errorf("failed to set CLI flag %s: %w", key, err)
		}
	}
	return config, nil
}

func (c *cliProvider) Type() SourceType {
	return SourceCLI
}

// setNested sets a value in a nested map structure using dot notation.
// It returns an error if a path conflict is encountered.
func setNested(m map[string]any, path string, value any) error {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, ".")
	current := m
	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		if _, exists := current[part]; !exists {
			current[part] = make(map[string]any)
		}
		next, ok := current[part].(map[string]any)
		if !ok {
			return fmt.Errorf("configuration conflict: key %q is not a map", strings.Join(parts[:i+1], "."))
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
	return nil
}

// yamlProvider implements Source interface for YAML files.
type yamlProvider struct {
	path string
}

// NewYAMLProvider creates a new YAML file configuration source. A missing
// file yields an empty configuration.
func NewYAMLProvider(path string) Source {
	return &yamlProvider{path: path}
}

func (y *yamlProvider) Load() (map[string]any, error) {
	data, err := os.ReadFile(y.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]any), nil
		}
		return nil, fmt.Errorf("failed to read YAML file: %w", err)
	}
	var config map[string]any
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML file: %w", err)
	}
	return filterNilValues(config), nil
}

// filterNilValues recursively removes nil values from a map
// This prevents koanf from overriding existing values with nil
func filterNilValues(m map[string]any) map[string]any {
	result := make(map[string]any)
	for k, v := range m {
		if v == nil {
			continue
		}
		if nestedMap, ok := v.(map[string]any); ok {
			filtered := filterNilValues(nestedMap)
			if len(filtered) > 0 {
				result[k] = filtered
			}
		} else {
			result[k] = v
		}
	}
	return result
}

func (y *yamlProvider) Type() SourceType {
	return SourceYAML
}

// defaultProvider is a marker source; defaults are always loaded first.
type defaultProvider struct{}

// NewDefaultProvider creates a new default configuration source.
func NewDefaultProvider() Source {
	return &defaultProvider{}
}

func (d *defaultProvider) Load() (map[string]any, error) {
	return make(map[string]any), nil
}

func (d *defaultProvider) Type() SourceType {
	return SourceDefault
}

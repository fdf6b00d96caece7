package config

import (
	"reflect"
	"strings"
	"sync"
)

// EnvMapping represents a mapping between environment variable and config path
type EnvMapping struct {
	EnvVar     string
	ConfigPath string
}

// EnvAlias lists the environment variables that may supply a config path, in
// priority order. The first non-empty variable wins.
type EnvAlias struct {
	ConfigPath string
	EnvVars    []string
	// SourcePath, when set, receives the name of the variable that won.
	SourcePath string
}

var (
	cachedMappings []EnvMapping
	mappingsOnce   sync.Once
)

// EnvAliases returns the alias table for variables inherited from the
// JavaScript deployment (VITE_ prefixed keys, PORT, ...).
func EnvAliases() []EnvAlias {
	return []EnvAlias{
		{
			ConfigPath: "anthropic.api_key",
			EnvVars:    []string{"VITE_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY", "ANTHROPIC_APIKEY"},
			SourcePath: "anthropic.key_source",
		},
		{
			ConfigPath: "anthropic.model",
			EnvVars:    []string{"VITE_ANTHROPIC_MODEL", "ANTHROPIC_MODEL"},
		},
		{
			ConfigPath: "openai.api_key",
			EnvVars:    []string{"OPENAI_API_KEY", "VITE_OPENAI_API_KEY"},
		},
		{
			ConfigPath: "elevenlabs.api_key",
			EnvVars:    []string{"ELEVENLABS_API_KEY", "VITE_ELEVENLABS_API_KEY"},
		},
		{
			ConfigPath: "server.port",
			EnvVars:    []string{"PORT"},
		},
	}
}

// GenerateEnvMappings generates environment variable mappings from config struct tags
func GenerateEnvMappings() []EnvMapping {
	mappingsOnce.Do(func() {
		cfg := &Config{}
		cachedMappings = extractMappings(reflect.TypeOf(cfg).Elem(), "")
	})
	return cachedMappings
}

func extractMappings(t reflect.Type, prefix string) []EnvMapping {
	var mappings []EnvMapping
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		koanfTag := field.Tag.Get("koanf")
		if koanfTag == "" || koanfTag == "-" {
			continue
		}
		configPath := koanfTag
		if prefix != "" {
			configPath = prefix + "." + koanfTag
		}
		if envTag := field.Tag.Get("env"); envTag != "" && envTag != "-" {
			mappings = append(mappings, EnvMapping{EnvVar: envTag, ConfigPath: configPath})
		}
		if field.Type.Kind() == reflect.Struct && field.Type.PkgPath() != "time" {
			mappings = append(mappings, extractMappings(field.Type, configPath)...)
		}
	}
	return mappings
}

// GetEnvVarForConfigPath returns the environment variable for a given config path
func GetEnvVarForConfigPath(configPath string) string {
	for _, m := range GenerateEnvMappings() {
		if m.ConfigPath == configPath {
			return m.EnvVar
		}
	}
	return ""
}

// IsSensitiveConfigPath checks if a config path is marked as sensitive
func IsSensitiveConfigPath(configPath string) bool {
	cfg := &Config{}
	return checkSensitiveField(reflect.TypeOf(cfg).Elem(), strings.Split(configPath, "."))
}

func checkSensitiveField(t reflect.Type, pathParts []string) bool {
	if len(pathParts) == 0 {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Tag.Get("koanf") != pathParts[0] {
			continue
		}
		if len(pathParts) == 1 {
			if field.Type.Name() == "SensitiveString" {
				return true
			}
			return field.Tag.Get("sensitive") == "true"
		}
		if field.Type.Kind() == reflect.Struct && field.Type.PkgPath() != "time" {
			return checkSensitiveField(field.Type, pathParts[1:])
		}
	}
	return false
}

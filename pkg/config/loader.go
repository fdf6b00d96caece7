package config

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// KeySourceConfigFile marks an API key that came from a YAML source.
const KeySourceConfigFile = "config file"

// LookupFunc resolves an environment variable. It matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// loader implements the Service interface for configuration management.
type loader struct {
	koanf      *koanf.Koanf
	validator  *validator.Validate
	lookupEnv  LookupFunc
	metadata   Metadata
	metadataMu sync.RWMutex
}

// LoaderOption customizes a loader.
type LoaderOption func(*loader)

// WithLookupEnv replaces os.LookupEnv for alias resolution and env loading.
func WithLookupEnv(fn LookupFunc) LoaderOption {
	return func(l *loader) {
		if fn != nil {
			l.lookupEnv = fn
		}
	}
}

// sensitiveStringDecodeHook is a mapstructure decode hook that converts strings to SensitiveString
func sensitiveStringDecodeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(SensitiveString("")) {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return SensitiveString(v), nil
	case []byte:
		return SensitiveString(v), nil
	default:
		return data, nil
	}
}

// NewService creates a new configuration service with validation support.
func NewService(opts ...LoaderOption) Service {
	l := &loader{
		koanf:     koanf.New("."),
		validator: validator.New(),
		lookupEnv: os.LookupEnv,
		metadata: Metadata{
			Sources: make(map[string]SourceType),
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load builds the configuration. Precedence, lowest first: defaults, file
// sources, environment variables, legacy env aliases, CLI flags.
func (l *loader) Load(_ context.Context, sources ...Source) (*Config, error) {
	l.reset()
	if err := l.loadDefaults(); err != nil {
		return nil, err
	}
	var cli []Source
	for _, source := range sources {
		if source == nil || source.Type() == SourceEnv || source.Type() == SourceDefault {
			continue
		}
		if source.Type() == SourceCLI {
			cli = append(cli, source)
			continue
		}
		if err := l.loadSource(source); err != nil {
			return nil, err
		}
	}
	if err := l.loadEnvironment(); err != nil {
		return nil, err
	}
	if err := l.applyAliases(); err != nil {
		return nil, err
	}
	for _, source := range cli {
		if err := l.loadSource(source); err != nil {
			return nil, err
		}
	}
	if err := l.resolveKeySource(); err != nil {
		return nil, err
	}
	return l.unmarshalAndValidate()
}

func (l *loader) reset() {
	l.koanf = koanf.New(".")
	l.metadataMu.Lock()
	l.metadata.Sources = make(map[string]SourceType)
	l.metadata.LoadedAt = time.Now()
	l.metadataMu.Unlock()
}

func (l *loader) loadDefaults() error {
	if err := l.koanf.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}
	for _, key := range l.koanf.Keys() {
		l.trackSource(key, SourceDefault)
	}
	return nil
}

// loadEnvironment loads the variables declared in env struct tags. Anything
// else in the process environment is ignored.
func (l *loader) loadEnvironment() error {
	envToPath := make(map[string]string)
	for _, mapping := range GenerateEnvMappings() {
		envToPath[mapping.EnvVar] = mapping.ConfigPath
	}
	if err := l.koanf.Load(env.Provider(".", env.Opt{
		EnvironFunc: l.environ(envToPath),
		TransformFunc: func(key string, value string) (string, any) {
			configPath, ok := envToPath[key]
			if !ok || value == "" {
				return "", nil
			}
			if isSliceValue(l.koanf.Get(configPath)) {
				return configPath, splitList(value)
			}
			return configPath, value
		},
	}), nil); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}
	for envVar, configPath := range envToPath {
		if v, ok := l.lookupEnv(envVar); ok && v != "" {
			l.trackSource(configPath, SourceEnv)
		}
	}
	return nil
}

// environ exposes only the mapped variables so an injected lookup behaves
// the same as the process environment.
func (l *loader) environ(envToPath map[string]string) func() []string {
	return func() []string {
		out := make([]string, 0, len(envToPath))
		for envVar := range envToPath {
			if v, ok := l.lookupEnv(envVar); ok {
				out = append(out, envVar+"="+v)
			}
		}
		return out
	}
}

// applyAliases resolves legacy variable names. The first non-empty name in
// each alias list wins over the canonical env tag.
func (l *loader) applyAliases() error {
	for _, alias := range EnvAliases() {
		for _, name := range alias.EnvVars {
			v, ok := l.lookupEnv(name)
			v = strings.TrimSpace(v)
			if !ok || v == "" {
				continue
			}
			if err := l.koanf.Set(alias.ConfigPath, v); err != nil {
				return fmt.Errorf("failed to apply env alias %s: %w", name, err)
			}
			l.trackSource(alias.ConfigPath, SourceEnv)
			if alias.SourcePath != "" {
				if err := l.koanf.Set(alias.SourcePath, name); err != nil {
					return fmt.Errorf("failed to record source of %s: %w", alias.ConfigPath, err)
				}
			}
			break
		}
	}
	return nil
}

// resolveKeySource fills anthropic.key_source for keys that did not come from
// an environment alias.
func (l *loader) resolveKeySource() error {
	var source string
	switch l.GetSource("anthropic.api_key") {
	case SourceEnv:
		if l.koanf.String("anthropic.key_source") != "" {
			return nil
		}
		source = GetEnvVarForConfigPath("anthropic.api_key")
	case SourceYAML:
		source = KeySourceConfigFile
	case SourceCLI:
		source = "command line"
	}
	return l.koanf.Set("anthropic.key_source", source)
}

func (l *loader) loadSource(source Source) error {
	data, err := source.Load()
	if err != nil {
		return fmt.Errorf("failed to load from source %s: %w", source.Type(), err)
	}
	if len(data) == 0 {
		return nil
	}
	for key, value := range flattenMap("", data) {
		if err := l.koanf.Set(key, value); err != nil {
			return fmt.Errorf("failed to set key %s from source %s: %w", key, source.Type(), err)
		}
		l.trackSource(key, source.Type())
	}
	return nil
}

// flattenMap flattens a nested map into dot-notation keys
func flattenMap(prefix string, m map[string]any) map[string]any {
	result := make(map[string]any)
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nestedMap, ok := v.(map[string]any); ok {
			for fk, fv := range flattenMap(key, nestedMap) {
				result[fk] = fv
			}
		} else {
			result[key] = v
		}
	}
	return result
}

func (l *loader) unmarshalAndValidate() (*Config, error) {
	var config Config
	if err := l.koanf.UnmarshalWithConf("", &config, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &config,
			TagName:          "koanf",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				sensitiveStringDecodeHook,
			),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := l.Validate(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// Validate checks if the configuration meets all validation requirements.
func (l *loader) Validate(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if err := l.validator.Struct(config); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := validateCustom(config); err != nil {
		return fmt.Errorf("custom validation failed: %w", err)
	}
	return nil
}

// GetSource returns the source type for a specific configuration key.
func (l *loader) GetSource(key string) SourceType {
	l.metadataMu.RLock()
	defer l.metadataMu.RUnlock()
	if source, ok := l.metadata.Sources[key]; ok {
		return source
	}
	return SourceDefault
}

func (l *loader) trackSource(key string, source SourceType) {
	l.metadataMu.Lock()
	defer l.metadataMu.Unlock()
	l.metadata.Sources[key] = source
}

func validateCustom(config *Config) error {
	if config.Sources.CacheDriver == "redis" && config.Sources.RedisAddr == "" {
		return fmt.Errorf("sources.redis_addr is required when cache_driver is redis")
	}
	if config.RateLimit.Enabled && (config.RateLimit.Limit <= 0 || config.RateLimit.Period <= 0) {
		return fmt.Errorf("ratelimit limit and period must be positive when enabled")
	}
	if config.TTS.Provider == "polly" && config.Polly.Region == "" {
		return fmt.Errorf("polly.region is required when tts provider is polly")
	}
	return nil
}

func isSliceValue(v any) bool {
	if v == nil {
		return false
	}
	return reflect.TypeOf(v).Kind() == reflect.Slice
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

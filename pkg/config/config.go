package config

import (
	"context"
	"time"
)

// Config represents the complete service configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"     validate:"required"`
	Runtime    RuntimeConfig    `koanf:"runtime"    validate:"required"`
	Anthropic  AnthropicConfig  `koanf:"anthropic"`
	OpenAI     OpenAIConfig     `koanf:"openai"`
	ElevenLabs ElevenLabsConfig `koanf:"elevenlabs"`
	TTS        TTSConfig        `koanf:"tts"`
	Polly      PollyConfig      `koanf:"polly"`
	Sources    SourcesConfig    `koanf:"sources"`
	Storage    StorageConfig    `koanf:"storage"`
	RateLimit  RateLimitConfig  `koanf:"ratelimit"`
	Monitoring MonitoringConfig `koanf:"monitoring"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host               string        `koanf:"host"                 validate:"required"        env:"SERVER_HOST"`
	Port               int           `koanf:"port"                 validate:"min=1,max=65535" env:"SERVER_PORT"`
	CORSEnabled        bool          `koanf:"cors_enabled"                                    env:"SERVER_CORS_ENABLED"`
	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins"                            env:"SERVER_CORS_ALLOWED_ORIGINS"`
	BodyLimit          int64         `koanf:"body_limit"           validate:"min=1024"        env:"SERVER_BODY_LIMIT"`
	ReadTimeout        time.Duration `koanf:"read_timeout"                                    env:"SERVER_READ_TIMEOUT"`
	WriteTimeout       time.Duration `koanf:"write_timeout"                                   env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout    time.Duration `koanf:"shutdown_timeout"                                env:"SERVER_SHUTDOWN_TIMEOUT"`
}

// RuntimeConfig contains runtime behavior configuration.
type RuntimeConfig struct {
	Environment string `koanf:"environment" validate:"oneof=development staging production test" env:"RUNTIME_ENVIRONMENT"`
	LogLevel    string `koanf:"log_level"   validate:"oneof=debug info warn error disabled"     env:"RUNTIME_LOG_LEVEL"`
	LogJSON     bool   `koanf:"log_json"                                                         env:"RUNTIME_LOG_JSON"`
}

// AnthropicConfig configures the Anthropic Messages API.
//
// KeySource is filled by the loader with the name of the environment variable (or
// "config file") that supplied APIKey; it feeds authentication diagnostics.
type AnthropicConfig struct {
	APIKey           SensitiveString `koanf:"api_key"           env:"ANTHROPIC_API_KEY"           sensitive:"true"`
	KeySource        string          `koanf:"key_source"`
	Model            string          `koanf:"model"             env:"ANTHROPIC_MODEL"`
	FallbackModels   []string        `koanf:"fallback_models"   env:"ANTHROPIC_FALLBACK_MODELS"`
	BaseURL          string          `koanf:"base_url"          env:"ANTHROPIC_BASE_URL"          validate:"required,url"`
	Version          string          `koanf:"version"           env:"ANTHROPIC_VERSION"           validate:"required"`
	Timeout          time.Duration   `koanf:"timeout"           env:"ANTHROPIC_TIMEOUT"`
	TransientRetries int             `koanf:"transient_retries" env:"ANTHROPIC_TRANSIENT_RETRIES" validate:"min=0,max=10"`
	// MaxConcurrency caps in-flight Messages calls; zero disables the throttle.
	MaxConcurrency    int `koanf:"max_concurrency"     env:"ANTHROPIC_MAX_CONCURRENCY"     validate:"min=0"`
	QueueSize         int `koanf:"queue_size"          env:"ANTHROPIC_QUEUE_SIZE"          validate:"min=0"`
	RequestsPerMinute int `koanf:"requests_per_minute" env:"ANTHROPIC_REQUESTS_PER_MINUTE" validate:"min=0"`
}

// OpenAIConfig configures the OpenAI chat completions API.
type OpenAIConfig struct {
	APIKey  SensitiveString `koanf:"api_key"  env:"OPENAI_API_KEY"  sensitive:"true"`
	Model   string          `koanf:"model"    env:"OPENAI_MODEL"`
	BaseURL string          `koanf:"base_url" env:"OPENAI_BASE_URL" validate:"required,url"`
	Timeout time.Duration   `koanf:"timeout"  env:"OPENAI_TIMEOUT"`
}

// ElevenLabsConfig configures the ElevenLabs text-to-speech API.
type ElevenLabsConfig struct {
	APIKey          SensitiveString `koanf:"api_key"           env:"ELEVENLABS_API_KEY"           sensitive:"true"`
	BaseURL         string          `koanf:"base_url"          env:"ELEVENLABS_BASE_URL"          validate:"required,url"`
	ModelID         string          `koanf:"model_id"          env:"ELEVENLABS_MODEL_ID"`
	NarratorVoiceID string          `koanf:"narrator_voice_id" env:"ELEVENLABS_NARRATOR_VOICE_ID"`
	HostVoiceID     string          `koanf:"host_voice_id"     env:"ELEVENLABS_HOST_VOICE_ID"`
	GuestVoiceID    string          `koanf:"guest_voice_id"    env:"ELEVENLABS_GUEST_VOICE_ID"`
	Timeout         time.Duration   `koanf:"timeout"           env:"ELEVENLABS_TIMEOUT"`
}

// TTSConfig selects the speech backend.
type TTSConfig struct {
	Provider       string `koanf:"provider"         validate:"oneof=elevenlabs polly" env:"TTS_PROVIDER"`
	WordsPerMinute int    `koanf:"words_per_minute" validate:"min=60,max=400"         env:"TTS_WORDS_PER_MINUTE"`
	Concurrency    int    `koanf:"concurrency"      validate:"min=1,max=8"            env:"TTS_CONCURRENCY"`
}

// PollyConfig configures Amazon Polly when TTS.Provider is "polly".
type PollyConfig struct {
	Region       string `koanf:"region"         env:"POLLY_REGION"`
	VoiceID      string `koanf:"voice_id"       env:"POLLY_VOICE_ID"`
	GuestVoiceID string `koanf:"guest_voice_id" env:"POLLY_GUEST_VOICE_ID"`
	Engine       string `koanf:"engine"         env:"POLLY_ENGINE"         validate:"omitempty,oneof=standard neural"`
}

// SourcesConfig controls where project documents live and how extracted text is cached.
type SourcesConfig struct {
	RootDir        string          `koanf:"root_dir"        env:"SOURCES_ROOT_DIR"        validate:"required"`
	DefaultProject string          `koanf:"default_project" env:"SOURCES_DEFAULT_PROJECT" validate:"required"`
	CacheDriver    string          `koanf:"cache_driver"    env:"SOURCES_CACHE_DRIVER"    validate:"oneof=memory redis none"`
	CacheSize      int             `koanf:"cache_size"      env:"SOURCES_CACHE_SIZE"      validate:"min=1"`
	CacheTTL       time.Duration   `koanf:"cache_ttl"       env:"SOURCES_CACHE_TTL"`
	RedisAddr      string          `koanf:"redis_addr"      env:"SOURCES_REDIS_ADDR"`
	RedisPassword  SensitiveString `koanf:"redis_password"  env:"SOURCES_REDIS_PASSWORD"  sensitive:"true"`
	RedisDB        int             `koanf:"redis_db"        env:"SOURCES_REDIS_DB"`
}

// StorageConfig controls where generated media is written and served from.
type StorageConfig struct {
	OutputDir   string `koanf:"output_dir"   env:"STORAGE_OUTPUT_DIR"   validate:"required"`
	AudioPath   string `koanf:"audio_path"   env:"STORAGE_AUDIO_PATH"   validate:"required,startswith=/"`
	PodcastPath string `koanf:"podcast_path" env:"STORAGE_PODCAST_PATH" validate:"required,startswith=/"`
}

// RateLimitConfig contains API rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool          `koanf:"enabled" env:"RATELIMIT_ENABLED"`
	Limit   int64         `koanf:"limit"   env:"RATELIMIT_LIMIT"   validate:"min=0"`
	Period  time.Duration `koanf:"period"  env:"RATELIMIT_PERIOD"`
}

// MonitoringConfig controls the Prometheus metrics endpoint.
type MonitoringConfig struct {
	Enabled bool   `koanf:"enabled" env:"MONITORING_ENABLED"`
	Path    string `koanf:"path"    env:"MONITORING_PATH"    validate:"required,startswith=/"`
}

// Service defines the configuration management service interface.
type Service interface {
	// Load loads configuration from the specified sources with precedence order.
	Load(ctx context.Context, sources ...Source) (*Config, error)
	// Validate checks if the configuration meets all validation requirements.
	Validate(config *Config) error
	// GetSource returns the source type for a specific configuration key.
	GetSource(key string) SourceType
}

// Source defines the interface for configuration sources.
type Source interface {
	// Load reads configuration from the source.
	Load() (map[string]any, error)
	// Type returns the source type identifier.
	Type() SourceType
}

// SourceType identifies the type of configuration source.
type SourceType string

const (
	SourceCLI     SourceType = "cli"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceDefault SourceType = "default"
)

// Metadata contains metadata about configuration sources.
type Metadata struct {
	Sources  map[string]SourceType `json:"sources"`
	LoadedAt time.Time             `json:"loaded_at"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               3001,
			CORSEnabled:        true,
			CORSAllowedOrigins: []string{"*"},
			BodyLimit:          10 << 20,
			ReadTimeout:        30 * time.Second,
			WriteTimeout:       5 * time.Minute,
			ShutdownTimeout:    10 * time.Second,
		},
		Runtime: RuntimeConfig{
			Environment: "development",
			LogLevel:    "info",
			LogJSON:     false,
		},
		Anthropic: AnthropicConfig{
			FallbackModels: []string{
				"claude-sonnet-4-20250514",
				"claude-3-7-sonnet-20250219",
				"claude-3-5-sonnet-20241022",
				"claude-3-5-haiku-20241022",
			},
			BaseURL:          "https://api.anthropic.com",
			Version:          "2023-06-01",
			Timeout:          2 * time.Minute,
			TransientRetries: 0,
			MaxConcurrency:   4,
			QueueSize:        32,
		},
		OpenAI: OpenAIConfig{
			Model:   "gpt-4o-mini",
			BaseURL: "https://api.openai.com",
			Timeout: 2 * time.Minute,
		},
		ElevenLabs: ElevenLabsConfig{
			BaseURL:         "https://api.elevenlabs.io",
			ModelID:         "eleven_multilingual_v2",
			NarratorVoiceID: "21m00Tcm4TlvDq8ikWAM",
			HostVoiceID:     "21m00Tcm4TlvDq8ikWAM",
			GuestVoiceID:    "AZnzlk1XvdvUeBnXmlld",
			Timeout:         3 * time.Minute,
		},
		TTS: TTSConfig{
			Provider:       "elevenlabs",
			WordsPerMinute: 150,
			Concurrency:    2,
		},
		Polly: PollyConfig{
			Region:       "us-east-1",
			VoiceID:      "Joanna",
			GuestVoiceID: "Matthew",
			Engine:       "neural",
		},
		Sources: SourcesConfig{
			RootDir:        "public/documents",
			DefaultProject: "default",
			CacheDriver:    "memory",
			CacheSize:      256,
			CacheTTL:       24 * time.Hour,
		},
		Storage: StorageConfig{
			OutputDir:   "public",
			AudioPath:   "/audio",
			PodcastPath: "/podcasts",
		},
		RateLimit: RateLimitConfig{
			Enabled: false,
			Limit:   120,
			Period:  time.Minute,
		},
		Monitoring: MonitoringConfig{
			Enabled: false,
			Path:    "/metrics",
		},
	}
}

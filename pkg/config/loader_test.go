package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoader_Load(t *testing.T) {
	t.Run("Should load defaults when nothing else is set", func(t *testing.T) {
		svc := NewService(WithLookupEnv(envFrom(nil)))
		cfg, err := svc.Load(t.Context(), NewDefaultProvider(), NewEnvProvider())
		require.NoError(t, err)
		assert.Equal(t, 3001, cfg.Server.Port)
		assert.Equal(t, "https://api.anthropic.com", cfg.Anthropic.BaseURL)
		assert.Len(t, cfg.Anthropic.FallbackModels, 4)
		assert.Equal(t, 24*time.Hour, cfg.Sources.CacheTTL)
		assert.Empty(t, cfg.Anthropic.APIKey.Value())
		assert.Empty(t, cfg.Anthropic.KeySource)
		assert.Equal(t, SourceDefault, svc.GetSource("server.port"))
	})

	t.Run("Should apply mapped environment variables", func(t *testing.T) {
		svc := NewService(WithLookupEnv(envFrom(map[string]string{
			"SERVER_PORT":               "8080",
			"ANTHROPIC_TIMEOUT":         "45s",
			"ANTHROPIC_FALLBACK_MODELS": "model-a, model-b",
			"UNRELATED_VARIABLE":        "ignored",
		})))
		cfg, err := svc.Load(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, 45*time.Second, cfg.Anthropic.Timeout)
		assert.Equal(t, []string{"model-a", "model-b"}, cfg.Anthropic.FallbackModels)
		assert.Equal(t, SourceEnv, svc.GetSource("server.port"))
	})

	t.Run("Should prefer the VITE prefixed key and record its source", func(t *testing.T) {
		svc := NewService(WithLookupEnv(envFrom(map[string]string{
			"VITE_ANTHROPIC_API_KEY": "sk-ant-vite",
			"ANTHROPIC_API_KEY":      "sk-ant-plain",
			"VITE_ANTHROPIC_MODEL":   "claude-custom",
		})))
		cfg, err := svc.Load(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "sk-ant-vite", cfg.Anthropic.APIKey.Value())
		assert.Equal(t, "VITE_ANTHROPIC_API_KEY", cfg.Anthropic.KeySource)
		assert.Equal(t, "claude-custom", cfg.Anthropic.Model)
	})

	t.Run("Should fall back to later aliases", func(t *testing.T) {
		svc := NewService(WithLookupEnv(envFrom(map[string]string{
			"VITE_ANTHROPIC_API_KEY": "  ",
			"ANTHROPIC_APIKEY":       "sk-ant-legacy",
			"PORT":                   "9000",
		})))
		cfg, err := svc.Load(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "sk-ant-legacy", cfg.Anthropic.APIKey.Value())
		assert.Equal(t, "ANTHROPIC_APIKEY", cfg.Anthropic.KeySource)
		assert.Equal(t, 9000, cfg.Server.Port)
	})

	t.Run("Should load YAML and let CLI flags win", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plexify.yaml")
		yamlContent := `
server:
  port: 4000
anthropic:
  api_key: sk-ant-from-file
sources:
  root_dir: /data/docs
`
		require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o600))
		svc := NewService(WithLookupEnv(envFrom(map[string]string{"SERVER_PORT": "5000"})))
		cfg, err := svc.Load(t.Context(), NewYAMLProvider(path), NewCLIProvider(map[string]any{"port": 6000}))
		require.NoError(t, err)
		assert.Equal(t, 6000, cfg.Server.Port)
		assert.Equal(t, "/data/docs", cfg.Sources.RootDir)
		assert.Equal(t, "sk-ant-from-file", cfg.Anthropic.APIKey.Value())
		assert.Equal(t, KeySourceConfigFile, cfg.Anthropic.KeySource)
		assert.Equal(t, SourceCLI, svc.GetSource("server.port"))
	})

	t.Run("Should ignore a missing YAML file", func(t *testing.T) {
		svc := NewService(WithLookupEnv(envFrom(nil)))
		cfg, err := svc.Load(t.Context(), NewYAMLProvider(filepath.Join(t.TempDir(), "absent.yaml")))
		require.NoError(t, err)
		assert.Equal(t, 3001, cfg.Server.Port)
	})

	t.Run("Should reject invalid values", func(t *testing.T) {
		svc := NewService(WithLookupEnv(envFrom(map[string]string{"TTS_PROVIDER": "espeak"})))
		_, err := svc.Load(t.Context())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
	})

	t.Run("Should require a redis address for the redis cache driver", func(t *testing.T) {
		svc := NewService(WithLookupEnv(envFrom(map[string]string{"SOURCES_CACHE_DRIVER": "redis"})))
		_, err := svc.Load(t.Context())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis_addr")
	})
}

func TestEnvMappings(t *testing.T) {
	t.Run("Should derive mappings from env tags", func(t *testing.T) {
		assert.Equal(t, "ANTHROPIC_API_KEY", GetEnvVarForConfigPath("anthropic.api_key"))
		assert.Equal(t, "SOURCES_CACHE_TTL", GetEnvVarForConfigPath("sources.cache_ttl"))
		assert.Empty(t, GetEnvVarForConfigPath("anthropic.key_source"))
	})

	t.Run("Should flag sensitive paths", func(t *testing.T) {
		assert.True(t, IsSensitiveConfigPath("anthropic.api_key"))
		assert.True(t, IsSensitiveConfigPath("sources.redis_password"))
		assert.False(t, IsSensitiveConfigPath("anthropic.model"))
		assert.False(t, IsSensitiveConfigPath("missing.path"))
	})
}

func TestManager(t *testing.T) {
	t.Run("Should swap configuration on reload and notify callbacks", func(t *testing.T) {
		vars := map[string]string{"SERVER_PORT": "7000"}
		m := NewManager(NewService(WithLookupEnv(envFrom(vars))))
		var seen []int
		m.OnChange(func(c *Config) { seen = append(seen, c.Server.Port) })
		cfg, err := m.Load(t.Context(), NewEnvProvider())
		require.NoError(t, err)
		assert.Equal(t, 7000, cfg.Server.Port)
		vars["SERVER_PORT"] = "7001"
		require.NoError(t, m.Reload(t.Context()))
		assert.Equal(t, 7001, m.Get().Server.Port)
		assert.Equal(t, []int{7000, 7001}, seen)
	})

	t.Run("Should expose the manager through context", func(t *testing.T) {
		m := NewManager(NewService(WithLookupEnv(envFrom(nil))))
		_, err := m.Load(t.Context())
		require.NoError(t, err)
		ctx := ContextWithManager(t.Context(), m)
		assert.Same(t, m, ManagerFromContext(ctx))
		assert.Equal(t, 3001, FromContext(ctx).Server.Port)
	})
}

func TestSetNested(t *testing.T) {
	t.Run("Should report conflicting paths", func(t *testing.T) {
		m := map[string]any{"server": "flat"}
		err := setNested(m, "server.port", 1)
		require.Error(t, err)
	})
}

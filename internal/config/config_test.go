package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.Recommend.TopK)
	assert.Equal(t, 6.5, cfg.Recommend.MinRating)
	assert.Equal(t, 200, cfg.Recommend.MinVotes)
	assert.Equal(t, 70.0, cfg.Recommend.MatchThreshold)
	assert.Equal(t, 10, cfg.Filter.RuntimeWindow)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movierec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
artifacts:
  dir: data/artifacts
  urls:
    catalog.db: https://example.com/catalog.db
recommend:
  min_votes: 500
cache:
  driver: memory
  ttl: 30s
`), 0o644))

	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SIMILARITY_URL", "https://example.com/similarity.bin")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, filepath.Join(dir, "data/artifacts"), cfg.Artifacts.Dir)
	assert.Equal(t, 500, cfg.Recommend.MinVotes)
	assert.Equal(t, 6.5, cfg.Recommend.MinRating)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	assert.Equal(t, map[string]string{
		"catalog.db":     "https://example.com/catalog.db",
		"similarity.bin": "https://example.com/similarity.bin",
	}, cfg.Artifacts.URLs)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
}

func TestLoad_RedisURLSwitchesDriver(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://cache:6379")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, "cache:6379", cfg.Cache.Redis.Addr)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [\n"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"no artifacts dir", func(c *Config) { c.Artifacts.Dir = "" }, "artifacts dir"},
		{"bad cache driver", func(c *Config) { c.Cache.Driver = "memcached" }, "invalid cache driver"},
		{"threshold above 100", func(c *Config) { c.Recommend.MatchThreshold = 101 }, "match_threshold"},
		{"top_k above max", func(c *Config) { c.Recommend.TopK = 1000 }, "top_k"},
		{"search limit zero", func(c *Config) { c.Search.DefaultLimit = 0 }, "search default_limit"},
		{"filter limit zero", func(c *Config) { c.Filter.DefaultLimit = 0 }, "filter default_limit"},
		{"negative window", func(c *Config) { c.Filter.RuntimeWindow = -1 }, "runtime_window"},
		{"rate limit without window", func(c *Config) {
			c.HTTP.RateLimit = 10
			c.HTTP.RateWindow = 0
		}, "rate_window"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.want)
		})
	}
}

func TestResolveRelativePath(t *testing.T) {
	assert.Equal(t, "/etc/movierec/artifacts", ResolveRelativePath("/etc/movierec/config.yaml", "artifacts"))
	assert.Equal(t, "/abs/artifacts", ResolveRelativePath("/etc/movierec/config.yaml", "/abs/artifacts"))
	assert.Equal(t, "", ResolveRelativePath("/etc/movierec/config.yaml", ""))
}

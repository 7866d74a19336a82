// Package config provides unified configuration loading for movierec.
// Supports YAML files, .env files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for movierec.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Artifacts     ArtifactsConfig     `yaml:"artifacts"`
	Recommend     RecommendConfig     `yaml:"recommend"`
	Search        SearchConfig        `yaml:"search"`
	Filter        FilterConfig        `yaml:"filter"`
	Cache         CacheConfig         `yaml:"cache"`
	HTTP          HTTPConfig          `yaml:"http"`
	Observability ObservabilityConfig `yaml:"observability"`
	Build         BuildConfig         `yaml:"build"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// ArtifactsConfig locates the serving artifact set. URLs maps an artifact
// file name to a download URL; missing files are fetched at startup when
// FetchOnStart is set.
type ArtifactsConfig struct {
	Dir          string            `yaml:"dir"`
	URLs         map[string]string `yaml:"urls"`
	FetchOnStart bool              `yaml:"fetch_on_start"`
	FetchTimeout time.Duration     `yaml:"fetch_timeout"`
}

// RecommendConfig holds recommendation defaults.
type RecommendConfig struct {
	TopK           int     `yaml:"top_k"`
	MinRating      float64 `yaml:"min_rating"`
	MinVotes       int     `yaml:"min_votes"`
	MatchThreshold float64 `yaml:"match_threshold"`
	MaxTopK        int     `yaml:"max_top_k"`
}

// SearchConfig holds fuzzy search settings.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// FilterConfig holds attribute filter settings.
type FilterConfig struct {
	RuntimeWindow int `yaml:"runtime_window"`
	DefaultLimit  int `yaml:"default_limit"`
	MaxLimit      int `yaml:"max_limit"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Driver     string        `yaml:"driver"` // memory or redis
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// HTTPConfig holds cross-cutting HTTP settings. RateLimit is requests per
// RateWindow per client IP; zero disables limiting.
type HTTPConfig struct {
	CORSOrigins []string      `yaml:"cors_origins"`
	RateLimit   int           `yaml:"rate_limit"`
	RateWindow  time.Duration `yaml:"rate_window"`
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
	ServiceName    string `yaml:"service_name"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

// BuildConfig holds offline build settings.
type BuildConfig struct {
	MoviesPath  string `yaml:"movies_path"`
	CreditsPath string `yaml:"credits_path"`
	Workers     int    `yaml:"workers"`
}

// Load reads .env files, then the YAML file at path, then environment overrides.
func Load(path string) (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()
	_ = godotenv.Load("../.env")

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}

		cfg.Artifacts.Dir = ResolveRelativePath(path, cfg.Artifacts.Dir)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8000,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     30 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
		Artifacts: ArtifactsConfig{
			Dir:          "artifacts",
			URLs:         map[string]string{},
			FetchOnStart: false,
			FetchTimeout: 10 * time.Minute,
		},
		Recommend: RecommendConfig{
			TopK:           10,
			MinRating:      6.5,
			MinVotes:       200,
			MatchThreshold: 70,
			MaxTopK:        100,
		},
		Search: SearchConfig{
			DefaultLimit: 10,
			MaxLimit:     100,
		},
		Filter: FilterConfig{
			RuntimeWindow: 10,
			DefaultLimit:  10,
			MaxLimit:      500,
		},
		Cache: CacheConfig{
			Enabled:    true,
			Driver:     "memory",
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				DB:       0,
				PoolSize: 10,
			},
		},
		HTTP: HTTPConfig{
			CORSOrigins: []string{"*"},
			RateLimit:   0,
			RateWindow:  time.Minute,
		},
		Observability: ObservabilityConfig{
			LogLevel:       "info",
			LogFormat:      "json",
			ServiceName:    "movierec",
			MetricsEnabled: true,
		},
		Build: BuildConfig{
			MoviesPath:  "data/tmdb_5000_movies.csv",
			CreditsPath: "data/tmdb_5000_credits.csv",
			Workers:     0,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Artifacts.Dir == "" {
		return fmt.Errorf("artifacts dir must be set")
	}

	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}

	if c.Recommend.MatchThreshold <= 0 || c.Recommend.MatchThreshold > 100 {
		return fmt.Errorf("match_threshold must be in (0, 100], got %v", c.Recommend.MatchThreshold)
	}

	if c.Recommend.TopK < 1 || c.Recommend.TopK > c.Recommend.MaxTopK {
		return fmt.Errorf("top_k must be between 1 and max_top_k (%d)", c.Recommend.MaxTopK)
	}

	if c.Search.DefaultLimit < 1 || c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("search default_limit must be between 1 and max_limit (%d)", c.Search.MaxLimit)
	}

	if c.Filter.DefaultLimit < 1 || c.Filter.DefaultLimit > c.Filter.MaxLimit {
		return fmt.Errorf("filter default_limit must be between 1 and max_limit (%d)", c.Filter.MaxLimit)
	}

	if c.Filter.RuntimeWindow < 0 {
		return fmt.Errorf("runtime_window must not be negative")
	}

	if c.HTTP.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}

	if c.HTTP.RateLimit > 0 && c.HTTP.RateWindow <= 0 {
		return fmt.Errorf("rate_window must be positive when rate_limit is set")
	}

	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	// PORT is what most container platforms inject.
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("ARTIFACTS_DIR"); v != "" {
		cfg.Artifacts.Dir = v
	}

	if cfg.Artifacts.URLs == nil {
		cfg.Artifacts.URLs = map[string]string{}
	}

	if v := os.Getenv("CATALOG_URL"); v != "" {
		cfg.Artifacts.URLs["catalog.db"] = v
	}

	if v := os.Getenv("SIMILARITY_URL"); v != "" {
		cfg.Artifacts.URLs["similarity.bin"] = v
	}

	if v := os.Getenv("FETCH_ON_START"); v != "" {
		cfg.Artifacts.FetchOnStart = v == "true"
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.Driver = "redis"
		// Parse redis://host:port format
		addr := strings.TrimPrefix(v, "redis://")
		cfg.Cache.Redis.Addr = addr
	}

	if v := os.Getenv("CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = v == "true"
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.HTTP.CORSOrigins = origins
	}

	if v := os.Getenv("RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit = n
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}

	if v := os.Getenv("SERVICE_NAME"); v != "" {
		cfg.Observability.ServiceName = v
	}
}

// ResolveRelativePath resolves a path relative to the config file location.
func ResolveRelativePath(configPath, targetPath string) string {
	if targetPath == "" || filepath.IsAbs(targetPath) {
		return targetPath
	}
	configDir := filepath.Dir(configPath)
	return filepath.Join(configDir, targetPath)
}

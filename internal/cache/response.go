package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/goccy/go-json"

	"github.com/Sadana31/movieAPI/internal/observability"
)

// ResponseCache stores encoded API responses. Keys are scoped by the
// artifact build id so a rebuilt catalog never serves stale entries.
type ResponseCache struct {
	client  Client
	logger  *observability.Logger
	buildID string
	ttl     time.Duration
	enabled bool
}

// ResponseCacheConfig configures the response cache.
type ResponseCacheConfig struct {
	TTL     time.Duration
	BuildID string
	Enabled bool
}

// NewResponseCache creates a response cache over client.
func NewResponseCache(client Client, logger *observability.Logger, cfg ResponseCacheConfig) *ResponseCache {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &ResponseCache{
		client:  client,
		logger:  logger,
		buildID: cfg.BuildID,
		ttl:     cfg.TTL,
		enabled: cfg.Enabled && client != nil,
	}
}

// Key builds a deterministic key for an operation and its normalized parameters.
func (c *ResponseCache) Key(op string, params any) (string, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return CacheKey("resp", c.buildID, op, hex.EncodeToString(sum[:16])), nil
}

// Get decodes a cached response into dst. It reports whether dst was filled.
// Backend failures are logged and treated as misses.
func (c *ResponseCache) Get(ctx context.Context, key string, dst any) bool {
	if !c.enabled {
		return false
	}
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache get failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache entry undecodable")
		return false
	}
	return true
}

// Set stores value under key. Failures are logged and ignored. An empty
// key is a no-op.
func (c *ResponseCache) Set(ctx context.Context, key string, value any) {
	if !c.enabled || key == "" {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// Invalidate drops every response cached for the current build.
func (c *ResponseCache) Invalidate(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	return c.client.DeleteByPrefix(ctx, CacheKey("resp", c.buildID)+":")
}

// Enabled reports whether lookups can hit.
func (c *ResponseCache) Enabled() bool {
	return c.enabled
}

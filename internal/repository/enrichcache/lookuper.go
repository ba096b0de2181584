package enrichcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/prospector/internal/db"
)

const cacheKeyPrefix = "prospector:enrich:"

// DefaultTTL applies when New receives a non-positive ttl.
const DefaultTTL = 24 * time.Hour

// Lookuper fetches one enrichment response body.
type Lookuper interface {
	Lookup(ctx context.Context, endpoint string, params url.Values) ([]byte, error)
}

// store is the consumer interface for the enrichment cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// CachedLookuper caches successful enrichment responses in a key-value store.
// Concurrent misses for the same key share one upstream call.
type CachedLookuper struct {
	inner      Lookuper
	store      store
	ttl        time.Duration
	group      singleflight.Group
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly; nil disables it.
// A nil logger discards cache warnings.
func New(
	inner Lookuper,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedLookuper {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedLookuper{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Lookup returns a cached body or calls the inner lookuper.
// Errors are never cached.
func (c *CachedLookuper) Lookup(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	key := cacheKey(endpoint, params)

	if body, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return body, nil
	}

	c.incCache("miss")

	// Waiters share the first caller's call, so it must outlive that caller's cancellation.
	detached := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(key, func() (any, error) {
		body, err := c.inner.Lookup(detached, endpoint, params)
		if err != nil {
			return nil, err
		}
		c.putToCache(detached, key, body)
		return body, nil
	})
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", endpoint, err)
	}
	return v.([]byte), nil
}

func (c *CachedLookuper) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func cacheKey(endpoint string, params url.Values) string {
	h := sha256.Sum256([]byte(endpoint + "?" + params.Encode()))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedLookuper) getFromCache(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached enrichment", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	if !json.Valid(data) {
		c.logger.Warn("Evicting corrupt cached enrichment", zap.String("key", key))
		if err := c.store.Del(ctx, key); err != nil {
			c.logger.Warn("Failed to evict cached enrichment", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

func (c *CachedLookuper) putToCache(ctx context.Context, key string, body []byte) {
	if err := c.store.SetWithTTL(ctx, key, body, c.ttl); err != nil {
		c.logger.Warn("Failed to cache enrichment", zap.String("key", key), zap.Error(err))
	}
}

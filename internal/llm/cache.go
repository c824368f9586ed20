package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/agenthands/pyrite/internal/metrics"
)

// Cache stores raw model responses keyed by prompt hash.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

// CacheKey hashes model and prompt into a deterministic lookup key.
func CacheKey(model, prompt string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + strings.TrimSpace(prompt)))
	return hex.EncodeToString(sum[:])
}

// NopCache disables caching.
type NopCache struct{}

func (NopCache) Get(ctx context.Context, key string) (string, bool) { return "", false }
func (NopCache) Set(ctx context.Context, key, value string)         {}

type memoryEntry struct {
	value     string
	storedAt  time.Time
	expiresAt time.Time
}

// MemoryCache is an in-process cache with TTL and a size cap. Eviction drops
// the oldest entry once the cap is reached.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	ttl        time.Duration
	maxEntries int
}

func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &MemoryCache{
		entries:    make(map[string]memoryEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return "", false
	}
	return entry.value, true
}

func (c *MemoryCache) Set(ctx context.Context, key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.entries[key] = memoryEntry{
		value:     value,
		storedAt:  now,
		expiresAt: now.Add(c.ttl),
	}
}

func (c *MemoryCache) evictOldest() {
	var oldestKey string
	var oldestAt time.Time
	for k, e := range c.entries {
		if oldestKey == "" || e.storedAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.storedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CachedClient serves repeated prompts from the cache before reaching the
// provider. Wrap it around the rate-limited client so hits never consume a
// gate permit.
type CachedClient struct {
	inner   LLMClient
	cache   Cache
	model   string
	metrics *metrics.Metrics
}

func NewCachedClient(inner LLMClient, cache Cache, model string, m *metrics.Metrics) *CachedClient {
	if cache == nil {
		cache = NopCache{}
	}
	return &CachedClient{inner: inner, cache: cache, model: model, metrics: m}
}

func (c *CachedClient) Generate(ctx context.Context, prompt string) (string, error) {
	key := CacheKey(c.model, prompt)
	if value, ok := c.cache.Get(ctx, key); ok {
		c.metrics.CacheHit()
		return value, nil
	}
	c.metrics.CacheMiss()

	response, err := c.inner.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	c.cache.Set(ctx, key, response)
	return response, nil
}

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/bymediadev/SoapBoxx/internal/domain/entities"
)

// AnalysisCache is a bounded in-memory cache for analysis results with
// TTL expiry and single-flight computation: concurrent GetOrCompute
// calls on the same key share one backend invocation. Nothing survives a
// process restart.
type AnalysisCache struct {
	mu       sync.Mutex
	items    map[string]*cacheItem
	inflight map[string]*call
	ttl      time.Duration
	maxSize  int

	hits   int64
	misses int64

	stopJanitor chan struct{}
	janitorOnce sync.Once
}

type cacheItem struct {
	result     *entities.AnalysisResult
	expireTime time.Time
	lastAccess time.Time
}

// call tracks an in-flight computation. Waiters block on done; per-key,
// so unrelated analyses never serialize on each other.
type call struct {
	done   chan struct{}
	result *entities.AnalysisResult
	err    error
}

// Stats is the cache counter snapshot.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// NewAnalysisCache creates a cache with the given TTL and entry cap.
func NewAnalysisCache(ttl time.Duration, maxSize int) *AnalysisCache {
	c := &AnalysisCache{
		items:       make(map[string]*cacheItem),
		inflight:    make(map[string]*call),
		ttl:         ttl,
		maxSize:     maxSize,
		stopJanitor: make(chan struct{}),
	}

	// Periodically remove expired items so idle entries don't pin memory
	// until the next lookup.
	go c.cleanupExpired()

	return c
}

// Key derives the cache key from the analysis inputs.
func Key(transcript string, depth entities.AnalysisDepth, focusArea string) string {
	h := sha256.New()
	h.Write([]byte(transcript))
	h.Write([]byte{0})
	h.Write([]byte(depth))
	h.Write([]byte{0})
	h.Write([]byte(focusArea))
	return hex.EncodeToString(h.Sum(nil))
}

// GetOrCompute returns the cached result for key or invokes compute to
// produce it. A second caller arriving while compute runs waits for the
// first caller's result rather than triggering a duplicate backend call.
// Errors are returned to all waiters and never cached. A waiter whose
// ctx ends gets the ctx error; the computation itself carries on for the
// caller that started it.
func (c *AnalysisCache) GetOrCompute(ctx context.Context, key string, compute func() (*entities.AnalysisResult, error)) (*entities.AnalysisResult, error) {
	c.mu.Lock()

	if item, ok := c.items[key]; ok {
		if time.Now().Before(item.expireTime) {
			item.lastAccess = time.Now()
			c.hits++
			c.mu.Unlock()
			return item.result, nil
		}
		// Past TTL: treated as a miss, recomputed below and replaced.
		delete(c.items, key)
	}

	if inflight, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-inflight.done:
			return inflight.result, inflight.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	cl := &call{done: make(chan struct{})}
	c.inflight[key] = cl
	c.misses++
	c.mu.Unlock()

	cl.result, cl.err = compute()

	c.mu.Lock()
	delete(c.inflight, key)
	if cl.err == nil && cl.result != nil {
		now := time.Now()
		c.items[key] = &cacheItem{
			result:     cl.result,
			expireTime: now.Add(c.ttl),
			lastAccess: now,
		}
		c.evictLocked()
	}
	c.mu.Unlock()

	close(cl.done)
	return cl.result, cl.err
}

// Get returns a cached result without computing.
func (c *AnalysisCache) Get(key string) (*entities.AnalysisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[key]
	if !ok || time.Now().After(item.expireTime) {
		c.misses++
		return nil, false
	}
	item.lastAccess = time.Now()
	c.hits++
	return item.result, true
}

// Clear drops all entries and resets counters.
func (c *AnalysisCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*cacheItem)
	c.hits = 0
	c.misses = 0
}

// Stats returns a snapshot of the cache counters.
func (c *AnalysisCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{Hits: c.hits, Misses: c.misses, Size: len(c.items)}
}

// Close stops the cleanup goroutine.
func (c *AnalysisCache) Close() {
	c.janitorOnce.Do(func() { close(c.stopJanitor) })
}

// evictLocked enforces maxSize: expired entries go first, then least
// recently used. Caller holds c.mu.
func (c *AnalysisCache) evictLocked() {
	if c.maxSize <= 0 || len(c.items) <= c.maxSize {
		return
	}

	now := time.Now()
	for key, item := range c.items {
		if now.After(item.expireTime) {
			delete(c.items, key)
		}
	}

	for len(c.items) > c.maxSize {
		var oldestKey string
		var oldest time.Time
		for key, item := range c.items {
			if oldestKey == "" || item.lastAccess.Before(oldest) {
				oldestKey = key
				oldest = item.lastAccess
			}
		}
		delete(c.items, oldestKey)
	}
}

// cleanupExpired periodically removes expired items
func (c *AnalysisCache) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopJanitor:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, item := range c.items {
				if now.After(item.expireTime) {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/maricastroc/minerva-ai/internal/config"
	"github.com/maricastroc/minerva-ai/internal/domain"
)

type cacheEntry struct {
	value    string
	storedAt time.Time
}

// ResponseCache is a process-local TTL cache for generated replies.
// A lookup never fails: any problem is reported as a miss.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	sweep   time.Duration
	now     func() time.Time
}

func NewResponseCache() *ResponseCache {
	return &ResponseCache{
		entries: make(map[string]cacheEntry),
		ttl:     config.CacheTTL,
		sweep:   config.CacheSweepInterval,
		now:     time.Now,
	}
}

// Start runs the background sweep until ctx is done. Entries expire on
// read as well, so the sweep only bounds memory under low traffic.
func (c *ResponseCache) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.sweep)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed := c.evictStale()
				if removed > 0 {
					slog.Debug("cache sweep", "removed", removed)
				}
			}
		}
	}()
}

func (c *ResponseCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.storedAt) > c.ttl {
		return "", false
	}
	return entry.value, true
}

func (c *ResponseCache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, storedAt: c.now()}
}

func (c *ResponseCache) evictStale() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for key, entry := range c.entries {
		if now.Sub(entry.storedAt) > c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *ResponseCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CacheKey hashes the message together with the most recent turns, so
// the same question in a different context misses.
func CacheKey(history []domain.Turn, message string) string {
	recent := history
	if len(recent) > config.CacheKeyTurns {
		recent = recent[len(recent)-config.CacheKeyTurns:]
	}

	var b strings.Builder
	b.WriteString(message)
	for _, turn := range recent {
		b.WriteString("|")
		b.WriteString(string(turn.Role))
		b.WriteString(":")
		b.WriteString(turn.Content)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

package external

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache stores successful GET responses for a bounded time.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

func encodeCached(r cachedResponse) ([]byte, error) {
	return json.Marshal(r)
}

func decodeCached(b []byte) (cachedResponse, error) {
	var r cachedResponse
	err := json.Unmarshal(b, &r)
	return r, err
}

// cacheKey scopes entries to the caller's token so one referee never sees
// another referee's cached data.
func cacheKey(method, url, token string) string {
	h := xxhash.New()
	_, _ = h.WriteString(method)
	_, _ = h.WriteString(" ")
	_, _ = h.WriteString(url)
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(token)
	sum := h.Sum(nil)
	return "external:get:" + hex.EncodeToString(sum)
}

// MemoryCache is the process-local Cache used when redis is not configured.
// Entries live at most maxTTL and the least recently used entry is dropped
// once the cache is full.
type MemoryCache struct {
	lru *expirable.LRU[string, memoryEntry]
	now func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryCache returns a cache holding at most size entries (0 means 1024).
func NewMemoryCache(size int, maxTTL time.Duration) *MemoryCache {
	if size <= 0 {
		size = 1024
	}
	return &MemoryCache{
		lru: expirable.NewLRU[string, memoryEntry](size, nil, maxTTL),
		now: time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := m.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expiresAt) {
		m.lru.Remove(key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.lru.Add(key, memoryEntry{value: value, expiresAt: m.now().Add(ttl)})
	return nil
}

// Len returns the number of stored entries.
func (m *MemoryCache) Len() int {
	return m.lru.Len()
}

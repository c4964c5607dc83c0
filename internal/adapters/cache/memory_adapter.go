package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zatekoja/limsgateway/internal/domain/providers"
)

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// MemoryAdapter implements CacheProvider in process memory. It stands in for
// Redis when the gateway runs as a single instance.
type MemoryAdapter struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	now   func() time.Time
}

// NewMemoryAdapter creates an empty in-memory cache
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{items: make(map[string]memoryItem), now: time.Now}
}

func (a *MemoryAdapter) live(key string) (memoryItem, bool) {
	item, ok := a.items[key]
	if !ok {
		return memoryItem{}, false
	}
	if !item.expiresAt.IsZero() && !a.now().Before(item.expiresAt) {
		return memoryItem{}, false
	}
	return item, true
}

// Get retrieves a value from cache
func (a *MemoryAdapter) Get(_ context.Context, key string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	item, ok := a.live(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", providers.ErrCacheMiss, key)
	}
	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, nil
}

// Set stores a value; a non-positive expiration never expires
func (a *MemoryAdapter) Set(_ context.Context, key string, value []byte, expiration time.Duration) error {
	item := memoryItem{value: append([]byte(nil), value...)}
	if expiration > 0 {
		item.expiresAt = a.now().Add(expiration)
	}
	a.mu.Lock()
	a.items[key] = item
	a.mu.Unlock()
	return nil
}

// Delete removes a value from cache
func (a *MemoryAdapter) Delete(_ context.Context, key string) error {
	a.mu.Lock()
	delete(a.items, key)
	a.mu.Unlock()
	return nil
}

// Exists checks if a key exists in cache
func (a *MemoryAdapter) Exists(_ context.Context, key string) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.live(key)
	return ok, nil
}

// DeletePattern removes keys matching a glob. Only * and ? are special; query
// keys escape every other metacharacter before they reach a pattern.
func (a *MemoryAdapter) DeletePattern(_ context.Context, pattern string) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	deleted := 0
	for key := range a.items {
		if globMatch(pattern, key) {
			delete(a.items, key)
			deleted++
		}
	}
	return deleted, nil
}

// globMatch matches s against a pattern where * is any run of bytes and ? is
// any single byte
func globMatch(pattern, s string) bool {
	p, i := 0, 0
	star, mark := -1, 0
	for i < len(s) {
		switch {
		case p < len(pattern) && (pattern[p] == '?' || pattern[p] == s[i]):
			p++
			i++
		case p < len(pattern) && pattern[p] == '*':
			star, mark = p, i
			p++
		case star >= 0:
			p = star + 1
			mark++
			i = mark
		default:
			return false
		}
	}
	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}

package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/zatekoja/limsgateway/internal/domain/providers"
	"github.com/zatekoja/limsgateway/internal/query/keys"
)

// SharedKeyPrefix namespaces query results in the shared cache
const SharedKeyPrefix = "lims:q:"

// QueryCacheAdapter wraps the domain CacheProvider to implement cache.SharedCache
type QueryCacheAdapter struct {
	provider providers.CacheProvider
}

// NewQueryCacheAdapter creates a new query cache adapter
func NewQueryCacheAdapter(provider providers.CacheProvider) *QueryCacheAdapter {
	return &QueryCacheAdapter{provider: provider}
}

// Get retrieves a cached result. A miss is not an error.
func (a *QueryCacheAdapter) Get(ctx context.Context, key keys.Key) ([]byte, bool, error) {
	data, err := a.provider.Get(ctx, SharedKeyPrefix+key.String())
	if errors.Is(err, providers.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a result for ttl
func (a *QueryCacheAdapter) Set(ctx context.Context, key keys.Key, data []byte, ttl time.Duration) error {
	return a.provider.Set(ctx, SharedKeyPrefix+key.String(), data, ttl)
}

// InvalidatePrefix deletes every result stored under prefix
func (a *QueryCacheAdapter) InvalidatePrefix(ctx context.Context, prefix keys.Key) (int, error) {
	return a.provider.DeletePattern(ctx, SharedKeyPrefix+prefix.Pattern())
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zatekoja/limsgateway/internal/query/keys"
)

// FetchJSON reads a typed value through the store, encoding it as JSON
func FetchJSON[T any](ctx context.Context, s *Store, key keys.Key, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	var out T
	data, err := s.Fetch(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode cached %s: %w", key.String(), err)
	}
	return out, nil
}

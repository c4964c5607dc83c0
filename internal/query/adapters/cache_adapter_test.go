package adapters_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cacheadapter "github.com/zatekoja/limsgateway/internal/adapters/cache"
	"github.com/zatekoja/limsgateway/internal/query/adapters"
	"github.com/zatekoja/limsgateway/internal/query/keys"
)

func TestQueryCacheAdapter_RoundTripAndPrefixDelete(t *testing.T) {
	provider := cacheadapter.NewMemoryAdapter()
	a := adapters.NewQueryCacheAdapter(provider)
	ctx := context.Background()

	forEdit, err := keys.Accessions.ForEdit("a1")
	require.NoError(t, err)
	page := keys.Accessions.List(keys.ListParams{PageNumber: 1, PageSize: 10, Filters: `status == "Draft"`})

	_, ok, err := a.Get(ctx, page)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, a.Set(ctx, page, []byte("page"), time.Minute))
	require.NoError(t, a.Set(ctx, forEdit, []byte("bundle"), time.Minute))

	exists, err := provider.Exists(ctx, adapters.SharedKeyPrefix+page.String())
	require.NoError(t, err)
	assert.True(t, exists)

	n, err := a.InvalidatePrefix(ctx, keys.Accessions.Lists())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, ok, _ = a.Get(ctx, page)
	assert.False(t, ok)
	data, ok, _ := a.Get(ctx, forEdit)
	assert.True(t, ok)
	assert.Equal(t, "bundle", string(data))
}

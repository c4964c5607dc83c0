package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/limsgateway/internal/query/cache"
	"github.com/zatekoja/limsgateway/internal/query/keys"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func constant(data string, calls *int32) cache.Fetcher {
	return func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(calls, 1)
		return []byte(data), nil
	}
}

func mustDetail(t *testing.T, ns keys.Namespace, id string) keys.Key {
	t.Helper()
	k, err := ns.Detail(id)
	require.NoError(t, err)
	return k
}

func TestFetch_HitsUntilTTL(t *testing.T) {
	clock := &manualClock{now: time.Unix(1000, 0)}
	store := cache.NewStore(cache.WithClock(clock.Now))
	key := mustDetail(t, keys.Patients, "p1")
	var calls int32

	data, err := store.Fetch(context.Background(), key, time.Minute, constant("v1", &calls))
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))

	_, err = store.Fetch(context.Background(), key, time.Minute, constant("v1", &calls))
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls)

	clock.Advance(2 * time.Minute)
	_, err = store.Fetch(context.Background(), key, time.Minute, constant("v2", &calls))
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls)
}

func TestFetch_ErrorIsNotCached(t *testing.T) {
	store := cache.NewStore()
	key := keys.Accessions.Lists()
	boom := errors.New("lims down")

	_, err := store.Fetch(context.Background(), key, 0, func(ctx context.Context) ([]byte, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, store.Len())
}

func TestFetch_CoalescesConcurrentLoads(t *testing.T) {
	store := cache.NewStore()
	key := keys.Accessions.List(keys.ListParams{PageNumber: 1, PageSize: 10})
	release := make(chan struct{})
	var calls int32

	fetch := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []byte("page"), nil
	}

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data, err := store.Fetch(context.Background(), key, time.Minute, fetch)
			if err == nil {
				results[i] = string(data)
			}
		}(i)
	}

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, "page", r)
	}
}

func TestFetch_CancelledCallerReturnsEarly(t *testing.T) {
	store := cache.NewStore()
	key := mustDetail(t, keys.Patients, "slow")
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Fetch(ctx, key, 0, func(ctx context.Context) ([]byte, error) {
		<-release
		return []byte("late"), nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInvalidatePrefix_MarksMatchingStale(t *testing.T) {
	store := cache.NewStore()
	ctx := context.Background()
	var calls int32

	page1 := keys.Accessions.List(keys.ListParams{PageNumber: 1, PageSize: 10})
	page2 := keys.Accessions.List(keys.ListParams{PageNumber: 2, PageSize: 10})
	patient := mustDetail(t, keys.Patients, "p1")
	for _, k := range []keys.Key{page1, page2, patient} {
		_, err := store.Fetch(ctx, k, 0, constant("x", &calls))
		require.NoError(t, err)
	}

	assert.Equal(t, 2, store.InvalidatePrefix(keys.Accessions.Lists()))

	e, ok := store.Peek(page1)
	require.True(t, ok)
	assert.True(t, e.Stale)
	e, _ = store.Peek(patient)
	assert.False(t, e.Stale)

	// Idempotent: a second pass leaves the same state
	assert.Equal(t, 2, store.InvalidatePrefix(keys.Accessions.Lists()))
	e, _ = store.Peek(page2)
	assert.True(t, e.Stale)
	assert.Equal(t, 3, store.Len())

	// Stale entries refetch
	_, err := store.Fetch(ctx, page1, 0, constant("y", &calls))
	require.NoError(t, err)
	e, _ = store.Peek(page1)
	assert.False(t, e.Stale)
	assert.Equal(t, "y", string(e.Data))
}

func TestInvalidatePrefix_TokenAligned(t *testing.T) {
	store := cache.NewStore()
	var calls int32
	_, err := store.Fetch(context.Background(), mustDetail(t, keys.Patients, "12"), 0, constant("x", &calls))
	require.NoError(t, err)

	assert.Zero(t, store.InvalidatePrefix(mustDetail(t, keys.Patients, "1")))
}

func TestInvalidatePrefix_DuringLoadStoresStale(t *testing.T) {
	store := cache.NewStore()
	key := mustDetail(t, keys.Patients, "p1")
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan []byte)
	go func() {
		data, _ := store.Fetch(context.Background(), key, 0, func(ctx context.Context) ([]byte, error) {
			close(started)
			<-release
			return []byte("before-mutation"), nil
		})
		done <- data
	}()

	<-started
	store.InvalidatePrefix(keys.Patients.All())
	close(release)
	assert.Equal(t, "before-mutation", string(<-done))

	e, ok := store.Peek(key)
	require.True(t, ok)
	assert.True(t, e.Stale)
}

func TestSweep_DropsIdleEntries(t *testing.T) {
	clock := &manualClock{now: time.Unix(0, 0)}
	store := cache.NewStore(cache.WithClock(clock.Now), cache.WithIdleTimeout(5*time.Minute))
	ctx := context.Background()
	var calls int32

	idle := mustDetail(t, keys.Patients, "idle")
	busy := mustDetail(t, keys.Patients, "busy")
	_, _ = store.Fetch(ctx, idle, 0, constant("a", &calls))
	_, _ = store.Fetch(ctx, busy, 0, constant("b", &calls))

	clock.Advance(4 * time.Minute)
	_, _ = store.Fetch(ctx, busy, 0, constant("b", &calls))
	clock.Advance(2 * time.Minute)

	assert.Equal(t, 1, store.Sweep(clock.Now()))
	_, ok := store.Peek(idle)
	assert.False(t, ok)
	_, ok = store.Peek(busy)
	assert.True(t, ok)
}

func TestSnapshot(t *testing.T) {
	store := cache.NewStore()
	var calls int32
	ctx := context.Background()
	_, _ = store.Fetch(ctx, mustDetail(t, keys.Patients, "b"), 0, constant("x", &calls))
	_, _ = store.Fetch(ctx, mustDetail(t, keys.Patients, "a"), 0, constant("x", &calls))
	_, _ = store.Fetch(ctx, keys.Accessions.Lists(), 0, constant("x", &calls))

	snap := store.Snapshot(keys.Patients.All())
	require.Len(t, snap, 2)
	assert.Equal(t, "a", snap[0].Key[2])
	assert.Nil(t, snap[0].Data)
	assert.Len(t, store.Snapshot(nil), 3)
}

type fakeShared struct {
	mu      sync.Mutex
	data    map[string][]byte
	cleared []string
}

func (f *fakeShared) Get(_ context.Context, key keys.Key) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.data[key.String()]
	return d, ok, nil
}

func (f *fakeShared) Set(_ context.Context, key keys.Key, data []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key.String()] = data
	return nil
}

func (f *fakeShared) InvalidatePrefix(_ context.Context, prefix keys.Key) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, prefix.String())
	return 0, nil
}

func TestFetch_UsesSharedCache(t *testing.T) {
	shared := &fakeShared{data: map[string][]byte{}}
	key := mustDetail(t, keys.Patients, "p1")
	shared.data[key.String()] = []byte("from-peer")

	store := cache.NewStore(cache.WithSharedCache(shared))
	var calls int32
	data, err := store.Fetch(context.Background(), key, 0, constant("upstream", &calls))
	require.NoError(t, err)
	assert.Equal(t, "from-peer", string(data))
	assert.Zero(t, calls)

	other := mustDetail(t, keys.Patients, "p2")
	_, err = store.Fetch(context.Background(), other, 0, constant("upstream", &calls))
	require.NoError(t, err)
	assert.Equal(t, "upstream", string(shared.data[other.String()]))

	_, err = store.InvalidateShared(context.Background(), keys.Patients.All())
	require.NoError(t, err)
	assert.Equal(t, []string{"patient:"}, shared.cleared)
}

func TestFetchJSON(t *testing.T) {
	type row struct {
		ID string `json:"id"`
	}
	store := cache.NewStore()
	key := keys.Patients.Lists()

	got, err := cache.FetchJSON(context.Background(), store, key, 0, func(ctx context.Context) ([]row, error) {
		return []row{{ID: "p1"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []row{{ID: "p1"}}, got)

	again, err := cache.FetchJSON(context.Background(), store, key, 0, func(ctx context.Context) ([]row, error) {
		return nil, errors.New("should not be called")
	})
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/limsgateway/internal/application/services"
	"github.com/zatekoja/limsgateway/internal/domain/entities"
	"github.com/zatekoja/limsgateway/internal/domain/providers"
	"github.com/zatekoja/limsgateway/internal/query/cache"
	"github.com/zatekoja/limsgateway/internal/query/keys"
)

// MockEventBus for testing
type MockEventBus struct {
	mu          sync.Mutex
	subscribers map[string][]chan *entities.InvalidationEvent
	published   []*entities.InvalidationEvent
	publishErr  error
}

func NewMockEventBus() *MockEventBus {
	return &MockEventBus{
		subscribers: make(map[string][]chan *entities.InvalidationEvent),
	}
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.InvalidationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, event)
	for _, ch := range m.subscribers[channel] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.InvalidationEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan *entities.InvalidationEvent, 10)
	m.subscribers[channel] = append(m.subscribers[channel], ch)
	return ch, nil
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subscribers[channel] {
		close(ch)
	}
	delete(m.subscribers, channel)
	return nil
}

func (m *MockEventBus) Close() error {
	return nil
}

func (m *MockEventBus) Published() []*entities.InvalidationEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*entities.InvalidationEvent(nil), m.published...)
}

func (m *MockEventBus) SubscriberCount(channel string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscribers[channel])
}

// fakeRecorder collects invalidation measurements
type fakeRecorder struct {
	mu        sync.Mutex
	sources   []string
	errors    []string
	mutations []entities.MutationOutcome
}

func (r *fakeRecorder) RecordInvalidation(_ entities.Entity, source string, _, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, source)
}

func (r *fakeRecorder) RecordInvalidationError(stage string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, stage)
}

func (r *fakeRecorder) RecordMutation(_ entities.Entity, _ entities.MutationAction, outcome entities.MutationOutcome, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations = append(r.mutations, outcome)
}

func seed(t *testing.T, store *cache.Store, ks ...keys.Key) {
	t.Helper()
	for _, k := range ks {
		_, err := store.Fetch(context.Background(), k, 0, func(ctx context.Context) ([]byte, error) {
			return []byte("{}"), nil
		})
		require.NoError(t, err)
	}
}

func isStale(t *testing.T, store *cache.Store, k keys.Key) bool {
	t.Helper()
	e, ok := store.Peek(k)
	require.True(t, ok, "entry %s missing", k.String())
	return e.Stale
}

func TestInvalidator_SubmitAccessionScenario(t *testing.T) {
	store := cache.NewStore()
	bus := NewMockEventBus()
	recorder := &fakeRecorder{}
	inv := services.NewInvalidator(store, bus, recorder, "gw-1", zerolog.Nop())

	page1 := keys.Accessions.List(keys.ListParams{PageNumber: 1, PageSize: 10})
	page2 := keys.Accessions.List(keys.ListParams{PageNumber: 2, PageSize: 10, Filters: `status == "Draft"`})
	forEdit := mustKey(keys.Accessions.ForEdit("a1"))
	otherForEdit := mustKey(keys.Accessions.ForEdit("a2"))
	patients := keys.Patients.List(keys.ListParams{PageNumber: 1, PageSize: 10})
	seed(t, store, page1, page2, forEdit, otherForEdit, patients)

	roots := inv.Invalidate(context.Background(), services.Mutation{
		Entity:    entities.EntityAccession,
		Action:    entities.MutationActionStatusChange,
		Operation: "submit-accession",
		RecordID:  "a1",
	})
	require.Len(t, roots, 3)

	assert.True(t, isStale(t, store, page1))
	assert.True(t, isStale(t, store, page2))
	assert.True(t, isStale(t, store, forEdit))
	assert.False(t, isStale(t, store, otherForEdit))
	assert.False(t, isStale(t, store, patients))

	published := bus.Published()
	require.Len(t, published, 1)
	assert.Equal(t, "gw-1", published[0].Origin)
	assert.Equal(t, services.RootTokens(roots), published[0].Keys)
	assert.Equal(t, []string{services.SourceLocal}, recorder.sources)

	// Invalidating again changes nothing further
	inv.Invalidate(context.Background(), services.Mutation{Entity: entities.EntityAccession, RecordID: "a1"})
	assert.True(t, isStale(t, store, forEdit))
	assert.False(t, isStale(t, store, patients))
}

// hookedSharedCache is an in-memory L2 that runs beforeDelete ahead of each
// prefix removal
type hookedSharedCache struct {
	mu           sync.Mutex
	data         map[string][]byte
	beforeDelete func()
}

func (c *hookedSharedCache) Get(_ context.Context, key keys.Key) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key.String()]
	return v, ok, nil
}

func (c *hookedSharedCache) Set(_ context.Context, key keys.Key, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key.String()] = data
	return nil
}

func (c *hookedSharedCache) InvalidatePrefix(_ context.Context, prefix keys.Key) (int, error) {
	if c.beforeDelete != nil {
		c.beforeDelete()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for id := range c.data {
		k, err := keys.Parse(id)
		if err == nil && k.HasPrefix(prefix) {
			delete(c.data, id)
			n++
		}
	}
	return n, nil
}

func TestInvalidator_ReadDuringSharedDeleteDoesNotRestoreOldValue(t *testing.T) {
	shared := &hookedSharedCache{data: make(map[string][]byte)}
	store := cache.NewStore(cache.WithSharedCache(shared))
	inv := services.NewInvalidator(store, NewMockEventBus(), &fakeRecorder{}, "gw-1", zerolog.Nop())

	forEdit := mustKey(keys.Accessions.ForEdit("a1"))
	upstream := func(v string) cache.Fetcher {
		return func(ctx context.Context) ([]byte, error) { return []byte(v), nil }
	}
	_, err := store.Fetch(context.Background(), forEdit, 0, upstream("old"))
	require.NoError(t, err)

	// A reader lands while the shared delete is under way.
	shared.beforeDelete = func() {
		_, err := store.Fetch(context.Background(), forEdit, 0, upstream("new"))
		require.NoError(t, err)
	}
	inv.Invalidate(context.Background(), services.Mutation{
		Entity:    entities.EntityAccession,
		Action:    entities.MutationActionStatusChange,
		Operation: "submit-accession",
		RecordID:  "a1",
	})
	shared.beforeDelete = nil

	assert.True(t, isStale(t, store, forEdit))
	got, err := store.Fetch(context.Background(), forEdit, 0, upstream("new"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestInvalidator_PublishFailureIsSwallowed(t *testing.T) {
	store := cache.NewStore()
	bus := NewMockEventBus()
	bus.publishErr = errors.New("redis unavailable")
	recorder := &fakeRecorder{}
	inv := services.NewInvalidator(store, bus, recorder, "gw-1", zerolog.Nop())
	seed(t, store, keys.Patients.Lists())

	roots := inv.Invalidate(context.Background(), services.Mutation{Entity: entities.EntityPatient, Action: entities.MutationActionCreate})

	assert.Equal(t, []keys.Key{keys.Patients.Lists()}, roots)
	assert.True(t, isStale(t, store, keys.Patients.Lists()))
	assert.Equal(t, []string{"publish"}, recorder.errors)
}

func TestInvalidator_InvalidateRoots(t *testing.T) {
	store := cache.NewStore()
	inv := services.NewInvalidator(store, nil, nil, "gw-1", zerolog.Nop())
	detail := mustKey(keys.Patients.Detail("p1"))
	seed(t, store, detail)

	roots := inv.InvalidateRoots(context.Background(), "admin", keys.Patients.All(), detail)
	assert.Equal(t, []keys.Key{keys.Patients.All()}, roots)
	assert.True(t, isStale(t, store, detail))
	assert.Nil(t, inv.InvalidateRoots(context.Background(), "admin"))
}

func TestCacheInvalidationService_Start(t *testing.T) {
	bus := NewMockEventBus()
	inv := services.NewInvalidator(cache.NewStore(), bus, nil, "gw-2", zerolog.Nop())
	service := services.NewCacheInvalidationService(inv, bus, zerolog.Nop())

	require.NoError(t, service.Start())
	assert.Equal(t, 1, bus.SubscriberCount(providers.EventChannelInvalidations))
	service.Stop()
}

func TestCacheInvalidationService_AppliesPeerEvents(t *testing.T) {
	store := cache.NewStore()
	bus := NewMockEventBus()
	recorder := &fakeRecorder{}
	inv := services.NewInvalidator(store, bus, recorder, "gw-2", zerolog.Nop())
	service := services.NewCacheInvalidationService(inv, bus, zerolog.Nop())
	require.NoError(t, service.Start())
	defer service.Stop()

	forEdit := mustKey(keys.Accessions.ForEdit("a1"))
	seed(t, store, forEdit, keys.Patients.Lists())

	event := entities.NewInvalidationEvent("gw-1", entities.EntityAccession, "submit-accession",
		[][]string{{"accession", "list"}, {"accession", "forEdit", "a1"}})
	require.NoError(t, bus.Publish(context.Background(), providers.EventChannelInvalidations, event))

	assert.Eventually(t, func() bool {
		e, _ := store.Peek(forEdit)
		return e.Stale
	}, time.Second, 5*time.Millisecond)
	assert.False(t, isStale(t, store, keys.Patients.Lists()))
}

func TestCacheInvalidationService_IgnoresOwnEvents(t *testing.T) {
	store := cache.NewStore()
	bus := NewMockEventBus()
	recorder := &fakeRecorder{}
	inv := services.NewInvalidator(store, bus, recorder, "gw-1", zerolog.Nop())
	service := services.NewCacheInvalidationService(inv, bus, zerolog.Nop())
	require.NoError(t, service.Start())

	own := entities.NewInvalidationEvent("gw-1", entities.EntityPatient, "create-patient", [][]string{{"patient", "list"}})
	require.NoError(t, bus.Publish(context.Background(), providers.EventChannelInvalidations, own))
	peer := entities.NewInvalidationEvent("gw-9", entities.EntityPatient, "create-patient", [][]string{{"patient", "list"}})
	require.NoError(t, bus.Publish(context.Background(), providers.EventChannelInvalidations, peer))

	assert.Eventually(t, func() bool {
		recorder.mu.Lock()
		defer recorder.mu.Unlock()
		return len(recorder.sources) == 1
	}, time.Second, 5*time.Millisecond)
	service.Stop()

	assert.Equal(t, []string{services.SourcePeer}, recorder.sources)
}

package events

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
	"github.com/zatekoja/limsgateway/internal/domain/providers"
	redisclient "github.com/zatekoja/limsgateway/internal/infrastructure/clients/redis"
)

func newTestRedisBus(t *testing.T) providers.EventBus {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping Redis integration test")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, rdb.Ping(context.Background()).Err())
	bus := NewRedisEventBus(redisclient.NewClientFromRedis(rdb), zerolog.Nop())
	t.Cleanup(func() {
		_ = bus.Close()
		rdb.Close()
	})
	return bus
}

func TestRedisEventBus_PublishSubscribe(t *testing.T) {
	bus := newTestRedisBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, providers.EventChannelInvalidations)
	require.NoError(t, err)
	// Redis acknowledges the subscription asynchronously.
	time.Sleep(100 * time.Millisecond)

	event := entities.NewInvalidationEvent("gw-1", entities.EntityAccession, "submit-accession",
		[][]string{{"accession", "list"}, {"accession", "detail", "A1"}})
	require.NoError(t, bus.Publish(ctx, providers.EventChannelInvalidations, event))

	select {
	case got := <-ch:
		require.NotNil(t, got)
		assert.Equal(t, event.ID, got.ID)
		assert.Equal(t, event.Keys, got.Keys)
		assert.Equal(t, "gw-1", got.Origin)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestRedisEventBus_ResubscribeAfterLastSubscriberLeaves(t *testing.T) {
	bus := newTestRedisBus(t)

	first, cancelFirst := context.WithCancel(context.Background())
	ch1, err := bus.Subscribe(first, providers.EventChannelInvalidations)
	require.NoError(t, err)
	cancelFirst()
	assert.Eventually(t, func() bool {
		_, open := <-ch1
		return !open
	}, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch2, err := bus.Subscribe(ctx, providers.EventChannelInvalidations)
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)

	event := entities.NewInvalidationEvent("gw-2", entities.EntityPatient, "update-patient", [][]string{{"patient", "list"}})
	require.NoError(t, bus.Publish(ctx, providers.EventChannelInvalidations, event))

	select {
	case got, ok := <-ch2:
		require.True(t, ok, "new subscription was closed by the old receiver")
		assert.Equal(t, event.ID, got.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

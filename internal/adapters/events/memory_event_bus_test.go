package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
	"github.com/zatekoja/limsgateway/internal/domain/providers"
)

func TestMemoryEventBus_DeliversToSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewMemoryEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := bus.Subscribe(ctx, providers.EventChannelInvalidations)
	require.NoError(t, err)
	b, err := bus.Subscribe(ctx, providers.EventChannelInvalidations)
	require.NoError(t, err)

	event := entities.NewInvalidationEvent("gw-1", entities.EntityAccession, "submit", [][]string{{"accession", "list"}})
	require.NoError(t, bus.Publish(ctx, providers.EventChannelInvalidations, event))

	for _, ch := range []<-chan *entities.InvalidationEvent{a, b} {
		select {
		case got := <-ch:
			assert.Equal(t, event.ID, got.ID)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}

	require.NoError(t, bus.Close())
	_, open := <-a
	assert.False(t, open)
	assert.ErrorIs(t, bus.Publish(ctx, providers.EventChannelInvalidations, event), ErrBusClosed)
}

func TestMemoryEventBus_ContextEndsSubscription(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewMemoryEventBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := bus.Subscribe(ctx, providers.EventChannelInvalidations)
	require.NoError(t, err)
	cancel()

	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed")
	}
}

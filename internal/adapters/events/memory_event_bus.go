package events

import (
	"context"
	"errors"
	"sync"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
	"github.com/zatekoja/limsgateway/internal/domain/providers"
)

// ErrBusClosed is returned when publishing to or subscribing on a closed bus
var ErrBusClosed = errors.New("event bus closed")

// MemoryEventBus delivers events between components of one process
type MemoryEventBus struct {
	mu          sync.Mutex
	subscribers map[string]map[chan *entities.InvalidationEvent]struct{}
	closed      bool
	done        chan struct{}
}

// NewMemoryEventBus creates an in-process event bus
func NewMemoryEventBus() *MemoryEventBus {
	return &MemoryEventBus{
		subscribers: make(map[string]map[chan *entities.InvalidationEvent]struct{}),
		done:        make(chan struct{}),
	}
}

var _ providers.EventBus = (*MemoryEventBus)(nil)

// Publish delivers event to every current subscriber of channel, dropping it
// for subscribers whose buffer is full
func (b *MemoryEventBus) Publish(_ context.Context, channel string, event *entities.InvalidationEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBusClosed
	}
	for sub := range b.subscribers[channel] {
		select {
		case sub <- event:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of events that closes when ctx ends or the bus closes
func (b *MemoryEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.InvalidationEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	if b.subscribers[channel] == nil {
		b.subscribers[channel] = make(map[chan *entities.InvalidationEvent]struct{})
	}
	ch := make(chan *entities.InvalidationEvent, subscriberBuffer)
	b.subscribers[channel][ch] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
		}
		b.remove(channel, ch)
	}()
	return ch, nil
}

func (b *MemoryEventBus) remove(channel string, ch chan *entities.InvalidationEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[channel][ch]; !ok {
		return
	}
	delete(b.subscribers[channel], ch)
	close(ch)
	if len(b.subscribers[channel]) == 0 {
		delete(b.subscribers, channel)
	}
}

// Unsubscribe closes every subscription on channel
func (b *MemoryEventBus) Unsubscribe(_ context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers[channel] {
		close(ch)
	}
	delete(b.subscribers, channel)
	return nil
}

// Close closes every subscription and rejects further use
func (b *MemoryEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.done)
	b.mu.Unlock()
	return nil
}

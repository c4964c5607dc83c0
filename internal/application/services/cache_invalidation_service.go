package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
	"github.com/zatekoja/limsgateway/internal/domain/providers"
)

// CacheInvalidationService applies invalidation events published by peer gateway instances
type CacheInvalidationService struct {
	invalidator *Invalidator
	eventBus    providers.EventBus
	ctx         context.Context
	cancel      context.CancelFunc
	done        chan struct{}
	started     bool
	logger      zerolog.Logger
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(invalidator *Invalidator, eventBus providers.EventBus, logger zerolog.Logger) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		invalidator: invalidator,
		eventBus:    eventBus,
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
		logger:      logger.With().Str("component", "cache_invalidation").Logger(),
	}
}

// Start begins listening for events and invalidating cache
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelInvalidations)
	if err != nil {
		return fmt.Errorf("failed to subscribe to invalidations: %w", err)
	}

	s.started = true
	go s.processEvents(eventChan)
	s.logger.Info().Str("origin", s.invalidator.Origin()).Msg("Cache invalidation service started")
	return nil
}

// Stop stops the service and waits for the event loop to exit
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	if s.started {
		<-s.done
	}
	s.logger.Info().Msg("Cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.InvalidationEvent) {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

func (s *CacheInvalidationService) handleEvent(event *entities.InvalidationEvent) {
	// Our own events were applied locally before they were published.
	if event.Origin == s.invalidator.Origin() {
		return
	}
	matched := s.invalidator.ApplyPeer(event)
	s.logger.Debug().
		Str("event_id", event.ID).
		Str("origin", event.Origin).
		Str("entity", string(event.Entity)).
		Int("keys", len(event.Keys)).
		Int("matched", matched).
		Msg("Applied peer invalidation")
}

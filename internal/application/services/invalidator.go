package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
	"github.com/zatekoja/limsgateway/internal/domain/providers"
	"github.com/zatekoja/limsgateway/internal/query/cache"
	"github.com/zatekoja/limsgateway/internal/query/keys"
)

// InvalidationRecorder receives invalidation and mutation measurements
type InvalidationRecorder interface {
	RecordInvalidation(entity entities.Entity, source string, roots, matched int)
	RecordInvalidationError(stage string)
	RecordMutation(entity entities.Entity, action entities.MutationAction, outcome entities.MutationOutcome, duration time.Duration)
}

// Invalidation sources
const (
	SourceLocal  = "local"
	SourcePeer   = "peer"
	SourceManual = "manual"
)

type nopRecorder struct{}

func (nopRecorder) RecordInvalidation(entities.Entity, string, int, int) {}
func (nopRecorder) RecordInvalidationError(string) {}
func (nopRecorder) RecordMutation(entities.Entity, entities.MutationAction, entities.MutationOutcome, time.Duration) {}

// Invalidator marks cached queries stale after successful mutations and tells
// peer gateway instances to do the same
type Invalidator struct {
	store    *cache.Store
	eventBus providers.EventBus
	recorder InvalidationRecorder
	origin   string
	logger   zerolog.Logger
}

// NewInvalidator creates an invalidator. eventBus and recorder may be nil.
func NewInvalidator(store *cache.Store, eventBus providers.EventBus, recorder InvalidationRecorder, origin string, logger zerolog.Logger) *Invalidator {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Invalidator{
		store:    store,
		eventBus: eventBus,
		recorder: recorder,
		origin:   origin,
		logger:   logger.With().Str("component", "invalidator").Logger(),
	}
}

// Origin identifies this gateway instance on the event bus
func (i *Invalidator) Origin() string { return i.origin }

// Invalidate applies the plan of the given mutations and returns the roots it
// invalidated. Failures are logged, never returned: the mutation has already
// succeeded upstream.
func (i *Invalidator) Invalidate(ctx context.Context, ms ...Mutation) []keys.Key {
	if len(ms) == 0 {
		return nil
	}
	roots, err := PlanAll(ms...)
	if err != nil {
		i.recorder.RecordInvalidationError("plan")
		i.logger.Warn().Err(err).Str("entity", string(ms[0].Entity)).Str("operation", ms[0].Operation).
			Msg("Invalidation plan incomplete")
	}
	i.apply(ctx, ms[0].Entity, ms[0].Operation, SourceLocal, roots)
	return roots
}

// InvalidateRoots invalidates explicit key roots, as requested by an operator
func (i *Invalidator) InvalidateRoots(ctx context.Context, operation string, roots ...keys.Key) []keys.Key {
	roots = Minimize(roots)
	if len(roots) == 0 {
		return nil
	}
	i.apply(ctx, roots[0].Entity(), operation, SourceManual, roots)
	return roots
}

func (i *Invalidator) apply(ctx context.Context, entity entities.Entity, operation, source string, roots []keys.Key) {
	matched := 0
	// Shared entries go first so a local reload racing this call cannot read
	// the old value from L2 after its flight has already been marked.
	for _, root := range roots {
		if _, err := i.store.InvalidateShared(ctx, root); err != nil {
			i.recorder.RecordInvalidationError("shared")
			i.logger.Warn().Err(err).Str("key", root.String()).Msg("Shared cache invalidation failed")
		}
		matched += i.store.InvalidatePrefix(root)
	}
	i.recorder.RecordInvalidation(entity, source, len(roots), matched)

	i.logger.Debug().
		Str("entity", string(entity)).
		Str("operation", operation).
		Strs("keys", RootStrings(roots)).
		Int("matched", matched).
		Msg("Invalidated query keys")

	if i.eventBus == nil {
		return
	}
	event := entities.NewInvalidationEvent(i.origin, entity, operation, RootTokens(roots))
	if err := i.eventBus.Publish(ctx, providers.EventChannelInvalidations, event); err != nil {
		i.recorder.RecordInvalidationError("publish")
		i.logger.Warn().Err(err).Str("event_id", event.ID).Msg("Failed to publish invalidation event")
	}
}

// ApplyPeer marks local entries stale for roots invalidated by another instance.
// The shared cache was already cleared by the origin.
func (i *Invalidator) ApplyPeer(event *entities.InvalidationEvent) int {
	matched := 0
	for _, tokens := range event.Keys {
		matched += i.store.InvalidatePrefix(keys.New(tokens...))
	}
	i.recorder.RecordInvalidation(event.Entity, SourcePeer, len(event.Keys), matched)
	return matched
}

// RootStrings encodes roots for logs and the journal
func RootStrings(roots []keys.Key) []string {
	out := make([]string, len(roots))
	for n, r := range roots {
		out[n] = r.String()
	}
	return out
}

// RootTokens converts roots to plain token slices for the wire
func RootTokens(roots []keys.Key) [][]string {
	out := make([][]string, len(roots))
	for n, r := range roots {
		out[n] = []string(r)
	}
	return out
}

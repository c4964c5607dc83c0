package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
	"github.com/zatekoja/limsgateway/internal/domain/providers"
	"github.com/zatekoja/limsgateway/internal/domain/repositories"
	apperrors "github.com/zatekoja/limsgateway/pkg/errors"
)

var tracer = otel.Tracer("github.com/zatekoja/limsgateway/services")

// MutationService performs state changes against the LIMS backend and keeps
// the query cache consistent with them
type MutationService struct {
	client      providers.LIMSClient
	invalidator *Invalidator
	notifier    providers.Notifier
	journal     repositories.MutationJournalRepository
	recorder    InvalidationRecorder
	inflight    singleflight.Group
	logger      zerolog.Logger
}

// NewMutationService creates a mutation service. journal and recorder may be nil.
func NewMutationService(
	client providers.LIMSClient,
	invalidator *Invalidator,
	notifier providers.Notifier,
	journal repositories.MutationJournalRepository,
	recorder InvalidationRecorder,
	logger zerolog.Logger,
) *MutationService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &MutationService{
		client:      client,
		invalidator: invalidator,
		notifier:    notifier,
		journal:     journal,
		recorder:    recorder,
		logger:      logger.With().Str("component", "mutations").Logger(),
	}
}

// execute runs call once per identical in-flight mutation; concurrent
// duplicates share the first caller's result. On success the plan of every
// mutation in ms is invalidated. On failure the cache is left untouched and
// the notifier decides what the user sees. The shared call runs detached
// from the first caller's cancellation since later duplicates wait on it.
func execute[T any](ctx context.Context, s *MutationService, payload any, call func(ctx context.Context) (T, error), ms ...Mutation) (T, error) {
	m := ms[0]
	detached := context.WithoutCancel(ctx)
	v, err, shared := s.inflight.Do(dedupKey(m, payload), func() (interface{}, error) {
		return perform(detached, s, call, ms)
	})
	if shared {
		s.logger.Debug().Str("operation", m.Operation).Str("record_id", m.RecordID).Msg("Shared result of identical in-flight mutation")
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func perform[T any](ctx context.Context, s *MutationService, call func(ctx context.Context) (T, error), ms []Mutation) (interface{}, error) {
	m := ms[0]
	ctx, span := tracer.Start(ctx, "mutation."+m.Operation)
	defer span.End()
	span.SetAttributes(
		attribute.String("lims.entity", string(m.Entity)),
		attribute.String("lims.action", string(m.Action)),
		attribute.String("lims.record_id", m.RecordID),
	)

	rec := entities.NewMutationRecord(m.Entity, m.Action, m.Operation)
	rec.RecordID = m.RecordID
	if len(m.Parents) > 0 {
		rec.ParentEntity = m.Parents[0].Entity
		rec.ParentID = m.Parents[0].ID
	}

	start := time.Now()
	result, err := call(ctx)
	rec.Duration = time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		rec.Outcome = entities.MutationOutcomeFailed
		rec.StatusCode = apperrors.StatusOf(err)
		rec.Error = err.Error()
		s.recorder.RecordMutation(m.Entity, m.Action, rec.Outcome, rec.Duration)
		s.journalRecord(ctx, rec)
		if s.notifier != nil {
			s.notifier.NotifyFailure(ctx, m.Operation, err)
		}
		return nil, err
	}

	if rec.RecordID == "" {
		rec.RecordID = createdID(result)
	}
	roots := s.invalidator.Invalidate(ctx, ms...)
	rec.Outcome = entities.MutationOutcomeSucceeded
	rec.InvalidatedKeys = RootStrings(roots)
	s.recorder.RecordMutation(m.Entity, m.Action, rec.Outcome, rec.Duration)
	s.journalRecord(ctx, rec)

	s.logger.Info().
		Str("operation", m.Operation).
		Str("entity", string(m.Entity)).
		Str("record_id", rec.RecordID).
		Dur("duration", rec.Duration).
		Int("invalidated", len(roots)).
		Msg("Mutation succeeded")
	return result, nil
}

func (s *MutationService) journalRecord(ctx context.Context, rec *entities.MutationRecord) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(ctx, rec); err != nil {
		s.logger.Warn().Err(err).Str("mutation_id", rec.ID).Msg("Failed to journal mutation")
	}
}

// dedupKey identifies a mutation by what it does, not who asked for it
func dedupKey(m Mutation, payload any) string {
	var b strings.Builder
	b.WriteString(string(m.Entity))
	b.WriteByte('|')
	b.WriteString(m.Operation)
	b.WriteByte('|')
	b.WriteString(m.RecordID)
	for _, p := range m.Parents {
		b.WriteByte('|')
		b.WriteString(string(p.Entity))
		b.WriteByte('=')
		b.WriteString(p.ID)
	}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			sum := sha256.Sum256(raw)
			b.WriteByte('|')
			b.WriteString(hex.EncodeToString(sum[:8]))
		}
	}
	return b.String()
}

func createdID(v any) string {
	switch r := v.(type) {
	case *entities.Accession:
		if r != nil {
			return r.ID
		}
	case *entities.Patient:
		if r != nil {
			return r.ID
		}
	case *entities.AccessionComment:
		if r != nil {
			return r.ID
		}
	case *entities.TestOrder:
		if r != nil {
			return r.ID
		}
	case *entities.OrganizationContact:
		if r != nil {
			return r.ID
		}
	}
	return ""
}

type none struct{}

func wrap(fn func(ctx context.Context) error) func(ctx context.Context) (none, error) {
	return func(ctx context.Context) (none, error) {
		return none{}, fn(ctx)
	}
}

func accessionParent(accessionID string) []ParentRef {
	return []ParentRef{{Entity: entities.EntityAccession, ID: accessionID}}
}

func requireID(name, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.NewValidationError(name + " is required")
	}
	return nil
}

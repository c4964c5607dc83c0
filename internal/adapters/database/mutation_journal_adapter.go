package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
	"github.com/zatekoja/limsgateway/internal/domain/repositories"
	"github.com/zatekoja/limsgateway/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/limsgateway/pkg/errors"
)

const journalTable = "mutation_journal"

// DefaultJournalLimit caps List when the filter sets no limit
const DefaultJournalLimit = 50

// JournalSchema creates the journal table
const JournalSchema = `
CREATE TABLE IF NOT EXISTS mutation_journal (
	id               UUID PRIMARY KEY,
	entity           TEXT NOT NULL,
	action           TEXT NOT NULL,
	operation        TEXT NOT NULL,
	record_id        TEXT NOT NULL DEFAULT '',
	parent_entity    TEXT NOT NULL DEFAULT '',
	parent_id        TEXT NOT NULL DEFAULT '',
	outcome          TEXT NOT NULL,
	status_code      INTEGER NOT NULL DEFAULT 0,
	error            TEXT NOT NULL DEFAULT '',
	invalidated_keys TEXT[] NOT NULL DEFAULT '{}',
	duration_ms      BIGINT NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS mutation_journal_record_idx ON mutation_journal (entity, record_id, created_at DESC);
`

var journalColumns = []interface{}{
	"id", "entity", "action", "operation", "record_id", "parent_entity",
	"parent_id", "outcome", "status_code", "error", "invalidated_keys",
	"duration_ms", "created_at",
}

// MutationJournalAdapter implements the MutationJournalRepository interface
type MutationJournalAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewMutationJournalAdapter creates a new mutation journal adapter
func NewMutationJournalAdapter(client *postgres.Client) *MutationJournalAdapter {
	return &MutationJournalAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var _ repositories.MutationJournalRepository = (*MutationJournalAdapter)(nil)

// EnsureSchema creates the journal table when it does not exist
func (a *MutationJournalAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := a.client.DB().ExecContext(ctx, JournalSchema); err != nil {
		return apperrors.NewInternalError("failed to create mutation journal schema", err)
	}
	return nil
}

// Record inserts a journal row
func (a *MutationJournalAdapter) Record(ctx context.Context, rec *entities.MutationRecord) error {
	invalidated := rec.InvalidatedKeys
	if invalidated == nil {
		invalidated = []string{}
	}

	record := goqu.Record{
		"id":               rec.ID,
		"entity":           string(rec.Entity),
		"action":           string(rec.Action),
		"operation":        rec.Operation,
		"record_id":        rec.RecordID,
		"parent_entity":    string(rec.ParentEntity),
		"parent_id":        rec.ParentID,
		"outcome":          string(rec.Outcome),
		"status_code":      rec.StatusCode,
		"error":            rec.Error,
		"invalidated_keys": pq.Array(invalidated),
		"duration_ms":      rec.Duration.Milliseconds(),
		"created_at":       rec.CreatedAt,
	}

	query, args, err := a.db.Insert(journalTable).Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to record mutation", err)
	}
	return nil
}

// List returns journal rows matching filter, newest first
func (a *MutationJournalAdapter) List(ctx context.Context, filter repositories.MutationJournalFilter) ([]*entities.MutationRecord, error) {
	ds := a.db.Select(journalColumns...).From(journalTable).Prepared(true)

	if filter.Entity != "" {
		ds = ds.Where(goqu.Ex{"entity": string(filter.Entity)})
	}
	if filter.RecordID != "" {
		ds = ds.Where(goqu.Ex{"record_id": filter.RecordID})
	}
	if !filter.Since.IsZero() {
		ds = ds.Where(goqu.C("created_at").Gte(filter.Since))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultJournalLimit
	}
	ds = ds.Order(goqu.I("created_at").Desc()).Limit(uint(limit))

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list mutations", err)
	}
	defer rows.Close()

	var records []*entities.MutationRecord
	for rows.Next() {
		rec := &entities.MutationRecord{}
		var durationMS int64
		err := rows.Scan(
			&rec.ID,
			&rec.Entity,
			&rec.Action,
			&rec.Operation,
			&rec.RecordID,
			&rec.ParentEntity,
			&rec.ParentID,
			&rec.Outcome,
			&rec.StatusCode,
			&rec.Error,
			pq.Array(&rec.InvalidatedKeys),
			&durationMS,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan mutation", err)
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate mutations", err)
	}

	return records, nil
}

package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
)

// MutationJournalFilter narrows journal queries
type MutationJournalFilter struct {
	Entity   entities.Entity
	RecordID string
	Since    time.Time
	Limit    int
}

// MutationJournalRepository defines the interface for the mutation journal.
type MutationJournalRepository interface {
	Record(ctx context.Context, record *entities.MutationRecord) error
	List(ctx context.Context, filter MutationJournalFilter) ([]*entities.MutationRecord, error)
}

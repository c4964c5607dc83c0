package entities

import (
	"time"

	"github.com/google/uuid"
)

// MutationAction classifies a state-changing operation
type MutationAction string

const (
	MutationActionCreate       MutationAction = "create"
	MutationActionUpdate       MutationAction = "update"
	MutationActionDelete       MutationAction = "delete"
	MutationActionStatusChange MutationAction = "status-change"
)

// MutationOutcome records whether the upstream call succeeded
type MutationOutcome string

const (
	MutationOutcomeSucceeded MutationOutcome = "succeeded"
	MutationOutcomeFailed    MutationOutcome = "failed"
)

// MutationRecord is a journal row for a mutation routed through the gateway
type MutationRecord struct {
	ID              string          `json:"id" db:"id"`
	Entity          Entity          `json:"entity" db:"entity"`
	Action          MutationAction  `json:"action" db:"action"`
	Operation       string          `json:"operation" db:"operation"`
	RecordID        string          `json:"record_id" db:"record_id"`
	ParentEntity    Entity          `json:"parent_entity" db:"parent_entity"`
	ParentID        string          `json:"parent_id" db:"parent_id"`
	Outcome         MutationOutcome `json:"outcome" db:"outcome"`
	StatusCode      int             `json:"status_code" db:"status_code"`
	Error           string          `json:"error" db:"error"`
	InvalidatedKeys []string        `json:"invalidated_keys" db:"invalidated_keys"`
	Duration        time.Duration   `json:"duration" db:"duration_ms"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// NewMutationRecord starts a journal record for an operation
func NewMutationRecord(entity Entity, action MutationAction, operation string) *MutationRecord {
	return &MutationRecord{
		ID:        uuid.NewString(),
		Entity:    entity,
		Action:    action,
		Operation: operation,
		CreatedAt: time.Now().UTC(),
	}
}

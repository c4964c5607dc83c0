package entities

import (
	"time"

	"github.com/google/uuid"
)

// InvalidationEvent tells peer gateway instances which query-key roots went
// stale after a mutation
type InvalidationEvent struct {
	ID        string     `json:"id"`
	Origin    string     `json:"origin"`
	Entity    Entity     `json:"entity"`
	Operation string     `json:"operation"`
	Keys      [][]string `json:"keys"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewInvalidationEvent creates an event carrying the given key roots
func NewInvalidationEvent(origin string, entity Entity, operation string, keys [][]string) *InvalidationEvent {
	return &InvalidationEvent{
		ID:        uuid.NewString(),
		Origin:    origin,
		Entity:    entity,
		Operation: operation,
		Keys:      keys,
		Timestamp: time.Now().UTC(),
	}
}

package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
	"github.com/zatekoja/limsgateway/internal/domain/providers"
	apperrors "github.com/zatekoja/limsgateway/pkg/errors"
)

// DefaultNotificationCapacity bounds the in-memory notification feed
const DefaultNotificationCapacity = 100

// GenericFailureMessage is shown for every failure that is not a field-level validation error
const GenericFailureMessage = "There was an error processing your request. Please try again."

// NotificationService turns failed mutations into user-visible notifications.
// Validation failures (422) are rendered inline by the form that caused them
// and are not notified.
type NotificationService struct {
	mu       sync.Mutex
	feed     []entities.Notification
	capacity int
	now      func() time.Time
	logger   zerolog.Logger
}

var _ providers.Notifier = (*NotificationService)(nil)

// NewNotificationService creates a notification feed holding at most capacity entries
func NewNotificationService(capacity int, logger zerolog.Logger) *NotificationService {
	if capacity <= 0 {
		capacity = DefaultNotificationCapacity
	}
	return &NotificationService{
		capacity: capacity,
		now:      time.Now,
		logger:   logger.With().Str("component", "notifications").Logger(),
	}
}

// NotifyFailure records a notification for err unless it is an inline validation error
func (n *NotificationService) NotifyFailure(ctx context.Context, operation string, err error) {
	if err == nil {
		return
	}
	status := apperrors.StatusOf(err)
	if apperrors.IsInlineValidation(err) {
		n.logger.Debug().Str("operation", operation).Int("status", status).Msg("Validation failure left to inline display")
		return
	}

	n.logger.Error().Err(err).Str("operation", operation).Int("status", status).Msg("Mutation failed")

	note := entities.Notification{
		ID:         uuid.NewString(),
		Level:      entities.NotificationLevelError,
		Message:    GenericFailureMessage,
		Operation:  operation,
		StatusCode: status,
		CreatedAt:  n.now().UTC(),
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.feed = append(n.feed, note)
	if over := len(n.feed) - n.capacity; over > 0 {
		n.feed = append(n.feed[:0:0], n.feed[over:]...)
	}
}

// Recent returns up to limit notifications, newest first. A non-positive limit returns all.
func (n *NotificationService) Recent(limit int) []entities.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if limit <= 0 || limit > len(n.feed) {
		limit = len(n.feed)
	}
	out := make([]entities.Notification, 0, limit)
	for i := len(n.feed) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, n.feed[i])
	}
	return out
}

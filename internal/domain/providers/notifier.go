package providers

import (
	"context"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
)

// Notifier turns a failed mutation into a user-visible notification.
// Implementations decide which failures are shown inline instead.
type Notifier interface {
	NotifyFailure(ctx context.Context, operation string, err error)
	Recent(limit int) []entities.Notification
}

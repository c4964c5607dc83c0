package entities

import "time"

// NotificationLevel is the severity the UI renders a notification with
type NotificationLevel string

const (
	NotificationLevelError   NotificationLevel = "error"
	NotificationLevelWarning NotificationLevel = "warning"
)

// Notification is a user-visible toast produced by a failed mutation
type Notification struct {
	ID         string            `json:"id"`
	Level      NotificationLevel `json:"level"`
	Message    string            `json:"message"`
	Operation  string            `json:"operation"`
	StatusCode int               `json:"statusCode,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}

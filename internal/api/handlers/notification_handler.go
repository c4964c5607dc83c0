package handlers

import (
	"net/http"
	"strconv"

	"github.com/zatekoja/limsgateway/internal/domain/providers"
)

const defaultNotificationLimit = 20

// NotificationHandler serves the failure notification feed
type NotificationHandler struct {
	notifier providers.Notifier
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifier providers.Notifier) *NotificationHandler {
	return &NotificationHandler{notifier: notifier}
}

// ListNotifications handles GET /api/notifications
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	limit := defaultNotificationLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		limit = n
	}

	notifications := h.notifier.Recent(limit)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

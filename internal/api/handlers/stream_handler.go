package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
	"github.com/zatekoja/limsgateway/internal/domain/providers"
	"github.com/zatekoja/limsgateway/internal/infrastructure/observability"
	"github.com/zatekoja/limsgateway/internal/query/listview"
)

// DefaultHeartbeatInterval keeps idle streams open through proxies
const DefaultHeartbeatInterval = 30 * time.Second

// StreamHandler pushes invalidation events to UI clients over Server-Sent
// Events so they can refetch the queries that went stale
type StreamHandler struct {
	eventBus  providers.EventBus
	heartbeat time.Duration
	coalesce  time.Duration
	clock     listview.Clock
	clients   atomic.Int64
}

// StreamOption configures a StreamHandler
type StreamOption func(*StreamHandler)

// WithCoalesceWindow holds invalidated frames until the bus has been quiet
// for d, then writes the burst once with duplicates dropped. Zero disables it.
func WithCoalesceWindow(d time.Duration) StreamOption {
	return func(h *StreamHandler) {
		h.coalesce = d
	}
}

// WithStreamClock sets the clock used for the coalesce window
func WithStreamClock(c listview.Clock) StreamOption {
	return func(h *StreamHandler) {
		h.clock = c
	}
}

// NewStreamHandler creates a new stream handler. A non-positive heartbeat
// uses DefaultHeartbeatInterval.
func NewStreamHandler(eventBus providers.EventBus, heartbeat time.Duration, opts ...StreamOption) *StreamHandler {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeatInterval
	}
	h := &StreamHandler{eventBus: eventBus, heartbeat: heartbeat}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// StreamInvalidations handles GET /api/stream/invalidations?entity=accession
func (h *StreamHandler) StreamInvalidations(w http.ResponseWriter, r *http.Request) {
	if h.eventBus == nil {
		respondWithError(w, http.StatusServiceUnavailable, "invalidation stream is disabled")
		return
	}

	var only entities.Entity
	if raw := r.URL.Query().Get("entity"); raw != "" {
		only = entities.Entity(raw)
		if !only.Valid() {
			respondWithError(w, http.StatusBadRequest, "unknown entity "+strconv.Quote(raw))
			return
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	eventChan, err := h.eventBus.Subscribe(r.Context(), providers.EventChannelInvalidations)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	logger := observability.LoggerFromContext(r.Context())
	// Streams outlive the server's write timeout.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		logger.Debug().Err(err).Msg("Could not clear write deadline for stream")
	}
	h.clients.Add(1)
	defer h.clients.Add(-1)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	h.sendEvent(w, "connected", map[string]interface{}{
		"entity":    only,
		"timestamp": time.Now().UTC(),
	})
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	// pending is only touched on this goroutine; the debouncer just signals.
	var pending []*entities.InvalidationEvent
	var settled chan struct{}
	var debouncer *listview.Debouncer[struct{}]
	if h.coalesce > 0 {
		settled = make(chan struct{}, 1)
		debouncer = listview.NewDebouncer(h.coalesce, h.clock, func(struct{}) {
			select {
			case settled <- struct{}{}:
			default:
			}
		})
		defer debouncer.Stop()
	}

	for {
		select {
		case <-r.Context().Done():
			logger.Debug().Msg("Invalidation stream client disconnected")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{"timestamp": time.Now().UTC()})
			flusher.Flush()
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil || (only != "" && !touches(event, only)) {
				continue
			}
			if debouncer == nil {
				h.sendEvent(w, "invalidated", event)
				flusher.Flush()
				continue
			}
			pending = append(pending, event)
			debouncer.Push(struct{}{})
		case <-settled:
			for _, event := range coalesceEvents(pending) {
				h.sendEvent(w, "invalidated", event)
			}
			pending = pending[:0]
			flusher.Flush()
		}
	}
}

// ClientCount returns the number of connected stream clients
func (h *StreamHandler) ClientCount() int {
	return int(h.clients.Load())
}

// Stats handles GET /api/stream/stats
func (h *StreamHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]int{"connectedClients": h.ClientCount()})
}

// touches reports whether any root in event is under entity's namespace
func touches(event *entities.InvalidationEvent, entity entities.Entity) bool {
	if event.Entity == entity {
		return true
	}
	for _, k := range event.Keys {
		if len(k) > 0 && entities.Entity(k[0]) == entity {
			return true
		}
	}
	return false
}

// coalesceEvents drops events whose key set repeats an earlier one in the
// burst, keeping arrival order
func coalesceEvents(events []*entities.InvalidationEvent) []*entities.InvalidationEvent {
	seen := make(map[string]struct{}, len(events))
	out := make([]*entities.InvalidationEvent, 0, len(events))
	for _, event := range events {
		sig := eventSignature(event)
		if _, dup := seen[sig]; dup {
			continue
		}
		seen[sig] = struct{}{}
		out = append(out, event)
	}
	return out
}

func eventSignature(event *entities.InvalidationEvent) string {
	parts := make([]string, len(event.Keys))
	for i, k := range event.Keys {
		parts[i] = strings.Join(k, "\x1f")
	}
	sort.Strings(parts)
	return strings.Join(parts, "\x1e")
}

func (h *StreamHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", payload)
}

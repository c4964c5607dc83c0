package handlers

import (
	"net/http"
	"strconv"
	"time"

	appservices "github.com/zatekoja/limsgateway/internal/application/services"
	"github.com/zatekoja/limsgateway/internal/domain/entities"
	"github.com/zatekoja/limsgateway/internal/domain/repositories"
	"github.com/zatekoja/limsgateway/internal/query/cache"
	"github.com/zatekoja/limsgateway/internal/query/keys"
	apperrors "github.com/zatekoja/limsgateway/pkg/errors"
)

// AdminHandler exposes operator controls over the query cache
type AdminHandler struct {
	invalidator *appservices.Invalidator
	store       *cache.Store
	journal     repositories.MutationJournalRepository
}

// NewAdminHandler creates a new admin handler. journal may be nil.
func NewAdminHandler(invalidator *appservices.Invalidator, store *cache.Store, journal repositories.MutationJournalRepository) *AdminHandler {
	return &AdminHandler{invalidator: invalidator, store: store, journal: journal}
}

// InvalidateRequest names what to invalidate: a whole entity namespace or
// an explicit key prefix
type InvalidateRequest struct {
	Entity string   `json:"entity"`
	Key    []string `json:"key"`
}

// Root resolves the request to one key root
func (req InvalidateRequest) Root() (keys.Key, error) {
	if len(req.Key) > 0 {
		root := keys.New(req.Key...)
		if !root.Entity().Valid() {
			return nil, apperrors.NewValidationError("unknown entity " + strconv.Quote(req.Key[0]))
		}
		return root, nil
	}
	e := entities.Entity(req.Entity)
	if !e.Valid() {
		return nil, apperrors.NewValidationError("unknown entity " + strconv.Quote(req.Entity))
	}
	return keys.All(e), nil
}

// Invalidate handles POST /api/admin/invalidate
func (h *AdminHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	var req InvalidateRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	root, err := req.Root()
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	roots := h.invalidator.InvalidateRoots(r.Context(), "manual-invalidate", root)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"invalidated": appservices.RootStrings(roots),
	})
}

// CacheSnapshot handles GET /api/admin/cache?entity=accession
func (h *AdminHandler) CacheSnapshot(w http.ResponseWriter, r *http.Request) {
	var prefix keys.Key
	if raw := r.URL.Query().Get("entity"); raw != "" {
		e := entities.Entity(raw)
		if !e.Valid() {
			respondWithError(w, http.StatusBadRequest, "unknown entity "+strconv.Quote(raw))
			return
		}
		prefix = keys.All(e)
	}

	entries := h.store.Snapshot(prefix)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
		"total":   h.store.Len(),
	})
}

// ListMutations handles GET /api/admin/mutations
func (h *AdminHandler) ListMutations(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		respondWithError(w, http.StatusServiceUnavailable, "mutation journal is disabled")
		return
	}

	q := r.URL.Query()
	filter := repositories.MutationJournalFilter{
		Entity:   entities.Entity(q.Get("entity")),
		RecordID: q.Get("recordId"),
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		filter.Limit = n
	}
	if raw := q.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "since must be an RFC 3339 timestamp")
			return
		}
		filter.Since = since
	}

	records, err := h.journal.List(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if records == nil {
		records = []*entities.MutationRecord{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"mutations": records,
		"count":     len(records),
	})
}

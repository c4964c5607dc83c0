package handlers

import (
	"net/http"
	"strings"

	appservices "github.com/zatekoja/limsgateway/internal/application/services"
	"github.com/zatekoja/limsgateway/internal/domain/entities"
	queryservices "github.com/zatekoja/limsgateway/internal/query/services"
	apperrors "github.com/zatekoja/limsgateway/pkg/errors"
)

// AccessionHandler handles accession worklist and editing requests
type AccessionHandler struct {
	queries         *queryservices.QueryService
	mutations       *appservices.MutationService
	defaultPageSize int
}

// NewAccessionHandler creates a new accession handler
func NewAccessionHandler(queries *queryservices.QueryService, mutations *appservices.MutationService, defaultPageSize int) *AccessionHandler {
	return &AccessionHandler{
		queries:         queries,
		mutations:       mutations,
		defaultPageSize: defaultPageSize,
	}
}

// ListAccessions handles GET /api/accessions
func (h *AccessionHandler) ListAccessions(w http.ResponseWriter, r *http.Request) {
	params, err := parseListQuery(r, AccessionListOptions, h.defaultPageSize)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	result, err := h.queries.ListAccessions(r.Context(), params)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// GetAccession handles GET /api/accessions/{id}
func (h *AccessionHandler) GetAccession(w http.ResponseWriter, r *http.Request) {
	accession, err := h.queries.GetAccession(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, accession)
}

// GetAccessionForEdit handles GET /api/accessions/{id}/for-edit
func (h *AccessionHandler) GetAccessionForEdit(w http.ResponseWriter, r *http.Request) {
	aggregate, err := h.queries.AccessionForEdit(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, aggregate)
}

// CreateAccession handles POST /api/accessions
func (h *AccessionHandler) CreateAccession(w http.ResponseWriter, r *http.Request) {
	var in entities.AccessionForCreation
	if r.ContentLength != 0 {
		if err := decodeBody(r, &in); err != nil {
			respondWithAppError(w, r, err)
			return
		}
	}

	accession, err := h.mutations.CreateAccession(r.Context(), in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, accession)
}

// UpdateAccession handles PUT /api/accessions/{id}
func (h *AccessionHandler) UpdateAccession(w http.ResponseWriter, r *http.Request) {
	var in entities.AccessionForUpdate
	if err := decodeBody(r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if err := h.mutations.UpdateAccession(r.Context(), r.PathValue("id"), in); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmitAccession handles POST /api/accessions/{id}/submit
func (h *AccessionHandler) SubmitAccession(w http.ResponseWriter, r *http.Request) {
	if err := h.mutations.SubmitAccession(r.Context(), r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAccession handles DELETE /api/accessions/{id}
func (h *AccessionHandler) DeleteAccession(w http.ResponseWriter, r *http.Request) {
	if err := h.mutations.DeleteAccession(r.Context(), r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddComment handles POST /api/accessions/{id}/comments
func (h *AccessionHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var in entities.AccessionCommentForCreation
	if err := decodeBody(r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if strings.TrimSpace(in.Comment) == "" {
		respondWithAppError(w, r, apperrors.NewValidationError("comment is required"))
		return
	}

	comment, err := h.mutations.AddAccessionComment(r.Context(), r.PathValue("id"), in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, comment)
}

// DeleteComment handles DELETE /api/accessions/{id}/comments/{commentId}
func (h *AccessionHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	err := h.mutations.DeleteAccessionComment(r.Context(), r.PathValue("id"), r.PathValue("commentId"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAttachment handles DELETE /api/accessions/{id}/attachments/{attachmentId}
func (h *AccessionHandler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	err := h.mutations.DeleteAccessionAttachment(r.Context(), r.PathValue("id"), r.PathValue("attachmentId"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addTestOrderRequest struct {
	TestID string `json:"testId"`
}

// AddTestOrder handles POST /api/accessions/{id}/test-orders
func (h *AccessionHandler) AddTestOrder(w http.ResponseWriter, r *http.Request) {
	var in addTestOrderRequest
	if err := decodeBody(r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	order, err := h.mutations.AddTestOrder(r.Context(), r.PathValue("id"), in.TestID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, order)
}

type addPanelOrderRequest struct {
	PanelID string `json:"panelId"`
}

// AddPanelOrder handles POST /api/accessions/{id}/panel-orders
func (h *AccessionHandler) AddPanelOrder(w http.ResponseWriter, r *http.Request) {
	var in addPanelOrderRequest
	if err := decodeBody(r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if err := h.mutations.AddPanelOrder(r.Context(), r.PathValue("id"), in.PanelID); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type cancelTestOrderRequest struct {
	AccessionID string `json:"accessionId"`
	entities.TestOrderCancellation
}

// CancelTestOrder handles POST /api/test-orders/{id}/cancel. The body names
// the owning accession so its aggregate can be invalidated.
func (h *AccessionHandler) CancelTestOrder(w http.ResponseWriter, r *http.Request) {
	var in cancelTestOrderRequest
	if err := decodeBody(r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	err := h.mutations.CancelTestOrder(r.Context(), in.AccessionID, r.PathValue("id"), in.TestOrderCancellation)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

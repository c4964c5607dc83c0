package handlers

import (
	"net/http"

	appservices "github.com/zatekoja/limsgateway/internal/application/services"
	"github.com/zatekoja/limsgateway/internal/domain/entities"
	queryservices "github.com/zatekoja/limsgateway/internal/query/services"
)

// OrganizationHandler handles organization contact requests
type OrganizationHandler struct {
	queries   *queryservices.QueryService
	mutations *appservices.MutationService
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(queries *queryservices.QueryService, mutations *appservices.MutationService) *OrganizationHandler {
	return &OrganizationHandler{queries: queries, mutations: mutations}
}

// ListContacts handles GET /api/organizations/{id}/contacts
func (h *OrganizationHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.queries.OrganizationContacts(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"contacts": contacts,
		"count":    len(contacts),
	})
}

// CreateContact handles POST /api/organizations/{id}/contacts
func (h *OrganizationHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var in entities.OrganizationContactForUpsert
	if err := decodeBody(r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	contact, err := h.mutations.CreateOrganizationContact(r.Context(), r.PathValue("id"), in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, contact)
}

// UpdateContact handles PUT /api/organizations/{id}/contacts/{contactId}
func (h *OrganizationHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	var in entities.OrganizationContactForUpsert
	if err := decodeBody(r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	err := h.mutations.UpdateOrganizationContact(r.Context(), r.PathValue("id"), r.PathValue("contactId"), in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"net/http"

	appservices "github.com/zatekoja/limsgateway/internal/application/services"
	"github.com/zatekoja/limsgateway/internal/domain/entities"
	queryservices "github.com/zatekoja/limsgateway/internal/query/services"
)

// PatientHandler handles patient and sample requests
type PatientHandler struct {
	queries         *queryservices.QueryService
	mutations       *appservices.MutationService
	defaultPageSize int
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(queries *queryservices.QueryService, mutations *appservices.MutationService, defaultPageSize int) *PatientHandler {
	return &PatientHandler{
		queries:         queries,
		mutations:       mutations,
		defaultPageSize: defaultPageSize,
	}
}

// ListPatients handles GET /api/patients
func (h *PatientHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	params, err := parseListQuery(r, PatientListOptions, h.defaultPageSize)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	result, err := h.queries.ListPatients(r.Context(), params)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// GetPatient handles GET /api/patients/{id}
func (h *PatientHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	patient, err := h.queries.GetPatient(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, patient)
}

// CreatePatient handles POST /api/patients
func (h *PatientHandler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var in entities.PatientForUpsert
	if err := decodeBody(r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	patient, err := h.mutations.CreatePatient(r.Context(), in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, patient)
}

// UpdatePatient handles PUT /api/patients/{id}
func (h *PatientHandler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	var in entities.PatientForUpsert
	if err := decodeBody(r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if err := h.mutations.UpdatePatient(r.Context(), r.PathValue("id"), in); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSamples handles GET /api/patients/{id}/samples
func (h *PatientHandler) ListSamples(w http.ResponseWriter, r *http.Request) {
	samples, err := h.queries.SamplesByPatient(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"samples": samples,
		"count":   len(samples),
	})
}

// DisposeSample handles POST /api/samples/{id}/dispose. The optional body
// names the patient and accession the sample is listed under.
func (h *PatientHandler) DisposeSample(w http.ResponseWriter, r *http.Request) {
	var owners appservices.SampleOwners
	if r.ContentLength != 0 {
		if err := decodeBody(r, &owners); err != nil {
			respondWithAppError(w, r, err)
			return
		}
	}

	if err := h.mutations.DisposeSample(r.Context(), r.PathValue("id"), owners); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

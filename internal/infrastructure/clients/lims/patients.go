package lims

import (
	"context"
	"net/http"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
	"github.com/zatekoja/limsgateway/internal/query/keys"
)

// ListPatients returns one page of patients
func (c *HTTPClient) ListPatients(ctx context.Context, params keys.ListParams) (*entities.Page[entities.Patient], error) {
	return list[entities.Patient](ctx, c, c.endpoint("patients"), params)
}

// GetPatient returns a single patient
func (c *HTTPClient) GetPatient(ctx context.Context, id string) (*entities.Patient, error) {
	return get[*entities.Patient](ctx, c, c.endpoint("patients", id))
}

// CreatePatient registers a patient
func (c *HTTPClient) CreatePatient(ctx context.Context, in entities.PatientForUpsert) (*entities.Patient, error) {
	return send[*entities.Patient](ctx, c, http.MethodPost, c.endpoint("patients"), in)
}

// UpdatePatient updates a patient
func (c *HTTPClient) UpdatePatient(ctx context.Context, id string, in entities.PatientForUpsert) error {
	return c.exec(ctx, http.MethodPut, c.endpoint("patients", id), in)
}

// ListSamplesByPatient lists a patient's samples
func (c *HTTPClient) ListSamplesByPatient(ctx context.Context, patientID string) ([]entities.Sample, error) {
	return get[[]entities.Sample](ctx, c, c.endpoint("samples", "byPatient", patientID))
}

// ListSamplesByAccession lists the samples attached to an accession
func (c *HTTPClient) ListSamplesByAccession(ctx context.Context, accessionID string) ([]entities.Sample, error) {
	return get[[]entities.Sample](ctx, c, c.endpoint("samples", "byAccession", accessionID))
}

// DisposeSample marks a sample disposed
func (c *HTTPClient) DisposeSample(ctx context.Context, id string) error {
	return c.exec(ctx, http.MethodPut, c.endpoint("samples", id, "dispose"), nil)
}

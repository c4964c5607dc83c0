package lims

import (
	"context"
	"net/http"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
	"github.com/zatekoja/limsgateway/internal/query/keys"
)

// ListAccessions returns one worklist page
func (c *HTTPClient) ListAccessions(ctx context.Context, params keys.ListParams) (*entities.Page[entities.AccessionWorklistItem], error) {
	return list[entities.AccessionWorklistItem](ctx, c, c.endpoint("accessions", "worklist"), params)
}

// GetAccession returns a single accession
func (c *HTTPClient) GetAccession(ctx context.Context, id string) (*entities.Accession, error) {
	return get[*entities.Accession](ctx, c, c.endpoint("accessions", id))
}

// CreateAccession creates a draft accession
func (c *HTTPClient) CreateAccession(ctx context.Context, in entities.AccessionForCreation) (*entities.Accession, error) {
	return send[*entities.Accession](ctx, c, http.MethodPost, c.endpoint("accessions"), in)
}

// UpdateAccession updates an accession
func (c *HTTPClient) UpdateAccession(ctx context.Context, id string, in entities.AccessionForUpdate) error {
	return c.exec(ctx, http.MethodPut, c.endpoint("accessions", id), in)
}

// SubmitAccession submits a draft accession
func (c *HTTPClient) SubmitAccession(ctx context.Context, id string) error {
	return c.exec(ctx, http.MethodPut, c.endpoint("accessions", id, "submit"), nil)
}

// DeleteAccession deletes an accession
func (c *HTTPClient) DeleteAccession(ctx context.Context, id string) error {
	return c.exec(ctx, http.MethodDelete, c.endpoint("accessions", id), nil)
}

// ListAccessionComments lists the comments on an accession
func (c *HTTPClient) ListAccessionComments(ctx context.Context, accessionID string) ([]entities.AccessionComment, error) {
	return get[[]entities.AccessionComment](ctx, c, c.endpoint("accessions", accessionID, "comments"))
}

// AddAccessionComment adds a comment to an accession
func (c *HTTPClient) AddAccessionComment(ctx context.Context, accessionID string, in entities.AccessionCommentForCreation) (*entities.AccessionComment, error) {
	return send[*entities.AccessionComment](ctx, c, http.MethodPost, c.endpoint("accessions", accessionID, "comments"), in)
}

// DeleteAccessionComment deletes a comment
func (c *HTTPClient) DeleteAccessionComment(ctx context.Context, id string) error {
	return c.exec(ctx, http.MethodDelete, c.endpoint("accessionComments", id), nil)
}

// ListAccessionAttachments lists the attachments of an accession
func (c *HTTPClient) ListAccessionAttachments(ctx context.Context, accessionID string) ([]entities.AccessionAttachment, error) {
	return get[[]entities.AccessionAttachment](ctx, c, c.endpoint("accessions", accessionID, "attachments"))
}

// DeleteAccessionAttachment deletes an attachment
func (c *HTTPClient) DeleteAccessionAttachment(ctx context.Context, id string) error {
	return c.exec(ctx, http.MethodDelete, c.endpoint("accessionAttachments", id), nil)
}

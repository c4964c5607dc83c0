package lims

import (
	"context"
	"net/http"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
)

// GetOrganization returns a single organization
func (c *HTTPClient) GetOrganization(ctx context.Context, id string) (*entities.Organization, error) {
	return get[*entities.Organization](ctx, c, c.endpoint("organizations", id))
}

// ListOrganizationContacts lists the contacts of an organization
func (c *HTTPClient) ListOrganizationContacts(ctx context.Context, organizationID string) ([]entities.OrganizationContact, error) {
	return get[[]entities.OrganizationContact](ctx, c, c.endpoint("organizationContacts", "byOrganization", organizationID))
}

type contactForCreation struct {
	OrganizationID string `json:"organizationId"`
	entities.OrganizationContactForUpsert
}

// CreateOrganizationContact adds a contact to an organization
func (c *HTTPClient) CreateOrganizationContact(ctx context.Context, organizationID string, in entities.OrganizationContactForUpsert) (*entities.OrganizationContact, error) {
	body := contactForCreation{OrganizationID: organizationID, OrganizationContactForUpsert: in}
	return send[*entities.OrganizationContact](ctx, c, http.MethodPost, c.endpoint("organizationContacts"), body)
}

// UpdateOrganizationContact updates a contact
func (c *HTTPClient) UpdateOrganizationContact(ctx context.Context, id string, in entities.OrganizationContactForUpsert) error {
	return c.exec(ctx, http.MethodPut, c.endpoint("organizationContacts", id), in)
}

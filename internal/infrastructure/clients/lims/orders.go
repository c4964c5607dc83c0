package lims

import (
	"context"
	"net/http"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
)

// ListTestOrdersByAccession lists the flat test orders of an accession
func (c *HTTPClient) ListTestOrdersByAccession(ctx context.Context, accessionID string) ([]entities.TestOrder, error) {
	return get[[]entities.TestOrder](ctx, c, c.endpoint("testOrders", "byAccession", accessionID))
}

// AddTestOrder orders a test on an accession
func (c *HTTPClient) AddTestOrder(ctx context.Context, accessionID, testID string) (*entities.TestOrder, error) {
	return send[*entities.TestOrder](ctx, c, http.MethodPost, c.endpoint("testOrders", accessionID, testID), nil)
}

// AddPanelOrder orders a panel on an accession
func (c *HTTPClient) AddPanelOrder(ctx context.Context, accessionID, panelID string) error {
	return c.exec(ctx, http.MethodPost, c.endpoint("panelOrders", accessionID, panelID), nil)
}

// CancelTestOrder cancels a test order
func (c *HTTPClient) CancelTestOrder(ctx context.Context, id string, in entities.TestOrderCancellation) error {
	return c.exec(ctx, http.MethodPut, c.endpoint("testOrders", id, "cancel"), in)
}

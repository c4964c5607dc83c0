package services

import (
	"context"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
)

// AddTestOrder orders a single test on an accession
func (s *MutationService) AddTestOrder(ctx context.Context, accessionID, testID string) (*entities.TestOrder, error) {
	if err := requireID("accession id", accessionID); err != nil {
		return nil, err
	}
	if err := requireID("test id", testID); err != nil {
		return nil, err
	}
	m := Mutation{
		Entity:    entities.EntityTestOrder,
		Action:    entities.MutationActionCreate,
		Operation: "add-test-order",
		Parents:   accessionParent(accessionID),
	}
	return execute(ctx, s, testID, func(ctx context.Context) (*entities.TestOrder, error) {
		return s.client.AddTestOrder(ctx, accessionID, testID)
	}, m)
}

// AddPanelOrder orders a panel on an accession. The backend expands the panel
// into member test orders, so test-order caches are invalidated too.
func (s *MutationService) AddPanelOrder(ctx context.Context, accessionID, panelID string) error {
	if err := requireID("accession id", accessionID); err != nil {
		return err
	}
	if err := requireID("panel id", panelID); err != nil {
		return err
	}
	parent := accessionParent(accessionID)
	panel := Mutation{
		Entity:    entities.EntityPanelOrder,
		Action:    entities.MutationActionCreate,
		Operation: "add-panel-order",
		Parents:   parent,
	}
	members := Mutation{
		Entity:    entities.EntityTestOrder,
		Action:    entities.MutationActionCreate,
		Operation: "add-panel-order",
		Parents:   parent,
	}
	_, err := execute(ctx, s, panelID, wrap(func(ctx context.Context) error {
		return s.client.AddPanelOrder(ctx, accessionID, panelID)
	}), panel, members)
	return err
}

// CancelTestOrder cancels a test order on an accession
func (s *MutationService) CancelTestOrder(ctx context.Context, accessionID, testOrderID string, in entities.TestOrderCancellation) error {
	if err := requireID("accession id", accessionID); err != nil {
		return err
	}
	if err := requireID("test order id", testOrderID); err != nil {
		return err
	}
	if err := requireID("cancellation reason", in.Reason); err != nil {
		return err
	}
	m := Mutation{
		Entity:    entities.EntityTestOrder,
		Action:    entities.MutationActionStatusChange,
		Operation: "cancel-test-order",
		RecordID:  testOrderID,
		Parents:   accessionParent(accessionID),
	}
	_, err := execute(ctx, s, in, wrap(func(ctx context.Context) error {
		return s.client.CancelTestOrder(ctx, testOrderID, in)
	}), m)
	return err
}

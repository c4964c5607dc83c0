package services

import (
	"context"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
)

func organizationParent(organizationID string) []ParentRef {
	return []ParentRef{{Entity: entities.EntityOrganization, ID: organizationID}}
}

// CreateOrganizationContact adds a result recipient to an organization
func (s *MutationService) CreateOrganizationContact(ctx context.Context, organizationID string, in entities.OrganizationContactForUpsert) (*entities.OrganizationContact, error) {
	if err := requireID("organization id", organizationID); err != nil {
		return nil, err
	}
	m := Mutation{
		Entity:    entities.EntityOrganizationContact,
		Action:    entities.MutationActionCreate,
		Operation: "create-organization-contact",
		Parents:   organizationParent(organizationID),
	}
	return execute(ctx, s, in, func(ctx context.Context) (*entities.OrganizationContact, error) {
		return s.client.CreateOrganizationContact(ctx, organizationID, in)
	}, m)
}

// UpdateOrganizationContact changes a contact's details
func (s *MutationService) UpdateOrganizationContact(ctx context.Context, organizationID, contactID string, in entities.OrganizationContactForUpsert) error {
	if err := requireID("organization id", organizationID); err != nil {
		return err
	}
	if err := requireID("contact id", contactID); err != nil {
		return err
	}
	m := Mutation{
		Entity:    entities.EntityOrganizationContact,
		Action:    entities.MutationActionUpdate,
		Operation: "update-organization-contact",
		RecordID:  contactID,
		Parents:   organizationParent(organizationID),
	}
	_, err := execute(ctx, s, in, wrap(func(ctx context.Context) error {
		return s.client.UpdateOrganizationContact(ctx, contactID, in)
	}), m)
	return err
}

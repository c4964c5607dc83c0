// Package mocks provides testify mocks of the domain providers.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
	"github.com/zatekoja/limsgateway/internal/domain/providers"
	"github.com/zatekoja/limsgateway/internal/query/keys"
)

// LIMSClient is a mock of providers.LIMSClient
type LIMSClient struct {
	mock.Mock
}

var _ providers.LIMSClient = (*LIMSClient)(nil)

func (m *LIMSClient) ListAccessions(ctx context.Context, params keys.ListParams) (*entities.Page[entities.AccessionWorklistItem], error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Page[entities.AccessionWorklistItem]), args.Error(1)
}

func (m *LIMSClient) GetAccession(ctx context.Context, id string) (*entities.Accession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Accession), args.Error(1)
}

func (m *LIMSClient) CreateAccession(ctx context.Context, in entities.AccessionForCreation) (*entities.Accession, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Accession), args.Error(1)
}

func (m *LIMSClient) UpdateAccession(ctx context.Context, id string, in entities.AccessionForUpdate) error {
	args := m.Called(ctx, id, in)
	return args.Error(0)
}

func (m *LIMSClient) SubmitAccession(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *LIMSClient) DeleteAccession(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *LIMSClient) ListAccessionComments(ctx context.Context, accessionID string) ([]entities.AccessionComment, error) {
	args := m.Called(ctx, accessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.AccessionComment), args.Error(1)
}

func (m *LIMSClient) AddAccessionComment(ctx context.Context, accessionID string, in entities.AccessionCommentForCreation) (*entities.AccessionComment, error) {
	args := m.Called(ctx, accessionID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AccessionComment), args.Error(1)
}

func (m *LIMSClient) DeleteAccessionComment(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *LIMSClient) ListAccessionAttachments(ctx context.Context, accessionID string) ([]entities.AccessionAttachment, error) {
	args := m.Called(ctx, accessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.AccessionAttachment), args.Error(1)
}

func (m *LIMSClient) DeleteAccessionAttachment(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *LIMSClient) ListPatients(ctx context.Context, params keys.ListParams) (*entities.Page[entities.Patient], error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Page[entities.Patient]), args.Error(1)
}

func (m *LIMSClient) GetPatient(ctx context.Context, id string) (*entities.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Patient), args.Error(1)
}

func (m *LIMSClient) CreatePatient(ctx context.Context, in entities.PatientForUpsert) (*entities.Patient, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Patient), args.Error(1)
}

func (m *LIMSClient) UpdatePatient(ctx context.Context, id string, in entities.PatientForUpsert) error {
	args := m.Called(ctx, id, in)
	return args.Error(0)
}

func (m *LIMSClient) ListSamplesByPatient(ctx context.Context, patientID string) ([]entities.Sample, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Sample), args.Error(1)
}

func (m *LIMSClient) ListSamplesByAccession(ctx context.Context, accessionID string) ([]entities.Sample, error) {
	args := m.Called(ctx, accessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Sample), args.Error(1)
}

func (m *LIMSClient) DisposeSample(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *LIMSClient) ListTestOrdersByAccession(ctx context.Context, accessionID string) ([]entities.TestOrder, error) {
	args := m.Called(ctx, accessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.TestOrder), args.Error(1)
}

func (m *LIMSClient) AddTestOrder(ctx context.Context, accessionID, testID string) (*entities.TestOrder, error) {
	args := m.Called(ctx, accessionID, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TestOrder), args.Error(1)
}

func (m *LIMSClient) AddPanelOrder(ctx context.Context, accessionID, panelID string) error {
	args := m.Called(ctx, accessionID, panelID)
	return args.Error(0)
}

func (m *LIMSClient) CancelTestOrder(ctx context.Context, id string, in entities.TestOrderCancellation) error {
	args := m.Called(ctx, id, in)
	return args.Error(0)
}

func (m *LIMSClient) GetOrganization(ctx context.Context, id string) (*entities.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Organization), args.Error(1)
}

func (m *LIMSClient) ListOrganizationContacts(ctx context.Context, organizationID string) ([]entities.OrganizationContact, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.OrganizationContact), args.Error(1)
}

func (m *LIMSClient) CreateOrganizationContact(ctx context.Context, organizationID string, in entities.OrganizationContactForUpsert) (*entities.OrganizationContact, error) {
	args := m.Called(ctx, organizationID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.OrganizationContact), args.Error(1)
}

func (m *LIMSClient) UpdateOrganizationContact(ctx context.Context, id string, in entities.OrganizationContactForUpsert) error {
	args := m.Called(ctx, id, in)
	return args.Error(0)
}

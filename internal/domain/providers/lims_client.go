package providers

import (
	"context"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
	"github.com/zatekoja/limsgateway/internal/query/keys"
)

// AccessionClient reads and changes accessions in the LIMS backend
type AccessionClient interface {
	ListAccessions(ctx context.Context, params keys.ListParams) (*entities.Page[entities.AccessionWorklistItem], error)
	GetAccession(ctx context.Context, id string) (*entities.Accession, error)
	CreateAccession(ctx context.Context, in entities.AccessionForCreation) (*entities.Accession, error)
	UpdateAccession(ctx context.Context, id string, in entities.AccessionForUpdate) error
	SubmitAccession(ctx context.Context, id string) error
	DeleteAccession(ctx context.Context, id string) error

	ListAccessionComments(ctx context.Context, accessionID string) ([]entities.AccessionComment, error)
	AddAccessionComment(ctx context.Context, accessionID string, in entities.AccessionCommentForCreation) (*entities.AccessionComment, error)
	DeleteAccessionComment(ctx context.Context, id string) error

	ListAccessionAttachments(ctx context.Context, accessionID string) ([]entities.AccessionAttachment, error)
	DeleteAccessionAttachment(ctx context.Context, id string) error
}

// PatientClient reads and changes patients and their samples
type PatientClient interface {
	ListPatients(ctx context.Context, params keys.ListParams) (*entities.Page[entities.Patient], error)
	GetPatient(ctx context.Context, id string) (*entities.Patient, error)
	CreatePatient(ctx context.Context, in entities.PatientForUpsert) (*entities.Patient, error)
	UpdatePatient(ctx context.Context, id string, in entities.PatientForUpsert) error

	ListSamplesByPatient(ctx context.Context, patientID string) ([]entities.Sample, error)
	ListSamplesByAccession(ctx context.Context, accessionID string) ([]entities.Sample, error)
	DisposeSample(ctx context.Context, id string) error
}

// TestOrderClient manages the tests and panels ordered on an accession
type TestOrderClient interface {
	ListTestOrdersByAccession(ctx context.Context, accessionID string) ([]entities.TestOrder, error)
	AddTestOrder(ctx context.Context, accessionID, testID string) (*entities.TestOrder, error)
	AddPanelOrder(ctx context.Context, accessionID, panelID string) error
	CancelTestOrder(ctx context.Context, id string, in entities.TestOrderCancellation) error
}

// OrganizationClient reads organizations and manages their contacts
type OrganizationClient interface {
	GetOrganization(ctx context.Context, id string) (*entities.Organization, error)
	ListOrganizationContacts(ctx context.Context, organizationID string) ([]entities.OrganizationContact, error)
	CreateOrganizationContact(ctx context.Context, organizationID string, in entities.OrganizationContactForUpsert) (*entities.OrganizationContact, error)
	UpdateOrganizationContact(ctx context.Context, id string, in entities.OrganizationContactForUpsert) error
}

// LIMSClient is the full LIMS REST surface the gateway consumes
type LIMSClient interface {
	AccessionClient
	PatientClient
	TestOrderClient
	OrganizationClient
}

// Package services holds the read side of the gateway: cached queries
// against the LIMS backend.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/zatekoja/limsgateway/internal/adapters/loaders"
	appservices "github.com/zatekoja/limsgateway/internal/application/services"
	"github.com/zatekoja/limsgateway/internal/domain/entities"
	"github.com/zatekoja/limsgateway/internal/domain/providers"
	"github.com/zatekoja/limsgateway/internal/query/cache"
	"github.com/zatekoja/limsgateway/internal/query/keys"
)

var tracer = otel.Tracer("github.com/zatekoja/limsgateway/query")

// TTLs sets how long each key partition stays fresh
type TTLs struct {
	List   time.Duration
	Detail time.Duration
}

// ListResult is a page of results with the query key it was cached under
type ListResult[T any] struct {
	entities.Page[T]
	QueryKey keys.Key `json:"queryKey"`
}

// QueryService serves LIMS reads through the query cache
type QueryService struct {
	client providers.LIMSClient
	store  *cache.Store
	ttl    TTLs
	logger zerolog.Logger
}

// NewQueryService creates a query service
func NewQueryService(client providers.LIMSClient, store *cache.Store, ttl TTLs, logger zerolog.Logger) *QueryService {
	return &QueryService{
		client: client,
		store:  store,
		ttl:    ttl,
		logger: logger.With().Str("component", "queries").Logger(),
	}
}

// ListAccessions returns a worklist page with patient names filled in
func (s *QueryService) ListAccessions(ctx context.Context, params keys.ListParams) (*ListResult[entities.AccessionWorklistItem], error) {
	key := keys.Accessions.List(params)
	page, err := cache.FetchJSON(ctx, s.store, key, s.ttl.List, func(ctx context.Context) (*entities.Page[entities.AccessionWorklistItem], error) {
		ctx, span := tracer.Start(ctx, "query.list-accessions")
		defer span.End()

		page, err := s.client.ListAccessions(ctx, params)
		if err != nil {
			return nil, err
		}
		s.enrichPatients(ctx, page.Items)
		span.SetAttributes(attribute.Int("lims.items", len(page.Items)))
		return page, nil
	})
	if err != nil {
		return nil, err
	}
	return &ListResult[entities.AccessionWorklistItem]{Page: *page, QueryKey: key}, nil
}

// enrichPatients resolves the patients of every row with one batched request.
// Rows whose patient cannot be resolved are left without names.
func (s *QueryService) enrichPatients(ctx context.Context, items []entities.AccessionWorklistItem) {
	var ids []string
	seen := make(map[string]bool)
	for _, item := range items {
		if item.PatientID == nil || *item.PatientID == "" || seen[*item.PatientID] {
			continue
		}
		seen[*item.PatientID] = true
		ids = append(ids, *item.PatientID)
	}
	if len(ids) == 0 {
		return
	}

	patients, errs := loaders.NewPatientLoader(s.client).LoadMany(ctx, ids)()
	byID := make(map[string]*entities.Patient, len(ids))
	for i, id := range ids {
		if i < len(errs) && errs[i] != nil {
			s.logger.Warn().Err(errs[i]).Str("patient_id", id).Msg("Could not resolve worklist patient")
			continue
		}
		if i < len(patients) && patients[i] != nil {
			byID[id] = patients[i]
		}
	}

	for i := range items {
		if items[i].PatientID == nil {
			continue
		}
		if p, ok := byID[*items[i].PatientID]; ok {
			items[i].PatientFirstName = p.FirstName
			items[i].PatientLastName = p.LastName
		}
	}
}

// GetAccession returns a single accession
func (s *QueryService) GetAccession(ctx context.Context, id string) (*entities.Accession, error) {
	key, err := keys.Accessions.Detail(id)
	if err != nil {
		return nil, err
	}
	return cache.FetchJSON(ctx, s.store, key, s.ttl.Detail, func(ctx context.Context) (*entities.Accession, error) {
		return s.client.GetAccession(ctx, id)
	})
}

// AccessionForEdit returns the accession with every child collection the
// editing screen shows, test orders grouped into panels.
func (s *QueryService) AccessionForEdit(ctx context.Context, id string) (*entities.AccessionForEdit, error) {
	key, err := keys.Accessions.ForEdit(id)
	if err != nil {
		return nil, err
	}
	return cache.FetchJSON(ctx, s.store, key, s.ttl.Detail, func(ctx context.Context) (*entities.AccessionForEdit, error) {
		return s.loadForEdit(ctx, id)
	})
}

func (s *QueryService) loadForEdit(ctx context.Context, id string) (*entities.AccessionForEdit, error) {
	ctx, span := tracer.Start(ctx, "query.accession-for-edit")
	defer span.End()
	span.SetAttributes(attribute.String("lims.accession_id", id))

	out := &entities.AccessionForEdit{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		acc, err := s.client.GetAccession(ctx, id)
		if err != nil {
			return err
		}
		out.Accession = *acc

		// patient and organization hang off the accession
		inner, ctx := errgroup.WithContext(ctx)
		if acc.PatientID != nil && *acc.PatientID != "" {
			inner.Go(func() error {
				p, err := s.client.GetPatient(ctx, *acc.PatientID)
				out.Patient = p
				return err
			})
		}
		if acc.OrganizationID != nil && *acc.OrganizationID != "" {
			inner.Go(func() error {
				o, err := s.client.GetOrganization(ctx, *acc.OrganizationID)
				out.Organization = o
				return err
			})
		}
		return inner.Wait()
	})
	g.Go(func() error {
		orders, err := s.client.ListTestOrdersByAccession(ctx, id)
		out.TestOrders = orders
		return err
	})
	g.Go(func() error {
		samples, err := s.client.ListSamplesByAccession(ctx, id)
		out.Samples = samples
		return err
	})
	g.Go(func() error {
		comments, err := s.client.ListAccessionComments(ctx, id)
		out.Comments = comments
		return err
	})
	g.Go(func() error {
		attachments, err := s.client.ListAccessionAttachments(ctx, id)
		out.Attachments = attachments
		return err
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	groups := appservices.GroupOrders(out.TestOrders)
	out.PanelOrders = groups.Panels
	out.StandaloneTestOrders = groups.Standalone
	out.OrphanedTestOrderIDs = groups.Orphaned
	if len(groups.Orphaned) > 0 {
		s.logger.Warn().
			Str("accession_id", id).
			Strs("test_order_ids", groups.Orphaned).
			Msg("Panel test orders without a panel shown as standalone")
	}

	if out.TestOrders == nil {
		out.TestOrders = []entities.TestOrder{}
	}
	if out.Samples == nil {
		out.Samples = []entities.Sample{}
	}
	if out.Comments == nil {
		out.Comments = []entities.AccessionComment{}
	}
	if out.Attachments == nil {
		out.Attachments = []entities.AccessionAttachment{}
	}
	return out, nil
}

// ListPatients returns one page of patients
func (s *QueryService) ListPatients(ctx context.Context, params keys.ListParams) (*ListResult[entities.Patient], error) {
	key := keys.Patients.List(params)
	page, err := cache.FetchJSON(ctx, s.store, key, s.ttl.List, func(ctx context.Context) (*entities.Page[entities.Patient], error) {
		return s.client.ListPatients(ctx, params)
	})
	if err != nil {
		return nil, err
	}
	return &ListResult[entities.Patient]{Page: *page, QueryKey: key}, nil
}

// GetPatient returns a single patient
func (s *QueryService) GetPatient(ctx context.Context, id string) (*entities.Patient, error) {
	key, err := keys.Patients.Detail(id)
	if err != nil {
		return nil, err
	}
	return cache.FetchJSON(ctx, s.store, key, s.ttl.Detail, func(ctx context.Context) (*entities.Patient, error) {
		return s.client.GetPatient(ctx, id)
	})
}

// SamplesByPatient lists a patient's samples
func (s *QueryService) SamplesByPatient(ctx context.Context, patientID string) ([]entities.Sample, error) {
	key, err := keys.Samples.ByParent(patientID)
	if err != nil {
		return nil, err
	}
	return cache.FetchJSON(ctx, s.store, key, s.ttl.List, func(ctx context.Context) ([]entities.Sample, error) {
		samples, err := s.client.ListSamplesByPatient(ctx, patientID)
		if samples == nil && err == nil {
			samples = []entities.Sample{}
		}
		return samples, err
	})
}

// OrganizationContacts lists the contacts of an organization
func (s *QueryService) OrganizationContacts(ctx context.Context, organizationID string) ([]entities.OrganizationContact, error) {
	key, err := keys.OrganizationContacts.ByParent(organizationID)
	if err != nil {
		return nil, err
	}
	return cache.FetchJSON(ctx, s.store, key, s.ttl.List, func(ctx context.Context) ([]entities.OrganizationContact, error) {
		contacts, err := s.client.ListOrganizationContacts(ctx, organizationID)
		if contacts == nil && err == nil {
			contacts = []entities.OrganizationContact{}
		}
		return contacts, err
	})
}

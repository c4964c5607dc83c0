package services

import (
	"context"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
)

// CreatePatient registers a patient
func (s *MutationService) CreatePatient(ctx context.Context, in entities.PatientForUpsert) (*entities.Patient, error) {
	m := Mutation{Entity: entities.EntityPatient, Action: entities.MutationActionCreate, Operation: "create-patient"}
	return execute(ctx, s, in, func(ctx context.Context) (*entities.Patient, error) {
		return s.client.CreatePatient(ctx, in)
	}, m)
}

// UpdatePatient changes a patient's demographics
func (s *MutationService) UpdatePatient(ctx context.Context, id string, in entities.PatientForUpsert) error {
	if err := requireID("patient id", id); err != nil {
		return err
	}
	m := Mutation{Entity: entities.EntityPatient, Action: entities.MutationActionUpdate, Operation: "update-patient", RecordID: id}
	_, err := execute(ctx, s, in, wrap(func(ctx context.Context) error {
		return s.client.UpdatePatient(ctx, id, in)
	}), m)
	return err
}

// SampleOwners are the records a sample is listed under
type SampleOwners struct {
	PatientID   string `json:"patientId"`
	AccessionID string `json:"accessionId"`
}

// DisposeSample marks a sample disposed
func (s *MutationService) DisposeSample(ctx context.Context, sampleID string, owners SampleOwners) error {
	if err := requireID("sample id", sampleID); err != nil {
		return err
	}
	var parents []ParentRef
	if owners.PatientID != "" {
		parents = append(parents, ParentRef{Entity: entities.EntityPatient, ID: owners.PatientID})
	}
	if owners.AccessionID != "" {
		parents = append(parents, ParentRef{Entity: entities.EntityAccession, ID: owners.AccessionID})
	}
	m := Mutation{
		Entity:    entities.EntitySample,
		Action:    entities.MutationActionStatusChange,
		Operation: "dispose-sample",
		RecordID:  sampleID,
		Parents:   parents,
	}
	_, err := execute(ctx, s, nil, wrap(func(ctx context.Context) error {
		return s.client.DisposeSample(ctx, sampleID)
	}), m)
	return err
}

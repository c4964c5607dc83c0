package services

import (
	"context"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
)

// CreateAccession creates a draft accession
func (s *MutationService) CreateAccession(ctx context.Context, in entities.AccessionForCreation) (*entities.Accession, error) {
	m := Mutation{Entity: entities.EntityAccession, Action: entities.MutationActionCreate, Operation: "create-accession"}
	return execute(ctx, s, in, func(ctx context.Context) (*entities.Accession, error) {
		return s.client.CreateAccession(ctx, in)
	}, m)
}

// UpdateAccession changes the patient or organization of an accession
func (s *MutationService) UpdateAccession(ctx context.Context, id string, in entities.AccessionForUpdate) error {
	if err := requireID("accession id", id); err != nil {
		return err
	}
	m := Mutation{Entity: entities.EntityAccession, Action: entities.MutationActionUpdate, Operation: "update-accession", RecordID: id}
	_, err := execute(ctx, s, in, wrap(func(ctx context.Context) error {
		return s.client.UpdateAccession(ctx, id, in)
	}), m)
	return err
}

// SubmitAccession moves a draft accession to submitted
func (s *MutationService) SubmitAccession(ctx context.Context, id string) error {
	if err := requireID("accession id", id); err != nil {
		return err
	}
	m := Mutation{Entity: entities.EntityAccession, Action: entities.MutationActionStatusChange, Operation: "submit-accession", RecordID: id}
	_, err := execute(ctx, s, nil, wrap(func(ctx context.Context) error {
		return s.client.SubmitAccession(ctx, id)
	}), m)
	return err
}

// DeleteAccession removes a draft accession
func (s *MutationService) DeleteAccession(ctx context.Context, id string) error {
	if err := requireID("accession id", id); err != nil {
		return err
	}
	m := Mutation{Entity: entities.EntityAccession, Action: entities.MutationActionDelete, Operation: "delete-accession", RecordID: id}
	_, err := execute(ctx, s, nil, wrap(func(ctx context.Context) error {
		return s.client.DeleteAccession(ctx, id)
	}), m)
	return err
}

// AddAccessionComment adds a comment to an accession
func (s *MutationService) AddAccessionComment(ctx context.Context, accessionID string, in entities.AccessionCommentForCreation) (*entities.AccessionComment, error) {
	if err := requireID("accession id", accessionID); err != nil {
		return nil, err
	}
	m := Mutation{
		Entity:    entities.EntityAccessionComment,
		Action:    entities.MutationActionCreate,
		Operation: "add-accession-comment",
		Parents:   accessionParent(accessionID),
	}
	return execute(ctx, s, in, func(ctx context.Context) (*entities.AccessionComment, error) {
		return s.client.AddAccessionComment(ctx, accessionID, in)
	}, m)
}

// DeleteAccessionComment removes a comment from an accession
func (s *MutationService) DeleteAccessionComment(ctx context.Context, accessionID, commentID string) error {
	if err := requireID("accession id", accessionID); err != nil {
		return err
	}
	if err := requireID("comment id", commentID); err != nil {
		return err
	}
	m := Mutation{
		Entity:    entities.EntityAccessionComment,
		Action:    entities.MutationActionDelete,
		Operation: "delete-accession-comment",
		RecordID:  commentID,
		Parents:   accessionParent(accessionID),
	}
	_, err := execute(ctx, s, nil, wrap(func(ctx context.Context) error {
		return s.client.DeleteAccessionComment(ctx, commentID)
	}), m)
	return err
}

// DeleteAccessionAttachment removes an attachment from an accession
func (s *MutationService) DeleteAccessionAttachment(ctx context.Context, accessionID, attachmentID string) error {
	if err := requireID("accession id", accessionID); err != nil {
		return err
	}
	if err := requireID("attachment id", attachmentID); err != nil {
		return err
	}
	m := Mutation{
		Entity:    entities.EntityAccessionAttachment,
		Action:    entities.MutationActionDelete,
		Operation: "delete-accession-attachment",
		RecordID:  attachmentID,
		Parents:   accessionParent(accessionID),
	}
	_, err := execute(ctx, s, nil, wrap(func(ctx context.Context) error {
		return s.client.DeleteAccessionAttachment(ctx, attachmentID)
	}), m)
	return err
}

package documents

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service contains business logic for dossier documents.
type Service struct {
	Repo DocumentsRepo
}

// Create records a new dossier document for a storage project.
func (s *Service) Create(ctx context.Context, ownerID, projectName, region string) (Document, error) {
	projectName = strings.TrimSpace(projectName)
	if ownerID == "" || projectName == "" {
		return Document{}, ErrInvalidInput
	}

	doc := Document{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		ProjectName: projectName,
		Region:      strings.TrimSpace(region),
		Status:      StatusDraft,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Get returns a document the caller owns.
func (s *Service) Get(ctx context.Context, ownerID, documentID string) (Document, error) {
	if ownerID == "" || documentID == "" {
		return Document{}, ErrInvalidInput
	}
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return Document{}, err
	}
	if doc.OwnerID != ownerID {
		return Document{}, ErrForbidden
	}
	return doc, nil
}

// List returns the caller's documents, newest first.
func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]Document, error) {
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByOwner(ctx, ownerID, limit, offset)
}

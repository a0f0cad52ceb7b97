package documents

import "context"

// DocumentsRepo defines persistence operations for dossier documents.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, documentID string) (Document, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Document, error)
	UpdateStatus(ctx context.Context, documentID, status string) error
}

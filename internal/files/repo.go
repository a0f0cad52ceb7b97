package files

import "context"

// FilesRepo defines persistence operations for uploaded files.
type FilesRepo interface {
	Create(ctx context.Context, file File) error
	GetByID(ctx context.Context, fileID string) (File, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]File, error)
}

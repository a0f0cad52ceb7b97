package files

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"dossier-backend/internal/shared/storage/object"
)

// Service contains business logic for evidence files.
type Service struct {
	Store object.ObjectStore
	Repo  FilesRepo
}

// Upload saves the file to object storage and records it. PDF uploads are
// verified to be parseable before they are accepted; a corrupt certificate
// scan is worse than a rejected upload.
func (s *Service) Upload(ctx context.Context, ownerID, fileName string, r io.Reader) (File, error) {
	if ownerID == "" || strings.TrimSpace(fileName) == "" {
		return File{}, ErrInvalidInput
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return File{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return File{}, ErrInvalidInput
	}

	if strings.HasSuffix(strings.ToLower(fileName), ".pdf") {
		if err := verifyPDF(data); err != nil {
			return File{}, fmt.Errorf("%w: %v", ErrCorruptPDF, err)
		}
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, ownerID, fileName, bytes.NewReader(data))
	if err != nil {
		return File{}, err
	}

	file := File{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		FileName:   fileName,
		MimeType:   mimeType,
		SizeBytes:  size,
		StorageKey: storageKey,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, file); err != nil {
		return File{}, err
	}
	return file, nil
}

// Get returns a file record the caller owns.
func (s *Service) Get(ctx context.Context, ownerID, fileID string) (File, error) {
	if ownerID == "" || fileID == "" {
		return File{}, ErrInvalidInput
	}
	file, err := s.Repo.GetByID(ctx, fileID)
	if err != nil {
		return File{}, err
	}
	if file.OwnerID != ownerID {
		return File{}, ErrNotFound
	}
	return file, nil
}

// List returns the caller's files, newest first.
func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]File, error) {
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByOwner(ctx, ownerID, limit, offset)
}

// Open streams stored file content.
func (s *Service) Open(ctx context.Context, ownerID, fileID string) (io.ReadCloser, File, error) {
	file, err := s.Get(ctx, ownerID, fileID)
	if err != nil {
		return nil, File{}, err
	}
	body, err := s.Store.Open(ctx, file.StorageKey)
	if err != nil {
		return nil, File{}, err
	}
	return body, file, nil
}

// ResolveFile confirms a file exists and is owned by the caller, returning
// its display name. Input resolution uses this to bind file references.
func (s *Service) ResolveFile(ctx context.Context, ownerID, fileID string) (string, error) {
	file, err := s.Get(ctx, ownerID, fileID)
	if err != nil {
		return "", err
	}
	return file.FileName, nil
}

func verifyPDF(data []byte) error {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return err
	}
	if reader.NumPage() < 1 {
		return fmt.Errorf("pdf has no pages")
	}
	return nil
}

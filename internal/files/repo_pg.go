package files

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements FilesRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new file record.
func (r *PGRepo) Create(ctx context.Context, file File) error {
	const query = `
INSERT INTO files (id, owner_id, file_name, mime_type, size_bytes, storage_provider, storage_key, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	provider := file.StorageProvider
	if provider == "" {
		provider = "local"
	}
	var storageKey sql.NullString
	if file.StorageKey != "" {
		storageKey = sql.NullString{String: file.StorageKey, Valid: true}
	}

	_, err := r.DB.ExecContext(ctx, query,
		file.ID,
		file.OwnerID,
		file.FileName,
		file.MimeType,
		file.SizeBytes,
		provider,
		storageKey,
		file.CreatedAt,
	)
	return err
}

// GetByID fetches a file record by ID.
func (r *PGRepo) GetByID(ctx context.Context, fileID string) (File, error) {
	const query = `
SELECT id, owner_id, file_name, mime_type, size_bytes, storage_provider, storage_key, created_at
FROM files
WHERE id = $1
LIMIT 1`
	var file File
	var storageKey sql.NullString
	err := r.DB.QueryRowContext(ctx, query, fileID).Scan(
		&file.ID,
		&file.OwnerID,
		&file.FileName,
		&file.MimeType,
		&file.SizeBytes,
		&file.StorageProvider,
		&storageKey,
		&file.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return File{}, ErrNotFound
		}
		return File{}, err
	}
	if storageKey.Valid {
		file.StorageKey = storageKey.String
	}
	return file, nil
}

// ListByOwner lists an owner's files ordered newest-first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]File, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, owner_id, file_name, mime_type, size_bytes, storage_provider, storage_key, created_at
FROM files
WHERE owner_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []File
	for rows.Next() {
		var file File
		var storageKey sql.NullString
		if err := rows.Scan(
			&file.ID,
			&file.OwnerID,
			&file.FileName,
			&file.MimeType,
			&file.SizeBytes,
			&file.StorageProvider,
			&storageKey,
			&file.CreatedAt,
		); err != nil {
			return nil, err
		}
		if storageKey.Valid {
			file.StorageKey = storageKey.String
		}
		out = append(out, file)
	}
	return out, rows.Err()
}

var _ FilesRepo = (*PGRepo)(nil)

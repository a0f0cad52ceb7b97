package sections

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dossier-backend/internal/templates"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const sectionColumns = `id, document_id, section_key, state, rendered_content, rendered_html, rendered_at, created_at`

// CreateSection inserts a section and its input requests in one transaction.
func (r *PGRepo) CreateSection(ctx context.Context, section Section, inputs []InputRequest) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const sectionQuery = `
INSERT INTO sections (id, document_id, section_key, state, created_at)
VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(ctx, sectionQuery,
		section.ID,
		section.DocumentID,
		section.SectionKey,
		string(section.State),
		section.CreatedAt,
	); err != nil {
		return err
	}

	const inputQuery = `
INSERT INTO input_requests (id, section_id, input_key, input_type, required, is_resolved, created_at)
VALUES ($1, $2, $3, $4, $5, FALSE, $6)`
	for _, in := range inputs {
		if _, err := tx.ExecContext(ctx, inputQuery,
			in.ID,
			in.SectionID,
			in.InputKey,
			string(in.Type),
			in.Required,
			in.CreatedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetSection fetches a section by ID.
func (r *PGRepo) GetSection(ctx context.Context, sectionID string) (Section, error) {
	query := fmt.Sprintf(`SELECT %s FROM sections WHERE id = $1 LIMIT 1`, sectionColumns)
	return scanSection(r.DB.QueryRowContext(ctx, query, sectionID))
}

// GetSectionByKey fetches a document's section with the given template key.
func (r *PGRepo) GetSectionByKey(ctx context.Context, documentID, sectionKey string) (Section, error) {
	query := fmt.Sprintf(`SELECT %s FROM sections WHERE document_id = $1 AND section_key = $2 LIMIT 1`, sectionColumns)
	return scanSection(r.DB.QueryRowContext(ctx, query, documentID, sectionKey))
}

// ListSections returns a document's sections in creation order.
func (r *PGRepo) ListSections(ctx context.Context, documentID string) ([]Section, error) {
	query := fmt.Sprintf(`SELECT %s FROM sections WHERE document_id = $1 ORDER BY created_at, id`, sectionColumns)
	rows, err := r.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Section
	for rows.Next() {
		sec, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sec)
	}
	return out, rows.Err()
}

// ListInputs returns a section's input requests in creation order.
func (r *PGRepo) ListInputs(ctx context.Context, sectionID string) ([]InputRequest, error) {
	const query = `
SELECT id, section_id, input_key, input_type, required, is_resolved, resolved_value, resolved_file_id, resolved_at, created_at
FROM input_requests
WHERE section_id = $1
ORDER BY created_at, id`
	rows, err := r.DB.QueryContext(ctx, query, sectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InputRequest
	for rows.Next() {
		var in InputRequest
		var inputType string
		var value sql.NullString
		var fileID sql.NullString
		var resolvedAt sql.NullTime
		if err := rows.Scan(
			&in.ID,
			&in.SectionID,
			&in.InputKey,
			&inputType,
			&in.Required,
			&in.IsResolved,
			&value,
			&fileID,
			&resolvedAt,
			&in.CreatedAt,
		); err != nil {
			return nil, err
		}
		in.Type = templates.InputType(inputType)
		if value.Valid && value.String != "" {
			var parsed InputValue
			if err := json.Unmarshal([]byte(value.String), &parsed); err != nil {
				return nil, fmt.Errorf("decode resolved value for input %s: %w", in.ID, err)
			}
			in.Value = &parsed
		}
		if fileID.Valid {
			in.FileID = fileID.String
		}
		if resolvedAt.Valid {
			in.ResolvedAt = &resolvedAt.Time
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// UpdateInput stores the resolution fields of an input request.
func (r *PGRepo) UpdateInput(ctx context.Context, input InputRequest) error {
	var value sql.NullString
	if input.Value != nil {
		encoded, err := json.Marshal(input.Value)
		if err != nil {
			return fmt.Errorf("encode resolved value for input %s: %w", input.ID, err)
		}
		value = sql.NullString{String: string(encoded), Valid: true}
	}
	var fileID sql.NullString
	if input.FileID != "" {
		fileID = sql.NullString{String: input.FileID, Valid: true}
	}
	var resolvedAt sql.NullTime
	if input.ResolvedAt != nil {
		resolvedAt = sql.NullTime{Time: *input.ResolvedAt, Valid: true}
	}

	const query = `
UPDATE input_requests
SET is_resolved = $1, resolved_value = $2, resolved_file_id = $3, resolved_at = $4
WHERE id = $5`
	res, err := r.DB.ExecContext(ctx, query, input.IsResolved, value, fileID, resolvedAt, input.ID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSectionState stores a new derived state for a section.
func (r *PGRepo) UpdateSectionState(ctx context.Context, sectionID string, state State) error {
	const query = `UPDATE sections SET state = $1 WHERE id = $2`
	res, err := r.DB.ExecContext(ctx, query, string(state), sectionID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateRender persists render output and marks the section rendered.
func (r *PGRepo) UpdateRender(ctx context.Context, sectionID, content, html string, renderedAt time.Time) error {
	const query = `
UPDATE sections
SET rendered_content = $1, rendered_html = $2, rendered_at = $3, state = $4
WHERE id = $5`
	res, err := r.DB.ExecContext(ctx, query, content, html, renderedAt, string(StateRendered), sectionID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSection(row rowScanner) (Section, error) {
	var sec Section
	var state string
	var content sql.NullString
	var html sql.NullString
	var renderedAt sql.NullTime
	err := row.Scan(
		&sec.ID,
		&sec.DocumentID,
		&sec.SectionKey,
		&state,
		&content,
		&html,
		&renderedAt,
		&sec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Section{}, ErrNotFound
		}
		return Section{}, err
	}
	sec.State = State(state)
	if content.Valid {
		sec.RenderedContent = content.String
	}
	if html.Valid {
		sec.RenderedHTML = html.String
	}
	if renderedAt.Valid {
		sec.RenderedAt = &renderedAt.Time
	}
	return sec, nil
}

var _ Repo = (*PGRepo)(nil)

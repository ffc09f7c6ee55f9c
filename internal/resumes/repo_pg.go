package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"resume-builder/resume/model"
)

type PGRepo struct {
	DB *sql.DB
}

const resumeColumns = `id, user_id, title, content, is_ai_generated, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (model.Resume, error) {
	var res model.Resume
	var content []byte
	if err := row.Scan(&res.ID, &res.UserID, &res.Title, &content, &res.IsAIGenerated, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return model.Resume{}, err
	}
	if err := json.Unmarshal(content, &res.Content); err != nil {
		return model.Resume{}, fmt.Errorf("decode content for resume %d: %w", res.ID, err)
	}
	res.CreatedAt = res.CreatedAt.UTC()
	res.UpdatedAt = res.UpdatedAt.UTC()
	return res, nil
}

func (r *PGRepo) Create(ctx context.Context, userID int64, in model.NewResume) (model.Resume, error) {
	content, err := json.Marshal(in.Content)
	if err != nil {
		return model.Resume{}, fmt.Errorf("encode content: %w", err)
	}
	query := `
INSERT INTO resumes (user_id, title, content, is_ai_generated)
VALUES ($1, $2, $3::jsonb, $4)
RETURNING ` + resumeColumns
	res, err := scanResume(r.DB.QueryRowContext(ctx, query, userID, in.Title, string(content), in.IsAIGenerated))
	if err != nil {
		return model.Resume{}, fmt.Errorf("insert resume: %w", err)
	}
	return res, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID int64) ([]model.Resume, error) {
	query := `
SELECT ` + resumeColumns + `
FROM resumes
WHERE user_id = $1
ORDER BY id ASC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Resume, 0)
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetByID(ctx context.Context, userID, id int64) (model.Resume, error) {
	query := `
SELECT ` + resumeColumns + `
FROM resumes
WHERE id = $1 AND user_id = $2`
	res, err := scanResume(r.DB.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Resume{}, ErrNotFound
	}
	return res, err
}

// Update merges the patch in one statement. JSONB || replaces only the top-level keys the patch carries.
// updated_at moves forward by at least a microsecond so every update is observable.
func (r *PGRepo) Update(ctx context.Context, userID, id int64, patch model.PartialResume) (model.Resume, error) {
	var contentPatch any
	if patch.Content != nil {
		buf, err := json.Marshal(patch.Content)
		if err != nil {
			return model.Resume{}, fmt.Errorf("encode content patch: %w", err)
		}
		contentPatch = string(buf)
	}
	var title, aiGenerated any
	if patch.Title != nil {
		title = *patch.Title
	}
	if patch.IsAIGenerated != nil {
		aiGenerated = *patch.IsAIGenerated
	}
	query := `
UPDATE resumes SET
  title = COALESCE($3::text, title),
  content = COALESCE(content || $4::jsonb, content),
  is_ai_generated = COALESCE($5::boolean, is_ai_generated),
  updated_at = GREATEST(now(), updated_at + interval '1 microsecond')
WHERE id = $1 AND user_id = $2
RETURNING ` + resumeColumns
	res, err := scanResume(r.DB.QueryRowContext(ctx, query, id, userID, title, contentPatch, aiGenerated))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Resume{}, ErrNotFound
	}
	return res, err
}

func (r *PGRepo) Delete(ctx context.Context, userID, id int64) error {
	const query = `DELETE FROM resumes WHERE id = $1 AND user_id = $2`
	result, err := r.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

package resumes

import (
	"context"

	"resume-builder/resume/model"
)

// Repo persists resumes. Every lookup is scoped to the owner in the same operation
// that addresses the row, so a foreign id behaves exactly like a missing one.
type Repo interface {
	Create(ctx context.Context, userID int64, in model.NewResume) (model.Resume, error)
	// ListByUser returns the owner's resumes ordered by id.
	ListByUser(ctx context.Context, userID int64) ([]model.Resume, error)
	GetByID(ctx context.Context, userID, id int64) (model.Resume, error)
	// Update applies the non-nil fields of patch. Content sections merge at the top level.
	Update(ctx context.Context, userID, id int64, patch model.PartialResume) (model.Resume, error)
	Delete(ctx context.Context, userID, id int64) error
}

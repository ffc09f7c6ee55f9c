package resumes

import (
	"bytes"
	"context"
	"errors"
	"io"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/shared/util"
	"resume-builder/resume/model"
	"resume-builder/resume/render"
	"resume-builder/resume/schema"
)

// Renderer turns a stored resume into a downloadable document.
type Renderer func(model.Resume) ([]byte, error)

// Service contains business logic for resumes.
type Service struct {
	Repo Repo
	// Store caches rendered exports. Nil disables the cache.
	Store  object.ObjectStore
	Render Renderer
}

// Export is a rendered resume ready for download.
type Export struct {
	FileName    string
	ContentType string
	Body        []byte
	Cached      bool
}

func NewService(repo Repo, store object.ObjectStore) *Service {
	return &Service{Repo: repo, Store: store, Render: render.PDF}
}

// Create stores a new resume for userID. Content that does not satisfy the
// ResumeContent shape is rejected with a *schema.ValidationError.
func (s *Service) Create(ctx context.Context, userID int64, in model.NewResume) (model.Resume, error) {
	in.Content = SanitizeContent(in.Content)
	if _, err := schema.Encode(schema.ResumeContent, in.Content); err != nil {
		return model.Resume{}, err
	}
	res, err := s.Repo.Create(ctx, userID, in)
	if err != nil {
		return model.Resume{}, err
	}
	metrics.IncResumesCreated()
	telemetry.Info("resumes.created", map[string]any{
		"user_id":         userID,
		"resume_id":       res.ID,
		"is_ai_generated": res.IsAIGenerated,
	})
	return res, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]model.Resume, error) {
	return s.Repo.ListByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, id int64) (model.Resume, error) {
	return s.Repo.GetByID(ctx, userID, id)
}

// Update merges patch into the resume. When content is touched the merged
// document is validated before anything is written.
func (s *Service) Update(ctx context.Context, userID, id int64, patch model.PartialResume) (model.Resume, error) {
	if patch.Content != nil {
		patch.Content = sanitizePatch(patch.Content)
		current, err := s.Repo.GetByID(ctx, userID, id)
		if err != nil {
			return model.Resume{}, err
		}
		if _, err := schema.Encode(schema.ResumeContent, patch.Content.Apply(current.Content)); err != nil {
			return model.Resume{}, err
		}
	}
	res, err := s.Repo.Update(ctx, userID, id, patch)
	if err != nil {
		return model.Resume{}, err
	}
	s.purgeExports(ctx, userID, id)
	return res, nil
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if err := s.Repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	metrics.IncResumesDeleted()
	s.purgeExports(ctx, userID, id)
	telemetry.Info("resumes.deleted", map[string]any{"user_id": userID, "resume_id": id})
	return nil
}

// Export renders the resume, reusing a cached rendition of the same revision when present.
func (s *Service) Export(ctx context.Context, userID, id int64) (Export, error) {
	res, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return Export{}, err
	}
	out := Export{
		FileName:    util.SanitizeFileName(res.Title, "resume") + ".pdf",
		ContentType: render.ContentType,
	}
	key := object.ExportKey(userID, id, res.UpdatedAt)

	if s.Store != nil {
		body, err := s.readCached(ctx, key)
		if err == nil {
			out.Body = body
			out.Cached = true
			return out, nil
		}
		if !errors.Is(err, object.ErrNotFound) {
			telemetry.Warn("resumes.export_cache_read_failed", map[string]any{"resume_id": id, "err": err})
		}
	}

	body, err := s.Render(res)
	if err != nil {
		return Export{}, err
	}
	metrics.IncExportsRendered()
	out.Body = body

	if s.Store != nil {
		if _, err := s.Store.Put(ctx, key, render.ContentType, bytes.NewReader(body)); err != nil {
			telemetry.Warn("resumes.export_cache_write_failed", map[string]any{"resume_id": id, "err": err})
		}
	}
	return out, nil
}

func (s *Service) readCached(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.Store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *Service) purgeExports(ctx context.Context, userID, id int64) {
	if s.Store == nil {
		return
	}
	if err := s.Store.DeletePrefix(ctx, object.ResumePrefix(userID, id)); err != nil {
		telemetry.Warn("resumes.export_purge_failed", map[string]any{"resume_id": id, "err": err})
	}
}

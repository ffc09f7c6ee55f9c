package resumes

import (
	"context"
	"sort"
	"sync"
	"time"

	"resume-builder/resume/model"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	nextID  int64
	resumes map[int64]model.Resume
	now     func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{resumes: make(map[int64]model.Resume), now: time.Now}
}

func (r *MemoryRepo) stamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

func (r *MemoryRepo) Create(ctx context.Context, userID int64, in model.NewResume) (model.Resume, error) {
	if err := ctx.Err(); err != nil {
		return model.Resume{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := r.stamp()
	res := model.Resume{
		ID:            r.nextID,
		UserID:        userID,
		Title:         in.Title,
		Content:       cloneContent(in.Content),
		IsAIGenerated: in.IsAIGenerated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.resumes[res.ID] = res
	return cloneResume(res), nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID int64) ([]model.Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Resume, 0)
	for _, res := range r.resumes {
		if res.UserID == userID {
			out = append(out, cloneResume(res))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, id int64) (model.Resume, error) {
	if err := ctx.Err(); err != nil {
		return model.Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resumes[id]
	if !ok || res.UserID != userID {
		return model.Resume{}, ErrNotFound
	}
	return cloneResume(res), nil
}

func (r *MemoryRepo) Update(ctx context.Context, userID, id int64, patch model.PartialResume) (model.Resume, error) {
	if err := ctx.Err(); err != nil {
		return model.Resume{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.resumes[id]
	if !ok || res.UserID != userID {
		return model.Resume{}, ErrNotFound
	}
	if patch.Title != nil {
		res.Title = *patch.Title
	}
	if patch.Content != nil {
		res.Content = cloneContent(patch.Content.Apply(res.Content))
	}
	if patch.IsAIGenerated != nil {
		res.IsAIGenerated = *patch.IsAIGenerated
	}
	now := r.stamp()
	if !now.After(res.UpdatedAt) {
		now = res.UpdatedAt.Add(time.Microsecond)
	}
	res.UpdatedAt = now
	r.resumes[id] = res
	return cloneResume(res), nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.resumes[id]
	if !ok || res.UserID != userID {
		return ErrNotFound
	}
	delete(r.resumes, id)
	return nil
}

func cloneResume(res model.Resume) model.Resume {
	res.Content = cloneContent(res.Content)
	return res
}

// cloneContent copies the slices so callers never alias stored state.
func cloneContent(c model.ResumeContent) model.ResumeContent {
	out := c
	out.Experience = append([]model.Experience(nil), c.Experience...)
	out.Education = append([]model.Education(nil), c.Education...)
	out.Skills = append([]string(nil), c.Skills...)
	out.Projects = make([]model.Project, len(c.Projects))
	for i, p := range c.Projects {
		p.TechStack = append([]string(nil), p.TechStack...)
		out.Projects[i] = p
	}
	return out
}

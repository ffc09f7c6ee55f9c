package resumes

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"resume-builder/internal/shared/storage/object/local"
	"resume-builder/resume/model"
	"resume-builder/resume/schema"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(NewMemoryRepo(), local.New(t.TempDir()))
	svc.Render = func(res model.Resume) ([]byte, error) {
		return []byte("%PDF-" + res.Title), nil
	}
	return svc
}

func minimalContent() model.ResumeContent {
	return model.ResumeContent{
		PersonalInfo: model.PersonalInfo{FullName: "Ada"},
		Experience: []model.Experience{
			{Role: "Engineer", Company: "Acme", StartDate: "2020", Current: true, Description: "Shipped"},
		},
		Skills: []string{"Go"},
	}
}

func TestServiceCreateAndGet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, 1, model.NewResume{Title: "Backend", Content: minimalContent()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.ID == 0 || res.UserID != 1 || res.IsAIGenerated {
		t.Fatalf("unexpected resume %+v", res)
	}
	got, err := svc.Get(ctx, 1, res.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Backend" || len(got.Content.Skills) != 1 {
		t.Fatalf("unexpected resume %+v", got)
	}
}

func TestServiceCreateRejectsMissingEndDate(t *testing.T) {
	svc := newTestService(t)
	content := minimalContent()
	content.Experience[0].Current = false

	_, err := svc.Create(context.Background(), 1, model.NewResume{Title: "x", Content: content})
	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Violations[0].Path != "experience[0].endDate" {
		t.Fatalf("unexpected violations %v", verr.Violations)
	}
}

func TestServiceSanitizesDescriptions(t *testing.T) {
	svc := newTestService(t)
	content := minimalContent()
	content.Experience[0].Description = `<b>Led</b><script>alert(1)</script><a href="javascript:x">y</a>`
	content.Projects = []model.Project{{Name: "p", Description: `<img src=x onerror=alert(1)>ok`}}

	res, err := svc.Create(context.Background(), 1, model.NewResume{Title: "x", Content: content})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	desc := res.Content.Experience[0].Description
	if !strings.Contains(desc, "<b>Led</b>") || strings.Contains(desc, "script") || strings.Contains(desc, "javascript:") {
		t.Fatalf("unexpected sanitized description %q", desc)
	}
	if strings.Contains(res.Content.Projects[0].Description, "onerror") {
		t.Fatalf("event handler survived: %q", res.Content.Projects[0].Description)
	}
}

func TestServiceOwnershipIsIndistinguishableFromMissing(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	res, err := svc.Create(ctx, 1, model.NewResume{Title: "mine", Content: minimalContent()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	title := "stolen"

	_, foreignGet := svc.Get(ctx, 2, res.ID)
	_, missingGet := svc.Get(ctx, 2, res.ID+100)
	_, foreignUpdate := svc.Update(ctx, 2, res.ID, model.PartialResume{Title: &title})
	foreignDelete := svc.Delete(ctx, 2, res.ID)
	_, foreignExport := svc.Export(ctx, 2, res.ID)

	for name, err := range map[string]error{
		"get":     foreignGet,
		"missing": missingGet,
		"update":  foreignUpdate,
		"delete":  foreignDelete,
		"export":  foreignExport,
	} {
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: expected ErrNotFound, got %v", name, err)
		}
	}
	got, err := svc.Get(ctx, 1, res.ID)
	if err != nil || got.Title != "mine" {
		t.Fatalf("owner's resume changed: %+v %v", got, err)
	}
}

func TestServicePartialUpdateMergesTopLevelSections(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	res, err := svc.Create(ctx, 1, model.NewResume{Title: "x", Content: minimalContent()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	skills := []string{"Go", "Rust", "Go"}

	updated, err := svc.Update(ctx, 1, res.ID, model.PartialResume{Content: &model.ContentPatch{Skills: &skills}})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(updated.Content.Experience) != 1 || updated.Content.Experience[0].Company != "Acme" {
		t.Fatalf("experience should be untouched, got %+v", updated.Content.Experience)
	}
	if strings.Join(updated.Content.Skills, ",") != "Go,Rust,Go" {
		t.Fatalf("unexpected skills %v", updated.Content.Skills)
	}
	if updated.Title != "x" {
		t.Fatalf("title should be untouched, got %q", updated.Title)
	}
}

func TestServiceUpdateRevalidatesMergedContent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	res, err := svc.Create(ctx, 1, model.NewResume{Title: "x", Content: minimalContent()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	bad := []model.Experience{{Role: "r", Company: "c", StartDate: "2020"}}

	_, err = svc.Update(ctx, 1, res.ID, model.PartialResume{Content: &model.ContentPatch{Experience: &bad}})
	if !errors.Is(err, schema.ErrInvalid) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	got, _ := svc.Get(ctx, 1, res.ID)
	if !got.Content.Experience[0].Current {
		t.Fatalf("stored content changed after rejected update")
	}
}

func TestServiceUpdateAlwaysAdvancesUpdatedAt(t *testing.T) {
	repo := NewMemoryRepo()
	fixed := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }
	svc := &Service{Repo: repo}
	ctx := context.Background()

	res, err := svc.Create(ctx, 1, model.NewResume{Title: "x", Content: minimalContent()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	prev := res.UpdatedAt
	for i := 0; i < 3; i++ {
		updated, err := svc.Update(ctx, 1, res.ID, model.PartialResume{})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if !updated.UpdatedAt.After(prev) {
			t.Fatalf("updatedAt did not advance: %v <= %v", updated.UpdatedAt, prev)
		}
		prev = updated.UpdatedAt
	}
}

func TestServiceDeleteTwice(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	res, err := svc.Create(ctx, 1, model.NewResume{Title: "x", Content: minimalContent()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, 1, res.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.Delete(ctx, 1, res.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestServiceExportCachesPerRevision(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	renders := 0
	svc.Render = func(res model.Resume) ([]byte, error) {
		renders++
		return []byte("%PDF-" + res.Title), nil
	}
	res, err := svc.Create(ctx, 1, model.NewResume{Title: "Ada / CV", Content: minimalContent()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, err := svc.Export(ctx, 1, res.ID)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if first.Cached || first.FileName != "Ada _ CV.pdf" {
		t.Fatalf("unexpected first export %+v", first)
	}
	second, err := svc.Export(ctx, 1, res.ID)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !second.Cached || string(second.Body) != string(first.Body) || renders != 1 {
		t.Fatalf("expected cached export, renders=%d", renders)
	}

	title := "Renamed"
	if _, err := svc.Update(ctx, 1, res.ID, model.PartialResume{Title: &title}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	third, err := svc.Export(ctx, 1, res.ID)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if third.Cached || string(third.Body) != "%PDF-Renamed" || renders != 2 {
		t.Fatalf("expected fresh render after update, got %+v", third)
	}
}

func TestServiceConcurrentCreatesGetDistinctIDs(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	var wg sync.WaitGroup
	ids := make(chan int64, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Create(ctx, 1, model.NewResume{Title: "x", Content: minimalContent()})
			if err == nil {
				ids <- res.ID
			}
		}()
	}
	wg.Wait()
	close(ids)
	seen := map[int64]bool{}
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	items, _ := svc.List(ctx, 1)
	if len(items) != 20 || len(seen) != 20 {
		t.Fatalf("expected 20 resumes, got %d", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].ID >= items[i].ID {
			t.Fatalf("list not ordered by id")
		}
	}
}

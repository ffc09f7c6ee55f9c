package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"resume-builder/internal/bootstrap"
	"resume-builder/internal/llm"
	"resume-builder/internal/shared/config"
	localstore "resume-builder/internal/shared/storage/object/local"
	"resume-builder/resume/contract"
	"resume-builder/resume/model"
	"resume-builder/resume/schema"
)

const generated = `{"personalInfo":{"fullName":"","email":"","phone":"","bio":"Backend engineer"},
"experience":[],"education":[],"skills":["Go","SQL"],"projects":[]}`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Config{
		Env:               "test",
		JWTSecret:         "client-test-secret",
		SessionTTL:        time.Hour,
		LLMProvider:       "none",
		GenerationTimeout: time.Second,
		GenerationRate:    100,
		GenerationBurst:   100,
	}
	completer := llm.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		return generated, nil
	})
	app, err := bootstrap.Build(cfg, bootstrap.WithLLM(completer), bootstrap.WithStore(localstore.New(t.TempDir())))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	srv := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		srv.Close()
		app.Close()
	})
	return srv
}

func newClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(baseURL, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func sampleContent() model.ResumeContent {
	return model.ResumeContent{
		PersonalInfo: model.PersonalInfo{FullName: "Grace", Email: "g@x.com"},
		Experience:   []model.Experience{{Role: "Engineer", Company: "Navy", StartDate: "1944", Current: true}},
		Skills:       []string{"COBOL"},
	}
}

func TestResumeLifecycle(t *testing.T) {
	srv := newServer(t)
	c := newClient(t, srv.URL)
	ctx := context.Background()

	if me, err := c.CurrentUser(ctx); err != nil || me != nil {
		t.Fatalf("anonymous CurrentUser = %v, %v", me, err)
	}
	user, err := c.Register(ctx, model.NewUser{Username: "grace", Password: "hopper", Name: "Grace"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if c.SessionToken() == "" {
		t.Fatalf("expected session cookie after register")
	}
	me, err := c.CurrentUser(ctx)
	if err != nil || me == nil || me.ID != user.ID {
		t.Fatalf("CurrentUser = %v, %v", me, err)
	}

	created, err := c.CreateResume(ctx, model.NewResume{Title: "CV", Content: sampleContent()})
	if err != nil {
		t.Fatalf("CreateResume: %v", err)
	}
	if created.UserID != user.ID || created.IsAIGenerated {
		t.Fatalf("unexpected resume: %+v", created)
	}

	title := "CV 2"
	skills := []string{"COBOL", "FLOW-MATIC"}
	updated, err := c.UpdateResume(ctx, created.ID, model.PartialResume{
		Title:   &title,
		Content: &model.ContentPatch{Skills: &skills},
	})
	if err != nil {
		t.Fatalf("UpdateResume: %v", err)
	}
	if updated.Title != "CV 2" || len(updated.Content.Skills) != 2 || updated.Content.PersonalInfo.FullName != "Grace" {
		t.Fatalf("unexpected update: %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("updatedAt did not advance")
	}

	list, err := c.ListResumes(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListResumes = %v, %v", list, err)
	}

	doc, err := c.ExportResume(ctx, created.ID)
	if err != nil {
		t.Fatalf("ExportResume: %v", err)
	}
	if doc.ContentType != "application/pdf" || doc.FileName != "CV 2.pdf" || !bytes.HasPrefix(doc.Body, []byte("%PDF")) {
		t.Fatalf("unexpected document: %s %q %d bytes", doc.ContentType, doc.FileName, len(doc.Body))
	}

	if err := c.DeleteResume(ctx, created.ID); err != nil {
		t.Fatalf("DeleteResume: %v", err)
	}
	if _, err := c.GetResume(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := c.ListResumes(ctx); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after logout, got %v", err)
	}
}

func TestBearerTokenCarriesSession(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	first := newClient(t, srv.URL)
	if _, err := first.Register(ctx, model.NewUser{Username: "ada", Password: "pw", Name: "Ada"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	second, err := New(srv.URL, &http.Client{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	second.SetSessionToken(first.SessionToken())
	me, err := second.CurrentUser(ctx)
	if err != nil || me == nil || me.Username != "ada" {
		t.Fatalf("CurrentUser via bearer = %v, %v", me, err)
	}
}

func TestGenerateResume(t *testing.T) {
	srv := newServer(t)
	c := newClient(t, srv.URL)
	ctx := context.Background()
	if _, err := c.Register(ctx, model.NewUser{Username: "lin", Password: "pw", Name: "Lin"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	content, err := c.GenerateResume(ctx, model.GenerationRequest{JobRole: "Backend", ExperienceLevel: model.LevelFresher})
	if err != nil {
		t.Fatalf("GenerateResume: %v", err)
	}
	if content.PersonalInfo.Bio != "Backend engineer" || len(content.Skills) != 2 {
		t.Fatalf("unexpected content: %+v", content)
	}
}

func TestInvalidInputIsNotSent(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := newClient(t, srv.URL)

	_, err := c.Register(context.Background(), model.NewUser{Username: "", Password: "pw", Name: "x"})
	if !errors.Is(err, schema.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	_, err = c.GenerateResume(context.Background(), model.GenerationRequest{JobRole: "Dev", ExperienceLevel: "Senior"})
	if !errors.Is(err, schema.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for bad level, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("invalid input reached the server %d times", hits.Load())
	}
}

func TestResponsesAreValidated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/user":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":1,"username":"a","name":"A","password":"hash"}`))
		case "/api/resumes":
			w.WriteHeader(http.StatusTeapot)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	c := newClient(t, srv.URL)

	if _, err := c.CurrentUser(context.Background()); !errors.Is(err, schema.ErrInvalid) {
		t.Fatalf("expected leaky user to be rejected, got %v", err)
	}
	if _, err := c.ListResumes(context.Background()); !errors.Is(err, contract.ErrUndeclaredStatus) {
		t.Fatalf("expected undeclared status, got %v", err)
	}
}

func TestNewRejectsRelativeURL(t *testing.T) {
	if _, err := New("localhost:8080", nil); err == nil {
		t.Fatalf("expected error for URL without scheme")
	}
}

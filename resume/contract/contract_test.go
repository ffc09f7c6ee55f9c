package contract

import (
	"errors"
	"net/http"
	"testing"

	"resume-builder/resume/model"
	"resume-builder/resume/schema"
)

func TestBuildPath(t *testing.T) {
	got, err := BuildPath("/resumes/:id/pdf", map[string]string{"id": "42"})
	if err != nil {
		t.Fatalf("build path: %v", err)
	}
	if got != "/resumes/42/pdf" {
		t.Fatalf("expected /resumes/42/pdf, got %s", got)
	}

	got, err = BuildPath("/resumes/:id", map[string]string{"id": "a/b"})
	if err != nil {
		t.Fatalf("build path: %v", err)
	}
	if got != "/resumes/a%2Fb" {
		t.Fatalf("expected escaped segment, got %s", got)
	}
}

func TestBuildPathMissingParam(t *testing.T) {
	if _, err := BuildPath("/resumes/:id", nil); !errors.Is(err, ErrMissingParam) {
		t.Fatalf("expected ErrMissingParam, got %v", err)
	}
	if _, err := BuildPath("/resumes/:id", map[string]string{"id": ""}); !errors.Is(err, ErrMissingParam) {
		t.Fatalf("expected ErrMissingParam for empty value, got %v", err)
	}
}

func TestRouteURL(t *testing.T) {
	u, err := GetResume.URL(map[string]string{"id": "7"})
	if err != nil {
		t.Fatalf("url: %v", err)
	}
	if u != "/api/resumes/7" {
		t.Fatalf("unexpected url %s", u)
	}
}

func TestEveryRouteDeclaresSuccessAndInternalError(t *testing.T) {
	seen := map[string]bool{}
	for _, r := range All() {
		key := r.Method + " " + r.Path
		if seen[key] {
			t.Fatalf("duplicate route %s", key)
		}
		seen[key] = true
		if !r.Declares(http.StatusInternalServerError) {
			t.Fatalf("%s does not declare 500", r)
		}
		success := false
		for status := range r.Responses {
			if status >= 200 && status < 300 {
				success = true
			}
		}
		if !success {
			t.Fatalf("%s declares no success status", r)
		}
	}
}

func TestEncodeResponseUndeclaredStatus(t *testing.T) {
	_, err := EncodeResponse(CurrentUser, http.StatusTeapot, nil)
	if !errors.Is(err, ErrUndeclaredStatus) {
		t.Fatalf("expected ErrUndeclaredStatus, got %v", err)
	}
}

func TestCurrentUserEncodesNull(t *testing.T) {
	buf, err := EncodeResponse(CurrentUser, http.StatusOK, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(buf) != "null" {
		t.Fatalf("expected null, got %s", buf)
	}
	user, err := DecodeResponse[*model.User](CurrentUser, http.StatusOK, buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil user, got %+v", user)
	}
}

func TestEmptyBodyStatus(t *testing.T) {
	buf, err := EncodeResponse(DeleteResume, http.StatusNoContent, nil)
	if err != nil || buf != nil {
		t.Fatalf("expected empty body, got %q %v", buf, err)
	}
}

func TestDecodeInputValidates(t *testing.T) {
	_, err := DecodeInput[model.NewUser](Register, []byte(`{"username":"alice"}`))
	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Violations) != 2 {
		t.Fatalf("expected password and name violations, got %v", verr.Violations)
	}
}

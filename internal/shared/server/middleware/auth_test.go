package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/auth"
)

func newSessions(t *testing.T) *auth.Sessions {
	t.Helper()
	s, err := auth.NewSessions("middleware-secret", "dev", time.Hour, nil)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	return s
}

func identityRouter(sessions SessionVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(sessions))
	router.GET("/whoami", func(c *gin.Context) {
		id, ok := UserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "ok": ok})
	})
	router.GET("/private", func(c *gin.Context) {
		if _, ok := RequireUser(c); !ok {
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func TestAuthReadsBearerAndCookie(t *testing.T) {
	sessions := newSessions(t)
	token, _, _ := sessions.Issue(11)
	router := identityRouter(sessions)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("bearer: expected 200, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("cookie: expected 200, got %d", resp.Code)
	}
}

func TestAuthTreatsBadTokensAsAnonymous(t *testing.T) {
	sessions := newSessions(t)
	token, _, _ := sessions.Issue(5)
	if err := sessions.Revoke(context.Background(), token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	router := identityRouter(sessions)

	cases := []struct {
		name   string
		header string
	}{
		{"none", ""},
		{"malformed", "Bearer not-a-jwt"},
		{"wrong scheme", "Basic abc"},
		{"revoked", "Bearer " + token},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", resp.Code)
			}

			req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp = httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != http.StatusOK {
				t.Fatalf("anonymous routes should pass through, got %d", resp.Code)
			}
		})
	}
}

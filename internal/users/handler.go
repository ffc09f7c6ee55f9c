package users

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/contract"
	"resume-builder/resume/model"
	"resume-builder/resume/schema"
)

// SessionIssuer issues and revokes session tokens.
type SessionIssuer interface {
	Issue(userID int64) (string, auth.Session, error)
	Revoke(ctx context.Context, token string) error
}

type Handler struct {
	Svc          *Service
	Sessions     SessionIssuer
	CookieSecure bool
}

func NewHandler(svc *Service, sessions SessionIssuer, cookieSecure bool) *Handler {
	return &Handler{Svc: svc, Sessions: sessions, CookieSecure: cookieSecure}
}

func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.Handle(contract.Register.Method, contract.Register.Path, h.register)
	rg.Handle(contract.Login.Method, contract.Login.Path, h.login)
	rg.Handle(contract.Logout.Method, contract.Logout.Path, h.logout)
	rg.Handle(contract.CurrentUser.Method, contract.CurrentUser.Path, h.current)
}

func (h *Handler) register(c *gin.Context) {
	in, ok := respond.Bind[model.NewUser](c, contract.Register)
	if !ok {
		return
	}
	user, err := h.Svc.Register(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			respond.Error(c, http.StatusConflict, "username_taken", "Username already exists", nil)
		case errors.Is(err, schema.ErrInvalid):
			respond.Validation(c, err)
		default:
			respond.InternalErr(c, "users.register_failed", err)
		}
		return
	}
	if !h.startSession(c, user.ID) {
		return
	}
	telemetry.Info("users.registered", map[string]any{"user_id": user.ID})
	respond.Contract(c, contract.Register, http.StatusCreated, user)
}

func (h *Handler) login(c *gin.Context) {
	in, ok := respond.Bind[model.Credentials](c, contract.Login)
	if !ok {
		return
	}
	user, err := h.Svc.Authenticate(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password", nil)
			return
		}
		respond.InternalErr(c, "users.login_failed", err)
		return
	}
	if !h.startSession(c, user.ID) {
		return
	}
	respond.Contract(c, contract.Login, http.StatusOK, user)
}

func (h *Handler) logout(c *gin.Context) {
	if token := middleware.TokenFromRequest(c); token != "" {
		if err := h.Sessions.Revoke(c.Request.Context(), token); err != nil {
			telemetry.Error("users.logout_revoke_failed", map[string]any{"err": err})
		}
	}
	h.setCookie(c, "", -1)
	respond.Contract(c, contract.Logout, http.StatusOK, nil)
}

func (h *Handler) current(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Contract(c, contract.CurrentUser, http.StatusOK, nil)
		return
	}
	user, err := h.Svc.GetByID(c.Request.Context(), userID)
	if errors.Is(err, ErrNotFound) {
		respond.Contract(c, contract.CurrentUser, http.StatusOK, nil)
		return
	}
	if err != nil {
		respond.InternalErr(c, "users.current_failed", err)
		return
	}
	respond.Contract(c, contract.CurrentUser, http.StatusOK, user)
}

func (h *Handler) startSession(c *gin.Context, userID int64) bool {
	token, sess, err := h.Sessions.Issue(userID)
	if err != nil {
		respond.InternalErr(c, "users.session_issue_failed", err)
		return false
	}
	h.setCookie(c, token, int(time.Until(sess.ExpiresAt).Seconds()))
	return true
}

func (h *Handler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, value, maxAge, "/", "", h.CookieSecure, true)
}

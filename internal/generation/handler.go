package generation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/resume/contract"
	"resume-builder/resume/model"
	"resume-builder/resume/schema"
)

// RateGroup names the rate-limit bucket shared by generation calls.
const RateGroup = "GENERATION"

type Handler struct {
	Svc     *Service
	Limit   middleware.RateLimitRule
	Limiter *middleware.RateLimiter
}

func NewHandler(svc *Service, limit middleware.RateLimitRule, limiter *middleware.RateLimiter) *Handler {
	return &Handler{Svc: svc, Limit: limit, Limiter: limiter}
}

func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.Handle(contract.GenerateResume.Method, contract.GenerateResume.Path,
		requireUser, middleware.RateLimit(RateGroup, h.Limit, h.Limiter), h.generate)
}

func requireUser(c *gin.Context) {
	if _, ok := middleware.RequireUser(c); ok {
		c.Next()
	}
}

func (h *Handler) generate(c *gin.Context) {
	req, ok := respond.Bind[model.GenerationRequest](c, contract.GenerateResume)
	if !ok {
		return
	}
	content, outcome, err := h.Svc.Generate(c.Request.Context(), req)
	c.Set("generationOutcome", string(outcome))
	if err != nil {
		switch {
		case errors.Is(err, ErrGeneration):
			respond.Error(c, http.StatusInternalServerError, "generation_failed", "Could not generate resume content. Please try again.", nil)
		case errors.Is(err, schema.ErrInvalid):
			respond.Validation(c, err)
		default:
			respond.InternalErr(c, "generation.failed", err)
		}
		return
	}
	respond.Contract(c, contract.GenerateResume, http.StatusOK, content)
}

package resumes

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/resume/contract"
	"resume-builder/resume/model"
	"resume-builder/resume/schema"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.Handle(contract.ListResumes.Method, contract.ListResumes.Path, h.list)
	rg.Handle(contract.CreateResume.Method, contract.CreateResume.Path, h.create)
	rg.Handle(contract.GetResume.Method, contract.GetResume.Path, h.get)
	rg.Handle(contract.UpdateResume.Method, contract.UpdateResume.Path, h.update)
	rg.Handle(contract.DeleteResume.Method, contract.DeleteResume.Path, h.delete)
	rg.Handle(contract.ExportResume.Method, contract.ExportResume.Path, h.export)
}

func (h *Handler) list(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	items, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		respond.InternalErr(c, "resumes.list_failed", err)
		return
	}
	respond.Contract(c, contract.ListResumes, http.StatusOK, items)
}

func (h *Handler) create(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	in, ok := respond.Bind[model.NewResume](c, contract.CreateResume)
	if !ok {
		return
	}
	res, err := h.Svc.Create(c.Request.Context(), userID, in)
	if err != nil {
		h.fail(c, "resumes.create_failed", err)
		return
	}
	c.Set("resumeId", res.ID)
	respond.Contract(c, contract.CreateResume, http.StatusCreated, res)
}

func (h *Handler) get(c *gin.Context) {
	userID, id, ok := h.target(c)
	if !ok {
		return
	}
	res, err := h.Svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.fail(c, "resumes.get_failed", err)
		return
	}
	respond.Contract(c, contract.GetResume, http.StatusOK, res)
}

func (h *Handler) update(c *gin.Context) {
	userID, id, ok := h.target(c)
	if !ok {
		return
	}
	patch, ok := respond.Bind[model.PartialResume](c, contract.UpdateResume)
	if !ok {
		return
	}
	res, err := h.Svc.Update(c.Request.Context(), userID, id, patch)
	if err != nil {
		h.fail(c, "resumes.update_failed", err)
		return
	}
	respond.Contract(c, contract.UpdateResume, http.StatusOK, res)
}

func (h *Handler) delete(c *gin.Context) {
	userID, id, ok := h.target(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), userID, id); err != nil {
		h.fail(c, "resumes.delete_failed", err)
		return
	}
	respond.Contract(c, contract.DeleteResume, http.StatusNoContent, nil)
}

func (h *Handler) export(c *gin.Context) {
	userID, id, ok := h.target(c)
	if !ok {
		return
	}
	out, err := h.Svc.Export(c.Request.Context(), userID, id)
	if err != nil {
		h.fail(c, "resumes.export_failed", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.FileName))
	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, out.ContentType, out.Body)
}

// target resolves the caller and the :id parameter. Authentication is checked first
// so anonymous callers never learn whether an id is well formed.
func (h *Handler) target(c *gin.Context) (int64, int64, bool) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return 0, 0, false
	}
	id, err := parseID(c.Param("id"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid resume id", []schema.Violation{
			{Path: "id", Reason: "must be a positive integer"},
		})
		return 0, 0, false
	}
	c.Set("resumeId", id)
	return userID, id, true
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidInput
	}
	return id, nil
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Resume not found", nil)
	case errors.Is(err, schema.ErrInvalid):
		respond.Validation(c, err)
	default:
		respond.InternalErr(c, op, err)
	}
}

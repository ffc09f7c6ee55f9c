package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/contract"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

// Contract validates payload against the route's declared shape for status and writes it.
// A payload that does not conform is never sent; the caller gets a 500 instead.
func Contract(c *gin.Context, route contract.Route, status int, payload any) {
	body, err := contract.EncodeResponse(route, status, payload)
	if err != nil {
		telemetry.Error("http.contract_violation", map[string]any{
			"request_id": c.GetString("requestId"),
			"route":      route.String(),
			"status":     status,
			"err":        err,
		})
		Internal(c)
		return
	}
	if body == nil {
		c.Status(status)
		c.Writer.WriteHeaderNow()
		return
	}
	c.Data(status, "application/json; charset=utf-8", body)
}

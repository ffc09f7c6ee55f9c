package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/schema"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details any) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID, ok := c.Get("userId"); ok {
		fields["user_id"] = userID
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Info("http.error", fields)
	}

	body, err := schema.Encode(schema.ErrorResponse, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
	if err != nil {
		telemetry.Error("http.contract_violation", map[string]any{
			"request_id": c.GetString("requestId"),
			"status":     status,
			"code":       code,
			"err":        err,
		})
		status, body = http.StatusInternalServerError, internalBody
	}
	c.Data(status, "application/json; charset=utf-8", body)
	c.Abort()
}

// internalBody is the fallback when an error envelope itself fails validation.
var internalBody = []byte(`{"error":{"code":"internal","message":"Unexpected server error"}}`)

// Validation sends 400 with the violation list when err carries one.
func Validation(c *gin.Context, err error) {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		Error(c, http.StatusBadRequest, "validation_error", "Request body failed validation", verr.Violations)
		return
	}
	Error(c, http.StatusBadRequest, "validation_error", "Request body failed validation", nil)
}

// Internal sends a generic 500. The cause is logged, never returned.
func Internal(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
}

// InternalErr logs err and sends a generic 500.
func InternalErr(c *gin.Context, op string, err error) {
	telemetry.Error(op, map[string]any{
		"request_id": c.GetString("requestId"),
		"err":        err,
	})
	Internal(c)
}

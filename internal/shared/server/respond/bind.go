package respond

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/resume/contract"
)

// MaxBodyBytes caps request bodies read by Bind.
const MaxBodyBytes = 1 << 20

// Bind reads the request body and validates it against the route's input shape.
// On failure it writes 400 and returns false.
func Bind[T any](c *gin.Context, route contract.Route) (T, bool) {
	var zero T
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(c, http.StatusBadRequest, "validation_error", "Request body too large", nil)
			return zero, false
		}
		Error(c, http.StatusBadRequest, "validation_error", "Unable to read request body", nil)
		return zero, false
	}
	v, err := contract.DecodeInput[T](route, body)
	if err != nil {
		Validation(c, err)
		return zero, false
	}
	return v, true
}

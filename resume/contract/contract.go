package contract

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"resume-builder/resume/schema"
)

// BasePath prefixes every route path.
const BasePath = "/api"

// ErrUndeclaredStatus is returned when a status has no declared response for a route.
var ErrUndeclaredStatus = errors.New("contract: undeclared response status")

// ErrMissingParam is returned by BuildPath when a placeholder has no value.
var ErrMissingParam = errors.New("contract: missing path parameter")

// Route binds a method and path template to its input and per-status output shapes.
// A nil Input means the route takes no body. A nil response shape means an empty body.
type Route struct {
	Name      string
	Method    string
	Path      string
	Input     *schema.Shape
	Responses map[int]*schema.Shape
}

// Declares reports whether status is part of the route's contract.
func (r Route) Declares(status int) bool {
	_, ok := r.Responses[status]
	return ok
}

// Response returns the shape for status, or ErrUndeclaredStatus.
func (r Route) Response(status int) (*schema.Shape, error) {
	s, ok := r.Responses[status]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s returned %d", ErrUndeclaredStatus, r.Method, r.Path, status)
	}
	return s, nil
}

// URL expands the path template and prefixes BasePath.
func (r Route) URL(params map[string]string) (string, error) {
	p, err := BuildPath(r.Path, params)
	if err != nil {
		return "", err
	}
	return BasePath + p, nil
}

func (r Route) String() string { return r.Method + " " + BasePath + r.Path }

// BuildPath substitutes :name segments in template with escaped values from params.
func BuildPath(template string, params map[string]string) (string, error) {
	segments := strings.Split(template, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		name := seg[1:]
		value, ok := params[name]
		if !ok || value == "" {
			return "", fmt.Errorf("%w %q in %s", ErrMissingParam, name, template)
		}
		segments[i] = url.PathEscape(value)
	}
	return strings.Join(segments, "/"), nil
}

// DecodeInput validates a request body against the route's input shape.
func DecodeInput[T any](r Route, body []byte) (T, error) {
	var zero T
	if r.Input == nil {
		return zero, fmt.Errorf("contract: %s takes no input", r)
	}
	return schema.Decode[T](r.Input, body)
}

// EncodeInput serializes v as the route's request body after validating it.
func EncodeInput(r Route, v any) ([]byte, error) {
	if r.Input == nil {
		return nil, nil
	}
	return schema.Encode(r.Input, v)
}

// EncodeResponse serializes v for status after validating it. Empty-body statuses return nil.
func EncodeResponse(r Route, status int, v any) ([]byte, error) {
	s, err := r.Response(status)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}
	return schema.Encode(s, v)
}

// DecodeResponse validates a response body for status and converts it into T.
func DecodeResponse[T any](r Route, status int, body []byte) (T, error) {
	var zero T
	s, err := r.Response(status)
	if err != nil {
		return zero, err
	}
	if s == nil {
		return zero, nil
	}
	return schema.Decode[T](s, body)
}

// responses pairs statuses with shapes. Every route may also answer 500 with the error envelope.
func responses(pairs ...any) map[int]*schema.Shape {
	out := map[int]*schema.Shape{http.StatusInternalServerError: schema.ErrorResponse}
	for i := 0; i+1 < len(pairs); i += 2 {
		out[pairs[i].(int)], _ = pairs[i+1].(*schema.Shape)
	}
	return out
}

var errBody = schema.ErrorResponse

var (
	Register = Route{
		Name:   "register",
		Method: http.MethodPost,
		Path:   "/register",
		Input:  schema.NewUser,
		Responses: responses(
			http.StatusCreated, schema.User,
			http.StatusBadRequest, errBody,
			http.StatusConflict, errBody,
		),
	}
	Login = Route{
		Name:   "login",
		Method: http.MethodPost,
		Path:   "/login",
		Input:  schema.Credentials,
		Responses: responses(
			http.StatusOK, schema.User,
			http.StatusBadRequest, errBody,
			http.StatusUnauthorized, errBody,
		),
	}
	Logout = Route{
		Name:      "logout",
		Method:    http.MethodPost,
		Path:      "/logout",
		Responses: responses(http.StatusOK, nil),
	}
	CurrentUser = Route{
		Name:      "currentUser",
		Method:    http.MethodGet,
		Path:      "/user",
		Responses: responses(http.StatusOK, schema.UserOrNull),
	}
	ListResumes = Route{
		Name:   "listResumes",
		Method: http.MethodGet,
		Path:   "/resumes",
		Responses: responses(
			http.StatusOK, schema.Resumes,
			http.StatusUnauthorized, errBody,
		),
	}
	GetResume = Route{
		Name:   "getResume",
		Method: http.MethodGet,
		Path:   "/resumes/:id",
		Responses: responses(
			http.StatusOK, schema.Resume,
			http.StatusBadRequest, errBody,
			http.StatusUnauthorized, errBody,
			http.StatusNotFound, errBody,
		),
	}
	CreateResume = Route{
		Name:   "createResume",
		Method: http.MethodPost,
		Path:   "/resumes",
		Input:  schema.NewResume,
		Responses: responses(
			http.StatusCreated, schema.Resume,
			http.StatusBadRequest, errBody,
			http.StatusUnauthorized, errBody,
		),
	}
	UpdateResume = Route{
		Name:   "updateResume",
		Method: http.MethodPut,
		Path:   "/resumes/:id",
		Input:  schema.PartialResume,
		Responses: responses(
			http.StatusOK, schema.Resume,
			http.StatusBadRequest, errBody,
			http.StatusUnauthorized, errBody,
			http.StatusNotFound, errBody,
		),
	}
	DeleteResume = Route{
		Name:   "deleteResume",
		Method: http.MethodDelete,
		Path:   "/resumes/:id",
		Responses: responses(
			http.StatusNoContent, nil,
			http.StatusBadRequest, errBody,
			http.StatusUnauthorized, errBody,
			http.StatusNotFound, errBody,
		),
	}
	GenerateResume = Route{
		Name:   "generateResume",
		Method: http.MethodPost,
		Path:   "/ai/generate-resume",
		Input:  schema.GenerationRequest,
		Responses: responses(
			http.StatusOK, schema.ResumeContent,
			http.StatusBadRequest, errBody,
			http.StatusUnauthorized, errBody,
			http.StatusTooManyRequests, errBody,
		),
	}
	// ExportResume streams application/pdf on success; its 200 body is not JSON.
	ExportResume = Route{
		Name:   "exportResume",
		Method: http.MethodGet,
		Path:   "/resumes/:id/pdf",
		Responses: responses(
			http.StatusOK, nil,
			http.StatusBadRequest, errBody,
			http.StatusUnauthorized, errBody,
			http.StatusNotFound, errBody,
		),
	}
)

// All lists every route in registration order.
func All() []Route {
	return []Route{
		Register, Login, Logout, CurrentUser,
		ListResumes, GetResume, CreateResume, UpdateResume, DeleteResume,
		GenerateResume, ExportResume,
	}
}

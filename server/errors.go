package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/mlapp/folio/history"
	"github.com/mlapp/folio/llm"
	"github.com/mlapp/folio/mcp"
)

// Error kinds reported in the "error" field of error bodies.
const (
	kindConfiguration   = "Configuration Error"
	kindMCPClient       = "MCP Client Error"
	kindInvalidArgument = "Invalid Argument"
	kindLLM             = "LLM Error"
	kindNotFound        = "Not Found"
	kindInternal        = "Internal Server Error"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// apiError is an error raised by a handler with a fixed status and kind.
type apiError struct {
	status  int
	kind    string
	message string
}

func (e *apiError) Error() string {
	return e.message
}

func badRequest(format string, args ...any) error {
	return &apiError{status: http.StatusBadRequest, kind: kindInvalidArgument, message: fmt.Sprintf(format, args...)}
}

// classify maps an error to its HTTP status and kind.
func classify(err error) (int, string) {
	var apiErr *apiError
	var toolErr *mcp.ToolInvocationError

	switch {
	case errors.As(err, &apiErr):
		return apiErr.status, apiErr.kind
	case mcp.IsConfigurationError(err):
		return http.StatusInternalServerError, kindConfiguration
	case errors.As(err, &toolErr):
		if toolErr.IsTransportFailure() {
			return http.StatusBadGateway, kindMCPClient
		}
		return http.StatusBadRequest, kindMCPClient
	case llm.IsUnsupportedProvider(err):
		return http.StatusBadRequest, kindInvalidArgument
	case llm.IsProviderCallError(err):
		return http.StatusBadGateway, kindLLM
	case history.IsValidationError(err):
		return http.StatusBadRequest, kindInvalidArgument
	case history.IsNotFound(err):
		return http.StatusNotFound, kindNotFound
	default:
		return http.StatusInternalServerError, kindInternal
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)

	event := s.logger.Warn()
	if status >= http.StatusInternalServerError {
		event = s.logger.Error()
	}
	event.
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("requestId", middleware.GetReqID(r.Context())).
		Int("status", status).
		Str("kind", kind).
		Err(err).
		Msg("Request failed")

	s.writeJSON(w, status, ErrorResponse{
		Error:   kind,
		Message: err.Error(),
		Status:  status,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// decodeBody decodes a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return badRequest("Request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest("Invalid request body: %v", err)
	}
	return nil
}

// requiredQuery returns a non-blank query parameter.
func requiredQuery(r *http.Request, name string) (string, error) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		return "", badRequest("Required parameter '%s' is missing", name)
	}
	return value, nil
}

// optionalInt parses an optional integer query parameter; nil when absent.
func optionalInt(r *http.Request, name string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, badRequest("Parameter '%s' must be an integer: %q", name, raw)
	}
	return &n, nil
}

// intQuery parses an integer query parameter with a default.
func intQuery(r *http.Request, name string, def int) (int, error) {
	n, err := optionalInt(r, name)
	if err != nil || n == nil {
		return def, err
	}
	return *n, nil
}

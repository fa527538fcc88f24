package web

// errors.go provides unified error response handling for the JSON API.
//
// Handlers call respondError with whatever error bubbled up; the mapping
// here decides the status code and the machine-readable code field, logs
// the technical error with the request ID for correlation, and writes a
// JSON body the client can act on.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/salvageops/yardbook/internal/copart"
	"github.com/salvageops/yardbook/internal/importer"
	"github.com/salvageops/yardbook/internal/store"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`

	// Field and MissingHeader are set when an import aborts because a
	// mapped column is absent from the uploaded file. RequiredHeaders
	// carries the full configured header list so the caller can fix the
	// file or the mapping.
	Field           string   `json:"field,omitempty"`
	MissingHeader   string   `json:"missing_header,omitempty"`
	RequiredHeaders []string `json:"required_headers,omitempty"`
}

// respondError maps err to an HTTP status and JSON body, logging the
// technical error server-side.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	resp := ErrorResponse{Error: err.Error(), Code: "internal_error"}
	status := http.StatusInternalServerError

	var headerErr *importer.HeaderNotFoundError
	switch {
	case errors.As(err, &headerErr):
		status = http.StatusUnprocessableEntity
		resp.Code = "header_not_found"
		resp.Field = headerErr.Field
		resp.MissingHeader = headerErr.Header
		resp.RequiredHeaders = headerErr.Required
	case errors.Is(err, importer.ErrUnknownStage):
		status = http.StatusNotFound
		resp.Code = "unknown_stage"
	case errors.Is(err, importer.ErrNoMapping):
		status = http.StatusConflict
		resp.Code = "stage_not_configured"
	case errors.Is(err, importer.ErrEmptyFile):
		status = http.StatusUnprocessableEntity
		resp.Code = "empty_file"
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
		resp.Code = "not_found"
	case errors.Is(err, copart.ErrLotNotFound):
		status = http.StatusNotFound
		resp.Code = "lot_not_found"
	}

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", resp.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	writeJSON(w, status, resp)
}

// respondBadRequest writes a 400 with a fixed code and message.
func (s *Server) respondBadRequest(w http.ResponseWriter, r *http.Request, code, message string) {
	slog.Warn("bad request",
		"path", r.URL.Path,
		"code", code,
		"request_id", middleware.GetReqID(r.Context()),
	)
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Code: code})
}

// writeJSON encodes v as JSON with the given status code.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

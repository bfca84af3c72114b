// Package handler turns HTTP requests into service calls and service results
// into JSON responses. Handlers never touch the store directly.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/blog-api/internal/apperror"
)

// maxBodyBytes caps request bodies; the largest valid payload is a
// 1000-character post.
const maxBodyBytes = 1 << 20

const msgMalformedJSON = "JSON parse error - the request body is not a valid JSON object."

// ErrorResponse is the body of every non-validation error. Validation errors
// are sent as the bare field → messages map instead.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable kind, e.g. "not_found"
	Message string `json:"message"` // human-readable description
}

// responder writes JSON responses and logs through the handler's logger.
// Every handler embeds one.
type responder struct {
	logger *slog.Logger
}

func (rs responder) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			rs.logger.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps an error to its status code. Errors outside the apperror
// taxonomy are logged and answered with a generic 500 so internals never
// reach the client.
func (rs responder) writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError

	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrValidation):
			fields := appErr.Fields
			if fields == nil {
				fields = map[string][]string{"non_field_errors": {appErr.Message}}
			}
			rs.writeJSON(w, http.StatusBadRequest, fields)
			return
		case errors.Is(err, apperror.ErrUnauthorized):
			w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
			rs.writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: appErr.Message})
			return
		case errors.Is(err, apperror.ErrForbidden):
			rs.writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: appErr.Message})
			return
		case errors.Is(err, apperror.ErrNotFound):
			rs.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: appErr.Message})
			return
		case errors.Is(err, apperror.ErrConflict):
			rs.writeJSON(w, http.StatusConflict, ErrorResponse{Error: "conflict", Message: appErr.Message})
			return
		}
	}

	rs.logger.Error("unhandled error", slog.String("error", err.Error()))
	rs.writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON reads the request body into v. An empty body leaves v at its
// zero value, so every field counts as absent. On malformed input it writes
// a 400 and returns false; the caller must stop. The decoder's own message
// names Go types, so it is logged rather than sent.
func (rs responder) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	message := msgMalformedJSON
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		message = fmt.Sprintf("Request body exceeds %d bytes.", tooBig.Limit)
	}
	rs.logger.Debug("rejected request body", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	rs.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: message})
	return false
}

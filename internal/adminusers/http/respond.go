package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/service"
	"github.com/aussiebroadwan/adminusers/pkg/httpx"
	"github.com/aussiebroadwan/adminusers/pkg/slogx"
)

const maxBodyBytes = 64 << 10

// decodeJSON reads the request body into v, answering 400 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		slogx.FromContext(r.Context()).Debug("invalid request body", "error", err)
		httpx.WriteErrors(w, http.StatusBadRequest, "Invalid JSON in request body")
		return false
	}
	return true
}

// writeServiceError maps the service error taxonomy onto status codes. The
// fallback message is used for internal errors, whose details are logged only.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var status int
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrLocked):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrUnprocessable):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrTooManyRequests):
		status = http.StatusTooManyRequests
	default:
		slogx.FromContext(r.Context()).Error(fallback, "error", err)
		httpx.WriteErrors(w, http.StatusInternalServerError, fallback)
		return
	}
	httpx.WriteErrors(w, status, service.Message(err, fallback))
}

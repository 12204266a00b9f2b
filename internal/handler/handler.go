// Package handler provides HTTP request handlers.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canteen/canteen/internal/handler/dto"
	"github.com/canteen/canteen/internal/middleware"
	"github.com/canteen/canteen/internal/model"
)

// Response messages shared by every resource.
const (
	msgInvalidBody   = "request body must be a JSON object"
	msgBodyTooLarge  = "request body too large"
	msgInternalError = "An internal error occurred"
)

// Handler serves the unauthenticated utility routes.
type Handler struct {
	version string
}

// New creates a new Handler instance.
func New(version string) *Handler {
	return &Handler{version: version}
}

// Hello is the service banner.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"message": "Canteen API",
		"version": h.version,
	}
	writeJSON(w, http.StatusOK, response)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a {"message": ...} error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.ErrorResponse{Message: message})
}

// writeInternalError logs err against the request and hides it from the client.
func writeInternalError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	logger.Error("internal_error",
		"request_id", middleware.GetRequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, msgInternalError)
}

// pathID reads the {id} URL parameter and rejects malformed ids with 400.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if !model.IsValidID(id) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s is not a valid Id", id))
		return "", false
	}
	return id, true
}

// decodeObject reads the request body as a single JSON object. Numbers are
// kept as json.Number so validation can tell integers from decimals.
// On failure the response has been written.
func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return nil, false
		}
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil || payload == nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return nil, false
	}
	if dec.More() {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return nil, false
	}
	return payload, true
}

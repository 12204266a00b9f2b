package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/canteen/canteen/internal/handler/dto"
	"github.com/canteen/canteen/internal/model"
	"github.com/canteen/canteen/internal/service"
	"github.com/canteen/canteen/internal/validation"
)

// AllergenicService is the allergenic behaviour the handler depends on.
type AllergenicService interface {
	Create(ctx context.Context, input service.AllergenicInput) (*model.Allergenic, error)
	Get(ctx context.Context, id string) (*model.Allergenic, error)
	List(ctx context.Context) ([]*model.Allergenic, error)
	Update(ctx context.Context, id string, input service.AllergenicInput) (*model.Allergenic, error)
	Delete(ctx context.Context, id string) (*model.Allergenic, error)
}

// AllergenicHandler handles HTTP requests for allergenics.
type AllergenicHandler struct {
	svc    AllergenicService
	logger *slog.Logger
}

// NewAllergenicHandler creates a new AllergenicHandler.
func NewAllergenicHandler(svc AllergenicService, logger *slog.Logger) *AllergenicHandler {
	return &AllergenicHandler{svc: svc, logger: logger}
}

// List handles GET /api/allergenics.
func (h *AllergenicHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToAllergenicListResponse(items))
}

// Get handles GET /api/allergenics/{id}.
func (h *AllergenicHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	a, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToAllergenicResponse(a))
}

// Create handles POST /api/allergenics.
func (h *AllergenicHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decode(w, r)
	if !ok {
		return
	}

	a, err := h.svc.Create(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("allergenic_created", "allergenic_id", a.ID)
	writeJSON(w, http.StatusCreated, dto.ToAllergenicResponse(a))
}

// Update handles PUT /api/allergenics/{id}.
func (h *AllergenicHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	input, ok := h.decode(w, r)
	if !ok {
		return
	}

	a, err := h.svc.Update(r.Context(), id, input)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("allergenic_updated", "allergenic_id", a.ID)
	writeJSON(w, http.StatusOK, dto.ToAllergenicResponse(a))
}

// Delete handles DELETE /api/allergenics/{id}.
func (h *AllergenicHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	a, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("allergenic_deleted", "allergenic_id", a.ID)
	writeJSON(w, http.StatusOK, dto.ToAllergenicResponse(a))
}

func (h *AllergenicHandler) decode(w http.ResponseWriter, r *http.Request) (service.AllergenicInput, bool) {
	payload, ok := decodeObject(w, r)
	if !ok {
		return service.AllergenicInput{}, false
	}

	v, err := validation.ValidateAllergenic(payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return service.AllergenicInput{}, false
	}
	return service.AllergenicInput{Name: v.Name, Picture: v.Picture}, true
}

// handleServiceError maps service errors to HTTP responses.
func (h *AllergenicHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "Invalid id")
	case errors.Is(err, service.ErrAllergenicNotFound):
		writeError(w, http.StatusNotFound, "An allergenic with the given id was not found")
	case errors.Is(err, service.ErrAllergenicNameExists):
		writeError(w, http.StatusConflict, "An allergenic with the given name already exists")
	default:
		writeInternalError(w, r, h.logger, err)
	}
}

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/canteen/canteen/internal/handler/dto"
	"github.com/canteen/canteen/internal/model"
	"github.com/canteen/canteen/internal/service"
	"github.com/canteen/canteen/internal/validation"
)

// MenuService is the menu behaviour the handler depends on.
type MenuService interface {
	Create(ctx context.Context, input service.MenuInput) (*model.Menu, error)
	Get(ctx context.Context, id string) (*service.PopulatedMenu, error)
	List(ctx context.Context) ([]*service.PopulatedMenu, error)
	Update(ctx context.Context, id string, input service.MenuInput) (*model.Menu, error)
	Delete(ctx context.Context, id string) (*model.Menu, error)
}

// MenuHandler handles HTTP requests for menus.
type MenuHandler struct {
	svc      MenuService
	location *time.Location
	logger   *slog.Logger
}

// NewMenuHandler creates a new MenuHandler. Date-only strings in request
// bodies are read in loc.
func NewMenuHandler(svc MenuService, loc *time.Location, logger *slog.Logger) *MenuHandler {
	if loc == nil {
		loc = time.Local
	}
	return &MenuHandler{svc: svc, location: loc, logger: logger}
}

// List handles GET /api/menus.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	menus, err := h.svc.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToPopulatedMenuListResponse(menus))
}

// Get handles GET /api/menus/{id}.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	menu, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToPopulatedMenuResponse(menu))
}

// Create handles POST /api/menus.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decode(w, r)
	if !ok {
		return
	}

	menu, err := h.svc.Create(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("menu_created", "menu_id", menu.ID, "date", menu.Date)
	writeJSON(w, http.StatusCreated, dto.ToMenuResponse(menu))
}

// Update handles PUT /api/menus/{id}.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	input, ok := h.decode(w, r)
	if !ok {
		return
	}

	menu, err := h.svc.Update(r.Context(), id, input)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("menu_updated", "menu_id", menu.ID, "date", menu.Date)
	writeJSON(w, http.StatusOK, dto.ToMenuResponse(menu))
}

// Delete handles DELETE /api/menus/{id}.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	menu, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("menu_deleted", "menu_id", menu.ID)
	writeJSON(w, http.StatusOK, dto.ToMenuResponse(menu))
}

func (h *MenuHandler) decode(w http.ResponseWriter, r *http.Request) (service.MenuInput, bool) {
	payload, ok := decodeObject(w, r)
	if !ok {
		return service.MenuInput{}, false
	}

	v, err := validation.ValidateMenu(payload, h.location)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return service.MenuInput{}, false
	}
	return service.MenuInput{Date: v.Date, MealIDs: v.MealIDs}, true
}

// handleServiceError maps service errors to HTTP responses.
func (h *MenuHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "Invalid id")
	case errors.Is(err, service.ErrMenuNotFound):
		writeError(w, http.StatusNotFound, "An menu with the given id was not found")
	case errors.Is(err, service.ErrMenuDateExists):
		writeError(w, http.StatusConflict, "An menu with the given date already exists")
	default:
		writeInternalError(w, r, h.logger, err)
	}
}

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canteen/canteen/internal/handler/dto"
	"github.com/canteen/canteen/internal/model"
	"github.com/canteen/canteen/internal/service"
	"github.com/canteen/canteen/internal/validation"
)

// MealService is the meal and rating behaviour the handler depends on.
type MealService interface {
	Create(ctx context.Context, input service.MealInput) (*model.Meal, error)
	Get(ctx context.Context, id string) (*service.PopulatedMeal, error)
	List(ctx context.Context) ([]*service.PopulatedMeal, error)
	Update(ctx context.Context, id string, input service.MealInput) (*model.Meal, error)
	Delete(ctx context.Context, id string) (*model.Meal, error)
	CreateRating(ctx context.Context, mealID string, input service.RatingInput) (*model.Rating, error)
	UpdateRating(ctx context.Context, mealID string, input service.RatingInput) (*model.Rating, error)
	DeleteRating(ctx context.Context, mealID, userID string) (*model.Rating, error)
}

// MealHandler handles HTTP requests for meals and their ratings.
type MealHandler struct {
	svc    MealService
	logger *slog.Logger
}

// NewMealHandler creates a new MealHandler.
func NewMealHandler(svc MealService, logger *slog.Logger) *MealHandler {
	return &MealHandler{svc: svc, logger: logger}
}

// List handles GET /api/meals.
func (h *MealHandler) List(w http.ResponseWriter, r *http.Request) {
	meals, err := h.svc.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToPopulatedMealListResponse(meals))
}

// Get handles GET /api/meals/{id}.
func (h *MealHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	meal, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToPopulatedMealResponse(meal))
}

// Create handles POST /api/meals.
func (h *MealHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeMeal(w, r)
	if !ok {
		return
	}

	meal, err := h.svc.Create(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("meal_created", "meal_id", meal.ID, "type", meal.Type)
	writeJSON(w, http.StatusCreated, dto.ToMealResponse(meal))
}

// Update handles PUT /api/meals/{id}.
func (h *MealHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	input, ok := h.decodeMeal(w, r)
	if !ok {
		return
	}

	meal, err := h.svc.Update(r.Context(), id, input)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("meal_updated", "meal_id", meal.ID)
	writeJSON(w, http.StatusOK, dto.ToMealResponse(meal))
}

// Delete handles DELETE /api/meals/{id}.
func (h *MealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	meal, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("meal_deleted", "meal_id", meal.ID)
	writeJSON(w, http.StatusOK, dto.ToMealResponse(meal))
}

// CreateRating handles POST /api/meals/ratings/{id}.
func (h *MealHandler) CreateRating(w http.ResponseWriter, r *http.Request) {
	mealID, ok := pathID(w, r)
	if !ok {
		return
	}
	input, ok := h.decodeRating(w, r)
	if !ok {
		return
	}

	rating, err := h.svc.CreateRating(r.Context(), mealID, input)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("rating_created", "meal_id", mealID, "rating_id", rating.ID)
	writeJSON(w, http.StatusCreated, dto.ToRatingResponse(rating))
}

// UpdateRating handles PUT /api/meals/ratings/{id}.
func (h *MealHandler) UpdateRating(w http.ResponseWriter, r *http.Request) {
	mealID, ok := pathID(w, r)
	if !ok {
		return
	}
	input, ok := h.decodeRating(w, r)
	if !ok {
		return
	}

	rating, err := h.svc.UpdateRating(r.Context(), mealID, input)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("rating_updated", "meal_id", mealID, "rating_id", rating.ID)
	writeJSON(w, http.StatusOK, dto.ToRatingResponse(rating))
}

// DeleteRating handles DELETE /api/meals/ratings/{id}/{userId}.
func (h *MealHandler) DeleteRating(w http.ResponseWriter, r *http.Request) {
	mealID, ok := pathID(w, r)
	if !ok {
		return
	}

	rating, err := h.svc.DeleteRating(r.Context(), mealID, chi.URLParam(r, "userId"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("rating_deleted", "meal_id", mealID, "rating_id", rating.ID)
	writeJSON(w, http.StatusOK, dto.ToRatingResponse(rating))
}

func (h *MealHandler) decodeMeal(w http.ResponseWriter, r *http.Request) (service.MealInput, bool) {
	payload, ok := decodeObject(w, r)
	if !ok {
		return service.MealInput{}, false
	}

	v, err := validation.ValidateMeal(payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return service.MealInput{}, false
	}
	return service.MealInput{
		Type:          v.Type,
		Description:   v.Description,
		Price:         v.Price,
		AllergenicIDs: v.AllergenicIDs,
	}, true
}

func (h *MealHandler) decodeRating(w http.ResponseWriter, r *http.Request) (service.RatingInput, bool) {
	payload, ok := decodeObject(w, r)
	if !ok {
		return service.RatingInput{}, false
	}

	v, err := validation.ValidateRating(payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return service.RatingInput{}, false
	}
	return service.RatingInput{
		UserID:      v.UserID,
		Rating:      v.Rating,
		Description: v.Description,
	}, true
}

// handleServiceError maps service errors to HTTP responses.
func (h *MealHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "Invalid id")
	case errors.Is(err, service.ErrMealNotFound):
		writeError(w, http.StatusNotFound, "A meal with the given id was not found")
	case errors.Is(err, service.ErrAlreadyRated):
		writeError(w, http.StatusBadRequest, "You have already rated the meal")
	case errors.Is(err, service.ErrRatingNotFound):
		writeError(w, http.StatusNotFound, "A rating with the given id was not found")
	default:
		writeInternalError(w, r, h.logger, err)
	}
}

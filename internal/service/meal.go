package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/canteen/canteen/internal/metrics"
	"github.com/canteen/canteen/internal/model"
	"github.com/canteen/canteen/internal/repository"
)

// MealInput is a validated meal payload. Allergenic ids are well formed.
type MealInput struct {
	Type          model.MealType
	Description   string
	Price         float64
	AllergenicIDs []string
}

// RatingInput is a validated rating payload.
// A nil Description leaves the stored description unchanged on update.
type RatingInput struct {
	UserID      string
	Rating      int
	Description *string
}

// PopulatedMeal is a meal with its allergenic references resolved.
type PopulatedMeal struct {
	*model.Meal
	Allergenics []*model.Allergenic
}

// MealService handles meal and rating business logic.
type MealService struct {
	store       MealStore
	allergenics AllergenicResolver
	metrics     metrics.Recorder
}

// NewMealService creates a new MealService.
func NewMealService(store MealStore, allergenics AllergenicResolver, recorder metrics.Recorder) *MealService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &MealService{store: store, allergenics: allergenics, metrics: recorder}
}

// Create stores a new meal without ratings.
func (s *MealService) Create(ctx context.Context, input MealInput) (*model.Meal, error) {
	ts := now()
	meal := &model.Meal{
		ID:            model.NewID(),
		Type:          input.Type,
		Description:   input.Description,
		Price:         input.Price,
		AllergenicIDs: referenceList(input.AllergenicIDs),
		Ratings:       []model.Rating{},
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}

	if err := s.store.CreateMeal(ctx, meal); err != nil {
		return nil, fmt.Errorf("failed to create meal: %w", err)
	}

	s.metrics.IncCreated(metrics.ResourceMeal)
	return meal, nil
}

// Get returns the meal with its allergenics populated.
func (s *MealService) Get(ctx context.Context, id string) (*PopulatedMeal, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	meal, err := s.store.GetMealByID(ctx, id)
	if err != nil {
		return nil, mapMealError(err)
	}

	populated, err := s.populate(ctx, []*model.Meal{meal})
	if err != nil {
		return nil, err
	}
	return populated[0], nil
}

// List returns every meal with its allergenics populated.
func (s *MealService) List(ctx context.Context) ([]*PopulatedMeal, error) {
	meals, err := s.store.ListMeals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	return s.populate(ctx, meals)
}

// Update replaces the editable fields of a meal. Ratings are kept.
func (s *MealService) Update(ctx context.Context, id string, input MealInput) (*model.Meal, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	meal := &model.Meal{
		ID:            id,
		Type:          input.Type,
		Description:   input.Description,
		Price:         input.Price,
		AllergenicIDs: referenceList(input.AllergenicIDs),
		UpdatedAt:     now(),
	}

	if err := s.store.UpdateMeal(ctx, meal); err != nil {
		return nil, mapMealError(err)
	}

	s.metrics.IncUpdated(metrics.ResourceMeal)
	return meal, nil
}

// Delete removes a meal and returns it. Menus keep their reference.
func (s *MealService) Delete(ctx context.Context, id string) (*model.Meal, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	meal, err := s.store.DeleteMeal(ctx, id)
	if err != nil {
		return nil, mapMealError(err)
	}

	s.metrics.IncDeleted(metrics.ResourceMeal)
	return meal, nil
}

// CreateRating adds the rating of input.UserID to a meal.
// Each user may rate a meal once.
func (s *MealService) CreateRating(ctx context.Context, mealID string, input RatingInput) (*model.Rating, error) {
	if err := checkID(mealID); err != nil {
		return nil, err
	}

	meal, err := s.store.GetMealByID(ctx, mealID)
	if err != nil {
		return nil, mapMealError(err)
	}
	if meal.HasRated(input.UserID) {
		return nil, ErrAlreadyRated
	}

	rating := model.Rating{
		ID:     model.NewID(),
		UserID: input.UserID,
		Rating: input.Rating,
	}
	if input.Description != nil {
		rating.Description = *input.Description
	}

	if err := s.store.AddRating(ctx, mealID, rating); err != nil {
		return nil, mapMealError(err)
	}

	s.metrics.IncCreated(metrics.ResourceRating)
	return &rating, nil
}

// UpdateRating overwrites the rating left by input.UserID.
func (s *MealService) UpdateRating(ctx context.Context, mealID string, input RatingInput) (*model.Rating, error) {
	if err := checkID(mealID); err != nil {
		return nil, err
	}

	meal, err := s.store.GetMealByID(ctx, mealID)
	if err != nil {
		return nil, mapMealError(err)
	}

	i := meal.FindRating(input.UserID)
	if i < 0 {
		return nil, ErrRatingNotFound
	}

	rating := meal.Ratings[i]
	rating.Rating = input.Rating
	if input.Description != nil {
		rating.Description = *input.Description
	}

	if err := s.store.ReplaceRating(ctx, mealID, &rating); err != nil {
		return nil, mapMealError(err)
	}

	s.metrics.IncUpdated(metrics.ResourceRating)
	return &rating, nil
}

// DeleteRating removes the rating left by userID and returns it.
func (s *MealService) DeleteRating(ctx context.Context, mealID, userID string) (*model.Rating, error) {
	if err := checkID(mealID); err != nil {
		return nil, err
	}

	meal, err := s.store.GetMealByID(ctx, mealID)
	if err != nil {
		return nil, mapMealError(err)
	}
	if !meal.HasRated(userID) {
		return nil, ErrRatingNotFound
	}

	removed, err := s.store.RemoveRating(ctx, mealID, userID)
	if err != nil {
		return nil, mapMealError(err)
	}

	s.metrics.IncDeleted(metrics.ResourceRating)
	return removed, nil
}

// populate resolves the allergenics of every meal with one store call.
func (s *MealService) populate(ctx context.Context, meals []*model.Meal) ([]*PopulatedMeal, error) {
	var ids []string
	for _, meal := range meals {
		ids = append(ids, meal.AllergenicIDs...)
	}

	resolved, err := s.allergenics.GetAllergenicsByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to populate allergenics: %w", err)
	}

	byID := make(map[string]*model.Allergenic, len(resolved))
	for _, a := range resolved {
		byID[a.ID] = a
	}

	out := make([]*PopulatedMeal, len(meals))
	for i, meal := range meals {
		out[i] = &PopulatedMeal{Meal: meal, Allergenics: pick(meal.AllergenicIDs, byID)}
	}
	return out, nil
}

func mapMealError(err error) error {
	switch {
	case errors.Is(err, repository.ErrMealNotFound):
		return ErrMealNotFound
	case errors.Is(err, repository.ErrRatingExists):
		return ErrAlreadyRated
	case errors.Is(err, repository.ErrRatingNotFound):
		return ErrRatingNotFound
	default:
		return fmt.Errorf("meal store: %w", err)
	}
}

func referenceList(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

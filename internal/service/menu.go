package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/canteen/canteen/internal/metrics"
	"github.com/canteen/canteen/internal/model"
	"github.com/canteen/canteen/internal/repository"
)

// MenuInput is a validated menu payload. Meal ids are well formed.
type MenuInput struct {
	Date    time.Time
	MealIDs []string
}

// PopulatedMenu is a menu with its meals, and their allergenics, resolved.
type PopulatedMenu struct {
	*model.Menu
	Meals []*PopulatedMeal
}

// MenuService handles menu business logic.
type MenuService struct {
	store    MenuStore
	meals    MealResolver
	mealSvc  *MealService
	location *time.Location
	metrics  metrics.Recorder
}

// NewMenuService creates a new MenuService. Calendar days are computed in loc.
func NewMenuService(store MenuStore, meals *MealService, loc *time.Location, recorder metrics.Recorder) *MenuService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &MenuService{
		store:    store,
		meals:    meals.store,
		mealSvc:  meals,
		location: loc,
		metrics:  recorder,
	}
}

// Create stores a new menu. Only one menu may fall on a calendar day.
func (s *MenuService) Create(ctx context.Context, input MenuInput) (*model.Menu, error) {
	start, end := model.CalendarDay(input.Date, s.location)
	if err := s.checkDayFree(ctx, start, end, ""); err != nil {
		return nil, err
	}

	ts := now()
	menu := &model.Menu{
		ID:        model.NewID(),
		Date:      input.Date,
		Day:       start,
		MealIDs:   referenceList(input.MealIDs),
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	if err := s.store.CreateMenu(ctx, menu); err != nil {
		return nil, mapMenuError(err)
	}

	s.metrics.IncCreated(metrics.ResourceMenu)
	return menu, nil
}

// Get returns the menu with its meals populated.
func (s *MenuService) Get(ctx context.Context, id string) (*PopulatedMenu, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	menu, err := s.store.GetMenuByID(ctx, id)
	if err != nil {
		return nil, mapMenuError(err)
	}

	populated, err := s.populate(ctx, []*model.Menu{menu})
	if err != nil {
		return nil, err
	}
	return populated[0], nil
}

// List returns every menu with its meals populated.
func (s *MenuService) List(ctx context.Context) ([]*PopulatedMenu, error) {
	menus, err := s.store.ListMenus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list menus: %w", err)
	}
	return s.populate(ctx, menus)
}

// Update replaces the date and meals of a menu. The menu's own day does not
// count as a conflict.
func (s *MenuService) Update(ctx context.Context, id string, input MenuInput) (*model.Menu, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	start, end := model.CalendarDay(input.Date, s.location)
	if err := s.checkDayFree(ctx, start, end, id); err != nil {
		return nil, err
	}

	menu := &model.Menu{
		ID:        id,
		Date:      input.Date,
		Day:       start,
		MealIDs:   referenceList(input.MealIDs),
		UpdatedAt: now(),
	}

	if err := s.store.UpdateMenu(ctx, menu); err != nil {
		return nil, mapMenuError(err)
	}

	s.metrics.IncUpdated(metrics.ResourceMenu)
	return menu, nil
}

// Delete removes a menu and returns it.
func (s *MenuService) Delete(ctx context.Context, id string) (*model.Menu, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	menu, err := s.store.DeleteMenu(ctx, id)
	if err != nil {
		return nil, mapMenuError(err)
	}

	s.metrics.IncDeleted(metrics.ResourceMenu)
	return menu, nil
}

func (s *MenuService) checkDayFree(ctx context.Context, start, end time.Time, excludeID string) error {
	_, err := s.store.FindMenuOnDay(ctx, start, end, excludeID)
	switch {
	case err == nil:
		return ErrMenuDateExists
	case errors.Is(err, repository.ErrMenuNotFound):
		return nil
	default:
		return fmt.Errorf("failed to check menu date: %w", err)
	}
}

// populate resolves the meals of every menu with one store call, then their
// allergenics with another.
func (s *MenuService) populate(ctx context.Context, menus []*model.Menu) ([]*PopulatedMenu, error) {
	var ids []string
	for _, menu := range menus {
		ids = append(ids, menu.MealIDs...)
	}

	resolved, err := s.meals.GetMealsByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to populate meals: %w", err)
	}

	meals, err := s.mealSvc.populate(ctx, resolved)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*PopulatedMeal, len(meals))
	for _, meal := range meals {
		byID[meal.ID] = meal
	}

	out := make([]*PopulatedMenu, len(menus))
	for i, menu := range menus {
		out[i] = &PopulatedMenu{Menu: menu, Meals: pick(menu.MealIDs, byID)}
	}
	return out, nil
}

func mapMenuError(err error) error {
	switch {
	case errors.Is(err, repository.ErrMenuNotFound):
		return ErrMenuNotFound
	case errors.Is(err, repository.ErrMenuDayExists):
		return ErrMenuDateExists
	default:
		return fmt.Errorf("menu store: %w", err)
	}
}

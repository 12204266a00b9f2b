package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/canteen/canteen/internal/model"
	"github.com/canteen/canteen/internal/repository"
)

// memStore is an in-memory stand-in for *repository.Repository.
type memStore struct {
	mu          sync.Mutex
	allergenics map[string]*model.Allergenic
	meals       map[string]*model.Meal
	menus       map[string]*model.Menu
	users       map[string]*model.User
	calls       int
	failWith    error
}

func newMemStore() *memStore {
	return &memStore{
		allergenics: make(map[string]*model.Allergenic),
		meals:       make(map[string]*model.Meal),
		menus:       make(map[string]*model.Menu),
		users:       make(map[string]*model.User),
	}
}

// enter locks the store and counts the call. Callers unlock.
func (m *memStore) enter() error {
	m.mu.Lock()
	m.calls++
	return m.failWith
}

func (m *memStore) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Allergenics

func (m *memStore) CreateAllergenic(ctx context.Context, a *model.Allergenic) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	for _, existing := range m.allergenics {
		if existing.Name == a.Name {
			return repository.ErrAllergenicNameExists
		}
	}
	cp := *a
	m.allergenics[a.ID] = &cp
	return nil
}

func (m *memStore) GetAllergenicByID(ctx context.Context, id string) (*model.Allergenic, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	a, ok := m.allergenics[id]
	if !ok {
		return nil, repository.ErrAllergenicNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) GetAllergenicByName(ctx context.Context, name string) (*model.Allergenic, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	for _, a := range m.allergenics {
		if a.Name == name {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrAllergenicNotFound
}

func (m *memStore) ListAllergenics(ctx context.Context) ([]*model.Allergenic, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	out := make([]*model.Allergenic, 0, len(m.allergenics))
	for _, a := range m.allergenics {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) UpdateAllergenic(ctx context.Context, a *model.Allergenic) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if _, ok := m.allergenics[a.ID]; !ok {
		return repository.ErrAllergenicNotFound
	}
	for _, existing := range m.allergenics {
		if existing.ID != a.ID && existing.Name == a.Name {
			return repository.ErrAllergenicNameExists
		}
	}
	cp := *a
	m.allergenics[a.ID] = &cp
	return nil
}

func (m *memStore) DeleteAllergenic(ctx context.Context, id string) (*model.Allergenic, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	a, ok := m.allergenics[id]
	if !ok {
		return nil, repository.ErrAllergenicNotFound
	}
	delete(m.allergenics, id)
	return a, nil
}

func (m *memStore) GetAllergenicsByIDs(ctx context.Context, ids []string) ([]*model.Allergenic, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	out := []*model.Allergenic{}
	for _, id := range ids {
		if a, ok := m.allergenics[id]; ok {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Meals

func (m *memStore) CreateMeal(ctx context.Context, meal *model.Meal) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	m.meals[meal.ID] = cloneMeal(meal)
	return nil
}

func (m *memStore) GetMealByID(ctx context.Context, id string) (*model.Meal, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	meal, ok := m.meals[id]
	if !ok {
		return nil, repository.ErrMealNotFound
	}
	return cloneMeal(meal), nil
}

func (m *memStore) ListMeals(ctx context.Context) ([]*model.Meal, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	out := make([]*model.Meal, 0, len(m.meals))
	for _, meal := range m.meals {
		out = append(out, cloneMeal(meal))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) UpdateMeal(ctx context.Context, meal *model.Meal) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	stored, ok := m.meals[meal.ID]
	if !ok {
		return repository.ErrMealNotFound
	}
	stored.Type = meal.Type
	stored.Description = meal.Description
	stored.Price = meal.Price
	stored.AllergenicIDs = append([]string{}, meal.AllergenicIDs...)
	stored.UpdatedAt = meal.UpdatedAt
	*meal = *cloneMeal(stored)
	return nil
}

func (m *memStore) DeleteMeal(ctx context.Context, id string) (*model.Meal, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	meal, ok := m.meals[id]
	if !ok {
		return nil, repository.ErrMealNotFound
	}
	delete(m.meals, id)
	return meal, nil
}

func (m *memStore) GetMealsByIDs(ctx context.Context, ids []string) ([]*model.Meal, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	out := []*model.Meal{}
	for _, id := range ids {
		if meal, ok := m.meals[id]; ok {
			out = append(out, cloneMeal(meal))
		}
	}
	return out, nil
}

func (m *memStore) AddRating(ctx context.Context, mealID string, rating model.Rating) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	meal, ok := m.meals[mealID]
	if !ok {
		return repository.ErrMealNotFound
	}
	if meal.HasRated(rating.UserID) {
		return repository.ErrRatingExists
	}
	meal.Ratings = append(meal.Ratings, rating)
	return nil
}

func (m *memStore) ReplaceRating(ctx context.Context, mealID string, rating *model.Rating) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	meal, ok := m.meals[mealID]
	if !ok {
		return repository.ErrMealNotFound
	}
	i := meal.FindRating(rating.UserID)
	if i < 0 {
		return repository.ErrRatingNotFound
	}
	rating.ID = meal.Ratings[i].ID
	meal.Ratings[i] = *rating
	return nil
}

func (m *memStore) RemoveRating(ctx context.Context, mealID, userID string) (*model.Rating, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	meal, ok := m.meals[mealID]
	if !ok {
		return nil, repository.ErrMealNotFound
	}
	i := meal.FindRating(userID)
	if i < 0 {
		return nil, repository.ErrRatingNotFound
	}
	removed := meal.Ratings[i]
	meal.Ratings = append(meal.Ratings[:i], meal.Ratings[i+1:]...)
	return &removed, nil
}

// Menus

func (m *memStore) CreateMenu(ctx context.Context, menu *model.Menu) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	for _, existing := range m.menus {
		if existing.Day.Equal(menu.Day) {
			return repository.ErrMenuDayExists
		}
	}
	cp := *menu
	m.menus[menu.ID] = &cp
	return nil
}

func (m *memStore) GetMenuByID(ctx context.Context, id string) (*model.Menu, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	menu, ok := m.menus[id]
	if !ok {
		return nil, repository.ErrMenuNotFound
	}
	cp := *menu
	return &cp, nil
}

func (m *memStore) ListMenus(ctx context.Context) ([]*model.Menu, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	out := make([]*model.Menu, 0, len(m.menus))
	for _, menu := range m.menus {
		cp := *menu
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *memStore) UpdateMenu(ctx context.Context, menu *model.Menu) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	stored, ok := m.menus[menu.ID]
	if !ok {
		return repository.ErrMenuNotFound
	}
	stored.Date = menu.Date
	stored.Day = menu.Day
	stored.MealIDs = append([]string{}, menu.MealIDs...)
	stored.UpdatedAt = menu.UpdatedAt
	*menu = *stored
	return nil
}

func (m *memStore) DeleteMenu(ctx context.Context, id string) (*model.Menu, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	menu, ok := m.menus[id]
	if !ok {
		return nil, repository.ErrMenuNotFound
	}
	delete(m.menus, id)
	return menu, nil
}

func (m *memStore) FindMenuOnDay(ctx context.Context, start, end time.Time, excludeID string) (*model.Menu, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	for _, menu := range m.menus {
		if menu.ID == excludeID {
			continue
		}
		if !menu.Date.Before(start) && menu.Date.Before(end) {
			cp := *menu
			return &cp, nil
		}
	}
	return nil, repository.ErrMenuNotFound
}

// Users

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func cloneMeal(meal *model.Meal) *model.Meal {
	cp := *meal
	cp.AllergenicIDs = append([]string{}, meal.AllergenicIDs...)
	cp.Ratings = append([]model.Rating{}, meal.Ratings...)
	return &cp
}

type fakeIssuer struct {
	token string
	err   error
}

func (f fakeIssuer) Issue(user *model.User) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.token + ":" + user.ID, nil
}

var errStoreDown = errors.New("store down")

var (
	_ AllergenicStore = (*memStore)(nil)
	_ MealStore       = (*memStore)(nil)
	_ MenuStore       = (*memStore)(nil)
	_ UserStore       = (*memStore)(nil)
	_ AllergenicStore = (*repository.Repository)(nil)
	_ MealStore       = (*repository.Repository)(nil)
	_ MenuStore       = (*repository.Repository)(nil)
	_ UserStore       = (*repository.Repository)(nil)
)

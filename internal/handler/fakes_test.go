package handler

import (
	"context"

	"github.com/canteen/canteen/internal/model"
	"github.com/canteen/canteen/internal/service"
)

const validID = "01ARZ3NDEKTSV4RRFFQ69G5FAV"

// fakeAllergenicService records calls and returns canned results.
type fakeAllergenicService struct {
	calls  int
	result *model.Allergenic
	err    error
	input  service.AllergenicInput
}

func (f *fakeAllergenicService) Create(ctx context.Context, input service.AllergenicInput) (*model.Allergenic, error) {
	f.calls++
	f.input = input
	return f.result, f.err
}

func (f *fakeAllergenicService) Get(ctx context.Context, id string) (*model.Allergenic, error) {
	f.calls++
	return f.result, f.err
}

func (f *fakeAllergenicService) List(ctx context.Context) ([]*model.Allergenic, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []*model.Allergenic{f.result}, nil
}

func (f *fakeAllergenicService) Update(ctx context.Context, id string, input service.AllergenicInput) (*model.Allergenic, error) {
	f.calls++
	f.input = input
	return f.result, f.err
}

func (f *fakeAllergenicService) Delete(ctx context.Context, id string) (*model.Allergenic, error) {
	f.calls++
	return f.result, f.err
}

// fakeMealService records calls and returns canned results.
type fakeMealService struct {
	calls     int
	meal      *model.Meal
	populated *service.PopulatedMeal
	rating    *model.Rating
	err       error
	input     service.MealInput
	ratingIn  service.RatingInput
	userID    string
}

func (f *fakeMealService) Create(ctx context.Context, input service.MealInput) (*model.Meal, error) {
	f.calls++
	f.input = input
	return f.meal, f.err
}

func (f *fakeMealService) Get(ctx context.Context, id string) (*service.PopulatedMeal, error) {
	f.calls++
	return f.populated, f.err
}

func (f *fakeMealService) List(ctx context.Context) ([]*service.PopulatedMeal, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []*service.PopulatedMeal{f.populated}, nil
}

func (f *fakeMealService) Update(ctx context.Context, id string, input service.MealInput) (*model.Meal, error) {
	f.calls++
	f.input = input
	return f.meal, f.err
}

func (f *fakeMealService) Delete(ctx context.Context, id string) (*model.Meal, error) {
	f.calls++
	return f.meal, f.err
}

func (f *fakeMealService) CreateRating(ctx context.Context, mealID string, input service.RatingInput) (*model.Rating, error) {
	f.calls++
	f.ratingIn = input
	return f.rating, f.err
}

func (f *fakeMealService) UpdateRating(ctx context.Context, mealID string, input service.RatingInput) (*model.Rating, error) {
	f.calls++
	f.ratingIn = input
	return f.rating, f.err
}

func (f *fakeMealService) DeleteRating(ctx context.Context, mealID, userID string) (*model.Rating, error) {
	f.calls++
	f.userID = userID
	return f.rating, f.err
}

// fakeMenuService records calls and returns canned results.
type fakeMenuService struct {
	calls     int
	menu      *model.Menu
	populated *service.PopulatedMenu
	err       error
	input     service.MenuInput
}

func (f *fakeMenuService) Create(ctx context.Context, input service.MenuInput) (*model.Menu, error) {
	f.calls++
	f.input = input
	return f.menu, f.err
}

func (f *fakeMenuService) Get(ctx context.Context, id string) (*service.PopulatedMenu, error) {
	f.calls++
	return f.populated, f.err
}

func (f *fakeMenuService) List(ctx context.Context) ([]*service.PopulatedMenu, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []*service.PopulatedMenu{f.populated}, nil
}

func (f *fakeMenuService) Update(ctx context.Context, id string, input service.MenuInput) (*model.Menu, error) {
	f.calls++
	f.input = input
	return f.menu, f.err
}

func (f *fakeMenuService) Delete(ctx context.Context, id string) (*model.Menu, error) {
	f.calls++
	return f.menu, f.err
}

// fakeUserService returns canned sign-in results.
type fakeUserService struct {
	calls int
	user  *model.User
	token string
	err   error
}

func (f *fakeUserService) SignIn(ctx context.Context, email, password string) (*model.User, string, error) {
	f.calls++
	if f.err != nil {
		return nil, "", f.err
	}
	return f.user, f.token, nil
}

func (f *fakeUserService) Me(ctx context.Context, claims *model.SessionClaims) (*model.User, error) {
	f.calls++
	return f.user, f.err
}

var (
	_ AllergenicService = (*service.AllergenicService)(nil)
	_ MealService       = (*service.MealService)(nil)
	_ MenuService       = (*service.MenuService)(nil)
	_ UserService       = (*service.UserService)(nil)
)

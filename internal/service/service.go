// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/canteen/canteen/internal/model"
)

// Service errors.
var (
	ErrInvalidID = errors.New("invalid id")

	ErrAllergenicNotFound   = errors.New("allergenic not found")
	ErrAllergenicNameExists = errors.New("allergenic name already exists")

	ErrMealNotFound   = errors.New("meal not found")
	ErrAlreadyRated   = errors.New("meal already rated by user")
	ErrRatingNotFound = errors.New("rating not found")

	ErrMenuNotFound   = errors.New("menu not found")
	ErrMenuDateExists = errors.New("menu already exists for date")

	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AllergenicStore persists allergenics.
type AllergenicStore interface {
	CreateAllergenic(ctx context.Context, a *model.Allergenic) error
	GetAllergenicByID(ctx context.Context, id string) (*model.Allergenic, error)
	GetAllergenicByName(ctx context.Context, name string) (*model.Allergenic, error)
	ListAllergenics(ctx context.Context) ([]*model.Allergenic, error)
	UpdateAllergenic(ctx context.Context, a *model.Allergenic) error
	DeleteAllergenic(ctx context.Context, id string) (*model.Allergenic, error)
	AllergenicResolver
}

// AllergenicResolver resolves allergenic references.
type AllergenicResolver interface {
	GetAllergenicsByIDs(ctx context.Context, ids []string) ([]*model.Allergenic, error)
}

// MealStore persists meals and their embedded ratings.
type MealStore interface {
	CreateMeal(ctx context.Context, meal *model.Meal) error
	GetMealByID(ctx context.Context, id string) (*model.Meal, error)
	ListMeals(ctx context.Context) ([]*model.Meal, error)
	UpdateMeal(ctx context.Context, meal *model.Meal) error
	DeleteMeal(ctx context.Context, id string) (*model.Meal, error)
	AddRating(ctx context.Context, mealID string, rating model.Rating) error
	ReplaceRating(ctx context.Context, mealID string, rating *model.Rating) error
	RemoveRating(ctx context.Context, mealID, userID string) (*model.Rating, error)
	MealResolver
}

// MealResolver resolves meal references.
type MealResolver interface {
	GetMealsByIDs(ctx context.Context, ids []string) ([]*model.Meal, error)
}

// MenuStore persists menus.
type MenuStore interface {
	CreateMenu(ctx context.Context, menu *model.Menu) error
	GetMenuByID(ctx context.Context, id string) (*model.Menu, error)
	ListMenus(ctx context.Context) ([]*model.Menu, error)
	UpdateMenu(ctx context.Context, menu *model.Menu) error
	DeleteMenu(ctx context.Context, id string) (*model.Menu, error)
	FindMenuOnDay(ctx context.Context, start, end time.Time, excludeID string) (*model.Menu, error)
}

// UserStore reads user accounts.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(user *model.User) (string, error)
}

func checkID(id string) error {
	if !model.IsValidID(id) {
		return ErrInvalidID
	}
	return nil
}

func now() time.Time {
	return time.Now().UTC()
}

// uniqueIDs returns ids without repeats, keeping first occurrences in order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// pick returns the items referenced by ids, in order, skipping unresolved ids.
func pick[T any](ids []string, byID map[string]T) []T {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			out = append(out, item)
		}
	}
	return out
}

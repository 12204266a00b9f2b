// Package dto provides Data Transfer Objects for API responses.
package dto

import (
	"time"

	"github.com/canteen/canteen/internal/model"
	"github.com/canteen/canteen/internal/service"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Message string `json:"message"`
}

// AllergenicResponse represents an allergenic in API responses.
type AllergenicResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// RatingResponse represents a rating in API responses.
type RatingResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Rating      int    `json:"rating"`
	Description string `json:"description,omitempty"`
}

// MealResponse is the meal as written: allergenics are ids.
type MealResponse struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Allergenics []string `json:"allergenics"`
}

// PopulatedMealResponse is the meal as read: allergenics resolved, ratings included.
type PopulatedMealResponse struct {
	ID          string               `json:"id"`
	Type        string               `json:"type"`
	Description string               `json:"description"`
	Price       float64              `json:"price"`
	Allergenics []AllergenicResponse `json:"allergenics"`
	Ratings     []RatingResponse     `json:"ratings"`
}

// MenuResponse is the menu as written: meals are ids.
type MenuResponse struct {
	ID    string    `json:"id"`
	Date  time.Time `json:"date"`
	Meals []string  `json:"meals"`
}

// PopulatedMenuResponse is the menu as read: meals resolved.
type PopulatedMenuResponse struct {
	ID    string                  `json:"id"`
	Date  time.Time               `json:"date"`
	Meals []PopulatedMealResponse `json:"meals"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ToAllergenicResponse converts an Allergenic model to its DTO.
func ToAllergenicResponse(a *model.Allergenic) AllergenicResponse {
	return AllergenicResponse{ID: a.ID, Name: a.Name, Picture: a.Picture}
}

// ToAllergenicListResponse converts allergenics to DTOs.
func ToAllergenicListResponse(items []*model.Allergenic) []AllergenicResponse {
	out := make([]AllergenicResponse, len(items))
	for i, a := range items {
		out[i] = ToAllergenicResponse(a)
	}
	return out
}

// ToRatingResponse converts a Rating model to its DTO.
func ToRatingResponse(r *model.Rating) RatingResponse {
	return RatingResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		Rating:      r.Rating,
		Description: r.Description,
	}
}

// ToMealResponse converts a Meal model to its unpopulated DTO.
func ToMealResponse(m *model.Meal) MealResponse {
	return MealResponse{
		ID:          m.ID,
		Type:        string(m.Type),
		Description: m.Description,
		Price:       m.Price,
		Allergenics: ids(m.AllergenicIDs),
	}
}

// ToPopulatedMealResponse converts a populated meal to its DTO.
func ToPopulatedMealResponse(m *service.PopulatedMeal) PopulatedMealResponse {
	ratings := make([]RatingResponse, len(m.Ratings))
	for i := range m.Ratings {
		ratings[i] = ToRatingResponse(&m.Ratings[i])
	}
	return PopulatedMealResponse{
		ID:          m.ID,
		Type:        string(m.Type),
		Description: m.Description,
		Price:       m.Price,
		Allergenics: ToAllergenicListResponse(m.Allergenics),
		Ratings:     ratings,
	}
}

// ToPopulatedMealListResponse converts populated meals to DTOs.
func ToPopulatedMealListResponse(items []*service.PopulatedMeal) []PopulatedMealResponse {
	out := make([]PopulatedMealResponse, len(items))
	for i, m := range items {
		out[i] = ToPopulatedMealResponse(m)
	}
	return out
}

// ToMenuResponse converts a Menu model to its unpopulated DTO.
func ToMenuResponse(m *model.Menu) MenuResponse {
	return MenuResponse{ID: m.ID, Date: m.Date.UTC(), Meals: ids(m.MealIDs)}
}

// ToPopulatedMenuResponse converts a populated menu to its DTO.
func ToPopulatedMenuResponse(m *service.PopulatedMenu) PopulatedMenuResponse {
	return PopulatedMenuResponse{
		ID:    m.ID,
		Date:  m.Date.UTC(),
		Meals: ToPopulatedMealListResponse(m.Meals),
	}
}

// ToPopulatedMenuListResponse converts populated menus to DTOs.
func ToPopulatedMenuListResponse(items []*service.PopulatedMenu) []PopulatedMenuResponse {
	out := make([]PopulatedMenuResponse, len(items))
	for i, m := range items {
		out[i] = ToPopulatedMenuResponse(m)
	}
	return out
}

// ToUserResponse converts a User model to its public DTO.
func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

func ids(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

package model

import (
	"slices"
	"time"
)

// MealType is the section of the canteen a meal is served from.
type MealType string

const (
	MealTypeFromTheKitchen MealType = "From the kitchen"
	MealTypeMeatFree       MealType = "Meat free"
	MealTypeSides          MealType = "Sides"
	MealTypeSnackOfTheDay  MealType = "Snack of the day"
	MealTypeChefsTheatre   MealType = "Chefs theatre"
	MealTypeSoupKitchen    MealType = "Soup kitchen"
)

// MealTypes lists every valid meal type in display order.
var MealTypes = []MealType{
	MealTypeFromTheKitchen,
	MealTypeMeatFree,
	MealTypeSides,
	MealTypeSnackOfTheDay,
	MealTypeChefsTheatre,
	MealTypeSoupKitchen,
}

// IsValid checks if the meal type is one of MealTypes.
func (t MealType) IsValid() bool {
	return slices.Contains(MealTypes, t)
}

// Price bounds for a meal.
const (
	MinMealPrice = 0
	MaxMealPrice = 100
)

// Rating is a single user's rating of a meal.
// Ratings only exist embedded in their meal.
type Rating struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Rating      int    `json:"rating"`
	Description string `json:"description,omitempty"`
}

// Meal represents a dish offered by the canteen.
type Meal struct {
	ID            string    `json:"id"`
	Type          MealType  `json:"type"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	AllergenicIDs []string  `json:"allergenics"`
	Ratings       []Rating  `json:"ratings"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

// FindRating returns the index of the rating left by userID, or -1.
func (m *Meal) FindRating(userID string) int {
	for i := range m.Ratings {
		if m.Ratings[i].UserID == userID {
			return i
		}
	}
	return -1
}

// HasRated reports whether userID already rated the meal.
func (m *Meal) HasRated(userID string) bool {
	return m.FindRating(userID) >= 0
}

package model

import "testing"

func TestMealType_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mealType MealType
		want     bool
	}{
		{MealTypeFromTheKitchen, true},
		{MealTypeMeatFree, true},
		{MealTypeSides, true},
		{MealTypeSnackOfTheDay, true},
		{MealTypeChefsTheatre, true},
		{MealTypeSoupKitchen, true},
		{"meat free", false},
		{"Dessert", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := tt.mealType.IsValid(); got != tt.want {
			t.Errorf("MealType(%q).IsValid() = %v, want %v", tt.mealType, got, tt.want)
		}
	}
}

func TestMeal_FindRating(t *testing.T) {
	t.Parallel()

	meal := &Meal{
		Ratings: []Rating{
			{ID: "r1", UserID: "user-one", Rating: 4},
			{ID: "r2", UserID: "user-two", Rating: 2},
		},
	}

	if idx := meal.FindRating("user-two"); idx != 1 {
		t.Errorf("FindRating(user-two) = %d, want 1", idx)
	}
	if idx := meal.FindRating("user-three"); idx != -1 {
		t.Errorf("FindRating(user-three) = %d, want -1", idx)
	}
	if !meal.HasRated("user-one") {
		t.Error("expected HasRated(user-one) to be true")
	}
	if meal.HasRated("nobody") {
		t.Error("expected HasRated(nobody) to be false")
	}
}

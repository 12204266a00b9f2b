package validation

import (
	"strings"

	"github.com/canteen/canteen/internal/model"
)

// Meal and rating bounds.
const (
	MaxMealDescriptionLength   = 500
	MinRatingUserIDLength      = 5
	MaxRatingUserIDLength      = 25
	MinRatingValue             = 1
	MaxRatingValue             = 5
	MaxRatingDescriptionLength = 500
)

// Meal is a validated meal write payload.
type Meal struct {
	Type          model.MealType
	Description   string
	Price         float64
	AllergenicIDs []string
}

// Rating is a validated rating payload.
// Description is nil when the payload did not carry one.
type Rating struct {
	UserID      string
	Rating      int
	Description *string
}

// ValidateMeal checks a create or update payload for a meal.
// Allergenic references must have the identifier shape; they are not resolved.
func ValidateMeal(payload map[string]any) (*Meal, error) {
	rawType, _, err := checkString(payload, "type", stringRule{required: true})
	if err != nil {
		return nil, err
	}
	mealType := model.MealType(rawType)
	if !mealType.IsValid() {
		return nil, mealTypeError()
	}

	description, _, err := checkString(payload, "description", stringRule{
		required: true,
		min:      1,
		max:      MaxMealDescriptionLength,
	})
	if err != nil {
		return nil, err
	}

	price, _, err := checkNumber(payload, "price", numberRule{
		required: true,
		min:      model.MinMealPrice,
		max:      model.MaxMealPrice,
	})
	if err != nil {
		return nil, err
	}

	allergenics, err := checkStringArray(payload, "allergenics", true)
	if err != nil {
		return nil, err
	}

	if err := checkUnknown(payload, "type", "description", "price", "allergenics"); err != nil {
		return nil, err
	}

	if err := checkReferences("allergenics", allergenics); err != nil {
		return nil, err
	}

	return &Meal{
		Type:          mealType,
		Description:   description,
		Price:         price,
		AllergenicIDs: allergenics,
	}, nil
}

// ValidateRating checks a rating create or update payload.
func ValidateRating(payload map[string]any) (*Rating, error) {
	userID, _, err := checkString(payload, "userId", stringRule{
		required: true,
		min:      MinRatingUserIDLength,
		max:      MaxRatingUserIDLength,
	})
	if err != nil {
		return nil, err
	}

	value, _, err := checkNumber(payload, "rating", numberRule{
		required: true,
		integer:  true,
		min:      MinRatingValue,
		max:      MaxRatingValue,
	})
	if err != nil {
		return nil, err
	}

	description, present, err := checkString(payload, "description", stringRule{
		min: 1,
		max: MaxRatingDescriptionLength,
	})
	if err != nil {
		return nil, err
	}

	if err := checkUnknown(payload, "userId", "rating", "description"); err != nil {
		return nil, err
	}

	rating := &Rating{UserID: userID, Rating: int(value)}
	if present {
		rating.Description = &description
	}
	return rating, nil
}

func mealTypeError() *Error {
	names := make([]string, len(model.MealTypes))
	for i, t := range model.MealTypes {
		names[i] = string(t)
	}
	return newError("type", "%q must be one of [%s]", "type", strings.Join(names, ", "))
}

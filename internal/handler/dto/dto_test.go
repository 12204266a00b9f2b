package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/canteen/canteen/internal/model"
	"github.com/canteen/canteen/internal/service"
)

func TestToMealResponse_NilAllergenicsEncodeAsArray(t *testing.T) {
	t.Parallel()

	resp := ToMealResponse(&model.Meal{ID: "m1", Type: model.MealTypeSides, Description: "Chips", Price: 2})
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"allergenics":[]`) {
		t.Fatalf("expected empty array, got %s", data)
	}
	if strings.Contains(string(data), "ratings") {
		t.Fatalf("write projection must not carry ratings: %s", data)
	}
}

func TestToPopulatedMealResponse(t *testing.T) {
	t.Parallel()

	meal := &service.PopulatedMeal{
		Meal: &model.Meal{
			ID:            "m1",
			Type:          model.MealTypeMeatFree,
			Description:   "Falafel",
			Price:         5,
			AllergenicIDs: []string{"a1", "gone"},
			Ratings:       []model.Rating{{ID: "r1", UserID: "user-1", Rating: 4}},
		},
		Allergenics: []*model.Allergenic{{ID: "a1", Name: "Sesame"}},
	}

	resp := ToPopulatedMealResponse(meal)
	if len(resp.Allergenics) != 1 || resp.Allergenics[0].Name != "Sesame" {
		t.Fatalf("unexpected allergenics: %+v", resp.Allergenics)
	}
	if len(resp.Ratings) != 1 || resp.Ratings[0].UserID != "user-1" {
		t.Fatalf("unexpected ratings: %+v", resp.Ratings)
	}

	data, _ := json.Marshal(resp.Ratings[0])
	if strings.Contains(string(data), "description") {
		t.Fatalf("empty description should be omitted: %s", data)
	}
}

func TestToMenuResponse_DateInUTC(t *testing.T) {
	t.Parallel()

	local := time.Date(2024, 6, 3, 10, 0, 0, 0, time.FixedZone("CEST", 2*60*60))
	resp := ToMenuResponse(&model.Menu{ID: "x", Date: local})

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"x","date":"2024-06-03T08:00:00Z","meals":[]}`
	if string(data) != want {
		t.Fatalf("got %s, want %s", data, want)
	}
}

func TestToUserResponse_OmitsHash(t *testing.T) {
	t.Parallel()

	data, _ := json.Marshal(ToUserResponse(&model.User{ID: "u", Name: "n", Email: "e", PasswordHash: "secret"}))
	if strings.Contains(string(data), "secret") {
		t.Fatalf("hash leaked: %s", data)
	}
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/canteen/canteen/internal/model"
)

// Common errors for meal repository operations.
var (
	ErrMealNotFound   = errors.New("meal not found")
	ErrRatingNotFound = errors.New("rating not found")
	ErrRatingExists   = errors.New("user already rated the meal")
)

const mealColumns = `id, type, description, price, allergenic_ids, ratings, created_at, updated_at`

// CreateMeal inserts a new meal with its ratings.
func (r *Repository) CreateMeal(ctx context.Context, meal *model.Meal) error {
	ratings, err := encodeRatings(meal.Ratings)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO meals (id, type, description, price, allergenic_ids, ratings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.pool.Exec(ctx, query,
		meal.ID,
		string(meal.Type),
		meal.Description,
		meal.Price,
		pq.Array(nonNilIDs(meal.AllergenicIDs)),
		ratings,
		meal.CreatedAt,
		meal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create meal: %w", err)
	}

	return nil
}

// GetMealByID retrieves a meal by its ID.
func (r *Repository) GetMealByID(ctx context.Context, id string) (*model.Meal, error) {
	query := `SELECT ` + mealColumns + ` FROM meals WHERE id = $1`

	meal, err := scanMeal(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMealNotFound
		}
		return nil, fmt.Errorf("failed to get meal by ID: %w", err)
	}

	return meal, nil
}

// ListMeals returns all meals in creation order.
func (r *Repository) ListMeals(ctx context.Context) ([]*model.Meal, error) {
	query := `SELECT ` + mealColumns + ` FROM meals ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	defer rows.Close()

	return collectMeals(rows)
}

// GetMealsByIDs resolves meal references, preserving their order.
// References that no longer resolve are dropped.
func (r *Repository) GetMealsByIDs(ctx context.Context, ids []string) ([]*model.Meal, error) {
	if len(ids) == 0 {
		return []*model.Meal{}, nil
	}

	query := `SELECT ` + mealColumns + ` FROM meals WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get meals by IDs: %w", err)
	}
	defer rows.Close()

	found, err := collectMeals(rows)
	if err != nil {
		return nil, err
	}

	return orderByIDs(ids, found, func(m *model.Meal) string { return m.ID }), nil
}

// UpdateMeal replaces the editable fields of a meal. Ratings are left as
// stored and the full row is written back into meal.
func (r *Repository) UpdateMeal(ctx context.Context, meal *model.Meal) error {
	query := `
		UPDATE meals
		SET type = $2, description = $3, price = $4, allergenic_ids = $5, updated_at = $6
		WHERE id = $1
		RETURNING ` + mealColumns

	stored, err := scanMeal(r.pool.QueryRow(ctx, query,
		meal.ID,
		string(meal.Type),
		meal.Description,
		meal.Price,
		pq.Array(nonNilIDs(meal.AllergenicIDs)),
		meal.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMealNotFound
		}
		return fmt.Errorf("failed to update meal: %w", err)
	}

	*meal = *stored
	return nil
}

// DeleteMeal removes a meal and returns the deleted record.
// Menus referencing it keep the dangling id.
func (r *Repository) DeleteMeal(ctx context.Context, id string) (*model.Meal, error) {
	query := `DELETE FROM meals WHERE id = $1 RETURNING ` + mealColumns

	meal, err := scanMeal(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMealNotFound
		}
		return nil, fmt.Errorf("failed to delete meal: %w", err)
	}

	return meal, nil
}

// AddRating appends a rating to a meal unless the same user already rated it.
// The check and the append happen in one statement so concurrent ratings by
// one user cannot both land.
func (r *Repository) AddRating(ctx context.Context, mealID string, rating model.Rating) error {
	payload, err := json.Marshal(rating)
	if err != nil {
		return fmt.Errorf("failed to encode rating: %w", err)
	}

	query := `
		UPDATE meals
		SET ratings = ratings || jsonb_build_array($2::jsonb), updated_at = $4
		WHERE id = $1
		  AND NOT ratings @> jsonb_build_array(jsonb_build_object('userId', $3::text))
	`

	result, err := r.pool.Exec(ctx, query, mealID, payload, rating.UserID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to add rating: %w", err)
	}

	if result.RowsAffected() == 1 {
		return nil
	}

	// Nothing updated: either the meal is gone or the user already rated it.
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM meals WHERE id = $1)`, mealID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check meal existence: %w", err)
	}
	if !exists {
		return ErrMealNotFound
	}
	return ErrRatingExists
}

// ReplaceRating overwrites the rating left by rating.UserID, keeping its id.
// The stored rating is written back into rating.
func (r *Repository) ReplaceRating(ctx context.Context, mealID string, rating *model.Rating) error {
	return r.editRatings(ctx, mealID, rating.UserID, func(ratings []model.Rating, i int) []model.Rating {
		rating.ID = ratings[i].ID
		ratings[i] = *rating
		return ratings
	})
}

// RemoveRating deletes the rating left by userID and returns it.
func (r *Repository) RemoveRating(ctx context.Context, mealID, userID string) (*model.Rating, error) {
	var removed model.Rating
	err := r.editRatings(ctx, mealID, userID, func(ratings []model.Rating, i int) []model.Rating {
		removed = ratings[i]
		return append(ratings[:i], ratings[i+1:]...)
	})
	if err != nil {
		return nil, err
	}
	return &removed, nil
}

// editRatings locks the meal row, applies edit to the rating left by userID
// and stores the result.
func (r *Repository) editRatings(ctx context.Context, mealID, userID string, edit func([]model.Rating, int) []model.Rating) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx, `SELECT ratings FROM meals WHERE id = $1 FOR UPDATE`, mealID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMealNotFound
		}
		return fmt.Errorf("failed to lock meal: %w", err)
	}

	ratings, err := decodeRatings(raw)
	if err != nil {
		return err
	}

	meal := model.Meal{Ratings: ratings}
	i := meal.FindRating(userID)
	if i < 0 {
		return ErrRatingNotFound
	}

	payload, err := encodeRatings(edit(ratings, i))
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`UPDATE meals SET ratings = $2, updated_at = $3 WHERE id = $1`,
		mealID, payload, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store ratings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit ratings: %w", err)
	}
	return nil
}

func scanMeal(row pgx.Row) (*model.Meal, error) {
	var (
		meal       model.Meal
		mealType   string
		ratingsRaw []byte
	)
	err := row.Scan(
		&meal.ID,
		&mealType,
		&meal.Description,
		&meal.Price,
		pq.Array(&meal.AllergenicIDs),
		&ratingsRaw,
		&meal.CreatedAt,
		&meal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	meal.Type = model.MealType(mealType)
	meal.AllergenicIDs = nonNilIDs(meal.AllergenicIDs)
	if meal.Ratings, err = decodeRatings(ratingsRaw); err != nil {
		return nil, err
	}
	return &meal, nil
}

func collectMeals(rows pgx.Rows) ([]*model.Meal, error) {
	meals := make([]*model.Meal, 0)
	for rows.Next() {
		meal, err := scanMeal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		meals = append(meals, meal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meals: %w", err)
	}
	return meals, nil
}

func encodeRatings(ratings []model.Rating) ([]byte, error) {
	if ratings == nil {
		ratings = []model.Rating{}
	}
	data, err := json.Marshal(ratings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ratings: %w", err)
	}
	return data, nil
}

func decodeRatings(data []byte) ([]model.Rating, error) {
	ratings := []model.Rating{}
	if len(data) == 0 {
		return ratings, nil
	}
	if err := json.Unmarshal(data, &ratings); err != nil {
		return nil, fmt.Errorf("failed to decode ratings: %w", err)
	}
	return ratings, nil
}

func nonNilIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

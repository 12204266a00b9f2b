package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/canteen/canteen/internal/model"
)

// Common errors for menu repository operations.
var (
	ErrMenuNotFound  = errors.New("menu not found")
	ErrMenuDayExists = errors.New("menu already exists for day")
)

const menuColumns = `id, date, day, meal_ids, created_at, updated_at`

// CreateMenu inserts a new menu. Only one menu may exist per day.
func (r *Repository) CreateMenu(ctx context.Context, menu *model.Menu) error {
	query := `
		INSERT INTO menus (id, date, day, meal_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		menu.ID,
		menu.Date,
		dateOnly(menu.Day),
		pq.Array(nonNilIDs(menu.MealIDs)),
		menu.CreatedAt,
		menu.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "menus_day_key") {
			return ErrMenuDayExists
		}
		return fmt.Errorf("failed to create menu: %w", err)
	}

	return nil
}

// GetMenuByID retrieves a menu by its ID.
func (r *Repository) GetMenuByID(ctx context.Context, id string) (*model.Menu, error) {
	query := `SELECT ` + menuColumns + ` FROM menus WHERE id = $1`

	menu, err := scanMenu(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMenuNotFound
		}
		return nil, fmt.Errorf("failed to get menu by ID: %w", err)
	}

	return menu, nil
}

// ListMenus returns all menus ordered by date.
func (r *Repository) ListMenus(ctx context.Context) ([]*model.Menu, error) {
	query := `SELECT ` + menuColumns + ` FROM menus ORDER BY date, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list menus: %w", err)
	}
	defer rows.Close()

	menus := make([]*model.Menu, 0)
	for rows.Next() {
		menu, err := scanMenu(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu: %w", err)
		}
		menus = append(menus, menu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate menus: %w", err)
	}

	return menus, nil
}

// FindMenuOnDay returns a menu whose date lies in [start, end), ignoring the
// menu with id excludeID. An empty excludeID ignores nothing.
func (r *Repository) FindMenuOnDay(ctx context.Context, start, end time.Time, excludeID string) (*model.Menu, error) {
	query := `
		SELECT ` + menuColumns + `
		FROM menus
		WHERE date >= $1 AND date < $2 AND id <> $3
		ORDER BY date
		LIMIT 1
	`

	menu, err := scanMenu(r.pool.QueryRow(ctx, query, start, end, excludeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMenuNotFound
		}
		return nil, fmt.Errorf("failed to find menu on day: %w", err)
	}

	return menu, nil
}

// UpdateMenu replaces the date and meals of a menu.
func (r *Repository) UpdateMenu(ctx context.Context, menu *model.Menu) error {
	query := `
		UPDATE menus
		SET date = $2, day = $3, meal_ids = $4, updated_at = $5
		WHERE id = $1
		RETURNING ` + menuColumns

	stored, err := scanMenu(r.pool.QueryRow(ctx, query,
		menu.ID,
		menu.Date,
		dateOnly(menu.Day),
		pq.Array(nonNilIDs(menu.MealIDs)),
		menu.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMenuNotFound
		}
		if isUniqueViolation(err, "menus_day_key") {
			return ErrMenuDayExists
		}
		return fmt.Errorf("failed to update menu: %w", err)
	}

	*menu = *stored
	return nil
}

// DeleteMenu removes a menu and returns the deleted record.
func (r *Repository) DeleteMenu(ctx context.Context, id string) (*model.Menu, error) {
	query := `DELETE FROM menus WHERE id = $1 RETURNING ` + menuColumns

	menu, err := scanMenu(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMenuNotFound
		}
		return nil, fmt.Errorf("failed to delete menu: %w", err)
	}

	return menu, nil
}

func scanMenu(row pgx.Row) (*model.Menu, error) {
	var menu model.Menu
	err := row.Scan(
		&menu.ID,
		&menu.Date,
		&menu.Day,
		pq.Array(&menu.MealIDs),
		&menu.CreatedAt,
		&menu.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	menu.MealIDs = nonNilIDs(menu.MealIDs)
	return &menu, nil
}

// dateOnly maps a local day start to the UTC midnight of the same
// calendar date, which is what a DATE column stores.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/canteen/canteen/internal/model"
)

// Common errors for allergenic repository operations.
var (
	ErrAllergenicNotFound   = errors.New("allergenic not found")
	ErrAllergenicNameExists = errors.New("allergenic name already exists")
)

const allergenicColumns = `id, name, picture, created_at, updated_at`

// CreateAllergenic inserts a new allergenic.
func (r *Repository) CreateAllergenic(ctx context.Context, a *model.Allergenic) error {
	query := `
		INSERT INTO allergenics (id, name, picture, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query, a.ID, a.Name, a.Picture, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "allergenics_name_key") {
			return ErrAllergenicNameExists
		}
		return fmt.Errorf("failed to create allergenic: %w", err)
	}

	return nil
}

// GetAllergenicByID retrieves an allergenic by its ID.
func (r *Repository) GetAllergenicByID(ctx context.Context, id string) (*model.Allergenic, error) {
	query := `SELECT ` + allergenicColumns + ` FROM allergenics WHERE id = $1`

	a, err := scanAllergenic(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAllergenicNotFound
		}
		return nil, fmt.Errorf("failed to get allergenic by ID: %w", err)
	}

	return a, nil
}

// GetAllergenicByName retrieves an allergenic by its unique name.
func (r *Repository) GetAllergenicByName(ctx context.Context, name string) (*model.Allergenic, error) {
	query := `SELECT ` + allergenicColumns + ` FROM allergenics WHERE name = $1`

	a, err := scanAllergenic(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAllergenicNotFound
		}
		return nil, fmt.Errorf("failed to get allergenic by name: %w", err)
	}

	return a, nil
}

// ListAllergenics returns all allergenics in creation order.
func (r *Repository) ListAllergenics(ctx context.Context) ([]*model.Allergenic, error) {
	query := `SELECT ` + allergenicColumns + ` FROM allergenics ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list allergenics: %w", err)
	}
	defer rows.Close()

	return collectAllergenics(rows)
}

// GetAllergenicsByIDs resolves allergenic references, preserving their order.
// References that no longer resolve are dropped.
func (r *Repository) GetAllergenicsByIDs(ctx context.Context, ids []string) ([]*model.Allergenic, error) {
	if len(ids) == 0 {
		return []*model.Allergenic{}, nil
	}

	query := `SELECT ` + allergenicColumns + ` FROM allergenics WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get allergenics by IDs: %w", err)
	}
	defer rows.Close()

	found, err := collectAllergenics(rows)
	if err != nil {
		return nil, err
	}

	return orderByIDs(ids, found, func(a *model.Allergenic) string { return a.ID }), nil
}

// UpdateAllergenic replaces the name and picture of an allergenic.
func (r *Repository) UpdateAllergenic(ctx context.Context, a *model.Allergenic) error {
	query := `
		UPDATE allergenics
		SET name = $2, picture = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, a.ID, a.Name, a.Picture, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "allergenics_name_key") {
			return ErrAllergenicNameExists
		}
		return fmt.Errorf("failed to update allergenic: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrAllergenicNotFound
	}

	return nil
}

// DeleteAllergenic removes an allergenic and returns the deleted record.
// Meals referencing it keep the dangling id.
func (r *Repository) DeleteAllergenic(ctx context.Context, id string) (*model.Allergenic, error) {
	query := `DELETE FROM allergenics WHERE id = $1 RETURNING ` + allergenicColumns

	a, err := scanAllergenic(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAllergenicNotFound
		}
		return nil, fmt.Errorf("failed to delete allergenic: %w", err)
	}

	return a, nil
}

func scanAllergenic(row pgx.Row) (*model.Allergenic, error) {
	var a model.Allergenic
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Picture,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return &a, err
}

func collectAllergenics(rows pgx.Rows) ([]*model.Allergenic, error) {
	allergenics := make([]*model.Allergenic, 0)
	for rows.Next() {
		a, err := scanAllergenic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan allergenic: %w", err)
		}
		allergenics = append(allergenics, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate allergenics: %w", err)
	}
	return allergenics, nil
}

// Package testutil holds helpers shared by database and Redis backed tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/canteen/canteen/internal/auth"
	"github.com/canteen/canteen/internal/migrations"
	"github.com/canteen/canteen/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops every canteen table and reapplies the migrations.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := migrations.Reset(ctx, db); err != nil {
		return fmt.Errorf("reset schema: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestAllergenic creates a test allergenic with sensible defaults.
func NewTestAllergenic(t testing.TB, name string) *model.Allergenic {
	t.Helper()
	now := time.Now().UTC()
	return &model.Allergenic{
		ID:        model.NewID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestMeal creates a test meal referencing the given allergenics.
func NewTestMeal(t testing.TB, description string, allergenicIDs ...string) *model.Meal {
	t.Helper()
	now := time.Now().UTC()
	if allergenicIDs == nil {
		allergenicIDs = []string{}
	}
	return &model.Meal{
		ID:            model.NewID(),
		Type:          model.MealTypeFromTheKitchen,
		Description:   description,
		Price:         4.5,
		AllergenicIDs: allergenicIDs,
		Ratings:       []model.Rating{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// NewTestMenu creates a test menu on the calendar day of date in UTC.
func NewTestMenu(t testing.TB, date time.Time, mealIDs ...string) *model.Menu {
	t.Helper()
	now := time.Now().UTC()
	if mealIDs == nil {
		mealIDs = []string{}
	}
	day, _ := model.CalendarDay(date, time.UTC)
	return &model.Menu{
		ID:        model.NewID(),
		Date:      date.UTC(),
		Day:       day,
		MealIDs:   mealIDs,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestUser creates a test user whose password hash matches password.
func NewTestUser(t testing.TB, email, password string) *model.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &model.User{
		ID:           model.NewID(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
}

// UniqueName generates a unique name for tests.
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

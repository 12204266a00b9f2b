//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/cookiejar"
	"os"
	"testing"
	"time"

	"github.com/canteen/canteen/internal/repository"
	"github.com/canteen/canteen/internal/testutil"
)

const sessionCookie = "jwt-token"

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type allergenicResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ratingResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Rating      int    `json:"rating"`
	Description string `json:"description"`
}

type mealResponse struct {
	ID          string               `json:"id"`
	Type        string               `json:"type"`
	Description string               `json:"description"`
	Price       float64              `json:"price"`
	Allergenics json.RawMessage   `json:"allergenics"`
	Ratings     []ratingResponse `json:"ratings"`
}

type menuResponse struct {
	ID    string          `json:"id"`
	Date  time.Time       `json:"date"`
	Meals json.RawMessage `json:"meals"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type client struct {
	t       *testing.T
	baseURL string
	http    *http.Client
}

func TestE2ESmoke(t *testing.T) {
	c := signedInClient(t)

	var me userResponse
	if status := c.do(http.MethodGet, "/api/users/me", nil, &me); status != http.StatusOK {
		t.Fatalf("me: status %d", status)
	}

	allergenic := allergenicResponse{}
	name := testutil.UniqueName("Peanuts")
	if status := c.do(http.MethodPost, "/api/allergenics", map[string]any{"name": name}, &allergenic); status != http.StatusCreated {
		t.Fatalf("create allergenic: status %d", status)
	}
	defer c.do(http.MethodDelete, "/api/allergenics/"+allergenic.ID, nil, nil)

	var dup messageResponse
	if status := c.do(http.MethodPost, "/api/allergenics", map[string]any{"name": name}, &dup); status != http.StatusConflict {
		t.Fatalf("duplicate allergenic: status %d", status)
	}

	var meal mealResponse
	status := c.do(http.MethodPost, "/api/meals", map[string]any{
		"type":        "Meat free",
		"description": "Satay tofu",
		"price":       6.5,
		"allergenics": []string{allergenic.ID},
	}, &meal)
	if status != http.StatusCreated {
		t.Fatalf("create meal: status %d", status)
	}
	defer c.do(http.MethodDelete, "/api/meals/"+meal.ID, nil, nil)

	rating := map[string]any{"userId": me.ID, "rating": 4, "description": "tasty"}
	if status := c.do(http.MethodPost, "/api/meals/ratings/"+meal.ID, rating, nil); status != http.StatusCreated {
		t.Fatalf("rate meal: status %d", status)
	}
	var already messageResponse
	if status := c.do(http.MethodPost, "/api/meals/ratings/"+meal.ID, rating, &already); status != http.StatusBadRequest {
		t.Fatalf("rate twice: status %d", status)
	}
	if already.Message != "You have already rated the meal" {
		t.Errorf("rate twice message = %q", already.Message)
	}

	var updated ratingResponse
	if status := c.do(http.MethodPut, "/api/meals/ratings/"+meal.ID, map[string]any{"userId": me.ID, "rating": 5}, &updated); status != http.StatusOK {
		t.Fatalf("update rating: status %d", status)
	}
	if updated.Rating != 5 || updated.Description != "tasty" {
		t.Errorf("updated rating = %+v, want 5 with the old description", updated)
	}

	var populated mealResponse
	if status := c.do(http.MethodGet, "/api/meals/"+meal.ID, nil, &populated); status != http.StatusOK {
		t.Fatalf("get meal: status %d", status)
	}
	var allergenics []allergenicResponse
	if err := json.Unmarshal(populated.Allergenics, &allergenics); err != nil || len(allergenics) != 1 || allergenics[0].Name != name {
		t.Errorf("populated allergenics = %s (%v)", populated.Allergenics, err)
	}
	if len(populated.Ratings) != 1 {
		t.Errorf("ratings = %+v, want 1", populated.Ratings)
	}

	day := time.Date(2100, 1, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, rand.IntN(30000))
	var menu menuResponse
	status = c.do(http.MethodPost, "/api/menus", map[string]any{
		"date":  day.UnixMilli(),
		"meals": []string{meal.ID},
	}, &menu)
	if status != http.StatusCreated {
		t.Fatalf("create menu: status %d", status)
	}
	defer c.do(http.MethodDelete, "/api/menus/"+menu.ID, nil, nil)

	var conflict messageResponse
	status = c.do(http.MethodPost, "/api/menus", map[string]any{
		"date":  day.Add(time.Hour).UnixMilli(),
		"meals": []string{},
	}, &conflict)
	if status != http.StatusConflict {
		t.Fatalf("second menu on the same day: status %d", status)
	}

	if status := c.do(http.MethodDelete, "/api/meals/ratings/"+meal.ID+"/"+me.ID, nil, nil); status != http.StatusOK {
		t.Fatalf("delete rating: status %d", status)
	}
	if status := c.do(http.MethodDelete, "/api/meals/ratings/"+meal.ID+"/"+me.ID, nil, nil); status != http.StatusNotFound {
		t.Fatalf("delete rating twice: status %d", status)
	}
}

func TestE2ESessionLifecycle(t *testing.T) {
	c := signedInClient(t)

	if status := c.do(http.MethodGet, "/api/allergenics", nil, nil); status != http.StatusOK {
		t.Fatalf("list with session: status %d", status)
	}

	if status := c.do(http.MethodGet, "/api/users/sign-out", nil, nil); status != http.StatusOK {
		t.Fatalf("sign-out: status %d", status)
	}

	var denied messageResponse
	if status := c.do(http.MethodGet, "/api/allergenics", nil, &denied); status != http.StatusUnauthorized {
		t.Fatalf("list after sign-out: status %d", status)
	}
	if denied.Message != "Access denied. No valid session token provided." {
		t.Errorf("message = %q", denied.Message)
	}
}

func TestE2ESignInFailures(t *testing.T) {
	c := newClient(t)
	email, _ := seedUser(t)

	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"invalid email", map[string]any{"email": "nope", "password": "secret"}, http.StatusNotFound},
		{"unknown email", map[string]any{"email": "nobody-" + testutil.UniqueName("x") + "@example.com", "password": "secret"}, http.StatusNotFound},
		{"wrong password", map[string]any{"email": email, "password": "wrong-password"}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msg messageResponse
			if status := c.do(http.MethodPost, "/api/users/sign-in", tt.body, &msg); status != tt.status {
				t.Fatalf("status %d, want %d (%s)", status, tt.status, msg.Message)
			}
			if msg.Message == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func signedInClient(t *testing.T) *client {
	t.Helper()
	c := newClient(t)
	email, password := seedUser(t)

	var user userResponse
	status := c.do(http.MethodPost, "/api/users/sign-in", map[string]any{"email": email, "password": password}, &user)
	if status != http.StatusOK {
		t.Fatalf("sign-in: status %d", status)
	}
	if user.Email != email {
		t.Fatalf("signed in as %q, want %q", user.Email, email)
	}
	return c
}

func newClient(t *testing.T) *client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &client{
		t:       t,
		baseURL: envOrDefault("CANTEEN_BASE_URL", "http://localhost:8080"),
		http:    &http.Client{Timeout: 15 * time.Second, Jar: jar},
	}
}

// seedUser writes a fresh account straight to the database.
func seedUser(t *testing.T) (email, password string) {
	t.Helper()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer repo.Close()

	email = fmt.Sprintf("%s@example.com", testutil.UniqueName("e2e"))
	password = "e2e-password"
	user := testutil.NewTestUser(t, email, password)
	if err := repo.UpsertUser(ctx, user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return email, password
}

func (c *client) do(method, path string, body any, out any) int {
	c.t.Helper()

	var buf io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal payload: %v", err)
		}
		buf = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+path, buf)
	if err != nil {
		c.t.Fatalf("create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("request %s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			c.t.Fatalf("decode response: %v", err)
		}
	}

	return resp.StatusCode
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Command seed-users creates or updates canteen accounts from a YAML file.
//
//	users:
//	  - name: Ada Lovelace
//	    email: ada@example.com
//	    password: correct-horse
//
// Passwords are hashed with argon2id; existing accounts are matched by email.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/canteen/canteen/internal/auth"
	"github.com/canteen/canteen/internal/model"
	"github.com/canteen/canteen/internal/repository"
	"github.com/canteen/canteen/internal/validation"
)

type seedFile struct {
	Users []seedUser `yaml:"users"`
}

type seedUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type output struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		file        = flag.String("file", "users.yaml", "YAML file with the users to seed")
		migrate     = flag.Bool("migrate", true, "Apply migrations before seeding")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	f, err := os.Open(*file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open seed file:", err)
		os.Exit(1)
	}
	users, err := loadSeed(f)
	f.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	if *migrate {
		if err := repo.Migrate(ctx); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	}

	results := make([]output, 0, len(users))
	for _, u := range users {
		user, err := toModel(u)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		if err := repo.UpsertUser(ctx, user); err != nil {
			fmt.Fprintf(os.Stderr, "upsert %s: %v\n", u.Email, err)
			os.Exit(1)
		}
		results = append(results, output{UserID: user.ID, Name: user.Name, Email: user.Email})
	}

	if err := writeOutput(os.Stdout, *format, results); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// loadSeed decodes and checks the seed file. Unknown keys are rejected so
// typos like "pasword" fail loudly.
func loadSeed(r io.Reader) ([]seedUser, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var sf seedFile
	if err := dec.Decode(&sf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("seed file is empty")
		}
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if len(sf.Users) == 0 {
		return nil, errors.New("seed file lists no users")
	}

	seen := make(map[string]bool, len(sf.Users))
	for i, u := range sf.Users {
		if strings.TrimSpace(u.Name) == "" {
			return nil, fmt.Errorf("users[%d]: name is required", i)
		}
		// Seeded credentials must be usable at sign-in.
		if _, err := validation.ValidateSignIn(map[string]any{
			"email":    u.Email,
			"password": u.Password,
		}); err != nil {
			return nil, fmt.Errorf("users[%d]: %w", i, err)
		}
		key := strings.ToLower(u.Email)
		if seen[key] {
			return nil, fmt.Errorf("users[%d]: duplicate email %s", i, u.Email)
		}
		seen[key] = true
	}
	return sf.Users, nil
}

func toModel(u seedUser) (*model.User, error) {
	hash, err := auth.HashPassword(u.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password for %s: %w", u.Email, err)
	}
	return &model.User{
		ID:           model.NewID(),
		Name:         strings.TrimSpace(u.Name),
		Email:        u.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func writeOutput(w io.Writer, format string, results []output) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "plain":
		for _, r := range results {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", r.UserID, r.Email, r.Name); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

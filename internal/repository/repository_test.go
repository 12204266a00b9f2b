package repository

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestOrderByIDs(t *testing.T) {
	t.Parallel()

	type item struct{ id string }
	idOf := func(i item) string { return i.id }
	items := []item{{"a"}, {"b"}, {"c"}}

	tests := []struct {
		name string
		ids  []string
		want []item
	}{
		{name: "reference order", ids: []string{"c", "a"}, want: []item{{"c"}, {"a"}}},
		{name: "missing dropped", ids: []string{"x", "b"}, want: []item{{"b"}}},
		{name: "duplicates repeat", ids: []string{"a", "a"}, want: []item{{"a"}, {"a"}}},
		{name: "empty", ids: nil, want: []item{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := orderByIDs(tt.ids, items, idOf)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("orderByIDs(%v) = %v, want %v", tt.ids, got, tt.want)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	dup := &pgconn.PgError{Code: "23505", ConstraintName: "menus_day_key"}
	other := &pgconn.PgError{Code: "23503", ConstraintName: "menus_day_key"}

	tests := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{name: "any constraint", err: dup, want: true},
		{name: "named constraint", err: dup, constraint: "menus_day_key", want: true},
		{name: "wrapped", err: fmt.Errorf("insert: %w", dup), constraint: "menus_day_key", want: true},
		{name: "other constraint", err: dup, constraint: "allergenics_name_key", want: false},
		{name: "other code", err: other, want: false},
		{name: "plain error", err: errors.New("duplicate key 23505"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := isUniqueViolation(tt.err, tt.constraint); got != tt.want {
				t.Fatalf("isUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDateOnly(t *testing.T) {
	t.Parallel()

	tokyo := time.FixedZone("JST", 9*60*60)
	start := time.Date(2024, 3, 5, 0, 0, 0, 0, tokyo)

	got := dateOnly(start)
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("dateOnly() = %v, want %v", got, want)
	}
}

func TestRatingsCodec(t *testing.T) {
	t.Parallel()

	empty, err := encodeRatings(nil)
	if err != nil {
		t.Fatalf("encode nil: %v", err)
	}
	if string(empty) != "[]" {
		t.Fatalf("encode nil = %s, want []", empty)
	}

	decoded, err := decodeRatings([]byte(`[{"id":"r1","userId":"u1","rating":4}]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 1 || decoded[0].UserID != "u1" || decoded[0].Rating != 4 {
		t.Fatalf("unexpected ratings: %+v", decoded)
	}

	if _, err := decodeRatings([]byte(`{`)); err == nil {
		t.Fatal("expected error for malformed ratings")
	}

	none, err := decodeRatings(nil)
	if err != nil || none == nil || len(none) != 0 {
		t.Fatalf("decode nil = %v, %v; want empty slice", none, err)
	}
}

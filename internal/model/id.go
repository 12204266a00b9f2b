package model

import (
	"github.com/oklog/ulid/v2"
)

// NewID returns a new ULID string for an entity or rating.
func NewID() string {
	return ulid.Make().String()
}

// IsValidID reports whether id has the shape of an entity identifier.
// A well-formed id may still not resolve to a stored record.
func IsValidID(id string) bool {
	if id == "" {
		return false
	}
	_, err := ulid.ParseStrict(id)
	return err == nil
}

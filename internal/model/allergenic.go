// Package model defines domain entities for the application.
package model

import "time"

// Allergenic is an allergen that meals can reference.
// Picture holds base64 encoded image bytes and is optional.
type Allergenic struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture,omitempty"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

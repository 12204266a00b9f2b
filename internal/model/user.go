package model

import "time"

// User is a canteen account able to sign in.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	CreatedAt    time.Time `json:"-"`
}

// SessionClaims is the identity carried by a session token.
type SessionClaims struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Claims returns the session claims for the user.
func (u *User) Claims() *SessionClaims {
	return &SessionClaims{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
	}
}

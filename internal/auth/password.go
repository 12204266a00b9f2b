package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// CheckPassword reports whether plain matches the stored password hash.
// Argon2id hashes are produced by HashPassword; bcrypt hashes come from
// accounts imported from the previous system. Any failure, including an
// unknown hash format, is reported as a mismatch.
func CheckPassword(plain, stored string) bool {
	switch {
	case strings.HasPrefix(stored, "$argon2id$"):
		ok, err := VerifyPassword(plain, stored)
		return err == nil && ok
	case isBcryptHash(stored):
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
	default:
		return false
	}
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") ||
		strings.HasPrefix(s, "$2b$") ||
		strings.HasPrefix(s, "$2y$")
}

package validation

import (
	"net/mail"
	"strings"
)

// Password bounds for sign-in.
const (
	MinPasswordLength = 4
	MaxPasswordLength = 1024
)

// SignIn is a validated sign-in payload.
type SignIn struct {
	Email    string
	Password string
}

// ValidateSignIn checks a sign-in payload.
func ValidateSignIn(payload map[string]any) (*SignIn, error) {
	email, _, err := checkString(payload, "email", stringRule{required: true})
	if err != nil {
		return nil, err
	}
	if !isEmail(email) {
		return nil, newError("email", "%q must be a valid email", "email")
	}

	password, _, err := checkString(payload, "password", stringRule{
		required: true,
		min:      MinPasswordLength,
		max:      MaxPasswordLength,
	})
	if err != nil {
		return nil, err
	}

	if err := checkUnknown(payload, "email", "password"); err != nil {
		return nil, err
	}

	return &SignIn{Email: email, Password: password}, nil
}

// isEmail accepts a bare address with a dotted domain, without display name.
func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	domain := s[strings.LastIndex(s, "@")+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

package services

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Password policy errors
var (
	ErrPasswordTooShort = newError(ErrInvalidInput, "Password must be at least 8 characters long")
	ErrPasswordTooLong  = newError(ErrInvalidInput, "Password must be at most 72 bytes long")
	ErrPasswordNoDigit  = newError(ErrInvalidInput, "Password must contain at least one number")
	ErrPasswordNoUpper  = newError(ErrInvalidInput, "Password must contain at least one uppercase letter")
	ErrPasswordNoLower  = newError(ErrInvalidInput, "Password must contain at least one lowercase letter")
)

const (
	minPasswordLength    = 8
	maxPasswordByteCount = 72 // bcrypt input limit
)

// ValidatePassword checks password against the complexity policy and
// returns the first rule it breaks.
func ValidatePassword(password string) error {
	if len([]rune(password)) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > maxPasswordByteCount {
		return ErrPasswordTooLong
	}

	var digit, upper, lower bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		}
	}

	switch {
	case !digit:
		return ErrPasswordNoDigit
	case !upper:
		return ErrPasswordNoUpper
	case !lower:
		return ErrPasswordNoLower
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

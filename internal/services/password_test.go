package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		want     error
	}{
		{"Passw0rd", nil},
		{"Ünïcode1a", nil},
		{"Pa1", ErrPasswordTooShort},
		{"password1", ErrPasswordNoUpper},
		{"PASSWORD1", ErrPasswordNoLower},
		{"Password", ErrPasswordNoDigit},
		{"Aa1" + strings.Repeat("x", 70), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}

func TestPolicyMessages(t *testing.T) {
	assert.EqualError(t, ErrPasswordTooShort, "Password must be at least 8 characters long")
	assert.EqualError(t, ErrPasswordNoDigit, "Password must contain at least one number")
	assert.EqualError(t, ErrPasswordNoUpper, "Password must contain at least one uppercase letter")
	assert.EqualError(t, ErrPasswordNoLower, "Password must contain at least one lowercase letter")
}

func TestHashAndCheckPassword(t *testing.T) {
	h, err := hashPassword("Passw0rd")
	assert.NoError(t, err)
	assert.NotEqual(t, "Passw0rd", h)
	assert.True(t, checkPassword(h, "Passw0rd"))
	assert.False(t, checkPassword(h, "passw0rd"))
	assert.False(t, checkPassword("", "Passw0rd"))
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"alice@example.com", "alice@example.com", false},
		{"  Alice@Example.COM ", "alice@example.com", false},
		{"alice", "", true},
		{"alice@localhost", "", true},
		{"Alice <alice@example.com>", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeEmail(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidEmail)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorClasses(t *testing.T) {
	assert.ErrorIs(t, ErrOperandOutOfRange, ErrValidation)
	assert.ErrorIs(t, ErrOperandOutOfRange, ErrInvalidInput)
	assert.ErrorIs(t, ErrInsufficientCredits, ErrForbidden)
	assert.ErrorIs(t, ErrUnauthorized, ErrUnauthenticated)
	assert.ErrorIs(t, ErrUserAlreadyExists, ErrConflict)
	assert.NotErrorIs(t, ErrLoginBadCredentials, ErrValidation)

	var svcErr *Error
	assert.ErrorAs(t, ErrSelfDeletion, &svcErr)
	assert.Equal(t, "Cannot delete your own account", svcErr.Message)
}

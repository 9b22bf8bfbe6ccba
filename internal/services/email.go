package services

import (
	"net/mail"
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeEmail validates a bare email address and returns its case-folded
// form, which is the form stored and looked up.
func NormalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", ErrInvalidEmail
	}
	if _, domain, _ := strings.Cut(addr.Address, "@"); !strings.Contains(domain, ".") {
		return "", ErrInvalidEmail
	}
	// Casers hold state, so each call gets its own.
	return cases.Fold().String(addr.Address), nil
}

package validator

import (
	"errors"
	"strings"
)

// MinPasswordLength is the shortest password accepted for an account.
const MinPasswordLength = 8

// PasswordSpecials are the special characters a password may, and must at least once, contain.
const PasswordSpecials = "@$!%*?&"

// Password policy violations reported by CheckPasswordStrength.
var (
	ErrPasswordTooShort     = errors.New("password must be at least 8 characters")
	ErrPasswordNoLower      = errors.New("password must contain a lower-case letter")
	ErrPasswordNoUpper      = errors.New("password must contain an upper-case letter")
	ErrPasswordNoDigit      = errors.New("password must contain a digit")
	ErrPasswordNoSpecial    = errors.New("password must contain one of " + PasswordSpecials)
	ErrPasswordInvalidChars = errors.New("password may only contain letters, digits and " + PasswordSpecials)
)

// CheckPasswordStrength enforces the account password policy: at least MinPasswordLength
// characters drawn from ASCII letters, digits and PasswordSpecials, with at least one of
// each of lower-case, upper-case, digit and special. The first violation found is returned.
func CheckPasswordStrength(password string) error {
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSpecials, r):
			special = true
		default:
			return ErrPasswordInvalidChars
		}
	}

	switch {
	case len(password) < MinPasswordLength:
		return ErrPasswordTooShort
	case !lower:
		return ErrPasswordNoLower
	case !upper:
		return ErrPasswordNoUpper
	case !digit:
		return ErrPasswordNoDigit
	case !special:
		return ErrPasswordNoSpecial
	}
	return nil
}

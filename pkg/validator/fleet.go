package validator

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidVIN reports a vehicle identification number that is not 17 valid characters.
	ErrInvalidVIN = errors.New("vin must be 17 characters of A-Z (no I, O or Q) and 0-9")
	// ErrInvalidPlate reports a registration plate with unsupported characters or length.
	ErrInvalidPlate = errors.New("plate must be 1-16 letters, digits, spaces or hyphens")
)

const (
	vinLength      = 17
	maxPlateLength = 16
)

// CheckVIN validates an ISO 3779 vehicle identification number, case-insensitively.
func CheckVIN(vin string) error {
	vin = strings.ToUpper(strings.TrimSpace(vin))
	if len(vin) != vinLength {
		return ErrInvalidVIN
	}
	for _, r := range vin {
		switch {
		case r == 'I' || r == 'O' || r == 'Q':
			return ErrInvalidVIN
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			return ErrInvalidVIN
		}
	}
	return nil
}

// CheckPlate validates a registration plate. Surrounding whitespace is ignored.
func CheckPlate(plate string) error {
	plate = strings.TrimSpace(plate)
	if plate == "" || len(plate) > maxPlateLength {
		return ErrInvalidPlate
	}

	alnum := false
	for _, r := range plate {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			alnum = true
		case r == ' ' || r == '-':
		default:
			return ErrInvalidPlate
		}
	}
	if !alnum {
		return ErrInvalidPlate
	}
	return nil
}

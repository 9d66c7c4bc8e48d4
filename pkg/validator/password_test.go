package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckPasswordStrength(t *testing.T) {
	cases := []struct {
		password string
		want     error
	}{
		{"Fleet#2024", ErrPasswordInvalidChars},
		{"Fleet@2024", nil},
		{"Aa1@aaaa", nil},
		{"Aa1@aaa", ErrPasswordTooShort},
		{"", ErrPasswordTooShort},
		{"AAAA1111@", ErrPasswordNoLower},
		{"aaaa1111@", ErrPasswordNoUpper},
		{"AaaaBbbb@", ErrPasswordNoDigit},
		{"Aaaa11111", ErrPasswordNoSpecial},
		{"Aaaa 111@", ErrPasswordInvalidChars},
		{"Ñandú123@x", ErrPasswordInvalidChars},
	}

	for _, tc := range cases {
		t.Run(tc.password, func(t *testing.T) {
			err := CheckPasswordStrength(tc.password)
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.want)
		})
	}
}

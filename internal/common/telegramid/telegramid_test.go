package telegramid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "987654321", "987654321"},
		{"leading zeros", "000123", "123"},
		{"whitespace", "  42 ", "42"},
		{"above 2^53", "9007199254740993", "9007199254740993"},
		{"int64 max", "9223372036854775807", "9223372036854775807"},
		{"zero padded int64 max", "0009223372036854775807", "9223372036854775807"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Invalid(t *testing.T) {
	for _, in := range []string{"", "0", "000", "-5", "1.5", "1e9", "abc", "123456789012345678901",
		"9223372036854775808", "18446744073709551615", "99999999999999999999"} {
		_, err := Normalize(in)
		assert.ErrorIs(t, err, ErrInvalid, "input %q", in)
	}
}

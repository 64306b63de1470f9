// Package telegramid normalizes Telegram user identifiers to their canonical
// string form. Ids are kept as strings end to end so values above 2^53 never
// pass through a float.
package telegramid

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalid = errors.New("invalid telegram id")

// Normalize trims whitespace and leading zeros and requires a positive
// decimal integer.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrInvalid
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", ErrInvalid
		}
	}
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return "", ErrInvalid
	}
	// The Bot API addresses chats by signed 64-bit ids.
	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		return "", ErrInvalid
	}
	return s, nil
}

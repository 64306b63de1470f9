// Package sharecode generates and normalizes project invitation codes.
package sharecode

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
)

const (
	Alphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	DefaultLength = 6

	minLength = 4
	maxLength = 16
)

type Generator interface {
	Generate() (string, error)
}

// Random draws codes from crypto/rand.
type Random struct {
	length int
	source io.Reader
}

func NewRandom(length int) *Random {
	if length < minLength || length > maxLength {
		length = DefaultLength
	}
	return &Random{length: length, source: rand.Reader}
}

func (g *Random) Generate() (string, error) {
	n := big.NewInt(int64(len(Alphabet)))
	b := make([]byte, g.length)
	for i := range b {
		idx, err := rand.Int(g.source, n)
		if err != nil {
			return "", fmt.Errorf("read random source: %w", err)
		}
		b[i] = Alphabet[idx.Int64()]
	}
	return string(b), nil
}

// Normalize returns the canonical upper-case form used for storage and lookup.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid reports whether a normalized code could have been generated.
func Valid(code string) bool {
	if len(code) < minLength || len(code) > maxLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(Alphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}

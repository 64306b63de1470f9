package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueAndParse(t *testing.T) {
	now := time.Now()
	m := NewManager(testSecret, time.Hour, "todo-test").WithClock(fixedClock(now))

	token, exp, err := m.Issue(42, "987654321")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour).Unix(), exp.Unix())

	s, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), s.UserID)
	assert.Equal(t, "987654321", s.TelegramID)
}

func TestParse_Expired(t *testing.T) {
	now := time.Now()
	m := NewManager(testSecret, time.Minute, "todo-test").WithClock(fixedClock(now))
	token, _, err := m.Issue(1, "")
	require.NoError(t, err)

	m.WithClock(fixedClock(now.Add(2 * time.Minute)))
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestParse_ForeignKey(t *testing.T) {
	token, _, err := NewManager("another-secret-abcdefgh", time.Hour, "todo-test").Issue(1, "")
	require.NoError(t, err)

	_, err = NewManager(testSecret, time.Hour, "todo-test").Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_TamperedPayload(t *testing.T) {
	m := NewManager(testSecret, time.Hour, "todo-test")
	token, _, err := m.Issue(1, "")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged, _, err := NewManager("attacker-secret-xxxxxx", time.Hour, "todo-test").Issue(2, "")
	require.NoError(t, err)
	parts[1] = strings.Split(forged, ".")[1]

	_, err = m.Parse(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsNoneAlgorithm(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "1",
		Issuer:    "todo-test",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewManager(testSecret, time.Hour, "todo-test").Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_WrongIssuer(t *testing.T) {
	token, _, err := NewManager(testSecret, time.Hour, "someone-else").Issue(1, "")
	require.NoError(t, err)

	_, err = NewManager(testSecret, time.Hour, "todo-test").Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := NewContext(context.Background(), &Session{UserID: 7})
	s, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(7), s.UserID)
}

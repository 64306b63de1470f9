// Package initdata verifies Telegram Mini App init-data.
//
// See https://core.telegram.org/bots/webapps#validating-data-received-via-the-mini-app
package initdata

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	tgdata "github.com/telegram-mini-apps/init-data-golang"

	"github.com/open-builders/todo-backend/internal/common/telegramid"
)

const (
	// DefaultFreshnessWindow is the maximum accepted age of auth_date.
	DefaultFreshnessWindow = time.Hour
	// MaxClockSkew is how far auth_date may lie in the future.
	MaxClockSkew = time.Minute

	secretKeySeed = "WebAppData"
)

var (
	ErrInvalidSignature = errors.New("init data signature is invalid")
	ErrExpired          = errors.New("init data is expired")
	ErrMissingUserData  = errors.New("init data has no valid user")
	ErrAuthDateMissing  = errors.New("init data has no auth_date")
	ErrMalformed        = errors.New("init data is malformed")
)

// AuthDatePolicy decides what happens when auth_date is absent.
type AuthDatePolicy int

const (
	// RequireAuthDate rejects init-data without auth_date.
	RequireAuthDate AuthDatePolicy = iota
	// AllowMissingAuthDate skips the freshness check when auth_date is absent.
	AllowMissingAuthDate
)

type Options struct {
	// FreshnessWindow of zero disables the age check.
	FreshnessWindow time.Duration
	AuthDatePolicy  AuthDatePolicy
}

// Identity is the Telegram user asserted by verified init-data.
type Identity struct {
	TelegramID   string
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
	PhotoURL     string
	// AuthDate is zero when the payload carried none.
	AuthDate time.Time
}

type userPayload struct {
	ID           json.Number `json:"id" validate:"required"`
	Username     string      `json:"username" validate:"omitempty,max=32"`
	FirstName    string      `json:"first_name" validate:"omitempty,max=64"`
	LastName     string      `json:"last_name" validate:"omitempty,max=64"`
	LanguageCode string      `json:"language_code" validate:"omitempty,max=35"`
	PhotoURL     string      `json:"photo_url" validate:"omitempty,url"`
}

type Verifier struct {
	opts     Options
	validate *validator.Validate
}

func NewVerifier(opts Options) *Verifier {
	return &Verifier{
		opts:     opts,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Verify checks the signature of raw against botToken, then its freshness
// relative to now, and returns the embedded user.
func (v *Verifier) Verify(raw, botToken string, now time.Time) (*Identity, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	// Telegram never repeats a field. The signature check only reads the
	// first value of each key, so repeats are refused up front.
	for k, vs := range values {
		if len(vs) != 1 {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrMalformed, k)
		}
	}

	if err := verifySignature(values, raw, botToken); err != nil {
		return nil, err
	}

	authDate, err := v.checkAuthDate(values.Get("auth_date"), values.Has("auth_date"), now)
	if err != nil {
		return nil, err
	}

	identity, err := v.parseUser(values.Get("user"))
	if err != nil {
		return nil, err
	}
	identity.AuthDate = authDate
	return identity, nil
}

// verifySignature checks the hash over every other field. Freshness is left
// to checkAuthDate so the injected clock applies.
func verifySignature(values url.Values, raw, botToken string) error {
	if !values.Has("auth_date") {
		// tgdata.Sign always renders auth_date, so such payloads can only be
		// checked by tgdata.Validate.
		if err := tgdata.Validate(raw, botToken, 0); err != nil {
			return signatureError(err)
		}
		return nil
	}

	sec, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad auth_date", ErrMalformed)
	}
	supplied, err := hex.DecodeString(values.Get("hash"))
	if err != nil || len(supplied) == 0 {
		return ErrInvalidSignature
	}
	expected, err := tgdata.SignQueryString(raw, botToken, time.Unix(sec, 0))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	want, err := hex.DecodeString(expected)
	if err != nil || !hmac.Equal(supplied, want) {
		return ErrInvalidSignature
	}
	return nil
}

func signatureError(err error) error {
	switch {
	case errors.Is(err, tgdata.ErrSignMissing), errors.Is(err, tgdata.ErrSignInvalid):
		return ErrInvalidSignature
	case errors.Is(err, tgdata.ErrAuthDateInvalid):
		return fmt.Errorf("%w: bad auth_date", ErrMalformed)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

func (v *Verifier) checkAuthDate(raw string, present bool, now time.Time) (time.Time, error) {
	if !present {
		if v.opts.AuthDatePolicy == AllowMissingAuthDate {
			return time.Time{}, nil
		}
		return time.Time{}, ErrAuthDateMissing
	}

	sec, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || sec <= 0 {
		return time.Time{}, fmt.Errorf("%w: bad auth_date", ErrMalformed)
	}
	authDate := time.Unix(sec, 0)

	if v.opts.FreshnessWindow > 0 {
		if now.Sub(authDate) > v.opts.FreshnessWindow || authDate.Sub(now) > MaxClockSkew {
			return time.Time{}, ErrExpired
		}
	}
	return authDate, nil
}

func (v *Verifier) parseUser(raw string) (*Identity, error) {
	if raw == "" {
		return nil, ErrMissingUserData
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var p userPayload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingUserData, err)
	}
	if err := v.validate.Struct(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingUserData, err)
	}

	id, err := telegramid.Normalize(p.ID.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingUserData, err)
	}

	return &Identity{
		TelegramID:   id,
		Username:     p.Username,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		LanguageCode: p.LanguageCode,
		PhotoURL:     p.PhotoURL,
	}, nil
}

func dataCheckString(values url.Values) string {
	lines := make([]string, 0, len(values))
	for k := range values {
		lines = append(lines, k+"="+values.Get(k))
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

func signature(checkString, botToken string) []byte {
	secret := hmac.New(sha256.New, []byte(secretKeySeed))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	return mac.Sum(nil)
}

// Sign builds a raw init-data string for fields signed with botToken.
// A hash entry in fields is ignored. Unlike the tgdata signer it leaves
// auth_date alone, so payloads without one can be produced.
func Sign(fields map[string]string, botToken string) string {
	values := url.Values{}
	for k, v := range fields {
		if k == "hash" {
			continue
		}
		values.Set(k, v)
	}
	values.Set("hash", hex.EncodeToString(signature(dataCheckString(values), botToken)))
	return values.Encode()
}

package middleware

import (
	stderrors "errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/open-builders/todo-backend/internal/common/errors"
	"github.com/open-builders/todo-backend/internal/features/auth/initdata"
)

const (
	InitDataHeader       = "X-Telegram-Init-Data"
	legacyInitDataHeader = "tg-init-data"
	initDataQuery        = "init_data"
	tmaAuthScheme        = "tma "

	identityKey = "telegram_identity"
)

type InitDataVerifier interface {
	VerifyInitData(raw string) (*initdata.Identity, error)
}

// RequireInitData rejects requests without valid Telegram init-data.
func RequireInitData(verifier InitDataVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := ExtractInitData(c)
		if raw == "" {
			AbortWithError(c, errors.NewUnauthorizedError("Telegram init data required"))
			return
		}
		if !verifyInto(c, verifier, raw) {
			return
		}
		c.Next()
	}
}

// OptionalInitData treats absent init-data as a request without Telegram
// context. Init-data that is present must still verify.
func OptionalInitData(verifier InitDataVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := ExtractInitData(c)
		if raw == "" {
			c.Next()
			return
		}
		if !verifyInto(c, verifier, raw) {
			return
		}
		c.Next()
	}
}

func verifyInto(c *gin.Context, verifier InitDataVerifier, raw string) bool {
	identity, err := verifier.VerifyInitData(raw)
	if err != nil {
		AbortWithError(c, InitDataError(err))
		return false
	}
	c.Set(identityKey, identity)
	return true
}

// ExtractInitData reads raw init-data from the X-Telegram-Init-Data header,
// an "Authorization: tma ..." header, the legacy tg-init-data header or the
// init_data query parameter, in that order.
func ExtractInitData(c *gin.Context) string {
	if raw := c.GetHeader(InitDataHeader); raw != "" {
		return raw
	}
	if auth := c.GetHeader("Authorization"); len(auth) > len(tmaAuthScheme) && strings.EqualFold(auth[:len(tmaAuthScheme)], tmaAuthScheme) {
		return strings.TrimSpace(auth[len(tmaAuthScheme):])
	}
	if raw := c.GetHeader(legacyInitDataHeader); raw != "" {
		return raw
	}
	return c.Query(initDataQuery)
}

// InitDataError maps verifier failures to API errors.
func InitDataError(err error) *errors.AppError {
	switch {
	case stderrors.Is(err, initdata.ErrExpired):
		return errors.Wrap(err, errors.ErrCodeInitDataExpired, "Telegram init data has expired")
	case stderrors.Is(err, initdata.ErrMissingUserData):
		return errors.Wrap(err, errors.ErrCodeMissingUserData, "Telegram init data carries no valid user")
	case stderrors.Is(err, initdata.ErrAuthDateMissing):
		return errors.Wrap(err, errors.ErrCodeInvalidInitData, "Telegram init data has no auth_date")
	default:
		return errors.Wrap(err, errors.ErrCodeInvalidInitData, "Telegram init data is invalid")
	}
}

// GetIdentity returns the verified Telegram identity, if any.
func GetIdentity(c *gin.Context) (*initdata.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*initdata.Identity)
	return identity, ok && identity != nil
}

package middleware

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/open-builders/todo-backend/internal/common/errors"
	"github.com/open-builders/todo-backend/internal/features/auth/initdata"
	"github.com/open-builders/todo-backend/internal/features/auth/session"
	"github.com/open-builders/todo-backend/internal/features/user/models"
)

const (
	bearerScheme = "Bearer "
	userIDKey    = "user_id"
)

type SessionParser interface {
	ParseToken(token string) (*session.Session, error)
}

// IdentityResolver maps a verified Telegram identity to a stored user.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, identity *initdata.Identity) (*models.User, error)
}

// RequireSession authenticates with a bearer token. Without one it falls
// back to the Telegram identity left by OptionalInitData or RequireInitData.
// resolver may be nil to disable the fallback.
func RequireSession(tokens SessionParser, resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := authenticate(c, tokens, resolver)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(userIDKey, sess.UserID)
		c.Request = c.Request.WithContext(session.NewContext(c.Request.Context(), sess))
		c.Next()
	}
}

func authenticate(c *gin.Context, tokens SessionParser, resolver IdentityResolver) (*session.Session, error) {
	if token, ok := bearerToken(c); ok {
		sess, err := tokens.ParseToken(token)
		if err != nil {
			if stderrors.Is(err, session.ErrExpiredToken) {
				return nil, errors.Wrap(err, errors.ErrCodeUnauthorized, "Session has expired")
			}
			return nil, errors.Wrap(err, errors.ErrCodeUnauthorized, "Invalid session token")
		}
		return sess, nil
	}

	if identity, ok := GetIdentity(c); ok && resolver != nil {
		user, err := resolver.ResolveIdentity(c.Request.Context(), identity)
		if err != nil {
			return nil, errors.NewDatabaseError("resolve telegram user", err)
		}
		return &session.Session{UserID: user.ID, TelegramID: identity.TelegramID}, nil
	}

	return nil, errors.NewUnauthorizedError("authentication required")
}

func bearerToken(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	if len(auth) <= len(bearerScheme) || !strings.EqualFold(auth[:len(bearerScheme)], bearerScheme) {
		return "", false
	}
	return strings.TrimSpace(auth[len(bearerScheme):]), true
}

// CurrentSession returns the session attached by RequireSession.
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	return session.FromContext(c.Request.Context())
}

func GetUserID(c *gin.Context) int64 {
	if id, ok := c.Get(userIDKey); ok {
		if v, ok := id.(int64); ok {
			return v
		}
	}
	return 0
}

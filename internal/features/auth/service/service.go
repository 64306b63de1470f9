package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/open-builders/todo-backend/internal/common/logger"
	"github.com/open-builders/todo-backend/internal/common/validation"
	"github.com/open-builders/todo-backend/internal/features/auth/initdata"
	"github.com/open-builders/todo-backend/internal/features/auth/session"
	"github.com/open-builders/todo-backend/internal/features/user/models"
	userservice "github.com/open-builders/todo-backend/internal/features/user/service"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Result is returned by every successful login.
// @Description Session token and the authenticated user
type Result struct {
	AccessToken string       `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

type AuthService interface {
	// VerifyInitData checks raw init-data against the bot token at the current time.
	VerifyInitData(raw string) (*initdata.Identity, error)
	// ResolveIdentity returns the stored user for a verified identity,
	// creating it on first sight.
	ResolveIdentity(ctx context.Context, identity *initdata.Identity) (*models.User, error)
	ParseToken(token string) (*session.Session, error)

	LoginWithTelegram(ctx context.Context, raw string) (*Result, error)
	Register(ctx context.Context, email, password string) (*Result, error)
	Login(ctx context.Context, email, password string) (*Result, error)
	Me(ctx context.Context, userID int64) (*models.User, error)
}

type Config struct {
	BotToken string
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	Now        func() time.Time
}

type authService struct {
	users    userservice.UserService
	verifier *initdata.Verifier
	sessions *session.Manager
	botToken string
	cost     int
	now      func() time.Time
}

func NewAuthService(users userservice.UserService, verifier *initdata.Verifier, sessions *session.Manager, cfg Config) AuthService {
	s := &authService{
		users:    users,
		verifier: verifier,
		sessions: sessions,
		botToken: cfg.BotToken,
		cost:     cfg.BcryptCost,
		now:      cfg.Now,
	}
	if s.cost == 0 {
		s.cost = bcrypt.DefaultCost
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *authService) VerifyInitData(raw string) (*initdata.Identity, error) {
	identity, err := s.verifier.Verify(raw, s.botToken, s.now())
	if err != nil {
		logger.Warn().Err(err).Msg("Init data rejected")
		return nil, err
	}
	return identity, nil
}

func (s *authService) ResolveIdentity(ctx context.Context, identity *initdata.Identity) (*models.User, error) {
	return s.users.EnsureTelegramUser(ctx, identity.TelegramID, profileOf(identity))
}

func (s *authService) ParseToken(token string) (*session.Session, error) {
	return s.sessions.Parse(token)
}

func (s *authService) LoginWithTelegram(ctx context.Context, raw string) (*Result, error) {
	identity, err := s.VerifyInitData(raw)
	if err != nil {
		return nil, err
	}

	user, err := s.users.UpsertTelegramUser(ctx, identity.TelegramID, profileOf(identity))
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int64("user_id", user.ID).
		Str("telegram_id", identity.TelegramID).
		Msg("Telegram login")

	return s.issue(user)
}

func (s *authService) Register(ctx context.Context, email, password string) (*Result, error) {
	email = userservice.NormalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.RegisterWithEmail(ctx, email, string(hash), models.Profile{})
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("user_id", user.ID).Msg("User registered")
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, email, password string) (*Result, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Info().Int64("user_id", user.ID).Msg("Invalid credentials")
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *authService) Me(ctx context.Context, userID int64) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *authService) issue(user *models.User) (*Result, error) {
	var telegramID string
	if user.TelegramID != nil {
		telegramID = *user.TelegramID
	}
	token, expiresAt, err := s.sessions.Issue(user.ID, telegramID)
	if err != nil {
		return nil, err
	}
	return &Result{AccessToken: token, ExpiresAt: expiresAt, User: user}, nil
}

func profileOf(identity *initdata.Identity) models.Profile {
	return models.Profile{
		Username:  identity.Username,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
	}
}

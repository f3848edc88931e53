package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ideilsonsouza/backend/internal/domain/entity"
	"github.com/ideilsonsouza/backend/internal/domain/repository"
	"github.com/ideilsonsouza/backend/pkg/helpers"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user disabled")
	ErrUserNotFound       = errors.New("user not found")
)

// TokenType is the token_type label returned with every issued pair.
const TokenType = "bearer"

// AuthService implements registration, credential login and the token
// lifecycle (issue, refresh with rotation, logout via denylist).
type AuthService struct {
	Users  repository.UserRepository
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Logger *logrus.Logger
}

func NewAuthService(users repository.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Redis: rdb, Logger: logger}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
	ExpiresIn          int64 // access token TTL in seconds
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Definers map[string]any
}

// Register creates a user and mints its first access token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, string, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}
	u := &entity.User{
		Name:     in.Name,
		Email:    strings.ToLower(in.Email),
		Password: hash,
		Definers: in.Definers,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, "", err
	}
	token, _, err := s.JWT.GenerateAccessToken(u.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		return nil, "", err
	}
	return u, token, nil
}

// Authenticate validates an email/password pair. A missing user and a
// wrong password are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Login authenticates, rejects disabled accounts and issues a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if !u.Enabled {
		return nil, TokenPair{}, ErrUserDisabled
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// IssueTokens mints a fresh access/refresh pair for the user.
func (s *AuthService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:        access,
		AccessTokenExpiry:  aexp,
		RefreshToken:       refresh,
		RefreshTokenExpiry: rexp,
		ExpiresIn:          int64(s.JWT.AccessTTL.Seconds()),
	}, nil
}

// Refresh exchanges a valid refresh token for a new pair. The used
// refresh token is denylisted so it cannot be replayed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*entity.User, TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if revoked, err := helpers.TokenDenylisted(ctx, s.Redis, claims.ID); err != nil || revoked {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if !u.Enabled {
		return nil, TokenPair{}, ErrUserDisabled
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if err := helpers.DenylistToken(ctx, s.Redis, claims.ID, claims.ExpiresAt.Time); err != nil {
		s.Logger.WithError(err).Warn("failed to denylist rotated refresh token")
	}
	return u, pair, nil
}

// Logout revokes the presented access token for its remaining lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *helpers.Claims) error {
	return helpers.DenylistToken(ctx, s.Redis, claims.ID, claims.ExpiresAt.Time)
}

// GetProfile resolves the authenticated user id to its record.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

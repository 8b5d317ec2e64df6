// Package auth implements local password accounts and HS256 token issuance.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ncecere/llm_observability/backend/internal/config"
	"github.com/ncecere/llm_observability/backend/internal/rbac"
	"github.com/ncecere/llm_observability/backend/internal/store"
)

var (
	// ErrInvalidCredentials hides whether the email or the password was
	// wrong; the login handler maps it to a single 401 message.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken surfaces a duplicate registration.
	ErrEmailTaken = errors.New("email already registered")
)

type Service struct {
	store  *store.Store
	tokens *TokenManager
}

func NewService(cfg config.AuthConfig, st *store.Store) (*Service, error) {
	tm, err := NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}
	return &Service{store: st, tokens: tm}, nil
}

// Register creates a viewer account. Admins are created by bootstrap, not
// through the open endpoint.
func (s *Service) Register(ctx context.Context, email, password string) (store.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return store.User{}, errors.New("email required")
	}
	if len(password) < 6 {
		return store.User{}, errors.New("password must be at least 6 characters")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return store.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, email, hash, rbac.RoleViewer.String())
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return store.User{}, ErrEmailTaken
		}
		return store.User{}, err
	}
	return user, nil
}

// Authenticate verifies a password login and issues a token pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*TokenPair, store.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.User{}, ErrInvalidCredentials
		}
		return nil, store.User{}, err
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, store.User{}, ErrInvalidCredentials
	}

	pair, err := s.issue(user)
	if err != nil {
		return nil, store.User{}, err
	}
	return pair, user, nil
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, store.User, error) {
	userID, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, store.User{}, ErrInvalidCredentials
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.User{}, ErrInvalidCredentials
		}
		return nil, store.User{}, err
	}

	pair, err := s.issue(user)
	if err != nil {
		return nil, store.User{}, err
	}
	return pair, user, nil
}

// AuthorizeAccessToken validates a bearer token and loads the live user
// row. The stored role wins over the token's role claim so demotions take
// effect without waiting for expiry.
func (s *Service) AuthorizeAccessToken(ctx context.Context, token string) (store.User, rbac.Role, error) {
	claims, err := s.tokens.ValidateAccessToken(token)
	if err != nil {
		return store.User{}, "", err
	}

	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return store.User{}, "", err
	}

	role, err := rbac.ParseRole(user.Role)
	if err != nil {
		return store.User{}, "", fmt.Errorf("stored role: %w", err)
	}
	return user, role, nil
}

// IssueTokenPair issues tokens for an already-authenticated user, e.g.
// immediately after registration.
func (s *Service) IssueTokenPair(user store.User) (*TokenPair, error) {
	return s.issue(user)
}

func (s *Service) issue(user store.User) (*TokenPair, error) {
	role, err := rbac.ParseRole(user.Role)
	if err != nil {
		return nil, fmt.Errorf("stored role: %w", err)
	}
	return s.tokens.Generate(user.ID, user.Email, role)
}

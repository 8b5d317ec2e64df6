package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ncecere/llm_observability/backend/internal/config"
	"github.com/ncecere/llm_observability/backend/internal/rbac"
	"github.com/ncecere/llm_observability/backend/internal/store"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.Contains(t, hash, "argon2id$v=19$")

	ok, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := HashPassword("")
	require.Error(t, err)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	_, err := VerifyPassword("secret", "not-an-encoded-hash")
	require.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	tm, err := NewTokenManager("test-secret", time.Minute, time.Hour, "llm-observability")
	require.NoError(t, err)

	userID := uuid.New()
	pair, err := tm.Generate(userID, "admin@example.com", rbac.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := tm.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.Equal(t, "admin@example.com", claims.Email)
	require.Equal(t, rbac.RoleAdmin, claims.Role)

	refreshed, err := tm.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, userID, refreshed)
}

func TestTokenTypeIsEnforced(t *testing.T) {
	tm, err := NewTokenManager("test-secret", time.Minute, time.Hour, "llm-observability")
	require.NoError(t, err)

	pair, err := tm.Generate(uuid.New(), "viewer@example.com", rbac.RoleViewer)
	require.NoError(t, err)

	_, err = tm.ValidateAccessToken(pair.RefreshToken)
	require.Error(t, err)
	_, err = tm.ValidateRefreshToken(pair.AccessToken)
	require.Error(t, err)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	tm, err := NewTokenManager("secret-a", time.Minute, time.Hour, "llm-observability")
	require.NoError(t, err)
	other, err := NewTokenManager("secret-b", time.Minute, time.Hour, "llm-observability")
	require.NoError(t, err)

	pair, err := tm.Generate(uuid.New(), "viewer@example.com", rbac.RoleViewer)
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(pair.AccessToken)
	require.Error(t, err)
}

func TestIssueTokenPairForNewAccount(t *testing.T) {
	svc, err := NewService(config.AuthConfig{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		Issuer:          "llm-observability",
	}, nil)
	require.NoError(t, err)

	user := store.User{ID: uuid.New(), Email: "new@example.com", Role: rbac.RoleViewer.String()}
	pair, err := svc.IssueTokenPair(user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := svc.tokens.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, rbac.RoleViewer, claims.Role)
}

func TestIssueTokenPairRejectsUnknownStoredRole(t *testing.T) {
	svc, err := NewService(config.AuthConfig{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		Issuer:          "llm-observability",
	}, nil)
	require.NoError(t, err)

	_, err = svc.IssueTokenPair(store.User{ID: uuid.New(), Email: "x@example.com", Role: "superuser"})
	require.Error(t, err)
}

func TestNewTokenManagerValidation(t *testing.T) {
	_, err := NewTokenManager("", time.Minute, time.Hour, "x")
	require.Error(t, err)
	_, err = NewTokenManager("secret", 0, time.Hour, "x")
	require.Error(t, err)
	_, err = NewTokenManager("secret", time.Minute, 0, "x")
	require.Error(t, err)
}

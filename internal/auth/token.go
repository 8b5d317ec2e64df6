package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ncecere/llm_observability/backend/internal/rbac"
)

// TokenPair is an access/refresh token set with expiry metadata.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Claims are the identity facts carried by a validated access token.
type Claims struct {
	UserID uuid.UUID
	Email  string
	Role   rbac.Role
}

type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration, issuer string) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("token secret required")
	}
	if accessTTL <= 0 {
		return nil, errors.New("access ttl must be > 0")
	}
	if refreshTTL <= 0 {
		return nil, errors.New("refresh ttl must be > 0")
	}
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     issuer,
	}, nil
}

func (tm *TokenManager) Generate(userID uuid.UUID, email string, role rbac.Role) (*TokenPair, error) {
	now := time.Now()
	accessExp := now.Add(tm.accessTTL)
	refreshExp := now.Add(tm.refreshTTL)

	accessToken, err := tm.sign(jwt.MapClaims{
		"sub":   userID.String(),
		"email": email,
		"role":  role.String(),
		"iat":   now.Unix(),
		"exp":   accessExp.Unix(),
		"iss":   tm.issuer,
		"typ":   "access",
		"jti":   uuid.NewString(),
	})
	if err != nil {
		return nil, err
	}

	refreshToken, err := tm.sign(jwt.MapClaims{
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": refreshExp.Unix(),
		"iss": tm.issuer,
		"typ": "refresh",
		"jti": uuid.NewString(),
	})
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// ValidateAccessToken parses and verifies an access token and returns its
// identity claims.
func (tm *TokenManager) ValidateAccessToken(token string) (Claims, error) {
	claims, err := tm.parse(token, "access")
	if err != nil {
		return Claims{}, err
	}

	out := Claims{}
	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return Claims{}, errors.New("invalid subject")
	}
	out.UserID, err = uuid.Parse(subject)
	if err != nil {
		return Claims{}, fmt.Errorf("parse subject: %w", err)
	}
	out.Email, _ = claims["email"].(string)

	roleClaim, _ := claims["role"].(string)
	out.Role, err = rbac.ParseRole(roleClaim)
	if err != nil {
		return Claims{}, fmt.Errorf("parse role claim: %w", err)
	}
	return out, nil
}

// ValidateRefreshToken parses and verifies a refresh token and returns the
// subject user ID.
func (tm *TokenManager) ValidateRefreshToken(token string) (uuid.UUID, error) {
	claims, err := tm.parse(token, "refresh")
	if err != nil {
		return uuid.Nil, err
	}

	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return uuid.Nil, errors.New("invalid subject")
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse subject: %w", err)
	}
	return userID, nil
}

func (tm *TokenManager) parse(token, wantType string) (jwt.MapClaims, error) {
	if token == "" {
		return nil, errors.New("token required")
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return tm.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if claims["typ"] != wantType {
		return nil, errors.New("invalid token type")
	}
	return claims, nil
}

func (tm *TokenManager) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

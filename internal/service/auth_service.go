package service

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/campus-timetabler/internal/models"
	"github.com/noah-isme/campus-timetabler/pkg/config"
	appErrors "github.com/noah-isme/campus-timetabler/pkg/errors"
)

// AuthService issues and validates administrative bearer tokens. There is no
// user store; holders of the configured secret exchange it for a short-lived
// token gating the mutating endpoints.
type AuthService struct {
	cfg config.AdminConfig
}

// NewAuthService constructs an AuthService.
func NewAuthService(cfg config.AdminConfig) *AuthService {
	return &AuthService{cfg: cfg}
}

// Enabled reports whether admin protection is configured.
func (s *AuthService) Enabled() bool {
	return s.cfg.JWTSecret != ""
}

// IssueToken exchanges the shared secret for a signed token.
func (s *AuthService) IssueToken(secret string) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrPreconditionFailed, "admin auth is not configured")
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(s.cfg.JWTSecret)) != 1 {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrUnauthorized, "invalid admin secret")
	}

	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.cfg.Expiration)
	claims := &models.AdminClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign admin token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken parses and validates an admin token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.AdminClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

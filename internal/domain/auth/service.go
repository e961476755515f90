package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/yanqian/astro-profile/pkg/errors"
)

// Service verifies bearer tokens.
type Service interface {
	ValidateToken(ctx context.Context, token string) (Claims, error)
}

type service struct {
	cfg    Config
	logger *slog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg Config, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		logger: logger.With("component", "auth.service"),
	}
}

func (s *service) ValidateToken(_ context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token missing", nil)
	}
	if s.cfg.Secret == "" {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token verification is not configured", nil)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	if s.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(s.cfg.Audience))
	}

	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token validation failed", err)
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token invalid", nil)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token missing subject", nil)
	}
	return Claims{
		UserID:    claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

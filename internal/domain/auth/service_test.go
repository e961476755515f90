package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/astro-profile/pkg/errors"
)

const testSecret = "test-secret"

func TestService_ValidateToken(t *testing.T) {
	svc := NewService(Config{Secret: testSecret, Issuer: "astro-auth"}, newTestLogger())
	token := signToken(t, testSecret, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			Issuer:    "astro-auth",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "user@example.com",
		Role:  "authenticated",
	})

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.UserID)
	require.Equal(t, "user@example.com", claims.Email)
	require.Equal(t, "authenticated", claims.Role)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)
}

func TestService_RejectsInvalidTokens(t *testing.T) {
	svc := NewService(Config{Secret: testSecret, Issuer: "astro-auth"}, newTestLogger())
	valid := jwt.RegisteredClaims{
		Subject:   "user-123",
		Issuer:    "astro-auth",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	noExpiry := valid
	noExpiry.ExpiresAt = nil
	wrongIssuer := valid
	wrongIssuer.Issuer = "someone-else"
	noSubject := valid
	noSubject.Subject = ""

	tokens := map[string]string{
		"empty":        "",
		"garbage":      "not-a-jwt",
		"wrong secret": signToken(t, "other-secret", tokenClaims{RegisteredClaims: valid}),
		"expired":      signToken(t, testSecret, tokenClaims{RegisteredClaims: expired}),
		"no expiry":    signToken(t, testSecret, tokenClaims{RegisteredClaims: noExpiry}),
		"wrong issuer": signToken(t, testSecret, tokenClaims{RegisteredClaims: wrongIssuer}),
		"no subject":   signToken(t, testSecret, tokenClaims{RegisteredClaims: noSubject}),
	}
	for name, token := range tokens {
		_, err := svc.ValidateToken(context.Background(), token)
		require.Error(t, err, name)
		require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken), name)
	}
}

func TestService_UnconfiguredSecret(t *testing.T) {
	svc := NewService(Config{}, newTestLogger())
	token := signToken(t, testSecret, tokenClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "x", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}})

	_, err := svc.ValidateToken(context.Background(), token)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
}

func signToken(t *testing.T, secret string, claims tokenClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

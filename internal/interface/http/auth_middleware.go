package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/astro-profile/internal/domain/auth"
	apperrors "github.com/yanqian/astro-profile/pkg/errors"
)

// requireAuth rejects requests without a valid bearer token.
func requireAuth(svc auth.Service) gin.HandlerFunc {
	return authenticate(svc, true)
}

// optionalAuth attaches claims when a token is present. A present but
// invalid token is still rejected.
func optionalAuth(svc auth.Service) gin.HandlerFunc {
	return authenticate(svc, false)
}

func authenticate(svc auth.Service, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if required {
				abortWithError(c, NewHTTPError(http.StatusUnauthorized, apperrors.CodeUnauthorized, "missing authorization header", nil))
				return
			}
			c.Next()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, apperrors.CodeUnauthorized, "invalid authorization header", nil))
			return
		}
		claims, err := svc.ValidateToken(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			status := http.StatusForbidden
			code := apperrors.CodeInvalidToken
			if !apperrors.IsCode(err, apperrors.CodeInvalidToken) {
				status = http.StatusInternalServerError
				code = "auth_failed"
			}
			abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/astro-profile/internal/domain/auth"
	"github.com/yanqian/astro-profile/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, authSvc auth.Service, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	httpLogger := logger.With("component", "http")
	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestIDMiddleware(),
		requestLogger(httpLogger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(httpLogger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, httpLogger),
	)

	router.GET("/healthz", handler.Healthz)

	api := router.Group("/api/v1")
	{
		api.POST("/profiles", optionalAuth(authSvc), handler.CreateProfile)
		api.GET("/profiles", requireAuth(authSvc), handler.ListProfiles)
		api.GET("/profiles/:id", requireAuth(authSvc), handler.GetProfile)
		api.POST("/compatibility", optionalAuth(authSvc), handler.Compatibility)
		api.GET("/geocode", handler.Geocode)
		api.GET("/timezones/offset", handler.TimezoneOffset)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, httpLogger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/astro-profile/internal/domain/geo"
	"github.com/yanqian/astro-profile/internal/domain/profiles"
	"github.com/yanqian/astro-profile/internal/domain/tzoffset"
	apperrors "github.com/yanqian/astro-profile/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	profileSvc profiles.Service
	resolver   geo.Resolver
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(profileSvc profiles.Service, resolver geo.Resolver, logger *slog.Logger) *Handler {
	return &Handler{
		profileSvc: profileSvc,
		resolver:   resolver,
		logger:     logger.With("component", "http.handler"),
	}
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateProfile computes a natal profile and saves it for signed-in callers.
func (h *Handler) CreateProfile(c *gin.Context) {
	var req profiles.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	record, err := h.profileSvc.Create(c.Request.Context(), userID(c), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}

	status := http.StatusOK
	if record.ID != "" {
		status = http.StatusCreated
	}
	c.JSON(status, record)
}

// ListProfiles returns the caller's saved profiles.
func (h *Handler) ListProfiles(c *gin.Context) {
	records, err := h.profileSvc.List(c.Request.Context(), userID(c))
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": records})
}

// GetProfile returns one saved profile owned by the caller.
func (h *Handler) GetProfile(c *gin.Context) {
	record, err := h.profileSvc.Get(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, record)
}

// Compatibility scores two profiles against each other.
func (h *Handler) Compatibility(c *gin.Context) {
	var req profiles.CompatibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	result, err := h.profileSvc.Compatibility(c.Request.Context(), userID(c), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, result)
}

type geocodeResponse struct {
	Query       string          `json:"query"`
	Coordinates geo.Coordinates `json:"coordinates"`
	Timezone    string          `json:"timezone,omitempty"`
}

// Geocode resolves "city, country" text to coordinates.
func (h *Handler) Geocode(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "q is required", nil))
		return
	}
	coords, err := h.resolver.Resolve(c.Request.Context(), query)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	zone, _ := h.resolver.Zone(query)
	c.JSON(http.StatusOK, geocodeResponse{Query: query, Coordinates: coords, Timezone: zone})
}

var localLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"}

// TimezoneOffset reports the historical UTC offset of a zone at a local time.
func (h *Handler) TimezoneOffset(c *gin.Context) {
	zone := strings.TrimSpace(c.Query("zone"))
	raw := strings.TrimSpace(c.Query("datetime"))
	if zone == "" || raw == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "zone and datetime are required", nil))
		return
	}
	local, ok := parseLocal(raw)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "datetime must look like 2006-01-02T15:04", nil))
		return
	}
	offset, ok := tzoffset.Resolve(zone, local)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "timezone_not_found", "unknown timezone "+zone, nil))
		return
	}
	c.JSON(http.StatusOK, offset)
}

func parseLocal(raw string) (time.Time, bool) {
	for _, layout := range localLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

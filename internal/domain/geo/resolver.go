package geo

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	apperrors "github.com/yanqian/astro-profile/pkg/errors"
)

// Resolver maps "city, country" text to coordinates.
type Resolver interface {
	Resolve(ctx context.Context, cityCountry string) (Coordinates, error)
	Zone(cityCountry string) (string, bool)
}

type resolver struct {
	cfg      Config
	geocoder Geocoder
	logger   *slog.Logger
}

// NewResolver builds a gazetteer-first resolver. geocoder may be nil, in which
// case misses fail as unavailable.
func NewResolver(cfg Config, geocoder Geocoder, logger *slog.Logger) Resolver {
	if cfg.GeocodeTimeout <= 0 {
		cfg.GeocodeTimeout = defaultGeocodeTimeout
	}
	return &resolver{
		cfg:      cfg,
		geocoder: geocoder,
		logger:   logger.With("component", "geo.resolver"),
	}
}

func (r *resolver) Resolve(ctx context.Context, cityCountry string) (Coordinates, error) {
	key := Normalize(cityCountry)
	if key == "" {
		return Coordinates{}, apperrors.Wrap(apperrors.CodeInvalidInput, "city cannot be empty", nil)
	}
	if place, ok := gazetteer[key]; ok {
		return place.Coordinates, nil
	}
	if r.geocoder == nil {
		return Coordinates{}, apperrors.Wrap(apperrors.CodeGeocodingUnavailable, "geocoding is not configured", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.GeocodeTimeout)
	defer cancel()

	candidates, err := r.geocoder.Geocode(ctx, key)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			r.logger.Warn("geocoder timed out", "query", key, "timeout", r.cfg.GeocodeTimeout)
		} else {
			r.logger.Warn("geocoder failed", "query", key, "error", err)
		}
		return Coordinates{}, apperrors.Wrap(apperrors.CodeGeocodingUnavailable, "geocoding service unavailable", err)
	}
	if len(candidates) == 0 {
		return Coordinates{}, apperrors.Wrap(apperrors.CodeGeocodingNotFound, "no location found for "+strings.TrimSpace(cityCountry), nil)
	}
	first := candidates[0].Coordinates
	if !first.Valid() {
		return Coordinates{}, apperrors.Wrap(apperrors.CodeGeocodingUnavailable, "geocoder returned invalid coordinates", nil)
	}
	r.logger.Debug("geocoder resolved location", "query", key, "lat", first.Latitude, "lon", first.Longitude)
	return first, nil
}

// Zone returns the gazetteer's IANA zone for the place, if known.
func (r *resolver) Zone(cityCountry string) (string, bool) {
	place, ok := LookupPlace(cityCountry)
	if !ok || place.Zone == "" {
		return "", false
	}
	return place.Zone, true
}

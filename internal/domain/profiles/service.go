package profiles

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/astro-profile/internal/domain/geo"
	"github.com/yanqian/astro-profile/internal/domain/natal"
	"github.com/yanqian/astro-profile/internal/domain/synastry"
	"github.com/yanqian/astro-profile/internal/domain/tzoffset"
	apperrors "github.com/yanqian/astro-profile/pkg/errors"
)

// Service exposes the profile workflows used by the HTTP layer.
type Service interface {
	Create(ctx context.Context, userID string, req CreateRequest) (Record, error)
	Get(ctx context.Context, userID, id string) (Record, error)
	List(ctx context.Context, userID string) ([]Record, error)
	Compatibility(ctx context.Context, userID string, req CompatibilityRequest) (synastry.Result, error)
}

type service struct {
	cfg       Config
	resolver  geo.Resolver
	natal     natal.Service
	synastry  synastry.Service
	repo      Repository
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
	offsetFor func(zone string, local time.Time) (float64, bool)
}

// NewService wires the profiles feature.
func NewService(cfg Config, resolver geo.Resolver, natalSvc natal.Service, synastrySvc synastry.Service, repo Repository, logger *slog.Logger) Service {
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = defaultListLimit
	}
	return &service{
		cfg:       cfg,
		resolver:  resolver,
		natal:     natalSvc,
		synastry:  synastrySvc,
		repo:      repo,
		logger:    logger.With("component", "profiles.service"),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.NewString() },
		offsetFor: tzoffset.HistoricalOffsetHours,
	}
}

func (s *service) Create(ctx context.Context, userID string, req CreateRequest) (Record, error) {
	date := strings.TrimSpace(req.Date)
	if date == "" {
		return Record{}, apperrors.Wrap(apperrors.CodeInvalidInput, "date is required", nil)
	}
	coords, err := s.resolveCoordinates(ctx, req)
	if err != nil {
		return Record{}, err
	}
	// Parse once without an offset so the date and clock are validated before
	// they feed the timezone lookup.
	in, err := natal.ParseBirthInput(date, req.Time, coords, nil)
	if err != nil {
		return Record{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid birth data", err)
	}
	zone, offset, err := s.resolveOffset(req, in)
	if err != nil {
		return Record{}, err
	}
	in.UTCOffsetHours = offset

	profile, err := s.natal.CalculateProfile(ctx, in)
	if err != nil {
		return Record{}, err
	}

	record := Record{
		UserID: userID,
		Label:  strings.TrimSpace(req.Label),
		Birth: Birth{
			Date:           date,
			Time:           strings.TrimSpace(req.Time),
			City:           strings.TrimSpace(req.City),
			Coordinates:    coords,
			Timezone:       zone,
			UTCOffsetHours: offset,
		},
		Profile:   profile,
		CreatedAt: s.now(),
	}
	if userID == "" {
		return record, nil
	}
	record.ID = s.newID()
	if err := s.repo.Save(ctx, record); err != nil {
		return Record{}, apperrors.Wrap(apperrors.CodeProfileError, "failed to save profile", err)
	}
	s.logger.Info("profile saved", "id", record.ID, "source", profile.Source)
	return record, nil
}

func (s *service) Get(ctx context.Context, userID, id string) (Record, error) {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return Record{}, apperrors.Wrap(apperrors.CodeProfileNotFound, "profile not found", nil)
	}
	record, found, err := s.repo.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return Record{}, apperrors.Wrap(apperrors.CodeProfileError, "failed to load profile", err)
	}
	if !found || record.UserID != userID {
		return Record{}, apperrors.Wrap(apperrors.CodeProfileNotFound, "profile not found", nil)
	}
	return record, nil
}

func (s *service) List(ctx context.Context, userID string) ([]Record, error) {
	if userID == "" {
		return nil, apperrors.Wrap(apperrors.CodeUnauthorized, "sign in to list profiles", nil)
	}
	records, err := s.repo.ListByUser(ctx, userID, s.cfg.ListLimit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeProfileError, "failed to list profiles", err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func (s *service) Compatibility(ctx context.Context, userID string, req CompatibilityRequest) (synastry.Result, error) {
	a, err := s.resolveSide(ctx, userID, "a", req.A)
	if err != nil {
		return synastry.Result{}, err
	}
	b, err := s.resolveSide(ctx, userID, "b", req.B)
	if err != nil {
		return synastry.Result{}, err
	}
	return s.synastry.Compare(ctx, synastry.Pair{A: a, B: b}), nil
}

func (s *service) resolveSide(ctx context.Context, userID, name string, side CompatibilitySide) (natal.ElementalComposition, error) {
	if id := strings.TrimSpace(side.ProfileID); id != "" {
		if userID == "" {
			return natal.ElementalComposition{}, apperrors.Wrap(apperrors.CodeUnauthorized, "sign in to compare saved profiles", nil)
		}
		record, err := s.Get(ctx, userID, id)
		if err != nil {
			return natal.ElementalComposition{}, err
		}
		return record.Profile.Elements, nil
	}
	if len(side.Elements) == 0 {
		return natal.ElementalComposition{}, nil
	}
	raw := make(map[natal.Element]float64, 4)
	for key, weight := range side.Elements {
		el := natal.Element(strings.ToLower(strings.TrimSpace(key)))
		if el != natal.Fire && el != natal.Earth && el != natal.Air && el != natal.Water {
			return natal.ElementalComposition{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("%s: unknown element %q", name, key), nil)
		}
		if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
			return natal.ElementalComposition{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("%s: element weights must be non-negative", name), nil)
		}
		raw[el] = weight
	}
	return natal.NormalizeElements(raw), nil
}

func (s *service) resolveCoordinates(ctx context.Context, req CreateRequest) (geo.Coordinates, error) {
	if req.Latitude != nil || req.Longitude != nil {
		if req.Latitude == nil || req.Longitude == nil {
			return geo.Coordinates{}, apperrors.Wrap(apperrors.CodeInvalidInput, "latitude and longitude must be given together", nil)
		}
		coords := geo.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}
		if !coords.Valid() {
			return geo.Coordinates{}, apperrors.Wrap(apperrors.CodeInvalidInput, "coordinates are out of range", nil)
		}
		return coords, nil
	}
	if strings.TrimSpace(req.City) == "" {
		return geo.Coordinates{}, apperrors.Wrap(apperrors.CodeInvalidInput, "city or coordinates are required", nil)
	}
	return s.resolver.Resolve(ctx, req.City)
}

// resolveOffset picks the UTC offset: explicit offset, then explicit zone,
// then the gazetteer zone of the city. An unknown zone leaves the offset to
// the provider.
func (s *service) resolveOffset(req CreateRequest, in natal.BirthInput) (string, *float64, error) {
	if raw := strings.TrimSpace(req.UTCOffset); raw != "" {
		hours, err := tzoffset.ParseUTCOffset(raw)
		if err != nil {
			return "", nil, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid utc offset", err)
		}
		return strings.TrimSpace(req.Timezone), &hours, nil
	}

	zone := strings.TrimSpace(req.Timezone)
	if zone == "" && req.City != "" {
		zone, _ = s.resolver.Zone(req.City)
	}
	if zone == "" {
		return "", nil, nil
	}

	clock := natal.ClockTime{Hour: 12}
	if in.Time != nil {
		clock = *in.Time
	}
	local := time.Date(in.Date.Year(), in.Date.Month(), in.Date.Day(), clock.Hour, clock.Minute, clock.Second, 0, time.UTC)
	hours, ok := s.offsetFor(zone, local)
	if !ok {
		s.logger.Warn("unknown timezone, leaving offset to provider", "zone", zone)
		return zone, nil, nil
	}
	return zone, &hours, nil
}

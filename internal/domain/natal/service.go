package natal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/yanqian/astro-profile/pkg/errors"
)

// Service computes natal profiles.
type Service interface {
	CalculateProfile(ctx context.Context, in BirthInput) (Profile, error)
}

type service struct {
	cfg    Config
	client ProviderClient
	logger *slog.Logger
}

// NewService wires the natal domain. A nil client means every profile is
// computed by the fallback.
func NewService(cfg Config, client ProviderClient, logger *slog.Logger) Service {
	if strings.TrimSpace(cfg.HouseSystem) == "" {
		cfg.HouseSystem = defaultHouseSystem
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = defaultProviderTimeout
	}
	return &service{
		cfg:    cfg,
		client: client,
		logger: logger.With("component", "natal.service"),
	}
}

// CalculateProfile only fails for invalid input; provider failures degrade to
// the fallback profile.
func (s *service) CalculateProfile(ctx context.Context, in BirthInput) (Profile, error) {
	if err := in.Validate(); err != nil {
		return Profile{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid birth data", err)
	}
	if s.client == nil {
		s.logger.Debug("ephemeris provider not configured, using fallback")
		return FallbackProfile(in, s.cfg.HouseSystem), nil
	}

	reading, err := s.fetch(ctx, s.buildRequest(in))
	if err != nil {
		s.logger.Warn("ephemeris provider failed, using fallback", "reason", failureReason(err), "error", err)
		return FallbackProfile(in, s.cfg.HouseSystem), nil
	}
	return s.buildProfile(reading), nil
}

func (s *service) fetch(ctx context.Context, req ChartRequest) (ChartReading, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	defer cancel()

	reading, err := s.client.FetchChart(ctx, req)
	if err != nil {
		return ChartReading{}, err
	}
	if err := ValidateReading(reading); err != nil {
		return ChartReading{}, err
	}
	return reading, nil
}

func (s *service) buildRequest(in BirthInput) ChartRequest {
	req := ChartRequest{
		Date:           in.Date,
		Time:           ClockTime{Hour: 12},
		Coordinates:    in.Coordinates,
		UTCOffsetHours: in.UTCOffsetHours,
		HouseSystem:    s.cfg.HouseSystem,
	}
	if in.Time != nil {
		req.Time = *in.Time
		req.TimeKnown = true
	}
	return req
}

func (s *service) buildProfile(reading ChartReading) Profile {
	sun, _ := findSun(reading.Planets)
	raw := reading.RawElements
	if total(raw) <= 0 {
		raw = tallyElements(reading.Planets)
	}
	houses := reading.Houses
	if houses.Cusps == nil {
		houses.Cusps = []HouseCusp{}
	}
	return Profile{
		Sun:         sun.Sign,
		Planets:     reading.Planets,
		Houses:      houses,
		HouseSystem: s.cfg.HouseSystem,
		Elements:    NormalizeElements(raw),
		Source:      SourceProvider,
	}
}

// ValidateReading enforces the minimum response shape: a non-empty planet
// list, a name on every planet and a Sun with a known sign.
func ValidateReading(reading ChartReading) error {
	if len(reading.Planets) == 0 {
		return fmt.Errorf("%w: no planets", ErrProviderMalformed)
	}
	for i, p := range reading.Planets {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: planet %d has no name", ErrProviderMalformed, i)
		}
	}
	sun, ok := findSun(reading.Planets)
	if !ok {
		return fmt.Errorf("%w: sun placement missing", ErrProviderMalformed)
	}
	if sun.Sign.Element() == "" {
		return fmt.Errorf("%w: sun sign %q unknown", ErrProviderMalformed, sun.Sign)
	}
	return nil
}

func findSun(planets []Planet) (Planet, bool) {
	for _, p := range planets {
		if strings.EqualFold(strings.TrimSpace(p.Name), "sun") {
			return p, true
		}
	}
	return Planet{}, false
}

func total(raw map[Element]float64) float64 {
	var sum float64
	for _, el := range Elements {
		if w := raw[el]; w > 0 {
			sum += w
		}
	}
	return sum
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrProviderMalformed):
		return "malformed"
	default:
		return "unavailable"
	}
}

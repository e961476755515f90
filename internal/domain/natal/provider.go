package natal

import (
	"context"
	"errors"
	"time"

	"github.com/yanqian/astro-profile/internal/domain/geo"
)

var (
	// ErrProviderUnavailable covers transport errors, non-2xx statuses and timeouts.
	ErrProviderUnavailable = errors.New("ephemeris provider unavailable")
	// ErrProviderMalformed covers responses missing required fields.
	ErrProviderMalformed = errors.New("ephemeris provider response malformed")
)

// ChartRequest is what the provider receives.
type ChartRequest struct {
	Date           time.Time
	Time           ClockTime
	TimeKnown      bool
	Coordinates    geo.Coordinates
	UTCOffsetHours *float64
	HouseSystem    string
}

// ChartReading is a decoded provider response. RawElements is nil when the
// provider did not report elemental weights.
type ChartReading struct {
	Planets     []Planet
	Houses      Houses
	RawElements map[Element]float64
}

// ProviderClient is implemented by the ephemeris adapter.
type ProviderClient interface {
	FetchChart(ctx context.Context, req ChartRequest) (ChartReading, error)
}

package geo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/astro-profile/pkg/errors"
)

func TestResolveGazetteerVariants(t *testing.T) {
	stub := &stubGeocoder{}
	r := NewResolver(Config{}, stub, discardLogger())

	for _, input := range []string{
		"Guatemala City, Guatemala",
		"guatemala city, guatemala",
		"  GUATEMALA CITY ,  Guatemala  ",
		"Guatemala   City,Guatemala",
	} {
		coords, err := r.Resolve(context.Background(), input)
		require.NoError(t, err, input)
		require.Equal(t, Coordinates{Latitude: 14.6349, Longitude: -90.5069}, coords, input)
	}
	require.Zero(t, stub.calls)
}

func TestResolveFallsBackToGeocoder(t *testing.T) {
	stub := &stubGeocoder{candidates: []Candidate{
		{Coordinates: Coordinates{Latitude: 48.8566, Longitude: 2.3522}},
		{Coordinates: Coordinates{Latitude: 33.66, Longitude: -95.55}},
	}}
	r := NewResolver(Config{}, stub, discardLogger())

	coords, err := r.Resolve(context.Background(), " Paris , France")
	require.NoError(t, err)
	require.Equal(t, 48.8566, coords.Latitude)
	require.Equal(t, 1, stub.calls)
	require.Equal(t, "paris, france", stub.lastQuery)
}

func TestResolveNotFound(t *testing.T) {
	r := NewResolver(Config{}, &stubGeocoder{}, discardLogger())

	_, err := r.Resolve(context.Background(), "Atlantis, Nowhere")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeGeocodingNotFound))
}

func TestResolveUnavailable(t *testing.T) {
	r := NewResolver(Config{}, &stubGeocoder{err: errors.New("status 503")}, discardLogger())

	_, err := r.Resolve(context.Background(), "Paris, France")
	require.True(t, apperrors.IsCode(err, apperrors.CodeGeocodingUnavailable))
}

func TestResolveTimeout(t *testing.T) {
	stub := &stubGeocoder{block: true}
	r := NewResolver(Config{GeocodeTimeout: 20 * time.Millisecond}, stub, discardLogger())

	start := time.Now()
	_, err := r.Resolve(context.Background(), "Paris, France")
	require.True(t, apperrors.IsCode(err, apperrors.CodeGeocodingUnavailable))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestResolveRejectsInvalidCandidate(t *testing.T) {
	stub := &stubGeocoder{candidates: []Candidate{{Coordinates: Coordinates{Latitude: 120, Longitude: 0}}}}
	r := NewResolver(Config{}, stub, discardLogger())

	_, err := r.Resolve(context.Background(), "Paris, France")
	require.True(t, apperrors.IsCode(err, apperrors.CodeGeocodingUnavailable))
}

func TestResolveWithoutGeocoder(t *testing.T) {
	r := NewResolver(Config{}, nil, discardLogger())

	coords, err := r.Resolve(context.Background(), "Lima, Peru")
	require.NoError(t, err)
	require.Equal(t, -12.0464, coords.Latitude)

	_, err = r.Resolve(context.Background(), "Paris, France")
	require.True(t, apperrors.IsCode(err, apperrors.CodeGeocodingUnavailable))
}

func TestResolveEmptyInput(t *testing.T) {
	r := NewResolver(Config{}, &stubGeocoder{}, discardLogger())

	_, err := r.Resolve(context.Background(), "  ,  ")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestZone(t *testing.T) {
	r := NewResolver(Config{}, nil, discardLogger())

	zone, ok := r.Zone("Quetzaltenango, Guatemala")
	require.True(t, ok)
	require.Equal(t, "America/Guatemala", zone)

	_, ok = r.Zone("Paris, France")
	require.False(t, ok)
}

func TestNormalize(t *testing.T) {
	require.Equal(t, "san josé, costa rica", Normalize("  San   José ,Costa  Rica "))
	require.Equal(t, "", Normalize("   "))
}

type stubGeocoder struct {
	candidates []Candidate
	err        error
	block      bool
	calls      int
	lastQuery  string
}

func (s *stubGeocoder) Geocode(ctx context.Context, query string) ([]Candidate, error) {
	s.calls++
	s.lastQuery = query
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

package profiles

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/astro-profile/internal/domain/geo"
	"github.com/yanqian/astro-profile/internal/domain/natal"
	"github.com/yanqian/astro-profile/internal/domain/synastry"
	apperrors "github.com/yanqian/astro-profile/pkg/errors"
)

func TestService_CreateWithCityUsesGazetteerZone(t *testing.T) {
	natalStub := &stubNatal{}
	svc, repo := newServiceUnderTest(t, natalStub)

	record, err := svc.Create(context.Background(), "user-1", CreateRequest{
		Label: " Me ",
		Date:  "1990-07-29",
		Time:  "10:00",
		City:  "guatemala city, guatemala",
	})
	require.NoError(t, err)
	require.Equal(t, "fixed-id", record.ID)
	require.Equal(t, "Me", record.Label)
	require.Equal(t, geo.Coordinates{Latitude: 14.6349, Longitude: -90.5069}, record.Birth.Coordinates)
	require.Equal(t, "America/Guatemala", record.Birth.Timezone)
	require.NotNil(t, record.Birth.UTCOffsetHours)
	require.Equal(t, -6.0, *record.Birth.UTCOffsetHours)
	require.Equal(t, natal.SourceFallback, record.Profile.Source)

	require.Equal(t, -6.0, *natalStub.last.UTCOffsetHours)
	require.Equal(t, &natal.ClockTime{Hour: 10}, natalStub.last.Time)

	stored, ok := repo.records["fixed-id"]
	require.True(t, ok)
	require.Equal(t, "user-1", stored.UserID)
}

func TestService_CreateAnonymousIsNotSaved(t *testing.T) {
	svc, repo := newServiceUnderTest(t, &stubNatal{})

	lat, lon := 40.4168, -3.7038
	record, err := svc.Create(context.Background(), "", CreateRequest{
		Date:      "2001-03-25",
		Latitude:  &lat,
		Longitude: &lon,
	})
	require.NoError(t, err)
	require.Empty(t, record.ID)
	require.Nil(t, record.Birth.UTCOffsetHours)
	require.Empty(t, repo.records)
}

func TestService_CreateOffsetPrecedence(t *testing.T) {
	natalStub := &stubNatal{}
	svc, _ := newServiceUnderTest(t, natalStub)

	record, err := svc.Create(context.Background(), "", CreateRequest{
		Date:      "1990-07-29",
		City:      "Guatemala City, Guatemala",
		Timezone:  "Asia/Kolkata",
		UTCOffset: "GMT-05:30",
	})
	require.NoError(t, err)
	require.Equal(t, -5.5, *record.Birth.UTCOffsetHours)

	record, err = svc.Create(context.Background(), "", CreateRequest{
		Date:     "1990-07-29",
		City:     "Guatemala City, Guatemala",
		Timezone: "Asia/Kolkata",
	})
	require.NoError(t, err)
	require.Equal(t, 5.5, *record.Birth.UTCOffsetHours)
}

func TestService_CreateUnknownZoneLeavesOffsetToProvider(t *testing.T) {
	natalStub := &stubNatal{}
	svc, _ := newServiceUnderTest(t, natalStub)

	record, err := svc.Create(context.Background(), "", CreateRequest{
		Date:     "1990-07-29",
		City:     "Lima, Peru",
		Timezone: "Nowhere/Atlantis",
	})
	require.NoError(t, err)
	require.Nil(t, record.Birth.UTCOffsetHours)
	require.Nil(t, natalStub.last.UTCOffsetHours)
	require.Equal(t, "Nowhere/Atlantis", record.Birth.Timezone)
}

func TestService_CreateInvalidInput(t *testing.T) {
	svc, _ := newServiceUnderTest(t, &stubNatal{})
	lat := 10.0

	requests := []CreateRequest{
		{City: "Lima, Peru"},
		{Date: "1990/07/29", City: "Lima, Peru"},
		{Date: "1990-07-29", Time: "7pm", City: "Lima, Peru"},
		{Date: "1990-07-29"},
		{Date: "1990-07-29", Latitude: &lat},
		{Date: "1990-07-29", City: "Lima, Peru", UTCOffset: "UTC+1"},
	}
	for _, req := range requests {
		_, err := svc.Create(context.Background(), "user-1", req)
		require.Error(t, err)
		require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput), "%+v: %v", req, err)
	}
}

func TestService_CreatePropagatesGeocodingFailure(t *testing.T) {
	svc, _ := newServiceUnderTest(t, &stubNatal{})

	_, err := svc.Create(context.Background(), "user-1", CreateRequest{Date: "1990-07-29", City: "Atlantis, Nowhere"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeGeocodingUnavailable))
}

func TestService_GetAndList(t *testing.T) {
	svc, repo := newServiceUnderTest(t, &stubNatal{})
	impl := svc.(*service)
	ids := []string{
		"7b0f5f53-5a4f-4a7e-9d5e-0d5b6a1f3c01",
		"7b0f5f53-5a4f-4a7e-9d5e-0d5b6a1f3c02",
	}
	next := 0
	impl.newID = func() string {
		id := ids[next]
		next++
		return id
	}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	impl.now = func() time.Time { return base.Add(time.Duration(next) * time.Hour) }

	for range ids {
		_, err := svc.Create(context.Background(), "user-1", CreateRequest{Date: "1990-07-29", City: "Lima, Peru"})
		require.NoError(t, err)
	}
	require.Len(t, repo.records, 2)

	got, err := svc.Get(context.Background(), "user-1", ids[0])
	require.NoError(t, err)
	require.Equal(t, ids[0], got.ID)

	_, err = svc.Get(context.Background(), "user-2", ids[0])
	require.True(t, apperrors.IsCode(err, apperrors.CodeProfileNotFound))
	_, err = svc.Get(context.Background(), "user-1", "not-a-uuid")
	require.True(t, apperrors.IsCode(err, apperrors.CodeProfileNotFound))

	list, err := svc.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, ids[1], list[0].ID)

	empty, err := svc.List(context.Background(), "user-2")
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	_, err = svc.List(context.Background(), "")
	require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}

func TestService_CompatibilityInline(t *testing.T) {
	svc, _ := newServiceUnderTest(t, &stubNatal{})

	res, err := svc.Compatibility(context.Background(), "", CompatibilityRequest{
		A: CompatibilitySide{Elements: map[string]float64{"fire": 40, "earth": 20, "air": 20, "water": 20}},
		B: CompatibilitySide{Elements: map[string]float64{"Fire": 3, "Earth": 3, "Air": 2, "Water": 2}},
	})
	require.NoError(t, err)
	require.Equal(t, 95, res.Score)
	require.Equal(t, synastry.GuidanceHarmony, res.Guidance)
}

func TestService_CompatibilityMissingElements(t *testing.T) {
	svc, _ := newServiceUnderTest(t, &stubNatal{})

	res, err := svc.Compatibility(context.Background(), "", CompatibilityRequest{})
	require.NoError(t, err)
	require.Equal(t, 99, res.Score)
}

func TestService_CompatibilitySavedProfiles(t *testing.T) {
	svc, repo := newServiceUnderTest(t, &stubNatal{})
	id := "7b0f5f53-5a4f-4a7e-9d5e-0d5b6a1f3c09"
	repo.records[id] = Record{
		ID:      id,
		UserID:  "user-1",
		Profile: natal.Profile{Elements: natal.ElementalComposition{Fire: 100}},
	}

	res, err := svc.Compatibility(context.Background(), "user-1", CompatibilityRequest{
		A: CompatibilitySide{ProfileID: id},
		B: CompatibilitySide{Elements: map[string]float64{"water": 1}},
	})
	require.NoError(t, err)
	require.Equal(t, 50, res.Score)

	_, err = svc.Compatibility(context.Background(), "", CompatibilityRequest{A: CompatibilitySide{ProfileID: id}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	_, err = svc.Compatibility(context.Background(), "user-2", CompatibilityRequest{A: CompatibilitySide{ProfileID: id}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeProfileNotFound))
}

func TestService_CompatibilityRejectsBadElements(t *testing.T) {
	svc, _ := newServiceUnderTest(t, &stubNatal{})

	_, err := svc.Compatibility(context.Background(), "", CompatibilityRequest{
		A: CompatibilitySide{Elements: map[string]float64{"aether": 10}},
	})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.Compatibility(context.Background(), "", CompatibilityRequest{
		B: CompatibilitySide{Elements: map[string]float64{"fire": -1}},
	})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestService_CreateSaveFailure(t *testing.T) {
	svc, repo := newServiceUnderTest(t, &stubNatal{})
	repo.err = errors.New("connection refused")

	_, err := svc.Create(context.Background(), "user-1", CreateRequest{Date: "1990-07-29", City: "Lima, Peru"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeProfileError))
}

func newServiceUnderTest(t *testing.T, natalSvc natal.Service) (Service, *fakeRepo) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := &fakeRepo{records: map[string]Record{}}
	resolver := geo.NewResolver(geo.Config{}, nil, logger)
	svc := NewService(Config{}, resolver, natalSvc, synastry.NewService(logger), repo, logger)
	svc.(*service).newID = func() string { return "fixed-id" }
	return svc, repo
}

type stubNatal struct {
	last natal.BirthInput
}

func (s *stubNatal) CalculateProfile(_ context.Context, in natal.BirthInput) (natal.Profile, error) {
	s.last = in
	return natal.FallbackProfile(in, "placidus"), nil
}

type fakeRepo struct {
	mu      sync.Mutex
	records map[string]Record
	err     error
}

func (f *fakeRepo) Save(_ context.Context, record Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records[record.ID] = record
	return nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (Record, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	return rec, ok, nil
}

func (f *fakeRepo) ListByUser(_ context.Context, userID string, limit int) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Record
	for _, rec := range f.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

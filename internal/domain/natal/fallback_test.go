package natal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/astro-profile/internal/domain/geo"
)

func TestSunSignForDate(t *testing.T) {
	tests := []struct {
		date string
		want Sign
	}{
		{"1990-07-29", Leo},
		{"2000-01-01", Capricorn},
		{"2000-01-20", Aquarius},
		{"2000-02-18", Aquarius},
		{"2000-02-19", Pisces},
		{"2001-03-20", Pisces},
		{"2001-03-21", Aries},
		{"1985-12-21", Sagittarius},
		{"1985-12-22", Capricorn},
	}
	for _, tc := range tests {
		date, err := time.Parse(time.DateOnly, tc.date)
		require.NoError(t, err)
		sign, degree := SunSignForDate(date)
		require.Equal(t, tc.want, sign, tc.date)
		require.GreaterOrEqual(t, degree, 0.0)
		require.Less(t, degree, 30.0)
	}
}

func TestFallbackProfileIsDeterministic(t *testing.T) {
	in := mustBirthInput(t, "1990-07-29", "10:00", geo.Coordinates{Latitude: 14.6349, Longitude: -90.5069})

	first := FallbackProfile(in, "placidus")
	second := FallbackProfile(in, "placidus")
	require.Equal(t, first, second)

	other := FallbackProfile(mustBirthInput(t, "1990-07-29", "22:15", geo.Coordinates{Latitude: 14.6349, Longitude: -90.5069}), "placidus")
	require.Equal(t, first.Sun, other.Sun)
}

func TestFallbackProfileInvariants(t *testing.T) {
	start := time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 800; i++ {
		day := start.AddDate(0, 0, i*37)
		in := BirthInput{
			Date:        day,
			Coordinates: geo.Coordinates{Latitude: float64(i%180) - 89.5, Longitude: float64(i%360) - 179.5},
		}
		if i%3 == 0 {
			in.Time = &ClockTime{Hour: i % 24, Minute: i % 60}
		}
		p := FallbackProfile(in, "whole_sign")

		require.Equal(t, SourceFallback, p.Source)
		require.NotEmpty(t, p.Sun)
		require.NotEmpty(t, p.Planets)
		require.Equal(t, 100, p.Elements.Sum())
		require.False(t, p.Houses.Available)
		require.NotNil(t, p.Houses.Cusps)
		require.Equal(t, "whole_sign", p.HouseSystem)
		for _, planet := range p.Planets {
			require.NotEmpty(t, planet.Name)
			require.NotEmpty(t, planet.Sign.Element())
			require.GreaterOrEqual(t, planet.Position, 0.0)
			require.Less(t, planet.Position, 30.0)
		}
	}
}

func TestFallbackInnerPlanetsStayNearSun(t *testing.T) {
	in := mustBirthInput(t, "2001-03-25", "", geo.Coordinates{Latitude: 40.4168, Longitude: -3.7038})
	p := FallbackProfile(in, "placidus")

	sunIdx := zodiacIndex(p.Sun)
	for _, planet := range p.Planets {
		if planet.Name != "Mercury" {
			continue
		}
		diff := (zodiacIndex(planet.Sign) - sunIdx + 12) % 12
		require.Contains(t, []int{0, 1, 11}, diff)
	}
}

func mustBirthInput(t *testing.T, date, clock string, coords geo.Coordinates) BirthInput {
	t.Helper()
	in, err := ParseBirthInput(date, clock, coords, nil)
	require.NoError(t, err)
	return in
}

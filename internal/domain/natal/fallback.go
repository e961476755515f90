package natal

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"
)

// signStarts holds the day each sign begins within the month it starts in,
// indexed by month-1.
var signStarts = [12]struct {
	day  int
	sign Sign
}{
	{20, Aquarius},
	{19, Pisces},
	{21, Aries},
	{20, Taurus},
	{21, Gemini},
	{21, Cancer},
	{23, Leo},
	{23, Virgo},
	{23, Libra},
	{23, Scorpio},
	{22, Sagittarius},
	{22, Capricorn},
}

// degreesPerDay is the mean daily motion of the Sun.
const degreesPerDay = 0.9856

// SunSignForDate returns the tropical Sun sign by calendar boundaries and the
// approximate degree within it.
func SunSignForDate(date time.Time) (Sign, float64) {
	month := int(date.Month()) - 1
	start := signStarts[month]
	startDate := time.Date(date.Year(), date.Month(), start.day, 0, 0, 0, 0, time.UTC)
	sign := start.sign
	if date.Day() < start.day {
		prev := (month + 11) % 12
		sign = signStarts[prev].sign
		year := date.Year()
		if month == 0 {
			year--
		}
		startDate = time.Date(year, time.Month(prev+1), signStarts[prev].day, 0, 0, 0, 0, time.UTC)
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	degree := day.Sub(startDate).Hours() / 24 * degreesPerDay
	return sign, roundPosition(math.Min(degree, 29.99))
}

// fallbackPlanets describes how far from the Sun a body may wander, in signs.
// A negative spread means the body is placed anywhere in the zodiac.
var fallbackPlanets = []struct {
	name   string
	spread int
}{
	{"Moon", -1},
	{"Mercury", 1},
	{"Venus", 2},
	{"Mars", -1},
	{"Jupiter", -1},
	{"Saturn", -1},
}

// FallbackProfile derives a reproducible approximate profile from the birth
// input alone. The same input always yields the same profile.
func FallbackProfile(in BirthInput, houseSystem string) Profile {
	rng := rand.New(rand.NewSource(fallbackSeed(in)))

	sun, sunDegree := SunSignForDate(in.Date)
	sunIndex := zodiacIndex(sun)
	planets := make([]Planet, 0, len(fallbackPlanets)+1)
	planets = append(planets, Planet{Name: "Sun", Sign: sun, Position: sunDegree})

	for _, body := range fallbackPlanets {
		var idx int
		if body.spread < 0 {
			idx = rng.Intn(len(Zodiac))
		} else {
			idx = sunIndex + rng.Intn(2*body.spread+1) - body.spread
		}
		planets = append(planets, Planet{
			Name:     body.name,
			Sign:     Zodiac[(idx%12+12)%12],
			Position: roundPosition(rng.Float64() * 30),
		})
	}

	raw := tallyElements(planets)
	for _, el := range Elements {
		raw[el] += rng.Float64()
	}

	return Profile{
		Sun:         sun,
		Planets:     planets,
		Houses:      HousesUnavailable(),
		HouseSystem: houseSystem,
		Elements:    NormalizeElements(raw),
		Source:      SourceFallback,
	}
}

func fallbackSeed(in BirthInput) int64 {
	clock := "unknown"
	if in.Time != nil {
		clock = fmt.Sprintf("%02d:%02d:%02d", in.Time.Hour, in.Time.Minute, in.Time.Second)
	}
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%.4f|%.4f", in.Date.Format(time.DateOnly), clock, in.Coordinates.Latitude, in.Coordinates.Longitude)
	return int64(h.Sum64())
}

func zodiacIndex(sign Sign) int {
	for i, s := range Zodiac {
		if s == sign {
			return i
		}
	}
	return 0
}

func isLuminary(name string) bool {
	return strings.EqualFold(name, "sun") || strings.EqualFold(name, "moon")
}

func roundPosition(v float64) float64 {
	return math.Round(v*100) / 100
}

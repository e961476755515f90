package natal

import (
	"strings"
	"time"

	"github.com/yanqian/astro-profile/internal/domain/geo"
)

// Source records whether a profile came from the provider or the fallback.
type Source string

const (
	SourceProvider Source = "provider"
	SourceFallback Source = "fallback"
)

// Element is one of the four classical elements.
type Element string

const (
	Fire  Element = "fire"
	Earth Element = "earth"
	Air   Element = "air"
	Water Element = "water"
)

// Elements lists the four elements in canonical order.
var Elements = [4]Element{Fire, Earth, Air, Water}

// Sign is a tropical zodiac sign.
type Sign string

const (
	Aries       Sign = "Aries"
	Taurus      Sign = "Taurus"
	Gemini      Sign = "Gemini"
	Cancer      Sign = "Cancer"
	Leo         Sign = "Leo"
	Virgo       Sign = "Virgo"
	Libra       Sign = "Libra"
	Scorpio     Sign = "Scorpio"
	Sagittarius Sign = "Sagittarius"
	Capricorn   Sign = "Capricorn"
	Aquarius    Sign = "Aquarius"
	Pisces      Sign = "Pisces"
)

// Zodiac is ordered from Aries.
var Zodiac = [12]Sign{Aries, Taurus, Gemini, Cancer, Leo, Virgo, Libra, Scorpio, Sagittarius, Capricorn, Aquarius, Pisces}

// Element returns the triplicity of the sign, or "" for an unknown sign.
func (s Sign) Element() Element {
	for i, sign := range Zodiac {
		if sign == s {
			return Elements[i%4]
		}
	}
	return ""
}

// ParseSign matches a sign name case-insensitively.
func ParseSign(name string) (Sign, bool) {
	clean := strings.TrimSpace(name)
	for _, sign := range Zodiac {
		if strings.EqualFold(string(sign), clean) {
			return sign, true
		}
	}
	return "", false
}

// ClockTime is a local wall-clock time of birth.
type ClockTime struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second,omitempty"`
}

// BirthInput is the raw input to a profile calculation.
type BirthInput struct {
	Date           time.Time       `json:"date"`
	Time           *ClockTime      `json:"time,omitempty"`
	Coordinates    geo.Coordinates `json:"coordinates"`
	UTCOffsetHours *float64        `json:"utcOffsetHours,omitempty"`
}

// Planet is a single body placement. Position is the degree within the sign.
type Planet struct {
	Name     string  `json:"name"`
	Sign     Sign    `json:"sign"`
	Position float64 `json:"position"`
	House    int     `json:"house,omitempty"`
}

// HouseCusp is the start of one of the twelve houses.
type HouseCusp struct {
	Number int     `json:"number"`
	Sign   Sign    `json:"sign"`
	Degree float64 `json:"degree"`
}

// Houses distinguishes "the provider sent no houses" from "the provider sent
// an empty list". Cusps is never nil.
type Houses struct {
	Available bool        `json:"available"`
	Cusps     []HouseCusp `json:"cusps"`
}

// HousesAvailable wraps a provider supplied list, possibly empty.
func HousesAvailable(cusps []HouseCusp) Houses {
	if cusps == nil {
		cusps = []HouseCusp{}
	}
	return Houses{Available: true, Cusps: cusps}
}

// HousesUnavailable marks the houses as missing.
func HousesUnavailable() Houses {
	return Houses{Available: false, Cusps: []HouseCusp{}}
}

// ElementalComposition holds normalized weights that always sum to 100.
type ElementalComposition struct {
	Fire  int `json:"fire"`
	Earth int `json:"earth"`
	Air   int `json:"air"`
	Water int `json:"water"`
}

// EvenComposition is the 25/25/25/25 split.
func EvenComposition() ElementalComposition {
	return ElementalComposition{Fire: 25, Earth: 25, Air: 25, Water: 25}
}

// Weight returns the weight for el.
func (c ElementalComposition) Weight(el Element) int {
	switch el {
	case Fire:
		return c.Fire
	case Earth:
		return c.Earth
	case Air:
		return c.Air
	case Water:
		return c.Water
	}
	return 0
}

// Sum adds the four weights.
func (c ElementalComposition) Sum() int {
	return c.Fire + c.Earth + c.Air + c.Water
}

// IsZero reports a composition that was never populated.
func (c ElementalComposition) IsZero() bool {
	return c == ElementalComposition{}
}

// Profile is the canonical natal profile.
type Profile struct {
	Sun         Sign                 `json:"sun"`
	Planets     []Planet             `json:"planets"`
	Houses      Houses               `json:"houses"`
	HouseSystem string               `json:"houseSystem"`
	Elements    ElementalComposition `json:"elements"`
	Source      Source               `json:"source"`
}

// Config holds runtime knobs for the natal service.
type Config struct {
	HouseSystem     string
	ProviderTimeout time.Duration
}

const (
	defaultHouseSystem     = "placidus"
	defaultProviderTimeout = 8 * time.Second
)

package ephemeris

import (
	"fmt"
	"math"
	"strings"

	"github.com/yanqian/astro-profile/internal/domain/natal"
)

type chartPayload struct {
	Day       int      `json:"day"`
	Month     int      `json:"month"`
	Year      int      `json:"year"`
	Hour      int      `json:"hour"`
	Min       int      `json:"min"`
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	TZone     *float64 `json:"tzone,omitempty"`
	HouseType string   `json:"house_type"`
}

func newChartPayload(req natal.ChartRequest) chartPayload {
	houseType := strings.ToLower(strings.TrimSpace(req.HouseSystem))
	if houseType == "" {
		houseType = "placidus"
	}
	return chartPayload{
		Day:       req.Date.Day(),
		Month:     int(req.Date.Month()),
		Year:      req.Date.Year(),
		Hour:      req.Time.Hour,
		Min:       req.Time.Minute,
		Lat:       req.Coordinates.Latitude,
		Lon:       req.Coordinates.Longitude,
		TZone:     req.UTCOffsetHours,
		HouseType: houseType,
	}
}

type chartResponse struct {
	Planets  []planetEntry `json:"planets"`
	Houses   []houseEntry  `json:"houses"`
	Elements *elementEntry `json:"elements"`
}

type planetEntry struct {
	Name       string   `json:"name"`
	Sign       string   `json:"sign"`
	FullDegree float64  `json:"full_degree"`
	NormDegree *float64 `json:"norm_degree"`
	House      int      `json:"house"`
}

type houseEntry struct {
	House  int     `json:"house"`
	Sign   string  `json:"sign"`
	Degree float64 `json:"degree"`
}

type elementEntry struct {
	Fire  float64 `json:"fire"`
	Earth float64 `json:"earth"`
	Air   float64 `json:"air"`
	Water float64 `json:"water"`
}

// reading converts the wire response. Houses stay unavailable when the
// provider omitted the key entirely.
func (r chartResponse) reading() (natal.ChartReading, error) {
	planets := make([]natal.Planet, 0, len(r.Planets))
	for _, p := range r.Planets {
		sign, ok := natal.ParseSign(p.Sign)
		if !ok {
			return natal.ChartReading{}, fmt.Errorf("%w: planet %q has unknown sign %q", natal.ErrProviderMalformed, p.Name, p.Sign)
		}
		position := math.Mod(p.FullDegree, 30)
		if p.NormDegree != nil {
			position = *p.NormDegree
		}
		planets = append(planets, natal.Planet{
			Name:     strings.TrimSpace(p.Name),
			Sign:     sign,
			Position: position,
			House:    p.House,
		})
	}

	houses := natal.HousesUnavailable()
	if r.Houses != nil {
		cusps := make([]natal.HouseCusp, 0, len(r.Houses))
		for _, h := range r.Houses {
			sign, ok := natal.ParseSign(h.Sign)
			if !ok {
				return natal.ChartReading{}, fmt.Errorf("%w: house %d has unknown sign %q", natal.ErrProviderMalformed, h.House, h.Sign)
			}
			cusps = append(cusps, natal.HouseCusp{Number: h.House, Sign: sign, Degree: h.Degree})
		}
		houses = natal.HousesAvailable(cusps)
	}

	var elements map[natal.Element]float64
	if r.Elements != nil {
		elements = map[natal.Element]float64{
			natal.Fire:  r.Elements.Fire,
			natal.Earth: r.Elements.Earth,
			natal.Air:   r.Elements.Air,
			natal.Water: r.Elements.Water,
		}
	}

	return natal.ChartReading{Planets: planets, Houses: houses, RawElements: elements}, nil
}

package geo

import (
	"context"
	"time"
)

// Coordinates is an immutable WGS84 point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the point is inside the latitude/longitude ranges.
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Candidate is a single geocoder hit.
type Candidate struct {
	Coordinates Coordinates `json:"coordinates"`
	Label       string      `json:"label,omitempty"`
	Provider    string      `json:"provider,omitempty"`
}

// Geocoder resolves free text through an external service.
type Geocoder interface {
	Geocode(ctx context.Context, query string) ([]Candidate, error)
}

// Config controls the resolver.
type Config struct {
	GeocodeTimeout time.Duration
}

const defaultGeocodeTimeout = 5 * time.Second

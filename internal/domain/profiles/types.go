package profiles

import (
	"context"
	"time"

	"github.com/yanqian/astro-profile/internal/domain/geo"
	"github.com/yanqian/astro-profile/internal/domain/natal"
)

// CreateRequest is the payload accepted when computing a profile. Either City
// or both Latitude and Longitude must be given. UTCOffset wins over Timezone.
type CreateRequest struct {
	Label     string   `json:"label"`
	Date      string   `json:"date"`
	Time      string   `json:"time"`
	City      string   `json:"city"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timezone  string   `json:"timezone"`
	UTCOffset string   `json:"utcOffset"`
}

// Birth records the resolved inputs a profile was computed from.
type Birth struct {
	Date           string          `json:"date"`
	Time           string          `json:"time,omitempty"`
	City           string          `json:"city,omitempty"`
	Coordinates    geo.Coordinates `json:"coordinates"`
	Timezone       string          `json:"timezone,omitempty"`
	UTCOffsetHours *float64        `json:"utcOffsetHours,omitempty"`
}

// Record is a computed profile, persisted when it belongs to a user.
type Record struct {
	ID        string        `json:"id,omitempty"`
	UserID    string        `json:"-"`
	Label     string        `json:"label,omitempty"`
	Birth     Birth         `json:"birth"`
	Profile   natal.Profile `json:"profile"`
	CreatedAt time.Time     `json:"createdAt"`
}

// CompatibilitySide references a saved profile or carries inline elements.
type CompatibilitySide struct {
	ProfileID string             `json:"profileId,omitempty"`
	Elements  map[string]float64 `json:"elements,omitempty"`
}

// CompatibilityRequest compares two sides.
type CompatibilityRequest struct {
	A CompatibilitySide `json:"a"`
	B CompatibilitySide `json:"b"`
}

// Repository persists profile records.
type Repository interface {
	Save(ctx context.Context, record Record) error
	Get(ctx context.Context, id string) (Record, bool, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]Record, error)
}

// Config holds runtime knobs for the profiles service.
type Config struct {
	ListLimit int
}

const defaultListLimit = 50

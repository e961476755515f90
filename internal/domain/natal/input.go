package natal

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/yanqian/astro-profile/internal/domain/geo"
)

// ParseBirthInput converts the scalar request fields into a BirthInput.
// date must be YYYY-MM-DD; clock may be empty, HH:MM or HH:MM:SS.
func ParseBirthInput(date, clock string, coords geo.Coordinates, utcOffset *float64) (BirthInput, error) {
	day, err := time.Parse(time.DateOnly, strings.TrimSpace(date))
	if err != nil {
		return BirthInput{}, fmt.Errorf("date must be formatted as YYYY-MM-DD: %w", err)
	}
	in := BirthInput{Date: day, Coordinates: coords, UTCOffsetHours: utcOffset}
	if strings.TrimSpace(clock) != "" {
		ct, err := ParseClock(clock)
		if err != nil {
			return BirthInput{}, err
		}
		in.Time = &ct
	}
	return in, in.Validate()
}

// ParseClock parses HH:MM or HH:MM:SS.
func ParseClock(value string) (ClockTime, error) {
	raw := strings.TrimSpace(value)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ClockTime{Hour: ts.Hour(), Minute: ts.Minute(), Second: ts.Second()}, nil
		}
	}
	return ClockTime{}, fmt.Errorf("time %q must be formatted as HH:MM", value)
}

// Validate checks ranges of every field.
func (in BirthInput) Validate() error {
	if in.Date.IsZero() {
		return errors.New("date is required")
	}
	if in.Date.Year() < 1800 || in.Date.Year() > 2399 {
		return fmt.Errorf("year %d outside the supported range", in.Date.Year())
	}
	if in.Time != nil {
		t := in.Time
		if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 || t.Second < 0 || t.Second > 59 {
			return fmt.Errorf("time %02d:%02d:%02d is out of range", t.Hour, t.Minute, t.Second)
		}
	}
	if !in.Coordinates.Valid() || math.IsNaN(in.Coordinates.Latitude) || math.IsNaN(in.Coordinates.Longitude) {
		return fmt.Errorf("coordinates (%v, %v) are out of range", in.Coordinates.Latitude, in.Coordinates.Longitude)
	}
	if off := in.UTCOffsetHours; off != nil && (math.IsNaN(*off) || *off < -14 || *off > 14) {
		return fmt.Errorf("utc offset %v is out of range", *off)
	}
	return nil
}

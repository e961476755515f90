// Package tzoffset resolves the UTC offset an IANA zone observed at a
// historical local date-time.
package tzoffset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	// The zone database is embedded so historical rules do not depend on the host image.
	_ "time/tzdata"
)

// Offset is a resolved UTC offset in fractional hours plus its GMT label.
type Offset struct {
	Zone  string  `json:"zone"`
	Hours float64 `json:"offsetHours"`
	Label string  `json:"label"`
}

// HistoricalOffsetHours returns the offset in effect for zone at the given
// wall-clock time. Only the calendar and clock fields of local are used; its
// location is ignored. The boolean is false when the zone is unknown.
func HistoricalOffsetHours(zone string, local time.Time) (float64, bool) {
	off, ok := Resolve(zone, local)
	if !ok {
		return 0, false
	}
	return off.Hours, true
}

// Resolve is HistoricalOffsetHours with the label attached.
func Resolve(zone string, local time.Time) (Offset, bool) {
	name := strings.TrimSpace(zone)
	if name == "" || name == "Local" {
		return Offset{}, false
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Offset{}, false
	}
	wall := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(), local.Second(), 0, loc)
	_, seconds := wall.Zone()
	return Offset{
		Zone:  name,
		Hours: float64(seconds) / 3600,
		Label: FormatGMTOffset(float64(seconds) / 3600),
	}, true
}

// ParseGMTOffset parses "GMT", "GMT±H" and "GMT±HH:MM" into signed hours.
func ParseGMTOffset(label string) (float64, error) {
	raw := strings.TrimSpace(label)
	if !strings.HasPrefix(strings.ToUpper(raw), "GMT") {
		return 0, fmt.Errorf("offset %q: missing GMT prefix", label)
	}
	rest := raw[3:]
	if rest == "" {
		return 0, nil
	}
	sign := 1.0
	switch rest[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return 0, fmt.Errorf("offset %q: expected sign after GMT", label)
	}
	rest = rest[1:]

	hourPart, minutePart, hasMinutes := strings.Cut(rest, ":")
	hours, err := strconv.Atoi(hourPart)
	if err != nil || !allDigits(hourPart) || len(hourPart) > 2 {
		return 0, fmt.Errorf("offset %q: invalid hours", label)
	}
	minutes := 0
	if hasMinutes {
		minutes, err = strconv.Atoi(minutePart)
		if err != nil || !allDigits(minutePart) || len(minutePart) != 2 || minutes >= 60 {
			return 0, fmt.Errorf("offset %q: invalid minutes", label)
		}
	}
	if hours > 14 {
		return 0, errors.New("offset hours out of range")
	}
	return sign * (float64(hours) + float64(minutes)/60), nil
}

// allDigits reports whether s is non-empty and holds only ASCII digits.
// strconv.Atoi alone would accept a second sign.
func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatGMTOffset renders hours as a GMT label, dropping zero minutes.
func FormatGMTOffset(hours float64) string {
	totalMinutes := int(math.Round(hours * 60))
	if totalMinutes == 0 {
		return "GMT"
	}
	sign := "+"
	if totalMinutes < 0 {
		sign = "-"
		totalMinutes = -totalMinutes
	}
	h, m := totalMinutes/60, totalMinutes%60
	if m == 0 {
		return fmt.Sprintf("GMT%s%d", sign, h)
	}
	return fmt.Sprintf("GMT%s%d:%02d", sign, h, m)
}

// ParseUTCOffset accepts either a GMT label or a plain signed decimal ("-6", "5.5").
func ParseUTCOffset(value string) (float64, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 0, errors.New("offset is empty")
	}
	if strings.HasPrefix(strings.ToUpper(raw), "GMT") {
		return ParseGMTOffset(raw)
	}
	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("offset %q: %w", value, err)
	}
	if math.IsNaN(hours) || hours < -14 || hours > 14 {
		return 0, fmt.Errorf("offset %q out of range", value)
	}
	return hours, nil
}

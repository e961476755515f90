package tzoffset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHistoricalOffsetHoursGuatemala(t *testing.T) {
	local := time.Date(1990, time.July, 29, 10, 0, 0, 0, time.UTC)

	hours, ok := HistoricalOffsetHours("America/Guatemala", local)
	require.True(t, ok)
	require.Equal(t, -6.0, hours)
}

func TestHistoricalOffsetHoursUsesRulesOfThatYear(t *testing.T) {
	tests := []struct {
		date time.Time
		want float64
	}{
		{time.Date(2010, time.January, 15, 12, 0, 0, 0, time.UTC), 3},
		{time.Date(2012, time.January, 15, 12, 0, 0, 0, time.UTC), 4},
		{time.Date(2016, time.January, 15, 12, 0, 0, 0, time.UTC), 3},
	}
	for _, tc := range tests {
		hours, ok := HistoricalOffsetHours("Europe/Moscow", tc.date)
		require.True(t, ok)
		require.Equal(t, tc.want, hours, tc.date.Format(time.DateOnly))
	}
}

func TestHistoricalOffsetHoursDaylightSaving(t *testing.T) {
	winter, ok := HistoricalOffsetHours("America/New_York", time.Date(2001, time.January, 10, 9, 0, 0, 0, time.UTC))
	require.True(t, ok)
	require.Equal(t, -5.0, winter)

	summer, ok := HistoricalOffsetHours("America/New_York", time.Date(2001, time.July, 10, 9, 0, 0, 0, time.UTC))
	require.True(t, ok)
	require.Equal(t, -4.0, summer)
}

func TestHistoricalOffsetHoursFractional(t *testing.T) {
	india, ok := HistoricalOffsetHours("Asia/Kolkata", time.Date(2000, time.March, 1, 8, 0, 0, 0, time.UTC))
	require.True(t, ok)
	require.Equal(t, 5.5, india)

	nepal, ok := HistoricalOffsetHours("Asia/Kathmandu", time.Date(2000, time.March, 1, 8, 0, 0, 0, time.UTC))
	require.True(t, ok)
	require.Equal(t, 5.75, nepal)
}

func TestHistoricalOffsetHoursUnknownZone(t *testing.T) {
	for _, zone := range []string{"Mars/Olympus_Mons", "", "   ", "Local"} {
		hours, ok := HistoricalOffsetHours(zone, time.Now())
		require.False(t, ok, zone)
		require.Zero(t, hours)
	}
}

func TestResolveLabel(t *testing.T) {
	off, ok := Resolve("Asia/Kolkata", time.Date(2020, time.May, 1, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	require.Equal(t, "GMT+5:30", off.Label)
	require.Equal(t, "Asia/Kolkata", off.Zone)
}

func TestParseGMTOffset(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"GMT", 0},
		{"GMT-6", -6},
		{"GMT+5", 5},
		{"GMT+05:30", 5.5},
		{"GMT+5:45", 5.75},
		{"GMT-03:30", -3.5},
		{"gmt+1", 1},
	}
	for _, tc := range tests {
		got, err := ParseGMTOffset(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseGMTOffsetRejectsMalformed(t *testing.T) {
	for _, in := range []string{"UTC+1", "GMT5", "GMT+", "GMT+5:3", "GMT+5:75", "GMT+123", "GMT+20", "GMT+-5", "GMT--5", "GMT++5", "GMT+5:-5", "GMT+5:+5", "GMT- 5"} {
		_, err := ParseGMTOffset(in)
		require.Error(t, err, in)
	}
}

func TestFormatGMTOffsetRoundTrip(t *testing.T) {
	for _, hours := range []float64{0, -6, 5.5, 5.75, -3.5, 14, -12} {
		parsed, err := ParseGMTOffset(FormatGMTOffset(hours))
		require.NoError(t, err)
		require.Equal(t, hours, parsed)
	}
}

func TestParseUTCOffset(t *testing.T) {
	got, err := ParseUTCOffset("-6")
	require.NoError(t, err)
	require.Equal(t, -6.0, got)

	got, err = ParseUTCOffset("GMT+5:30")
	require.NoError(t, err)
	require.Equal(t, 5.5, got)

	_, err = ParseUTCOffset("twelve")
	require.Error(t, err)
	_, err = ParseUTCOffset("18")
	require.Error(t, err)
	_, err = ParseUTCOffset("")
	require.Error(t, err)
	_, err = ParseUTCOffset("GMT--5")
	require.Error(t, err)
}

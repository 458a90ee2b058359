// Package timezone provides timezone utilities for the assistant.
//
// All calendar arithmetic in the time resolution core runs in an explicit
// IANA zone supplied by the caller. This package owns parsing and the
// pre-loaded locations, so the core never touches time.Local.
package timezone

import (
	"fmt"
	"time"
)

// UTC is the coordinated universal time timezone.
var UTC = time.UTC

// ParseTimezone parses an IANA timezone identifier (e.g., "Asia/Seoul").
// If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// MustParseTimezone parses a timezone or panics if invalid.
// Use this for constants that are known to be valid at compile time.
func MustParseTimezone(tz string) *time.Location {
	loc, err := ParseTimezone(tz)
	if err != nil {
		panic(err)
	}
	return loc
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	if tz == "" || tz == "UTC" {
		return true
	}

	_, err := time.LoadLocation(tz)
	return err == nil
}

// FromUnixMilli converts an epoch-millisecond timestamp to a time in the given zone.
func FromUnixMilli(ms int64, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	return time.UnixMilli(ms).In(tz)
}

// StartOfDay returns the start of the day (00:00:00) in the given timezone.
func StartOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	local := t.In(tz)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, tz)
}

// NextMidnight returns 00:00:00 of the day after t in the given timezone.
func NextMidnight(t time.Time, tz *time.Location) time.Time {
	return StartOfDay(t, tz).AddDate(0, 0, 1)
}

// FormatEventTime formats an event's time for display.
// Rules:
//   - All-day event: "2006-01-02"
//   - With end time: "2006-01-02 15:04 - 16:00"
//   - No end time: "2006-01-02 15:04"
func FormatEventTime(startMs int64, endMs *int64, allDay bool, tz *time.Location) string {
	if tz == nil {
		tz = UTC
	}
	startTime := time.UnixMilli(startMs).In(tz)

	if allDay {
		return startTime.Format("2006-01-02")
	}

	if endMs != nil {
		endTime := time.UnixMilli(*endMs).In(tz)
		return fmt.Sprintf("%s - %s",
			startTime.Format("2006-01-02 15:04"),
			endTime.Format("15:04"))
	}

	return startTime.Format("2006-01-02 15:04")
}

// Common timezone constants
const (
	// TimezoneUTC is the UTC timezone identifier
	TimezoneUTC = "UTC"

	// TimezoneAsiaSeoul is the Korea Standard Time timezone.
	// The default deployment anchors all message timestamps here.
	TimezoneAsiaSeoul = "Asia/Seoul"

	// TimezoneAsiaTokyo is the Japan Standard Time timezone
	TimezoneAsiaTokyo = "Asia/Tokyo"

	// TimezoneAmericaNewYork is the Eastern Time timezone
	TimezoneAmericaNewYork = "America/New_York"
)

// Common timezone locations (pre-loaded for performance)
var (
	// LocationAsiaSeoul is the pre-loaded Asia/Seoul location
	LocationAsiaSeoul = MustParseTimezone(TimezoneAsiaSeoul)

	// LocationAsiaTokyo is the pre-loaded Asia/Tokyo location
	LocationAsiaTokyo = MustParseTimezone(TimezoneAsiaTokyo)

	// LocationAmericaNewYork is the pre-loaded America/New_York location
	LocationAmericaNewYork = MustParseTimezone(TimezoneAmericaNewYork)
)

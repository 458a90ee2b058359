package timeparse

import (
	"encoding/json"
	"strconv"
	"time"
)

// Field names of model-produced extraction maps that carry epoch-millisecond
// timestamps.
const (
	FieldStartAt = "startAt"
	FieldEndAt   = "endAt"
)

// pastToleranceMillis is how far in the past an extracted start may lie
// before the year-correction policy kicks in. Anything within 30 days of the
// reference is treated as plausible near-past.
const pastToleranceMillis = 30 * 24 * int64(time.Hour/time.Millisecond)

// CorrectPastDate post-processes an externally produced extraction map
// against the reference instant. Language-model extraction frequently omits
// the year or infers a wrong one; when the extracted start lies more than 30
// days in the past, the start (and end, when present) is re-yeared while
// month, day and clock time are preserved.
//
// The corrected year is referenceYear+1 when the extracted month has not yet
// occurred in the reference year (extracted month strictly less than the
// reference month), otherwise referenceYear. An endAt field is independently
// re-yeared to the same target year, never recomputed from startAt.
//
// The input map is never mutated. Any missing or malformed startAt returns
// the input unchanged: this policy is advisory and must never block a save.
func CorrectPastDate(fields map[string]any, referenceMillis int64, loc *time.Location) map[string]any {
	if fields == nil {
		return fields
	}
	if loc == nil {
		loc = time.UTC
	}

	startAt, ok := epochMillisField(fields, FieldStartAt)
	if !ok {
		return fields
	}

	if startAt-referenceMillis >= -pastToleranceMillis {
		// Near-past or future: plausible as-is.
		return fields
	}

	ref := time.UnixMilli(referenceMillis).In(loc)
	start := time.UnixMilli(startAt).In(loc)

	targetYear := ref.Year()
	if int(start.Month()) < int(ref.Month()) {
		// The month has not come around yet this year, so the extraction
		// most likely refers to next year's occurrence.
		targetYear++
	}

	corrected := make(map[string]any, len(fields))
	for k, v := range fields {
		corrected[k] = v
	}
	corrected[FieldStartAt] = withYear(start, targetYear, loc).UnixMilli()

	if endAt, ok := epochMillisField(fields, FieldEndAt); ok {
		end := time.UnixMilli(endAt).In(loc)
		corrected[FieldEndAt] = withYear(end, targetYear, loc).UnixMilli()
	}

	return corrected
}

// withYear rebuilds t with the given year, preserving month, day and clock
// time in the given zone.
func withYear(t time.Time, year int, loc *time.Location) time.Time {
	return time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// epochMillisField reads an epoch-millisecond value from an extraction map,
// tolerating the numeric shapes a decoded JSON payload can produce.
func epochMillisField(fields map[string]any, key string) (int64, bool) {
	raw, ok := fields[key]
	if !ok || raw == nil {
		return 0, false
	}
	switch v := raw.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

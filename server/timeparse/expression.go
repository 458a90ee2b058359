// Package timeparse is the natural-language time resolution core.
//
// It turns free-form Korean/English text into concrete time windows in three
// steps, each a pure function of its arguments:
//
//   - Extract scans text for typed time expressions (absolute dates, ranges,
//     weekdays, relative dates, times of day, durations).
//   - Resolve merges the extracted expressions with a caller-supplied
//     reference instant into a single start/end window.
//   - CorrectPastDate repairs obviously-wrong past dates in externally
//     (LLM) produced extractions.
//
// The package never reads the system clock and holds no mutable state, so
// every function is safe for concurrent use.
package timeparse

import "fmt"

// Kind classifies a recognized time expression. The kinds are mutually
// exclusive; one substring yields exactly one expression per matcher.
type Kind int

const (
	// KindAbsoluteDate is a calendar date, with or without an explicit year.
	KindAbsoluteDate Kind = iota
	// KindRange is a month with a start day and an end day (e.g. "10/20~22").
	KindRange
	// KindWeekday is a day-of-week reference, optionally qualified with
	// this-week/next-week.
	KindWeekday
	// KindRelativeDate is a day offset from the reference date.
	KindRelativeDate
	// KindTimeOfDay is a clock time, optionally with a meridiem marker.
	KindTimeOfDay
	// KindDuration is a length of time in hours or days.
	KindDuration
)

var kindNames = [...]string{
	KindAbsoluteDate: "AbsoluteDate",
	KindRange:        "Range",
	KindWeekday:      "Weekday",
	KindRelativeDate: "RelativeDate",
	KindTimeOfDay:    "TimeOfDay",
	KindDuration:     "Duration",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Span is a half-open byte-offset range [Start, End) into the source text.
type Span struct {
	Start int
	End   int
}

// Meridiem is a raw AM/PM marker as it appeared in the text.
type Meridiem int

const (
	// MeridiemNone means no marker was present; the hour is used as-is.
	MeridiemNone Meridiem = iota
	// MeridiemAM covers 오전 / AM.
	MeridiemAM
	// MeridiemPM covers 오후 / PM.
	MeridiemPM
)

// DurationUnit is the unit of a duration expression.
type DurationUnit int

const (
	// UnitHours is a "N시간" duration.
	UnitHours DurationUnit = iota
	// UnitDays is a "N일 동안" duration.
	UnitDays
)

// DateAttrs carries the fields of an absolute date. Year is nil when the
// text gave only month and day; the resolver defaults it to the reference
// year.
type DateAttrs struct {
	Year  *int `json:"year,omitempty"`
	Month int  `json:"month"`
	Day   int  `json:"day"`
}

// RangeAttrs carries a month-scoped day range (start day through end day
// inclusive).
type RangeAttrs struct {
	Month    int `json:"month"`
	StartDay int `json:"startDay"`
	EndDay   int `json:"endDay"`
}

// WeekdayAttrs carries a weekday reference. WeekOffset is 0 for a bare or
// "이번" weekday and 1 for "다음".
type WeekdayAttrs struct {
	Weekday    int `json:"weekday"` // 0=Sunday ... 6=Saturday
	WeekOffset int `json:"weekOffset"`
}

// RelativeAttrs carries a day offset relative to the running anchor date.
// Week offsets are normalized to days at extraction time.
type RelativeAttrs struct {
	OffsetDays int `json:"offsetDays"`
}

// ClockAttrs carries a raw, unconverted clock time. Meridiem conversion to
// 24-hour form happens in the resolver.
type ClockAttrs struct {
	Hour     int      `json:"hour"`
	Minute   int      `json:"minute"`
	Meridiem Meridiem `json:"meridiem"`
}

// DurationAttrs carries a duration amount and unit.
type DurationAttrs struct {
	Amount int          `json:"amount"`
	Unit   DurationUnit `json:"unit"`
}

// Expression is a single recognized time token. Exactly one of the attribute
// pointers matching Kind is non-nil; the resolver tolerates a nil attribute
// by skipping the expression.
type Expression struct {
	Text string
	Kind Kind
	Span Span

	Date     *DateAttrs
	Range    *RangeAttrs
	Weekday  *WeekdayAttrs
	Relative *RelativeAttrs
	Clock    *ClockAttrs
	Duration *DurationAttrs
}

// String returns a debug representation, e.g. AbsoluteDate("2025.10.20")[0:10].
func (e Expression) String() string {
	return fmt.Sprintf("%s(%q)[%d:%d]", e.Kind, e.Text, e.Span.Start, e.Span.End)
}

package timeparse

import (
	"time"
)

// Context anchors all relative and implicit computation for one resolution
// call. It is immutable once constructed; callers must not reuse a Context
// across different reference times.
type Context struct {
	// ReferenceMillis is the instant the caller considers "now", e.g. the
	// receipt time of a message. Never read from the system clock here.
	ReferenceMillis int64
	// Location is the IANA zone all date arithmetic runs in. Weekday
	// boundaries, month lengths and day rollovers use this zone, not UTC
	// and not the process-local zone.
	Location *time.Location
}

// NewContext builds a resolve context for the given reference instant and zone.
// A nil location falls back to UTC.
func NewContext(referenceMillis int64, loc *time.Location) Context {
	if loc == nil {
		loc = time.UTC
	}
	return Context{ReferenceMillis: referenceMillis, Location: loc}
}

// ReferenceTime returns the reference instant projected into the context zone.
func (c Context) ReferenceTime() time.Time {
	return time.UnixMilli(c.ReferenceMillis).In(c.Location)
}

// Window is a resolved candidate time window.
type Window struct {
	Start time.Time
	End   time.Time
	// AllDay is true when no time-of-day expression was found; the window
	// then spans midnight to the following midnight.
	AllDay bool
	// SourceText is the original input, retained for audit and debugging.
	SourceText string
	// Confidence is 1.0 for this resolver: it means "this is what the rules
	// unambiguously produced", not a calibrated probability. Model-based
	// extraction carries its own score.
	Confidence float64
}

// StartMillis returns the window start as epoch milliseconds.
func (w Window) StartMillis() int64 { return w.Start.UnixMilli() }

// EndMillis returns the window end as epoch milliseconds.
func (w Window) EndMillis() int64 { return w.End.UnixMilli() }

// Resolve merges extracted expressions into at most one concrete window.
// An empty expression list yields nil; otherwise exactly one window is
// returned. Resolution applies a fixed priority order: an absolute date or
// range anchors the date; failing that, relative-date and weekday
// expressions adjust the reference date in text order; the first time-of-day
// sets the clock; the first duration (or a range end) sets the window length.
// The function is deterministic and never fails.
func Resolve(text string, exprs []Expression, ctx Context) []Window {
	if len(exprs) == 0 {
		return nil
	}

	loc := ctx.Location
	if loc == nil {
		loc = time.UTC
	}
	ref := time.UnixMilli(ctx.ReferenceMillis).In(loc)

	// Stage 1: absolute anchor. The first absolute date or range in text
	// order wins. Invalid calendar values mean "no anchor", never an error.
	anchorYear, anchorMonth, anchorDay := ref.Year(), int(ref.Month()), ref.Day()
	anchorFound := false
	var rangeEndDay int
	hasRangeEnd := false

	for _, expr := range exprs {
		switch expr.Kind {
		case KindAbsoluteDate:
			if expr.Date == nil {
				continue
			}
			year := ref.Year()
			if expr.Date.Year != nil {
				year = *expr.Date.Year
			}
			if !isValidDate(year, expr.Date.Month, expr.Date.Day) {
				continue
			}
			anchorYear, anchorMonth, anchorDay = year, expr.Date.Month, expr.Date.Day
			anchorFound = true
		case KindRange:
			if expr.Range == nil {
				continue
			}
			if !isValidDate(ref.Year(), expr.Range.Month, expr.Range.StartDay) ||
				!isValidDate(ref.Year(), expr.Range.Month, expr.Range.EndDay) {
				continue
			}
			anchorYear, anchorMonth, anchorDay = ref.Year(), expr.Range.Month, expr.Range.StartDay
			rangeEndDay = expr.Range.EndDay
			hasRangeEnd = true
			anchorFound = true
		default:
			continue
		}
		break
	}

	// Stage 2: relative/weekday adjustment, only when no absolute anchor was
	// found. Each expression mutates the running anchor date in text order.
	if !anchorFound {
		anchor := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)
		for _, expr := range exprs {
			switch expr.Kind {
			case KindRelativeDate:
				if expr.Relative == nil {
					continue
				}
				anchor = anchor.AddDate(0, 0, expr.Relative.OffsetDays)
			case KindWeekday:
				if expr.Weekday == nil {
					continue
				}
				anchor = applyWeekday(anchor, expr.Weekday.Weekday, expr.Weekday.WeekOffset)
			}
		}
		anchorYear, anchorMonth, anchorDay = anchor.Year(), int(anchor.Month()), anchor.Day()
	}

	// Stage 3: time of day. The first clock expression wins; absence means
	// an all-day window at midnight.
	hour, minute := 0, 0
	allDay := true
	for _, expr := range exprs {
		if expr.Kind != KindTimeOfDay || expr.Clock == nil {
			continue
		}
		hour = normalizeHour(expr.Clock.Hour, expr.Clock.Meridiem)
		minute = expr.Clock.Minute
		allDay = false
		break
	}

	start := time.Date(anchorYear, time.Month(anchorMonth), anchorDay, hour, minute, 0, 0, loc)

	// Stage 4: duration. The first duration expression determines the window
	// length, unless a range end was already recorded.
	var duration *DurationAttrs
	if !hasRangeEnd {
		for _, expr := range exprs {
			if expr.Kind == KindDuration && expr.Duration != nil {
				duration = expr.Duration
				break
			}
		}
	}

	// Stage 5: end-time fallback policy, exactly one branch applies.
	var end time.Time
	switch {
	case hasRangeEnd:
		// The range covers start day through end day inclusive, so the
		// window ends at midnight of the day after the end day.
		end = time.Date(anchorYear, time.Month(anchorMonth), rangeEndDay+1, 0, 0, 0, 0, loc)
	case duration != nil && duration.Unit == UnitDays:
		end = start.AddDate(0, 0, duration.Amount)
	case duration != nil && duration.Unit == UnitHours:
		end = start.Add(time.Duration(duration.Amount) * time.Hour)
	case !allDay:
		end = start.Add(time.Hour)
	default:
		end = time.Date(anchorYear, time.Month(anchorMonth), anchorDay+1, 0, 0, 0, 0, loc)
	}

	return []Window{{
		Start:      start,
		End:        end,
		AllDay:     allDay,
		SourceText: text,
		Confidence: 1.0,
	}}
}

// applyWeekday advances the anchor to the requested weekday.
//
// weekOffset 0 moves to the next occurrence strictly after the anchor: a
// user saying "Monday" on a Monday means next Monday, never the same day.
// weekOffset 1 targets the given weekday of the following calendar week,
// using the Sunday-start convention.
func applyWeekday(anchor time.Time, weekday int, weekOffset int) time.Time {
	if weekOffset >= 1 {
		sunday := anchor.AddDate(0, 0, -int(anchor.Weekday()))
		return sunday.AddDate(0, 0, 7+weekday)
	}
	diff := (weekday - int(anchor.Weekday()) + 7) % 7
	if diff == 0 {
		diff = 7
	}
	return anchor.AddDate(0, 0, diff)
}

// normalizeHour converts a raw 12-hour clock value to 24-hour form using the
// meridiem token. Without a marker the raw hour is used as-is.
func normalizeHour(hour int, meridiem Meridiem) int {
	switch meridiem {
	case MeridiemPM:
		if hour < 12 {
			hour += 12
		}
	case MeridiemAM:
		if hour == 12 {
			hour = 0
		}
	}
	return hour
}

func isValidDate(year, month, day int) bool {
	if month < 1 || month > 12 {
		return false
	}
	return day >= 1 && day <= daysInMonth(year, month)
}

func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeapYear(year) {
			return 29
		}
		return 28
	}
	return 30
}

func isLeapYear(year int) bool {
	if year%4 != 0 {
		return false
	}
	if year%100 != 0 {
		return true
	}
	return year%400 == 0
}

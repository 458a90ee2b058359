package timeparse

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// The matcher battery. Each pattern is self-contained and compiled once at
// startup; the patterns are never mutated afterwards.
var (
	// 2025.10.20 / 2025-10-20 / 2025/10/20 / 2025년 10월 20일
	absoluteDatePattern = regexp.MustCompile(`(\d{4})\s*[.\-/년]\s*(\d{1,2})\s*[.\-/월]\s*(\d{1,2})(?:\s*일)?`)

	// 10/20~22, 10/20-22
	rangeSlashPattern = regexp.MustCompile(`(\d{1,2})/(\d{1,2})\s*[~\-]\s*(\d{1,2})`)
	// 10월 20일~22일
	rangeKoreanPattern = regexp.MustCompile(`(\d{1,2})월\s*(\d{1,2})일?\s*[~\-]\s*(\d{1,2})(?:\s*일)?`)

	// 10월 20일
	monthDayKoreanPattern = regexp.MustCompile(`(\d{1,2})월\s*(\d{1,2})일`)
	// 10/20
	monthDaySlashPattern = regexp.MustCompile(`(\d{1,2})/(\d{1,2})`)

	// (이번|다음)(주) X요일, X요
	weekdayPattern = regexp.MustCompile(`(?:(이번|다음)\s*주?\s*)?([월화수목금토일])요일?`)

	// N일/N주 뒤/후(에)
	relativeNumericPattern = regexp.MustCompile(`(\d+)\s*(일|주)\s*[뒤후](?:에)?`)

	// 오후 3시, 14:30, PM 2:00, 3시 30분
	// The separator group also matches "시간" so that a duration like "3시간"
	// is not half-consumed as "3시"; such matches are skipped here and left
	// to the duration matcher.
	timeOfDayPattern = regexp.MustCompile(`(?:(오전|오후|[AaPp][Mm])\s*)?(\d{1,2})\s*(시간?|:)(?:\s*(\d{1,2})\s*분?)?`)

	// N시간(동안/간)
	durationHoursPattern = regexp.MustCompile(`(\d+)\s*시간(?:\s*(?:동안|간))?`)
	// N일 동안 / N일간 (the suffix is mandatory to disambiguate from a
	// day-of-month)
	durationDaysPattern = regexp.MustCompile(`(\d+)\s*일\s*(?:동안|간)`)
)

// relativeKeywords is the fixed relative-date lexicon, offsets in days.
var relativeKeywords = []struct {
	word       string
	offsetDays int
}{
	{"그저께", -2},
	{"어제", -1},
	{"오늘", 0},
	{"내일", 1},
	{"모레", 2},
	{"글피", 3},
}

// monthDayProximityRunes is how close (in runes) a duration-day match must be
// to a preceding month-day match with the same day value to be discarded as a
// re-capture of that date's day field.
const monthDayProximityRunes = 5

// Extract scans text for time expressions and returns them ordered by
// ascending start offset. It never fails; text without any recognizable
// expression yields nil.
func Extract(text string) []Expression {
	if text == "" {
		return nil
	}

	var exprs []Expression

	// 1. Absolute dates with an explicit year.
	dateSpans := make([]Span, 0, 2)
	for _, m := range absoluteDatePattern.FindAllStringSubmatchIndex(text, -1) {
		year := atoi(text[m[2]:m[3]])
		span := Span{Start: m[0], End: m[1]}
		exprs = append(exprs, Expression{
			Text: text[m[0]:m[1]],
			Kind: KindAbsoluteDate,
			Span: span,
			Date: &DateAttrs{
				Year:  &year,
				Month: atoi(text[m[4]:m[5]]),
				Day:   atoi(text[m[6]:m[7]]),
			},
		})
		dateSpans = append(dateSpans, span)
	}

	// 2. Ranges. Evaluated before the plain month-day matcher so the range's
	// day tokens are not re-captured as standalone dates.
	for _, pattern := range []*regexp.Regexp{rangeSlashPattern, rangeKoreanPattern} {
		for _, m := range pattern.FindAllStringSubmatchIndex(text, -1) {
			span := Span{Start: m[0], End: m[1]}
			if overlapsAny(span, dateSpans) {
				continue
			}
			exprs = append(exprs, Expression{
				Text: text[m[0]:m[1]],
				Kind: KindRange,
				Span: span,
				Range: &RangeAttrs{
					Month:    atoi(text[m[2]:m[3]]),
					StartDay: atoi(text[m[4]:m[5]]),
					EndDay:   atoi(text[m[6]:m[7]]),
				},
			})
			dateSpans = append(dateSpans, span)
		}
	}

	// 3. Month-day without year. Skips anything already claimed by an
	// absolute date or a range.
	var monthDays []monthDayMatch
	for _, pattern := range []*regexp.Regexp{monthDayKoreanPattern, monthDaySlashPattern} {
		for _, m := range pattern.FindAllStringSubmatchIndex(text, -1) {
			span := Span{Start: m[0], End: m[1]}
			if overlapsAny(span, dateSpans) {
				continue
			}
			day := atoi(text[m[4]:m[5]])
			exprs = append(exprs, Expression{
				Text: text[m[0]:m[1]],
				Kind: KindAbsoluteDate,
				Span: span,
				Date: &DateAttrs{
					Month: atoi(text[m[2]:m[3]]),
					Day:   day,
				},
			})
			monthDays = append(monthDays, monthDayMatch{day: day, span: span})
		}
	}

	// 4. Weekdays.
	for _, m := range weekdayPattern.FindAllStringSubmatchIndex(text, -1) {
		weekOffset := 0
		if m[2] >= 0 && text[m[2]:m[3]] == "다음" {
			weekOffset = 1
		}
		exprs = append(exprs, Expression{
			Text: text[m[0]:m[1]],
			Kind: KindWeekday,
			Span: Span{Start: m[0], End: m[1]},
			Weekday: &WeekdayAttrs{
				Weekday:    koreanWeekdayIndex(text[m[4]:m[5]]),
				WeekOffset: weekOffset,
			},
		})
	}

	// 5. Relative-date keywords.
	for _, kw := range relativeKeywords {
		for idx := 0; ; {
			rel := strings.Index(text[idx:], kw.word)
			if rel < 0 {
				break
			}
			start := idx + rel
			end := start + len(kw.word)
			exprs = append(exprs, Expression{
				Text:     kw.word,
				Kind:     KindRelativeDate,
				Span:     Span{Start: start, End: end},
				Relative: &RelativeAttrs{OffsetDays: kw.offsetDays},
			})
			idx = end
		}
	}

	// 6. Relative-date numeric. Week offsets are normalized to days here.
	for _, m := range relativeNumericPattern.FindAllStringSubmatchIndex(text, -1) {
		offset := atoi(text[m[2]:m[3]])
		if text[m[4]:m[5]] == "주" {
			offset *= 7
		}
		exprs = append(exprs, Expression{
			Text:     text[m[0]:m[1]],
			Kind:     KindRelativeDate,
			Span:     Span{Start: m[0], End: m[1]},
			Relative: &RelativeAttrs{OffsetDays: offset},
		})
	}

	// 7. Time of day. The meridiem token is kept raw; 12/24-hour conversion
	// belongs to the resolver.
	for _, m := range timeOfDayPattern.FindAllStringSubmatchIndex(text, -1) {
		sep := text[m[6]:m[7]]
		if sep == "시간" {
			continue // duration, handled below
		}
		minute := 0
		hasMinute := m[8] >= 0
		if hasMinute {
			minute = atoi(text[m[8]:m[9]])
		}
		if sep == ":" && !hasMinute {
			continue // a bare trailing colon is not a clock time
		}
		meridiem := MeridiemNone
		if m[2] >= 0 {
			meridiem = parseMeridiem(text[m[2]:m[3]])
		}
		exprs = append(exprs, Expression{
			Text: text[m[0]:m[1]],
			Kind: KindTimeOfDay,
			Span: Span{Start: m[0], End: m[1]},
			Clock: &ClockAttrs{
				Hour:     atoi(text[m[4]:m[5]]),
				Minute:   minute,
				Meridiem: meridiem,
			},
		})
	}

	// 8. Durations in hours.
	for _, m := range durationHoursPattern.FindAllStringSubmatchIndex(text, -1) {
		exprs = append(exprs, Expression{
			Text:     text[m[0]:m[1]],
			Kind:     KindDuration,
			Span:     Span{Start: m[0], End: m[1]},
			Duration: &DurationAttrs{Amount: atoi(text[m[2]:m[3]]), Unit: UnitHours},
		})
	}

	// 9. Durations in days, subject to the month-day exclusion: a day-count
	// digit that is really the day field of a nearby "M월 D일" construct is
	// not a duration.
	for _, m := range durationDaysPattern.FindAllStringSubmatchIndex(text, -1) {
		span := Span{Start: m[0], End: m[1]}
		amount := atoi(text[m[2]:m[3]])
		if isMonthDayRecapture(text, span, amount, monthDays) {
			continue
		}
		exprs = append(exprs, Expression{
			Text:     text[m[0]:m[1]],
			Kind:     KindDuration,
			Span:     span,
			Duration: &DurationAttrs{Amount: amount, Unit: UnitDays},
		})
	}

	sort.SliceStable(exprs, func(i, j int) bool {
		return exprs[i].Span.Start < exprs[j].Span.Start
	})
	return exprs
}

// monthDayMatch records a month-day date match for the duration exclusion check.
type monthDayMatch struct {
	day  int
	span Span
}

// isMonthDayRecapture reports whether a duration-day candidate with the given
// amount is actually the day field of a month-day match that overlaps it or
// ends within monthDayProximityRunes runes before it.
func isMonthDayRecapture(text string, dur Span, amount int, monthDays []monthDayMatch) bool {
	for _, md := range monthDays {
		if md.day != amount {
			continue
		}
		if md.span.End > dur.Start && md.span.Start < dur.End {
			return true // overlapping: the duration digits are the date's day field
		}
		if md.span.End <= dur.Start && utf8.RuneCountInString(text[md.span.End:dur.Start]) <= monthDayProximityRunes {
			return true
		}
	}
	return false
}

func overlapsAny(s Span, spans []Span) bool {
	for _, other := range spans {
		if s.Start < other.End && other.Start < s.End {
			return true
		}
	}
	return false
}

// koreanWeekdayIndex maps a Korean day-name syllable to a Sunday-based index.
func koreanWeekdayIndex(name string) int {
	switch name {
	case "일":
		return 0
	case "월":
		return 1
	case "화":
		return 2
	case "수":
		return 3
	case "목":
		return 4
	case "금":
		return 5
	case "토":
		return 6
	}
	return 0
}

func parseMeridiem(token string) Meridiem {
	switch strings.ToUpper(token) {
	case "오전", "AM":
		return MeridiemAM
	case "오후", "PM":
		return MeridiemPM
	}
	return MeridiemNone
}

// atoi converts a digits-only substring captured by one of the patterns.
// The patterns guarantee the input is numeric, so failures cannot occur.
func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

package timeparse

import (
	"testing"
)

func TestExtract_AbsoluteDates(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantYear  int
		wantMonth int
		wantDay   int
	}{
		{"dot separated", "2025.10.20 회의", 2025, 10, 20},
		{"slash separated", "2025/10/20 회의", 2025, 10, 20},
		{"dash separated", "2025-10-20 회의", 2025, 10, 20},
		{"korean particles", "2025년 10월 20일 회의", 2025, 10, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exprs := Extract(tt.text)
			expr := findKind(exprs, KindAbsoluteDate)
			if expr == nil {
				t.Fatalf("Extract(%q) = %v, want an absolute date", tt.text, exprs)
			}
			if expr.Date.Year == nil || *expr.Date.Year != tt.wantYear {
				t.Errorf("year = %v, want %d", expr.Date.Year, tt.wantYear)
			}
			if expr.Date.Month != tt.wantMonth || expr.Date.Day != tt.wantDay {
				t.Errorf("month/day = %d/%d, want %d/%d",
					expr.Date.Month, expr.Date.Day, tt.wantMonth, tt.wantDay)
			}
		})
	}
}

func TestExtract_MonthDayWithoutYear(t *testing.T) {
	exprs := Extract("10월 20일에 만나요")
	expr := findKind(exprs, KindAbsoluteDate)
	if expr == nil {
		t.Fatalf("no absolute date in %v", exprs)
	}
	if expr.Date.Year != nil {
		t.Errorf("year = %d, want nil", *expr.Date.Year)
	}
	if expr.Date.Month != 10 || expr.Date.Day != 20 {
		t.Errorf("month/day = %d/%d, want 10/20", expr.Date.Month, expr.Date.Day)
	}
}

func TestExtract_Range(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		month    int
		startDay int
		endDay   int
	}{
		{"tilde", "10/20~22 워크숍", 10, 20, 22},
		{"dash", "10/20-22 워크숍", 10, 20, 22},
		{"korean", "10월 20일~22일 워크숍", 10, 20, 22},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exprs := Extract(tt.text)
			expr := findKind(exprs, KindRange)
			if expr == nil {
				t.Fatalf("Extract(%q) = %v, want a range", tt.text, exprs)
			}
			if expr.Range.Month != tt.month || expr.Range.StartDay != tt.startDay || expr.Range.EndDay != tt.endDay {
				t.Errorf("range = %+v, want %d/%d~%d", expr.Range, tt.month, tt.startDay, tt.endDay)
			}
			// The range's internal day tokens must not be re-captured as a
			// standalone month-day date.
			if md := findKind(exprs, KindAbsoluteDate); md != nil {
				t.Errorf("unexpected absolute date %v alongside range", md)
			}
		})
	}
}

func TestExtract_Weekday(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		weekday    int
		weekOffset int
	}{
		{"bare", "금요일에 보자", 5, 0},
		{"this week", "이번주 수요일", 3, 0},
		{"next week", "다음주 금요일", 5, 1},
		{"next with space", "다음 주 월요일", 1, 1},
		{"sunday", "일요일 브런치", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exprs := Extract(tt.text)
			expr := findKind(exprs, KindWeekday)
			if expr == nil {
				t.Fatalf("Extract(%q) = %v, want a weekday", tt.text, exprs)
			}
			if expr.Weekday.Weekday != tt.weekday || expr.Weekday.WeekOffset != tt.weekOffset {
				t.Errorf("weekday = %+v, want day=%d offset=%d", expr.Weekday, tt.weekday, tt.weekOffset)
			}
		})
	}
}

func TestExtract_RelativeDates(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		offsetDays int
	}{
		{"today", "오늘 저녁 약속", 0},
		{"tomorrow", "내일 회의", 1},
		{"day after tomorrow", "모레 출장", 2},
		{"two days after", "글피 마감", 3},
		{"yesterday", "어제 받은 메일", -1},
		{"two days ago", "그저께 통화", -2},
		{"numeric days", "3일 후에 만나요", 3},
		{"numeric weeks", "2주 뒤 발표", 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exprs := Extract(tt.text)
			expr := findKind(exprs, KindRelativeDate)
			if expr == nil {
				t.Fatalf("Extract(%q) = %v, want a relative date", tt.text, exprs)
			}
			if expr.Relative.OffsetDays != tt.offsetDays {
				t.Errorf("offsetDays = %d, want %d", expr.Relative.OffsetDays, tt.offsetDays)
			}
		})
	}
}

func TestExtract_TimeOfDay(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		hour     int
		minute   int
		meridiem Meridiem
	}{
		{"korean pm", "오후 3시 회의", 3, 0, MeridiemPM},
		{"korean am", "오전 9시 30분 출발", 9, 30, MeridiemAM},
		{"colon", "14:30 회의", 14, 30, MeridiemNone},
		{"english pm", "PM 2:00 call", 2, 0, MeridiemPM},
		{"hour only", "6시에 저녁", 6, 0, MeridiemNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exprs := Extract(tt.text)
			expr := findKind(exprs, KindTimeOfDay)
			if expr == nil {
				t.Fatalf("Extract(%q) = %v, want a time of day", tt.text, exprs)
			}
			if expr.Clock.Hour != tt.hour || expr.Clock.Minute != tt.minute || expr.Clock.Meridiem != tt.meridiem {
				t.Errorf("clock = %+v, want %d:%02d meridiem=%d", expr.Clock, tt.hour, tt.minute, tt.meridiem)
			}
		})
	}
}

func TestExtract_Durations(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		amount int
		unit   DurationUnit
	}{
		{"hours", "2시간 동안 회의", 2, UnitHours},
		{"hours without suffix", "3시간 미팅", 3, UnitHours},
		{"days", "3일 동안 여행", 3, UnitDays},
		{"days short suffix", "2일간 출장", 2, UnitDays},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exprs := Extract(tt.text)
			expr := findKind(exprs, KindDuration)
			if expr == nil {
				t.Fatalf("Extract(%q) = %v, want a duration", tt.text, exprs)
			}
			if expr.Duration.Amount != tt.amount || expr.Duration.Unit != tt.unit {
				t.Errorf("duration = %+v, want amount=%d unit=%d", expr.Duration, tt.amount, tt.unit)
			}
		})
	}
}

func TestExtract_DayOfMonthIsNotADuration(t *testing.T) {
	// "11월 30일" is the 30th of November, never a 30-day duration, even
	// when a duration suffix follows the shared day digits.
	for _, text := range []string{"11월 30일", "11월 30일 동안 진행"} {
		exprs := Extract(text)
		if expr := findKind(exprs, KindDuration); expr != nil {
			t.Errorf("Extract(%q) produced duration %v", text, expr)
		}
		if findKind(exprs, KindAbsoluteDate) == nil {
			t.Errorf("Extract(%q) lost the month-day date: %v", text, exprs)
		}
	}

	// A duration far from any date keeps working.
	exprs := Extract("10월 5일 출발해서 3일 동안 여행")
	expr := findKind(exprs, KindDuration)
	if expr == nil || expr.Duration.Amount != 3 {
		t.Fatalf("want 3-day duration, got %v", exprs)
	}
}

func TestExtract_OrderedBySpan(t *testing.T) {
	exprs := Extract("다음주 금요일 오후 3시부터 2시간 동안")
	if len(exprs) < 3 {
		t.Fatalf("want at least 3 expressions, got %v", exprs)
	}
	for i := 1; i < len(exprs); i++ {
		if exprs[i].Span.Start < exprs[i-1].Span.Start {
			t.Errorf("expressions out of order: %v before %v", exprs[i-1], exprs[i])
		}
	}
	for _, expr := range exprs {
		if expr.Span.Start >= expr.Span.End {
			t.Errorf("empty span on %v", expr)
		}
	}
}

func TestExtract_Scenarios(t *testing.T) {
	// End-to-end scenario: one absolute date plus one time of day.
	exprs := Extract("2025.10.20 14:30 회의")
	date := findKind(exprs, KindAbsoluteDate)
	clock := findKind(exprs, KindTimeOfDay)
	if date == nil || clock == nil {
		t.Fatalf("Extract() = %v, want date and time", exprs)
	}
	if *date.Date.Year != 2025 || date.Date.Month != 10 || date.Date.Day != 20 {
		t.Errorf("date = %+v", date.Date)
	}
	if clock.Clock.Hour != 14 || clock.Clock.Minute != 30 {
		t.Errorf("clock = %+v", clock.Clock)
	}
}

func TestExtract_NoMatch(t *testing.T) {
	for _, text := range []string{"", "특별한 내용 없음", "hello world"} {
		if exprs := Extract(text); len(exprs) != 0 {
			t.Errorf("Extract(%q) = %v, want none", text, exprs)
		}
	}
}

func findKind(exprs []Expression, kind Kind) *Expression {
	for i := range exprs {
		if exprs[i].Kind == kind {
			return &exprs[i]
		}
	}
	return nil
}

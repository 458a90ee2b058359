package apiv1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nasunstar/Agent-App-sub000/server/timeparse"
	"github.com/nasunstar/Agent-App-sub000/server/timezone"
)

type extractRequest struct {
	Text string `json:"text"`
}

type expressionDTO struct {
	Text      string `json:"text"`
	Kind      string `json:"kind"`
	SpanStart int    `json:"spanStart"`
	SpanEnd   int    `json:"spanEnd"`

	Date     *timeparse.DateAttrs     `json:"date,omitempty"`
	Range    *timeparse.RangeAttrs    `json:"range,omitempty"`
	Weekday  *timeparse.WeekdayAttrs  `json:"weekday,omitempty"`
	Relative *timeparse.RelativeAttrs `json:"relative,omitempty"`
	Clock    *timeparse.ClockAttrs    `json:"clock,omitempty"`
	Duration *timeparse.DurationAttrs `json:"duration,omitempty"`
}

type extractResponse struct {
	Expressions []expressionDTO `json:"expressions"`
}

func (s *APIV1Service) handleExtract(c echo.Context) error {
	var req extractRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}

	exprs := timeparse.Extract(req.Text)
	resp := extractResponse{Expressions: make([]expressionDTO, 0, len(exprs))}
	for _, expr := range exprs {
		resp.Expressions = append(resp.Expressions, expressionDTO{
			Text:      expr.Text,
			Kind:      expr.Kind.String(),
			SpanStart: expr.Span.Start,
			SpanEnd:   expr.Span.End,
			Date:      expr.Date,
			Range:     expr.Range,
			Weekday:   expr.Weekday,
			Relative:  expr.Relative,
			Clock:     expr.Clock,
			Duration:  expr.Duration,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

type resolveRequest struct {
	Text            string `json:"text"`
	ReferenceMillis int64  `json:"referenceMillis"`
	Timezone        string `json:"timezone"`
}

type windowDTO struct {
	StartMillis int64   `json:"startMillis"`
	EndMillis   int64   `json:"endMillis"`
	AllDay      bool    `json:"allDay"`
	SourceText  string  `json:"sourceText"`
	Confidence  float64 `json:"confidence"`
}

type resolveResponse struct {
	Windows []windowDTO `json:"windows"`
}

func (s *APIV1Service) handleResolve(c echo.Context) error {
	var req resolveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}
	loc, err := s.requestLocation(req.Timezone)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid timezone")
	}

	exprs := timeparse.Extract(req.Text)
	windows := timeparse.Resolve(req.Text, exprs, timeparse.NewContext(req.ReferenceMillis, loc))
	resp := resolveResponse{Windows: make([]windowDTO, 0, len(windows))}
	for _, w := range windows {
		resp.Windows = append(resp.Windows, windowDTO{
			StartMillis: w.StartMillis(),
			EndMillis:   w.EndMillis(),
			AllDay:      w.AllDay,
			SourceText:  w.SourceText,
			Confidence:  w.Confidence,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

type correctRequest struct {
	Fields          map[string]any `json:"fields"`
	ReferenceMillis int64          `json:"referenceMillis"`
	Timezone        string         `json:"timezone"`
}

type correctResponse struct {
	Fields map[string]any `json:"fields"`
}

func (s *APIV1Service) handleCorrect(c echo.Context) error {
	var req correctRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	loc, err := s.requestLocation(req.Timezone)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid timezone")
	}

	corrected := timeparse.CorrectPastDate(req.Fields, req.ReferenceMillis, loc)
	return c.JSON(http.StatusOK, correctResponse{Fields: corrected})
}

// requestLocation resolves the request zone, falling back to the profile zone.
func (s *APIV1Service) requestLocation(tz string) (*time.Location, error) {
	if tz == "" {
		tz = s.Profile.Timezone
	}
	if tz == "" {
		tz = timezone.TimezoneAsiaSeoul
	}
	return timezone.ParseTimezone(tz)
}

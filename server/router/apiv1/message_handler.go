package apiv1

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "github.com/nasunstar/Agent-App-sub000/internal/errors"
	"github.com/nasunstar/Agent-App-sub000/server/internal/observability"
	"github.com/nasunstar/Agent-App-sub000/server/service/event"
	"github.com/nasunstar/Agent-App-sub000/store"
)

type ingestMessageRequest struct {
	Text            string `json:"text"`
	Source          string `json:"source"`
	ReferenceMillis int64  `json:"referenceMillis"`
	Timezone        string `json:"timezone"`
}

type eventDTO struct {
	ID          int32   `json:"id"`
	UID         string  `json:"uid"`
	Title       string  `json:"title"`
	Location    string  `json:"location,omitempty"`
	StartMillis int64   `json:"startMillis"`
	EndMillis   *int64  `json:"endMillis,omitempty"`
	AllDay      bool    `json:"allDay"`
	Timezone    string  `json:"timezone"`
	Source      string  `json:"source"`
	Confidence  float64 `json:"confidence"`
	NeedsReview bool    `json:"needsReview"`
}

type ingestMessageResponse struct {
	Event     *eventDTO `json:"event,omitempty"`
	Path      string    `json:"path"`
	ModelUsed bool      `json:"modelUsed"`
}

func (s *APIV1Service) handleIngestMessage(c echo.Context) error {
	var req ingestMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if req.ReferenceMillis == 0 {
		// Receipt time defaults to now; the parser itself never reads the
		// clock, so the default lives at the API edge.
		req.ReferenceMillis = time.Now().UnixMilli()
	}

	// The model fallback can hold an upstream connection for seconds, so
	// in-flight ingests are bounded.
	if err := s.ingestSemaphore.Acquire(c.Request().Context(), 1); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "server busy")
	}
	defer s.ingestSemaphore.Release(1)

	rc := observability.NewRequestContext(slog.Default(), req.Source, 0)
	ctx := observability.WithRequestContext(c.Request().Context(), rc)
	rc.Debug("ingest request received",
		slog.Int(observability.LogFieldMessageLen, len(req.Text)))

	result, err := s.EventService.IngestMessage(ctx, &event.IngestRequest{
		Text:            req.Text,
		Source:          req.Source,
		ReferenceMillis: req.ReferenceMillis,
		Timezone:        req.Timezone,
	})
	if err != nil {
		return httpError(err)
	}
	s.statsCollector.RecordIngest(result.Path, result.ModelUsed,
		result.Event != nil && result.Event.NeedsReview)

	resp := ingestMessageResponse{Path: result.Path, ModelUsed: result.ModelUsed}
	if result.Event != nil {
		resp.Event = toEventDTO(result.Event)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *APIV1Service) handleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.statsCollector.GetSnapshot())
}

type listEventsResponse struct {
	Events []*eventDTO `json:"events"`
}

func (s *APIV1Service) handleListEvents(c echo.Context) error {
	normal := store.Normal
	find := &store.FindEvent{RowStatus: &normal}

	if raw := c.QueryParam("needsReview"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid needsReview")
		}
		find.NeedsReview = &v
	}
	if raw := c.QueryParam("from"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid from")
		}
		find.StartMs = &v
	}
	if raw := c.QueryParam("to"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid to")
		}
		find.EndMs = &v
	}
	if raw := c.QueryParam("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		find.Limit = &v
	}

	list, err := s.EventService.ListEvents(c.Request().Context(), find)
	if err != nil {
		return httpError(err)
	}
	resp := listEventsResponse{Events: make([]*eventDTO, 0, len(list))}
	for _, e := range list {
		resp.Events = append(resp.Events, toEventDTO(e))
	}
	return c.JSON(http.StatusOK, resp)
}

type reviewEventRequest struct {
	Approve bool `json:"approve"`
}

func (s *APIV1Service) handleReviewEvent(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}
	var req reviewEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := s.EventService.ReviewEvent(c.Request().Context(), int32(id), req.Approve); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func toEventDTO(e *store.Event) *eventDTO {
	return &eventDTO{
		ID:          e.ID,
		UID:         e.UID,
		Title:       e.Title,
		Location:    e.Location,
		StartMillis: e.StartMs,
		EndMillis:   e.EndMs,
		AllDay:      e.AllDay,
		Timezone:    e.Timezone,
		Source:      e.Source,
		Confidence:  e.Confidence,
		NeedsReview: e.NeedsReview,
	}
}

// httpError maps service error codes to HTTP status codes.
func httpError(err error) *echo.HTTPError {
	switch apperrors.GetCodeFromError(err, apperrors.ErrCodeStoreFailed) {
	case apperrors.ErrCodeInvalidArgument:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case apperrors.ErrCodeRateLimitExceeded:
		return echo.NewHTTPError(http.StatusTooManyRequests, err.Error())
	case apperrors.ErrCodeLLMUnavailable, apperrors.ErrCodeTimeout:
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

package apiv1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"

	"github.com/nasunstar/Agent-App-sub000/internal/profile"
	"github.com/nasunstar/Agent-App-sub000/server/middleware"
	"github.com/nasunstar/Agent-App-sub000/server/service/event"
	"github.com/nasunstar/Agent-App-sub000/server/stats"
	"github.com/nasunstar/Agent-App-sub000/store"
)

type fakeEventService struct {
	ingestResult *event.IngestResult
	ingestErr    error
	events       []*store.Event
	reviewed     []int32
}

func (f *fakeEventService) IngestMessage(_ context.Context, _ *event.IngestRequest) (*event.IngestResult, error) {
	return f.ingestResult, f.ingestErr
}

func (f *fakeEventService) ListEvents(_ context.Context, _ *store.FindEvent) ([]*store.Event, error) {
	return f.events, nil
}

func (f *fakeEventService) ReviewEvent(_ context.Context, id int32, _ bool) error {
	f.reviewed = append(f.reviewed, id)
	return nil
}

func newTestService(svc event.Service) *APIV1Service {
	return &APIV1Service{
		Profile:         &profile.Profile{Timezone: "Asia/Seoul"},
		EventService:    svc,
		ingestLimiter:   middleware.NewIngestRateLimiter(100, 100),
		ingestSemaphore: semaphore.NewWeighted(2),
		statsCollector:  stats.NewCollector(),
	}
}

func doRequest(t *testing.T, s *APIV1Service, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	s.Register(e)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandleExtract(t *testing.T) {
	s := newTestService(&fakeEventService{})
	rec := doRequest(t, s, http.MethodPost, "/api/v1/time/extract",
		`{"text":"다음주 금요일 오후 3시에 보자"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Expressions []struct {
			Text string `json:"text"`
			Kind string `json:"kind"`
		} `json:"expressions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Expressions, 2)
	assert.Equal(t, "Weekday", resp.Expressions[0].Kind)
	assert.Equal(t, "TimeOfDay", resp.Expressions[1].Kind)
}

func TestHandleExtractEmptyText(t *testing.T) {
	s := newTestService(&fakeEventService{})
	rec := doRequest(t, s, http.MethodPost, "/api/v1/time/extract", `{"text":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleResolve(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	// Monday 2025-10-13 09:00 KST.
	ref := time.Date(2025, 10, 13, 9, 0, 0, 0, loc).UnixMilli()

	s := newTestService(&fakeEventService{})
	body, err := json.Marshal(map[string]any{
		"text":            "다음주 금요일 오후 3시",
		"referenceMillis": ref,
	})
	require.NoError(t, err)
	rec := doRequest(t, s, http.MethodPost, "/api/v1/time/resolve", string(body))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Windows []struct {
			StartMillis int64   `json:"startMillis"`
			EndMillis   int64   `json:"endMillis"`
			AllDay      bool    `json:"allDay"`
			Confidence  float64 `json:"confidence"`
		} `json:"windows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Windows, 1)
	w := resp.Windows[0]
	assert.Equal(t, time.Date(2025, 10, 24, 15, 0, 0, 0, loc).UnixMilli(), w.StartMillis)
	assert.Equal(t, time.Hour.Milliseconds(), w.EndMillis-w.StartMillis)
	assert.False(t, w.AllDay)
	assert.Equal(t, 1.0, w.Confidence)
}

func TestHandleResolveInvalidTimezone(t *testing.T) {
	s := newTestService(&fakeEventService{})
	rec := doRequest(t, s, http.MethodPost, "/api/v1/time/resolve",
		`{"text":"내일","timezone":"Nowhere/Nothing"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCorrect(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	ref := time.Date(2025, 10, 20, 9, 0, 0, 0, loc).UnixMilli()
	past := time.Date(2025, 1, 15, 18, 0, 0, 0, loc).UnixMilli()

	s := newTestService(&fakeEventService{})
	body, err := json.Marshal(map[string]any{
		"fields":          map[string]any{"startAt": past, "title": "회의"},
		"referenceMillis": ref,
	})
	require.NoError(t, err)
	rec := doRequest(t, s, http.MethodPost, "/api/v1/time/correct", string(body))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Fields map[string]any `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	want := time.Date(2026, 1, 15, 18, 0, 0, 0, loc).UnixMilli()
	assert.Equal(t, float64(want), resp.Fields["startAt"])
	assert.Equal(t, "회의", resp.Fields["title"])
}

func TestHandleIngestMessage(t *testing.T) {
	endMs := int64(1760000000000)
	fake := &fakeEventService{ingestResult: &event.IngestResult{
		Event: &store.Event{
			ID:         1,
			UID:        "abc",
			Title:      "미팅",
			StartMs:    endMs - 3600000,
			EndMs:      &endMs,
			Timezone:   "Asia/Seoul",
			Source:     event.SourceGmail,
			Confidence: 1.0,
		},
		Path: event.PathRule,
	}}
	s := newTestService(fake)
	rec := doRequest(t, s, http.MethodPost, "/api/v1/messages",
		`{"text":"2025.10.25 14:30 미팅","source":"gmail"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Event *struct {
			UID        string  `json:"uid"`
			Confidence float64 `json:"confidence"`
		} `json:"event"`
		Path string `json:"path"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Event)
	assert.Equal(t, "abc", resp.Event.UID)
	assert.Equal(t, 1.0, resp.Event.Confidence)
	assert.Equal(t, event.PathRule, resp.Path)
}

func TestHandleIngestMessageRateLimited(t *testing.T) {
	fake := &fakeEventService{ingestResult: &event.IngestResult{Path: event.PathNone}}
	s := newTestService(fake)
	s.ingestLimiter = middleware.NewIngestRateLimiter(1, 1)

	first := doRequest(t, s, http.MethodPost, "/api/v1/messages", `{"text":"hi","source":"sms"}`)
	require.Equal(t, http.StatusOK, first.Code)
	second := doRequest(t, s, http.MethodPost, "/api/v1/messages", `{"text":"hi","source":"sms"}`)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestHandleStats(t *testing.T) {
	fake := &fakeEventService{ingestResult: &event.IngestResult{Path: event.PathNone}}
	s := newTestService(fake)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/messages", `{"text":"hi","source":"sms"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap struct {
		TotalMessages int64 `json:"totalMessages"`
		NoEvent       int64 `json:"noEvent"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, int64(1), snap.TotalMessages)
	assert.Equal(t, int64(1), snap.NoEvent)
}

func TestHandleReviewEvent(t *testing.T) {
	fake := &fakeEventService{}
	s := newTestService(fake)
	rec := doRequest(t, s, http.MethodPost, "/api/v1/events/42/review", `{"approve":true}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []int32{42}, fake.reviewed)
}

package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nasunstar/Agent-App-sub000/internal/profile"
	"github.com/nasunstar/Agent-App-sub000/plugin/ai"
	apperrors "github.com/nasunstar/Agent-App-sub000/internal/errors"
	"github.com/nasunstar/Agent-App-sub000/store"
)

type fakeStore struct {
	created []*store.Event
	updated []*store.UpdateEvent
	events  []*store.Event
	fail    bool
}

func (f *fakeStore) CreateEvent(_ context.Context, create *store.Event) (*store.Event, error) {
	if f.fail {
		return nil, errors.New("disk full")
	}
	create.ID = int32(len(f.created) + 1)
	f.created = append(f.created, create)
	return create, nil
}

func (f *fakeStore) ListEvents(_ context.Context, _ *store.FindEvent) ([]*store.Event, error) {
	if f.fail {
		return nil, errors.New("disk full")
	}
	return f.events, nil
}

func (f *fakeStore) UpdateEvent(_ context.Context, update *store.UpdateEvent) error {
	if f.fail {
		return errors.New("disk full")
	}
	f.updated = append(f.updated, update)
	return nil
}

type stubExtractor struct {
	extraction *ai.Extraction
	err        error
	calls      int
}

func (s *stubExtractor) ExtractEvent(_ context.Context, _ string, _ int64) (*ai.Extraction, error) {
	s.calls++
	return s.extraction, s.err
}

func seoul(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	return loc
}

func testProfile() *profile.Profile {
	return &profile.Profile{ReviewThreshold: 0.5}
}

// Reference: Monday 2025-10-20 09:30 KST.
func refMillis(t *testing.T) int64 {
	return time.Date(2025, 10, 20, 9, 30, 0, 0, seoul(t)).UnixMilli()
}

func TestIngestMessageRulePath(t *testing.T) {
	st := &fakeStore{}
	ext := &stubExtractor{}
	svc := NewService(st, ext, testProfile())

	result, err := svc.IngestMessage(context.Background(), &IngestRequest{
		Text:            "미팅 안내\n2025.10.25 14:30 회의실 A",
		Source:          SourceGmail,
		ReferenceMillis: refMillis(t),
	})
	require.NoError(t, err)
	require.NotNil(t, result.Event)
	assert.Equal(t, PathRule, result.Path)
	assert.False(t, result.ModelUsed)
	assert.Zero(t, ext.calls, "rule path must not call the model")

	event := result.Event
	loc := seoul(t)
	assert.Equal(t, time.Date(2025, 10, 25, 14, 30, 0, 0, loc).UnixMilli(), event.StartMs)
	require.NotNil(t, event.EndMs)
	assert.Equal(t, time.Hour.Milliseconds(), *event.EndMs-event.StartMs)
	assert.Equal(t, 1.0, event.Confidence)
	assert.False(t, event.NeedsReview)
	assert.Equal(t, "미팅 안내", event.Title)
	assert.Equal(t, SourceGmail, event.Source)
	assert.Equal(t, "Asia/Seoul", event.Timezone)
	assert.NotEmpty(t, event.UID)
}

func TestIngestMessageNoTimesNoExtractor(t *testing.T) {
	st := &fakeStore{}
	svc := NewService(st, nil, testProfile())

	result, err := svc.IngestMessage(context.Background(), &IngestRequest{
		Text:            "그냥 안부 인사였습니다",
		Source:          SourceSMS,
		ReferenceMillis: refMillis(t),
	})
	require.NoError(t, err)
	assert.Nil(t, result.Event)
	assert.Equal(t, PathNone, result.Path)
	assert.Empty(t, st.created)
}

func TestIngestMessageModelFallback(t *testing.T) {
	loc := seoul(t)
	ref := refMillis(t)
	// Model reports a January date with no year context; correction must
	// roll it into next year because January < October.
	modelStart := time.Date(2025, 1, 15, 18, 0, 0, 0, loc).UnixMilli()

	st := &fakeStore{}
	ext := &stubExtractor{extraction: &ai.Extraction{
		Type:       "calendar_event",
		Confidence: 0.8,
		ExtractedData: map[string]any{
			"title":   "신년회",
			"startAt": float64(modelStart),
		},
	}}
	svc := NewService(st, ext, testProfile())

	result, err := svc.IngestMessage(context.Background(), &IngestRequest{
		Text:            "신년회는 1월 중순쯤 저녁에 하시죠",
		Source:          SourceNotification,
		ReferenceMillis: ref,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Event)
	assert.Equal(t, PathModel, result.Path)
	assert.True(t, result.ModelUsed)

	event := result.Event
	assert.Equal(t, time.Date(2026, 1, 15, 18, 0, 0, 0, loc).UnixMilli(), event.StartMs)
	require.NotNil(t, event.EndMs)
	assert.Equal(t, time.Hour.Milliseconds(), *event.EndMs-event.StartMs)
	assert.Equal(t, 0.8, event.Confidence)
	assert.False(t, event.NeedsReview)
	assert.Equal(t, "신년회", event.Title)
}

func TestIngestMessageModelBelowThresholdFlagged(t *testing.T) {
	st := &fakeStore{}
	ext := &stubExtractor{extraction: &ai.Extraction{
		Type:       "calendar_event",
		Confidence: 0.3,
		ExtractedData: map[string]any{
			"startAt": float64(refMillis(t) + time.Hour.Milliseconds()),
		},
	}}
	svc := NewService(st, ext, testProfile())

	result, err := svc.IngestMessage(context.Background(), &IngestRequest{
		Text:            "나중에 한번 보자",
		Source:          SourceSMS,
		ReferenceMillis: refMillis(t),
	})
	require.NoError(t, err)
	require.NotNil(t, result.Event)
	assert.True(t, result.Event.NeedsReview)
	assert.Equal(t, 0.3, result.Event.Confidence)
}

func TestIngestMessageModelFailureDegrades(t *testing.T) {
	st := &fakeStore{}
	ext := &stubExtractor{err: errors.New("upstream 503")}
	svc := NewService(st, ext, testProfile())

	result, err := svc.IngestMessage(context.Background(), &IngestRequest{
		Text:            "시간 관련 내용 없음",
		Source:          SourceOCR,
		ReferenceMillis: refMillis(t),
	})
	require.NoError(t, err, "a model outage must not fail ingestion")
	assert.Nil(t, result.Event)
	assert.Equal(t, PathNone, result.Path)
	assert.True(t, result.ModelUsed)
}

func TestIngestMessageModelNone(t *testing.T) {
	st := &fakeStore{}
	ext := &stubExtractor{extraction: &ai.Extraction{Type: ai.ExtractionTypeNone, Confidence: 0.9}}
	svc := NewService(st, ext, testProfile())

	result, err := svc.IngestMessage(context.Background(), &IngestRequest{
		Text:            "광고 메시지입니다",
		Source:          SourceSMS,
		ReferenceMillis: refMillis(t),
	})
	require.NoError(t, err)
	assert.Nil(t, result.Event)
	assert.Empty(t, st.created)
}

func TestIngestMessageValidation(t *testing.T) {
	svc := NewService(&fakeStore{}, nil, testProfile())

	_, err := svc.IngestMessage(context.Background(), &IngestRequest{Text: "   "})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidArgument))

	_, err = svc.IngestMessage(context.Background(), &IngestRequest{
		Text:   "내일 3시",
		Source: "carrier_pigeon",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidArgument))

	_, err = svc.IngestMessage(context.Background(), &IngestRequest{
		Text:     "내일 3시",
		Source:   SourceSMS,
		Timezone: "Mars/Olympus",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidArgument))
}

func TestIngestMessageStoreFailure(t *testing.T) {
	st := &fakeStore{fail: true}
	svc := NewService(st, nil, testProfile())

	_, err := svc.IngestMessage(context.Background(), &IngestRequest{
		Text:            "2025.10.25 14:30 미팅",
		Source:          SourceGmail,
		ReferenceMillis: refMillis(t),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeStoreFailed))
}

func TestReviewEvent(t *testing.T) {
	st := &fakeStore{}
	svc := NewService(st, nil, testProfile())

	require.NoError(t, svc.ReviewEvent(context.Background(), 7, true))
	require.Len(t, st.updated, 1)
	require.NotNil(t, st.updated[0].NeedsReview)
	assert.False(t, *st.updated[0].NeedsReview)

	require.NoError(t, svc.ReviewEvent(context.Background(), 7, false))
	require.Len(t, st.updated, 2)
	require.NotNil(t, st.updated[1].RowStatus)
	assert.Equal(t, store.Archived, *st.updated[1].RowStatus)
}

func TestDeriveTitle(t *testing.T) {
	assert.Equal(t, "첫 줄", deriveTitle("첫 줄\n둘째 줄"))
	assert.Equal(t, "한 줄", deriveTitle("  한 줄  "))

	long := ""
	for i := 0; i < DefaultTitleMaxRunes+10; i++ {
		long += "가"
	}
	assert.Equal(t, DefaultTitleMaxRunes, len([]rune(deriveTitle(long))))
}

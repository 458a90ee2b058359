// Package event provides the message ingestion pipeline: rule-based time
// extraction and resolution, an optional LLM fallback for messages the rules
// cannot anchor, past-date correction of model output, and confidence-gated
// persistence.
package event

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nasunstar/Agent-App-sub000/internal/profile"
	"github.com/nasunstar/Agent-App-sub000/plugin/ai"
	apperrors "github.com/nasunstar/Agent-App-sub000/internal/errors"
	"github.com/nasunstar/Agent-App-sub000/server/internal/observability"
	"github.com/nasunstar/Agent-App-sub000/server/timeparse"
	"github.com/nasunstar/Agent-App-sub000/server/timezone"
	"github.com/nasunstar/Agent-App-sub000/store"
)

// Store is the interface for store operations needed by the event service.
type Store interface {
	CreateEvent(ctx context.Context, create *store.Event) (*store.Event, error)
	ListEvents(ctx context.Context, find *store.FindEvent) ([]*store.Event, error)
	UpdateEvent(ctx context.Context, update *store.UpdateEvent) error
}

// Extractor is the model fallback used when rules find no anchor.
type Extractor interface {
	ExtractEvent(ctx context.Context, text string, referenceMillis int64) (*ai.Extraction, error)
}

type service struct {
	store     Store
	extractor Extractor // nil when AI is disabled
	threshold float64
}

// NewService creates a new event service. extractor may be nil, in which
// case ingestion is rule-only.
func NewService(store Store, extractor Extractor, prof *profile.Profile) Service {
	threshold := prof.ReviewThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = profile.DefaultReviewThreshold
	}
	return &service{
		store:     store,
		extractor: extractor,
		threshold: threshold,
	}
}

func (s *service) IngestMessage(ctx context.Context, req *IngestRequest) (*IngestResult, error) {
	if req == nil || strings.TrimSpace(req.Text) == "" {
		return nil, apperrors.InvalidArgument("message text is empty")
	}
	if req.Source != "" && !ValidSource(req.Source) {
		return nil, apperrors.InvalidArgument("unknown message source: " + req.Source)
	}

	tz := req.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := timezone.ParseTimezone(tz)
	if err != nil {
		return nil, apperrors.InvalidArgument("invalid timezone: " + tz)
	}

	// Rule path first. It is pure, fast, and when it anchors a date the
	// result is authoritative.
	exprs := timeparse.Extract(req.Text)
	windows := timeparse.Resolve(req.Text, exprs, timeparse.NewContext(req.ReferenceMillis, loc))
	if len(windows) > 0 {
		w := windows[0]
		endMs := w.EndMillis()
		created, err := s.persist(ctx, req, &store.Event{
			Title:       deriveTitle(req.Text),
			StartMs:     w.StartMillis(),
			EndMs:       &endMs,
			AllDay:      w.AllDay,
			Timezone:    tz,
			Confidence:  w.Confidence,
			NeedsReview: false,
		})
		if err != nil {
			return nil, err
		}
		return &IngestResult{Event: created, Path: PathRule}, nil
	}

	if s.extractor == nil {
		return &IngestResult{Path: PathNone}, nil
	}

	// Model fallback. Failures here degrade to "no event found" rather
	// than failing the ingestion.
	llmCtx, cancel := context.WithTimeout(ctx, LLMTimeout)
	defer cancel()
	extraction, err := s.extractor.ExtractEvent(llmCtx, req.Text, req.ReferenceMillis)
	if err != nil {
		slog.Warn("model extraction failed, degrading to rule-only result",
			"source", req.Source,
			"error", err)
		return &IngestResult{Path: PathNone, ModelUsed: true}, nil
	}
	if extraction == nil || extraction.Type == ai.ExtractionTypeNone {
		return &IngestResult{Path: PathNone, ModelUsed: true}, nil
	}

	fields := timeparse.CorrectPastDate(extraction.ExtractedData, req.ReferenceMillis, loc)
	startMs, ok := millisField(fields, timeparse.FieldStartAt)
	if !ok {
		slog.Warn("model extraction carried no usable start time", "source", req.Source)
		return &IngestResult{Path: PathNone, ModelUsed: true}, nil
	}
	var endMs *int64
	if v, ok := millisField(fields, timeparse.FieldEndAt); ok {
		endMs = &v
	}
	if endMs == nil {
		v := startMs + time.Hour.Milliseconds()
		endMs = &v
	}

	created, err := s.persist(ctx, req, &store.Event{
		Title:       modelTitle(fields, req.Text),
		Location:    stringField(fields, "location"),
		StartMs:     startMs,
		EndMs:       endMs,
		Timezone:    tz,
		Confidence:  extraction.Confidence,
		NeedsReview: extraction.Confidence < s.threshold,
	})
	if err != nil {
		return nil, err
	}
	return &IngestResult{Event: created, Path: PathModel, ModelUsed: true}, nil
}

func (s *service) persist(ctx context.Context, req *IngestRequest, event *store.Event) (*store.Event, error) {
	event.UID = uuid.NewString()
	event.CreatorID = req.CreatorID
	event.Source = req.Source
	event.SourceText = req.Text

	created, err := s.store.CreateEvent(ctx, event)
	if err != nil {
		return nil, apperrors.StoreFailed("failed to persist event", err)
	}
	if rc, ok := observability.FromContext(ctx); ok {
		rc.Info("event ingested",
			slog.String("uid", created.UID),
			slog.Int64("start_ms", created.StartMs),
			slog.Bool("all_day", created.AllDay),
			slog.Float64(observability.LogFieldConfidence, created.Confidence),
			slog.Bool("needs_review", created.NeedsReview),
			slog.Int64(observability.LogFieldDuration, rc.DurationMs()))
	} else {
		slog.Info("event ingested",
			"uid", created.UID,
			"source", created.Source,
			"start_ms", created.StartMs,
			"all_day", created.AllDay,
			"confidence", created.Confidence,
			"needs_review", created.NeedsReview)
	}
	return created, nil
}

func (s *service) ListEvents(ctx context.Context, find *store.FindEvent) ([]*store.Event, error) {
	list, err := s.store.ListEvents(ctx, find)
	if err != nil {
		return nil, apperrors.StoreFailed("failed to list events", err)
	}
	return list, nil
}

func (s *service) ReviewEvent(ctx context.Context, id int32, approve bool) error {
	update := &store.UpdateEvent{ID: id}
	if approve {
		needsReview := false
		update.NeedsReview = &needsReview
	} else {
		archived := store.Archived
		update.RowStatus = &archived
	}
	if err := s.store.UpdateEvent(ctx, update); err != nil {
		return apperrors.StoreFailed("failed to review event", err)
	}
	return nil
}

// deriveTitle takes the first line of the message, truncated.
func deriveTitle(text string) string {
	line := strings.TrimSpace(text)
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	runes := []rune(line)
	if len(runes) > DefaultTitleMaxRunes {
		return string(runes[:DefaultTitleMaxRunes])
	}
	return line
}

func modelTitle(fields map[string]any, text string) string {
	if t := stringField(fields, "title"); t != "" {
		return t
	}
	return deriveTitle(text)
}

func stringField(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// millisField coerces the loose JSON types a model response can carry.
func millisField(fields map[string]any, key string) (int64, bool) {
	switch v := fields[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	}
	return 0, false
}

// Package apiv1 exposes the time resolution engine and the ingestion
// pipeline over a JSON HTTP API.
package apiv1

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"

	"github.com/nasunstar/Agent-App-sub000/internal/profile"
	"github.com/nasunstar/Agent-App-sub000/plugin/ai"
	"github.com/nasunstar/Agent-App-sub000/server/middleware"
	"github.com/nasunstar/Agent-App-sub000/server/service/event"
	"github.com/nasunstar/Agent-App-sub000/server/stats"
	"github.com/nasunstar/Agent-App-sub000/server/timezone"
	"github.com/nasunstar/Agent-App-sub000/store"
)

const (
	// maxConcurrentIngests bounds in-flight ingestion requests. The model
	// fallback holds a connection to the LLM provider for seconds at a
	// time, so unbounded concurrency would pile up under burst load.
	maxConcurrentIngests = 8

	ingestRatePerSecond = 10
	ingestBurst         = 20
)

// APIV1Service wires handlers to the event service and the pure parsing
// functions.
type APIV1Service struct {
	Profile      *profile.Profile
	Store        *store.Store
	EventService event.Service

	ingestLimiter   *middleware.IngestRateLimiter
	ingestSemaphore *semaphore.Weighted
	statsCollector  *stats.Collector
}

// NewAPIV1Service builds the API service. The LLM extractor is attached only
// when the profile enables AI and its config validates; otherwise ingestion
// runs rule-only.
func NewAPIV1Service(prof *profile.Profile, st *store.Store) *APIV1Service {
	var extractor event.Extractor
	if prof.IsAIEnabled() {
		cfg := ai.NewConfigFromProfile(prof)
		if err := cfg.Validate(); err != nil {
			slog.Warn("AI config invalid, running rule-only", "error", err)
		} else if llm, err := ai.NewLLMService(cfg); err != nil {
			slog.Warn("LLM service init failed, running rule-only", "error", err)
		} else {
			loc := timezone.MustParseTimezone(prof.Timezone)
			extractor = ai.NewEventExtractor(ai.NewBreakerService(llm), loc)
		}
	}

	return &APIV1Service{
		Profile:         prof,
		Store:           st,
		EventService:    event.NewService(st, extractor, prof),
		ingestLimiter:   middleware.NewIngestRateLimiter(ingestRatePerSecond, ingestBurst),
		ingestSemaphore: semaphore.NewWeighted(maxConcurrentIngests),
		statsCollector:  stats.NewCollector(),
	}
}

// Register attaches all v1 routes to the echo server.
func (s *APIV1Service) Register(e *echo.Echo) {
	g := e.Group("/api/v1")

	// Pure parsing endpoints. No store, no model, no side effects.
	g.POST("/time/extract", s.handleExtract)
	g.POST("/time/resolve", s.handleResolve)
	g.POST("/time/correct", s.handleCorrect)

	// Ingestion and event management.
	g.POST("/messages", s.handleIngestMessage, s.ingestLimiter.Middleware())
	g.GET("/events", s.handleListEvents)
	g.POST("/events/:id/review", s.handleReviewEvent)
	g.GET("/stats", s.handleStats)
}

package event

import (
	"context"

	"github.com/nasunstar/Agent-App-sub000/store"
)

// Service defines the business logic interface for message ingestion and
// event management. Handlers and the CLI call this instead of touching the
// store directly.
type Service interface {
	// IngestMessage runs the full pipeline on a raw message: rule-based
	// extraction and resolution, optional model fallback, past-date
	// correction, confidence reconciliation, and persistence.
	IngestMessage(ctx context.Context, req *IngestRequest) (*IngestResult, error)

	// ListEvents returns stored events matching the filter.
	ListEvents(ctx context.Context, find *store.FindEvent) ([]*store.Event, error)

	// ReviewEvent resolves a needs-review event: approve keeps it and
	// clears the flag, reject archives it.
	ReviewEvent(ctx context.Context, id int32, approve bool) error
}

// IngestRequest is a raw message to extract an event from.
type IngestRequest struct {
	// Text is the message body to parse.
	Text string
	// Source is the ingestion channel (gmail, sms, ...).
	Source string
	// ReferenceMillis is the moment the message was received, epoch ms.
	ReferenceMillis int64
	// Timezone is the IANA zone to resolve in; empty means DefaultTimezone.
	Timezone string
	// CreatorID attributes the event to a user; zero is allowed.
	CreatorID int32
}

// IngestResult reports what the pipeline produced.
type IngestResult struct {
	// Event is the persisted event, nil when nothing time-like was found.
	Event *store.Event
	// Path names which extraction produced the times: "rule", "model",
	// or "none".
	Path string
	// ModelUsed is true when the LLM fallback ran (even if rejected).
	ModelUsed bool
}

// Path values for IngestResult.
const (
	PathRule  = "rule"
	PathModel = "model"
	PathNone  = "none"
)

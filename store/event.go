package store

import "context"

// Event is the object representing a resolved calendar event extracted from
// an ingested message.
type Event struct {
	ID        int32
	UID       string
	CreatorID int32
	RowStatus RowStatus
	CreatedTs int64
	UpdatedTs int64

	Title    string
	Location string

	// StartMs/EndMs are epoch milliseconds; EndMs is nil for start-only
	// callers (the resolver normally always produces an end).
	StartMs int64
	EndMs   *int64
	AllDay  bool
	// Timezone is the IANA zone the event was resolved in.
	Timezone string

	// Source is the ingestion channel (gmail, sms, ocr, notification,
	// call_record).
	Source string
	// SourceText is the raw message text, retained for audit.
	SourceText string
	// Confidence is the score of whichever path produced the times: 1.0
	// for the rule-based resolver, the model's own score otherwise.
	Confidence float64
	// NeedsReview marks events below the confidence gate for the manual
	// review queue.
	NeedsReview bool
}

// FindEvent is the find condition for events.
type FindEvent struct {
	ID        *int32
	UID       *string
	CreatorID *int32
	RowStatus *RowStatus

	// Time range filters (overlap semantics).
	StartMs *int64
	EndMs   *int64

	NeedsReview *bool

	Limit  *int
	Offset *int
}

// UpdateEvent is the update request for an event.
type UpdateEvent struct {
	ID int32

	RowStatus   *RowStatus
	Title       *string
	Location    *string
	StartMs     *int64
	EndMs       *int64
	AllDay      *bool
	Timezone    *string
	Confidence  *float64
	NeedsReview *bool
}

// DeleteEvent is the delete request for an event.
type DeleteEvent struct {
	ID int32
}

// CreateEvent creates a new event.
func (s *Store) CreateEvent(ctx context.Context, create *Event) (*Event, error) {
	return s.driver.CreateEvent(ctx, create)
}

// ListEvents lists events with filter.
func (s *Store) ListEvents(ctx context.Context, find *FindEvent) ([]*Event, error) {
	return s.driver.ListEvents(ctx, find)
}

// GetEvent gets a single event, or nil if not found.
func (s *Store) GetEvent(ctx context.Context, find *FindEvent) (*Event, error) {
	list, err := s.driver.ListEvents(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateEvent updates an event.
func (s *Store) UpdateEvent(ctx context.Context, update *UpdateEvent) error {
	return s.driver.UpdateEvent(ctx, update)
}

// DeleteEvent deletes an event.
func (s *Store) DeleteEvent(ctx context.Context, delete *DeleteEvent) error {
	return s.driver.DeleteEvent(ctx, delete)
}

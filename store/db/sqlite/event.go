package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/nasunstar/Agent-App-sub000/store"
)

func (d *DB) CreateEvent(ctx context.Context, create *store.Event) (*store.Event, error) {
	fields := []string{"uid", "creator_id", "row_status", "title", "location", "start_ms", "end_ms", "all_day", "timezone", "source", "source_text", "confidence", "needs_review"}
	placeholder := []string{"?", "?", "?", "?", "?", "?", "?", "?", "?", "?", "?", "?", "?"}
	if create.RowStatus == "" {
		create.RowStatus = store.Normal
	}
	var endMs sql.NullInt64
	if create.EndMs != nil {
		endMs = sql.NullInt64{Int64: *create.EndMs, Valid: true}
	}
	args := []any{
		create.UID, create.CreatorID, create.RowStatus, create.Title, create.Location,
		create.StartMs, endMs, boolToInt(create.AllDay), create.Timezone,
		create.Source, create.SourceText, create.Confidence, boolToInt(create.NeedsReview),
	}

	stmt := "INSERT INTO event (" + strings.Join(fields, ", ") + ") VALUES (" + strings.Join(placeholder, ", ") + ") RETURNING id, created_ts, updated_ts"
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create event")
	}
	return create, nil
}

func (d *DB) ListEvents(ctx context.Context, find *store.FindEvent) ([]*store.Event, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "uid = ?"), append(args, *v)
	}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "creator_id = ?"), append(args, *v)
	}
	if v := find.RowStatus; v != nil {
		where, args = append(where, "row_status = ?"), append(args, v.String())
	}
	if v := find.NeedsReview; v != nil {
		where, args = append(where, "needs_review = ?"), append(args, boolToInt(*v))
	}
	// Overlap filter: event intersects [StartMs, EndMs).
	if v := find.StartMs; v != nil {
		where, args = append(where, "(end_ms IS NULL OR end_ms > ?)"), append(args, *v)
	}
	if v := find.EndMs; v != nil {
		where, args = append(where, "start_ms < ?"), append(args, *v)
	}

	query := "SELECT id, uid, creator_id, created_ts, updated_ts, row_status, title, location, start_ms, end_ms, all_day, timezone, source, source_text, confidence, needs_review FROM event WHERE " + strings.Join(where, " AND ") + " ORDER BY start_ms ASC, id ASC"
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list events")
	}
	defer rows.Close()

	list := make([]*store.Event, 0)
	for rows.Next() {
		var event store.Event
		var endMs sql.NullInt64
		var allDay, needsReview int
		if err := rows.Scan(
			&event.ID,
			&event.UID,
			&event.CreatorID,
			&event.CreatedTs,
			&event.UpdatedTs,
			&event.RowStatus,
			&event.Title,
			&event.Location,
			&event.StartMs,
			&endMs,
			&allDay,
			&event.Timezone,
			&event.Source,
			&event.SourceText,
			&event.Confidence,
			&needsReview,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan event")
		}
		if endMs.Valid {
			event.EndMs = &endMs.Int64
		}
		event.AllDay = allDay != 0
		event.NeedsReview = needsReview != 0
		list = append(list, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows error")
	}
	return list, nil
}

func (d *DB) UpdateEvent(ctx context.Context, update *store.UpdateEvent) error {
	set, args := []string{}, []any{}

	if v := update.RowStatus; v != nil {
		set, args = append(set, "row_status = ?"), append(args, v.String())
	}
	if v := update.Title; v != nil {
		set, args = append(set, "title = ?"), append(args, *v)
	}
	if v := update.Location; v != nil {
		set, args = append(set, "location = ?"), append(args, *v)
	}
	if v := update.StartMs; v != nil {
		set, args = append(set, "start_ms = ?"), append(args, *v)
	}
	if v := update.EndMs; v != nil {
		set, args = append(set, "end_ms = ?"), append(args, *v)
	}
	if v := update.AllDay; v != nil {
		set, args = append(set, "all_day = ?"), append(args, boolToInt(*v))
	}
	if v := update.Timezone; v != nil {
		set, args = append(set, "timezone = ?"), append(args, *v)
	}
	if v := update.Confidence; v != nil {
		set, args = append(set, "confidence = ?"), append(args, *v)
	}
	if v := update.NeedsReview; v != nil {
		set, args = append(set, "needs_review = ?"), append(args, boolToInt(*v))
	}
	if len(set) == 0 {
		return nil
	}
	set = append(set, "updated_ts = strftime('%s', 'now')")
	args = append(args, update.ID)

	stmt := "UPDATE event SET " + strings.Join(set, ", ") + " WHERE id = ?"
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrap(err, "failed to update event")
	}
	return nil
}

func (d *DB) DeleteEvent(ctx context.Context, delete *store.DeleteEvent) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM event WHERE id = ?", delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete event")
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"timecircuits/internal/models"

	"github.com/google/uuid"
)

// sqliteTimestamp is how occurred_at is written and compared.
const sqliteTimestamp = "2006-01-02 15:04:05"

const selectEvents = `SELECT id, occurred_at, type, message, meta FROM events`

// EventSQLite is the append-only operator log.
type EventSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewEventSQLite(db *sql.DB) *EventSQLite {
	return &EventSQLite{db: db, now: time.Now}
}

// Append inserts e. A missing EventID or OccurredAt is filled in, and
// metadata that cannot be encoded is dropped.
func (r *EventSQLite) Append(ctx context.Context, e models.Event) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = r.now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (id, occurred_at, type, message, meta) VALUES (?, ?, ?, ?, ?)`,
		e.EventID,
		e.OccurredAt.UTC().Format(sqliteTimestamp),
		strings.ToUpper(strings.TrimSpace(e.Type)),
		e.Description,
		encodeMeta(e.Metadata),
	)
	if err != nil {
		return fmt.Errorf("append %s event: %w", e.Type, err)
	}
	return nil
}

// List returns events within [from, to] matching typ, oldest first. Zero
// bounds and an empty type do not filter.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, typ string) ([]models.Event, error) {
	q, args := eventQuery(from, to, typ)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	out := make([]models.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func eventQuery(from, to time.Time, typ string) (string, []any) {
	var (
		where []string
		args  []any
	)
	if !from.IsZero() {
		where = append(where, "occurred_at >= ?")
		args = append(args, from.UTC().Format(sqliteTimestamp))
	}
	if !to.IsZero() {
		where = append(where, "occurred_at <= ?")
		args = append(args, to.UTC().Format(sqliteTimestamp))
	}
	if typ = strings.ToUpper(strings.TrimSpace(typ)); typ != "" {
		where = append(where, "type = ?")
		args = append(args, typ)
	}

	q := selectEvents
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	return q + " ORDER BY occurred_at ASC", args
}

func scanEvent(rows *sql.Rows) (models.Event, error) {
	var (
		ev   models.Event
		meta sql.NullString
	)
	if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.Type, &ev.Description, &meta); err != nil {
		return models.Event{}, err
	}
	ev.OccurredAt = ev.OccurredAt.UTC()
	ev.Metadata = decodeMeta(meta)
	return ev, nil
}

func encodeMeta(v any) *string {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

// decodeMeta returns the decoded JSON, or the raw text when it is not JSON.
func decodeMeta(s sql.NullString) any {
	if !s.Valid || s.String == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(s.String), &v); err != nil {
		return s.String
	}
	return v
}

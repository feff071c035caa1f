package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"timecircuits/internal/models"
)

// PrefsSQLite keeps small user settings as JSON documents keyed by name.
type PrefsSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewPrefsSQLite(db *sql.DB) *PrefsSQLite {
	return &PrefsSQLite{db: db, now: time.Now}
}

const (
	prefReminder  = "reminder"
	prefAlarm     = "alarm"
	prefCountdown = "countdown"

	upsertPrefSQL = `
		INSERT INTO preferences (name, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at
	`

	selectPrefSQL = `SELECT value FROM preferences WHERE name=?`
)

// countdownRecord stores the countdown with millisecond resolution.
type countdownRecord struct {
	DurationMS int64     `json:"duration_ms"`
	StartedAt  time.Time `json:"started_at"`
}

func (r *PrefsSQLite) save(ctx context.Context, name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if _, err := r.db.ExecContext(ctx, upsertPrefSQL, name, string(b), r.now().UTC()); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

func (r *PrefsSQLite) load(ctx context.Context, name string, dst any) error {
	var raw string
	if err := r.db.QueryRowContext(ctx, selectPrefSQL, name).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("load %s: %w", name, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (r *PrefsSQLite) SaveReminder(ctx context.Context, rem models.Reminder) error {
	return r.save(ctx, prefReminder, rem)
}

func (r *PrefsSQLite) LoadReminder(ctx context.Context) (models.Reminder, error) {
	var rem models.Reminder
	err := r.load(ctx, prefReminder, &rem)
	return rem, err
}

func (r *PrefsSQLite) SaveAlarm(ctx context.Context, a models.Alarm) error {
	return r.save(ctx, prefAlarm, a)
}

func (r *PrefsSQLite) LoadAlarm(ctx context.Context) (models.Alarm, error) {
	var a models.Alarm
	err := r.load(ctx, prefAlarm, &a)
	return a, err
}

func (r *PrefsSQLite) SaveCountdown(ctx context.Context, c models.CountdownTimer) error {
	return r.save(ctx, prefCountdown, countdownRecord{
		DurationMS: c.Duration.Milliseconds(),
		StartedAt:  c.StartedAt.UTC(),
	})
}

func (r *PrefsSQLite) LoadCountdown(ctx context.Context) (models.CountdownTimer, error) {
	var rec countdownRecord
	if err := r.load(ctx, prefCountdown, &rec); err != nil {
		return models.CountdownTimer{}, err
	}
	return models.CountdownTimer{
		Duration:  time.Duration(rec.DurationMS) * time.Millisecond,
		StartedAt: rec.StartedAt,
	}, nil
}

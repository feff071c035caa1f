package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"timecircuits/internal/models"
)

// ClockSQLite stores one row per display. Only the date/time fields are
// persisted; presentation flags are runtime state.
type ClockSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewClockSQLite(db *sql.DB) *ClockSQLite {
	return &ClockSQLite{db: db, now: time.Now}
}

const (
	upsertClockSQL = `
		INSERT INTO clock_values (display, year, month, day, hour, minute, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(display) DO UPDATE SET
			year=excluded.year,
			month=excluded.month,
			day=excluded.day,
			hour=excluded.hour,
			minute=excluded.minute,
			updated_at=excluded.updated_at
	`

	selectClockSQL = `
		SELECT display, year, month, day, hour, minute
		FROM clock_values WHERE display=?
	`
)

// Save upserts the effective date/time of v.
func (r *ClockSQLite) Save(ctx context.Context, v models.ClockValue) error {
	if v.ID == "" {
		return errors.New("clock value without display id")
	}
	_, err := r.db.ExecContext(ctx, upsertClockSQL,
		string(v.ID),
		v.EffectiveYear(),
		v.Month,
		v.Day,
		v.Hour,
		v.Minute,
		r.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save %s clock: %w", v.ID, err)
	}
	return nil
}

// Load returns the stored value for id, or ErrNotFound.
func (r *ClockSQLite) Load(ctx context.Context, id models.DisplayID) (models.ClockValue, error) {
	v := models.NewClockValue(id)
	var display string
	err := r.db.QueryRowContext(ctx, selectClockSQL, string(id)).Scan(
		&display,
		&v.Year,
		&v.Month,
		&v.Day,
		&v.Hour,
		&v.Minute,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ClockValue{}, ErrNotFound
		}
		return models.ClockValue{}, fmt.Errorf("load %s clock: %w", id, err)
	}
	// rows written by older builds or by hand may be out of range
	v.SetMonth(v.Month)
	v.SetDay(v.Day)
	if v.SetHour(v.Hour) != nil {
		v.Hour = 0
	}
	if v.SetMinute(v.Minute) != nil {
		v.Minute = 0
	}
	return v, nil
}

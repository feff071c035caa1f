package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"timecircuits/internal/models"
)

type OffsetSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewOffsetSQLite(db *sql.DB) *OffsetSQLite {
	return &OffsetSQLite{db: db, now: time.Now}
}

const (
	presentOffsetRowID = 1

	upsertOffsetSQL = `
		INSERT INTO present_offset (id, minutes, ahead, year_offset, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			minutes=excluded.minutes,
			ahead=excluded.ahead,
			year_offset=excluded.year_offset,
			updated_at=excluded.updated_at
	`

	selectOffsetSQL = `
		SELECT minutes, ahead, year_offset
		FROM present_offset WHERE id=?
	`
)

// Save updates or inserts the single present_offset row.
func (r *OffsetSQLite) Save(ctx context.Context, o models.PresentOffset) error {
	_, err := r.db.ExecContext(ctx, upsertOffsetSQL,
		presentOffsetRowID,
		int64(o.Offset.Minutes),
		o.Offset.Ahead,
		o.YearOffset,
		r.now().UTC(),
	)
	return err
}

// Load returns the stored offsets, or ErrNotFound before the first Save.
func (r *OffsetSQLite) Load(ctx context.Context) (models.PresentOffset, error) {
	var (
		o       models.PresentOffset
		minutes int64
	)
	err := r.db.QueryRowContext(ctx, selectOffsetSQL, presentOffsetRowID).Scan(
		&minutes,
		&o.Offset.Ahead,
		&o.YearOffset,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PresentOffset{}, ErrNotFound
		}
		return models.PresentOffset{}, err
	}
	if minutes < 0 {
		minutes = 0
	}
	o.Offset.Minutes = uint64(minutes)
	return o, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"timecircuits/internal/models"
)

// ErrNotFound is returned by Load methods when nothing has been stored yet.
var ErrNotFound = errors.New("not found")

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.Operator, error)
}

type ClockRepo interface {
	Save(ctx context.Context, v models.ClockValue) error
	Load(ctx context.Context, id models.DisplayID) (models.ClockValue, error)
}

type OffsetRepo interface {
	Save(ctx context.Context, o models.PresentOffset) error
	Load(ctx context.Context) (models.PresentOffset, error)
}

type PrefsRepo interface {
	SaveReminder(ctx context.Context, r models.Reminder) error
	LoadReminder(ctx context.Context) (models.Reminder, error)
	SaveAlarm(ctx context.Context, a models.Alarm) error
	LoadAlarm(ctx context.Context) (models.Alarm, error)
	SaveCountdown(ctx context.Context, c models.CountdownTimer) error
	LoadCountdown(ctx context.Context) (models.CountdownTimer, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.Event) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.Event, error)
}

type Repository struct {
	Clock  ClockRepo
	Offset OffsetRepo
	Prefs  PrefsRepo
	Events EventRepo
	Auth   Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Clock:  NewClockSQLite(db),
		Offset: NewOffsetSQLite(db),
		Prefs:  NewPrefsSQLite(db),
		Events: NewEventSQLite(db),
		Auth:   NewOperatorRepository(db),
	}
}

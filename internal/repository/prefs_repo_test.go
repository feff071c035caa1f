package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"timecircuits/internal/models"
)

func newPrefsRepo(t *testing.T) (*PrefsSQLite, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	})
	repo := NewPrefsSQLite(db)
	repo.now = func() time.Time { return fixedNow }
	return repo, mock
}

func TestPrefsSQLite_SaveReminder_WritesJSON(t *testing.T) {
	repo, mock := newPrefsRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO preferences")).
		WithArgs("reminder", `{"month":10,"day":21,"hour":16,"minute":29}`, fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.SaveReminder(context.Background(), models.Reminder{Month: 10, Day: 21, Hour: 16, Minute: 29}); err != nil {
		t.Fatalf("SaveReminder() error = %v", err)
	}
}

func TestPrefsSQLite_LoadAlarm(t *testing.T) {
	repo, mock := newPrefsRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectPrefSQL)).
		WithArgs("alarm").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).
			AddRow(`{"hour":6,"minute":30,"weekday":1,"set":true,"enabled":true}`))

	got, err := repo.LoadAlarm(context.Background())
	if err != nil {
		t.Fatalf("LoadAlarm() error = %v", err)
	}
	want := models.Alarm{Hour: 6, Minute: 30, Weekday: models.AlarmWorkdays, Set: true, Enabled: true}
	if got != want {
		t.Fatalf("LoadAlarm() = %+v, want %+v", got, want)
	}
}

func TestPrefsSQLite_LoadMissingIsNotFound(t *testing.T) {
	repo, mock := newPrefsRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectPrefSQL)).
		WithArgs("reminder").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.LoadReminder(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadReminder() error = %v, want ErrNotFound", err)
	}
}

func TestPrefsSQLite_LoadCorruptJSON(t *testing.T) {
	repo, mock := newPrefsRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectPrefSQL)).
		WithArgs("alarm").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`{not json`))

	_, err := repo.LoadAlarm(context.Background())
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadAlarm() error = %v, want decode error", err)
	}
}

func TestPrefsSQLite_CountdownMillisecondRoundTrip(t *testing.T) {
	repo, mock := newPrefsRepo(t)

	started := time.Date(2024, 3, 1, 11, 59, 0, 0, time.UTC)
	stored := `{"duration_ms":300000,"started_at":"2024-03-01T11:59:00Z"}`

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO preferences")).
		WithArgs("countdown", stored, fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectPrefSQL)).
		WithArgs("countdown").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(stored))

	in := models.CountdownTimer{Duration: 5 * time.Minute, StartedAt: started}
	if err := repo.SaveCountdown(context.Background(), in); err != nil {
		t.Fatalf("SaveCountdown() error = %v", err)
	}
	out, err := repo.LoadCountdown(context.Background())
	if err != nil {
		t.Fatalf("LoadCountdown() error = %v", err)
	}
	if out.Duration != in.Duration || !out.StartedAt.Equal(in.StartedAt) {
		t.Fatalf("LoadCountdown() = %+v, want %+v", out, in)
	}
}

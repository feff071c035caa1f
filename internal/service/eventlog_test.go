package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timecircuits/internal/models"
)

// listRecorder captures the query EventLogService hands to the repository.
type listRecorder struct {
	from, to time.Time
	typ      string
	calls    int

	events []models.Event
	err    error
}

func (r *listRecorder) Append(context.Context, models.Event) error { return nil }

func (r *listRecorder) List(_ context.Context, from, to time.Time, typ string) ([]models.Event, error) {
	r.calls++
	r.from, r.to, r.typ = from, to, typ
	return r.events, r.err
}

func TestParseFilter(t *testing.T) {
	plus2 := time.FixedZone("UTC+2", 2*3600)

	cases := []struct {
		name    string
		in      LogFilter
		want    logQuery
		wantErr error
	}{
		{name: "empty filter", in: LogFilter{}},
		{
			name: "bounds move to UTC",
			in: LogFilter{
				From: time.Date(2025, 9, 10, 10, 0, 0, 0, plus2),
				To:   time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC),
			},
			want: logQuery{
				from: time.Date(2025, 9, 10, 8, 0, 0, 0, time.UTC),
				to:   time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC),
			},
		},
		{name: "type is canonicalized", in: LogFilter{Type: " ntp_sync "}, want: logQuery{typ: models.EventNTPSync}},
		{
			name:    "inverted range",
			in:      LogFilter{From: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), To: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
			wantErr: ErrInvalidTimeRange,
		},
		{name: "unknown type", in: LogFilter{Type: "mode_change"}, wantErr: ErrUnknownEventType},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseFilter(tc.in)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.want.from.Equal(got.from), "from %v", got.from)
			assert.True(t, tc.want.to.Equal(got.to), "to %v", got.to)
			assert.Equal(t, tc.want.typ, got.typ)
		})
	}
}

func TestEventLogService_List(t *testing.T) {
	repo := &listRecorder{events: []models.Event{{EventID: "1", Type: models.EventRTCGlitch}}}
	svc := NewEventLogService(repo)

	out, err := svc.List(context.Background(), LogFilter{
		From: time.Date(2025, 10, 1, 10, 0, 0, 0, time.FixedZone("UTC+5", 5*3600)),
		Type: "rtc_glitch",
	})

	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, time.Date(2025, 10, 1, 5, 0, 0, 0, time.UTC), repo.from)
	assert.True(t, repo.to.IsZero())
	assert.Equal(t, models.EventRTCGlitch, repo.typ)
}

func TestEventLogService_List_RejectsBeforeQuerying(t *testing.T) {
	repo := &listRecorder{}
	svc := NewEventLogService(repo)

	_, err := svc.List(context.Background(), LogFilter{Type: "START"})

	assert.ErrorIs(t, err, ErrUnknownEventType)
	assert.Zero(t, repo.calls)
}

func TestEventLogService_List_PropagatesRepoError(t *testing.T) {
	boom := errors.New("db down")
	svc := NewEventLogService(&listRecorder{err: boom})

	_, err := svc.List(context.Background(), LogFilter{})

	assert.ErrorIs(t, err, boom)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"timecircuits/internal/models"
	"timecircuits/internal/repository"
)

var (
	ErrInvalidTimeRange = errors.New("invalid time range: from must be <= to")
	ErrUnknownEventType = errors.New("unknown event type")
)

var eventTypes = map[string]bool{
	models.EventTravel:    true,
	models.EventReturn:    true,
	models.EventKeypad:    true,
	models.EventRTCGlitch: true,
	models.EventNTPSync:   true,
	models.EventRollover:  true,
	models.EventRestart:   true,
	models.EventPower:     true,
	models.EventAlarm:     true,
	models.EventReminder:  true,
	models.EventCountdown: true,
}

// EventLogService reads the operator log written by the control loop.
type EventLogService struct {
	events repository.EventRepo
}

func NewEventLogService(events repository.EventRepo) *EventLogService {
	return &EventLogService{events: events}
}

// logQuery is a LogFilter after normalization.
type logQuery struct {
	from, to time.Time
	typ      string
}

func utcOrZero(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// parseFilter moves both bounds to UTC and canonicalizes the type, which
// must be empty or one of the recorded event types.
func parseFilter(f LogFilter) (logQuery, error) {
	q := logQuery{
		from: utcOrZero(f.From),
		to:   utcOrZero(f.To),
		typ:  strings.ToUpper(strings.TrimSpace(f.Type)),
	}
	if !q.from.IsZero() && !q.to.IsZero() && q.from.After(q.to) {
		return logQuery{}, ErrInvalidTimeRange
	}
	if q.typ != "" && !eventTypes[q.typ] {
		return logQuery{}, fmt.Errorf("%w: %q", ErrUnknownEventType, f.Type)
	}
	return q, nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.Event, error) {
	q, err := parseFilter(f)
	if err != nil {
		return nil, err
	}
	return s.events.List(ctx, q.from, q.to, q.typ)
}

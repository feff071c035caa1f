package service

import (
	"context"

	"github.com/google/uuid"

	"timecircuits/internal/models"
)

// Persistence is fire-and-forget: failures are logged and in-memory state
// stays authoritative.

func (c *core) saveClock(ctx context.Context, v models.ClockValue) {
	if err := c.Clocks.Save(ctx, v); err != nil {
		c.Log.Warnw("persist_clock_failed", "display", v.ID, "err", err)
	}
}

func (c *core) saveOffsets(ctx context.Context) {
	if err := c.Offsets.Save(ctx, c.st.PresentOffset()); err != nil {
		c.Log.Warnw("persist_offset_failed", "err", err)
	}
	c.Metrics.OffsetMinutes.Set(float64(signedMinutes(c.st.Offset)))
}

func (c *core) saveReminder(ctx context.Context) {
	if err := c.Prefs.SaveReminder(ctx, c.st.Reminder); err != nil {
		c.Log.Warnw("persist_reminder_failed", "err", err)
	}
}

func (c *core) saveAlarm(ctx context.Context) {
	if err := c.Prefs.SaveAlarm(ctx, c.st.Alarm); err != nil {
		c.Log.Warnw("persist_alarm_failed", "err", err)
	}
}

func (c *core) saveCountdown(ctx context.Context) {
	if err := c.Prefs.SaveCountdown(ctx, c.st.Countdown); err != nil {
		c.Log.Warnw("persist_countdown_failed", "err", err)
	}
}

// record appends an operator log entry.
func (c *core) record(ctx context.Context, typ, description string, meta map[string]any) {
	ev := models.Event{
		EventID:     uuid.NewString(),
		OccurredAt:  c.Clock.Now().UTC(),
		Type:        typ,
		Description: description,
	}
	if meta != nil {
		ev.Metadata = meta
	}
	if err := c.Events.Append(ctx, ev); err != nil {
		c.Log.Warnw("event_append_failed", "type", typ, "err", err)
	}
}

func signedMinutes(o models.VirtualOffset) int64 {
	if o.Ahead {
		return int64(o.Minutes)
	}
	return -int64(o.Minutes)
}

package models

import "time"

// Event types recorded in the operator log.
const (
	EventTravel    = "TRAVEL"
	EventReturn    = "RETURN"
	EventKeypad    = "KEYPAD"
	EventRTCGlitch = "RTC_GLITCH"
	EventNTPSync   = "NTP_SYNC"
	EventRollover  = "ROLLOVER"
	EventRestart   = "RESTART"
	EventPower     = "POWER"
	EventAlarm     = "ALARM"
	EventReminder  = "REMINDER"
	EventCountdown = "COUNTDOWN"
)

// Event is a single log entry.
type Event struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // TRAVEL | RETURN | KEYPAD | ...
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}

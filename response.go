package timecircuits

import "time"

// DisplayState is one display row as seen by API clients.
type DisplayState struct {
	ID         string `json:"id"`
	On         bool   `json:"on"`
	Text       string `json:"text"`    // rendered row, date or message
	Message    bool   `json:"message"` // Text is a free-form message
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Day        int    `json:"day"`
	Hour       int    `json:"hour"`
	Minute     int    `json:"minute"`
	Colon      bool   `json:"colon"`
	Brightness int    `json:"brightness"` // 0..15
	NightMode  bool   `json:"night_mode"`
	LampTest   bool   `json:"lamp_test,omitempty"`
}

// PanelSnapshot is the whole panel, published by the control loop after
// every iteration.
type PanelSnapshot struct {
	Destination    DisplayState `json:"destination"`
	Present        DisplayState `json:"present"`
	Departed       DisplayState `json:"departed"`
	Phase          string       `json:"phase"`          // IDLE | PHASE1..PHASE5 | COMMITTING | TRAVELED
	Powered        bool         `json:"powered"`
	OffsetMinutes  int64        `json:"offset_minutes"` // negative when the present lags true time
	PendingEntry   string       `json:"pending_entry,omitempty"`
	RotationPaused bool         `json:"rotation_paused"`
	Alarm          string       `json:"alarm"`
	Reminder       string       `json:"reminder"`
	Countdown      string       `json:"countdown"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

package service

import (
	"context"
	"errors"
	"fmt"

	"timecircuits/internal/models"
)

// ErrInvalidSequence rejects keypad input the panel cannot accept.
var ErrInvalidSequence = errors.New("invalid key sequence: digits 0-9 only, at most 12")

// ErrInvalidAlarm rejects an alarm outside 00:00-23:59 or with an unknown
// weekday mode.
var ErrInvalidAlarm = errors.New("invalid alarm: hour 0-23, minute 0-59, weekday daily|workdays|weekends|sun..sat")

// inputSink is what PanelService needs from the controller.
type inputSink interface {
	Submit(ctx context.Context, ev InputEvent) error
}

type PanelService struct {
	sink inputSink
}

func NewPanelService(sink inputSink) *PanelService {
	return &PanelService{sink: sink}
}

func (s *PanelService) Submit(ctx context.Context, ev InputEvent) error {
	if (ev.Kind == KeyPressed || ev.Kind == KeyReleased || ev.Kind == KeyHeld) && !isDigit(ev.Key) {
		return fmt.Errorf("key %q: %w", ev.Key, ErrInvalidSequence)
	}
	return s.sink.Submit(ctx, ev)
}

// EnterSequence validates digits before queueing anything, so a bad sequence
// leaves the entry buffer untouched.
func (s *PanelService) EnterSequence(ctx context.Context, digits string, enter bool) error {
	if len(digits) > maxEntryDigits {
		return ErrInvalidSequence
	}
	for i := 0; i < len(digits); i++ {
		if !isDigit(digits[i]) {
			return ErrInvalidSequence
		}
	}
	for i := 0; i < len(digits); i++ {
		if err := s.sink.Submit(ctx, InputEvent{Kind: KeyPressed, Key: digits[i]}); err != nil {
			return err
		}
		if err := s.sink.Submit(ctx, InputEvent{Kind: KeyReleased, Key: digits[i]}); err != nil {
			return err
		}
	}
	if enter {
		return s.sink.Submit(ctx, InputEvent{Kind: EnterPressed})
	}
	return nil
}

func (s *PanelService) Travel(ctx context.Context, long bool) error {
	return s.sink.Submit(ctx, InputEvent{Kind: TravelRequested, Long: long})
}

func (s *PanelService) Return(ctx context.Context) error {
	return s.sink.Submit(ctx, InputEvent{Kind: ReturnRequested})
}

// SetAlarm queues a full alarm setting, including the weekday mode the keypad
// cannot reach.
func (s *PanelService) SetAlarm(ctx context.Context, hour, minute int, weekday string, enabled bool) error {
	mode, ok := models.ParseAlarmWeekday(weekday)
	if !ok || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return ErrInvalidAlarm
	}
	return s.sink.Submit(ctx, InputEvent{Kind: AlarmConfigured, Alarm: models.Alarm{
		Hour: hour, Minute: minute, Weekday: mode, Set: true, Enabled: enabled,
	}})
}

func (s *PanelService) SetPower(ctx context.Context, on bool) error {
	kind := PowerOff
	if on {
		kind = PowerOn
	}
	return s.sink.Submit(ctx, InputEvent{Kind: kind})
}

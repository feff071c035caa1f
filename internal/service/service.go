package service

import (
	"context"
	"time"

	"timecircuits"
	"timecircuits/internal/config"
	"timecircuits/internal/models"
	"timecircuits/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Panel forwards operator input into the control loop.
type Panel interface {
	Submit(ctx context.Context, ev InputEvent) error
	// EnterSequence presses and releases each digit, then ENTER when enter
	// is set.
	EnterSequence(ctx context.Context, digits string, enter bool) error
	Travel(ctx context.Context, long bool) error
	Return(ctx context.Context) error
	SetPower(ctx context.Context, on bool) error
	SetAlarm(ctx context.Context, hour, minute int, weekday string, enabled bool) error
}

// Monitoring exposes the published panel snapshot.
type Monitoring interface {
	GetState(ctx context.Context) (timecircuits.PanelSnapshot, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.Event, error)
}

// Runner runs the control loop. Stop via context cancellation in main() for
// graceful shutdown.
type Runner interface {
	Run(ctx context.Context, tick time.Duration)
}

type Service struct {
	Panel
	Monitoring
	EventLog
	Runner
	Authorization
}

// NewService wires the controller and the repository layer into the
// services used by the HTTP handlers.
func NewService(cfg config.Config, repos *repository.Repository, ctl *Controller) *Service {
	return &Service{
		Panel:         NewPanelService(ctl),
		Monitoring:    NewMonitoringService(ctl),
		EventLog:      NewEventLogService(repos.Events),
		Runner:        ctl,
		Authorization: NewAuthService(repos.Auth, cfg.Auth.SigningKey, cfg.Auth.TokenTTL),
	}
}

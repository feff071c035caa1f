package service

import (
	"context"
	"errors"

	"timecircuits"
)

// ErrNotReady is returned before the controller has published a snapshot.
var ErrNotReady = errors.New("panel not booted yet")

type snapshotSource interface {
	Snapshot() timecircuits.PanelSnapshot
}

// MonitoringService reads the snapshot the control loop publishes after
// every iteration. It never touches loop state.
type MonitoringService struct {
	src snapshotSource
}

func NewMonitoringService(src snapshotSource) *MonitoringService {
	return &MonitoringService{src: src}
}

// GetState returns the latest published snapshot.
func (s *MonitoringService) GetState(ctx context.Context) (timecircuits.PanelSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return timecircuits.PanelSnapshot{}, err
	}
	snap := s.src.Snapshot()
	if snap.UpdatedAt.IsZero() {
		return timecircuits.PanelSnapshot{}, ErrNotReady
	}
	snap.UpdatedAt = snap.UpdatedAt.UTC()
	return snap, nil
}

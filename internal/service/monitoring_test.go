package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timecircuits"
)

type snapshotStub struct {
	snap  timecircuits.PanelSnapshot
	reads int
}

func (s *snapshotStub) Snapshot() timecircuits.PanelSnapshot {
	s.reads++
	return s.snap
}

func TestMonitoringService_NotReadyBeforeFirstPublish(t *testing.T) {
	svc := NewMonitoringService(&snapshotStub{})

	got, err := svc.GetState(context.Background())

	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, timecircuits.PanelSnapshot{}, got)
}

func TestMonitoringService_ReturnsSnapshotInUTC(t *testing.T) {
	published := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("UTC-3", -3*3600))
	svc := NewMonitoringService(&snapshotStub{snap: timecircuits.PanelSnapshot{
		Phase:         "PHASE2",
		Powered:       true,
		OffsetMinutes: -120,
		UpdatedAt:     published,
	}})

	got, err := svc.GetState(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "PHASE2", got.Phase)
	assert.EqualValues(t, -120, got.OffsetMinutes)
	assert.Equal(t, time.UTC, got.UpdatedAt.Location())
	assert.True(t, got.UpdatedAt.Equal(published))
}

func TestMonitoringService_CancelledContext(t *testing.T) {
	src := &snapshotStub{snap: timecircuits.PanelSnapshot{UpdatedAt: time.Now()}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMonitoringService(src).GetState(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, src.reads)
}

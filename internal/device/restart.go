package device

import (
	"context"
	"sync/atomic"
)

// RestartExitCode is the status the process exits with after a keypad
// restart, so a supervisor can start it again.
const RestartExitCode = 3

// ProcessRestarter stops the process through its root context.
type ProcessRestarter struct {
	cancel    context.CancelFunc
	requested atomic.Bool
}

func NewProcessRestarter(cancel context.CancelFunc) *ProcessRestarter {
	return &ProcessRestarter{cancel: cancel}
}

func (r *ProcessRestarter) Restart() {
	r.requested.Store(true)
	r.cancel()
}

// Requested reports whether Restart was called.
func (r *ProcessRestarter) Requested() bool { return r.requested.Load() }

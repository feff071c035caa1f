// Package clock provides a mockable wall-clock source.
// Production code uses RealClock; tests drive a MockClock.
package clock

import (
	"sync"
	"time"
)

// Clock is the interface for time operations.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// RealClock provides the actual system time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) Since(t time.Time) time.Duration { return time.Since(t) }

// MockClock is a test clock with controllable time.
type MockClock struct {
	mu      sync.RWMutex
	current time.Time
}

// NewMockClock creates a mock clock set to the given time.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{current: t}
}

func (c *MockClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *MockClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// Set sets the mock time.
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}

// Advance moves the mock time forward by d.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

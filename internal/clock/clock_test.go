package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockClock(t *testing.T) {
	start := time.Date(1985, 10, 26, 1, 21, 0, 0, time.UTC)
	c := NewMockClock(start)

	assert.Equal(t, start, c.Now())

	c.Advance(90 * time.Second)
	assert.Equal(t, 90*time.Second, c.Since(start))

	c.Set(start)
	assert.Zero(t, c.Since(start))
}

func TestRealClockMovesForward(t *testing.T) {
	var c Clock = RealClock{}
	before := c.Now()
	assert.GreaterOrEqual(t, c.Since(before), time.Duration(0))
}

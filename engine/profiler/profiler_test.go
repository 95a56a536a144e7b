package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTickReportsOncePerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now))
	assert.Zero(t, p.FPS())

	for range 59 {
		clock.advance(10 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	clock.advance(410 * time.Millisecond)
	assert.True(t, p.Tick())

	assert.InDelta(t, 60, p.FPS(), 1e-9)
	assert.Greater(t, p.Last().SysMB, 0.0)
}

func TestIntervalResetsCount(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithInterval(100*time.Millisecond))

	clock.advance(100 * time.Millisecond)
	assert.True(t, p.Tick())
	assert.InDelta(t, 10, p.FPS(), 1e-9)

	clock.advance(50 * time.Millisecond)
	assert.False(t, p.Tick())
	clock.advance(50 * time.Millisecond)
	assert.True(t, p.Tick())
	assert.InDelta(t, 20, p.FPS(), 1e-9)
}

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fence-planner/internal/fence"
	"fence-planner/internal/geo"
)

func TestSchedulerCoalesces(t *testing.T) {
	pump := &framePump{}
	clk := &fakeClock{t: time.Unix(1000, 0)}
	s := NewScheduler(pump.frame, clk.now, quietLogger())

	runs := 0
	inc := func() { runs++ }

	s.Request(inc)
	s.Request(inc)
	s.Request(inc)
	assert.Equal(t, 1, pump.queued())

	pump.fire()
	assert.Equal(t, 1, runs)
	assert.Equal(t, 1, s.FireCount())

	// A new request after the fire schedules again.
	s.Request(inc)
	pump.fire()
	assert.Equal(t, 2, runs)
}

func TestSchedulerStabilization(t *testing.T) {
	pump := &framePump{}
	timers := &timerPump{}
	clk := &fakeClock{t: time.Unix(1000, 0)}
	s := NewScheduler(pump.frame, clk.now, quietLogger())
	s.after = timers.after

	runs := 0
	inc := func() { runs++ }

	s.BeginStabilization(250 * time.Millisecond)
	s.Request(inc)

	// A frame inside the window hands off to a clock retry and stays
	// pending; it never re-enters the frame.
	pump.fire()
	assert.Equal(t, 0, runs)
	assert.Equal(t, 0, pump.queued())
	assert.Equal(t, 1, timers.queued())

	// More requests meanwhile coalesce into the pending pass.
	s.Request(inc)
	assert.Equal(t, 0, pump.queued())

	clk.advance(300 * time.Millisecond)
	timers.fire()
	assert.Equal(t, 1, runs)
}

func TestSchedulerCircuitBreaker(t *testing.T) {
	pump := &framePump{}
	clk := &fakeClock{t: time.Unix(1000, 0)}
	s := NewScheduler(pump.frame, clk.now, quietLogger())
	s.maxAuto = 3

	runs := 0
	for i := 0; i < 5; i++ {
		s.Request(func() { runs++ })
		pump.fire()
	}

	assert.Equal(t, 3, runs)
	assert.True(t, s.Disabled())

	// Tripped breaker swallows further requests entirely.
	s.Request(func() { runs++ })
	assert.Equal(t, 0, pump.queued())

	s.Reset()
	assert.False(t, s.Disabled())
	s.Request(func() { runs++ })
	pump.fire()
	assert.Equal(t, 4, runs)
}

func TestStoreRecomputeReadsLiveStateAtFireTime(t *testing.T) {
	pump := &framePump{}
	s := New(geo.NewProjector(testOrigin), fence.DefaultParams(),
		WithFrame(pump.frame),
		WithIDSource(seqIDs()),
		WithLogger(quietLogger()),
	)

	id := s.AddLine(pt(s, 0, 0), pt(s, 0, 5))
	require.NotEmpty(t, id)
	require.NoError(t, s.UpdateLine(id, 8000, fence.EndA, UpdateOptions{}))

	// Both mutations coalesced into a single pass that sees the resize.
	pump.fire()
	assert.Equal(t, 1, s.Scheduler().FireCount())

	d := s.Derived()
	var total float64
	for _, sp := range d.Spans {
		total += sp.LengthMM
	}
	assert.InDelta(t, 8000, total, 1)
}

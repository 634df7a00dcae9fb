package store

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"fence-planner/internal/fence"
	"fence-planner/internal/geo"
	"fence-planner/pkg/geometry"
)

var testOrigin = geo.Point{Lat: -33.865, Lng: 151.2094}

// framePump queues frame callbacks for explicit firing, standing in for the
// timer-based frame.
type framePump struct {
	mu  sync.Mutex
	cbs []func()
}

func (p *framePump) frame(cb func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cbs = append(p.cbs, cb)
}

func (p *framePump) fire() {
	p.mu.Lock()
	cbs := p.cbs
	p.cbs = nil
	p.mu.Unlock()
	for _, cb := range cbs {
		cb()
	}
}

func (p *framePump) queued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cbs)
}

// timerPump captures clock-deferred scheduler retries for explicit firing.
type timerPump struct {
	mu  sync.Mutex
	fns []func()
}

func (p *timerPump) after(_ time.Duration, f func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fns = append(p.fns, f)
}

func (p *timerPump) fire() {
	p.mu.Lock()
	fns := p.fns
	p.fns = nil
	p.mu.Unlock()
	for _, f := range fns {
		f()
	}
}

func (p *timerPump) queued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.fns)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func syncFrame(cb func()) { cb() }

// newTestStore builds a store with a synchronous frame, so every mutation's
// recompute completes before the call returns.
func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	base := []Option{
		WithFrame(syncFrame),
		WithIDSource(seqIDs()),
		WithLogger(quietLogger()),
	}
	return New(geo.NewProjector(testOrigin), fence.DefaultParams(), append(base, opts...)...)
}

// pt converts planar meters to a geographic point in the test frame.
func pt(s *Store, x, y float64) geo.Point {
	return s.proj.ToGeographic(geometry.Point2D{X: x, Y: y})
}

func lineByID(t *testing.T, s *Store, id string) fence.Line {
	t.Helper()
	l := fence.FindLine(s.Lines(), id)
	if l == nil {
		t.Fatalf("line %s not found", id)
	}
	return *l
}

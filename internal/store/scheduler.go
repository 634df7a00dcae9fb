package store

import (
	"log/slog"
	"sync"
	"time"
)

// FrameFunc schedules a callback for the next frame. The default
// implementation ticks at roughly display rate; tests inject a manual pump.
type FrameFunc func(func())

// defaultFrameInterval approximates one UI frame.
const defaultFrameInterval = 16 * time.Millisecond

// defaultMaxAutoRecomputes is the circuit-breaker ceiling: more automatic
// recomputes than this within one session means something is re-enqueuing
// from inside the recompute path.
const defaultMaxAutoRecomputes = 1000

// Scheduler coalesces derived-state recompute requests into one pass per
// frame. It is an explicit object owned by the store, with an injectable
// frame callback and clock, so tests control time and nothing leaks across
// sessions.
//
// Requests only coalesce, they never cancel: a second request while one is
// pending is a no-op, and the pass reads live canonical state at fire time,
// so out-of-order completion cannot serve stale results.
type Scheduler struct {
	mu sync.Mutex

	frame FrameFunc
	now   func() time.Time
	after func(time.Duration, func())
	log   *slog.Logger

	pending        bool
	stabilizeUntil time.Time
	fired          int
	maxAuto        int
	disabled       bool
}

// NewScheduler creates a scheduler. A nil frame uses a timer-based frame;
// a nil clock uses time.Now.
func NewScheduler(frame FrameFunc, now func() time.Time, log *slog.Logger) *Scheduler {
	if frame == nil {
		frame = func(cb func()) { time.AfterFunc(defaultFrameInterval, cb) }
	}
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		frame:   frame,
		now:     now,
		after:   func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		log:     log,
		maxAuto: defaultMaxAutoRecomputes,
	}
}

// Request enqueues a recompute. Multiple requests before the frame fires
// coalesce into a single pass. During a stabilization window the fire is
// deferred and merged into exactly one pass once the window elapses.
func (s *Scheduler) Request(run func()) {
	s.mu.Lock()
	if s.disabled || s.pending {
		s.mu.Unlock()
		return
	}
	s.pending = true
	s.mu.Unlock()

	s.frame(func() { s.fire(run) })
}

func (s *Scheduler) fire(run func()) {
	s.mu.Lock()
	if s.disabled {
		s.pending = false
		s.mu.Unlock()
		return
	}
	if wait := s.stabilizeUntil.Sub(s.now()); wait > 0 {
		// Still stabilizing: stay pending and retry once the window
		// closes. The retry goes through the clock, not the frame, so a
		// synchronous frame cannot recurse here.
		s.mu.Unlock()
		s.after(wait, func() { s.fire(run) })
		return
	}
	s.pending = false
	s.fired++
	if s.fired > s.maxAuto {
		s.disabled = true
		s.mu.Unlock()
		s.log.Error("recompute scheduler runaway, disabling automatic recomputation",
			slog.Int("fired", s.fired))
		return
	}
	s.mu.Unlock()

	run()
}

// BeginStabilization defers recompute requests for the given window,
// merging everything enqueued meanwhile into one pass when it elapses.
// Used immediately after snapshot hydration.
func (s *Scheduler) BeginStabilization(d time.Duration) {
	s.mu.Lock()
	s.stabilizeUntil = s.now().Add(d)
	s.mu.Unlock()
}

// Disabled reports whether the circuit breaker has tripped.
func (s *Scheduler) Disabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disabled
}

// FireCount returns how many recompute passes have run.
func (s *Scheduler) FireCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired
}

// Reset clears coalescing flags and the circuit-breaker counter. Call on
// session boundaries; tests call it between cases.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	s.pending = false
	s.fired = 0
	s.disabled = false
	s.stabilizeUntil = time.Time{}
	s.mu.Unlock()
}

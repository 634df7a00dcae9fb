// Package store owns the canonical fence drawing: the line and gate sets,
// the display scale, selection and warnings. All mutation entry points live
// here; they update canonical state synchronously and enqueue a coalesced
// recompute that regenerates posts, panel layouts and spans from live state.
package store

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"fence-planner/internal/fence"
	"fence-planner/internal/geo"
)

// EventType identifies store events.
type EventType int

const (
	EventLinesChanged EventType = iota
	EventGatesChanged
	EventSelectionChanged
	EventDerivedChanged
	EventWarning
	EventHydrated
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Warning is a non-fatal message surfaced to the user. The triggering
// mutation still succeeds (or, for freehand draws, degrades gracefully).
type Warning struct {
	Message string    `json:"message"`
	LineID  string    `json:"line_id,omitempty"`
	At      time.Time `json:"at"`
}

// Derived is the state regenerated from canonical lines and gates on every
// recompute. It has no independent lifecycle and must never be mutated
// directly.
type Derived struct {
	Posts     []fence.Post
	Panels    map[string]fence.PanelLayout
	Stations  []fence.Station
	Spans     []fence.PostSpan
	Leftovers []fence.Leftover
	Warnings  []Warning

	GeneratedAt time.Time
}

// UpdateOptions tunes UpdateLine behavior.
type UpdateOptions struct {
	// AllowMerge re-welds and re-merges the network after the resize.
	AllowMerge bool
}

// GateWidthResult reports the outcome of UpdateGateWidth.
type GateWidthResult struct {
	OK      bool
	WidthMM float64
	Err     error
}

// stabilizationWindow defers recomputes immediately after hydration so a
// burst of restored state settles into exactly one pass.
const stabilizationWindow = 250 * time.Millisecond

// Store is the canonical state owner.
type Store struct {
	mu sync.RWMutex

	proj   *geo.Projector
	params fence.Params
	scale  float64

	lines []fence.Line
	gates []fence.Gate

	selectedLine string
	selectedGate string

	warnings []Warning
	derived  Derived
	hist     history

	sched *Scheduler
	newID func() string
	now   func() time.Time
	log   *slog.Logger

	listeners map[EventType][]EventListener
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithIDSource injects the unique-id generator. Tests use a counter.
func WithIDSource(f func() string) Option {
	return func(s *Store) {
		if f != nil {
			s.newID = f
		}
	}
}

// WithFrame injects the scheduler's frame callback.
func WithFrame(f FrameFunc) Option {
	return func(s *Store) { s.sched.frame = f }
}

// WithClock injects the time source for warnings and the scheduler.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
			s.sched.now = now
		}
	}
}

// WithScale sets the display scale (real-world meters per planar meter).
func WithScale(scale float64) Option {
	return func(s *Store) {
		if scale > 0 {
			s.scale = scale
		}
	}
}

// New creates a store anchored at the projector's origin.
func New(proj *geo.Projector, params fence.Params, opts ...Option) *Store {
	s := &Store{
		proj:      proj,
		params:    params,
		scale:     1,
		newID:     func() string { return uuid.NewString() },
		now:       time.Now,
		log:       slog.Default(),
		listeners: make(map[EventType][]EventListener),
	}
	s.sched = NewScheduler(nil, nil, s.log)
	for _, opt := range opts {
		opt(s)
	}
	s.sched.log = s.log
	return s
}

// On registers an event listener for the specified event type.
func (s *Store) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Store) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

func (s *Store) env() fence.Env {
	return fence.NewEnv(s.proj, s.params, s.scale)
}

// Lines returns a copy of the canonical line set.
func (s *Store) Lines() []fence.Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fence.Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Gates returns a copy of the canonical gate set.
func (s *Store) Gates() []fence.Gate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fence.Gate, len(s.gates))
	copy(out, s.gates)
	return out
}

// Scale returns the display scale.
func (s *Store) Scale() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scale
}

// Derived returns the most recent derived state.
func (s *Store) Derived() Derived {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.derived
}

// Warnings returns the accumulated mutation warnings.
func (s *Store) Warnings() []Warning {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// SelectedLine returns the active line selection.
func (s *Store) SelectedLine() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedLine
}

// SelectedGate returns the active gate selection.
func (s *Store) SelectedGate() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedGate
}

// Scheduler exposes the recompute scheduler (session reset, inspection).
func (s *Store) Scheduler() *Scheduler {
	return s.sched
}

// warn appends a soft warning under the lock and returns it for emitting.
func (s *Store) warn(message, lineID string) Warning {
	w := Warning{Message: message, LineID: lineID, At: s.now()}
	s.warnings = append(s.warnings, w)
	return w
}

// AddLine inserts a freehand-drawn run between a and b. Both endpoints are
// first passed through the splitter against every existing line, so drawing
// across a run creates a T-junction instead of an overlapping disconnected
// line. Returns the id of the surviving line (after the merge pass), which
// becomes the active selection, or "" when the draw was too short.
func (s *Store) AddLine(a, b geo.Point) string {
	s.mu.Lock()
	env := s.env()

	qa, qb := env.Quantize(a), env.Quantize(b)
	lengthMM := env.DistanceMM(qa, qb)
	if lengthMM < s.params.MinRunMM {
		// Freehand drawing degrades gracefully: warn, no mutation.
		w := s.warn(fmt.Sprintf("line too short: %.0f mm (minimum %.0f mm)",
			lengthMM, s.params.MinRunMM), "")
		s.mu.Unlock()
		s.Emit(EventWarning, w)
		return ""
	}

	s.hist.push(snapshotOf(s.lines, s.gates))

	s.splitAllAtLocked(qa, env)
	s.splitAllAtLocked(qb, env)

	line := env.Refresh(fence.Line{ID: s.newID(), A: qa, B: qb})
	s.lines = append(s.lines, line)

	s.lines = fence.WeldEndpoints(s.lines, env)
	res := fence.MergeLines(s.lines, env)
	s.lines = res.Lines

	s.selectedLine = res.SurvivorOf(line.ID)
	s.selectedGate = ""
	selected := s.selectedLine
	s.mu.Unlock()

	s.Emit(EventLinesChanged, nil)
	s.Emit(EventSelectionChanged, selected)
	s.requestRecompute()
	return selected
}

// splitAllAtLocked splits every line whose qualifying interior contains p.
func (s *Store) splitAllAtLocked(p geo.Point, env fence.Env) {
	for i := 0; i < len(s.lines); i++ {
		res := fence.SplitLine(s.lines[i], p, s.newID, env)
		if res == nil {
			continue
		}
		rest := append([]fence.Line{res.Left, res.Right}, s.lines[i+1:]...)
		s.lines = append(s.lines[:i], rest...)
		i++ // skip the freshly created right piece
	}
}

// UpdateLine resizes a line from one fixed end, moving the opposite
// endpoint along the line's direction to the requested length. Every other
// line sharing the old moved endpoint is relocated with it, keeping the
// network connected.
//
// Unlike freehand drawing, numeric entry demands hard validation: a length
// outside the run bounds returns an error and leaves state unchanged.
func (s *Store) UpdateLine(id string, lengthMM float64, fromEnd fence.LineEnd, opts UpdateOptions) error {
	s.mu.Lock()
	env := s.env()

	if lengthMM < s.params.MinRunMM || lengthMM > s.params.MaxRunMM {
		s.mu.Unlock()
		return fmt.Errorf("%w: %.0f mm (allowed %.0f-%.0f mm)",
			fence.ErrLengthOutOfRange, lengthMM, s.params.MinRunMM, s.params.MaxRunMM)
	}

	idx := -1
	for i := range s.lines {
		if s.lines[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", fence.ErrUnknownLine, id)
	}
	line := s.lines[idx]
	if line.HasGate() {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s resizes via its gate", fence.ErrGateLine, id)
	}

	var fixed, oldMoved geo.Point
	if fromEnd == fence.EndA {
		fixed, oldMoved = line.A, line.B
	} else {
		fixed, oldMoved = line.B, line.A
	}

	// A gate boundary may only move symmetrically via gate resize; refuse
	// a resize that would drag one.
	for _, l := range s.lines {
		if !l.HasGate() || l.ID == id {
			continue
		}
		if s.nearLocked(l.A, oldMoved, env) || s.nearLocked(l.B, oldMoved, env) {
			s.mu.Unlock()
			return fmt.Errorf("%w: endpoint is a gate boundary", fence.ErrGateLine)
		}
	}

	s.hist.push(snapshotOf(s.lines, s.gates))

	fp, mp := env.Planar(fixed), env.Planar(oldMoved)
	dir := mp.Sub(fp).Unit()
	newMoved := env.Quantize(env.Geographic(fp.Add(dir.Scale(env.Meters(lengthMM)))))

	if fromEnd == fence.EndA {
		s.lines[idx].B = newMoved
	} else {
		s.lines[idx].A = newMoved
	}
	s.lines[idx] = env.Refresh(s.lines[idx])

	// Relocate every other line sharing the old moved endpoint.
	for i := range s.lines {
		if i == idx {
			continue
		}
		changed := false
		if s.nearLocked(s.lines[i].A, oldMoved, env) {
			s.lines[i].A = newMoved
			changed = true
		}
		if s.nearLocked(s.lines[i].B, oldMoved, env) {
			s.lines[i].B = newMoved
			changed = true
		}
		if changed {
			s.lines[i] = env.Refresh(s.lines[i])
		}
	}

	selected := id
	if opts.AllowMerge {
		s.lines = fence.WeldEndpoints(s.lines, env)
		res := fence.MergeLines(s.lines, env)
		s.lines = res.Lines
		selected = res.SurvivorOf(id)
		s.selectedLine = selected
	}
	s.mu.Unlock()

	s.Emit(EventLinesChanged, nil)
	s.requestRecompute()
	return nil
}

func (s *Store) nearLocked(a, b geo.Point, env fence.Env) bool {
	return s.proj.DistanceM(a, b) <= env.WeldToleranceM()
}

// SplitLineAtPoint cuts a line into two at the given point. Returns the
// junction point, or nil when the split is structurally impossible
// (gate-bearing line, point outside the qualifying interior).
func (s *Store) SplitLineAtPoint(lineID string, p geo.Point) *geo.Point {
	s.mu.Lock()
	env := s.env()

	idx := -1
	for i := range s.lines {
		if s.lines[i].ID == lineID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		s.log.Debug("split refused: unknown line", slog.String("line", lineID))
		return nil
	}

	res := fence.SplitLine(s.lines[idx], p, s.newID, env)
	if res == nil {
		s.mu.Unlock()
		s.log.Debug("split refused", slog.String("line", lineID))
		return nil
	}

	s.hist.push(snapshotOf(s.lines, s.gates))
	rest := append([]fence.Line{res.Left, res.Right}, s.lines[idx+1:]...)
	s.lines = append(s.lines[:idx], rest...)
	s.mu.Unlock()

	s.Emit(EventLinesChanged, nil)
	s.requestRecompute()
	junction := res.Junction
	return &junction
}

// DeleteLine removes a line, any gate solely owned by it, and a dangling
// gate selection pointing at the removed gate.
func (s *Store) DeleteLine(id string) {
	s.mu.Lock()
	idx := -1
	for i := range s.lines {
		if s.lines[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		s.log.Debug("delete refused: unknown line", slog.String("line", id))
		return
	}

	s.hist.push(snapshotOf(s.lines, s.gates))

	removed := s.lines[idx]
	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)

	if removed.HasGate() {
		for i := 0; i < len(s.gates); i++ {
			if s.gates[i].LineID != removed.ID {
				continue
			}
			if s.selectedGate == s.gates[i].ID {
				s.selectedGate = ""
			}
			s.gates = append(s.gates[:i], s.gates[i+1:]...)
			i--
		}
	}
	if s.selectedLine == id {
		s.selectedLine = ""
	}
	s.mu.Unlock()

	s.Emit(EventLinesChanged, nil)
	s.Emit(EventGatesChanged, nil)
	s.requestRecompute()
}

// AddGate carves a single gate out of a run at the click position.
func (s *Store) AddGate(runID string, clickPoint *geo.Point) string {
	return s.AddGateOfType(runID, fence.GateSingle, clickPoint)
}

// AddGateOfType carves a gate of the given type out of a run. Returns the
// gate id, or "" with a soft warning when the run cannot host the opening.
func (s *Store) AddGateOfType(runID string, t fence.GateType, clickPoint *geo.Point) string {
	s.mu.Lock()
	env := s.env()

	out := fence.CarveGate(s.lines, runID, clickPoint, t, s.newID, env)
	if out.Warning != "" {
		w := s.warn(out.Warning, runID)
		s.mu.Unlock()
		s.Emit(EventWarning, w)
		return ""
	}

	s.hist.push(snapshotOf(s.lines, s.gates))
	s.lines = out.Lines
	s.gates = append(s.gates, out.Gate)
	s.selectedGate = out.Gate.ID
	s.selectedLine = out.Gate.LineID

	var slidingWarn *Warning
	if msg, ok := fence.ValidateSlidingReturn(s.lines, out.Gate, env); !ok {
		w := s.warn(msg, out.Gate.LineID)
		slidingWarn = &w
	}
	gateID := out.Gate.ID
	s.mu.Unlock()

	s.Emit(EventLinesChanged, nil)
	s.Emit(EventGatesChanged, nil)
	s.Emit(EventSelectionChanged, gateID)
	if slidingWarn != nil {
		s.Emit(EventWarning, *slidingWarn)
	}
	s.requestRecompute()
	return gateID
}

// UpdateGateWidth recenters a gate opening symmetrically at the requested
// width, clamped to the gate type's range and the space available on both
// sides. Width outside the type's range is a hard error; state is unchanged.
func (s *Store) UpdateGateWidth(gateID string, widthMM float64) GateWidthResult {
	s.mu.Lock()
	env := s.env()

	out := fence.ResizeGate(s.lines, s.gates, gateID, widthMM, env)
	if out.Err != nil {
		s.mu.Unlock()
		return GateWidthResult{Err: out.Err}
	}

	s.hist.push(snapshotOf(s.lines, s.gates))
	s.lines = out.Lines
	s.gates = out.Gates

	var slidingWarn *Warning
	if g := fence.FindGate(s.gates, gateID); g != nil {
		if msg, ok := fence.ValidateSlidingReturn(s.lines, *g, env); !ok {
			w := s.warn(msg, g.LineID)
			slidingWarn = &w
		}
	}
	s.mu.Unlock()

	s.Emit(EventLinesChanged, nil)
	s.Emit(EventGatesChanged, nil)
	if slidingWarn != nil {
		s.Emit(EventWarning, *slidingWarn)
	}
	s.requestRecompute()
	return GateWidthResult{OK: true, WidthMM: out.WidthMM}
}

// ToggleEvenSpacing flips a run's even-spacing flag.
func (s *Store) ToggleEvenSpacing(id string) {
	s.mu.Lock()
	idx := -1
	for i := range s.lines {
		if s.lines[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 || s.lines[idx].HasGate() {
		s.mu.Unlock()
		s.log.Debug("even-spacing toggle refused", slog.String("line", id))
		return
	}

	s.hist.push(snapshotOf(s.lines, s.gates))
	s.lines[idx].EvenSpacing = !s.lines[idx].EvenSpacing
	s.mu.Unlock()

	s.Emit(EventLinesChanged, nil)
	s.requestRecompute()
}

// Undo restores the previous canonical snapshot.
func (s *Store) Undo() bool {
	return s.restore(func(cur Snapshot) (Snapshot, bool) { return s.hist.undo(cur) })
}

// Redo reverses the most recent undo.
func (s *Store) Redo() bool {
	return s.restore(func(cur Snapshot) (Snapshot, bool) { return s.hist.redo(cur) })
}

func (s *Store) restore(step func(Snapshot) (Snapshot, bool)) bool {
	s.mu.Lock()
	snap, ok := step(snapshotOf(s.lines, s.gates))
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.lines = snap.Lines
	s.gates = snap.Gates
	if fence.FindLine(s.lines, s.selectedLine) == nil {
		s.selectedLine = ""
	}
	if fence.FindGate(s.gates, s.selectedGate) == nil {
		s.selectedGate = ""
	}
	s.mu.Unlock()

	s.Emit(EventLinesChanged, nil)
	s.Emit(EventGatesChanged, nil)
	s.requestRecompute()
	return true
}

// Hydrate replaces canonical state from a loaded snapshot. Derived fields
// are excluded from persistence, so a recompute is enqueued behind a
// stabilization window that merges any further hydration-time requests
// into exactly one pass.
func (s *Store) Hydrate(lines []fence.Line, gates []fence.Gate, scale float64) {
	s.mu.Lock()
	s.lines = make([]fence.Line, len(lines))
	copy(s.lines, lines)
	s.gates = make([]fence.Gate, len(gates))
	copy(s.gates, gates)
	if scale > 0 {
		s.scale = scale
	}
	s.selectedLine = ""
	s.selectedGate = ""
	s.warnings = nil
	s.hist.reset()
	s.mu.Unlock()

	s.sched.BeginStabilization(stabilizationWindow)
	s.Emit(EventHydrated, nil)
	s.requestRecompute()
}

func (s *Store) requestRecompute() {
	s.sched.Request(s.Recompute)
}

// Recompute regenerates all derived state from live canonical state.
// Mutations normally enqueue this through the scheduler; calling it
// directly forces an immediate synchronous pass.
func (s *Store) Recompute() {
	s.mu.Lock()
	env := s.env()

	layouts := make(map[string]fence.PanelLayout, len(s.lines))
	var acc fence.LeftoverAccumulator
	var derivedWarnings []Warning
	for _, l := range s.lines {
		if l.HasGate() {
			continue
		}
		layout := fence.FitPanels(l.ID, l.LengthMM, l.EvenSpacing, &acc, s.params)
		layouts[l.ID] = layout
		for _, msg := range layout.Warnings {
			derivedWarnings = append(derivedWarnings, Warning{Message: msg, LineID: l.ID, At: s.now()})
		}
	}

	posts := fence.GeneratePosts(s.lines, layouts, env)
	walk := fence.DeriveStations(s.lines, posts, env)

	for _, p := range posts {
		if p.Category == fence.PostT {
			derivedWarnings = append(derivedWarnings, Warning{
				Message: fmt.Sprintf("post %s is a T-junction: custom hardware required", p.ID),
				At:      s.now(),
			})
		}
	}
	for _, g := range s.gates {
		if msg, ok := fence.ValidateSlidingReturn(s.lines, g, env); !ok {
			derivedWarnings = append(derivedWarnings, Warning{Message: msg, LineID: g.LineID, At: s.now()})
		}
	}
	if n := fence.BuildNetwork(s.lines, env).ComponentCount(); n > 1 {
		derivedWarnings = append(derivedWarnings, Warning{
			Message: fmt.Sprintf("drawing contains %d disconnected fence sections", n),
			At:      s.now(),
		})
	}

	s.derived = Derived{
		Posts:       posts,
		Panels:      layouts,
		Stations:    walk.Stations,
		Spans:       walk.Spans,
		Leftovers:   acc.Pieces(),
		Warnings:    derivedWarnings,
		GeneratedAt: s.now(),
	}
	s.mu.Unlock()

	s.Emit(EventDerivedChanged, nil)
}

package store

import "fence-planner/internal/fence"

// historyLimit bounds the undo stack depth.
const historyLimit = 100

// Snapshot is one undoable canonical state: lines and gates only. Derived
// state is never snapshotted; it is recomputed after every restore.
type Snapshot struct {
	Lines []fence.Line
	Gates []fence.Gate
}

func snapshotOf(lines []fence.Line, gates []fence.Gate) Snapshot {
	s := Snapshot{
		Lines: make([]fence.Line, len(lines)),
		Gates: make([]fence.Gate, len(gates)),
	}
	copy(s.Lines, lines)
	copy(s.Gates, gates)
	return s
}

// history is a bounded undo/redo stack of canonical snapshots.
type history struct {
	past   []Snapshot
	future []Snapshot
}

// push records the state preceding a mutation and clears the redo branch.
func (h *history) push(s Snapshot) {
	h.past = append(h.past, s)
	if len(h.past) > historyLimit {
		h.past = h.past[len(h.past)-historyLimit:]
	}
	h.future = nil
}

// undo exchanges the current state for the most recent snapshot.
func (h *history) undo(current Snapshot) (Snapshot, bool) {
	if len(h.past) == 0 {
		return Snapshot{}, false
	}
	top := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, current)
	return top, true
}

// redo reverses the most recent undo.
func (h *history) redo(current Snapshot) (Snapshot, bool) {
	if len(h.future) == 0 {
		return Snapshot{}, false
	}
	top := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, current)
	return top, true
}

// reset drops both stacks. Called on hydration.
func (h *history) reset() {
	h.past = nil
	h.future = nil
}

package overlay

import (
	"fmt"
	"strings"
)

// UndoPolicy selects what a history step restores.
type UndoPolicy int

const (
	// UndoFull restores the whole transform.
	UndoFull UndoPolicy = iota
	// UndoScale restores only the zoom level.
	UndoScale
)

// ParseUndoPolicy accepts "full" or "scale" (also "zoom").
func ParseUndoPolicy(s string) (UndoPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full", "transform":
		return UndoFull, nil
	case "scale", "zoom":
		return UndoScale, nil
	}
	return UndoFull, fmt.Errorf("unknown undo policy %q", s)
}

func (p UndoPolicy) String() string {
	if p == UndoScale {
		return "scale"
	}
	return "full"
}

const maxHistory = 256

// History is an undo/redo stack of transform snapshots.
type History struct {
	Policy UndoPolicy

	undo []Transform
	redo []Transform
}

// Push records the state prior to a mutation and drops any redo steps.
func (h *History) Push(prev Transform) {
	h.undo = append(h.undo, prev)
	if len(h.undo) > maxHistory {
		h.undo = h.undo[len(h.undo)-maxHistory:]
	}
	h.redo = h.redo[:0]
}

// Undo pops the latest snapshot and returns cur with it applied. cur is
// moved to the redo stack.
func (h *History) Undo(cur Transform) (Transform, bool) {
	if len(h.undo) == 0 {
		return cur, false
	}
	prev := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, cur)
	return h.restore(cur, prev), true
}

// Redo is the mirror of Undo.
func (h *History) Redo(cur Transform) (Transform, bool) {
	if len(h.redo) == 0 {
		return cur, false
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, cur)
	return h.restore(cur, next), true
}

func (h *History) restore(cur, snap Transform) Transform {
	if h.Policy == UndoScale {
		cur.SetScaleLog(snap.ScaleLog)
		return cur
	}
	return snap
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Clear drops both stacks.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

package editor

import (
	"fmt"

	"github.com/charmbracelet/log"

	"pagebuilder/internal/domain"
)

// History is a linear undo/redo stack of document snapshots.
// Once the first snapshot is saved, 0 <= Step() < Len() always holds.
type History struct {
	snapshots []domain.Snapshot
	current   int // index of the snapshot representing the present
	maxSteps  int // 0 means unbounded
	logger    *log.Logger
}

// NewHistory creates an empty history. maxSteps caps the number of retained
// snapshots; the oldest are evicted first.
func NewHistory(maxSteps int, logger *log.Logger) *History {
	if maxSteps < 0 {
		maxSteps = 0
	}
	if logger == nil {
		logger = log.Default()
	}
	return &History{current: -1, maxSteps: maxSteps, logger: logger}
}

// LoadHistory rebuilds a history from persisted snapshots and cursor.
func LoadHistory(snapshots []domain.Snapshot, step, maxSteps int, logger *log.Logger) (*History, error) {
	if len(snapshots) == 0 {
		return nil, fmt.Errorf("load history: no snapshots")
	}
	if step < 0 || step >= len(snapshots) {
		return nil, fmt.Errorf("load history: step %d out of range [0,%d)", step, len(snapshots))
	}
	h := NewHistory(maxSteps, logger)
	h.snapshots = append([]domain.Snapshot(nil), snapshots...)
	h.current = step
	return h, nil
}

// Save records snap as the present state, dropping any redoable snapshots.
func (h *History) Save(snap domain.Snapshot) {
	if h.current < len(h.snapshots)-1 {
		h.logger.Debug("history: discarding redo", "dropped", len(h.snapshots)-1-h.current)
		h.snapshots = h.snapshots[:h.current+1]
	}
	h.snapshots = append(h.snapshots, snap)

	if h.maxSteps > 0 && len(h.snapshots) > h.maxSteps {
		h.snapshots = append([]domain.Snapshot(nil), h.snapshots[len(h.snapshots)-h.maxSteps:]...)
	}
	h.current = len(h.snapshots) - 1
	h.logger.Debug("history: saved", "step", h.current, "len", len(h.snapshots), "blocks", snap.Len())
}

// Undo steps back one snapshot and returns it.
func (h *History) Undo() (domain.Snapshot, bool) {
	if !h.CanUndo() {
		h.logger.Debug("history: nothing to undo")
		return domain.Snapshot{}, false
	}
	h.current--
	h.logger.Debug("history: undo", "step", h.current)
	return h.snapshots[h.current], true
}

// Redo steps forward one snapshot and returns it.
func (h *History) Redo() (domain.Snapshot, bool) {
	if !h.CanRedo() {
		h.logger.Debug("history: nothing to redo", "step", h.current, "len", len(h.snapshots))
		return domain.Snapshot{}, false
	}
	h.current++
	h.logger.Debug("history: redo", "step", h.current)
	return h.snapshots[h.current], true
}

func (h *History) CanUndo() bool { return h.current > 0 }

func (h *History) CanRedo() bool { return h.current >= 0 && h.current < len(h.snapshots)-1 }

// Step returns the cursor, or -1 before the first save.
func (h *History) Step() int { return h.current }

func (h *History) Len() int { return len(h.snapshots) }

// Current returns the snapshot at the cursor.
func (h *History) Current() (domain.Snapshot, bool) {
	if h.current < 0 {
		return domain.Snapshot{}, false
	}
	return h.snapshots[h.current], true
}

// Snapshots returns the retained snapshots, oldest first.
func (h *History) Snapshots() []domain.Snapshot {
	return append([]domain.Snapshot(nil), h.snapshots...)
}

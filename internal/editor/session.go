package editor

import (
	"fmt"

	"github.com/charmbracelet/log"

	"pagebuilder/internal/domain"
)

// Options configures a Session.
type Options struct {
	// MaxSteps caps retained history snapshots; 0 keeps everything.
	MaxSteps int
	Logger   *log.Logger
}

// Session owns all state of one editor: id allocation, the block sequence,
// history, selection, hover and the in-flight drag gesture.
//
// Gestures that cannot apply are no-ops and report false. Every structural
// change that does apply is followed by exactly one history snapshot, taken
// after the change is complete.
type Session struct {
	ids  *IDAllocator
	seq  *Sequence
	hist *History
	sel  Selection
	drag dragState

	hover    int
	hoverSet bool

	editMode bool
	// dirty is set when fields changed since the last snapshot.
	dirty bool
	// revision increments whenever the history cursor or contents change.
	revision uint64

	logger *log.Logger
}

// NewSession starts an empty document and records it as the first snapshot,
// so undo after the first real edit returns to an empty page.
func NewSession(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Session{
		ids:      NewIDAllocator(0),
		seq:      NewSequence(),
		hist:     NewHistory(opts.MaxSteps, logger),
		editMode: true,
		logger:   logger,
	}
	s.commit("init")
	return s
}

// RestoreSession resumes a session from persisted history. The document is
// restored from snapshots[step]; nextID is raised past every id any snapshot
// holds.
func RestoreSession(snapshots []domain.Snapshot, step, nextID int, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	hist, err := LoadHistory(snapshots, step, opts.MaxSteps, logger)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	ids := NewIDAllocator(nextID)
	for _, snap := range snapshots {
		ids.Observe(snap.MaxID())
	}
	s := &Session{
		ids:      ids,
		seq:      NewSequence(),
		hist:     hist,
		editMode: true,
		logger:   logger,
	}
	cur, _ := hist.Current()
	s.seq.Restore(cur)
	return s, nil
}

func (s *Session) commit(reason string) {
	s.hist.Save(s.seq.Snapshot())
	s.dirty = false
	s.revision++
	s.logger.Debug("editor: snapshot", "reason", reason, "step", s.hist.Step(), "blocks", s.seq.Len())
}

// restore swaps in a snapshot. Selection, hover and drag are not part of
// snapshots and are reset.
func (s *Session) restore(snap domain.Snapshot) {
	s.seq.Restore(snap)
	s.sel.Clear()
	s.hoverSet = false
	s.drag = dragState{}
	s.dirty = false
	s.revision++
}

// change runs a structural mutation. Pending field edits are recorded as
// their own snapshot ahead of the mutation's snapshot, but only when the
// mutation applies, so a rejected gesture still leaves history untouched.
func (s *Session) change(reason string, mutate func() bool) bool {
	var pending domain.Snapshot
	dirty := s.dirty
	if dirty {
		pending = s.seq.Snapshot()
	}
	if !mutate() {
		return false
	}
	if dirty {
		s.hist.Save(pending)
		s.revision++
		s.logger.Debug("editor: snapshot", "reason", "edit", "step", s.hist.Step(), "blocks", pending.Len())
	}
	s.commit(reason)
	return true
}

// flushEdits snapshots pending field edits.
func (s *Session) flushEdits() bool {
	if !s.dirty {
		return false
	}
	s.commit("edit")
	return true
}

// ── Queries ────────────────────────────────────────────────

func (s *Session) Blocks() []domain.Block { return s.seq.Blocks() }

func (s *Session) BlockIDs() []int { return s.seq.IDs() }

// Block returns a copy of the block with the given id.
func (s *Session) Block(id int) (domain.Block, bool) {
	b, ok := s.seq.Get(id)
	if !ok {
		return domain.Block{}, false
	}
	return b.Clone(), true
}

// Selected returns the selected block id.
func (s *Session) Selected() (int, bool) { return s.sel.ID() }

// Panel returns the options panel for the current selection.
func (s *Session) Panel() Panel {
	id, ok := s.sel.ID()
	if !ok {
		return placeholderPanel()
	}
	b, ok := s.seq.Get(id)
	if !ok {
		return placeholderPanel()
	}
	return panelFor(*b)
}

func (s *Session) CanUndo() bool { return s.dirty || s.hist.CanUndo() }

func (s *Session) CanRedo() bool { return !s.dirty && s.hist.CanRedo() }

func (s *Session) Step() int { return s.hist.Step() }

func (s *Session) HistoryLen() int { return s.hist.Len() }

// Snapshots returns the retained history, oldest first.
func (s *Session) Snapshots() []domain.Snapshot { return s.hist.Snapshots() }

// NextID is the id the next created block will receive.
func (s *Session) NextID() int { return s.ids.Peek() }

// Revision changes whenever history is saved or the cursor moves.
func (s *Session) Revision() uint64 { return s.revision }

func (s *Session) Dirty() bool { return s.dirty }

func (s *Session) EditMode() bool { return s.editMode }

// Dragging reports the kind of the in-flight gesture.
func (s *Session) Dragging() DragKind { return s.drag.kind }

// ── Edit mode & hover ─────────────────────────────────────

// SetEditMode toggles editing. With editing off, every gesture is a no-op.
func (s *Session) SetEditMode(on bool) {
	if s.editMode == on {
		return
	}
	if !on {
		s.flushEdits()
		s.drag = dragState{}
		s.sel.Clear()
	}
	s.editMode = on
}

func (s *Session) Hover(id int) {
	if s.seq.Index(id) < 0 {
		return
	}
	s.hover, s.hoverSet = id, true
}

func (s *Session) Unhover() { s.hoverSet = false }

// ── Drag gestures ─────────────────────────────────────────

// StartPaletteDrag begins dragging a new block of type t from the palette.
func (s *Session) StartPaletteDrag(t domain.BlockType) bool {
	if !s.editMode || !t.Valid() {
		return false
	}
	s.drag = dragState{kind: DragPalette, blockType: t}
	return true
}

// StartBlockDrag picks up an existing block. The block stays in the sequence
// but is hidden and excluded from drop resolution until the drag ends.
func (s *Session) StartBlockDrag(id int) bool {
	if !s.editMode || s.seq.Index(id) < 0 {
		return false
	}
	s.drag = dragState{kind: DragBlock, blockID: id}
	return true
}

// DragOver re-resolves the insertion marker for pointer y.
func (s *Session) DragOver(y float64, boxes []Box) Indicator {
	if s.drag.kind == DragNone {
		return Indicator{}
	}
	s.drag.indicator = Indicator{Visible: true, Target: Resolve(y, s.drag.candidates(boxes))}
	return s.drag.indicator
}

// DragLeave hides the insertion marker.
func (s *Session) DragLeave() {
	s.drag.indicator = Indicator{}
}

// Drop completes a palette drag at pointer y by inserting a new block at the
// resolved position. Without a recorded palette type it does nothing.
func (s *Session) Drop(y float64, boxes []Box) (int, bool) {
	s.drag.indicator = Indicator{}
	if s.drag.kind != DragPalette || !s.editMode {
		return 0, false
	}
	target := Resolve(y, s.drag.candidates(boxes))
	b := domain.NewBlock(s.ids.Next(), s.drag.blockType)
	if !s.change("drop", func() bool { return s.seq.InsertBefore(target, b) }) {
		return 0, false
	}
	return b.ID, true
}

// DropOnBlock completes a block drag over target. A block dragged down lands
// right after the target; dragged up it lands right before. Dropping a block
// onto itself does nothing.
func (s *Session) DropOnBlock(target int) bool {
	s.drag.indicator = Indicator{}
	if s.drag.kind != DragBlock || !s.editMode {
		return false
	}
	dragged := s.drag.blockID
	if dragged == target {
		return false
	}
	from, to := s.seq.Index(dragged), s.seq.Index(target)
	if from < 0 || to < 0 {
		return false
	}
	return s.change("reorder", func() bool {
		if from < to {
			return s.seq.MoveAfter(dragged, target)
		}
		return s.seq.MoveBefore(dragged, target)
	})
}

// EndDrag clears all drag state and un-hides the dragged block, whether or
// not a drop happened.
func (s *Session) EndDrag() {
	s.drag = dragState{}
}

// ── Inline actions ────────────────────────────────────────

// Insert places a new block of type t at the target without a drag gesture.
func (s *Session) Insert(t domain.BlockType, target DropTarget) (int, bool) {
	if !s.editMode || !t.Valid() {
		return 0, false
	}
	b := domain.NewBlock(s.ids.Next(), t)
	if !s.change("insert", func() bool { return s.seq.InsertBefore(target, b) }) {
		return 0, false
	}
	return b.ID, true
}

// Delete removes a block. Deleting the selected block clears the selection.
func (s *Session) Delete(id int) bool {
	if !s.editMode {
		return false
	}
	removed := s.change("delete", func() bool {
		_, ok := s.seq.Remove(id)
		return ok
	})
	if !removed {
		return false
	}
	if s.sel.Is(id) {
		s.sel.Clear()
	}
	if s.hoverSet && s.hover == id {
		s.hoverSet = false
	}
	if s.drag.hides(id) {
		s.drag = dragState{}
	}
	return true
}

// Duplicate inserts a copy of a block right after it and returns the new id.
// Fields the source lacks are left empty.
func (s *Session) Duplicate(id int) (int, bool) {
	if !s.editMode {
		return 0, false
	}
	src, ok := s.seq.Get(id)
	if !ok {
		return 0, false
	}
	dup := domain.NewBlock(s.ids.Next(), src.Type)
	for _, name := range src.Type.Fields() {
		dup.Fields[name] = src.Fields[name]
	}
	if !s.change("duplicate", func() bool { return s.seq.InsertAt(s.seq.Index(id)+1, dup) }) {
		return 0, false
	}
	return dup.ID, true
}

func (s *Session) MoveUp(id int) bool {
	if !s.editMode {
		return false
	}
	return s.change("move up", func() bool { return s.seq.MoveUp(id) })
}

func (s *Session) MoveDown(id int) bool {
	if !s.editMode {
		return false
	}
	return s.change("move down", func() bool { return s.seq.MoveDown(id) })
}

// ── Selection & panel ─────────────────────────────────────

// Select makes id the only selected block. Pending edits on the previous
// selection are committed to history first.
func (s *Session) Select(id int) bool {
	if !s.editMode || s.seq.Index(id) < 0 {
		return false
	}
	if s.sel.Is(id) {
		return true
	}
	s.flushEdits()
	s.sel.Select(id)
	return true
}

// ClickOutside deselects and resets the panel to its placeholder.
func (s *Session) ClickOutside() {
	s.flushEdits()
	s.sel.Clear()
}

// EditField writes a panel input straight through to the selected block.
func (s *Session) EditField(name, value string) bool {
	id, ok := s.sel.ID()
	if !ok {
		return false
	}
	return s.EditBlockField(id, name, value)
}

// EditBlockField is an inline edit on any block. The change is live at once
// and reaches history at the next commit point.
func (s *Session) EditBlockField(id int, name, value string) bool {
	if !s.editMode {
		return false
	}
	b, ok := s.seq.Get(id)
	if !ok || !b.HasField(name) {
		return false
	}
	if b.Fields[name] == value {
		return true
	}
	b.Fields[name] = value
	s.dirty = true
	return true
}

// CommitEdits snapshots pending field edits, if any.
func (s *Session) CommitEdits() bool {
	return s.flushEdits()
}

// ── History ───────────────────────────────────────────────

// Undo restores the previous snapshot. Pending edits are committed first so
// undo reverts them.
func (s *Session) Undo() bool {
	s.flushEdits()
	snap, ok := s.hist.Undo()
	if !ok {
		return false
	}
	s.restore(snap)
	return true
}

// Redo restores the next snapshot.
func (s *Session) Redo() bool {
	s.flushEdits()
	snap, ok := s.hist.Redo()
	if !ok {
		return false
	}
	s.restore(snap)
	return true
}

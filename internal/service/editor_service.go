package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/editor"
)

// ─────────────────────────────────────────────────────────────
// Editor Service — owns editor sessions and their journals
// ─────────────────────────────────────────────────────────────

// EventChanged is emitted after a session's history moves.
const EventChanged = "editor:changed"

// ChangedEvent is the payload of EventChanged.
type ChangedEvent struct {
	SessionID string `json:"sessionId"`
	Step      int    `json:"step"`
	Steps     int    `json:"steps"`
}

// Outcome is the result of a gesture: whether it applied, the block it
// created (if any) and the session view afterwards.
type Outcome struct {
	Changed bool        `json:"changed"`
	BlockID int         `json:"blockId,omitempty"`
	View    editor.View `json:"view"`
}

// HistoryInfo describes a session's undo/redo stack.
type HistoryInfo struct {
	Step      int               `json:"step"`
	Snapshots []domain.Snapshot `json:"snapshots"`
	CanUndo   bool              `json:"canUndo"`
	CanRedo   bool              `json:"canRedo"`
}

// EditorService manages any number of independent editor sessions.
// Calls on one session are serialised; different sessions run independently.
type EditorService struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	maxSteps int

	store   domain.JournalStore // nil disables persistence
	emitter EventEmitter
	logger  *log.Logger
}

type sessionEntry struct {
	mu      sync.Mutex
	doc     domain.Document
	session *editor.Session
	savedAt uint64 // session revision last written to the journal
}

// NewEditorService creates an EditorService. store may be nil.
func NewEditorService(store domain.JournalStore, emitter EventEmitter, maxSteps int, logger *log.Logger) *EditorService {
	if logger == nil {
		logger = log.Default()
	}
	return &EditorService{
		sessions: make(map[string]*sessionEntry),
		maxSteps: maxSteps,
		store:    store,
		emitter:  emitter,
		logger:   logger.WithPrefix("editor"),
	}
}

// SetMaxHistory changes the history cap applied to sessions opened from now on.
func (s *EditorService) SetMaxHistory(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxSteps = n
}

func (s *EditorService) options() editor.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return editor.Options{MaxSteps: s.maxSteps, Logger: s.logger}
}

// ── Sessions ───────────────────────────────────────────────

// OpenSessions returns the ids of sessions held in memory.
func (s *EditorService) OpenSessions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CreateSession starts a new, empty document.
func (s *EditorService) CreateSession(ctx context.Context, name string) (*domain.Document, error) {
	e := &sessionEntry{
		doc:     domain.Document{ID: uuid.New().String(), Name: name, EditMode: true},
		session: editor.NewSession(s.options()),
	}
	if s.store != nil {
		if err := s.store.CreateDocument(&e.doc); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
	}
	if err := s.persist(e); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[e.doc.ID] = e
	s.mu.Unlock()

	s.logger.Info("session created", "id", e.doc.ID, "name", name)
	doc := e.doc
	return &doc, nil
}

// OpenSession returns an in-memory session, loading its journal if needed.
func (s *EditorService) OpenSession(ctx context.Context, id string) (*domain.Document, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	doc := e.doc
	return &doc, nil
}

// CloseSession writes the journal and drops the session from memory.
func (s *EditorService) CloseSession(ctx context.Context, id string) error {
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("close session %s: %w", id, domain.ErrSessionNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.CommitEdits()
	if err := s.persist(e); err != nil {
		return err
	}
	s.logger.Info("session closed", "id", id)
	return nil
}

// DeleteSession removes a session and its journal.
func (s *EditorService) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	_, inMemory := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if s.store == nil {
		if !inMemory {
			return fmt.Errorf("delete session %s: %w", id, domain.ErrSessionNotFound)
		}
		return nil
	}
	if !inMemory {
		if _, err := s.store.GetDocument(id); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	if err := s.store.DeleteDocument(id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ListSessions returns open and persisted sessions, most recent first.
func (s *EditorService) ListSessions(ctx context.Context) ([]domain.Document, error) {
	byID := map[string]domain.Document{}
	if s.store != nil {
		docs, err := s.store.ListDocuments()
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		for _, d := range docs {
			byID[d.ID] = d
		}
	}

	s.mu.Lock()
	entries := make([]*sessionEntry, 0, len(s.sessions))
	for _, e := range s.sessions {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	for _, e := range entries {
		e.mu.Lock()
		byID[e.doc.ID] = e.doc
		e.mu.Unlock()
	}

	out := make([]domain.Document, 0, len(byID))
	for _, d := range byID {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *EditorService) entry(id string) (*sessionEntry, error) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	s.mu.Unlock()
	if ok {
		return e, nil
	}
	if s.store == nil {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}

	j, err := s.store.LoadJournal(id)
	if err != nil {
		return nil, err
	}
	sess, err := editor.RestoreSession(j.Snapshots, j.Document.CurrentStep, j.Document.NextBlockID, s.options())
	if err != nil {
		return nil, fmt.Errorf("open session %s: %w", id, err)
	}
	sess.SetEditMode(j.Document.EditMode)
	e = &sessionEntry{doc: j.Document, session: sess, savedAt: sess.Revision()}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another caller may have loaded it meanwhile; keep the first.
	if existing, ok := s.sessions[id]; ok {
		return existing, nil
	}
	s.sessions[id] = e
	s.logger.Info("session restored", "id", id, "step", j.Document.CurrentStep, "steps", len(j.Snapshots))
	return e, nil
}

// SyncFromStore reloads every open session whose journal was written by
// someone else, such as a standalone MCP process sharing the database.
// Reloaded sessions lose selection and drag state and emit EventChanged.
// Sessions with uncommitted field edits are left alone; their next save
// overwrites the outside write.
func (s *EditorService) SyncFromStore(ctx context.Context) ([]string, error) {
	if s.store == nil {
		return nil, nil
	}
	docs, err := s.store.ListDocuments()
	if err != nil {
		return nil, fmt.Errorf("sync sessions: %w", err)
	}

	var reloaded []string
	for _, d := range docs {
		s.mu.Lock()
		e, ok := s.sessions[d.ID]
		s.mu.Unlock()
		if !ok {
			continue
		}
		changed, err := s.reload(e, d)
		if err != nil {
			s.logger.Warn("reload failed", "id", d.ID, "err", err)
			continue
		}
		if !changed {
			continue
		}
		reloaded = append(reloaded, d.ID)
		if s.emitter != nil {
			s.emitter.Emit(ctx, EventChanged, ChangedEvent{SessionID: d.ID, Step: d.CurrentStep, Steps: d.Steps})
		}
	}
	return reloaded, nil
}

func (s *EditorService) reload(e *sessionEntry, stored domain.Document) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !stored.UpdatedAt.After(e.doc.UpdatedAt) {
		return false, nil
	}
	if e.session.Dirty() {
		s.logger.Debug("reload deferred, pending edits", "id", stored.ID)
		return false, nil
	}
	j, err := s.store.LoadJournal(stored.ID)
	if err != nil {
		return false, err
	}
	sess, err := editor.RestoreSession(j.Snapshots, j.Document.CurrentStep, j.Document.NextBlockID, s.options())
	if err != nil {
		return false, err
	}
	sess.SetEditMode(j.Document.EditMode)
	e.doc, e.session, e.savedAt = j.Document, sess, sess.Revision()
	s.logger.Info("session reloaded", "id", stored.ID, "step", j.Document.CurrentStep)
	return true, nil
}

// persist writes the session's journal. Callers hold e.mu.
func (s *EditorService) persist(e *sessionEntry) error {
	sess := e.session
	e.doc.NextBlockID = sess.NextID()
	e.doc.CurrentStep = sess.Step()
	e.doc.Steps = sess.HistoryLen()
	e.doc.EditMode = sess.EditMode()
	if s.store == nil {
		e.doc.UpdatedAt = time.Now()
		e.savedAt = sess.Revision()
		return nil
	}

	j := &domain.Journal{Document: e.doc, Snapshots: sess.Snapshots()}
	if err := s.store.SaveJournal(j); err != nil {
		s.logger.Error("journal write failed", "id", e.doc.ID, "err", err)
		return fmt.Errorf("persist session %s: %w", e.doc.ID, err)
	}
	e.doc = j.Document
	e.savedAt = sess.Revision()
	return nil
}

// Do runs fn against the session with exclusive access. If fn moved history,
// the journal is written and EventChanged is emitted before Do returns.
func (s *EditorService) Do(ctx context.Context, id string, fn func(*editor.Session) (changed bool, blockID int)) (*Outcome, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	changed, blockID := fn(e.session)
	out := &Outcome{Changed: changed, BlockID: blockID, View: e.session.View()}

	if e.session.Revision() == e.savedAt && e.doc.EditMode == e.session.EditMode() {
		return out, nil
	}
	if err := s.persist(e); err != nil {
		return out, err
	}
	if s.emitter != nil {
		s.emitter.Emit(ctx, EventChanged, ChangedEvent{
			SessionID: id,
			Step:      e.session.Step(),
			Steps:     e.session.HistoryLen(),
		})
	}
	return out, nil
}

// ── Queries ────────────────────────────────────────────────

// View renders the session.
func (s *EditorService) View(ctx context.Context, id string) (*editor.View, error) {
	out, err := s.Do(ctx, id, func(*editor.Session) (bool, int) { return false, 0 })
	if err != nil {
		return nil, err
	}
	return &out.View, nil
}

// GetBlock returns one block of the session's document.
func (s *EditorService) GetBlock(ctx context.Context, id string, blockID int) (*domain.Block, error) {
	var (
		b     domain.Block
		found bool
	)
	if _, err := s.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		b, found = sess.Block(blockID)
		return false, 0
	}); err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("block %d: %w", blockID, domain.ErrBlockNotFound)
	}
	return &b, nil
}

// Document returns the session's blocks in order.
func (s *EditorService) Document(ctx context.Context, id string) ([]domain.Block, error) {
	var blocks []domain.Block
	if _, err := s.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		blocks = sess.Blocks()
		return false, 0
	}); err != nil {
		return nil, err
	}
	return blocks, nil
}

// History returns the session's snapshots and cursor.
func (s *EditorService) History(ctx context.Context, id string) (*HistoryInfo, error) {
	var info HistoryInfo
	if _, err := s.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		info = HistoryInfo{
			Step:      sess.Step(),
			Snapshots: sess.Snapshots(),
			CanUndo:   sess.CanUndo(),
			CanRedo:   sess.CanRedo(),
		}
		return false, 0
	}); err != nil {
		return nil, err
	}
	return &info, nil
}

// ── Gestures ───────────────────────────────────────────────

func (s *EditorService) StartPaletteDrag(ctx context.Context, id string, blockType string) (*Outcome, error) {
	t, err := domain.ParseBlockType(blockType)
	if err != nil {
		return nil, err
	}
	return s.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		return sess.StartPaletteDrag(t), 0
	})
}

func (s *EditorService) StartBlockDrag(ctx context.Context, id string, blockID int) (*Outcome, error) {
	return s.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		return sess.StartBlockDrag(blockID), 0
	})
}

func (s *EditorService) DragOver(ctx context.Context, id string, y float64, boxes []editor.Box) (*Outcome, error) {
	return s.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		return sess.DragOver(y, boxes).Visible, 0
	})
}

func (s *EditorService) DragLeave(ctx context.Context, id string) (*Outcome, error) {
	return s.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		sess.DragLeave()
		return true, 0
	})
}

func (s *EditorService) Drop(ctx context.Context, id string, y float64, boxes []editor.Box) (*Outcome, error) {
	return s.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		blockID, ok := sess.Drop(y, boxes)
		return ok, blockID
	})
}

func (s *EditorService) DropOnBlock(ctx context.Context, id string, target int) (*Outcome, error) {
	return s.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		return sess.DropOnBlock(target), 0
	})
}

func (s *EditorService) EndDrag(ctx context.Context, id string) (*Outcome, error) {
	return s.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		sess.EndDrag()
		return true, 0
	})
}

// InsertBlock adds a block without a drag gesture. beforeID < 0 appends.
func (s *EditorService) InsertBlock(ctx context.Context, id string, blockType string, beforeID int) (*Outcome, error) {
	t, err := domain.ParseBlockType(blockType)
	if err != nil {
		return nil, err
	}
	target := editor.EndOfList
	if beforeID >= 0 {
		target = editor.DropTarget{BeforeID: beforeID}
	}
	return s.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		blockID, ok := sess.Insert(t, target)
		return ok, blockID
	})
}

func (s *EditorService) DeleteBlock(ctx context.Context, id string, blockID int) (*Outcome, error) {
	return s.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		return sess.Delete(blockID), 0
	})
}

func (s *EditorService) DuplicateBlock(ctx context.Context, id string, blockID int) (*Outcome, error) {
	return s.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		dup, ok := sess.Duplicate(blockID)
		return ok, dup
	})
}

func (s *EditorService) MoveBlockUp(ctx context.Context, id string, blockID int) (*Outcome, error) {
	return s.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		return sess.MoveUp(blockID), 0
	})
}

func (s *EditorService) MoveBlockDown(ctx context.Context, id string, blockID int) (*Outcome, error) {
	return s.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		return sess.MoveDown(blockID), 0
	})
}

func (s *EditorService) SelectBlock(ctx context.Context, id string, blockID int) (*Outcome, error) {
	return s.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		return sess.Select(blockID), 0
	})
}

func (s *EditorService) ClickOutside(ctx context.Context, id string) (*Outcome, error) {
	return s.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		sess.ClickOutside()
		return true, 0
	})
}

func (s *EditorService) Hover(ctx context.Context, id string, blockID int) (*Outcome, error) {
	return s.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		if blockID < 0 {
			sess.Unhover()
			return true, 0
		}
		sess.Hover(blockID)
		return true, 0
	})
}

// EditField writes a panel field of the selected block.
func (s *EditorService) EditField(ctx context.Context, id, field, value string) (*Outcome, error) {
	return s.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		return sess.EditField(field, value), 0
	})
}

// EditBlockField writes a field of any block, as an inline edit does.
func (s *EditorService) EditBlockField(ctx context.Context, id string, blockID int, field, value string) (*Outcome, error) {
	return s.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		return sess.EditBlockField(blockID, field, value), 0
	})
}

func (s *EditorService) CommitEdits(ctx context.Context, id string) (*Outcome, error) {
	return s.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		return sess.CommitEdits(), 0
	})
}

func (s *EditorService) Undo(ctx context.Context, id string) (*Outcome, error) {
	return s.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		return sess.Undo(), 0
	})
}

func (s *EditorService) Redo(ctx context.Context, id string) (*Outcome, error) {
	return s.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		return sess.Redo(), 0
	})
}

func (s *EditorService) SetEditMode(ctx context.Context, id string, on bool) (*Outcome, error) {
	return s.Do(ctx, id, func(sess *editor.Session) (bool, int) {
		sess.SetEditMode(on)
		return true, 0
	})
}

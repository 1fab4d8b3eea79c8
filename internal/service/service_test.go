package service_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/editor"
	"pagebuilder/internal/service"
	"pagebuilder/internal/storage"
)

func openStore(t *testing.T, path string) *storage.JournalStore {
	t.Helper()
	db, err := storage.New(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return storage.NewJournalStore(db)
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

func ids(blocks []domain.Block) []int {
	out := make([]int, len(blocks))
	for i, b := range blocks {
		out[i] = b.ID
	}
	return out
}

func sameIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ─────────────────────────────────────────────────────────────
// jobGuard tests
// ─────────────────────────────────────────────────────────────

func TestJobGuard_Acquire(t *testing.T) {
	var g service.JobGuard

	if !g.Acquire("prune") {
		t.Fatal("expected first Acquire to succeed")
	}
	if g.Acquire("prune") {
		t.Fatal("expected second Acquire for same job to fail")
	}
	if !g.Acquire("other") {
		t.Fatal("expected Acquire for different job to succeed")
	}
	if !g.Running("prune") {
		t.Error("expected prune to be running")
	}
	g.Release("prune")
	g.Release("other")
	g.Release("other") // releasing twice is harmless

	if g.Running("prune") {
		t.Error("expected prune to be released")
	}
	if !g.Acquire("prune") {
		t.Fatal("expected Acquire to succeed after release")
	}
	g.Release("prune")
}

func TestJobGuard_Wait(t *testing.T) {
	var g service.JobGuard
	if !g.Acquire("prune") {
		t.Fatal("expected lock to succeed")
	}

	done := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		g.Wait(ctx)
		close(done)
	}()

	go func() {
		time.Sleep(20 * time.Millisecond)
		g.Release("prune")
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after release")
	}
}

// ─────────────────────────────────────────────────────────────
// MockEmitter tests
// ─────────────────────────────────────────────────────────────

func TestMockEmitter(t *testing.T) {
	m := &service.MockEmitter{}
	m.Emit(context.Background(), "a", 1)
	m.Emit(context.Background(), "b", "two")

	if len(m.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(m.Events))
	}
	if m.Events[0].Event != "a" || m.Events[1].Data != "two" {
		t.Errorf("unexpected events: %+v", m.Events)
	}
	if got := m.Named("b"); len(got) != 1 || got[0] != "two" {
		t.Errorf("Named(b) = %v", got)
	}
}

// ─────────────────────────────────────────────────────────────
// EditorService tests
// ─────────────────────────────────────────────────────────────

func TestEditorService_InMemory(t *testing.T) {
	ctx := context.Background()
	em := &service.MockEmitter{}
	svc := service.NewEditorService(nil, em, 0, quietLogger())

	doc, err := svc.CreateSession(ctx, "Landing")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	out, err := svc.InsertBlock(ctx, doc.ID, "text", -1)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !out.Changed || len(out.View.Blocks) != 1 {
		t.Fatalf("insert outcome = %+v", out)
	}
	first := out.BlockID

	out, _ = svc.InsertBlock(ctx, doc.ID, "banner", first)
	second := out.BlockID
	if got := []int{out.View.Blocks[0].ID, out.View.Blocks[1].ID}; !sameIDs(got, []int{second, first}) {
		t.Fatalf("order = %v", got)
	}

	if len(em.Events) != 2 {
		t.Fatalf("expected 2 change events, got %d", len(em.Events))
	}
	ev, ok := em.Events[1].Data.(service.ChangedEvent)
	if !ok || em.Events[1].Event != service.EventChanged {
		t.Fatalf("unexpected event %+v", em.Events[1])
	}
	if ev.SessionID != doc.ID || ev.Step != 2 || ev.Steps != 3 {
		t.Errorf("event = %+v", ev)
	}

	// Selection does not move history, so nothing is emitted.
	if _, err := svc.SelectBlock(ctx, doc.ID, first); err != nil {
		t.Fatal(err)
	}
	if len(em.Events) != 2 {
		t.Errorf("select emitted an event")
	}

	if _, err := svc.InsertBlock(ctx, doc.ID, "video", -1); !errors.Is(err, domain.ErrUnknownBlockType) {
		t.Errorf("expected ErrUnknownBlockType, got %v", err)
	}
	if _, err := svc.View(ctx, "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.GetBlock(ctx, doc.ID, 99); !errors.Is(err, domain.ErrBlockNotFound) {
		t.Errorf("expected ErrBlockNotFound, got %v", err)
	}
}

func TestEditorService_EditAndUndo(t *testing.T) {
	ctx := context.Background()
	svc := service.NewEditorService(nil, nil, 0, quietLogger())
	doc, _ := svc.CreateSession(ctx, "Edit")

	out, _ := svc.InsertBlock(ctx, doc.ID, "banner", -1)
	id := out.BlockID

	if out, _ = svc.EditField(ctx, doc.ID, domain.FieldHeadline, "Hi"); out.Changed {
		t.Fatal("panel edit applied with nothing selected")
	}
	_, _ = svc.SelectBlock(ctx, doc.ID, id)
	out, _ = svc.EditField(ctx, doc.ID, domain.FieldHeadline, "Hello")
	if v, _ := out.View.Panel.Field(domain.FieldHeadline); !out.Changed || v != "Hello" {
		t.Fatalf("panel after edit = %+v", out.View.Panel)
	}

	out, _ = svc.Undo(ctx, doc.ID)
	if !out.Changed {
		t.Fatal("expected undo to apply")
	}
	b, err := svc.GetBlock(ctx, doc.ID, id)
	if err != nil {
		t.Fatal(err)
	}
	if b.Fields[domain.FieldHeadline] != "" {
		t.Errorf("undo kept headline %q", b.Fields[domain.FieldHeadline])
	}

	out, _ = svc.Redo(ctx, doc.ID)
	b, _ = svc.GetBlock(ctx, doc.ID, id)
	if !out.Changed || b.Fields[domain.FieldHeadline] != "Hello" {
		t.Errorf("redo headline = %q", b.Fields[domain.FieldHeadline])
	}
}

func TestEditorService_DragGestures(t *testing.T) {
	ctx := context.Background()
	svc := service.NewEditorService(nil, nil, 0, quietLogger())
	doc, _ := svc.CreateSession(ctx, "Drag")

	a, _ := svc.InsertBlock(ctx, doc.ID, "text", -1)
	b, _ := svc.InsertBlock(ctx, doc.ID, "text", -1)
	boxes := []editor.Box{
		{BlockID: a.BlockID, Top: 0, Height: 100},
		{BlockID: b.BlockID, Top: 100, Height: 100},
	}

	if _, err := svc.StartPaletteDrag(ctx, doc.ID, "banner"); err != nil {
		t.Fatal(err)
	}
	out, _ := svc.DragOver(ctx, doc.ID, 120, boxes)
	if !out.View.Indicator.Visible || out.View.Indicator.Target.BeforeID != b.BlockID {
		t.Fatalf("indicator = %+v", out.View.Indicator)
	}
	out, _ = svc.Drop(ctx, doc.ID, 120, boxes)
	if !out.Changed {
		t.Fatal("expected palette drop to insert")
	}
	banner := out.BlockID
	_, _ = svc.EndDrag(ctx, doc.ID)

	blocks, _ := svc.Document(ctx, doc.ID)
	if want := []int{a.BlockID, banner, b.BlockID}; !sameIDs(ids(blocks), want) {
		t.Fatalf("order = %v, want %v", ids(blocks), want)
	}

	_, _ = svc.StartBlockDrag(ctx, doc.ID, a.BlockID)
	out, _ = svc.DropOnBlock(ctx, doc.ID, b.BlockID)
	_, _ = svc.EndDrag(ctx, doc.ID)
	if !out.Changed {
		t.Fatal("expected block drop to reorder")
	}
	blocks, _ = svc.Document(ctx, doc.ID)
	if want := []int{banner, b.BlockID, a.BlockID}; !sameIDs(ids(blocks), want) {
		t.Fatalf("order = %v, want %v", ids(blocks), want)
	}

	h, err := svc.History(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if h.Step != 4 || len(h.Snapshots) != 5 || !h.CanUndo || h.CanRedo {
		t.Errorf("history = step %d len %d undo %v redo %v", h.Step, len(h.Snapshots), h.CanUndo, h.CanRedo)
	}
}

func TestEditorService_Persistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")
	store := openStore(t, path)

	svc := service.NewEditorService(store, &service.MockEmitter{}, 0, quietLogger())
	doc, err := svc.CreateSession(ctx, "Saved")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	a, _ := svc.InsertBlock(ctx, doc.ID, "text", -1)
	_, _ = svc.InsertBlock(ctx, doc.ID, "banner", -1)
	_, _ = svc.SelectBlock(ctx, doc.ID, a.BlockID)
	_, _ = svc.EditField(ctx, doc.ID, domain.FieldContent, "persisted")
	_, _ = svc.Undo(ctx, doc.ID) // reverts the edit, leaving a redo step
	if err := svc.CloseSession(ctx, doc.ID); err != nil {
		t.Fatalf("close: %v", err)
	}

	// A fresh service over the same store sees the same document and cursor.
	reopened := service.NewEditorService(store, nil, 0, quietLogger())
	list, err := reopened.ListSessions(ctx)
	if err != nil || len(list) != 1 || list[0].ID != doc.ID {
		t.Fatalf("list = %+v, %v", list, err)
	}
	got, err := reopened.OpenSession(ctx, doc.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got.CurrentStep != 2 || got.Steps != 4 {
		t.Errorf("document = %+v", got)
	}

	out, _ := reopened.Redo(ctx, doc.ID)
	if !out.Changed {
		t.Fatal("expected redo after reopen")
	}
	b, _ := reopened.GetBlock(ctx, doc.ID, a.BlockID)
	if b.Fields[domain.FieldContent] != "persisted" {
		t.Errorf("content = %q", b.Fields[domain.FieldContent])
	}

	// New ids continue above every persisted id.
	out, _ = reopened.InsertBlock(ctx, doc.ID, "text", -1)
	if out.BlockID <= 1 {
		t.Errorf("new block id %d reuses a persisted id", out.BlockID)
	}

	if err := reopened.DeleteSession(ctx, doc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := reopened.OpenSession(ctx, doc.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
	}
	if err := reopened.DeleteSession(ctx, doc.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestEditorService_EditModePersists(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "journal.db"))
	svc := service.NewEditorService(store, nil, 0, quietLogger())

	doc, _ := svc.CreateSession(ctx, "Preview")
	out, _ := svc.SetEditMode(ctx, doc.ID, false)
	if out.View.EditMode {
		t.Fatal("expected edit mode off")
	}
	if out, _ = svc.InsertBlock(ctx, doc.ID, "text", -1); out.Changed {
		t.Error("insert applied with editing off")
	}
	_ = svc.CloseSession(ctx, doc.ID)

	v, err := svc.View(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if v.EditMode {
		t.Error("edit mode was not restored from the journal")
	}
}

func TestEditorService_MaxHistory(t *testing.T) {
	ctx := context.Background()
	svc := service.NewEditorService(nil, nil, 0, quietLogger())
	svc.SetMaxHistory(3)
	doc, _ := svc.CreateSession(ctx, "Capped")

	for i := 0; i < 5; i++ {
		_, _ = svc.InsertBlock(ctx, doc.ID, "text", -1)
	}
	h, _ := svc.History(ctx, doc.ID)
	if len(h.Snapshots) != 3 || h.Step != 2 {
		t.Errorf("history len %d step %d, want 3 and 2", len(h.Snapshots), h.Step)
	}
}

func TestEditorService_SyncFromStore(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "journal.db"))

	em := &service.MockEmitter{}
	gui := service.NewEditorService(store, em, 0, quietLogger())
	doc, _ := gui.CreateSession(ctx, "Shared")
	_, _ = gui.InsertBlock(ctx, doc.ID, "text", -1)

	if ids, err := gui.SyncFromStore(ctx); err != nil || len(ids) != 0 {
		t.Fatalf("sync without outside writes = %v, %v", ids, err)
	}

	time.Sleep(5 * time.Millisecond)
	other := service.NewEditorService(store, nil, 0, quietLogger())
	if _, err := other.InsertBlock(ctx, doc.ID, "banner", -1); err != nil {
		t.Fatalf("outside insert: %v", err)
	}

	before := len(em.Events)
	ids, err := gui.SyncFromStore(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != doc.ID {
		t.Fatalf("reloaded = %v", ids)
	}
	if len(em.Events) != before+1 {
		t.Errorf("expected one change event, got %d", len(em.Events)-before)
	}
	blocks, _ := gui.Document(ctx, doc.ID)
	if len(blocks) != 2 || blocks[1].Type != domain.BlockTypeBanner {
		t.Errorf("blocks after sync = %+v", blocks)
	}
}

func TestEditorService_CreatedBlockIDs(t *testing.T) {
	ctx := context.Background()
	svc := service.NewEditorService(nil, nil, 0, quietLogger())
	doc, _ := svc.CreateSession(ctx, "Ids")

	first, err := svc.InsertBlock(ctx, doc.ID, "text", -1)
	if err != nil || !first.Changed {
		t.Fatalf("insert = %+v, %v", first, err)
	}
	second, _ := svc.InsertBlock(ctx, doc.ID, "banner", -1)
	if first.BlockID != 0 || second.BlockID != 1 {
		t.Fatalf("inserted ids = %d, %d, want 0, 1", first.BlockID, second.BlockID)
	}

	dup, err := svc.DuplicateBlock(ctx, doc.ID, first.BlockID)
	if err != nil || !dup.Changed {
		t.Fatalf("duplicate = %+v, %v", dup, err)
	}
	if dup.BlockID != 2 {
		t.Errorf("duplicate id = %d, want 2", dup.BlockID)
	}
	blocks, _ := svc.Document(ctx, doc.ID)
	if want := []int{0, 2, 1}; !sameIDs(ids(blocks), want) {
		t.Errorf("order = %v, want %v", ids(blocks), want)
	}

	missing, err := svc.DuplicateBlock(ctx, doc.ID, 99)
	if err != nil || missing.Changed || missing.BlockID != 0 {
		t.Errorf("duplicate of missing block = %+v, %v", missing, err)
	}
}

func TestEditorService_SyncKeepsPendingEdits(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "journal.db"))
	svc := service.NewEditorService(store, nil, 0, quietLogger())

	doc, _ := svc.CreateSession(ctx, "Busy")
	a, _ := svc.InsertBlock(ctx, doc.ID, "text", -1)
	_, _ = svc.InsertBlock(ctx, doc.ID, "text", -1)
	_, _ = svc.InsertBlock(ctx, doc.ID, "text", -1)
	_, _ = svc.SelectBlock(ctx, doc.ID, a.BlockID)
	_, _ = svc.EditField(ctx, doc.ID, domain.FieldContent, "typing")

	time.Sleep(5 * time.Millisecond)
	if _, err := store.PruneJournals(1, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("outside prune: %v", err)
	}

	reloaded, err := svc.SyncFromStore(ctx)
	if err != nil || len(reloaded) != 0 {
		t.Fatalf("session with pending edits was reloaded: %v, %v", reloaded, err)
	}
	b, _ := svc.GetBlock(ctx, doc.ID, a.BlockID)
	if b.Fields[domain.FieldContent] != "typing" {
		t.Errorf("pending edit lost: content = %q", b.Fields[domain.FieldContent])
	}

	_, _ = svc.CommitEdits(ctx, doc.ID)
	h, _ := svc.History(ctx, doc.ID)
	if len(h.Snapshots) != 5 || h.Step != 4 {
		t.Errorf("history = step %d of %d, want 4 of 5", h.Step, len(h.Snapshots))
	}
	// The commit is written back, so the store matches memory again.
	stored, err := store.GetDocument(doc.ID)
	if err != nil || stored.Steps != 5 {
		t.Errorf("stored document = %+v, %v", stored, err)
	}
}

// ─────────────────────────────────────────────────────────────
// JournalPruner tests
// ─────────────────────────────────────────────────────────────

func TestJournalPruner_RunOnce(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "journal.db"))
	svc := service.NewEditorService(store, nil, 0, quietLogger())

	doc, _ := svc.CreateSession(ctx, "Old")
	for i := 0; i < 6; i++ {
		_, _ = svc.InsertBlock(ctx, doc.ID, "text", -1)
	}
	_ = svc.CloseSession(ctx, doc.ID)
	time.Sleep(10 * time.Millisecond)

	p := service.NewJournalPruner(store, 2, 0, quietLogger())
	res, err := p.RunOnce(ctx)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if res.Dropped != 5 || res.Skipped {
		t.Errorf("result = %+v, want 5 dropped", res)
	}

	v, err := svc.View(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Blocks) != 6 || v.Steps != 2 || v.Step != 1 {
		t.Errorf("after prune: %d blocks, step %d of %d", len(v.Blocks), v.Step, v.Steps)
	}
}

func TestJournalPruner_SkipsOpenSessions(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "journal.db"))
	svc := service.NewEditorService(store, nil, 0, quietLogger())

	open, _ := svc.CreateSession(ctx, "Open")
	closed, _ := svc.CreateSession(ctx, "Closed")
	for i := 0; i < 4; i++ {
		_, _ = svc.InsertBlock(ctx, open.ID, "text", -1)
		_, _ = svc.InsertBlock(ctx, closed.ID, "text", -1)
	}
	_ = svc.CloseSession(ctx, closed.ID)
	time.Sleep(10 * time.Millisecond)

	p := service.NewJournalPruner(store, 2, 0, quietLogger())
	p.SkipOpen(svc.OpenSessions)
	res, err := p.RunOnce(ctx)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if res.Dropped != 3 {
		t.Errorf("dropped %d, want 3 from the closed session only", res.Dropped)
	}

	if ids, _ := svc.SyncFromStore(ctx); len(ids) != 0 {
		t.Errorf("pruning reloaded open sessions: %v", ids)
	}
	h, _ := svc.History(ctx, open.ID)
	if len(h.Snapshots) != 5 {
		t.Errorf("open session history len = %d, want 5", len(h.Snapshots))
	}
	stored, _ := store.GetDocument(open.ID)
	if stored.Steps != 5 {
		t.Errorf("open session journal steps = %d, want 5", stored.Steps)
	}
}

func TestJournalPruner_Schedule(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "journal.db"))
	p := service.NewJournalPruner(store, 2, time.Hour, quietLogger())

	if err := p.Start("not a schedule"); err == nil {
		t.Fatal("expected invalid schedule to fail")
	}
	if err := p.Start("@every 1h"); err != nil {
		t.Fatalf("start: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	p.Stop(ctx)
	p.Stop(ctx)
}

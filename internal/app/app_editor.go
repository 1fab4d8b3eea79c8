package app

import (
	"pagebuilder/internal/domain"
	"pagebuilder/internal/editor"
	"pagebuilder/internal/service"
)

// ============================================================
// Sessions
// ============================================================

func (a *App) CreateSession(name string) (*domain.Document, error) {
	return a.editor.CreateSession(a.ctx, name)
}

func (a *App) ListSessions() ([]domain.Document, error) {
	return a.editor.ListSessions(a.ctx)
}

func (a *App) OpenSession(id string) (*domain.Document, error) {
	return a.editor.OpenSession(a.ctx, id)
}

func (a *App) CloseSession(id string) error {
	return a.editor.CloseSession(a.ctx, id)
}

func (a *App) DeleteSession(id string) error {
	return a.editor.DeleteSession(a.ctx, id)
}

func (a *App) GetView(id string) (*editor.View, error) {
	return a.editor.View(a.ctx, id)
}

func (a *App) GetHistory(id string) (*service.HistoryInfo, error) {
	return a.editor.History(a.ctx, id)
}

func (a *App) GetPalette() []domain.BlockType {
	return domain.PaletteTypes()
}

// ============================================================
// Drag & Drop
// ============================================================

func (a *App) StartPaletteDrag(id, blockType string) (*service.Outcome, error) {
	return a.editor.StartPaletteDrag(a.ctx, id, blockType)
}

func (a *App) StartBlockDrag(id string, blockID int) (*service.Outcome, error) {
	return a.editor.StartBlockDrag(a.ctx, id, blockID)
}

func (a *App) DragOver(id string, in DragInput) (*service.Outcome, error) {
	return a.editor.DragOver(a.ctx, id, in.Y, in.Boxes)
}

func (a *App) DragLeave(id string) (*service.Outcome, error) {
	return a.editor.DragLeave(a.ctx, id)
}

func (a *App) Drop(id string, in DragInput) (*service.Outcome, error) {
	return a.editor.Drop(a.ctx, id, in.Y, in.Boxes)
}

func (a *App) DropOnBlock(id string, targetID int) (*service.Outcome, error) {
	return a.editor.DropOnBlock(a.ctx, id, targetID)
}

func (a *App) EndDrag(id string) (*service.Outcome, error) {
	return a.editor.EndDrag(a.ctx, id)
}

// ============================================================
// Block actions
// ============================================================

// InsertBlock adds a block without dragging; beforeID < 0 appends.
func (a *App) InsertBlock(id, blockType string, beforeID int) (*service.Outcome, error) {
	return a.editor.InsertBlock(a.ctx, id, blockType, beforeID)
}

func (a *App) DeleteBlock(id string, blockID int) (*service.Outcome, error) {
	return a.editor.DeleteBlock(a.ctx, id, blockID)
}

func (a *App) DuplicateBlock(id string, blockID int) (*service.Outcome, error) {
	return a.editor.DuplicateBlock(a.ctx, id, blockID)
}

func (a *App) MoveBlockUp(id string, blockID int) (*service.Outcome, error) {
	return a.editor.MoveBlockUp(a.ctx, id, blockID)
}

func (a *App) MoveBlockDown(id string, blockID int) (*service.Outcome, error) {
	return a.editor.MoveBlockDown(a.ctx, id, blockID)
}

// HoverBlock sets the hovered block; a negative id clears hover.
func (a *App) HoverBlock(id string, blockID int) (*service.Outcome, error) {
	return a.editor.Hover(a.ctx, id, blockID)
}

// ============================================================
// Selection & options panel
// ============================================================

func (a *App) SelectBlock(id string, blockID int) (*service.Outcome, error) {
	return a.editor.SelectBlock(a.ctx, id, blockID)
}

func (a *App) ClickOutside(id string) (*service.Outcome, error) {
	return a.editor.ClickOutside(a.ctx, id)
}

func (a *App) EditField(id, field, value string) (*service.Outcome, error) {
	return a.editor.EditField(a.ctx, id, field, value)
}

func (a *App) EditBlockField(id string, blockID int, field, value string) (*service.Outcome, error) {
	return a.editor.EditBlockField(a.ctx, id, blockID, field, value)
}

// CommitEdits is called when an input loses focus.
func (a *App) CommitEdits(id string) (*service.Outcome, error) {
	return a.editor.CommitEdits(a.ctx, id)
}

// ============================================================
// History & mode
// ============================================================

func (a *App) Undo(id string) (*service.Outcome, error) {
	return a.editor.Undo(a.ctx, id)
}

func (a *App) Redo(id string) (*service.Outcome, error) {
	return a.editor.Redo(a.ctx, id)
}

func (a *App) SetEditMode(id string, on bool) (*service.Outcome, error) {
	return a.editor.SetEditMode(a.ctx, id, on)
}

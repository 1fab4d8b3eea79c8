package editor

import "pagebuilder/internal/domain"

// Action is an inline affordance on a rendered block.
type Action string

const (
	ActionDelete    Action = "delete"
	ActionDuplicate Action = "duplicate"
	ActionMoveUp    Action = "move_up"
	ActionMoveDown  Action = "move_down"
)

// BlockView is everything needed to render one block. It is derived from the
// block's type and id on every call, so restoring a snapshot needs no rebind.
type BlockView struct {
	ID           int               `json:"id"`
	Type         domain.BlockType  `json:"type"`
	Fields       map[string]string `json:"fields"`
	Placeholders map[string]string `json:"placeholders"`
	Draggable    bool              `json:"draggable"`
	Selected     bool              `json:"selected"`
	Hovered      bool              `json:"hovered"`
	Hidden       bool              `json:"hidden"`
	Actions      []Action          `json:"actions"`
}

// View is a render-ready copy of a session.
type View struct {
	Palette   []domain.BlockType `json:"palette"`
	Blocks    []BlockView        `json:"blocks"`
	Indicator Indicator          `json:"indicator"`
	Panel     Panel              `json:"panel"`
	Dragging  string             `json:"dragging"`
	EditMode  bool               `json:"editMode"`
	CanUndo   bool               `json:"canUndo"`
	CanRedo   bool               `json:"canRedo"`
	Step      int                `json:"step"`
	Steps     int                `json:"steps"`
}

// actionsFor lists the affordances of a block. Only the selected block shows any.
func actionsFor(t domain.BlockType, selected, editMode bool) []Action {
	if !selected || !editMode {
		return nil
	}
	switch t {
	case domain.BlockTypeText, domain.BlockTypeBanner:
		return []Action{ActionDelete, ActionDuplicate, ActionMoveUp, ActionMoveDown}
	}
	return nil
}

func (s *Session) blockView(b domain.Block) BlockView {
	fields := make(map[string]string, len(b.Fields))
	placeholders := make(map[string]string, len(b.Fields))
	for _, name := range b.Type.Fields() {
		fields[name] = b.Fields[name]
		placeholders[name] = b.Type.Placeholder(name)
	}
	selected := s.sel.Is(b.ID)
	return BlockView{
		ID:           b.ID,
		Type:         b.Type,
		Fields:       fields,
		Placeholders: placeholders,
		Draggable:    s.editMode,
		Selected:     selected,
		Hovered:      s.hoverSet && s.hover == b.ID,
		Hidden:       s.drag.hides(b.ID),
		Actions:      actionsFor(b.Type, selected, s.editMode),
	}
}

// View renders the session's current state.
func (s *Session) View() View {
	blocks := s.seq.Blocks()
	v := View{
		Palette:   domain.PaletteTypes(),
		Blocks:    make([]BlockView, 0, len(blocks)),
		Indicator: s.drag.indicator,
		Panel:     s.Panel(),
		Dragging:  s.drag.kind.String(),
		EditMode:  s.editMode,
		CanUndo:   s.CanUndo(),
		CanRedo:   s.CanRedo(),
		Step:      s.hist.Step(),
		Steps:     s.hist.Len(),
	}
	for _, b := range blocks {
		v.Blocks = append(v.Blocks, s.blockView(b))
	}
	return v
}

package editor

import "pagebuilder/internal/domain"

// PanelPlaceholder is shown in the options panel when nothing is selected.
const PanelPlaceholder = "Select a block to see its options."

// PanelField is one editable input of the options panel.
type PanelField struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Value       string `json:"value"`
	Placeholder string `json:"placeholder"`
}

// Panel mirrors the selected block's fields. With no selection only
// Placeholder is set.
type Panel struct {
	BlockID     int              `json:"blockId"`
	BlockType   domain.BlockType `json:"blockType,omitempty"`
	Fields      []PanelField     `json:"fields"`
	Placeholder string           `json:"placeholder,omitempty"`
}

// Empty reports whether the panel is showing the placeholder.
func (p Panel) Empty() bool { return p.Placeholder != "" }

// Field returns the value of the named panel field.
func (p Panel) Field(name string) (string, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

func placeholderPanel() Panel {
	return Panel{Placeholder: PanelPlaceholder}
}

func panelFor(b domain.Block) Panel {
	names := b.Type.Fields()
	p := Panel{BlockID: b.ID, BlockType: b.Type, Fields: make([]PanelField, 0, len(names))}
	for _, name := range names {
		p.Fields = append(p.Fields, PanelField{
			Name:        name,
			Label:       b.Type.FieldLabel(name),
			Value:       b.Fields[name],
			Placeholder: b.Type.Placeholder(name),
		})
	}
	return p
}

package domain

import "fmt"

type BlockType string

const (
	BlockTypeText   BlockType = "text"
	BlockTypeBanner BlockType = "banner"
)

// Field names used by the block types.
const (
	FieldContent     = "content"
	FieldHeadline    = "headline"
	FieldSubheadline = "subheadline"
)

// PaletteTypes returns the block types offered by the palette, in display order.
func PaletteTypes() []BlockType {
	return []BlockType{BlockTypeText, BlockTypeBanner}
}

// ParseBlockType converts a palette token into a BlockType.
func ParseBlockType(s string) (BlockType, error) {
	t := BlockType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownBlockType, s)
	}
	return t, nil
}

func (t BlockType) Valid() bool {
	switch t {
	case BlockTypeText, BlockTypeBanner:
		return true
	}
	return false
}

// Fields returns the editable field names of the type, in panel order.
func (t BlockType) Fields() []string {
	switch t {
	case BlockTypeText:
		return []string{FieldContent}
	case BlockTypeBanner:
		return []string{FieldHeadline, FieldSubheadline}
	}
	return nil
}

// FieldLabel is the options panel label for a field of this type.
func (t BlockType) FieldLabel(field string) string {
	switch t {
	case BlockTypeText:
		if field == FieldContent {
			return "Edit Text Content:"
		}
	case BlockTypeBanner:
		switch field {
		case FieldHeadline:
			return "Edit Headline:"
		case FieldSubheadline:
			return "Edit Subheadline:"
		}
	}
	return field
}

// Placeholder is the inline hint shown for an empty field.
func (t BlockType) Placeholder(field string) string {
	switch t {
	case BlockTypeText:
		return "Enter your content here..."
	case BlockTypeBanner:
		if field == FieldSubheadline {
			return "Enter banner subheadline..."
		}
		return "Enter banner headline..."
	}
	return ""
}

// Block is one content unit of a document. IDs are assigned by the owning
// session and are never reused.
type Block struct {
	ID     int               `json:"id"`
	Type   BlockType         `json:"type"`
	Fields map[string]string `json:"fields"`
}

// NewBlock returns a block of type t with every field of the type set to "".
func NewBlock(id int, t BlockType) Block {
	fields := make(map[string]string, len(t.Fields()))
	for _, name := range t.Fields() {
		fields[name] = ""
	}
	return Block{ID: id, Type: t, Fields: fields}
}

// HasField reports whether name is an editable field of the block's type.
func (b Block) HasField(name string) bool {
	for _, f := range b.Type.Fields() {
		if f == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of b.
func (b Block) Clone() Block {
	fields := make(map[string]string, len(b.Fields))
	for k, v := range b.Fields {
		fields[k] = v
	}
	return Block{ID: b.ID, Type: b.Type, Fields: fields}
}

// Equal reports structural and field equality.
func (b Block) Equal(o Block) bool {
	if b.ID != o.ID || b.Type != o.Type || len(b.Fields) != len(o.Fields) {
		return false
	}
	for k, v := range b.Fields {
		if ov, ok := o.Fields[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

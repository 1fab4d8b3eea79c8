package editor

import "pagebuilder/internal/domain"

type DragKind int

const (
	DragNone DragKind = iota
	DragPalette
	DragBlock
)

func (k DragKind) String() string {
	switch k {
	case DragPalette:
		return "palette"
	case DragBlock:
		return "block"
	}
	return "none"
}

// Indicator is the transient insertion marker shown while dragging.
type Indicator struct {
	Visible bool       `json:"visible"`
	Target  DropTarget `json:"target"`
}

// dragState lives only between a drag start and the matching drag end.
type dragState struct {
	kind      DragKind
	blockType domain.BlockType // palette drags
	blockID   int              // block drags; the block is hidden meanwhile
	indicator Indicator
}

func (d dragState) hides(id int) bool {
	return d.kind == DragBlock && d.blockID == id
}

// candidates drops the hidden block and any indicator from boxes.
func (d dragState) candidates(boxes []Box) []Box {
	out := make([]Box, 0, len(boxes))
	for _, b := range boxes {
		if b.Indicator || d.hides(b.BlockID) {
			continue
		}
		out = append(out, b)
	}
	return out
}

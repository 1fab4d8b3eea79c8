package editor

import "math"

// Box is the rendered vertical extent of one block on the canvas.
type Box struct {
	BlockID int     `json:"blockId"`
	Top     float64 `json:"top"`
	Height  float64 `json:"height"`
	// Indicator marks the transient insertion marker; it is never a candidate.
	Indicator bool `json:"indicator,omitempty"`
}

// DropTarget is where a dragged item lands: in front of BeforeID, or at the
// end of the document when AtEnd is set.
type DropTarget struct {
	BeforeID int  `json:"beforeId"`
	AtEnd    bool `json:"atEnd"`
}

// EndOfList is the target that appends.
var EndOfList = DropTarget{AtEnd: true}

// Resolve returns the nearest block whose vertical midpoint lies below y.
// Candidates are scanned in document order and only a strictly closer offset
// replaces the current best, so ties go to the earlier block.
func Resolve(y float64, boxes []Box) DropTarget {
	best := math.Inf(-1)
	target := EndOfList
	for _, box := range boxes {
		if box.Indicator {
			continue
		}
		offset := y - box.Top - box.Height/2
		if offset < 0 && offset > best {
			best = offset
			target = DropTarget{BeforeID: box.BlockID}
		}
	}
	return target
}

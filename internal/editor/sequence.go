package editor

import "pagebuilder/internal/domain"

// Sequence is the ordered list of blocks that makes up a document.
// It never holds two blocks with the same id.
type Sequence struct {
	blocks []domain.Block
}

func NewSequence() *Sequence {
	return &Sequence{}
}

func (s *Sequence) Len() int { return len(s.blocks) }

// Blocks returns a deep copy of the blocks in document order.
func (s *Sequence) Blocks() []domain.Block {
	return domain.NewSnapshot(s.blocks).Blocks()
}

// IDs returns block ids in document order.
func (s *Sequence) IDs() []int {
	ids := make([]int, len(s.blocks))
	for i, b := range s.blocks {
		ids[i] = b.ID
	}
	return ids
}

// Index returns the position of the block with the given id, or -1.
func (s *Sequence) Index(id int) int {
	for i, b := range s.blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// Get returns a pointer to the live block so fields can be edited in place.
func (s *Sequence) Get(id int) (*domain.Block, bool) {
	i := s.Index(id)
	if i < 0 {
		return nil, false
	}
	return &s.blocks[i], true
}

// InsertAt places b at index i, clamped to [0, Len]. Inserting an id that is
// already present is refused.
func (s *Sequence) InsertAt(i int, b domain.Block) bool {
	if s.Index(b.ID) >= 0 {
		return false
	}
	if i < 0 {
		i = 0
	}
	if i > len(s.blocks) {
		i = len(s.blocks)
	}
	s.blocks = append(s.blocks, domain.Block{})
	copy(s.blocks[i+1:], s.blocks[i:])
	s.blocks[i] = b
	return true
}

// InsertBefore places b in front of the block beforeID. When target.AtEnd is
// set, or the target is gone, b is appended.
func (s *Sequence) InsertBefore(target DropTarget, b domain.Block) bool {
	if target.AtEnd {
		return s.InsertAt(len(s.blocks), b)
	}
	i := s.Index(target.BeforeID)
	if i < 0 {
		i = len(s.blocks)
	}
	return s.InsertAt(i, b)
}

// Remove deletes the block with the given id and returns it.
func (s *Sequence) Remove(id int) (domain.Block, bool) {
	i := s.Index(id)
	if i < 0 {
		return domain.Block{}, false
	}
	b := s.blocks[i]
	s.blocks = append(s.blocks[:i], s.blocks[i+1:]...)
	return b, true
}

// MoveBefore moves block id directly in front of block target.
func (s *Sequence) MoveBefore(id, target int) bool {
	if id == target || s.Index(target) < 0 {
		return false
	}
	b, ok := s.Remove(id)
	if !ok {
		return false
	}
	return s.InsertAt(s.Index(target), b)
}

// MoveAfter moves block id directly behind block target.
func (s *Sequence) MoveAfter(id, target int) bool {
	if id == target || s.Index(target) < 0 {
		return false
	}
	b, ok := s.Remove(id)
	if !ok {
		return false
	}
	return s.InsertAt(s.Index(target)+1, b)
}

// swap exchanges the blocks at positions i and j.
func (s *Sequence) swap(i, j int) {
	s.blocks[i], s.blocks[j] = s.blocks[j], s.blocks[i]
}

// MoveUp swaps a block with its predecessor. The first block stays put.
func (s *Sequence) MoveUp(id int) bool {
	i := s.Index(id)
	if i <= 0 {
		return false
	}
	s.swap(i, i-1)
	return true
}

// MoveDown swaps a block with its successor. The last block stays put.
func (s *Sequence) MoveDown(id int) bool {
	i := s.Index(id)
	if i < 0 || i >= len(s.blocks)-1 {
		return false
	}
	s.swap(i, i+1)
	return true
}

func (s *Sequence) Snapshot() domain.Snapshot {
	return domain.NewSnapshot(s.blocks)
}

// Restore replaces the whole sequence with the snapshot's blocks.
func (s *Sequence) Restore(snap domain.Snapshot) {
	s.blocks = snap.Blocks()
}

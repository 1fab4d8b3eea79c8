package domain

// Snapshot is an immutable copy of a document sequence at one point in history.
// Constructors and accessors copy, so a snapshot never aliases live blocks.
type Snapshot struct {
	blocks []Block
}

// NewSnapshot deep-copies blocks into a snapshot.
func NewSnapshot(blocks []Block) Snapshot {
	return Snapshot{blocks: cloneBlocks(blocks)}
}

// Blocks returns a deep copy of the snapshot's blocks.
func (s Snapshot) Blocks() []Block {
	return cloneBlocks(s.blocks)
}

func (s Snapshot) Len() int { return len(s.blocks) }

// MaxID returns the largest block id in the snapshot, or -1 when empty.
func (s Snapshot) MaxID() int {
	max := -1
	for _, b := range s.blocks {
		if b.ID > max {
			max = b.ID
		}
	}
	return max
}

// Equal reports whether two snapshots hold the same blocks in the same order.
func (s Snapshot) Equal(o Snapshot) bool {
	if len(s.blocks) != len(o.blocks) {
		return false
	}
	for i := range s.blocks {
		if !s.blocks[i].Equal(o.blocks[i]) {
			return false
		}
	}
	return true
}

// MarshalJSON and UnmarshalJSON keep the wire form a plain block array.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	if s.blocks == nil {
		return []byte("[]"), nil
	}
	return marshalBlocks(s.blocks)
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	blocks, err := unmarshalBlocks(data)
	if err != nil {
		return err
	}
	s.blocks = blocks
	return nil
}

func cloneBlocks(blocks []Block) []Block {
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		out[i] = b.Clone()
	}
	return out
}

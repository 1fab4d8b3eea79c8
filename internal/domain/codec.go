package domain

import (
	"encoding/json"
	"fmt"
)

func marshalBlocks(blocks []Block) ([]byte, error) {
	return json.Marshal(blocks)
}

func unmarshalBlocks(data []byte) ([]Block, error) {
	var blocks []Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	seen := make(map[int]bool, len(blocks))
	for i := range blocks {
		b := &blocks[i]
		if !b.Type.Valid() {
			return nil, fmt.Errorf("decode snapshot: %w: %q", ErrUnknownBlockType, b.Type)
		}
		if seen[b.ID] {
			return nil, fmt.Errorf("decode snapshot: duplicate block id %d", b.ID)
		}
		seen[b.ID] = true
		if b.Fields == nil {
			b.Fields = map[string]string{}
		}
		for _, f := range b.Type.Fields() {
			if _, ok := b.Fields[f]; !ok {
				b.Fields[f] = ""
			}
		}
	}
	return blocks, nil
}

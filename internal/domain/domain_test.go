package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"pagebuilder/internal/domain"
)

func TestParseBlockType(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.BlockType
		wantErr bool
	}{
		{"text", domain.BlockTypeText, false},
		{"banner", domain.BlockTypeBanner, false},
		{"image", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := domain.ParseBlockType(tt.in)
		if tt.wantErr {
			if !errors.Is(err, domain.ErrUnknownBlockType) {
				t.Errorf("ParseBlockType(%q) err = %v, want ErrUnknownBlockType", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseBlockType(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestNewBlock_DefaultFields(t *testing.T) {
	text := domain.NewBlock(3, domain.BlockTypeText)
	if len(text.Fields) != 1 || text.Fields[domain.FieldContent] != "" {
		t.Errorf("text fields = %v", text.Fields)
	}
	banner := domain.NewBlock(4, domain.BlockTypeBanner)
	if !banner.HasField(domain.FieldHeadline) || !banner.HasField(domain.FieldSubheadline) || banner.HasField(domain.FieldContent) {
		t.Errorf("banner fields = %v", banner.Fields)
	}
	if got := domain.BlockTypeBanner.FieldLabel(domain.FieldHeadline); got != "Edit Headline:" {
		t.Errorf("headline label = %q", got)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	blocks := []domain.Block{domain.NewBlock(0, domain.BlockTypeText)}
	snap := domain.NewSnapshot(blocks)

	blocks[0].Fields[domain.FieldContent] = "changed"
	if snap.Blocks()[0].Fields[domain.FieldContent] != "" {
		t.Fatal("snapshot aliases the source blocks")
	}

	out := snap.Blocks()
	out[0].Fields[domain.FieldContent] = "changed"
	if snap.Blocks()[0].Fields[domain.FieldContent] != "" {
		t.Fatal("snapshot aliases the returned blocks")
	}
	if snap.MaxID() != 0 || domain.NewSnapshot(nil).MaxID() != -1 {
		t.Errorf("MaxID = %d / %d", snap.MaxID(), domain.NewSnapshot(nil).MaxID())
	}
}

func TestSnapshot_JSON(t *testing.T) {
	empty, err := json.Marshal(domain.NewSnapshot(nil))
	if err != nil || string(empty) != "[]" {
		t.Fatalf("empty snapshot = %s, %v", empty, err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(`[{"id":2,"type":"banner","fields":{"headline":"Hi"}}]`), &snap); err != nil {
		t.Fatal(err)
	}
	b := snap.Blocks()[0]
	if b.Fields[domain.FieldHeadline] != "Hi" {
		t.Errorf("headline = %q", b.Fields[domain.FieldHeadline])
	}
	if _, ok := b.Fields[domain.FieldSubheadline]; !ok {
		t.Error("missing fields are not filled in")
	}

	bad := []string{
		`[{"id":1,"type":"video","fields":{}}]`,
		`[{"id":1,"type":"text"},{"id":1,"type":"text"}]`,
		`{"id":1}`,
	}
	for _, in := range bad {
		if err := json.Unmarshal([]byte(in), &snap); err == nil {
			t.Errorf("expected %s to be rejected", in)
		}
	}
}

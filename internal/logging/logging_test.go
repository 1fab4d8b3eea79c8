package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    log.Level
		wantErr bool
	}{
		{"debug", log.DebugLevel, false},
		{"INFO", log.InfoLevel, false},
		{"", log.InfoLevel, false},
		{"warning", log.WarnLevel, false},
		{"error", log.ErrorLevel, false},
		{"loud", log.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, log.DebugLevel)
	ctx := WithLogger(context.Background(), l)
	FromContext(ctx).Debug("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("expected logger from context to write, got %q", buf.String())
	}
	if FromContext(context.Background()) != log.Default() {
		t.Error("expected default logger for empty context")
	}
}

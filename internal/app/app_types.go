package app

import "pagebuilder/internal/editor"

// DragInput is what the canvas sends on dragover and drop: the pointer's
// vertical position and the measured boxes of the rendered blocks.
type DragInput struct {
	Y     float64      `json:"y"`
	Boxes []editor.Box `json:"boxes"`
}

// Settings is the frontend view of the loaded configuration.
type Settings struct {
	MaxHistory int    `json:"maxHistory"`
	Persist    bool   `json:"persist"`
	Journal    string `json:"journal"`
	MCPListen  string `json:"mcpListen"`
}

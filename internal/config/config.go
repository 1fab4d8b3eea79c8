// Package config loads pagebuilder's TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"pagebuilder/internal/logging"
)

// Config holds the application's combined configuration.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Editor  EditorConfig  `toml:"editor"`
	Storage StorageConfig `toml:"storage"`
	MCP     MCPConfig     `toml:"mcp"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"` // empty means stderr
}

type EditorConfig struct {
	MaxHistory int  `toml:"max_history"` // 0 keeps every snapshot
	Persist    bool `toml:"persist"`     // write session journals to the local database
}

type StorageConfig struct {
	Path          string `toml:"path"`
	PruneSchedule string `toml:"prune_schedule"` // cron expression; empty disables pruning
	PruneMaxSteps int    `toml:"prune_max_steps"`
	PruneAfter    string `toml:"prune_after"` // journals idle this long are pruned
}

type MCPConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	// Listen serves MCP over streamable HTTP from the editor window, with
	// destructive tools confirmed in the window. Empty disables it.
	Listen string `toml:"listen"`
}

// PruneAge parses PruneAfter.
func (s StorageConfig) PruneAge() (time.Duration, error) {
	d, err := time.ParseDuration(s.PruneAfter)
	if err != nil {
		return 0, fmt.Errorf("storage.prune_after: %w", err)
	}
	return d, nil
}

// NewDefaultConfig creates a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Editor: EditorConfig{
			MaxHistory: DefaultMaxHistory,
			Persist:    true,
		},
		Storage: StorageConfig{
			Path:          defaultJournalPath(),
			PruneSchedule: DefaultPruneSchedule,
			PruneMaxSteps: DefaultPruneMaxSteps,
			PruneAfter:    DefaultPruneAfter,
		},
		MCP: MCPConfig{Name: AppName + "-mcp", Version: "1.0.0"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/pagebuilder/config.toml (or the OS equivalent).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, ConfigDirName, DefaultConfigFileName)
}

func defaultJournalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultJournalFileName
	}
	return filepath.Join(home, ".local", "share", AppName, DefaultJournalFileName)
}

// Load reads path on top of the defaults. A missing file is not an error.
// Keys the file sets that Config does not know are returned as warnings.
func Load(path string) (*Config, []string, error) {
	cfg := NewDefaultConfig()
	if path == "" {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil, nil
	} else if err != nil {
		return cfg, nil, fmt.Errorf("check config file %q: %w", path, err)
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return NewDefaultConfig(), nil, fmt.Errorf("parse config file %q: %w", path, err)
	}

	var warnings []string
	for _, key := range unknownKeys(meta) {
		warnings = append(warnings, fmt.Sprintf("unrecognized key %q", key))
	}
	warnings = append(warnings, cfg.validate()...)
	return cfg, warnings, nil
}

// unknownKeys lists undecoded keys, dropping keys nested under an unknown
// table that is already listed.
func unknownKeys(meta toml.MetaData) []string {
	var out []string
	reported := map[string]bool{}
	for _, key := range meta.Undecoded() {
		covered := false
		for i := 1; i < len(key); i++ {
			if reported[key[:i].String()] {
				covered = true
				break
			}
		}
		name := key.String()
		reported[name] = true
		if !covered {
			out = append(out, name)
		}
	}
	return out
}

// validate resets invalid values to defaults and reports what it changed.
func (c *Config) validate() []string {
	defaults := NewDefaultConfig()
	var warnings []string

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		warnings = append(warnings, err.Error())
		c.Log.Level = defaults.Log.Level
	}
	if c.Editor.MaxHistory < 0 {
		warnings = append(warnings, fmt.Sprintf("editor.max_history %d is negative", c.Editor.MaxHistory))
		c.Editor.MaxHistory = defaults.Editor.MaxHistory
	}
	if c.Storage.Path == "" {
		c.Storage.Path = defaults.Storage.Path
	}
	if c.Storage.PruneMaxSteps < 1 {
		warnings = append(warnings, fmt.Sprintf("storage.prune_max_steps %d must be at least 1", c.Storage.PruneMaxSteps))
		c.Storage.PruneMaxSteps = defaults.Storage.PruneMaxSteps
	}
	if _, err := c.Storage.PruneAge(); err != nil {
		warnings = append(warnings, err.Error())
		c.Storage.PruneAfter = defaults.Storage.PruneAfter
	}
	if c.MCP.Name == "" {
		c.MCP.Name = defaults.MCP.Name
	}
	if c.MCP.Version == "" {
		c.MCP.Version = defaults.MCP.Version
	}
	return warnings
}

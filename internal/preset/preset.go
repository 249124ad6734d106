// Package preset persists named recording configurations as YAML files
// under the user's config directory.
package preset

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a named preset does not exist in the store.
var ErrNotFound = errors.New("preset not found")

// Record is the serialized form of a recording configuration plus naming
// metadata. Resolution is intentionally absent: it is recomputed from the
// live screen and area when the preset is loaded.
type Record struct {
	Name      string     `yaml:"name"`
	CreatedAt time.Time  `yaml:"created_at"`
	LastUsed  *time.Time `yaml:"last_used,omitempty"`

	DurationMS       int64  `yaml:"duration_ms"`
	Area             string `yaml:"area,omitempty"`
	Screen           int    `yaml:"screen,omitempty"`
	Application      string `yaml:"application,omitempty"`
	Format           string `yaml:"format,omitempty"`
	FPS              int    `yaml:"fps"`
	VideoQuality     string `yaml:"video_quality"`
	AudioQuality     string `yaml:"audio_quality"`
	Microphone       bool   `yaml:"microphone"`
	ForceSystemAudio bool   `yaml:"force_system_audio"`
	ShowCursor       bool   `yaml:"show_cursor"`
	CountdownSeconds int    `yaml:"countdown_seconds"`
}

// Store is the preset persistence contract.
type Store interface {
	// Load returns the named preset, or an error wrapping ErrNotFound.
	Load(name string) (*Record, error)

	// Save writes the preset, overwriting any existing preset of the same
	// name.
	Save(record *Record) error

	// List returns all stored presets sorted by name.
	List() ([]Record, error)

	// Delete removes the named preset, or returns an error wrapping
	// ErrNotFound when it does not exist.
	Delete(name string) error
}

package preset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/reelcap/reelcap/internal/logger"
)

// FileStore persists presets as one YAML file per preset.
type FileStore struct {
	dir string
}

// NewFileStore creates a preset store rooted at dir, creating the directory
// if needed. An empty dir selects the default location under the user's
// config directory.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".config", "reelcap", "presets")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create preset directory: %w", err)
	}

	return &FileStore{dir: dir}, nil
}

// Dir returns the directory presets are stored in.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".yaml")
}

// Load reads the named preset and records its use time best-effort.
func (s *FileStore) Load(name string) (*Record, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read preset %q: %w", name, err)
	}

	var record Record
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse preset %q: %w", name, err)
	}
	if record.Name == "" {
		record.Name = name
	}

	now := time.Now()
	record.LastUsed = &now
	if err := s.write(&record); err != nil {
		logger.WithComponent("preset").Warn().
			Err(err).
			Str("name", name).
			Msg("Failed to record preset use time")
	}

	return &record, nil
}

// Save writes the preset, stamping CreatedAt on first save.
func (s *FileStore) Save(record *Record) error {
	if record.Name == "" {
		return fmt.Errorf("preset name is required")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	if err := s.write(record); err != nil {
		return err
	}

	logger.WithComponent("preset").Info().
		Str("name", record.Name).
		Str("path", s.path(record.Name)).
		Msg("Preset saved")
	return nil
}

func (s *FileStore) write(record *Record) error {
	data, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal preset %q: %w", record.Name, err)
	}
	if err := os.WriteFile(s.path(record.Name), data, 0644); err != nil {
		return fmt.Errorf("failed to write preset %q: %w", record.Name, err)
	}
	return nil
}

// List returns all presets in the store sorted by name.
func (s *FileStore) List() ([]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset directory: %w", err)
	}

	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".yaml")

		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			logger.WithComponent("preset").Warn().
				Err(err).
				Str("name", name).
				Msg("Skipping unreadable preset")
			continue
		}

		var record Record
		if err := yaml.Unmarshal(data, &record); err != nil {
			logger.WithComponent("preset").Warn().
				Err(err).
				Str("name", name).
				Msg("Skipping malformed preset")
			continue
		}
		if record.Name == "" {
			record.Name = name
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})

	return records, nil
}

// Delete removes the named preset.
func (s *FileStore) Delete(name string) error {
	err := os.Remove(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%q: %w", name, ErrNotFound)
		}
		return fmt.Errorf("failed to delete preset %q: %w", name, err)
	}

	logger.WithComponent("preset").Info().
		Str("name", name).
		Msg("Preset deleted")
	return nil
}

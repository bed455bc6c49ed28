// Package settings provides local settings file management for the GUI.
// Settings are stored in settings.json in the program directory and hold
// state that is not worth a config entry: recent input files and the last
// translation direction.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const (
	// SettingsFileName is the name of the settings file
	SettingsFileName = "settings.json"
	// MaxRecentFiles is the number of recent input files kept
	MaxRecentFiles = 10
)

// LocalSettings represents settings stored in the program directory
type LocalSettings struct {
	RecentFiles []string `json:"recent_files"`
	LastFrom    string   `json:"last_from"` // 上次选择的源语言
	LastTo      string   `json:"last_to"`   // 上次选择的目标语言
}

// Manager manages the local settings file
type Manager struct {
	filePath string
	settings *LocalSettings
	mu       sync.RWMutex
}

// NewManager creates a new settings manager.
// It looks for settings.json in the program's directory.
func NewManager() (*Manager, error) {
	exePath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	filePath := filepath.Join(filepath.Dir(exePath), SettingsFileName)

	m := &Manager{
		filePath: filePath,
		settings: &LocalSettings{},
	}
	_ = m.Load() // Ignore error if file doesn't exist
	return m, nil
}

// NewManagerWithPath creates a new settings manager with a custom path.
// Useful for testing.
func NewManagerWithPath(filePath string) *Manager {
	m := &Manager{
		filePath: filePath,
		settings: &LocalSettings{},
	}
	_ = m.Load()
	return m
}

// Load loads settings from the file
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			m.settings = &LocalSettings{}
			return nil
		}
		return err
	}

	var settings LocalSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		m.settings = &LocalSettings{}
		return err
	}

	m.settings = &settings
	return nil
}

// Save saves settings to the file
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save()
}

func (m *Manager) save() error {
	data, err := json.MarshalIndent(m.settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.filePath, data, 0600)
}

// RecentFiles returns the recent input files, most recent first
func (m *Manager) RecentFiles() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.settings.RecentFiles))
	copy(out, m.settings.RecentFiles)
	return out
}

// AddRecentFile records an input file, moving it to the front if already
// present and trimming the list to MaxRecentFiles. The list is saved.
func (m *Manager) AddRecentFile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	files := []string{path}
	for _, f := range m.settings.RecentFiles {
		if f != path {
			files = append(files, f)
		}
	}
	if len(files) > MaxRecentFiles {
		files = files[:MaxRecentFiles]
	}
	m.settings.RecentFiles = files
	return m.save()
}

// Direction returns the last used translation direction
func (m *Manager) Direction() (from, to string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings.LastFrom, m.settings.LastTo
}

// SetDirection records the translation direction and saves
func (m *Manager) SetDirection(from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.LastFrom = from
	m.settings.LastTo = to
	return m.save()
}

// GetFilePath returns the settings file path
func (m *Manager) GetFilePath() string {
	return m.filePath
}

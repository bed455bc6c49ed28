package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManagerWithPath(filepath.Join(t.TempDir(), "settings.json"))
}

func TestManager_RecentFiles(t *testing.T) {
	m := newTestManager(t)

	if files := m.RecentFiles(); len(files) != 0 {
		t.Errorf("fresh manager has recent files: %v", files)
	}

	for _, f := range []string{"a.pptx", "b.pptx", "c.pptx"} {
		if err := m.AddRecentFile(f); err != nil {
			t.Fatalf("AddRecentFile(%q) returned error: %v", f, err)
		}
	}

	files := m.RecentFiles()
	if len(files) != 3 || files[0] != "c.pptx" || files[2] != "a.pptx" {
		t.Errorf("RecentFiles() = %v, want most recent first", files)
	}
}

func TestManager_RecentFilesDedupe(t *testing.T) {
	m := newTestManager(t)

	m.AddRecentFile("a.pptx")
	m.AddRecentFile("b.pptx")
	m.AddRecentFile("a.pptx") // moves to front

	files := m.RecentFiles()
	if len(files) != 2 || files[0] != "a.pptx" || files[1] != "b.pptx" {
		t.Errorf("RecentFiles() = %v", files)
	}
}

func TestManager_RecentFilesTrimmed(t *testing.T) {
	m := newTestManager(t)

	for i := 0; i < MaxRecentFiles+5; i++ {
		m.AddRecentFile(fmt.Sprintf("deck%d.pptx", i))
	}

	files := m.RecentFiles()
	if len(files) != MaxRecentFiles {
		t.Errorf("len(RecentFiles()) = %d, want %d", len(files), MaxRecentFiles)
	}
	if files[0] != fmt.Sprintf("deck%d.pptx", MaxRecentFiles+4) {
		t.Errorf("newest file missing, got %v", files[0])
	}
}

func TestManager_Direction(t *testing.T) {
	m := newTestManager(t)

	from, to := m.Direction()
	if from != "" || to != "" {
		t.Errorf("fresh manager direction = %q -> %q", from, to)
	}

	if err := m.SetDirection("en", "zh"); err != nil {
		t.Fatalf("SetDirection() returned error: %v", err)
	}

	from, to = m.Direction()
	if from != "en" || to != "zh" {
		t.Errorf("Direction() = %q -> %q, want en -> zh", from, to)
	}
}

func TestManager_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	m := NewManagerWithPath(path)
	m.AddRecentFile("deck.pptx")
	m.SetDirection("zh", "en")

	// A fresh manager on the same file sees the state
	m2 := NewManagerWithPath(path)
	if files := m2.RecentFiles(); len(files) != 1 || files[0] != "deck.pptx" {
		t.Errorf("reloaded RecentFiles() = %v", files)
	}
	from, to := m2.Direction()
	if from != "zh" || to != "en" {
		t.Errorf("reloaded Direction() = %q -> %q", from, to)
	}
}

func TestManager_CorruptFileResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{broken"), 0600); err != nil {
		t.Fatal(err)
	}

	m := NewManagerWithPath(path)
	if files := m.RecentFiles(); len(files) != 0 {
		t.Errorf("corrupt settings must reset to empty, got %v", files)
	}
}

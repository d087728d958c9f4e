package settings

import (
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	t.Parallel()
	s := Default()

	want := []string{"Library/", "Temp/", "obj/", "Logs/", "UserSettings/", ".git/", ".vs/", "Builds/", "Build/"}
	if len(s.IgnorePatterns) != len(want) {
		t.Fatalf("Default() IgnorePatterns = %v, want %v", s.IgnorePatterns, want)
	}
	for i, p := range want {
		if s.IgnorePatterns[i] != p {
			t.Errorf("Default() IgnorePatterns[%d] = %q, want %q", i, s.IgnorePatterns[i], p)
		}
	}
	if s.ThumbnailSize != 128 {
		t.Errorf("Default() ThumbnailSize = %d, want 128", s.ThumbnailSize)
	}
	if !s.ScanOnFocus {
		t.Error("Default() ScanOnFocus should be true")
	}
}

func TestLoadCreatesDefaultWhenMissing(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s.ThumbnailSize != 128 {
		t.Errorf("Load() ThumbnailSize = %d, want 128", s.ThumbnailSize)
	}

	// File should now exist on disk with the same defaults.
	s2, err := Load(path)
	if err != nil {
		t.Fatalf("second Load() error: %v", err)
	}
	if len(s2.IgnorePatterns) != len(s.IgnorePatterns) {
		t.Errorf("persisted settings IgnorePatterns mismatch: %v vs %v", s2.IgnorePatterns, s.IgnorePatterns)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "settings.json")

	s := &Settings{
		ProjectRoot:    "/projects/game",
		OutputFolder:   "/exports",
		IgnorePatterns: []string{"Library/"},
		ThumbnailSize:  256,
		ScanOnFocus:    false,
	}
	if err := Save(path, s); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.ProjectRoot != s.ProjectRoot {
		t.Errorf("Load() ProjectRoot = %q, want %q", loaded.ProjectRoot, s.ProjectRoot)
	}
	if loaded.ThumbnailSize != 256 {
		t.Errorf("Load() ThumbnailSize = %d, want 256", loaded.ThumbnailSize)
	}
	if loaded.ScanOnFocus {
		t.Error("Load() ScanOnFocus should be false")
	}
}

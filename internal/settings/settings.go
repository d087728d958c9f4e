// Package settings implements the user-facing settings.json persisted state
// described in spec.md §6, adapted from settings.rs.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/Kalfadda/scythe/internal/apperr"
)

// Settings is the JSON shape of settings.json.
type Settings struct {
	ProjectRoot    string   `json:"project_root,omitempty"`
	OutputFolder   string   `json:"output_folder,omitempty"`
	IgnorePatterns []string `json:"ignore_patterns"`
	ThumbnailSize  int      `json:"thumbnail_size"`
	ScanOnFocus    bool     `json:"scan_on_focus"`
}

// Default reproduces the original implementation's exact default ignore
// list and thumbnail size (settings.rs).
func Default() *Settings {
	return &Settings{
		IgnorePatterns: []string{
			"Library/", "Temp/", "obj/", "Logs/", "UserSettings/",
			".git/", ".vs/", "Builds/", "Build/",
		},
		ThumbnailSize: 128,
		ScanOnFocus:   true,
	}
}

// Load reads settings.json at path, writing out the defaults if the file
// does not yet exist.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s := Default()
		if err := Save(path, s); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, apperr.New(apperr.KindIO, "load settings", err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, apperr.New(apperr.KindJSON, "parse settings", err)
	}
	return &s, nil
}

// Save writes s to path as pretty-printed JSON, creating parent directories
// as needed.
func Save(path string, s *Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperr.New(apperr.KindIO, "create settings directory", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return apperr.New(apperr.KindJSON, "marshal settings", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return apperr.New(apperr.KindIO, "write settings", err)
	}
	return nil
}

// DefaultPath returns the default settings.json location, alongside the
// catalog database.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.Getenv("HOME")
	}
	return filepath.Join(dir, "scythe", "settings.json")
}

// Package state holds scythe's single long-lived process-wide state value:
// the catalog handle, the settings lock, and the cancel/running flags. It is
// initialised once at startup and passed by reference, never duplicated —
// the Go rendering of state.rs's AppState.
package state

import (
	"sync"
	"sync/atomic"

	"github.com/Kalfadda/scythe/internal/catalog"
	"github.com/Kalfadda/scythe/internal/settings"
)

// CancelFlag is a process-wide atomic boolean polled by the walker, the
// resolver, and the preview coordinator at the granularities documented in
// spec.md §4 and §5.
type CancelFlag struct {
	flag atomic.Bool
}

func (c *CancelFlag) Request()          { c.flag.Store(true) }
func (c *CancelFlag) Reset()            { c.flag.Store(false) }
func (c *CancelFlag) IsCancelled() bool { return c.flag.Load() }

// AppState is the application's one piece of global mutable state.
type AppState struct {
	Catalog *catalog.Catalog

	settingsMu sync.RWMutex
	settings   *settings.Settings

	settingsPath string

	Cancel      CancelFlag
	scanRunning atomic.Bool

	ThumbnailDir string
}

// New loads settings.json from settingsPath (creating defaults if absent)
// and opens the catalog at dbPath, returning the single AppState value for
// this process.
func New(dbPath, settingsPath, thumbnailDir string) (*AppState, error) {
	cat, err := catalog.Open(dbPath)
	if err != nil {
		return nil, err
	}

	s, err := settings.Load(settingsPath)
	if err != nil {
		cat.Close()
		return nil, err
	}

	return &AppState{
		Catalog:      cat,
		settings:     s,
		settingsPath: settingsPath,
		ThumbnailDir: thumbnailDir,
	}, nil
}

// Close releases the catalog handle.
func (a *AppState) Close() error { return a.Catalog.Close() }

// Settings returns a copy of the current settings under the read lock.
func (a *AppState) Settings() settings.Settings {
	a.settingsMu.RLock()
	defer a.settingsMu.RUnlock()
	return *a.settings
}

// UpdateSettings applies fn under the write lock and persists the result.
func (a *AppState) UpdateSettings(fn func(*settings.Settings)) error {
	a.settingsMu.Lock()
	defer a.settingsMu.Unlock()
	fn(a.settings)
	return settings.Save(a.settingsPath, a.settings)
}

// RequestCancel sets the cancel flag for the in-flight (or next-checked) job.
func (a *AppState) RequestCancel() { a.Cancel.Request() }

// ResetCancel clears the cancel flag; called at the start of a new scan and
// at the start of a thumbnail regeneration job.
func (a *AppState) ResetCancel() { a.Cancel.Reset() }

// IsCancelled reports the current cancel flag state.
func (a *AppState) IsCancelled() bool { return a.Cancel.IsCancelled() }

// TryStartScan atomically claims the running flag; returns false if a scan
// is already in progress (enforcing "only one scan per AppState at a time").
func (a *AppState) TryStartScan() bool {
	return a.scanRunning.CompareAndSwap(false, true)
}

// FinishScan releases the running flag.
func (a *AppState) FinishScan() { a.scanRunning.Store(false) }

// ScanRunning reports whether a scan is currently in progress.
func (a *AppState) ScanRunning() bool { return a.scanRunning.Load() }

// Package reveal implements reveal_in_explorer: opening the host OS's file
// manager with a given path selected (or, failing that, its parent
// directory open), grounded on the Tauri shell-open call in commands.rs.
package reveal

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/Kalfadda/scythe/internal/apperr"
)

// InExplorer shells out to the platform file manager to reveal path.
func InExplorer(path string) error {
	if _, err := os.Stat(path); err != nil {
		return apperr.New(apperr.KindIO, "reveal.InExplorer", fmt.Errorf("stat %s: %w", path, err))
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("explorer", "/select,", path)
	case "darwin":
		cmd = exec.Command("open", "-R", path)
	default:
		cmd = exec.Command("xdg-open", filepath.Dir(path))
	}

	if err := cmd.Start(); err != nil {
		return apperr.New(apperr.KindOther, "reveal.InExplorer", err)
	}
	return nil
}

// Package walker implements the cancellable filesystem traversal and
// extension-based classifier described in spec.md §4.B, grounded on
// scanner.rs's WalkDir-based scan_files_batch and is_valid_unity_project
// (the latter's gate is deliberately not reproduced — spec.md §9 notes it
// was superseded).
package walker

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Kalfadda/scythe/internal/catalog"
	"github.com/Kalfadda/scythe/internal/state"
)

// Stats summarizes a single scan_batched run.
type Stats struct {
	TotalFiles      int
	UnchangedSkipped int
	NewOrChanged    int
}

// ScannedAsset is a classified asset plus a flag distinguishing a reused
// identity (incremental rescan) from a fresh one.
type ScannedAsset struct {
	Asset   catalog.Asset
	Changed bool
}

// CountScannable returns the count of files that would pass classification,
// reporting progress every 100 files. On cancel it returns the current
// partial count without error.
func CountScannable(root string, ignore []string, cancel *state.CancelFlag, progress func(count int)) (int, error) {
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if cancel != nil && cancel.IsCancelled() {
			return filepath.SkipAll
		}
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && ShouldIgnore(rel, ignore) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.EqualFold(filepath.Ext(path), ".meta") {
			return nil
		}
		if ShouldIgnore(rel, ignore) {
			return nil
		}
		if _, ok := Classify(path); !ok {
			return nil
		}

		count++
		if progress != nil && count%100 == 0 {
			progress(count)
		}
		return nil
	})
	if err != nil && err != filepath.SkipAll {
		return count, err
	}
	return count, nil
}

// ScanBatched streams batches of classified assets to callback. existing
// enables incremental rescans: a file whose (mtime, size) match an existing
// entry is skipped entirely and counted in stats.UnchangedSkipped; otherwise
// the existing id is reused (if present) and the record is emitted as
// "changed". callback returning false terminates the walk gracefully.
// Cancellation is checked before each directory-entry inspection.
func ScanBatched(
	root, projectID string,
	ignore []string,
	batchSize int,
	cancel *state.CancelFlag,
	existing catalog.ExistingIndex,
	callback func(batch []ScannedAsset, totalSoFar int, currentPath string) bool,
) (Stats, error) {
	var stats Stats
	batch := make([]ScannedAsset, 0, batchSize)
	stop := false

	flush := func(currentPath string) bool {
		if len(batch) == 0 {
			return true
		}
		cont := callback(batch, stats.TotalFiles, currentPath)
		batch = make([]ScannedAsset, 0, batchSize)
		return cont
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if stop {
			return filepath.SkipAll
		}
		if cancel != nil && cancel.IsCancelled() {
			stop = true
			return filepath.SkipAll
		}
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && ShouldIgnore(rel, ignore) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.EqualFold(filepath.Ext(path), ".meta") {
			return nil
		}
		if ShouldIgnore(rel, ignore) {
			return nil
		}
		kind, ok := Classify(path)
		if !ok {
			return nil
		}

		info, statErr := d.Info()
		if statErr != nil {
			return nil
		}
		sizeBytes := info.Size()
		modTime := info.ModTime().Unix()

		stats.TotalFiles++

		if ex, found := existing[rel]; found && ex.ModifiedTime == modTime && ex.SizeBytes == sizeBytes {
			stats.UnchangedSkipped++
			return nil
		}
		stats.NewOrChanged++

		id := uuid.NewString()
		changed := false
		if ex, found := existing[rel]; found {
			id = ex.ID
			changed = true
		}

		var guidPtr *string
		if g, ok := readMetaGUID(path); ok {
			guidPtr = &g
		}

		asset := catalog.Asset{
			ID:           id,
			ProjectID:    projectID,
			AbsolutePath: path,
			RelativePath: rel,
			FileName:     filepath.Base(path),
			Extension:    strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")),
			AssetType:    kind,
			SizeBytes:    sizeBytes,
			ModifiedTime: modTime,
			UnityGUID:    guidPtr,
		}

		batch = append(batch, ScannedAsset{Asset: asset, Changed: changed})
		if len(batch) >= batchSize {
			if !flush(rel) {
				stop = true
				return filepath.SkipAll
			}
		}
		return nil
	})
	if !stop {
		flush("")
	}
	if err != nil && err != filepath.SkipAll {
		return stats, err
	}
	return stats, nil
}

func readMetaGUID(assetPath string) (string, bool) {
	metaPath := assetPath + ".meta"
	content, err := os.ReadFile(metaPath)
	if err != nil {
		return "", false
	}
	return ReadUnityGUID(content)
}

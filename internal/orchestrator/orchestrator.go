// Package orchestrator implements the scan job's phased state machine,
// progress fan-out, and cancellation, adapted from internal/sync/worker.go's
// background-worker lifecycle (Start/stopCh/doneCh/running) generalized from
// "sync on a ticker" to "run one phased job to completion or cancellation."
package orchestrator

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/Kalfadda/scythe/internal/catalog"
	"github.com/Kalfadda/scythe/internal/indexer"
	"github.com/Kalfadda/scythe/internal/resolver"
	"github.com/Kalfadda/scythe/internal/settings"
	"github.com/Kalfadda/scythe/internal/state"
	"github.com/Kalfadda/scythe/internal/walker"
)

// Phase is one of the string tags emitted in progress events.
type Phase string

const (
	PhaseCounting     Phase = "counting"
	PhaseIndexing     Phase = "indexing"
	PhaseDependencies Phase = "dependencies"
	PhaseThumbnails   Phase = "thumbnails"
	PhaseComplete     Phase = "complete"
	PhaseCancelled    Phase = "cancelled"
)

// ScanProgress is the scan-progress event payload from spec.md §6.
type ScanProgress struct {
	Scanned     int    `json:"scanned"`
	Total       *int   `json:"total,omitempty"`
	CurrentPath string `json:"current_path"`
	Phase       Phase  `json:"phase"`
}

const indexingBatchSize = 25
const refreshThrottle = 200 * time.Millisecond

// Orchestrator runs the scan job: counting → indexing → dependencies →
// complete, with cancellation observed at every documented granularity.
type Orchestrator struct {
	cat      *catalog.Catalog
	indexer  *indexer.Indexer
	resolver *resolver.Resolver
	log      zerolog.Logger
}

func New(cat *catalog.Catalog, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		cat:      cat,
		indexer:  indexer.New(cat, log),
		resolver: resolver.New(cat, log),
		log:      log,
	}
}

// Run executes one scan to completion or cancellation, sending progress
// events to the (caller-owned, buffered) events channel. It never closes
// the channel — the caller does, after Run returns. On success,
// update_project_scan_time is called exactly once.
func (o *Orchestrator) Run(ctx context.Context, app *state.AppState, project catalog.Project, settings settings.Settings, events chan<- ScanProgress) error {
	emit := func(p ScanProgress) {
		select {
		case events <- p:
		case <-ctx.Done():
		}
	}

	// Phase: counting
	emit(ScanProgress{Phase: PhaseCounting})
	total, err := walker.CountScannable(project.RootPath, settings.IgnorePatterns, &app.Cancel, func(n int) {
		emit(ScanProgress{Scanned: n, Phase: PhaseCounting})
	})
	if app.IsCancelled() {
		emit(ScanProgress{Scanned: total, Phase: PhaseCancelled})
		return nil
	}
	if err != nil {
		return err
	}

	// Phase: indexing
	emit(ScanProgress{Total: &total, Phase: PhaseIndexing})
	existing, err := o.cat.GetExistingIndex(ctx, project.ID)
	if err != nil {
		return err
	}

	var lastRefresh time.Time
	scannedSoFar := 0
	stats, err := walker.ScanBatched(project.RootPath, project.ID, settings.IgnorePatterns, indexingBatchSize, &app.Cancel, existing,
		func(batch []walker.ScannedAsset, totalSoFar int, currentPath string) bool {
			assets := make([]catalog.Asset, len(batch))
			for i, b := range batch {
				assets[i] = b.Asset
			}
			if _, err := o.indexer.UpsertBatch(ctx, assets); err != nil {
				o.log.Error().Err(err).Msg("indexing batch failed")
			}
			scannedSoFar += len(batch)

			if time.Since(lastRefresh) >= refreshThrottle {
				emit(ScanProgress{Scanned: scannedSoFar, Total: &total, CurrentPath: currentPath, Phase: PhaseIndexing})
				lastRefresh = time.Now()
			}

			return !app.IsCancelled()
		},
	)
	if err != nil {
		return err
	}
	if app.IsCancelled() {
		emit(ScanProgress{Scanned: stats.TotalFiles, Phase: PhaseCancelled})
		return nil
	}

	// Phase: dependencies
	emit(ScanProgress{Phase: PhaseDependencies})
	_, err = o.resolver.ResolveAllForProject(ctx, project.ID, &app.Cancel, func(processed, total int) {
		emit(ScanProgress{Scanned: processed, Total: &total, Phase: PhaseDependencies})
	})
	if err != nil {
		return err
	}
	if app.IsCancelled() {
		emit(ScanProgress{Phase: PhaseCancelled})
		return nil
	}

	// Thumbnail generation is deferred to regenerate_thumbnails, per
	// spec.md §4.E's preferred design.
	if err := o.cat.UpdateProjectScanTime(ctx, project.ID, int64(stats.TotalFiles)); err != nil {
		return err
	}
	emit(ScanProgress{Scanned: stats.TotalFiles, Total: &total, Phase: PhaseComplete})
	return nil
}

// StartBackground launches Run on a background goroutine, enforcing "only
// one scan per AppState at a time" via app.TryStartScan, and returns
// immediately with the event channel the caller should drain and a done
// channel closed when the job (successfully or not) finishes.
func (o *Orchestrator) StartBackground(ctx context.Context, app *state.AppState, project catalog.Project, st settings.Settings) (events <-chan ScanProgress, done <-chan error, started bool) {
	if !app.TryStartScan() {
		return nil, nil, false
	}
	app.ResetCancel()

	ch := make(chan ScanProgress, 16)
	errCh := make(chan error, 1)

	go func() {
		defer app.FinishScan()
		defer close(ch)
		err := o.Run(ctx, app, project, st, ch)
		errCh <- err
		close(errCh)
	}()

	return ch, errCh, true
}

// ProjectDisplayName derives a human name from a root path, matching the
// original's convention of using the final path component.
func ProjectDisplayName(root string) string {
	name := filepath.Base(filepath.Clean(root))
	if name == "." || name == string(filepath.Separator) {
		return root
	}
	return name
}

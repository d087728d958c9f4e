package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Kalfadda/scythe/internal/settings"
	"github.com/Kalfadda/scythe/internal/state"
)

func newTestApp(t *testing.T, root string) *state.AppState {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	settingsPath := filepath.Join(t.TempDir(), "settings.json")

	app, err := state.New(dbPath, settingsPath, t.TempDir())
	if err != nil {
		t.Fatalf("state.New() error = %v", err)
	}
	t.Cleanup(func() { app.Close() })

	if err := app.UpdateSettings(func(s *settings.Settings) {
		s.ProjectRoot = root
	}); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	return app
}

func TestRunScansAndResolvesDependencies(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	texGUID := "33333333333333333333333333333333"[:32]
	mustWrite(t, root, "tex.png", "fakepngbytes")
	mustWrite(t, root, "tex.png.meta", "guid: "+texGUID+"\n")
	mustWrite(t, root, "mat.mat", "m_Shader: {fileID: 1, guid: aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa}\nm_TexEnvs:\n- _MainTex:\n    m_Texture: {fileID: 1, guid: "+texGUID+"}\n")

	app := newTestApp(t, root)
	project, err := app.Catalog.GetOrCreateProject(context.Background(), root, "Fixture")
	if err != nil {
		t.Fatalf("GetOrCreateProject() error = %v", err)
	}

	orch := New(app.Catalog, zerolog.Nop())
	events := make(chan ScanProgress, 64)

	go func() {
		for range events {
		}
	}()

	if err := orch.Run(context.Background(), app, project, app.Settings(), events); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	close(events)

	page, err := app.Catalog.GetAssets(context.Background(), project.ID, "", nil, 1, 10)
	if err != nil {
		t.Fatalf("GetAssets() error = %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("GetAssets() Total = %d, want 2 (tex.png, mat.mat)", page.Total)
	}

	updated, ok, err := app.Catalog.GetProject(context.Background(), project.ID)
	if err != nil || !ok {
		t.Fatalf("GetProject() ok=%v err=%v", ok, err)
	}
	if updated.LastScanTime == 0 {
		t.Error("Run() should set last_scan_time on success")
	}

	mat, err := app.Catalog.GetAssets(context.Background(), project.ID, "mat", nil, 1, 1)
	if err != nil || len(mat.Assets) == 0 {
		t.Fatalf("lookup material asset: total=%d err=%v", mat.Total, err)
	}
	deps, err := app.Catalog.GetDependencies(context.Background(), mat.Assets[0].ID)
	if err != nil {
		t.Fatalf("GetDependencies() error = %v", err)
	}
	if len(deps) != 2 {
		t.Fatalf("GetDependencies() = %+v, want two edges (tex.png and the unresolved shader guid)", deps)
	}
	for _, d := range deps {
		switch {
		case d.ToGUID == texGUID && (d.RelationType != "material_texture" || d.ToAssetID == nil):
			t.Errorf("texture edge = %+v, want a resolved material_texture edge", d)
		case d.ToGUID != texGUID && (d.RelationType != "reference" || d.ToAssetID != nil):
			t.Errorf("shader edge = %+v, want an unresolved reference edge", d)
		}
	}
}

func TestRunHonorsCancelBeforeIndexing(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	mustWrite(t, root, "tex.png", "fakepngbytes")

	app := newTestApp(t, root)
	project, err := app.Catalog.GetOrCreateProject(context.Background(), root, "Fixture")
	if err != nil {
		t.Fatalf("GetOrCreateProject() error = %v", err)
	}

	app.RequestCancel()

	orch := New(app.Catalog, zerolog.Nop())
	events := make(chan ScanProgress, 64)
	var seen []ScanProgress
	done := make(chan struct{})
	go func() {
		for ev := range events {
			seen = append(seen, ev)
		}
		close(done)
	}()

	if err := orch.Run(context.Background(), app, project, app.Settings(), events); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	close(events)
	<-done

	last := seen[len(seen)-1]
	if last.Phase != PhaseCancelled {
		t.Errorf("last phase = %q, want %q", last.Phase, PhaseCancelled)
	}
}

func TestStartBackgroundRejectsConcurrentScan(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	app := newTestApp(t, root)
	project, err := app.Catalog.GetOrCreateProject(context.Background(), root, "Fixture")
	if err != nil {
		t.Fatalf("GetOrCreateProject() error = %v", err)
	}

	orch := New(app.Catalog, zerolog.Nop())
	_, done, started := orch.StartBackground(context.Background(), app, project, app.Settings())
	if !started {
		t.Fatal("first StartBackground() should succeed")
	}

	_, _, startedAgain := orch.StartBackground(context.Background(), app, project, app.Settings())
	if startedAgain {
		t.Error("second concurrent StartBackground() should be rejected")
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("first scan never finished")
	}
}

func mustWrite(t *testing.T, root, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
}

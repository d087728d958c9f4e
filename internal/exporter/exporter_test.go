package exporter

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Kalfadda/scythe/internal/catalog"
	"github.com/Kalfadda/scythe/internal/resolver"
)

// newTestFixture builds a catalog with a prefab→prefab→prefab cycle so
// exports can be verified against spec.md §8's cycle scenario.
func newTestFixture(t *testing.T) (*catalog.Catalog, *resolver.Resolver, catalog.Project, map[string]catalog.Asset) {
	t.Helper()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	assetsDir := t.TempDir()

	cat, err := catalog.Open(dbPath)
	if err != nil {
		t.Fatalf("catalog.Open() error = %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	project, err := cat.GetOrCreateProject(ctx, assetsDir, "TestProject")
	if err != nil {
		t.Fatalf("GetOrCreateProject() error = %v", err)
	}

	mustWrite := func(name, content string) string {
		path := filepath.Join(assetsDir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write fixture %s: %v", name, err)
		}
		return path
	}

	p1GUID := "11111111111111111111111111111111"
	p2GUID := "22222222222222222222222222222222"

	p1Path := mustWrite("p1.prefab", "guid: "+p2GUID+"\n")
	p2Path := mustWrite("p2.prefab", "guid: "+p1GUID+"\n")

	assets := map[string]catalog.Asset{}
	for _, spec := range []struct {
		name, path, guid string
	}{
		{"p1.prefab", p1Path, p1GUID},
		{"p2.prefab", p2Path, p2GUID},
	} {
		guid := spec.guid
		a := catalog.Asset{
			ProjectID:    project.ID,
			AbsolutePath: spec.path,
			RelativePath: spec.name,
			FileName:     spec.name,
			Extension:    ".prefab",
			AssetType:    catalog.KindPrefab,
			SizeBytes:    64,
			ModifiedTime: 1000,
			UnityGUID:    &guid,
		}
		if err := cat.UpsertAsset(ctx, cat.Store().DB(), &a); err != nil {
			t.Fatalf("UpsertAsset(%s) error = %v", spec.name, err)
		}
		stored, ok, err := cat.GetAssetByGUID(ctx, project.ID, spec.guid)
		if err != nil || !ok {
			t.Fatalf("GetAssetByGUID(%s) ok=%v err=%v", spec.name, ok, err)
		}
		assets[spec.name] = stored
	}

	log := zerolog.Nop()
	res := resolver.New(cat, log)
	if _, err := res.ResolveAllForProject(ctx, project.ID, nil, nil); err != nil {
		t.Fatalf("ResolveAllForProject() error = %v", err)
	}

	return cat, res, project, assets
}

func TestExportBundleWithCycle(t *testing.T) {
	t.Parallel()
	cat, res, _, assets := newTestFixture(t)
	exp := New(cat, res, zerolog.Nop())

	destDir := t.TempDir()
	result := exp.ExportBundle(context.Background(), assets["p1.prefab"].ID, destDir, DefaultDepth)
	if !result.Success {
		t.Fatalf("ExportBundle() failed: %v", result.Error)
	}
	if result.FileCount != 2 {
		t.Errorf("FileCount = %d, want 2 (no infinite loop on cycle)", result.FileCount)
	}
	if len(result.Manifest.Assets) != 2 {
		t.Errorf("manifest.Assets = %d, want 2", len(result.Manifest.Assets))
	}
	if len(result.Manifest.DependencyGraph) != 2 {
		t.Errorf("manifest.DependencyGraph = %d edges, want 2 (p1->p2, p2->p1)", len(result.Manifest.DependencyGraph))
	}

	for _, name := range []string{"p1.prefab", "p2.prefab"} {
		if _, err := os.Stat(filepath.Join(destDir, name)); err != nil {
			t.Errorf("exported file %s missing: %v", name, err)
		}
	}

	manifestData, err := os.ReadFile(filepath.Join(destDir, "manifest.json"))
	if err != nil {
		t.Fatalf("read manifest.json: %v", err)
	}
	var onDisk Manifest
	if err := json.Unmarshal(manifestData, &onDisk); err != nil {
		t.Fatalf("unmarshal manifest.json: %v", err)
	}
	if onDisk.Version != manifestVersion {
		t.Errorf("manifest version = %q, want %q", onDisk.Version, manifestVersion)
	}
}

func TestExportFileSingleFileDegenerate(t *testing.T) {
	t.Parallel()
	cat, res, _, assets := newTestFixture(t)
	_ = res
	exp := New(cat, res, zerolog.Nop())

	destDir := t.TempDir()
	result := exp.ExportFile(context.Background(), assets["p1.prefab"].ID, destDir)
	if !result.Success {
		t.Fatalf("ExportFile() failed: %v", result.Error)
	}
	if _, err := os.Stat(filepath.Join(destDir, "manifest.json")); err == nil {
		t.Error("ExportFile() should not write a manifest.json")
	}
	if _, err := os.Stat(filepath.Join(destDir, "p1.prefab")); err != nil {
		t.Errorf("exported file missing: %v", err)
	}
}

func TestGetBundlePreviewSizesClosure(t *testing.T) {
	t.Parallel()
	cat, res, _, assets := newTestFixture(t)
	exp := New(cat, res, zerolog.Nop())

	preview, err := exp.GetBundlePreview(context.Background(), assets["p1.prefab"].ID, DefaultDepth)
	if err != nil {
		t.Fatalf("GetBundlePreview() error = %v", err)
	}
	if len(preview.Dependencies) != 1 {
		t.Errorf("preview.Dependencies = %d, want 1 (p2.prefab)", len(preview.Dependencies))
	}
	if preview.TotalSizeBytes != 128 {
		t.Errorf("preview.TotalSizeBytes = %d, want 128 (two 64-byte assets)", preview.TotalSizeBytes)
	}
}

func TestExportBundleAssetNotFound(t *testing.T) {
	t.Parallel()
	cat, res, _, _ := newTestFixture(t)
	exp := New(cat, res, zerolog.Nop())

	result := exp.ExportBundle(context.Background(), "nonexistent-id", t.TempDir(), DefaultDepth)
	if result.Success {
		t.Fatal("ExportBundle() on unknown asset should fail")
	}
}

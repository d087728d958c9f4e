package indexer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Kalfadda/scythe/internal/catalog"
)

func TestUpsertBatchCommitsAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cat, err := catalog.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("catalog.Open() error = %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	project, err := cat.GetOrCreateProject(ctx, "/tmp/proj", "Proj")
	if err != nil {
		t.Fatalf("GetOrCreateProject() error = %v", err)
	}

	ix := New(cat, zerolog.Nop())
	assets := []catalog.Asset{
		{ProjectID: project.ID, AbsolutePath: "/tmp/a.png", RelativePath: "a.png", FileName: "a.png", AssetType: catalog.KindTexture},
		{ProjectID: project.ID, AbsolutePath: "/tmp/b.png", RelativePath: "b.png", FileName: "b.png", AssetType: catalog.KindTexture},
	}

	ok, err := ix.UpsertBatch(ctx, assets)
	if err != nil {
		t.Fatalf("UpsertBatch() error = %v", err)
	}
	if ok != 2 {
		t.Errorf("UpsertBatch() ok = %d, want 2", ok)
	}

	page, err := cat.GetAssets(ctx, project.ID, "", nil, 1, 10)
	if err != nil {
		t.Fatalf("GetAssets() error = %v", err)
	}
	if page.Total != 2 {
		t.Errorf("GetAssets() Total = %d, want 2", page.Total)
	}
}

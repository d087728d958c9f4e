// Package exporter is the Bundle Exporter: given a root asset, it walks the
// resolved dependency closure, copies the root plus every dependency (with
// sidecar .meta files) into a destination directory, and writes a
// manifest.json describing what was exported. Grounded on spec.md §4.F and
// the original's bundle export command in scanner.rs/commands.rs.
package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/Kalfadda/scythe/internal/apperr"
	"github.com/Kalfadda/scythe/internal/catalog"
	"github.com/Kalfadda/scythe/internal/resolver"
)

// DefaultDepth is the transitive-closure traversal bound used when the
// caller doesn't specify one.
const DefaultDepth = 5

const manifestVersion = "1.0"

// ManifestAsset is one entry in manifest.json's exported-assets list.
type ManifestAsset struct {
	RelativePath string           `json:"relative_path"`
	AssetType    catalog.AssetKind `json:"asset_type"`
	EngineGUID   *string          `json:"engine_guid,omitempty"`
}

// ManifestEdge is one entry in manifest.json's restricted edge list.
type ManifestEdge struct {
	FromRelative string `json:"from_relative"`
	ToRelative   string `json:"to_relative"`
	RelationType string `json:"relation_type"`
}

// Manifest is the full manifest.json document written at the bundle root.
type Manifest struct {
	Version        string          `json:"version"`
	ExportedAt     string          `json:"exported_at"`
	ProjectName    string          `json:"project_name"`
	RootRelative   string          `json:"root_asset"`
	Assets         []ManifestAsset `json:"assets"`
	DependencyGraph []ManifestEdge `json:"dependency_graph"`
}

// Result is the outcome of an export, mirroring spec.md's ExportResult.
type Result struct {
	Success   bool
	Error     error
	Manifest  *Manifest
	FileCount int
}

// BundlePreview is the supplemented read-only variant of export (spec.md
// §10's get_bundle_preview): it computes the same closure and size total
// without copying anything to disk.
type BundlePreview struct {
	RootAsset      catalog.Asset
	Dependencies   []catalog.Asset
	TotalSizeBytes int64
}

// Exporter copies assets and their resolved dependency closures to disk.
type Exporter struct {
	cat *catalog.Catalog
	res *resolver.Resolver
	log zerolog.Logger
}

func New(cat *catalog.Catalog, res *resolver.Resolver, log zerolog.Logger) *Exporter {
	return &Exporter{cat: cat, res: res, log: log}
}

// ExportFile performs the single-file export degenerate case: copy the
// asset plus its sidecar .meta, with no manifest.
func (e *Exporter) ExportFile(ctx context.Context, assetID, destDir string) Result {
	a, ok, err := e.cat.GetAsset(ctx, assetID)
	if err != nil {
		return Result{Error: apperr.New(apperr.KindCatalog, "exporter.ExportFile", err)}
	}
	if !ok {
		return Result{Error: apperr.New(apperr.KindAssetNotFound, "exporter.ExportFile", fmt.Errorf("asset %s", assetID))}
	}

	if err := copyAssetWithSidecar(a, destDir); err != nil {
		return Result{Error: apperr.New(apperr.KindIO, "exporter.ExportFile", err)}
	}
	return Result{Success: true, FileCount: 1}
}

// ExportBundle copies the root asset plus its resolved transitive
// dependency closure (bounded by depth) into destDir, and writes
// manifest.json describing the result.
func (e *Exporter) ExportBundle(ctx context.Context, assetID, destDir string, depth int) Result {
	if depth <= 0 {
		depth = DefaultDepth
	}

	root, ok, err := e.cat.GetAsset(ctx, assetID)
	if err != nil {
		return Result{Error: apperr.New(apperr.KindCatalog, "exporter.ExportBundle", err)}
	}
	if !ok {
		return Result{Error: apperr.New(apperr.KindAssetNotFound, "exporter.ExportBundle", fmt.Errorf("asset %s", assetID))}
	}

	project, ok, err := e.cat.GetProject(ctx, root.ProjectID)
	if err != nil {
		return Result{Error: apperr.New(apperr.KindCatalog, "exporter.ExportBundle", err)}
	}
	if !ok {
		return Result{Error: apperr.New(apperr.KindInvalidProject, "exporter.ExportBundle", fmt.Errorf("project %s", root.ProjectID))}
	}

	closureIDs, err := e.res.DependencyTree(ctx, root.ID, depth)
	if err != nil {
		return Result{Error: apperr.New(apperr.KindCatalog, "exporter.ExportBundle", err)}
	}

	assets, err := e.resolveAndDedup(ctx, root, closureIDs)
	if err != nil {
		return Result{Error: apperr.New(apperr.KindCatalog, "exporter.ExportBundle", err)}
	}

	fileCount := 0
	for _, a := range assets {
		if _, err := os.Stat(a.AbsolutePath); err != nil {
			e.log.Warn().Str("asset_id", a.ID).Str("path", a.AbsolutePath).Msg("export: source missing, skipping")
			continue
		}
		if err := copyAssetWithSidecar(a, destDir); err != nil {
			return Result{Error: apperr.New(apperr.KindIO, "exporter.ExportBundle", err)}
		}
		fileCount++
	}

	edges, err := e.restrictedEdges(ctx, assets)
	if err != nil {
		return Result{Error: apperr.New(apperr.KindCatalog, "exporter.ExportBundle", err)}
	}

	manifest := e.buildManifest(project, root, assets, edges)
	if err := writeManifest(destDir, manifest); err != nil {
		return Result{Error: apperr.New(apperr.KindIO, "exporter.ExportBundle", err)}
	}

	return Result{Success: true, Manifest: manifest, FileCount: fileCount}
}

// GetBundlePreview computes the same root+closure set as ExportBundle, sized
// but never copied, for the UI to show "this will export N files, M bytes"
// before committing to disk.
func (e *Exporter) GetBundlePreview(ctx context.Context, assetID string, depth int) (BundlePreview, error) {
	if depth <= 0 {
		depth = DefaultDepth
	}
	root, ok, err := e.cat.GetAsset(ctx, assetID)
	if err != nil {
		return BundlePreview{}, err
	}
	if !ok {
		return BundlePreview{}, apperr.New(apperr.KindAssetNotFound, "exporter.GetBundlePreview", fmt.Errorf("asset %s", assetID))
	}

	closureIDs, err := e.res.DependencyTree(ctx, root.ID, depth)
	if err != nil {
		return BundlePreview{}, err
	}

	deps := make([]catalog.Asset, 0, len(closureIDs))
	total := root.SizeBytes
	for _, id := range closureIDs {
		a, ok, err := e.cat.GetAsset(ctx, id)
		if err != nil {
			return BundlePreview{}, err
		}
		if !ok {
			continue
		}
		deps = append(deps, a)
		total += a.SizeBytes
	}

	return BundlePreview{RootAsset: root, Dependencies: deps, TotalSizeBytes: total}, nil
}

// resolveAndDedup turns the root plus a list of dependency asset IDs into
// the deduplicated-by-relative_path export set, root first.
func (e *Exporter) resolveAndDedup(ctx context.Context, root catalog.Asset, closureIDs []string) ([]catalog.Asset, error) {
	seen := map[string]bool{root.RelativePath: true}
	assets := []catalog.Asset{root}

	for _, id := range closureIDs {
		a, ok, err := e.cat.GetAsset(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok || seen[a.RelativePath] {
			continue
		}
		seen[a.RelativePath] = true
		assets = append(assets, a)
	}
	return assets, nil
}

// restrictedEdges returns every dependency edge whose source and resolved
// target both appear in the exported set.
func (e *Exporter) restrictedEdges(ctx context.Context, assets []catalog.Asset) ([]ManifestEdge, error) {
	byID := make(map[string]catalog.Asset, len(assets))
	for _, a := range assets {
		byID[a.ID] = a
	}

	var edges []ManifestEdge
	for _, a := range assets {
		deps, err := e.cat.GetDependencies(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		for _, d := range deps {
			if d.ToAssetID == nil {
				continue
			}
			target, ok := byID[*d.ToAssetID]
			if !ok {
				continue
			}
			edges = append(edges, ManifestEdge{
				FromRelative: a.RelativePath,
				ToRelative:   target.RelativePath,
				RelationType: d.RelationType,
			})
		}
	}
	return edges, nil
}

func (e *Exporter) buildManifest(project catalog.Project, root catalog.Asset, assets []catalog.Asset, edges []ManifestEdge) *Manifest {
	manifestAssets := make([]ManifestAsset, len(assets))
	for i, a := range assets {
		manifestAssets[i] = ManifestAsset{
			RelativePath: a.RelativePath,
			AssetType:    a.AssetType,
			EngineGUID:   a.UnityGUID,
		}
	}
	return &Manifest{
		Version:         manifestVersion,
		ExportedAt:      time.Unix(catalog.Now(), 0).UTC().Format(time.RFC3339),
		ProjectName:     project.Name,
		RootRelative:    root.RelativePath,
		Assets:          manifestAssets,
		DependencyGraph: edges,
	}
}

func writeManifest(destDir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(destDir, "manifest.json"), data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// copyAssetWithSidecar creates destDir/<relative_path>'s parent directories,
// copies the asset's source file, and best-effort copies a sibling .meta
// sidecar if one exists.
func copyAssetWithSidecar(a catalog.Asset, destDir string) error {
	destPath := filepath.Join(destDir, filepath.FromSlash(a.RelativePath))
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(destPath), err)
	}
	if err := copyFile(a.AbsolutePath, destPath); err != nil {
		return fmt.Errorf("copy %s: %w", a.RelativePath, err)
	}

	sidecarSrc := a.AbsolutePath + ".meta"
	if _, err := os.Stat(sidecarSrc); err == nil {
		if err := copyFile(sidecarSrc, destPath+".meta"); err != nil {
			// Sidecar copy failure is explicitly non-fatal per spec.md §4.F.
			_ = err
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

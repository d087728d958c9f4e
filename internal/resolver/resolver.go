// Package resolver extracts directed GUID edges from textual asset files
// and resolves them against the catalog, grounded on deps.rs.
package resolver

import (
	"context"
	"database/sql"
	"os"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/Kalfadda/scythe/internal/catalog"
	"github.com/Kalfadda/scythe/internal/state"
)

var guidPattern = regexp.MustCompile(`guid:\s*([a-f0-9]{32})`)

// inScope is the set of asset kinds the GUID resolver reads as text.
var inScope = map[catalog.AssetKind]bool{
	catalog.KindMaterial:         true,
	catalog.KindPrefab:           true,
	catalog.KindScene:            true,
	catalog.KindScriptableObject: true,
}

// relationTable is the exhaustive (source, target) → relation mapping from
// spec.md §4.D; any pair not present here resolves to "reference".
var relationTable = map[[2]catalog.AssetKind]string{
	{catalog.KindMaterial, catalog.KindTexture}: "material_texture",
	{catalog.KindMaterial, catalog.KindShader}:  "material_shader",
	{catalog.KindPrefab, catalog.KindMaterial}:  "prefab_material",
	{catalog.KindPrefab, catalog.KindModel}:     "prefab_model",
	{catalog.KindPrefab, catalog.KindPrefab}:    "prefab_prefab",
	{catalog.KindPrefab, catalog.KindTexture}:   "prefab_texture",
	{catalog.KindScene, catalog.KindPrefab}:     "scene_prefab",
	{catalog.KindScene, catalog.KindMaterial}:   "scene_material",
}

func inferRelationType(sourceKind, targetKind catalog.AssetKind) string {
	if rel, ok := relationTable[[2]catalog.AssetKind{sourceKind, targetKind}]; ok {
		return rel
	}
	if sourceKind == catalog.KindScene {
		return "scene_reference"
	}
	return "reference"
}

// Resolver computes dependency edges for in-scope assets.
type Resolver struct {
	cat *catalog.Catalog
	log zerolog.Logger
}

func New(cat *catalog.Catalog, log zerolog.Logger) *Resolver {
	return &Resolver{cat: cat, log: log}
}

// extractGUIDs scans text for all guid: matches, deduplicated, excluding
// selfGUID if non-empty.
func extractGUIDs(text []byte, selfGUID string) []string {
	matches := guidPattern.FindAllSubmatch(text, -1)
	seen := make(map[string]bool, len(matches))
	var guids []string
	for _, m := range matches {
		g := string(m[1])
		if g == selfGUID || seen[g] {
			continue
		}
		seen[g] = true
		guids = append(guids, g)
	}
	return guids
}

// resolveForAsset computes the fresh dependency set for one in-scope asset.
// Read errors (encoding or I/O) yield an empty edge set, not a hard failure.
func (r *Resolver) resolveForAsset(ctx context.Context, a catalog.Asset) []catalog.Dependency {
	if !inScope[a.AssetType] {
		return nil
	}
	content, err := os.ReadFile(a.AbsolutePath)
	if err != nil {
		return nil
	}

	selfGUID := ""
	if a.UnityGUID != nil {
		selfGUID = *a.UnityGUID
	}
	guids := extractGUIDs(content, selfGUID)

	deps := make([]catalog.Dependency, 0, len(guids))
	for _, guid := range guids {
		target, found, err := r.cat.GetAssetByGUID(ctx, a.ProjectID, guid)
		if err != nil {
			r.log.Warn().Err(err).Str("asset_id", a.ID).Msg("guid lookup failed")
			continue
		}

		var toAssetID *string
		targetKind := catalog.AssetKind("unknown")
		if found {
			id := target.ID
			toAssetID = &id
			targetKind = target.AssetType
		}

		deps = append(deps, catalog.Dependency{
			FromAssetID:  a.ID,
			ToAssetID:    toAssetID,
			ToGUID:       guid,
			RelationType: inferRelationType(a.AssetType, targetKind),
			Confidence:   "high",
		})
	}
	return deps
}

// Progress reports (processed, total) in-scope assets.
type Progress func(processed, total int)

// ResolveAllForProject deletes and reinserts edges for every in-scope asset
// in the project. Cancellation is checked between assets (never mid-asset);
// a cancel leaves the partial result in place, which is acceptable because
// the pass is idempotent and re-entrant.
func (r *Resolver) ResolveAllForProject(ctx context.Context, projectID string, cancel *state.CancelFlag, progress Progress) (int, error) {
	assets, err := r.cat.GetParseableAssets(ctx, projectID)
	if err != nil {
		return 0, err
	}

	total := len(assets)
	edgeCount := 0
	store := r.cat.Store()

	for i, a := range assets {
		if cancel != nil && cancel.IsCancelled() {
			break
		}

		deps := r.resolveForAsset(ctx, a)
		err := store.WithTx(ctx, func(tx *sql.Tx) error {
			if err := r.cat.DeleteDependenciesForAsset(ctx, tx, a.ID); err != nil {
				return err
			}
			for j := range deps {
				if err := r.cat.InsertDependency(ctx, tx, &deps[j]); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			r.log.Error().Err(err).Str("asset_id", a.ID).Msg("resolve asset failed")
			continue
		}
		edgeCount += len(deps)

		if progress != nil {
			progress(i+1, total)
		}
	}
	return edgeCount, nil
}

// DependencyTree performs a depth-limited DFS from root over resolved
// outgoing edges only, with a visited set to cut cycles and diamond
// revisits. depth=0 returns an empty result (root only, excluded).
func (r *Resolver) DependencyTree(ctx context.Context, rootAssetID string, depth int) ([]string, error) {
	if depth <= 0 {
		return nil, nil
	}

	visited := map[string]bool{rootAssetID: true}
	var order []string

	var walk func(assetID string, remaining int) error
	walk = func(assetID string, remaining int) error {
		if remaining <= 0 {
			return nil
		}
		deps, err := r.cat.GetDependencies(ctx, assetID)
		if err != nil {
			return err
		}
		for _, d := range deps {
			if d.ToAssetID == nil {
				continue
			}
			target := *d.ToAssetID
			if visited[target] {
				continue
			}
			visited[target] = true
			order = append(order, target)
			if err := walk(target, remaining-1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(rootAssetID, depth); err != nil {
		return nil, err
	}
	return order, nil
}

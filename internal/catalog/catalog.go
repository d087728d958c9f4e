// Package catalog is the durable store for projects, assets, dependencies,
// and preview pointers, with a full-text search index over asset names kept
// consistent by triggers. See db.rs and internal/db/store.go for the two
// implementations this one generalizes from.
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Catalog is the Go-native rendering of spec.md's Catalog component: a
// single embedded relational store plus the read/write operation surface
// every other component drives through.
type Catalog struct {
	store *Store
	sf    singleflight.Group
}

// Open opens (or creates) the catalog database at path.
func Open(path string) (*Catalog, error) {
	store, err := OpenStore(path)
	if err != nil {
		return nil, err
	}
	return &Catalog{store: store}, nil
}

// New wraps an already-open Store in a Catalog.
func New(store *Store) *Catalog { return &Catalog{store: store} }

// Close releases the underlying database connection.
func (c *Catalog) Close() error { return c.store.Close() }

// Store exposes the underlying Store for components (exporter, preview) that
// need direct DB access beyond this operation surface.
func (c *Catalog) Store() *Store { return c.store }

// GetOrCreateProject is idempotent on root: a project already bound to root
// is returned unchanged; otherwise one is created.
func (c *Catalog) GetOrCreateProject(ctx context.Context, root, name string) (Project, error) {
	if p, ok, err := c.GetProjectByPath(ctx, root); err != nil {
		return Project{}, fmt.Errorf("get project by path: %w", err)
	} else if ok {
		return p, nil
	}

	now := Now()
	p := Project{
		ID:        uuid.NewString(),
		RootPath:  root,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := c.store.db.ExecContext(ctx, `
		INSERT INTO projects (id, root_path, name, last_scan_time, file_count, created_at, updated_at)
		VALUES (?, ?, ?, NULL, 0, ?, ?)
	`, p.ID, p.RootPath, p.Name, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return Project{}, fmt.Errorf("insert project: %w", err)
	}
	return p, nil
}

func (c *Catalog) GetProjectByPath(ctx context.Context, root string) (Project, bool, error) {
	row := c.store.db.QueryRowContext(ctx, `
		SELECT id, root_path, name, last_scan_time, file_count, created_at, updated_at
		FROM projects WHERE root_path = ?
	`, root)
	return scanProjectRow(row)
}

func (c *Catalog) GetProject(ctx context.Context, id string) (Project, bool, error) {
	row := c.store.db.QueryRowContext(ctx, `
		SELECT id, root_path, name, last_scan_time, file_count, created_at, updated_at
		FROM projects WHERE id = ?
	`, id)
	return scanProjectRow(row)
}

func scanProjectRow(row *sql.Row) (Project, bool, error) {
	var p Project
	var lastScan sql.NullInt64
	err := row.Scan(&p.ID, &p.RootPath, &p.Name, &lastScan, &p.FileCount, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return Project{}, false, nil
	}
	if err != nil {
		return Project{}, false, err
	}
	p.LastScanTime = lastScan.Int64
	return p, true, nil
}

// UpdateProjectScanTime records the completion of a successful scan.
func (c *Catalog) UpdateProjectScanTime(ctx context.Context, projectID string, fileCount int64) error {
	_, err := c.store.db.ExecContext(ctx, `
		UPDATE projects SET last_scan_time = ?, file_count = ?, updated_at = ? WHERE id = ?
	`, Now(), fileCount, Now(), projectID)
	if err != nil {
		return fmt.Errorf("update project scan time: %w", err)
	}
	return nil
}

// UpsertAsset inserts or updates a single asset keyed on (project_id, relative_path).
func (c *Catalog) UpsertAsset(ctx context.Context, execer interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, a *Asset) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := Now()
	if a.CreatedAt == 0 {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	_, err := execer.ExecContext(ctx, `
		INSERT INTO assets (
			id, project_id, absolute_path, relative_path, file_name, extension,
			asset_type, size_bytes, modified_time, content_hash, unity_guid,
			import_type, thumbnail_path, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, relative_path) DO UPDATE SET
			absolute_path = excluded.absolute_path,
			file_name = excluded.file_name,
			extension = excluded.extension,
			asset_type = excluded.asset_type,
			size_bytes = excluded.size_bytes,
			modified_time = excluded.modified_time,
			content_hash = excluded.content_hash,
			unity_guid = excluded.unity_guid,
			import_type = excluded.import_type,
			thumbnail_path = excluded.thumbnail_path,
			updated_at = excluded.updated_at
	`,
		a.ID, a.ProjectID, a.AbsolutePath, a.RelativePath, a.FileName, a.Extension,
		string(a.AssetType), a.SizeBytes, a.ModifiedTime,
		strPtrToNull(a.ContentHash), strPtrToNull(a.UnityGUID),
		strPtrToNull(a.ImportType), strPtrToNull(a.ThumbnailPath),
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert asset: %w", err)
	}
	return nil
}

// UpsertBatch wraps a slice of asset upserts in a single transaction.
// Per-row failures are logged by the caller (see internal/indexer) and
// skipped; the batch always commits whatever succeeded.
func (c *Catalog) UpsertBatch(ctx context.Context, assets []Asset) (int, error) {
	ok := 0
	err := c.store.WithTx(ctx, func(tx *sql.Tx) error {
		for i := range assets {
			if err := c.UpsertAsset(ctx, tx, &assets[i]); err != nil {
				continue
			}
			ok++
		}
		return nil
	})
	if err != nil {
		return ok, fmt.Errorf("upsert batch: %w", err)
	}
	return ok, nil
}

// GetAssets returns a page of assets, optionally narrowed by an FTS prefix
// search over file_name/relative_path and/or a set of kinds.
func (c *Catalog) GetAssets(ctx context.Context, projectID string, search string, kinds []AssetKind, page, pageSize int) (AssetPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	where := "WHERE a.project_id = ?"
	args := []any{projectID}

	useFTS := search != ""
	var from string
	if useFTS {
		from = "assets a JOIN assets_fts f ON f.rowid = a.rowid"
		where += " AND assets_fts MATCH ?"
		args = append(args, ftsPrefixQuery(search))
	} else {
		from = "assets a"
	}

	if len(kinds) > 0 {
		placeholders := ""
		for i, k := range kinds {
			if i > 0 {
				placeholders += ","
			}
			placeholders += "?"
			args = append(args, string(k))
		}
		where += " AND a.asset_type IN (" + placeholders + ")"
	}

	countQuery := "SELECT COUNT(*) FROM " + from + " " + where
	var total int64
	if err := c.store.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return AssetPage{}, fmt.Errorf("count assets: %w", err)
	}

	listQuery := "SELECT " + qualify(assetColumns, "a") + " FROM " + from + " " + where +
		" ORDER BY a.file_name ASC LIMIT ? OFFSET ?"
	listArgs := append(append([]any{}, args...), pageSize, offset)

	rows, err := c.store.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return AssetPage{}, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return AssetPage{}, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return AssetPage{}, err
	}
	return AssetPage{Assets: assets, Total: total}, nil
}

// qualify prefixes each column name in a comma-joined column list with alias.
func qualify(columns, alias string) string {
	out := ""
	depth := 0
	start := 0
	flush := func(end int) {
		col := trimSpace(columns[start:end])
		if col == "" {
			return
		}
		if out != "" {
			out += ", "
		}
		out += alias + "." + col
	}
	for i, r := range columns {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(columns))
	return out
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\n' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\n' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}

// ftsPrefixQuery builds an FTS5 MATCH expression matching q as a prefix token.
func ftsPrefixQuery(q string) string {
	return fmt.Sprintf(`"%s"*`, escapeFTS(q))
}

func escapeFTS(q string) string {
	out := make([]byte, 0, len(q))
	for i := 0; i < len(q); i++ {
		if q[i] == '"' {
			out = append(out, '"', '"')
			continue
		}
		out = append(out, q[i])
	}
	return string(out)
}

func (c *Catalog) GetAsset(ctx context.Context, id string) (Asset, bool, error) {
	row := c.store.db.QueryRowContext(ctx, "SELECT "+assetColumns+" FROM assets WHERE id = ?", id)
	a, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return Asset{}, false, nil
	}
	if err != nil {
		return Asset{}, false, fmt.Errorf("get asset: %w", err)
	}
	return a, true, nil
}

func (c *Catalog) GetAssetByGUID(ctx context.Context, projectID, guid string) (Asset, bool, error) {
	row := c.store.db.QueryRowContext(ctx,
		"SELECT "+assetColumns+" FROM assets WHERE project_id = ? AND unity_guid = ?", projectID, guid)
	a, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return Asset{}, false, nil
	}
	if err != nil {
		return Asset{}, false, fmt.Errorf("get asset by guid: %w", err)
	}
	return a, true, nil
}

// GetTypeCounts coalesces concurrent identical requests with singleflight,
// replacing the teacher's hand-rolled refreshing-map dedup in
// internal/repo/sqlite.go with golang.org/x/sync/singleflight.
func (c *Catalog) GetTypeCounts(ctx context.Context, projectID string) ([]TypeCount, error) {
	v, err, _ := c.sf.Do("type_counts:"+projectID, func() (any, error) {
		rows, err := c.store.db.QueryContext(ctx, `
			SELECT asset_type, COUNT(*) FROM assets WHERE project_id = ? GROUP BY asset_type
		`, projectID)
		if err != nil {
			return nil, fmt.Errorf("get type counts: %w", err)
		}
		defer rows.Close()

		var counts []TypeCount
		for rows.Next() {
			var tc TypeCount
			var kind string
			if err := rows.Scan(&kind, &tc.Count); err != nil {
				return nil, err
			}
			tc.Kind = AssetKind(kind)
			counts = append(counts, tc)
		}
		return counts, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return v.([]TypeCount), nil
}

func (c *Catalog) InsertDependency(ctx context.Context, execer interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, d *Dependency) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt == 0 {
		d.CreatedAt = Now()
	}
	if d.Confidence == "" {
		d.Confidence = "high"
	}
	_, err := execer.ExecContext(ctx, `
		INSERT OR REPLACE INTO dependencies (id, from_asset_id, to_asset_id, to_guid, relation_type, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.FromAssetID, nullableAssetID(d.ToAssetID), d.ToGUID, d.RelationType, d.Confidence, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert dependency: %w", err)
	}
	return nil
}

func nullableAssetID(id *string) sql.NullString { return strPtrToNull(id) }

func (c *Catalog) DeleteDependenciesForAsset(ctx context.Context, execer interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, assetID string) error {
	_, err := execer.ExecContext(ctx, "DELETE FROM dependencies WHERE from_asset_id = ?", assetID)
	if err != nil {
		return fmt.Errorf("delete dependencies for asset: %w", err)
	}
	return nil
}

func (c *Catalog) GetDependencies(ctx context.Context, fromAssetID string) ([]Dependency, error) {
	return c.queryDependencies(ctx, "from_asset_id = ?", fromAssetID)
}

func (c *Catalog) GetDependents(ctx context.Context, toAssetID string) ([]Dependency, error) {
	return c.queryDependencies(ctx, "to_asset_id = ?", toAssetID)
}

func (c *Catalog) queryDependencies(ctx context.Context, where, arg string) ([]Dependency, error) {
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT id, from_asset_id, to_asset_id, to_guid, relation_type, confidence, created_at
		FROM dependencies WHERE `+where, arg)
	if err != nil {
		return nil, fmt.Errorf("query dependencies: %w", err)
	}
	defer rows.Close()

	var deps []Dependency
	for rows.Next() {
		var d Dependency
		var toAssetID sql.NullString
		if err := rows.Scan(&d.ID, &d.FromAssetID, &toAssetID, &d.ToGUID, &d.RelationType, &d.Confidence, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.ToAssetID = nullStringPtr(toAssetID)
		deps = append(deps, d)
	}
	return deps, rows.Err()
}

func (c *Catalog) UpdateAssetThumbnail(ctx context.Context, assetID, pathOrMarker string) error {
	now := Now()
	_, err := c.store.db.ExecContext(ctx, `
		UPDATE assets SET thumbnail_path = ?, updated_at = ? WHERE id = ?
	`, pathOrMarker, now, assetID)
	if err != nil {
		return fmt.Errorf("update asset thumbnail: %w", err)
	}
	_, err = c.store.db.ExecContext(ctx, `
		INSERT INTO preview_cache (asset_id, thumbnail_path, version_key, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(asset_id) DO UPDATE SET
			thumbnail_path = excluded.thumbnail_path,
			version_key = excluded.version_key,
			updated_at = excluded.updated_at
	`, assetID, pathOrMarker, pathOrMarker, now)
	if err != nil {
		return fmt.Errorf("update preview cache: %w", err)
	}
	return nil
}

func (c *Catalog) ClearThumbnailPaths(ctx context.Context, projectID string) error {
	_, err := c.store.db.ExecContext(ctx, `
		UPDATE assets SET thumbnail_path = NULL WHERE project_id = ?
	`, projectID)
	if err != nil {
		return fmt.Errorf("clear thumbnail paths: %w", err)
	}
	return nil
}

// GetAssetsNeedingThumbnails returns textures first, then materials, matching
// db.rs's ordering so cheap texture thumbnails are generated before the
// materials that may depend on them.
func (c *Catalog) GetAssetsNeedingThumbnails(ctx context.Context, projectID string, limit int) ([]Asset, error) {
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT `+assetColumns+` FROM assets
		WHERE project_id = ? AND thumbnail_path IS NULL
		  AND asset_type IN ('texture', 'material')
		ORDER BY CASE asset_type WHEN 'texture' THEN 1 WHEN 'material' THEN 2 ELSE 3 END
		LIMIT ?
	`, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("get assets needing thumbnails: %w", err)
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (c *Catalog) CountThumbnailAssets(ctx context.Context, projectID string) (int64, error) {
	var n int64
	err := c.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM assets
		WHERE project_id = ? AND thumbnail_path IS NULL AND asset_type IN ('texture', 'material')
	`, projectID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count thumbnail assets: %w", err)
	}
	return n, nil
}

// GetParseableAssets returns the text assets the GUID resolver scans for
// references: material, prefab, scene, scriptable_object.
func (c *Catalog) GetParseableAssets(ctx context.Context, projectID string) ([]Asset, error) {
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT `+assetColumns+` FROM assets
		WHERE project_id = ? AND asset_type IN ('material', 'prefab', 'scene', 'scriptable_object')
		ORDER BY file_name ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("get parseable assets: %w", err)
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// ExistingIndex is the relative_path → (asset id, mtime, size) map the Walker
// uses to decide whether a file is unchanged since the last scan.
type ExistingIndex map[string]ExistingAsset

type ExistingAsset struct {
	ID           string
	ModifiedTime int64
	SizeBytes    int64
}

// GetExistingIndex loads the incremental-rescan lookup table for a project.
func (c *Catalog) GetExistingIndex(ctx context.Context, projectID string) (ExistingIndex, error) {
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT relative_path, id, modified_time, size_bytes FROM assets WHERE project_id = ?
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("get existing index: %w", err)
	}
	defer rows.Close()

	idx := make(ExistingIndex)
	for rows.Next() {
		var relPath string
		var ea ExistingAsset
		if err := rows.Scan(&relPath, &ea.ID, &ea.ModifiedTime, &ea.SizeBytes); err != nil {
			return nil, err
		}
		idx[relPath] = ea
	}
	return idx, rows.Err()
}

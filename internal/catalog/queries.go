package catalog

import (
	"database/sql"
)

// scanAsset scans a single assets row in the fixed column order used by
// every SELECT in this file.
func scanAsset(row interface {
	Scan(dest ...any) error
}) (Asset, error) {
	var a Asset
	var assetType string
	var contentHash, unityGUID, importType, thumbnailPath sql.NullString
	err := row.Scan(
		&a.ID, &a.ProjectID, &a.AbsolutePath, &a.RelativePath, &a.FileName,
		&a.Extension, &assetType, &a.SizeBytes, &a.ModifiedTime,
		&contentHash, &unityGUID, &importType, &thumbnailPath,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return Asset{}, err
	}
	a.AssetType = AssetKind(assetType)
	a.ContentHash = nullStringPtr(contentHash)
	a.UnityGUID = nullStringPtr(unityGUID)
	a.ImportType = nullStringPtr(importType)
	a.ThumbnailPath = nullStringPtr(thumbnailPath)
	return a, nil
}

func nullStringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}

func strPtrToNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

const assetColumns = `id, project_id, absolute_path, relative_path, file_name,
	extension, asset_type, size_bytes, modified_time,
	content_hash, unity_guid, import_type, thumbnail_path,
	created_at, updated_at`

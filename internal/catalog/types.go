package catalog

// AssetKind is the closed tag set a classified file may carry.
type AssetKind string

const (
	KindTexture         AssetKind = "texture"
	KindModel           AssetKind = "model"
	KindMaterial        AssetKind = "material"
	KindPrefab          AssetKind = "prefab"
	KindAudio           AssetKind = "audio"
	KindShader          AssetKind = "shader"
	KindScene           AssetKind = "scene"
	KindScriptableObject AssetKind = "scriptable_object"
)

// Project is a named root directory bound to a catalog.
type Project struct {
	ID           string
	RootPath     string
	Name         string
	LastScanTime int64 // unix seconds; 0 means never scanned
	FileCount    int64
	CreatedAt    int64
	UpdatedAt    int64
}

// Asset is one classified file under a project.
type Asset struct {
	ID            string
	ProjectID     string
	AbsolutePath  string
	RelativePath  string
	FileName      string
	Extension     string
	AssetType     AssetKind
	SizeBytes     int64
	ModifiedTime  int64
	ContentHash   *string
	UnityGUID     *string
	ImportType    *string
	ThumbnailPath *string
	CreatedAt     int64
	UpdatedAt     int64
}

// Dependency is a directed edge from a source asset to a target GUID.
type Dependency struct {
	ID           string
	FromAssetID  string
	ToAssetID    *string
	ToGUID       string
	RelationType string
	Confidence   string
	CreatedAt    int64
}

// TypeCount is the per-project aggregate of assets by kind.
type TypeCount struct {
	Kind  AssetKind
	Count int64
}

// PreviewEntry is the catalog's pointer from an asset to its thumbnail artifact.
type PreviewEntry struct {
	AssetID       string
	ThumbnailPath *string
	VersionKey    string
	UpdatedAt     int64
}

// Sentinel thumbnail path values written back by the Preview Coordinator
// instead of a real file path when generation is impossible rather than
// merely pending.
const (
	ThumbnailTooLarge   = "TOO_LARGE"
	ThumbnailUnsupported = "UNSUPPORTED"
)

// AssetPage is the result of a paged, optionally-filtered asset query.
type AssetPage struct {
	Assets []Asset
	Total  int64
}

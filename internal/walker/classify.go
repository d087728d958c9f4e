package walker

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Kalfadda/scythe/internal/catalog"
)

// extensionKinds is the fixed extension→kind mapping from spec.md §6. Any
// extension not present here is excluded from indexing.
var extensionKinds = map[string]catalog.AssetKind{
	"png": catalog.KindTexture, "jpg": catalog.KindTexture, "jpeg": catalog.KindTexture,
	"tga": catalog.KindTexture, "psd": catalog.KindTexture, "bmp": catalog.KindTexture,
	"gif": catalog.KindTexture, "exr": catalog.KindTexture, "hdr": catalog.KindTexture,

	"fbx": catalog.KindModel, "obj": catalog.KindModel, "blend": catalog.KindModel,
	"dae": catalog.KindModel, "gltf": catalog.KindModel, "glb": catalog.KindModel,
	"3ds": catalog.KindModel, "max": catalog.KindModel,

	"mat": catalog.KindMaterial,

	"prefab": catalog.KindPrefab,

	"wav": catalog.KindAudio, "mp3": catalog.KindAudio, "ogg": catalog.KindAudio,
	"aiff": catalog.KindAudio, "aif": catalog.KindAudio, "flac": catalog.KindAudio,

	"shader": catalog.KindShader, "shadergraph": catalog.KindShader,
	"shadersubgraph": catalog.KindShader, "compute": catalog.KindShader,
	"cginc": catalog.KindShader, "hlsl": catalog.KindShader, "glsl": catalog.KindShader,

	"unity": catalog.KindScene,

	"asset": catalog.KindScriptableObject,
}

// Classify maps a file path to its asset kind. The second return value is
// false when the extension is not recognised and the file must be dropped.
func Classify(path string) (catalog.AssetKind, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	kind, ok := extensionKinds[ext]
	return kind, ok
}

var guidPattern = regexp.MustCompile(`guid:\s*([a-f0-9]{32})`)

// ReadUnityGUID reads the Unity GUID from meta file content, if present.
func ReadUnityGUID(metaContent []byte) (string, bool) {
	m := guidPattern.FindSubmatch(metaContent)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}

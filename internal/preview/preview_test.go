package preview

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Kalfadda/scythe/internal/catalog"
	"github.com/Kalfadda/scythe/internal/formats"
)

func TestCacheKeyStableAndDistinct(t *testing.T) {
	t.Parallel()

	a := cacheKey("/proj/Assets/tex.png", 1000)
	b := cacheKey("/proj/Assets/tex.png", 1000)
	if a != b {
		t.Errorf("cacheKey() not stable: %q != %q", a, b)
	}

	c := cacheKey("/proj/Assets/tex.png", 2000)
	if a == c {
		t.Error("cacheKey() did not change with modified time")
	}

	d := cacheKey("/proj/Assets/other.png", 1000)
	if a == d {
		t.Error("cacheKey() did not change with path")
	}

	if filepath.Ext(a) != ".png" {
		t.Errorf("cacheKey() = %q, want .png suffix", a)
	}
}

func TestDecodeGuardedRejectsUnsupportedExtension(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "tex.tga")
	if err := os.WriteFile(path, []byte("not a real tga"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, ok := decodeGuarded(path); ok {
		t.Error("decodeGuarded() on .tga should return false (unsupported)")
	}
}

func TestDecodeGuardedRecoversFromMalformedFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "tex.png")
	if err := os.WriteFile(path, []byte("this is not a valid png"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, ok := decodeGuarded(path); ok {
		t.Error("decodeGuarded() on malformed png should return false, not panic")
	}
}

func TestDecodeGuardedDecodesRealPNG(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "tex.png")

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	f.Close()

	decoded, ok := decodeGuarded(path)
	if !ok {
		t.Fatal("decodeGuarded() on valid png should succeed")
	}
	if decoded.Bounds().Dx() != 4 {
		t.Errorf("decoded width = %d, want 4", decoded.Bounds().Dx())
	}
}

func TestResizeNearestProducesRequestedSize(t *testing.T) {
	t.Parallel()
	src := image.NewRGBA(image.Rect(0, 0, 10, 20))
	dst := resizeNearest(src, 8)
	if dst.Bounds().Dx() != 8 || dst.Bounds().Dy() != 8 {
		t.Errorf("resizeNearest() bounds = %v, want 8x8", dst.Bounds())
	}
}

func TestRenderMaterialPlaceholderProducesValidPNG(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "placeholder.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()

	info := formats.MaterialInfo{Textures: []formats.MaterialTexture{
		{SlotName: "_EmissionMap", TextureGUID: "x"},
	}}
	if err := RenderMaterialPlaceholder(f, 32, info); err != nil {
		t.Fatalf("RenderMaterialPlaceholder() error = %v", err)
	}
	f.Close()

	decoded, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	if len(decoded) == 0 {
		t.Error("RenderMaterialPlaceholder() wrote empty file")
	}
}

func TestGenerateOneMaterialReusesPrimaryTextureThumbnail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	assetsDir := t.TempDir()
	thumbnailDir := t.TempDir()

	cat, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("catalog.Open() error = %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	project, err := cat.GetOrCreateProject(ctx, assetsDir, "Fixture")
	if err != nil {
		t.Fatalf("GetOrCreateProject() error = %v", err)
	}

	texGUID := "44444444444444444444444444444444"
	texPath := filepath.Join(assetsDir, "albedo.png")
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{G: 255, A: 255})
		}
	}
	f, err := os.Create(texPath)
	if err != nil {
		t.Fatalf("create texture fixture: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode texture fixture: %v", err)
	}
	f.Close()

	texAsset := catalog.Asset{
		ProjectID: project.ID, AbsolutePath: texPath, RelativePath: "albedo.png",
		FileName: "albedo.png", Extension: ".png", AssetType: catalog.KindTexture,
		ModifiedTime: 1, UnityGUID: &texGUID,
	}
	if err := cat.UpsertAsset(ctx, cat.Store().DB(), &texAsset); err != nil {
		t.Fatalf("UpsertAsset(texture) error = %v", err)
	}

	matPath := filepath.Join(assetsDir, "hero.mat")
	matContent := "m_Name: hero\nm_Shader: {fileID: 4800000, guid: bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb, type: 3}\nm_TexEnvs:\n- _AlbedoMap:\n    m_Texture: {fileID: 2800000, guid: " + texGUID + ", type: 3}\n"
	if err := os.WriteFile(matPath, []byte(matContent), 0644); err != nil {
		t.Fatalf("write material fixture: %v", err)
	}
	matAsset := catalog.Asset{
		ProjectID: project.ID, AbsolutePath: matPath, RelativePath: "hero.mat",
		FileName: "hero.mat", Extension: ".mat", AssetType: catalog.KindMaterial,
		ModifiedTime: 1,
	}
	if err := cat.UpsertAsset(ctx, cat.Store().DB(), &matAsset); err != nil {
		t.Fatalf("UpsertAsset(material) error = %v", err)
	}

	co := New(cat, zerolog.Nop())
	if err := co.generateOne(ctx, matAsset, thumbnailDir, 16); err != nil {
		t.Fatalf("generateOne(material) error = %v", err)
	}

	gotTex, ok, err := cat.GetAsset(ctx, texAsset.ID)
	if err != nil || !ok {
		t.Fatalf("GetAsset(texture) ok=%v err=%v", ok, err)
	}
	if gotTex.ThumbnailPath == nil {
		t.Fatal("primary texture thumbnail was not generated as a side effect")
	}

	gotMat, ok, err := cat.GetAsset(ctx, matAsset.ID)
	if err != nil || !ok {
		t.Fatalf("GetAsset(material) ok=%v err=%v", ok, err)
	}
	if gotMat.ThumbnailPath == nil {
		t.Fatal("material thumbnail was not set")
	}
	if *gotMat.ThumbnailPath == *gotTex.ThumbnailPath {
		t.Error("material thumbnail should be a distinct copied file, not the same path")
	}

	matBytes, err := os.ReadFile(*gotMat.ThumbnailPath)
	if err != nil {
		t.Fatalf("read material thumbnail: %v", err)
	}
	texBytes, err := os.ReadFile(*gotTex.ThumbnailPath)
	if err != nil {
		t.Fatalf("read texture thumbnail: %v", err)
	}
	if string(matBytes) != string(texBytes) {
		t.Error("material thumbnail bytes should match the copied primary-texture thumbnail, not a synthesized placeholder")
	}
}

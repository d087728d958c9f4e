// Package preview is the Preview Coordinator: it schedules thumbnail
// generation for textures and materials, resolves on-demand base64
// thumbnails, and extracts material/model summary metadata for the preview
// panel. Adapted from previews.rs and internal/cache/cache.go's generation
// bookkeeping.
package preview

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"

	"github.com/Kalfadda/scythe/internal/catalog"
	"github.com/Kalfadda/scythe/internal/formats"
	"github.com/Kalfadda/scythe/internal/state"
)

// Phase tags the standalone regenerate_thumbnails job's progress events.
type Phase string

const (
	PhaseCounting   Phase = "counting"
	PhaseGenerating Phase = "generating"
	PhaseComplete   Phase = "complete"
	PhaseCancelled  Phase = "cancelled"
)

// Progress is emitted during RegenerateThumbnails.
type Progress struct {
	Processed int   `json:"processed"`
	Total     int   `json:"total"`
	Phase     Phase `json:"phase"`
}

const thumbnailBatchRefresh = 200 * time.Millisecond

var decodableExt = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
}

// Coordinator drives thumbnail generation and on-demand preview lookups.
type Coordinator struct {
	cat *catalog.Catalog
	log zerolog.Logger
}

func New(cat *catalog.Catalog, log zerolog.Logger) *Coordinator {
	return &Coordinator{cat: cat, log: log}
}

// cacheKey derives a stable, collision-resistant filename for a thumbnail,
// replacing the original's mislabeled md5-based key with a real
// non-cryptographic hash of the asset's identity and last-modified time —
// exactly the kind of cache key xxhash is built for.
func cacheKey(absPath string, modifiedTime int64) string {
	h := xxhash.New()
	fmt.Fprintf(h, "%s:%d", absPath, modifiedTime)
	return fmt.Sprintf("%016x.png", h.Sum64())
}

// RegenerateThumbnails is the standalone job (spec.md §10) that (re)builds
// every pending texture/material thumbnail for a project, reporting progress
// on the returned channel. The caller drains it until closed.
func (co *Coordinator) RegenerateThumbnails(ctx context.Context, projectID, thumbnailDir string, thumbnailSize int, cancel *state.CancelFlag) (<-chan Progress, <-chan error) {
	events := make(chan Progress, 16)
	errCh := make(chan error, 1)

	emit := func(p Progress) {
		select {
		case events <- p:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(events)
		defer close(errCh)

		emit(Progress{Phase: PhaseCounting})
		total, err := co.cat.CountThumbnailAssets(ctx, projectID)
		if err != nil {
			errCh <- err
			return
		}
		if cancel.IsCancelled() {
			emit(Progress{Phase: PhaseCancelled})
			return
		}

		emit(Progress{Total: int(total), Phase: PhaseGenerating})
		processed := 0
		lastEmit := time.Time{}

		for {
			if cancel.IsCancelled() {
				emit(Progress{Processed: processed, Total: int(total), Phase: PhaseCancelled})
				return
			}
			batch, err := co.cat.GetAssetsNeedingThumbnails(ctx, projectID, 25)
			if err != nil {
				errCh <- err
				return
			}
			if len(batch) == 0 {
				break
			}
			for _, a := range batch {
				if cancel.IsCancelled() {
					break
				}
				if err := co.generateOne(ctx, a, thumbnailDir, thumbnailSize); err != nil {
					co.log.Warn().Err(err).Str("asset_id", a.ID).Msg("thumbnail generation failed")
				}
				processed++
				if time.Since(lastEmit) >= thumbnailBatchRefresh {
					emit(Progress{Processed: processed, Total: int(total), Phase: PhaseGenerating})
					lastEmit = time.Now()
				}
			}
		}

		emit(Progress{Processed: processed, Total: int(total), Phase: PhaseComplete})
	}()

	return events, errCh
}

// generateOne builds (or marks unavailable) the thumbnail for a single asset
// and writes the result back via UpdateAssetThumbnail.
func (co *Coordinator) generateOne(ctx context.Context, a catalog.Asset, thumbnailDir string, size int) error {
	const maxSourceBytes = 64 * 1024 * 1024
	if a.SizeBytes > maxSourceBytes {
		return co.cat.UpdateAssetThumbnail(ctx, a.ID, catalog.ThumbnailTooLarge)
	}

	key := cacheKey(a.AbsolutePath, a.ModifiedTime)
	destPath := filepath.Join(thumbnailDir, key)

	switch a.AssetType {
	case catalog.KindTexture:
		img, ok := decodeGuarded(a.AbsolutePath)
		if !ok {
			return co.cat.UpdateAssetThumbnail(ctx, a.ID, catalog.ThumbnailUnsupported)
		}
		if err := writeThumbnailPNG(destPath, img, size); err != nil {
			return err
		}
		return co.cat.UpdateAssetThumbnail(ctx, a.ID, destPath)

	case catalog.KindMaterial:
		info, err := formats.ReadMaterialInfo(a.AbsolutePath)
		if err != nil {
			return co.cat.UpdateAssetThumbnail(ctx, a.ID, catalog.ThumbnailUnsupported)
		}
		if texPath, ok := co.primaryTextureThumbnail(ctx, a, info, thumbnailDir, size); ok {
			if err := copyThumbnailFile(texPath, destPath); err == nil {
				return co.cat.UpdateAssetThumbnail(ctx, a.ID, destPath)
			}
		}
		f, err := os.Create(destPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := RenderMaterialPlaceholder(f, size, info); err != nil {
			return err
		}
		return co.cat.UpdateAssetThumbnail(ctx, a.ID, destPath)

	default:
		return co.cat.UpdateAssetThumbnail(ctx, a.ID, catalog.ThumbnailUnsupported)
	}
}

// primaryTextureThumbnail resolves a material's primary texture slot
// (previews.rs::generate_material_thumbnail) to an existing or freshly
// generated texture thumbnail path, returning false if the material has no
// resolvable texture or that texture's thumbnail couldn't be produced.
func (co *Coordinator) primaryTextureThumbnail(ctx context.Context, mat catalog.Asset, info formats.MaterialInfo, thumbnailDir string, size int) (string, bool) {
	slot, ok := formats.PrimaryTextureSlot(info)
	if !ok {
		return "", false
	}
	tex, found, err := co.cat.GetAssetByGUID(ctx, mat.ProjectID, slot.TextureGUID)
	if err != nil || !found {
		return "", false
	}

	if tex.ThumbnailPath == nil {
		if err := co.generateOne(ctx, tex, thumbnailDir, size); err != nil {
			co.log.Warn().Err(err).Str("asset_id", tex.ID).Msg("primary texture thumbnail generation failed")
			return "", false
		}
		refreshed, found, err := co.cat.GetAsset(ctx, tex.ID)
		if err != nil || !found {
			return "", false
		}
		tex = refreshed
	}

	if tex.ThumbnailPath == nil {
		return "", false
	}
	switch *tex.ThumbnailPath {
	case catalog.ThumbnailTooLarge, catalog.ThumbnailUnsupported:
		return "", false
	default:
		return *tex.ThumbnailPath, true
	}
}

// copyThumbnailFile duplicates an already-generated thumbnail onto a new
// cache-key path rather than re-encoding it, mirroring the original's reuse
// of a texture's thumbnail for the materials that reference it.
func copyThumbnailFile(src, dest string) error {
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

// decodeGuarded is the single recover() boundary around third-party/stdlib
// image decoders, containing a panic from a malformed or adversarial image
// file to a reported failure rather than a process crash — the Go rendering
// of previews.rs's catch_unwind boundary around its decode call.
func decodeGuarded(path string) (img image.Image, ok bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if !decodableExt[ext] {
		return nil, false
	}

	defer func() {
		if r := recover(); r != nil {
			img, ok = nil, false
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	decoded, _, err := image.Decode(f)
	if err != nil {
		return nil, false
	}
	return decoded, true
}

func writeThumbnailPNG(destPath string, img image.Image, size int) error {
	f, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, resizeNearest(img, size))
}

// resizeNearest downsamples img to a size x size square using nearest-
// neighbor sampling — adequate for a thumbnail, and avoids pulling in an
// image-resampling dependency the rest of the corpus never reaches for.
func resizeNearest(img image.Image, size int) image.Image {
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW == 0 || srcH == 0 {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		sy := b.Min.Y + y*srcH/size
		for x := 0; x < size; x++ {
			sx := b.Min.X + x*srcW/size
			dst.Set(x, y, img.At(sx, sy))
		}
	}
	return dst
}

// GetThumbnail resolves the on-demand base64-encoded preview for an asset:
// TOO_LARGE/UNSUPPORTED sentinels pass through as-is, a real file path is
// read and re-encoded with a data-URI MIME prefix, and a nil path means
// generation hasn't happened yet.
func (co *Coordinator) GetThumbnail(ctx context.Context, assetID string) (string, bool, error) {
	a, ok, err := co.cat.GetAsset(ctx, assetID)
	if err != nil || !ok {
		return "", false, err
	}
	if a.ThumbnailPath == nil {
		return "", false, nil
	}
	switch *a.ThumbnailPath {
	case catalog.ThumbnailTooLarge, catalog.ThumbnailUnsupported:
		return *a.ThumbnailPath, true, nil
	}

	data, err := os.ReadFile(*a.ThumbnailPath)
	if err != nil {
		return "", false, err
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	return "data:image/png;base64," + encoded, true, nil
}

// GetMaterialInfo and GetModelInfo expose the format-parser summaries
// (spec.md §10's supplemented get_material_info/get_model_info) for an
// asset's source file.
func (co *Coordinator) GetMaterialInfo(ctx context.Context, assetID string) (formats.MaterialInfo, error) {
	a, ok, err := co.cat.GetAsset(ctx, assetID)
	if err != nil {
		return formats.MaterialInfo{}, err
	}
	if !ok {
		return formats.MaterialInfo{}, fmt.Errorf("asset %s not found", assetID)
	}
	return formats.ReadMaterialInfo(a.AbsolutePath)
}

func (co *Coordinator) GetModelInfo(ctx context.Context, assetID string) (formats.ModelInfo, bool, error) {
	a, ok, err := co.cat.GetAsset(ctx, assetID)
	if err != nil {
		return formats.ModelInfo{}, false, err
	}
	if !ok {
		return formats.ModelInfo{}, false, fmt.Errorf("asset %s not found", assetID)
	}
	info, ok := formats.ReadModelInfo(a.AbsolutePath)
	return info, ok, nil
}

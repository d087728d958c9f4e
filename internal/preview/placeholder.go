package preview

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strings"

	"github.com/Kalfadda/scythe/internal/formats"
)

// RenderMaterialPlaceholder synthesises a small shaded-sphere icon colored
// by the material's normal/metallic/emission flags, used when a material
// has no resolvable primary texture. Adapted from
// previews.rs::create_material_placeholder.
func RenderMaterialPlaceholder(w io.Writer, size int, info formats.MaterialInfo) error {
	var hasNormal, hasMetallic, hasEmission bool
	for _, t := range info.Textures {
		name := strings.ToLower(t.SlotName)
		if strings.Contains(name, "bump") || strings.Contains(name, "normal") {
			hasNormal = true
		}
		if strings.Contains(name, "metallic") || strings.Contains(name, "specular") {
			hasMetallic = true
		}
		if strings.Contains(name, "emission") || strings.Contains(name, "emissive") {
			hasEmission = true
		}
	}

	base := color.RGBA{R: 120, G: 120, B: 130, A: 255}
	if hasMetallic {
		base = color.RGBA{R: 150, G: 150, B: 160, A: 255}
	}
	if hasEmission {
		base = color.RGBA{R: 200, G: 160, B: 80, A: 255}
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cx, cy := float64(size)/2, float64(size)/2
	radius := float64(size) / 2.2

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist > radius {
				img.Set(x, y, color.RGBA{})
				continue
			}
			// Simple directional shading, stronger when a normal map is present.
			shade := 1.0 - dist/radius*0.6
			if hasNormal {
				shade += 0.08 * math.Cos(dx/radius*math.Pi)
			}
			if shade < 0 {
				shade = 0
			}
			img.Set(x, y, color.RGBA{
				R: scaleChannel(base.R, shade),
				G: scaleChannel(base.G, shade),
				B: scaleChannel(base.B, shade),
				A: 255,
			})
		}
	}

	return png.Encode(w, img)
}

func scaleChannel(c uint8, shade float64) uint8 {
	v := float64(c) * shade
	if v > 255 {
		v = 255
	}
	if v < 0 {
		v = 0
	}
	return uint8(v)
}

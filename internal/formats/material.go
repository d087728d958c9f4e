// Package formats extracts summary metadata from material and model files —
// the "collaborator-facing" Format Parsers component of spec.md §4.H,
// translated from previews.rs's parse_material_file / parse_model_info and
// their per-format helpers.
package formats

import (
	"os"
	"regexp"
	"strings"
)

// MaterialTexture is one texture slot referenced by a material.
type MaterialTexture struct {
	SlotName    string
	TextureGUID string
}

// MaterialInfo summarizes a Unity .mat file's shader and texture slots.
type MaterialInfo struct {
	ShaderName string
	Textures   []MaterialTexture
}

var (
	shaderNamePattern = regexp.MustCompile(`m_Shader:\s*\{fileID:\s*\d+,\s*guid:\s*([a-f0-9]{32}).*\}`)
	materialNamePattern = regexp.MustCompile(`m_Name:\s*(.+)`)
	textureSlotPattern = regexp.MustCompile(`- (\w+):\s*\n\s*m_Texture:\s*\{[^}]*guid:\s*([a-f0-9]{32})`)
)

// ParseMaterialFile extracts the shader reference and texture slots from a
// Unity YAML material file's raw text.
func ParseMaterialFile(content []byte) MaterialInfo {
	text := string(content)

	info := MaterialInfo{ShaderName: "Unknown"}
	if m := materialNamePattern.FindStringSubmatch(text); m != nil {
		info.ShaderName = strings.TrimSpace(m[1])
	}
	if m := shaderNamePattern.FindStringSubmatch(text); m != nil {
		info.ShaderName = m[1]
	}

	for _, m := range textureSlotPattern.FindAllStringSubmatch(text, -1) {
		info.Textures = append(info.Textures, MaterialTexture{
			SlotName:    m[1],
			TextureGUID: m[2],
		})
	}
	return info
}

// PrimaryTextureSlot locates the material's primary texture slot by
// substring match against common albedo/diffuse naming conventions,
// falling back to the first texture slot if none match.
func PrimaryTextureSlot(info MaterialInfo) (MaterialTexture, bool) {
	names := []string{"albedo", "diffuse", "maintex", "base"}
	for _, t := range info.Textures {
		lower := strings.ToLower(t.SlotName)
		for _, n := range names {
			if strings.Contains(lower, n) {
				return t, true
			}
		}
	}
	if len(info.Textures) > 0 {
		return info.Textures[0], true
	}
	return MaterialTexture{}, false
}

// ReadMaterialInfo reads and parses a material file from disk.
func ReadMaterialInfo(path string) (MaterialInfo, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return MaterialInfo{}, err
	}
	return ParseMaterialFile(content), nil
}

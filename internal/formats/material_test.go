package formats

import "testing"

const sampleMaterial = `%YAML 1.1
Material:
  m_Name: TestMat
  m_Shader: {fileID: 4800000, guid: bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb, type: 3}
  m_SavedProperties:
    m_TexEnvs:
    - _MainTex:
        m_Texture: {fileID: 2800000, guid: aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa, type: 3}
    - _BumpMap:
        m_Texture: {fileID: 2800000, guid: cccccccccccccccccccccccccccccccc, type: 3}
`

func TestParseMaterialFile(t *testing.T) {
	t.Parallel()
	info := ParseMaterialFile([]byte(sampleMaterial))

	if info.ShaderName != "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb" {
		t.Errorf("ParseMaterialFile() ShaderName = %q, want the shader guid", info.ShaderName)
	}
	if len(info.Textures) != 2 {
		t.Fatalf("ParseMaterialFile() Textures = %v, want 2 slots", info.Textures)
	}
	if info.Textures[0].SlotName != "_MainTex" {
		t.Errorf("ParseMaterialFile() Textures[0].SlotName = %q, want _MainTex", info.Textures[0].SlotName)
	}
}

func TestPrimaryTextureSlot(t *testing.T) {
	t.Parallel()
	info := MaterialInfo{Textures: []MaterialTexture{
		{SlotName: "_BumpMap", TextureGUID: "x"},
		{SlotName: "_MainTex", TextureGUID: "y"},
	}}
	slot, ok := PrimaryTextureSlot(info)
	if !ok {
		t.Fatal("PrimaryTextureSlot() ok = false")
	}
	if slot.SlotName != "_MainTex" {
		t.Errorf("PrimaryTextureSlot() = %q, want _MainTex (matches 'maintex')", slot.SlotName)
	}

	fallback := MaterialInfo{Textures: []MaterialTexture{{SlotName: "_Normal", TextureGUID: "z"}}}
	slot, ok = PrimaryTextureSlot(fallback)
	if !ok || slot.SlotName != "_Normal" {
		t.Errorf("PrimaryTextureSlot() fallback = %+v, want first slot", slot)
	}

	empty := MaterialInfo{}
	if _, ok := PrimaryTextureSlot(empty); ok {
		t.Error("PrimaryTextureSlot() on material with no textures should return false")
	}
}

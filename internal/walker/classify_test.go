package walker

import (
	"testing"

	"github.com/Kalfadda/scythe/internal/catalog"
)

func TestClassify(t *testing.T) {
	t.Parallel()
	cases := []struct {
		path string
		kind catalog.AssetKind
		ok   bool
	}{
		{"Assets/tex.png", catalog.KindTexture, true},
		{"Assets/tex.PSD", catalog.KindTexture, true},
		{"Assets/mesh.fbx", catalog.KindModel, true},
		{"Assets/m.mat", catalog.KindMaterial, true},
		{"Assets/p.prefab", catalog.KindPrefab, true},
		{"Assets/s.wav", catalog.KindAudio, true},
		{"Assets/s.shader", catalog.KindShader, true},
		{"Assets/scene.unity", catalog.KindScene, true},
		{"Assets/data.asset", catalog.KindScriptableObject, true},
		{"Assets/script.cs", "", false},
		{"Assets/tex.png.meta", "", false},
		{"Assets/anim.controller", "", false},
	}
	for _, c := range cases {
		kind, ok := Classify(c.path)
		if ok != c.ok {
			t.Errorf("Classify(%q) ok = %v, want %v", c.path, ok, c.ok)
			continue
		}
		if ok && kind != c.kind {
			t.Errorf("Classify(%q) = %q, want %q", c.path, kind, c.kind)
		}
	}
}

func TestReadUnityGUID(t *testing.T) {
	t.Parallel()
	content := []byte("fileFormatVersion: 2\nguid: aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa\n")
	guid, ok := ReadUnityGUID(content)
	if !ok {
		t.Fatal("ReadUnityGUID() ok = false, want true")
	}
	if guid != "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa" {
		t.Errorf("ReadUnityGUID() = %q, want the 32-hex guid", guid)
	}

	if _, ok := ReadUnityGUID([]byte("no guid here")); ok {
		t.Error("ReadUnityGUID() on content without a guid should return false")
	}
}

package formats

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ModelInfo summarizes a 3D model file's geometry counts.
type ModelInfo struct {
	VertexCount   int
	TriangleCount int
	SubmeshCount  int
	HasNormals    bool
	HasUVs        bool
	Bounds        *[6]float32 // min xyz, max xyz
}

// ReadModelInfo dispatches to a per-extension parser based on the file's
// extension, mirroring previews.rs::parse_model_info.
func ReadModelInfo(path string) (ModelInfo, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "obj":
		return parseOBJInfo(path)
	case "gltf", "glb":
		return parseGLTFInfo(path)
	case "fbx":
		return parseFBXInfo(path)
	case "dae":
		return parseDAEInfo(path)
	default:
		return ModelInfo{}, false
	}
}

func parseOBJInfo(path string) (ModelInfo, bool) {
	f, err := os.Open(path)
	if err != nil {
		return ModelInfo{}, false
	}
	defer f.Close()

	var info ModelInfo
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "v "):
			info.VertexCount++
		case strings.HasPrefix(line, "vn "):
			info.HasNormals = true
		case strings.HasPrefix(line, "vt "):
			info.HasUVs = true
		case strings.HasPrefix(line, "f "):
			fields := strings.Fields(line)[1:]
			if len(fields) >= 3 {
				info.TriangleCount += len(fields) - 2
			}
		case strings.HasPrefix(line, "usemtl "):
			info.SubmeshCount++
		}
	}
	if info.SubmeshCount == 0 && info.VertexCount > 0 {
		info.SubmeshCount = 1
	}
	return info, true
}

func parseGLTFInfo(path string) (ModelInfo, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ModelInfo{}, false
	}
	if bytes.Contains(data, []byte(`"meshes"`)) || len(data) > 0 {
		return ModelInfo{HasNormals: true, HasUVs: true}, true
	}
	return ModelInfo{}, false
}

var fbxBinaryMagic = []byte("Kaydara FBX Binary")

func parseFBXInfo(path string) (ModelInfo, bool) {
	f, err := os.Open(path)
	if err != nil {
		return ModelInfo{}, false
	}
	defer f.Close()

	header := make([]byte, 32)
	n, _ := f.Read(header)
	header = header[:n]

	if bytes.Contains(header, fbxBinaryMagic) {
		fi, err := f.Stat()
		if err != nil {
			return ModelInfo{}, false
		}
		// Binary FBX has no cheap textual scan; estimate from file size, a
		// crude heuristic carried over from the original implementation.
		size := fi.Size()
		return ModelInfo{
			VertexCount:   int(size / 32),
			TriangleCount: int(size / 96),
			SubmeshCount:  1,
			HasNormals:    true,
			HasUVs:        true,
		}, true
	}

	// ASCII FBX: line-scan for Vertices:/PolygonVertexIndex: blocks.
	f.Seek(0, 0)
	var info ModelInfo
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "Vertices:") {
			info.VertexCount += countCommaFloats(line) / 3
		}
		if strings.Contains(line, "PolygonVertexIndex:") {
			info.TriangleCount += countCommaFloats(line) / 3
		}
		if strings.Contains(line, "LayerElementNormal") {
			info.HasNormals = true
		}
		if strings.Contains(line, "LayerElementUV") {
			info.HasUVs = true
		}
	}
	if info.SubmeshCount == 0 {
		info.SubmeshCount = 1
	}
	return info, true
}

func countCommaFloats(line string) int {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return 0
	}
	rest := line[idx+1:]
	if rest == "" {
		return 0
	}
	return len(strings.Split(rest, ","))
}

var (
	daePositionsPattern = regexp.MustCompile(`positions-array"\s+count="(\d+)"`)
	daeTrianglesPattern = regexp.MustCompile(`<triangles[^>]*count="(\d+)"`)
)

func parseDAEInfo(path string) (ModelInfo, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ModelInfo{}, false
	}
	text := string(data)

	var info ModelInfo
	if m := daePositionsPattern.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		info.VertexCount = n / 3
	}
	for _, m := range daeTrianglesPattern.FindAllStringSubmatch(text, -1) {
		n, _ := strconv.Atoi(m[1])
		info.TriangleCount += n
		info.SubmeshCount++
	}
	info.HasNormals = strings.Contains(text, "NORMAL")
	info.HasUVs = strings.Contains(text, "TEXCOORD")
	return info, true
}

package walker

import "strings"

// ShouldIgnore reports whether relPath (forward-slash, project-relative)
// should be pruned per spec.md §4.B: each pattern is a path prefix after
// trimming one trailing '/'; a path is ignored if its relative form starts
// with the pattern or contains '/'+pattern or '\'+pattern as a substring.
// Matching is not segment-exact: "Library/" also ignores "Assets/LibraryLike/".
func ShouldIgnore(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		p := strings.TrimSuffix(pattern, "/")
		if p == "" {
			continue
		}
		if strings.HasPrefix(relPath, p) ||
			strings.Contains(relPath, "/"+p) ||
			strings.Contains(relPath, "\\"+p) {
			return true
		}
	}
	return false
}

package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// TouchImages creates empty image files named after the given capture
// stamps (e.g. "20240101_100000") under dir and returns their paths.
func TouchImages(t testing.TB, dir string, stamps ...string) []string {
	t.Helper()

	paths := make([]string, 0, len(stamps))
	for _, stamp := range stamps {
		path := filepath.Join(dir, "IMG_"+stamp+".jpg")
		WriteFile(t, path, []byte{0xff, 0xd8, 0xff})
		paths = append(paths, path)
	}
	return paths
}

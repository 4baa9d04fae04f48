package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"storyreel/internal/scenes"
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

// WriteScript stages the project input script.
func WriteScript(t testing.TB, projectDir string, script string) {
	t.Helper()
	WriteFile(t, filepath.Join(projectDir, "input", "script"), []byte(script))
}

// WriteScenes persists a scene document artifact for a stage under test.
func WriteScenes(t testing.TB, path string, doc scenes.Document) {
	t.Helper()
	if err := scenes.Save(path, doc); err != nil {
		t.Fatalf("save scenes %s: %v", path, err)
	}
}

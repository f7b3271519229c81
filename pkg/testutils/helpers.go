package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// CreateTree creates files (with parent directories) under root. Keys are
// forward-slash relative paths, values are file contents.
func CreateTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0644))
	}
}

// CreateFiles creates empty files (with parent directories) under root.
func CreateFiles(t *testing.T, root string, rels ...string) {
	t.Helper()
	files := make(map[string]string, len(rels))
	for _, rel := range rels {
		files[rel] = "content of " + rel
	}
	CreateTree(t, root, files)
}

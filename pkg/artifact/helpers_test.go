package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTree creates files under root. Keys ending in "/" create empty directories.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if name[len(name)-1] == '/' {
			require.NoError(t, os.MkdirAll(path, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// setupStore builds a store over a temporary root populated with files.
func setupStore(t *testing.T, files map[string]string) (*Store, string) {
	t.Helper()

	root := t.TempDir()
	writeTree(t, root, files)
	return NewStore(DefaultLayout(root)), root
}

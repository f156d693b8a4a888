package artifact

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListOptions_Directories(t *testing.T) {
	t.Run("returns visible subdirectories sorted", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{
			"twitter/":     "",
			"facebook/":    "",
			"reddit/":      "",
			".cache/":      "",
			"readme.txt":   "not a platform",
			"Mastodon/":    "",
			".hidden.html": "",
		})

		options, err := ListOptions(root, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"Mastodon", "facebook", "reddit", "twitter"}, options)
	})

	t.Run("empty directory yields empty sequence", func(t *testing.T) {
		options, err := ListOptions(t.TempDir(), DirFilter{})
		require.NoError(t, err)
		assert.NotNil(t, options)
		assert.Empty(t, options)
	})

	t.Run("missing directory is NotFoundError", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "nope")

		options, err := ListOptions(missing, DirFilter{})
		assert.Nil(t, options)
		require.Error(t, err)
		assert.True(t, IsNotFound(err))

		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, missing, nf.Path)
	})

	t.Run("file instead of directory is NotFoundError", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"platforms": "oops"})

		_, err := ListOptions(filepath.Join(root, "platforms"), DirFilter{})
		assert.True(t, IsNotFound(err))
		assert.Contains(t, err.Error(), "not a directory")
	})

	t.Run("unreadable directory is NotFoundError with cause", func(t *testing.T) {
		root := t.TempDir()
		orig := readDir
		readDir = func(string) ([]os.DirEntry, error) { return nil, fs.ErrPermission }
		t.Cleanup(func() { readDir = orig })

		options, err := ListOptions(root, DirFilter{})
		assert.Nil(t, options)
		assert.True(t, IsNotFound(err))
		assert.ErrorIs(t, err, fs.ErrPermission)
		assert.Contains(t, err.Error(), "is not readable")

		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, root, nf.Path)
	})

	t.Run("directory without read permission", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("permissions are not enforced for root")
		}
		root := t.TempDir()
		locked := filepath.Join(root, "locked")
		require.NoError(t, os.Mkdir(locked, 0o000))
		t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

		_, err := ListOptions(locked, DirFilter{})
		assert.True(t, IsNotFound(err))
		assert.ErrorIs(t, err, fs.ErrPermission)
	})

	t.Run("follows symlinks and skips broken ones", func(t *testing.T) {
		root := t.TempDir()
		target := t.TempDir()
		require.NoError(t, os.Symlink(target, filepath.Join(root, "linked")))
		require.NoError(t, os.Symlink(filepath.Join(root, "gone"), filepath.Join(root, "broken")))
		writeTree(t, root, map[string]string{"real/": ""})

		options, err := ListOptions(root, DirFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"linked", "real"}, options)
	})
}

func TestListOptions_Pattern(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"cluster_b.html":       "<html></html>",
		"cluster_a.html":       "<html></html>",
		"cluster_.html":        "",
		"wordcloud_a.png":      "png",
		"notes.txt":            "",
		"cluster_dir.html/":    "",
		".cluster_hidden.html": "",
	})

	options, err := ListOptions(root, ClusterPattern)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, options)

	for _, id := range options {
		_, err := os.Stat(filepath.Join(root, ClusterPattern.Format(id)))
		assert.NoError(t, err, "identifier %q must map back to its file", id)
	}
}

func TestIntersect(t *testing.T) {
	assert.Equal(t, []string{"b", "d"}, intersect([]string{"a", "b", "d"}, []string{"b", "c", "d", "e"}))
	assert.Equal(t, []string{}, intersect(nil, []string{"a"}))
}

package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// readDir lists a directory; tests replace it to simulate unreadable trees.
var readDir = os.ReadDir

// NameFilter decides whether a directory entry is an option and which identifier it carries.
// dir is the directory being listed, so implementations can follow symlinks.
type NameFilter interface {
	Match(dir string, entry fs.DirEntry) (string, bool)
}

// DirFilter accepts every directory that is not hidden. The identifier is the directory name.
type DirFilter struct{}

// Match implements NameFilter.
func (DirFilter) Match(dir string, entry fs.DirEntry) (string, bool) {
	if isHidden(entry.Name()) {
		return "", false
	}
	mode, ok := entryMode(dir, entry)
	if !ok || !mode.IsDir() {
		return "", false
	}
	return entry.Name(), true
}

// Match implements NameFilter: regular files following the pattern, identifier stripped of affixes.
func (p Pattern) Match(dir string, entry fs.DirEntry) (string, bool) {
	if isHidden(entry.Name()) {
		return "", false
	}
	id, ok := p.Parse(entry.Name())
	if !ok {
		return "", false
	}
	mode, ok := entryMode(dir, entry)
	if !ok || !mode.IsRegular() {
		return "", false
	}
	return id, true
}

// ListOptions enumerates the identifiers accepted by filter in basePath, sorted ascending.
// A nil filter means DirFilter.
//
// Returns a *NotFoundError if basePath is missing, not a directory, or unreadable.
// An existing empty directory yields an empty, non-nil slice. Entries whose metadata
// cannot be read are skipped silently.
func ListOptions(basePath string, filter NameFilter) ([]string, error) {
	if filter == nil {
		filter = DirFilter{}
	}

	info, err := os.Stat(basePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: basePath}
		}
		return nil, &NotFoundError{Path: basePath, Err: err}
	}
	if !info.IsDir() {
		return nil, &NotFoundError{Path: basePath, Err: fmt.Errorf("not a directory")}
	}

	entries, err := readDir(basePath)
	if err != nil {
		return nil, &NotFoundError{Path: basePath, Err: err}
	}

	options := make([]string, 0, len(entries))
	for _, entry := range entries {
		if id, ok := filter.Match(basePath, entry); ok {
			options = append(options, id)
		}
	}

	sort.Strings(options)
	return options, nil
}

// entryMode returns the type bits of an entry, following symlinks.
func entryMode(dir string, entry fs.DirEntry) (fs.FileMode, bool) {
	mode := entry.Type()
	if mode&fs.ModeSymlink == 0 {
		return mode, true
	}

	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	if err != nil {
		return 0, false
	}
	return info.Mode(), true
}

// contains reports whether id is one of options. options must be sorted.
func contains(options []string, id string) bool {
	i := sort.SearchStrings(options, id)
	return i < len(options) && options[i] == id
}

// intersect returns the identifiers present in both sorted slices, sorted.
func intersect(a, b []string) []string {
	out := make([]string, 0)
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

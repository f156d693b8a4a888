package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// errInvalidEncoding marks text artifacts that are not valid UTF-8.
var errInvalidEncoding = errors.New("content is not valid UTF-8")

// ResolveOptions controls how much work Resolve does per artifact.
type ResolveOptions struct {
	// LoadContent reads every existing file artifact into memory.
	LoadContent bool
}

// Resolve maps a fully specified selection to its artifacts.
//
// Existence is checked on every call. With LoadContent, each existing file is read; a
// read failure or invalid text encoding is recorded on that artifact as a *LoadError
// and the remaining artifacts still resolve.
//
// Returns an *InvalidSelectionError if the page is unknown, the selection is not
// fully specified, a value is not a safe identifier, or a value is not in its
// dimension's current options. Returns a *NotFoundError if a root directory is missing.
func (s *Store) Resolve(name PageName, sel Selection, opts ResolveOptions) (*Record, error) {
	page, err := s.Page(name)
	if err != nil {
		return nil, err
	}

	if page.State(sel) != FullySpecified {
		return nil, &InvalidSelectionError{
			Page:   name,
			Reason: fmt.Sprintf("selection is not fully specified (missing: %s)", strings.Join(page.Missing(sel), ", ")),
		}
	}

	resolved := Selection{}
	for _, d := range page.Dimensions {
		value, ok := sel.Get(d.Name)
		if !ok {
			continue
		}
		if err := ValidateIdentifier(value); err != nil {
			return nil, &InvalidSelectionError{Page: name, Dimension: d.Name, Value: value, Reason: err.Error()}
		}
		resolved[d.Name] = value
	}

	// Every value must be among the options its ancestors currently allow.
	if _, err := s.Apply(name, resolved); err != nil {
		return nil, err
	}

	record := &Record{Page: name, Selection: resolved}
	for _, spec := range page.artifacts(resolved) {
		a := inspect(spec)
		if opts.LoadContent {
			load(a)
		}
		record.Artifacts = append(record.Artifacts, a)
	}

	if name == PagePlatforms {
		clusters, err := ListOptions(s.layout.ClustersDir(resolved[DimPlatform]), ClusterPattern)
		if err == nil {
			record.Clusters = clusters
		}
	}

	return record, nil
}

// Load resolves sel and reads the single artifact of the given kind.
//
// An artifact that does not exist is returned with Exists false and no error.
// A read failure is returned both on the artifact and as a *LoadError.
func (s *Store) Load(name PageName, sel Selection, kind Kind) (*Artifact, error) {
	record, err := s.Resolve(name, sel, ResolveOptions{})
	if err != nil {
		return nil, err
	}

	a, ok := record.Artifact(kind)
	if !ok {
		return nil, &InvalidSelectionError{Page: name, Reason: fmt.Sprintf("no '%s' artifact for this selection", kind)}
	}

	load(a)
	if a.Err != nil {
		return a, a.Err
	}
	return a, nil
}

// inspect builds an artifact from its expected location with a fresh existence check.
func inspect(spec artifactSpec) *Artifact {
	a := &Artifact{Kind: spec.kind, Path: spec.path, MediaType: spec.mediaType}
	if spec.mediaType == MediaTypeDirectory {
		a.Exists = dirExists(spec.path)
	} else {
		a.Exists = fileExists(spec.path)
	}
	return a
}

// load reads an existing file artifact. Directories and missing files are left untouched.
func load(a *Artifact) {
	if !a.Exists || a.MediaType == MediaTypeDirectory {
		return
	}

	data, err := os.ReadFile(a.Path)
	if err != nil {
		a.Err = &LoadError{Kind: a.Kind, Path: a.Path, Err: err}
		return
	}

	if a.IsText() {
		if !utf8.Valid(data) {
			a.Err = &LoadError{Kind: a.Kind, Path: a.Path, Err: errInvalidEncoding}
			return
		}
		a.Title = documentTitle(data)
	}

	a.Content = data
}

// documentTitle returns the whitespace-normalized text of the first <title> element.
func documentTitle(data []byte) string {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return ""
	}

	var find func(n *html.Node) *html.Node
	find = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode && n.Data == "title" {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := find(c); found != nil {
				return found
			}
		}
		return nil
	}

	title := find(doc)
	if title == nil {
		return ""
	}

	var sb strings.Builder
	for c := title.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

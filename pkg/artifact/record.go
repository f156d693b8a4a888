package artifact

import (
	"encoding/json"
	"strings"
)

// Kind identifies an artifact type within a page.
type Kind string

const (
	KindNetwork      Kind = "network"
	KindDensity      Kind = "density"
	KindClusterList  Kind = "cluster-list"
	KindClusterView  Kind = "cluster-view"
	KindWordcloud    Kind = "wordcloud"
	KindPolarization Kind = "polarization"
	KindCohesion     Kind = "cohesion"
)

// Media types reported for artifacts.
const (
	MediaTypeHTML      = "text/html; charset=utf-8"
	MediaTypePNG       = "image/png"
	MediaTypeDirectory = "inode/directory"
)

// Artifact is one expected artifact of a resolved selection.
// Exists reflects a file system check made during the resolve call that produced it.
type Artifact struct {
	Kind      Kind       `json:"kind"`
	Path      string     `json:"path"`
	MediaType string     `json:"media_type"`
	Exists    bool       `json:"exists"`
	Title     string     `json:"title,omitempty"` // <title> of HTML artifacts, set when content was loaded
	Content   []byte     `json:"-"`
	Err       *LoadError `json:"-"`
}

// Available reports whether the artifact exists and, if it was loaded, loaded cleanly.
func (a *Artifact) Available() bool {
	return a.Exists && a.Err == nil
}

// IsText reports whether the artifact holds text (HTML) rather than binary data.
func (a *Artifact) IsText() bool {
	return strings.HasPrefix(a.MediaType, "text/")
}

// MarshalJSON adds the availability flag and load error message to the encoded artifact.
func (a *Artifact) MarshalJSON() ([]byte, error) {
	type plain Artifact
	out := struct {
		*plain
		Available bool   `json:"available"`
		Error     string `json:"error,omitempty"`
	}{plain: (*plain)(a), Available: a.Available()}
	if a.Err != nil {
		out.Error = a.Err.Error()
	}
	return json.Marshal(out)
}

// Record is the result of resolving a fully specified selection.
type Record struct {
	Page      PageName    `json:"page"`
	Selection Selection   `json:"selection"`
	Artifacts []*Artifact `json:"artifacts"`
	Clusters  []string    `json:"clusters,omitempty"` // cluster identifiers of the selected platform
}

// Artifact returns the artifact of the given kind, if the page produces one for this selection.
func (r *Record) Artifact(kind Kind) (*Artifact, bool) {
	for _, a := range r.Artifacts {
		if a.Kind == kind {
			return a, true
		}
	}
	return nil, false
}

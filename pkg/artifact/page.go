package artifact

import (
	"fmt"
	"path/filepath"
)

// PageName identifies a view mode.
type PageName string

const (
	// PagePlatforms browses one platform: network, density and its clusters.
	PagePlatforms PageName = "platforms"

	// PageMetrics shows the polarization and cohesion charts of one category.
	PageMetrics PageName = "metrics"

	// PageUsers shows the network and density plots of one user within a category.
	PageUsers PageName = "users"
)

// Dimension names used by the built-in pages.
const (
	DimPlatform = "platform"
	DimCluster  = "cluster"
	DimCategory = "category"
	DimUser     = "user"
)

// Dimension is one axis of choice on a page.
// Parent is empty for root dimensions.
type Dimension struct {
	Name   string `json:"name"`
	Label  string `json:"label"`
	Parent string `json:"parent,omitempty"`

	// list computes the options given a selection where every ancestor is set
	list func(sel Selection) ([]string, error)
}

// Page declares the dimensions of one view mode, parents before children, and
// which of them must be chosen before the page can be resolved.
type Page struct {
	Name       PageName    `json:"name"`
	Title      string      `json:"title"`
	Dimensions []Dimension `json:"dimensions"`
	Required   []string    `json:"required"`

	artifacts func(sel Selection) []artifactSpec
}

// artifactSpec is the canonical location of one expected artifact.
type artifactSpec struct {
	kind      Kind
	path      string
	mediaType string
}

// Dimension looks up a dimension by name.
func (p *Page) Dimension(name string) (*Dimension, bool) {
	for i := range p.Dimensions {
		if p.Dimensions[i].Name == name {
			return &p.Dimensions[i], true
		}
	}
	return nil, false
}

// Ancestors returns the ancestors of a dimension, root first.
func (p *Page) Ancestors(name string) []string {
	var chain []string
	d, ok := p.Dimension(name)
	for ok && d.Parent != "" {
		chain = append([]string{d.Parent}, chain...)
		d, ok = p.Dimension(d.Parent)
	}
	return chain
}

// Descendants returns every transitive child of a dimension in declaration order,
// which guarantees that a parent is always visited before its children.
func (p *Page) Descendants(name string) []string {
	inSubtree := map[string]bool{name: true}
	var out []string
	for _, d := range p.Dimensions {
		if d.Parent != "" && inSubtree[d.Parent] {
			inSubtree[d.Name] = true
			out = append(out, d.Name)
		}
	}
	return out
}

// Options computes the OptionSet of a dimension given the ancestor values in sel.
// If any ancestor has no selection the set is empty. Only a missing root directory of
// a root dimension is reported as an error.
func (p *Page) Options(name string, sel Selection) ([]string, error) {
	d, ok := p.Dimension(name)
	if !ok {
		return nil, &InvalidSelectionError{Page: p.Name, Dimension: name, Reason: "unknown dimension"}
	}

	for _, ancestor := range p.Ancestors(name) {
		value, set := sel.Get(ancestor)
		if !set {
			return []string{}, nil
		}
		if err := ValidateIdentifier(value); err != nil {
			return nil, &InvalidSelectionError{Page: p.Name, Dimension: ancestor, Value: value, Reason: err.Error()}
		}
	}

	return d.list(sel)
}

// State classifies a selection against this page.
func (p *Page) State(sel Selection) State {
	chosen := 0
	for _, d := range p.Dimensions {
		if _, ok := sel.Get(d.Name); ok {
			chosen++
		}
	}
	if chosen == 0 {
		return NoSelection
	}

	for _, name := range p.Required {
		if _, ok := sel.Get(name); !ok {
			return RootChosen
		}
	}
	return FullySpecified
}

// Missing lists the required dimensions that have no value in sel.
func (p *Page) Missing(sel Selection) []string {
	var out []string
	for _, name := range p.Required {
		if _, ok := sel.Get(name); !ok {
			out = append(out, name)
		}
	}
	return out
}

// optional turns a missing child directory into an empty option set.
// Absence below a root is a flag, never an error.
func optional(options []string, err error) ([]string, error) {
	if IsNotFound(err) {
		return []string{}, nil
	}
	return options, err
}

func newPlatformsPage(l Layout) *Page {
	return &Page{
		Name:  PagePlatforms,
		Title: "Platform analysis",
		Dimensions: []Dimension{
			{
				Name:  DimPlatform,
				Label: "Platform",
				list: func(Selection) ([]string, error) {
					return ListOptions(l.Platforms, DirFilter{})
				},
			},
			{
				Name:   DimCluster,
				Label:  "Community",
				Parent: DimPlatform,
				list: func(sel Selection) ([]string, error) {
					return optional(ListOptions(l.ClustersDir(sel[DimPlatform]), ClusterPattern))
				},
			},
		},
		Required: []string{DimPlatform},
		artifacts: func(sel Selection) []artifactSpec {
			platform := sel[DimPlatform]
			dir := l.PlatformDir(platform)
			clusters := l.ClustersDir(platform)

			specs := []artifactSpec{
				{kind: KindNetwork, path: filepath.Join(dir, PlatformNetworkFile), mediaType: MediaTypeHTML},
				{kind: KindDensity, path: filepath.Join(dir, PlatformDensityFile), mediaType: MediaTypeHTML},
				{kind: KindClusterList, path: clusters, mediaType: MediaTypeDirectory},
			}
			if cluster, ok := sel.Get(DimCluster); ok {
				specs = append(specs,
					artifactSpec{kind: KindClusterView, path: filepath.Join(clusters, ClusterPattern.Format(cluster)), mediaType: MediaTypeHTML},
					artifactSpec{kind: KindWordcloud, path: filepath.Join(clusters, WordcloudPattern.Format(cluster)), mediaType: MediaTypePNG},
				)
			}
			return specs
		},
	}
}

func newMetricsPage(l Layout) *Page {
	return &Page{
		Name:  PageMetrics,
		Title: "Polarization and cohesion",
		Dimensions: []Dimension{
			{
				Name:  DimCategory,
				Label: "Category",
				list: func(Selection) ([]string, error) {
					// A category is offered only when both charts exist.
					polarization, err := ListOptions(l.Polarization, CategoryPattern)
					if err != nil {
						return nil, err
					}
					cohesion, err := ListOptions(l.Cohesion, CategoryPattern)
					if err != nil {
						return nil, err
					}
					return intersect(polarization, cohesion), nil
				},
			},
		},
		Required: []string{DimCategory},
		artifacts: func(sel Selection) []artifactSpec {
			file := CategoryPattern.Format(sel[DimCategory])
			return []artifactSpec{
				{kind: KindPolarization, path: filepath.Join(l.Polarization, file), mediaType: MediaTypeHTML},
				{kind: KindCohesion, path: filepath.Join(l.Cohesion, file), mediaType: MediaTypeHTML},
			}
		},
	}
}

func newUsersPage(l Layout) *Page {
	return &Page{
		Name:  PageUsers,
		Title: "Individual users",
		Dimensions: []Dimension{
			{
				Name:  DimCategory,
				Label: "Category",
				list: func(Selection) ([]string, error) {
					return ListOptions(l.Individual, DirFilter{})
				},
			},
			{
				Name:   DimUser,
				Label:  "User",
				Parent: DimCategory,
				list: func(sel Selection) ([]string, error) {
					return optional(ListOptions(filepath.Join(l.Individual, sel[DimCategory]), DirFilter{}))
				},
			},
		},
		Required: []string{DimCategory, DimUser},
		artifacts: func(sel Selection) []artifactSpec {
			dir := l.UserDir(sel[DimCategory], sel[DimUser])
			return []artifactSpec{
				{kind: KindNetwork, path: filepath.Join(dir, UserNetworkFile), mediaType: MediaTypeHTML},
				{kind: KindDensity, path: filepath.Join(dir, UserDensityFile), mediaType: MediaTypeHTML},
			}
		},
	}
}

// ParsePageName validates a page name coming from outside (CLI argument, URL).
func ParsePageName(s string) (PageName, error) {
	switch PageName(s) {
	case PagePlatforms, PageMetrics, PageUsers:
		return PageName(s), nil
	}
	return "", unknownPage(PageName(s))
}

func unknownPage(name PageName) error {
	return &InvalidSelectionError{
		Page:   name,
		Reason: fmt.Sprintf("unknown page (valid: %s, %s, %s)", PagePlatforms, PageMetrics, PageUsers),
	}
}

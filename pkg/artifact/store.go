package artifact

import "sort"

// Store is the read-only entry point over one artifact layout.
// It holds no cached listings: every call consults the file system again.
// A Store is safe for concurrent use.
type Store struct {
	layout Layout
	pages  map[PageName]*Page
}

// NewStore creates a store over layout.
func NewStore(layout Layout) *Store {
	return &Store{
		layout: layout,
		pages: map[PageName]*Page{
			PagePlatforms: newPlatformsPage(layout),
			PageMetrics:   newMetricsPage(layout),
			PageUsers:     newUsersPage(layout),
		},
	}
}

// Layout returns the layout the store reads.
func (s *Store) Layout() Layout {
	return s.layout
}

// Page returns the named page, or an *InvalidSelectionError for unknown names.
func (s *Store) Page(name PageName) (*Page, error) {
	if p, ok := s.pages[name]; ok {
		return p, nil
	}
	return nil, unknownPage(name)
}

// Pages returns every page in navigation order.
func (s *Store) Pages() []*Page {
	return []*Page{s.pages[PagePlatforms], s.pages[PageMetrics], s.pages[PageUsers]}
}

// ListOptions computes the OptionSet of dim on page given the ancestor values in sel.
func (s *Store) ListOptions(name PageName, dim string, sel Selection) ([]string, error) {
	page, err := s.Page(name)
	if err != nil {
		return nil, err
	}
	return page.Options(dim, sel)
}

// NewModel creates a selection model for the named page seeded with sel.
func (s *Store) NewModel(name PageName, sel Selection) (*Model, error) {
	page, err := s.Page(name)
	if err != nil {
		return nil, err
	}
	return NewModel(page, sel), nil
}

// Apply builds a model of the named page from sel, setting each value parent-first.
// Unlike NewModel it rejects rather than drops values: an unknown dimension or a value
// outside its OptionSet returns an *InvalidSelectionError.
func (s *Store) Apply(name PageName, sel Selection) (*Model, error) {
	page, err := s.Page(name)
	if err != nil {
		return nil, err
	}

	for dim, value := range sel {
		if _, ok := page.Dimension(dim); !ok {
			return nil, &InvalidSelectionError{Page: name, Dimension: dim, Value: value, Reason: "unknown dimension"}
		}
	}

	m := &Model{page: page, sel: Selection{}}
	for _, d := range page.Dimensions {
		value, ok := sel.Get(d.Name)
		if !ok {
			continue
		}
		if err := m.Set(d.Name, value); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Summarize summarizes one platform folder.
func (s *Store) Summarize(platform string) (Summary, error) {
	if err := ValidateIdentifier(platform); err != nil {
		return Summary{}, &InvalidSelectionError{Page: PagePlatforms, Dimension: DimPlatform, Value: platform, Reason: err.Error()}
	}
	return Summarize(s.layout.PlatformDir(platform)), nil
}

// Overview summarizes every platform. Fails only if the platforms root is missing.
func (s *Store) Overview() ([]PlatformSummary, error) {
	platforms, err := ListOptions(s.layout.Platforms, DirFilter{})
	if err != nil {
		return nil, err
	}

	out := make([]PlatformSummary, 0, len(platforms))
	for _, p := range platforms {
		out = append(out, PlatformSummary{
			Platform: p,
			Label:    DisplayLabel(p),
			Summary:  Summarize(s.layout.PlatformDir(p)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Platform < out[j].Platform })
	return out, nil
}

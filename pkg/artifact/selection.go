package artifact

import "fmt"

// Selection maps dimension names to chosen option identifiers.
// A dimension that is absent (or mapped to "") has no selection.
type Selection map[string]string

// Get returns the value chosen for a dimension.
func (s Selection) Get(dim string) (string, bool) {
	v, ok := s[dim]
	return v, ok && v != ""
}

// Clone returns an independent copy without empty entries. Never nil.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// State is the position of a page selection in its lifecycle.
type State int

const (
	// NoSelection means no dimension of the page has a value.
	NoSelection State = iota

	// RootChosen means some dimensions have values but a required one is missing.
	RootChosen

	// FullySpecified means every required dimension has a value; only this state resolves.
	FullySpecified
)

func (s State) String() string {
	switch s {
	case NoSelection:
		return "no_selection"
	case RootChosen:
		return "root_chosen"
	case FullySpecified:
		return "fully_specified"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler so states serialize by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Model owns the Selection of one page and keeps it consistent with the store.
// A Model is not safe for concurrent use; give each session or request its own.
type Model struct {
	page *Page
	sel  Selection
}

// NewModel builds a model for page seeded with sel. Seed values are kept only while
// they are still valid options, parents first, so a selection persisted before the
// store changed comes back without stale entries.
func NewModel(page *Page, sel Selection) *Model {
	m := &Model{page: page, sel: Selection{}}

	for _, d := range page.Dimensions {
		value, ok := sel.Get(d.Name)
		if !ok {
			continue
		}
		options, err := page.Options(d.Name, m.sel)
		if err != nil || !contains(options, value) {
			continue
		}
		m.sel[d.Name] = value
	}

	return m
}

// Page returns the page this model navigates.
func (m *Model) Page() *Page {
	return m.page
}

// Current returns a copy of the current selection.
func (m *Model) Current() Selection {
	return m.sel.Clone()
}

// State classifies the current selection.
func (m *Model) State() State {
	return m.page.State(m.sel)
}

// Options computes the OptionSet of a dimension given the current selection.
func (m *Model) Options(dim string) ([]string, error) {
	return m.page.Options(dim, m.sel)
}

// Set chooses value for dim.
//
// Returns an *InvalidSelectionError if the dimension is unknown, an ancestor has no
// selection, or value is not in the dimension's current options. Returns a
// *NotFoundError if the options cannot be listed because a root directory is missing.
// On success every descendant whose value is no longer offered is cleared, transitively.
func (m *Model) Set(dim, value string) error {
	if _, ok := m.page.Dimension(dim); !ok {
		return &InvalidSelectionError{Page: m.page.Name, Dimension: dim, Value: value, Reason: "unknown dimension"}
	}
	if value == "" {
		return &InvalidSelectionError{Page: m.page.Name, Dimension: dim, Reason: "value cannot be empty"}
	}

	for _, ancestor := range m.page.Ancestors(dim) {
		if _, ok := m.sel.Get(ancestor); !ok {
			return &InvalidSelectionError{
				Page:      m.page.Name,
				Dimension: dim,
				Value:     value,
				Reason:    fmt.Sprintf("'%s' must be selected first", ancestor),
			}
		}
	}

	options, err := m.page.Options(dim, m.sel)
	if err != nil {
		return err
	}
	if !contains(options, value) {
		return &InvalidSelectionError{Page: m.page.Name, Dimension: dim, Value: value, Reason: "not among the available options"}
	}

	m.sel[dim] = value
	m.cascade(dim)
	return nil
}

// Clear removes the selection of dim and of every descendant.
func (m *Model) Clear(dim string) error {
	if _, ok := m.page.Dimension(dim); !ok {
		return &InvalidSelectionError{Page: m.page.Name, Dimension: dim, Reason: "unknown dimension"}
	}

	delete(m.sel, dim)
	m.cascade(dim)
	return nil
}

// cascade revalidates the descendants of dim after it changed.
// Descendants come parent-first, so a cleared child empties its own children's options.
func (m *Model) cascade(dim string) {
	for _, child := range m.page.Descendants(dim) {
		value, ok := m.sel.Get(child)
		if !ok {
			continue
		}
		options, err := m.page.Options(child, m.sel)
		if err != nil || !contains(options, value) {
			delete(m.sel, child)
		}
	}
}

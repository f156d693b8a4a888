package artifact

import "path/filepath"

// DefaultRoot is the artifact root used when no configuration overrides it.
const DefaultRoot = "static_data/plots"

// Layout locates the four independent subtrees of the artifact store.
// Each view reads only its own subtree, so they may live under different roots.
type Layout struct {
	Platforms    string `json:"platforms" yaml:"platforms"`
	Polarization string `json:"polarization" yaml:"polarization"`
	Cohesion     string `json:"cohesion" yaml:"cohesion"`
	Individual   string `json:"individual" yaml:"individual"`
}

// DefaultLayout places every subtree directly under root.
func DefaultLayout(root string) Layout {
	return Layout{
		Platforms:    filepath.Join(root, "platforms"),
		Polarization: filepath.Join(root, "polarization"),
		Cohesion:     filepath.Join(root, "cohesion"),
		Individual:   filepath.Join(root, "individual"),
	}
}

// Roots returns the subtree roots in a fixed order.
func (l Layout) Roots() []string {
	return []string{l.Platforms, l.Polarization, l.Cohesion, l.Individual}
}

// PlatformDir returns <platforms>/<platform>.
func (l Layout) PlatformDir(platform string) string {
	return filepath.Join(l.Platforms, platform)
}

// ClustersDir returns <platforms>/<platform>/clusters.
func (l Layout) ClustersDir(platform string) string {
	return filepath.Join(l.Platforms, platform, ClustersDir)
}

// UserDir returns <individual>/<category>/<user>.
func (l Layout) UserDir(category, user string) string {
	return filepath.Join(l.Individual, category, user)
}

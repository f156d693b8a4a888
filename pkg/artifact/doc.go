// Package artifact provides the read-only navigation model over a commviz artifact store.
//
// # Overview
//
// An external analysis pipeline renders its results as static files (HTML network and
// density plots, HTML polarization and cohesion charts, PNG word clouds) into a fixed
// directory layout. This package never writes to that layout. It discovers what is
// available by naming convention, tracks user choices across dependent dimensions, and
// maps a complete choice to concrete artifact files.
//
// # Core Concepts
//
// A Page is one view mode (platforms, metrics, users). Each page declares an ordered list
// of Dimensions; a dimension may have a parent, and its options are computed from the
// store given the values chosen for its ancestors.
//
// A Selection maps dimension names to chosen option identifiers. A Model owns one
// Selection for one page and keeps it consistent: changing an ancestor clears every
// descendant whose value is no longer offered.
//
// A Record is the result of resolving a fully specified Selection. It lists every
// expected artifact with its canonical path and a freshly checked existence flag, and
// optionally the artifact contents.
//
// # Directory Layout
//
//	<root>/platforms/<platform>/network_plot.html
//	<root>/platforms/<platform>/density_plot.html
//	<root>/platforms/<platform>/clusters/cluster_<name>.html
//	<root>/platforms/<platform>/clusters/wordcloud_<name>.png
//	<root>/polarization/<category>.html
//	<root>/cohesion/<category>.html
//	<root>/individual/<category>/<user>/network.html
//	<root>/individual/<category>/<user>/density.html
//
// Each of the four subtrees is configured independently through Layout, so a deployment
// may keep the individual user plots somewhere else entirely.
//
// # Usage Example
//
//	store := artifact.NewStore(artifact.DefaultLayout("static_data/plots"))
//
//	model, err := store.NewModel(artifact.PageUsers, nil)
//	if err != nil {
//		return err
//	}
//	if err := model.Set("category", "politics"); err != nil {
//		return err
//	}
//	if err := model.Set("user", "alice"); err != nil {
//		return err
//	}
//
//	record, err := store.Resolve(artifact.PageUsers, model.Current(), artifact.ResolveOptions{})
//	if err != nil {
//		return err
//	}
//	for _, a := range record.Artifacts {
//		fmt.Println(a.Kind, a.Path, a.Exists)
//	}
package artifact

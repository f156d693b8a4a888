package commands

import (
	"fmt"
	"strings"

	"github.com/dyluth/commviz/internal/printer"
	"github.com/dyluth/commviz/pkg/artifact"
)

// parseAssignments turns repeated --set dim=value flags into a selection.
func parseAssignments(values []string) (artifact.Selection, error) {
	sel := artifact.Selection{}
	for _, v := range values {
		dim, value, ok := strings.Cut(v, "=")
		dim, value = strings.TrimSpace(dim), strings.TrimSpace(value)
		if !ok || dim == "" || value == "" {
			return nil, printer.Error(
				fmt.Sprintf("invalid --set value: %s", v),
				"Selections are written as <dimension>=<value>.",
				[]string{"Example: --set platform=twitter --set cluster=c1"},
			)
		}
		if prev, dup := sel[dim]; dup && prev != value {
			return nil, printer.Error(
				fmt.Sprintf("dimension '%s' set twice", dim),
				fmt.Sprintf("Got both '%s' and '%s'.", prev, value),
				nil,
			)
		}
		sel[dim] = value
	}
	return sel, nil
}

// parsePage validates a page argument with a CLI-friendly error.
func parsePage(arg string) (artifact.PageName, error) {
	name, err := artifact.ParsePageName(arg)
	if err != nil {
		return "", printer.Error(
			fmt.Sprintf("unknown page: %s", arg),
			err.Error(),
			[]string{fmt.Sprintf("Valid pages: %s, %s, %s", artifact.PagePlatforms, artifact.PageMetrics, artifact.PageUsers)},
		)
	}
	return name, nil
}

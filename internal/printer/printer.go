package printer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dyluth/commviz/pkg/artifact"
	"github.com/fatih/color"
)

func init() {
	// Users can disable colors with NO_COLOR
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	faint  = color.New(color.Faint)
)

// Output destinations. Tests swap them for buffers.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// Success prints a success message in green with a checkmark prefix
func Success(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "✓") {
		msg = "✓ " + msg
	}
	green.Fprint(Stdout, msg)
}

// Info prints an informational message in the default color
func Info(format string, a ...any) {
	fmt.Fprintf(Stdout, format, a...)
}

// Warning prints a warning message in yellow to stderr
func Warning(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "⚠️") {
		msg = "⚠️  " + msg
	}
	yellow.Fprint(Stderr, msg)
}

// Step prints a step message with emphasis
func Step(format string, a ...any) {
	cyan.Fprintf(Stdout, "→ %s", fmt.Sprintf(format, a...))
}

// Dim prints secondary detail such as "no data" markers
func Dim(format string, a ...any) {
	faint.Fprintf(Stdout, format, a...)
}

// Error prints a formatted error with title, explanation and suggestions to stderr
// and returns a plain error for Cobra, which runs with SilenceErrors.
func Error(title string, explanation string, suggestions []string) error {
	return ErrorWithContext(title, explanation, nil, suggestions)
}

// ErrorWithContext is Error with key/value details printed between explanation and suggestions.
func ErrorWithContext(title string, explanation string, context map[string]string, suggestions []string) error {
	red.Fprintf(Stderr, "%s\n\n", title)

	if explanation != "" {
		fmt.Fprintf(Stderr, "%s\n", explanation)
	}

	if len(context) > 0 {
		keys := make([]string, 0, len(context))
		for key := range context {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fmt.Fprintf(Stderr, "\n")
		for _, key := range keys {
			fmt.Fprintf(Stderr, "  %s: %s\n", key, context[key])
		}
	}

	if len(suggestions) > 0 {
		fmt.Fprintf(Stderr, "\n")
		if len(suggestions) == 1 {
			fmt.Fprintf(Stderr, "%s\n", suggestions[0])
		} else {
			fmt.Fprintf(Stderr, "Either:\n")
			for i, suggestion := range suggestions {
				fmt.Fprintf(Stderr, "  %d. %s\n", i+1, suggestion)
			}
		}
	}

	return fmt.Errorf("%s", title)
}

// ArtifactError renders errors from the artifact store with store-specific guidance.
// Errors of other types are printed with a generic title.
func ArtifactError(err error, layout artifact.Layout) error {
	var notFound *artifact.NotFoundError
	var invalid *artifact.InvalidSelectionError
	var loadErr *artifact.LoadError

	switch {
	case errors.As(err, &notFound):
		return ErrorWithContext(
			"artifact directory not found",
			notFound.Error(),
			map[string]string{
				"platforms":    layout.Platforms,
				"polarization": layout.Polarization,
				"cohesion":     layout.Cohesion,
				"individual":   layout.Individual,
			},
			[]string{
				"Point --root (or COMMVIZ_ROOT) at the directory produced by the analysis pipeline",
				"Set per-view locations under 'views:' in commviz.yml",
			},
		)

	case errors.As(err, &invalid):
		suggestions := []string{"List the valid values with: commviz options " + string(invalid.Page) + " <dimension>"}
		if invalid.Dimension != "" {
			suggestions = []string{fmt.Sprintf("List the valid values with: commviz options %s %s", invalid.Page, invalid.Dimension)}
		}
		return Error("invalid selection", invalid.Error(), suggestions)

	case errors.As(err, &loadErr):
		return Error(
			fmt.Sprintf("failed to load %s artifact", loadErr.Kind),
			loadErr.Error(),
			[]string{"Check the file permissions and encoding of: " + loadErr.Path},
		)
	}

	return Error("command failed", err.Error(), nil)
}

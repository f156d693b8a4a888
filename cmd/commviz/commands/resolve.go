package commands

import (
	"fmt"
	"strings"

	"github.com/dyluth/commviz/internal/printer"
	"github.com/dyluth/commviz/internal/report"
	"github.com/dyluth/commviz/pkg/artifact"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	resolveSet    []string
	resolveLoad   bool
	resolveOutput string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <page>",
	Short: "Resolve a selection to its artifacts",
	Long: `Resolve a complete selection on a page to the artifacts it displays.

Every artifact is listed with its expected path and whether it exists; a missing
artifact is reported, not treated as an error. With --load, each artifact is read
to report its title, and read failures are shown per artifact.

Examples:
  # Whole-platform view
  commviz resolve platforms --set platform=twitter

  # One community, reading the files
  commviz resolve platforms --set platform=twitter --set cluster=c1 --load

  # Polarization and cohesion charts of a category
  commviz resolve metrics --set category=medios -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringArrayVar(&resolveSet, "set", nil, "Select a dimension value as dim=value (repeatable)")
	resolveCmd.Flags().BoolVar(&resolveLoad, "load", false, "Read each artifact to report titles and load errors")
	resolveCmd.Flags().StringVarP(&resolveOutput, "output", "o", "default", "Output format: default, jsonl or json")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(resolveOutput)
	if err != nil {
		return printer.Error("invalid output format", err.Error(), []string{"Use -o default, -o jsonl or -o json"})
	}

	name, err := parsePage(args[0])
	if err != nil {
		return err
	}
	sel, err := parseAssignments(resolveSet)
	if err != nil {
		return err
	}

	store := newStore()
	model, err := store.Apply(name, sel)
	if err != nil {
		return fail(err)
	}

	if model.State() != artifact.FullySpecified {
		missing := model.Page().Missing(model.Current())
		hints := make([]string, 0, len(missing))
		for _, dim := range missing {
			hints = append(hints, fmt.Sprintf("commviz options %s %s", name, dim))
		}
		return printer.Error(
			"selection is incomplete",
			fmt.Sprintf("Page '%s' needs a value for: %s", name, strings.Join(missing, ", ")),
			hints,
		)
	}

	record, err := store.Resolve(name, model.Current(), artifact.ResolveOptions{LoadContent: resolveLoad})
	if err != nil {
		return fail(err)
	}

	logger.Debug("selection resolved",
		zap.String("page", string(name)),
		zap.Int("artifacts", len(record.Artifacts)),
		zap.Bool("load", resolveLoad))
	if err := report.Record(cmd.OutOrStdout(), record, format); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

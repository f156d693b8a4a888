package commands

import (
	"fmt"

	"github.com/dyluth/commviz/internal/filter"
	"github.com/dyluth/commviz/internal/printer"
	"github.com/dyluth/commviz/internal/report"
	"github.com/spf13/cobra"
)

var (
	optionsSet    []string
	optionsMatch  string
	optionsLabel  string
	optionsOutput string
)

var optionsCmd = &cobra.Command{
	Use:   "options <page> <dimension>",
	Short: "List the values a dimension can take",
	Long: `List the values a dimension can take on a page, given the values already chosen
for its parent dimensions.

Pages and their dimensions:
  platforms   platform, cluster (cluster requires platform)
  metrics     category
  users       category, user (user requires category)

Options are discovered from the artifact tree on every call and sorted
lexicographically. A child dimension with no parent selected has no options.

Examples:
  # Every platform with a folder
  commviz options platforms platform

  # Communities of one platform
  commviz options platforms cluster --set platform=twitter

  # Users of a category whose name contains "ana", as JSON lines
  commviz options users user --set category=medios --label ana -o jsonl`,
	Args: cobra.ExactArgs(2),
	RunE: runOptions,
}

func init() {
	optionsCmd.Flags().StringArrayVar(&optionsSet, "set", nil, "Select a parent dimension value as dim=value (repeatable)")
	optionsCmd.Flags().StringVar(&optionsMatch, "match", "", "Only list identifiers matching a glob (e.g. 'c*')")
	optionsCmd.Flags().StringVar(&optionsLabel, "label", "", "Only list options whose display label contains this text")
	optionsCmd.Flags().StringVarP(&optionsOutput, "output", "o", "default", "Output format: default, jsonl or json")
	rootCmd.AddCommand(optionsCmd)
}

func runOptions(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(optionsOutput)
	if err != nil {
		return printer.Error("invalid output format", err.Error(), []string{"Use -o default, -o jsonl or -o json"})
	}

	criteria := filter.Criteria{Glob: optionsMatch, Label: optionsLabel}
	if err := criteria.Validate(); err != nil {
		return printer.Error("invalid filter", err.Error(), nil)
	}

	name, err := parsePage(args[0])
	if err != nil {
		return err
	}
	sel, err := parseAssignments(optionsSet)
	if err != nil {
		return err
	}

	model, err := newStore().Apply(name, sel)
	if err != nil {
		return fail(err)
	}

	dim := args[1]
	ids, err := model.Options(dim)
	if err != nil {
		return fail(err)
	}

	n, err := report.Options(cmd.OutOrStdout(), name, dim, criteria.Apply(ids), format)
	if err != nil {
		return fmt.Errorf("failed to write options: %w", err)
	}
	if format == report.FormatDefault && n == 0 && criteria.HasFilters() && len(ids) > 0 {
		printer.Dim("(%d options hidden by filters)\n", len(ids))
	}
	return nil
}

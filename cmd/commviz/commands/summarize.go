package commands

import (
	"fmt"

	"github.com/dyluth/commviz/internal/printer"
	"github.com/dyluth/commviz/internal/report"
	"github.com/dyluth/commviz/pkg/artifact"
	"github.com/spf13/cobra"
)

var summarizeOutput string

var summarizeCmd = &cobra.Command{
	Use:   "summarize [platform]",
	Short: "Show which artifacts exist for a platform",
	Long: `Report whether a platform's network and density plots exist and how many
communities it has.

With no argument, one row is printed per platform folder.

Examples:
  # All platforms
  commviz summarize

  # One platform as JSON
  commviz summarize twitter -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVarP(&summarizeOutput, "output", "o", "default", "Output format: default, jsonl or json")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(summarizeOutput)
	if err != nil {
		return printer.Error("invalid output format", err.Error(), []string{"Use -o default, -o jsonl or -o json"})
	}

	store := newStore()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		overview, err := store.Overview()
		if err != nil {
			return fail(err)
		}
		if err := report.Overview(out, overview, format); err != nil {
			return fmt.Errorf("failed to write overview: %w", err)
		}
		return nil
	}

	platform := args[0]
	summary, err := store.Summarize(platform)
	if err != nil {
		return fail(err)
	}
	if err := report.Summary(out, artifact.PlatformSummary{
		Platform: platform,
		Label:    artifact.DisplayLabel(platform),
		Summary:  summary,
	}, format); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

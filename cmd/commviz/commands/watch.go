package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/dyluth/commviz/internal/printer"
	"github.com/dyluth/commviz/internal/report"
	"github.com/dyluth/commviz/internal/watch"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var watchOutput string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print changes to the artifact tree as they happen",
	Long: `Watch the platform, polarization, cohesion and individual roots and print one
line per changed file or directory. Bursts of writes to the same path are
reported once. Runs until interrupted.

Examples:
  commviz watch
  commviz watch -o jsonl | jq .path`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "default", "Output format: default or jsonl")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(watchOutput)
	if err != nil {
		return printer.Error("invalid output format", err.Error(), []string{"Use -o default or -o jsonl"})
	}

	w, err := watch.New(cfg.Layout(), cfg.Debounce(), logger)
	if err != nil {
		return printer.Error("failed to start watcher", err.Error(), nil)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if format == report.FormatDefault {
		printer.Info("Watching %s (Ctrl+C to stop)\n", cfg.Root)
	}

	out := cmd.OutOrStdout()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx)
	})
	g.Go(func() error {
		for ev := range w.Events() {
			if err := report.Event(out, ev, format); err != nil {
				return err
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return printer.Error("watch failed", err.Error(), nil)
	}
	return nil
}

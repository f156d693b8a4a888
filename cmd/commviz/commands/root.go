package commands

import (
	"fmt"
	"os"

	"github.com/dyluth/commviz/internal/config"
	"github.com/dyluth/commviz/internal/logging"
	"github.com/dyluth/commviz/internal/printer"
	"github.com/dyluth/commviz/pkg/artifact"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version string
	commit  string
	date    string
)

// Global flags
var (
	configPath   string
	rootOverride string
	verbose      bool
)

// Loaded in PersistentPreRunE for every command that needs the store
var (
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "commviz",
	Short: "commviz - browse community-analysis artifacts",
	Long: `commviz is a read-only browser over the network, density, polarization and
cohesion visualizations produced by a community-analysis pipeline.

It discovers what was generated by naming convention, lets you pick a platform,
category or user, and resolves the selection to the matching artifacts, either
on the command line or through an HTTP API (commviz serve).`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations["skipConfig"] == "true" {
			return nil
		}
		return loadRuntime()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync(logger)
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultFileName, "Path to commviz.yml (defaults apply if it does not exist)")
	rootCmd.PersistentFlags().StringVar(&rootOverride, "root", "", "Artifact root directory (overrides root, views and "+config.EnvRoot+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// loadRuntime loads the configuration and builds the logger.
func loadRuntime() error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return printer.Error(
			"invalid configuration",
			err.Error(),
			[]string{
				fmt.Sprintf("Fix %s, or remove it to use the defaults", configPath),
				"Generate a fresh one with:\n  commviz init --force",
			},
		)
	}
	if rootOverride != "" {
		loaded.OverrideRoot(rootOverride)
	}
	cfg = loaded

	logger, err = logging.New(cfg.Logging, verbose)
	if err != nil {
		return printer.Error("failed to initialize logging", err.Error(), nil)
	}
	logger.Debug("configuration loaded",
		zap.String("config", configPath),
		zap.String("root", cfg.Root),
		zap.Strings("views", cfg.Layout().Roots()))
	return nil
}

// newStore opens the artifact store described by the loaded configuration.
func newStore() *artifact.Store {
	return artifact.NewStore(cfg.Layout())
}

// fail renders store errors with layout guidance.
func fail(err error) error {
	layout := artifact.DefaultLayout(artifact.DefaultRoot)
	if cfg != nil {
		layout = cfg.Layout()
	}
	return printer.ArtifactError(err, layout)
}

func workingDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}

package commands

import (
	"github.com/dyluth/commviz/internal/config"
	"github.com/dyluth/commviz/internal/printer"
	"github.com/dyluth/commviz/internal/scaffold"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default commviz.yml",
	Long: `Write a commented commviz.yml into the current directory.

The file documents every setting with its default. Use --force to replace an
existing file.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{"skipConfig": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := scaffold.Initialize(workingDir(), initForce)
		if err != nil {
			return printer.Error("initialization failed", err.Error(), nil)
		}

		loaded, err := config.Load(path)
		if err != nil {
			return printer.Error("initialization failed", err.Error(), nil)
		}
		scaffold.PrintSuccess(path, loaded.Root)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing commviz.yml")
	rootCmd.AddCommand(initCmd)
}

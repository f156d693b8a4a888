package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/commviz/internal/config"
	"github.com/dyluth/commviz/internal/printer"
)

//go:embed templates/*
var templatesFS embed.FS

// Initialize writes a default commviz.yml into dir.
// If force is true an existing commviz.yml is replaced. The artifact store is never touched.
func Initialize(dir string, force bool) (string, error) {
	path := filepath.Join(dir, config.DefaultFileName)

	if !force {
		if err := CheckExisting(dir); err != nil {
			return "", err
		}
	} else if _, err := os.Stat(path); err == nil {
		printer.Warning("Replacing existing %s...\n", config.DefaultFileName)
	}

	content, err := templatesFS.ReadFile("templates/commviz.yml.tmpl")
	if err != nil {
		return "", fmt.Errorf("failed to read %s template: %w", config.DefaultFileName, err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	// The template must load with the current schema
	if _, err := config.Load(path); err != nil {
		return "", fmt.Errorf("created %s is not valid: %w", config.DefaultFileName, err)
	}

	return path, nil
}

// CheckExisting returns an error if dir already holds a commviz.yml.
func CheckExisting(dir string) error {
	path := filepath.Join(dir, config.DefaultFileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("project already initialized\n\nFound existing: %s\n\nUse 'commviz init --force' to overwrite it", path)
	}
	return nil
}

// PrintSuccess prints the success message and next steps
func PrintSuccess(path string, layoutRoot string) {
	printer.Success("Created %s\n", path)
	printer.Info("\nNext steps:\n")
	printer.Info("  1. Point 'root' at the pipeline output (currently %s)\n", layoutRoot)
	printer.Info("  2. Check what is available with 'commviz summarize'\n")
	printer.Info("  3. Run 'commviz serve' to browse it over HTTP\n")
}

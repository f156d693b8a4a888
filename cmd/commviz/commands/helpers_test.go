package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dyluth/commviz/internal/config"
	"github.com/dyluth/commviz/internal/printer"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe to read while a command is still writing.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

// resetFlags restores every package-level flag variable between runs of rootCmd.
func resetFlags() {
	configPath, rootOverride, verbose = config.DefaultFileName, "", false
	optionsSet, optionsMatch, optionsLabel, optionsOutput = nil, "", "", "default"
	summarizeOutput = "default"
	resolveSet, resolveLoad, resolveOutput = nil, false, "default"
	serveAddr, serveWatch = "", false
	watchOutput = "default"
	initForce = false
	cfg, logger = nil, nil

	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		for _, name := range []string{"help", "version"} {
			if f := c.Flags().Lookup(name); f != nil {
				_ = f.Value.Set("false")
			}
		}
		for _, child := range c.Commands() {
			walk(child)
		}
	}
	walk(rootCmd)
}

// capturePrinter redirects printer output to a buffer for the rest of the test.
func capturePrinter(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	oldOut, oldErr, oldNoColor := printer.Stdout, printer.Stderr, color.NoColor
	printer.Stdout, printer.Stderr, color.NoColor = buf, buf, true
	t.Cleanup(func() {
		printer.Stdout, printer.Stderr, color.NoColor = oldOut, oldErr, oldNoColor
	})
	return buf
}

// execute runs the CLI with args and returns command output and printer output.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()
	messages := capturePrinter(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := Execute()
	return out.String(), messages.String(), err
}

// fixture builds an artifact tree and returns its root along with the flags
// that point the CLI at it without reading any config file.
func fixture(t *testing.T) (string, []string) {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"platforms/twitter/network_plot.html":         "<html><head><title>Twitter network</title></head></html>",
		"platforms/twitter/density_plot.html":         "<html></html>",
		"platforms/twitter/clusters/cluster_c1.html":  "<html></html>",
		"platforms/twitter/clusters/cluster_c2.html":  "<html></html>",
		"platforms/twitter/clusters/wordcloud_c1.png": "png",
		"platforms/facebook/":                         "",
		"polarization/medios.html":                    "<html></html>",
		"polarization/politicos.html":                 "<html></html>",
		"cohesion/medios.html":                        "<html></html>",
		"individual/medios/luis_perez/network.html":   "<html></html>",
		"individual/medios/luis_perez/density.html":   "<html></html>",
		"individual/medios/ana/network.html":          "<html></html>",
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if strings.HasSuffix(name, "/") {
			require.NoError(t, os.MkdirAll(path, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	t.Setenv(config.EnvRoot, "")
	t.Setenv(config.EnvRedisURL, "")
	return root, []string{"--config", filepath.Join(t.TempDir(), "absent.yml"), "--root", root}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

func splitJSONL(t *testing.T, out string) [][]byte {
	t.Helper()
	var rows [][]byte
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			rows = append(rows, []byte(line))
		}
	}
	require.NotEmpty(t, rows)
	return rows
}

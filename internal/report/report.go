// Package report renders store results for the terminal (go-pretty tables) or for
// other programs (JSON lines).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dyluth/commviz/internal/watch"
	"github.com/dyluth/commviz/pkg/artifact"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Format selects the output encoding.
type Format string

const (
	FormatDefault Format = "default" // human-readable tables
	FormatJSONL   Format = "jsonl"   // one JSON object per line
	FormatJSON    Format = "json"    // one pretty-printed JSON document
)

// ParseFormat validates a --output value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatDefault:
		return FormatDefault, nil
	case FormatJSONL, FormatJSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("invalid output format: %s (must be 'default', 'jsonl', or 'json')", s)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatUpper
	return t
}

// Options writes an option listing. Returns the number of options written.
func Options(w io.Writer, page artifact.PageName, dim string, ids []string, format Format) (int, error) {
	switch format {
	case FormatJSONL:
		for _, id := range ids {
			if err := writeLine(w, map[string]string{"page": string(page), "dimension": dim, "id": id, "label": artifact.DisplayLabel(id)}); err != nil {
				return 0, err
			}
		}
		return len(ids), nil

	case FormatJSON:
		type option struct {
			ID    string `json:"id"`
			Label string `json:"label"`
		}
		out := make([]option, 0, len(ids))
		for _, id := range ids {
			out = append(out, option{ID: id, Label: artifact.DisplayLabel(id)})
		}
		return len(ids), writeIndented(w, out)
	}

	if len(ids) == 0 {
		fmt.Fprintf(w, "No %s options found on page '%s'\n", dim, page)
		return 0, nil
	}

	t := newTable(w)
	t.AppendHeader(table.Row{dim, "label"})
	for _, id := range ids {
		t.AppendRow(table.Row{id, artifact.DisplayLabel(id)})
	}
	t.Render()
	fmt.Fprintf(w, "\n%d %s\n", len(ids), plural(len(ids), "option", "options"))
	return len(ids), nil
}

// Overview writes one summary row per platform.
func Overview(w io.Writer, summaries []artifact.PlatformSummary, format Format) error {
	switch format {
	case FormatJSONL:
		for _, s := range summaries {
			if err := writeLine(w, s); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		return writeIndented(w, summaries)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(w, "No platforms found")
		return nil
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"platform", "label", "network", "density", "clusters"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignCenter},
		{Number: 4, Align: text.AlignCenter},
		{Number: 5, Align: text.AlignRight},
	})
	total := 0
	for _, s := range summaries {
		t.AppendRow(table.Row{s.Platform, s.Label, mark(s.Summary.NetworkAvailable), mark(s.Summary.DensityAvailable), s.Summary.ClusterCount})
		total += s.Summary.ClusterCount
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d %s", len(summaries), plural(len(summaries), "platform", "platforms")), "", "", "", total})
	t.Render()
	return nil
}

// Summary writes the summary of a single platform.
func Summary(w io.Writer, s artifact.PlatformSummary, format Format) error {
	switch format {
	case FormatJSONL:
		return writeLine(w, s)
	case FormatJSON:
		return writeIndented(w, s)
	}

	t := newTable(w)
	t.SetTitle("%s (%s)", s.Label, s.Platform)
	t.AppendRows([]table.Row{
		{"network plot", availability(s.Summary.NetworkAvailable)},
		{"density plot", availability(s.Summary.DensityAvailable)},
		{"communities", s.Summary.ClusterCount},
	})
	t.Render()
	return nil
}

// Record writes a resolved record: one row per artifact, then the platform's clusters.
func Record(w io.Writer, r *artifact.Record, format Format) error {
	switch format {
	case FormatJSONL:
		for _, a := range r.Artifacts {
			if err := writeLine(w, a); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		return writeIndented(w, r)
	}

	t := newTable(w)
	t.SetTitle("%s: %s", r.Page, formatSelection(r.Selection))
	t.AppendHeader(table.Row{"kind", "status", "title", "path"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 3, WidthMax: 40}})
	for _, a := range r.Artifacts {
		t.AppendRow(table.Row{a.Kind, status(a), dash(a.Title), a.Path})
	}
	t.Render()

	if len(r.Clusters) > 0 {
		fmt.Fprintf(w, "\nCommunities: %s\n", strings.Join(r.Clusters, ", "))
	}
	for _, a := range r.Artifacts {
		if a.Err != nil {
			fmt.Fprintf(w, "\n%s\n", a.Err)
		}
	}
	return nil
}

// Event writes one store change. The default format is a single aligned line.
func Event(w io.Writer, ev watch.Event, format Format) error {
	if format == FormatJSONL || format == FormatJSON {
		return writeLine(w, ev)
	}
	_, err := fmt.Fprintf(w, "%s  %-6s  %-12s  %s\n", ev.Time.Format("15:04:05"), ev.Op, dash(ev.View), ev.Path)
	return err
}

// formatSelection renders a selection in dimension order as dim=value pairs.
func formatSelection(sel artifact.Selection) string {
	order := []string{artifact.DimPlatform, artifact.DimCluster, artifact.DimCategory, artifact.DimUser}
	parts := make([]string, 0, len(sel))
	for _, dim := range order {
		if v, ok := sel.Get(dim); ok {
			parts = append(parts, dim+"="+v)
		}
	}
	return strings.Join(parts, " ")
}

func status(a *artifact.Artifact) string {
	switch {
	case !a.Exists:
		return "missing"
	case a.Err != nil:
		return "error"
	}
	return "ok"
}

func availability(ok bool) string {
	if ok {
		return "available"
	}
	return "no data"
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "-"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func writeLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
		return fmt.Errorf("failed to write JSONL output: %w", err)
	}
	return nil
}

func writeIndented(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	return nil
}

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/codegraph-dev/codegraph/pkg/coupling"
	"github.com/codegraph-dev/codegraph/pkg/graph"
	"github.com/codegraph-dev/codegraph/pkg/hotspots"
	"github.com/codegraph-dev/codegraph/pkg/query"
)

// ScanSummary is the record rendered for a completed scan: not one of
// pkg/query's analytical operations, but shaped the same way so
// `scan --json` is consistent with every query command's output.
type ScanSummary struct {
	FileCount    int           `json:"fileCount"`
	TotalLines   int           `json:"totalLines"`
	NodeCount    int           `json:"nodeCount"`
	EdgeCount    int           `json:"edgeCount"`
	ErrorCount   int           `json:"errorCount"`
	HealthScore  float64       `json:"healthScore"`
	ScanDuration time.Duration `json:"scanDuration"`
}

// scanRecord wraps a completed scan's metadata into a query.Record so
// printRecord can render it identically to every other command.
func scanRecord(g *graph.Graph, health float64, elapsed time.Duration) query.Record {
	summary := ScanSummary{
		FileCount:    g.Metadata.FileCount,
		TotalLines:   g.Metadata.TotalLines,
		NodeCount:    g.Metadata.NodeCount,
		EdgeCount:    g.Metadata.EdgeCount,
		ErrorCount:   len(g.Errors),
		HealthScore:  health,
		ScanDuration: elapsed,
	}

	text := fmt.Sprintf("scanned %d file(s), health %.1f, %d error(s)", summary.FileCount, health, summary.ErrorCount)

	return query.Ok(summary, text)
}

// printRecord renders rec to w. When jsonOut is set it emits the
// record verbatim as structured JSON per spec.md §6 ("--json to emit
// the structured record verbatim"); otherwise it prints the summary
// line plus, for result shapes this CLI knows how to tabulate, a
// go-pretty table of the detail rows.
func printRecord(w io.Writer, rec query.Record, jsonOut, noColor bool) error {
	if jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode record: %w", err)
		}

		return nil
	}

	fmt.Fprintln(w, summaryLine(rec, noColor))

	if rec.Error != nil && rec.Error.Hint != "" {
		fmt.Fprintf(w, "hint: %s\n", rec.Error.Hint)
	}

	if !rec.Found {
		return nil
	}

	switch data := rec.Data.(type) {
	case hotspots.Result:
		renderHotspotsTable(w, data.Top, noColor)
	case coupling.Result:
		renderCouplingTable(w, data.Coupled, noColor)
	default:
		// No dedicated table for this shape; the summary line plus
		// --json covers it.
	}

	return nil
}

// summaryLine colors rec's one-line summary: red when the record
// failed outright, yellow when it degraded (git unavailable), green
// on a plain success.
func summaryLine(rec query.Record, noColor bool) string {
	if noColor {
		return rec.Summary
	}

	switch {
	case rec.Error != nil && !rec.Found:
		return color.RedString(rec.Summary)
	case rec.Error != nil:
		return color.YellowString(rec.Summary)
	default:
		return color.GreenString(rec.Summary)
	}
}

func renderHotspotsTable(w io.Writer, top []hotspots.Point, noColor bool) {
	if len(top) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"File", "Score", "Complexity", "Churn", "Quadrant"})

	for _, p := range top {
		t.AppendRow(table.Row{p.File, fmt.Sprintf("%.2f", p.Score), p.RawComplexity, p.RawModifications, quadrantLabel(p.Quadrant, noColor)})
	}

	t.Render()
}

func quadrantLabel(q hotspots.Quadrant, noColor bool) string {
	if noColor {
		return string(q)
	}

	switch q {
	case hotspots.QuadrantDanger:
		return color.RedString(string(q))
	case hotspots.QuadrantLegacy, hotspots.QuadrantActive:
		return color.YellowString(string(q))
	default:
		return color.GreenString(string(q))
	}
}

func renderCouplingTable(w io.Writer, coupled []coupling.Pair, noColor bool) {
	if len(coupled) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"File", "Strength", "Shared commits", "Imports", "Hidden"})

	for _, p := range coupled {
		hidden := ""
		if p.Hidden && !noColor {
			hidden = color.YellowString("yes")
		} else if p.Hidden {
			hidden = "yes"
		}

		t.AppendRow(table.Row{p.File, fmt.Sprintf("%.2f", p.Strength), p.SharedCommits, p.HasImportRelationship, hidden})
	}

	t.Render()
}

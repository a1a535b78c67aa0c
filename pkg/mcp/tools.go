// Package mcp implements a Model Context Protocol server exposing the
// knowledge graph's analytical operations as MCP tools over stdio (or
// an injected) transport.
package mcp

import (
	"encoding/json"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codegraph-dev/codegraph/pkg/query"
	"github.com/codegraph-dev/codegraph/pkg/semantic"
	"github.com/codegraph-dev/codegraph/pkg/trend"
)

// Tool name constants, one per operation the query registry exposes.
const (
	ToolNameCycles     = "codegraph_cycles"
	ToolNameCoupling   = "codegraph_coupling"
	ToolNameImpact     = "codegraph_impact"
	ToolNameBusFactor  = "codegraph_busfactor"
	ToolNameHotspots   = "codegraph_hotspots"
	ToolNameSearch     = "codegraph_search"
	ToolNameTrend      = "codegraph_trend"
	ToolNameTrajectory = "codegraph_trajectory"
)

// Input types (auto-generate JSON schemas via struct tags).

// CyclesInput is the input schema for the codegraph_cycles tool; cycle
// detection takes no parameters and always runs over the whole graph.
type CyclesInput struct{}

// CouplingInput is the input schema for the codegraph_coupling tool.
type CouplingInput struct {
	Target           string  `json:"target"                       jsonschema:"repository-relative path of the file to find co-changing files for"`
	MinStrength      float64 `json:"min_strength,omitempty"        jsonschema:"minimum Jaccard coupling strength to report (default 0.3)"`
	MinSharedCommits int     `json:"min_shared_commits,omitempty"  jsonschema:"minimum co-occurring commits to report a pair (default 2)"`
	MaxResults       int     `json:"max_results,omitempty"         jsonschema:"maximum number of coupled files to return (0 = no cap)"`
}

// ImpactInput is the input schema for the codegraph_impact tool.
type ImpactInput struct {
	Target string `json:"target" jsonschema:"repository-relative path of the file to score"`
}

// BusFactorInput is the input schema for the codegraph_busfactor tool;
// ownership analysis is project-wide and takes no parameters.
type BusFactorInput struct{}

// HotspotsInput is the input schema for the codegraph_hotspots tool.
type HotspotsInput struct {
	TopN int `json:"top_n,omitempty" jsonschema:"number of top-ranked files to return (default 10)"`
}

// SearchInput is the input schema for the codegraph_search tool.
type SearchInput struct {
	Query string `json:"query"          jsonschema:"search text"`
	Mode  string `json:"mode,omitempty" jsonschema:"keyword, semantic, or hybrid (default hybrid)"`
	TopN  int    `json:"top_n,omitempty" jsonschema:"number of results to return (default 10)"`
}

// TrendInput is the input schema for the codegraph_trend tool.
type TrendInput struct {
	Window string `json:"window,omitempty" jsonschema:"day, week, month, or all (default all)"`
}

// TrajectoryInput is the input schema for the codegraph_trajectory tool.
type TrajectoryInput struct {
	Window      string `json:"window,omitempty"       jsonschema:"day, week, month, or all (default all)"`
	HorizonDays int    `json:"horizon_days,omitempty" jsonschema:"number of days to project forward (default 30)"`
}

// ToolOutput is a generic wrapper for tool results; Data carries
// whatever query.Record.Data the underlying operation produced.
type ToolOutput struct {
	Data any `json:"data"`
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// recordResult renders a query.Record as a tool result: the summary
// plus JSON-encoded structured data, or an error result when the
// record carries one and found no data.
func recordResult(rec query.Record) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if !rec.Found && rec.Error != nil {
		return errorResult(fmt.Errorf("%s", rec.Summary))
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: rec.Data}, nil
}

func parseMode(s string) semantic.Mode {
	switch s {
	case string(semantic.ModeKeyword):
		return semantic.ModeKeyword
	case string(semantic.ModeSemantic):
		return semantic.ModeSemantic
	default:
		return semantic.ModeHybrid
	}
}

func parseWindow(s string) trend.Window {
	switch s {
	case string(trend.WindowDay):
		return trend.WindowDay
	case string(trend.WindowWeek):
		return trend.WindowWeek
	case string(trend.WindowMonth):
		return trend.WindowMonth
	default:
		return trend.WindowAll
	}
}

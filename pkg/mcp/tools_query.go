package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codegraph-dev/codegraph/pkg/query"
)

// handleCycles processes codegraph_cycles tool calls.
func handleCycles(src query.Source) func(context.Context, *mcpsdk.CallToolRequest, CyclesInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	handler := query.CyclesHandler(src)

	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, _ CyclesInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
		rec, err := handler(ctx, nil)
		if err != nil {
			return errorResult(err)
		}

		return recordResult(rec)
	}
}

// handleCoupling processes codegraph_coupling tool calls.
func handleCoupling(src query.Source) func(context.Context, *mcpsdk.CallToolRequest, CouplingInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	handler := query.CouplingHandler(src)

	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, input CouplingInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
		rec, err := handler(ctx, query.CouplingArgs{
			Target:           input.Target,
			MinStrength:      input.MinStrength,
			MinSharedCommits: input.MinSharedCommits,
			MaxResults:       input.MaxResults,
		})
		if err != nil {
			return errorResult(err)
		}

		return recordResult(rec)
	}
}

// handleImpact processes codegraph_impact tool calls.
func handleImpact(src query.Source) func(context.Context, *mcpsdk.CallToolRequest, ImpactInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	handler := query.ImpactHandler(src)

	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, input ImpactInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
		rec, err := handler(ctx, query.ImpactArgs{Target: input.Target})
		if err != nil {
			return errorResult(err)
		}

		return recordResult(rec)
	}
}

// handleBusFactor processes codegraph_busfactor tool calls.
func handleBusFactor(src query.Source) func(context.Context, *mcpsdk.CallToolRequest, BusFactorInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	handler := query.BusFactorHandler(src)

	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, _ BusFactorInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
		rec, err := handler(ctx, nil)
		if err != nil {
			return errorResult(err)
		}

		return recordResult(rec)
	}
}

// handleHotspots processes codegraph_hotspots tool calls.
func handleHotspots(src query.Source) func(context.Context, *mcpsdk.CallToolRequest, HotspotsInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	handler := query.HotspotsHandler(src)

	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, input HotspotsInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
		rec, err := handler(ctx, query.HotspotsArgs{TopN: input.TopN})
		if err != nil {
			return errorResult(err)
		}

		return recordResult(rec)
	}
}

// handleSearch processes codegraph_search tool calls.
func handleSearch(src query.Source) func(context.Context, *mcpsdk.CallToolRequest, SearchInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	handler := query.SearchHandler(src)

	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, input SearchInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
		rec, err := handler(ctx, query.SearchArgs{
			Query: input.Query,
			Mode:  parseMode(input.Mode),
			TopN:  input.TopN,
		})
		if err != nil {
			return errorResult(err)
		}

		return recordResult(rec)
	}
}

// handleTrend processes codegraph_trend tool calls.
func handleTrend(src query.Source) func(context.Context, *mcpsdk.CallToolRequest, TrendInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	handler := query.TrendHandler(src)

	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, input TrendInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
		rec, err := handler(ctx, query.TrendArgs{Window: parseWindow(input.Window)})
		if err != nil {
			return errorResult(err)
		}

		return recordResult(rec)
	}
}

// handleTrajectory processes codegraph_trajectory tool calls.
func handleTrajectory(src query.Source) func(context.Context, *mcpsdk.CallToolRequest, TrajectoryInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	handler := query.TrajectoryHandler(src)

	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, input TrajectoryInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
		rec, err := handler(ctx, query.TrajectoryArgs{
			Window:      parseWindow(input.Window),
			HorizonDays: input.HorizonDays,
		})
		if err != nil {
			return errorResult(err)
		}

		return recordResult(rec)
	}
}

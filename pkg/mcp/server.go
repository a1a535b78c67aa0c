// Package mcp implements a Model Context Protocol server exposing the
// knowledge graph's analytical operations as MCP tools over stdio (or
// an injected) transport.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/codegraph-dev/codegraph/pkg/observability"
	"github.com/codegraph-dev/codegraph/pkg/query"
)

const (
	// serverName is the MCP server implementation name.
	serverName = "codegraph"
	// serverVersion is the MCP server implementation version.
	serverVersion = "1.0.0"

	// toolCount is the expected number of registered tools.
	toolCount = 8
)

// ServerDeps holds injectable dependencies for the MCP server.
// Zero-value fields use production defaults.
type ServerDeps struct {
	// Source locates the persisted graph and (optionally) the working
	// tree used to re-derive commit history for history-dependent
	// operations.
	Source query.Source

	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Metrics is an optional RED metrics recorder. Nil disables per-tool metrics.
	Metrics *observability.REDMetrics

	// Tracer is an optional OTel tracer for per-tool-call spans. Nil disables tracing.
	Tracer trace.Tracer
}

// Server wraps the MCP SDK server with the knowledge-graph's query
// operations registered as tools.
type Server struct {
	inner   *mcpsdk.Server
	mu      sync.RWMutex
	tools   []string
	metrics *observability.REDMetrics
	tracer  trace.Tracer
}

// NewServer creates a new MCP server with every query operation
// registered as a tool against deps.Source.
func NewServer(deps ServerDeps) *Server {
	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: serverVersion,
		},
		opts,
	)

	srv := &Server{
		inner:   inner,
		tools:   make([]string, 0, toolCount),
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
	}

	srv.registerTools(deps.Source)

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run starts the MCP server on stdio transport. It blocks until the context
// is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	err := s.inner.Run(ctx, &mcpsdk.StdioTransport{})
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// RunWithTransport starts the MCP server on the given transport. It blocks
// until the context is canceled or the connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// registerTools adds every query operation to the server as a tool.
func (s *Server) registerTools(src query.Source) {
	registerTool(s, ToolNameCycles, cyclesToolDescription, handleCycles(src))
	registerTool(s, ToolNameCoupling, couplingToolDescription, handleCoupling(src))
	registerTool(s, ToolNameImpact, impactToolDescription, handleImpact(src))
	registerTool(s, ToolNameBusFactor, busFactorToolDescription, handleBusFactor(src))
	registerTool(s, ToolNameHotspots, hotspotsToolDescription, handleHotspots(src))
	registerTool(s, ToolNameSearch, searchToolDescription, handleSearch(src))
	registerTool(s, ToolNameTrend, trendToolDescription, handleTrend(src))
	registerTool(s, ToolNameTrajectory, trajectoryToolDescription, handleTrajectory(src))
}

// registerTool adds name to the server with handler wrapped in the
// tracing/metrics middleware. A package-level generic function since
// Go methods cannot themselves carry type parameters.
func registerTool[Input any](s *Server, name, description string, handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error)) {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        name,
		Description: description,
	}, withMetrics(s.metrics, name, withTracing(s.tracer, name, handler)))

	s.trackTool(name)
}

// mcpSpanPrefix is the prefix for MCP tool span names.
const mcpSpanPrefix = "mcp."

// traceIDMetaKey is the metadata key for trace_id in MCP tool responses.
const traceIDMetaKey = "trace_id"

// withTracing wraps an MCP tool handler to create an OTel span per invocation
// and include trace_id in the response content when sampled.
func withTracing[Input any](
	tracer trace.Tracer,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		// Include trace_id in response when span is sampled.
		sc := span.SpanContext()
		if sc.IsSampled() && result != nil {
			traceContent := &mcpsdk.TextContent{Text: fmt.Sprintf("%s=%s", traceIDMetaKey, sc.TraceID().String())}
			result.Content = append(result.Content, traceContent)
		}

		return result, output, err
	}
}

// withMetrics wraps an MCP tool handler to record RED metrics per invocation.
func withMetrics[Input any](
	metrics *observability.REDMetrics,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if metrics == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		start := time.Now()

		decInflight := metrics.TrackInflight(ctx, "mcp."+toolName)
		defer decInflight()

		result, output, err := handler(ctx, req, input)

		status := "ok"
		if err != nil || (result != nil && result.IsError) {
			status = "error"
		}

		metrics.RecordRequest(ctx, "mcp."+toolName, status, time.Since(start))

		return result, output, err
	}
}

func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

// Tool description constants.
const (
	cyclesToolDescription = "Detect import cycles among files in the scanned codebase, " +
		"bucketed by severity (low/medium/high)."

	couplingToolDescription = "Find files that change together with a target file across " +
		"git history, including hidden dependencies with no import relationship."

	impactToolDescription = "Score the blast radius and risk of changing a target file: " +
		"dependents, coupling, complexity, and churn, rolled into a composite risk level."

	busFactorToolDescription = "Analyze project-wide knowledge ownership: solo-owned files, " +
		"top contributors, and risk areas with low bus factor."

	hotspotsToolDescription = "Rank files by complexity/churn hotspot score and place each " +
		"into a healthy/active/legacy/danger quadrant."

	searchToolDescription = "Search code by keyword, semantic (TF-IDF vector), or hybrid match " +
		"over indexed files and symbols."

	trendToolDescription = "Report the health-score trend (improving/stable/declining) over " +
		"the project's snapshot history."

	trajectoryToolDescription = "Project the health score forward using linear regression over " +
		"the snapshot history, with a confidence band."
)

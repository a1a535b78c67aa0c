// Operations wires every analytical engine (cycle detection,
// change-coupling, impact scoring, ownership, hotspots, search, trend)
// into the shared query-result contract: each handler loads the
// persisted graph, re-derives whatever git-history input it needs,
// runs the engine, and folds the result into a Record.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codegraph-dev/codegraph/pkg/assembler"
	"github.com/codegraph-dev/codegraph/pkg/busfactor"
	"github.com/codegraph-dev/codegraph/pkg/cgerrors"
	"github.com/codegraph-dev/codegraph/pkg/coupling"
	"github.com/codegraph-dev/codegraph/pkg/cycles"
	"github.com/codegraph-dev/codegraph/pkg/graph"
	"github.com/codegraph-dev/codegraph/pkg/hotspots"
	"github.com/codegraph-dev/codegraph/pkg/impact"
	"github.com/codegraph-dev/codegraph/pkg/parser"
	"github.com/codegraph-dev/codegraph/pkg/semantic"
	"github.com/codegraph-dev/codegraph/pkg/store"
	"github.com/codegraph-dev/codegraph/pkg/trend"
	"github.com/codegraph-dev/codegraph/pkg/vcs"
)

// defaultHotspotTopN bounds the hotspots, health and search result
// lists when a caller passes zero.
const defaultHotspotTopN = 10

// errMissingTarget and errMissingQuery flag a handler called without
// the argument struct it requires.
var (
	errMissingTarget = errors.New("target file path is required")
	errMissingQuery  = errors.New("query text is required")
)

// Source is what every handler in this file needs from the rest of the
// system: the persisted graph plus however the caller wants to derive
// commit history for it. A *store.Store run against the scanned root
// satisfies both by construction (Load reads the graph, its RootDir
// feeds vcs.Analyze).
type Source struct {
	Store *store.Store
	// RootDir is the working tree the graph was scanned from; needed
	// to re-derive commit history on demand since Graph itself does
	// not carry the raw commit list (only the per-file summaries
	// assembly folds in). Empty disables history-dependent fields
	// rather than erroring, mirroring the git-unavailable degrade path.
	RootDir string
}

func (src Source) loadGraph() (*graph.Graph, error) {
	g, ok, err := src.Store.Load()
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, nil
	}

	return g, nil
}

func (src Source) commits(g *graph.Graph) []vcs.CommitFileSet {
	if src.RootDir == "" {
		return nil
	}

	sourceFiles := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.Type == graph.NodeFile {
			sourceFiles[n.FilePath] = true
		}
	}

	hist, err := vcs.Analyze(src.RootDir, sourceFiles)
	if err != nil {
		return nil
	}

	return hist.Commits
}

func couplingCommits(commits []vcs.CommitFileSet) []coupling.CommitFileSet {
	out := make([]coupling.CommitFileSet, len(commits))
	for i, c := range commits {
		out[i] = coupling.CommitFileSet{Hash: c.Hash, Files: c.Files}
	}

	return out
}

func busfactorCommits(commits []vcs.CommitFileSet) []busfactor.CommitFileSet {
	out := make([]busfactor.CommitFileSet, len(commits))
	for i, c := range commits {
		out[i] = busfactor.CommitFileSet{Hash: c.Hash, Author: c.Author, Files: c.Files}
	}

	return out
}

// CyclesHandler implements "find import cycles" over the persisted
// graph.
func CyclesHandler(src Source) Handler {
	return func(_ context.Context, _ any) (Record, error) {
		g, err := src.loadGraph()
		if err != nil {
			return Record{}, err
		}

		if g == nil {
			return NotInitialized(), nil
		}

		idx := graph.NewIndex(g)
		result := cycles.Detect(g, idx)

		summary := fmt.Sprintf("%d import cycle(s) found", len(result.Cycles))

		return Ok(result, summary), nil
	}
}

// CouplingArgs names the target file and tuning knobs for a
// change-coupling query.
type CouplingArgs struct {
	Target           string
	MinStrength      float64
	MinSharedCommits int
	MaxResults       int
}

// CouplingHandler implements "what files co-change with target"
// (change-coupling).
func CouplingHandler(src Source) Handler {
	return func(_ context.Context, rawArgs any) (Record, error) {
		args, ok := rawArgs.(CouplingArgs)
		if !ok || args.Target == "" {
			return Record{}, fmt.Errorf("coupling: %w", errMissingTarget)
		}

		g, err := src.loadGraph()
		if err != nil {
			return Record{}, err
		}

		if g == nil {
			return NotInitialized(), nil
		}

		idx := graph.NewIndex(g)
		if _, ok := idx.FileNode(args.Target); !ok {
			return NotFound("file", args.Target), nil
		}

		commits := src.commits(g)

		result := coupling.Coupling(args.Target, couplingCommits(commits), idx, coupling.Options{
			MinStrength:      args.MinStrength,
			MinSharedCommits: args.MinSharedCommits,
			MaxResults:       args.MaxResults,
		})

		summary := fmt.Sprintf("%d coupled file(s), %d hidden dependency(ies)", len(result.Coupled), len(result.Hidden))

		if src.RootDir != "" && commits == nil {
			return GitDegraded(result, summary), nil
		}

		return Ok(result, summary), nil
	}
}

// ImpactArgs names the target file for an impact/risk query.
type ImpactArgs struct {
	Target string
}

// ImpactHandler implements the multi-factor impact/risk scorer
// (impact/risk scoring).
func ImpactHandler(src Source) Handler {
	return func(_ context.Context, rawArgs any) (Record, error) {
		args, ok := rawArgs.(ImpactArgs)
		if !ok || args.Target == "" {
			return Record{}, fmt.Errorf("impact: %w", errMissingTarget)
		}

		g, err := src.loadGraph()
		if err != nil {
			return Record{}, err
		}

		if g == nil {
			return NotInitialized(), nil
		}

		idx := graph.NewIndex(g)
		if _, ok := idx.FileNode(args.Target); !ok {
			return NotFound("file", args.Target), nil
		}

		commits := src.commits(g)
		result := impact.Score(g, idx, args.Target, couplingCommits(commits))

		summary := fmt.Sprintf("%s risk (%.1f)", result.Level, result.Risk)

		return Ok(result, summary), nil
	}
}

// BusFactorHandler implements project-wide ownership/bus-factor
// analysis (bus factor / ownership).
func BusFactorHandler(src Source) Handler {
	return func(_ context.Context, _ any) (Record, error) {
		g, err := src.loadGraph()
		if err != nil {
			return Record{}, err
		}

		if g == nil {
			return NotInitialized(), nil
		}

		commits := src.commits(g)
		result := busfactor.Analyze(g, busfactorCommits(commits))

		summary := fmt.Sprintf("%s bus factor (%.1f), %d solo-owned file(s)",
			result.Level, result.OverallBusFactor, len(result.SoloOwned))

		if src.RootDir != "" && commits == nil {
			return GitDegraded(result, summary), nil
		}

		return Ok(result, summary), nil
	}
}

// HotspotsArgs bounds how many top files a hotspot query returns.
type HotspotsArgs struct {
	TopN int
}

// HotspotsHandler implements the complexity/churn hotspot analyzer
// (hotspot ranking).
func HotspotsHandler(src Source) Handler {
	return func(_ context.Context, rawArgs any) (Record, error) {
		topN := defaultHotspotTopN
		if args, ok := rawArgs.(HotspotsArgs); ok && args.TopN > 0 {
			topN = args.TopN
		}

		g, err := src.loadGraph()
		if err != nil {
			return Record{}, err
		}

		if g == nil {
			return NotInitialized(), nil
		}

		result := hotspots.Analyze(g, topN)

		summary := fmt.Sprintf("%d file(s) scored, top %d returned", len(result.Points), len(result.Top))

		return Ok(result, summary), nil
	}
}

// HealthReport is the current-state counterpart to the snapshot-driven
// trend/trajectory views: a single score plus the hotspots it was
// derived from, computed fresh from the current graph rather than read
// back from the snapshot log.
type HealthReport struct {
	HealthScore  float64          `json:"healthScore"`
	HotspotCount int              `json:"hotspotCount"`
	Top          []hotspots.Point `json:"top"`
}

// HealthHandler reports the current project health score (the same
// figure scan persists into each snapshot via hotspots.HealthScore),
// without requiring a second snapshot the way TrendHandler does.
func HealthHandler(src Source) Handler {
	return func(_ context.Context, _ any) (Record, error) {
		g, err := src.loadGraph()
		if err != nil {
			return Record{}, err
		}

		if g == nil {
			return NotInitialized(), nil
		}

		result := hotspots.Analyze(g, defaultHotspotTopN)
		score := hotspots.HealthScore(result)

		hotspotCount := 0

		for _, p := range result.Points {
			if p.Quadrant == hotspots.QuadrantDanger {
				hotspotCount++
			}
		}

		report := HealthReport{HealthScore: score, HotspotCount: hotspotCount, Top: result.Top}

		summary := fmt.Sprintf("health score %.1f, %d danger-quadrant file(s)", score, hotspotCount)

		return Ok(report, summary), nil
	}
}

// SearchArgs is the semantic-index query: text plus the retrieval mode.
type SearchArgs struct {
	Query string
	Mode  semantic.Mode
	TopN  int
}

// loadSemanticIndex returns the persisted embeddings index when it
// exists and is not older than g's last scan, rebuilding (and
// persisting) it otherwise. This keeps search usable even when a
// caller never ran an explicit rebuild, while letting that rebuild
// short-circuit the common case of an up-to-date index.
func (src Source) loadSemanticIndex(g *graph.Graph) (*semantic.Index, error) {
	stale, err := src.Store.IsSemanticIndexStale(g.Metadata.ScannedAt)
	if err != nil {
		return nil, err
	}

	if !stale {
		idx, ok, loadErr := src.Store.LoadSemanticIndex()
		if loadErr != nil {
			return nil, loadErr
		}

		if ok {
			return idx, nil
		}
	}

	idx := semantic.Build(g)
	if saveErr := src.Store.SaveSemanticIndex(idx); saveErr != nil {
		return nil, saveErr
	}

	return idx, nil
}

// SearchHandler implements keyword/semantic/hybrid code search against
// the persisted embedding index, rebuilding it when it is missing or
// older than the graph's last scan.
func SearchHandler(src Source) Handler {
	return func(_ context.Context, rawArgs any) (Record, error) {
		args, ok := rawArgs.(SearchArgs)
		if !ok || args.Query == "" {
			return Record{}, fmt.Errorf("search: %w", errMissingQuery)
		}

		g, err := src.loadGraph()
		if err != nil {
			return Record{}, err
		}

		if g == nil {
			return NotInitialized(), nil
		}

		topN := args.TopN
		if topN <= 0 {
			topN = defaultHotspotTopN
		}

		idx, err := src.loadSemanticIndex(g)
		if err != nil {
			return Record{}, err
		}

		results := idx.Search(args.Query, args.Mode, topN)

		summary := fmt.Sprintf("%d result(s) for %q", len(results), args.Query)
		if len(results) == 0 {
			return Empty(summary), nil
		}

		return Ok(results, summary), nil
	}
}

// IndexHandler implements the explicit embedding-index rebuild command
// (`index --rebuild`): it always rebuilds from the current graph and
// overwrites the persisted index, regardless of staleness.
func IndexHandler(src Source) Handler {
	return func(_ context.Context, _ any) (Record, error) {
		g, err := src.loadGraph()
		if err != nil {
			return Record{}, err
		}

		if g == nil {
			return NotInitialized(), nil
		}

		idx := semantic.Build(g)
		if err := src.Store.SaveSemanticIndex(idx); err != nil {
			return Record{}, err
		}

		summary := fmt.Sprintf("rebuilt embedding index over %d chunk(s)", len(idx.Snapshot().Chunks))

		return Ok(struct {
			Chunks int `json:"chunks"`
		}{Chunks: len(idx.Snapshot().Chunks)}, summary), nil
	}
}

// TrendArgs bounds a trend/velocity query's lookback window.
type TrendArgs struct {
	Window trend.Window
}

// TrendHandler implements the trend/velocity view over the snapshot
// sequence.
func TrendHandler(src Source) Handler {
	return func(_ context.Context, rawArgs any) (Record, error) {
		window := trend.WindowAll
		if args, ok := rawArgs.(TrendArgs); ok && args.Window != "" {
			window = args.Window
		}

		snapshots, err := src.Store.Snapshots()
		if err != nil {
			return Record{}, err
		}

		now := mostRecent(snapshots)
		result := trend.Trend(snapshots, window, now)

		if len(snapshots) < 2 {
			return Empty("insufficient snapshot history for a trend"), nil
		}

		summary := fmt.Sprintf("%s (%.1f%% change)", result.Direction, result.ChangePercent)

		return Ok(result, summary), nil
	}
}

// TrajectoryArgs bounds a forward-projection query's window and
// horizon.
type TrajectoryArgs struct {
	Window      trend.Window
	HorizonDays int
}

// defaultHorizonDays is the forward-projection window when the caller
// does not specify one.
const defaultHorizonDays = 30

// TrajectoryHandler implements forward health-score projection.
func TrajectoryHandler(src Source) Handler {
	return func(_ context.Context, rawArgs any) (Record, error) {
		window := trend.WindowAll

		horizon := defaultHorizonDays
		if args, ok := rawArgs.(TrajectoryArgs); ok {
			if args.Window != "" {
				window = args.Window
			}

			if args.HorizonDays > 0 {
				horizon = args.HorizonDays
			}
		}

		snapshots, err := src.Store.Snapshots()
		if err != nil {
			return Record{}, err
		}

		now := mostRecent(snapshots)
		result := trend.Project(snapshots, window, now, horizon)

		if len(snapshots) < 2 {
			return Empty("insufficient snapshot history for a trajectory"), nil
		}

		summary := fmt.Sprintf("projected health %.1f in %d day(s)", result.Projected, horizon)

		return Ok(result, summary), nil
	}
}

// VelocityArgs bounds a velocity query's lookback window.
type VelocityArgs struct {
	Window trend.Window
}

// VelocityHandler implements the complexity/hotspot-count regression
// view over the snapshot sequence, distinct from TrendHandler's
// healthScore regression.
func VelocityHandler(src Source) Handler {
	return func(_ context.Context, rawArgs any) (Record, error) {
		window := trend.WindowAll
		if args, ok := rawArgs.(VelocityArgs); ok && args.Window != "" {
			window = args.Window
		}

		snapshots, err := src.Store.Snapshots()
		if err != nil {
			return Record{}, err
		}

		if len(snapshots) < 2 {
			return Empty("insufficient snapshot history for velocity"), nil
		}

		now := mostRecent(snapshots)
		result := trend.Velocity(snapshots, window, now)

		summary := fmt.Sprintf("complexity slope %.3f, hotspot-count slope %.3f",
			result.Complexity.Slope, result.Hotspots.Slope)

		return Ok(result, summary), nil
	}
}

// DriftHandler re-assembles the current tree (without persisting it)
// and diffs per-file max complexity against the persisted graph, to
// surface files whose complexity moved since the last scan without
// requiring the caller to run a full scan first.
func DriftHandler(src Source) Handler {
	return func(ctx context.Context, _ any) (Record, error) {
		previous, err := src.loadGraph()
		if err != nil {
			return Record{}, err
		}

		if previous == nil {
			return NotInitialized(), nil
		}

		current, err := assembler.Assemble(ctx, parser.Default(), assembler.Options{
			RootDir: src.RootDir,
			SkipGit: true,
		})
		if err != nil {
			return Record{}, fmt.Errorf("%w: %v", cgerrors.ErrIo, err)
		}

		deltas := trend.FileComplexityDeltas(previous, current)

		summary := fmt.Sprintf("%d file(s) with complexity drift since last scan", len(deltas))
		if len(deltas) == 0 {
			return Empty(summary), nil
		}

		return Ok(deltas, summary), nil
	}
}

func mostRecent(snapshots []store.Snapshot) time.Time {
	var t time.Time

	for _, s := range snapshots {
		if s.Timestamp.After(t) {
			t = s.Timestamp
		}
	}

	return t
}

// RegisterAll registers every operation this file implements against
// reg, keyed by the operation names the CLI dispatches on.
func RegisterAll(reg *Registry, src Source) {
	reg.Register(Operation{Name: OpCycles, Description: "Detect import cycles", Handler: CyclesHandler(src)})
	reg.Register(Operation{Name: OpCoupling, Description: "Compute change-coupling for a file", Handler: CouplingHandler(src)})
	reg.Register(Operation{Name: OpImpact, Description: "Score impact/risk for a file", Handler: ImpactHandler(src)})
	reg.Register(Operation{Name: OpBusFactor, Description: "Compute project-wide bus factor", Handler: BusFactorHandler(src)})
	reg.Register(Operation{Name: OpHotspots, Description: "Rank files by complexity/churn hotspot score", Handler: HotspotsHandler(src)})
	reg.Register(Operation{Name: OpSearch, Description: "Search code by keyword/semantic/hybrid match", Handler: SearchHandler(src)})
	reg.Register(Operation{Name: OpTrend, Description: "Report health-score trend over snapshots", Handler: TrendHandler(src)})
	reg.Register(Operation{Name: OpTrajectory, Description: "Project future health score", Handler: TrajectoryHandler(src)})
	reg.Register(Operation{Name: OpIndex, Description: "Rebuild the persisted semantic search index", Handler: IndexHandler(src)})
	reg.Register(Operation{Name: OpHealth, Description: "Report the current project health score", Handler: HealthHandler(src)})
	reg.Register(Operation{Name: OpVelocity, Description: "Regress complexity/hotspot-count over snapshots", Handler: VelocityHandler(src)})
	reg.Register(Operation{Name: OpDrift, Description: "Diff per-file complexity against a fresh re-scan", Handler: DriftHandler(src)})
}

// Operation name constants used as Registry keys (the CLI dispatches
// through them; MCP tools have their own codegraph_* names).
const (
	OpCycles     = "cycles"
	OpCoupling   = "coupling"
	OpImpact     = "impact"
	OpBusFactor  = "busfactor"
	OpHotspots   = "hotspots"
	OpSearch     = "search"
	OpTrend      = "trend"
	OpTrajectory = "trajectory"
	OpIndex      = "index"
	OpHealth     = "health"
	OpVelocity   = "velocity"
	OpDrift      = "drift"
)

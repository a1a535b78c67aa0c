package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codegraph-dev/codegraph/pkg/cgerrors"
	"github.com/codegraph-dev/codegraph/pkg/config"
	"github.com/codegraph-dev/codegraph/pkg/impact"
	"github.com/codegraph-dev/codegraph/pkg/query"
	"github.com/codegraph-dev/codegraph/pkg/semantic"
	"github.com/codegraph-dev/codegraph/pkg/trend"
)

// runQuery resolves the graph's store, dispatches opName through the
// Registry with args, renders the record, and returns it with the
// loaded config and any error; main.go maps ErrNoGraph (and the
// policy commands' ErrPolicyFail) to exit codes with errors.Is. It is
// the chokepoint most analytical subcommands funnel through.
func runQuery(cmd *cobra.Command, globals *GlobalFlags, opName string, args any) (query.Record, *config.Config, error) {
	cfg, root, err := globals.loadConfig()
	if err != nil {
		return query.Record{}, nil, err
	}

	src, err := openSource(root)
	if err != nil {
		return query.Record{}, nil, err
	}

	reg := newRegistry(src)

	rec, err := reg.Call(context.Background(), opName, args, cfg.Query.Deadline)
	if err != nil {
		return query.Record{}, cfg, err
	}

	if printErr := printRecord(cmd.OutOrStdout(), rec, globals.JSON, globals.NoColor); printErr != nil {
		return rec, cfg, printErr
	}

	if rec.Error != nil && rec.Error.Kind == cgerrors.KindNotInitialized {
		return rec, cfg, ErrNoGraph
	}

	return rec, cfg, nil
}

// ErrNoGraph signals that a query ran against a project with no
// persisted graph; main.go checks for it with errors.Is to exit
// ExitNoGraph per spec.md §6 rather than ExitUserError.
var ErrNoGraph = errors.New("no graph on disk")

// NewCyclesCommand creates the `cycles` subcommand.
func NewCyclesCommand(globals *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cycles",
		Short: "Detect import cycles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _, err := runQuery(cmd, globals, query.OpCycles, nil)
			return err
		},
	}
}

// NewBusFactorCommand creates the `bus-factor` subcommand.
func NewBusFactorCommand(globals *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "bus-factor",
		Short: "Compute project-wide bus factor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _, err := runQuery(cmd, globals, query.OpBusFactor, nil)
			return err
		},
	}
}

// NewHealthCommand creates the `health` subcommand.
func NewHealthCommand(globals *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Report the current project health score",
	}

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		rec, cfg, err := runQuery(cmd, globals, query.OpHealth, nil)
		if err != nil {
			return err
		}

		return enforcePolicy(cmd, globals, healthPolicy(rec, cfg))
	}

	return cmd
}

// NewHotspotsCommand creates the `hotspots` subcommand.
func NewHotspotsCommand(globals *GlobalFlags) *cobra.Command {
	var topN int

	cmd := &cobra.Command{
		Use:   "hotspots",
		Short: "Rank files by complexity/churn hotspot score",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _, err := runQuery(cmd, globals, query.OpHotspots, query.HotspotsArgs{TopN: topN})
			return err
		},
	}

	cmd.Flags().IntVar(&topN, "top", 0, "limit to the top N files (0 uses the default)")

	return cmd
}

func couplingArgsFlags(cmd *cobra.Command) (minStrength *float64, minShared, maxResults *int) {
	minStrength = cmd.Flags().Float64("min-strength", 0, "minimum Jaccard strength to report")
	minShared = cmd.Flags().Int("min-shared-commits", 1, "minimum shared commits to report")
	maxResults = cmd.Flags().Int("max-results", 0, "cap the number of coupled files returned (0 is unlimited)")

	return minStrength, minShared, maxResults
}

// NewCouplingCommand creates the `coupling` subcommand.
func NewCouplingCommand(globals *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coupling <file>",
		Short: "Compute change-coupling for a file",
		Args:  cobra.ExactArgs(1),
	}

	minStrength, minShared, maxResults := couplingArgsFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, targetArgs []string) error {
		_, _, err := runQuery(cmd, globals, query.OpCoupling, query.CouplingArgs{
			Target:           targetArgs[0],
			MinStrength:      *minStrength,
			MinSharedCommits: *minShared,
			MaxResults:       *maxResults,
		})

		return err
	}

	return cmd
}

// NewImpactCommand creates the `impact` subcommand.
func NewImpactCommand(globals *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "impact <file>",
		Short: "Score impact/risk for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, targetArgs []string) error {
			_, _, err := runQuery(cmd, globals, query.OpImpact, query.ImpactArgs{Target: targetArgs[0]})
			return err
		},
	}
}

// NewRiskCommand creates the `risk` subcommand: the same multi-factor
// impact scorer as `impact`, with --exit-code gated on cfg.Query.RiskThreshold
// instead of a bare record dump.
func NewRiskCommand(globals *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "risk <file>",
		Short: "Alias for impact, gated on the configured risk threshold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, targetArgs []string) error {
			rec, cfg, err := runQuery(cmd, globals, query.OpImpact, query.ImpactArgs{Target: targetArgs[0]})
			if err != nil {
				return err
			}

			return enforcePolicy(cmd, globals, riskPolicy(rec, cfg))
		},
	}
}

func parseWindowFlag(s string) trend.Window {
	switch trend.Window(s) {
	case trend.WindowDay, trend.WindowWeek, trend.WindowMonth:
		return trend.Window(s)
	default:
		return trend.WindowAll
	}
}

// NewVelocityCommand creates the `velocity` subcommand.
func NewVelocityCommand(globals *GlobalFlags) *cobra.Command {
	var window string

	cmd := &cobra.Command{
		Use:   "velocity",
		Short: "Regress complexity/hotspot-count over snapshots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _, err := runQuery(cmd, globals, query.OpVelocity, query.VelocityArgs{Window: parseWindowFlag(window)})
			return err
		},
	}

	cmd.Flags().StringVar(&window, "window", string(trend.WindowAll), "lookback window: day, week, month, all")

	return cmd
}

// NewTrajectoryCommand creates the `trajectory` subcommand.
func NewTrajectoryCommand(globals *GlobalFlags) *cobra.Command {
	var (
		window  string
		horizon int
	)

	cmd := &cobra.Command{
		Use:   "trajectory",
		Short: "Project future health score",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _, err := runQuery(cmd, globals, query.OpTrajectory, query.TrajectoryArgs{
				Window:      parseWindowFlag(window),
				HorizonDays: horizon,
			})

			return err
		},
	}

	cmd.Flags().StringVar(&window, "window", string(trend.WindowAll), "lookback window: day, week, month, all")
	cmd.Flags().IntVar(&horizon, "horizon-days", 0, "days ahead to project (0 uses the default)")

	return cmd
}

// NewPredictCommand creates the `predict` subcommand: an alias for
// `trajectory` under the name spec.md's command surface uses.
func NewPredictCommand(globals *GlobalFlags) *cobra.Command {
	cmd := NewTrajectoryCommand(globals)
	cmd.Use = "predict"
	cmd.Short = "Alias for trajectory"

	return cmd
}

// NewTrendsCommand creates the `trends` subcommand: TrendHandler over
// the whole snapshot history.
func NewTrendsCommand(globals *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "trends",
		Short: "Alias for trend, windowed over the full snapshot history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _, err := runQuery(cmd, globals, query.OpTrend, query.TrendArgs{Window: trend.WindowAll})
			return err
		},
	}
}

// NewStandupCommand creates the `standup` subcommand: TrendHandler
// narrowed to the last day, for a "what changed since yesterday" view.
func NewStandupCommand(globals *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "standup",
		Short: "Alias for trend, windowed to the last day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _, err := runQuery(cmd, globals, query.OpTrend, query.TrendArgs{Window: trend.WindowDay})
			return err
		},
	}
}

// NewDriftCommand creates the `drift` subcommand.
func NewDriftCommand(globals *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "drift",
		Short: "Diff per-file complexity against a fresh re-scan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _, err := runQuery(cmd, globals, query.OpDrift, nil)
			return err
		},
	}
}

// NewBreakingChangesCommand creates the `breaking-changes` subcommand:
// the same re-scan diff as `drift`, narrowed to files whose complexity
// increased (a cheap proxy for "got riskier", not a semantic API-break
// detector — spec.md's distillation doesn't specify one and no engine
// in this module parses exported-signature changes).
func NewBreakingChangesCommand(globals *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "breaking-changes",
		Short: "Alias for drift, narrowed to files that got more complex",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, root, err := globals.loadConfig()
			if err != nil {
				return err
			}

			src, err := openSource(root)
			if err != nil {
				return err
			}

			reg := newRegistry(src)

			rec, err := reg.Call(cmd.Context(), query.OpDrift, nil, cfg.Query.Deadline)
			if err != nil {
				return err
			}

			if deltas, ok := rec.Data.([]trend.FileDelta); ok {
				worsened := make([]trend.FileDelta, 0, len(deltas))

				for _, d := range deltas {
					if d.Delta > 0 {
						worsened = append(worsened, d)
					}
				}

				rec.Data = worsened
				rec.Summary = fmt.Sprintf("%d file(s) grew more complex since last scan", len(worsened))
				rec.Found = len(worsened) > 0
			}

			return printRecord(cmd.OutOrStdout(), rec, globals.JSON, globals.NoColor)
		},
	}
}

// NewSearchCommand creates the `search` subcommand.
func NewSearchCommand(globals *GlobalFlags) *cobra.Command {
	var (
		mode string
		topN int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search code by keyword/semantic/hybrid match",
		Args:  cobra.MinimumNArgs(1),
	}

	cmd.Flags().StringVar(&mode, "mode", string(semantic.ModeHybrid), "retrieval mode: keyword, semantic, hybrid")
	cmd.Flags().IntVar(&topN, "top", 0, "limit to the top N results (0 uses the default)")

	cmd.RunE = func(cmd *cobra.Command, queryArgs []string) error {
		_, _, err := runQuery(cmd, globals, query.OpSearch, query.SearchArgs{
			Query: joinArgs(queryArgs),
			Mode:  parseModeFlag(mode),
			TopN:  topN,
		})

		return err
	}

	return cmd
}

// NewAskCommand creates the `ask` subcommand: search forced into
// semantic mode, for natural-language questions rather than keyword
// lookups.
func NewAskCommand(globals *GlobalFlags) *cobra.Command {
	var topN int

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Alias for search, forced into semantic mode",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, queryArgs []string) error {
			_, _, err := runQuery(cmd, globals, query.OpSearch, query.SearchArgs{
				Query: joinArgs(queryArgs),
				Mode:  semantic.ModeSemantic,
				TopN:  topN,
			})

			return err
		},
	}

	cmd.Flags().IntVar(&topN, "top", 0, "limit to the top N results (0 uses the default)")

	return cmd
}

// NewIndexCommand creates the `index` subcommand.
func NewIndexCommand(globals *GlobalFlags) *cobra.Command {
	var rebuild bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build or refresh the persisted embedding index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _, err := runQuery(cmd, globals, query.OpIndex, nil)
			return err
		},
	}

	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "force a full rebuild (index always rebuilds; this flag is accepted for parity with spec.md's command surface)")

	return cmd
}

func joinArgs(args []string) string {
	out := args[0]
	for _, a := range args[1:] {
		out += " " + a
	}

	return out
}

func parseModeFlag(s string) semantic.Mode {
	switch semantic.Mode(s) {
	case semantic.ModeKeyword, semantic.ModeSemantic:
		return semantic.Mode(s)
	default:
		return semantic.ModeHybrid
	}
}

// healthPolicy reports whether rec's health score is at or above
// cfg's configured floor.
func healthPolicy(rec query.Record, cfg *config.Config) bool {
	report, ok := rec.Data.(query.HealthReport)
	if !ok {
		return true
	}

	return report.HealthScore >= cfg.Query.HealthThreshold
}

var riskRank = map[impact.Level]int{
	impact.LevelLow:      0,
	impact.LevelMedium:   1,
	impact.LevelHigh:     2,
	impact.LevelCritical: 3,
}

// riskPolicy reports whether rec's impact level is below cfg's
// configured risk threshold (a "high" threshold fails on high or
// critical, per spec.md's --exit-code example "any high-risk change").
func riskPolicy(rec query.Record, cfg *config.Config) bool {
	result, ok := rec.Data.(impact.Result)
	if !ok {
		return true
	}

	return riskRank[result.Level] < riskRank[impact.Level(cfg.Query.RiskThreshold)]
}

// enforcePolicy exits 1 when --exit-code was passed and pass is false,
// matching spec.md §6's "non-zero exit when a threshold policy fails".
func enforcePolicy(cmd *cobra.Command, globals *GlobalFlags, pass bool) error {
	if globals.ExitCode && !pass {
		cmd.SilenceUsage = true
		return ErrPolicyFail
	}

	return nil
}

// ErrPolicyFail signals a failed --exit-code policy check; main.go
// checks for it with errors.Is to exit ExitPolicyFail rather than
// ExitUserError.
var ErrPolicyFail = errors.New("policy check failed")

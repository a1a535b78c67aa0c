// Package main provides the entry point for the codegraph CLI tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codegraph-dev/codegraph/cmd/codegraph/commands"
	"github.com/codegraph-dev/codegraph/pkg/config"
	"github.com/codegraph-dev/codegraph/pkg/mcp"
	"github.com/codegraph-dev/codegraph/pkg/observability"
	"github.com/codegraph-dev/codegraph/pkg/query"
	"github.com/codegraph-dev/codegraph/pkg/store"
)

func main() {
	globals := &commands.GlobalFlags{}

	rootCmd := &cobra.Command{
		Use:   "codegraph",
		Short: "Codegraph - a codebase knowledge graph engine",
		Long: `Codegraph scans a project into a structural and historical knowledge
graph, then answers questions about it: hotspots, coupling, bus
factor, impact, drift, and semantic code search.

Commands:
  scan              Walk, parse, and persist a fresh graph
  status            Show the persisted graph's metadata
  clean             Remove the persisted graph
  health            Report the aggregate health score
  hotspots          Rank files by complexity/churn
  cycles            Detect import cycles
  bus-factor        Compute project-wide bus factor
  coupling          Compute change-coupling for a file
  impact / risk     Score multi-factor impact for a file
  velocity          Regress complexity/hotspot-count over time
  trajectory/predict Project future health score
  drift / breaking-changes  Diff complexity against a re-scan
  trends / standup  Windowed health-score trend
  search / ask      Keyword/semantic code search
  index             Rebuild the persisted embedding index
  mcp               Serve these operations over MCP (stdio)`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&globals.Root, "root", "", "project root (defaults to the working directory)")
	rootCmd.PersistentFlags().StringVar(&globals.ConfigPath, "config", "", "path to codegraph.yaml")
	rootCmd.PersistentFlags().BoolVar(&globals.JSON, "json", false, "emit the structured record as JSON")
	rootCmd.PersistentFlags().BoolVar(&globals.Quiet, "quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&globals.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&globals.ExitCode, "exit-code", false, "exit non-zero when a threshold policy fails")

	rootCmd.AddCommand(
		commands.NewScanCommand(globals),
		commands.NewStatusCommand(globals),
		commands.NewCleanCommand(globals),
		commands.NewHealthCommand(globals),
		commands.NewHotspotsCommand(globals),
		commands.NewCyclesCommand(globals),
		commands.NewBusFactorCommand(globals),
		commands.NewCouplingCommand(globals),
		commands.NewImpactCommand(globals),
		commands.NewRiskCommand(globals),
		commands.NewVelocityCommand(globals),
		commands.NewTrajectoryCommand(globals),
		commands.NewPredictCommand(globals),
		commands.NewDriftCommand(globals),
		commands.NewBreakingChangesCommand(globals),
		commands.NewTrendsCommand(globals),
		commands.NewStandupCommand(globals),
		commands.NewSearchCommand(globals),
		commands.NewAskCommand(globals),
		commands.NewIndexCommand(globals),
		newMCPCommand(globals),
	)

	err := rootCmd.Execute()

	switch {
	case err == nil:
		os.Exit(commands.ExitOK)
	case errors.Is(err, commands.ErrPolicyFail):
		os.Exit(commands.ExitPolicyFail)
	case errors.Is(err, commands.ErrNoGraph):
		fmt.Fprintln(os.Stderr, "no graph on disk; run `codegraph scan` first")
		os.Exit(commands.ExitNoGraph)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(commands.ExitUserError)
	}
}

// newMCPCommand serves every pkg/query operation as an MCP tool over
// stdio, for editor/agent integrations that talk MCP rather than
// shelling out to this CLI.
func newMCPCommand(globals *commands.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the query operations over MCP (stdio transport)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			root := globals.Root
			if root == "" {
				root = "."
			}

			abs, err := filepath.Abs(root)
			if err != nil {
				return fmt.Errorf("resolve root %q: %w", root, err)
			}

			root = abs

			cfg, err := config.LoadConfig(globals.ConfigPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			cfg.Scan.Root = root

			st, err := store.Open(root)
			if err != nil {
				return err
			}

			obsCfg := observability.DefaultConfig()
			obsCfg.Mode = observability.ModeMCP
			obsCfg.ServiceName = "codegraph-mcp"

			providers, err := observability.Init(obsCfg)
			if err != nil {
				return fmt.Errorf("init observability: %w", err)
			}
			defer func() { _ = providers.Shutdown(context.Background()) }()

			metrics, err := observability.NewREDMetrics(providers.Meter)
			if err != nil {
				return fmt.Errorf("init metrics: %w", err)
			}

			server := mcp.NewServer(mcp.ServerDeps{
				Source:  query.Source{Store: st, RootDir: root},
				Logger:  providers.Logger,
				Metrics: metrics,
				Tracer:  providers.Tracer,
			})

			_ = cfg // reserved for MCP transport/port config once a non-stdio transport is wired

			return server.Run(cmd.Context())
		},
	}
}

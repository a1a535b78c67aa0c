package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/codegraph-dev/codegraph/pkg/assembler"
	"github.com/codegraph-dev/codegraph/pkg/discovery"
	"github.com/codegraph-dev/codegraph/pkg/hotspots"
	"github.com/codegraph-dev/codegraph/pkg/parser"
	"github.com/codegraph-dev/codegraph/pkg/store"
)

// ScanCommand drives the A-through-G pipeline: discover, parse, assemble,
// score, and persist, per spec.md §6's `scan` subcommand.
type ScanCommand struct {
	globals    *GlobalFlags
	includeGit bool
	force      bool
}

// NewScanCommand creates the `scan` subcommand.
func NewScanCommand(globals *GlobalFlags) *cobra.Command {
	sc := &ScanCommand{globals: globals}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the project and persist a fresh knowledge graph",
		Long: `scan walks the project tree, parses every source file, resolves
imports, folds in git history, and writes the resulting graph (plus a
scored snapshot) to .codegraph/. Exit 0 on completion even with
per-file parse errors; exit 1 only when no graph could be written at all.`,
		RunE: sc.run,
	}

	cmd.Flags().BoolVar(&sc.includeGit, "include-git", true, "fold git commit history into the graph")
	cmd.Flags().BoolVar(&sc.force, "force", false, "rescan even if the persisted graph looks up to date")

	return cmd
}

func (sc *ScanCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, root, err := sc.globals.loadConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(root)
	if err != nil {
		return err
	}

	ignoreDirs := make(map[string]bool, len(cfg.Scan.IgnoreDirs))
	for _, d := range cfg.Scan.IgnoreDirs {
		ignoreDirs[d] = true
	}

	if !sc.force {
		disco, discoErr := discovery.Walk(root, discovery.Options{IgnoreDirs: ignoreDirs, MaxFileSize: cfg.Scan.MaxFileSize})
		if discoErr == nil {
			paths := make([]string, 0, len(disco.Files))
			for _, f := range disco.Files {
				paths = append(paths, f.AbsolutePath)
			}

			stale, staleErr := st.IsStale(paths)
			if staleErr == nil && !stale {
				if !sc.globals.Quiet {
					fmt.Fprintln(cmd.OutOrStdout(), "graph already up to date; use --force to rescan")
				}

				return nil
			}
		}
	}

	bar := newScanSpinner(sc.globals.Quiet || sc.globals.JSON, sc.globals.NoColor)
	done := make(chan struct{})

	if bar != nil {
		go animateSpinner(bar, done)
	}

	opts := assembler.Options{
		RootDir:     root,
		IgnoreDirs:  ignoreDirs,
		MaxFileSize: cfg.Scan.MaxFileSize,
		Workers:     cfg.Scan.Workers,
		SkipGit:     !sc.includeGit,
	}

	started := time.Now()

	g, err := assembler.Assemble(context.Background(), parser.Default(), opts)

	close(done)
	stopSpinner(bar)

	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	result := hotspots.Analyze(g, 0)
	health := hotspots.HealthScore(result)

	if err := st.Save(g); err != nil {
		return fmt.Errorf("persist graph: %w", err)
	}

	if err := st.AppendSnapshotWithHealth(g, health, len(result.Top)); err != nil {
		return fmt.Errorf("append snapshot: %w", err)
	}

	if sc.globals.JSON {
		return printRecord(cmd.OutOrStdout(), scanRecord(g, health, time.Since(started)), true, sc.globals.NoColor)
	}

	if !sc.globals.Quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "scanned %d file(s), %s lines, health %.1f, %d error(s) in %s\n",
			g.Metadata.FileCount, humanize.Comma(int64(g.Metadata.TotalLines)), health, len(g.Errors), time.Since(started).Round(time.Millisecond))
	}

	return nil
}

func animateSpinner(bar interface{ Add(int) error }, done <-chan struct{}) {
	ticker := time.NewTicker(65 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}
}

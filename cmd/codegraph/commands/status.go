package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codegraph-dev/codegraph/pkg/query"
	"github.com/codegraph-dev/codegraph/pkg/store"
)

// StatusReport is the `status` command's record data: the graph's
// metadata header plus the last scan's error count. It carries no
// staleness check against the working tree.
type StatusReport struct {
	Initialized bool   `json:"initialized"`
	RootDir     string `json:"rootDir,omitempty"`
	FileCount   int    `json:"fileCount,omitempty"`
	NodeCount   int    `json:"nodeCount,omitempty"`
	EdgeCount   int    `json:"edgeCount,omitempty"`
	ScannedAt   string `json:"scannedAt,omitempty"`
	ErrorCount  int    `json:"errorCount,omitempty"`
}

// NewStatusCommand creates the `status` subcommand.
func NewStatusCommand(globals *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the persisted graph's metadata (no staleness check)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, root, err := globals.loadConfig()
			if err != nil {
				return err
			}

			st, err := store.Open(root)
			if err != nil {
				return err
			}

			meta, ok, err := st.LoadMetadata()
			if err != nil {
				return err
			}

			if !ok {
				if printErr := printRecord(cmd.OutOrStdout(), query.NotInitialized(), globals.JSON, globals.NoColor); printErr != nil {
					return printErr
				}

				return ErrNoGraph
			}

			errs, _, err := st.LoadErrors()
			if err != nil {
				return err
			}

			report := StatusReport{
				Initialized: true,
				RootDir:     meta.RootDir,
				FileCount:   meta.FileCount,
				NodeCount:   meta.NodeCount,
				EdgeCount:   meta.EdgeCount,
				ScannedAt:   meta.ScannedAt.Format("2006-01-02T15:04:05Z07:00"),
				ErrorCount:  len(errs),
			}

			summary := fmt.Sprintf("graph scanned at %s: %d file(s), %d error(s)", report.ScannedAt, report.FileCount, report.ErrorCount)

			return printRecord(cmd.OutOrStdout(), query.Ok(report, summary), globals.JSON, globals.NoColor)
		},
	}
}

// NewCleanCommand creates the `clean` subcommand.
func NewCleanCommand(globals *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the persisted graph, keeping the snapshot log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, root, err := globals.loadConfig()
			if err != nil {
				return err
			}

			st, err := store.Open(root)
			if err != nil {
				return err
			}

			if err := st.Delete(); err != nil {
				return err
			}

			if !globals.Quiet && !globals.JSON {
				fmt.Fprintln(cmd.OutOrStdout(), "removed persisted graph (snapshots preserved)")
			}

			return nil
		},
	}
}

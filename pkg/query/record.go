// Package query defines the uniform result contract every analytical
// operation returns (component O): a record of shape
// { found/empty?, …domain fields…, summary }, consumed identically by
// the terminal renderer and the external-protocol adapter.
package query

import (
	"fmt"

	"github.com/codegraph-dev/codegraph/pkg/cgerrors"
)

// Record is the shared envelope every query handler returns. Data
// carries the operation's own result type (cycles.Result,
// impact.Result, and so on); Summary is a short textual rendering for
// the terminal adapter. A query never throws past this boundary for
// the degraded-but-not-fatal conditions in spec.md's failure table —
// those set Found=false and populate Error instead.
type Record struct {
	Found   bool            `json:"found"`
	Summary string          `json:"summary"`
	Data    any             `json:"data,omitempty"`
	Error   *cgerrors.Error `json:"error,omitempty"`
}

// Ok wraps a successful operation result.
func Ok(data any, summary string) Record {
	return Record{Found: true, Summary: summary, Data: data}
}

// Empty returns a record for a query that ran successfully but found
// nothing to report (e.g. no cycles in an acyclic graph).
func Empty(summary string) Record {
	return Record{Found: false, Summary: summary}
}

// NotInitialized builds the record returned uniformly across queries
// when no graph has been persisted yet.
func NotInitialized() Record {
	err := cgerrors.New(cgerrors.KindNotInitialized, "no graph on disk").
		WithHint("run `codegraph scan` first")

	return Record{Found: false, Summary: err.Message, Error: err}
}

// NotFound builds the record returned when a query's target (a file,
// symbol, or operation argument) is not present in the graph.
func NotFound(kind, target string) Record {
	err := cgerrors.New(cgerrors.KindNotFound, fmt.Sprintf("%s %q not found in graph", kind, target))

	return Record{Found: false, Summary: err.Message, Error: err}
}

// GitDegraded builds a record annotation for queries whose
// history-dependent fields are absent because git was unavailable,
// while the rest of the record still succeeds.
func GitDegraded(data any, summary string) Record {
	err := cgerrors.New(cgerrors.KindGitUnavailable, "git unavailable; history-dependent fields omitted")

	return Record{Found: true, Summary: summary, Data: data, Error: err}
}

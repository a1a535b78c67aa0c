// Package cycles implements component H: detecting import cycles among
// file nodes and bucketing them by severity.
package cycles

import (
	"sort"

	"github.com/codegraph-dev/codegraph/pkg/graph"
	"github.com/codegraph-dev/codegraph/pkg/toposort"
)

// Severity buckets a cycle by how many files it spans.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Cycle is one import cycle, with its file list canonicalized so the
// lexicographically smallest path occurs first.
type Cycle struct {
	Files    []string `json:"files"`
	Length   int      `json:"length"`
	Severity Severity `json:"severity"`
}

// Result is the full cycle-detection output for a graph.
type Result struct {
	Cycles           []Cycle          `json:"cycles"`
	WorstCycle       *Cycle           `json:"worstCycle,omitempty"`
	CountsBySeverity map[Severity]int `json:"countsBySeverity"`
}

// Detect builds the file-level imports subgraph from idx and returns
// every strongly connected component of size >= 2, plus any file with a
// direct self-import, as a Cycle.
func Detect(g *graph.Graph, idx *graph.Index) Result {
	tg := toposort.NewGraph()

	var filePaths []string

	for _, n := range g.Nodes {
		if n.Type == graph.NodeFile {
			tg.AddNode(n.FilePath)
			filePaths = append(filePaths, n.FilePath)
		}
	}

	selfLoop := make(map[string]bool)

	for _, e := range g.Edges {
		if e.Type != graph.EdgeImports {
			continue
		}

		src, srcOK := idx.Node(e.Source)
		dst, dstOK := idx.Node(e.Target)

		if !srcOK || !dstOK {
			continue
		}

		tg.AddEdge(src.FilePath, dst.FilePath)

		if src.FilePath == dst.FilePath {
			selfLoop[src.FilePath] = true
		}
	}

	var cycles []Cycle

	for _, scc := range tg.StronglyConnectedComponents() {
		if len(scc) < 2 && !selfLoop[scc[0]] {
			continue
		}

		files := canonicalOrder(scc, idx)
		cycles = append(cycles, Cycle{
			Files:    files,
			Length:   len(files),
			Severity: severityFor(len(files)),
		})
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i].Files[0] < cycles[j].Files[0]
	})

	counts := map[Severity]int{SeverityLow: 0, SeverityMedium: 0, SeverityHigh: 0}

	var worst *Cycle

	for i := range cycles {
		c := &cycles[i]
		counts[c.Severity]++

		if worst == nil || c.Length > worst.Length {
			worst = c
		}
	}

	return Result{Cycles: cycles, WorstCycle: worst, CountsBySeverity: counts}
}

// severityFor buckets a cycle length into low (<=2), medium (3), or
// high (>=4) severity.
func severityFor(length int) Severity {
	switch {
	case length <= 2:
		return SeverityLow
	case length == 3:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}

// canonicalOrder walks the component restricted to its own members,
// following import edges in sorted order for determinism, then rotates
// the resulting path so its lexicographically smallest file is first.
func canonicalOrder(scc []string, idx *graph.Index) []string {
	members := make(map[string]bool, len(scc))
	for _, f := range scc {
		members[f] = true
	}

	sorted := append([]string(nil), scc...)
	sort.Strings(sorted)

	visited := make(map[string]bool, len(scc))

	var order []string

	var visit func(path string)

	visit = func(path string) {
		if visited[path] {
			return
		}

		visited[path] = true
		order = append(order, path)

		node, ok := idx.FileNode(path)
		if !ok {
			return
		}

		var targets []string

		for _, e := range idx.ImportsFrom(node.ID) {
			tn, ok := idx.Node(e.Target)
			if !ok || !members[tn.FilePath] {
				continue
			}

			targets = append(targets, tn.FilePath)
		}

		sort.Strings(targets)

		for _, t := range targets {
			visit(t)
		}
	}

	visit(sorted[0])

	// Strongly-connected components are reachable from any member by
	// construction, but guard against an inconsistent graph.
	for _, f := range sorted {
		visit(f)
	}

	return rotateToSmallest(order)
}

// rotateToSmallest rotates order so its lexicographically smallest
// element is first, preserving the existing cyclic sequence.
func rotateToSmallest(order []string) []string {
	if len(order) <= 1 {
		return order
	}

	minIdx := 0

	for i, v := range order {
		if v < order[minIdx] {
			minIdx = i
		}
	}

	rotated := make([]string, len(order))
	copy(rotated, order[minIdx:])
	copy(rotated[len(order)-minIdx:], order[:minIdx])

	return rotated
}

package graph

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
)

// ErrInvariantViolation is returned by Validate when an assembled graph
// fails one of the knowledge-graph invariants. The caller treats this as
// InternalInvariantViolation and aborts the scan.
var ErrInvariantViolation = errors.New("graph invariant violation")

// Index provides O(1) lookups over an assembled Graph. It is built once
// after assembly and is safe for concurrent reads.
type Index struct {
	g            *Graph
	byID         map[string]*Node
	byFile       map[string][]*Node
	outImports   map[string][]*Edge
	inImports    map[string][]*Edge
	fileIDByPath map[string]string
}

// NewIndex builds a lookup index over g. g is not copied; callers must
// not mutate it while the index is in use.
func NewIndex(g *Graph) *Index {
	idx := &Index{
		g:            g,
		byID:         make(map[string]*Node, len(g.Nodes)),
		byFile:       make(map[string][]*Node),
		outImports:   make(map[string][]*Edge),
		inImports:    make(map[string][]*Edge),
		fileIDByPath: make(map[string]string),
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		idx.byID[n.ID] = n
		idx.byFile[n.FilePath] = append(idx.byFile[n.FilePath], n)

		if n.Type == NodeFile {
			idx.fileIDByPath[n.FilePath] = n.ID
		}
	}

	for i := range g.Edges {
		e := &g.Edges[i]
		if e.Type != EdgeImports {
			continue
		}

		idx.outImports[e.Source] = append(idx.outImports[e.Source], e)
		idx.inImports[e.Target] = append(idx.inImports[e.Target], e)
	}

	return idx
}

// Node returns the node with the given id, if present.
func (idx *Index) Node(id string) (*Node, bool) {
	n, ok := idx.byID[id]
	return n, ok
}

// FileNode returns the file node for the given path, if present.
func (idx *Index) FileNode(path string) (*Node, bool) {
	id, ok := idx.fileIDByPath[path]
	if !ok {
		return nil, false
	}

	return idx.Node(id)
}

// SymbolsIn returns all symbol nodes (non-file) defined in the given file.
func (idx *Index) SymbolsIn(path string) []*Node {
	nodes := idx.byFile[path]

	out := make([]*Node, 0, len(nodes))

	for _, n := range nodes {
		if n.Type != NodeFile {
			out = append(out, n)
		}
	}

	return out
}

// ImportsFrom returns the outgoing imports edges whose source is the file node id.
func (idx *Index) ImportsFrom(fileID string) []*Edge {
	return idx.outImports[fileID]
}

// ImportedBy returns the incoming imports edges whose target is the file node id.
func (idx *Index) ImportedBy(fileID string) []*Edge {
	return idx.inImports[fileID]
}

// HasImportRelationship reports whether a or b import one another directly.
func (idx *Index) HasImportRelationship(aPath, bPath string) bool {
	aNode, aOK := idx.FileNode(aPath)
	bNode, bOK := idx.FileNode(bPath)

	if !aOK || !bOK {
		return false
	}

	for _, e := range idx.outImports[aNode.ID] {
		if e.Target == bNode.ID {
			return true
		}
	}

	for _, e := range idx.outImports[bNode.ID] {
		if e.Target == aNode.ID {
			return true
		}
	}

	return false
}

// MaxComplexity returns the maximum cyclomatic complexity among the
// function/method symbols defined in path. Returns (0, false) when the
// file has no complexity-bearing symbols.
func (idx *Index) MaxComplexity(path string) (int, bool) {
	found := false

	max := 0

	for _, n := range idx.byFile[path] {
		if !n.HasComplexity {
			continue
		}

		found = true
		if n.Complexity > max {
			max = n.Complexity
		}
	}

	return max, found
}

// Validate checks the Graph against the §3 invariants. It returns a
// wrapped ErrInvariantViolation describing the first violation found.
func Validate(g *Graph) error {
	filePaths := make(map[string]bool, g.Metadata.FileCount)
	seenIDs := make(map[string]bool, len(g.Nodes))
	fileCount := 0

	for _, n := range g.Nodes {
		if seenIDs[n.ID] {
			return fmt.Errorf("%w: duplicate node id %q", ErrInvariantViolation, n.ID)
		}

		seenIDs[n.ID] = true

		if n.Type == NodeFile {
			fileCount++
			filePaths[n.FilePath] = true
		}

		if n.LineStart > n.LineEnd {
			return fmt.Errorf("%w: node %q has lineStart > lineEnd", ErrInvariantViolation, n.ID)
		}
	}

	for _, n := range g.Nodes {
		if n.Type == NodeFile {
			continue
		}

		if !filePaths[n.FilePath] {
			return fmt.Errorf("%w: node %q references absent file %q", ErrInvariantViolation, n.ID, n.FilePath)
		}
	}

	byID := make(map[string]NodeType, len(g.Nodes))
	for _, n := range g.Nodes {
		byID[n.ID] = n.Type
	}

	for _, e := range g.Edges {
		if e.Type != EdgeImports {
			continue
		}

		if byID[e.Source] != NodeFile || byID[e.Target] != NodeFile {
			return fmt.Errorf("%w: imports edge %s->%s has non-file endpoint", ErrInvariantViolation, e.Source, e.Target)
		}
	}

	if fileCount != g.Metadata.FileCount {
		return fmt.Errorf("%w: metadata.fileCount=%d actual=%d", ErrInvariantViolation, g.Metadata.FileCount, fileCount)
	}

	if len(g.Nodes) != g.Metadata.NodeCount {
		return fmt.Errorf("%w: metadata.nodeCount=%d actual=%d", ErrInvariantViolation, g.Metadata.NodeCount, len(g.Nodes))
	}

	if len(g.Edges) != g.Metadata.EdgeCount {
		return fmt.Errorf("%w: metadata.edgeCount=%d actual=%d", ErrInvariantViolation, g.Metadata.EdgeCount, len(g.Edges))
	}

	return nil
}

// Canonicalize orders nodes by (normalized file path, type, lineStart,
// id), and edges by (source, type, target), giving the deterministic ordering
// §5 requires for a given input tree and git state.
func Canonicalize(g *Graph) {
	sort.SliceStable(g.Nodes, func(i, j int) bool {
		a, b := g.Nodes[i], g.Nodes[j]

		pa := filepath.ToSlash(a.FilePath)
		pb := filepath.ToSlash(b.FilePath)

		if pa != pb {
			return pa < pb
		}

		if a.Type != b.Type {
			return a.Type < b.Type
		}

		if a.LineStart != b.LineStart {
			return a.LineStart < b.LineStart
		}

		return a.ID < b.ID
	})

	sort.SliceStable(g.Edges, func(i, j int) bool {
		a, b := g.Edges[i], g.Edges[j]

		if a.Source != b.Source {
			return a.Source < b.Source
		}

		if a.Type != b.Type {
			return a.Type < b.Type
		}

		return a.Target < b.Target
	})
}

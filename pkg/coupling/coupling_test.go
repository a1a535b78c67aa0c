package coupling

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codegraph-dev/codegraph/pkg/graph"
)

func emptyIndex() *graph.Index {
	return graph.NewIndex(&graph.Graph{})
}

// TestCoupling_JaccardOverCommitSets exercises the Jaccard formula
// against a hand-traced fixture: commit sets {c1:{A,B}, c2:{A,B},
// c3:{A,B,C}, c4:{A,C}, c5:{A}}. A appears in all 5 commits, so
// coupling(A) has union(A,B) = |{c1,c2,c3,c4,c5}| = 5 (B contributes no
// commit A isn't already in) and shared(A,B) = 3, giving strength 0.6;
// union(A,C) = 5 likewise, shared(A,C) = 2, giving strength 0.4.
func TestCoupling_JaccardOverCommitSets(t *testing.T) {
	commits := []CommitFileSet{
		{Hash: "c1", Files: []string{"A", "B"}},
		{Hash: "c2", Files: []string{"A", "B"}},
		{Hash: "c3", Files: []string{"A", "B", "C"}},
		{Hash: "c4", Files: []string{"A", "C"}},
		{Hash: "c5", Files: []string{"A"}},
	}

	result := Coupling("A", commits, emptyIndex(), Options{MinStrength: 0, MinSharedCommits: 1})

	byFile := map[string]Pair{}
	for _, p := range result.Coupled {
		byFile[p.File] = p
	}

	assert.InDelta(t, 0.6, byFile["B"].Strength, 1e-9)
	assert.InDelta(t, 0.4, byFile["C"].Strength, 1e-9)
}

func TestCoupling_HiddenRequiresNoImportRelationship(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "file:a.go", Type: graph.NodeFile, FilePath: "a.go", LineStart: 1, LineEnd: 1},
			{ID: "file:b.go", Type: graph.NodeFile, FilePath: "b.go", LineStart: 1, LineEnd: 1},
		},
		Edges: []graph.Edge{{Source: "file:a.go", Target: "file:b.go", Type: graph.EdgeImports}},
	}
	idx := graph.NewIndex(g)

	commits := []CommitFileSet{
		{Hash: "c1", Files: []string{"a.go", "b.go"}},
		{Hash: "c2", Files: []string{"a.go", "b.go"}},
	}

	result := Coupling("a.go", commits, idx, Options{MinStrength: 0.3, MinSharedCommits: 2})

	assert.Len(t, result.Coupled, 1)
	assert.True(t, result.Coupled[0].HasImportRelationship)
	assert.False(t, result.Coupled[0].Hidden)
	assert.Empty(t, result.Hidden)
}

func TestCoupling_BelowMinSharedCommitsIsFiltered(t *testing.T) {
	commits := []CommitFileSet{
		{Hash: "c1", Files: []string{"a.go", "b.go"}},
	}

	result := Coupling("a.go", commits, emptyIndex(), Options{MinStrength: 0, MinSharedCommits: 2})

	assert.Empty(t, result.Coupled)
}

func TestCoupling_MaxResultsCaps(t *testing.T) {
	commits := []CommitFileSet{
		{Hash: "c1", Files: []string{"a.go", "b.go", "c.go"}},
		{Hash: "c2", Files: []string{"a.go", "b.go", "c.go"}},
	}

	result := Coupling("a.go", commits, emptyIndex(), Options{MinStrength: 0, MinSharedCommits: 1, MaxResults: 1})

	assert.Len(t, result.Coupled, 1)
}

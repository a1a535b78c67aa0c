package hotspots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraph-dev/codegraph/pkg/graph"
)

func fileNode(path string, complexity, mods int) graph.Node {
	return graph.Node{
		ID: "file:" + path, Type: graph.NodeFile, FilePath: path,
		LineStart: 1, LineEnd: 1, Complexity: complexity, HasComplexity: complexity > 0, ModificationCount: mods,
	}
}

func TestAnalyze_DangerQuadrantIsHighComplexityHighChurn(t *testing.T) {
	g := &graph.Graph{Nodes: []graph.Node{
		fileNode("danger.go", 20, 50),
		fileNode("healthy.go", 1, 1),
	}}

	result := Analyze(g, 10)

	byFile := map[string]Point{}
	for _, p := range result.Points {
		byFile[p.File] = p
	}

	assert.Equal(t, QuadrantDanger, byFile["danger.go"].Quadrant)
	assert.Equal(t, QuadrantHealthy, byFile["healthy.go"].Quadrant)
}

func TestAnalyze_TopRanksByScoreDescending(t *testing.T) {
	g := &graph.Graph{Nodes: []graph.Node{
		fileNode("low.go", 2, 2),
		fileNode("high.go", 20, 20),
	}}

	result := Analyze(g, 1)

	require.Len(t, result.Top, 1)
	assert.Equal(t, "high.go", result.Top[0].File)
}

func TestAnalyze_ZeroComplexityAndChurnScoresZero(t *testing.T) {
	g := &graph.Graph{Nodes: []graph.Node{fileNode("empty.go", 0, 0)}}

	result := Analyze(g, 10)

	require.Len(t, result.Points, 1)
	assert.Equal(t, 0.0, result.Points[0].Score)
}

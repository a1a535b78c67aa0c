package toposort

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sortedSCCs(sccs [][]string) []string {
	flat := make([]string, len(sccs))
	for i, scc := range sccs {
		sort.Strings(scc)
		flat[i] = ""
		for _, n := range scc {
			flat[i] += n + ","
		}
	}

	sort.Strings(flat)

	return flat
}

func TestStronglyConnectedComponents_SimpleCycle(t *testing.T) {
	g := NewGraph()
	addNodes(g, "a", "b", "c")
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "a")

	sccs := g.StronglyConnectedComponents()

	assert.Len(t, sccs, 1)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, sccs[0])
}

func TestStronglyConnectedComponents_SelfLoop(t *testing.T) {
	g := NewGraph()
	addNodes(g, "a", "b")
	g.AddEdge("a", "a")
	g.AddEdge("a", "b")

	sccs := g.StronglyConnectedComponents()

	var found bool

	for _, scc := range sccs {
		if len(scc) == 1 && scc[0] == "a" {
			found = true
		}
	}

	assert.True(t, found)
}

func TestStronglyConnectedComponents_AcyclicHasNoMultiNodeComponent(t *testing.T) {
	g := NewGraph()
	addNodes(g, "a", "b", "c")
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")

	for _, scc := range g.StronglyConnectedComponents() {
		assert.Len(t, scc, 1)
	}
}

func TestStronglyConnectedComponents_Deterministic(t *testing.T) {
	g := NewGraph()
	addNodes(g, "x", "y", "z")
	g.AddEdge("x", "y")
	g.AddEdge("y", "z")
	g.AddEdge("z", "x")

	first := sortedSCCs(g.StronglyConnectedComponents())
	second := sortedSCCs(g.StronglyConnectedComponents())

	assert.Equal(t, first, second)
}

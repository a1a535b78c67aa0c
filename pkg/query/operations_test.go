package query_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraph-dev/codegraph/pkg/graph"
	"github.com/codegraph-dev/codegraph/pkg/query"
	"github.com/codegraph-dev/codegraph/pkg/store"
)

func openStoreWithGraph(t *testing.T, g *graph.Graph) *store.Store {
	t.Helper()

	st, err := store.Open(t.TempDir())
	require.NoError(t, err)

	if g != nil {
		require.NoError(t, st.Save(g))
	}

	return st
}

func sampleGraph() *graph.Graph {
	return &graph.Graph{
		Nodes: []graph.Node{
			{ID: "file:a.go", Type: graph.NodeFile, FilePath: "a.go", Name: "a.go", LineStart: 1, LineEnd: 10},
			{ID: "file:b.go", Type: graph.NodeFile, FilePath: "b.go", Name: "b.go", LineStart: 1, LineEnd: 10},
		},
		Edges: []graph.Edge{
			{Source: "file:a.go", Target: "file:b.go", Type: graph.EdgeImports},
		},
		Metadata: graph.Metadata{SchemaVersion: 1, FileCount: 2, NodeCount: 2, EdgeCount: 1},
	}
}

func TestCyclesHandler_NoGraphOnDisk(t *testing.T) {
	t.Parallel()

	src := query.Source{Store: openStoreWithGraph(t, nil)}

	rec, err := query.CyclesHandler(src)(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, rec.Found)
	assert.NotNil(t, rec.Error)
}

func TestCyclesHandler_NoCyclesInAcyclicGraph(t *testing.T) {
	t.Parallel()

	src := query.Source{Store: openStoreWithGraph(t, sampleGraph())}

	rec, err := query.CyclesHandler(src)(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, rec.Found)
	assert.Contains(t, rec.Summary, "0 import cycle")
}

func TestImpactHandler_MissingTargetArg(t *testing.T) {
	t.Parallel()

	src := query.Source{Store: openStoreWithGraph(t, sampleGraph())}

	_, err := query.ImpactHandler(src)(context.Background(), query.ImpactArgs{})
	require.Error(t, err)
}

func TestImpactHandler_TargetNotInGraph(t *testing.T) {
	t.Parallel()

	src := query.Source{Store: openStoreWithGraph(t, sampleGraph())}

	rec, err := query.ImpactHandler(src)(context.Background(), query.ImpactArgs{Target: "missing.go"})
	require.NoError(t, err)
	assert.False(t, rec.Found)
}

func TestImpactHandler_ScoresKnownTarget(t *testing.T) {
	t.Parallel()

	src := query.Source{Store: openStoreWithGraph(t, sampleGraph())}

	rec, err := query.ImpactHandler(src)(context.Background(), query.ImpactArgs{Target: "b.go"})
	require.NoError(t, err)
	assert.True(t, rec.Found)
	assert.NotNil(t, rec.Data)
}

func TestHotspotsHandler_DefaultsTopNWhenUnset(t *testing.T) {
	t.Parallel()

	src := query.Source{Store: openStoreWithGraph(t, sampleGraph())}

	rec, err := query.HotspotsHandler(src)(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, rec.Found)
}

func TestSearchHandler_MissingQueryArg(t *testing.T) {
	t.Parallel()

	src := query.Source{Store: openStoreWithGraph(t, sampleGraph())}

	_, err := query.SearchHandler(src)(context.Background(), query.SearchArgs{})
	require.Error(t, err)
}

func TestSearchHandler_NoMatchesReturnsEmpty(t *testing.T) {
	t.Parallel()

	src := query.Source{Store: openStoreWithGraph(t, sampleGraph())}

	rec, err := query.SearchHandler(src)(context.Background(), query.SearchArgs{Query: "zzz_nonexistent_token"})
	require.NoError(t, err)
	assert.False(t, rec.Found)
}

func TestTrendHandler_InsufficientSnapshots(t *testing.T) {
	t.Parallel()

	src := query.Source{Store: openStoreWithGraph(t, sampleGraph())}

	rec, err := query.TrendHandler(src)(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, rec.Found)
}

func TestRegisterAll_RegistersEveryOperation(t *testing.T) {
	t.Parallel()

	reg := query.NewRegistry()
	src := query.Source{Store: openStoreWithGraph(t, sampleGraph())}

	query.RegisterAll(reg, src)

	names := reg.Names()
	assert.Contains(t, names, query.OpCycles)
	assert.Contains(t, names, query.OpCoupling)
	assert.Contains(t, names, query.OpImpact)
	assert.Contains(t, names, query.OpBusFactor)
	assert.Contains(t, names, query.OpHotspots)
	assert.Contains(t, names, query.OpSearch)
	assert.Contains(t, names, query.OpTrend)
	assert.Contains(t, names, query.OpTrajectory)
	assert.Contains(t, names, query.OpIndex)
	assert.Contains(t, names, query.OpHealth)
	assert.Contains(t, names, query.OpVelocity)
	assert.Contains(t, names, query.OpDrift)
}

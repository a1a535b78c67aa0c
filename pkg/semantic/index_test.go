package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraph-dev/codegraph/pkg/graph"
)

func sampleGraph() *graph.Graph {
	return &graph.Graph{
		Nodes: []graph.Node{
			{ID: "file:auth.go", Type: graph.NodeFile, FilePath: "auth.go", Name: "auth.go", LineStart: 1, LineEnd: 10},
			{
				ID: "symbol:auth.go#DeleteUser:5", Type: graph.NodeFunction, Name: "DeleteUser",
				FilePath: "auth.go", Documentation: "removes a user account permanently", Exported: true,
				LineStart: 5, LineEnd: 8,
			},
			{ID: "file:util.go", Type: graph.NodeFile, FilePath: "util.go", Name: "util.go", LineStart: 1, LineEnd: 4},
			{
				ID: "symbol:util.go#formatTime:2", Type: graph.NodeFunction, Name: "formatTime",
				FilePath: "util.go", Documentation: "formats a timestamp for display",
				LineStart: 2, LineEnd: 3,
			},
		},
	}
}

func TestTokenize_SplitsCamelAndSnakeCase(t *testing.T) {
	assert.ElementsMatch(t, []string{"delete", "user"}, tokenize("DeleteUser"))
	assert.ElementsMatch(t, []string{"format", "time"}, tokenize("format_time"))
}

func TestBuild_CreatesFileAndSymbolChunks(t *testing.T) {
	idx := Build(sampleGraph())
	assert.Len(t, idx.chunks, 4)
}

func TestSearch_KeywordExactNameMatch(t *testing.T) {
	idx := Build(sampleGraph())

	results := idx.Search("DeleteUser", ModeKeyword, 5)

	require.NotEmpty(t, results)
	assert.Equal(t, "symbol:auth.go#DeleteUser:5", results[0].ChunkID)
}

func TestSearch_SemanticFindsSynonym(t *testing.T) {
	idx := Build(sampleGraph())

	results := idx.Search("remove account", ModeSemantic, 5)

	var found bool

	for _, r := range results {
		if r.ChunkID == "symbol:auth.go#DeleteUser:5" {
			found = true
		}
	}

	assert.True(t, found)
}

func TestSearch_HybridBoostsChunksFoundByBoth(t *testing.T) {
	idx := Build(sampleGraph())

	results := idx.Search("DeleteUser", ModeHybrid, 5)

	require.NotEmpty(t, results)
	assert.Equal(t, "symbol:auth.go#DeleteUser:5", results[0].ChunkID)
	assert.Contains(t, results[0].Reason, "+")
}

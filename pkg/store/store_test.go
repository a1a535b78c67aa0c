package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraph-dev/codegraph/pkg/graph"
)

func sampleGraph() *graph.Graph {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "file:a.go", Type: graph.NodeFile, FilePath: "a.go", LineStart: 1, LineEnd: 5},
		},
	}
	g.Metadata.FileCount = 1
	g.Metadata.NodeCount = 1
	g.Metadata.ScannedAt = time.Now()

	return g
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)

	g := sampleGraph()
	require.NoError(t, s.Save(g))

	loaded, ok, err := s.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, loaded.Metadata.FileCount)
	require.Len(t, loaded.Nodes, 1)
	assert.Equal(t, "a.go", loaded.Nodes[0].FilePath)
}

func TestStore_LoadAbsentReturnsFalse(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)

	_, ok, err := s.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_LoadMetadataFastPath(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save(sampleGraph()))

	meta, ok, err := s.LoadMetadata()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, meta.FileCount)
}

func TestStore_DeletePreservesSnapshots(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save(sampleGraph()))

	require.NoError(t, s.Delete())

	_, ok, err := s.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	snaps, err := s.Snapshots()
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

func TestStore_SnapshotsNewestFirst(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)

	g1 := sampleGraph()
	g1.Metadata.ScannedAt = time.Now().Add(-time.Hour)
	require.NoError(t, s.Save(g1))

	g2 := sampleGraph()
	g2.Metadata.ScannedAt = time.Now()
	require.NoError(t, s.Save(g2))

	snaps, err := s.Snapshots()
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.True(t, snaps[0].Timestamp.After(snaps[1].Timestamp))
}

func TestStore_IsStaleWithoutPriorSave(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)

	stale, err := s.IsStale(nil)
	require.NoError(t, err)
	assert.True(t, stale)
}

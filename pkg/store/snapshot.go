package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/codegraph-dev/codegraph/pkg/cgerrors"
	"github.com/codegraph-dev/codegraph/pkg/graph"
)

// Snapshot is one point-in-time metrics record, appended to the
// snapshot log on every save per §4.G/Snapshot.
type Snapshot struct {
	Timestamp  time.Time `json:"timestamp"`
	CommitHash string    `json:"commitHash,omitempty"`
	Metrics    Metrics   `json:"metrics"`
}

// Metrics is the subset of graph-derived numbers a Snapshot tracks over
// time for trend/velocity/trajectory analysis (component N).
type Metrics struct {
	HealthScore   float64 `json:"healthScore"`
	AvgComplexity float64 `json:"avgComplexity"`
	HotspotCount  int     `json:"hotspotCount"`
	FileCount     int     `json:"fileCount"`
	TotalLines    int     `json:"totalLines"`
}

// appendSnapshot derives a Metrics record from g and appends it to the
// append-only snapshot log. Snapshots are immutable once written.
// HealthScore and HotspotCount are left zero here since they depend on
// the hotspot analyzer (component L), which runs after assembly;
// AppendSnapshotWithHealth lets a caller that has already run it
// record the complete record instead.
func (s *Store) appendSnapshot(g *graph.Graph) error {
	snap := Snapshot{
		Timestamp: g.Metadata.ScannedAt,
		Metrics:   deriveMetrics(g),
	}

	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	return s.writeSnapshotLine(snap)
}

// AppendSnapshotWithHealth appends a snapshot carrying the full metric
// set, including the hotspot-derived healthScore and hotspotCount a
// caller computed after assembly.
func (s *Store) AppendSnapshotWithHealth(g *graph.Graph, healthScore float64, hotspotCount int) error {
	metrics := deriveMetrics(g)
	metrics.HealthScore = healthScore
	metrics.HotspotCount = hotspotCount

	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	return s.writeSnapshotLine(Snapshot{Timestamp: g.Metadata.ScannedAt, Metrics: metrics})
}

// writeSnapshotLine appends one already-built Snapshot; callers must
// hold the store lock.
func (s *Store) writeSnapshotLine(snap Snapshot) error {
	path := filepath.Join(s.cacheDir, snapshotLogName)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open snapshot log: %v", cgerrors.ErrIo, err)
	}
	defer f.Close()

	line, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%w: marshal snapshot: %v", cgerrors.ErrIo, err)
	}

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("%w: append snapshot: %v", cgerrors.ErrIo, err)
	}

	return nil
}

// Snapshots returns the persisted snapshot sequence ordered
// newest-first, per §5's read ordering.
func (s *Store) Snapshots() ([]Snapshot, error) {
	path := filepath.Join(s.cacheDir, snapshotLogName)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("%w: open snapshot log: %v", cgerrors.ErrIo, err)
	}
	defer f.Close()

	var snaps []Snapshot

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		var snap Snapshot
		if err := json.Unmarshal(scanner.Bytes(), &snap); err != nil {
			continue
		}

		snaps = append(snaps, snap)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read snapshot log: %v", cgerrors.ErrIo, err)
	}

	for i, j := 0, len(snaps)-1; i < j; i, j = i+1, j-1 {
		snaps[i], snaps[j] = snaps[j], snaps[i]
	}

	return snaps, nil
}

// deriveMetrics computes the scalar metrics a Snapshot tracks from a
// freshly assembled graph.
func deriveMetrics(g *graph.Graph) Metrics {
	var (
		complexitySum   float64
		complexityCount int
	)

	for _, n := range g.Nodes {
		if n.HasComplexity {
			complexitySum += float64(n.Complexity)
			complexityCount++
		}
	}

	avgComplexity := 0.0
	if complexityCount > 0 {
		avgComplexity = complexitySum / float64(complexityCount)
	}

	return Metrics{
		AvgComplexity: avgComplexity,
		FileCount:     g.Metadata.FileCount,
		TotalLines:    g.Metadata.TotalLines,
	}
}

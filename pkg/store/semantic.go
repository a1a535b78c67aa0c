package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/codegraph-dev/codegraph/pkg/cgerrors"
	"github.com/codegraph-dev/codegraph/pkg/persist"
	"github.com/codegraph-dev/codegraph/pkg/semantic"
)

const (
	embeddingsDirName  = "embeddings"
	semanticMetaName   = "index"
	semanticVectorName = "vectors"
)

// vectorCodec gob-encodes the sparse vectors under a ".bin" extension,
// giving embeddings/vectors.bin.
type vectorCodec struct{ *persist.GobCodec }

func (vectorCodec) Extension() string { return ".bin" }

// semanticMeta is the JSON header written to embeddings/index.json:
// chunk metadata, document frequencies, and the time the index was
// built, staleness-checked independently of the graph file itself.
type semanticMeta struct {
	BuiltAt time.Time        `json:"builtAt"`
	Chunks  []semantic.Chunk `json:"chunks"`
	DocFreq map[string]int   `json:"docFreq"`
}

// SaveSemanticIndex persists idx to embeddings/index.json (chunk
// metadata) and embeddings/vectors.bin (gob-encoded sparse TF-IDF
// vectors), so a later search doesn't have to rebuild the index from
// the graph.
func (s *Store) SaveSemanticIndex(idx *semantic.Index) error {
	dir := filepath.Join(s.cacheDir, embeddingsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create embeddings dir: %v", cgerrors.ErrIo, err)
	}

	snap := idx.Snapshot()

	meta := semanticMeta{BuiltAt: time.Now(), Chunks: snap.Chunks, DocFreq: snap.DocFreq}

	if err := persist.SaveState(dir, semanticMetaName, persist.NewJSONCodec(), &meta); err != nil {
		return fmt.Errorf("%w: write embeddings index: %v", cgerrors.ErrIo, err)
	}

	if err := persist.SaveState(dir, semanticVectorName, vectorCodec{persist.NewGobCodec()}, &snap.Vectors); err != nil {
		return fmt.Errorf("%w: write embeddings vectors: %v", cgerrors.ErrIo, err)
	}

	return nil
}

// LoadSemanticIndex reconstructs a semantic.Index from the persisted
// embeddings files. Returns (nil, false, nil) when no index has been
// built yet.
func (s *Store) LoadSemanticIndex() (*semantic.Index, bool, error) {
	dir := filepath.Join(s.cacheDir, embeddingsDirName)

	meta, ok, err := s.loadSemanticMeta(dir)
	if err != nil || !ok {
		return nil, ok, err
	}

	var vectors []map[string]float64

	if err := persist.LoadState(dir, semanticVectorName, vectorCodec{persist.NewGobCodec()}, &vectors); err != nil {
		return nil, false, fmt.Errorf("%w: read embeddings vectors: %v", cgerrors.ErrIo, err)
	}

	idx := semantic.FromSnapshot(semantic.Snapshot{Chunks: meta.Chunks, DocFreq: meta.DocFreq, Vectors: vectors})

	return idx, true, nil
}

// IsSemanticIndexStale reports whether the persisted embeddings index
// predates scannedAt (the graph's last scan time), or is absent
// entirely. Checked independently of the main graph's own staleness so
// a caller can tell "index needs rebuilding" without forcing a rescan.
func (s *Store) IsSemanticIndexStale(scannedAt time.Time) (bool, error) {
	dir := filepath.Join(s.cacheDir, embeddingsDirName)

	meta, ok, err := s.loadSemanticMeta(dir)
	if err != nil {
		return false, err
	}

	if !ok {
		return true, nil
	}

	return meta.BuiltAt.Before(scannedAt), nil
}

func (s *Store) loadSemanticMeta(dir string) (semanticMeta, bool, error) {
	var meta semanticMeta

	err := persist.LoadState(dir, semanticMetaName, persist.NewJSONCodec(), &meta)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return semanticMeta{}, false, nil
		}

		return semanticMeta{}, false, fmt.Errorf("%w: read embeddings index: %v", cgerrors.ErrIo, err)
	}

	return meta, true, nil
}

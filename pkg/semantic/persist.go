package semantic

import "github.com/RoaringBitmap/roaring/v2"

// Snapshot is the serializable form of a built Index: chunk metadata,
// document frequencies, and the raw TF-IDF vectors. A store persists
// this independently of the graph so a rebuilt index survives without
// forcing a rescan, and reconstructing an Index from one skips
// re-tokenizing every file and symbol.
type Snapshot struct {
	Chunks  []Chunk
	DocFreq map[string]int
	Vectors []map[string]float64
}

// Snapshot captures idx's built state for persistence.
func (idx *Index) Snapshot() Snapshot {
	return Snapshot{Chunks: idx.chunks, DocFreq: idx.docFreq, Vectors: idx.vectors}
}

// FromSnapshot reconstructs a queryable Index from a previously
// persisted Snapshot. Posting lists are rebuilt from each chunk's
// tokens since they are cheap to recompute and persisting a
// roaring.Bitmap directly would tie the on-disk format to its wire
// encoding.
func FromSnapshot(snap Snapshot) *Index {
	idx := &Index{
		chunks:    snap.Chunks,
		positions: make(map[string]int, len(snap.Chunks)),
		postings:  make(map[string]*roaring.Bitmap),
		docFreq:   snap.DocFreq,
		vectors:   snap.Vectors,
	}

	for i, c := range snap.Chunks {
		idx.positions[c.ID] = i

		seen := make(map[string]bool, len(c.Tokens))

		for _, t := range c.Tokens {
			if seen[t] {
				continue
			}

			seen[t] = true

			if idx.postings[t] == nil {
				idx.postings[t] = roaring.New()
			}

			idx.postings[t].Add(uint32(i))
		}
	}

	return idx
}

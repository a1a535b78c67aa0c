// Package semantic implements component M: a TF-IDF chunk index over
// the knowledge graph's files and symbols, with keyword, semantic
// (vector cosine), and hybrid search modes.
package semantic

import (
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/codegraph-dev/codegraph/pkg/graph"
)

// Chunk is one indexed unit: a file, or a symbol within one.
type Chunk struct {
	ID       string
	File     string
	Symbol   string
	Exported bool
	Text     string
	Tokens   []string
}

// synonyms is a small static expansion map from canonical term to a
// set of alternatives a query may use instead.
var synonyms = map[string][]string{
	"delete":  {"remove", "destroy"},
	"remove":  {"delete", "destroy"},
	"create":  {"new", "make", "add"},
	"fetch":   {"get", "retrieve", "load"},
	"get":     {"fetch", "retrieve", "load"},
	"update":  {"modify", "change", "set"},
	"error":   {"err", "failure", "exception"},
	"config":  {"configuration", "settings"},
	"connect": {"dial", "open"},
}

// Index is a built, queryable TF-IDF index over a graph's chunks.
type Index struct {
	chunks    []Chunk
	positions map[string]int // chunk id -> index into chunks/vectors
	vectors   []map[string]float64
	postings  map[string]*roaring.Bitmap
	docFreq   map[string]int
}

// Build tokenizes every file and symbol node in g into a chunk and
// computes its TF-IDF vector. A symbol's text combines its name,
// documentation, and a short neighborhood: its file path and, for
// functions, parameter names.
func Build(g *graph.Graph) *Index {
	var chunks []Chunk

	byFile := make(map[string][]graph.Node)

	for _, n := range g.Nodes {
		byFile[n.FilePath] = append(byFile[n.FilePath], n)
	}

	for _, n := range g.Nodes {
		if n.Type == graph.NodeFile {
			chunks = append(chunks, Chunk{
				ID:   n.ID,
				File: n.FilePath,
				Text: n.FilePath + " " + n.Name,
			})

			continue
		}

		text := n.Name + " " + n.Documentation + " " + n.FilePath
		for _, p := range n.Parameters {
			text += " " + p
		}

		chunks = append(chunks, Chunk{
			ID:       n.ID,
			File:     n.FilePath,
			Symbol:   n.Name,
			Exported: n.Exported,
			Text:     text,
		})
	}

	idx := &Index{
		positions: make(map[string]int, len(chunks)),
		postings:  make(map[string]*roaring.Bitmap),
		docFreq:   make(map[string]int),
	}

	for i := range chunks {
		chunks[i].Tokens = tokenize(chunks[i].Text)
		idx.positions[chunks[i].ID] = i
	}

	idx.chunks = chunks

	for i, c := range chunks {
		seen := make(map[string]bool, len(c.Tokens))
		for _, t := range c.Tokens {
			if seen[t] {
				continue
			}

			seen[t] = true
			idx.docFreq[t]++

			if idx.postings[t] == nil {
				idx.postings[t] = roaring.New()
			}

			idx.postings[t].Add(uint32(i))
		}
	}

	n := len(chunks)
	idx.vectors = make([]map[string]float64, n)

	for i, c := range chunks {
		tf := make(map[string]int)
		for _, t := range c.Tokens {
			tf[t]++
		}

		vec := make(map[string]float64, len(tf))

		for t, count := range tf {
			idfVal := math.Log(float64(n+1)/float64(idx.docFreq[t]+1)) + 1
			vec[t] = float64(count) * idfVal
		}

		idx.vectors[i] = vec
	}

	return idx
}

// Mode selects a search strategy.
type Mode string

const (
	ModeKeyword  Mode = "keyword"
	ModeSemantic Mode = "semantic"
	ModeHybrid   Mode = "hybrid"
)

// Result is one ranked chunk match.
type Result struct {
	ChunkID   string  `json:"chunkId"`
	File      string  `json:"file"`
	Symbol    string  `json:"symbol,omitempty"`
	Relevance float64 `json:"relevance"`
	Context   string  `json:"context"`
	Reason    string  `json:"reason"`
}

// Search runs query against the index in the given mode and returns
// the top results ordered by descending relevance (0-100).
func (idx *Index) Search(query string, mode Mode, topN int) []Result {
	switch mode {
	case ModeKeyword:
		return topResults(idx.keywordSearch(query), topN)
	case ModeSemantic:
		return topResults(idx.semanticSearch(query), topN)
	default:
		return topResults(idx.hybridSearch(query), topN)
	}
}

func topResults(results []Result, topN int) []Result {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Relevance != results[j].Relevance {
			return results[i].Relevance > results[j].Relevance
		}

		return results[i].ChunkID < results[j].ChunkID
	})

	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}

	return results
}

// keywordSearch scores chunks on lexical match against name/path:
// exact name match scores highest, prefix match next, substring match
// lowest, with an additive boost for exported symbols.
func (idx *Index) keywordSearch(query string) []Result {
	q := tokenize(query)
	if len(q) == 0 {
		return nil
	}

	var results []Result

	for _, c := range idx.chunks {
		var score float64

		for _, qt := range q {
			target := c.Symbol
			if target == "" {
				target = c.File
			}

			lowerTarget := lowerASCII(target)

			switch {
			case lowerTarget == qt:
				score += 40
			case hasPrefixFold(lowerTarget, qt):
				score += 25
			case containsToken(c.Tokens, qt):
				score += 15
			}
		}

		if score == 0 {
			continue
		}

		if c.Exported {
			score += 10
		}

		score /= float64(len(q))
		if score > 100 {
			score = 100
		}

		results = append(results, Result{
			ChunkID:   c.ID,
			File:      c.File,
			Symbol:    c.Symbol,
			Relevance: score,
			Context:   context(c),
			Reason:    "keyword match on name/path",
		})
	}

	return results
}

// semanticSearch ranks chunks by cosine similarity between the query's
// TF-IDF vector (synonym-expanded) and each chunk's vector. The
// candidate set is narrowed up front to chunks that share at least one
// query term, via a union of the term posting lists, so cosine is only
// computed against chunks that can possibly score above zero.
func (idx *Index) semanticSearch(query string) []Result {
	terms := expandSynonyms(tokenize(query))
	if len(terms) == 0 {
		return nil
	}

	queryVec := make(map[string]float64)

	n := len(idx.chunks)
	for _, t := range terms {
		idfVal := math.Log(float64(n+1)/float64(idx.docFreq[t]+1)) + 1
		queryVec[t] += idfVal
	}

	candidates := roaring.New()

	for _, t := range terms {
		if bm, ok := idx.postings[t]; ok {
			candidates.Or(bm)
		}
	}

	var results []Result

	it := candidates.Iterator()
	for it.HasNext() {
		i := int(it.Next())
		c := idx.chunks[i]

		sim := cosine(queryVec, idx.vectors[i])
		if sim <= 0 {
			continue
		}

		results = append(results, Result{
			ChunkID:   c.ID,
			File:      c.File,
			Symbol:    c.Symbol,
			Relevance: sim * 100,
			Context:   context(c),
			Reason:    "semantic vector match",
		})
	}

	return results
}

// hybridSearch unions keyword and semantic results, boosting any chunk
// retrieved by both by +10.
func (idx *Index) hybridSearch(query string) []Result {
	keyword := idx.keywordSearch(query)
	semantic := idx.semanticSearch(query)

	byID := make(map[string]*Result, len(keyword)+len(semantic))

	for i := range keyword {
		r := keyword[i]
		byID[r.ChunkID] = &r
	}

	for i := range semantic {
		r := semantic[i]

		if existing, ok := byID[r.ChunkID]; ok {
			combined := existing.Relevance + r.Relevance + 10
			if combined > 100 {
				combined = 100
			}

			existing.Relevance = combined
			existing.Reason = "keyword + semantic match"

			continue
		}

		byID[r.ChunkID] = &r
	}

	results := make([]Result, 0, len(byID))
	for _, r := range byID {
		results = append(results, *r)
	}

	return results
}

func expandSynonyms(terms []string) []string {
	expanded := append([]string(nil), terms...)

	for _, t := range terms {
		expanded = append(expanded, synonyms[t]...)
	}

	return expanded
}

func cosine(a, b map[string]float64) float64 {
	var dot, normA, normB float64

	for t, va := range a {
		normA += va * va

		if vb, ok := b[t]; ok {
			dot += va * vb
		}
	}

	for _, vb := range b {
		normB += vb * vb
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func context(c Chunk) string {
	if c.Symbol != "" {
		return c.File + ": " + c.Symbol
	}

	return c.File
}

func containsToken(tokens []string, t string) bool {
	for _, tok := range tokens {
		if tok == t {
			return true
		}
	}

	return false
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}

	return string(b)
}

func hasPrefixFold(s, prefix string) bool {
	if len(prefix) > len(s) {
		return false
	}

	return s[:len(prefix)] == prefix
}

// Package coupling implements component I: mining change-coupling
// (statistical co-change) strength between files from git commit
// history, and surfacing hidden dependencies it reveals.
package coupling

import (
	"sort"

	"github.com/codegraph-dev/codegraph/pkg/graph"
)

// Options configures a coupling query.
type Options struct {
	// MinStrength discards pairs below this Jaccard strength. Defaults
	// to 0.3 when zero.
	MinStrength float64
	// MinSharedCommits discards pairs that co-occur in fewer commits
	// than this, to filter spurious single-commit pairings. Defaults
	// to 2 when zero.
	MinSharedCommits int
	// MaxResults caps the number of coupled files returned, 0 = no cap.
	MaxResults int
}

// Pair is one other file's coupling to the query target.
type Pair struct {
	File                  string  `json:"file"`
	Strength              float64 `json:"strength"`
	SharedCommits         int     `json:"sharedCommits"`
	HasImportRelationship bool    `json:"hasImportRelationship"`
	Hidden                bool    `json:"hidden"`
}

// Result is the full coupling query output for one target file.
type Result struct {
	Target  string `json:"target"`
	Coupled []Pair `json:"coupled"`
	Hidden  []Pair `json:"hidden"`
}

// CommitFileSet is the minimal shape coupling mining needs from a
// commit; pkg/vcs.CommitFileSet satisfies it structurally.
type CommitFileSet struct {
	Hash  string
	Files []string
}

const hiddenThreshold = 0.5

// Coupling computes coupling strength between target and every other
// file that shares at least one commit with it, per §4.I's Jaccard
// formula over commit file-sets.
func Coupling(target string, commits []CommitFileSet, idx *graph.Index, opts Options) Result {
	minStrength := opts.MinStrength
	if minStrength == 0 {
		minStrength = 0.3
	}

	minShared := opts.MinSharedCommits
	if minShared == 0 {
		minShared = 2
	}

	targetCommits := make(map[string]bool)
	otherCommits := make(map[string]map[string]bool) // file -> set of commit hashes
	shared := make(map[string]int)

	for _, c := range commits {
		var hasTarget bool

		for _, f := range c.Files {
			if f == target {
				hasTarget = true
				break
			}
		}

		if hasTarget {
			targetCommits[c.Hash] = true
		}

		for _, f := range c.Files {
			if f == target {
				continue
			}

			if otherCommits[f] == nil {
				otherCommits[f] = make(map[string]bool)
			}

			otherCommits[f][c.Hash] = true

			if hasTarget {
				shared[f]++
			}
		}
	}

	var coupled []Pair

	for file, commitSet := range otherCommits {
		sharedCount := shared[file]
		if sharedCount < minShared {
			continue
		}

		union := len(targetCommits)
		for h := range commitSet {
			if !targetCommits[h] {
				union++
			}
		}

		if union == 0 {
			continue
		}

		strength := float64(sharedCount) / float64(union)
		if strength < minStrength {
			continue
		}

		hasImport := idx.HasImportRelationship(target, file)

		coupled = append(coupled, Pair{
			File:                  file,
			Strength:              strength,
			SharedCommits:         sharedCount,
			HasImportRelationship: hasImport,
			Hidden:                strength >= hiddenThreshold && !hasImport,
		})
	}

	sort.Slice(coupled, func(i, j int) bool {
		if coupled[i].Strength != coupled[j].Strength {
			return coupled[i].Strength > coupled[j].Strength
		}

		return coupled[i].File < coupled[j].File
	})

	if opts.MaxResults > 0 && len(coupled) > opts.MaxResults {
		coupled = coupled[:opts.MaxResults]
	}

	var hidden []Pair

	for _, p := range coupled {
		if p.Hidden {
			hidden = append(hidden, p)
		}
	}

	return Result{Target: target, Coupled: coupled, Hidden: hidden}
}

// Package busfactor implements component K: per-file and project-wide
// knowledge-ownership analysis derived from git authorship.
package busfactor

import (
	"sort"
	"strings"

	"github.com/codegraph-dev/codegraph/pkg/graph"
)

// Level bands the overall bus-factor score.
type Level string

const (
	LevelCritical   Level = "critical"
	LevelDangerous  Level = "dangerous"
	LevelConcerning Level = "concerning"
	LevelHealthy    Level = "healthy"
)

// significantShare is the contributor-share threshold counted toward a
// file's bus factor.
const significantShare = 0.20

// CommitFileSet is the minimal per-commit shape this package needs;
// pkg/vcs.CommitFileSet satisfies it field-for-field.
type CommitFileSet struct {
	Hash   string
	Author string
	Files  []string
}

// FileOwnership is one file's contributor distribution and derived
// bus factor.
type FileOwnership struct {
	File           string  `json:"file"`
	BusFactor      int     `json:"busFactor"`
	TopContributor string  `json:"topContributor"`
	TopShare       float64 `json:"topShare"`
}

// OwnerStat is one contributor's aggregate standing across the project.
type OwnerStat struct {
	Author      string `json:"author"`
	CommitCount int     `json:"commitCount"`
}

// Result is the full project-wide ownership analysis.
type Result struct {
	Files            []FileOwnership `json:"files"`
	SoloOwned        []string        `json:"soloOwned"`
	LinesAtRisk       int            `json:"linesAtRisk"`
	TopOwners        []OwnerStat     `json:"topOwners"`
	RiskAreas        []string        `json:"riskAreas"`
	OverallBusFactor float64         `json:"overallBusFactor"`
	Level            Level           `json:"level"`
}

// Analyze computes ownership distribution across every file touched by
// commits, and a weighted overall bus-factor over the files judged
// significant by churn.
func Analyze(g *graph.Graph, commits []CommitFileSet) Result {
	counts := make(map[string]map[string]int) // file -> author -> count
	authorTotals := make(map[string]int)

	for _, c := range commits {
		if c.Author == "" {
			continue
		}

		authorTotals[c.Author]++

		for _, f := range c.Files {
			if counts[f] == nil {
				counts[f] = make(map[string]int)
			}

			counts[f][c.Author]++
		}
	}

	lineCounts := make(map[string]int)
	modCounts := make(map[string]int)

	for _, n := range g.Nodes {
		if n.Type == graph.NodeFile {
			lineCounts[n.FilePath] = n.LineCount
			modCounts[n.FilePath] = n.ModificationCount
		}
	}

	var files []FileOwnership

	soloSeen := make(map[string]bool)

	for file, byAuthor := range counts {
		fo := ownership(file, byAuthor)
		files = append(files, fo)

		if fo.BusFactor <= 1 {
			soloSeen[file] = true
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].File < files[j].File })

	var soloOwned []string

	linesAtRisk := 0

	for file := range soloSeen {
		soloOwned = append(soloOwned, file)
		linesAtRisk += lineCounts[file]
	}

	sort.Strings(soloOwned)

	overall, level := overallBusFactor(files, modCounts)

	return Result{
		Files:            files,
		SoloOwned:        soloOwned,
		LinesAtRisk:      linesAtRisk,
		TopOwners:        topOwners(authorTotals),
		RiskAreas:        riskAreas(files),
		OverallBusFactor: overall,
		Level:            level,
	}
}

// ownership derives one file's bus factor: the number of contributors
// with a >= 20% commit share, floored at 1.
func ownership(file string, byAuthor map[string]int) FileOwnership {
	total := 0
	for _, n := range byAuthor {
		total += n
	}

	if total == 0 {
		return FileOwnership{File: file, BusFactor: 1}
	}

	significant := 0

	topAuthor := ""
	topCount := -1

	for author, n := range byAuthor {
		share := float64(n) / float64(total)
		if share >= significantShare {
			significant++
		}

		if n > topCount || (n == topCount && author < topAuthor) {
			topAuthor = author
			topCount = n
		}
	}

	if significant < 1 {
		significant = 1
	}

	return FileOwnership{
		File:           file,
		BusFactor:      significant,
		TopContributor: topAuthor,
		TopShare:       float64(topCount) / float64(total),
	}
}

// overallBusFactor weights each significant file's bus factor by its
// modification count (churn), restricting to files whose churn is at
// or above the project median — the "top churn/complexity band" §4.K
// describes as the significance criterion.
func overallBusFactor(files []FileOwnership, modCounts map[string]int) (float64, Level) {
	if len(files) == 0 {
		return 0, LevelHealthy
	}

	mods := make([]int, 0, len(files))
	for _, f := range files {
		mods = append(mods, modCounts[f.File])
	}

	sort.Ints(mods)

	median := mods[len(mods)/2]

	var weightedSum, weightTotal float64

	for _, f := range files {
		m := modCounts[f.File]
		if m < median {
			continue
		}

		weight := float64(m)
		if weight == 0 {
			weight = 1
		}

		weightedSum += float64(f.BusFactor) * weight
		weightTotal += weight
	}

	if weightTotal == 0 {
		// No file met the significance bar; fall back to the plain mean.
		sum := 0
		for _, f := range files {
			sum += f.BusFactor
		}

		return float64(sum) / float64(len(files)), levelFor(float64(sum) / float64(len(files)))
	}

	overall := weightedSum / weightTotal

	return overall, levelFor(overall)
}

func levelFor(score float64) Level {
	switch {
	case score < 1.5:
		return LevelCritical
	case score < 2:
		return LevelDangerous
	case score < 3:
		return LevelConcerning
	default:
		return LevelHealthy
	}
}

func topOwners(totals map[string]int) []OwnerStat {
	stats := make([]OwnerStat, 0, len(totals))

	for author, count := range totals {
		stats = append(stats, OwnerStat{Author: author, CommitCount: count})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].CommitCount != stats[j].CommitCount {
			return stats[i].CommitCount > stats[j].CommitCount
		}

		return stats[i].Author < stats[j].Author
	})

	return stats
}

// riskAreas returns directories whose average bus factor falls below
// the "concerning" threshold.
func riskAreas(files []FileOwnership) []string {
	dirSums := make(map[string]int)
	dirCounts := make(map[string]int)

	for _, f := range files {
		dir := dirOf(f.File)
		dirSums[dir] += f.BusFactor
		dirCounts[dir]++
	}

	var areas []string

	for dir, count := range dirCounts {
		avg := float64(dirSums[dir]) / float64(count)
		if avg < 3 {
			areas = append(areas, dir)
		}
	}

	sort.Strings(areas)

	return areas
}

func dirOf(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "."
	}

	return path[:idx]
}

// Package impact implements component J: the weighted multi-factor
// impact/risk scorer for a single target file.
package impact

import (
	"sort"

	"github.com/codegraph-dev/codegraph/pkg/coupling"
	"github.com/codegraph-dev/codegraph/pkg/graph"
)

// Level bands the composite risk score.
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// Result is the full §4.J scoring output for one target file.
type Result struct {
	Target            string   `json:"target"`
	DirectDependents   int      `json:"directDependents"`
	IndirectDependents int      `json:"indirectDependents"`
	HiddenDependencies int      `json:"hiddenDependencies"`
	MaxComplexity      int      `json:"maxComplexity"`
	ModificationCount  int      `json:"modificationCount"`
	ContributorCount   int      `json:"contributorCount"`
	DependencyScore    float64  `json:"dependencyScore"`
	CouplingScore      float64  `json:"couplingScore"`
	ComplexityScore    float64  `json:"complexityScore"`
	ChurnScore         float64  `json:"churnScore"`
	Risk               float64  `json:"risk"`
	Level              Level    `json:"level"`
	Recommendations    []string `json:"recommendations"`
}

// Score computes the impact/risk record for target. commits feeds the
// change-coupling sub-computation; pass nil to skip it (coupling and
// hidden counts are then zero).
func Score(g *graph.Graph, idx *graph.Index, target string, commits []coupling.CommitFileSet) Result {
	direct, indirect := dependents(idx, target)

	var coupledCount, hiddenCount int

	if commits != nil {
		cr := coupling.Coupling(target, commits, idx, coupling.Options{})
		coupledCount = len(cr.Coupled)
		hiddenCount = len(cr.Hidden)
	}

	maxComplexity, _ := idx.MaxComplexity(target)

	mods, contribs := churnInputs(g, target)

	depScore := dependencyScore(len(direct), len(indirect))
	coupScore := couplingScore(coupledCount, hiddenCount)
	compScore := complexityScore(maxComplexity)
	chScore := churnScore(mods, contribs)

	risk := 0.35*depScore + 0.25*coupScore + 0.25*compScore + 0.15*chScore

	return Result{
		Target:             target,
		DirectDependents:   len(direct),
		IndirectDependents: len(indirect),
		HiddenDependencies: hiddenCount,
		MaxComplexity:      maxComplexity,
		ModificationCount:  mods,
		ContributorCount:   contribs,
		DependencyScore:    depScore,
		CouplingScore:      coupScore,
		ComplexityScore:    compScore,
		ChurnScore:         chScore,
		Risk:               risk,
		Level:              levelFor(risk),
		Recommendations:    recommendations(depScore, coupScore, compScore, chScore, hiddenCount),
	}
}

// dependents returns the direct dependents (files with an imports edge
// into target) and indirect dependents (their dependents, up to depth
// 2 total, excluding target).
func dependents(idx *graph.Index, target string) (direct, indirect []string) {
	targetNode, ok := idx.FileNode(target)
	if !ok {
		return nil, nil
	}

	visited := map[string]bool{target: true}

	directSet := map[string]bool{}

	for _, e := range idx.ImportedBy(targetNode.ID) {
		srcNode, ok := idx.Node(e.Source)
		if !ok || visited[srcNode.FilePath] {
			continue
		}

		directSet[srcNode.FilePath] = true
		visited[srcNode.FilePath] = true
		direct = append(direct, srcNode.FilePath)
	}

	indirectSet := map[string]bool{}

	for path := range directSet {
		node, ok := idx.FileNode(path)
		if !ok {
			continue
		}

		for _, e := range idx.ImportedBy(node.ID) {
			srcNode, ok := idx.Node(e.Source)
			if !ok || visited[srcNode.FilePath] {
				continue
			}

			indirectSet[srcNode.FilePath] = true
			visited[srcNode.FilePath] = true
		}
	}

	for path := range indirectSet {
		indirect = append(indirect, path)
	}

	sort.Strings(direct)
	sort.Strings(indirect)

	return direct, indirect
}

func churnInputs(g *graph.Graph, target string) (mods, contribs int) {
	for _, n := range g.Nodes {
		if n.Type == graph.NodeFile && n.FilePath == target {
			return n.ModificationCount, len(n.Contributors)
		}
	}

	return 0, 0
}

// dependencyScore maps direct-dependent count to a 0-100 band,
// weighting indirect dependents at 0.3 per §4.J's table.
func dependencyScore(direct, indirect int) float64 {
	base := bandedScore(direct)
	weighted := base + float64(indirect)*0.3

	if weighted > 100 {
		return 100
	}

	return weighted
}

func bandedScore(n int) float64 {
	switch {
	case n == 0:
		return 0
	case n <= 2:
		return 20
	case n <= 5:
		return 40
	case n <= 10:
		return 60
	case n <= 20:
		return 80
	default:
		return 100
	}
}

func couplingScore(coupled, hidden int) float64 {
	a := float64(coupled) * 10
	if a > 50 {
		a = 50
	}

	b := float64(hidden) * 20
	if b > 50 {
		b = 50
	}

	return a + b
}

// complexityScore implements §4.J's piecewise complexity mapping:
// linear to 20 up to c=5, +4/unit to c=10, +6/unit to c=15, +3/unit
// thereafter, capped at 100.
func complexityScore(c int) float64 {
	switch {
	case c <= 0:
		return 0
	case c <= 5:
		return float64(c) * (20.0 / 5.0)
	case c <= 10:
		return 20 + float64(c-5)*4
	case c <= 15:
		return 40 + float64(c-10)*6
	default:
		score := 70 + float64(c-15)*3
		if score > 100 {
			return 100
		}

		return score
	}
}

func churnScore(mods, contribs int) float64 {
	m := float64(mods) / 50
	if m > 1 {
		m = 1
	}

	c := float64(contribs) / 5
	if c > 1 {
		c = 1
	}

	return m*50 + c*50
}

func levelFor(risk float64) Level {
	switch {
	case risk < 25:
		return LevelLow
	case risk < 50:
		return LevelMedium
	case risk < 75:
		return LevelHigh
	default:
		return LevelCritical
	}
}

func recommendations(dep, couplingScore, complexity, churn float64, hidden int) []string {
	var recs []string

	if dep >= 60 {
		recs = append(recs, "high fan-in: changes here ripple widely, add integration coverage before editing")
	}

	if couplingScore >= 50 {
		recs = append(recs, "heavily coupled to other files by change history: coordinate edits across the coupled set")
	}

	if hidden > 0 {
		recs = append(recs, "hidden dependencies detected: files change together with no import link, verify behavior is actually decoupled")
	}

	if complexity >= 70 {
		recs = append(recs, "complexity is in the high band: consider extracting smaller functions before adding more branches")
	}

	if churn >= 70 {
		recs = append(recs, "high churn: frequent changes by many contributors, confirm ownership and review process")
	}

	return recs
}

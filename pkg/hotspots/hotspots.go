// Package hotspots implements component L: ranking files by the
// harmonic mean of normalized complexity and churn, and placing them
// into quadrants for a scatter-style view.
package hotspots

import (
	"sort"

	"github.com/codegraph-dev/codegraph/pkg/graph"
)

// Quadrant classifies a file's complexity/churn position.
type Quadrant string

const (
	QuadrantHealthy Quadrant = "healthy"
	QuadrantActive  Quadrant = "active"
	QuadrantLegacy  Quadrant = "legacy"
	QuadrantDanger  Quadrant = "danger"
)

// Point is one file's position in the normalized complexity/churn
// scatter, sufficient to reproduce a plot.
type Point struct {
	File             string   `json:"file"`
	Complexity       float64  `json:"complexity"`
	Churn            float64  `json:"churn"`
	Score            float64  `json:"score"`
	Quadrant         Quadrant `json:"quadrant"`
	RawComplexity    int      `json:"rawComplexity"`
	RawModifications int      `json:"rawModifications"`
}

// Result is the full hotspot analysis: every scored file plus the top
// N ranked by score.
type Result struct {
	Points []Point `json:"points"`
	Top    []Point `json:"top"`
}

// Analyze scores every file node, including files with zero complexity
// and zero modifications, normalizing each dimension to [0,1] across
// the project before scoring.
func Analyze(g *graph.Graph, topN int) Result {
	type raw struct {
		file       string
		complexity int
		mods       int
	}

	var rows []raw

	maxComplexity, maxMods := 0, 0

	for _, n := range g.Nodes {
		if n.Type != graph.NodeFile {
			continue
		}

		rows = append(rows, raw{file: n.FilePath, complexity: n.Complexity, mods: n.ModificationCount})

		if n.Complexity > maxComplexity {
			maxComplexity = n.Complexity
		}

		if n.ModificationCount > maxMods {
			maxMods = n.ModificationCount
		}
	}

	points := make([]Point, 0, len(rows))

	for _, r := range rows {
		c := normalize(r.complexity, maxComplexity)
		h := normalize(r.mods, maxMods)

		points = append(points, Point{
			File:             r.file,
			Complexity:       c,
			Churn:            h,
			Score:            harmonicMean(c, h),
			RawComplexity:    r.complexity,
			RawModifications: r.mods,
		})
	}

	medianComplexity, medianChurn := medians(points)

	for i := range points {
		points[i].Quadrant = quadrantFor(points[i], medianComplexity, medianChurn)
	}

	sort.Slice(points, func(i, j int) bool { return points[i].File < points[j].File })

	top := append([]Point(nil), points...)
	sort.Slice(top, func(i, j int) bool {
		if top[i].Score != top[j].Score {
			return top[i].Score > top[j].Score
		}

		return top[i].File < top[j].File
	})

	if topN > 0 && len(top) > topN {
		top = top[:topN]
	}

	return Result{Points: points, Top: top}
}

func normalize(v, max int) float64 {
	if max == 0 {
		return 0
	}

	return float64(v) / float64(max)
}

// harmonicMean implements §4.L's 2·c·h/(c+h) score; returns 0 when
// both dimensions are zero to avoid a division by zero.
func harmonicMean(c, h float64) float64 {
	if c+h == 0 {
		return 0
	}

	return 2 * c * h / (c + h)
}

func medians(points []Point) (complexity, churn float64) {
	if len(points) == 0 {
		return 0, 0
	}

	cs := make([]float64, len(points))
	hs := make([]float64, len(points))

	for i, p := range points {
		cs[i] = p.Complexity
		hs[i] = p.Churn
	}

	sort.Float64s(cs)
	sort.Float64s(hs)

	return cs[len(cs)/2], hs[len(hs)/2]
}

func quadrantFor(p Point, medianComplexity, medianChurn float64) Quadrant {
	highComplexity := p.Complexity >= medianComplexity
	highChurn := p.Churn >= medianChurn

	switch {
	case highComplexity && highChurn:
		return QuadrantDanger
	case highComplexity:
		return QuadrantLegacy
	case highChurn:
		return QuadrantActive
	default:
		return QuadrantHealthy
	}
}

// HealthScore condenses a Result into the single 0-100 figure the
// scan command persists into each snapshot and the health query
// reports: 100 minus the mean hotspot score expressed as a
// percentage, so a project with no complex/churning files scores 100
// and one where every file has the project's maximum complexity and
// churn scores 0.
func HealthScore(result Result) float64 {
	if len(result.Points) == 0 {
		return 100
	}

	var sum float64

	for _, p := range result.Points {
		sum += p.Score
	}

	return 100 * (1 - sum/float64(len(result.Points)))
}

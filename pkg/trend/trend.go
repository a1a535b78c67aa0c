// Package trend implements component N: snapshot diffing and
// linear-regression projection over the persisted snapshot sequence.
package trend

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/codegraph-dev/codegraph/pkg/graph"
	"github.com/codegraph-dev/codegraph/pkg/store"
)

// Window bounds how far back a trend/velocity query looks.
type Window string

const (
	WindowDay   Window = "day"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowAll   Window = "all"
)

// Direction summarizes the sign of a regression slope.
type Direction string

const (
	DirectionImproving Direction = "improving"
	DirectionStable    Direction = "stable"
	DirectionDeclining Direction = "declining"
)

// stableSlope is the magnitude below which a slope is reported as
// "stable" rather than improving/declining noise.
const stableSlope = 0.01

// Stats holds linear-regression statistics over a series of (index,
// value) points, mirroring the teacher's TrendStats shape.
type Stats struct {
	Slope       float64 `json:"slope"`
	Intercept   float64 `json:"intercept"`
	RSquared    float64 `json:"rSquared"`
	Correlation float64 `json:"correlation"`
}

// computeStats runs an unweighted linear regression over ys against
// an implicit 0..n-1 x-axis. Returns the zero Stats when fewer than
// two points are given.
func computeStats(ys []float64) Stats {
	n := len(ys)
	if n < 2 {
		return Stats{}
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)

	return Stats{
		Slope:       slope,
		Intercept:   intercept,
		RSquared:    stat.RSquared(xs, ys, nil, intercept, slope),
		Correlation: stat.Correlation(xs, ys, nil),
	}
}

// TrendResult is §4.N's Trend output: direction and percent change in
// healthScore over the window.
type TrendResult struct {
	Window        Window    `json:"window"`
	Points        int       `json:"points"`
	Stats         Stats     `json:"stats"`
	Direction     Direction `json:"direction"`
	ChangePercent float64   `json:"changePercent"`
	Insufficient  bool      `json:"insufficientData"`
}

// Trend computes the health-score trend over window, given a snapshot
// sequence ordered newest-first (as pkg/store.Snapshots returns it).
func Trend(snapshots []store.Snapshot, window Window, now time.Time) TrendResult {
	windowed := filterWindow(snapshots, window, now)

	ys := make([]float64, len(windowed))
	for i, s := range windowed {
		// windowed is newest-first; regress oldest-first so the slope
		// sign reflects forward-in-time change.
		ys[len(windowed)-1-i] = s.Metrics.HealthScore
	}

	if len(ys) < 2 {
		return TrendResult{Window: window, Points: len(ys), Insufficient: true}
	}

	s := computeStats(ys)

	var changePercent float64
	if first := ys[0]; first != 0 {
		changePercent = (ys[len(ys)-1] - first) / math.Abs(first) * 100
	}

	return TrendResult{
		Window:        window,
		Points:        len(ys),
		Stats:         s,
		Direction:     directionFor(s.Slope),
		ChangePercent: changePercent,
	}
}

func directionFor(slope float64) Direction {
	switch {
	case slope > stableSlope:
		return DirectionImproving
	case slope < -stableSlope:
		return DirectionDeclining
	default:
		return DirectionStable
	}
}

// VelocityResult is §4.N's Velocity output: regression over recent
// complexity and hotspot counts.
type VelocityResult struct {
	Complexity Stats `json:"complexity"`
	Hotspots   Stats `json:"hotspots"`
}

// Velocity regresses average complexity and hotspot count over the
// given snapshot window.
func Velocity(snapshots []store.Snapshot, window Window, now time.Time) VelocityResult {
	windowed := filterWindow(snapshots, window, now)

	complexity := make([]float64, len(windowed))
	hotspots := make([]float64, len(windowed))

	for i, s := range windowed {
		j := len(windowed) - 1 - i
		complexity[j] = s.Metrics.AvgComplexity
		hotspots[j] = float64(s.Metrics.HotspotCount)
	}

	return VelocityResult{
		Complexity: computeStats(complexity),
		Hotspots:   computeStats(hotspots),
	}
}

// FileDelta is one file's complexity change between two assembled
// graphs, used to surface the fastest-growing/improving files.
type FileDelta struct {
	File               string `json:"file"`
	PreviousComplexity int    `json:"previousComplexity"`
	CurrentComplexity  int    `json:"currentComplexity"`
	Delta              int    `json:"delta"`
}

// FileComplexityDeltas compares each file's max complexity between
// previous and current, returning only files present in both with a
// nonzero change.
func FileComplexityDeltas(previous, current *graph.Graph) []FileDelta {
	prevIdx := graph.NewIndex(previous)
	currIdx := graph.NewIndex(current)

	var deltas []FileDelta

	for _, n := range current.Nodes {
		if n.Type != graph.NodeFile {
			continue
		}

		currComplexity, ok := currIdx.MaxComplexity(n.FilePath)
		if !ok {
			continue
		}

		if _, ok := prevIdx.FileNode(n.FilePath); !ok {
			continue
		}

		prevComplexity, _ := prevIdx.MaxComplexity(n.FilePath)

		if currComplexity == prevComplexity {
			continue
		}

		deltas = append(deltas, FileDelta{
			File:               n.FilePath,
			PreviousComplexity: prevComplexity,
			CurrentComplexity:  currComplexity,
			Delta:              currComplexity - prevComplexity,
		})
	}

	return deltas
}

// Trajectory is §4.N's forward-projection output.
type Trajectory struct {
	HorizonDays  int     `json:"horizonDays"`
	Projected    float64 `json:"projected"`
	LowerBound   float64 `json:"lowerBound"`
	UpperBound   float64 `json:"upperBound"`
	Insufficient bool    `json:"insufficientData"`
}

// Project forecasts healthScore horizonDays ahead using the regression
// fit over snapshots, with a confidence band derived from residual
// variance (+/- 1.96 standard deviations, a ~95% band under a normal
// residual assumption).
func Project(snapshots []store.Snapshot, window Window, now time.Time, horizonDays int) Trajectory {
	windowed := filterWindow(snapshots, window, now)

	ys := make([]float64, len(windowed))
	for i, s := range windowed {
		ys[len(windowed)-1-i] = s.Metrics.HealthScore
	}

	if len(ys) < 2 {
		return Trajectory{HorizonDays: horizonDays, Insufficient: true}
	}

	// x is days since the oldest windowed snapshot, so horizonDays
	// extends the fitted line in the same unit.
	oldest := windowed[len(windowed)-1].Timestamp

	xs := make([]float64, len(ys))
	for i := range xs {
		xs[i] = windowed[len(windowed)-1-i].Timestamp.Sub(oldest).Hours() / 24
	}

	if xs[len(xs)-1] == 0 {
		return Trajectory{HorizonDays: horizonDays, Insufficient: true}
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)

	residuals := make([]float64, len(ys))
	for i, y := range ys {
		residuals[i] = y - (intercept + slope*xs[i])
	}

	variance := stat.Variance(residuals, nil)
	stdDev := math.Sqrt(variance)

	futureX := xs[len(xs)-1] + float64(horizonDays)
	projected := intercept + slope*futureX

	const confidenceZ = 1.96

	return Trajectory{
		HorizonDays: horizonDays,
		Projected:   projected,
		LowerBound:  projected - confidenceZ*stdDev,
		UpperBound:  projected + confidenceZ*stdDev,
	}
}

func filterWindow(snapshots []store.Snapshot, window Window, now time.Time) []store.Snapshot {
	if window == WindowAll || window == "" {
		return snapshots
	}

	var cutoff time.Time

	switch window {
	case WindowDay:
		cutoff = now.AddDate(0, 0, -1)
	case WindowWeek:
		cutoff = now.AddDate(0, 0, -7)
	case WindowMonth:
		cutoff = now.AddDate(0, -1, 0)
	default:
		return snapshots
	}

	var out []store.Snapshot

	for _, s := range snapshots {
		if !s.Timestamp.Before(cutoff) {
			out = append(out, s)
		}
	}

	return out
}

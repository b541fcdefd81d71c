package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/galaxy/components"
)

// WindowStats holds aggregated statistics for a window of days.
type WindowStats struct {
	WindowStartDay int `csv:"-"`
	WindowEndDay   int `csv:"window_end"`

	// Population at window end
	Active  int `csv:"active"`
	Stars   int `csv:"stars"`
	Giants  int `csv:"giants"`
	Planets int `csv:"planets"`

	// Events during window
	Merges   int `csv:"merges"`   // merge events (one survivor each)
	Absorbed int `csv:"absorbed"` // bodies absorbed by a survivor
	Escaped  int `csv:"escaped"`  // bodies that left the region

	// Mass distribution (sampled at window end)
	TotalMass int64   `csv:"total_mass"`
	MassMean  float64 `csv:"mass_mean"`
	MassStd   float64 `csv:"mass_std"`
	MassP10   float64 `csv:"mass_p10"`
	MassP50   float64 `csv:"mass_p50"`
	MassP90   float64 `csv:"mass_p90"`
	MassMax   float64 `csv:"mass_max"`

	// Kinematics (for conservation checks)
	MomentumX float64 `csv:"momentum_x"`
	MomentumY float64 `csv:"momentum_y"`
	CenterX   float64 `csv:"center_x"` // center of mass
	CenterY   float64 `csv:"center_y"`
	MaxRadius float64 `csv:"max_radius"` // farthest body from the anchor
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeMassStats calculates mean, sample standard deviation, and
// percentiles from mass values.
func ComputeMassStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.MeanStdDev(values, nil)
	if n < 2 {
		std = 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// PopulationSample summarizes the active bodies of one generation.
type PopulationSample struct {
	Active    int
	Tiers     [3]int // indexed by components.Tier
	Masses    []float64
	TotalMass int64
	Momentum  r2.Vec
	Center    r2.Vec
	MaxRadius float64
}

// SamplePopulation summarizes bodies, skipping any carrying the sentinel.
// Radii are measured from bodies[0].
func SamplePopulation(bodies []components.Body) PopulationSample {
	s := PopulationSample{Masses: make([]float64, 0, len(bodies))}
	if len(bodies) == 0 {
		return s
	}

	origin := r2.Vec{X: bodies[0].X, Y: bodies[0].Y}
	var weighted r2.Vec
	for i := range bodies {
		b := &bodies[i]
		if !b.Active() {
			continue
		}
		m := float64(b.Mass)
		pos := r2.Vec{X: b.X, Y: b.Y}

		s.Active++
		s.Tiers[components.TierOf(b.Mass)]++
		s.Masses = append(s.Masses, m)
		s.TotalMass += int64(b.Mass)
		s.Momentum = r2.Add(s.Momentum, r2.Scale(m, r2.Vec{X: b.VX, Y: b.VY}))
		weighted = r2.Add(weighted, r2.Scale(m, pos))
		s.MaxRadius = math.Max(s.MaxRadius, r2.Norm(r2.Sub(pos, origin)))
	}

	if total := floats.Sum(s.Masses); total > 0 {
		s.Center = r2.Scale(1/total, weighted)
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartDay),
		slog.Int("window_end", s.WindowEndDay),
		slog.Int("active", s.Active),
		slog.Int("stars", s.Stars),
		slog.Int("giants", s.Giants),
		slog.Int("planets", s.Planets),
		slog.Int("merges", s.Merges),
		slog.Int("absorbed", s.Absorbed),
		slog.Int("escaped", s.Escaped),
		slog.Int64("total_mass", s.TotalMass),
		slog.Float64("mass_mean", s.MassMean),
		slog.Float64("mass_std", s.MassStd),
		slog.Float64("mass_p10", s.MassP10),
		slog.Float64("mass_p50", s.MassP50),
		slog.Float64("mass_p90", s.MassP90),
		slog.Float64("mass_max", s.MassMax),
		slog.Float64("momentum_x", s.MomentumX),
		slog.Float64("momentum_y", s.MomentumY),
		slog.Float64("center_x", s.CenterX),
		slog.Float64("center_y", s.CenterY),
		slog.Float64("max_radius", s.MaxRadius),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndDay,
		"active", s.Active,
		"stars", s.Stars,
		"giants", s.Giants,
		"planets", s.Planets,
		"merges", s.Merges,
		"absorbed", s.Absorbed,
		"escaped", s.Escaped,
		"total_mass", s.TotalMass,
		"mass_p50", s.MassP50,
		"mass_max", s.MassMax,
		"momentum_x", s.MomentumX,
		"momentum_y", s.MomentumY,
		"max_radius", s.MaxRadius,
	)
}

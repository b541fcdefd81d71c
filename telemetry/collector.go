// Package telemetry collects run statistics and timing and writes them
// out as CSV.
package telemetry

import (
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/galaxy/components"
)

// Collector accumulates events within windows of days and produces WindowStats.
type Collector struct {
	windowDays int

	// Current window tracking
	windowStartDay int

	// Event counters for current window
	merges   int
	absorbed int
	escaped  int
}

// NewCollector creates a new stats collector flushing every windowDays days.
func NewCollector(windowDays int) *Collector {
	if windowDays < 1 {
		windowDays = 1
	}
	return &Collector{windowDays: windowDays}
}

// RecordMerges records merge events and the bodies they absorbed.
func (c *Collector) RecordMerges(events, absorbed int) {
	c.merges += events
	c.absorbed += absorbed
}

// RecordEscapes records bodies that left the region.
func (c *Collector) RecordEscapes(n int) {
	c.escaped += n
}

// ShouldFlush returns true if enough days have passed to flush the window.
func (c *Collector) ShouldFlush(day int) bool {
	return day-c.windowStartDay >= c.windowDays
}

// Flush produces a WindowStats from the active bodies at the given day and
// resets counters for the next window.
func (c *Collector) Flush(day int, bodies []components.Body) WindowStats {
	sample := SamplePopulation(bodies)
	mean, std, p10, p50, p90 := ComputeMassStats(sample.Masses)

	var maxMass float64
	if len(sample.Masses) > 0 {
		maxMass = floats.Max(sample.Masses)
	}

	stats := WindowStats{
		WindowStartDay: c.windowStartDay,
		WindowEndDay:   day,

		Active:  sample.Active,
		Stars:   sample.Tiers[components.TierStar],
		Giants:  sample.Tiers[components.TierGiant],
		Planets: sample.Tiers[components.TierPlanet],

		Merges:   c.merges,
		Absorbed: c.absorbed,
		Escaped:  c.escaped,

		TotalMass: sample.TotalMass,
		MassMean:  mean,
		MassStd:   std,
		MassP10:   p10,
		MassP50:   p50,
		MassP90:   p90,
		MassMax:   maxMass,

		MomentumX: sample.Momentum.X,
		MomentumY: sample.Momentum.Y,
		CenterX:   sample.Center.X,
		CenterY:   sample.Center.Y,
		MaxRadius: sample.MaxRadius,
	}

	// Reset for next window
	c.windowStartDay = day
	c.merges = 0
	c.absorbed = 0
	c.escaped = 0

	return stats
}

// WindowDays returns the number of days per window.
func (c *Collector) WindowDays() int {
	return c.windowDays
}

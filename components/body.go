package components

// SentinelMass marks a body as removed (merged or escaped) pending compaction.
// It is never a physical mass.
const SentinelMass int32 = -1

// Body is one point mass of the simulated population.
// Units: distance 100 000 km, velocity distance per day, mass 10^24 kg.
type Body struct {
	X, Y   float64
	VX, VY float64
	Mass   int32
}

// Active reports whether the body is live. Every place that
// interprets the sentinel goes through this predicate.
func (b *Body) Active() bool {
	return b.Mass >= 0
}

// Remove marks the body with the sentinel mass.
func (b *Body) Remove() {
	b.Mass = SentinelMass
}

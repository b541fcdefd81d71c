// Package components defines the plain data types shared by the simulation
// and the ECS components used by the trajectory viewer.
package components

// Tier classifies a body by mass for display.
type Tier uint8

const (
	TierPlanet Tier = iota // standard bodies
	TierGiant              // giant planets and merged clumps
	TierStar               // the anchor and anything comparable
)

// Tier thresholds used for display colors.
const (
	StarMassThreshold  = 1900000
	GiantMassThreshold = 1000
)

// TierOf returns the display tier for a mass.
func TierOf(mass int32) Tier {
	switch {
	case mass > StarMassThreshold:
		return TierStar
	case mass > GiantMassThreshold:
		return TierGiant
	default:
		return TierPlanet
	}
}

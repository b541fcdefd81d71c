// Package systems contains the simulation systems: galaxy initialization,
// the gravity kernel, collision detection and merging, and compaction.
package systems

import (
	"math"

	"github.com/pthm-cable/galaxy/components"
	"github.com/pthm-cable/galaxy/config"
)

// Params holds the constants the gravity kernel needs.
type Params struct {
	G      float64 // gravitational constant in simulation units
	Border int     // half-width of the bounded region
}

// ParamsFrom extracts kernel parameters from a config.
func ParamsFrom(cfg *config.Config) Params {
	return Params{
		G:      cfg.Physics.GravitationalConstant,
		Border: cfg.Galaxy.SpaceBorder,
	}
}

// IntegrateBody computes the next-generation state of body i from the
// first active bodies of current.
//
// Acceleration is the inverse-square pull of every other active body.
// The position advances with the pre-step velocity, the velocity with the
// new acceleration (semi-implicit Euler, one day per step). A body that
// leaves the region keeps its slot but carries the sentinel mass.
func IntegrateBody(current []components.Body, active, i int, p Params) (components.Body, error) {
	b := &current[i]

	var axSum, aySum float64
	for k := 0; k < active; k++ {
		if k == i {
			continue
		}
		o := &current[k]
		dx := b.X - o.X
		dy := b.Y - o.Y
		dist2 := dx*dx + dy*dy
		if dist2 == 0 {
			// Coincident pair: no defined direction
			continue
		}
		dist := math.Sqrt(dist2)
		a := float64(o.Mass) / dist2
		axSum += a * (dx / dist)
		aySum += a * (dy / dist)
	}

	ax := -p.G * axSum
	ay := -p.G * aySum

	next := components.Body{
		X:  b.X + b.VX,
		Y:  b.Y + b.VY,
		VX: b.VX + ax,
		VY: b.VY + ay,
	}

	if i > 0 && next.VX == 0 && next.VY == 0 {
		return next, StalledBody(i)
	}

	if OutOfSpace(next.X, next.Y, p.Border) {
		next.Mass = components.SentinelMass
	} else {
		next.Mass = b.Mass
	}
	return next, nil
}

// IntegrateRange runs IntegrateBody for indices [lo, hi), writing into next.
// It stops at the first failure.
func IntegrateRange(current, next []components.Body, active, lo, hi int, p Params) error {
	for i := lo; i < hi; i++ {
		b, err := IntegrateBody(current, active, i, p)
		if err != nil {
			return err
		}
		next[i] = b
	}
	return nil
}

package systems

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/galaxy/components"
	"github.com/pthm-cable/galaxy/config"
)

// seedSource adapts a PCG generator to the random source interfaces
// accepted by gonum's distributions.
type seedSource struct {
	pcg *rand.PCG
}

func newSeedSource(seed uint64) *seedSource {
	return &seedSource{pcg: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)}
}

func (s *seedSource) Uint64() uint64 { return s.pcg.Uint64() }

func (s *seedSource) Seed(seed uint64) { s.pcg.Seed(seed, seed^0x9e3779b97f4a7c15) }

// InitializeGalaxy fills the population with one anchor body at the origin
// and cfg.Galaxy.InitialBodyCount-1 bodies on perturbed circular orbits.
// Both generation buffers end up identical.
func InitializeGalaxy(pop *Population, cfg *config.Config, seed uint64) error {
	gal := cfg.Galaxy
	if pop.Capacity() != gal.InitialBodyCount {
		return fmt.Errorf("population capacity %d does not match initial body count %d",
			pop.Capacity(), gal.InitialBodyCount)
	}

	src := newSeedSource(seed)
	normal := distuv.Normal{Mu: 0, Sigma: gal.StandardDeviation, Src: src}
	angle := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: src}

	border := float64(gal.SpaceBorder)
	g := cfg.Physics.GravitationalConstant
	sunMass := float64(gal.SunMass)

	bodies := pop.Current()
	bodies[0] = components.Body{Mass: int32(gal.SunMass)}

	for i := 1; i < len(bodies); i++ {
		b := &bodies[i]

		// Position: rejection-sample until inside the region
		var r, fi float64
		for {
			r = math.Abs(normal.Rand())*border + gal.PlanetFreeZone
			fi = angle.Rand()
			b.X = r * math.Cos(fi)
			b.Y = r * math.Sin(fi)
			if !OutOfSpace(b.X, b.Y, gal.SpaceBorder) {
				break
			}
		}

		// Velocity: perturbed circular orbit, roughly tangential
		fiNormal := fi + math.Pi/2 + 0.1*normal.Rand()
		vk := math.Sqrt(g*sunMass/r) * (1 + normal.Rand())
		b.VX = vk * math.Cos(fiNormal)
		b.VY = vk * math.Sin(fiNormal)

		tier := gal.PlanetMass
		if i < 1+gal.GiantPlanetCount {
			tier = gal.GiantPlanetMass
		}
		b.Mass = perturbedMass(tier, normal.Rand())

		if b.VX == 0 && b.VY == 0 {
			return newFailure(ErrInitialization, i, "not enough speed")
		}
		if OutOfSpace(b.X, b.Y, gal.SpaceBorder) {
			return newFailure(ErrInitialization, i, "out of space")
		}
	}

	pop.SyncPrevious()
	return nil
}

// perturbedMass scales a tier mass by (1 + 0.5·n) and truncates it.
// A negative result would read as the sentinel, so it is clamped to zero.
func perturbedMass(tier int, n float64) int32 {
	m := int32(float64(tier) * (1 + 0.5*n))
	if m < 0 {
		return 0
	}
	return m
}

package systems

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/galaxy/config"
)

func smallGalaxyConfig() *config.Config {
	cfg := config.Default()
	cfg.Galaxy.InitialBodyCount = 300
	cfg.Galaxy.GiantPlanetCount = 20
	return cfg
}

func TestInitializeGalaxyLayout(t *testing.T) {
	cfg := smallGalaxyConfig()
	pop := NewPopulation(cfg.Galaxy.InitialBodyCount)

	require.NoError(t, InitializeGalaxy(pop, cfg, 42))

	bodies := pop.Current()
	anchor := bodies[0]
	assert.Equal(t, int32(cfg.Galaxy.SunMass), anchor.Mass)
	assert.Zero(t, anchor.X)
	assert.Zero(t, anchor.Y)
	assert.Zero(t, anchor.VX)
	assert.Zero(t, anchor.VY)

	for i := 1; i < len(bodies); i++ {
		b := bodies[i]
		assert.False(t, OutOfSpace(b.X, b.Y, cfg.Galaxy.SpaceBorder), "body %d outside region", i)

		r := math.Hypot(b.X, b.Y)
		assert.GreaterOrEqual(t, r, cfg.Galaxy.PlanetFreeZone-1e-6, "body %d inside exclusion zone", i)
		assert.False(t, b.VX == 0 && b.VY == 0, "body %d has zero velocity", i)
		assert.True(t, b.Active(), "body %d spawned removed", i)

		if i <= cfg.Galaxy.GiantPlanetCount {
			assert.Greater(t, b.Mass, int32(100), "giant %d mass", i)
		} else {
			assert.Less(t, b.Mass, int32(100), "planet %d mass", i)
		}
	}

	// Both generations start identical
	assert.Equal(t, pop.Current(), pop.Previous())
	assert.Equal(t, cfg.Galaxy.InitialBodyCount, pop.Active())
}

func TestInitializeGalaxyOrbitsAreRoughlyTangential(t *testing.T) {
	cfg := smallGalaxyConfig()
	pop := NewPopulation(cfg.Galaxy.InitialBodyCount)
	require.NoError(t, InitializeGalaxy(pop, cfg, 9))

	var tangential int
	bodies := pop.Current()
	for _, b := range bodies[1:] {
		// Counterclockwise orbits: cross product of radius and velocity is positive
		if b.X*b.VY-b.Y*b.VX > 0 {
			tangential++
		}
	}
	assert.Greater(t, tangential, (len(bodies)-1)*9/10)
}

func TestInitializeGalaxySeedInjection(t *testing.T) {
	cfg := smallGalaxyConfig()

	a := NewPopulation(cfg.Galaxy.InitialBodyCount)
	b := NewPopulation(cfg.Galaxy.InitialBodyCount)
	c := NewPopulation(cfg.Galaxy.InitialBodyCount)
	require.NoError(t, InitializeGalaxy(a, cfg, 1234))
	require.NoError(t, InitializeGalaxy(b, cfg, 1234))
	require.NoError(t, InitializeGalaxy(c, cfg, 4321))

	assert.Equal(t, a.Current(), b.Current())
	assert.NotEqual(t, a.Current(), c.Current())
}

func TestInitializeGalaxyZeroVelocityFails(t *testing.T) {
	cfg := smallGalaxyConfig()
	cfg.Physics.GravitationalConstant = 0

	err := InitializeGalaxy(NewPopulation(cfg.Galaxy.InitialBodyCount), cfg, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInitialization))
}

func TestInitializeGalaxyCapacityMismatch(t *testing.T) {
	cfg := smallGalaxyConfig()
	err := InitializeGalaxy(NewPopulation(10), cfg, 1)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInitialization))
}

func TestPerturbedMass(t *testing.T) {
	assert.Equal(t, int32(6), perturbedMass(6, 0))
	assert.Equal(t, int32(3000), perturbedMass(2000, 1))
	assert.Equal(t, int32(0), perturbedMass(6, -5), "never below zero")
}

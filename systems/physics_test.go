package systems

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/galaxy/components"
)

const (
	testG      = 0.498199486464
	testBorder = 1 << 14
	testSun    = 2000000
)

var testParams = Params{G: testG, Border: testBorder}

// orbitPopulation returns an anchor plus one body on a circular orbit of radius r.
func orbitPopulation(r float64) *Population {
	pop := NewPopulation(2)
	v := math.Sqrt(testG * testSun / r)
	cur := pop.Current()
	cur[0] = components.Body{Mass: testSun}
	cur[1] = components.Body{X: r, Y: 0, VX: 0, VY: v, Mass: 6}
	pop.SyncPrevious()
	return pop
}

func TestIntegrateBodyCircularOrbit(t *testing.T) {
	const r = 1000.0
	pop := orbitPopulation(r)
	cur := pop.Current()
	v := cur[1].VY

	next, err := IntegrateBody(cur, 2, 1, testParams)
	require.NoError(t, err)

	// Position advances with the pre-step velocity
	assert.InDelta(t, r, next.X, 1e-9)
	assert.InDelta(t, v, next.Y, 1e-9)

	// Velocity gains the inward pull of the anchor
	wantAX := -testG * testSun / (r * r)
	assert.InDelta(t, wantAX, next.VX, 1e-9)
	assert.InDelta(t, v, next.VY, 1e-9)
	assert.Equal(t, int32(6), next.Mass)

	anchor, err := IntegrateBody(cur, 2, 0, testParams)
	require.NoError(t, err)
	assert.Equal(t, 0.0, anchor.X)
	assert.Equal(t, 0.0, anchor.Y)
	assert.InDelta(t, testG*6/(r*r), anchor.VX, 1e-12)
	assert.Equal(t, int32(testSun), anchor.Mass)
}

func TestCircularOrbitDayHasNoCollision(t *testing.T) {
	pop := orbitPopulation(1000)

	require.NoError(t, IntegrateRange(pop.Current(), pop.Next(), 2, 0, 2, testParams))
	pop.Swap()

	report := DetectCollisions(pop)
	assert.Zero(t, report.Absorbed)
	assert.Empty(t, report.Events)
	assert.Zero(t, Compact(pop))
	assert.Equal(t, 2, pop.Active())
}

func TestIntegrateBodyBoundaryRemoval(t *testing.T) {
	pop := NewPopulation(2)
	cur := pop.Current()
	cur[0] = components.Body{Mass: 0}
	cur[1] = components.Body{X: testBorder - 1, Y: 0, VX: 5, VY: 0, Mass: 6}

	require.NoError(t, IntegrateRange(cur, pop.Next(), 2, 0, 2, testParams))
	pop.Swap()

	escaped := pop.Current()[1]
	assert.False(t, escaped.Active(), "escaped body should carry the sentinel")
	assert.Greater(t, escaped.X, float64(testBorder))

	assert.Equal(t, 1, Compact(pop))
	assert.Equal(t, 1, pop.Active())
	require.NoError(t, Validate(pop))
}

func TestIntegrateBodyZeroVelocityFails(t *testing.T) {
	cur := []components.Body{
		{Mass: 0},
		{X: 100, Y: 0, Mass: 6},
	}

	_, err := IntegrateBody(cur, 2, 1, testParams)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIntegration))

	var f *Failure
	require.True(t, errors.As(err, &f))
	assert.Equal(t, 1, f.Index)

	// The anchor may stand still
	_, err = IntegrateBody(cur, 2, 0, testParams)
	assert.NoError(t, err)
}

func TestIntegrateBodyIgnoresInactiveTail(t *testing.T) {
	cur := []components.Body{
		{Mass: testSun},
		{X: 500, VY: 30, Mass: 6},
		{X: 501, VY: 30, Mass: 2000}, // outside the active range
	}

	withTail, err := IntegrateBody(cur, 3, 1, testParams)
	require.NoError(t, err)
	without, err := IntegrateBody(cur, 2, 1, testParams)
	require.NoError(t, err)

	assert.NotEqual(t, withTail.VX, without.VX)
	assert.InDelta(t, -testG*testSun/(500.0*500.0), without.VX, 1e-9)
}

func TestIntegrateBodyCoincidentPair(t *testing.T) {
	cur := []components.Body{
		{Mass: testSun},
		{X: 700, VY: 10, Mass: 6},
		{X: 700, VY: -10, Mass: 6},
	}

	next, err := IntegrateBody(cur, 3, 1, testParams)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(next.VX) || math.IsNaN(next.VY))
}

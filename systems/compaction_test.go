package systems

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/galaxy/components"
)

func massPopulation(masses ...int32) *Population {
	pop := NewPopulation(len(masses))
	for i, m := range masses {
		pop.Current()[i] = components.Body{X: float64(i), Mass: m}
	}
	return pop
}

func TestCompact(t *testing.T) {
	tests := []struct {
		name        string
		masses      []int32
		wantActive  int
		wantRemoved int
	}{
		{"nothing removed", []int32{100, 1, 2, 3}, 4, 0},
		{"tail removed", []int32{100, 1, 2, -1}, 3, 1},
		{"middle removed", []int32{100, -1, 2, 3}, 3, 1},
		{"all but anchor", []int32{100, -1, -1, -1}, 1, 3},
		{"alternating", []int32{100, -1, 2, -1, 4, -1}, 3, 3},
		{"anchor only", []int32{100}, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pop := massPopulation(tt.masses...)
			before := pop.Active()

			removed := Compact(pop)

			assert.Equal(t, tt.wantRemoved, removed)
			assert.Equal(t, tt.wantActive, pop.Active())
			assert.LessOrEqual(t, pop.Active(), before)
			assert.Equal(t, int32(100), pop.Current()[0].Mass, "anchor stays at index 0")
			for i, b := range pop.ActiveBodies() {
				assert.True(t, b.Active(), "sentinel at %d after compaction", i)
			}
			require.NoError(t, Validate(pop))
		})
	}
}

func TestCompactPreservesSurvivorSet(t *testing.T) {
	pop := massPopulation(100, 11, -1, 13, -1, 15, 16)
	Compact(pop)

	got := map[int32]bool{}
	for _, b := range pop.ActiveBodies() {
		got[b.Mass] = true
	}
	assert.Equal(t, map[int32]bool{100: true, 11: true, 13: true, 15: true, 16: true}, got)
}

func TestCompactLeavesSentinelAnchorForValidation(t *testing.T) {
	pop := massPopulation(-1, 5, 6)
	Compact(pop)

	assert.Equal(t, 3, pop.Active())
	err := Validate(pop)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConsistency))
}

func TestValidateDetectsSentinelInRange(t *testing.T) {
	pop := massPopulation(100, 5, -1)
	err := Validate(pop)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConsistency))

	var f *Failure
	require.True(t, errors.As(err, &f))
	assert.Equal(t, 2, f.Index)
}

func TestPopulationSwapAndShrink(t *testing.T) {
	pop := NewPopulation(4)
	pop.Current()[0].Mass = 1
	pop.Next()[0].Mass = 2

	pop.Swap()
	assert.Equal(t, int32(2), pop.Current()[0].Mass)
	assert.Equal(t, int32(1), pop.Previous()[0].Mass)

	pop.SetActive(3)
	assert.Equal(t, 3, pop.Active())
	assert.Len(t, pop.ActiveBodies(), 3)
	assert.Equal(t, 4, pop.Capacity())
	assert.Panics(t, func() { pop.SetActive(4) }, "active count never grows")
}

func TestFailureMessage(t *testing.T) {
	f := &Failure{Kind: ErrConsistency, Day: 3, Index: 0, Reason: "anchor body is out of its place"}
	assert.Equal(t, "consistency failure on day 3 (body 0): anchor body is out of its place", f.Error())

	f = newFailure(ErrInitialization, -1, "bad")
	assert.Equal(t, "initialization failure: bad", f.Error())
}

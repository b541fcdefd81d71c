package simulation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/galaxy/components"
	"github.com/pthm-cable/galaxy/compute"
	"github.com/pthm-cable/galaxy/config"
	"github.com/pthm-cable/galaxy/systems"
	"github.com/pthm-cable/galaxy/telemetry"
)

// memorySink keeps a copy of every frame.
type memorySink struct {
	frames [][]components.Body
	failAt int // frame index to fail on, -1 = never
}

func newMemorySink() *memorySink {
	return &memorySink{failAt: -1}
}

func (m *memorySink) WriteFrame(bodies []components.Body) error {
	if len(m.frames) == m.failAt {
		return errors.New("disk full")
	}
	m.frames = append(m.frames, append([]components.Body(nil), bodies...))
	return nil
}

// faultyBackend wraps a backend and injects a fault on one day.
type faultyBackend struct {
	compute.Backend
	day     int
	faultAt int
	fault   func(next []components.Body) error
}

func (f *faultyBackend) ComputeNextGeneration(current, next []components.Body, active int) error {
	if err := f.Backend.ComputeNextGeneration(current, next, active); err != nil {
		return err
	}
	day := f.day
	f.day++
	if day == f.faultAt {
		return f.fault(next)
	}
	return nil
}

func smallConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Galaxy.InitialBodyCount = 150
	cfg.Galaxy.GiantPlanetCount = 10
	cfg.Run.Days = 40
	cfg.Compute.Workers = 2
	cfg.Telemetry.StatsWindow = 10
	cfg.ComputeDerived()
	return cfg
}

func newParallel(cfg *config.Config) compute.Backend {
	return compute.NewParallel(systems.ParamsFrom(cfg), cfg.Derived.Workers, cfg.Compute.ParallelThreshold)
}

func TestRunRecordsEveryDay(t *testing.T) {
	cfg := smallConfig(t)
	sink := newMemorySink()
	backend := newParallel(cfg)
	defer backend.Close()

	var days []int
	prevActive := cfg.Galaxy.InitialBodyCount
	sim, err := New(cfg, backend, sink, Options{
		Seed: 7,
		OnDay: func(day int, pop *systems.Population) {
			days = append(days, day)
			assert.LessOrEqual(t, pop.Active(), prevActive, "active count grew on day %d", day)
			prevActive = pop.Active()
		},
	})
	require.NoError(t, err)
	defer sim.Close()

	assert.Equal(t, PhaseInitializing, sim.Phase())
	require.NoError(t, sim.Run())

	assert.Equal(t, PhaseTerminated, sim.Phase())
	assert.Equal(t, cfg.Run.Days, sim.Day())
	require.Len(t, sink.frames, cfg.Run.Days)
	require.Len(t, days, cfg.Run.Days)
	assert.Equal(t, 0, days[0])
	assert.Equal(t, cfg.Run.Days-1, days[len(days)-1])

	for day, frame := range sink.frames {
		require.NotEmpty(t, frame)
		assert.GreaterOrEqual(t, frame[0].Mass, int32(cfg.Galaxy.SunMass), "anchor lost mass on day %d", day)
		for i, b := range frame {
			assert.True(t, b.Active(), "sentinel at %d on day %d", i, day)
		}
		if day > 0 {
			assert.LessOrEqual(t, len(frame), len(sink.frames[day-1]))
		}
	}
}

func TestRunIsReproducibleForSeed(t *testing.T) {
	run := func(backendName string) [][]components.Body {
		cfg := smallConfig(t)
		cfg.Run.Days = 15
		cfg.Compute.Backend = backendName
		backend, err := compute.New(cfg)
		require.NoError(t, err)
		defer backend.Close()

		sink := newMemorySink()
		sim, err := New(cfg, backend, sink, Options{Seed: 99})
		require.NoError(t, err)
		defer sim.Close()
		require.NoError(t, sim.Run())
		assert.Equal(t, uint64(99), sim.Seed())
		return sink.frames
	}

	a := run(compute.BackendParallel)
	b := run(compute.BackendParallel)
	c := run(compute.BackendOffload)

	assert.Equal(t, a, b, "same seed, same backend")
	assert.Equal(t, a, c, "backends must agree")
}

func TestRunFailsWhenAnchorIsRemoved(t *testing.T) {
	cfg := smallConfig(t)
	sink := newMemorySink()
	backend := &faultyBackend{
		Backend: newParallel(cfg),
		faultAt: 3,
		fault: func(next []components.Body) error {
			next[0].Remove()
			return nil
		},
	}
	defer backend.Close()

	sim, err := New(cfg, backend, sink, Options{Seed: 7})
	require.NoError(t, err)
	defer sim.Close()

	err = sim.Run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, systems.ErrConsistency))

	var f *systems.Failure
	require.True(t, errors.As(err, &f))
	assert.Equal(t, 3, f.Day)
	assert.Equal(t, 0, f.Index)

	assert.Equal(t, PhaseFailed, sim.Phase())
	assert.Len(t, sink.frames, 3, "frames before the failure are kept, none after")
}

func TestRunFailsOnStalledBody(t *testing.T) {
	cfg := smallConfig(t)
	sink := newMemorySink()
	backend := &faultyBackend{
		Backend: newParallel(cfg),
		faultAt: 2,
		fault: func([]components.Body) error {
			return systems.StalledBody(5)
		},
	}
	defer backend.Close()

	sim, err := New(cfg, backend, sink, Options{Seed: 7})
	require.NoError(t, err)
	defer sim.Close()

	err = sim.Run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, systems.ErrIntegration))
	assert.Contains(t, err.Error(), "day 2")
	assert.Contains(t, err.Error(), "body 5")
	assert.Equal(t, PhaseFailed, sim.Phase())
	assert.Len(t, sink.frames, 2)
}

func TestRunFailsOnSinkError(t *testing.T) {
	cfg := smallConfig(t)
	sink := newMemorySink()
	sink.failAt = 4
	backend := newParallel(cfg)
	defer backend.Close()

	sim, err := New(cfg, backend, sink, Options{Seed: 7})
	require.NoError(t, err)
	defer sim.Close()

	err = sim.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, PhaseFailed, sim.Phase())
	assert.Equal(t, 4, sim.Day())
}

func TestRunTwiceIsRejected(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Run.Days = 1
	backend := newParallel(cfg)
	defer backend.Close()

	sim, err := New(cfg, backend, newMemorySink(), Options{Seed: 1})
	require.NoError(t, err)
	defer sim.Close()

	require.NoError(t, sim.Run())
	assert.Error(t, sim.Run())
}

func TestNewRejectsMissingCollaborators(t *testing.T) {
	cfg := smallConfig(t)
	backend := newParallel(cfg)
	defer backend.Close()

	_, err := New(cfg, nil, newMemorySink(), Options{})
	assert.Error(t, err)
	_, err = New(cfg, backend, nil, Options{})
	assert.Error(t, err)
}

func TestTelemetryWindows(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Run.Days = 25
	backend := newParallel(cfg)
	defer backend.Close()

	dir := filepath.Join(t.TempDir(), "out")
	var windows []telemetry.WindowStats
	sim, err := New(cfg, backend, newMemorySink(), Options{
		Seed:      3,
		OutputDir: dir,
		OnStats:   func(s telemetry.WindowStats) { windows = append(windows, s) },
	})
	require.NoError(t, err)
	require.NoError(t, sim.Run())
	require.NoError(t, sim.Close())

	// Windows end at days 10, 20 and the final day
	require.Len(t, windows, 3)
	assert.Equal(t, 10, windows[0].WindowEndDay)
	assert.Equal(t, 20, windows[1].WindowEndDay)
	assert.Equal(t, 25, windows[2].WindowEndDay)
	assert.Equal(t, sim.Population().Active(), windows[2].Active)

	for _, name := range []string{"telemetry.csv", "perf.csv", "config.yaml"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
		done  bool
	}{
		{PhaseInitializing, "initializing", false},
		{PhaseStepping, "stepping", false},
		{PhaseRecording, "recording", false},
		{PhaseTerminated, "terminated", true},
		{PhaseFailed, "failed", true},
		{Phase(42), "unknown", false},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.phase.String())
			assert.Equal(t, tt.done, tt.phase.Done())
		})
	}
}

// Package simulation drives the day loop: integrate, swap generations,
// merge collisions, compact, validate, and record one frame per day.
package simulation

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pthm-cable/galaxy/components"
	"github.com/pthm-cable/galaxy/compute"
	"github.com/pthm-cable/galaxy/config"
	"github.com/pthm-cable/galaxy/systems"
	"github.com/pthm-cable/galaxy/telemetry"
)

// FrameSink accepts one frame per simulated day. bodies is the active
// range of the current generation after compaction; the sink must not
// retain it.
type FrameSink interface {
	WriteFrame(bodies []components.Body) error
}

// Options configures optional behavior of a Simulator.
type Options struct {
	Seed      uint64 // RNG seed for the initial galaxy (0 = time-based)
	LogStats  bool   // log window and perf stats via slog
	OutputDir string // directory for CSV telemetry and config snapshot ("" = disabled)

	// OnDay is called after each day has been recorded.
	OnDay func(day int, pop *systems.Population)

	// OnStats is called with each flushed stats window.
	OnStats func(stats telemetry.WindowStats)
}

// Simulator owns the population and runs it through the configured days.
type Simulator struct {
	cfg      *config.Config
	backend  compute.Backend
	sink     FrameSink
	opts     Options
	seed     uint64
	pop      *systems.Population
	detector *systems.CollisionDetector

	phase        Phase
	day          int
	nextProgress int // percent at which the next progress report is due

	perfCollector *telemetry.PerfCollector
	collector     *telemetry.Collector
	outputManager *telemetry.OutputManager
}

// New creates a simulator. The population buffers are allocated here;
// the galaxy is built when Run starts.
func New(cfg *config.Config, backend compute.Backend, sink FrameSink, opts Options) (*Simulator, error) {
	if backend == nil {
		return nil, errors.New("simulation: nil compute backend")
	}
	if sink == nil {
		return nil, errors.New("simulation: nil frame sink")
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	return &Simulator{
		cfg:           cfg,
		backend:       backend,
		sink:          sink,
		opts:          opts,
		seed:          seed,
		pop:           systems.NewPopulation(cfg.Galaxy.InitialBodyCount),
		detector:      systems.NewCollisionDetector(cfg.Derived.Workers),
		phase:         PhaseInitializing,
		nextProgress:  cfg.Run.ProgressStep,
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		collector:     telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		outputManager: om,
	}, nil
}

// Run builds the galaxy and simulates every configured day.
// On failure the simulator moves to PhaseFailed and the returned error
// wraps a *systems.Failure. Frames already emitted are left as they are.
func (s *Simulator) Run() error {
	if s.phase != PhaseInitializing {
		return fmt.Errorf("simulation: Run called in phase %s", s.phase)
	}

	if err := s.initialize(); err != nil {
		return s.fail(err)
	}

	slog.Info("simulation started",
		"seed", s.seed,
		"bodies", s.pop.Active(),
		"days", s.cfg.Run.Days,
		"backend", s.backend.Name(),
		"stats_window", s.collector.WindowDays(),
		"output_dir", s.outputManager.Dir(),
	)

	for s.day < s.cfg.Run.Days {
		if err := s.step(); err != nil {
			return s.fail(err)
		}
		s.day++
	}

	s.phase = PhaseTerminated
	slog.Info("simulation finished", "days", s.day, "active", s.pop.Active())
	return nil
}

// initialize builds the galaxy and merges initial overlaps.
func (s *Simulator) initialize() error {
	if err := systems.InitializeGalaxy(s.pop, s.cfg, s.seed); err != nil {
		return err
	}

	report := s.detector.Detect(s.pop)
	removed := systems.Compact(s.pop)
	if removed > 0 {
		slog.Info("initial overlaps merged", "absorbed", report.Absorbed, "active", s.pop.Active())
	}
	return systems.Validate(s.pop)
}

// step runs one day. Every phase completes before the next begins.
func (s *Simulator) step() error {
	s.phase = PhaseStepping
	s.perfCollector.StartDay()

	s.perfCollector.StartPhase(telemetry.PhaseIntegrate)
	active := s.pop.Active()
	if err := s.backend.ComputeNextGeneration(s.pop.Current(), s.pop.Next(), active); err != nil {
		return err
	}
	escaped := countRemoved(s.pop.Next()[:active])
	s.pop.Swap()

	s.perfCollector.StartPhase(telemetry.PhaseCollide)
	report := s.detector.Detect(s.pop)

	s.perfCollector.StartPhase(telemetry.PhaseCompact)
	systems.Compact(s.pop)

	s.perfCollector.StartPhase(telemetry.PhaseValidate)
	if err := systems.Validate(s.pop); err != nil {
		return err
	}

	s.phase = PhaseRecording
	s.perfCollector.StartPhase(telemetry.PhaseRecord)
	if err := s.sink.WriteFrame(s.pop.ActiveBodies()); err != nil {
		return fmt.Errorf("recording day %d: %w", s.day, err)
	}
	s.reportProgress()

	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	s.collector.RecordMerges(len(report.Events), report.Absorbed)
	s.collector.RecordEscapes(escaped)
	s.flushTelemetry()
	s.perfCollector.EndDay()

	if s.opts.OnDay != nil {
		s.opts.OnDay(s.day, s.pop)
	}
	return nil
}

// fail moves to PhaseFailed and stamps the day on body failures.
func (s *Simulator) fail(err error) error {
	var f *systems.Failure
	if s.phase != PhaseInitializing && errors.As(err, &f) {
		f.Day = s.day
	}
	s.phase = PhaseFailed

	slog.Error("simulation failed", "day", s.day, "error", err)
	return err
}

// reportProgress logs at each progress-step boundary of the total days.
func (s *Simulator) reportProgress() {
	days := s.cfg.Run.Days
	percent := (s.day + 1) * 100 / days
	if percent < s.nextProgress {
		return
	}
	for s.nextProgress <= percent {
		s.nextProgress += s.cfg.Run.ProgressStep
	}
	slog.Info("progress", "percent", percent, "day", s.day+1, "active", s.pop.Active())
}

// flushTelemetry emits window stats when a window completes.
func (s *Simulator) flushTelemetry() {
	day := s.day + 1
	if !s.collector.ShouldFlush(day) && day != s.cfg.Run.Days {
		return
	}

	stats := s.collector.Flush(day, s.pop.ActiveBodies())
	perfStats := s.perfCollector.Stats()

	if s.opts.OnStats != nil {
		s.opts.OnStats(stats)
	}

	if s.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if s.outputManager != nil {
		if err := s.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.WindowEndDay); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// Close releases the telemetry output. The backend and sink belong to the
// caller.
func (s *Simulator) Close() error {
	return s.outputManager.Close()
}

// Phase returns the current state.
func (s *Simulator) Phase() Phase {
	return s.phase
}

// Day returns the number of completed days.
func (s *Simulator) Day() int {
	return s.day
}

// Seed returns the seed the galaxy was built from.
func (s *Simulator) Seed() uint64 {
	return s.seed
}

// Population returns the population owned by the simulator.
// Callers must not modify it while Run is in progress.
func (s *Simulator) Population() *systems.Population {
	return s.pop
}

func countRemoved(bodies []components.Body) int {
	n := 0
	for i := range bodies {
		if !bodies[i].Active() {
			n++
		}
	}
	return n
}

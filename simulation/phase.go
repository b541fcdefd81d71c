package simulation

// Phase is the state of a Simulator.
type Phase uint8

const (
	PhaseInitializing Phase = iota // building the galaxy and the initial merge pass
	PhaseStepping                  // integrating, merging, compacting, validating
	PhaseRecording                 // emitting the frame of the finished day
	PhaseTerminated                // all days completed
	PhaseFailed                    // a failure aborted the run
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseStepping:
		return "stepping"
	case PhaseRecording:
		return "recording"
	case PhaseTerminated:
		return "terminated"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Done reports whether the phase is terminal.
func (p Phase) Done() bool {
	return p == PhaseTerminated || p == PhaseFailed
}

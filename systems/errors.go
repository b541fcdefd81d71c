package systems

import (
	"errors"
	"fmt"
)

// Failure categories. All of them abort the run; none is retried.
var (
	ErrInitialization = errors.New("initialization failure")
	ErrIntegration    = errors.New("integration failure")
	ErrConsistency    = errors.New("consistency failure")
)

// Failure describes a physically invalid state detected during a run.
type Failure struct {
	Kind   error  // one of ErrInitialization, ErrIntegration, ErrConsistency
	Day    int    // simulated day, -1 during initialization
	Index  int    // body index involved, -1 if not body-specific
	Reason string // human-readable condition
}

func (f *Failure) Error() string {
	msg := f.Kind.Error()
	if f.Day >= 0 {
		msg = fmt.Sprintf("%s on day %d", msg, f.Day)
	}
	if f.Index >= 0 {
		msg = fmt.Sprintf("%s (body %d)", msg, f.Index)
	}
	return msg + ": " + f.Reason
}

// Unwrap lets errors.Is match the failure category.
func (f *Failure) Unwrap() error {
	return f.Kind
}

func newFailure(kind error, index int, reason string) *Failure {
	return &Failure{Kind: kind, Day: -1, Index: index, Reason: reason}
}

// StalledBody returns the integration failure for a non-anchor body whose
// velocity became exactly zero.
func StalledBody(index int) *Failure {
	return newFailure(ErrIntegration, index, "not enough speed")
}

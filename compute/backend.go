// Package compute provides the interchangeable backends that advance the
// whole population by one day.
package compute

import (
	"fmt"

	"github.com/pthm-cable/galaxy/components"
	"github.com/pthm-cable/galaxy/config"
	"github.com/pthm-cable/galaxy/systems"
)

// Backend computes the next generation of bodies.
//
// ComputeNextGeneration reads current[:active] and writes next[:active],
// one output per input at the same index. It blocks until every body is
// written. Implementations must apply the systems.IntegrateBody formula
// and failure conditions exactly.
type Backend interface {
	Name() string
	ComputeNextGeneration(current, next []components.Body, active int) error
	Close() error
}

// Backend names accepted by New.
const (
	BackendParallel = "parallel"
	BackendOffload  = "offload"
)

// New creates the backend selected by cfg.Compute.Backend.
func New(cfg *config.Config) (Backend, error) {
	params := systems.ParamsFrom(cfg)
	switch cfg.Compute.Backend {
	case BackendParallel, "":
		return NewParallel(params, cfg.Derived.Workers, cfg.Compute.ParallelThreshold), nil
	case BackendOffload:
		return NewOffload(params, NewHostDevice(cfg.Derived.Workers), cfg.Compute.WorkGroupSize), nil
	default:
		return nil, fmt.Errorf("unknown compute backend %q (want %q or %q)",
			cfg.Compute.Backend, BackendParallel, BackendOffload)
	}
}

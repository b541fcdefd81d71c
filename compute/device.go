package compute

import (
	"fmt"
	"sync"
)

// Kernel is the per-work-item entry point of a device program.
// gid is the global work-item index.
type Kernel func(gid int)

// Device runs kernels over a one-dimensional index range.
//
// Enqueue must not block on kernel completion; the returned Event is the
// only completion signal. global is a multiple of local.
type Device interface {
	Name() string
	Enqueue(kernel Kernel, global, local int) (*Event, error)
}

// Event signals completion of an enqueued kernel.
type Event struct {
	done chan struct{}
}

func newEvent() *Event {
	return &Event{done: make(chan struct{})}
}

// Wait blocks until the kernel has finished on every work-item.
func (e *Event) Wait() {
	<-e.done
}

// HostDevice executes kernels on host goroutines, one per compute unit.
// Work-groups are handed out to compute units from a queue.
type HostDevice struct {
	computeUnits int
	mu           sync.Mutex // serializes kernels, like an in-order queue
}

// NewHostDevice creates a host-emulated device with the given number of
// compute units.
func NewHostDevice(computeUnits int) *HostDevice {
	if computeUnits < 1 {
		computeUnits = 1
	}
	return &HostDevice{computeUnits: computeUnits}
}

// Name returns the device name.
func (d *HostDevice) Name() string {
	return fmt.Sprintf("host(%d units)", d.computeUnits)
}

// Enqueue schedules the kernel and returns immediately.
func (d *HostDevice) Enqueue(kernel Kernel, global, local int) (*Event, error) {
	if local < 1 || global < 0 || global%local != 0 {
		return nil, fmt.Errorf("invalid work size: global %d, local %d", global, local)
	}

	ev := newEvent()
	groups := make(chan int, global/local)
	for g := 0; g < global/local; g++ {
		groups <- g
	}
	close(groups)

	go func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		defer close(ev.done)

		var wg sync.WaitGroup
		for u := 0; u < d.computeUnits; u++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for g := range groups {
					base := g * local
					for lid := 0; lid < local; lid++ {
						kernel(base + lid)
					}
				}
			}()
		}
		wg.Wait()
	}()

	return ev, nil
}

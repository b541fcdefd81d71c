package systems

import (
	"fmt"

	"github.com/pthm-cable/galaxy/components"
)

// Population owns the two generation buffers and the active range.
//
// Both buffers are allocated once at full capacity. One plays the
// current generation, the other the previous/next one; Swap flips
// the roles. Only the prefix [0, Active()) of the current buffer
// holds live bodies.
type Population struct {
	buffers [2][]components.Body
	current int // index into buffers of the current generation
	active  int
}

// NewPopulation allocates both buffers with the given capacity.
// The active range initially spans the whole capacity.
func NewPopulation(capacity int) *Population {
	if capacity < 1 {
		panic(fmt.Sprintf("systems: population capacity must be positive, got %d", capacity))
	}
	return &Population{
		buffers: [2][]components.Body{
			make([]components.Body, capacity),
			make([]components.Body, capacity),
		},
		active: capacity,
	}
}

// Capacity returns the fixed buffer length.
func (p *Population) Capacity() int {
	return len(p.buffers[0])
}

// Active returns the number of live bodies.
func (p *Population) Active() int {
	return p.active
}

// SetActive shrinks the active range. Growing it is a programming error.
func (p *Population) SetActive(n int) {
	if n > p.active || n < 0 {
		panic(fmt.Sprintf("systems: active count may only shrink (%d -> %d)", p.active, n))
	}
	p.active = n
}

// Current returns the full-capacity buffer holding the current generation.
func (p *Population) Current() []components.Body {
	return p.buffers[p.current]
}

// Previous returns the other buffer: the previous generation after a
// Swap, or the write target for the next generation before one.
func (p *Population) Previous() []components.Body {
	return p.buffers[1-p.current]
}

// Next is an alias of Previous used before Swap, when the other buffer
// is the integration target.
func (p *Population) Next() []components.Body {
	return p.buffers[1-p.current]
}

// Swap flips which buffer plays the current generation.
func (p *Population) Swap() {
	p.current = 1 - p.current
}

// ActiveBodies returns the live prefix of the current generation.
func (p *Population) ActiveBodies() []components.Body {
	return p.buffers[p.current][:p.active]
}

// Anchor returns the central body at index 0 of the current generation.
func (p *Population) Anchor() *components.Body {
	return &p.buffers[p.current][0]
}

// SyncPrevious copies the current generation into the other buffer.
// Used after initialization so both generations start identical.
func (p *Population) SyncPrevious() {
	copy(p.buffers[1-p.current], p.buffers[p.current])
}

package compute

import (
	"sync"

	"github.com/pthm-cable/galaxy/components"
	"github.com/pthm-cable/galaxy/systems"
)

// defaultParallelThreshold is the minimum body count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const defaultParallelThreshold = 64

// workChunk represents a range of bodies for a worker to process.
type workChunk struct {
	start, end int
	current    []components.Body
	next       []components.Body
	active     int
}

// chunkResult reports the outcome of one chunk.
type chunkResult struct {
	start int
	err   error
}

// Parallel integrates bodies on a persistent pool of host goroutines.
// Every worker reads the shared current buffer and writes a disjoint
// range of the next buffer.
type Parallel struct {
	params     systems.Params
	threshold  int
	numWorkers int

	// Worker pool channels
	workChan chan workChunk   // sends work to workers
	doneChan chan chunkResult // workers signal completion
	stopChan chan struct{}    // signals workers to exit
	wg       sync.WaitGroup   // tracks active workers
	running  bool             // true if workers are running
}

// NewParallel creates a host-thread backend with the given worker count.
// Workers start lazily on the first population large enough to need them.
func NewParallel(params systems.Params, workers, threshold int) *Parallel {
	if workers < 1 {
		workers = 1
	}
	if threshold <= 0 {
		threshold = defaultParallelThreshold
	}
	return &Parallel{
		params:     params,
		threshold:  threshold,
		numWorkers: workers,
	}
}

// Name returns the backend name.
func (p *Parallel) Name() string { return BackendParallel }

// startWorkers launches persistent worker goroutines.
func (p *Parallel) startWorkers() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan chunkResult, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *Parallel) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			err := systems.IntegrateRange(chunk.current, chunk.next, chunk.active, chunk.start, chunk.end, p.params)
			p.doneChan <- chunkResult{start: chunk.start, err: err}
		}
	}
}

// ComputeNextGeneration integrates current[:active] into next[:active].
// If several bodies stall, the error names the lowest index.
func (p *Parallel) ComputeNextGeneration(current, next []components.Body, active int) error {
	if active < p.threshold || p.numWorkers == 1 {
		return systems.IntegrateRange(current, next, active, 0, active, p.params)
	}

	// Ensure workers are running
	if !p.running {
		p.startWorkers()
	}

	chunkSize := (active + p.numWorkers - 1) / p.numWorkers

	// Dispatch chunks to workers
	chunksDispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > active {
			end = active
		}
		if start >= end {
			continue
		}

		p.workChan <- workChunk{start: start, end: end, current: current, next: next, active: active}
		chunksDispatched++
	}

	// Wait for all chunks to complete
	var firstErr error
	firstStart := active
	for i := 0; i < chunksDispatched; i++ {
		res := <-p.doneChan
		if res.err != nil && res.start < firstStart {
			firstErr = res.err
			firstStart = res.start
		}
	}
	return firstErr
}

// Close signals all workers to exit and waits for them.
func (p *Parallel) Close() error {
	if !p.running {
		return nil
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
	return nil
}

package systems

import (
	"sync"

	"github.com/pthm-cable/galaxy/components"
)

// collisionParallelThreshold is the minimum partner range that is split
// across workers. Below this, goroutine overhead dominates.
const collisionParallelThreshold = 1024

// MergeEvent records one survivor absorbing one or more bodies.
type MergeEvent struct {
	Survivor     int   // index of the absorbing body
	Absorbed     int   // number of bodies absorbed
	AbsorbedMass int64 // total mass taken in
	MassAfter    int32 // survivor mass after the merge
}

// MergeReport summarizes one collision pass.
type MergeReport struct {
	Events   []MergeEvent
	Absorbed int // total bodies marked with the sentinel
}

// partial accumulates absorbed mass and momentum for one partner chunk.
type partial struct {
	mass  int64
	px    float64
	py    float64
	count int
}

// CollisionDetector finds and merges colliding bodies.
// It keeps per-worker scratch between calls.
type CollisionDetector struct {
	workers  int
	partials []partial
}

// NewCollisionDetector creates a detector that splits large partner
// scans across the given number of goroutines.
func NewCollisionDetector(workers int) *CollisionDetector {
	if workers < 1 {
		workers = 1
	}
	return &CollisionDetector{
		workers:  workers,
		partials: make([]partial, workers),
	}
}

// Detect runs one collision pass over the active range of pop.
//
// The current buffer holds the new positions, the previous buffer the
// positions one day earlier at the same indices. For each live body i in
// ascending order, every live k > i that lies within the merge radius, or
// whose path segment crosses the path of i, is absorbed into i: masses add,
// velocity becomes the mass-weighted mean, and k is marked with the
// sentinel. The outer loop is sequential so an absorbed body never absorbs
// later, and the lower index always wins.
func (d *CollisionDetector) Detect(pop *Population) MergeReport {
	cur := pop.Current()
	prev := pop.Previous()
	n := pop.Active()

	var report MergeReport
	for i := 0; i < n-1; i++ {
		a := &cur[i]
		if !a.Active() {
			continue
		}

		var acc partial
		if n-(i+1) >= collisionParallelThreshold && d.workers > 1 {
			acc = d.scanParallel(cur, prev, i, n)
		} else {
			acc = scanPartners(cur, prev, i, i+1, n)
		}

		if acc.count == 0 {
			continue
		}
		report.Absorbed += acc.count

		if acc.mass > 0 {
			newMass := int64(a.Mass) + acc.mass
			a.VX = (float64(a.Mass)*a.VX + acc.px) / float64(newMass)
			a.VY = (float64(a.Mass)*a.VY + acc.py) / float64(newMass)
			a.Mass = int32(newMass)
		}
		report.Events = append(report.Events, MergeEvent{
			Survivor:     i,
			Absorbed:     acc.count,
			AbsorbedMass: acc.mass,
			MassAfter:    a.Mass,
		})
	}
	return report
}

// DetectCollisions runs a single-threaded collision pass.
func DetectCollisions(pop *Population) MergeReport {
	return NewCollisionDetector(1).Detect(pop)
}

// scanParallel splits the partner range (i, n) into chunks, one per worker,
// and reduces their partial sums. Each chunk writes sentinels only into its
// own slots.
func (d *CollisionDetector) scanParallel(cur, prev []components.Body, i, n int) partial {
	lo := i + 1
	chunkSize := (n - lo + d.workers - 1) / d.workers

	var wg sync.WaitGroup
	for w := 0; w < d.workers; w++ {
		start := lo + w*chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		d.partials[w] = partial{}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			d.partials[w] = scanPartners(cur, prev, i, start, end)
		}(w, start, end)
	}
	wg.Wait()

	var acc partial
	for _, p := range d.partials {
		acc.mass += p.mass
		acc.px += p.px
		acc.py += p.py
		acc.count += p.count
	}
	return acc
}

// scanPartners tests body i against partners [start, end), marks every hit
// with the sentinel, and returns the absorbed mass and momentum.
func scanPartners(cur, prev []components.Body, i, start, end int) partial {
	a := &cur[i]
	a0 := &prev[i]
	aFrom := Point{a0.X, a0.Y}
	aTo := Point{a.X, a.Y}

	var acc partial
	for k := start; k < end; k++ {
		b := &cur[k]
		if !b.Active() {
			continue
		}
		b0 := &prev[k]
		if distance(a.X, a.Y, b.X, b.Y) <= MergeRadius(a.Mass, b.Mass) ||
			SegmentsIntersect(aFrom, aTo, Point{b0.X, b0.Y}, Point{b.X, b.Y}) {
			acc.mass += int64(b.Mass)
			acc.px += float64(b.Mass) * b.VX
			acc.py += float64(b.Mass) * b.VY
			acc.count++
			b.Remove()
		}
	}
	return acc
}

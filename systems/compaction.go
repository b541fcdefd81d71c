package systems

// Compact removes sentinel-marked bodies from the active range of the
// current generation by swapping each with the last active body and
// shrinking the range. Relative order of survivors is not preserved.
//
// The scan runs from the tail down to index 1: the anchor at index 0 is
// never moved, and a sentinel anchor is left in place for validation.
// Returns the number of bodies removed.
func Compact(pop *Population) int {
	bodies := pop.Current()
	n := pop.Active()
	removed := 0

	for i := n - 1; i >= 1; i-- {
		if bodies[i].Active() {
			continue
		}
		if i != n-1 {
			bodies[i], bodies[n-1] = bodies[n-1], bodies[i]
		}
		n--
		removed++
	}

	pop.SetActive(n)
	return removed
}

// Validate checks the post-compaction invariants: the anchor is live and
// no body in the active range carries the sentinel.
func Validate(pop *Population) error {
	if !pop.Anchor().Active() {
		return newFailure(ErrConsistency, 0, "anchor body is out of its place")
	}
	for i, b := range pop.ActiveBodies() {
		if !b.Active() {
			return newFailure(ErrConsistency, i, "removed body inside the active range")
		}
	}
	return nil
}

package systems

import "math"

// Distance functions

// distanceSq returns the squared distance between two points.
func distanceSq(x1, y1, x2, y2 float64) float64 {
	dx := x1 - x2
	dy := y1 - y2
	return dx*dx + dy*dy
}

// distance returns the Euclidean distance between two points.
func distance(x1, y1, x2, y2 float64) float64 {
	return math.Sqrt(distanceSq(x1, y1, x2, y2))
}

// Segment intersection

// Point is a 2D point used by the segment tests.
type Point struct {
	X, Y float64
}

// orientation returns 0 when p, q, r are collinear, 1 when they turn
// clockwise and 2 when they turn counterclockwise.
func orientation(p, q, r Point) int {
	val := (q.Y-p.Y)*(r.X-q.X) - (q.X-p.X)*(r.Y-q.Y)
	switch {
	case val == 0:
		return 0
	case val > 0:
		return 1
	default:
		return 2
	}
}

// onSegment reports whether q lies on segment pr, given p, q, r collinear.
func onSegment(p, q, r Point) bool {
	return q.X <= math.Max(p.X, r.X) && q.X >= math.Min(p.X, r.X) &&
		q.Y <= math.Max(p.Y, r.Y) && q.Y >= math.Min(p.Y, r.Y)
}

// SegmentsIntersect reports whether segment p1q1 and segment p2q2 share
// at least one point, including touching endpoints and collinear overlap.
// A degenerate segment (p == q) behaves as a single point.
func SegmentsIntersect(p1, q1, p2, q2 Point) bool {
	o1 := orientation(p1, q1, p2)
	o2 := orientation(p1, q1, q2)
	o3 := orientation(p2, q2, p1)
	o4 := orientation(p2, q2, q1)

	if o1 != o2 && o3 != o4 {
		return true
	}

	// Collinear special cases
	if o1 == 0 && onSegment(p1, p2, q1) {
		return true
	}
	if o2 == 0 && onSegment(p1, q2, q1) {
		return true
	}
	if o3 == 0 && onSegment(p2, p1, q2) {
		return true
	}
	if o4 == 0 && onSegment(p2, q1, q2) {
		return true
	}
	return false
}

// Region tests

// outOfSpaceCoord applies the region test to one coordinate.
// The coordinate is truncated toward zero first, so the region is
// the integer range (-border, border).
func outOfSpaceCoord(c float64, border int) bool {
	ic := int(c)
	return ic <= -border || ic >= border
}

// OutOfSpace reports whether a position lies outside the bounded region.
func OutOfSpace(x, y float64, border int) bool {
	return outOfSpaceCoord(x, border) || outOfSpaceCoord(y, border)
}

// MergeRadius returns the capture distance for two bodies of the given
// masses: 5 × min(ceil((a+b)/100), 50).
func MergeRadius(a, b int32) float64 {
	return 5 * math.Min(math.Ceil(float64(int64(a)+int64(b))/100.0), 50.0)
}

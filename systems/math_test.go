package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmentsIntersect(t *testing.T) {
	tests := []struct {
		name           string
		p1, q1, p2, q2 Point
		want           bool
	}{
		{"crossing X", Point{0, 0}, Point{10, 10}, Point{0, 10}, Point{10, 0}, true},
		{"parallel apart", Point{0, 0}, Point{10, 0}, Point{0, 1}, Point{10, 1}, false},
		{"touching endpoint", Point{0, 0}, Point{5, 5}, Point{5, 5}, Point{10, 0}, true},
		{"collinear overlap", Point{0, 0}, Point{10, 0}, Point{5, 0}, Point{15, 0}, true},
		{"collinear disjoint", Point{0, 0}, Point{4, 0}, Point{5, 0}, Point{15, 0}, false},
		{"T junction", Point{0, 0}, Point{10, 0}, Point{5, -5}, Point{5, 0}, true},
		{"near miss", Point{0, 0}, Point{10, 10}, Point{6, 0}, Point{10, 3}, false},
		{"equal points", Point{3, 3}, Point{3, 3}, Point{3, 3}, Point{3, 3}, true},
		{"distinct points", Point{3, 3}, Point{3, 3}, Point{4, 4}, Point{4, 4}, false},
		{"point on segment", Point{0, 0}, Point{10, 10}, Point{5, 5}, Point{5, 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SegmentsIntersect(tt.p1, tt.q1, tt.p2, tt.q2))
			// Symmetric in the two segments
			assert.Equal(t, tt.want, SegmentsIntersect(tt.p2, tt.q2, tt.p1, tt.q1))
		})
	}
}

func TestOutOfSpace(t *testing.T) {
	const border = 100
	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"origin", 0, 0, false},
		{"just inside", 99.9, -99.9, false},
		{"on border", 100, 0, true},
		{"on negative border", 0, -100, true},
		{"truncated negative inside", -99.99, 0, false},
		{"beyond", 250, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutOfSpace(tt.x, tt.y, border))
		})
	}
}

func TestMergeRadius(t *testing.T) {
	tests := []struct {
		a, b int32
		want float64
	}{
		{6, 6, 5},         // ceil(0.12) = 1
		{100, 0, 5},       // exactly one hundred
		{100, 1, 10},      // ceil(1.01) = 2
		{2000, 2000, 200}, // 40 steps
		{2000000, 6, 250}, // capped at 50 steps
		{0, 0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MergeRadius(tt.a, tt.b), "MergeRadius(%d, %d)", tt.a, tt.b)
	}
}

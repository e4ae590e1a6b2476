// Package nearest finds the sample closest to a pointer position.
package nearest

import "math"

// Closest scans items and returns the index whose projected position is
// nearest to px. Ties keep the earliest index. It reports false for an empty slice.
func Closest[T any](items []T, px float64, project func(T) float64) (int, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, item := range items {
		d := math.Abs(project(item) - px)
		if best < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, best >= 0
}

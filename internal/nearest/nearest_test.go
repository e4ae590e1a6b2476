package nearest

import (
	"testing"
)

type point struct{ x float64 }

func identity(p point) float64 { return p.x }

func TestClosest(t *testing.T) {
	pts := []point{{0}, {10}, {20}}

	tests := []struct {
		name string
		px   float64
		want int
	}{
		{name: "nearer to middle", px: 12, want: 1},
		{name: "exact hit", px: 20, want: 2},
		{name: "before first", px: -50, want: 0},
		{name: "after last", px: 500, want: 2},
		{name: "tie keeps first", px: 5, want: 0},
		{name: "tie between middle and last", px: 15, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Closest(pts, tt.px, identity)
			if !ok {
				t.Fatal("ok = false, want true")
			}
			if got != tt.want {
				t.Errorf("Closest(%v) = %d, want %d", tt.px, got, tt.want)
			}
		})
	}
}

func TestClosestSingleElement(t *testing.T) {
	for _, px := range []float64{-1000, 0, 3.5, 1e9} {
		got, ok := Closest([]point{{42}}, px, identity)
		if !ok || got != 0 {
			t.Errorf("Closest(%v) = (%d, %v), want (0, true)", px, got, ok)
		}
	}
}

func TestClosestEmpty(t *testing.T) {
	got, ok := Closest(nil, 10, identity)
	if ok {
		t.Errorf("Closest(nil) = (%d, true), want ok=false", got)
	}
}

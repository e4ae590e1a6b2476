// Package stack turns per-metric time series into stacked bands.
package stack

import (
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/janekbaraniewski/stackarea/internal/core"
)

// Point is one sample of a band: its baseline Y0 and its own thickness Y.
type Point struct {
	X  time.Time
	Y0 float64
	Y  float64
}

// Upper is the top edge of the band at this point.
func (p Point) Upper() float64 { return p.Y0 + p.Y }

type Band []Point

// Compute stacks the series bottom-up in metric order. The baseline of band k
// at index i is the sum of bands 0..k-1 at i. Rows shorter than the first one
// contribute zero where they have no sample.
func Compute(series core.Series) []Band {
	if len(series) == 0 {
		return nil
	}

	n := series.Len()
	base := make([]float64, n)
	bands := make([]Band, len(series))
	for k, row := range series {
		band := make(Band, n)
		for i := 0; i < n; i++ {
			p := Point{X: series[0][i].X, Y0: base[i]}
			if i < len(row) {
				p.X = row[i].X
				p.Y = row[i].Y
			}
			band[i] = p
		}
		floats.Add(base, values(band))
		bands[k] = band
	}
	return bands
}

func values(b Band) []float64 {
	out := make([]float64, len(b))
	for i, p := range b {
		out[i] = p.Y
	}
	return out
}

// Top returns the last band, whose upper edge is the running total.
func Top(bands []Band) Band {
	if len(bands) == 0 {
		return nil
	}
	return bands[len(bands)-1]
}

// Totals returns Y0+Y of the top band for every index.
func Totals(bands []Band) []float64 {
	top := Top(bands)
	out := make([]float64, len(top))
	for i, p := range top {
		out[i] = p.Upper()
	}
	return out
}

// MaxTotal is the largest running total, 0 when there is nothing stacked.
func MaxTotal(bands []Band) float64 {
	totals := Totals(bands)
	if len(totals) == 0 {
		return 0
	}
	return floats.Max(totals)
}

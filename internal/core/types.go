package core

import (
	"time"
)

// Sample is one (time, value) point of a single metric.
type Sample struct {
	X  time.Time `json:"x" yaml:"x"`
	Y  float64   `json:"y" yaml:"y"`
	FY string    `json:"fy,omitempty" yaml:"fy,omitempty"` // pre-formatted value, overrides Y for display
}

// Series holds one sample sequence per metric. All rows share the same
// length and sample i of every row describes the same moment.
type Series [][]Sample

// Len returns the number of samples per metric, taken from the first row.
func (s Series) Len() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Snapshot carries the events and formatted total recorded at time D.
type Snapshot struct {
	D  time.Time `json:"d" yaml:"d"`
	E  []string  `json:"e" yaml:"e"`
	FY string    `json:"fy,omitempty" yaml:"fy,omitempty"`
}

// HasEvents reports whether the snapshot should be drawn as an event tick.
func (s Snapshot) HasEvents() bool {
	return len(s.E) > 0
}

// Margin is the inset between the outer chart box and the plotting area.
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

var DefaultMargin = Margin{Top: 80, Right: 10, Bottom: 40, Left: 40}

// Viewport is the outer chart size plus its margins.
type Viewport struct {
	Width  float64
	Height float64
	Margin Margin
}

func (v Viewport) AvailableWidth() float64 {
	return v.Width - v.Margin.Left - v.Margin.Right
}

func (v Viewport) AvailableHeight() float64 {
	return v.Height - v.Margin.Top - v.Margin.Bottom
}

package widget

import "time"

// Vec is a position in chart units, relative to the plotting area unless noted.
type Vec struct {
	X, Y float64
}

type Line struct {
	X1, Y1, X2, Y2 float64
}

// Area is one stacked band as a closed shape: Upper runs left to right along
// y0+y, Lower along y0.
type Area struct {
	Color string
	Upper []Vec
	Lower []Vec
}

type Text struct {
	Pos  Vec
	Text string
}

// LegendEntry is a metric label in the info panel with its color dot.
type LegendEntry struct {
	Text
	Color string
}

type InfoPanel struct {
	Origin   Vec // relative to the plotting area
	Date     Text
	Total    Text
	Snapshot Text
	Metrics  []LegendEntry
}

type AxisTick struct {
	X  float64
	At time.Time
}

// Transition describes an animated move of the time axis. Seq increases on
// every update so renderers can tell a new transition from one in flight.
type Transition struct {
	From, To float64
	Seq      int
}

type EventTick struct {
	X, Y   float64
	Length float64
	Label  string
}

const (
	eventTickLength      = 8
	eventTickLengthFocus = 12
)

// Scene is everything a renderer needs to draw the chart in its current state.
type Scene struct {
	Width, Height   float64
	Translate       Vec // plotting area origin inside the outer box
	AvailableWidth  float64
	AvailableHeight float64

	Axis       Transition
	AxisTicks  []AxisTick
	AxisLayout string
	YTicks     []float64
	YMax       float64

	Areas      []Area
	Outlines   [][]Vec
	Scanner    Line
	Info       InfoPanel
	EventTicks []EventTick
}

func (s Scene) clone() Scene {
	out := s
	out.AxisTicks = append([]AxisTick(nil), s.AxisTicks...)
	out.YTicks = append([]float64(nil), s.YTicks...)
	out.Areas = make([]Area, len(s.Areas))
	for i, a := range s.Areas {
		out.Areas[i] = Area{
			Color: a.Color,
			Upper: append([]Vec(nil), a.Upper...),
			Lower: append([]Vec(nil), a.Lower...),
		}
	}
	out.Outlines = make([][]Vec, len(s.Outlines))
	for i, o := range s.Outlines {
		out.Outlines[i] = append([]Vec(nil), o...)
	}
	out.Info.Metrics = append([]LegendEntry(nil), s.Info.Metrics...)
	out.EventTicks = append([]EventTick(nil), s.EventTicks...)
	return out
}

// Package term draws a chart scene on a terminal canvas and measures the
// terminal for the chart widget.
package term

import (
	"math"
	"strings"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/canvas/graph"
	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/janekbaraniewski/stackarea/internal/widget"
)

// CellSize is how many chart units one terminal cell covers.
type CellSize struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

var DefaultCellSize = CellSize{W: 4, H: 10}

const (
	dotRune       = '●'
	tickRune      = '│'
	tickFocusRune = '┃'
)

// Surface is the terminal side of the chart: it reports the terminal width
// as the container measurement and turns scenes into strings.
type Surface struct {
	cell   CellSize
	cols   int
	styles Styles
}

func NewSurface(cell CellSize) *Surface {
	if cell.W <= 0 || cell.H <= 0 {
		cell = DefaultCellSize
	}
	return &Surface{cell: cell, styles: StylesFor(ActiveTheme())}
}

// Resize records the terminal width in columns.
func (s *Surface) Resize(cols int) {
	s.cols = cols
}

func (s *Surface) Cols() int { return s.cols }

func (s *Surface) SetStyles(st Styles) {
	s.styles = st
}

func (s *Surface) MeasuredWidth() float64 {
	return float64(s.cols) * s.cell.W
}

func (s *Surface) TextWidth(str string) float64 {
	return float64(ansi.StringWidth(str)) * s.cell.W
}

// PlotX converts a terminal column into a position on the plotting area,
// using the center of the cell.
func (s *Surface) PlotX(col int, scene widget.Scene) float64 {
	return (float64(col)+0.5)*s.cell.W - scene.Translate.X
}

// Rows is the height of the drawn scene in terminal rows.
func (s *Surface) Rows(scene widget.Scene) int {
	return int(math.Ceil(scene.Height / s.cell.H))
}

func (s *Surface) col(x float64) int { return int(math.Round(x / s.cell.W)) }
func (s *Surface) row(y float64) int { return int(math.Round(y / s.cell.H)) }

func (s *Surface) point(scene widget.Scene, v widget.Vec) canvas.Point {
	return canvas.Point{X: s.col(scene.Translate.X + v.X), Y: s.row(scene.Translate.Y + v.Y)}
}

// Draw renders the scene. axisY overrides the axis row position so an
// in-flight transition can be shown; pass scene.Axis.To to draw it settled.
func (s *Surface) Draw(scene widget.Scene, axisY float64) string {
	cols := int(math.Ceil(scene.Width / s.cell.W))
	rows := s.Rows(scene)
	if cols <= 0 || rows <= 0 {
		return ""
	}
	m := canvas.New(cols, rows)
	b := board{c: &m, cols: cols, rows: rows}

	s.drawAreas(b, scene)
	s.drawOutlines(b, scene)
	s.drawAxis(b, scene, axisY)
	s.drawScanner(b, scene)
	s.drawEventTicks(b, scene)
	s.drawInfo(b, scene)

	return m.View()
}

// board is a canvas with its size in cells.
type board struct {
	c          *canvas.Model
	cols, rows int
}

func (b board) set(p canvas.Point, r rune, style lipgloss.Style) {
	if p.X < 0 || p.Y < 0 || p.X >= b.cols || p.Y >= b.rows {
		return
	}
	b.c.SetCell(p, canvas.NewCellWithStyle(r, style))
}

// drawAreas fills each band column by column: a cell is painted when its
// vertical center lies between the band's baseline and upper edge.
func (s *Surface) drawAreas(b board, scene widget.Scene) {
	first := s.col(scene.Translate.X)
	last := s.col(scene.Translate.X + scene.AvailableWidth)
	for _, area := range scene.Areas {
		style := s.styles.BandStyle(area.Color)
		for cx := first; cx <= last; cx++ {
			x := float64(cx)*s.cell.W - scene.Translate.X
			top, ok := interpolate(area.Upper, x, s.cell.W/2)
			if !ok {
				continue
			}
			bottom, _ := interpolate(area.Lower, x, s.cell.W/2)
			for cy := 0; cy < b.rows; cy++ {
				center := (float64(cy)+0.5)*s.cell.H - scene.Translate.Y
				if center >= top && center < bottom {
					b.set(canvas.Point{X: cx, Y: cy}, runes.FullBlock, style)
				}
			}
		}
	}
}

// interpolate returns the y of the polyline at x. Outside the polyline it
// reports false unless x is within slack of a lone point.
func interpolate(pts []widget.Vec, x, slack float64) (float64, bool) {
	switch len(pts) {
	case 0:
		return 0, false
	case 1:
		if math.Abs(pts[0].X-x) <= slack {
			return pts[0].Y, true
		}
		return 0, false
	}
	if x < pts[0].X-slack || x > pts[len(pts)-1].X+slack {
		return 0, false
	}
	if x <= pts[0].X {
		return pts[0].Y, true
	}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		if x > b.X {
			continue
		}
		if b.X == a.X {
			return b.Y, true
		}
		t := (x - a.X) / (b.X - a.X)
		return a.Y + t*(b.Y-a.Y), true
	}
	return pts[len(pts)-1].Y, true
}

func (s *Surface) drawOutlines(b board, scene widget.Scene) {
	for _, outline := range scene.Outlines {
		for i := 1; i < len(outline); i++ {
			p1 := s.point(scene, outline[i-1])
			p2 := s.point(scene, outline[i])
			graph.DrawLinePoints(b.c, graph.GetLinePoints(p1, p2), runes.ThinLineStyle, s.styles.Outline)
		}
	}
}

func (s *Surface) drawAxis(b board, scene widget.Scene, axisY float64) {
	row := s.row(scene.Translate.Y + axisY)
	if row < 0 || row >= b.rows {
		return
	}
	start := s.col(scene.Translate.X)
	end := s.col(scene.Translate.X + scene.AvailableWidth)
	for x := start; x <= end; x++ {
		b.set(canvas.Point{X: x, Y: row}, '─', s.styles.Axis)
	}

	taken := -1
	for _, tick := range scene.AxisTicks {
		x := s.col(scene.Translate.X + tick.X)
		b.set(canvas.Point{X: x, Y: row}, '┬', s.styles.Axis)
		label := tick.At.Format(scene.AxisLayout)
		lw := ansi.StringWidth(label)
		lx := x - lw/2
		if over := lx + lw - b.cols; over > 0 {
			lx -= over
		}
		if lx < 0 {
			lx = 0
		}
		if lx <= taken || row+1 >= b.rows {
			continue
		}
		s.text(b, canvas.Point{X: lx, Y: row + 1}, label, s.styles.AxisLabel)
		taken = lx + lw
	}
}

func (s *Surface) drawScanner(b board, scene widget.Scene) {
	sc := scene.Scanner
	if len(scene.Areas) == 0 || sc.Y2 <= sc.Y1 {
		return
	}
	top := s.point(scene, widget.Vec{X: sc.X1, Y: sc.Y1})
	bottom := s.point(scene, widget.Vec{X: sc.X2, Y: sc.Y2})
	graph.DrawLinePoints(b.c, graph.GetLinePoints(top, bottom), runes.ThinLineStyle, s.styles.Scanner)
}

func (s *Surface) drawEventTicks(b board, scene widget.Scene) {
	for _, tick := range scene.EventTicks {
		base := s.point(scene, widget.Vec{X: tick.X, Y: tick.Y})
		n := int(math.Ceil(tick.Length / s.cell.H))
		r, style := tickRune, s.styles.Tick
		if tick.Length > 8 {
			r, style = tickFocusRune, s.styles.TickFocus
		}
		for i := 1; i <= n; i++ {
			b.set(canvas.Point{X: base.X, Y: base.Y - i + 1}, r, style)
		}
	}
}

func (s *Surface) drawInfo(b board, scene widget.Scene) {
	info := scene.Info
	at := func(t widget.Text) canvas.Point {
		return s.point(scene, widget.Vec{X: info.Origin.X + t.Pos.X, Y: info.Origin.Y + t.Pos.Y})
	}

	s.text(b, at(info.Date), info.Date.Text, s.styles.Date)
	s.text(b, at(info.Total), info.Total.Text, s.styles.Text)
	s.text(b, at(info.Snapshot), info.Snapshot.Text, s.styles.Text)

	for _, entry := range info.Metrics {
		p := at(entry.Text)
		dot := widget.Text{Pos: widget.Vec{X: entry.Pos.X - 10, Y: entry.Pos.Y}}
		b.set(at(dot), dotRune, s.styles.BandStyle(entry.Color))
		s.text(b, p, entry.Text.Text, s.styles.Text)
	}
}

func (s *Surface) text(b board, p canvas.Point, str string, style lipgloss.Style) {
	if str == "" || p.Y < 0 || p.Y >= b.rows {
		return
	}
	if p.X < 0 {
		p.X = 0
	}
	room := b.cols - p.X
	if room <= 0 {
		return
	}
	if ansi.StringWidth(str) > room {
		str = ansi.Truncate(str, room, "…")
	}
	b.c.SetStringWithStyle(p, str, style)
}

// Footer renders a one-line hint under the chart.
func Footer(width int, parts ...string) string {
	line := strings.Join(parts, "  ·  ")
	if width > 0 && ansi.StringWidth(line) > width {
		line = ansi.Truncate(line, width, "…")
	}
	return StylesFor(ActiveTheme()).Dim.Render(line)
}

// Package widget drives a stacked-area chart: it builds the stacked geometry,
// binds scales to the current size and keeps the scanner and info panel in
// sync with the selected sample. Drawing is left to a renderer reading Scene.
package widget

import (
	"errors"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/janekbaraniewski/stackarea/internal/core"
	"github.com/janekbaraniewski/stackarea/internal/scale"
	"github.com/janekbaraniewski/stackarea/internal/stack"
)

var (
	ErrNotRendered = errors.New("widget: Render has not been called")
	ErrNoSample    = errors.New("widget: no sample at index")
)

// Container is the host the chart lives in.
type Container interface {
	// MeasuredWidth is the live outer width available to the chart.
	MeasuredWidth() float64
	// TextWidth is the rendered width of s in chart units.
	TextWidth(s string) float64
}

// Selection is the externally visible lifecycle of the chart. It only ever
// moves from Unselected to Selected.
type Selection int

const (
	Unselected Selection = iota
	Selected
)

func (s Selection) String() string {
	switch s {
	case Unselected:
		return "unselected"
	case Selected:
		return "selected"
	}
	return "unknown"
}

const axisTickCount = 5

// Info panel layout, in chart units relative to the plotting area.
const (
	infoOffsetY     = -60
	infoTotalY      = 18
	infoSnapshotY   = 54
	legendStartX    = 120
	legendRowHeight = 18
	legendPerColumn = 3
	legendPadding   = 70
	legendTextX     = 10
	scannerOverhang = 10
	axisLift        = 30
)

func LongDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

func FormatValue(v float64) string {
	return humanize.Ftoa(v)
}

type Option func(*StackArea)

// WithDateFormatter replaces the long-form date used in the info panel.
func WithDateFormatter(fn func(time.Time) string) Option {
	return func(w *StackArea) { w.formatDate = fn }
}

// WithValueFormatter replaces the formatting of raw numeric values and totals.
func WithValueFormatter(fn func(float64) string) Option {
	return func(w *StackArea) { w.formatValue = fn }
}

func WithLogger(entry *log.Entry) Option {
	return func(w *StackArea) { w.log = entry }
}

// StackArea is a single chart instance. It is not safe for concurrent use;
// the owner serialises Update, Select and PointerMove calls.
type StackArea struct {
	cfg         Config
	container   Container
	formatDate  func(time.Time) string
	formatValue func(float64) string
	log         *log.Entry

	rendered bool
	state    Selection
	selected int

	bands  []stack.Band
	top    stack.Band
	frames []core.Frame
	events []core.Snapshot
	time   *scale.Time
	y      *scale.Linear

	scene Scene
}

// New creates a chart. container may be nil, in which case the configured
// width is used as the measurement.
func New(cfg Config, container Container, opts ...Option) *StackArea {
	w := &StackArea{
		cfg:         cfg,
		container:   container,
		formatDate:  LongDate,
		formatValue: FormatValue,
		log:         log.WithField("component", "stackarea"),
		selected:    -1,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *StackArea) State() Selection { return w.state }

// SelectedIndex returns the active sample index, or -1 before the first selection.
func (w *StackArea) SelectedIndex() int { return w.selected }

func (w *StackArea) Rendered() bool { return w.rendered }

// Scene returns a copy of the drawable state.
func (w *StackArea) Scene() Scene { return w.scene.clone() }

// Bands returns the stacked geometry computed by Render.
func (w *StackArea) Bands() []stack.Band { return w.bands }

// TimeScale and ValueScale are nil until Render.
func (w *StackArea) TimeScale() *scale.Time   { return w.time }
func (w *StackArea) ValueScale() *scale.Linear { return w.y }

// Render performs the one-time setup and the first Update. Calling it again
// returns the chart unchanged.
func (w *StackArea) Render() (*StackArea, error) {
	if w.rendered {
		return w, nil
	}

	w.bands = stack.Compute(w.cfg.Data)
	w.top = stack.Top(w.bands)
	w.frames = core.BuildFrames(w.cfg.Data, w.cfg.Snapshots)
	w.events = core.Events(w.cfg.Snapshots)

	w.initScales()
	w.initInfo()
	w.initEvents()
	w.rendered = true

	w.log.WithFields(log.Fields{
		"metrics": len(w.cfg.Data),
		"samples": w.cfg.Data.Len(),
		"events":  len(w.events),
	}).Debug("chart rendered")

	if err := w.Update(); err != nil {
		return w, err
	}
	return w, nil
}

func (w *StackArea) initScales() {
	var xs []time.Time
	for _, row := range w.cfg.Data {
		for _, s := range row {
			xs = append(xs, s.X)
		}
	}
	w.time = scale.Extent(xs)
	w.y = scale.NewLinear(0, stack.MaxTotal(w.bands)).Nice()

	ticks := w.time.Ticks(axisTickCount)
	w.scene.AxisLayout = scale.TickLayout(ticks)
	w.scene.AxisTicks = lo.Map(ticks, func(t time.Time, _ int) AxisTick {
		return AxisTick{At: t}
	})
	_, yMax := w.y.Domain()
	w.scene.YMax = yMax
	w.scene.YTicks = w.y.Ticks(axisTickCount)
}

// initInfo lays the metric legend out in columns of three; each new column
// starts after the widest-known label of the previous one plus padding.
func (w *StackArea) initInfo() {
	info := InfoPanel{
		Origin:   Vec{X: 0, Y: infoOffsetY},
		Date:     Text{Pos: Vec{X: 0, Y: 0}},
		Total:    Text{Pos: Vec{X: 0, Y: infoTotalY}},
		Snapshot: Text{Pos: Vec{X: 0, Y: infoSnapshotY}},
	}

	prevX := float64(legendStartX)
	for i, name := range w.cfg.Metrics {
		info.Metrics = append(info.Metrics, LegendEntry{
			Text: Text{
				Pos:  Vec{X: prevX + legendTextX, Y: -1 + float64(i%legendPerColumn)*legendRowHeight},
				Text: name,
			},
			Color: w.cfg.Colors.Color(i),
		})
		if i%legendPerColumn == legendPerColumn-1 {
			prevX += w.textWidth(name) + legendPadding
		}
	}
	w.scene.Info = info
}

func (w *StackArea) initEvents() {
	w.scene.EventTicks = lo.Map(w.events, func(e core.Snapshot, _ int) EventTick {
		return EventTick{Length: eventTickLength, Label: joinEvents(e.E)}
	})
}

func (w *StackArea) textWidth(s string) float64 {
	if w.container == nil {
		return float64(len([]rune(s)))
	}
	return w.container.TextWidth(s)
}

// Update re-measures the container and recomputes every position. The first
// Update after Render also selects the last sample.
func (w *StackArea) Update() error {
	if !w.rendered {
		return ErrNotRendered
	}

	width := w.cfg.Width
	if w.container != nil {
		width = w.container.MeasuredWidth()
	}
	if width < MinWidth {
		width = MinWidth
	}
	w.SetWidth(width)

	vp := w.Viewport()
	availW, availH := vp.AvailableWidth(), vp.AvailableHeight()

	w.time.SetRange(0, availW)
	w.y.SetRange(availH, 0)

	w.scene.Width = vp.Width
	w.scene.Height = vp.Height
	w.scene.Translate = Vec{X: vp.Margin.Left, Y: vp.Margin.Top}
	w.scene.AvailableWidth = availW
	w.scene.AvailableHeight = availH

	axisY := availH + vp.Margin.Bottom - axisLift
	from := axisY
	if w.scene.Axis.Seq > 0 {
		from = w.scene.Axis.To
	}
	w.scene.Axis = Transition{From: from, To: axisY, Seq: w.scene.Axis.Seq + 1}
	for i := range w.scene.AxisTicks {
		w.scene.AxisTicks[i].X = w.time.Project(w.scene.AxisTicks[i].At)
	}

	w.updateAreas()

	w.scene.Scanner.Y1 = 0
	w.scene.Scanner.Y2 = availH + scannerOverhang

	for i, e := range w.events {
		w.scene.EventTicks[i].X = w.time.Project(e.D)
		w.scene.EventTicks[i].Y = availH + scannerOverhang
	}

	if w.state == Unselected {
		if n := w.cfg.Data.Len(); n > 0 {
			return w.Select(n - 1)
		}
	} else if w.selected >= 0 {
		// keep the scanner on the selected sample after a resize
		sx := w.time.Project(w.frames[w.selected].X)
		w.scene.Scanner.X1, w.scene.Scanner.X2 = sx, sx
	}
	return nil
}

func (w *StackArea) updateAreas() {
	areas := make([]Area, len(w.bands))
	outlines := make([][]Vec, len(w.bands))
	for k, band := range w.bands {
		upper := make([]Vec, len(band))
		lower := make([]Vec, len(band))
		for i, p := range band {
			x := w.time.Project(p.X)
			upper[i] = Vec{X: x, Y: w.y.Project(p.Upper())}
			lower[i] = Vec{X: x, Y: w.y.Project(p.Y0)}
		}
		areas[k] = Area{Color: w.cfg.Colors.Color(k), Upper: upper, Lower: lower}
		outlines[k] = upper
	}
	w.scene.Areas = areas
	w.scene.Outlines = outlines
}

package widget

import (
	"github.com/janekbaraniewski/stackarea/internal/core"
)

const (
	DefaultWidth  = 350
	DefaultHeight = 150
	MinWidth      = 100
)

// Config is the data and geometry a chart is built from. It is fixed at
// construction; only the width changes afterwards, following the container.
type Config struct {
	Data      core.Series
	Metrics   []string
	Snapshots []core.Snapshot
	Colors    core.Palette
	Width     float64
	Height    float64
	Margin    core.Margin
}

func DefaultConfig() Config {
	return Config{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Margin: core.DefaultMargin,
	}
}

// Data returns the series the chart was built from.
func (w *StackArea) Data() core.Series { return w.cfg.Data }

func (w *StackArea) Metrics() []string { return w.cfg.Metrics }

func (w *StackArea) Snapshots() []core.Snapshot { return w.cfg.Snapshots }

func (w *StackArea) Colors() core.Palette { return w.cfg.Colors }

func (w *StackArea) Width() float64 { return w.cfg.Width }

func (w *StackArea) Height() float64 { return w.cfg.Height }

func (w *StackArea) Margin() core.Margin { return w.cfg.Margin }

// SetWidth overrides the outer width; the next Update replaces it again with
// the container's measurement when a container is attached.
func (w *StackArea) SetWidth(width float64) {
	w.cfg.Width = width
}

// Viewport returns the current outer size and margins.
func (w *StackArea) Viewport() core.Viewport {
	return core.Viewport{Width: w.cfg.Width, Height: w.cfg.Height, Margin: w.cfg.Margin}
}

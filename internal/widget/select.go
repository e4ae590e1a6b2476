package widget

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/janekbaraniewski/stackarea/internal/core"
	"github.com/janekbaraniewski/stackarea/internal/nearest"
)

func joinEvents(events []string) string {
	return strings.Join(events, ", ")
}

func (w *StackArea) displayValue(s core.Sample) string {
	if s.FY != "" {
		return s.FY
	}
	return w.formatValue(s.Y)
}

// Select makes sample index the active one: it moves the scanner, rewrites
// the metric labels, date, total and event text, and highlights the event
// tick at the same instant.
//
// When no snapshot shares the sample's timestamp the event and total texts
// keep whatever they showed before.
func (w *StackArea) Select(index int) error {
	if !w.rendered {
		return ErrNotRendered
	}
	if index < 0 || index >= len(w.frames) {
		return fmt.Errorf("%w %d (have %d)", ErrNoSample, index, len(w.frames))
	}
	frame := w.frames[index]

	sx := w.time.Project(frame.X)
	w.scene.Scanner.X1 = sx
	w.scene.Scanner.X2 = sx

	for i, v := range frame.Values {
		if i >= len(w.scene.Info.Metrics) {
			break
		}
		w.scene.Info.Metrics[i].Text.Text = w.cfg.Metrics[i] + ": " + w.displayValue(v)
	}

	if snap := frame.Snapshot; snap != nil {
		w.scene.Info.Snapshot.Text = joinEvents(snap.E)
		total := snap.FY
		if total == "" && index < len(w.top) {
			total = w.formatValue(w.top[index].Upper())
		}
		w.scene.Info.Total.Text = "Total: " + total
	} else {
		w.log.WithFields(log.Fields{
			"index": index,
			"time":  frame.X,
		}).Debug("no snapshot at selected sample")
	}

	w.scene.Info.Date.Text = w.formatDate(frame.X)

	for i := range w.scene.EventTicks {
		w.scene.EventTicks[i].Length = eventTickLength
	}
	if frame.Event >= 0 && frame.Event < len(w.scene.EventTicks) {
		w.scene.EventTicks[frame.Event].Length = eventTickLengthFocus
	}

	w.state = Selected
	w.selected = index
	return nil
}

// PointerMove selects the sample nearest to px, measured from the left edge
// of the plotting area. It does nothing when there are no samples.
func (w *StackArea) PointerMove(px float64) error {
	if !w.rendered {
		return ErrNotRendered
	}
	if len(w.cfg.Data) == 0 {
		return nil
	}
	idx, ok := nearest.Closest(w.cfg.Data[0], px, func(s core.Sample) float64 {
		return w.time.Project(s.X)
	})
	if !ok {
		return nil
	}
	return w.Select(idx)
}

// Step moves the selection by delta samples, clamped to the ends.
func (w *StackArea) Step(delta int) error {
	n := len(w.frames)
	if n == 0 {
		return nil
	}
	idx := w.selected
	if idx < 0 {
		idx = n - 1
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return w.Select(idx)
}

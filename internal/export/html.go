// Package export renders chart documents as standalone HTML pages and serves
// them over HTTP.
package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/charts"

	"github.com/janekbaraniewski/stackarea/internal/source"
	"github.com/janekbaraniewski/stackarea/internal/stack"
	"github.com/janekbaraniewski/stackarea/internal/widget"
)

const (
	axisDateLayout = "2006-01-02 15:04"
	areaOpacity    = 0.6
)

// Options tweak the generated page.
type Options struct {
	Title  string
	Width  string
	Height string
	// Refresh reloads the page every RefreshSeconds when positive.
	RefreshSeconds int
}

func DefaultOptions() Options {
	return Options{
		Title:  "Stacked area",
		Width:  "100vw",
		Height: "80vh",
	}
}

// Subtitle summarises the last sample: its date and the total, preferring
// the formatted total of a snapshot recorded at the same instant.
func Subtitle(doc source.Document) string {
	series := doc.CoreSeries()
	n := series.Len()
	if n == 0 {
		return "no samples"
	}
	last := series[0][n-1].X

	total := ""
	for _, s := range doc.Snapshots {
		if s.D.Equal(last) && s.FY != "" {
			total = s.FY
		}
	}
	if total == "" {
		totals := stack.Totals(stack.Compute(series))
		total = widget.FormatValue(totals[n-1])
	}
	return fmt.Sprintf("%s · Total: %s", widget.LongDate(last), total)
}

// Chart builds an echarts line chart with one stacked, filled series per
// metric.
func Chart(doc source.Document, opts Options) *charts.Line {
	series := doc.CoreSeries()

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.InitOpts{
			PageTitle: opts.Title,
			Width:     opts.Width,
			Height:    opts.Height,
		},
		charts.TitleOpts{Title: opts.Title, Subtitle: Subtitle(doc)},
		charts.TooltipOpts{Show: true, Trigger: "axis"},
		charts.ToolboxOpts{Show: true},
	)
	if colors := paletteColors(doc, len(series)); len(colors) > 0 {
		line.SetGlobalOptions(colors)
	}

	xs := make([]string, series.Len())
	for i := range xs {
		xs[i] = series[0][i].X.Format(axisDateLayout)
	}
	line.AddXAxis(xs)

	for m, row := range series {
		ys := make([]float64, len(row))
		for i, s := range row {
			ys[i] = s.Y
		}
		name := fmt.Sprintf("metric %d", m)
		if m < len(doc.Metrics) {
			name = doc.Metrics[m]
		}
		line.AddYAxis(name, ys,
			charts.LineOpts{Stack: "total"},
			charts.AreaStyleOpts{Opacity: areaOpacity},
		)
	}

	if opts.RefreshSeconds > 0 {
		line.AddJSFuncs(fmt.Sprintf("setTimeout(function(){location.reload();}, %d);", opts.RefreshSeconds*1000))
	}
	return line
}

// paletteColors lists one color per metric, cycling the palette. It is empty
// when the document has no palette.
func paletteColors(doc source.Document, n int) charts.ColorOpts {
	var colors charts.ColorOpts
	for i := 0; i < n; i++ {
		c := doc.Colors.Color(i)
		if c == "" {
			return nil
		}
		colors = append(colors, c)
	}
	return colors
}

// HTML writes doc as a self-contained echarts page.
func HTML(w io.Writer, doc source.Document, opts Options) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := Chart(doc, opts).Render(w); err != nil {
		return fmt.Errorf("export: render html: %w", err)
	}
	return nil
}

// Package source loads chart documents from JSON, YAML or SQLite and watches
// them for changes.
package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/stackarea/internal/core"
	"github.com/janekbaraniewski/stackarea/internal/widget"
)

var (
	ErrUnsupportedFormat = errors.New("source: unsupported document format")
	ErrShape             = errors.New("source: metrics and series do not match")
)

// Timestamp decodes either an RFC 3339 string or a number of milliseconds
// since the Unix epoch.
type Timestamp struct {
	time.Time
}

func At(t time.Time) Timestamp { return Timestamp{Time: t.UTC()} }

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	parsed, err := parseTimestamp(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// UnmarshalYAML accepts the same forms as UnmarshalJSON. Unquoted YAML
// timestamps arrive already parsed.
func (t *Timestamp) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var native time.Time
	if err := unmarshal(&native); err == nil && !native.IsZero() {
		t.Time = native.UTC()
		return nil
	}
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := parseTimestamp(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalYAML() (interface{}, error) {
	return t.UTC().Format(time.RFC3339Nano), nil
}

type Point struct {
	X  Timestamp `json:"x" yaml:"x"`
	Y  float64   `json:"y" yaml:"y"`
	FY string    `json:"fy,omitempty" yaml:"fy,omitempty"`
}

type Snapshot struct {
	D  Timestamp `json:"d" yaml:"d"`
	E  []string  `json:"e,omitempty" yaml:"e,omitempty"`
	FY string    `json:"fy,omitempty" yaml:"fy,omitempty"`
}

// Document is a chart as stored on disk: metric names, optional palette,
// one point row per metric and the snapshots recorded along the way.
type Document struct {
	Metrics   []string     `json:"metrics" yaml:"metrics"`
	Colors    core.Palette `json:"colors,omitempty" yaml:"colors,omitempty"`
	Series    [][]Point    `json:"series" yaml:"series"`
	Snapshots []Snapshot   `json:"snapshots,omitempty" yaml:"snapshots,omitempty"`
}

// Validate checks that every metric has a row and every row a metric.
func (d Document) Validate() error {
	if len(d.Metrics) != len(d.Series) {
		return fmt.Errorf("%w: %d metrics, %d series", ErrShape, len(d.Metrics), len(d.Series))
	}
	return nil
}

func (d Document) CoreSeries() core.Series {
	out := make(core.Series, len(d.Series))
	for m, row := range d.Series {
		out[m] = lo.Map(row, func(p Point, _ int) core.Sample {
			return core.Sample{X: p.X.Time, Y: p.Y, FY: p.FY}
		})
	}
	return out
}

func (d Document) CoreSnapshots() []core.Snapshot {
	return lo.Map(d.Snapshots, func(s Snapshot, _ int) core.Snapshot {
		return core.Snapshot{D: s.D.Time, E: s.E, FY: s.FY}
	})
}

// Apply copies the document data into a chart configuration, keeping the
// geometry of base. base's palette is kept when the document has none.
func (d Document) Apply(base widget.Config) widget.Config {
	cfg := base
	cfg.Data = d.CoreSeries()
	cfg.Metrics = append([]string(nil), d.Metrics...)
	cfg.Snapshots = d.CoreSnapshots()
	if len(d.Colors) > 0 {
		cfg.Colors = d.Colors
	}
	return cfg
}

// FromSeries builds a document from chart data.
func FromSeries(metrics []string, colors core.Palette, series core.Series, snapshots []core.Snapshot) Document {
	doc := Document{
		Metrics: append([]string(nil), metrics...),
		Colors:  colors,
		Series:  make([][]Point, len(series)),
	}
	for m, row := range series {
		doc.Series[m] = lo.Map(row, func(s core.Sample, _ int) Point {
			return Point{X: At(s.X), Y: s.Y, FY: s.FY}
		})
	}
	doc.Snapshots = lo.Map(snapshots, func(s core.Snapshot, _ int) Snapshot {
		return Snapshot{D: At(s.D), E: s.E, FY: s.FY}
	})
	return doc
}

package source

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/janekbaraniewski/stackarea/internal/core"
	"github.com/janekbaraniewski/stackarea/internal/widget"
)

var (
	mar1 = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	mar2 = time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)
)

const jsonDoc = `{
  "metrics": ["bugs", "smells"],
  "colors": [["#111"], ["#222"]],
  "series": [
    [{"x": "2024-03-01T00:00:00Z", "y": 1}, {"x": 1709337600000, "y": 2}],
    [{"x": 1709251200000, "y": 3}, {"x": "2024-03-02", "y": 4, "fy": "four"}]
  ],
  "snapshots": [
    {"d": "2024-03-02T00:00:00Z", "e": ["v1"], "fy": "6"}
  ]
}`

const yamlDoc = `metrics:
  - bugs
  - smells
colors:
  - ["#111"]
  - ["#222"]
series:
  - - x: 2024-03-01T00:00:00Z
      y: 1
    - x: 1709337600000
      y: 2
  - - x: "2024-03-01"
      y: 3
    - x: 2024-03-02T00:00:00Z
      y: 4
      fy: four
snapshots:
  - d: 2024-03-02T00:00:00Z
    e:
      - v1
    fy: "6"
`

func checkDecoded(t *testing.T, doc Document) {
	t.Helper()
	if len(doc.Metrics) != 2 || doc.Metrics[0] != "bugs" || doc.Metrics[1] != "smells" {
		t.Fatalf("metrics = %v", doc.Metrics)
	}
	if len(doc.Series) != 2 || len(doc.Series[0]) != 2 || len(doc.Series[1]) != 2 {
		t.Fatalf("series shape = %v", doc.Series)
	}
	wantX := []time.Time{mar1, mar2}
	for m, row := range doc.Series {
		for i, p := range row {
			if !p.X.Equal(wantX[i]) {
				t.Errorf("series[%d][%d].X = %v, want %v", m, i, p.X, wantX[i])
			}
		}
	}
	if doc.Series[1][1].Y != 4 || doc.Series[1][1].FY != "four" {
		t.Errorf("series[1][1] = %+v", doc.Series[1][1])
	}
	if len(doc.Snapshots) != 1 || !doc.Snapshots[0].D.Equal(mar2) || doc.Snapshots[0].FY != "6" {
		t.Errorf("snapshots = %+v", doc.Snapshots)
	}
	if len(doc.Colors) != 2 || doc.Colors.Color(1) != "#222" {
		t.Errorf("colors = %v", doc.Colors)
	}
}

func TestDecodeJSON(t *testing.T) {
	doc, err := Decode([]byte(jsonDoc), FormatJSON)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	checkDecoded(t, doc)
}

func TestDecodeYAML(t *testing.T) {
	doc, err := Decode([]byte(yamlDoc), FormatYAML)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	checkDecoded(t, doc)
}

func TestDecodeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
		want   error
	}{
		{name: "shape", data: `{"metrics": ["a", "b"], "series": [[]]}`, format: FormatJSON, want: ErrShape},
		{name: "format", data: `{}`, format: Format("toml"), want: ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.data), tt.format); !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Decode([]byte(`{"metrics": ["a"], "series": [[{"x": "yesterday", "y": 1}]]}`), FormatJSON); err == nil {
		t.Error("Decode() accepted an unparseable timestamp")
	}
}

func TestFormatOf(t *testing.T) {
	tests := map[string]Format{
		"a.json":       FormatJSON,
		"b.YAML":       FormatYAML,
		"c.yml":        FormatYAML,
		"d.db":         FormatSQLite,
		"e.sqlite3":    FormatSQLite,
		"dir/f.sqlite": FormatSQLite,
	}
	for path, want := range tests {
		got, err := FormatOf(path)
		if err != nil || got != want {
			t.Errorf("FormatOf(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
	if _, err := FormatOf("chart.csv"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("FormatOf(csv) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestEncodeDecodeKeepsTimestamps(t *testing.T) {
	doc, err := Decode([]byte(jsonDoc), FormatJSON)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	for _, format := range []Format{FormatJSON, FormatYAML} {
		var buf bytes.Buffer
		if err := Encode(&buf, doc, format); err != nil {
			t.Fatalf("Encode(%s) error: %v", format, err)
		}
		back, err := Decode(buf.Bytes(), format)
		if err != nil {
			t.Fatalf("Decode(%s) error: %v\n%s", format, err, buf.String())
		}
		checkDecoded(t, back)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chart.yaml")
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	checkDecoded(t, doc)

	if _, err := LoadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("LoadFile(missing) error = nil")
	}
	if _, err := LoadFile(filepath.Join(dir, "chart.db")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("LoadFile(db) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestApplyKeepsGeometry(t *testing.T) {
	doc, err := Decode([]byte(jsonDoc), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	base := widget.DefaultConfig()
	base.Width = 500
	base.Colors = core.DefaultPalette

	cfg := doc.Apply(base)
	if cfg.Width != 500 || cfg.Margin != core.DefaultMargin {
		t.Errorf("geometry = %v/%+v, want base geometry", cfg.Width, cfg.Margin)
	}
	if cfg.Data.Len() != 2 || cfg.Data[1][1].FY != "four" {
		t.Errorf("data = %+v", cfg.Data)
	}
	if err := core.ValidateAlignment(cfg.Data, cfg.Snapshots); err != nil {
		t.Errorf("ValidateAlignment() error: %v", err)
	}
	if cfg.Colors.Color(0) != "#111" {
		t.Errorf("colors = %v, want document palette", cfg.Colors)
	}

	doc.Colors = nil
	if got := doc.Apply(base).Colors.Color(0); got != core.DefaultPalette.Color(0) {
		t.Errorf("color(0) = %q, want base palette", got)
	}
}

func TestFromSeries(t *testing.T) {
	series := core.Series{{{X: mar1, Y: 1, FY: "one"}}}
	snaps := []core.Snapshot{{D: mar1, E: []string{"v1"}}}
	doc := FromSeries([]string{"bugs"}, nil, series, snaps)
	if err := doc.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if !doc.Series[0][0].X.Equal(mar1) || doc.Series[0][0].FY != "one" {
		t.Errorf("point = %+v", doc.Series[0][0])
	}
	if got := doc.CoreSnapshots(); len(got) != 1 || got[0].E[0] != "v1" {
		t.Errorf("snapshots = %+v", got)
	}
}

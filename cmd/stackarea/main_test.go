package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/janekbaraniewski/stackarea/internal/config"
	"github.com/janekbaraniewski/stackarea/internal/core"
	"github.com/janekbaraniewski/stackarea/internal/logging"
)

const misalignedDoc = `{
  "metrics": ["bugs"],
  "series": [[{"x": "2024-03-01", "y": 1}]],
  "snapshots": [{"d": "2024-03-05", "e": ["v1"]}]
}`

const alignedDoc = `{
  "metrics": ["bugs", "smells"],
  "series": [
    [{"x": "2024-03-01", "y": 1}, {"x": "2024-03-02", "y": 2}],
    [{"x": "2024-03-01", "y": 3}, {"x": "2024-03-02", "y": 4}]
  ],
  "snapshots": [{"d": "2024-03-02", "e": ["v1"]}]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(logging.DebugEnvVar, "")
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoadSettingsFlagOverrides(t *testing.T) {
	path := writeFile(t, "settings.json", `{"chart": {"width": 500, "height": 200}, "theme": "Nord"}`)

	opts := &rootOptions{configPath: path, height: 120, theme: "Dracula", watch: true}
	cfg, err := opts.loadSettings()
	if err != nil {
		t.Fatalf("loadSettings() error: %v", err)
	}
	if cfg.Chart.Width != 500 {
		t.Errorf("width = %v, want 500 from the file", cfg.Chart.Width)
	}
	if cfg.Chart.Height != 120 {
		t.Errorf("height = %v, want 120 from the flag", cfg.Chart.Height)
	}
	if cfg.Theme != "Dracula" || !cfg.Watch || cfg.Chart.Lenient {
		t.Errorf("cfg = theme %q watch %v lenient %v", cfg.Theme, cfg.Watch, cfg.Chart.Lenient)
	}
}

func TestWidgetConfigFromSettings(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Chart.Width = 640
	cfg.Chart.Margin = core.Margin{Top: 10}

	got := widgetConfig(cfg)
	if got.Width != 640 || got.Height != 150 || got.Margin.Top != 10 {
		t.Errorf("widgetConfig() = %+v", got)
	}
	if cs := cellSize(cfg); cs.W != 4 || cs.H != 10 {
		t.Errorf("cellSize() = %+v", cs)
	}
}

func TestLoadDocumentAlignment(t *testing.T) {
	path := writeFile(t, "doc.json", misalignedDoc)
	ctx := context.Background()

	if _, err := loadDocument(ctx, path, false); !errors.Is(err, core.ErrMisaligned) {
		t.Errorf("loadDocument(strict) error = %v, want ErrMisaligned", err)
	}
	doc, err := loadDocument(ctx, path, true)
	if err != nil {
		t.Fatalf("loadDocument(lenient) error: %v", err)
	}
	if len(doc.Metrics) != 1 {
		t.Errorf("metrics = %v", doc.Metrics)
	}
}

func TestExportCommandWritesHTML(t *testing.T) {
	doc := writeFile(t, "doc.json", alignedDoc)
	out := filepath.Join(t.TempDir(), "pages", "chart.html")
	settings := filepath.Join(t.TempDir(), "settings.json")

	if _, err := runRoot(t, "export", doc, "-o", out, "--title", "Quality", "--config", settings); err != nil {
		t.Fatalf("export error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	page := string(data)
	for _, want := range []string{"Quality", "bugs", "smells"} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestExportCommandRejectsMisaligned(t *testing.T) {
	doc := writeFile(t, "doc.json", misalignedDoc)
	settings := filepath.Join(t.TempDir(), "settings.json")

	if _, err := runRoot(t, "export", doc, "--config", settings); !errors.Is(err, core.ErrMisaligned) {
		t.Errorf("export error = %v, want ErrMisaligned", err)
	}
}

func TestDemoCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "demo.db")

	stdout, err := runRoot(t, "demo", out, "--days", "14", "--seed", "7")
	if err != nil {
		t.Fatalf("demo error: %v", err)
	}
	if !strings.Contains(stdout, "wrote 70 samples across 5 metrics") {
		t.Errorf("demo output = %q", stdout)
	}

	doc, err := loadDocument(context.Background(), out, false)
	if err != nil {
		t.Fatalf("load demo: %v", err)
	}
	if len(doc.Metrics) != 5 || len(doc.Series[0]) != 14 || len(doc.Snapshots) != 14 {
		t.Errorf("demo doc: %d metrics, %d samples, %d snapshots",
			len(doc.Metrics), len(doc.Series[0]), len(doc.Snapshots))
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runRoot(t, "version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if !strings.HasPrefix(out, "stackarea dev") {
		t.Errorf("version output = %q", out)
	}
}

func TestVersionCheckSkipsDevBuild(t *testing.T) {
	out, err := runRoot(t, "version", "--check")
	if err != nil {
		t.Fatalf("version --check error: %v", err)
	}
	if !strings.Contains(out, "development build") {
		t.Errorf("version --check output = %q", out)
	}
}

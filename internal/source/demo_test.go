package source

import (
	"math/rand"
	"testing"
	"time"

	"github.com/janekbaraniewski/stackarea/internal/core"
)

func TestDemoIsAligned(t *testing.T) {
	now := time.Date(2024, time.June, 30, 15, 0, 0, 0, time.UTC)
	doc := Demo(now, 30, rand.New(rand.NewSource(1)))

	if err := doc.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	series := doc.CoreSeries()
	if series.Len() != 30 || len(doc.Snapshots) != 30 {
		t.Fatalf("samples = %d, snapshots = %d, want 30", series.Len(), len(doc.Snapshots))
	}
	if err := core.ValidateAlignment(series, doc.CoreSnapshots()); err != nil {
		t.Errorf("ValidateAlignment() error: %v", err)
	}
	last := series[0][29].X
	if !last.Equal(time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last sample at %v, want June 30", last)
	}
	for _, row := range series {
		for _, s := range row {
			if s.Y < 0 {
				t.Fatalf("negative value %v", s.Y)
			}
		}
	}
	if n := len(core.Events(doc.CoreSnapshots())); n != 4 {
		t.Errorf("events = %d, want 4", n)
	}
}

func TestDemoEmpty(t *testing.T) {
	doc := Demo(time.Now(), 0, rand.New(rand.NewSource(1)))
	if len(doc.Metrics) != 0 || len(doc.Series) != 0 {
		t.Errorf("Demo(0) = %+v, want empty", doc)
	}
}

package source

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/janekbaraniewski/stackarea/internal/core"
)

var demoMetrics = []struct {
	name string
	base float64
}{
	{"blocker", 4},
	{"critical", 18},
	{"major", 120},
	{"minor", 340},
	{"info", 75},
}

const demoReleaseEvery = 7

// Demo generates a plausible daily issue-count history ending at now, with
// a release event every week and a formatted total on every snapshot.
func Demo(now time.Time, days int, rng *rand.Rand) Document {
	if days <= 0 {
		return Document{}
	}
	start := now.UTC().Truncate(24*time.Hour).AddDate(0, 0, -(days - 1))

	doc := Document{
		Colors: core.DefaultPalette,
		Series: make([][]Point, len(demoMetrics)),
	}
	for _, m := range demoMetrics {
		doc.Metrics = append(doc.Metrics, m.name)
	}

	level := make([]float64, len(demoMetrics))
	for m, dm := range demoMetrics {
		level[m] = dm.base
	}

	release := 0
	for i := 0; i < days; i++ {
		day := At(start.AddDate(0, 0, i))
		total := 0.0
		for m := range demoMetrics {
			level[m] = math.Max(0, math.Round(jitter(level[m], 0.08, rng)))
			total += level[m]
			doc.Series[m] = append(doc.Series[m], Point{X: day, Y: level[m]})
		}

		snap := Snapshot{D: day, FY: humanize.Comma(int64(total)) + " issues"}
		if i%demoReleaseEvery == demoReleaseEvery-1 {
			release++
			snap.E = []string{fmt.Sprintf("v1.%d", release)}
			if release%3 == 0 {
				snap.E = append(snap.E, "quality profile changed")
			}
		}
		doc.Snapshots = append(doc.Snapshots, snap)
	}
	return doc
}

// jitter moves v by up to ±ratio of itself, drifting slightly upwards.
func jitter(v, ratio float64, rng *rand.Rand) float64 {
	if v <= 0 {
		return rng.Float64() * 2
	}
	delta := (rng.Float64()*2 - 0.9) * ratio
	return v * (1 + delta)
}

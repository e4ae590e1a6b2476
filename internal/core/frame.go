package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
)

// ErrMisaligned is wrapped by ValidateAlignment failures.
var ErrMisaligned = errors.New("series and snapshots are misaligned")

// Frame joins everything known about one sample index: the metric values,
// the snapshot recorded at the same instant and its position in the event list.
type Frame struct {
	Index    int
	X        time.Time
	Values   []Sample
	Snapshot *Snapshot // nil when no snapshot shares X
	Event    int       // index into Events(snapshots), -1 when none
}

// Events returns the snapshots that carry at least one event label, in input order.
func Events(snapshots []Snapshot) []Snapshot {
	return lo.Filter(snapshots, func(s Snapshot, _ int) bool {
		return s.HasEvents()
	})
}

func timeKey(t time.Time) int64 {
	return t.UnixNano()
}

// BuildFrames merges series and snapshots by exact timestamp. When several
// snapshots (or events) share one timestamp, the last one wins.
func BuildFrames(series Series, snapshots []Snapshot) []Frame {
	n := series.Len()
	if n == 0 {
		return nil
	}

	snapByTime := make(map[int64]int, len(snapshots))
	for i, s := range snapshots {
		snapByTime[timeKey(s.D)] = i
	}
	eventByTime := make(map[int64]int)
	for i, e := range Events(snapshots) {
		eventByTime[timeKey(e.D)] = i
	}

	frames := make([]Frame, n)
	for i := 0; i < n; i++ {
		x := series[0][i].X
		f := Frame{Index: i, X: x, Event: -1, Values: make([]Sample, len(series))}
		for m, row := range series {
			if i < len(row) {
				f.Values[m] = row[i]
			}
		}
		if si, ok := snapByTime[timeKey(x)]; ok {
			snap := snapshots[si]
			f.Snapshot = &snap
		}
		if ei, ok := eventByTime[timeKey(x)]; ok {
			f.Event = ei
		}
		frames[i] = f
	}
	return frames
}

// ValidateAlignment checks the invariants the chart relies on but does not
// enforce: equal row lengths, non-decreasing time, identical timestamps across
// metrics and a matching sample for every snapshot.
func ValidateAlignment(series Series, snapshots []Snapshot) error {
	n := series.Len()
	for m, row := range series {
		if len(row) != n {
			return fmt.Errorf("%w: metric %d has %d samples, metric 0 has %d", ErrMisaligned, m, len(row), n)
		}
		for i := range row {
			if i > 0 && row[i].X.Before(row[i-1].X) {
				return fmt.Errorf("%w: metric %d sample %d goes back in time", ErrMisaligned, m, i)
			}
			if !row[i].X.Equal(series[0][i].X) {
				return fmt.Errorf("%w: metric %d sample %d at %s, metric 0 at %s",
					ErrMisaligned, m, i, row[i].X.Format(time.RFC3339), series[0][i].X.Format(time.RFC3339))
			}
		}
	}

	if n == 0 {
		return nil
	}
	known := make(map[int64]bool, n)
	for _, s := range series[0] {
		known[timeKey(s.X)] = true
	}
	for i, s := range snapshots {
		if !known[timeKey(s.D)] {
			return fmt.Errorf("%w: snapshot %d at %s has no sample", ErrMisaligned, i, s.D.Format(time.RFC3339))
		}
	}
	return nil
}

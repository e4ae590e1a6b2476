package scale

import (
	"time"
)

// Time maps a time domain onto a pixel range.
type Time struct {
	lin    Linear
	t0, t1 time.Time
}

// NewTime builds a scale over [t0, t1]. Positions are measured as offsets
// from t0 so nanosecond timestamps keep their precision.
func NewTime(t0, t1 time.Time) *Time {
	return &Time{
		lin: Linear{d0: 0, d1: float64(t1.Sub(t0)), r1: 1},
		t0:  t0,
		t1:  t1,
	}
}

// Extent returns a time scale over the earliest and latest instants given.
func Extent(times []time.Time) *Time {
	if len(times) == 0 {
		return NewTime(time.Time{}, time.Time{})
	}
	lo, hi := times[0], times[0]
	for _, t := range times[1:] {
		if t.Before(lo) {
			lo = t
		}
		if t.After(hi) {
			hi = t
		}
	}
	return NewTime(lo, hi)
}

func (s *Time) Domain() (time.Time, time.Time) { return s.t0, s.t1 }
func (s *Time) Range() (float64, float64)      { return s.lin.Range() }

func (s *Time) SetRange(r0, r1 float64) *Time {
	s.lin.SetRange(r0, r1)
	return s
}

func (s *Time) Project(t time.Time) float64 {
	return s.lin.Project(float64(t.Sub(s.t0)))
}

func (s *Time) Invert(px float64) time.Time {
	return s.t0.Add(time.Duration(s.lin.Invert(px)))
}

var tickIntervals = []time.Duration{
	time.Second,
	5 * time.Second,
	15 * time.Second,
	30 * time.Second,
	time.Minute,
	5 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
	time.Hour,
	3 * time.Hour,
	6 * time.Hour,
	12 * time.Hour,
	24 * time.Hour,
	2 * 24 * time.Hour,
	7 * 24 * time.Hour,
}

const (
	month = 30 * 24 * time.Hour
	year  = 365 * 24 * time.Hour
)

// Ticks returns round instants inside the domain, about n of them. Spans
// longer than a few weeks step by calendar months or years.
func (s *Time) Ticks(n int) []time.Time {
	if n <= 0 || !s.t1.After(s.t0) {
		if s.t0.IsZero() {
			return nil
		}
		return []time.Time{s.t0}
	}

	target := s.t1.Sub(s.t0) / time.Duration(n)
	switch {
	case target > 6*month:
		years := int(target/year) + 1
		return calendarTicks(s.t0, s.t1, func(t time.Time) time.Time {
			return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
		}, 0, years)
	case target > 10*24*time.Hour:
		months := int(target/month) + 1
		return calendarTicks(s.t0, s.t1, func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		}, months, 0)
	}

	interval := tickIntervals[len(tickIntervals)-1]
	for _, iv := range tickIntervals {
		if iv >= target {
			interval = iv
			break
		}
	}

	var out []time.Time
	for t := s.t0.Truncate(interval); !t.After(s.t1); t = t.Add(interval) {
		if !t.Before(s.t0) {
			out = append(out, t)
		}
	}
	return out
}

func calendarTicks(t0, t1 time.Time, floor func(time.Time) time.Time, months, years int) []time.Time {
	var out []time.Time
	for t := floor(t0); !t.After(t1); t = t.AddDate(years, months, 0) {
		if !t.Before(t0) {
			out = append(out, t)
		}
	}
	return out
}

// TickLayout picks a time layout suited to the spacing of the ticks.
func TickLayout(ticks []time.Time) string {
	if len(ticks) < 2 {
		return "Jan 2"
	}
	step := ticks[1].Sub(ticks[0])
	switch {
	case step >= 300*24*time.Hour:
		return "2006"
	case step >= 28*24*time.Hour:
		return "Jan 2006"
	case step >= 24*time.Hour:
		return "Jan 2"
	case step >= time.Minute:
		return "15:04"
	default:
		return "15:04:05"
	}
}

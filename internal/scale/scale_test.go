package scale

import (
	"math"
	"testing"
	"time"
)

func TestLinearNice(t *testing.T) {
	tests := []struct {
		name   string
		d1     float64
		wantHi float64
	}{
		{name: "already round", d1: 12, wantHi: 12},
		{name: "rounds up to 2-step", d1: 17.3, wantHi: 18},
		{name: "hundreds", d1: 923, wantHi: 1000},
		{name: "fractional", d1: 0.87, wantHi: 0.9},
		{name: "degenerate", d1: 0, wantHi: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewLinear(0, tt.d1).Nice()
			lo, hi := s.Domain()
			if lo != 0 {
				t.Errorf("lo = %v, want 0", lo)
			}
			if math.Abs(hi-tt.wantHi) > 1e-9 {
				t.Errorf("hi = %v, want %v", hi, tt.wantHi)
			}
		})
	}
}

func TestLinearInvertedRange(t *testing.T) {
	s := NewLinear(0, 100).SetRange(30, 0)
	if got := s.Project(0); got != 30 {
		t.Errorf("Project(0) = %v, want 30", got)
	}
	if got := s.Project(100); got != 0 {
		t.Errorf("Project(100) = %v, want 0", got)
	}
	if got := s.Project(50); got != 15 {
		t.Errorf("Project(50) = %v, want 15", got)
	}
	if got := s.Invert(15); got != 50 {
		t.Errorf("Invert(15) = %v, want 50", got)
	}
}

func TestLinearDegenerateDomain(t *testing.T) {
	s := NewLinear(0, 0).Nice().SetRange(30, 0)
	if got := s.Project(0); got != 30 {
		t.Errorf("Project(0) = %v, want 30", got)
	}
	if got := s.Ticks(5); len(got) != 1 || got[0] != 0 {
		t.Errorf("Ticks(5) = %v, want [0]", got)
	}
}

func TestLinearTicks(t *testing.T) {
	got := NewLinear(0, 1).Ticks(5)
	want := []float64{0, 0.2, 0.4, 0.6, 0.8, 1}
	if len(got) != len(want) {
		t.Fatalf("Ticks = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Ticks[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTimeProjectAfterResize(t *testing.T) {
	t0 := time.Date(2016, time.March, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(48 * time.Hour)
	mid := t0.Add(24 * time.Hour)

	s := NewTime(t0, t1).SetRange(0, 350)
	if got := s.Project(mid); got != 175 {
		t.Fatalf("Project(mid) = %v, want 175", got)
	}

	s.SetRange(0, 700)
	if r0, r1 := s.Range(); r0 != 0 || r1 != 700 {
		t.Errorf("Range() = [%v, %v], want [0, 700]", r0, r1)
	}
	if got := s.Project(mid); got != 350 {
		t.Errorf("Project(mid) after resize = %v, want 350", got)
	}
	if got := s.Invert(350); !got.Equal(mid) {
		t.Errorf("Invert(350) = %v, want %v", got, mid)
	}
}

func TestTimeExtent(t *testing.T) {
	a := time.Unix(300, 0)
	b := time.Unix(100, 0)
	c := time.Unix(200, 0)

	lo, hi := Extent([]time.Time{a, b, c}).Domain()
	if !lo.Equal(b) || !hi.Equal(a) {
		t.Errorf("Domain() = %v..%v, want %v..%v", lo, hi, b, a)
	}

	single := Extent([]time.Time{a}).SetRange(0, 100)
	if got := single.Project(a); got != 0 {
		t.Errorf("single-instant Project = %v, want 0", got)
	}

	empty := Extent(nil).SetRange(0, 100)
	if got := empty.Ticks(5); got != nil {
		t.Errorf("empty Ticks = %v, want nil", got)
	}
}

func TestTimeTicks(t *testing.T) {
	t0 := time.Date(2016, time.March, 1, 0, 0, 0, 0, time.UTC)

	t.Run("daily", func(t *testing.T) {
		ticks := NewTime(t0, t0.AddDate(0, 0, 5)).Ticks(5)
		if len(ticks) != 6 {
			t.Fatalf("len(ticks) = %d, want 6", len(ticks))
		}
		if got := ticks[1].Sub(ticks[0]); got != 24*time.Hour {
			t.Errorf("step = %v, want 24h", got)
		}
		if got := TickLayout(ticks); got != "Jan 2" {
			t.Errorf("TickLayout = %q, want %q", got, "Jan 2")
		}
	})

	t.Run("monthly", func(t *testing.T) {
		ticks := NewTime(t0, t0.AddDate(0, 6, 0)).Ticks(5)
		for _, tk := range ticks {
			if tk.Day() != 1 || tk.Before(t0) {
				t.Errorf("tick %v is not a month start inside the domain", tk)
			}
		}
		if got := TickLayout(ticks); got != "Jan 2006" {
			t.Errorf("TickLayout = %q, want %q", got, "Jan 2006")
		}
	})

	t.Run("hourly", func(t *testing.T) {
		ticks := NewTime(t0, t0.Add(10*time.Hour)).Ticks(5)
		if len(ticks) < 2 {
			t.Fatalf("ticks = %v, want several", ticks)
		}
		if got := TickLayout(ticks); got != "15:04" {
			t.Errorf("TickLayout = %q, want %q", got, "15:04")
		}
	})
}

package term

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"

	"github.com/janekbaraniewski/stackarea/internal/widget"
)

const (
	transitionFPS   = 60
	springFrequency = 6.0
	springDamping   = 1.0
	settleTolerance = 0.01
)

// FrameInterval is the delay between two animation frames.
var FrameInterval = time.Second / transitionFPS

// AxisTransition animates the time axis row between two positions with a
// critically damped spring.
type AxisTransition struct {
	spring  harmonica.Spring
	started bool
	seq     int
	pos     float64
	vel    float64
	target float64
}

func NewAxisTransition() *AxisTransition {
	return &AxisTransition{
		spring: harmonica.NewSpring(harmonica.FPS(transitionFPS), springFrequency, springDamping),
	}
}

// Start picks up a transition from the scene. The first one jumps straight to
// its From position; later ones continue from wherever the axis is now.
// It reports whether the transition is new.
func (a *AxisTransition) Start(t widget.Transition) bool {
	if a.started && t.Seq == a.seq {
		return false
	}
	if !a.started {
		a.pos = t.From
		a.vel = 0
		a.started = true
	}
	a.seq = t.Seq
	a.target = t.To
	return true
}

// Detach forgets the sequence number so the next Start is taken as new even
// when it comes from a freshly built chart. The position is kept.
func (a *AxisTransition) Detach() {
	a.seq = -1
}

// Step advances one frame and reports whether the axis has settled.
func (a *AxisTransition) Step() bool {
	if a.Settled() {
		a.pos, a.vel = a.target, 0
		return true
	}
	a.pos, a.vel = a.spring.Update(a.pos, a.vel, a.target)
	if a.Settled() {
		a.pos, a.vel = a.target, 0
		return true
	}
	return false
}

func (a *AxisTransition) Settled() bool {
	return math.Abs(a.pos-a.target) < settleTolerance && math.Abs(a.vel) < settleTolerance
}

// Y is the current axis position in chart units.
func (a *AxisTransition) Y() float64 { return a.pos }

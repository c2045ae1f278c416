// Package counter animates the displayed financial-risk total from zero up
// to the target value in a fixed number of frames.
package counter

import (
	"math"
	"time"

	"github.com/AditthyaSS/VulnExplain/internal/session"
)

const (
	// Frames is the number of animation steps.
	Frames = 60
	// Duration is the total animation time.
	Duration = time.Second
	// Interval is the delay between frames.
	Interval = Duration / Frames
)

// ValueAt returns the displayed value at the given frame (1-based).
// Frame 0 shows 0; the last frame snaps exactly to target.
func ValueAt(target float64, frame int) float64 {
	if frame <= 0 {
		return 0
	}
	if frame >= Frames {
		return target
	}
	return math.Floor(target / Frames * float64(frame))
}

// Counter holds the state of one animation. Callers schedule a Step every
// Interval with the token returned by Start; steps carrying a stale token are
// ignored.
type Counter struct {
	tokens  session.Tracker
	target  float64
	frame   int
	value   float64
	running bool
}

// Start begins a new animation toward target. Any animation in flight is
// superseded.
func (c *Counter) Start(target float64) session.Token {
	c.target = target
	c.frame = 0
	c.value = 0
	c.running = true
	return c.tokens.Next()
}

// Step advances one frame if tok is current. It reports whether the step was
// applied and whether the animation has finished.
func (c *Counter) Step(tok session.Token) (applied, done bool) {
	if !c.running || !c.tokens.Valid(tok) {
		return false, !c.running
	}

	c.frame++
	c.value = ValueAt(c.target, c.frame)
	if c.frame >= Frames {
		c.running = false
		return true, true
	}
	return true, false
}

// Clear drops the animation, invalidating pending steps, and shows 0.
func (c *Counter) Clear() {
	c.tokens.Invalidate()
	c.target = 0
	c.frame = 0
	c.value = 0
	c.running = false
}

// Value returns the currently displayed amount.
func (c *Counter) Value() float64 {
	return c.value
}

// Target returns the value the animation settles on.
func (c *Counter) Target() float64 {
	return c.target
}

// Running reports whether frames remain.
func (c *Counter) Running() bool {
	return c.running
}

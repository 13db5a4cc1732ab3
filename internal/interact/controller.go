// Package interact turns raw pointer input into chart navigation: wheel
// zoom about the cursor and drag panning, with an idle timer that resets
// the cursor once a drag stops moving.
package interact

import (
	"time"

	"github.com/sirupsen/logrus"
)

// State is the gesture state of a Controller.
type State uint8

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "DRAGGING"
	}
	return "IDLE"
}

// Cursor is the pointer shape the host should show.
type Cursor uint8

const (
	CursorDefault Cursor = iota
	CursorClosedHand
)

func (c Cursor) String() string {
	if c == CursorClosedHand {
		return "closed-hand"
	}
	return "default"
}

// Target is what the controller navigates. Pixel arguments are relative to
// the plot area.
type Target interface {
	// ZoomAt scales the date range by factor about the date under pixel.
	ZoomAt(factor, pixel float64) error
	// PanPixels shifts the date range by a horizontal drag of dx pixels.
	PanPixels(dx float64) error
}

// Config holds gesture settings.
type Config struct {
	ZoomInFactor  float64       `mapstructure:"zoom_in_factor"`
	ZoomOutFactor float64       `mapstructure:"zoom_out_factor"`
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`
	// Vertical reads the zoom pivot from the y coordinate, for charts whose
	// date axis runs top to bottom.
	Vertical bool `mapstructure:"vertical"`
}

// DefaultConfig returns the default gesture settings.
func DefaultConfig() Config {
	return Config{
		ZoomInFactor:  0.9,
		ZoomOutFactor: 1.1,
		IdleTimeout:   100 * time.Millisecond,
	}
}

// Effect tells the host what to do after an event.
type Effect struct {
	// Handled is false when the event was ignored.
	Handled bool
	Cursor  Cursor
	// ArmIdle asks the host to deliver IdleTimeout(Seq) after the idle delay.
	ArmIdle bool
	Seq     uint64
}

// Controller is the {idle, dragging} gesture state machine. It is not safe
// for concurrent use; the host feeds it from its event loop.
type Controller struct {
	target Target
	cfg    Config
	state  State
	cursor Cursor
	lastX  float64
	seq    uint64
	log    logrus.FieldLogger
}

// NewController creates a new Controller driving target.
func NewController(target Target, cfg Config) *Controller {
	def := DefaultConfig()
	if cfg.ZoomInFactor <= 0 || cfg.ZoomInFactor >= 1 {
		cfg.ZoomInFactor = def.ZoomInFactor
	}
	if cfg.ZoomOutFactor <= 1 {
		cfg.ZoomOutFactor = def.ZoomOutFactor
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	return &Controller{
		target: target,
		cfg:    cfg,
		log:    logrus.WithField("component", "interact"),
	}
}

// SetLogger replaces the controller's logger.
func (c *Controller) SetLogger(l logrus.FieldLogger) { c.log = l }

func (c *Controller) State() State   { return c.state }
func (c *Controller) Cursor() Cursor { return c.cursor }

// IdleDelay is how long the host waits before calling IdleTimeout.
func (c *Controller) IdleDelay() time.Duration { return c.cfg.IdleTimeout }

func (c *Controller) effect(handled bool) Effect {
	return Effect{Handled: handled, Cursor: c.cursor}
}

func (c *Controller) arm() Effect {
	c.seq++
	e := c.effect(true)
	e.ArmIdle = true
	e.Seq = c.seq
	return e
}

// Scroll zooms in for a positive delta and out for a negative one, about
// the date under the cursor. Zero deltas and scrolls during a drag are
// ignored.
func (c *Controller) Scroll(delta, x, y float64) Effect {
	if delta == 0 || c.state == Dragging {
		return c.effect(false)
	}
	factor := c.cfg.ZoomOutFactor
	if delta > 0 {
		factor = c.cfg.ZoomInFactor
	}
	pivot := x
	if c.cfg.Vertical {
		pivot = y
	}
	if err := c.target.ZoomAt(factor, pivot); err != nil {
		c.log.WithError(err).Debug("zoom rejected")
		return c.effect(false)
	}
	return c.effect(true)
}

// Press starts a drag at x.
func (c *Controller) Press(x float64) Effect {
	c.state = Dragging
	c.lastX = x
	return c.arm()
}

// Drag pans by the horizontal movement since the last event.
func (c *Controller) Drag(x float64) Effect {
	if c.state != Dragging {
		return c.effect(false)
	}
	dx := x - c.lastX
	c.lastX = x
	c.cursor = CursorClosedHand
	if dx != 0 {
		if err := c.target.PanPixels(dx); err != nil {
			c.log.WithError(err).Debug("pan rejected")
		}
	}
	return c.arm()
}

// Release ends a drag.
func (c *Controller) Release() Effect {
	if c.state != Dragging {
		return c.effect(false)
	}
	c.state = Idle
	c.cursor = CursorDefault
	c.seq++
	return c.effect(true)
}

// IdleTimeout resets the cursor when seq is still the newest armed timer.
func (c *Controller) IdleTimeout(seq uint64) Effect {
	if seq != c.seq {
		return c.effect(false)
	}
	c.cursor = CursorDefault
	return c.effect(true)
}

// Package countdown owns the remaining-time state machine behind the timer
// display.
package countdown

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const TimesUp = "Time's up!"

type State int

const (
	Idle State = iota
	Running
	Paused
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Inputs gives the controller the raw text of the minutes and seconds fields.
type Inputs interface {
	Minutes() string
	Seconds() string
}

// Hooks are the side effects a frontend attaches to the state machine.
// Any of them may be nil.
type Hooks struct {
	// Burst fires when the countdown enters Running.
	Burst func()
	// Alert plays the finish tone.
	Alert func()
	// Notify surfaces the finish message to the user.
	Notify func(msg string)
}

// Controls reports which of the three actions are currently enabled.
type Controls struct {
	Start bool
	Pause bool
	Reset bool
}

// Controller is not safe for concurrent use; the frontend calls it from the
// goroutine that runs its frame loop.
type Controller struct {
	clock  clockwork.Clock
	period time.Duration
	inputs Inputs
	hooks  Hooks

	ticker    clockwork.Ticker
	remaining int
	state     State
	display   string
	controls  Controls
}

// New builds an idle controller whose display shows the current inputs.
func New(clock clockwork.Clock, period time.Duration, inputs Inputs, hooks Hooks) *Controller {
	if period <= 0 {
		period = time.Second
	}
	c := &Controller{
		clock:    clock,
		period:   period,
		inputs:   inputs,
		hooks:    hooks,
		state:    Idle,
		controls: Controls{Start: true},
	}
	c.display = FormatClock(Duration(inputs.Minutes(), inputs.Seconds()))
	return c
}

func (c *Controller) State() State { return c.state }
func (c *Controller) Running() bool { return c.state == Running }
func (c *Controller) Remaining() int { return c.remaining }
func (c *Controller) Display() string { return c.display }
func (c *Controller) Controls() Controls { return c.controls }

// C returns the tick channel while running and nil otherwise, so it can sit
// in a select without firing.
func (c *Controller) C() <-chan time.Time {
	if c.ticker == nil {
		return nil
	}
	return c.ticker.Chan()
}

// Start begins or resumes the countdown. A fresh start reads the input
// fields; a zero total leaves the controller where it was.
func (c *Controller) Start() {
	if c.state == Running {
		return
	}
	if c.remaining == 0 {
		c.remaining = Duration(c.inputs.Minutes(), c.inputs.Seconds())
	}
	if c.remaining <= 0 {
		c.remaining = 0
		log.Debug().Msg("start ignored, duration is zero")
		return
	}

	c.setState(Running)
	c.controls = Controls{Start: false, Pause: true, Reset: true}
	if c.hooks.Burst != nil {
		c.hooks.Burst()
	}
	c.ticker = c.clock.NewTicker(c.period)
}

// Tick handles one timer firing.
func (c *Controller) Tick() {
	if c.state != Running {
		return
	}
	if c.remaining > 0 {
		c.remaining--
		c.display = FormatClock(c.remaining)
		return
	}
	c.finish()
}

// Poll handles at most one pending tick without blocking.
func (c *Controller) Poll() bool {
	ch := c.C()
	if ch == nil {
		return false
	}
	select {
	case <-ch:
		c.Tick()
		return true
	default:
		return false
	}
}

// Pause stops the tick and keeps the remaining time for a later Start.
func (c *Controller) Pause() {
	if c.state != Running {
		return
	}
	c.stopTicker()
	c.setState(Paused)
	c.controls.Start = true
	c.controls.Pause = false
}

// Reset zeroes the remaining time and redisplays the input fields.
func (c *Controller) Reset() {
	c.stopTicker()
	c.remaining = 0
	c.display = FormatClock(Duration(c.inputs.Minutes(), c.inputs.Seconds()))
	c.setState(Idle)
	c.controls = Controls{Start: true}
}

func (c *Controller) finish() {
	c.stopTicker()
	c.setState(Finished)
	c.controls.Start = true
	c.controls.Pause = false

	if c.hooks.Alert != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Warn().Interface("panic", r).Msg("alert failed")
				}
			}()
			c.hooks.Alert()
		}()
	}
	if c.hooks.Notify != nil {
		c.hooks.Notify(TimesUp)
	}
}

func (c *Controller) stopTicker() {
	if c.ticker == nil {
		return
	}
	c.ticker.Stop()
	c.ticker = nil
}

func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	log.Debug().
		Str("from", c.state.String()).
		Str("to", s.String()).
		Int("remaining", c.remaining).
		Msg("countdown state")
	c.state = s
}

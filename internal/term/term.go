// Package term runs the countdown in a terminal with tcell. Particles are
// drawn one per cell.
package term

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/iburimskiy/countdown-fireworks/internal/audio"
	"github.com/iburimskiy/countdown-fireworks/internal/config"
	"github.com/iburimskiy/countdown-fireworks/internal/countdown"
	"github.com/iburimskiy/countdown-fireworks/internal/particles"
)

const (
	fieldMinutes = iota
	fieldSeconds
)

const (
	particleRune = '●'
	fieldMaxLen  = 4
)

type Alerter interface {
	Alert() error
}

var (
	styleText     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleDim      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleClock    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleFocus    = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
	styleButton   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorLightSteelBlue)
	styleDisabled = tcell.StyleDefault.Foreground(tcell.ColorGray).Background(tcell.ColorDarkSlateGray)
	styleModal    = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGold).Bold(true)
)

type app struct {
	screen tcell.Screen
	clock  clockwork.Clock
	cfg    *config.Config
	ctrl   *countdown.Controller
	anim   *particles.Animator
	player Alerter

	fields [2]string
	focus  int
	modal  string

	anchorX, anchorY float64
}

func newApp(screen tcell.Screen, clock clockwork.Clock, cfg *config.Config, player Alerter) *app {
	a := &app{
		screen: screen,
		clock:  clock,
		cfg:    cfg,
		player: player,
		fields: [2]string{strconv.Itoa(cfg.Timer.Minutes), strconv.Itoa(cfg.Timer.Seconds)},
	}
	p := cfg.Particles
	a.anim = particles.New(particles.Settings{
		Count:      p.Count,
		Speed:      cfg.Terminal.Speed,
		Decay:      p.Decay,
		Radius:     1,
		Saturation: p.Saturation,
		Lightness:  p.Lightness,
	}, nil)
	a.ctrl = countdown.New(clock, cfg.Timer.Tick.Duration, a, countdown.Hooks{
		Burst:  func() { a.anim.Spawn(a.anchorX, a.anchorY) },
		Alert:  a.alert,
		Notify: func(msg string) { a.modal = msg },
	})
	a.layout()
	return a
}

func (a *app) Minutes() string { return a.fields[fieldMinutes] }
func (a *app) Seconds() string { return a.fields[fieldSeconds] }

func (a *app) alert() {
	if err := a.player.Alert(); err != nil && !errors.Is(err, audio.ErrMuted) {
		log.Warn().Err(err).Msg("alert tone failed")
	}
}

// rows returns the screen rows of the clock, the fields and the buttons.
func (a *app) rows() (clock, fields, buttons int) {
	_, h := a.screen.Size()
	mid := h / 2
	return mid - 3, mid - 1, mid + 1
}

func buttonLabels() []string {
	return []string{"[ Start ]", "[ Pause ]", "[ Reset ]"}
}

const buttonGap = 2

func buttonsWidth() int {
	w := 0
	for _, l := range buttonLabels() {
		w += len(l)
	}
	return w + buttonGap*(len(buttonLabels())-1)
}

// layout recomputes the burst anchor: the middle of the Start button.
func (a *app) layout() {
	w, _ := a.screen.Size()
	_, _, row := a.rows()
	x := (w - buttonsWidth()) / 2
	a.anchorX = float64(x) + float64(len(buttonLabels()[0]))/2
	a.anchorY = float64(row)
}

// handleEvent reports false when the app should quit.
func (a *app) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
		a.layout()
	case *tcell.EventKey:
		return a.handleKey(ev)
	}
	return true
}

func (a *app) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC {
		return false
	}
	if a.modal != "" {
		a.modal = ""
		return true
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		return false
	case tcell.KeyEnter:
		a.ctrl.Start()
	case tcell.KeyTab, tcell.KeyBacktab:
		a.focus = 1 - a.focus
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		f := a.fields[a.focus]
		if f != "" {
			a.fields[a.focus] = f[:len(f)-1]
		}
	case tcell.KeyUp:
		a.adjust(1)
	case tcell.KeyDown:
		a.adjust(-1)
	case tcell.KeyRune:
		return a.handleRune(ev.Rune())
	}
	return true
}

func (a *app) handleRune(r rune) bool {
	switch {
	case r == 'q':
		return false
	case r == 's':
		a.ctrl.Start()
	case r == 'p':
		a.ctrl.Pause()
	case r == 'r':
		if a.ctrl.Controls().Reset {
			a.ctrl.Reset()
		}
	case r == ' ':
		if a.ctrl.Running() {
			a.ctrl.Pause()
		} else {
			a.ctrl.Start()
		}
	case r >= '0' && r <= '9', r == '-' && a.fields[a.focus] == "":
		if len(a.fields[a.focus]) < fieldMaxLen {
			a.fields[a.focus] += string(r)
		}
	}
	return true
}

func (a *app) adjust(delta int) {
	n := countdown.ParseField(a.fields[a.focus]) + delta
	if n < 0 {
		n = 0
	}
	a.fields[a.focus] = strconv.Itoa(n)
}

// cells paints particles on the terminal, blending each toward black by
// its opacity.
type cells struct {
	screen tcell.Screen
}

func (c cells) Clear() {
	c.screen.Clear()
}

func (c cells) Disc(x, y, _ float64, clr color.RGBA, alpha float64) {
	cx, cy := int(math.Round(x)), int(math.Round(y))
	w, h := c.screen.Size()
	if cx < 0 || cy < 0 || cx >= w || cy >= h {
		return
	}
	fg := tcell.NewRGBColor(
		int32(float64(clr.R)*alpha),
		int32(float64(clr.G)*alpha),
		int32(float64(clr.B)*alpha),
	)
	c.screen.SetContent(cx, cy, particleRune, nil, tcell.StyleDefault.Foreground(fg))
}

// frame advances the particles one step and redraws everything.
func (a *app) frame() {
	a.anim.Frame(cells{a.screen})
	a.drawUI()
}

// render redraws the screen with the particles held where they are.
func (a *app) render() {
	a.anim.Draw(cells{a.screen})
	a.drawUI()
}

// drawUI paints the controls over the particle layer and shows the result.
func (a *app) drawUI() {
	w, h := a.screen.Size()
	clockRow, fieldRow, buttonRow := a.rows()

	a.drawCentered(clockRow, a.ctrl.Display(), styleClock)

	labels := [2]string{"Minutes ", "Seconds "}
	parts := make([]string, 2)
	for i := range a.fields {
		parts[i] = fmt.Sprintf("%s[%*s]", labels[i], fieldMaxLen, a.fields[i])
	}
	x := (w - len(parts[0]) - len(parts[1]) - 4) / 2
	for i, p := range parts {
		a.drawText(x, fieldRow, labels[i], styleText)
		style := styleText
		if i == a.focus {
			style = styleFocus
		}
		a.drawText(x+len(labels[i]), fieldRow, p[len(labels[i]):], style)
		x += len(p) + 4
	}

	ctl := a.ctrl.Controls()
	enabled := []bool{ctl.Start, ctl.Pause, ctl.Reset}
	x = (w - buttonsWidth()) / 2
	for i, l := range buttonLabels() {
		style := styleButton
		if !enabled[i] {
			style = styleDisabled
		}
		a.drawText(x, buttonRow, l, style)
		x += len(l) + buttonGap
	}

	a.drawCentered(h-1, fmt.Sprintf("%s  s:start p:pause r:reset tab:field ↑↓:adjust q:quit", a.ctrl.State()), styleDim)

	if a.modal != "" {
		a.drawModal(a.modal)
	}
	a.screen.Show()
}

func (a *app) drawModal(msg string) {
	w, h := a.screen.Size()
	lines := []string{"", "  " + msg + "  ", "", "  press any key  ", ""}
	boxW := 0
	for _, l := range lines {
		boxW = max(boxW, len(l))
	}
	top := (h - len(lines)) / 2
	left := (w - boxW) / 2
	for i, l := range lines {
		for x := 0; x < boxW; x++ {
			a.screen.SetContent(left+x, top+i, ' ', nil, styleModal)
		}
		a.drawText(left+(boxW-len(l))/2, top+i, l, styleModal)
	}
}

func (a *app) drawCentered(y int, s string, style tcell.Style) {
	w, _ := a.screen.Size()
	a.drawText((w-len([]rune(s)))/2, y, s, style)
}

func (a *app) drawText(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		a.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// loop multiplexes terminal events, countdown ticks and animation frames on
// one goroutine.
func (a *app) loop(ctx context.Context, events <-chan tcell.Event) {
	frame := a.clock.NewTicker(a.cfg.Terminal.Frame.Duration)
	defer frame.Stop()

	a.render()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok || !a.handleEvent(ev) {
				return
			}
			a.render()
		case <-a.ctrl.C():
			a.ctrl.Tick()
		case <-frame.Chan():
			a.frame()
		}
	}
}

// Run takes over the terminal until the user quits or ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, player Alerter) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan tcell.Event, 16)
	go func() {
		defer close(events)
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	a := newApp(screen, clockwork.NewRealClock(), cfg, player)
	log.Info().Str("display", a.ctrl.Display()).Msg("terminal frontend started")
	a.loop(ctx, events)
	return nil
}

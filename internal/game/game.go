// Package game is the ebiten window frontend: clock, inputs, controls and
// the particle overlay in one resizable window.
package game

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/jonboulle/clockwork"
	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/iburimskiy/countdown-fireworks/internal/audio"
	"github.com/iburimskiy/countdown-fireworks/internal/config"
	"github.com/iburimskiy/countdown-fireworks/internal/countdown"
	"github.com/iburimskiy/countdown-fireworks/internal/particles"
)

// Alerter is the audio side of the finish: the shared player.
type Alerter interface {
	Alert() error
	Suspend()
	Level() float64
}

var (
	background = color.RGBA{R: 14, G: 16, B: 24, A: 255}
	clockIdle  = color.RGBA{R: 220, G: 225, B: 235, A: 255}
	clockAlert = color.RGBA{R: 255, G: 190, B: 90, A: 255}
)

type game struct {
	cfg    *config.Config
	ctrl   *countdown.Controller
	anim   *particles.Animator
	player Alerter
	notify func(msg string, closed func())
	modal  atomic.Bool

	face    *text.GoTextFace
	overlay overlay

	width, height int

	minutes, seconds *field
	focus            *field
	start            *button
	pause            *button
	reset            *button
	pressed          *button

	frames     int
	wasFocused bool
}

func newGame(cfg *config.Config, clock clockwork.Clock, player Alerter, notify func(msg string, closed func())) (*game, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("load clock font: %w", err)
	}

	g := &game{
		cfg:        cfg,
		player:     player,
		notify:     notify,
		face:       &text.GoTextFace{Source: src, Size: config.ClockFontSize},
		minutes:    newField("Minutes", strconv.Itoa(cfg.Timer.Minutes)),
		seconds:    newField("Seconds", strconv.Itoa(cfg.Timer.Seconds)),
		wasFocused: true,
	}
	p := cfg.Particles
	g.anim = particles.New(particles.Settings{
		Count:      p.Count,
		Speed:      p.Speed,
		Decay:      p.Decay,
		Radius:     p.Radius,
		Saturation: p.Saturation,
		Lightness:  p.Lightness,
	}, nil)

	g.ctrl = countdown.New(clock, cfg.Timer.Tick.Duration, inputs{g.minutes, g.seconds}, countdown.Hooks{
		Burst:  g.burst,
		Alert:  g.alert,
		Notify: g.showModal,
	})

	g.start = &button{label: "Start", action: g.ctrl.Start}
	g.pause = &button{label: "Pause", action: g.ctrl.Pause}
	g.reset = &button{label: "Reset", action: g.ctrl.Reset}
	g.resize(cfg.Window.Width, cfg.Window.Height)
	g.syncControls()
	return g, nil
}

func (g *game) buttons() []*button {
	return []*button{g.start, g.pause, g.reset}
}

// burst anchors a particle burst on the Start button.
func (g *game) burst() {
	x, y := g.start.bounds.center()
	g.anim.Spawn(x, y)
}

// showModal hands msg to the dialog and blocks input until it is closed.
func (g *game) showModal(msg string) {
	if g.notify == nil {
		return
	}
	g.modal.Store(true)
	g.notify(msg, func() { g.modal.Store(false) })
}

// activate runs a button's action when it is enabled and no dialog is open.
func (g *game) activate(b *button) {
	if b.enabled && !g.modal.Load() {
		b.action()
	}
}

func (g *game) alert() {
	if err := g.player.Alert(); err != nil && !errors.Is(err, audio.ErrMuted) {
		log.Warn().Err(err).Msg("alert tone failed")
	}
}

// resize lays the widgets out for a w×h viewport and replaces the overlay,
// dropping whatever was drawn on it.
func (g *game) resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	g.width, g.height = w, h

	total := 3*config.ButtonWidth + 2*config.ButtonSpacing
	x := (w - total) / 2
	for _, b := range g.buttons() {
		b.bounds = rect{x: x, y: config.ButtonY, w: config.ButtonWidth, h: config.ButtonHeight}
		x += config.ButtonWidth + config.ButtonSpacing
	}

	fx := w/2 - config.FieldWidth - config.ButtonSpacing/2
	g.minutes.bounds = rect{x: fx, y: config.FieldY, w: config.FieldWidth, h: config.FieldHeight}
	g.seconds.bounds = rect{x: w/2 + config.ButtonSpacing/2, y: config.FieldY, w: config.FieldWidth, h: config.FieldHeight}

	if g.overlay.img != nil {
		g.overlay.img.Deallocate()
	}
	g.overlay = overlay{img: ebiten.NewImage(w, h)}
	log.Debug().Int("width", w).Int("height", h).Msg("viewport resized")
}

func (g *game) syncControls() {
	c := g.ctrl.Controls()
	g.start.enabled = c.Start
	g.pause.enabled = c.Pause
	g.reset.enabled = c.Reset
}

func (g *game) setFocus(f *field) {
	if g.focus != nil {
		g.focus.focused = false
	}
	g.focus = f
	if f != nil {
		f.focused = true
	}
}

func (g *game) Update() error {
	g.trackFocus(ebiten.IsFocused())
	if !g.modal.Load() {
		if err := g.handleInput(); err != nil {
			return err
		}
	}

	g.ctrl.Poll()
	g.syncControls()

	g.anim.Frame(g.overlay)
	g.frames++
	return nil
}

// trackFocus suspends audio when the window loses focus. The finish dialog
// takes focus itself, so the tone keeps playing while it is up.
func (g *game) trackFocus(focused bool) {
	if g.wasFocused && !focused && !g.modal.Load() {
		g.player.Suspend()
	}
	g.wasFocused = focused
}

func (g *game) handleInput() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if g.focus == nil {
			return ebiten.Termination
		}
		g.setFocus(nil)
	}

	g.handleMouse()
	g.handleKeys()
	return nil
}

func (g *game) handleMouse() {
	mouseX, mouseY := ebiten.CursorPosition()
	for _, b := range g.buttons() {
		b.hovered = b.bounds.contains(mouseX, mouseY)
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.setFocus(nil)
		for _, f := range []*field{g.minutes, g.seconds} {
			if f.bounds.contains(mouseX, mouseY) {
				g.setFocus(f)
			}
		}
		for _, b := range g.buttons() {
			if b.enabled && b.hovered {
				b.pressed = true
				g.pressed = b
			}
		}
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		if b := g.pressed; b != nil {
			if b.hovered {
				g.activate(b)
			}
			b.pressed = false
			g.pressed = nil
		}
	}
}

func (g *game) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		if g.focus == g.minutes {
			g.setFocus(g.seconds)
		} else {
			g.setFocus(g.minutes)
		}
		return
	}

	if g.focus != nil {
		for _, r := range ebiten.AppendInputChars(nil) {
			g.focus.insert(r)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
			g.focus.backspace()
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
			g.setFocus(nil)
			g.ctrl.Start()
		}
		return
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if g.ctrl.Running() {
			g.ctrl.Pause()
		} else {
			g.ctrl.Start()
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) && g.ctrl.Controls().Reset {
		g.ctrl.Reset()
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	g.drawClock(screen)
	caret := (g.frames/30)%2 == 0
	g.minutes.draw(screen, caret)
	g.seconds.draw(screen, caret)
	for _, b := range g.buttons() {
		b.draw(screen)
	}

	status := fmt.Sprintf("%s - Space: start/pause, R: reset, Tab: edit, Esc: quit", g.ctrl.State())
	ebitenutil.DebugPrintAt(screen, status, 12, 12)

	screen.DrawImage(g.overlay.img, nil)
}

func (g *game) drawClock(screen *ebiten.Image) {
	s := g.ctrl.Display()
	w, _ := text.Measure(s, g.face, 0)

	// The clock glows while the alert tone is sounding.
	glow := clamp01(g.player.Level() * 20)
	clr := lerpColor(clockIdle, clockAlert, glow)

	op := &text.DrawOptions{}
	op.GeoM.Translate(math.Round((float64(g.width)-w)/2), config.ClockY-config.ClockFontSize/2)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, s, g.face, op)
}

// Layout fills the whole window so the overlay always covers the viewport.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.resize(outsideWidth, outsideHeight)
	}
	return g.width, g.height
}

// notifyDialog shows the finish message in a native modal dialog and calls
// closed once it is dismissed. It runs off the frame goroutine so the
// animation keeps going behind it.
func notifyDialog(msg string, closed func()) {
	go func() {
		defer closed()
		err := zenity.Info(msg, zenity.Title("Countdown"), zenity.InfoIcon)
		if err != nil && !errors.Is(err, zenity.ErrCanceled) {
			log.Warn().Err(err).Msg("notification dialog failed")
		}
	}()
}

// Run opens the window and blocks until it is closed.
func Run(cfg *config.Config, player Alerter) error {
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g, err := newGame(cfg, clockwork.NewRealClock(), player, notifyDialog)
	if err != nil {
		return err
	}
	log.Info().Str("display", g.ctrl.Display()).Msg("window frontend started")
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run game: %w", err)
	}
	return nil
}

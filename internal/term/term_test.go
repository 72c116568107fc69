package term

import (
	"context"
	"image/color"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/jonboulle/clockwork"

	"github.com/iburimskiy/countdown-fireworks/internal/config"
	"github.com/iburimskiy/countdown-fireworks/internal/countdown"
)

type fakeClock interface {
	clockwork.Clock
	Advance(d time.Duration)
}

type countingAlerter struct {
	alerts int
}

func (c *countingAlerter) Alert() error {
	c.alerts++
	return nil
}

func newTestApp(t *testing.T) (*app, tcell.SimulationScreen, fakeClock, *countingAlerter) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 24)

	clock := clockwork.NewFakeClock()
	player := &countingAlerter{}
	return newApp(screen, clock, config.Default(), player), screen, clock, player
}

func row(s tcell.Screen, y int) string {
	w, _ := s.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := s.GetContent(x, y)
		if r == 0 {
			r = ' '
		}
		b.WriteRune(r)
	}
	return b.String()
}

func screenText(s tcell.Screen) string {
	_, h := s.Size()
	lines := make([]string, h)
	for y := 0; y < h; y++ {
		lines[y] = row(s, y)
	}
	return strings.Join(lines, "\n")
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func char(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestRenderShowsInputs(t *testing.T) {
	a, screen, _, _ := newTestApp(t)
	a.render()

	clockRow, fieldRow, buttonRow := a.rows()
	if !strings.Contains(row(screen, clockRow), "00:10") {
		t.Errorf("clock row = %q", row(screen, clockRow))
	}
	if got := row(screen, fieldRow); !strings.Contains(got, "Minutes [   0]") || !strings.Contains(got, "Seconds [  10]") {
		t.Errorf("field row = %q", got)
	}
	if got := row(screen, buttonRow); !strings.Contains(got, "[ Start ]  [ Pause ]  [ Reset ]") {
		t.Errorf("button row = %q", got)
	}
}

func TestStartSpawnsBurstAtStartButton(t *testing.T) {
	a, _, _, _ := newTestApp(t)
	if !a.handleEvent(char('s')) {
		t.Fatal("start key quit the app")
	}
	if !a.ctrl.Running() {
		t.Fatalf("state = %s", a.ctrl.State())
	}
	ps := a.anim.Particles()
	if len(ps) != 60 {
		t.Fatalf("particles = %d", len(ps))
	}
	if ps[0].X != 28.5 || ps[0].Y != 13 {
		t.Errorf("burst at (%v,%v), want (28.5,13)", ps[0].X, ps[0].Y)
	}
	for _, p := range ps {
		if p.VX < -1 || p.VX >= 1 {
			t.Fatalf("terminal particle speed %v exceeds cell speed", p.VX)
		}
	}
}

func TestCountdownToModal(t *testing.T) {
	a, screen, clock, player := newTestApp(t)
	a.fields = [2]string{"0", "2"}

	a.handleEvent(key(tcell.KeyEnter))
	for i := 0; i < 3; i++ {
		clock.Advance(time.Second)
		if !a.ctrl.Poll() {
			t.Fatalf("tick %d not delivered", i+1)
		}
	}
	if a.ctrl.State() != countdown.Finished {
		t.Fatalf("state = %s", a.ctrl.State())
	}
	if player.alerts != 1 {
		t.Errorf("alerts = %d", player.alerts)
	}
	if a.modal != countdown.TimesUp {
		t.Errorf("modal = %q", a.modal)
	}

	a.render()
	if !strings.Contains(screenText(screen), "Time's up!") {
		t.Error("modal not drawn")
	}

	// The first key only dismisses the modal.
	a.handleEvent(char('s'))
	if a.modal != "" {
		t.Error("modal not dismissed")
	}
	if a.ctrl.State() != countdown.Finished {
		t.Errorf("key behind modal reached the controller: %s", a.ctrl.State())
	}
	a.render()
	if strings.Contains(screenText(screen), "Time's up!") {
		t.Error("modal still drawn after dismissal")
	}
}

func TestPauseAndResumeKeys(t *testing.T) {
	a, _, clock, _ := newTestApp(t)
	a.fields = [2]string{"1", "0"}

	a.handleEvent(char(' '))
	clock.Advance(time.Second)
	a.ctrl.Poll()
	a.handleEvent(char('p'))
	if a.ctrl.State() != countdown.Paused || a.ctrl.Remaining() != 59 {
		t.Fatalf("after pause: %s %d", a.ctrl.State(), a.ctrl.Remaining())
	}
	a.handleEvent(char(' '))
	if !a.ctrl.Running() || a.ctrl.Remaining() != 59 {
		t.Fatalf("after resume: %s %d", a.ctrl.State(), a.ctrl.Remaining())
	}
	a.handleEvent(char('r'))
	if a.ctrl.State() != countdown.Idle || a.ctrl.Display() != "01:00" {
		t.Errorf("after reset: %s %q", a.ctrl.State(), a.ctrl.Display())
	}
}

func TestFieldEditing(t *testing.T) {
	a, _, _, _ := newTestApp(t)

	a.handleEvent(key(tcell.KeyBackspace2))
	for _, r := range "12345" {
		a.handleEvent(char(r))
	}
	if a.fields[fieldMinutes] != "1234" {
		t.Errorf("minutes = %q", a.fields[fieldMinutes])
	}

	a.handleEvent(key(tcell.KeyTab))
	a.handleEvent(key(tcell.KeyBackspace2))
	a.handleEvent(key(tcell.KeyBackspace2))
	a.handleEvent(char('-'))
	a.handleEvent(char('5'))
	if a.fields[fieldSeconds] != "-5" {
		t.Errorf("seconds = %q", a.fields[fieldSeconds])
	}
	a.handleEvent(key(tcell.KeyUp))
	if a.fields[fieldSeconds] != "1" {
		t.Errorf("up from -5 = %q, want 1", a.fields[fieldSeconds])
	}
	a.handleEvent(key(tcell.KeyDown))
	a.handleEvent(key(tcell.KeyDown))
	if a.fields[fieldSeconds] != "0" {
		t.Errorf("down below zero = %q", a.fields[fieldSeconds])
	}
}

func TestQuitKeys(t *testing.T) {
	for name, ev := range map[string]*tcell.EventKey{
		"q":      char('q'),
		"escape": key(tcell.KeyEscape),
		"ctrl-c": key(tcell.KeyCtrlC),
	} {
		a, _, _, _ := newTestApp(t)
		if a.handleEvent(ev) {
			t.Errorf("%s did not quit", name)
		}
	}
}

func TestResizeMovesAnchor(t *testing.T) {
	a, screen, _, _ := newTestApp(t)
	screen.SetSize(100, 30)
	a.handleEvent(tcell.NewEventResize(100, 30))
	if a.anchorX != 38.5 || a.anchorY != 16 {
		t.Errorf("anchor = (%v,%v), want (38.5,16)", a.anchorX, a.anchorY)
	}
}

func TestCellsDisc(t *testing.T) {
	_, screen, _, _ := newTestApp(t)
	c := cells{screen}
	c.Clear()
	c.Disc(3.4, 2.6, 1, color.RGBA{R: 200, G: 100, B: 50, A: 255}, 0.5)
	c.Disc(-1, 5, 1, color.RGBA{R: 255, A: 255}, 1)
	c.Disc(500, 5, 1, color.RGBA{R: 255, A: 255}, 1)

	r, _, style, _ := screen.GetContent(3, 3)
	if r != particleRune {
		t.Fatalf("cell (3,3) = %q", r)
	}
	fg, _, _ := style.Decompose()
	if fg != tcell.NewRGBColor(100, 50, 25) {
		t.Errorf("foreground = %v, want blended (100,50,25)", fg)
	}
	if n := strings.Count(screenText(screen), string(particleRune)); n != 1 {
		t.Errorf("drew %d particles, want 1", n)
	}
}

func TestLoopExits(t *testing.T) {
	a, _, _, _ := newTestApp(t)
	events := make(chan tcell.Event, 1)
	done := make(chan struct{})
	go func() {
		a.loop(context.Background(), events)
		close(done)
	}()
	events <- char('q')
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit on q")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done = make(chan struct{})
	go func() {
		a.loop(ctx, make(chan tcell.Event))
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit on cancel")
	}
}

func TestKeysDoNotAdvanceParticles(t *testing.T) {
	a, _, _, _ := newTestApp(t)
	a.anim.Spawn(10, 10)

	for i := 0; i < 10; i++ {
		a.handleEvent(key(tcell.KeyTab))
		a.render()
	}
	for _, p := range a.anim.Particles() {
		if p.Alpha != 1 || p.X != 10 || p.Y != 10 {
			t.Fatalf("particle changed without a frame: %+v", p)
		}
	}

	a.frame()
	decay := config.Default().Particles.Decay
	if got := a.anim.Particles()[0].Alpha; math.Abs(got-(1-decay)) > 1e-9 {
		t.Errorf("alpha after one frame = %v, want %v", got, 1-decay)
	}
}

package game

import (
	"errors"
	"image/color"
	"math/rand"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/iburimskiy/countdown-fireworks/internal/audio"
	"github.com/iburimskiy/countdown-fireworks/internal/countdown"
	"github.com/iburimskiy/countdown-fireworks/internal/particles"
)

func TestRect(t *testing.T) {
	r := rect{x: 10, y: 20, w: 100, h: 40}
	tests := []struct {
		x, y int
		want bool
	}{
		{10, 20, true},
		{110, 60, true},
		{60, 40, true},
		{9, 40, false},
		{60, 61, false},
		{111, 20, false},
	}
	for _, tt := range tests {
		if got := r.contains(tt.x, tt.y); got != tt.want {
			t.Errorf("contains(%d,%d) = %v", tt.x, tt.y, got)
		}
	}
	if x, y := r.center(); x != 60 || y != 40 {
		t.Errorf("center = (%v,%v)", x, y)
	}
}

func TestFieldEditing(t *testing.T) {
	f := newField("Minutes", "")
	for _, r := range "-12a.3" {
		f.insert(r)
	}
	if f.text != "-123" {
		t.Errorf("text = %q, want -123", f.text)
	}
	if f.insert('4') {
		t.Error("insert past maxLen accepted")
	}
	f.backspace()
	f.backspace()
	if f.text != "-1" {
		t.Errorf("after backspace: %q", f.text)
	}
	f.insert('-')
	if f.text != "-1" {
		t.Errorf("sign accepted mid-field: %q", f.text)
	}
	f.backspace()
	f.backspace()
	f.backspace()
	if f.text != "" {
		t.Errorf("text = %q, want empty", f.text)
	}
}

func TestInputsFeedController(t *testing.T) {
	in := inputs{minutes: newField("Minutes", "1"), seconds: newField("Seconds", "")}
	for _, r := range "30" {
		in.seconds.insert(r)
	}
	if got := countdown.Duration(in.Minutes(), in.Seconds()); got != 90 {
		t.Errorf("duration = %d, want 90", got)
	}
}

type fakeAlerter struct {
	err      error
	alerts   int
	suspends int
}

func (f *fakeAlerter) Alert() error { f.alerts++; return f.err }
func (f *fakeAlerter) Suspend() { f.suspends++ }
func (f *fakeAlerter) Level() float64 { return 0 }

func TestBurstAnchorsOnStartButton(t *testing.T) {
	g := &game{
		anim:  particles.New(particles.DefaultSettings(), rand.New(rand.NewSource(3))),
		start: &button{bounds: rect{x: 100, y: 300, w: 120, h: 40}},
	}
	g.burst()
	ps := g.anim.Particles()
	if len(ps) != 60 {
		t.Fatalf("spawned %d particles", len(ps))
	}
	for _, p := range ps {
		if p.X != 160 || p.Y != 320 {
			t.Fatalf("particle at (%v,%v), want (160,320)", p.X, p.Y)
		}
	}
}

func TestAlertSwallowsErrors(t *testing.T) {
	for _, err := range []error{nil, audio.ErrMuted, errors.New("no device")} {
		a := &fakeAlerter{err: err}
		g := &game{player: a}
		g.alert()
		if a.alerts != 1 {
			t.Errorf("%v: alerts = %d", err, a.alerts)
		}
	}
}

func TestLerpColor(t *testing.T) {
	a := color.RGBA{R: 0, G: 100, B: 200, A: 255}
	b := color.RGBA{R: 200, G: 100, B: 0, A: 255}
	if got := lerpColor(a, b, 0); got != a {
		t.Errorf("t=0: %v", got)
	}
	if got := lerpColor(a, b, 1); got != b {
		t.Errorf("t=1: %v", got)
	}
	if got := lerpColor(a, b, 0.5); got != (color.RGBA{R: 100, G: 100, B: 100, A: 255}) {
		t.Errorf("t=0.5: %v", got)
	}
	if got := lerpColor(a, b, 7); got != b {
		t.Errorf("t>1 not clamped: %v", got)
	}
}

func TestModalBlocksControls(t *testing.T) {
	var shown []string
	var closeDialog func()
	g := &game{
		notify: func(msg string, closed func()) {
			shown = append(shown, msg)
			closeDialog = closed
		},
	}
	in := inputs{minutes: newField("Minutes", "0"), seconds: newField("Seconds", "5")}
	g.ctrl = countdown.New(clockwork.NewFakeClock(), time.Second, in, countdown.Hooks{})
	g.start = &button{label: "Start", enabled: true, action: g.ctrl.Start}

	g.showModal(countdown.TimesUp)
	if len(shown) != 1 || shown[0] != countdown.TimesUp {
		t.Fatalf("shown = %q", shown)
	}
	g.activate(g.start)
	if g.ctrl.State() != countdown.Idle {
		t.Fatalf("start reached the controller behind the dialog: %s", g.ctrl.State())
	}

	closeDialog()
	g.activate(g.start)
	if !g.ctrl.Running() {
		t.Errorf("start after dismissal: %s", g.ctrl.State())
	}
}

func TestFocusLossSuspendsOutsideModal(t *testing.T) {
	a := &fakeAlerter{}
	g := &game{player: a, wasFocused: true}

	g.modal.Store(true)
	g.trackFocus(false)
	if a.suspends != 0 {
		t.Errorf("suspended while dialog open: %d", a.suspends)
	}

	g.modal.Store(false)
	g.trackFocus(true)
	g.trackFocus(false)
	g.trackFocus(false)
	if a.suspends != 1 {
		t.Errorf("suspends = %d, want 1", a.suspends)
	}
}

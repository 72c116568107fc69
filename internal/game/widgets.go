package game

import (
	"image/color"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

type rect struct {
	x, y, w, h int
}

func (r rect) contains(px, py int) bool {
	return px >= r.x && px <= r.x+r.w && py >= r.y && py <= r.y+r.h
}

func (r rect) center() (float64, float64) {
	return float64(r.x) + float64(r.w)/2, float64(r.y) + float64(r.h)/2
}

type button struct {
	label   string
	bounds  rect
	enabled bool
	hovered bool
	pressed bool
	action  func()
}

func (b *button) draw(screen *ebiten.Image) {
	var bgColor color.Color
	switch {
	case !b.enabled:
		bgColor = color.RGBA{R: 55, G: 60, B: 70, A: 255}
	case b.pressed:
		bgColor = color.RGBA{R: 60, G: 80, B: 120, A: 255}
	case b.hovered:
		bgColor = color.RGBA{R: 80, G: 100, B: 140, A: 255}
	default:
		bgColor = color.RGBA{R: 100, G: 120, B: 160, A: 255}
	}
	r := b.bounds
	vector.DrawFilledRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), bgColor, false)

	borderColor := color.RGBA{R: 150, G: 170, B: 200, A: 255}
	if !b.enabled {
		borderColor = color.RGBA{R: 80, G: 85, B: 95, A: 255}
	}
	vector.StrokeRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), 2, borderColor, false)

	textWidth := len(b.label) * 6 // debug font glyphs are 6px wide
	ebitenutil.DebugPrintAt(screen, b.label, r.x+(r.w-textWidth)/2, r.y+(r.h-16)/2)
}

// field is a numeric text input. It accepts digits and a leading sign;
// interpreting the text is left to countdown.ParseField.
type field struct {
	label   string
	text    string
	bounds  rect
	focused bool
	maxLen  int
}

func newField(label, text string) *field {
	return &field{label: label, text: text, maxLen: 4}
}

func (f *field) insert(r rune) bool {
	if utf8.RuneCountInString(f.text) >= f.maxLen {
		return false
	}
	switch {
	case r >= '0' && r <= '9':
	case (r == '-' || r == '+') && f.text == "":
	default:
		return false
	}
	f.text += string(r)
	return true
}

func (f *field) backspace() {
	if f.text == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(f.text)
	f.text = f.text[:len(f.text)-size]
}

func (f *field) draw(screen *ebiten.Image, caret bool) {
	r := f.bounds
	bg := color.RGBA{R: 20, G: 25, B: 35, A: 220}
	border := color.RGBA{R: 70, G: 80, B: 100, A: 255}
	if f.focused {
		border = color.RGBA{R: 150, G: 170, B: 200, A: 255}
	}
	vector.DrawFilledRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), bg, false)
	vector.StrokeRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), 2, border, false)

	s := f.text
	if f.focused && caret {
		s += "_"
	}
	ebitenutil.DebugPrintAt(screen, s, r.x+8, r.y+(r.h-16)/2)
	ebitenutil.DebugPrintAt(screen, f.label, r.x, r.y-18)
}

// inputs exposes the two fields to the countdown controller.
type inputs struct {
	minutes, seconds *field
}

func (in inputs) Minutes() string { return in.minutes.text }
func (in inputs) Seconds() string { return in.seconds.text }

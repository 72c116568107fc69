package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// lerpColor blends a toward b by t in [0,1].
func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	t = clamp01(t)
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// overlay is the full-viewport particle canvas.
type overlay struct {
	img *ebiten.Image
}

func (o overlay) Clear() {
	o.img.Clear()
}

func (o overlay) Disc(x, y, radius float64, c color.RGBA, alpha float64) {
	clr := color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(clamp01(alpha) * 255)}
	vector.DrawFilledCircle(o.img, float32(x), float32(y), float32(radius), clr, true)
}

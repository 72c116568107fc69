// Package particles runs the celebration burst: short-lived discs that drift
// from an anchor point and fade out.
package particles

import (
	"image/color"
	"math/rand"
)

// Surface is what the animator paints on. Frontends implement it over an
// ebiten image or a terminal screen; tests record the calls.
type Surface interface {
	Clear()
	Disc(x, y, radius float64, c color.RGBA, alpha float64)
}

type Settings struct {
	Count      int     // particles per burst
	Speed      float64 // velocity components are drawn from [-Speed, Speed)
	Decay      float64 // opacity lost per frame
	Radius     float64
	Saturation float64
	Lightness  float64
}

func DefaultSettings() Settings {
	return Settings{
		Count:      60,
		Speed:      4,
		Decay:      0.02,
		Radius:     4,
		Saturation: 0.5,
		Lightness:  0.5,
	}
}

type Particle struct {
	X, Y   float64
	VX, VY float64
	Alpha  float64
	Hue    float64
	Color  color.RGBA
}

type Animator struct {
	settings  Settings
	rng       *rand.Rand
	particles []Particle
}

// New returns an animator with no active particles. A nil rng gets a
// time-seeded source.
func New(settings Settings, rng *rand.Rand) *Animator {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Animator{
		settings:  settings,
		rng:       rng,
		particles: make([]Particle, 0, settings.Count),
	}
}

// Spawn adds one burst at (x, y).
func (a *Animator) Spawn(x, y float64) {
	for i := 0; i < a.settings.Count; i++ {
		hue := a.rng.Float64() * 360
		a.particles = append(a.particles, Particle{
			X:     x,
			Y:     y,
			VX:    (a.rng.Float64() - 0.5) * 2 * a.settings.Speed,
			VY:    (a.rng.Float64() - 0.5) * 2 * a.settings.Speed,
			Alpha: 1,
			Hue:   hue,
			Color: HSL(hue, a.settings.Saturation, a.settings.Lightness),
		})
	}
}

// Frame clears the surface, moves and fades every particle, draws the ones
// still visible and drops the rest.
func (a *Animator) Frame(s Surface) {
	s.Clear()
	alive := a.particles[:0]
	for _, p := range a.particles {
		p.X += p.VX
		p.Y += p.VY
		p.Alpha -= a.settings.Decay
		if p.Alpha <= 0 {
			continue
		}
		s.Disc(p.X, p.Y, a.settings.Radius, p.Color, p.Alpha)
		alive = append(alive, p)
	}
	// clear the dropped tail of the backing array
	for i := len(alive); i < len(a.particles); i++ {
		a.particles[i] = Particle{}
	}
	a.particles = alive
}

// Draw clears the surface and paints the particles where they are, without
// advancing them.
func (a *Animator) Draw(s Surface) {
	s.Clear()
	for _, p := range a.particles {
		s.Disc(p.X, p.Y, a.settings.Radius, p.Color, p.Alpha)
	}
}

func (a *Animator) Len() int { return len(a.particles) }

// Particles returns a copy of the active set.
func (a *Animator) Particles() []Particle {
	out := make([]Particle, len(a.particles))
	copy(out, a.particles)
	return out
}

func (a *Animator) Settings() Settings { return a.settings }

// Package particle implements the decaying fingertip particles, the burst
// emitter and the system that advances and renders them onto a trail surface.
package particle

import (
	"image/color"
	"math"
	"math/rand/v2"

	"golang.org/x/image/math/f64"
)

// Particle lifecycle constants.
const (
	// InitialLifespan is the lifespan of a freshly created particle.
	// It doubles as the particle's starting alpha.
	InitialLifespan = 100
	// LifespanStep is subtracted from the lifespan on every advance.
	LifespanStep = 10
	// MinSpeed and MaxSpeed bound the magnitude of the initial velocity.
	MinSpeed = 1.0
	MaxSpeed = 8.0
	// Diameter is the size of the dot a particle leaves on the surface.
	Diameter = 1.0
)

// RGB is an opaque base color. Particles never animate their color, only alpha.
type RGB struct {
	R, G, B uint8
}

// WithAlpha returns the color as non-premultiplied RGBA with the given alpha.
func (c RGB) WithAlpha(a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}

// Surface is a raster that particles can be drawn onto.
type Surface interface {
	// FillCircle alpha-blends an unstroked filled circle onto the surface.
	FillCircle(center f64.Vec2, radius float64, c color.NRGBA)
}

// Particle is a single decaying point.
type Particle struct {
	Pos      f64.Vec2
	Vel      f64.Vec2
	Color    RGB
	Lifespan int
}

// New creates a particle at pos with a random direction and a speed drawn
// uniformly from [MinSpeed, MaxSpeed].
func New(pos f64.Vec2, c RGB, rng *rand.Rand) *Particle {
	angle := rng.Float64() * 2 * math.Pi
	speed := MinSpeed + rng.Float64()*(MaxSpeed-MinSpeed)

	return &Particle{
		Pos:      pos,
		Vel:      f64.Vec2{math.Cos(angle) * speed, math.Sin(angle) * speed},
		Color:    c,
		Lifespan: InitialLifespan,
	}
}

// Advance moves the particle by its velocity and ages it by one step.
func (p *Particle) Advance() {
	p.Pos[0] += p.Vel[0]
	p.Pos[1] += p.Vel[1]
	p.Lifespan -= LifespanStep
}

// Expired reports whether the particle has run out of lifespan.
func (p *Particle) Expired() bool {
	return p.Lifespan <= 0
}

// Alpha is the current lifespan clamped to the 0-255 alpha range.
func (p *Particle) Alpha() uint8 {
	switch {
	case p.Lifespan <= 0:
		return 0
	case p.Lifespan >= 255:
		return 255
	}
	return uint8(p.Lifespan)
}

// Speed returns the magnitude of the velocity.
func (p *Particle) Speed() float64 {
	return math.Hypot(p.Vel[0], p.Vel[1])
}

// Render draws the particle onto s using its lifespan as alpha.
func (p *Particle) Render(s Surface) {
	s.FillCircle(p.Pos, Diameter/2, p.Color.WithAlpha(p.Alpha()))
}

package particle

// System owns the live particle collection. It is not safe for concurrent
// use; the frame loop is its only mutator.
type System struct {
	particles []*Particle
}

// NewSystem creates an empty particle system.
func NewSystem() *System {
	return &System{
		particles: make([]*Particle, 0, 512),
	}
}

// Add appends particles to the live collection.
func (s *System) Add(ps ...*Particle) {
	s.particles = append(s.particles, ps...)
}

// Update advances every particle exactly once and drops the expired ones.
// Survivors are compacted in place so no particle is skipped or visited twice.
func (s *System) Update() {
	alive := 0
	for _, p := range s.particles {
		p.Advance()
		if p.Expired() {
			continue
		}
		s.particles[alive] = p
		alive++
	}

	// Release references held past the new length.
	for i := alive; i < len(s.particles); i++ {
		s.particles[i] = nil
	}
	s.particles = s.particles[:alive]
}

// RenderAll draws every live particle onto surface.
func (s *System) RenderAll(surface Surface) {
	for _, p := range s.particles {
		p.Render(surface)
	}
}

// FrameStep runs Update followed by RenderAll. Call it once per display frame.
func (s *System) FrameStep(surface Surface) {
	s.Update()
	s.RenderAll(surface)
}

// Len returns the number of live particles.
func (s *System) Len() int {
	return len(s.particles)
}

// Particles returns the live particles. The slice is only valid until the
// next mutation.
func (s *System) Particles() []*Particle {
	return s.particles
}

package particle

import (
	"math/rand/v2"

	"golang.org/x/image/math/f64"
)

// BurstSize is the number of particles emitted per fingertip per frame.
const BurstSize = 10

// Emitter spawns bursts of particles into a System.
type Emitter struct {
	system *System
	rng    *rand.Rand
	size   int
}

// NewEmitter creates an Emitter feeding system. Velocities are sampled from
// rng, which tests seed for determinism.
func NewEmitter(system *System, rng *rand.Rand) *Emitter {
	return &Emitter{
		system: system,
		rng:    rng,
		size:   BurstSize,
	}
}

// EmitBurst adds BurstSize new particles at pos with base color c and
// returns how many were added.
func (e *Emitter) EmitBurst(pos f64.Vec2, c RGB) int {
	for i := 0; i < e.size; i++ {
		e.system.Add(New(pos, c, e.rng))
	}
	return e.size
}

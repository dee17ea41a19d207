package sph

import (
	"waterfall/particle"
	"waterfall/phys"
	"waterfall/vector"
)

// spawnSources emits one FLUID particle per source each step, jittered
// uniformly within [-SOURCE_SIZE, +SOURCE_SIZE] per axis, per §4.7. Each
// new particle is routed through AddParticles so the following migration
// exchange places it on its correct owner, exactly as the source spec
// specifies ("staged through add_particles").
func (m *Manager) spawnSources() {
	for _, src := range m.Config.Sources {
		jitter := vector.Vector3{
			X: m.uniformJitter(),
			Y: m.uniformJitter(),
			Z: m.uniformJitter(),
		}
		p := particle.New(particle.Fluid, src.Add(jitter), vector.Zero)
		m.Router.AddParticles([]particle.Particle{p})
	}
}

func (m *Manager) uniformJitter() float64 {
	return m.rng.Float64()*2*phys.SourceSize - phys.SourceSize
}

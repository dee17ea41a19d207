package sph

import (
	"waterfall/domain"
	"waterfall/particle"
	"waterfall/vector"
)

type neighborSet struct {
	fluid, static []particle.Particle
}

// update runs one step's physics across every local domain: density for
// every fluid particle, then velocity-Verlet-like integration, per
// §4.4. Boundary (sink) removal is left to the migration exchange that
// follows (§4.5 step 1a), which checks y <= sink_height directly.
func (m *Manager) update() {
	for _, d := range m.Router.Domains {
		particles := d.MutableParticles()
		sets := make([]neighborSet, len(particles))

		for idx := range particles {
			p := &particles[idx]
			if p.Kind != particle.Fluid {
				continue
			}
			fluidN, staticN := neighborsOf(d, p.Position)
			sets[idx] = neighborSet{fluidN, staticN}
			p.LocalDensity = density(p.Position, fluidN, staticN)
		}

		for idx := range particles {
			p := &particles[idx]
			if p.Kind != particle.Fluid {
				continue
			}
			integrateParticle(d, p, sets[idx].fluid, sets[idx].static, m.Config)
		}
	}
}

// integrateParticle runs the seven-step velocity-Verlet-like scheme from
// §4.4.
func integrateParticle(d *domain.Domain, p *particle.Particle, fluidN, staticN []particle.Particle, cfg Config) {
	halfDt := cfg.Dt / 2
	rho := p.LocalDensity

	a0 := acceleration(p.Position, p.Velocity, p.Mass, rho, fluidN, staticN, cfg.Gravity)
	vHalf := clampVelocity(p.Velocity.Add(a0.Scale(halfDt)), cfg.MaxVelocity)
	xHalf := p.Position.Add(vHalf.Scale(halfDt))

	// By default the second acceleration evaluation reuses the particle's
	// pre-step position and the first pass's neighbour lists/density; only
	// the velocity has advanced to vHalf by this point, and xHalf feeds
	// only the final position update below. With
	// RecomputeNeighboursForSecondPass set, a1 is instead evaluated at
	// xHalf with neighbours and density recomputed there.
	evalPosition, evalFluid, evalStatic, evalRho := p.Position, fluidN, staticN, rho
	if cfg.RecomputeNeighboursForSecondPass {
		evalPosition = xHalf
		evalFluid, evalStatic = neighborsOf(d, xHalf)
		evalRho = density(xHalf, evalFluid, evalStatic)
	}

	a1 := acceleration(evalPosition, vHalf, p.Mass, evalRho, evalFluid, evalStatic, cfg.Gravity)
	// The committed velocity is clamped as well, so no fluid particle
	// leaves the step faster than MaxVelocity.
	vNew := clampVelocity(vHalf.Add(a1.Scale(cfg.Dt)), cfg.MaxVelocity)
	xNew := xHalf.Add(vNew.Scale(halfDt))

	p.Position = xNew
	p.Velocity = vNew
}

// clampVelocity rescales v to have magnitude at most max, per §4.4 step 2.
func clampVelocity(v vector.Vector3, max float64) vector.Vector3 {
	l := v.Length()
	if l > max && l > 0 {
		return v.Scale(max / l)
	}
	return v
}

package sph

import (
	"waterfall/kernel"
	"waterfall/particle"
	"waterfall/phys"
	"waterfall/vector"
)

// pressureOf evaluates P(rho) = PRESSURE_CONSTANT * (rho - reference),
// per §4.4. Fluid and static reference densities are both 1.0 (§6), so
// one formula serves every particle kind: a static neighbour's fixed
// reference density maps to zero pressure, so in the pressure-gradient
// sum below it contributes only through p's own pressure.
func pressureOf(density float64) float64 {
	return phys.PressureConstant * (density - particle.FluidReferenceDensity)
}

// density computes rho_p = sum_j m_j * W(|p-j|) over fluid and static
// neighbours (§4.4), clamped to the fluid reference density floor. The
// neighbour lists already satisfy ||pi-pj|| <= R_MAX (§4.2); p's own
// self term (r=0) is included, contributing W(0) as specified.
func density(p vector.Vector3, fluidNeighbours, staticNeighbours []particle.Particle) float64 {
	rho := 0.0
	for _, j := range fluidNeighbours {
		rho += j.Mass * kernel.W(p.Sub(j.Position).Length())
	}
	for _, j := range staticNeighbours {
		rho += j.Mass * kernel.W(p.Sub(j.Position).Length())
	}
	if rho < particle.FluidReferenceDensity {
		rho = particle.FluidReferenceDensity
	}
	return rho
}

// densityAccel computes the pressure-gradient acceleration term from
// §4.4, summed over fluid and static neighbours.
func densityAccel(pos vector.Vector3, mass, rho float64, fluidNeighbours, staticNeighbours []particle.Particle) vector.Vector3 {
	pPressure := pressureOf(rho)
	accel := vector.Zero
	accumulate := func(neighbours []particle.Particle) {
		for _, j := range neighbours {
			rij := pos.Sub(j.Position)
			gw := kernel.GradW(rij)
			if gw == vector.Zero {
				continue
			}
			jPressure := pressureOf(j.LocalDensity)
			factor := (j.Mass / mass) * (pPressure + jPressure) / (2 * rho * j.LocalDensity)
			accel = accel.Sub(gw.Scale(factor))
		}
	}
	accumulate(fluidNeighbours)
	accumulate(staticNeighbours)
	return accel
}

// viscosityAccel computes the viscosity acceleration term from §4.4,
// summed over fluid neighbours only, skipping zero-separation terms to
// avoid dividing by ||rij||^2 = 0.
func viscosityAccel(pos, vel vector.Vector3, rho float64, fluidNeighbours []particle.Particle) vector.Vector3 {
	accel := vector.Zero
	for _, j := range fluidNeighbours {
		rij := pos.Sub(j.Position)
		r2 := rij.LengthSq()
		if r2 < 1e-12 {
			continue
		}
		gw := kernel.GradW(rij)
		scalar := 4 * Nu * rij.Dot(gw) / ((rho + j.LocalDensity) * r2)
		dv := vel.Sub(j.Velocity)
		accel = accel.Add(dv.Scale(j.Mass * scalar))
	}
	return accel.Scale(1 / rho)
}

// acceleration combines gravity, pressure-gradient and viscosity terms,
// per §4.4: "Acceleration = gravity + density_accel + viscosity_accel".
func acceleration(pos, vel vector.Vector3, mass, rho float64, fluidNeighbours, staticNeighbours []particle.Particle, gravity vector.Vector3) vector.Vector3 {
	a := gravity
	a = a.Add(densityAccel(pos, mass, rho, fluidNeighbours, staticNeighbours))
	a = a.Add(viscosityAccel(pos, vel, rho, fluidNeighbours))
	return a
}

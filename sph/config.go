// Package sph implements SphManager, the per-timestep integrator and
// orchestrator described in spec §4.4: neighbour search, density,
// pressure, viscosity and gravity, velocity-Verlet-like integration, and
// the control flow that drives the exchange protocols each step.
package sph

import "waterfall/vector"

// Viscosity coefficient, frozen by §4.4 ("ν = 1.0").
const Nu = 1.0

// Config holds one run's tunable parameters (§4.4).
type Config struct {
	NumberOfTimesteps int
	Dt                float64
	SinkHeight        float64
	Sources           []vector.Vector3
	MaxVelocity       float64
	Gravity           vector.Vector3

	// RecomputeNeighboursForSecondPass resolves the Open Question in
	// Design Notes §9 ("whether the second acceleration evaluation
	// should recompute density and neighbours"). Default false: the
	// second evaluation reuses the neighbour list and densities computed
	// at the top of the step, matching the source's accepted
	// imprecision.
	RecomputeNeighboursForSecondPass bool
}

// DefaultConfig returns a Config with the standard gravity vector from
// §4.4 and the second-pass behaviour frozen to match the source.
func DefaultConfig() Config {
	return Config{
		Gravity:     vector.Vector3{X: 0, Y: -9.81, Z: 0},
		MaxVelocity: 50.0,
	}
}

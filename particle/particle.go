// Package particle defines the Particle value type shared by every
// simulation component. Particle kind is a tagged variant rather than an
// inheritance hierarchy: the kind field alone decides mass defaults and
// motion behavior, which keeps the hot integration loop free of virtual
// dispatch (Design Notes §9).
package particle

import "waterfall/vector"

// Kind tags a particle's role in the simulation.
type Kind int

const (
	Fluid Kind = iota
	Static
	Shutter
)

func (k Kind) String() string {
	switch k {
	case Fluid:
		return "FLUID"
	case Static:
		return "STATIC"
	case Shutter:
		return "SHUTTER"
	default:
		return "UNKNOWN"
	}
}

// Numerical constants fixed by §6.
const (
	FluidMass             = 1.0
	StaticMass            = 5.0
	FluidReferenceDensity = 1.0
	StaticReferenceDensity = 1.0
)

// DefaultMass returns the mass a freshly constructed particle of this kind
// carries, per §3: FLUID particles have mass = FLUID_MASS; STATIC/SHUTTER
// particles have mass = STATIC_MASS.
func (k Kind) DefaultMass() float64 {
	if k == Fluid {
		return FluidMass
	}
	return StaticMass
}

// Movable reports whether particles of this kind are subject to
// integration. STATIC and SHUTTER particles never move.
func (k Kind) Movable() bool {
	return k == Fluid
}

// ReferenceDensity returns the density a freshly constructed particle of
// this kind carries before its first density evaluation. FLUID particles
// get their density recomputed every step regardless; STATIC/SHUTTER
// particles never run through the integrator's density pass, so they
// must start at their fixed reference density rather than zero, or the
// pressure-gradient term's j.LocalDensity divisor would be zero.
func (k Kind) ReferenceDensity() float64 {
	if k == Fluid {
		return FluidReferenceDensity
	}
	return StaticReferenceDensity
}

// Particle is the unit of simulated matter.
type Particle struct {
	Position     vector.Vector3
	Velocity     vector.Vector3
	Mass         float64
	LocalDensity float64
	Kind         Kind
}

// New constructs a particle of the given kind at position p with the
// kind's default mass.
func New(kind Kind, p, v vector.Vector3) Particle {
	return Particle{
		Position:     p,
		Velocity:     v,
		Mass:         kind.DefaultMass(),
		LocalDensity: kind.ReferenceDensity(),
		Kind:         kind,
	}
}

// Equal implements the §3 equality definition: (position, velocity) equal.
func (p Particle) Equal(o Particle) bool {
	return p.Position.Equal(o.Position) && p.Velocity.Equal(o.Velocity)
}

// CellID returns the packed cell id of the cell containing this
// particle's current position, for a grid of the given cell edge length.
func (p Particle) CellID(dimension float64) int {
	return vector.Hash(vector.CellCoordOf(p.Position, dimension))
}

// Package phys holds the numerical constants fixed by §6 of the
// specification. They are shared by the kernel, neighbour search, domain
// decomposition, and integrator packages, so they live in one place
// instead of being duplicated or threaded through every constructor.
package phys

const (
	QMax = 1.2
	H    = 1.0

	// RMax is the kernel's compact-support cutoff.
	RMax = QMax * H

	// DomainDimension is the edge length of one grid cell cube.
	DomainDimension = 2 * RMax

	// SourceSize is the half-width of the uniform jitter cube applied to
	// spawned source particles.
	SourceSize = 4 * QMax

	PressureConstant = 20.0
)

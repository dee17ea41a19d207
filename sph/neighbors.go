package sph

import (
	"waterfall/domain"
	"waterfall/neighbor"
	"waterfall/particle"
	"waterfall/phys"
	"waterfall/vector"
)

// neighborsOf builds fluid_neighbours[p] and static_neighbours[p] per
// §4.4: local particles of domain d, plus every rim particle cached
// under a cell id NeighbourSearch returns around p, filtered to
// ||pi-pj|| <= R_MAX. Shutter particles behave like static particles for
// force purposes (Design Notes §9: neither kind moves or has its own
// SPH-derived density).
func neighborsOf(d *domain.Domain, pos vector.Vector3) (fluid, static []particle.Particle) {
	for _, q := range d.Particles() {
		if pos.Sub(q.Position).Length() > phys.RMax {
			continue
		}
		if q.Kind == particle.Fluid {
			fluid = append(fluid, q)
		} else {
			static = append(static, q)
		}
	}

	for _, cell := range neighbor.CandidateCells(pos, phys.DomainDimension) {
		for _, q := range d.RimByCell(particle.Fluid)[cell] {
			if pos.Sub(q.Position).Length() <= phys.RMax {
				fluid = append(fluid, q)
			}
		}
		for _, q := range d.RimByCell(particle.Static)[cell] {
			if pos.Sub(q.Position).Length() <= phys.RMax {
				static = append(static, q)
			}
		}
		for _, q := range d.RimByCell(particle.Shutter)[cell] {
			if pos.Sub(q.Position).Length() <= phys.RMax {
				static = append(static, q)
			}
		}
	}
	return fluid, static
}

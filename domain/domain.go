// Package domain implements ParticleDomain, the unit of spatial ownership
// described in spec §3/§4.3: one grid cell's local particles, its rim
// (halo) caches, and the boundary tests that decide which particles have
// left the cell.
package domain

import (
	"waterfall/particle"
	"waterfall/phys"
	"waterfall/vector"
)

// Domain is one owned, non-empty grid cell.
type Domain struct {
	ID         int
	Origin     vector.Vector3
	Dimensions vector.Vector3

	particles []particle.Particle

	// rim maps a source cell id to the particles copied in from that
	// cell as halo, separately per particle kind so fluid and static rim
	// can be cleared independently (§4.3 clear_rim(kind?)).
	rim map[particle.Kind]map[int][]particle.Particle

	fluidCount   int
	staticCount  int
}

// New constructs the (lazily created, per §3) domain owning cell id,
// whose cube has side phys.DomainDimension and whose minimum corner is
// the cell coordinate times that side length.
func New(id int) *Domain {
	c := vector.Unhash(id)
	origin := vector.Vector3{
		X: float64(c.X) * phys.DomainDimension,
		Y: float64(c.Y) * phys.DomainDimension,
		Z: float64(c.Z) * phys.DomainDimension,
	}
	return &Domain{
		ID:         id,
		Origin:     origin,
		Dimensions: vector.Vector3{X: phys.DomainDimension, Y: phys.DomainDimension, Z: phys.DomainDimension},
		rim:        make(map[particle.Kind]map[int][]particle.Particle),
	}
}

// Particles returns the domain's locally-owned particles. The returned
// slice must not be retained across a mutating call.
func (d *Domain) Particles() []particle.Particle { return d.particles }

// MutableParticles returns the same underlying storage as Particles, for
// callers (the integrator) that update particles in place by index.
func (d *Domain) MutableParticles() []particle.Particle { return d.particles }

// NumberOfFluidParticles is the fluid-kind counter from §3.
func (d *Domain) NumberOfFluidParticles() int { return d.fluidCount }

// HasFluid reports whether this domain currently carries any fluid
// particles, used to prune fluid-only iteration over otherwise-persistent
// wall domains (§3).
func (d *Domain) HasFluid() bool { return d.fluidCount > 0 }

// HasStaticParticles reports the static-particle counter from §3.
func (d *Domain) HasStaticParticles() bool { return d.staticCount > 0 }

// Add pushes a particle into local storage and updates the counters.
func (d *Domain) Add(p particle.Particle) {
	d.particles = append(d.particles, p)
	switch p.Kind {
	case particle.Fluid:
		d.fluidCount++
	default:
		d.staticCount++
	}
}

// RemoveOutside implements §4.3 remove_outside: drops FLUID particles at
// or below sinkHeight, and removes (returning as leavers) any FLUID
// particle whose current cell id no longer matches this domain. Static
// and shutter particles are never touched, per Design Notes §9 ("whether
// static particles should ever be removed below the sink height: no").
func (d *Domain) RemoveOutside(sinkHeight float64) (leavers []particle.Particle) {
	kept := d.particles[:0]
	for _, p := range d.particles {
		if p.Kind != particle.Fluid {
			kept = append(kept, p)
			continue
		}
		if p.Position.Y <= sinkHeight {
			d.fluidCount--
			continue
		}
		if p.CellID(phys.DomainDimension) != d.ID {
			d.fluidCount--
			leavers = append(leavers, p)
			continue
		}
		kept = append(kept, p)
	}
	d.particles = kept
	return leavers
}

// neighborDirections enumerates the 26 non-zero unit offsets in
// {-1,0,1}^3, used by RimTargetMap.
var neighborDirections = func() []vector.Vector3 {
	dirs := make([]vector.Vector3, 0, 26)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				dirs = append(dirs, vector.Vector3{X: float64(dx), Y: float64(dy), Z: float64(dz)}.Normalize())
			}
		}
	}
	return dirs
}()

// RimTargetMap implements §4.3 rim_target_map: for every local particle of
// the given kind, probe the 26 neighbour directions at distance
// phys.RMax; any probe landing in a different cell means this particle
// must be copied to that target cell's rim.
func (d *Domain) RimTargetMap(kind particle.Kind) map[int][]particle.Particle {
	out := make(map[int][]particle.Particle)
	for _, p := range d.particles {
		if p.Kind != kind {
			continue
		}
		seen := make(map[int]bool, 26)
		for _, dir := range neighborDirections {
			probe := p.Position.Add(dir.Scale(phys.RMax))
			targetID := vector.Hash(vector.CellCoordOf(probe, phys.DomainDimension))
			if targetID == d.ID || seen[targetID] {
				continue
			}
			seen[targetID] = true
			out[targetID] = append(out[targetID], p)
		}
	}
	return out
}

// ClearParticles drops all local particles, or just those of kind when
// kind is non-nil.
func (d *Domain) ClearParticles(kind *particle.Kind) {
	if kind == nil {
		d.particles = nil
		d.fluidCount = 0
		d.staticCount = 0
		return
	}
	kept := d.particles[:0]
	for _, p := range d.particles {
		if p.Kind == *kind {
			if p.Kind == particle.Fluid {
				d.fluidCount--
			} else {
				d.staticCount--
			}
			continue
		}
		kept = append(kept, p)
	}
	d.particles = kept
}

// ClearRim empties the rim cache, or just the cache for kind when kind is
// non-nil. Called at the start of each rim exchange phase per §4.6.
func (d *Domain) ClearRim(kind *particle.Kind) {
	if kind == nil {
		d.rim = make(map[particle.Kind]map[int][]particle.Particle)
		return
	}
	delete(d.rim, *kind)
}

// AddRim appends particles into the rim cache keyed by source cell id,
// per §4.3 add_rim. Source ids are unique per phase so no deduplication
// is performed.
func (d *Domain) AddRim(sourceCellID int, particles []particle.Particle, kind particle.Kind) {
	byCell, ok := d.rim[kind]
	if !ok {
		byCell = make(map[int][]particle.Particle)
		d.rim[kind] = byCell
	}
	byCell[sourceCellID] = append(byCell[sourceCellID], particles...)
}

// Rim returns every cached halo particle of the given kind, across all
// source cells, as a flat slice. Used by the neighbour search during
// integration.
func (d *Domain) Rim(kind particle.Kind) []particle.Particle {
	byCell := d.rim[kind]
	if len(byCell) == 0 {
		return nil
	}
	total := 0
	for _, ps := range byCell {
		total += len(ps)
	}
	out := make([]particle.Particle, 0, total)
	for _, ps := range byCell {
		out = append(out, ps...)
	}
	return out
}

// RimByCell exposes the raw source-cell-id -> particles map for a kind,
// e.g. for NeighbourSearch callers that want to restrict to specific
// candidate cells.
func (d *Domain) RimByCell(kind particle.Kind) map[int][]particle.Particle {
	return d.rim[kind]
}

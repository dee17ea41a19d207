package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waterfall/particle"
	"waterfall/phys"
	"waterfall/vector"
)

func TestNewOriginFromCellID(t *testing.T) {
	c := vector.CellCoord{X: 2, Y: -1, Z: 0}
	id := vector.Hash(c)
	d := New(id)
	assert.Equal(t, vector.Vector3{
		X: 2 * phys.DomainDimension,
		Y: -1 * phys.DomainDimension,
		Z: 0,
	}, d.Origin)
}

func TestAddAndCounters(t *testing.T) {
	d := New(0)
	d.Add(particle.New(particle.Fluid, vector.Zero, vector.Zero))
	d.Add(particle.New(particle.Static, vector.Zero, vector.Zero))
	assert.Equal(t, 1, d.NumberOfFluidParticles())
	assert.True(t, d.HasFluid())
	assert.True(t, d.HasStaticParticles())
	assert.Len(t, d.Particles(), 2)
}

func TestRemoveOutsideDropsSunkFluidOnly(t *testing.T) {
	d := New(0)
	sunk := particle.New(particle.Fluid, vector.Vector3{X: 0, Y: -100, Z: 0}, vector.Zero)
	wall := particle.New(particle.Static, vector.Vector3{X: 0, Y: -100, Z: 0}, vector.Zero)
	d.Add(sunk)
	d.Add(wall)

	leavers := d.RemoveOutside(-10)
	require.Empty(t, leavers)
	assert.Equal(t, 0, d.NumberOfFluidParticles())
	assert.Len(t, d.Particles(), 1)
	assert.Equal(t, particle.Static, d.Particles()[0].Kind)
}

func TestRemoveOutsideReturnsCellCrossingLeavers(t *testing.T) {
	id := vector.Hash(vector.CellCoord{X: 0, Y: 0, Z: 0})
	d := New(id)
	// place a particle just outside this cell's cube on the +X side
	crossed := particle.New(particle.Fluid, vector.Vector3{X: phys.DomainDimension + 0.01, Y: 0, Z: 0}, vector.Zero)
	d.Add(crossed)

	leavers := d.RemoveOutside(-1000)
	require.Len(t, leavers, 1)
	assert.True(t, leavers[0].Equal(crossed))
	assert.Equal(t, 0, d.NumberOfFluidParticles())
	assert.Empty(t, d.Particles())
}

func TestRemoveOutsideNeverRemovesStaticOrShutter(t *testing.T) {
	id := vector.Hash(vector.CellCoord{X: 0, Y: 0, Z: 0})
	d := New(id)
	farStatic := particle.New(particle.Static, vector.Vector3{X: phys.DomainDimension * 50, Y: -9999, Z: 0}, vector.Zero)
	farShutter := particle.New(particle.Shutter, vector.Vector3{X: -phys.DomainDimension * 50, Y: -9999, Z: 0}, vector.Zero)
	d.Add(farStatic)
	d.Add(farShutter)

	leavers := d.RemoveOutside(-1000)
	assert.Empty(t, leavers)
	assert.Len(t, d.Particles(), 2)
}

func TestRimTargetMapSkipsOwnCell(t *testing.T) {
	id := vector.Hash(vector.CellCoord{X: 0, Y: 0, Z: 0})
	d := New(id)
	center := particle.New(particle.Fluid, vector.Vector3{X: 0, Y: 0, Z: 0}, vector.Zero)
	d.Add(center)

	targets := d.RimTargetMap(particle.Fluid)
	for targetID := range targets {
		assert.NotEqual(t, id, targetID)
	}
}

func TestRimTargetMapNearBoundaryTargetsNeighborCell(t *testing.T) {
	id := vector.Hash(vector.CellCoord{X: 0, Y: 0, Z: 0})
	d := New(id)
	// sits within phys.RMax of the +X face of this cell
	near := particle.New(particle.Fluid, vector.Vector3{X: phys.DomainDimension - 0.01, Y: 0, Z: 0}, vector.Zero)
	d.Add(near)

	targets := d.RimTargetMap(particle.Fluid)
	neighborID := vector.Hash(vector.CellCoord{X: 1, Y: 0, Z: 0})
	require.Contains(t, targets, neighborID)
	assert.Len(t, targets[neighborID], 1)
}

func TestAddRimAndClearRim(t *testing.T) {
	d := New(0)
	p := particle.New(particle.Fluid, vector.Zero, vector.Zero)
	d.AddRim(1, []particle.Particle{p}, particle.Fluid)
	assert.Len(t, d.Rim(particle.Fluid), 1)

	fluidKind := particle.Fluid
	d.ClearRim(&fluidKind)
	assert.Empty(t, d.Rim(particle.Fluid))
}

func TestClearParticlesByKind(t *testing.T) {
	d := New(0)
	d.Add(particle.New(particle.Fluid, vector.Zero, vector.Zero))
	d.Add(particle.New(particle.Static, vector.Zero, vector.Zero))

	fluidKind := particle.Fluid
	d.ClearParticles(&fluidKind)
	assert.Equal(t, 0, d.NumberOfFluidParticles())
	assert.Len(t, d.Particles(), 1)
	assert.Equal(t, particle.Static, d.Particles()[0].Kind)
}

package particle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"waterfall/vector"
)

func TestDefaultMassByKind(t *testing.T) {
	assert.Equal(t, FluidMass, Fluid.DefaultMass())
	assert.Equal(t, StaticMass, Static.DefaultMass())
	assert.Equal(t, StaticMass, Shutter.DefaultMass())
}

func TestMovable(t *testing.T) {
	assert.True(t, Fluid.Movable())
	assert.False(t, Static.Movable())
	assert.False(t, Shutter.Movable())
}

func TestEqualityIgnoresMassDensityKind(t *testing.T) {
	p := New(Fluid, vector.Vector3{X: 1, Y: 2, Z: 3}, vector.Vector3{X: 0.1, Y: 0, Z: 0})
	q := p
	q.Mass = 99
	q.LocalDensity = 42
	q.Kind = Static
	assert.True(t, p.Equal(q))

	q.Position.X += 1e-6
	assert.False(t, p.Equal(q))
}

func TestCellID(t *testing.T) {
	p := New(Fluid, vector.Vector3{X: 2.5, Y: -0.5, Z: 0}, vector.Zero)
	id := p.CellID(1.0)
	assert.Equal(t, id, vector.Hash(vector.CellCoordOf(p.Position, 1.0)))
}

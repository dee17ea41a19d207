package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector3Arithmetic(t *testing.T) {
	a := Vector3{X: 1, Y: 2, Z: 3}
	b := Vector3{X: 4, Y: -1, Z: 0.5}

	assert.Equal(t, Vector3{X: 5, Y: 1, Z: 3.5}, a.Add(b))
	assert.Equal(t, Vector3{X: -3, Y: 3, Z: 2.5}, a.Sub(b))
	assert.Equal(t, Vector3{X: 2, Y: 4, Z: 6}, a.Scale(2))
	assert.InDelta(t, a.X*b.X+a.Y*b.Y+a.Z*b.Z, a.Dot(b), 1e-12)
}

func TestNormalizeZeroVectorIsZero(t *testing.T) {
	assert.Equal(t, Zero, Zero.Normalize())
}

func TestNormalizeUnitLength(t *testing.T) {
	v := Vector3{X: 3, Y: 4, Z: 0}.Normalize()
	assert.InDelta(t, 1.0, v.Length(), 1e-12)
}

func TestRoundDownward(t *testing.T) {
	v := Vector3{X: 1.9, Y: -1.1, Z: -0.0001}
	assert.Equal(t, Vector3{X: 1, Y: -2, Z: -1}, v.RoundDownward())
}

func TestEqual(t *testing.T) {
	a := Vector3{X: 1, Y: 2, Z: 3}
	b := Vector3{X: 1, Y: 2, Z: 3}
	c := Vector3{X: 1, Y: 2, Z: 3.0001}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

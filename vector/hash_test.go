package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashUnhashRoundTrip(t *testing.T) {
	cases := []CellCoord{
		{0, 0, 0},
		{1, 2, 3},
		{-1, -2, -3},
		{511, -512, 0},
		{-512, 511, 100},
	}
	for _, c := range cases {
		id := Hash(c)
		got := Unhash(id)
		assert.Equal(t, c, got, "round trip for %+v", c)
	}
}

func TestCellCoordOf(t *testing.T) {
	assert.Equal(t, CellCoord{0, 0, 0}, CellCoordOf(Vector3{X: 0.5, Y: 0.5, Z: 0.5}, 1.0))
	assert.Equal(t, CellCoord{-1, -1, -1}, CellCoordOf(Vector3{X: -0.5, Y: -0.5, Z: -0.5}, 1.0))
	assert.Equal(t, CellCoord{2, -3, 0}, CellCoordOf(Vector3{X: 5, Y: -7, Z: 0}, 2.5))
}

func TestOwnerIsStableAndNonNegative(t *testing.T) {
	for id := -50; id <= 50; id++ {
		owner := Owner(id, 4)
		assert.GreaterOrEqual(t, owner, 0)
		assert.Less(t, owner, 4)
		assert.Equal(t, owner, Owner(id, 4), "owner must be a pure function of (id, n)")
	}
}

func TestOwnerZeroSimulatorsDoesNotPanic(t *testing.T) {
	assert.Equal(t, 0, Owner(17, 0))
}

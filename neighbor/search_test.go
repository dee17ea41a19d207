package neighbor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"waterfall/vector"
)

func TestCandidateCellsReturns27Cells(t *testing.T) {
	cells := CandidateCells(vector.Vector3{X: 0.5, Y: 0.5, Z: 0.5}, 1.0)
	assert.Len(t, cells, 27)
}

func TestCandidateCellsIncludesOwnCell(t *testing.T) {
	p := vector.Vector3{X: 5, Y: -3, Z: 2}
	ownID := vector.Hash(vector.CellCoordOf(p, 1.0))
	cells := CandidateCells(p, 1.0)
	assert.Contains(t, cells, ownID)
}

func TestCandidateCellsAreUnique(t *testing.T) {
	cells := CandidateCells(vector.Vector3{X: 0, Y: 0, Z: 0}, 1.0)
	seen := make(map[int]bool, len(cells))
	for _, c := range cells {
		assert.False(t, seen[c], "duplicate candidate cell id %d", c)
		seen[c] = true
	}
}

// Package neighbor enumerates the grid cells a particle's influence
// sphere can reach, per spec §4.2.
package neighbor

import "waterfall/vector"

// CandidateCells returns the ids of every cell whose cube intersects the
// ball of radius rMax around p, for a grid whose cells have edge length
// cellDimension. With rMax <= cellDimension/2 this is the 3x3x3 block
// centered on the cell containing p, and it always includes that center
// cell — callers that violate the rMax <= cellDimension/2 precondition
// (Design Notes §9, Open Question) get an incomplete candidate set rather
// than a panic, since the search itself has no way to detect the
// violation from here.
func CandidateCells(p vector.Vector3, cellDimension float64) []int {
	center := vector.CellCoordOf(p, cellDimension)
	cells := make([]int, 0, 27)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				c := vector.CellCoord{X: center.X + dx, Y: center.Y + dy, Z: center.Z + dz}
				cells = append(cells, vector.Hash(c))
			}
		}
	}
	return cells
}

package world

import "github.com/udisondev/swarmspawn/internal/model"

// Footprint returns the cells covered by an xSize x zSize occupant centred
// on anchor. Even sizes extend one cell further in the positive direction.
func Footprint(anchor model.Position, xSize, zSize int) []Cell {
	xSize = max(xSize, 1)
	zSize = max(zSize, 1)

	origin := CellOf(anchor).Offset(-(xSize-1)/2, -(zSize-1)/2)
	cells := make([]Cell, 0, xSize*zSize)
	for dx := range xSize {
		for dz := range zSize {
			cells = append(cells, origin.Offset(dx, dz))
		}
	}
	return cells
}

// SingleCell returns the footprint of a one-cell occupant.
func SingleCell(anchor model.Position) []Cell {
	return []Cell{CellOf(anchor)}
}

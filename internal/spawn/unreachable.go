package spawn

import "github.com/udisondev/swarmspawn/internal/world"

// Unreachable is the registry of cells where a spawned unit could not reach
// a navigable surface. It persists across cycles: a cell in it is never used
// again, neither as a swarm centre nor as a placement.
type Unreachable struct {
	cells world.CellSet
}

// NewUnreachable creates an empty registry.
func NewUnreachable() *Unreachable {
	return &Unreachable{cells: world.NewCellSet()}
}

// Mark adds c. Returns false if it was already known.
func (u *Unreachable) Mark(c world.Cell) bool {
	if u.cells.Has(c) {
		return false
	}
	u.cells.Add(c)
	return true
}

// Seed adds previously discovered cells, e.g. loaded from storage.
func (u *Unreachable) Seed(cells []world.Cell) {
	for _, c := range cells {
		u.cells.Add(c)
	}
}

// Excludes implements world.Excluder.
func (u *Unreachable) Excludes(c world.Cell) bool {
	return u.cells.Has(c)
}

// Len returns the number of known unreachable cells.
func (u *Unreachable) Len() int {
	return len(u.cells)
}

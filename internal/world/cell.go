package world

import (
	"math"

	"github.com/udisondev/swarmspawn/internal/model"
)

// Cell is an integer grid coordinate on the XZ plane.
type Cell struct {
	X int
	Z int
}

// CellOf maps a continuous position to its grid cell by rounding X and Z to
// the nearest integer (halves away from zero). Every component that maps a
// position to a cell goes through this function.
func CellOf(p model.Position) Cell {
	return Cell{X: int(math.Round(p.X)), Z: int(math.Round(p.Z))}
}

// Offset returns the cell shifted by (dx, dz).
func (c Cell) Offset(dx, dz int) Cell {
	return Cell{X: c.X + dx, Z: c.Z + dz}
}

// Excluder reports cells that must not be used.
type Excluder interface {
	Excludes(c Cell) bool
}

// CellSet is a set of cells. The zero value is not usable; use NewCellSet.
type CellSet map[Cell]struct{}

// NewCellSet creates an empty set.
func NewCellSet() CellSet {
	return make(CellSet)
}

// Add inserts c.
func (s CellSet) Add(c Cell) {
	s[c] = struct{}{}
}

// Has reports whether c is in the set.
func (s CellSet) Has(c Cell) bool {
	_, ok := s[c]
	return ok
}

// Excludes implements Excluder.
func (s CellSet) Excludes(c Cell) bool {
	return s.Has(c)
}

// AddSquare inserts every cell within Chebyshev distance [-left, right] of c.
func (s CellSet) AddSquare(c Cell, left, right int) {
	for dx := -left; dx <= right; dx++ {
		for dz := -left; dz <= right; dz++ {
			s.Add(c.Offset(dx, dz))
		}
	}
}

type anyOf []Excluder

func (a anyOf) Excludes(c Cell) bool {
	for _, e := range a {
		if e.Excludes(c) {
			return true
		}
	}
	return false
}

// AnyOf combines excluders; a cell is excluded if any of them excludes it.
// Nil excluders are skipped.
func AnyOf(excluders ...Excluder) Excluder {
	out := make(anyOf, 0, len(excluders))
	for _, e := range excluders {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

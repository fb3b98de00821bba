package world

// candidateIndex is the set of currently spawnable cells. Dense slice plus
// position map gives O(1) add, remove and uniform random pick.
type candidateIndex struct {
	dense []Cell
	pos   map[Cell]int
}

func newCandidateIndex(capacity int) *candidateIndex {
	return &candidateIndex{
		dense: make([]Cell, 0, capacity),
		pos:   make(map[Cell]int, capacity),
	}
}

func (ci *candidateIndex) has(c Cell) bool {
	_, ok := ci.pos[c]
	return ok
}

func (ci *candidateIndex) add(c Cell) {
	if ci.has(c) {
		return
	}
	ci.pos[c] = len(ci.dense)
	ci.dense = append(ci.dense, c)
}

// remove swaps the last element into the removed slot.
func (ci *candidateIndex) remove(c Cell) {
	idx, ok := ci.pos[c]
	if !ok {
		return
	}
	last := len(ci.dense) - 1
	moved := ci.dense[last]

	ci.dense[idx] = moved
	ci.pos[moved] = idx

	ci.dense = ci.dense[:last]
	delete(ci.pos, c)
}

func (ci *candidateIndex) len() int {
	return len(ci.dense)
}

func (ci *candidateIndex) at(i int) Cell {
	return ci.dense[i]
}

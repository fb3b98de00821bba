package spawn

import "fmt"

// Offset is an integer displacement on the XZ plane.
type Offset struct {
	DX int
	DZ int
}

// RingTable holds, for every ring index r in 0..maxRadius, the offsets whose
// Chebyshev distance from the origin is exactly r: the boundary of a square of
// half-width r. Built once, read-only afterwards.
type RingTable struct {
	rings [][]Offset
}

// NewRingTable precomputes rings 0..maxRadius.
func NewRingTable(maxRadius int) (*RingTable, error) {
	if maxRadius <= 0 {
		return nil, fmt.Errorf("max swarm radius must be positive, got %d", maxRadius)
	}

	rings := make([][]Offset, maxRadius+1)
	for dx := -maxRadius; dx <= maxRadius; dx++ {
		for dz := -maxRadius; dz <= maxRadius; dz++ {
			r := max(abs(dx), abs(dz))
			rings[r] = append(rings[r], Offset{DX: dx, DZ: dz})
		}
	}

	return &RingTable{rings: rings}, nil
}

// Len returns the number of rings (maxRadius + 1).
func (t *RingTable) Len() int {
	return len(t.rings)
}

// MaxRadius returns the largest ring index.
func (t *RingTable) MaxRadius() int {
	return len(t.rings) - 1
}

// Ring returns a copy of ring r's offsets, or nil if r is out of range.
func (t *RingTable) Ring(r int) []Offset {
	return t.AppendRing(nil, r)
}

// AppendRing appends ring r's offsets to dst. Out-of-range r appends nothing.
func (t *RingTable) AppendRing(dst []Offset, r int) []Offset {
	if r < 0 || r >= len(t.rings) {
		return dst
	}
	return append(dst, t.rings[r]...)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package model

import "math"

// Position is a continuous world position. Y is the height axis; the
// occupancy grid is indexed by X and Z.
// Value type, passed by value (immutable).
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// NewPosition creates a Position with the given coordinates.
func NewPosition(x, y, z float64) Position {
	return Position{X: x, Y: y, Z: z}
}

// Add returns the component-wise sum of two positions.
func (p Position) Add(other Position) Position {
	return Position{X: p.X + other.X, Y: p.Y + other.Y, Z: p.Z + other.Z}
}

// WithHeight returns a copy of p with Y replaced (immutable pattern).
func (p Position) WithHeight(y float64) Position {
	p.Y = y
	return p
}

// HorizontalDistanceSquared returns squared distance on the XZ plane (no sqrt).
func (p Position) HorizontalDistanceSquared(other Position) float64 {
	dx := p.X - other.X
	dz := p.Z - other.Z
	return dx*dx + dz*dz
}

// IsFinite reports whether all components are finite numbers.
func (p Position) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) &&
		!math.IsNaN(p.Z) && !math.IsInf(p.Z, 0)
}

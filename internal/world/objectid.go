package world

import "sync/atomic"

// IDGenerator generates unique identifiers for every entity the spawn server
// creates. One generator is constructed by the driver and injected; there is
// no package-level instance.
//
// ID ranges (convention):
//
//	0x00000000 - 0x0FFFFFFF: Reserved (0 = unassigned)
//	0x10000000 - 0x1FFFFFFF: Hostile units
//	0x20000000 - 0x2FFFFFFF: Buildings
//	0x30000000 - 0x3FFFFFFF: Mineral nodes
type IDGenerator struct {
	nextUnitID     atomic.Uint32
	nextBuildingID atomic.Uint32
	nextMineralID  atomic.Uint32
}

// NewIDGenerator creates a new ID generator.
func NewIDGenerator() *IDGenerator {
	gen := &IDGenerator{}
	gen.nextUnitID.Store(0x10000000)
	gen.nextBuildingID.Store(0x20000000)
	gen.nextMineralID.Store(0x30000000)
	return gen
}

// NextUnitID generates next unique hostile unit ID.
// Thread-safe via atomic increment.
func (g *IDGenerator) NextUnitID() uint32 {
	return g.nextUnitID.Add(1)
}

// NextBuildingID generates next unique building ID.
func (g *IDGenerator) NextBuildingID() uint32 {
	return g.nextBuildingID.Add(1)
}

// NextMineralID generates next unique mineral node ID.
func (g *IDGenerator) NextMineralID() uint32 {
	return g.nextMineralID.Add(1)
}

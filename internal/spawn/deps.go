package spawn

import (
	"time"

	"github.com/udisondev/swarmspawn/internal/model"
	"github.com/udisondev/swarmspawn/internal/world"
)

// SpawnArea is the part of the occupancy grid the scheduler reads.
type SpawnArea interface {
	RandomSpawnablePosition(excluding world.Excluder) (model.Position, bool)
	PositionValidForPlacement(pos model.Position, hostile bool) bool
}

// StageSource reports the current game stage.
type StageSource interface {
	CurrentStage() model.Stage
}

// DaylightSource reports whether it is currently daytime.
type DaylightSource interface {
	IsDaytime() bool
}

// ConstructionSignal exposes what the spawn budget needs from construction.
// Last-built times equal the game start when nothing was built yet.
type ConstructionSignal interface {
	BuildingCount() int
	LastDefenceBuilt() time.Time
	LastNonDefenceBuilt() time.Time
}

// TerrainProbe returns the ground height at a horizontal position.
type TerrainProbe interface {
	GroundHeight(x, z float64) (float64, bool)
}

// NavProbe reports whether a navigable surface exists near a position.
type NavProbe interface {
	IsNavigable(pos model.Position) bool
}

// IDAllocator returns fresh unit identifiers.
type IDAllocator interface {
	NextUnitID() uint32
}

// UnitFactory creates and destroys unit instances.
type UnitFactory interface {
	Create(pos model.Position) *model.Unit
	Destroy(u *model.Unit)
}

// Clock returns the current simulation time.
type Clock interface {
	Now() time.Time
}

// Observer receives spawn events. Called synchronously on the simulation
// goroutine; implementations must not block.
type Observer interface {
	UnitSpawned(u *model.Unit)
	CellUnreachable(c world.Cell, at time.Time)
	CycleCompleted(r CycleReport)
}

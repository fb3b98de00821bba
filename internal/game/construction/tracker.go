// Package construction places and removes player buildings and mineral nodes.
// It owns their lifecycle and keeps the occupancy grid in sync through its
// registration API, and it publishes the construction signal read by the
// spawn budget.
package construction

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/udisondev/swarmspawn/internal/model"
	"github.com/udisondev/swarmspawn/internal/world"
)

var (
	// ErrPlacementBlocked is returned when a footprint cell is out of bounds or occupied.
	ErrPlacementBlocked = errors.New("placement blocked")
	// ErrNotFound is returned when removing an unknown building or mineral.
	ErrNotFound = errors.New("not found")
	// ErrInvalidSize is returned for footprint sizes that are non-positive or
	// larger than the grid.
	ErrInvalidSize = errors.New("invalid footprint size")
)

// OccupantRegistrar is the part of the occupancy grid construction may use.
type OccupantRegistrar interface {
	PositionValidForPlacement(pos model.Position, hostile bool) bool
	RegisterOccupant(cells []world.Cell)
	DeregisterOccupant(cells []world.Cell)
	Extents() (xMax, zMax int)
}

// IDSource allocates building and mineral identifiers.
type IDSource interface {
	NextBuildingID() uint32
	NextMineralID() uint32
}

// Tracker keeps placed buildings and minerals. Not safe for concurrent
// mutation; BuildingCount may be read from any goroutine.
type Tracker struct {
	grid OccupantRegistrar
	ids  IDSource

	buildings map[uint32]*model.Building
	minerals  map[uint32]*model.Mineral

	buildingCount atomic.Int32 // cached count (O(1) access)

	lastDefence    time.Time
	lastNonDefence time.Time
}

// NewTracker creates a tracker. Last-built times start at gameStart so a
// game without construction accrues the spawn penalty from its beginning.
func NewTracker(grid OccupantRegistrar, ids IDSource, gameStart time.Time) *Tracker {
	return &Tracker{
		grid:           grid,
		ids:            ids,
		buildings:      make(map[uint32]*model.Building),
		minerals:       make(map[uint32]*model.Mineral),
		lastDefence:    gameStart,
		lastNonDefence: gameStart,
	}
}

// PlaceBuilding validates the footprint and registers a new building.
func (t *Tracker) PlaceBuilding(kind model.BuildingKind, anchor model.Position, xSize, zSize int, now time.Time) (*model.Building, error) {
	if xSize <= 0 || zSize <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, xSize, zSize)
	}
	if xMax, zMax := t.grid.Extents(); xSize > xMax+1 || zSize > zMax+1 {
		return nil, fmt.Errorf("%w: %dx%d exceeds grid %dx%d", ErrInvalidSize, xSize, zSize, xMax+1, zMax+1)
	}

	cells := world.Footprint(anchor, xSize, zSize)
	if err := t.validate(cells); err != nil {
		return nil, err
	}

	b := &model.Building{
		ID:     t.ids.NextBuildingID(),
		Kind:   kind,
		Anchor: anchor,
		XSize:  xSize,
		ZSize:  zSize,
	}
	t.grid.RegisterOccupant(cells)
	t.buildings[b.ID] = b
	t.buildingCount.Add(1)

	switch kind {
	case model.BuildingDefence:
		t.lastDefence = now
	default:
		t.lastNonDefence = now
	}

	slog.Info("building placed",
		"buildingID", b.ID,
		"kind", kind,
		"x", anchor.X,
		"z", anchor.Z,
		"size", fmt.Sprintf("%dx%d", xSize, zSize))

	return b, nil
}

// Demolish removes a building and frees its footprint.
func (t *Tracker) Demolish(id uint32) (*model.Building, error) {
	b, ok := t.buildings[id]
	if !ok {
		return nil, fmt.Errorf("building %d: %w", id, ErrNotFound)
	}

	t.grid.DeregisterOccupant(world.Footprint(b.Anchor, b.XSize, b.ZSize))
	delete(t.buildings, id)
	t.buildingCount.Add(-1)

	slog.Info("building demolished", "buildingID", id, "kind", b.Kind)
	return b, nil
}

// PlaceMineral registers a single-cell mineral node.
func (t *Tracker) PlaceMineral(pos model.Position) (*model.Mineral, error) {
	cells := world.SingleCell(pos)
	if err := t.validate(cells); err != nil {
		return nil, err
	}

	m := &model.Mineral{ID: t.ids.NextMineralID(), Position: pos}
	t.grid.RegisterOccupant(cells)
	t.minerals[m.ID] = m

	slog.Debug("mineral placed", "mineralID", m.ID, "x", pos.X, "z", pos.Z)
	return m, nil
}

// RemoveMineral removes a depleted mineral node.
func (t *Tracker) RemoveMineral(id uint32) (*model.Mineral, error) {
	m, ok := t.minerals[id]
	if !ok {
		return nil, fmt.Errorf("mineral %d: %w", id, ErrNotFound)
	}

	t.grid.DeregisterOccupant(world.SingleCell(m.Position))
	delete(t.minerals, id)

	slog.Debug("mineral removed", "mineralID", id)
	return m, nil
}

func (t *Tracker) validate(cells []world.Cell) error {
	for _, c := range cells {
		pos := model.Position{X: float64(c.X), Z: float64(c.Z)}
		if !t.grid.PositionValidForPlacement(pos, false) {
			return fmt.Errorf("%w at (%d, %d)", ErrPlacementBlocked, c.X, c.Z)
		}
	}
	return nil
}

// Building returns the building with the given ID.
func (t *Tracker) Building(id uint32) (*model.Building, bool) {
	b, ok := t.buildings[id]
	return b, ok
}

// MineralCount returns the number of placed mineral nodes.
func (t *Tracker) MineralCount() int {
	return len(t.minerals)
}

// BuildingCount returns the number of placed buildings.
func (t *Tracker) BuildingCount() int {
	return int(t.buildingCount.Load())
}

// LastDefenceBuilt returns when the last defensive building was placed.
func (t *Tracker) LastDefenceBuilt() time.Time {
	return t.lastDefence
}

// LastNonDefenceBuilt returns when the last non-defensive building was placed.
func (t *Tracker) LastNonDefenceBuilt() time.Time {
	return t.lastNonDefence
}

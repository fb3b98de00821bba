package construction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/swarmspawn/internal/config"
	"github.com/udisondev/swarmspawn/internal/model"
	"github.com/udisondev/swarmspawn/internal/world"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newTracker(t *testing.T) (*Tracker, *world.Grid) {
	t.Helper()
	g, err := world.NewGrid(config.Grid{
		XMax:        20,
		ZMax:        20,
		NoSpawnArea: &config.Rect{XMin: 8, ZMin: 8, XMax: 12, ZMax: 12},
	}, nil)
	require.NoError(t, err)
	return NewTracker(g, world.NewIDGenerator(), start), g
}

func TestTracker_InitialSignal(t *testing.T) {
	tr, _ := newTracker(t)

	assert.Zero(t, tr.BuildingCount())
	assert.Equal(t, start, tr.LastDefenceBuilt())
	assert.Equal(t, start, tr.LastNonDefenceBuilt())
}

func TestTracker_PlaceBuildingRegistersFootprint(t *testing.T) {
	tr, g := newTracker(t)
	before := g.SpawnableCount()

	b, err := tr.PlaceBuilding(model.BuildingNonDefence, model.NewPosition(3, 0, 3), 3, 3, start.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, 1, tr.BuildingCount())
	assert.Equal(t, before-9, g.SpawnableCount())
	for x := 2; x <= 4; x++ {
		for z := 2; z <= 4; z++ {
			assert.False(t, g.IsBuildable(x, z), "cell (%d,%d)", x, z)
		}
	}
	assert.True(t, g.IsBuildable(5, 3))
	assert.Equal(t, start.Add(time.Minute), tr.LastNonDefenceBuilt())
	assert.Equal(t, start, tr.LastDefenceBuilt())

	got, ok := tr.Building(b.ID)
	require.True(t, ok)
	assert.Same(t, b, got)
}

func TestTracker_PlaceBuildingInsideNoSpawnArea(t *testing.T) {
	tr, g := newTracker(t)

	_, err := tr.PlaceBuilding(model.BuildingDefence, model.NewPosition(10, 0, 10), 1, 1, start)
	require.NoError(t, err)

	assert.False(t, g.IsBuildable(10, 10))
	assert.True(t, g.IsInExclusion(10, 10))
	assert.Equal(t, start, tr.LastDefenceBuilt())
}

func TestTracker_PlaceBuildingRejected(t *testing.T) {
	tests := []struct {
		name    string
		anchor  model.Position
		x, z    int
		wantErr error
	}{
		{name: "overlaps existing", anchor: model.NewPosition(4, 0, 4), x: 2, z: 2, wantErr: ErrPlacementBlocked},
		{name: "out of bounds", anchor: model.NewPosition(20, 0, 20), x: 3, z: 3, wantErr: ErrPlacementBlocked},
		{name: "zero size", anchor: model.NewPosition(15, 0, 15), x: 0, z: 1, wantErr: ErrInvalidSize},
		{name: "wider than grid", anchor: model.NewPosition(10, 0, 10), x: 22, z: 1, wantErr: ErrInvalidSize},
		{name: "huge footprint", anchor: model.NewPosition(5, 0, 5), x: 1 << 31, z: 1 << 31, wantErr: ErrInvalidSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, g := newTracker(t)
			_, err := tr.PlaceBuilding(model.BuildingNonDefence, model.NewPosition(3, 0, 3), 3, 3, start)
			require.NoError(t, err)
			spawnable := g.SpawnableCount()

			_, err = tr.PlaceBuilding(model.BuildingNonDefence, tt.anchor, tt.x, tt.z, start)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 1, tr.BuildingCount())
			assert.Equal(t, spawnable, g.SpawnableCount(), "grid must be untouched")
		})
	}
}

func TestTracker_PlaceBuildingWholeGrid(t *testing.T) {
	tr, g := newTracker(t)

	_, err := tr.PlaceBuilding(model.BuildingNonDefence, model.NewPosition(10, 0, 10), 21, 21, start)
	require.NoError(t, err)
	assert.Zero(t, g.SpawnableCount())
}

func TestTracker_DemolishRestoresCells(t *testing.T) {
	tr, g := newTracker(t)
	before := g.SpawnableCount()

	b, err := tr.PlaceBuilding(model.BuildingDefence, model.NewPosition(5, 0, 5), 2, 2, start)
	require.NoError(t, err)

	_, err = tr.Demolish(b.ID)
	require.NoError(t, err)

	assert.Zero(t, tr.BuildingCount())
	assert.Equal(t, before, g.SpawnableCount())
	assert.True(t, g.IsBuildable(5, 5))

	_, err = tr.Demolish(b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTracker_Minerals(t *testing.T) {
	tr, g := newTracker(t)

	m, err := tr.PlaceMineral(model.NewPosition(1.2, 0, 0.6))
	require.NoError(t, err)
	assert.False(t, g.IsBuildable(1, 1))
	assert.Equal(t, 1, tr.MineralCount())
	assert.Zero(t, tr.BuildingCount(), "minerals are not buildings")

	_, err = tr.PlaceMineral(model.NewPosition(1, 0, 1))
	assert.ErrorIs(t, err, ErrPlacementBlocked)

	_, err = tr.RemoveMineral(m.ID)
	require.NoError(t, err)
	assert.True(t, g.IsBuildable(1, 1))

	_, err = tr.RemoveMineral(m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

package sim

import (
	"context"

	"github.com/udisondev/swarmspawn/internal/model"
)

// TriggerSpawn requests a spawn cycle on the next step.
func (d *Driver) TriggerSpawn(ctx context.Context) error {
	return d.Exec(ctx, func(g *Game) error {
		g.Scheduler.TriggerNow()
		return nil
	})
}

// SetSpawningEnabled turns spawning on or off.
func (d *Driver) SetSpawningEnabled(ctx context.Context, enabled bool) error {
	return d.Exec(ctx, func(g *Game) error {
		g.Scheduler.SetEnabled(enabled)
		return nil
	})
}

// SetStage switches the game stage.
func (d *Driver) SetStage(ctx context.Context, stage model.Stage) error {
	return d.Exec(ctx, func(g *Game) error {
		g.Stage.SetStage(stage)
		return nil
	})
}

// PlaceBuilding places a building at the current simulated time.
func (d *Driver) PlaceBuilding(ctx context.Context, kind model.BuildingKind, anchor model.Position, xSize, zSize int) (model.Building, error) {
	var placed model.Building
	err := d.Exec(ctx, func(g *Game) error {
		b, err := g.Construction.PlaceBuilding(kind, anchor, xSize, zSize, g.Clock.Now())
		if err != nil {
			return err
		}
		placed = *b
		return nil
	})
	return placed, err
}

// DemolishBuilding removes a building.
func (d *Driver) DemolishBuilding(ctx context.Context, id uint32) error {
	return d.Exec(ctx, func(g *Game) error {
		_, err := g.Construction.Demolish(id)
		return err
	})
}

// PlaceMineral places a mineral node.
func (d *Driver) PlaceMineral(ctx context.Context, pos model.Position) (model.Mineral, error) {
	var placed model.Mineral
	err := d.Exec(ctx, func(g *Game) error {
		m, err := g.Construction.PlaceMineral(pos)
		if err != nil {
			return err
		}
		placed = *m
		return nil
	})
	return placed, err
}

// RemoveMineral removes a mineral node.
func (d *Driver) RemoveMineral(ctx context.Context, id uint32) error {
	return d.Exec(ctx, func(g *Game) error {
		_, err := g.Construction.RemoveMineral(id)
		return err
	})
}

// KillUnit removes a live spawned unit.
func (d *Driver) KillUnit(ctx context.Context, id uint32) error {
	return d.Exec(ctx, func(g *Game) error {
		return g.KillUnit(id)
	})
}

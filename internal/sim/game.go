// Package sim runs the spawn simulation: it wires the occupancy grid,
// terrain, construction and the swarm scheduler together and drives them
// from a single goroutine at a fixed step.
package sim

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/udisondev/swarmspawn/internal/config"
	"github.com/udisondev/swarmspawn/internal/game/construction"
	"github.com/udisondev/swarmspawn/internal/game/geo"
	"github.com/udisondev/swarmspawn/internal/model"
	"github.com/udisondev/swarmspawn/internal/spawn"
	"github.com/udisondev/swarmspawn/internal/unit"
	"github.com/udisondev/swarmspawn/internal/world"
)

// unitPoolSize bounds the number of idle pooled units.
const unitPoolSize = 256

// Game is the complete simulation state. It is owned by the goroutine that
// runs the Driver; other goroutines reach it only through Driver.Exec.
type Game struct {
	Grid         *world.Grid
	Terrain      *geo.Engine
	IDs          *world.IDGenerator
	Construction *construction.Tracker
	Units        *unit.Pool
	Scheduler    *spawn.Scheduler
	Clock        *Clock
	Day          *DayCycle
	Stage        *StageHolder
}

// NewGame builds a game from cfg starting at start. Observers receive every
// spawn event.
func NewGame(cfg config.Server, start time.Time, observers ...spawn.Observer) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	stage, err := model.ParseStage(cfg.InitialStage)
	if err != nil {
		return nil, fmt.Errorf("initial stage: %w", err)
	}

	seed := uint64(cfg.Seed)
	if cfg.Seed == 0 {
		seed = rand.Uint64()
	}

	grid, err := world.NewGrid(cfg.Grid, rand.New(rand.NewPCG(seed, 1)))
	if err != nil {
		return nil, fmt.Errorf("creating grid: %w", err)
	}

	clock := NewClock(start)
	ids := world.NewIDGenerator()
	g := &Game{
		Grid:         grid,
		Terrain:      geo.NewEngine(cfg.Terrain, cfg.Grid.XMax, cfg.Grid.ZMax),
		IDs:          ids,
		Construction: construction.NewTracker(grid, ids, start),
		Units:        unit.NewPool(unitPoolSize),
		Clock:        clock,
		Day:          NewDayCycle(cfg.DayCycle, clock),
		Stage:        NewStageHolder(stage),
	}

	g.Scheduler, err = spawn.NewScheduler(cfg.Spawning, spawn.Deps{
		Area:         grid,
		Stages:       g.Stage,
		Daylight:     g.Day,
		Construction: g.Construction,
		Terrain:      g.Terrain,
		Nav:          g.Terrain,
		IDs:          ids,
		Units:        g.Units,
		Clock:        clock,
		Rand:         rand.New(rand.NewPCG(seed, 2)),
		Observers:    observers,
	})
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}

	return g, nil
}

// KillUnit removes a live spawned unit and returns it to the pool.
func (g *Game) KillUnit(id uint32) error {
	u, ok := g.Scheduler.Live().Get(id)
	if !ok {
		return fmt.Errorf("unit %d: %w", id, ErrUnknownUnit)
	}
	g.Scheduler.NotifyUnitRemoved(u)
	g.Units.Destroy(u)
	return nil
}

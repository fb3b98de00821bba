package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/swarmspawn/internal/model"
	"github.com/udisondev/swarmspawn/internal/spawn"
)

var (
	// ErrStopped is returned by Exec after the driver loop has exited.
	ErrStopped = errors.New("simulation stopped")
	// ErrUnknownUnit is returned when killing a unit that is not alive.
	ErrUnknownUnit = errors.New("unknown unit")
	// ErrCommandPanicked is returned by Exec when fn panicked on the loop.
	ErrCommandPanicked = errors.New("simulation command panicked")
)

// Status is a read-only snapshot of the simulation, published after every
// step and command.
type Status struct {
	Now              time.Time          `json:"now"`
	Stage            model.Stage        `json:"stage"`
	Phase            string             `json:"phase"`
	SpawningEnabled  bool               `json:"spawning_enabled"`
	TriggerPending   bool               `json:"trigger_pending"`
	LiveUnits        int                `json:"live_units"`
	Penalty          int                `json:"penalty"`
	Buildings        int                `json:"buildings"`
	Minerals         int                `json:"minerals"`
	SpawnableCells   int                `json:"spawnable_cells"`
	UnreachableCells int                `json:"unreachable_cells"`
	Cycles           int                `json:"cycles"`
	LastCycle        *spawn.CycleReport `json:"last_cycle,omitempty"`
}

type command struct {
	fn   func(*Game) error
	done chan error
}

// Driver steps the game at a fixed interval on its own goroutine and
// serializes every mutation coming from other goroutines.
type Driver struct {
	game     *Game
	interval time.Duration

	cmds     chan command
	stopCh   chan struct{}
	stopOnce sync.Once
	exited   chan struct{}

	lastCycle *spawn.CycleReport
	status    atomic.Pointer[Status]
}

// NewDriver creates a driver stepping game every interval.
func NewDriver(game *Game, interval time.Duration) *Driver {
	d := &Driver{
		game:     game,
		interval: interval,
		cmds:     make(chan command),
		stopCh:   make(chan struct{}),
		exited:   make(chan struct{}),
	}
	d.publish()
	return d
}

// Start runs the simulation loop (blocks until context is canceled or Stop is called).
func (d *Driver) Start(ctx context.Context) error {
	defer close(d.exited)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	slog.Info("simulation driver started", "interval", d.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation driver stopping")
			return ctx.Err()

		case <-d.stopCh:
			slog.Info("simulation driver stopped")
			return nil

		case cmd := <-d.cmds:
			err := d.run(cmd.fn)
			d.publish()
			cmd.done <- err

		case <-ticker.C:
			d.Step()
		}
	}
}

// Stop stops the simulation loop.
func (d *Driver) Stop() {
	d.stopOnce.Do(func() { close(d.stopCh) })
}

// Step advances the simulated clock by one interval and runs the spawn
// scheduler. Must only be called from the loop goroutine, or when the loop
// is not running.
func (d *Driver) Step() {
	d.game.Clock.Advance(d.interval)
	if report, ran := d.game.Scheduler.Tick(); ran && report.Budget > 0 {
		d.lastCycle = &report
	}
	d.publish()
}

// run executes a command, turning a panic into ErrCommandPanicked so the
// loop keeps stepping.
func (d *Driver) run(fn func(*Game) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("simulation command panicked", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("%w: %v", ErrCommandPanicked, r)
		}
	}()
	return fn(d.game)
}

// Exec runs fn on the simulation goroutine and returns its error.
// A panic in fn is recovered and reported as ErrCommandPanicked.
func (d *Driver) Exec(ctx context.Context, fn func(*Game) error) error {
	cmd := command{fn: fn, done: make(chan error, 1)}

	select {
	case d.cmds <- cmd:
	case <-d.exited:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-cmd.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the latest published snapshot.
func (d *Driver) Status() Status {
	return *d.status.Load()
}

// Game returns the driven game. Callers must not mutate it while the loop runs.
func (d *Driver) Game() *Game {
	return d.game
}

func (d *Driver) publish() {
	g := d.game
	d.status.Store(&Status{
		Now:              g.Clock.Now(),
		Stage:            g.Stage.CurrentStage(),
		Phase:            g.Day.Phase(),
		SpawningEnabled:  g.Scheduler.Enabled(),
		TriggerPending:   g.Scheduler.Triggered(),
		LiveUnits:        g.Scheduler.LiveCount(),
		Penalty:          g.Scheduler.Penalty(),
		Buildings:        g.Construction.BuildingCount(),
		Minerals:         g.Construction.MineralCount(),
		SpawnableCells:   g.Grid.SpawnableCount(),
		UnreachableCells: g.Scheduler.Unreachable().Len(),
		Cycles:           g.Scheduler.Cycles(),
		LastCycle:        d.lastCycle,
	})
}

package spawn

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/swarmspawn/internal/config"
	"github.com/udisondev/swarmspawn/internal/model"
	"github.com/udisondev/swarmspawn/internal/world"
)

var testEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type fakeStage struct{ stage model.Stage }

func (f *fakeStage) CurrentStage() model.Stage { return f.stage }

type fakeDaylight struct{ day bool }

func (f *fakeDaylight) IsDaytime() bool { return f.day }

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

type fakeConstruction struct {
	count          int
	lastDefence    time.Time
	lastNonDefence time.Time
}

func (f *fakeConstruction) BuildingCount() int             { return f.count }
func (f *fakeConstruction) LastDefenceBuilt() time.Time    { return f.lastDefence }
func (f *fakeConstruction) LastNonDefenceBuilt() time.Time { return f.lastNonDefence }

type fakeTerrain struct{ noGround bool }

func (f *fakeTerrain) GroundHeight(x, z float64) (float64, bool) {
	if f.noGround {
		return 0, false
	}
	return 1.5, true
}

type fakeNav struct{ reject bool }

func (f *fakeNav) IsNavigable(model.Position) bool { return !f.reject }

type fakeIDs struct{ next uint32 }

func (f *fakeIDs) NextUnitID() uint32 {
	f.next++
	return f.next
}

type fakeUnits struct {
	created   int
	destroyed int
}

func (f *fakeUnits) Create(pos model.Position) *model.Unit {
	f.created++
	return &model.Unit{Position: pos}
}

func (f *fakeUnits) Destroy(u *model.Unit) {
	f.destroyed++
	u.Reset()
}

type recordingObserver struct {
	spawned     []*model.Unit
	unreachable []world.Cell
	reports     []CycleReport
}

func (r *recordingObserver) UnitSpawned(u *model.Unit) { r.spawned = append(r.spawned, u) }
func (r *recordingObserver) CellUnreachable(c world.Cell, _ time.Time) {
	r.unreachable = append(r.unreachable, c)
}
func (r *recordingObserver) CycleCompleted(rep CycleReport) { r.reports = append(r.reports, rep) }

type harness struct {
	grid         *world.Grid
	stage        *fakeStage
	daylight     *fakeDaylight
	clock        *fakeClock
	construction *fakeConstruction
	terrain      *fakeTerrain
	nav          *fakeNav
	units        *fakeUnits
	observer     *recordingObserver
	sched        *Scheduler
}

func testSpawning() config.Spawning {
	cfg := config.DefaultSpawning()
	cfg.RespawnDelay = 10 * time.Second
	cfg.BudgetPerBuilding = 1
	cfg.Swarm = config.Swarm{
		MaxRadius:           3,
		MaxSize:             2,
		MaxCount:            10,
		Spacing:             2,
		MaxAttemptsPerCycle: 2000,
	}
	return cfg
}

func newHarness(t *testing.T, cfg config.Spawning, grid config.Grid) *harness {
	t.Helper()

	g, err := world.NewGrid(grid, rand.New(rand.NewPCG(7, 11)))
	require.NoError(t, err)

	h := &harness{
		grid:     g,
		stage:    &fakeStage{stage: model.StageMainGame},
		daylight: &fakeDaylight{},
		clock:    &fakeClock{now: testEpoch},
		construction: &fakeConstruction{
			lastDefence:    testEpoch,
			lastNonDefence: testEpoch,
		},
		terrain:  &fakeTerrain{},
		nav:      &fakeNav{},
		units:    &fakeUnits{},
		observer: &recordingObserver{},
	}

	h.sched, err = NewScheduler(cfg, Deps{
		Area:         g,
		Stages:       h.stage,
		Daylight:     h.daylight,
		Construction: h.construction,
		Terrain:      h.terrain,
		Nav:          h.nav,
		IDs:          &fakeIDs{},
		Units:        h.units,
		Clock:        h.clock,
		Rand:         rand.New(rand.NewPCG(3, 5)),
		Observers:    []Observer{h.observer},
	})
	require.NoError(t, err)
	return h
}

func chebyshev(a, b world.Cell) int {
	return max(abs(a.X-b.X), abs(a.Z-b.Z))
}

func TestNewScheduler_MissingDependencies(t *testing.T) {
	_, err := NewScheduler(testSpawning(), Deps{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingDependency)
}

func TestNewScheduler_InvalidConfig(t *testing.T) {
	cfg := testSpawning()
	cfg.Swarm.MaxRadius = 0

	_, err := NewScheduler(cfg, Deps{})
	assert.Error(t, err)
}

func TestScheduler_BudgetSplitAcrossSwarms(t *testing.T) {
	h := newHarness(t, testSpawning(), config.Grid{XMax: 60, ZMax: 60})
	h.construction.count = 5

	report, ran := h.sched.Tick()
	require.True(t, ran)

	assert.Equal(t, 5, report.Budget)
	assert.Equal(t, 5, report.Placed)
	assert.Equal(t, StopBudgetMet, report.StopReason)
	require.Len(t, report.Swarms, 3)
	assert.Equal(t, []int{2, 2, 1}, []int{report.Swarms[0].Units, report.Swarms[1].Units, report.Swarms[2].Units})
	assert.Equal(t, 5, h.sched.LiveCount())
	require.Len(t, h.observer.spawned, 5)
	require.Len(t, h.observer.reports, 1)

	// units never share a cell and land on the probed ground height
	cells := make(map[world.Cell]struct{})
	for _, u := range h.observer.spawned {
		c := world.CellOf(u.Position)
		assert.NotContains(t, cells, c)
		cells[c] = struct{}{}
		assert.Equal(t, 1.5, u.Position.Y)
		assert.True(t, u.Active)
		assert.NotZero(t, u.ID)
	}

	// later swarm centres keep clear of earlier placements
	reach := 3 * 2
	for i := 1; i < len(report.Swarms); i++ {
		centre := world.CellOf(report.Swarms[i].Center)
		placedBefore := 0
		for j := range i {
			placedBefore += report.Swarms[j].Units
		}
		for _, u := range h.observer.spawned[:placedBefore] {
			assert.Greater(t, chebyshev(centre, world.CellOf(u.Position)), reach)
		}
	}
}

func TestScheduler_SwarmSizeCap(t *testing.T) {
	cfg := testSpawning()
	cfg.Swarm.MaxSize = 3
	h := newHarness(t, cfg, config.Grid{XMax: 80, ZMax: 80})
	h.construction.count = 9

	report, ran := h.sched.Tick()
	require.True(t, ran)

	assert.Equal(t, 9, report.Placed)
	for i, s := range report.Swarms {
		assert.LessOrEqual(t, s.Units, 3, "swarm %d", i)
	}
}

func TestScheduler_SwarmCountCap(t *testing.T) {
	cfg := testSpawning()
	cfg.Swarm.MaxSize = 1
	cfg.Swarm.MaxCount = 2
	h := newHarness(t, cfg, config.Grid{XMax: 60, ZMax: 60})
	h.construction.count = 5

	report, ran := h.sched.Tick()
	require.True(t, ran)

	assert.Equal(t, 2, report.Placed)
	assert.Len(t, report.Swarms, 2)
	assert.Equal(t, StopSwarmCap, report.StopReason)
}

func TestScheduler_AttemptCap(t *testing.T) {
	cfg := testSpawning()
	cfg.Swarm.MaxSize = 20
	cfg.Swarm.MaxAttemptsPerCycle = 3
	h := newHarness(t, cfg, config.Grid{XMax: 60, ZMax: 60})
	h.construction.count = 10

	report, ran := h.sched.Tick()
	require.True(t, ran)

	assert.Equal(t, StopAttemptCap, report.StopReason)
	assert.Equal(t, 3, report.Attempts)
	assert.LessOrEqual(t, report.Placed, 3)
}

func TestScheduler_NavFailureMarksCellsUnreachable(t *testing.T) {
	cfg := testSpawning()
	cfg.Swarm.MaxRadius = 1
	cfg.Swarm.Spacing = 1
	cfg.Swarm.MaxSize = 8
	cfg.Swarm.MaxCount = 100
	h := newHarness(t, cfg, config.Grid{XMax: 4, ZMax: 4})
	h.construction.count = 3
	h.nav.reject = true

	report, ran := h.sched.Tick()
	require.True(t, ran)

	assert.Equal(t, 0, report.Placed)
	assert.Equal(t, StopNoCandidates, report.StopReason)
	assert.Equal(t, 25, h.sched.Unreachable().Len())
	assert.Len(t, h.observer.unreachable, 25)
	assert.Equal(t, 25, h.units.created)
	assert.Equal(t, h.units.created, h.units.destroyed)
	assert.Zero(t, h.sched.LiveCount())
	assert.Empty(t, h.observer.spawned)
}

func TestScheduler_NoGroundCreatesNoUnit(t *testing.T) {
	cfg := testSpawning()
	cfg.Swarm.MaxRadius = 1
	cfg.Swarm.Spacing = 1
	cfg.Swarm.MaxCount = 100
	h := newHarness(t, cfg, config.Grid{XMax: 2, ZMax: 2})
	h.construction.count = 1
	h.terrain.noGround = true

	report, ran := h.sched.Tick()
	require.True(t, ran)

	assert.Equal(t, 0, report.Placed)
	assert.Equal(t, StopNoCandidates, report.StopReason)
	assert.Equal(t, 9, h.sched.Unreachable().Len())
	assert.Zero(t, h.units.created)
}

func TestScheduler_SeededUnreachableNeverUsedAsCentre(t *testing.T) {
	cfg := testSpawning()
	cfg.Swarm.MaxSize = 1
	h := newHarness(t, cfg, config.Grid{XMax: 4, ZMax: 4})
	h.construction.count = 1

	var seed []world.Cell
	for x := 0; x <= 4; x++ {
		for z := 0; z <= 4; z++ {
			if x != 2 || z != 2 {
				seed = append(seed, world.Cell{X: x, Z: z})
			}
		}
	}
	h.sched.Unreachable().Seed(seed)

	report, ran := h.sched.Tick()
	require.True(t, ran)

	require.Equal(t, 1, report.Placed)
	assert.Equal(t, world.Cell{X: 2, Z: 2}, world.CellOf(report.Swarms[0].Center))
}

func TestScheduler_CombatStageBypassesOccupancy(t *testing.T) {
	cfg := testSpawning()
	cfg.Swarm.Spacing = 1
	cfg.Swarm.MaxSize = 8
	cfg.BudgetPerBuilding = 3

	tests := []struct {
		name       string
		stage      model.Stage
		wantPlaced int
		wantStop   StopReason
	}{
		{name: "combat", stage: model.StageCombat, wantPlaced: 3, wantStop: StopBudgetMet},
		{name: "main game", stage: model.StageMainGame, wantPlaced: 1, wantStop: StopNoCandidates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, cfg, config.Grid{XMax: 20, ZMax: 20})
			h.stage.stage = tt.stage
			h.construction.count = 1

			var occupied []world.Cell
			for x := 0; x <= 20; x++ {
				for z := 0; z <= 20; z++ {
					if x != 10 || z != 10 {
						occupied = append(occupied, world.Cell{X: x, Z: z})
					}
				}
			}
			h.grid.RegisterOccupant(occupied)

			report, ran := h.sched.Tick()
			require.True(t, ran)

			assert.Equal(t, 3, report.Budget)
			assert.Equal(t, tt.wantPlaced, report.Placed)
			assert.Equal(t, tt.wantStop, report.StopReason)
			assert.Equal(t, world.Cell{X: 10, Z: 10}, world.CellOf(report.Swarms[0].Center))
		})
	}
}

func TestScheduler_ShouldRun(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
		want  bool
	}{
		{name: "night, nothing alive, no death yet", setup: func(*harness) {}, want: true},
		{name: "disabled", setup: func(h *harness) { h.sched.SetEnabled(false) }, want: false},
		{name: "ineligible stage", setup: func(h *harness) { h.stage.stage = model.StageTutorial }, want: false},
		{name: "daytime", setup: func(h *harness) { h.daylight.day = true }, want: false},
		{name: "units alive", setup: func(h *harness) { h.sched.Live().Add(&model.Unit{ID: 1}) }, want: false},
		{
			name: "respawn delay pending",
			setup: func(h *harness) {
				h.sched.Live().Add(&model.Unit{ID: 1})
				h.sched.NotifyUnitRemoved(&model.Unit{ID: 1})
				h.clock.now = h.clock.now.Add(10 * time.Second)
			},
			want: false,
		},
		{
			name: "respawn delay elapsed",
			setup: func(h *harness) {
				h.sched.Live().Add(&model.Unit{ID: 1})
				h.sched.NotifyUnitRemoved(&model.Unit{ID: 1})
				h.clock.now = h.clock.now.Add(11 * time.Second)
			},
			want: true,
		},
		{
			name: "trigger overrides daytime and live units",
			setup: func(h *harness) {
				h.daylight.day = true
				h.sched.Live().Add(&model.Unit{ID: 1})
				h.sched.TriggerNow()
			},
			want: true,
		},
		{
			name: "trigger does not override stage",
			setup: func(h *harness) {
				h.stage.stage = model.StageVictory
				h.sched.TriggerNow()
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testSpawning(), config.Grid{XMax: 10, ZMax: 10})
			tt.setup(h)
			assert.Equal(t, tt.want, h.sched.ShouldRun())
		})
	}
}

func TestScheduler_IgnoreDayNight(t *testing.T) {
	cfg := testSpawning()
	cfg.IgnoreDayNight = true
	h := newHarness(t, cfg, config.Grid{XMax: 10, ZMax: 10})
	h.daylight.day = true

	assert.True(t, h.sched.ShouldRun())
}

func TestScheduler_TriggerConsumedByCycle(t *testing.T) {
	h := newHarness(t, testSpawning(), config.Grid{XMax: 30, ZMax: 30})
	h.construction.count = 1
	h.daylight.day = true
	h.sched.TriggerNow()

	_, ran := h.sched.Tick()
	require.True(t, ran)
	assert.False(t, h.sched.Triggered())

	_, ran = h.sched.Tick()
	assert.False(t, ran)
	assert.Equal(t, 1, h.sched.Cycles())
}

func TestScheduler_WaveGate(t *testing.T) {
	h := newHarness(t, testSpawning(), config.Grid{XMax: 40, ZMax: 40})
	h.construction.count = 2

	_, ran := h.sched.Tick()
	require.True(t, ran)
	require.Equal(t, 2, h.sched.LiveCount())

	_, ran = h.sched.Tick()
	assert.False(t, ran, "no new wave while units survive")

	for _, u := range h.observer.spawned {
		h.sched.NotifyUnitRemoved(u)
	}
	assert.Zero(t, h.sched.LiveCount())
	assert.Equal(t, testEpoch, h.sched.LastDeath())

	_, ran = h.sched.Tick()
	assert.False(t, ran, "respawn delay not elapsed")

	h.clock.now = h.clock.now.Add(11 * time.Second)
	_, ran = h.sched.Tick()
	assert.True(t, ran)
}

func TestScheduler_NotifyUnitRemovedIgnoresUnknown(t *testing.T) {
	h := newHarness(t, testSpawning(), config.Grid{XMax: 10, ZMax: 10})

	h.sched.NotifyUnitRemoved(&model.Unit{ID: 42})
	h.sched.NotifyUnitRemoved(nil)

	assert.True(t, h.sched.LastDeath().IsZero())
}

func TestScheduler_PenaltyAppliedOncePerCooldown(t *testing.T) {
	cfg := testSpawning()
	cfg.BudgetPerBuilding = 3
	cfg.IgnoreDayNight = true
	h := newHarness(t, cfg, config.Grid{XMax: 80, ZMax: 80})
	h.construction.count = 1
	h.clock.now = testEpoch.Add(200 * time.Second)

	h.sched.TriggerNow()
	report, ran := h.sched.Tick()
	require.True(t, ran)
	assert.Equal(t, 2, report.Penalty)
	assert.Equal(t, 5, report.Budget)

	h.sched.TriggerNow()
	report, _ = h.sched.Tick()
	assert.Equal(t, 2, report.Penalty, "cooldown not elapsed")

	h.clock.now = h.clock.now.Add(61 * time.Second)
	h.sched.TriggerNow()
	report, _ = h.sched.Tick()
	assert.Equal(t, 4, report.Penalty)
	assert.Equal(t, 7, report.Budget)
}

func TestScheduler_Budget(t *testing.T) {
	cfg := testSpawning()
	cfg.BudgetPerBuilding = 3
	h := newHarness(t, cfg, config.Grid{XMax: 10, ZMax: 10})
	h.construction.count = 4
	h.sched.SeedPenalty(5)

	assert.Equal(t, 3, h.sched.Budget(model.StageCombat))
	assert.Equal(t, 17, h.sched.Budget(model.StageMainGame))
}

func TestScheduler_EmptyBudgetNotReported(t *testing.T) {
	h := newHarness(t, testSpawning(), config.Grid{XMax: 10, ZMax: 10})

	report, ran := h.sched.Tick()
	require.True(t, ran)

	assert.Zero(t, report.Budget)
	assert.Zero(t, report.Placed)
	assert.Empty(t, report.Swarms)
	assert.Empty(t, h.observer.reports)
	assert.Zero(t, h.sched.Cycles())
}

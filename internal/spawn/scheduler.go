package spawn

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/udisondev/swarmspawn/internal/config"
	"github.com/udisondev/swarmspawn/internal/model"
	"github.com/udisondev/swarmspawn/internal/world"
)

// ErrMissingDependency is returned by NewScheduler when a collaborator is nil.
var ErrMissingDependency = errors.New("missing scheduler dependency")

// StopReason tells why a spawn cycle ended.
type StopReason string

const (
	StopBudgetMet    StopReason = "budget_met"
	StopSwarmCap     StopReason = "swarm_cap"
	StopAttemptCap   StopReason = "attempt_cap"
	StopNoCandidates StopReason = "no_candidates"
)

// SwarmSummary describes one swarm placed during a cycle.
type SwarmSummary struct {
	Center model.Position `json:"center"`
	Units  int            `json:"units"`
}

// CycleReport summarizes one spawn cycle.
type CycleReport struct {
	StartedAt  time.Time      `json:"started_at"`
	Stage      model.Stage    `json:"stage"`
	Budget     int            `json:"budget"`
	Placed     int            `json:"placed"`
	Attempts   int            `json:"attempts"`
	Penalty    int            `json:"penalty"`
	Swarms     []SwarmSummary `json:"swarms"`
	StopReason StopReason     `json:"stop_reason"`
}

// Deps are the collaborators of the scheduler. Everything except Rand and
// Observers is required.
type Deps struct {
	Area         SpawnArea
	Stages       StageSource
	Daylight     DaylightSource
	Construction ConstructionSignal
	Terrain      TerrainProbe
	Nav          NavProbe
	IDs          IDAllocator
	Units        UnitFactory
	Clock        Clock
	Rand         *rand.Rand
	Observers    []Observer
}

func (d Deps) validate() error {
	var missing []error
	check := func(ok bool, name string) {
		if !ok {
			missing = append(missing, fmt.Errorf("%w: %s", ErrMissingDependency, name))
		}
	}
	check(d.Area != nil, "Area")
	check(d.Stages != nil, "Stages")
	check(d.Daylight != nil, "Daylight")
	check(d.Construction != nil, "Construction")
	check(d.Terrain != nil, "Terrain")
	check(d.Nav != nil, "Nav")
	check(d.IDs != nil, "IDs")
	check(d.Units != nil, "Units")
	check(d.Clock != nil, "Clock")
	return errors.Join(missing...)
}

// Scheduler converts a per-cycle spawn budget into clustered unit placements.
// Tick and NotifyUnitRemoved must be called from the simulation goroutine;
// TriggerNow, SetEnabled and LiveCount are safe from any goroutine.
type Scheduler struct {
	cfg         config.Spawning
	eligible    map[model.Stage]struct{}
	combatStage model.Stage
	rings       *RingTable
	deps        Deps
	rng         *rand.Rand

	live        *LiveUnits
	penalty     *Penalty
	unreachable *Unreachable

	enabled atomic.Bool
	trigger atomic.Bool

	lastDeath time.Time // zero until the first recorded death
	cycles    int
}

// NewScheduler validates cfg, builds the ring table and wires collaborators.
func NewScheduler(cfg config.Spawning, deps Deps) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid spawning config: %w", err)
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}

	rings, err := NewRingTable(cfg.Swarm.MaxRadius)
	if err != nil {
		return nil, fmt.Errorf("building ring table: %w", err)
	}

	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	eligible := make(map[model.Stage]struct{}, len(cfg.EligibleStages))
	for _, st := range cfg.EligibleStages {
		eligible[model.Stage(st)] = struct{}{}
	}

	s := &Scheduler{
		cfg:         cfg,
		eligible:    eligible,
		combatStage: model.Stage(cfg.CombatStage),
		rings:       rings,
		deps:        deps,
		rng:         rng,
		live:        NewLiveUnits(),
		penalty:     NewPenalty(cfg.Penalty),
		unreachable: NewUnreachable(),
	}
	s.enabled.Store(cfg.Enabled)

	return s, nil
}

// SetEnabled turns spawning on or off globally.
func (s *Scheduler) SetEnabled(enabled bool) {
	s.enabled.Store(enabled)
}

// Enabled reports whether spawning is globally enabled.
func (s *Scheduler) Enabled() bool {
	return s.enabled.Load()
}

// TriggerNow requests a cycle on the next tick regardless of day/night,
// live units and respawn delay. Stage eligibility still applies.
func (s *Scheduler) TriggerNow() {
	s.trigger.Store(true)
}

// Triggered reports whether a manual trigger is pending.
func (s *Scheduler) Triggered() bool {
	return s.trigger.Load()
}

// LiveCount returns the number of live spawned units.
func (s *Scheduler) LiveCount() int {
	return s.live.Count()
}

// Live returns the live-unit set.
func (s *Scheduler) Live() *LiveUnits {
	return s.live
}

// Penalty returns the accumulated spawn penalty.
func (s *Scheduler) Penalty() int {
	return s.penalty.Accumulated()
}

// SeedPenalty restores a previously accumulated penalty.
func (s *Scheduler) SeedPenalty(v int) {
	s.penalty.Seed(v)
}

// Unreachable returns the known-bad cell registry.
func (s *Scheduler) Unreachable() *Unreachable {
	return s.unreachable
}

// Rings returns the swarm ring table.
func (s *Scheduler) Rings() *RingTable {
	return s.rings
}

// Cycles returns the number of cycles run so far.
func (s *Scheduler) Cycles() int {
	return s.cycles
}

// LastDeath returns the time of the last recorded unit death (zero if none).
func (s *Scheduler) LastDeath() time.Time {
	return s.lastDeath
}

// ShouldRun evaluates the cycle gate.
func (s *Scheduler) ShouldRun() bool {
	if !s.enabled.Load() {
		return false
	}
	if _, ok := s.eligible[s.deps.Stages.CurrentStage()]; !ok {
		return false
	}
	if s.trigger.Load() {
		return true
	}
	if !s.cfg.IgnoreDayNight && s.deps.Daylight.IsDaytime() {
		return false
	}
	if s.live.Count() > 0 {
		return false
	}
	return s.lastDeath.IsZero() || s.deps.Clock.Now().Sub(s.lastDeath) > s.cfg.RespawnDelay
}

// Tick runs one spawn cycle if the gate allows it. A cycle with an empty
// budget places nothing and is not reported to observers.
func (s *Scheduler) Tick() (CycleReport, bool) {
	if !s.ShouldRun() {
		return CycleReport{}, false
	}
	s.trigger.Store(false)

	report := s.runCycle()
	if report.Budget == 0 {
		slog.Debug("spawn cycle skipped, empty budget", "stage", report.Stage)
		return report, true
	}
	s.cycles++

	slog.Info("spawn cycle completed",
		"cycle", s.cycles,
		"stage", report.Stage,
		"budget", report.Budget,
		"placed", report.Placed,
		"swarms", len(report.Swarms),
		"attempts", report.Attempts,
		"penalty", report.Penalty,
		"stopReason", report.StopReason)

	for _, o := range s.deps.Observers {
		o.CycleCompleted(report)
	}
	return report, true
}

// Budget returns the number of units a cycle in stage should place.
func (s *Scheduler) Budget(stage model.Stage) int {
	if stage == s.combatStage {
		return s.cfg.CombatBudget
	}
	return s.cfg.BudgetPerBuilding*s.deps.Construction.BuildingCount() + s.penalty.Accumulated()
}

// NotifyUnitRemoved removes a dead or destroyed unit from the live set and
// records the time of death. Unknown units are ignored.
func (s *Scheduler) NotifyUnitRemoved(u *model.Unit) {
	if u == nil {
		return
	}
	if _, ok := s.live.Remove(u.ID); !ok {
		return
	}
	s.lastDeath = s.deps.Clock.Now()

	slog.Debug("spawned unit removed", "unitID", u.ID, "live", s.live.Count())
}

// cycleState is the transient swarm state of one cycle.
type cycleState struct {
	center      model.Position
	hasCenter   bool
	radius      int // next ring to consume
	size        int // units placed in the current swarm
	offsets     []Offset
	unavailable world.CellSet
}

func (s *Scheduler) runCycle() CycleReport {
	now := s.deps.Clock.Now()
	stage := s.deps.Stages.CurrentStage()

	if s.penalty.Check(now, s.deps.Construction.LastDefenceBuilt(), s.deps.Construction.LastNonDefenceBuilt()) {
		slog.Info("spawn penalty incremented", "penalty", s.penalty.Accumulated())
	}

	report := CycleReport{
		StartedAt:  now,
		Stage:      stage,
		Budget:     s.Budget(stage),
		Penalty:    s.penalty.Accumulated(),
		StopReason: StopBudgetMet,
	}

	swarm := s.cfg.Swarm
	spacing := swarm.Spacing
	reach := float64(s.rings.MaxRadius()) * spacing
	left, right := int(reach), int(math.Ceil(reach))
	anyPosition := stage == s.combatStage

	st := cycleState{unavailable: world.NewCellSet()}

	for report.Placed < report.Budget {
		if report.Attempts >= swarm.MaxAttemptsPerCycle {
			report.StopReason = StopAttemptCap
			slog.Warn("spawn cycle hit attempt cap",
				"attempts", report.Attempts,
				"placed", report.Placed,
				"budget", report.Budget)
			break
		}
		report.Attempts++

		ringsExhausted := len(st.offsets) == 0 && st.radius >= s.rings.Len()
		if !st.hasCenter || st.size >= swarm.MaxSize || ringsExhausted {
			if len(report.Swarms) >= swarm.MaxCount {
				report.StopReason = StopSwarmCap
				break
			}
			center, ok := s.deps.Area.RandomSpawnablePosition(world.AnyOf(st.unavailable, s.unreachable))
			if !ok {
				report.StopReason = StopNoCandidates
				break
			}
			st.center = center
			st.hasCenter = true
			st.radius = 0
			st.size = 0
			st.offsets = st.offsets[:0]
			report.Swarms = append(report.Swarms, SwarmSummary{Center: center})
		}

		if len(st.offsets) == 0 {
			st.offsets = s.rings.AppendRing(st.offsets, st.radius)
			st.radius++
		}

		j := s.rng.IntN(len(st.offsets))
		off := st.offsets[j]
		st.offsets[j] = st.offsets[len(st.offsets)-1]
		st.offsets = st.offsets[:len(st.offsets)-1]

		candidate := st.center.Add(model.Position{
			X: float64(off.DX) * spacing,
			Z: float64(off.DZ) * spacing,
		})
		cell := world.CellOf(candidate)

		if s.unreachable.Excludes(cell) {
			continue
		}
		if !anyPosition && !s.deps.Area.PositionValidForPlacement(candidate, true) {
			slog.Debug("spawn candidate rejected", "x", candidate.X, "z", candidate.Z)
			continue
		}

		u, ok := s.place(candidate, cell)
		if !ok {
			continue
		}

		s.live.Add(u)
		report.Placed++
		st.size++
		report.Swarms[len(report.Swarms)-1].Units++
		st.unavailable.AddSquare(cell, left, right)

		for _, o := range s.deps.Observers {
			o.UnitSpawned(u)
		}
	}

	return report
}

// place creates a unit on the ground at candidate and keeps it if it stands
// on a navigable surface. Otherwise the cell is registered as unreachable and
// the unit is destroyed.
func (s *Scheduler) place(candidate model.Position, cell world.Cell) (*model.Unit, bool) {
	ground, ok := s.deps.Terrain.GroundHeight(candidate.X, candidate.Z)
	if !ok {
		s.markUnreachable(cell)
		return nil, false
	}

	u := s.deps.Units.Create(candidate.WithHeight(ground))
	u.Setup(s.deps.IDs.NextUnitID())

	if !s.deps.Nav.IsNavigable(u.Position) {
		s.markUnreachable(cell)
		s.deps.Units.Destroy(u)
		return nil, false
	}

	return u, true
}

func (s *Scheduler) markUnreachable(c world.Cell) {
	if !s.unreachable.Mark(c) {
		return
	}
	at := s.deps.Clock.Now()

	slog.Debug("cell registered as unreachable", "x", c.X, "z", c.Z, "known", s.unreachable.Len())

	for _, o := range s.deps.Observers {
		o.CellUnreachable(c, at)
	}
}

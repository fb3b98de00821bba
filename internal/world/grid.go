package world

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/udisondev/swarmspawn/internal/config"
	"github.com/udisondev/swarmspawn/internal/model"
)

// NoCandidate is returned by RandomSpawnablePosition when no spawnable cell
// remains. It lies outside the grid, so it never passes placement checks.
var NoCandidate = model.Position{X: -1, Y: 0.5, Z: -1}

// rejectionTries bounds the random draws made before falling back to a
// filtered scan of the candidate index.
const rejectionTries = 16

// Grid tracks, per cell, whether construction and hostile spawning are
// currently allowed. It is the only owner of that state: other subsystems
// change it exclusively through RegisterOccupant/DeregisterOccupant.
//
// Not safe for concurrent use; all access happens on the simulation goroutine.
type Grid struct {
	xMax, zMax  int
	hoverHeight float64

	occupants []uint16 // occupant count per cell; buildable == 0
	excluded  []bool   // static no-spawn rectangle
	spawnable []bool   // buildable && !excluded

	candidates *candidateIndex
	rng        *rand.Rand
}

// NewGrid builds a grid with cells 0..XMax x 0..ZMax, all buildable.
// rng may be nil, in which case a randomly seeded source is used.
func NewGrid(cfg config.Grid, rng *rand.Rand) (*Grid, error) {
	if cfg.XMax <= 0 || cfg.ZMax <= 0 {
		return nil, fmt.Errorf("grid extents must be positive, got (%d, %d)", cfg.XMax, cfg.ZMax)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	size := (cfg.XMax + 1) * (cfg.ZMax + 1)
	g := &Grid{
		xMax:        cfg.XMax,
		zMax:        cfg.ZMax,
		hoverHeight: cfg.HoverHeight,
		occupants:   make([]uint16, size),
		excluded:    make([]bool, size),
		spawnable:   make([]bool, size),
		candidates:  newCandidateIndex(size),
		rng:         rng,
	}

	for x := 0; x <= g.xMax; x++ {
		for z := 0; z <= g.zMax; z++ {
			i := g.index(x, z)
			g.excluded[i] = cfg.NoSpawnArea != nil && cfg.NoSpawnArea.Contains(x, z)
			g.spawnable[i] = !g.excluded[i]
			if g.spawnable[i] {
				g.candidates.add(Cell{X: x, Z: z})
			}
		}
	}

	slog.Debug("occupancy grid initialized",
		"xMax", g.xMax,
		"zMax", g.zMax,
		"spawnable", g.candidates.len())

	return g, nil
}

func (g *Grid) index(x, z int) int {
	return x*(g.zMax+1) + z
}

// InBounds reports whether (x, z) is a grid cell.
func (g *Grid) InBounds(x, z int) bool {
	return x >= 0 && x <= g.xMax && z >= 0 && z <= g.zMax
}

// Extents returns the maximum cell indices.
func (g *Grid) Extents() (xMax, zMax int) {
	return g.xMax, g.zMax
}

// IsBuildable reports whether no occupant covers (x, z).
// Out-of-bounds cells are not buildable.
func (g *Grid) IsBuildable(x, z int) bool {
	if !g.InBounds(x, z) {
		return false
	}
	return g.occupants[g.index(x, z)] == 0
}

// IsSpawnable reports whether a hostile unit may spawn at (x, z).
// Out-of-bounds cells are not spawnable.
func (g *Grid) IsSpawnable(x, z int) bool {
	if !g.InBounds(x, z) {
		return false
	}
	return g.spawnable[g.index(x, z)]
}

// IsInExclusion reports whether (x, z) lies in the static no-spawn area.
func (g *Grid) IsInExclusion(x, z int) bool {
	if !g.InBounds(x, z) {
		return false
	}
	return g.excluded[g.index(x, z)]
}

// SpawnableCount returns the number of cells currently eligible for spawning.
func (g *Grid) SpawnableCount() int {
	return g.candidates.len()
}

// CandidatePosition returns the spawn position of a cell (at hover height).
func (g *Grid) CandidatePosition(c Cell) model.Position {
	return model.Position{X: float64(c.X), Y: g.hoverHeight, Z: float64(c.Z)}
}

// RegisterOccupant marks cells as occupied. Out-of-bounds cells are ignored.
func (g *Grid) RegisterOccupant(cells []Cell) {
	for _, c := range cells {
		g.updateOccupancy(c, 1)
	}
}

// DeregisterOccupant releases cells previously passed to RegisterOccupant.
func (g *Grid) DeregisterOccupant(cells []Cell) {
	for _, c := range cells {
		g.updateOccupancy(c, -1)
	}
}

func (g *Grid) updateOccupancy(c Cell, delta int) {
	if !g.InBounds(c.X, c.Z) {
		slog.Debug("occupancy update outside grid ignored",
			"x", c.X, "z", c.Z, "xMax", g.xMax, "zMax", g.zMax)
		return
	}

	i := g.index(c.X, c.Z)
	switch {
	case delta > 0:
		g.occupants[i]++
	case g.occupants[i] == 0:
		slog.Debug("deregistering free cell ignored", "x", c.X, "z", c.Z)
		return
	default:
		g.occupants[i]--
	}

	was := g.spawnable[i]
	g.spawnable[i] = g.occupants[i] == 0 && !g.excluded[i]
	if g.spawnable[i] == was {
		return
	}
	if g.spawnable[i] {
		g.candidates.add(c)
	} else {
		g.candidates.remove(c)
	}
}

// RandomSpawnablePosition returns a uniformly random spawnable position not
// excluded by excluding (which may be nil). When nothing remains it returns
// NoCandidate and false.
func (g *Grid) RandomSpawnablePosition(excluding Excluder) (model.Position, bool) {
	n := g.candidates.len()
	if n == 0 {
		return NoCandidate, false
	}
	if excluding == nil {
		return g.CandidatePosition(g.candidates.at(g.rng.IntN(n))), true
	}

	for range rejectionTries {
		c := g.candidates.at(g.rng.IntN(n))
		if !excluding.Excludes(c) {
			return g.CandidatePosition(c), true
		}
	}

	remaining := make([]Cell, 0, n)
	for i := range n {
		if c := g.candidates.at(i); !excluding.Excludes(c) {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == 0 {
		return NoCandidate, false
	}
	return g.CandidatePosition(remaining[g.rng.IntN(len(remaining))]), true
}

// PositionValidForPlacement rounds pos to its cell and reports whether
// something may be placed there. Hostile placement is additionally rejected
// inside the no-spawn area.
func (g *Grid) PositionValidForPlacement(pos model.Position, hostile bool) bool {
	c := CellOf(pos)
	if !g.InBounds(c.X, c.Z) {
		return false
	}
	i := g.index(c.X, c.Z)
	if hostile && g.excluded[i] {
		return false
	}
	return g.occupants[i] == 0
}

package geo

import (
	"log/slog"
	"math"

	"github.com/udisondev/swarmspawn/internal/config"
	"github.com/udisondev/swarmspawn/internal/model"
	"github.com/udisondev/swarmspawn/internal/world"
)

// Engine is a heightmap terrain answering the two probes the spawn
// scheduler consumes: ground height and navigable surface.
// Heights and blocked cells are set up before the simulation starts and are
// read-only afterwards.
type Engine struct {
	xMax, zMax int
	heights    []float64
	blocked    []bool
	tolerance  float64
}

// NewEngine creates a flat terrain covering cells 0..xMax x 0..zMax.
func NewEngine(cfg config.Terrain, xMax, zMax int) *Engine {
	size := (xMax + 1) * (zMax + 1)
	e := &Engine{
		xMax:      xMax,
		zMax:      zMax,
		heights:   make([]float64, size),
		blocked:   make([]bool, size),
		tolerance: cfg.NavTolerance,
	}
	for i := range e.heights {
		e.heights[i] = cfg.GroundHeight
	}
	for _, r := range cfg.Blocked {
		e.Block(r)
	}

	slog.Info("terrain initialized",
		"xMax", xMax,
		"zMax", zMax,
		"groundHeight", cfg.GroundHeight,
		"blockedAreas", len(cfg.Blocked))
	return e
}

func (e *Engine) cellIndex(c world.Cell) (int, bool) {
	if c.X < 0 || c.X > e.xMax || c.Z < 0 || c.Z > e.zMax {
		return 0, false
	}
	return c.X*(e.zMax+1) + c.Z, true
}

// SetHeight sets the ground height of a cell. Out-of-bounds cells are ignored.
func (e *Engine) SetHeight(x, z int, height float64) {
	if i, ok := e.cellIndex(world.Cell{X: x, Z: z}); ok {
		e.heights[i] = height
	}
}

// Block marks every cell of r as having no navigable surface.
func (e *Engine) Block(r config.Rect) {
	for x := r.XMin; x <= r.XMax; x++ {
		for z := r.ZMin; z <= r.ZMax; z++ {
			if i, ok := e.cellIndex(world.Cell{X: x, Z: z}); ok {
				e.blocked[i] = true
			}
		}
	}
}

// GroundHeight returns the terrain height under horizontal position (x, z).
// Returns false if there is no ground there.
func (e *Engine) GroundHeight(x, z float64) (float64, bool) {
	i, ok := e.cellIndex(world.CellOf(model.Position{X: x, Z: z}))
	if !ok {
		return 0, false
	}
	return e.heights[i], true
}

// IsNavigable reports whether a navigable surface exists within the
// configured tolerance of pos.
func (e *Engine) IsNavigable(pos model.Position) bool {
	i, ok := e.cellIndex(world.CellOf(pos))
	if !ok || e.blocked[i] {
		return false
	}
	return math.Abs(pos.Y-e.heights[i]) <= e.tolerance
}

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/swarmspawn/internal/model"
)

// Server holds all configuration for the spawn server.
type Server struct {
	LogLevel     string        `yaml:"log_level"`
	TickInterval time.Duration `yaml:"tick_interval"` // fixed simulation step (default: 100ms)
	Seed         int64         `yaml:"seed"`          // 0 = seed from time
	InitialStage string        `yaml:"initial_stage"`

	Grid     Grid           `yaml:"grid"`
	Terrain  Terrain        `yaml:"terrain"`
	Spawning Spawning       `yaml:"spawning"`
	DayCycle DayCycle       `yaml:"day_cycle"`
	Database DatabaseConfig `yaml:"database"`
	Admin    Admin          `yaml:"admin"`
}

// Rect is an inclusive integer cell rectangle.
type Rect struct {
	XMin int `yaml:"x_min"`
	ZMin int `yaml:"z_min"`
	XMax int `yaml:"x_max"`
	ZMax int `yaml:"z_max"`
}

// Contains reports whether cell (x, z) lies inside the rectangle.
func (r Rect) Contains(x, z int) bool {
	return x >= r.XMin && x <= r.XMax && z >= r.ZMin && z <= r.ZMax
}

// Grid configures the occupancy grid. Cells are indexed 0..XMax, 0..ZMax.
type Grid struct {
	XMax        int     `yaml:"x_max"`
	ZMax        int     `yaml:"z_max"`
	HoverHeight float64 `yaml:"hover_height"` // Y of spawn candidate positions

	// NoSpawnArea excludes hostile spawning around the player's base.
	// Construction inside it is unaffected.
	NoSpawnArea *Rect `yaml:"no_spawn_area"`
}

// Terrain configures the heightmap used by the ground and navigation probes.
type Terrain struct {
	GroundHeight float64 `yaml:"ground_height"`
	NavTolerance float64 `yaml:"nav_tolerance"` // max |y - ground| for a navigable sample
	Blocked      []Rect  `yaml:"blocked"`       // cells with no navigable surface
}

// Swarm configures swarm geometry.
type Swarm struct {
	MaxRadius           int     `yaml:"max_radius"`   // ring table size - 1
	MaxSize             int     `yaml:"max_size"`     // units per swarm
	MaxCount            int     `yaml:"max_count"`    // swarms per cycle
	Spacing             float64 `yaml:"spacing"`      // ring offset multiplier
	MaxAttemptsPerCycle int     `yaml:"max_attempts"` // placement iterations per cycle
}

// Penalty configures the construction-stall penalty.
type Penalty struct {
	DefenceThreshold    time.Duration `yaml:"defence_threshold"`
	NonDefenceThreshold time.Duration `yaml:"non_defence_threshold"`
	Increment           int           `yaml:"increment"`
	Cooldown            time.Duration `yaml:"cooldown"`
}

// Spawning configures the swarm spawn scheduler.
type Spawning struct {
	Enabled           bool          `yaml:"enabled"`
	IgnoreDayNight    bool          `yaml:"ignore_day_night"`
	RespawnDelay      time.Duration `yaml:"respawn_delay"`
	EligibleStages    []string      `yaml:"eligible_stages"`
	CombatStage       string        `yaml:"combat_stage"`
	CombatBudget      int           `yaml:"combat_budget"`
	BudgetPerBuilding int           `yaml:"budget_per_building"`

	Swarm   Swarm   `yaml:"swarm"`
	Penalty Penalty `yaml:"penalty"`
}

// DayCycle configures the day/night clock.
type DayCycle struct {
	DayLength    time.Duration `yaml:"day_length"`
	NightLength  time.Duration `yaml:"night_length"`
	StartAtNight bool          `yaml:"start_at_night"`
}

// Admin configures the admin HTTP API.
type Admin struct {
	Enabled      bool    `yaml:"enabled"`
	BindAddress  string  `yaml:"bind_address"`
	Port         int     `yaml:"port"`
	TriggerRate  float64 `yaml:"trigger_rate"` // manual triggers per second
	TriggerBurst int     `yaml:"trigger_burst"`

	CORSOrigins []string `yaml:"cors_origins"` // empty disables CORS
}

// Addr returns host:port for the admin listener.
func (a Admin) Addr() string {
	return fmt.Sprintf("%s:%d", a.BindAddress, a.Port)
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultSpawning returns spawn scheduler defaults.
func DefaultSpawning() Spawning {
	return Spawning{
		Enabled:           true,
		RespawnDelay:      10 * time.Second,
		EligibleStages:    []string{string(model.StageCombat), string(model.StageMainGame)},
		CombatStage:       string(model.StageCombat),
		CombatBudget:      3,
		BudgetPerBuilding: 3,
		Swarm: Swarm{
			MaxRadius:           3,
			MaxSize:             8,
			MaxCount:            10,
			Spacing:             2,
			MaxAttemptsPerCycle: 2000,
		},
		Penalty: Penalty{
			DefenceThreshold:    90 * time.Second,
			NonDefenceThreshold: 120 * time.Second,
			Increment:           2,
			Cooldown:            60 * time.Second,
		},
	}
}

// DefaultServer returns Server config with sensible defaults.
func DefaultServer() Server {
	return Server{
		LogLevel:     "info",
		TickInterval: 100 * time.Millisecond,
		InitialStage: string(model.StageMainGame),
		Grid: Grid{
			XMax:        200,
			ZMax:        200,
			HoverHeight: 0.25,
			NoSpawnArea: &Rect{XMin: 80, ZMin: 80, XMax: 120, ZMax: 120},
		},
		Terrain: Terrain{
			GroundHeight: 0,
			NavTolerance: 1,
		},
		Spawning: DefaultSpawning(),
		DayCycle: DayCycle{
			DayLength:   4 * time.Minute,
			NightLength: 2 * time.Minute,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "swarmspawn",
			Password: "swarmspawn",
			DBName:   "swarmspawn",
			SSLMode:  "disable",
		},
		Admin: Admin{
			Enabled:      true,
			BindAddress:  "127.0.0.1",
			Port:         8088,
			TriggerRate:  0.5,
			TriggerBurst: 1,
		},
	}
}

// Validate checks startup invariants. Every violation is reported.
func (c Server) Validate() error {
	var errs []error

	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval))
	}
	if _, err := model.ParseStage(c.InitialStage); err != nil {
		errs = append(errs, fmt.Errorf("initial_stage: %w", err))
	}
	errs = append(errs, c.Grid.validate())
	errs = append(errs, c.Spawning.Validate())
	if c.DayCycle.DayLength < 0 || c.DayCycle.NightLength < 0 {
		errs = append(errs, errors.New("day_cycle lengths must not be negative"))
	}
	if c.Admin.Enabled && c.Admin.TriggerRate <= 0 {
		errs = append(errs, fmt.Errorf("admin.trigger_rate must be positive, got %v", c.Admin.TriggerRate))
	}

	return errors.Join(errs...)
}

func (g Grid) validate() error {
	var errs []error
	if g.XMax <= 0 || g.ZMax <= 0 {
		errs = append(errs, fmt.Errorf("grid extents must be positive, got x_max=%d z_max=%d", g.XMax, g.ZMax))
	}
	if a := g.NoSpawnArea; a != nil && (a.XMin > a.XMax || a.ZMin > a.ZMax) {
		errs = append(errs, fmt.Errorf("grid.no_spawn_area is inverted: %+v", *a))
	}
	return errors.Join(errs...)
}

// Validate checks the spawn scheduler settings.
func (s Spawning) Validate() error {
	var errs []error

	if s.Swarm.MaxRadius <= 0 {
		errs = append(errs, fmt.Errorf("swarm.max_radius must be positive, got %d", s.Swarm.MaxRadius))
	}
	if s.Swarm.MaxSize <= 0 {
		errs = append(errs, fmt.Errorf("swarm.max_size must be positive, got %d", s.Swarm.MaxSize))
	}
	if s.Swarm.MaxCount <= 0 {
		errs = append(errs, fmt.Errorf("swarm.max_count must be positive, got %d", s.Swarm.MaxCount))
	}
	if s.Swarm.Spacing <= 0 {
		errs = append(errs, fmt.Errorf("swarm.spacing must be positive, got %v", s.Swarm.Spacing))
	}
	if s.Swarm.MaxAttemptsPerCycle <= 0 {
		errs = append(errs, fmt.Errorf("swarm.max_attempts must be positive, got %d", s.Swarm.MaxAttemptsPerCycle))
	}
	if s.RespawnDelay < 0 {
		errs = append(errs, fmt.Errorf("respawn_delay must not be negative, got %s", s.RespawnDelay))
	}
	for _, st := range s.EligibleStages {
		if _, err := model.ParseStage(st); err != nil {
			errs = append(errs, fmt.Errorf("eligible_stages: %w", err))
		}
	}
	if _, err := model.ParseStage(s.CombatStage); err != nil {
		errs = append(errs, fmt.Errorf("combat_stage: %w", err))
	}
	if s.CombatBudget < 0 || s.BudgetPerBuilding < 0 || s.Penalty.Increment < 0 {
		errs = append(errs, errors.New("budget settings must not be negative"))
	}

	return errors.Join(errs...)
}

// LoadServer loads server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Package metrics exports spawn activity to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/udisondev/swarmspawn/internal/model"
	"github.com/udisondev/swarmspawn/internal/sim"
	"github.com/udisondev/swarmspawn/internal/spawn"
	"github.com/udisondev/swarmspawn/internal/world"
)

// Recorder is a spawn.Observer updating Prometheus metrics. Labels are
// bounded: stop reasons and stages only.
type Recorder struct {
	unitsSpawned     prometheus.Counter
	cellsUnreachable prometheus.Counter
	cycles           *prometheus.CounterVec
	placed           prometheus.Histogram
	attempts         prometheus.Histogram
	swarms           prometheus.Histogram
	penalty          prometheus.Gauge
}

// NewRecorder registers spawn metrics with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		unitsSpawned: f.NewCounter(prometheus.CounterOpts{
			Name: "spawn_units_spawned_total",
			Help: "Total hostile units spawned",
		}),
		cellsUnreachable: f.NewCounter(prometheus.CounterOpts{
			Name: "spawn_unreachable_cells_total",
			Help: "Cells registered as unreachable",
		}),
		cycles: f.NewCounterVec(prometheus.CounterOpts{
			Name: "spawn_cycles_total",
			Help: "Spawn cycles run",
		}, []string{"stage", "stop_reason"}),
		placed: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "spawn_cycle_placed_units",
			Help:    "Units placed per cycle",
			Buckets: []float64{0, 1, 3, 6, 12, 25, 50, 100},
		}),
		attempts: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "spawn_cycle_attempts",
			Help:    "Placement attempts per cycle",
			Buckets: prometheus.ExponentialBuckets(1, 4, 7),
		}),
		swarms: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "spawn_cycle_swarms",
			Help:    "Swarms per cycle",
			Buckets: []float64{1, 2, 3, 5, 8, 13},
		}),
		penalty: f.NewGauge(prometheus.GaugeOpts{
			Name: "spawn_penalty",
			Help: "Accumulated spawn penalty",
		}),
	}
}

// UnitSpawned implements spawn.Observer.
func (r *Recorder) UnitSpawned(*model.Unit) {
	r.unitsSpawned.Inc()
}

// CellUnreachable implements spawn.Observer.
func (r *Recorder) CellUnreachable(world.Cell, time.Time) {
	r.cellsUnreachable.Inc()
}

// CycleCompleted implements spawn.Observer.
func (r *Recorder) CycleCompleted(rep spawn.CycleReport) {
	r.cycles.WithLabelValues(string(rep.Stage), string(rep.StopReason)).Inc()
	r.placed.Observe(float64(rep.Placed))
	r.attempts.Observe(float64(rep.Attempts))
	r.swarms.Observe(float64(len(rep.Swarms)))
	r.penalty.Set(float64(rep.Penalty))
}

// RegisterStatus exports gauges read from the simulation status snapshot.
func RegisterStatus(reg prometheus.Registerer, status func() sim.Status) {
	f := promauto.With(reg)

	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "spawn_live_units",
		Help: "Currently alive spawned units",
	}, func() float64 { return float64(status().LiveUnits) })

	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "grid_spawnable_cells",
		Help: "Cells currently eligible for hostile spawning",
	}, func() float64 { return float64(status().SpawnableCells) })

	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "spawn_known_unreachable_cells",
		Help: "Cells in the unreachable registry",
	}, func() float64 { return float64(status().UnreachableCells) })

	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "construction_buildings",
		Help: "Placed buildings",
	}, func() float64 { return float64(status().Buildings) })
}

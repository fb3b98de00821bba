package sim

import (
	"time"

	"github.com/udisondev/swarmspawn/internal/config"
)

// DayCycle derives day and night from the simulated clock. A cycle is one
// day followed by one night, or the reverse when it starts at night.
type DayCycle struct {
	clock        *Clock
	day          time.Duration
	night        time.Duration
	startAtNight bool
}

// NewDayCycle creates a day/night cycle driven by clock.
func NewDayCycle(cfg config.DayCycle, clock *Clock) *DayCycle {
	return &DayCycle{
		clock:        clock,
		day:          cfg.DayLength,
		night:        cfg.NightLength,
		startAtNight: cfg.StartAtNight,
	}
}

// IsDaytime reports whether it is currently day. A zero night length means
// permanent day; a zero day length means permanent night.
func (d *DayCycle) IsDaytime() bool {
	switch {
	case d.night <= 0:
		return true
	case d.day <= 0:
		return false
	}

	phase := d.clock.Elapsed() % (d.day + d.night)
	if d.startAtNight {
		return phase >= d.night
	}
	return phase < d.day
}

// Phase returns "day" or "night".
func (d *DayCycle) Phase() string {
	if d.IsDaytime() {
		return "day"
	}
	return "night"
}

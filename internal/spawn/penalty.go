package spawn

import (
	"time"

	"github.com/udisondev/swarmspawn/internal/config"
)

// Penalty raises the spawn budget while construction is stalled.
type Penalty struct {
	cfg         config.Penalty
	accumulated int
	lastApplied time.Time // zero until the first application
}

// NewPenalty creates an accumulator with no penalty applied yet.
func NewPenalty(cfg config.Penalty) *Penalty {
	return &Penalty{cfg: cfg}
}

// Check increments the penalty if the cooldown since the last application
// has passed and either construction category has stalled past its
// threshold. Returns true if the penalty was incremented.
func (p *Penalty) Check(now, lastDefence, lastNonDefence time.Time) bool {
	if !p.lastApplied.IsZero() && now.Sub(p.lastApplied) <= p.cfg.Cooldown {
		return false
	}

	stalled := now.Sub(lastDefence) > p.cfg.DefenceThreshold ||
		now.Sub(lastNonDefence) > p.cfg.NonDefenceThreshold
	if !stalled {
		return false
	}

	p.accumulated += p.cfg.Increment
	p.lastApplied = now
	return true
}

// Accumulated returns the current penalty.
func (p *Penalty) Accumulated() int {
	return p.accumulated
}

// Seed restores a previously accumulated penalty.
func (p *Penalty) Seed(accumulated int) {
	p.accumulated = max(accumulated, 0)
}

package sim

import (
	"log/slog"
	"sync/atomic"

	"github.com/udisondev/swarmspawn/internal/model"
)

// StageHolder holds the current game stage.
type StageHolder struct {
	current atomic.Value // model.Stage
}

// NewStageHolder creates a holder at the initial stage.
func NewStageHolder(initial model.Stage) *StageHolder {
	h := &StageHolder{}
	h.current.Store(initial)
	return h
}

// CurrentStage returns the current stage.
func (h *StageHolder) CurrentStage() model.Stage {
	return h.current.Load().(model.Stage)
}

// SetStage switches to stage and returns the previous one.
func (h *StageHolder) SetStage(stage model.Stage) model.Stage {
	prev := h.current.Swap(stage).(model.Stage)
	if prev != stage {
		slog.Info("game stage changed", "from", prev, "to", stage)
	}
	return prev
}

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/udisondev/swarmspawn/internal/game/construction"
	"github.com/udisondev/swarmspawn/internal/model"
	"github.com/udisondev/swarmspawn/internal/sim"
)

type enabledRequest struct {
	Enabled bool `json:"enabled"`
}

type stageRequest struct {
	Stage string `json:"stage"`
}

type buildingRequest struct {
	Kind  string  `json:"kind"`
	X     float64 `json:"x"`
	Z     float64 `json:"z"`
	XSize int     `json:"x_size"`
	ZSize int     `json:"z_size"`
}

type mineralRequest struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

func (h *handlers) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Status())
}

func (h *handlers) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil && !h.limiter.Allow() {
		writeError(w, "spawn trigger rate limited", http.StatusTooManyRequests)
		return
	}
	if err := h.ctrl.TriggerSpawn(r.Context()); err != nil {
		writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"triggered": true})
}

func (h *handlers) handleSetEnabled(w http.ResponseWriter, r *http.Request) {
	var req enabledRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.ctrl.SetSpawningEnabled(r.Context(), req.Enabled); err != nil {
		writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *handlers) handleSetStage(w http.ResponseWriter, r *http.Request) {
	var req stageRequest
	if !decode(w, r, &req) {
		return
	}
	stage, err := model.ParseStage(req.Stage)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.ctrl.SetStage(r.Context(), stage); err != nil {
		writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *handlers) handlePlaceBuilding(w http.ResponseWriter, r *http.Request) {
	var req buildingRequest
	if !decode(w, r, &req) {
		return
	}
	kind, err := model.ParseBuildingKind(req.Kind)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := h.ctrl.PlaceBuilding(r.Context(), kind, model.NewPosition(req.X, 0, req.Z), req.XSize, req.ZSize)
	if err != nil {
		writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *handlers) handleDemolishBuilding(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.ctrl.DemolishBuilding(r.Context(), id); err != nil {
		writeControllerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) handlePlaceMineral(w http.ResponseWriter, r *http.Request) {
	var req mineralRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := h.ctrl.PlaceMineral(r.Context(), model.NewPosition(req.X, 0, req.Z))
	if err != nil {
		writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *handlers) handleRemoveMineral(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.ctrl.RemoveMineral(r.Context(), id); err != nil {
		writeControllerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) handleKillUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.ctrl.KillUnit(r.Context(), id); err != nil {
		writeControllerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseID reads the {id} URL parameter. Decimal and 0x-prefixed hex are accepted.
func parseID(w http.ResponseWriter, r *http.Request) (uint32, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 0, 32)
	if err != nil {
		writeError(w, "invalid id "+strconv.Quote(raw), http.StatusBadRequest)
		return 0, false
	}
	return uint32(id), true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeControllerError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, construction.ErrNotFound), errors.Is(err, sim.ErrUnknownUnit):
		code = http.StatusNotFound
	case errors.Is(err, construction.ErrPlacementBlocked):
		code = http.StatusConflict
	case errors.Is(err, construction.ErrInvalidSize):
		code = http.StatusBadRequest
	case errors.Is(err, sim.ErrStopped):
		code = http.StatusServiceUnavailable
	}
	if code == http.StatusInternalServerError {
		slog.Error("admin request failed", "error", err)
	}
	writeError(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Debug("writing response", "error", err)
	}
}

func writeError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]string{"error": message})
}

package spawn

import (
	"sync/atomic"

	"github.com/udisondev/swarmspawn/internal/model"
)

// LiveUnits is the set of currently alive spawned units.
// Mutated on the simulation goroutine only; Count may be read from anywhere.
type LiveUnits struct {
	units map[uint32]*model.Unit // unitID → unit
	count atomic.Int32           // cached count (O(1) access from other goroutines)
}

// NewLiveUnits creates an empty set.
func NewLiveUnits() *LiveUnits {
	return &LiveUnits{units: make(map[uint32]*model.Unit)}
}

// Add inserts u. Adding a unit twice has no effect.
func (l *LiveUnits) Add(u *model.Unit) {
	if _, ok := l.units[u.ID]; ok {
		return
	}
	l.units[u.ID] = u
	l.count.Add(1)
}

// Remove deletes the unit with the given ID and returns it.
func (l *LiveUnits) Remove(id uint32) (*model.Unit, bool) {
	u, ok := l.units[id]
	if !ok {
		return nil, false
	}
	delete(l.units, id)
	l.count.Add(-1)
	return u, true
}

// Get returns the live unit with the given ID.
func (l *LiveUnits) Get(id uint32) (*model.Unit, bool) {
	u, ok := l.units[id]
	return u, ok
}

// Count returns the number of live units.
func (l *LiveUnits) Count() int {
	return int(l.count.Load())
}

// IDs returns the IDs of all live units in unspecified order.
func (l *LiveUnits) IDs() []uint32 {
	ids := make([]uint32, 0, len(l.units))
	for id := range l.units {
		ids = append(ids, id)
	}
	return ids
}

package model

// Unit is a spawned hostile unit. The spawn scheduler only cares about its
// identity and where it was placed; behaviour after spawn lives elsewhere.
type Unit struct {
	ID       uint32
	Position Position
	Active   bool
}

// Setup assigns a fresh identifier and activates the unit.
func (u *Unit) Setup(id uint32) {
	u.ID = id
	u.Active = true
}

// Reset returns the unit to its inactive pooled state.
func (u *Unit) Reset() {
	u.ID = 0
	u.Position = Position{}
	u.Active = false
}

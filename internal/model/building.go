package model

import "fmt"

// BuildingKind separates defensive structures from everything else. The
// spawn penalty tracks the time since the last construction of each kind.
type BuildingKind string

const (
	BuildingDefence    BuildingKind = "defence"
	BuildingNonDefence BuildingKind = "non_defence"
)

// ParseBuildingKind converts a string into a BuildingKind.
func ParseBuildingKind(v string) (BuildingKind, error) {
	switch k := BuildingKind(v); k {
	case BuildingDefence, BuildingNonDefence:
		return k, nil
	default:
		return "", fmt.Errorf("unknown building kind %q", v)
	}
}

// Building is a placed structure occupying an XSize x ZSize footprint
// centred on Anchor.
type Building struct {
	ID     uint32       `json:"id"`
	Kind   BuildingKind `json:"kind"`
	Anchor Position     `json:"anchor"`
	XSize  int          `json:"x_size"`
	ZSize  int          `json:"z_size"`
}

// Mineral is a single-cell resource node.
type Mineral struct {
	ID       uint32   `json:"id"`
	Position Position `json:"position"`
}

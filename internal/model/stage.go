package model

import "fmt"

// Stage identifies the current game stage. Spawning eligibility is
// configured as a set of stages.
type Stage string

const (
	// StageSetup - world is being prepared, nothing is spawned
	StageSetup Stage = "setup"
	// StageTutorial - scripted tutorial
	StageTutorial Stage = "tutorial"
	// StageCombat - tutorial combat stage with a fixed spawn budget
	StageCombat Stage = "combat"
	// StageMainGame - free play, budget driven by construction
	StageMainGame Stage = "main_game"
	// StageVictory - game won
	StageVictory Stage = "victory"
	// StageDefeat - game lost
	StageDefeat Stage = "defeat"
)

var knownStages = []Stage{
	StageSetup,
	StageTutorial,
	StageCombat,
	StageMainGame,
	StageVictory,
	StageDefeat,
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	for _, known := range knownStages {
		if s == known {
			return true
		}
	}
	return false
}

// String returns the stage identifier.
func (s Stage) String() string {
	return string(s)
}

// ParseStage converts a string into a known Stage.
func ParseStage(v string) (Stage, error) {
	s := Stage(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown stage %q", v)
	}
	return s, nil
}

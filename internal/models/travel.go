package models

// TravelPhase is the stage of a running time-travel sequence.
type TravelPhase int

const (
	PhaseIdle TravelPhase = iota
	Phase1
	Phase2
	Phase3
	Phase4
	Phase5
	PhaseCommitting
	PhaseTraveled
)

var phaseNames = [...]string{"IDLE", "PHASE1", "PHASE2", "PHASE3", "PHASE4", "PHASE5", "COMMITTING", "TRAVELED"}

func (p TravelPhase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "UNKNOWN"
	}
	return phaseNames[p]
}

// InSequence reports whether a long travel is animating.
func (p TravelPhase) InSequence() bool {
	return p >= Phase1 && p <= PhaseCommitting
}

// Preset is one entry of the auto-rotation table.
type Preset struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

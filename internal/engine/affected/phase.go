package affected

// Phase is a state of a single computation. Phases only move forward and
// FINALIZED is terminal.
type Phase uint8

const (
	// PhaseInit is the state before validation.
	PhaseInit Phase = iota
	// PhaseValidated means the configuration passed validation.
	PhaseValidated
	// PhaseClassified means every changed file has been classified.
	PhaseClassified
	// PhaseGlobalShortcut means a global change skipped ownership and graph expansion.
	PhaseGlobalShortcut
	// PhaseGraphExpanded means direct and dependent sets are known.
	PhaseGraphExpanded
	// PhaseFinalized means decisions are frozen.
	PhaseFinalized
)

var phaseNames = [...]string{
	PhaseInit:           "INIT",
	PhaseValidated:      "VALIDATED",
	PhaseClassified:     "CLASSIFIED",
	PhaseGlobalShortcut: "GLOBAL_SHORTCUT",
	PhaseGraphExpanded:  "GRAPH_EXPANDED",
	PhaseFinalized:      "FINALIZED",
}

// String returns the phase name.
func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "UNKNOWN"
}

func (p Phase) canAdvanceTo(next Phase) bool {
	switch p {
	case PhaseInit:
		return next == PhaseValidated
	case PhaseValidated:
		return next == PhaseClassified
	case PhaseClassified:
		return next == PhaseGlobalShortcut || next == PhaseGraphExpanded
	case PhaseGlobalShortcut, PhaseGraphExpanded:
		return next == PhaseFinalized
	default:
		return false
	}
}

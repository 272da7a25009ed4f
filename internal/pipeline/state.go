package pipeline

// State is a stage of a run.
type State string

const (
	StateStart      State = "START"
	StateCheckDir   State = "CHECK_DIR"
	StateCheckFiles State = "CHECK_FILES"
	StateArchive    State = "ARCHIVE"
	StatePurge      State = "PURGE"
	StateDone       State = "DONE"
	StateAborted    State = "ABORTED"
)

// IsTerminal reports whether no further transition is possible.
func IsTerminal(s State) bool {
	return s == StateDone || s == StateAborted
}

// isAllowedTransition encodes the fixed stage order. Purge is reachable from
// both checks because retention does not depend on the feed being present.
func isAllowedTransition(from, to State) bool {
	if to == StateAborted {
		return !IsTerminal(from)
	}
	switch from {
	case StateStart:
		return to == StateCheckDir
	case StateCheckDir:
		return to == StateCheckFiles || to == StatePurge
	case StateCheckFiles:
		return to == StateArchive || to == StatePurge
	case StateArchive:
		return to == StatePurge
	case StatePurge:
		return to == StateDone
	default:
		return false
	}
}

package appointment

// transitions enumerates the allowed status moves. Pending is the only
// non-terminal state; nothing ever returns to Pending.
var transitions = map[Status][]Status{
	StatusPending: {StatusApproved, StatusRejected, StatusWithdrawn},
}

// IsValid reports whether s is a known status value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusWithdrawn:
		return true
	default:
		return false
	}
}

// CanTransition reports whether a request may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Priority is the display rank used by the coordinator dashboard: pending
// requests surface first, then rejected, then approved. Anything else
// (withdrawn included) sorts last.
func (s Status) Priority() int {
	switch s {
	case StatusPending:
		return 1
	case StatusRejected:
		return 2
	case StatusApproved:
		return 3
	default:
		return 99
	}
}

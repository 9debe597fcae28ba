package session

// MutationStatus is the per-mutation state machine. Every optimistic write
// moves idle→pending, then to committed on gateway confirmation or to
// failed (with the optimistic change rolled back) on confirmed failure.
type MutationStatus int

const (
	StatusIdle MutationStatus = iota
	StatusPending
	StatusCommitted
	StatusFailed
)

func (s MutationStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusCommitted:
		return "committed"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// ReasonNotInLocalState marks a mutation on a dream absent from the
// session's reconciliation store. Callers fall back to the canonical
// service path for records that never entered a feed.
const ReasonNotInLocalState = "dream not in local state"

// MutationResult is the tagged outcome of one optimistic mutation.
type MutationResult struct {
	Status MutationStatus `json:"status"`
	Reason string         `json:"reason,omitempty"`
}

// Committed reports a confirmed mutation.
func Committed() MutationResult {
	return MutationResult{Status: StatusCommitted}
}

// Failed reports a rolled-back mutation with the failure reason.
func Failed(reason string) MutationResult {
	return MutationResult{Status: StatusFailed, Reason: reason}
}

// Pending reports a mutation rejected because an earlier one on the same
// target has not settled yet.
func Pending() MutationResult {
	return MutationResult{Status: StatusPending}
}

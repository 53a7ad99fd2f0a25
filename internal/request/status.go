package request

// Status is the lifecycle state of a book request.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// AllStatuses lists the closed status domain.
var AllStatuses = []Status{StatusPending, StatusApproved, StatusRejected, StatusCompleted}

// Valid reports whether s is one of the four lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

// CanTransitionTo reports whether s -> next is an edge of the lifecycle:
// pending -> approved -> completed, and pending -> rejected.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusApproved || next == StatusRejected
	case StatusApproved:
		return next == StatusCompleted
	default:
		return false
	}
}

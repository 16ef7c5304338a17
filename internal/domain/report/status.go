package report

import "strings"

// Status is the lifecycle state of a report
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusDismissed  Status = "DISMISSED"
)

// Statuses lists every status in lifecycle order
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusResolved, StatusDismissed}
}

// IsValid reports whether s is one of the four statuses
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusDismissed:
		return true
	}
	return false
}

// IsTerminal reports whether s ends the lifecycle
func (s Status) IsTerminal() bool {
	return s == StatusResolved || s == StatusDismissed
}

// TransitionPolicy decides which status moves are permitted
type TransitionPolicy interface {
	Allows(from, to Status) bool
}

// TransitionPolicyFunc adapts a function to TransitionPolicy
type TransitionPolicyFunc func(from, to Status) bool

func (f TransitionPolicyFunc) Allows(from, to Status) bool { return f(from, to) }

// Unrestricted lets triage staff pick any status from any status,
// including reopening resolved or dismissed reports.
var Unrestricted TransitionPolicy = TransitionPolicyFunc(func(from, to Status) bool {
	return from.IsValid() && to.IsValid()
})

var lifecycleMoves = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusResolved, StatusDismissed},
	StatusInProgress: {StatusResolved, StatusDismissed, StatusPending},
}

// Lifecycle freezes terminal states and allows only the forward moves plus
// the IN_PROGRESS -> PENDING revert.
var Lifecycle TransitionPolicy = TransitionPolicyFunc(func(from, to Status) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range lifecycleMoves[from] {
		if next == to {
			return true
		}
	}
	return false
})

// PolicyByName maps a configuration value to a policy. An empty name means
// Unrestricted; any unknown name reports ok == false.
func PolicyByName(name string) (TransitionPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "unrestricted":
		return Unrestricted, true
	case "lifecycle":
		return Lifecycle, true
	default:
		return nil, false
	}
}

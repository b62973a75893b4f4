package domain

import "fmt"

// Status values across the three lifecycles. Recommendations and donations
// share "pending" and "rejected"; messages use unread/read.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusUnread    = "unread"
	StatusRead      = "read"
	StatusCompleted = "completed"
)

// transitions defines the legal edges per collection. Keys absent from a
// collection's map are terminal states.
var transitions = map[Collection]map[string][]string{
	CollectionRecommendations: {
		StatusPending: {StatusApproved, StatusRejected},
	},
	CollectionMessages: {
		StatusUnread: {StatusRead},
	},
	CollectionDonations: {
		StatusPending: {StatusCompleted, StatusRejected},
	},
}

// DefaultStatus returns the initial state assigned when a create request
// does not supply one.
func (c Collection) DefaultStatus() string {
	if c == CollectionMessages {
		return StatusUnread
	}
	return StatusPending
}

// Terminal reports whether a status has no outgoing transitions in c's
// lifecycle. Unknown statuses are treated as terminal.
func (c Collection) Terminal(status string) bool {
	edges, ok := transitions[c][status]
	return !ok || len(edges) == 0
}

// LegalTransition reports whether from → to is a defined edge in c's
// lifecycle. A no-op (from == to) is always legal.
func (c Collection) LegalTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[c][from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionPolicy decides whether a status value arriving in an update
// patch is admitted. The original system accepted anything (administrator
// override); strict mode enforces the lifecycle edges.
type TransitionPolicy int

const (
	PolicyPermissive TransitionPolicy = iota
	PolicyStrict
)

// ParseTransitionPolicy maps a config string to a policy. Empty and
// "permissive" select the permissive default.
func ParseTransitionPolicy(s string) (TransitionPolicy, error) {
	switch s {
	case "", "permissive":
		return PolicyPermissive, nil
	case "strict":
		return PolicyStrict, nil
	}
	return PolicyPermissive, fmt.Errorf("unknown status policy %q", s)
}

// Check validates a requested status change for a record currently in
// state from (already defaulted). Permissive policy accepts everything.
func (p TransitionPolicy) Check(c Collection, from, to string) error {
	if p == PolicyPermissive {
		return nil
	}
	if !c.LegalTransition(from, to) {
		return fmt.Errorf("%w: %s %s -> %s", ErrIllegalTransition, c, from, to)
	}
	return nil
}

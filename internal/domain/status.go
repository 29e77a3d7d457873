package domain

import "strings"

// Status enumerates the complaint lifecycle states.
type Status string

const (
	StatusSubmitted  Status = "submitted"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusVerified   Status = "verified"
	StatusClosed     Status = "closed"
)

// Statuses lists the lifecycle in canonical forward order, Closed last.
var Statuses = []Status{
	StatusSubmitted,
	StatusAssigned,
	StatusInProgress,
	StatusResolved,
	StatusVerified,
	StatusClosed,
}

var statusAliases = map[string]Status{
	"submitted":   StatusSubmitted,
	"pending":     StatusSubmitted,
	"open":        StatusSubmitted,
	"new":         StatusSubmitted,
	"assigned":    StatusAssigned,
	"in_progress": StatusInProgress,
	"inprogress":  StatusInProgress,
	"resolved":    StatusResolved,
	"verified":    StatusVerified,
	"closed":      StatusClosed,
}

// NormalizeStatus is the single place raw status strings become a Status.
// It accepts the legacy spellings seen from older clients ("In Progress",
// "in-progress", "IN_PROGRESS", "Pending").
func NormalizeStatus(raw string) (Status, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	s, ok := statusAliases[key]
	return s, ok
}

// IsTerminal reports whether no regular lifecycle progress is possible.
func (s Status) IsTerminal() bool {
	return s == StatusVerified || s == StatusClosed
}

// IsOpen reports whether the complaint is still awaiting resolution and
// therefore subject to SLA escalation.
func (s Status) IsOpen() bool {
	return s == StatusSubmitted || s == StatusAssigned || s == StatusInProgress
}

// RequiresResolutionProof reports whether a complaint in this status must
// carry a resolution photo.
func (s Status) RequiresResolutionProof() bool {
	return s == StatusResolved || s == StatusVerified || s == StatusClosed
}

// Valid reports whether s is one of the canonical statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

package domain

import "time"

// TimelineAction names what a timeline entry records.
type TimelineAction string

const (
	ActionSubmitted       TimelineAction = "submitted"
	ActionAssigned        TimelineAction = "assigned"
	ActionInProgress      TimelineAction = "in_progress"
	ActionResolved        TimelineAction = "resolved"
	ActionVerified        TimelineAction = "verified"
	ActionClosed          TimelineAction = "closed"
	ActionEscalated       TimelineAction = "escalated"
	ActionEscalationReset TimelineAction = "escalation_reset"
)

// ActionForStatus returns the timeline action recorded on entry into status.
func ActionForStatus(s Status) TimelineAction {
	return TimelineAction(s)
}

// TimelineEntry is an immutable audit trail record for a complaint.
type TimelineEntry struct {
	ID          string
	ComplaintID string
	Action      TimelineAction
	Details     string
	ActorID     *string
	ActorRole   Role
	FromStatus  *Status
	ToStatus    *Status
	CreatedAt   time.Time
}

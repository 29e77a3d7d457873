package events

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintCreated       EventType = "complaint_created"
	EventComplaintStatusChanged EventType = "complaint_status_changed"
	EventComplaintEscalated     EventType = "complaint_escalated"
	EventEscalationReset        EventType = "complaint_escalation_reset"
	EventComplaintUpvoted       EventType = "complaint_upvoted"
)

// AllEventTypes lists every published type.
var AllEventTypes = []EventType{
	EventComplaintCreated,
	EventComplaintStatusChanged,
	EventComplaintEscalated,
	EventEscalationReset,
	EventComplaintUpvoted,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID string      `json:"complaint_id"`
	Actor       Actor       `json:"actor"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	Category      domain.Category `json:"category"`
	PriorityScore int             `json:"priority_score"`
	SLADeadline   time.Time       `json:"sla_deadline"`
	Title         string          `json:"title"`
}

// ComplaintStatusChangedPayload payload.
type ComplaintStatusChangedPayload struct {
	OldStatus domain.Status `json:"old_status"`
	NewStatus domain.Status `json:"new_status"`
	Override  bool          `json:"override,omitempty"`
	Comment   string        `json:"comment,omitempty"`
}

// ComplaintEscalatedPayload payload.
type ComplaintEscalatedPayload struct {
	Reason        string    `json:"reason"`
	SLADeadline   time.Time `json:"sla_deadline"`
	PriorityScore int       `json:"priority_score"`
}

// ComplaintUpvotedPayload payload.
type ComplaintUpvotedPayload struct {
	Voted         bool `json:"voted"`
	Upvotes       int  `json:"upvotes"`
	PriorityScore int  `json:"priority_score"`
}

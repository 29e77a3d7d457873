// Package lifecycle owns complaint status semantics: the canonical order,
// who may move a complaint along it and what each move records.
package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// Actor is the explicit caller identity passed down from the request.
type Actor struct {
	ID   string
	Role domain.Role
}

// SystemActor is used by background processes.
var SystemActor = Actor{ID: "system", Role: domain.RoleSystem}

// Payload carries optional transition data.
type Payload struct {
	ResolutionPhotoURL *string
	ResolutionType     *string
	Note               string
}

// forward is the canonical next state for each status.
var forward = map[domain.Status]domain.Status{
	domain.StatusSubmitted:  domain.StatusAssigned,
	domain.StatusAssigned:   domain.StatusInProgress,
	domain.StatusInProgress: domain.StatusResolved,
	domain.StatusResolved:   domain.StatusVerified,
}

// Machine applies transitions to an in-memory complaint. Persistence and
// per-record locking belong to the caller.
type Machine struct {
	verifier Verifier
	now      func() time.Time
}

// NewMachine builds a machine. A nil verifier defaults to PhotoVerifier.
func NewMachine(verifier Verifier, now func() time.Time) *Machine {
	if verifier == nil {
		verifier = PhotoVerifier{}
	}
	if now == nil {
		now = time.Now
	}
	return &Machine{verifier: verifier, now: now}
}

// Next returns the canonical forward successor, if any.
func Next(s domain.Status) (domain.Status, bool) {
	n, ok := forward[s]
	return n, ok
}

// AllowedTargets lists what actor may request from current.
func AllowedTargets(current domain.Status, actor Actor, reporterID string) []domain.Status {
	var out []domain.Status
	for _, target := range domain.Statuses {
		if target == current {
			continue
		}
		if _, err := route(current, target, actor, reporterID); err == nil {
			out = append(out, target)
		}
	}
	return out
}

// route decides whether current -> target is legal for actor and reports
// whether it is an administrative override.
func route(current, target domain.Status, actor Actor, reporterID string) (bool, error) {
	if next, ok := forward[current]; ok && next == target {
		if !mayAdvanceTo(target, actor, reporterID) {
			return false, ErrUnauthorized
		}
		return false, nil
	}
	if target == domain.StatusClosed {
		if current == domain.StatusResolved {
			if !actor.Role.IsStaff() {
				return false, ErrUnauthorized
			}
			return false, nil
		}
		if current != domain.StatusSubmitted && current != domain.StatusClosed {
			if actor.Role != domain.RoleAdmin {
				return false, ErrUnauthorized
			}
			return true, nil
		}
	}
	return false, ErrInvalidTransition
}

func mayAdvanceTo(target domain.Status, actor Actor, reporterID string) bool {
	if actor.Role.IsStaff() {
		return true
	}
	return target == domain.StatusVerified && actor.Role == domain.RoleCitizen &&
		actor.ID != "" && actor.ID == reporterID
}

// Transition moves c to target. It returns the timeline entry to persist,
// or nil when target equals the current status. On error c is unchanged.
func (m *Machine) Transition(c *domain.Complaint, target domain.Status, actor Actor, payload Payload) (*domain.TimelineEntry, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, target)
	}
	current := c.Status
	if target == current {
		return nil, nil
	}

	override, err := route(current, target, actor, c.ReporterID)
	if err != nil {
		return nil, &TransitionError{
			Current: current,
			Target:  target,
			Allowed: AllowedTargets(current, actor, c.ReporterID),
			Err:     err,
		}
	}

	proof := c.ResolutionPhotoURL
	if target.RequiresResolutionProof() && proof == nil {
		if err := m.verifier.Verify(payload.ResolutionPhotoURL); err != nil {
			return nil, err
		}
		url := strings.TrimSpace(*payload.ResolutionPhotoURL)
		proof = &url
	}

	now := m.now()
	c.Status = target
	c.UpdatedAt = now
	if target.RequiresResolutionProof() && c.ResolvedAt == nil {
		resolvedAt := now
		c.ResolvedAt = &resolvedAt
		c.ResolutionPhotoURL = proof
		if payload.ResolutionType != nil && strings.TrimSpace(*payload.ResolutionType) != "" {
			rt := strings.TrimSpace(*payload.ResolutionType)
			c.ResolutionType = &rt
		}
	}

	details := fmt.Sprintf("Status changed from %s to %s", current, target)
	if override {
		details = fmt.Sprintf("Administrative close from %s", current)
	}
	if note := strings.TrimSpace(payload.Note); note != "" {
		details += ": " + note
	}
	return m.entry(c, domain.ActionForStatus(target), details, actor, &current, &target, now), nil
}

// Escalate raises the escalation flag without touching status. Returns nil,
// nil when the complaint is already escalated. Verified and closed
// complaints cannot be escalated.
func (m *Machine) Escalate(c *domain.Complaint, actor Actor, reason string) (*domain.TimelineEntry, error) {
	if c.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: status %s", ErrTerminalStatus, c.Status)
	}
	if c.IsEscalated {
		return nil, nil
	}
	now := m.now()
	c.IsEscalated = true
	c.EscalatedAt = &now
	c.UpdatedAt = now
	details := "Escalated"
	if reason != "" {
		details += ": " + reason
	}
	return m.entry(c, domain.ActionEscalated, details, actor, nil, nil, now), nil
}

// ResetEscalation clears the flag. Only administrators may do this, and the
// reset is always recorded. Returns nil, nil when nothing was escalated.
func (m *Machine) ResetEscalation(c *domain.Complaint, actor Actor, reason string) (*domain.TimelineEntry, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, ErrUnauthorized
	}
	if !c.IsEscalated {
		return nil, nil
	}
	now := m.now()
	c.IsEscalated = false
	c.EscalatedAt = nil
	c.UpdatedAt = now
	details := "Escalation reset by administrator"
	if reason = strings.TrimSpace(reason); reason != "" {
		details += ": " + reason
	}
	return m.entry(c, domain.ActionEscalationReset, details, actor, nil, nil, now), nil
}

func (m *Machine) entry(c *domain.Complaint, action domain.TimelineAction, details string, actor Actor, from, to *domain.Status, at time.Time) *domain.TimelineEntry {
	var actorID *string
	if actor.ID != "" {
		id := actor.ID
		actorID = &id
	}
	return &domain.TimelineEntry{
		ID:          uuid.NewString(),
		ComplaintID: c.ID,
		Action:      action,
		Details:     details,
		ActorID:     actorID,
		ActorRole:   actor.Role,
		FromStatus:  from,
		ToStatus:    to,
		CreatedAt:   at,
	}
}

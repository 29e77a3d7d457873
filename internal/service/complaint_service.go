package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/duplicate"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/geo"
	"github.com/spec-kit/complaint-service/internal/lifecycle"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/priority"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/sla"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// Escalation triggers, used for metrics and timeline details.
const (
	TriggerMonitor = "monitor"
	TriggerOnRead  = "on_read"
	TriggerManual  = "manual"
)

// Scorer computes the canonical priority of a complaint at a point in time.
type Scorer interface {
	ScoreComplaint(c *domain.Complaint, now time.Time) int
}

// EscalationPolicy decides when an open complaint is overdue.
type EscalationPolicy struct {
	Grace      time.Duration
	MaxOpenAge time.Duration
	OnRead     bool
}

// ComplaintService coordinates complaint workflows.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	index      geo.Index
	detector   *duplicate.Detector
	scorer     Scorer
	bands      priority.BandTable
	scheduler  *sla.Scheduler
	machine    *lifecycle.Machine
	classifier Classifier
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	policy     EscalationPolicy
	now        func() time.Time
}

// ComplaintDependencies bundles collaborators for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	Index         geo.Index
	Detector      *duplicate.Detector
	Scorer        Scorer
	Bands         priority.BandTable
	Scheduler     *sla.Scheduler
	Classifier    Classifier
	Dispatcher    events.Dispatcher
	Metrics       *observability.Metrics
	Logger        *zap.Logger
	Policy        EscalationPolicy
	Clock         func() time.Time
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	s := &ComplaintService{
		complaints: deps.ComplaintRepo,
		index:      deps.Index,
		detector:   deps.Detector,
		scorer:     deps.Scorer,
		bands:      deps.Bands,
		scheduler:  deps.Scheduler,
		classifier: deps.Classifier,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		policy:     deps.Policy,
		now:        deps.Clock,
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.index == nil {
		s.index = geo.NewMemoryIndex()
	}
	if s.scorer == nil {
		s.scorer = priority.NewScorer(priority.DefaultWeights())
	}
	if s.bands.Name == "" {
		s.bands = priority.FourBand
	}
	if s.scheduler == nil {
		s.scheduler = sla.NewScheduler(sla.DefaultPolicy())
	}
	if s.detector == nil {
		s.detector = duplicate.NewDetector(s.index, s.complaints, duplicate.DefaultConfig(), s.logger)
	}
	s.detector.WithClock(s.now)
	s.machine = lifecycle.NewMachine(lifecycle.PhotoVerifier{}, s.now)
	return s
}

// CreateInput describes a new submission.
type CreateInput struct {
	Title        string
	Description  string
	Category     string
	PhotoURL     *string
	Latitude     *float64
	Longitude    *float64
	Address      string
	IsPublic     bool
	IsAnonymous  bool
	ReportAnyway bool
}

// ListInput describes list filters.
type ListInput struct {
	Statuses   []domain.Status
	Categories []domain.Category
	Bands      []priority.Band
	Escalated  *bool
	Mine       bool
	SearchTerm *string
	Limit      int
	Offset     int
}

// TransitionInput carries a requested status change.
type TransitionInput struct {
	Status             string
	ResolutionPhotoURL *string
	ResolutionType     *string
	Note               string
}

// ComplaintView is a complaint plus values derived on read.
type ComplaintView struct {
	Complaint          *domain.Complaint
	Band               priority.Band
	TimeRemaining      time.Duration
	Urgency            sla.Urgency
	Voted              bool
	AllowedTransitions []domain.Status
}

// DuplicatesFoundError blocks creation until the caller chooses to upvote
// an existing complaint or resubmits with ReportAnyway.
type DuplicatesFoundError struct {
	Candidates []duplicate.Candidate
}

func (e *DuplicatesFoundError) Error() string {
	return fmt.Sprintf("%d similar complaints nearby", len(e.Candidates))
}

// SweepOutcome reports what EscalateIfDue changed.
type SweepOutcome struct {
	Complaint *domain.Complaint
	Refreshed bool
	Escalated bool
}

// Create validates, scores and stores a complaint.
func (s *ComplaintService) Create(ctx context.Context, actor lifecycle.Actor, input CreateInput) (*domain.Complaint, error) {
	category, err := s.validateCreate(input)
	if err != nil {
		return nil, err
	}

	if input.Latitude != nil && !input.ReportAnyway {
		candidates := s.CheckDuplicates(ctx, duplicate.Query{
			Latitude:  *input.Latitude,
			Longitude: *input.Longitude,
			Category:  category,
		})
		if len(candidates) > 0 {
			return nil, &DuplicatesFoundError{Candidates: candidates}
		}
	}

	now := s.now()
	complaint := &domain.Complaint{
		ID:          uuid.NewString(),
		ReporterID:  actor.ID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    category,
		PhotoURL:    trimmedOrNil(input.PhotoURL),
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Address:     strings.TrimSpace(input.Address),
		IsPublic:    input.IsPublic,
		IsAnonymous: input.IsAnonymous,
		Status:      domain.StatusSubmitted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.classify(ctx, complaint)

	if complaint.PriorityScore, err = s.score(complaint, now); err != nil {
		return nil, err
	}
	s.scheduler.Stamp(complaint)

	submitted := domain.StatusSubmitted
	actorID := actor.ID
	entry := domain.TimelineEntry{
		ID:          uuid.NewString(),
		ComplaintID: complaint.ID,
		Action:      domain.ActionSubmitted,
		Details:     "Complaint submitted",
		ActorID:     &actorID,
		ActorRole:   actor.Role,
		ToStatus:    &submitted,
		CreatedAt:   now,
	}
	if err := s.complaints.Create(ctx, complaint, []domain.TimelineEntry{entry}); err != nil {
		return nil, err
	}

	if complaint.HasLocation() {
		if err := s.index.Add(ctx, indexEntry(complaint)); err != nil {
			s.logger.Warn("geo index add failed; complaint is missing from duplicate checks until the index is rebuilt",
				zap.String("complaint_id", complaint.ID), zap.Error(err))
		}
	}

	s.metrics.RecordCreated(string(complaint.Category))
	s.logger.Info("complaint created",
		zap.String("complaint_id", complaint.ID),
		zap.String("category", string(complaint.Category)),
		zap.Int("priority_score", complaint.PriorityScore),
		zap.Int("sla_hours", complaint.SLAHours))
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintCreated,
		ComplaintID: complaint.ID,
		Actor:       eventActor(actor),
		Payload: events.ComplaintCreatedPayload{
			Category:      complaint.Category,
			PriorityScore: complaint.PriorityScore,
			SLADeadline:   complaint.SLADeadline,
			Title:         complaint.Title,
		},
	})
	return complaint, nil
}

// Get returns a complaint visible to viewer. With on-read escalation enabled
// an overdue complaint is escalated before it is returned.
func (s *ComplaintService) Get(ctx context.Context, viewer *lifecycle.Actor, id string) (*ComplaintView, error) {
	complaint, err := s.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	if s.policy.OnRead && s.Due(complaint, s.now()) {
		outcome, err := s.EscalateIfDue(ctx, id, TriggerOnRead)
		if err != nil {
			s.logger.Warn("on-read escalation failed", zap.String("complaint_id", id), zap.Error(err))
		} else if outcome.Complaint != nil {
			complaint = outcome.Complaint
		}
	}

	view := s.View(complaint, viewer)
	if viewer != nil && viewer.ID != "" {
		voted, err := s.complaints.HasVoted(ctx, id, viewer.ID)
		if err != nil {
			s.logger.Warn("vote lookup failed", zap.String("complaint_id", id), zap.Error(err))
		}
		view.Voted = voted
	}
	return view, nil
}

// List returns complaints visible to viewer, highest priority first.
func (s *ComplaintService) List(ctx context.Context, viewer *lifecycle.Actor, input ListInput) ([]ComplaintView, error) {
	filter := repository.ComplaintFilter{
		Statuses:   input.Statuses,
		Categories: input.Categories,
		Escalated:  input.Escalated,
		SearchTerm: input.SearchTerm,
		Limit:      input.Limit,
		Offset:     input.Offset,
	}
	switch {
	case input.Mine:
		if viewer == nil || viewer.ID == "" {
			return nil, apperrors.NewUnauthorized("authentication required")
		}
		filter.ReporterID = &viewer.ID
	case viewer == nil || !viewer.Role.IsStaff():
		filter.PublicOnly = true
	}
	// Bands are derived, so band filtering happens after the fetch.
	if len(input.Bands) > 0 {
		filter.Limit, filter.Offset = 0, 0
	}

	complaints, err := s.complaints.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	views := make([]ComplaintView, 0, len(complaints))
	for i := range complaints {
		view := s.View(&complaints[i], viewer)
		if len(input.Bands) > 0 && !slices.Contains(input.Bands, view.Band) {
			continue
		}
		views = append(views, *view)
	}
	if len(input.Bands) > 0 {
		views = pageViews(views, input.Limit, input.Offset)
	}
	return views, nil
}

// Timeline returns the audit trail in order.
func (s *ComplaintService) Timeline(ctx context.Context, viewer *lifecycle.Actor, id string) ([]domain.TimelineEntry, error) {
	if _, err := s.load(ctx, viewer, id); err != nil {
		return nil, err
	}
	return s.complaints.Timeline(ctx, id)
}

// CheckDuplicates returns advisory candidates near a location.
func (s *ComplaintService) CheckDuplicates(ctx context.Context, q duplicate.Query) []duplicate.Candidate {
	candidates := s.detector.Check(ctx, q)
	s.metrics.RecordDuplicateCheck(len(candidates))
	return candidates
}

// TransitionStatus applies a lifecycle move under the record lock.
func (s *ComplaintService) TransitionStatus(ctx context.Context, actor lifecycle.Actor, id string, input TransitionInput) (*domain.Complaint, error) {
	target, ok := domain.NormalizeStatus(input.Status)
	if !ok {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": input.Status})
	}

	var (
		from    domain.Status
		changed bool
	)
	updated, err := s.complaints.Update(ctx, id, func(c *domain.Complaint) ([]domain.TimelineEntry, error) {
		if !canView(c, &actor) {
			return nil, repository.ErrNotFound
		}
		from = c.Status
		entry, err := s.machine.Transition(c, target, actor, lifecycle.Payload{
			ResolutionPhotoURL: input.ResolutionPhotoURL,
			ResolutionType:     input.ResolutionType,
			Note:               input.Note,
		})
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return nil, repository.ErrNoChange
		}
		changed = true
		return []domain.TimelineEntry{*entry}, nil
	})
	if err != nil {
		return nil, mapLifecycleError(err)
	}
	if !changed {
		return updated, nil
	}

	if updated.Status.IsTerminal() {
		s.unindex(ctx, updated)
	}
	s.metrics.RecordTransition(string(from), string(updated.Status))
	s.logger.Info("complaint status changed",
		zap.String("complaint_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(updated.Status)),
		zap.String("actor_role", string(actor.Role)))
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintStatusChanged,
		ComplaintID: id,
		Actor:       eventActor(actor),
		Payload: events.ComplaintStatusChangedPayload{
			OldStatus: from,
			NewStatus: updated.Status,
			Override:  updated.Status == domain.StatusClosed && from != domain.StatusResolved,
			Comment:   strings.TrimSpace(input.Note),
		},
	})
	return updated, nil
}

// ToggleUpvote adds or removes actor's vote and recomputes priority. The SLA
// deadline is left as stamped at creation. Private complaints the actor
// cannot see are reported as not found and the vote is discarded.
func (s *ComplaintService) ToggleUpvote(ctx context.Context, actor lifecycle.Actor, id string) (*domain.Complaint, bool, error) {
	updated, voted, err := s.complaints.ToggleVote(ctx, id, actor.ID, func(c *domain.Complaint) error {
		if !canView(c, &actor) {
			return repository.ErrNotFound
		}
		now := s.now()
		score, err := s.score(c, now)
		if err != nil {
			return err
		}
		c.PriorityScore = score
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, false, mapLifecycleError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintUpvoted,
		ComplaintID: id,
		Actor:       eventActor(actor),
		Payload: events.ComplaintUpvotedPayload{
			Voted:         voted,
			Upvotes:       updated.Upvotes,
			PriorityScore: updated.PriorityScore,
		},
	})
	return updated, voted, nil
}

// Due reports whether an open, unescalated complaint has passed its deadline
// plus grace or has stayed open longer than the maximum age.
func (s *ComplaintService) Due(c *domain.Complaint, now time.Time) bool {
	return s.dueReason(c, now) != ""
}

func (s *ComplaintService) dueReason(c *domain.Complaint, now time.Time) string {
	if c.IsEscalated || !c.Status.IsOpen() {
		return ""
	}
	if now.After(c.SLADeadline.Add(s.policy.Grace)) {
		return fmt.Sprintf("SLA deadline %s passed", c.SLADeadline.UTC().Format(time.RFC3339))
	}
	if s.policy.MaxOpenAge > 0 && now.Sub(c.CreatedAt) > s.policy.MaxOpenAge {
		return fmt.Sprintf("open longer than %s", s.policy.MaxOpenAge)
	}
	return ""
}

// Escalate flags a complaint regardless of its deadline. Returns false when
// it was already escalated.
func (s *ComplaintService) Escalate(ctx context.Context, actor lifecycle.Actor, id, reason string) (bool, error) {
	if !actor.Role.IsStaff() && actor.Role != domain.RoleSystem {
		return false, apperrors.NewForbidden("only staff may escalate")
	}
	var escalated *domain.Complaint
	_, err := s.complaints.Update(ctx, id, func(c *domain.Complaint) ([]domain.TimelineEntry, error) {
		entry, err := s.machine.Escalate(c, actor, reason)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return nil, repository.ErrNoChange
		}
		escalated = c
		return []domain.TimelineEntry{*entry}, nil
	})
	if err != nil {
		return false, mapLifecycleError(err)
	}
	if escalated == nil {
		return false, nil
	}
	s.afterEscalation(ctx, actor, escalated, reason, TriggerManual)
	return true, nil
}

// EscalateIfDue refreshes the age-dependent priority and escalates when the
// complaint is overdue, all under one lock. Running it twice escalates once.
func (s *ComplaintService) EscalateIfDue(ctx context.Context, id, trigger string) (SweepOutcome, error) {
	var (
		outcome SweepOutcome
		reason  string
	)
	updated, err := s.complaints.Update(ctx, id, func(c *domain.Complaint) ([]domain.TimelineEntry, error) {
		if !c.Status.IsOpen() {
			return nil, repository.ErrNoChange
		}
		now := s.now()
		score, err := s.score(c, now)
		if err != nil {
			return nil, err
		}
		if score != c.PriorityScore {
			c.PriorityScore = score
			c.UpdatedAt = now
			outcome.Refreshed = true
		}
		reason = s.dueReason(c, now)
		var entries []domain.TimelineEntry
		if reason != "" {
			entry, err := s.machine.Escalate(c, lifecycle.SystemActor, reason)
			if err != nil {
				return nil, err
			}
			if entry != nil {
				entries = append(entries, *entry)
				outcome.Escalated = true
			}
		}
		if !outcome.Refreshed && !outcome.Escalated {
			return nil, repository.ErrNoChange
		}
		return entries, nil
	})
	if err != nil {
		return SweepOutcome{}, mapLifecycleError(err)
	}
	outcome.Complaint = updated
	if outcome.Escalated {
		s.afterEscalation(ctx, lifecycle.SystemActor, updated, reason, trigger)
	}
	return outcome, nil
}

// ResetEscalation clears the escalation flag. Administrators only.
func (s *ComplaintService) ResetEscalation(ctx context.Context, actor lifecycle.Actor, id, reason string) (*domain.Complaint, error) {
	var changed bool
	updated, err := s.complaints.Update(ctx, id, func(c *domain.Complaint) ([]domain.TimelineEntry, error) {
		entry, err := s.machine.ResetEscalation(c, actor, reason)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return nil, repository.ErrNoChange
		}
		changed = true
		return []domain.TimelineEntry{*entry}, nil
	})
	if err != nil {
		return nil, mapLifecycleError(err)
	}
	if changed {
		s.logger.Info("escalation reset", zap.String("complaint_id", id), zap.String("actor_id", actor.ID))
		s.publishEvent(ctx, events.Event{
			Type:        events.EventEscalationReset,
			ComplaintID: id,
			Actor:       eventActor(actor),
		})
	}
	return updated, nil
}

// ListOpen pages through submitted, assigned and in-progress complaints.
// Resolved complaints are left out: the fix landed, only verification is pending.
func (s *ComplaintService) ListOpen(ctx context.Context, limit, offset int) ([]domain.Complaint, error) {
	return s.complaints.ListOpen(ctx, limit, offset)
}

// RebuildIndex adds every located, non-terminal complaint inside the
// duplicate window to the geo index. It repairs an index that started empty
// or missed writes while it was unreachable. Adds are idempotent.
func (s *ComplaintService) RebuildIndex(ctx context.Context) (int, error) {
	filter := repository.ComplaintFilter{}
	for _, st := range domain.Statuses {
		if !st.IsTerminal() {
			filter.Statuses = append(filter.Statuses, st)
		}
	}
	if window := s.detector.Window(); window > 0 {
		from := s.now().Add(-window)
		filter.CreatedFrom = &from
	}

	complaints, err := s.complaints.List(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("list indexable complaints: %w", err)
	}
	indexed := 0
	for i := range complaints {
		c := &complaints[i]
		if !c.HasLocation() {
			continue
		}
		if err := s.index.Add(ctx, indexEntry(c)); err != nil {
			return indexed, fmt.Errorf("index complaint %s: %w", c.ID, err)
		}
		indexed++
	}
	s.logger.Info("geo index rebuilt", zap.Int("indexed", indexed))
	return indexed, nil
}

// View derives band, SLA state and permitted moves for viewer.
func (s *ComplaintService) View(c *domain.Complaint, viewer *lifecycle.Actor) *ComplaintView {
	now := s.now()
	view := &ComplaintView{
		Complaint:     c,
		Band:          s.bands.Band(c.PriorityScore),
		TimeRemaining: s.scheduler.TimeRemaining(c, now),
		Urgency:       s.scheduler.Urgency(c, now),
	}
	if c.Status.RequiresResolutionProof() {
		view.Urgency = sla.UrgencyOK
	}
	if viewer != nil {
		view.AllowedTransitions = lifecycle.AllowedTargets(c.Status, *viewer, c.ReporterID)
	}
	return view
}

// Bands returns the configured display table.
func (s *ComplaintService) Bands() priority.BandTable {
	return s.bands
}

func (s *ComplaintService) load(ctx context.Context, viewer *lifecycle.Actor, id string) (*domain.Complaint, error) {
	complaint, err := s.complaints.Get(ctx, id)
	if err != nil {
		return nil, mapLifecycleError(err)
	}
	if !canView(complaint, viewer) {
		return nil, apperrors.NewNotFound("complaint", map[string]any{"id": id})
	}
	return complaint, nil
}

// score guards against a scorer that escapes the clamped range.
func (s *ComplaintService) score(c *domain.Complaint, now time.Time) (int, error) {
	score := s.scorer.ScoreComplaint(c, now)
	if !priority.Valid(score) {
		s.logger.Error("priority score out of range", zap.String("complaint_id", c.ID), zap.Int("score", score))
		return 0, apperrors.NewValidationError("priority score out of range", map[string]any{
			"priority_score": score,
			"min":            priority.MinScore,
			"max":            priority.MaxScore,
		})
	}
	return score, nil
}

func (s *ComplaintService) validateCreate(input CreateInput) (domain.Category, error) {
	details := map[string]any{}
	if strings.TrimSpace(input.Title) == "" {
		details["title"] = "required"
	}
	if strings.TrimSpace(input.Description) == "" {
		details["description"] = "required"
	}
	category, ok := domain.ParseCategory(input.Category)
	if !ok {
		details["category"] = "unknown category"
	}
	switch {
	case (input.Latitude == nil) != (input.Longitude == nil):
		details["location"] = "latitude and longitude must be provided together"
	case input.Latitude != nil && !(geo.Point{Lat: *input.Latitude, Lng: *input.Longitude}).Valid():
		details["location"] = "coordinates out of range"
	}
	if len(details) > 0 {
		return "", apperrors.NewValidationError("invalid complaint", details)
	}
	return category, nil
}

func (s *ComplaintService) classify(ctx context.Context, complaint *domain.Complaint) {
	if s.classifier == nil {
		return
	}
	result, err := s.classifier.Classify(ctx, ClassifyInput{
		Title:       complaint.Title,
		Description: complaint.Description,
		Category:    complaint.Category,
		PhotoURL:    complaint.PhotoURL,
		HasLocation: complaint.HasLocation(),
	})
	if err != nil {
		s.logger.Warn("classifier unavailable; continuing without suggestions", zap.Error(err))
		return
	}
	if result == nil {
		return
	}
	complaint.SuggestedCategory = result.SuggestedCategory
	complaint.ClassifierConfidence = result.Confidence
	complaint.FraudFlags = result.FraudFlags
}

func (s *ComplaintService) afterEscalation(ctx context.Context, actor lifecycle.Actor, c *domain.Complaint, reason, trigger string) {
	s.metrics.RecordEscalation(trigger)
	s.logger.Warn("complaint escalated",
		zap.String("complaint_id", c.ID),
		zap.String("trigger", trigger),
		zap.String("reason", reason))
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintEscalated,
		ComplaintID: c.ID,
		Actor:       eventActor(actor),
		Payload: events.ComplaintEscalatedPayload{
			Reason:        reason,
			SLADeadline:   c.SLADeadline,
			PriorityScore: c.PriorityScore,
		},
	})
}

func indexEntry(c *domain.Complaint) geo.Entry {
	return geo.Entry{
		ID:       c.ID,
		Category: c.Category,
		Point:    geo.Point{Lat: *c.Latitude, Lng: *c.Longitude},
	}
}

func (s *ComplaintService) unindex(ctx context.Context, c *domain.Complaint) {
	if !c.HasLocation() {
		return
	}
	if err := s.index.Remove(ctx, c.ID, c.Category); err != nil {
		s.logger.Warn("geo index remove failed", zap.String("complaint_id", c.ID), zap.Error(err))
	}
}

func (s *ComplaintService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func canView(c *domain.Complaint, viewer *lifecycle.Actor) bool {
	if c.IsPublic {
		return true
	}
	if viewer == nil {
		return false
	}
	return viewer.Role.IsStaff() || (viewer.ID != "" && viewer.ID == c.ReporterID)
}

// mapLifecycleError converts lifecycle and repository errors to DomainErrors.
func mapLifecycleError(err error) error {
	var transitionErr *lifecycle.TransitionError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &transitionErr):
		if errors.Is(transitionErr.Err, lifecycle.ErrUnauthorized) {
			return apperrors.NewForbidden(fmt.Sprintf("not allowed to move complaint from %s to %s", transitionErr.Current, transitionErr.Target))
		}
		allowed := make([]string, len(transitionErr.Allowed))
		for i, st := range transitionErr.Allowed {
			allowed[i] = string(st)
		}
		return apperrors.NewInvalidTransition(string(transitionErr.Current), allowed, err)
	case errors.Is(err, lifecycle.ErrMissingResolutionProof):
		return apperrors.NewMissingResolutionProof(err)
	case errors.Is(err, lifecycle.ErrUnauthorized):
		return apperrors.NewForbidden("not allowed")
	case errors.Is(err, lifecycle.ErrTerminalStatus):
		return apperrors.NewConflict(err.Error(), nil)
	case errors.Is(err, lifecycle.ErrUnknownStatus):
		return apperrors.NewValidationError(err.Error(), nil)
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("complaint", nil)
	case errors.Is(err, repository.ErrConflict):
		return apperrors.NewConflict("complaint was modified concurrently", nil)
	default:
		return err
	}
}

func eventActor(actor lifecycle.Actor) events.Actor {
	return events.Actor{ID: actor.ID, Role: actor.Role}
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func pageViews(views []ComplaintView, limit, offset int) []ComplaintView {
	if offset > 0 {
		if offset >= len(views) {
			return nil
		}
		views = views[offset:]
	}
	if limit > 0 && limit < len(views) {
		views = views[:limit]
	}
	return views
}

package handlers

import (
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/duplicate"
	"github.com/spec-kit/complaint-service/internal/lifecycle"
	"github.com/spec-kit/complaint-service/internal/priority"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ComplaintsHandler exposes complaint submission, browsing and lifecycle endpoints.
type ComplaintsHandler struct {
	complaints *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaints *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{complaints: complaints}
}

// List GET /complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	viewer := viewerFromContext(c)
	input, err := h.parseListQuery(c)
	if err != nil {
		return err
	}
	views, err := h.complaints.List(c.UserContext(), viewer, input)
	if err != nil {
		return err
	}
	items := make([]dto.ComplaintResponse, 0, len(views))
	for i := range views {
		items = append(items, complaintResponse(&views[i], viewer))
	}
	return c.JSON(fiber.Map{
		"data": items,
		"meta": fiber.Map{"limit": input.Limit, "offset": input.Offset, "count": len(items)},
	})
}

// Create POST /complaints.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	complaint, err := h.complaints.Create(c.UserContext(), actor, service.CreateInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		PhotoURL:     req.PhotoURL,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Address:      req.Address,
		IsPublic:     isPublic,
		IsAnonymous:  req.IsAnonymous,
		ReportAnyway: req.ReportAnyway,
	})
	if err != nil {
		var dupErr *service.DuplicatesFoundError
		if errors.As(err, &dupErr) {
			return apperrors.NewDuplicateCandidates(candidateResponses(dupErr.Candidates))
		}
		return err
	}
	view := h.complaints.View(complaint, &actor)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": complaintResponse(view, &actor)})
}

// CheckDuplicate POST /complaints/check-duplicate.
func (h *ComplaintsHandler) CheckDuplicate(c *fiber.Ctx) error {
	var req dto.CheckDuplicateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	category, ok := domain.ParseCategory(req.Category)
	if !ok {
		return apperrors.NewValidationError("unknown category", map[string]any{"category": req.Category})
	}
	candidates := h.complaints.CheckDuplicates(c.UserContext(), duplicate.Query{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Category:  category,
	})
	return c.JSON(fiber.Map{"data": fiber.Map{
		"has_duplicates": len(candidates) > 0,
		"candidates":     candidateResponses(candidates),
	}})
}

// Get GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	viewer := viewerFromContext(c)
	view, err := h.complaints.Get(c.UserContext(), viewer, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintResponse(view, viewer)})
}

// UpdateStatus PATCH /complaints/:id/status.
func (h *ComplaintsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	complaint, err := h.complaints.TransitionStatus(c.UserContext(), actor, c.Params("id"), service.TransitionInput{
		Status:             req.Status,
		ResolutionPhotoURL: req.ResolutionPhotoURL,
		ResolutionType:     req.ResolutionType,
		Note:               req.Note,
	})
	if err != nil {
		return err
	}
	view := h.complaints.View(complaint, &actor)
	return c.JSON(fiber.Map{"data": complaintResponse(view, &actor)})
}

// Upvote POST /complaints/:id/upvote toggles the caller's vote.
func (h *ComplaintsHandler) Upvote(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	complaint, voted, err := h.complaints.ToggleUpvote(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UpvoteResponse{
		Voted:         voted,
		Upvotes:       complaint.Upvotes,
		PriorityScore: complaint.PriorityScore,
		PriorityBand:  string(h.complaints.Bands().Band(complaint.PriorityScore)),
	}})
}

// Timeline GET /complaints/:id/timeline.
func (h *ComplaintsHandler) Timeline(c *fiber.Ctx) error {
	entries, err := h.complaints.Timeline(c.UserContext(), viewerFromContext(c), c.Params("id"))
	if err != nil {
		return err
	}
	resp := make([]dto.TimelineEntryResponse, 0, len(entries))
	for i := range entries {
		resp = append(resp, timelineResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Escalate POST /complaints/:id/escalate flags a complaint by hand.
func (h *ComplaintsHandler) Escalate(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.EscalationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		if err := dto.Validate(&req); err != nil {
			return err
		}
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "escalated manually"
	}
	escalated, err := h.complaints.Escalate(c.UserContext(), actor, c.Params("id"), reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"escalated": escalated}})
}

// ResetEscalation POST /complaints/:id/escalation/reset.
func (h *ComplaintsHandler) ResetEscalation(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.EscalationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		if err := dto.Validate(&req); err != nil {
			return err
		}
	}
	complaint, err := h.complaints.ResetEscalation(c.UserContext(), actor, c.Params("id"), strings.TrimSpace(req.Reason))
	if err != nil {
		return err
	}
	view := h.complaints.View(complaint, &actor)
	return c.JSON(fiber.Map{"data": complaintResponse(view, &actor)})
}

func (h *ComplaintsHandler) parseListQuery(c *fiber.Ctx) (service.ListInput, error) {
	input := service.ListInput{}
	statuses, err := parseStatuses(c.Query("status"))
	if err != nil {
		return input, err
	}
	input.Statuses = statuses
	categories, err := parseCategories(c.Query("category"))
	if err != nil {
		return input, err
	}
	input.Categories = categories

	known := h.complaints.Bands().Bands()
	for _, raw := range splitQuery(c.Query("band")) {
		band := priority.Band(strings.ToLower(raw))
		if !slices.Contains(known, band) {
			return input, apperrors.NewValidationError("unknown priority band", map[string]any{"band": raw})
		}
		input.Bands = append(input.Bands, band)
	}

	if raw := c.Query("escalated"); raw != "" {
		escalated, err := strconv.ParseBool(raw)
		if err != nil {
			return input, apperrors.NewValidationError("escalated must be a boolean", nil)
		}
		input.Escalated = &escalated
	}
	input.Mine = c.QueryBool("mine", false)
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		input.SearchTerm = &q
	}

	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	input.Limit = pageSize
	input.Offset = (page - 1) * pageSize
	return input, nil
}

func parseCategories(raw string) ([]domain.Category, error) {
	var out []domain.Category
	for _, part := range splitQuery(raw) {
		category, ok := domain.ParseCategory(part)
		if !ok {
			return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": part})
		}
		out = append(out, category)
	}
	return out, nil
}

func parseStatuses(raw string) ([]domain.Status, error) {
	var out []domain.Status
	for _, part := range splitQuery(raw) {
		status, ok := domain.NormalizeStatus(part)
		if !ok {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": part})
		}
		out = append(out, status)
	}
	return out, nil
}

func splitQuery(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

// viewerFromContext returns nil for anonymous requests.
func viewerFromContext(c *fiber.Ctx) *lifecycle.Actor {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal == nil {
		return nil
	}
	return &lifecycle.Actor{ID: principal.UserID, Role: principal.Role}
}

func requireActor(c *fiber.Ctx) (lifecycle.Actor, error) {
	viewer := viewerFromContext(c)
	if viewer == nil {
		return lifecycle.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return *viewer, nil
}

func complaintResponse(view *service.ComplaintView, viewer *lifecycle.Actor) dto.ComplaintResponse {
	c := view.Complaint
	resp := dto.ComplaintResponse{
		ID:                   c.ID,
		Title:                c.Title,
		Description:          c.Description,
		Category:             string(c.Category),
		PhotoURL:             c.PhotoURL,
		Latitude:             c.Latitude,
		Longitude:            c.Longitude,
		Address:              c.Address,
		IsPublic:             c.IsPublic,
		IsAnonymous:          c.IsAnonymous,
		Status:               string(c.Status),
		PriorityScore:        c.PriorityScore,
		PriorityBand:         string(view.Band),
		Upvotes:              c.Upvotes,
		Voted:                view.Voted,
		IsEscalated:          c.IsEscalated,
		EscalatedAt:          c.EscalatedAt,
		SLAHours:             c.SLAHours,
		SLADeadline:          c.SLADeadline,
		TimeRemainingSeconds: int64(view.TimeRemaining / time.Second),
		SLAUrgency:           string(view.Urgency),
		ResolutionPhotoURL:   c.ResolutionPhotoURL,
		ResolutionType:       c.ResolutionType,
		ClassifierConfidence: c.ClassifierConfidence,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
		ResolvedAt:           c.ResolvedAt,
	}
	if revealReporter(c, viewer) {
		reporter := c.ReporterID
		resp.ReporterID = &reporter
	}
	if c.SuggestedCategory != nil {
		suggested := string(*c.SuggestedCategory)
		resp.SuggestedCategory = &suggested
	}
	for _, flag := range c.FraudFlags {
		resp.FraudFlags = append(resp.FraudFlags, dto.FraudFlagResponse{Type: flag.Type, Message: flag.Message})
	}
	for _, s := range view.AllowedTransitions {
		resp.AllowedTransitions = append(resp.AllowedTransitions, string(s))
	}
	return resp
}

// revealReporter hides anonymous reporters from everyone but staff and the
// reporter themself.
func revealReporter(c *domain.Complaint, viewer *lifecycle.Actor) bool {
	if !c.IsAnonymous {
		return true
	}
	return viewer != nil && (viewer.Role.IsStaff() || viewer.ID == c.ReporterID)
}

func candidateResponses(candidates []duplicate.Candidate) []dto.DuplicateCandidateResponse {
	resp := make([]dto.DuplicateCandidateResponse, 0, len(candidates))
	for _, cand := range candidates {
		resp = append(resp, dto.DuplicateCandidateResponse{
			ID:             cand.Complaint.ID,
			Title:          cand.Complaint.Title,
			Category:       string(cand.Complaint.Category),
			Status:         string(cand.Complaint.Status),
			Upvotes:        cand.Complaint.Upvotes,
			PriorityScore:  cand.Complaint.PriorityScore,
			DistanceMeters: cand.DistanceMeters,
			CreatedAt:      cand.Complaint.CreatedAt,
		})
	}
	return resp
}

func timelineResponse(entry *domain.TimelineEntry) dto.TimelineEntryResponse {
	resp := dto.TimelineEntryResponse{
		ID:        entry.ID,
		Action:    string(entry.Action),
		Details:   entry.Details,
		ActorID:   entry.ActorID,
		ActorRole: string(entry.ActorRole),
		CreatedAt: entry.CreatedAt,
	}
	if entry.FromStatus != nil {
		from := string(*entry.FromStatus)
		resp.FromStatus = &from
	}
	if entry.ToStatus != nil {
		to := string(*entry.ToStatus)
		resp.ToStatus = &to
	}
	return resp
}

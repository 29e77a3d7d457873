package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// ReportsHandler serves aggregate views over complaints.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// Stats GET /complaints/stats.
func (h *ReportsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.reports.Stats(c.UserContext())
	if err != nil {
		return err
	}
	resp := dto.StatsResponse{
		Total:      stats.Total,
		Open:       stats.Open,
		Escalated:  stats.Escalated,
		Breached:   stats.Breached,
		ByStatus:   make(map[string]int, len(stats.ByStatus)),
		ByCategory: make(map[string]int, len(stats.ByCategory)),
		ByBand:     make(map[string]int, len(stats.ByBand)),
	}
	for k, v := range stats.ByStatus {
		resp.ByStatus[string(k)] = v
	}
	for k, v := range stats.ByCategory {
		resp.ByCategory[string(k)] = v
	}
	for k, v := range stats.ByBand {
		resp.ByBand[string(k)] = v
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Heatmap GET /complaints/heatmap.
func (h *ReportsHandler) Heatmap(c *fiber.Ctx) error {
	categories, err := parseCategories(c.Query("category"))
	if err != nil {
		return err
	}
	statuses, err := parseStatuses(c.Query("status"))
	if err != nil {
		return err
	}
	points, err := h.reports.Heatmap(c.UserContext(), categories, statuses)
	if err != nil {
		return err
	}
	resp := make([]dto.HeatPointResponse, 0, len(points))
	for _, p := range points {
		resp = append(resp, dto.HeatPointResponse{
			ComplaintID: p.ComplaintID,
			Latitude:    p.Latitude,
			Longitude:   p.Longitude,
			Category:    string(p.Category),
			Status:      string(p.Status),
			Weight:      p.Weight,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Analytics GET /complaints/analytics.
func (h *ReportsHandler) Analytics(c *fiber.Ctx) error {
	raw := c.Query("since")
	since := parseTime(raw)
	if raw != "" && since == nil {
		return apperrors.NewValidationError("since must be an RFC3339 timestamp", nil)
	}
	analytics, err := h.reports.Analytics(c.UserContext(), since)
	if err != nil {
		return err
	}
	resp := dto.AnalyticsResponse{
		Since:               analytics.Since,
		Resolved:            analytics.Resolved,
		MeanResolutionHours: analytics.MeanResolutionHours,
		SLACompliance:       analytics.SLACompliance,
		Categories:          make([]dto.CategoryAnalyticsResponse, 0, len(analytics.Categories)),
	}
	for _, ca := range analytics.Categories {
		resp.Categories = append(resp.Categories, dto.CategoryAnalyticsResponse{
			Category:            string(ca.Category),
			Total:               ca.Total,
			Resolved:            ca.Resolved,
			MeanResolutionHours: ca.MeanResolutionHours,
			SLACompliance:       ca.SLACompliance,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

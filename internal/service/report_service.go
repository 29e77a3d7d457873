package service

import (
	"context"
	"math"
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/priority"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// Stats summarizes the complaint population.
type Stats struct {
	Total      int
	Open       int
	Escalated  int
	Breached   int
	ByStatus   map[domain.Status]int
	ByCategory map[domain.Category]int
	ByBand     map[priority.Band]int
}

// HeatPoint is one public complaint location weighted by priority.
type HeatPoint struct {
	ComplaintID string
	Latitude    float64
	Longitude   float64
	Category    domain.Category
	Status      domain.Status
	Weight      float64
}

// CategoryAnalytics reports resolution performance for one category.
type CategoryAnalytics struct {
	Category            domain.Category
	Total               int
	Resolved            int
	MeanResolutionHours float64
	SLACompliance       float64
}

// Analytics aggregates resolution performance.
type Analytics struct {
	Since               *time.Time
	Categories          []CategoryAnalytics
	Resolved            int
	MeanResolutionHours float64
	SLACompliance       float64
}

// ReportService computes read-only aggregates over complaints.
type ReportService struct {
	complaints repository.ComplaintRepository
	bands      priority.BandTable
	now        func() time.Time
}

// NewReportService constructs the service.
func NewReportService(complaints repository.ComplaintRepository, bands priority.BandTable, clock func() time.Time) *ReportService {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	if bands.Name == "" {
		bands = priority.FourBand
	}
	return &ReportService{complaints: complaints, bands: bands, now: clock}
}

// Stats counts complaints by status, category and band.
func (s *ReportService) Stats(ctx context.Context) (*Stats, error) {
	all, err := s.complaints.List(ctx, repository.ComplaintFilter{})
	if err != nil {
		return nil, err
	}
	now := s.now()
	stats := &Stats{
		Total:      len(all),
		ByStatus:   make(map[domain.Status]int, len(domain.Statuses)),
		ByCategory: make(map[domain.Category]int, len(domain.Categories)),
		ByBand:     make(map[priority.Band]int, 4),
	}
	for _, st := range domain.Statuses {
		stats.ByStatus[st] = 0
	}
	for _, b := range s.bands.Bands() {
		stats.ByBand[b] = 0
	}
	for i := range all {
		c := &all[i]
		stats.ByStatus[c.Status]++
		stats.ByCategory[c.Category]++
		stats.ByBand[s.bands.Band(c.PriorityScore)]++
		if c.IsEscalated {
			stats.Escalated++
		}
		if c.Status.IsOpen() {
			stats.Open++
			if now.After(c.SLADeadline) {
				stats.Breached++
			}
		}
	}
	return stats, nil
}

// Heatmap returns located public complaints, optionally filtered.
func (s *ReportService) Heatmap(ctx context.Context, categories []domain.Category, statuses []domain.Status) ([]HeatPoint, error) {
	all, err := s.complaints.List(ctx, repository.ComplaintFilter{
		Categories: categories,
		Statuses:   statuses,
		PublicOnly: true,
	})
	if err != nil {
		return nil, err
	}
	points := make([]HeatPoint, 0, len(all))
	for i := range all {
		c := &all[i]
		if !c.HasLocation() {
			continue
		}
		points = append(points, HeatPoint{
			ComplaintID: c.ID,
			Latitude:    *c.Latitude,
			Longitude:   *c.Longitude,
			Category:    c.Category,
			Status:      c.Status,
			Weight:      float64(c.PriorityScore) / float64(priority.MaxScore),
		})
	}
	return points, nil
}

// Analytics reports mean resolution time and SLA compliance per category.
// Compliance is the share of resolved complaints resolved on or before
// their deadline.
func (s *ReportService) Analytics(ctx context.Context, since *time.Time) (*Analytics, error) {
	all, err := s.complaints.List(ctx, repository.ComplaintFilter{CreatedFrom: since})
	if err != nil {
		return nil, err
	}

	type acc struct {
		total, resolved, onTime int
		hours                   float64
	}
	perCategory := make(map[domain.Category]*acc, len(domain.Categories))
	overall := &acc{}
	for i := range all {
		c := &all[i]
		a, ok := perCategory[c.Category]
		if !ok {
			a = &acc{}
			perCategory[c.Category] = a
		}
		a.total++
		overall.total++
		if c.ResolvedAt == nil {
			continue
		}
		hours := c.ResolvedAt.Sub(c.CreatedAt).Hours()
		onTime := !c.ResolvedAt.After(c.SLADeadline)
		for _, target := range []*acc{a, overall} {
			target.resolved++
			target.hours += hours
			if onTime {
				target.onTime++
			}
		}
	}

	result := &Analytics{Since: since}
	for _, category := range domain.Categories {
		a, ok := perCategory[category]
		if !ok {
			continue
		}
		entry := CategoryAnalytics{Category: category, Total: a.total, Resolved: a.resolved}
		if a.resolved > 0 {
			entry.MeanResolutionHours = round2(a.hours / float64(a.resolved))
			entry.SLACompliance = round2(float64(a.onTime) / float64(a.resolved))
		}
		result.Categories = append(result.Categories, entry)
	}
	result.Resolved = overall.resolved
	if overall.resolved > 0 {
		result.MeanResolutionHours = round2(overall.hours / float64(overall.resolved))
		result.SLACompliance = round2(float64(overall.onTime) / float64(overall.resolved))
	}
	return result, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

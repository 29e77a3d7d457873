// Package sla derives response deadlines and evaluates them at read time.
package sla

import (
	"math"
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/priority"
)

// Urgency is a derived display band for the remaining SLA window.
type Urgency string

const (
	UrgencyOK       Urgency = "ok"
	UrgencyWarning  Urgency = "warning"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyBreached Urgency = "breached"
)

// Policy configures deadline derivation.
type Policy struct {
	BaseHours   map[domain.Category]float64
	DefaultBase float64
	// Multipliers are keyed by canonical (four band) priority band.
	Multipliers map[priority.Band]float64
	Floor       time.Duration
	Ceiling     time.Duration
}

// DefaultPolicy returns the production SLA policy.
func DefaultPolicy() Policy {
	return Policy{
		BaseHours: map[domain.Category]float64{
			domain.CategorySafety:       12,
			domain.CategoryDrainage:     24,
			domain.CategoryWater:        24,
			domain.CategoryElectricity:  24,
			domain.CategoryRoad:         48,
			domain.CategoryGarbage:      48,
			domain.CategoryStreetlights: 72,
			domain.CategoryStrayAnimals: 72,
			domain.CategoryOther:        96,
		},
		DefaultBase: 96,
		Multipliers: map[priority.Band]float64{
			priority.BandCritical: 0.5,
			priority.BandHigh:     0.75,
			priority.BandMedium:   1.0,
			priority.BandLow:      1.25,
		},
		Floor:   4 * time.Hour,
		Ceiling: 120 * time.Hour,
	}
}

// Scheduler stamps and evaluates SLA deadlines.
type Scheduler struct {
	policy Policy
}

// NewScheduler builds a scheduler.
func NewScheduler(p Policy) *Scheduler {
	return &Scheduler{policy: p}
}

// Hours returns the SLA length in whole hours for a category at a given score.
func (s *Scheduler) Hours(category domain.Category, score int) int {
	base, ok := s.policy.BaseHours[category]
	if !ok {
		base = s.policy.DefaultBase
	}
	mult, ok := s.policy.Multipliers[priority.FourBand.Band(priority.Clamp(score))]
	if !ok {
		mult = 1
	}
	hours := base * mult

	floor := s.policy.Floor.Hours()
	ceiling := s.policy.Ceiling.Hours()
	if floor > 0 && hours < floor {
		hours = floor
	}
	if ceiling > 0 && hours > ceiling {
		hours = ceiling
	}
	return int(math.Round(hours))
}

// Stamp assigns SLAHours and SLADeadline from the complaint's creation time
// and current score. It must be called exactly once, at creation.
func (s *Scheduler) Stamp(c *domain.Complaint) {
	c.SLAHours = s.Hours(c.Category, c.PriorityScore)
	c.SLADeadline = c.CreatedAt.Add(time.Duration(c.SLAHours) * time.Hour)
}

// TimeRemaining is negative once the deadline has passed.
func (s *Scheduler) TimeRemaining(c *domain.Complaint, now time.Time) time.Duration {
	return c.SLADeadline.Sub(now)
}

// Breached reports whether now is past the deadline.
func (s *Scheduler) Breached(c *domain.Complaint, now time.Time) bool {
	return s.TimeRemaining(c, now) < 0
}

// Urgency bands the remaining window relative to the full SLA length.
func (s *Scheduler) Urgency(c *domain.Complaint, now time.Time) Urgency {
	remaining := s.TimeRemaining(c, now)
	if remaining < 0 {
		return UrgencyBreached
	}
	total := time.Duration(c.SLAHours) * time.Hour
	if total <= 0 {
		return UrgencyUrgent
	}
	switch ratio := float64(remaining) / float64(total); {
	case ratio <= 0.25:
		return UrgencyUrgent
	case ratio <= 0.5:
		return UrgencyWarning
	default:
		return UrgencyOK
	}
}

// Package duplicate finds existing open complaints near a new submission.
package duplicate

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/geo"
)

// Config bounds the candidate search.
type Config struct {
	RadiusMeters  float64
	Window        time.Duration
	MaxCandidates int
}

// DefaultConfig returns 150m / 30 days / 5 candidates.
func DefaultConfig() Config {
	return Config{
		RadiusMeters:  150,
		Window:        30 * 24 * time.Hour,
		MaxCandidates: 5,
	}
}

// ComplaintLookup loads the complaints behind index hits.
type ComplaintLookup interface {
	GetMany(ctx context.Context, ids []string) ([]domain.Complaint, error)
}

// Query describes the location being submitted.
type Query struct {
	Latitude  float64
	Longitude float64
	Category  domain.Category
	// ExcludeID skips a complaint, e.g. the one being re-checked.
	ExcludeID string
}

// Candidate is a possible duplicate, advisory only.
type Candidate struct {
	Complaint      domain.Complaint
	DistanceMeters float64
}

// Detector is the duplicate lookup used before accepting a complaint.
type Detector struct {
	index  geo.Index
	lookup ComplaintLookup
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// NewDetector builds a detector. A nil logger is replaced with a no-op.
func NewDetector(index geo.Index, lookup ComplaintLookup, cfg Config, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = DefaultConfig().MaxCandidates
	}
	return &Detector{index: index, lookup: lookup, cfg: cfg, logger: logger, now: time.Now}
}

// WithClock overrides the time source.
func (d *Detector) WithClock(now func() time.Time) *Detector {
	d.now = now
	return d
}

// Window is how far back candidates may have been created.
func (d *Detector) Window() time.Duration {
	return d.cfg.Window
}

// Check returns ordered candidates. Index or lookup failures degrade to an
// empty result with a warning so submission is never blocked.
func (d *Detector) Check(ctx context.Context, q Query) []Candidate {
	center := geo.Point{Lat: q.Latitude, Lng: q.Longitude}
	if !center.Valid() {
		return nil
	}
	hits, err := d.index.Nearby(ctx, q.Category, center, d.cfg.RadiusMeters)
	if err != nil {
		d.logger.Warn("duplicate index unavailable; assuming no duplicates",
			zap.String("category", string(q.Category)), zap.Error(err))
		return nil
	}
	if len(hits) == 0 {
		return nil
	}

	distances := make(map[string]float64, len(hits))
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.ID == q.ExcludeID {
			continue
		}
		distances[h.ID] = h.DistanceMeters
		ids = append(ids, h.ID)
	}
	if len(ids) == 0 {
		return nil
	}

	complaints, err := d.lookup.GetMany(ctx, ids)
	if err != nil {
		d.logger.Warn("duplicate lookup failed; assuming no duplicates", zap.Error(err))
		return nil
	}

	cutoff := d.now().Add(-d.cfg.Window)
	candidates := make([]Candidate, 0, len(complaints))
	for _, c := range complaints {
		if c.Category != q.Category || c.Status.IsTerminal() {
			continue
		}
		if d.cfg.Window > 0 && c.CreatedAt.Before(cutoff) {
			continue
		}
		candidates = append(candidates, Candidate{Complaint: c, DistanceMeters: distances[c.ID]})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.DistanceMeters != b.DistanceMeters {
			return a.DistanceMeters < b.DistanceMeters
		}
		return a.Complaint.Upvotes > b.Complaint.Upvotes
	})
	if len(candidates) > d.cfg.MaxCandidates {
		candidates = candidates[:d.cfg.MaxCandidates]
	}
	return candidates
}

// Package priority computes the canonical 0-100 urgency score for complaints.
package priority

import (
	"math"
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

const (
	MinScore = 0
	MaxScore = 100
)

// Weights tunes the scoring function.
type Weights struct {
	CategoryBase map[domain.Category]float64
	// DefaultBase applies to categories missing from CategoryBase.
	DefaultBase  float64
	AgePerDay    float64
	AgeCap       float64
	UpvoteFactor float64
	UpvoteCap    float64
	FraudPenalty float64
}

// DefaultWeights returns the production weighting.
func DefaultWeights() Weights {
	return Weights{
		CategoryBase: map[domain.Category]float64{
			domain.CategorySafety:       60,
			domain.CategoryDrainage:     55,
			domain.CategoryWater:        50,
			domain.CategoryElectricity:  50,
			domain.CategoryRoad:         45,
			domain.CategoryStreetlights: 40,
			domain.CategoryGarbage:      35,
			domain.CategoryOther:        30,
			domain.CategoryStrayAnimals: 25,
		},
		DefaultBase:  30,
		AgePerDay:    3,
		AgeCap:       20,
		UpvoteFactor: 10,
		UpvoteCap:    25,
		FraudPenalty: 15,
	}
}

// Inputs are the facts the score depends on.
type Inputs struct {
	Category   domain.Category
	Age        time.Duration
	Upvotes    int
	FraudFlags int
}

// Scorer is the one scoring algorithm in the system. Banding is left to callers.
type Scorer struct {
	weights Weights
}

// NewScorer builds a scorer with the given weights.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Score computes the clamped priority score.
func (s *Scorer) Score(in Inputs) int {
	base, ok := s.weights.CategoryBase[in.Category]
	if !ok {
		base = s.weights.DefaultBase
	}

	days := in.Age.Hours() / 24
	if days < 0 {
		days = 0
	}
	age := math.Min(days*s.weights.AgePerDay, s.weights.AgeCap)

	upvotes := 0.0
	if in.Upvotes > 0 {
		upvotes = math.Min(s.weights.UpvoteFactor*math.Log2(1+float64(in.Upvotes)), s.weights.UpvoteCap)
	}

	raw := base + age + upvotes - float64(in.FraudFlags)*s.weights.FraudPenalty
	return Clamp(int(math.Round(raw)))
}

// ScoreComplaint scores a complaint as of now.
func (s *Scorer) ScoreComplaint(c *domain.Complaint, now time.Time) int {
	return s.Score(Inputs{
		Category:   c.Category,
		Age:        now.Sub(c.CreatedAt),
		Upvotes:    c.Upvotes,
		FraudFlags: len(c.FraudFlags),
	})
}

// Clamp bounds a score to [MinScore, MaxScore].
func Clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// Valid reports whether score is within range.
func Valid(score int) bool {
	return score >= MinScore && score <= MaxScore
}

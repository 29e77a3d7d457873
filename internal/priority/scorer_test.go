package priority

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/complaint-service/internal/domain"
)

func TestScoreAlwaysInRange(t *testing.T) {
	s := NewScorer(DefaultWeights())
	ages := []time.Duration{-48 * time.Hour, 0, 36 * time.Hour, 30 * 24 * time.Hour, 10 * 365 * 24 * time.Hour}
	upvotes := []int{-3, 0, 1, 7, 1000, 1 << 30}
	flags := []int{0, 1, 3, 50}

	for _, cat := range append(domain.Categories, domain.Category("unknown")) {
		for _, age := range ages {
			for _, up := range upvotes {
				for _, f := range flags {
					score := s.Score(Inputs{Category: cat, Age: age, Upvotes: up, FraudFlags: f})
					assert.True(t, Valid(score), "score %d out of range for %s/%s/%d/%d", score, cat, age, up, f)
				}
			}
		}
	}
}

func TestScoreCategoryWeighting(t *testing.T) {
	s := NewScorer(DefaultWeights())
	safety := s.Score(Inputs{Category: domain.CategorySafety})
	drainage := s.Score(Inputs{Category: domain.CategoryDrainage})
	stray := s.Score(Inputs{Category: domain.CategoryStrayAnimals})

	assert.Greater(t, safety, stray)
	assert.Greater(t, drainage, stray)
	assert.Equal(t, 60, safety)
}

func TestScoreAgeIsMonotonicAndCapped(t *testing.T) {
	s := NewScorer(DefaultWeights())
	prev := -1
	for day := 0; day <= 30; day++ {
		score := s.Score(Inputs{Category: domain.CategoryRoad, Age: time.Duration(day) * 24 * time.Hour})
		assert.GreaterOrEqual(t, score, prev)
		prev = score
	}
	assert.Equal(t, 45+20, prev)
}

func TestScoreUpvotesDiminishingReturns(t *testing.T) {
	s := NewScorer(DefaultWeights())
	base := s.Score(Inputs{Category: domain.CategoryGarbage})
	one := s.Score(Inputs{Category: domain.CategoryGarbage, Upvotes: 1})
	three := s.Score(Inputs{Category: domain.CategoryGarbage, Upvotes: 3})
	many := s.Score(Inputs{Category: domain.CategoryGarbage, Upvotes: 10000})

	assert.Equal(t, base+10, one)
	assert.Equal(t, base+20, three)
	assert.Equal(t, base+25, many)
	assert.Less(t, three-one, one-base+1)
}

func TestScoreFraudPenaltyFloorsAtZero(t *testing.T) {
	s := NewScorer(DefaultWeights())
	assert.Equal(t, 45-15, s.Score(Inputs{Category: domain.CategoryRoad, FraudFlags: 1}))
	assert.Equal(t, 0, s.Score(Inputs{Category: domain.CategoryRoad, FraudFlags: 10}))
}

func TestScoreComplaintUsesAge(t *testing.T) {
	s := NewScorer(DefaultWeights())
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &domain.Complaint{Category: domain.CategoryWater, CreatedAt: created, Upvotes: 1}

	assert.Equal(t, 60, s.ScoreComplaint(c, created))
	assert.Equal(t, 66, s.ScoreComplaint(c, created.Add(48*time.Hour)))
}

func TestBandTables(t *testing.T) {
	tests := []struct {
		score int
		four  Band
		three Band
	}{
		{100, BandCritical, BandHigh},
		{81, BandCritical, BandHigh},
		{80, BandHigh, BandHigh},
		{71, BandHigh, BandHigh},
		{70, BandHigh, BandMedium},
		{61, BandHigh, BandMedium},
		{60, BandMedium, BandMedium},
		{41, BandMedium, BandMedium},
		{40, BandLow, BandLow},
		{0, BandLow, BandLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.four, FourBand.Band(tt.score), "four band for %d", tt.score)
		assert.Equal(t, tt.three, ThreeBand.Band(tt.score), "three band for %d", tt.score)
	}
}

func TestTableByName(t *testing.T) {
	assert.Equal(t, "three", TableByName("THREE").Name)
	assert.Equal(t, "four", TableByName("").Name)
	assert.Equal(t, []Band{BandCritical, BandHigh, BandMedium, BandLow}, FourBand.Bands())
}

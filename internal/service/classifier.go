package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ClassifyInput is what the external classifier sees of a submission.
type ClassifyInput struct {
	Title       string
	Description string
	Category    domain.Category
	PhotoURL    *string
	HasLocation bool
}

// Classification is advisory output. The engine stores it and lets fraud
// flags lower priority, nothing more.
type Classification struct {
	SuggestedCategory *domain.Category
	Confidence        *float64
	FraudFlags        []domain.FraudFlag
}

// Classifier is the port for the opaque AI/fraud classifier.
type Classifier interface {
	Classify(ctx context.Context, in ClassifyInput) (*Classification, error)
}

// KeywordClassifier is the in-process stand-in used when no external
// classifier is wired. It matches category keywords and raises a few
// cheap plausibility flags.
type KeywordClassifier struct{}

var categoryKeywords = map[domain.Category][]string{
	domain.CategoryGarbage:      {"garbage", "trash", "waste", "litter", "dump", "bin"},
	domain.CategoryWater:        {"water", "leak", "pipe", "tap", "supply"},
	domain.CategoryElectricity:  {"power", "electric", "outage", "transformer", "wire"},
	domain.CategoryRoad:         {"pothole", "road", "asphalt", "crack", "street damage"},
	domain.CategoryStreetlights: {"streetlight", "street light", "lamp", "dark street"},
	domain.CategorySafety:       {"unsafe", "danger", "harassment", "crime", "fire", "collapse"},
	domain.CategoryDrainage:     {"drain", "sewage", "sewer", "flood", "clog", "overflow"},
	domain.CategoryStrayAnimals: {"stray", "dog", "cattle", "animal", "cow"},
}

const minDescriptionRunes = 15

// Classify implements Classifier.
func (KeywordClassifier) Classify(_ context.Context, in ClassifyInput) (*Classification, error) {
	text := strings.ToLower(in.Title + " " + in.Description)

	var (
		best      domain.Category
		bestHits  int
		totalHits int
	)
	for _, category := range domain.Categories {
		hits := 0
		for _, kw := range categoryKeywords[category] {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		totalHits += hits
		if hits > bestHits {
			best, bestHits = category, hits
		}
	}

	result := &Classification{}
	if bestHits > 0 {
		confidence := float64(bestHits) / float64(totalHits)
		result.SuggestedCategory = &best
		result.Confidence = &confidence
	}

	if utf8.RuneCountInString(strings.TrimSpace(in.Description)) < minDescriptionRunes {
		result.FraudFlags = append(result.FraudFlags, domain.FraudFlag{
			Type:    "LOW_DETAIL",
			Message: "description is too short to act on",
		})
	}
	if bestHits > 0 && best != in.Category && in.Category != domain.CategoryOther {
		result.FraudFlags = append(result.FraudFlags, domain.FraudFlag{
			Type:    "CATEGORY_MISMATCH",
			Message: "text suggests " + string(best) + " rather than " + string(in.Category),
		})
	}
	return result, nil
}

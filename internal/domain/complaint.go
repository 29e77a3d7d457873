package domain

import (
	"strings"
	"time"
)

// Category enumerates the civic issue categories a complaint can be filed under.
type Category string

const (
	CategoryGarbage      Category = "garbage"
	CategoryWater        Category = "water"
	CategoryElectricity  Category = "electricity"
	CategoryRoad         Category = "road"
	CategoryStreetlights Category = "streetlights"
	CategorySafety       Category = "safety"
	CategoryDrainage     Category = "drainage"
	CategoryStrayAnimals Category = "stray-animals"
	CategoryOther        Category = "other"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryGarbage,
	CategoryWater,
	CategoryElectricity,
	CategoryRoad,
	CategoryStreetlights,
	CategorySafety,
	CategoryDrainage,
	CategoryStrayAnimals,
	CategoryOther,
}

// ParseCategory maps free-form input onto a Category.
func ParseCategory(raw string) (Category, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, "_", "-")
	key = strings.ReplaceAll(key, " ", "-")
	switch key {
	case "streetlight", "street-lights", "street-light":
		return CategoryStreetlights, true
	case "stray-animal", "strayanimals", "animals":
		return CategoryStrayAnimals, true
	}
	for _, c := range Categories {
		if string(c) == key {
			return c, true
		}
	}
	return "", false
}

// FraudFlag is an advisory diagnostic attached by the external classifier.
type FraudFlag struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Complaint is the aggregate for a reported civic issue.
type Complaint struct {
	ID                   string
	ReporterID           string
	Title                string
	Description          string
	Category             Category
	PhotoURL             *string
	Latitude             *float64
	Longitude            *float64
	Address              string
	IsPublic             bool
	IsAnonymous          bool
	Status               Status
	PriorityScore        int
	Upvotes              int
	IsEscalated          bool
	EscalatedAt          *time.Time
	SLAHours             int
	SLADeadline          time.Time
	ResolutionPhotoURL   *string
	ResolutionType       *string
	FraudFlags           []FraudFlag
	SuggestedCategory    *Category
	ClassifierConfidence *float64
	Version              int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
	ResolvedAt           *time.Time
}

// HasLocation reports whether both coordinates are present.
func (c *Complaint) HasLocation() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// Clone returns a deep copy so callers can mutate without aliasing stored state.
func (c *Complaint) Clone() *Complaint {
	if c == nil {
		return nil
	}
	out := *c
	out.PhotoURL = cloneString(c.PhotoURL)
	out.ResolutionPhotoURL = cloneString(c.ResolutionPhotoURL)
	out.ResolutionType = cloneString(c.ResolutionType)
	out.Latitude = cloneFloat(c.Latitude)
	out.Longitude = cloneFloat(c.Longitude)
	out.ClassifierConfidence = cloneFloat(c.ClassifierConfidence)
	if c.SuggestedCategory != nil {
		cat := *c.SuggestedCategory
		out.SuggestedCategory = &cat
	}
	if c.EscalatedAt != nil {
		t := *c.EscalatedAt
		out.EscalatedAt = &t
	}
	if c.ResolvedAt != nil {
		t := *c.ResolvedAt
		out.ResolvedAt = &t
	}
	if c.FraudFlags != nil {
		out.FraudFlags = append([]FraudFlag(nil), c.FraudFlags...)
	}
	return &out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

package dto

import "time"

// CreateComplaintRequest payload for POST /complaints.
type CreateComplaintRequest struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Description  string   `json:"description" validate:"required,max=5000"`
	Category     string   `json:"category" validate:"required"`
	PhotoURL     *string  `json:"photo_url" validate:"omitempty,max=2048"`
	Latitude     *float64 `json:"latitude" validate:"required_with=Longitude,omitempty,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude" validate:"required_with=Latitude,omitempty,gte=-180,lte=180"`
	Address      string   `json:"address" validate:"max=500"`
	IsPublic     *bool    `json:"is_public"`
	IsAnonymous  bool     `json:"is_anonymous"`
	ReportAnyway bool     `json:"report_anyway"`
}

// CheckDuplicateRequest payload for POST /complaints/check-duplicate.
type CheckDuplicateRequest struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Category  string  `json:"category" validate:"required"`
}

// UpdateStatusRequest payload for PATCH /complaints/:id/status.
type UpdateStatusRequest struct {
	Status             string  `json:"status" validate:"required"`
	ResolutionPhotoURL *string `json:"resolution_photo_url" validate:"omitempty,max=2048"`
	ResolutionType     *string `json:"resolution_type" validate:"omitempty,max=100"`
	Note               string  `json:"note" validate:"max=1000"`
}

// EscalationRequest carries an optional reason for manual escalation changes.
type EscalationRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// FraudFlagResponse is an advisory classifier flag.
type FraudFlagResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ComplaintResponse is the full read model, including derived fields.
type ComplaintResponse struct {
	ID                   string              `json:"id"`
	ReporterID           *string             `json:"reporter_id,omitempty"`
	Title                string              `json:"title"`
	Description          string              `json:"description"`
	Category             string              `json:"category"`
	PhotoURL             *string             `json:"photo_url,omitempty"`
	Latitude             *float64            `json:"latitude,omitempty"`
	Longitude            *float64            `json:"longitude,omitempty"`
	Address              string              `json:"address,omitempty"`
	IsPublic             bool                `json:"is_public"`
	IsAnonymous          bool                `json:"is_anonymous"`
	Status               string              `json:"status"`
	PriorityScore        int                 `json:"priority_score"`
	PriorityBand         string              `json:"priority_band"`
	Upvotes              int                 `json:"upvotes"`
	Voted                bool                `json:"voted"`
	IsEscalated          bool                `json:"is_escalated"`
	EscalatedAt          *time.Time          `json:"escalated_at,omitempty"`
	SLAHours             int                 `json:"sla_hours"`
	SLADeadline          time.Time           `json:"sla_deadline"`
	TimeRemainingSeconds int64               `json:"time_remaining_seconds"`
	SLAUrgency           string              `json:"sla_urgency"`
	ResolutionPhotoURL   *string             `json:"resolution_photo_url,omitempty"`
	ResolutionType       *string             `json:"resolution_type,omitempty"`
	FraudFlags           []FraudFlagResponse `json:"fraud_flags,omitempty"`
	SuggestedCategory    *string             `json:"suggested_category,omitempty"`
	ClassifierConfidence *float64            `json:"classifier_confidence,omitempty"`
	AllowedTransitions   []string            `json:"allowed_transitions,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
	ResolvedAt           *time.Time          `json:"resolved_at,omitempty"`
}

// DuplicateCandidateResponse is one nearby open complaint.
type DuplicateCandidateResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	Status         string    `json:"status"`
	Upvotes        int       `json:"upvotes"`
	PriorityScore  int       `json:"priority_score"`
	DistanceMeters float64   `json:"distance_meters"`
	CreatedAt      time.Time `json:"created_at"`
}

// UpvoteResponse reports the caller's vote state after a toggle.
type UpvoteResponse struct {
	Voted         bool   `json:"voted"`
	Upvotes       int    `json:"upvotes"`
	PriorityScore int    `json:"priority_score"`
	PriorityBand  string `json:"priority_band"`
}

// TimelineEntryResponse is one audit record.
type TimelineEntryResponse struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	Details    string    `json:"details"`
	ActorID    *string   `json:"actor_id,omitempty"`
	ActorRole  string    `json:"actor_role"`
	FromStatus *string   `json:"from_status,omitempty"`
	ToStatus   *string   `json:"to_status,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// StatsResponse aggregates complaint counts.
type StatsResponse struct {
	Total      int            `json:"total"`
	Open       int            `json:"open"`
	Escalated  int            `json:"escalated"`
	Breached   int            `json:"breached"`
	ByStatus   map[string]int `json:"by_status"`
	ByCategory map[string]int `json:"by_category"`
	ByBand     map[string]int `json:"by_band"`
}

// HeatPointResponse is one weighted map point.
type HeatPointResponse struct {
	ComplaintID string  `json:"complaint_id"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Category    string  `json:"category"`
	Status      string  `json:"status"`
	Weight      float64 `json:"weight"`
}

// CategoryAnalyticsResponse holds resolution figures for one category.
type CategoryAnalyticsResponse struct {
	Category            string  `json:"category"`
	Total               int     `json:"total"`
	Resolved            int     `json:"resolved"`
	MeanResolutionHours float64 `json:"mean_resolution_hours"`
	SLACompliance       float64 `json:"sla_compliance"`
}

// AnalyticsResponse summarises resolution performance.
type AnalyticsResponse struct {
	Since               *time.Time                  `json:"since,omitempty"`
	Resolved            int                         `json:"resolved"`
	MeanResolutionHours float64                     `json:"mean_resolution_hours"`
	SLACompliance       float64                     `json:"sla_compliance"`
	Categories          []CategoryAnalyticsResponse `json:"categories"`
}

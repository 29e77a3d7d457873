package domain

import "time"

// User is any authenticated party: citizen, official or administrator.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Vote records one citizen's upvote on a complaint.
type Vote struct {
	ComplaintID string
	VoterID     string
	CreatedAt   time.Time
}
